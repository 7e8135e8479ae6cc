package confloader

import (
	"errors"

	"github.com/knadh/koanf/maps"
)

// ErrReadBytesNotSupported is returned when ReadBytes is called on a map
// provider.
var ErrReadBytesNotSupported = errors.New("confloader: map provider has no byte form, use Read")

// mapProvider adapts an in-memory map to koanf's Provider interface.
// koanf calls Read for providers that have no serialized form.
type mapProvider map[string]any

// ReadBytes always fails; a map has no byte serialization.
func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, ErrReadBytesNotSupported
}

// Read returns the configuration map. Dotted keys are expanded into the
// nested shape Unmarshal expects, so flat flag overrides like
// "bench.workers" land on the bench section.
func (m mapProvider) Read() (map[string]any, error) {
	return maps.Unflatten(m, "."), nil
}
