package repl

import (
	"reflect"
	"testing"
)

func TestComplete(t *testing.T) {
	c := NewCompleter()

	tests := []struct {
		prefix string
		want   []string
	}{
		{"co", []string{"commit"}},
		{"s", []string{"snapshot get", "stats"}},
		{"zzz", nil},
		{"discard", []string{"discard"}},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			if got := c.Complete(tt.prefix); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Complete(%q) = %v, want %v", tt.prefix, got, tt.want)
			}
		})
	}
}

func TestCompleteEmptyPrefixListsAll(t *testing.T) {
	c := NewCompleter()
	if got := len(c.Complete("")); got != len(c.commands) {
		t.Errorf("Complete(\"\") returned %d commands, want %d", got, len(c.commands))
	}
}
