package occ

import "errors"

var (
	// ErrConflict reports that a commit lost its publish race and the
	// store refused to merge the transaction's writes onto the snapshot
	// that won. Stores wrap or return it from Resolve; callers that want
	// to retry start a fresh transaction.
	ErrConflict = errors.New("occ: conflicting write")

	// ErrRetriesExhausted reports that a commit hit the handle's attempt
	// bound before winning a publish race. Only handles configured with
	// WithMaxAttempts can return it.
	ErrRetriesExhausted = errors.New("occ: commit attempts exhausted")
)
