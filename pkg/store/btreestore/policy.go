package btreestore

import "fmt"

// Policy selects how Resolve treats commits that raced on this store.
type Policy int

const (
	// Refuse fails every resolve. Matches mapstore semantics with
	// B-tree performance.
	Refuse Policy = iota

	// MergeDisjoint replays this store's writes onto the winner only if
	// none of the written keys changed since this store's basis. The
	// first committer wins contested keys.
	MergeDisjoint

	// LastWriterWins replays this store's writes unconditionally,
	// clobbering whatever the winner put under the same keys.
	LastWriterWins
)

// String returns the flag-style spelling understood by ParsePolicy.
func (p Policy) String() string {
	switch p {
	case Refuse:
		return "refuse"
	case MergeDisjoint:
		return "merge-disjoint"
	case LastWriterWins:
		return "last-writer-wins"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy maps a flag or config spelling to its Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "refuse":
		return Refuse, nil
	case "merge-disjoint":
		return MergeDisjoint, nil
	case "last-writer-wins":
		return LastWriterWins, nil
	default:
		return 0, fmt.Errorf("btreestore: unknown policy %q", s)
	}
}
