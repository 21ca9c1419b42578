// Package order computes position shifts for dense 0-based orderings.
//
// A parent scope (cards within a column, columns within a board) keeps its
// children at positions {0..n-1} with no gaps or duplicates. The functions
// here are pure: callers supply the current count and receive the final
// position of the touched item plus the bulk adjustments its siblings need.
// Repositories translate Shift values into conditional UPDATE statements
// executed inside the same transaction as the primary write.
package order

// Shift is a bulk adjustment of sibling positions: every sibling whose
// position lies in [Lo, Hi] moves by Delta. Hi < 0 means the range is
// open-ended upward.
type Shift struct {
	Lo    int
	Hi    int
	Delta int
}

// Open reports whether the shift has no upper bound.
func (s Shift) Open() bool { return s.Hi < 0 }

// Append returns the position for an item added with no explicit target.
func Append(count int) int { return count }

// InsertAt clamps desired to [0, count] and returns the final position plus
// the shift that opens a gap for it. A nil shift means the item is appended.
func InsertAt(count, desired int) (int, *Shift) {
	final := clamp(desired, 0, count)
	if final >= count {
		return final, nil
	}
	return final, &Shift{Lo: final, Hi: -1, Delta: 1}
}

// RemoveAt returns the shift that closes the gap left at pos.
func RemoveAt(pos int) Shift {
	return Shift{Lo: pos + 1, Hi: -1, Delta: -1}
}

// MoveWithin relocates an item from one position to another inside the same
// parent of count items. The target is clamped to [0, count-1]. A nil shift
// means the move is a no-op.
//
// Semantically this is RemoveAt(from) followed by InsertAt at the clamped
// target, collapsed into a single adjustment of the span between the two
// positions so no sibling is touched twice.
func MoveWithin(from, toRaw, count int) (int, *Shift) {
	final := clamp(toRaw, 0, count-1)
	switch {
	case final == from:
		return final, nil
	case final > from:
		// moving forward: siblings in (from, final] step back
		return final, &Shift{Lo: from + 1, Hi: final, Delta: -1}
	default:
		// moving backward: siblings in [final, from) step forward
		return final, &Shift{Lo: final, Hi: from - 1, Delta: 1}
	}
}

// Plan describes a move of an item between two parents: compact the source,
// then open a gap in the destination.
type Plan struct {
	// Source compacts the old parent after the item leaves oldPos.
	Source Shift
	// Final is the item's position in the destination parent.
	Final int
	// Insert opens the gap in the destination; nil when appending.
	Insert *Shift
}

// MoveAcross plans moving an item out of position oldPos in one parent and
// into another parent currently holding destCount items. destCount is the
// count before the move; the item may land at destCount (append).
func MoveAcross(oldPos, toRaw, destCount int) Plan {
	final, ins := InsertAt(destCount, toRaw)
	return Plan{
		Source: RemoveAt(oldPos),
		Final:  final,
		Insert: ins,
	}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
