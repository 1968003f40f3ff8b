package domain

// SizeEntry is one per-size stock row. Size collections only ever hold
// entries with Quantity > 0; a size that drops to zero is removed.
type SizeEntry struct {
	Size     string `db:"size"`
	Quantity int    `db:"qty"`
}

// Kurti is a catalogue product with per-size stock.
//
// Sizes is the physically available stock; ReservedSizes is stock held
// against not-yet-accepted orders. Reserved is recorded independently of
// available: it may temporarily exceed it, and the accept path validates
// against Sizes at commit time, not at reservation time.
type Kurti struct {
	Code          string `db:"code"`
	Name          string `db:"name"`
	PricePaise    int64  `db:"price_paise"`
	CountOfPiece  int    `db:"count_of_piece"` // denormalized total, not authoritative
	Deleted       bool   `db:"deleted"`
	LastUpdatedAt string `db:"last_updated_at"`

	Sizes         []SizeEntry
	ReservedSizes []SizeEntry
}

var sizeOrder = []string{"XS", "S", "M", "L", "XL", "XXL", "3XL", "4XL", "5XL"}

var sizeRank = func() map[string]int {
	m := make(map[string]int, len(sizeOrder))
	for i, s := range sizeOrder {
		m[s] = i
	}
	return m
}()

// KnownSize reports whether s is one of the canonical size labels.
func KnownSize(s string) bool {
	_, ok := sizeRank[s]
	return ok
}

// SizeLess orders canonical labels XS..5XL; unknown labels sort last, alphabetically.
func SizeLess(a, b string) bool {
	ra, aok := sizeRank[a]
	rb, bok := sizeRank[b]
	switch {
	case aok && bok:
		return ra < rb
	case aok:
		return true
	case bok:
		return false
	default:
		return a < b
	}
}

// TotalQuantity sums the entries of one size collection.
func TotalQuantity(entries []SizeEntry) int {
	n := 0
	for _, e := range entries {
		n += e.Quantity
	}
	return n
}
