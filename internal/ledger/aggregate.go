package ledger

import (
	"sort"

	"kurtikart/internal/domain"
)

// ProductDelta is the net size->quantity map for one kurti code across all
// cart lines of an order.
type ProductDelta struct {
	Code  string
	Sizes map[string]int
}

// Aggregate folds an order's cart lines into one net delta per kurti code.
// Two lines referencing the same code (different batches) are summed, so
// ledger mutations never apply per-line deltas independently. Output is
// sorted by code for deterministic transaction ordering.
func Aggregate(lines []domain.CartProduct) []ProductDelta {
	byCode := make(map[string]map[string]int)
	for _, line := range lines {
		m := byCode[line.KurtiCode]
		if m == nil {
			m = make(map[string]int)
			byCode[line.KurtiCode] = m
		}
		for size, qty := range line.AdminSideSizes {
			if qty <= 0 {
				continue
			}
			m[size] += qty
		}
	}

	out := make([]ProductDelta, 0, len(byCode))
	for code, sizes := range byCode {
		if len(sizes) == 0 {
			continue
		}
		out = append(out, ProductDelta{Code: code, Sizes: sizes})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// SortedSizes returns the keys of a size map in canonical size order, so
// per-size mutations inside a transaction happen in a stable order.
func SortedSizes(sizes map[string]int) []string {
	keys := make([]string, 0, len(sizes))
	for k := range sizes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return domain.SizeLess(keys[i], keys[j]) })
	return keys
}
