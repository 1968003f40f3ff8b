package ledger

import (
	"database/sql"
	"errors"
	"sort"

	"github.com/jmoiron/sqlx"

	"kurtikart/internal/domain"
)

// Mode selects the failure policy when a delta would drive a quantity negative.
type Mode int

const (
	// Strict fails the whole operation and applies nothing. Used for real
	// stock deductions.
	Strict Mode = iota
	// Clamped floors the quantity at zero and reports the clamp instead of
	// failing. Used for reservation releases, where bookkeeping drift must
	// never block a cancellation.
	Clamped
)

// Pool selects which size collection of a kurti a delta applies to.
type Pool string

const (
	Available Pool = "available"
	Reserved  Pool = "reserved"
)

// Result describes what one delta application did.
type Result struct {
	NewQuantity int
	Clamped     bool // quantity was floored at zero
	NoOp        bool // missing entry under Clamped mode, nothing touched
}

// ApplyDelta adds delta (positive or negative) to the (code, pool, size) row.
// Rows only ever hold strictly-positive quantities: a row that reaches zero
// is deleted, a missing row receiving a positive delta is created. A missing
// row receiving a negative delta fails with SizeNotFound under Strict and is
// a no-op under Clamped.
//
// ext may be the DB itself or an open transaction; multi-product commits
// always pass a transaction so the whole batch is all-or-nothing.
func ApplyDelta(ext sqlx.Ext, code string, pool Pool, size string, delta int, mode Mode) (Result, error) {
	var cur int
	err := sqlx.Get(ext, &cur, `
		SELECT qty FROM kurti_sizes
		WHERE kurti_code = ? AND pool = ? AND size = ?
	`, code, pool, size)
	exists := true
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return Result{}, err
		}
		exists = false
		cur = 0
	}

	if !exists {
		switch {
		case delta > 0:
			if _, err := ext.Exec(`
				INSERT INTO kurti_sizes(kurti_code, pool, size, qty)
				VALUES(?,?,?,?)
			`, code, pool, size, delta); err != nil {
				return Result{}, err
			}
			return Result{NewQuantity: delta}, nil
		case delta == 0:
			return Result{NoOp: true}, nil
		default:
			if mode == Clamped {
				return Result{NoOp: true}, nil
			}
			return Result{}, &domain.SizeNotFoundError{Code: code, Size: size}
		}
	}

	next := cur + delta
	clamped := false
	if next < 0 {
		if mode == Strict {
			return Result{}, &domain.InsufficientStockError{
				Code: code, Size: size, Available: cur, Requested: -delta,
			}
		}
		next = 0
		clamped = true
	}

	if next == 0 {
		if _, err := ext.Exec(`
			DELETE FROM kurti_sizes
			WHERE kurti_code = ? AND pool = ? AND size = ?
		`, code, pool, size); err != nil {
			return Result{}, err
		}
		return Result{NewQuantity: 0, Clamped: clamped}, nil
	}

	if _, err := ext.Exec(`
		UPDATE kurti_sizes SET qty = ?
		WHERE kurti_code = ? AND pool = ? AND size = ?
	`, next, code, pool, size); err != nil {
		return Result{}, err
	}
	return Result{NewQuantity: next, Clamped: clamped}, nil
}

// Entries reads one pool of a kurti in canonical size order.
func Entries(ext sqlx.Ext, code string, pool Pool) ([]domain.SizeEntry, error) {
	var out []domain.SizeEntry
	err := sqlx.Select(ext, &out, `
		SELECT size, qty FROM kurti_sizes
		WHERE kurti_code = ? AND pool = ?
	`, code, pool)
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return domain.SizeLess(out[i].Size, out[j].Size) })
	return out, nil
}
