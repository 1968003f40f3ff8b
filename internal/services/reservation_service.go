package services

import (
	"context"

	"github.com/jmoiron/sqlx"

	"kurtikart/internal/cache"
	"kurtikart/internal/clock"
	"kurtikart/internal/domain"
	"kurtikart/internal/ledger"
	applog "kurtikart/internal/log"
	"kurtikart/internal/repos"
)

// ReservationService reverses reservation holds when an order is cancelled.
// It only ever touches the reserved pool, never physical stock, and it never
// fails the caller: quantity drift is clamped to zero and logged.
type ReservationService struct {
	DB    *sqlx.DB
	Cache cache.Invalidator
	Clock clock.Clock
}

func NewReservationService(db *sqlx.DB, inv cache.Invalidator, clk clock.Clock) *ReservationService {
	return &ReservationService{DB: db, Cache: inv, Clock: clk}
}

// Release drops the reserved quantities for the given cart lines inside the
// caller's transaction. Lines are aggregated per kurti code first so repeated
// codes never double-release. Returns the touched codes for cache
// invalidation after commit.
func (s *ReservationService) Release(ext sqlx.Ext, lines []domain.CartProduct) ([]string, error) {
	stamp := clock.Stamp(s.Clock)
	deltas := ledger.Aggregate(lines)

	codes := make([]string, 0, len(deltas))
	for _, d := range deltas {
		for _, size := range ledger.SortedSizes(d.Sizes) {
			res, err := ledger.ApplyDelta(ext, d.Code, ledger.Reserved, size, -d.Sizes[size], ledger.Clamped)
			if err != nil {
				return nil, err
			}
			if res.Clamped || res.NoOp {
				applog.Warn(nil, "reservation.release.drift", map[string]any{
					"kurti": d.Code, "size": size, "requested": d.Sizes[size],
				})
			}
		}
		if err := repos.Touch(ext, d.Code, stamp); err != nil {
			return nil, err
		}
		codes = append(codes, d.Code)
	}
	return codes, nil
}

// ReleaseOrder runs Release in its own transaction, for callers outside the
// cancel path (e.g. staff adjusting a pending cart).
func (s *ReservationService) ReleaseOrder(ctx context.Context, lines []domain.CartProduct) error {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	codes, err := s.Release(tx, lines)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	if err := s.Cache.InvalidateKurti(ctx, codes...); err != nil {
		applog.Warn(nil, "cache.invalidate.fail", map[string]any{"err": err.Error()})
	}
	return nil
}
