package services

import (
	"context"
	"errors"
	"time"

	"kurtikart/internal/cache"
	"kurtikart/internal/clock"
	"kurtikart/internal/domain"
	"kurtikart/internal/ledger"
	applog "kurtikart/internal/log"
	"kurtikart/internal/repos"
)

// Budget for the multi-product stock commit: one bound on waiting for the
// store, one on executing the batch. Exceeding either surfaces as
// ErrTxTimeout with no partial commit; the caller may retry the accept.
const (
	commitWaitTimeout = 20 * time.Second
	commitExecTimeout = 20 * time.Second
)

// OrderService drives the order lifecycle. Accept runs the stock commit
// transaction; Cancel releases reservations; UpdateTracking moves an order
// to SHIPPED once a tracking id is known.
type OrderService struct {
	Orders *repos.OrderRepo
	Res    *ReservationService
	Cache  cache.Invalidator
	Clock  clock.Clock
}

func NewOrderService(orders *repos.OrderRepo, res *ReservationService, inv cache.Invalidator, clk clock.Clock) *OrderService {
	return &OrderService{Orders: orders, Res: res, Cache: inv, Clock: clk}
}

// List returns orders for the admin console, filtered and paginated.
func (s *OrderService) List(status domain.OrderStatus, orderID, phone string, page, pageSize int) ([]domain.Order, repos.Pagination, error) {
	return s.Orders.List(status, orderID, phone, page, pageSize)
}

func (s *OrderService) Get(orderID string) (*domain.Order, error) {
	return s.Orders.Get(orderID)
}

// Accept commits a PENDING order's reservations into permanent stock
// deductions and moves it to TRACKINGPENDING. All affected kurtis are
// mutated in one transaction: if any single size lacks stock, nothing
// changes anywhere and the order stays PENDING.
func (s *OrderService) Accept(ctx context.Context, staff *domain.User, orderID string, pay *domain.PaymentInfo) (*domain.Order, error) {
	if staff == nil {
		return nil, domain.ErrUnauthorized
	}

	o, err := s.Orders.Get(orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != domain.StatusPending {
		return nil, &domain.InvalidTransitionError{From: o.Status, To: domain.StatusTrackingPending}
	}

	deltas := ledger.Aggregate(o.CartProducts)
	stamp := clock.Stamp(s.Clock)

	waitCtx, cancelWait := context.WithTimeout(ctx, commitWaitTimeout)
	defer cancelWait()
	tx, err := s.Orders.DB().BeginTxx(waitCtx, nil)
	if err != nil {
		return nil, mapTimeout(err)
	}
	defer func() { _ = tx.Rollback() }()

	execCtx, cancelExec := context.WithTimeout(ctx, commitExecTimeout)
	defer cancelExec()

	codes := make([]string, 0, len(deltas))
	for _, d := range deltas {
		if err := execCtx.Err(); err != nil {
			return nil, mapTimeout(err)
		}
		total := 0
		for _, size := range ledger.SortedSizes(d.Sizes) {
			qty := d.Sizes[size]
			// physical stock is strict: any shortfall aborts the whole batch
			if _, err := ledger.ApplyDelta(tx, d.Code, ledger.Available, size, -qty, ledger.Strict); err != nil {
				return nil, err
			}
			// reservation bookkeeping is clamped: drift must not block a valid sale
			res, err := ledger.ApplyDelta(tx, d.Code, ledger.Reserved, size, -qty, ledger.Clamped)
			if err != nil {
				return nil, err
			}
			if res.Clamped || res.NoOp {
				applog.Warn(nil, "stock.commit.reservation_drift", map[string]any{
					"kurti": d.Code, "size": size, "requested": qty,
				})
			}
			total += qty
		}
		if err := repos.DeductCountOfPiece(tx, d.Code, total); err != nil {
			return nil, err
		}
		if err := repos.Touch(tx, d.Code, stamp); err != nil {
			return nil, err
		}
		codes = append(codes, d.Code)
	}

	if err := repos.UpdateStatus(tx, orderID, domain.StatusPending, domain.StatusTrackingPending, stamp); err != nil {
		return nil, err
	}
	if pay != nil {
		if err := repos.SetPayment(tx, orderID, *pay); err != nil {
			return nil, err
		}
	}

	if err := execCtx.Err(); err != nil {
		return nil, mapTimeout(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, mapTimeout(err)
	}

	if err := s.Cache.InvalidateKurti(ctx, codes...); err != nil {
		applog.Warn(nil, "cache.invalidate.fail", map[string]any{"err": err.Error()})
	}
	return s.Orders.Get(orderID)
}

// Cancel moves any non-terminal order to CANCELLED and releases its
// reservations. Physical stock is untouched. Release drift is clamped, so
// cancelling an already-drifted order still succeeds.
func (s *OrderService) Cancel(ctx context.Context, staff *domain.User, orderID string) (*domain.Order, error) {
	if staff == nil {
		return nil, domain.ErrUnauthorized
	}

	o, err := s.Orders.Get(orderID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(o.Status, domain.StatusCancelled) {
		return nil, &domain.InvalidTransitionError{From: o.Status, To: domain.StatusCancelled}
	}

	tx, err := s.Orders.DB().BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	codes, err := s.Res.Release(tx, o.CartProducts)
	if err != nil {
		return nil, err
	}
	if err := repos.UpdateStatus(tx, orderID, o.Status, domain.StatusCancelled, clock.Stamp(s.Clock)); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if err := s.Cache.InvalidateKurti(ctx, codes...); err != nil {
		applog.Warn(nil, "cache.invalidate.fail", map[string]any{"err": err.Error()})
	}
	return s.Orders.Get(orderID)
}

// UpdateTracking persists courier and tracking id, auto-transitioning to
// SHIPPED when a tracking id is supplied while TRACKINGPENDING/PROCESSING.
// No inventory state is touched.
func (s *OrderService) UpdateTracking(ctx context.Context, staff *domain.User, orderID, courier, trackingID string) (*domain.Order, error) {
	if staff == nil {
		return nil, domain.ErrUnauthorized
	}

	o, err := s.Orders.Get(orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != domain.StatusTrackingPending && o.Status != domain.StatusProcessing {
		return nil, &domain.InvalidTransitionError{From: o.Status, To: domain.StatusShipped}
	}

	tx, err := s.Orders.DB().BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	stamp := clock.Stamp(s.Clock)
	if err := repos.SetTracking(tx, orderID, courier, trackingID, stamp); err != nil {
		return nil, err
	}
	if trackingID != "" && courier != "" {
		if err := repos.UpdateStatus(tx, orderID, o.Status, domain.StatusShipped, stamp); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.Orders.Get(orderID)
}

func mapTimeout(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrTxTimeout
	}
	return err
}
