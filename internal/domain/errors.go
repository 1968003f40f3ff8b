package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrOrderNotFound = errors.New("order not found")
	ErrKurtiNotFound = errors.New("kurti not found")
	ErrSaleNotFound  = errors.New("sale not found")
	ErrTxTimeout     = errors.New("transaction timeout")
)

// InsufficientStockError aborts a stock commit: available stock for one size
// is lower than the quantity being committed. The whole multi-product
// transaction rolls back.
type InsufficientStockError struct {
	Code      string
	Size      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s size %s (available %d, requested %d)",
		e.Code, e.Size, e.Available, e.Requested)
}

// SizeNotFoundError is returned by strict-mode deductions against a size
// entry that does not exist.
type SizeNotFoundError struct {
	Code string
	Size string
}

func (e *SizeNotFoundError) Error() string {
	return fmt.Sprintf("size %s not found for %s", e.Size, e.Code)
}

// InvalidTransitionError names an illegal order status change.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order transition %s -> %s", e.From, e.To)
}
