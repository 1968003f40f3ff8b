package services

import (
	"context"

	"github.com/google/uuid"

	"kurtikart/internal/clock"
	"kurtikart/internal/domain"
	applog "kurtikart/internal/log"
	"kurtikart/internal/repos"
)

// InvoiceRenderer regenerates an already-issued sale invoice after a
// deferred payment completes. Rendering is an external collaborator; the
// engine only asks for a fresh document and records where it went.
type InvoiceRenderer interface {
	Regenerate(ctx context.Context, sale *domain.Sale) (path string, err error)
}

// SettleResult is the outcome of a settlement attempt. Completed=false is a
// valid terminal outcome, not a failure: the sale stands, payment stays
// PENDING until the wallet is topped up.
type SettleResult struct {
	Completed      bool  `json:"completed"`
	AmountDeducted int64 `json:"amountDeducted"`
}

// WalletService settles sale totals against prepaid wallet balances.
// Every balance mutation writes a matching history entry in the same
// transaction, so the stored balance always equals the signed sum of the
// user's history.
type WalletService struct {
	Wallets  *repos.WalletRepo
	Sales    *repos.SaleRepo
	Clock    clock.Clock
	Invoices InvoiceRenderer // optional
}

func NewWalletService(wallets *repos.WalletRepo, sales *repos.SaleRepo, clk clock.Clock) *WalletService {
	return &WalletService{Wallets: wallets, Sales: sales, Clock: clk}
}

// SettleSale debits the sale total if the balance covers it, appending the
// DEBIT history entry and flipping the sale to COMPLETED in one transaction.
// An insufficient balance leaves everything untouched and reports
// Completed=false. Re-running against an already-COMPLETED sale is a no-op.
func (s *WalletService) SettleSale(ctx context.Context, staff *domain.User, saleID, userID string) (SettleResult, error) {
	if staff == nil {
		return SettleResult{}, domain.ErrUnauthorized
	}

	sale, err := s.Sales.Get(saleID)
	if err != nil {
		return SettleResult{}, err
	}
	if sale.UserID != userID {
		return SettleResult{}, domain.ErrSaleNotFound
	}
	if sale.PaymentStatus == domain.PaymentCompleted {
		return SettleResult{Completed: true}, nil
	}

	bal, err := s.Wallets.Balance(userID)
	if err != nil {
		return SettleResult{}, err
	}
	if bal < sale.TotalPaise {
		return SettleResult{Completed: false}, nil
	}

	tx, err := s.Wallets.DB().BeginTxx(ctx, nil)
	if err != nil {
		return SettleResult{}, err
	}
	defer func() { _ = tx.Rollback() }()

	ok, err := repos.Debit(tx, userID, sale.TotalPaise)
	if err != nil {
		return SettleResult{}, err
	}
	if !ok {
		// a concurrent debit drained the balance between read and write
		return SettleResult{Completed: false}, nil
	}
	if err := repos.AppendHistory(tx, domain.WalletHistoryEntry{
		ID:          uuid.NewString(),
		UserID:      userID,
		AmountPaise: sale.TotalPaise,
		Type:        domain.WalletDebit,
		SaleID:      saleID,
		CreatedAt:   clock.Stamp(s.Clock),
	}); err != nil {
		return SettleResult{}, err
	}
	if err := repos.SetSalePayment(tx, saleID, domain.PaymentCompleted); err != nil {
		return SettleResult{}, err
	}
	if err := tx.Commit(); err != nil {
		return SettleResult{}, err
	}

	// a previously issued invoice must now show COMPLETED
	if s.Invoices != nil && sale.InvoicePath != "" {
		sale.PaymentStatus = domain.PaymentCompleted
		if path, err := s.Invoices.Regenerate(ctx, sale); err != nil {
			applog.Warn(nil, "invoice.regenerate.fail", map[string]any{"sale": saleID, "err": err.Error()})
		} else if err := s.Sales.SetInvoicePath(saleID, path); err != nil {
			return SettleResult{}, err
		}
	}

	return SettleResult{Completed: true, AmountDeducted: sale.TotalPaise}, nil
}

// TopUp credits a wallet, creating it on first use, with the matching
// CREDIT history entry in the same transaction.
func (s *WalletService) TopUp(ctx context.Context, staff *domain.User, userID string, amount int64) error {
	if staff == nil {
		return domain.ErrUnauthorized
	}

	tx, err := s.Wallets.DB().BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := repos.Credit(tx, userID, amount); err != nil {
		return err
	}
	if err := repos.AppendHistory(tx, domain.WalletHistoryEntry{
		ID:          uuid.NewString(),
		UserID:      userID,
		AmountPaise: amount,
		Type:        domain.WalletCredit,
		CreatedAt:   clock.Stamp(s.Clock),
	}); err != nil {
		return err
	}
	return tx.Commit()
}
