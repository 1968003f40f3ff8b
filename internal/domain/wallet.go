package domain

// WalletEntryType signs a wallet history amount.
type WalletEntryType string

const (
	WalletDebit  WalletEntryType = "DEBIT"
	WalletCredit WalletEntryType = "CREDIT"
)

// Wallet is a user's prepaid balance, in paise.
//
// BalancePaise must always equal the signed sum of that user's history
// entries; every mutation writes both in the same transaction.
type Wallet struct {
	UserID       string `db:"user_id"`
	BalancePaise int64  `db:"balance_paise"`
}

// WalletHistoryEntry is one append-only audit row.
type WalletHistoryEntry struct {
	ID          string          `db:"id"`
	UserID      string          `db:"user_id"`
	AmountPaise int64           `db:"amount_paise"`
	Type        WalletEntryType `db:"type"`
	SaleID      string          `db:"sale_id"`
	CreatedAt   string          `db:"created_at"`
}

// Signed returns the entry amount with its ledger sign (debits negative).
func (e WalletHistoryEntry) Signed() int64 {
	if e.Type == WalletDebit {
		return -e.AmountPaise
	}
	return e.AmountPaise
}

// Sale is a point-of-sale record settled against a wallet. Stock for a sale
// is deducted independently of payment; PaymentStatus stays PENDING until
// the wallet covers the total.
type Sale struct {
	ID            string        `db:"id"`
	UserID        string        `db:"user_id"`
	TotalPaise    int64         `db:"total_paise"`
	PaymentStatus PaymentStatus `db:"payment_status"`
	InvoicePath   string        `db:"invoice_path"`
	CreatedAt     string        `db:"created_at"`
}
