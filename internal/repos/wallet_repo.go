package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"kurtikart/internal/domain"
)

type WalletRepo struct{ db *sqlx.DB }

func NewWalletRepo(db *sqlx.DB) *WalletRepo { return &WalletRepo{db: db} }

func (r *WalletRepo) DB() *sqlx.DB { return r.db }

// Balance returns the stored balance; a user without a wallet row has zero.
func (r *WalletRepo) Balance(userID string) (int64, error) {
	var bal int64
	err := r.db.Get(&bal, `SELECT balance_paise FROM wallets WHERE user_id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return bal, err
}

// History returns the user's audit entries, oldest first.
func (r *WalletRepo) History(userID string) ([]domain.WalletHistoryEntry, error) {
	var out []domain.WalletHistoryEntry
	err := r.db.Select(&out, `
		SELECT id, user_id, amount_paise, type, sale_id, COALESCE(created_at,'') AS created_at
		FROM wallet_history
		WHERE user_id = ?
		ORDER BY datetime(created_at), id
	`, userID)
	return out, err
}

// Debit subtracts amount inside the caller's transaction. The balance >= amount
// guard lives in the WHERE clause so a concurrent debit cannot overdraw; zero
// rows affected means the balance no longer covers the amount.
func Debit(ext sqlx.Ext, userID string, amount int64) (bool, error) {
	res, err := ext.Exec(`
		UPDATE wallets SET balance_paise = balance_paise - ?
		WHERE user_id = ? AND balance_paise >= ?
	`, amount, userID, amount)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

// Credit adds amount, creating the wallet row on first use.
func Credit(ext sqlx.Ext, userID string, amount int64) error {
	_, err := ext.Exec(`
		INSERT INTO wallets(user_id, balance_paise) VALUES(?, ?)
		ON CONFLICT(user_id) DO UPDATE SET balance_paise = balance_paise + excluded.balance_paise
	`, userID, amount)
	return err
}

// AppendHistory writes one audit row. Callers run this in the same
// transaction as the balance mutation, never separately.
func AppendHistory(ext sqlx.Ext, e domain.WalletHistoryEntry) error {
	_, err := ext.Exec(`
		INSERT INTO wallet_history(id, user_id, amount_paise, type, sale_id, created_at)
		VALUES(?, ?, ?, ?, ?, ?)
	`, e.ID, e.UserID, e.AmountPaise, e.Type, e.SaleID, e.CreatedAt)
	return err
}
