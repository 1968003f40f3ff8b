package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"kurtikart/internal/domain"
)

type SaleRepo struct{ db *sqlx.DB }

func NewSaleRepo(db *sqlx.DB) *SaleRepo { return &SaleRepo{db: db} }

func (r *SaleRepo) Get(id string) (*domain.Sale, error) {
	var s domain.Sale
	err := r.db.Get(&s, `
		SELECT id, user_id, total_paise, payment_status, invoice_path, COALESCE(created_at,'') AS created_at
		FROM sales WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSaleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SaleRepo) Create(id, userID string, total int64) error {
	_, err := r.db.Exec(`
		INSERT INTO sales(id, user_id, total_paise, payment_status)
		VALUES(?, ?, ?, 'PENDING')
	`, id, userID, total)
	return err
}

// SetPaymentStatus flips a sale's payment state inside the settlement tx.
func SetSalePayment(ext sqlx.Ext, id string, status domain.PaymentStatus) error {
	_, err := ext.Exec(`UPDATE sales SET payment_status = ? WHERE id = ?`, status, id)
	return err
}

func (r *SaleRepo) SetInvoicePath(id, path string) error {
	_, err := r.db.Exec(`UPDATE sales SET invoice_path = ? WHERE id = ?`, path, id)
	return err
}
