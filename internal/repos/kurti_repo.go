package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"kurtikart/internal/domain"
	"kurtikart/internal/ledger"
)

type KurtiRepo struct{ db *sqlx.DB }

func NewKurtiRepo(db *sqlx.DB) *KurtiRepo { return &KurtiRepo{db: db} }

// Get loads a kurti with both size pools. Soft-deleted rows are still
// returned; reservation release must keep working for them.
func (r *KurtiRepo) Get(code string) (*domain.Kurti, error) {
	var k domain.Kurti
	err := r.db.Get(&k, `
		SELECT code, name, price_paise, count_of_piece, deleted, COALESCE(last_updated_at,'') AS last_updated_at
		FROM kurtis WHERE code = ?
	`, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrKurtiNotFound
	}
	if err != nil {
		return nil, err
	}
	if k.Sizes, err = ledger.Entries(r.db, code, ledger.Available); err != nil {
		return nil, err
	}
	if k.ReservedSizes, err = ledger.Entries(r.db, code, ledger.Reserved); err != nil {
		return nil, err
	}
	return &k, nil
}

func (r *KurtiRepo) Exists(code string) (bool, error) {
	var n int
	if err := r.db.Get(&n, `SELECT COUNT(*) FROM kurtis WHERE code = ?`, code); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Row used by the admin stock page.
type StockRow struct {
	Code         string `db:"code"`
	Name         string `db:"name"`
	CountOfPiece int    `db:"count_of_piece"`
	Reserved     int    `db:"reserved"`
}

// ListStock returns stock totals per kurti (for /admin/stock).
func (r *KurtiRepo) ListStock() ([]StockRow, error) {
	var rows []StockRow
	err := r.db.Select(&rows, `
		SELECT k.code, k.name, k.count_of_piece,
		       COALESCE((SELECT SUM(s.qty) FROM kurti_sizes s
		                 WHERE s.kurti_code = k.code AND s.pool = 'reserved'), 0) AS reserved
		FROM kurtis k
		WHERE k.deleted = 0
		ORDER BY k.code
	`)
	return rows, err
}

// Touch stamps last_updated_at for downstream cache invalidation.
func Touch(ext sqlx.Ext, code, stamp string) error {
	_, err := ext.Exec(`UPDATE kurtis SET last_updated_at = ? WHERE code = ?`, stamp, code)
	return err
}

// DeductCountOfPiece lowers the denormalized piece count, floored at zero.
// The cache is opportunistic, not authoritative, so the floor is deliberate.
func DeductCountOfPiece(ext sqlx.Ext, code string, n int) error {
	_, err := ext.Exec(`
		UPDATE kurtis SET count_of_piece = MAX(0, count_of_piece - ?)
		WHERE code = ?
	`, n, code)
	return err
}
