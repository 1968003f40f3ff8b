package repos

import (
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"kurtikart/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// DB exposes the underlying handle for services that open their own
// multi-row transactions (stock commit).
func (r *OrderRepo) DB() *sqlx.DB { return r.db }

// Pagination metadata for admin order listings.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Get loads an order with its cart lines.
func (r *OrderRepo) Get(id string) (*domain.Order, error) {
	var o domain.Order
	err := r.db.Get(&o, `
		SELECT id, COALESCE(user_id,'') AS user_id, COALESCE(phone,'') AS phone,
		       status, payment_status, payment_type, note, courier, tracking_id,
		       total_paise, COALESCE(created_at,'') AS created_at, COALESCE(updated_at,'') AS updated_at
		FROM orders WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	lines, err := r.CartLines(id)
	if err != nil {
		return nil, err
	}
	o.CartProducts = lines
	return &o, nil
}

// CartLines loads the order's lines, decoding each line's admin-side size map.
func (r *OrderRepo) CartLines(orderID string) ([]domain.CartProduct, error) {
	type row struct {
		ID        string `db:"id"`
		OrderID   string `db:"order_id"`
		KurtiCode string `db:"kurti_code"`
		SizesJSON string `db:"sizes_json"`
	}
	var rows []row
	if err := r.db.Select(&rows, `
		SELECT id, order_id, kurti_code, sizes_json
		FROM cart_products WHERE order_id = ?
		ORDER BY created_at, id
	`, orderID); err != nil {
		return nil, err
	}

	out := make([]domain.CartProduct, 0, len(rows))
	for _, x := range rows {
		sizes := map[string]int{}
		if err := json.Unmarshal([]byte(x.SizesJSON), &sizes); err != nil {
			return nil, err
		}
		out = append(out, domain.CartProduct{
			ID: x.ID, OrderID: x.OrderID, KurtiCode: x.KurtiCode, AdminSideSizes: sizes,
		})
	}
	return out, nil
}

// List returns orders matching the optional filters, newest first.
// status, orderID and phone are ANDed when non-empty.
func (r *OrderRepo) List(status domain.OrderStatus, orderID, phone string, page, pageSize int) ([]domain.Order, Pagination, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	where := `WHERE 1=1`
	args := []any{}
	if status != "" {
		where += ` AND status = ?`
		args = append(args, status)
	}
	if orderID != "" {
		where += ` AND id = ?`
		args = append(args, orderID)
	}
	if phone != "" {
		where += ` AND phone = ?`
		args = append(args, phone)
	}

	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM orders `+where, args...); err != nil {
		return nil, Pagination{}, err
	}

	var out []domain.Order
	listArgs := append(args, pageSize, (page-1)*pageSize)
	if err := r.db.Select(&out, `
		SELECT id, COALESCE(user_id,'') AS user_id, COALESCE(phone,'') AS phone,
		       status, payment_status, payment_type, note, courier, tracking_id,
		       total_paise, COALESCE(created_at,'') AS created_at, COALESCE(updated_at,'') AS updated_at
		FROM orders `+where+`
		ORDER BY datetime(created_at) DESC, id DESC
		LIMIT ? OFFSET ?
	`, listArgs...); err != nil {
		return nil, Pagination{}, err
	}

	pages := total / pageSize
	if total%pageSize != 0 {
		pages++
	}
	return out, Pagination{Page: page, PageSize: pageSize, Total: total, TotalPages: pages}, nil
}

// Create inserts an order header in PENDING. The storefront does this
// upstream with reservations already applied; it is also what tests use.
func (r *OrderRepo) Create(id, userID, phone string, total int64) error {
	_, err := r.db.Exec(`
	  INSERT INTO orders(id, user_id, phone, status, total_paise)
	  VALUES(?, ?, ?, 'PENDING', ?)
	`, id, userID, phone, total)
	return err
}

// InsertCartLine appends one line with its admin-side size map.
func (r *OrderRepo) InsertCartLine(orderID, kurtiCode string, sizes map[string]int) error {
	b, err := json.Marshal(sizes)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`
	  INSERT INTO cart_products(id, order_id, kurti_code, sizes_json)
	  VALUES(?, ?, ?, ?)
	`, uuid.NewString(), orderID, kurtiCode, string(b))
	return err
}

// UpdateStatus writes a new status. Transition legality is the service's
// responsibility; the WHERE clause re-checks the expected current status so
// a concurrent transition loses cleanly instead of double-applying.
func UpdateStatus(ext sqlx.Ext, id string, from, to domain.OrderStatus, stamp string) error {
	res, err := ext.Exec(`
		UPDATE orders SET status = ?, updated_at = ? WHERE id = ? AND status = ?
	`, to, stamp, id, from)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return &domain.InvalidTransitionError{From: from, To: to}
	}
	return nil
}

// SetPayment persists optional payment metadata captured at accept time.
func SetPayment(ext sqlx.Ext, id string, p domain.PaymentInfo) error {
	status := p.Status
	if status == "" {
		status = domain.PaymentPending
	}
	_, err := ext.Exec(`
		UPDATE orders SET payment_status = ?, payment_type = ?, note = ? WHERE id = ?
	`, status, p.Type, p.Note, id)
	return err
}

// SetTracking persists courier and tracking id.
func SetTracking(ext sqlx.Ext, id, courier, trackingID, stamp string) error {
	_, err := ext.Exec(`
		UPDATE orders SET courier = ?, tracking_id = ?, updated_at = ? WHERE id = ?
	`, courier, trackingID, stamp, id)
	return err
}
