package domain

// OrderStatus is the lifecycle state of a customer order.
type OrderStatus string

const (
	StatusPending         OrderStatus = "PENDING"
	StatusTrackingPending OrderStatus = "TRACKINGPENDING"
	StatusProcessing      OrderStatus = "PROCESSING"
	StatusShipped         OrderStatus = "SHIPPED"
	StatusDelivered       OrderStatus = "DELIVERED"
	StatusCancelled       OrderStatus = "CANCELLED"
)

// PaymentStatus of an order or hall sale.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
)

var validNext = map[OrderStatus]map[OrderStatus]bool{
	StatusPending:         {StatusTrackingPending: true, StatusCancelled: true},
	StatusTrackingPending: {StatusProcessing: true, StatusShipped: true, StatusCancelled: true},
	StatusProcessing:      {StatusShipped: true, StatusCancelled: true},
	StatusShipped:         {StatusDelivered: true, StatusCancelled: true},
	StatusDelivered:       {},
	StatusCancelled:       {},
}

// CanTransition reports whether from -> to is a legal status change.
func CanTransition(from, to OrderStatus) bool {
	return validNext[from][to]
}

// Terminal reports whether s permits no further mutation of status,
// payment, or stock.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CartProduct is one order line. AdminSideSizes is the size->quantity map
// actually reserved for this line, which staff may have adjusted away from
// what the customer requested. Several lines in one order may reference the
// same kurti code; ledger mutations always work on the aggregated view.
type CartProduct struct {
	ID             string `db:"id"`
	OrderID        string `db:"order_id"`
	KurtiCode      string `db:"kurti_code"`
	AdminSideSizes map[string]int
}

// Order is a customer order with its cart lines.
type Order struct {
	ID            string        `db:"id"`
	UserID        string        `db:"user_id"`
	Phone         string        `db:"phone"`
	Status        OrderStatus   `db:"status"`
	PaymentStatus PaymentStatus `db:"payment_status"`
	PaymentType   string        `db:"payment_type"`
	Note          string        `db:"note"`
	Courier       string        `db:"courier"`
	TrackingID    string        `db:"tracking_id"`
	TotalPaise    int64         `db:"total_paise"`
	CreatedAt     string        `db:"created_at"`
	UpdatedAt     string        `db:"updated_at"`

	CartProducts []CartProduct
}

// PaymentInfo is the optional payment metadata supplied when an order is accepted.
type PaymentInfo struct {
	Type   string
	Note   string
	Status PaymentStatus
}
