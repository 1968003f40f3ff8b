package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"kurtikart/internal/cache"
	"kurtikart/internal/clock"
	"kurtikart/internal/domain"
	"kurtikart/internal/repos"
	"kurtikart/internal/services"
)

func memdbAll(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	schema := `
	CREATE TABLE kurtis(code TEXT PRIMARY KEY, name TEXT, price_paise INTEGER DEFAULT 0,
	  count_of_piece INTEGER DEFAULT 0, deleted INTEGER DEFAULT 0, last_updated_at TEXT, created_at TEXT);
	CREATE TABLE kurti_sizes(kurti_code TEXT, pool TEXT, size TEXT, qty INTEGER CHECK (qty > 0),
	  PRIMARY KEY(kurti_code, pool, size));
	CREATE TABLE orders(id TEXT PRIMARY KEY, user_id TEXT, phone TEXT, status TEXT DEFAULT 'PENDING',
	  payment_status TEXT DEFAULT 'PENDING', payment_type TEXT DEFAULT '', note TEXT DEFAULT '',
	  courier TEXT DEFAULT '', tracking_id TEXT DEFAULT '', total_paise INTEGER DEFAULT 0,
	  created_at TEXT DEFAULT CURRENT_TIMESTAMP, updated_at TEXT);
	CREATE TABLE cart_products(id TEXT PRIMARY KEY, order_id TEXT, kurti_code TEXT,
	  sizes_json TEXT, created_at TEXT DEFAULT CURRENT_TIMESTAMP);

	INSERT INTO kurtis(code,name,count_of_piece) VALUES ('P1','Anarkali Blue',5),('P2','A-Line Mustard',1);
	INSERT INTO kurti_sizes(kurti_code,pool,size,qty) VALUES
	  ('P1','available','M',5),
	  ('P1','reserved','M',2),
	  ('P2','available','L',1);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}
	return db
}

func newOrderService(db *sqlx.DB) (*services.OrderService, *services.ReservationService, *repos.OrderRepo) {
	clk := clock.Fixed{T: time.Date(2025, 11, 3, 14, 0, 0, 0, time.UTC)}
	orderRepo := repos.NewOrderRepo(db)
	resSvc := services.NewReservationService(db, cache.Nop{}, clk)
	return services.NewOrderService(orderRepo, resSvc, cache.Nop{}, clk), resSvc, orderRepo
}

func seedOrder(t *testing.T, orderRepo *repos.OrderRepo, id string, lines map[string]map[string]int) {
	t.Helper()
	if err := orderRepo.Create(id, "u-meera", "9876543210", 0); err != nil {
		t.Fatal(err)
	}
	for code, sizes := range lines {
		if err := orderRepo.InsertCartLine(id, code, sizes); err != nil {
			t.Fatal(err)
		}
	}
}

func poolQty(t *testing.T, db *sqlx.DB, code, pool, size string) int {
	t.Helper()
	var q int
	err := db.Get(&q, `SELECT COALESCE(SUM(qty),0) FROM kurti_sizes WHERE kurti_code=? AND pool=? AND size=?`, code, pool, size)
	if err != nil {
		t.Fatal(err)
	}
	return q
}

var staff = &domain.User{ID: "u-admin", Role: "ADMIN"}

func TestAccept_CommitsStockAndReservation(t *testing.T) {
	db := memdbAll(t)
	orderSvc, _, orderRepo := newOrderService(db)

	seedOrder(t, orderRepo, "o1", map[string]map[string]int{"P1": {"M": 2}})

	o, err := orderSvc.Accept(context.Background(), staff, "o1", nil)
	if err != nil {
		t.Fatal(err)
	}
	if o.Status != domain.StatusTrackingPending {
		t.Fatalf("want TRACKINGPENDING, got %s", o.Status)
	}
	if q := poolQty(t, db, "P1", "available", "M"); q != 3 {
		t.Fatalf("want available M=3, got %d", q)
	}
	if q := poolQty(t, db, "P1", "reserved", "M"); q != 0 {
		t.Fatalf("want reserved M gone, got %d", q)
	}
	var cop int
	if err := db.Get(&cop, `SELECT count_of_piece FROM kurtis WHERE code='P1'`); err != nil {
		t.Fatal(err)
	}
	if cop != 3 {
		t.Fatalf("want count_of_piece=3, got %d", cop)
	}
}

func TestAccept_InsufficientStockLeavesEverythingUntouched(t *testing.T) {
	db := memdbAll(t)
	orderSvc, _, orderRepo := newOrderService(db)

	seedOrder(t, orderRepo, "o1", map[string]map[string]int{"P1": {"M": 6}})

	_, err := orderSvc.Accept(context.Background(), staff, "o1", nil)
	var ins *domain.InsufficientStockError
	if !errors.As(err, &ins) {
		t.Fatalf("want InsufficientStockError, got %v", err)
	}
	if ins.Code != "P1" || ins.Size != "M" || ins.Available != 5 || ins.Requested != 6 {
		t.Fatalf("wrong error detail: %+v", ins)
	}
	if q := poolQty(t, db, "P1", "available", "M"); q != 5 {
		t.Fatalf("available stock must be unchanged, got %d", q)
	}
	if q := poolQty(t, db, "P1", "reserved", "M"); q != 2 {
		t.Fatalf("reserved stock must be unchanged, got %d", q)
	}
	o, err := orderRepo.Get("o1")
	if err != nil {
		t.Fatal(err)
	}
	if o.Status != domain.StatusPending {
		t.Fatalf("order must remain PENDING, got %s", o.Status)
	}
}

func TestAccept_MultiProductAllOrNothing(t *testing.T) {
	db := memdbAll(t)
	orderSvc, _, orderRepo := newOrderService(db)

	// P1 has plenty, P2 falls short: neither may change
	seedOrder(t, orderRepo, "o1", map[string]map[string]int{
		"P1": {"M": 2},
		"P2": {"L": 5},
	})

	_, err := orderSvc.Accept(context.Background(), staff, "o1", nil)
	var ins *domain.InsufficientStockError
	if !errors.As(err, &ins) {
		t.Fatalf("want InsufficientStockError, got %v", err)
	}
	if ins.Code != "P2" {
		t.Fatalf("want shortfall on P2, got %s", ins.Code)
	}
	if q := poolQty(t, db, "P1", "available", "M"); q != 5 {
		t.Fatalf("P1 must be rolled back, got available M=%d", q)
	}
	if q := poolQty(t, db, "P1", "reserved", "M"); q != 2 {
		t.Fatalf("P1 reservation must be rolled back, got %d", q)
	}
}

func TestAccept_AggregatesDuplicateLines(t *testing.T) {
	db := memdbAll(t)
	orderSvc, _, orderRepo := newOrderService(db)

	// two batches of the same kurti in one order
	if err := orderRepo.Create("o1", "u-meera", "9876543210", 0); err != nil {
		t.Fatal(err)
	}
	if err := orderRepo.InsertCartLine("o1", "P1", map[string]int{"M": 2}); err != nil {
		t.Fatal(err)
	}
	if err := orderRepo.InsertCartLine("o1", "P1", map[string]int{"M": 2}); err != nil {
		t.Fatal(err)
	}

	if _, err := orderSvc.Accept(context.Background(), staff, "o1", nil); err != nil {
		t.Fatal(err)
	}
	if q := poolQty(t, db, "P1", "available", "M"); q != 1 {
		t.Fatalf("want available M=1 after committing 4, got %d", q)
	}
}

func TestAccept_RequiresPendingAndStaff(t *testing.T) {
	db := memdbAll(t)
	orderSvc, _, orderRepo := newOrderService(db)

	seedOrder(t, orderRepo, "o1", map[string]map[string]int{"P1": {"M": 2}})

	if _, err := orderSvc.Accept(context.Background(), nil, "o1", nil); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}

	if _, err := orderSvc.Accept(context.Background(), staff, "o1", nil); err != nil {
		t.Fatal(err)
	}
	// second accept must refuse: order is no longer PENDING
	_, err := orderSvc.Accept(context.Background(), staff, "o1", nil)
	var tr *domain.InvalidTransitionError
	if !errors.As(err, &tr) {
		t.Fatalf("want InvalidTransitionError, got %v", err)
	}
	if tr.From != domain.StatusTrackingPending {
		t.Fatalf("wrong From in error: %+v", tr)
	}
}

func TestAccept_PersistsPaymentInfo(t *testing.T) {
	db := memdbAll(t)
	orderSvc, _, orderRepo := newOrderService(db)

	seedOrder(t, orderRepo, "o1", map[string]map[string]int{"P1": {"M": 2}})

	o, err := orderSvc.Accept(context.Background(), staff, "o1", &domain.PaymentInfo{
		Type: "UPI", Note: "paid at counter", Status: domain.PaymentCompleted,
	})
	if err != nil {
		t.Fatal(err)
	}
	if o.PaymentStatus != domain.PaymentCompleted || o.PaymentType != "UPI" {
		t.Fatalf("payment metadata not persisted: %+v", o)
	}
}

func TestCancel_ReleasesReservationOnly(t *testing.T) {
	db := memdbAll(t)
	orderSvc, resSvc, orderRepo := newOrderService(db)

	seedOrder(t, orderRepo, "o1", map[string]map[string]int{"P1": {"M": 2}})

	o, err := orderSvc.Cancel(context.Background(), staff, "o1")
	if err != nil {
		t.Fatal(err)
	}
	if o.Status != domain.StatusCancelled {
		t.Fatalf("want CANCELLED, got %s", o.Status)
	}
	if q := poolQty(t, db, "P1", "available", "M"); q != 5 {
		t.Fatalf("physical stock must be untouched, got %d", q)
	}
	if q := poolQty(t, db, "P1", "reserved", "M"); q != 0 {
		t.Fatalf("reservation must be released, got %d", q)
	}

	// releasing the same lines again is a no-op, never an error
	lines, err := orderRepo.CartLines("o1")
	if err != nil {
		t.Fatal(err)
	}
	if err := resSvc.ReleaseOrder(context.Background(), lines); err != nil {
		t.Fatal(err)
	}
	if q := poolQty(t, db, "P1", "reserved", "M"); q != 0 {
		t.Fatalf("double release must stay at zero, got %d", q)
	}
}

func TestCancel_DeliveredIsInvalid(t *testing.T) {
	db := memdbAll(t)
	orderSvc, _, orderRepo := newOrderService(db)

	seedOrder(t, orderRepo, "o1", map[string]map[string]int{"P1": {"M": 2}})
	if _, err := db.Exec(`UPDATE orders SET status='DELIVERED' WHERE id='o1'`); err != nil {
		t.Fatal(err)
	}

	_, err := orderSvc.Cancel(context.Background(), staff, "o1")
	var tr *domain.InvalidTransitionError
	if !errors.As(err, &tr) {
		t.Fatalf("want InvalidTransitionError, got %v", err)
	}
	if q := poolQty(t, db, "P1", "reserved", "M"); q != 2 {
		t.Fatalf("no state may change on invalid cancel, got reserved %d", q)
	}
}

func TestUpdateTracking_AutoShips(t *testing.T) {
	db := memdbAll(t)
	orderSvc, _, orderRepo := newOrderService(db)

	seedOrder(t, orderRepo, "o1", map[string]map[string]int{"P1": {"M": 2}})
	if _, err := orderSvc.Accept(context.Background(), staff, "o1", nil); err != nil {
		t.Fatal(err)
	}

	o, err := orderSvc.UpdateTracking(context.Background(), staff, "o1", "Delhivery", "DL-123456")
	if err != nil {
		t.Fatal(err)
	}
	if o.Status != domain.StatusShipped {
		t.Fatalf("want SHIPPED, got %s", o.Status)
	}
	if o.Courier != "Delhivery" || o.TrackingID != "DL-123456" {
		t.Fatalf("tracking not persisted: %+v", o)
	}

	// terminal and pending orders refuse tracking updates
	if _, err := orderSvc.UpdateTracking(context.Background(), staff, "o1", "Delhivery", "DL-999999"); err == nil {
		t.Fatal("tracking update on SHIPPED order must fail")
	}
}
