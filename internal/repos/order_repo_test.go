package repos_test

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"kurtikart/internal/domain"
	"kurtikart/internal/repos"
)

func orderdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	schema := `
	CREATE TABLE orders(id TEXT PRIMARY KEY, user_id TEXT, phone TEXT, status TEXT DEFAULT 'PENDING',
	  payment_status TEXT DEFAULT 'PENDING', payment_type TEXT DEFAULT '', note TEXT DEFAULT '',
	  courier TEXT DEFAULT '', tracking_id TEXT DEFAULT '', total_paise INTEGER DEFAULT 0,
	  created_at TEXT DEFAULT CURRENT_TIMESTAMP, updated_at TEXT);
	CREATE TABLE cart_products(id TEXT PRIMARY KEY, order_id TEXT, kurti_code TEXT,
	  sizes_json TEXT, created_at TEXT DEFAULT CURRENT_TIMESTAMP);

	INSERT INTO orders(id, phone, status, created_at) VALUES
	  ('o1','9876543210','PENDING','2025-11-01 10:00:00'),
	  ('o2','9876543210','CANCELLED','2025-11-01 11:00:00'),
	  ('o3','9000000001','PENDING','2025-11-01 12:00:00'),
	  ('o4','9000000002','SHIPPED','2025-11-01 13:00:00'),
	  ('o5','9000000003','PENDING','2025-11-01 14:00:00');
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestList_StatusAndPhoneFilters(t *testing.T) {
	r := repos.NewOrderRepo(orderdb(t))

	orders, pg, err := r.List(domain.StatusPending, "", "", 1, 20)
	if err != nil {
		t.Fatal(err)
	}
	if pg.Total != 3 || len(orders) != 3 {
		t.Fatalf("want 3 pending orders, got %d (total %d)", len(orders), pg.Total)
	}
	// newest first
	if orders[0].ID != "o5" {
		t.Fatalf("want o5 first, got %s", orders[0].ID)
	}

	orders, _, err = r.List("", "", "9876543210", 1, 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 2 {
		t.Fatalf("want 2 orders for phone, got %d", len(orders))
	}

	orders, _, err = r.List(domain.StatusPending, "o3", "", 1, 20)
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 1 || orders[0].ID != "o3" {
		t.Fatalf("id filter broken: %+v", orders)
	}
}

func TestList_Pagination(t *testing.T) {
	r := repos.NewOrderRepo(orderdb(t))

	orders, pg, err := r.List("", "", "", 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 2 || pg.Total != 5 || pg.TotalPages != 3 {
		t.Fatalf("bad page 1: len=%d pg=%+v", len(orders), pg)
	}

	orders, pg, err = r.List("", "", "", 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 1 || pg.Page != 3 {
		t.Fatalf("bad page 3: len=%d pg=%+v", len(orders), pg)
	}
}

func TestGet_LoadsCartLines(t *testing.T) {
	r := repos.NewOrderRepo(orderdb(t))

	if err := r.InsertCartLine("o1", "P1", map[string]int{"M": 2, "L": 1}); err != nil {
		t.Fatal(err)
	}
	if err := r.InsertCartLine("o1", "P1", map[string]int{"M": 3}); err != nil {
		t.Fatal(err)
	}

	o, err := r.Get("o1")
	if err != nil {
		t.Fatal(err)
	}
	if len(o.CartProducts) != 2 {
		t.Fatalf("want 2 cart lines, got %d", len(o.CartProducts))
	}
	if o.CartProducts[0].AdminSideSizes["M"] != 2 {
		t.Fatalf("size map not decoded: %+v", o.CartProducts[0])
	}

	if _, err := r.Get("missing"); err != domain.ErrOrderNotFound {
		t.Fatalf("want ErrOrderNotFound, got %v", err)
	}
}
