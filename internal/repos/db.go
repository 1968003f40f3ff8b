package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed baseline data if DB is empty (kurtis/sizes/wallets)
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	// Ensure staff users exist (idempotent; safe to run every start)
	if err := seedUsers(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Kurtis (catalogue rows; soft-deleted, never removed)
CREATE TABLE IF NOT EXISTS kurtis(
  code TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  price_paise INTEGER NOT NULL DEFAULT 0 CHECK (price_paise >= 0),
  count_of_piece INTEGER NOT NULL DEFAULT 0 CHECK (count_of_piece >= 0),
  deleted INTEGER NOT NULL DEFAULT 0,
  last_updated_at TEXT,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_kurtis_deleted ON kurtis(deleted);

-- Per-size stock, one row per (kurti, pool, size); rows always hold qty > 0.
-- pool 'available' is physical stock, 'reserved' is stock held against
-- unaccepted orders.
CREATE TABLE IF NOT EXISTS kurti_sizes(
  kurti_code TEXT NOT NULL REFERENCES kurtis(code) ON DELETE CASCADE,
  pool TEXT NOT NULL CHECK (pool IN ('available','reserved')),
  size TEXT NOT NULL,
  qty INTEGER NOT NULL CHECK (qty > 0),
  PRIMARY KEY(kurti_code, pool, size)
);
CREATE INDEX IF NOT EXISTS idx_kurti_sizes_code ON kurti_sizes(kurti_code);

-- Customer orders
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  user_id TEXT,
  phone TEXT,
  status TEXT NOT NULL DEFAULT 'PENDING'
    CHECK (status IN ('PENDING','TRACKINGPENDING','PROCESSING','SHIPPED','DELIVERED','CANCELLED')),
  payment_status TEXT NOT NULL DEFAULT 'PENDING' CHECK (payment_status IN ('PENDING','COMPLETED')),
  payment_type TEXT NOT NULL DEFAULT '',
  note TEXT NOT NULL DEFAULT '',
  courier TEXT NOT NULL DEFAULT '',
  tracking_id TEXT NOT NULL DEFAULT '',
  total_paise INTEGER NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);
CREATE INDEX IF NOT EXISTS idx_orders_phone  ON orders(phone);

-- Cart lines; sizes_json holds the admin-side size->qty map actually
-- reserved for the line. Several lines may reference the same kurti.
CREATE TABLE IF NOT EXISTS cart_products(
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  kurti_code TEXT NOT NULL REFERENCES kurtis(code) ON DELETE RESTRICT,
  sizes_json TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_cart_products_order ON cart_products(order_id);

-- Prepaid wallets & append-only history
CREATE TABLE IF NOT EXISTS wallets(
  user_id TEXT PRIMARY KEY,
  balance_paise INTEGER NOT NULL DEFAULT 0 CHECK (balance_paise >= 0)
);

CREATE TABLE IF NOT EXISTS wallet_history(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES wallets(user_id),
  amount_paise INTEGER NOT NULL CHECK (amount_paise > 0),
  type TEXT NOT NULL CHECK (type IN ('DEBIT','CREDIT')),
  sale_id TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_wallet_history_user ON wallet_history(user_id);

-- Hall/online sales settled against wallets
CREATE TABLE IF NOT EXISTS sales(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  total_paise INTEGER NOT NULL CHECK (total_paise >= 0),
  payment_status TEXT NOT NULL DEFAULT 'PENDING' CHECK (payment_status IN ('PENDING','COMPLETED')),
  invoice_path TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_sales_user ON sales(user_id);

-- Staff users & sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('USER','ADMIN')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM kurtis`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo kurtis/sizes/wallets")

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO kurtis(code,name,price_paise,count_of_piece) VALUES
	  ('KRT-0101','Anarkali Blue',129900,11),
	  ('KRT-0102','Straight Cotton Rose',89900,7),
	  ('KRT-0103','A-Line Mustard',99900,4)`)

	tx.MustExec(`INSERT INTO kurti_sizes(kurti_code,pool,size,qty) VALUES
	  ('KRT-0101','available','S',3),
	  ('KRT-0101','available','M',5),
	  ('KRT-0101','available','L',3),
	  ('KRT-0102','available','M',4),
	  ('KRT-0102','available','XL',3),
	  ('KRT-0103','available','L',4)`)

	tx.MustExec(`INSERT INTO wallets(user_id,balance_paise) VALUES
	  ('u-meera',50000),
	  ('u-asha',0)`)

	return tx.Commit()
}

// seedUsers ensures two staff USERs and one ADMIN exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Role, Hash string
	}
	mk := func(id, email, name, role, raw string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), 12)
		return u{ID: id, Email: email, Name: name, Role: role, Hash: string(h)}
	}

	users := []u{
		mk("u-meera", "meera@kurtikart.test", "Meera", "USER", "Passw0rd!"),
		mk("u-asha", "asha@kurtikart.test", "Asha", "USER", "Passw0rd!"),
		mk("u-admin", "admin@kurtikart.test", "Admin", "ADMIN", "Passw0rd!"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,email,name,password_hash,role)
			VALUES(?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Email, x.Name, x.Hash, x.Role); err != nil {
			return err
		}
	}

	return tx.Commit()
}
