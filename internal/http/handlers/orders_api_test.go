package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"kurtikart/internal/cache"
	"kurtikart/internal/clock"
	"kurtikart/internal/config"
	"kurtikart/internal/http/handlers"
	"kurtikart/internal/repos"
	"kurtikart/internal/services"
)

// Minimal app over a seeded in-memory store for admin API testing.
func newAdminApp(t *testing.T) (*fiber.App, *repos.OrderRepo, *repos.UserRepo) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo}

	app := fiber.New()
	app.Use(requestid.New())

	clk := clock.Fixed{T: time.Date(2025, 11, 3, 14, 0, 0, 0, time.UTC)}
	deps := handlers.NewDeps(db, config.Config{}, authSvc, cache.Nop{}, clk)

	admin := app.Group("/admin", handlers.RequireAdmin(authSvc))
	admin.Get("/orders", deps.OrderHandler.List)
	admin.Post("/orders/:id/accept", deps.OrderHandler.Accept)
	admin.Post("/orders/:id/cancel", deps.OrderHandler.Cancel)
	admin.Post("/sales/:id/settle", deps.WalletHandler.Settle)

	return app, repos.NewOrderRepo(db), userRepo
}

func bindAdmin(t *testing.T, users *repos.UserRepo) string {
	t.Helper()
	if err := users.BindSession("sid-admin", "u-admin"); err != nil {
		t.Fatal(err)
	}
	return "sid-admin"
}

func TestOrdersAPI_RequiresAdmin(t *testing.T) {
	app, _, users := newAdminApp(t)

	// anonymous
	resp, err := app.Test(httptest.NewRequest("GET", "/admin/orders", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("want 401 for anonymous, got %d", resp.StatusCode)
	}

	// plain staff user, not admin
	if err := users.BindSession("sid-user", "u-meera"); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest("GET", "/admin/orders", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "sid-user"})
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("want 403 for non-admin, got %d", resp.StatusCode)
	}
}

func TestOrdersAPI_AcceptAndConflict(t *testing.T) {
	app, orders, users := newAdminApp(t)
	sid := bindAdmin(t, users)

	if err := orders.Create("o1", "u-meera", "9876543210", 0); err != nil {
		t.Fatal(err)
	}
	// seeded stock: KRT-0101 has available M=5
	if err := orders.InsertCartLine("o1", "KRT-0101", map[string]int{"M": 2}); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("POST", "/admin/orders/o1/accept", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("accept failed: %d %s", resp.StatusCode, b)
	}
	var got struct {
		Status string `json:"Status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Status != "TRACKINGPENDING" {
		t.Fatalf("want TRACKINGPENDING, got %s", got.Status)
	}

	// an over-committed order conflicts and changes nothing
	if err := orders.Create("o2", "u-meera", "9876543210", 0); err != nil {
		t.Fatal(err)
	}
	if err := orders.InsertCartLine("o2", "KRT-0101", map[string]int{"M": 99}); err != nil {
		t.Fatal(err)
	}
	req = httptest.NewRequest("POST", "/admin/orders/o2/accept", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("want 409 for insufficient stock, got %d", resp.StatusCode)
	}
}

func TestOrdersAPI_ListFilter(t *testing.T) {
	app, orders, users := newAdminApp(t)
	sid := bindAdmin(t, users)

	if err := orders.Create("o1", "u-meera", "9876543210", 0); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", "/admin/orders?status=PENDING", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	var body struct {
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Pagination.Total != 1 {
		t.Fatalf("want 1 pending order, got %d", body.Pagination.Total)
	}
}
