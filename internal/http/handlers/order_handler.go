package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"kurtikart/internal/domain"
	applog "kurtikart/internal/log"
	"kurtikart/internal/services"
	"kurtikart/internal/validate"
)

type OrderHandler struct {
	Orders *services.OrderService
}

func staffUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

// orderError maps engine errors onto admin API responses. Stock and
// transition failures are conflicts, not server errors: the order and stock
// are guaranteed unchanged.
func orderError(c *fiber.Ctx, action string, err error) error {
	var ins *domain.InsufficientStockError
	var nf *domain.SizeNotFoundError
	var tr *domain.InvalidTransitionError
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "login required"})
	case errors.Is(err, domain.ErrOrderNotFound), errors.Is(err, domain.ErrKurtiNotFound), errors.Is(err, domain.ErrSaleNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &ins):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "insufficient stock",
			"kurti": ins.Code, "size": ins.Size,
			"available": ins.Available, "requested": ins.Requested,
		})
	case errors.As(err, &nf):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "size not found", "kurti": nf.Code, "size": nf.Size,
		})
	case errors.As(err, &tr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "invalid transition", "from": tr.From, "to": tr.To,
		})
	case errors.Is(err, domain.ErrTxTimeout):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "transaction timeout, retry"})
	default:
		applog.Error(c, action, err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}

// GET /admin/orders?status=&orderId=&phone=&page=&pageSize=
func (h *OrderHandler) List(c *fiber.Ctx) error {
	status := domain.OrderStatus(c.Query("status"))
	orderID := c.Query("orderId")
	phone := c.Query("phone")
	if phone != "" {
		if p, ok := validate.Phone(phone); ok {
			phone = p
		} else {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid phone filter"})
		}
	}

	orders, pg, err := h.Orders.List(status, orderID, phone,
		validate.Page(c.Query("page")), validate.PageSize(c.Query("pageSize")))
	if err != nil {
		return orderError(c, "orders.list.fail", err)
	}
	return c.JSON(fiber.Map{"orders": orders, "pagination": pg})
}

// GET /admin/orders/:id
func (h *OrderHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}
	o, err := h.Orders.Get(id)
	if err != nil {
		return orderError(c, "orders.get.fail", err)
	}
	return c.JSON(o)
}

// POST /admin/orders/:id/accept
// Optional form fields: paymentType, note, paymentStatus (PENDING|COMPLETED).
func (h *OrderHandler) Accept(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}

	var pay *domain.PaymentInfo
	if c.FormValue("paymentType") != "" || c.FormValue("paymentStatus") != "" || c.FormValue("note") != "" {
		status := domain.PaymentStatus(c.FormValue("paymentStatus"))
		if status != "" && status != domain.PaymentPending && status != domain.PaymentCompleted {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payment status"})
		}
		pay = &domain.PaymentInfo{
			Type:   c.FormValue("paymentType"),
			Note:   c.FormValue("note"),
			Status: status,
		}
	}

	o, err := h.Orders.Accept(c.Context(), staffUser(c), id, pay)
	if err != nil {
		return orderError(c, "orders.accept.fail", err)
	}
	applog.Audit(c, "orders.accept", map[string]any{"order_id": id})
	return c.JSON(o)
}

// POST /admin/orders/:id/cancel
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}
	o, err := h.Orders.Cancel(c.Context(), staffUser(c), id)
	if err != nil {
		return orderError(c, "orders.cancel.fail", err)
	}
	applog.Audit(c, "orders.cancel", map[string]any{"order_id": id})
	return c.JSON(o)
}

// POST /admin/orders/:id/tracking  (courier, trackingId)
func (h *OrderHandler) Tracking(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}
	courier, ok := validate.Courier(c.FormValue("courier"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid courier"})
	}
	trackingID, ok := validate.TrackingID(c.FormValue("trackingId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid tracking id"})
	}

	o, err := h.Orders.UpdateTracking(c.Context(), staffUser(c), id, courier, trackingID)
	if err != nil {
		return orderError(c, "orders.tracking.fail", err)
	}
	applog.Audit(c, "orders.tracking", map[string]any{"order_id": id, "tracking_id": trackingID})
	return c.JSON(o)
}
