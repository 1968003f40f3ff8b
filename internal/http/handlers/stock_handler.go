package handlers

import (
	"github.com/gofiber/fiber/v2"

	"kurtikart/internal/domain"
	applog "kurtikart/internal/log"
	"kurtikart/internal/repos"
	"kurtikart/internal/validate"
)

type StockHandler struct {
	Kurtis *repos.KurtiRepo
}

// GET /admin/stock
func (h *StockHandler) Page(c *fiber.Ctx) error {
	rows, err := h.Kurtis.ListStock()
	if err != nil {
		applog.Error(c, "stock.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load stock"})
	}
	return render(c, "stock", fiber.Map{"Rows": rows})
}

// GET /admin/kurtis/:code
func (h *StockHandler) Detail(c *fiber.Ctx) error {
	code, ok := validate.ID(c.Params("code"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid kurti code"})
	}
	k, err := h.Kurtis.Get(code)
	if err != nil {
		return orderError(c, "stock.get.fail", err)
	}
	return c.JSON(fiber.Map{
		"kurti":          k,
		"totalAvailable": domain.TotalQuantity(k.Sizes),
		"totalReserved":  domain.TotalQuantity(k.ReservedSizes),
	})
}
