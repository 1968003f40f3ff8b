package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "kurtikart/internal/log"
	"kurtikart/internal/services"
	"kurtikart/internal/validate"
)

type WalletHandler struct {
	Wallet *services.WalletService
}

// POST /admin/sales/:id/settle  (userId)
// A 200 with completed=false means the wallet did not cover the total; the
// sale stands with payment deferred. Only transport/storage problems error.
func (h *WalletHandler) Settle(c *fiber.Ctx) error {
	saleID, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid sale id"})
	}
	userID, ok := validate.ID(c.FormValue("userId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}

	res, err := h.Wallet.SettleSale(c.Context(), staffUser(c), saleID, userID)
	if err != nil {
		return orderError(c, "sales.settle.fail", err)
	}
	applog.Audit(c, "sales.settle", map[string]any{
		"sale_id": saleID, "user_id": userID, "completed": res.Completed,
	})
	return c.JSON(res)
}

// POST /admin/wallets/:userId/topup  (amount, in paise)
func (h *WalletHandler) TopUp(c *fiber.Ctx) error {
	userID, ok := validate.ID(c.Params("userId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}
	amount, ok := validate.Paise(c.FormValue("amount"))
	if !ok || amount == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid amount"})
	}

	if err := h.Wallet.TopUp(c.Context(), staffUser(c), userID, amount); err != nil {
		return orderError(c, "wallets.topup.fail", err)
	}
	applog.Audit(c, "wallets.topup", map[string]any{"user_id": userID, "amount": amount})
	return c.JSON(fiber.Map{"ok": true})
}
