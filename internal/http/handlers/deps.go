package handlers

import (
	"kurtikart/internal/cache"
	"kurtikart/internal/clock"
	"kurtikart/internal/config"
	"kurtikart/internal/repos"
	"kurtikart/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	OrderHandler  *OrderHandler
	WalletHandler *WalletHandler
	StockHandler  *StockHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, auth *services.AuthService, inv cache.Invalidator, clk clock.Clock) *Deps {
	kurtiRepo := repos.NewKurtiRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	walletRepo := repos.NewWalletRepo(db)
	saleRepo := repos.NewSaleRepo(db)

	resSvc := services.NewReservationService(db, inv, clk)
	orderSvc := services.NewOrderService(orderRepo, resSvc, inv, clk)
	walletSvc := services.NewWalletService(walletRepo, saleRepo, clk)

	return &Deps{
		OrderHandler:  &OrderHandler{Orders: orderSvc},
		WalletHandler: &WalletHandler{Wallet: walletSvc},
		StockHandler:  &StockHandler{Kurtis: kurtiRepo},
	}
}
