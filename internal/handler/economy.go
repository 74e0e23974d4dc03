package handler

import (
	"net/http"

	"github.com/forgo/guildhall/internal/locale"
	"github.com/forgo/guildhall/internal/model"
	"github.com/forgo/guildhall/internal/service"
)

// EconomyHandler handles the bank, NPC shops and guild buffs
type EconomyHandler struct {
	bank  *service.BankService
	shops *service.ShopService
	buffs *service.BuffService
	text  *locale.Localizer
}

// EconomyHandlerConfig holds the dependencies of an EconomyHandler
type EconomyHandlerConfig struct {
	Bank  *service.BankService
	Shops *service.ShopService
	Buffs *service.BuffService
	Text  *locale.Localizer
}

// NewEconomyHandler creates a new economy handler
func NewEconomyHandler(cfg EconomyHandlerConfig) *EconomyHandler {
	return &EconomyHandler{bank: cfg.Bank, shops: cfg.Shops, buffs: cfg.Buffs, text: cfg.Text}
}

// Balance handles GET /v1/bank/{player}
func (h *EconomyHandler) Balance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.bank.Balance(r.Context(), r.PathValue("player"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	WriteData(w, http.StatusOK, balance, nil)
}

// Transfer handles POST /v1/bank/transfer
func (h *EconomyHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req model.TransferRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	req.From = actingPlayer(r, req.From)

	res, err := h.bank.Transfer(r.Context(), &req)
	if err != nil {
		h.handleError(w, err)
		return
	}
	WriteData(w, http.StatusOK, res, nil)
}

// Deposit handles POST /v1/bank/deposit
func (h *EconomyHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req model.DepositRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	req.Player = actingPlayer(r, req.Player)

	res, err := h.bank.Deposit(r.Context(), &req)
	if err != nil {
		h.handleError(w, err)
		return
	}
	WriteData(w, http.StatusOK, res, nil)
}

// ListShops handles GET /v1/shops
func (h *EconomyHandler) ListShops(w http.ResponseWriter, r *http.Request) {
	shops := h.shops.Shops()
	WriteCollection(w, http.StatusOK, shops, len(shops), nil)
}

// GetShop handles GET /v1/shops/{shop}
func (h *EconomyHandler) GetShop(w http.ResponseWriter, r *http.Request) {
	shop, err := h.shops.Shop(r.PathValue("shop"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	WriteData(w, http.StatusOK, shop, nil)
}

// Purchase handles POST /v1/shops/{shop}/purchase
func (h *EconomyHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req model.PurchaseRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	req.Player = actingPlayer(r, req.Player)
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	res, err := h.shops.Purchase(r.Context(), r.PathValue("shop"), &req)
	if err != nil {
		h.handleError(w, err)
		return
	}
	WriteData(w, http.StatusOK, res, nil)
}

// ListBuffs handles GET /v1/buffs
func (h *EconomyHandler) ListBuffs(w http.ResponseWriter, r *http.Request) {
	buffs := h.buffs.Buffs()
	WriteCollection(w, http.StatusOK, buffs, len(buffs), nil)
}

// PurchaseBuff handles POST /v1/buffs/{buff}/purchase
func (h *EconomyHandler) PurchaseBuff(w http.ResponseWriter, r *http.Request) {
	var req model.PlayerRequest
	if err := decodeOptional(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	leader := actingPlayer(r, req.Player)
	if leader == "" {
		writePlayerRequired(w)
		return
	}

	res, err := h.buffs.Purchase(r.Context(), leader, r.PathValue("buff"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	WriteData(w, http.StatusOK, res, nil)
}

func (h *EconomyHandler) handleError(w http.ResponseWriter, err error) {
	WriteError(w, MapServiceError(h.text, err))
}
