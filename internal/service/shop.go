package service

import (
	"context"

	"github.com/forgo/guildhall/internal/catalog"
	"github.com/forgo/guildhall/internal/locale"
	"github.com/forgo/guildhall/internal/model"
	"github.com/forgo/guildhall/internal/repository"
)

// ShopService sells catalog items for ledger money
type ShopService struct {
	ledger  repository.Ledger
	catalog *catalog.Catalog
	bridge  Bridge
	text    *locale.Localizer
	metrics *Metrics
}

// NewShopService creates a new shop service
func NewShopService(ledger repository.Ledger, cat *catalog.Catalog, bridge Bridge, text *locale.Localizer, metrics *Metrics) *ShopService {
	if bridge == nil {
		bridge = NopBridge{}
	}
	return &ShopService{ledger: ledger, catalog: cat, bridge: bridge, text: text, metrics: metrics}
}

// Shops lists every shop with its items
func (s *ShopService) Shops() []catalog.Shop {
	return s.catalog.Shops
}

// Shop returns one shop
func (s *ShopService) Shop(id string) (*catalog.Shop, error) {
	shop, ok := s.catalog.Shop(id)
	if !ok {
		return nil, ErrUnknownShop
	}
	return shop, nil
}

// Purchase charges price times quantity and hands over unit quantity times
// quantity of the item
func (s *ShopService) Purchase(ctx context.Context, shopID string, req *model.PurchaseRequest) (*model.PurchaseResult, error) {
	if err := requireFields(field{"player", req.Player}, field{"item", req.Item}); err != nil {
		return nil, s.fail(err)
	}
	shop, ok := s.catalog.Shop(shopID)
	if !ok {
		return nil, s.fail(ErrUnknownShop)
	}
	item, ok := shop.Item(req.Item)
	if !ok {
		return nil, s.fail(ErrUnknownItem)
	}
	if !item.AllowsQuantity(req.Quantity) {
		return nil, s.fail(ErrInvalidQuantity)
	}

	price := item.Price * int64(req.Quantity)
	bal, err := s.ledger.Debit(ctx, req.Player, price)
	if err != nil {
		return nil, s.fail(withData(err, locale.Data{"Amount": price}))
	}
	s.metrics.observeOp("purchase", nil)
	s.metrics.addMoney("shop_"+shop.ID, price)

	count := item.UnitQuantity * req.Quantity
	s.bridge.GiveItem(req.Player, Gift{Item: item.Item, Data: item.Data, Count: count})
	s.bridge.SendToPlayer(req.Player, s.text.Text(locale.Purchased, locale.Data{
		"Count":  count,
		"Item":   item.Label,
		"Amount": price,
	}))

	return &model.PurchaseResult{
		Shop:     shop.ID,
		Item:     item.ID,
		GiveItem: item.Item,
		Data:     item.Data,
		Count:    count,
		Charged:  price,
		Balance:  model.Balance{Player: req.Player, Amount: bal},
	}, nil
}

func (s *ShopService) fail(err error) error {
	s.metrics.observeOp("purchase", err)
	return err
}
