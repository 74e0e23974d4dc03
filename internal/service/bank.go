package service

import (
	"context"
	"math"
	"strings"

	"github.com/forgo/guildhall/internal/catalog"
	"github.com/forgo/guildhall/internal/locale"
	"github.com/forgo/guildhall/internal/model"
	"github.com/forgo/guildhall/internal/repository"
)

// BankServiceConfig holds the dependencies of a BankService
type BankServiceConfig struct {
	Ledger      repository.Ledger
	Directory   Directory
	Bridge      Bridge
	Catalog     *catalog.Catalog
	Text        *locale.Localizer
	TransferMin int64
	TransferMax int64
	Metrics     *Metrics
}

// BankService handles balances, transfers and item deposits
type BankService struct {
	ledger    repository.Ledger
	directory Directory
	bridge    Bridge
	catalog   *catalog.Catalog
	text      *locale.Localizer
	min, max  int64
	metrics   *Metrics
}

// NewBankService creates a new bank service
func NewBankService(cfg BankServiceConfig) *BankService {
	if cfg.Bridge == nil {
		cfg.Bridge = NopBridge{}
	}
	if cfg.TransferMin <= 0 {
		cfg.TransferMin = 1
	}
	return &BankService{
		ledger:    cfg.Ledger,
		directory: cfg.Directory,
		bridge:    cfg.Bridge,
		catalog:   cfg.Catalog,
		text:      cfg.Text,
		min:       cfg.TransferMin,
		max:       cfg.TransferMax,
		metrics:   cfg.Metrics,
	}
}

// Balance returns a player's balance
func (s *BankService) Balance(ctx context.Context, player string) (*model.Balance, error) {
	if err := requireFields(field{"player", player}); err != nil {
		return nil, err
	}
	amount, err := s.ledger.Balance(ctx, player)
	if err != nil {
		return nil, err
	}
	return &model.Balance{Player: player, Amount: amount}, nil
}

// Transfer moves money to another connected player
func (s *BankService) Transfer(ctx context.Context, req *model.TransferRequest) (*model.TransferResult, error) {
	if err := requireFields(field{"from", req.From}, field{"to", req.To}); err != nil {
		return nil, s.fail("transfer", err)
	}
	to := strings.TrimSpace(req.To)
	if to == req.From {
		return nil, s.fail("transfer", ErrTransferToSelf)
	}
	if req.Amount < s.min || (s.max > 0 && req.Amount > s.max) {
		return nil, s.fail("transfer", withData(ErrTransferOutOfRange, locale.Data{"Min": s.min, "Max": s.max}))
	}
	if _, ok := s.directory.FindConnected(to); !ok {
		return nil, s.fail("transfer", withData(ErrRecipientOffline, locale.Data{"Player": to}))
	}

	fromBal, toBal, err := s.ledger.Transfer(ctx, req.From, to, req.Amount)
	if err != nil {
		return nil, s.fail("transfer", err)
	}
	s.metrics.observeOp("transfer", nil)
	s.metrics.addMoney("transfer", req.Amount)

	s.bridge.SendToPlayer(req.From, s.text.Text(locale.TransferSent, locale.Data{"Amount": req.Amount, "Player": to}))
	s.bridge.SendToPlayer(to, s.text.Text(locale.TransferReceived, locale.Data{"Amount": req.Amount, "Player": req.From}))

	return &model.TransferResult{
		From: model.Balance{Player: req.From, Amount: fromBal},
		To:   model.Balance{Player: to, Amount: toBal},
	}, nil
}

// Deposit credits the bank rate for items the host already took from the
// player's inventory
func (s *BankService) Deposit(ctx context.Context, req *model.DepositRequest) (*model.DepositResult, error) {
	if err := requireFields(field{"player", req.Player}, field{"item", req.Item}); err != nil {
		return nil, s.fail("deposit", err)
	}
	rate, ok := s.catalog.Deposit(req.Item)
	if !ok {
		return nil, s.fail("deposit", ErrUnknownItem)
	}
	if req.Quantity < 1 || int64(req.Quantity) > math.MaxInt64/rate.Rate {
		return nil, s.fail("deposit", ErrInvalidQuantity)
	}

	credited := rate.Rate * int64(req.Quantity)
	bal, err := s.ledger.Credit(ctx, req.Player, credited)
	if err != nil {
		return nil, s.fail("deposit", err)
	}
	s.metrics.observeOp("deposit", nil)
	s.metrics.addMoney("deposit", credited)

	s.bridge.SendToPlayer(req.Player, s.text.Text(locale.Deposited, locale.Data{
		"Count":  req.Quantity,
		"Item":   rate.Label,
		"Amount": credited,
	}))

	return &model.DepositResult{
		Credited: credited,
		Balance:  model.Balance{Player: req.Player, Amount: bal},
	}, nil
}

func (s *BankService) fail(op string, err error) error {
	s.metrics.observeOp(op, err)
	return err
}
