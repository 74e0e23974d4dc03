package service

import (
	"context"

	"github.com/forgo/guildhall/internal/catalog"
	"github.com/forgo/guildhall/internal/locale"
	"github.com/forgo/guildhall/internal/model"
	"github.com/forgo/guildhall/internal/repository"
)

// BuffService sells guild-wide effects to guild leaders
type BuffService struct {
	guilds  GuildLookup
	ledger  repository.Ledger
	catalog *catalog.Catalog
	bridge  Bridge
	text    *locale.Localizer
	metrics *Metrics
}

// NewBuffService creates a new buff service
func NewBuffService(guilds GuildLookup, ledger repository.Ledger, cat *catalog.Catalog, bridge Bridge, text *locale.Localizer, metrics *Metrics) *BuffService {
	if bridge == nil {
		bridge = NopBridge{}
	}
	return &BuffService{guilds: guilds, ledger: ledger, catalog: cat, bridge: bridge, text: text, metrics: metrics}
}

// Buffs lists the purchasable buffs
func (s *BuffService) Buffs() []catalog.Buff {
	return s.catalog.Buffs
}

// Purchase debits the leader and applies the buff to every connected member
// of the leader's guild. Buying again restarts the duration; it does not stack.
func (s *BuffService) Purchase(ctx context.Context, leader, buffID string) (*model.BuffPurchaseResult, error) {
	if err := requireFields(field{"player", leader}); err != nil {
		return nil, s.fail(err)
	}
	buff, ok := s.catalog.Buff(buffID)
	if !ok {
		return nil, s.fail(ErrUnknownBuff)
	}

	name, ok, err := s.guilds.GuildOf(ctx, leader)
	if err != nil {
		return nil, s.fail(err)
	}
	if !ok {
		return nil, s.fail(ErrNotLeader)
	}
	guild, err := s.guilds.GetGuild(ctx, name)
	if err != nil {
		return nil, s.fail(err)
	}
	if !guild.IsLeader(leader) {
		return nil, s.fail(ErrNotLeader)
	}

	members, err := s.guilds.MembersOf(ctx, name)
	if err != nil {
		return nil, s.fail(err)
	}

	bal, err := s.ledger.Debit(ctx, leader, buff.Price)
	if err != nil {
		return nil, s.fail(withData(err, locale.Data{"Amount": buff.Price}))
	}
	s.metrics.observeOp("buff", nil)
	s.metrics.addMoney("buff_"+buff.ID, buff.Price)

	effect := Effect{Effect: buff.Effect, Amplifier: buff.Amplifier, DurationSeconds: buff.DurationSeconds}
	notice := s.text.Text(locale.BuffApplied, locale.Data{"Player": leader, "Buff": buff.Label})
	applied := make([]string, 0, len(members))
	for _, m := range members {
		s.bridge.ApplyEffect(m.Name, effect)
		s.bridge.SendToPlayer(m.Name, notice)
		applied = append(applied, m.Name)
	}

	return &model.BuffPurchaseResult{
		Buff:      buff.ID,
		Guild:     name,
		Charged:   buff.Price,
		AppliedTo: applied,
		Balance:   model.Balance{Player: leader, Amount: bal},
	}, nil
}

func (s *BuffService) fail(err error) error {
	s.metrics.observeOp("buff", err)
	return err
}
