package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/forgo/guildhall/internal/locale"
	"github.com/forgo/guildhall/internal/model"
	"github.com/forgo/guildhall/internal/repository"
)

// GuildRules are the server's membership policies
type GuildRules struct {
	RequireApproval      bool
	SinglePendingRequest bool
	MaxNameLength        int
	MaxDescriptionLength int
	CreateFee            int64
	JoinFee              int64
}

// TagRefresher re-renders name tags after membership changes
type TagRefresher interface {
	Refresh(ctx context.Context, players ...string) (int, error)
}

// GuildServiceConfig holds the dependencies of a GuildService
type GuildServiceConfig struct {
	Store     GuildStore
	Locker    repository.Locker
	Directory Directory
	Bridge    Bridge
	Ledger    repository.Ledger // nil disables fees
	Tags      TagRefresher
	Text      *locale.Localizer
	Rules     GuildRules
	Metrics   *Metrics
}

// GuildService runs the membership state machine. Every mutation is one
// load, validate, mutate, save unit under a single lock; messages, events and
// name tag refreshes go out only after the save succeeded.
type GuildService struct {
	store     GuildStore
	locker    repository.Locker
	directory Directory
	bridge    Bridge
	ledger    repository.Ledger
	tags      TagRefresher
	text      *locale.Localizer
	rules     GuildRules
	metrics   *Metrics

	mu sync.Mutex
}

// NewGuildService creates a new guild service
func NewGuildService(cfg GuildServiceConfig) *GuildService {
	if cfg.Locker == nil {
		cfg.Locker = repository.LocalLocker{}
	}
	if cfg.Bridge == nil {
		cfg.Bridge = NopBridge{}
	}
	if cfg.Rules.MaxNameLength <= 0 {
		cfg.Rules.MaxNameLength = model.DefaultMaxGuildNameLength
	}
	if cfg.Rules.MaxDescriptionLength <= 0 {
		cfg.Rules.MaxDescriptionLength = model.DefaultMaxGuildDescriptionLength
	}
	return &GuildService{
		store:     cfg.Store,
		locker:    cfg.Locker,
		directory: cfg.Directory,
		bridge:    cfg.Bridge,
		ledger:    cfg.Ledger,
		tags:      cfg.Tags,
		text:      cfg.Text,
		rules:     cfg.Rules,
		metrics:   cfg.Metrics,
	}
}

// Rules returns the membership policies in force
func (s *GuildService) Rules() GuildRules {
	return s.rules
}

type notice struct {
	player string
	msg    *i18n.Message
	data   locale.Data
}

// outcome is what a successful mutation wants done once it is saved
type outcome struct {
	actor   string
	guild   string // caller's guild afterwards
	removed string
	msg     *i18n.Message
	data    locale.Data
	notices []notice
	event   EventType
	change  GuildChange
	refresh []string
	fee     int64
	noop    bool
}

type mutation func(reg model.Registry) (*outcome, error)

// ============================================================================
// Queries
// ============================================================================

// ListGuilds returns every guild in name order
func (s *GuildService) ListGuilds(ctx context.Context) ([]model.GuildSummary, error) {
	reg, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return reg.Summaries(), nil
}

// GetGuild returns one guild by name
func (s *GuildService) GetGuild(ctx context.Context, name string) (*model.Guild, error) {
	reg, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	rec, ok := reg[strings.TrimSpace(name)]
	if !ok {
		return nil, ErrGuildNotFound
	}
	return &model.Guild{Name: strings.TrimSpace(name), GuildRecord: *rec.Clone()}, nil
}

// GuildOf returns the guild player belongs to
func (s *GuildService) GuildOf(ctx context.Context, player string) (string, bool, error) {
	reg, err := s.store.Load(ctx)
	if err != nil {
		return "", false, err
	}
	return guildOf(reg, player)
}

// MyGuild returns the guild player belongs to, or ErrNotInGuild
func (s *GuildService) MyGuild(ctx context.Context, player string) (*model.Guild, error) {
	reg, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	name, ok, err := guildOf(reg, player)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotInGuild
	}
	return &model.Guild{Name: name, GuildRecord: *reg[name].Clone()}, nil
}

// MembersOf returns the connected members of a guild in member order
func (s *GuildService) MembersOf(ctx context.Context, name string) ([]model.Player, error) {
	reg, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	rec, ok := reg[strings.TrimSpace(name)]
	if !ok {
		return nil, ErrGuildNotFound
	}
	return connectedMembers(rec, s.directory), nil
}

// PendingRequests lists the requesters waiting on the leader's guild
func (s *GuildService) PendingRequests(ctx context.Context, leader string) ([]string, error) {
	reg, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	_, rec, err := leaderGuild(reg, leader)
	if err != nil {
		return nil, err
	}
	return append([]string{}, rec.JoinRequests...), nil
}

// Snapshot returns a copy of the whole registry
func (s *GuildService) Snapshot(ctx context.Context) (model.Registry, error) {
	reg, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return reg.Clone(), nil
}

// ============================================================================
// Membership operations
// ============================================================================

// CreateGuild founds a guild with the caller as leader and only member
func (s *GuildService) CreateGuild(ctx context.Context, req *model.CreateGuildRequest) (*model.GuildResult, error) {
	if errs := req.Validate(s.rules.MaxNameLength, s.rules.MaxDescriptionLength); len(errs) > 0 {
		return nil, s.reject("create", model.NewValidationError(errs))
	}
	name := strings.TrimSpace(req.Name)

	return s.update(ctx, "create", req.Player, func(reg model.Registry) (*outcome, error) {
		if err := requireUnaffiliated(reg, req.Player); err != nil {
			return nil, err
		}
		if _, exists := reg[name]; exists {
			return nil, ErrNameTaken
		}

		reg[name] = &model.GuildRecord{
			Leader:       req.Player,
			Description:  req.Description,
			Members:      []string{req.Player},
			JoinRequests: []string{},
		}
		reg.ClearRequestsBy(req.Player)

		return &outcome{
			guild:   name,
			msg:     locale.GuildCreated,
			data:    locale.Data{"Guild": name},
			event:   EventGuildCreated,
			change:  GuildChange{Guild: name, Player: req.Player},
			refresh: []string{req.Player},
			fee:     s.rules.CreateFee,
		}, nil
	})
}

// RequestJoin queues the caller for the leader's approval
func (s *GuildService) RequestJoin(ctx context.Context, player, name string) (*model.GuildResult, error) {
	if err := requireFields(field{"player", player}, field{"guild", name}); err != nil {
		return nil, s.reject("request_join", err)
	}
	name = strings.TrimSpace(name)

	return s.update(ctx, "request_join", player, func(reg model.Registry) (*outcome, error) {
		rec, ok := reg[name]
		if !ok {
			return nil, ErrGuildNotFound
		}
		if err := requireUnaffiliated(reg, player); err != nil {
			return nil, err
		}
		if rec.HasRequest(player) {
			return nil, withData(ErrDuplicateRequest, locale.Data{"Guild": name})
		}
		if s.rules.SinglePendingRequest {
			if pending := reg.PendingGuildsOf(player); len(pending) > 0 {
				return nil, withData(ErrDuplicateRequest, locale.Data{"Guild": pending[0]})
			}
		}

		rec.JoinRequests = append(rec.JoinRequests, player)

		return &outcome{
			msg:     locale.RequestSent,
			data:    locale.Data{"Guild": name},
			notices: []notice{{player: rec.Leader, msg: locale.RequestReceived, data: locale.Data{"Player": player, "Guild": name}}},
			event:   EventGuildUpdated,
			change:  GuildChange{Guild: name, Player: player},
			fee:     s.rules.JoinFee,
		}, nil
	})
}

// Approve moves a requester into the leader's guild
func (s *GuildService) Approve(ctx context.Context, leader, requester string) (*model.GuildResult, error) {
	if err := requireFields(field{"player", leader}, field{"requester", requester}); err != nil {
		return nil, s.reject("approve", err)
	}

	return s.update(ctx, "approve", leader, func(reg model.Registry) (*outcome, error) {
		name, rec, err := leaderGuild(reg, leader)
		if err != nil {
			return nil, err
		}
		if !rec.HasRequest(requester) {
			return nil, ErrNoSuchRequest
		}
		if err := requireUnaffiliated(reg, requester); err != nil {
			return nil, err
		}

		rec.RemoveRequest(requester)
		rec.Members = append(rec.Members, requester)
		reg.ClearRequestsBy(requester)

		notices := []notice{{player: requester, msg: locale.RequestApproved, data: locale.Data{"Guild": name}}}
		notices = append(notices, s.tell(rec, locale.MemberJoined, locale.Data{"Player": requester}, leader, requester)...)

		return &outcome{
			guild:   name,
			msg:     locale.ApprovedMember,
			data:    locale.Data{"Player": requester},
			notices: notices,
			event:   EventMemberJoined,
			change:  GuildChange{Guild: name, Player: requester},
			refresh: []string{requester},
		}, nil
	})
}

// Reject drops a pending request from the leader's guild
func (s *GuildService) Reject(ctx context.Context, leader, requester string) (*model.GuildResult, error) {
	if err := requireFields(field{"player", leader}, field{"requester", requester}); err != nil {
		return nil, s.reject("reject", err)
	}

	return s.update(ctx, "reject", leader, func(reg model.Registry) (*outcome, error) {
		name, rec, err := leaderGuild(reg, leader)
		if err != nil {
			return nil, err
		}
		if !rec.RemoveRequest(requester) {
			return nil, ErrNoSuchRequest
		}

		return &outcome{
			guild:   name,
			msg:     locale.RejectedMember,
			data:    locale.Data{"Player": requester},
			notices: []notice{{player: requester, msg: locale.RequestRejected, data: locale.Data{"Guild": name}}},
			event:   EventGuildUpdated,
			change:  GuildChange{Guild: name, Player: requester},
		}, nil
	})
}

// JoinDirect adds the caller straight to a guild. Only allowed when the
// server does not require approval.
func (s *GuildService) JoinDirect(ctx context.Context, player, name string) (*model.GuildResult, error) {
	if err := requireFields(field{"player", player}, field{"guild", name}); err != nil {
		return nil, s.reject("join", err)
	}
	name = strings.TrimSpace(name)

	return s.update(ctx, "join", player, func(reg model.Registry) (*outcome, error) {
		rec, ok := reg[name]
		if !ok {
			return nil, ErrGuildNotFound
		}
		if err := requireUnaffiliated(reg, player); err != nil {
			return nil, err
		}
		if s.rules.RequireApproval {
			return nil, ErrApprovalRequired
		}

		rec.Members = append(rec.Members, player)
		reg.ClearRequestsBy(player)

		return &outcome{
			guild:   name,
			msg:     locale.Joined,
			data:    locale.Data{"Guild": name},
			notices: s.tell(rec, locale.MemberJoined, locale.Data{"Player": player}, player),
			event:   EventMemberJoined,
			change:  GuildChange{Guild: name, Player: player},
			refresh: []string{player},
			fee:     s.rules.JoinFee,
		}, nil
	})
}

// Leave removes the caller from their guild. A leader leaving deletes it.
func (s *GuildService) Leave(ctx context.Context, player string) (*model.GuildResult, error) {
	if err := requireFields(field{"player", player}); err != nil {
		return nil, s.reject("leave", err)
	}

	return s.update(ctx, "leave", player, func(reg model.Registry) (*outcome, error) {
		name, ok, err := guildOf(reg, player)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNotInGuild
		}
		rec := reg[name]

		if rec.IsLeader(player) {
			return s.deleteGuild(reg, name, player, locale.Disbanded), nil
		}

		rec.RemoveMember(player)
		return &outcome{
			msg:     locale.Left,
			data:    locale.Data{"Guild": name},
			notices: s.tell(rec, locale.MemberLeft, locale.Data{"Player": player}, player),
			event:   EventMemberLeft,
			change:  GuildChange{Guild: name, Player: player},
			refresh: []string{player},
		}, nil
	})
}

// Kick removes a non-leader member from the leader's guild
func (s *GuildService) Kick(ctx context.Context, leader, target string) (*model.GuildResult, error) {
	if err := requireFields(field{"player", leader}, field{"target", target}); err != nil {
		return nil, s.reject("kick", err)
	}

	return s.update(ctx, "kick", leader, func(reg model.Registry) (*outcome, error) {
		name, rec, err := leaderGuild(reg, leader)
		if err != nil {
			return nil, err
		}
		if target == rec.Leader {
			return nil, ErrCannotKickSelf
		}
		if !rec.RemoveMember(target) {
			return nil, ErrNotAMember
		}

		notices := []notice{{player: target, msg: locale.Kicked, data: locale.Data{"Guild": name}}}
		notices = append(notices, s.tell(rec, locale.MemberLeft, locale.Data{"Player": target}, leader)...)

		return &outcome{
			guild:   name,
			msg:     locale.KickedMember,
			data:    locale.Data{"Player": target},
			notices: notices,
			event:   EventMemberLeft,
			change:  GuildChange{Guild: name, Player: target},
			refresh: []string{target},
		}, nil
	})
}

// Disband deletes the leader's guild
func (s *GuildService) Disband(ctx context.Context, leader string) (*model.GuildResult, error) {
	if err := requireFields(field{"player", leader}); err != nil {
		return nil, s.reject("disband", err)
	}

	return s.update(ctx, "disband", leader, func(reg model.Registry) (*outcome, error) {
		name, _, err := leaderGuild(reg, leader)
		if err != nil {
			return nil, err
		}
		return s.deleteGuild(reg, name, leader, locale.Disbanded), nil
	})
}

// Rename re-keys the leader's guild. Renaming to the current name changes
// nothing.
func (s *GuildService) Rename(ctx context.Context, leader, newName string) (*model.GuildResult, error) {
	return s.updateGuild(ctx, "rename", &model.UpdateGuildRequest{Player: leader, Name: &newName})
}

// EditDescription replaces the leader's guild description
func (s *GuildService) EditDescription(ctx context.Context, leader, description string) (*model.GuildResult, error) {
	return s.updateGuild(ctx, "describe", &model.UpdateGuildRequest{Player: leader, Description: &description})
}

// UpdateGuild applies a rename and a description change in one unit
func (s *GuildService) UpdateGuild(ctx context.Context, req *model.UpdateGuildRequest) (*model.GuildResult, error) {
	return s.updateGuild(ctx, "update", req)
}

func (s *GuildService) updateGuild(ctx context.Context, op string, req *model.UpdateGuildRequest) (*model.GuildResult, error) {
	var errs []model.FieldError
	if strings.TrimSpace(req.Player) == "" {
		errs = append(errs, model.FieldError{Field: "player", Message: "player is required"})
	}
	if req.Name == nil && req.Description == nil {
		errs = append(errs, model.FieldError{Field: "name", Message: "name or description is required"})
	}
	if req.Name != nil {
		errs = append(errs, model.ValidateGuildName(*req.Name, s.rules.MaxNameLength)...)
	}
	if req.Description != nil && utf8.RuneCountInString(*req.Description) > s.rules.MaxDescriptionLength {
		errs = append(errs, model.FieldError{Field: "description", Message: "description is too long"})
	}
	if len(errs) > 0 {
		return nil, s.reject(op, model.NewValidationError(errs))
	}

	return s.update(ctx, op, req.Player, func(reg model.Registry) (*outcome, error) {
		name, rec, err := leaderGuild(reg, req.Player)
		if err != nil {
			return nil, err
		}

		out := &outcome{guild: name, noop: true, event: EventGuildUpdated, change: GuildChange{Guild: name}}

		if req.Description != nil && *req.Description != rec.Description {
			rec.Description = *req.Description
			out.noop = false
			out.msg = locale.DescriptionUpdated
		}

		if req.Name != nil {
			next := strings.TrimSpace(*req.Name)
			if next != name {
				if _, taken := reg[next]; taken {
					return nil, ErrNameTaken
				}
				reg[next] = rec
				delete(reg, name)

				out.noop = false
				out.guild = next
				out.msg = locale.Renamed
				out.data = locale.Data{"Guild": next}
				out.change = GuildChange{Guild: next, Previous: name}
				out.notices = s.tell(rec, locale.Renamed, locale.Data{"Guild": next}, req.Player)
				out.refresh = append([]string{}, rec.Members...)
			}
		}

		if out.msg == nil {
			if req.Name != nil {
				out.msg, out.data = locale.Renamed, locale.Data{"Guild": name}
			} else {
				out.msg = locale.DescriptionUpdated
			}
		}
		return out, nil
	})
}

// AdminDeleteGuild deletes any guild on behalf of a connected admin
func (s *GuildService) AdminDeleteGuild(ctx context.Context, admin, name string) (*model.GuildResult, error) {
	if err := requireFields(field{"player", admin}, field{"guild", name}); err != nil {
		return nil, s.reject("admin_delete", err)
	}
	if p, ok := s.directory.FindConnected(admin); !ok || !p.IsAdmin() {
		return nil, s.reject("admin_delete", ErrNotAdmin)
	}

	return s.update(ctx, "admin_delete", admin, func(reg model.Registry) (*outcome, error) {
		if _, ok := reg[name]; !ok {
			return nil, ErrGuildNotFound
		}
		return s.deleteGuild(reg, name, admin, locale.AdminDeleted), nil
	})
}

// deleteGuild removes a guild and tells every connected member
func (s *GuildService) deleteGuild(reg model.Registry, name, actor string, msg *i18n.Message) *outcome {
	rec := reg[name]
	delete(reg, name)

	data := locale.Data{"Guild": name}
	return &outcome{
		removed: name,
		msg:     msg,
		data:    data,
		notices: s.tell(rec, msg, data, actor),
		event:   EventGuildDeleted,
		change:  GuildChange{Guild: name, Player: actor, Members: append([]string{}, rec.Members...)},
		refresh: append([]string{}, rec.Members...),
	}
}

// ============================================================================
// Unit of work
// ============================================================================

func (s *GuildService) update(ctx context.Context, op, actor string, fn mutation) (*model.GuildResult, error) {
	out, reg, err := s.unit(ctx, actor, fn)
	s.metrics.observeOp(op, err)
	if err != nil {
		s.logFailure(op, actor, err)
		return nil, err
	}
	out.actor = actor
	s.emit(ctx, out)

	if out.fee > 0 {
		s.metrics.addMoney("guild_"+op, out.fee)
	}
	slog.Debug("guild operation",
		slog.String("op", op),
		slog.String("player", actor),
		slog.String("guild", out.guild+out.removed),
		slog.Bool("noop", out.noop),
	)
	return s.result(reg, out), nil
}

// unit runs fn against a copy of the stored registry and saves the copy. The
// stored registry is only replaced when fn and the fee debit both succeed.
func (s *GuildService) unit(ctx context.Context, actor string, fn mutation) (*outcome, model.Registry, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.locker.Lock(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer unlock()
	defer s.metrics.observeUnit(s.store.Backend(), start)

	reg, err := s.store.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	next := reg.Clone()

	out, err := fn(next)
	if err != nil {
		return nil, nil, err
	}
	if out.noop {
		out.fee = 0
		return out, reg, nil
	}

	if s.ledger == nil {
		out.fee = 0
	}
	if out.fee > 0 {
		if _, err := s.ledger.Debit(ctx, actor, out.fee); err != nil {
			if errors.Is(err, ErrInsufficientFunds) {
				return nil, nil, withData(err, locale.Data{"Amount": out.fee})
			}
			return nil, nil, err
		}
	}

	if err := s.store.Save(ctx, next); err != nil {
		if out.fee > 0 {
			s.refund(ctx, actor, out.fee)
		}
		return nil, nil, err
	}
	return out, next, nil
}

func (s *GuildService) refund(ctx context.Context, player string, amount int64) {
	if _, err := s.ledger.Credit(context.WithoutCancel(ctx), player, amount); err != nil {
		slog.Error("guild fee refund failed",
			slog.String("player", player),
			slog.Int64("amount", amount),
			slog.String("error", err.Error()),
		)
	}
}

func (s *GuildService) emit(ctx context.Context, out *outcome) {
	if out.msg != nil {
		s.bridge.SendToPlayer(out.actor, s.text.Text(out.msg, out.data))
	}
	if out.fee > 0 {
		s.bridge.SendToPlayer(out.actor, s.text.Text(locale.FeeCharged, locale.Data{"Amount": out.fee}))
	}
	for _, n := range out.notices {
		s.bridge.SendToPlayer(n.player, s.text.Text(n.msg, n.data))
	}
	if out.noop {
		return
	}
	if out.event != "" {
		s.bridge.GuildChanged(out.event, out.change)
	}
	if s.tags != nil && len(out.refresh) > 0 {
		if _, err := s.tags.Refresh(ctx, out.refresh...); err != nil {
			slog.Warn("name tag refresh failed", slog.String("error", err.Error()))
		}
	}
}

func (s *GuildService) result(reg model.Registry, out *outcome) *model.GuildResult {
	res := &model.GuildResult{
		Removed: out.removed,
		Message: s.text.Text(out.msg, out.data),
		Charged: out.fee,
	}
	if rec, ok := reg[out.guild]; ok && out.guild != "" {
		res.Guild = &model.Guild{Name: out.guild, GuildRecord: *rec.Clone()}
	}
	return res
}

// tell addresses msg to every connected member except the listed players
func (s *GuildService) tell(rec *model.GuildRecord, msg *i18n.Message, data locale.Data, except ...string) []notice {
	var out []notice
	for _, p := range connectedMembers(rec, s.directory) {
		if slices.Contains(except, p.Name) {
			continue
		}
		out = append(out, notice{player: p.Name, msg: msg, data: data})
	}
	return out
}

// reject records a failure that never reached the store
func (s *GuildService) reject(op string, err error) error {
	s.metrics.observeOp(op, err)
	return err
}

func (s *GuildService) logFailure(op, player string, err error) {
	switch KindOf(err) {
	case KindCorruptState, KindInternal:
		slog.Error("guild operation failed",
			slog.String("op", op),
			slog.String("player", player),
			slog.String("backend", s.store.Backend()),
			slog.String("error", err.Error()),
		)
	default:
		slog.Debug("guild operation refused",
			slog.String("op", op),
			slog.String("player", player),
			slog.String("error", err.Error()),
		)
	}
}

func requireUnaffiliated(reg model.Registry, player string) error {
	current, ok, err := guildOf(reg, player)
	if err != nil {
		return err
	}
	if ok {
		return withData(ErrAlreadyMember, locale.Data{"Guild": current})
	}
	return nil
}

type field struct {
	name  string
	value string
}

func requireFields(fields ...field) error {
	var errs []model.FieldError
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			errs = append(errs, model.FieldError{Field: f.name, Message: f.name + " is required"})
		}
	}
	if len(errs) > 0 {
		return model.NewValidationError(errs)
	}
	return nil
}
