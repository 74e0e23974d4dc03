package service

import (
	"errors"
	"net/http"

	"github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/forgo/guildhall/internal/locale"
	"github.com/forgo/guildhall/internal/model"
	"github.com/forgo/guildhall/internal/repository"
)

// Centralized service layer errors.
// All errors returned by service methods are defined here so handlers and
// player-facing messages classify them the same way.

// ===== Guild Errors =====
var (
	ErrGuildNotFound    = errors.New("guild not found")
	ErrNameTaken        = errors.New("a guild with this name already exists")
	ErrAlreadyMember    = errors.New("player is already a member of a guild")
	ErrDuplicateRequest = errors.New("join request already pending")
	ErrNoSuchRequest    = errors.New("no such join request")
	ErrNotInGuild       = errors.New("player is not in a guild")
	ErrNotLeader        = errors.New("only the guild leader can do this")
	ErrCannotKickSelf   = errors.New("the leader cannot be kicked")
	ErrNotAMember       = errors.New("player is not a member of this guild")
	ErrApprovalRequired = errors.New("joining requires the leader's approval")
	ErrNotAdmin         = errors.New("admin permission required")
)

// ===== Economy Errors =====
var (
	ErrInsufficientFunds  = repository.ErrInsufficientFunds
	ErrInvalidAmount      = repository.ErrInvalidAmount
	ErrRecipientOffline   = errors.New("recipient is not connected")
	ErrTransferToSelf     = errors.New("cannot transfer to yourself")
	ErrTransferOutOfRange = errors.New("transfer amount out of range")
	ErrUnknownShop        = errors.New("shop not found")
	ErrUnknownItem        = errors.New("item not found")
	ErrInvalidQuantity    = errors.New("quantity not allowed")
	ErrUnknownBuff        = errors.New("buff not found")
)

// ===== Registry Errors =====
var (
	ErrCorruptState = model.ErrCorruptState
)

// Kind classifies a service error for the presentation layer
type Kind int

const (
	KindNone Kind = iota
	KindNotFound
	KindConflict
	KindForbidden
	KindInvalid
	KindCorruptState
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "ok"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	case KindInvalid:
		return "invalid"
	case KindCorruptState:
		return "corrupt_state"
	default:
		return "internal"
	}
}

// KindOf classifies err. Anything unrecognised is Internal.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}

	switch {
	// CorruptState wins over whatever the cause was
	case errors.Is(err, ErrCorruptState):
		return KindCorruptState

	case errors.Is(err, ErrGuildNotFound),
		errors.Is(err, ErrNoSuchRequest),
		errors.Is(err, ErrNotInGuild),
		errors.Is(err, ErrNotAMember),
		errors.Is(err, ErrRecipientOffline),
		errors.Is(err, ErrUnknownShop),
		errors.Is(err, ErrUnknownItem),
		errors.Is(err, ErrUnknownBuff):
		return KindNotFound

	case errors.Is(err, ErrNameTaken),
		errors.Is(err, ErrAlreadyMember),
		errors.Is(err, ErrDuplicateRequest),
		errors.Is(err, ErrInsufficientFunds):
		return KindConflict

	case errors.Is(err, ErrNotLeader),
		errors.Is(err, ErrCannotKickSelf),
		errors.Is(err, ErrApprovalRequired),
		errors.Is(err, ErrNotAdmin):
		return KindForbidden

	case errors.Is(err, ErrTransferToSelf),
		errors.Is(err, ErrTransferOutOfRange),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrInvalidAmount):
		return KindInvalid
	}

	var problem *model.ProblemDetails
	if errors.As(err, &problem) {
		switch problem.Status {
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return KindInvalid
		case http.StatusNotFound:
			return KindNotFound
		case http.StatusConflict:
			return KindConflict
		case http.StatusForbidden:
			return KindForbidden
		}
	}
	return KindInternal
}

// dataError attaches message template data to a sentinel
type dataError struct {
	err  error
	data locale.Data
}

func (e *dataError) Error() string { return e.err.Error() }
func (e *dataError) Unwrap() error { return e.err }

func withData(err error, data locale.Data) error {
	return &dataError{err: err, data: data}
}

// MessageFor returns the player-facing message for err and its template data
func MessageFor(err error) (*i18n.Message, locale.Data) {
	var data locale.Data
	var de *dataError
	if errors.As(err, &de) {
		data = de.data
	}

	switch {
	case errors.Is(err, ErrCorruptState):
		return locale.ErrCorruptState, data
	case errors.Is(err, ErrGuildNotFound):
		return locale.ErrGuildNotFound, data
	case errors.Is(err, ErrNameTaken):
		return locale.ErrNameTaken, data
	case errors.Is(err, ErrAlreadyMember):
		return locale.ErrAlreadyInGuild, data
	case errors.Is(err, ErrDuplicateRequest):
		return locale.ErrDuplicateRequest, data
	case errors.Is(err, ErrNoSuchRequest):
		return locale.ErrNoSuchRequest, data
	case errors.Is(err, ErrNotInGuild):
		return locale.ErrNotInGuild, data
	case errors.Is(err, ErrNotLeader):
		return locale.ErrNotLeader, data
	case errors.Is(err, ErrCannotKickSelf):
		return locale.ErrCannotKickSelf, data
	case errors.Is(err, ErrNotAMember):
		return locale.ErrNotAMember, data
	case errors.Is(err, ErrApprovalRequired):
		return locale.ErrApprovalRequired, data
	case errors.Is(err, ErrNotAdmin):
		return locale.ErrNotAdmin, data
	case errors.Is(err, ErrInsufficientFunds):
		return locale.ErrInsufficientFunds, data
	case errors.Is(err, ErrRecipientOffline):
		return locale.ErrRecipientOffline, data
	case errors.Is(err, ErrTransferToSelf):
		return locale.ErrTransferToSelf, data
	case errors.Is(err, ErrTransferOutOfRange):
		return locale.ErrTransferRange, data
	case errors.Is(err, ErrUnknownShop):
		return locale.ErrUnknownShop, data
	case errors.Is(err, ErrUnknownItem):
		return locale.ErrUnknownItem, data
	case errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrInvalidAmount):
		return locale.ErrInvalidQuantity, data
	case errors.Is(err, ErrUnknownBuff):
		return locale.ErrUnknownBuff, data
	}

	if KindOf(err) == KindInvalid {
		return locale.ErrInvalidInput, data
	}
	return locale.ErrInternal, data
}

// Describe renders err as player-facing text
func Describe(text *locale.Localizer, err error) string {
	msg, data := MessageFor(err)
	return text.Text(msg, data)
}
