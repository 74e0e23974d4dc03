package handler

import (
	"errors"
	"log/slog"

	"github.com/forgo/guildhall/internal/locale"
	"github.com/forgo/guildhall/internal/model"
	"github.com/forgo/guildhall/internal/service"
)

// MapServiceError converts a service error to a ProblemDetails response.
// The localized player message is attached so the host can show it without
// a second lookup.
func MapServiceError(text *locale.Localizer, err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	var problem *model.ProblemDetails
	if errors.As(err, &problem) {
		out := *problem
		if out.Message == "" {
			out.Message = describe(text, err)
		}
		return &out
	}

	var p *model.ProblemDetails
	switch kind := service.KindOf(err); {
	case errors.Is(err, service.ErrInsufficientFunds):
		p = model.NewInsufficientFundsError(err.Error())
	case kind == service.KindNotFound:
		p = model.NewNotFoundError(resourceOf(err))
	case kind == service.KindConflict:
		p = model.NewConflictError(err.Error())
	case kind == service.KindForbidden:
		p = model.NewForbiddenError(err.Error())
	case kind == service.KindInvalid:
		p = model.NewValidationError([]model.FieldError{{Field: fieldOf(err), Message: err.Error()}})
	case kind == service.KindCorruptState:
		p = model.NewCorruptStateError("")
	default:
		slog.Error("unmapped service error", slog.String("error", err.Error()))
		p = model.NewInternalError("")
	}
	p.Message = describe(text, err)
	return p
}

func describe(text *locale.Localizer, err error) string {
	if text == nil {
		return ""
	}
	return service.Describe(text, err)
}

// resourceOf names the missing thing for a NotFound error
func resourceOf(err error) string {
	switch {
	case errors.Is(err, service.ErrGuildNotFound), errors.Is(err, service.ErrNotInGuild):
		return "guild"
	case errors.Is(err, service.ErrNoSuchRequest):
		return "join request"
	case errors.Is(err, service.ErrNotAMember):
		return "member"
	case errors.Is(err, service.ErrRecipientOffline):
		return "recipient"
	case errors.Is(err, service.ErrUnknownShop):
		return "shop"
	case errors.Is(err, service.ErrUnknownItem):
		return "item"
	case errors.Is(err, service.ErrUnknownBuff):
		return "buff"
	default:
		return "resource"
	}
}

func fieldOf(err error) string {
	switch {
	case errors.Is(err, service.ErrTransferToSelf):
		return "to"
	case errors.Is(err, service.ErrTransferOutOfRange), errors.Is(err, service.ErrInvalidAmount):
		return "amount"
	case errors.Is(err, service.ErrInvalidQuantity):
		return "quantity"
	default:
		return "request"
	}
}
