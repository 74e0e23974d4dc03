package handler

import (
	"net/http"

	"github.com/forgo/guildhall/internal/locale"
	"github.com/forgo/guildhall/internal/model"
	"github.com/forgo/guildhall/internal/service"
)

// CommandHandler serves the hooks the host calls from inside the game:
// completed menu commands, intercepted chat and block edits.
type CommandHandler struct {
	guilds     *service.GuildService
	chat       *service.ChatRouter
	protection *service.ProtectionService
	text       *locale.Localizer
}

// CommandHandlerConfig holds the dependencies of a CommandHandler
type CommandHandlerConfig struct {
	Guilds     *service.GuildService
	Chat       *service.ChatRouter
	Protection *service.ProtectionService
	Text       *locale.Localizer
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(cfg CommandHandlerConfig) *CommandHandler {
	return &CommandHandler{
		guilds:     cfg.Guilds,
		chat:       cfg.Chat,
		protection: cfg.Protection,
		text:       cfg.Text,
	}
}

// Dispatch handles POST /v1/commands
func (h *CommandHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var cmd service.Command
	if err := DecodeJSON(r, &cmd); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	cmd.Player = actingPlayer(r, cmd.Player)
	if cmd.Player == "" {
		writePlayerRequired(w)
		return
	}

	res, err := h.guilds.Dispatch(r.Context(), cmd)
	if err != nil {
		WriteError(w, MapServiceError(h.text, err))
		return
	}
	WriteData(w, http.StatusOK, res, nil)
}

// Chat handles POST /v1/chat
func (h *CommandHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req model.ChatRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	req.Player = actingPlayer(r, req.Player)
	if req.Player == "" {
		writePlayerRequired(w)
		return
	}

	decision, err := h.chat.Route(r.Context(), req)
	if err != nil {
		WriteError(w, MapServiceError(h.text, err))
		return
	}
	WriteData(w, http.StatusOK, decision, nil)
}

// CheckBlockEdit handles POST /v1/protection/check
func (h *CommandHandler) CheckBlockEdit(w http.ResponseWriter, r *http.Request) {
	var req model.BlockEditRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}
	req.Player = actingPlayer(r, req.Player)
	if req.Player == "" {
		writePlayerRequired(w)
		return
	}
	if req.Action != "break" && req.Action != "place" {
		WriteError(w, model.NewValidationError([]model.FieldError{
			{Field: "action", Message: "action must be break or place"},
		}))
		return
	}

	WriteData(w, http.StatusOK, h.protection.CheckBlockEdit(req), nil)
}
