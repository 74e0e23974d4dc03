package service

import (
	"context"
	"fmt"

	"github.com/forgo/guildhall/internal/model"
)

// CommandType names one membership operation
type CommandType string

const (
	CommandCreate      CommandType = "create"
	CommandRequestJoin CommandType = "request_join"
	CommandApprove     CommandType = "approve"
	CommandReject      CommandType = "reject"
	CommandJoin        CommandType = "join"
	CommandLeave       CommandType = "leave"
	CommandKick        CommandType = "kick"
	CommandDisband     CommandType = "disband"
	CommandRename      CommandType = "rename"
	CommandDescribe    CommandType = "describe"
	CommandAdminDelete CommandType = "admin_delete"
)

// Command is a completed intent from a host menu. Which fields matter depends
// on Type: Guild names the guild to join or delete, Target the requester or
// member acted on, Name and Description the new values.
type Command struct {
	Type        CommandType `json:"type"`
	Player      string      `json:"player"`
	Guild       string      `json:"guild,omitempty"`
	Target      string      `json:"target,omitempty"`
	Name        string      `json:"name,omitempty"`
	Description string      `json:"description,omitempty"`
}

// Dispatch runs the operation a command names
func (s *GuildService) Dispatch(ctx context.Context, cmd Command) (*model.GuildResult, error) {
	switch cmd.Type {
	case CommandCreate:
		return s.CreateGuild(ctx, &model.CreateGuildRequest{Player: cmd.Player, Name: cmd.Name, Description: cmd.Description})
	case CommandRequestJoin:
		return s.RequestJoin(ctx, cmd.Player, cmd.Guild)
	case CommandApprove:
		return s.Approve(ctx, cmd.Player, cmd.Target)
	case CommandReject:
		return s.Reject(ctx, cmd.Player, cmd.Target)
	case CommandJoin:
		return s.JoinDirect(ctx, cmd.Player, cmd.Guild)
	case CommandLeave:
		return s.Leave(ctx, cmd.Player)
	case CommandKick:
		return s.Kick(ctx, cmd.Player, cmd.Target)
	case CommandDisband:
		return s.Disband(ctx, cmd.Player)
	case CommandRename:
		return s.Rename(ctx, cmd.Player, cmd.Name)
	case CommandDescribe:
		return s.EditDescription(ctx, cmd.Player, cmd.Description)
	case CommandAdminDelete:
		return s.AdminDeleteGuild(ctx, cmd.Player, cmd.Guild)
	default:
		return nil, model.NewValidationError([]model.FieldError{{
			Field:   "type",
			Message: fmt.Sprintf("unknown command type %q", cmd.Type),
		}})
	}
}
