package locale

import "github.com/nicksnyder/go-i18n/v2/i18n"

// Guild lifecycle notices
var (
	GuildCreated       = &i18n.Message{ID: "guild.created", Other: "Created guild {{.Guild}}. You are the leader."}
	RequestSent        = &i18n.Message{ID: "guild.request_sent", Other: "Sent a join request to {{.Guild}}. Wait for the leader's approval."}
	RequestReceived    = &i18n.Message{ID: "guild.request_received", Other: "{{.Player}} asked to join your guild."}
	RequestApproved    = &i18n.Message{ID: "guild.request_approved", Other: "Your request to join {{.Guild}} was approved."}
	ApprovedMember     = &i18n.Message{ID: "guild.approved_member", Other: "Approved {{.Player}}."}
	RequestRejected    = &i18n.Message{ID: "guild.request_rejected", Other: "Your request to join {{.Guild}} was rejected."}
	RejectedMember     = &i18n.Message{ID: "guild.rejected_member", Other: "Rejected the request from {{.Player}}."}
	Joined             = &i18n.Message{ID: "guild.joined", Other: "You joined {{.Guild}}."}
	MemberJoined       = &i18n.Message{ID: "guild.member_joined", Other: "{{.Player}} joined the guild."}
	Left               = &i18n.Message{ID: "guild.left", Other: "You left {{.Guild}}."}
	MemberLeft         = &i18n.Message{ID: "guild.member_left", Other: "{{.Player}} left the guild."}
	Disbanded          = &i18n.Message{ID: "guild.disbanded", Other: "Guild {{.Guild}} was disbanded."}
	Kicked             = &i18n.Message{ID: "guild.kicked", Other: "You were removed from {{.Guild}}."}
	KickedMember       = &i18n.Message{ID: "guild.kicked_member", Other: "Removed {{.Player}} from the guild."}
	Renamed            = &i18n.Message{ID: "guild.renamed", Other: "The guild is now called {{.Guild}}."}
	DescriptionUpdated = &i18n.Message{ID: "guild.description_updated", Other: "Guild description updated."}
	AdminDeleted       = &i18n.Message{ID: "guild.admin_deleted", Other: "An administrator deleted guild {{.Guild}}."}
	FeeCharged         = &i18n.Message{ID: "guild.fee_charged", Other: "{{.Amount}} was charged."}
)

// Error texts shown to the acting player
var (
	ErrAlreadyInGuild    = &i18n.Message{ID: "error.already_in_guild", Other: "You are already in guild {{.Guild}}. Leave it first."}
	ErrNameTaken         = &i18n.Message{ID: "error.name_taken", Other: "A guild with that name already exists."}
	ErrGuildNotFound     = &i18n.Message{ID: "error.guild_not_found", Other: "That guild does not exist."}
	ErrDuplicateRequest  = &i18n.Message{ID: "error.duplicate_request", Other: "You already have a pending join request."}
	ErrNotLeader         = &i18n.Message{ID: "error.not_leader", Other: "Only the guild leader can do that."}
	ErrNoSuchRequest     = &i18n.Message{ID: "error.no_such_request", Other: "There is no such join request."}
	ErrNotInGuild        = &i18n.Message{ID: "error.not_in_guild", Other: "You are not in a guild."}
	ErrCannotKickSelf    = &i18n.Message{ID: "error.cannot_kick_self", Other: "You cannot remove yourself or the leader."}
	ErrNotAMember        = &i18n.Message{ID: "error.not_a_member", Other: "That player is not in your guild."}
	ErrApprovalRequired  = &i18n.Message{ID: "error.approval_required", Other: "This server requires the leader's approval to join."}
	ErrNotAdmin          = &i18n.Message{ID: "error.not_admin", Other: "You do not have permission."}
	ErrCorruptState      = &i18n.Message{ID: "error.corrupt_state", Other: "Guild data is damaged. Ask an administrator."}
	ErrInsufficientFunds = &i18n.Message{ID: "error.insufficient_funds", Other: "You do not have enough money."}
	ErrInvalidInput      = &i18n.Message{ID: "error.invalid_input", Other: "That input is not valid."}
	ErrInternal          = &i18n.Message{ID: "error.internal", Other: "Something went wrong. Try again later."}
	ErrRecipientOffline  = &i18n.Message{ID: "error.recipient_offline", Other: "That player is not online."}
	ErrTransferToSelf    = &i18n.Message{ID: "error.transfer_to_self", Other: "You cannot send money to yourself."}
	ErrTransferRange     = &i18n.Message{ID: "error.transfer_range", Other: "Amount must be between {{.Min}} and {{.Max}}."}
	ErrUnknownShop       = &i18n.Message{ID: "error.unknown_shop", Other: "That shop does not exist."}
	ErrUnknownItem       = &i18n.Message{ID: "error.unknown_item", Other: "That item is not sold here."}
	ErrInvalidQuantity   = &i18n.Message{ID: "error.invalid_quantity", Other: "That quantity is not allowed."}
	ErrUnknownBuff       = &i18n.Message{ID: "error.unknown_buff", Other: "That buff does not exist."}
	ErrNoGuildChat       = &i18n.Message{ID: "error.no_guild_chat", Other: "You must be in a guild to use guild chat."}
)

// Economy and world notices
var (
	TransferSent     = &i18n.Message{ID: "bank.transfer_sent", Other: "Sent {{.Amount}} to {{.Player}}."}
	TransferReceived = &i18n.Message{ID: "bank.transfer_received", Other: "Received {{.Amount}} from {{.Player}}."}
	Deposited        = &i18n.Message{ID: "bank.deposited", Other: "Deposited {{.Count}} {{.Item}} for {{.Amount}}."}
	Purchased        = &i18n.Message{ID: "shop.purchased", Other: "Bought {{.Count}} {{.Item}} for {{.Amount}}."}
	BuffApplied      = &i18n.Message{ID: "buff.applied", Other: "{{.Player}} bought {{.Buff}} for the guild."}
	BlockEditDenied  = &i18n.Message{ID: "protection.denied", Other: "You cannot build or break blocks here."}
	NewbieTitle      = &i18n.Message{ID: "nametag.newbie", Other: "[ Newbie ]"}
	GuildChatTag     = &i18n.Message{ID: "chat.guild_tag", Other: "[Guild]"}
	TitleSet         = &i18n.Message{ID: "title.set", Other: "Your title is now {{.Title}}."}
	TitleCleared     = &i18n.Message{ID: "title.cleared", Other: "Your title was removed."}
)
