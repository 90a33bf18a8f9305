package chancache

import (
	"strings"
)

// Permissions is a set of capability flags. Each flag is a single bit and
// the values match the platform's wire bit offsets.
type Permissions uint64

// capability flags
const (
	PermissionCreateInvite       Permissions = 1 << 0
	PermissionKickMembers        Permissions = 1 << 1
	PermissionBanMembers         Permissions = 1 << 2
	PermissionAdministrator      Permissions = 1 << 3
	PermissionManageChannels     Permissions = 1 << 4
	PermissionManageServer       Permissions = 1 << 5
	PermissionAddReactions       Permissions = 1 << 6
	PermissionViewAuditLog       Permissions = 1 << 7
	PermissionReadMessages       Permissions = 1 << 10
	PermissionSendMessages       Permissions = 1 << 11
	PermissionSendTTSMessages    Permissions = 1 << 12
	PermissionManageMessages     Permissions = 1 << 13
	PermissionEmbedLinks         Permissions = 1 << 14
	PermissionAttachFiles        Permissions = 1 << 15
	PermissionReadMessageHistory Permissions = 1 << 16
	PermissionMentionEveryone    Permissions = 1 << 17
	PermissionUseExternalEmojis  Permissions = 1 << 18
	PermissionVoiceConnect       Permissions = 1 << 20
	PermissionVoiceSpeak         Permissions = 1 << 21
	PermissionVoiceMuteMembers   Permissions = 1 << 22
	PermissionVoiceDeafenMembers Permissions = 1 << 23
	PermissionVoiceMoveMembers   Permissions = 1 << 24
	PermissionVoiceUseVAD        Permissions = 1 << 25
	PermissionChangeNickname     Permissions = 1 << 26
	PermissionManageNicknames    Permissions = 1 << 27
	PermissionManageRoles        Permissions = 1 << 28
	PermissionManageWebhooks     Permissions = 1 << 29
	PermissionManageEmojis       Permissions = 1 << 30
)

var permissionNames = []struct {
	flag Permissions
	name string
}{
	{PermissionCreateInvite, "create_invite"},
	{PermissionKickMembers, "kick_members"},
	{PermissionBanMembers, "ban_members"},
	{PermissionAdministrator, "administrator"},
	{PermissionManageChannels, "manage_channels"},
	{PermissionManageServer, "manage_server"},
	{PermissionAddReactions, "add_reactions"},
	{PermissionViewAuditLog, "view_audit_log"},
	{PermissionReadMessages, "read_messages"},
	{PermissionSendMessages, "send_messages"},
	{PermissionSendTTSMessages, "send_tts_messages"},
	{PermissionManageMessages, "manage_messages"},
	{PermissionEmbedLinks, "embed_links"},
	{PermissionAttachFiles, "attach_files"},
	{PermissionReadMessageHistory, "read_message_history"},
	{PermissionMentionEveryone, "mention_everyone"},
	{PermissionUseExternalEmojis, "use_external_emojis"},
	{PermissionVoiceConnect, "voice_connect"},
	{PermissionVoiceSpeak, "voice_speak"},
	{PermissionVoiceMuteMembers, "voice_mute_members"},
	{PermissionVoiceDeafenMembers, "voice_deafen_members"},
	{PermissionVoiceMoveMembers, "voice_move_members"},
	{PermissionVoiceUseVAD, "voice_use_vad"},
	{PermissionChangeNickname, "change_nickname"},
	{PermissionManageNicknames, "manage_nicknames"},
	{PermissionManageRoles, "manage_roles"},
	{PermissionManageWebhooks, "manage_webhooks"},
	{PermissionManageEmojis, "manage_emojis"},
}

// AllPermissions has every known capability flag granted.
var AllPermissions = func() Permissions {
	var all Permissions
	for _, p := range permissionNames {
		all |= p.flag
	}
	return all
}()

// Has reports whether every flag in want is present.
func (p Permissions) Has(want Permissions) bool {
	return p&want == want
}

// Add returns p with the flags in o granted.
func (p Permissions) Add(o Permissions) Permissions {
	return p | o
}

// Remove returns p with the flags in o revoked.
func (p Permissions) Remove(o Permissions) Permissions {
	return p &^ o
}

// Missing returns the flags of want that p does not hold.
func (p Permissions) Missing(want Permissions) Permissions {
	return want &^ p
}

// Names lists the known flag names present in p, lowest bit first.
func (p Permissions) Names() []string {
	var names []string
	for _, n := range permissionNames {
		if p&n.flag != 0 {
			names = append(names, n.name)
		}
	}
	return names
}

func (p Permissions) String() string {
	if p == 0 {
		return "none"
	}
	return strings.Join(p.Names(), "|")
}

// ParsePermission looks up a single flag by name.
func ParsePermission(name string) (Permissions, bool) {
	for _, n := range permissionNames {
		if n.name == name {
			return n.flag, true
		}
	}
	return 0, false
}
