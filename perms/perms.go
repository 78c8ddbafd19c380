// Package perms implements the staff-capability check and the permission
// overwrites applied to ticket channels.
package perms

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/exp/slices"
)

// ticketMemberPerms is what requesters and staff get inside a ticket
// channel.
const ticketMemberPerms = discordgo.PermissionViewChannel |
	discordgo.PermissionSendMessages |
	discordgo.PermissionReadMessageHistory |
	discordgo.PermissionAttachFiles

// IsStaff reports whether the member holds staff capability: either the
// administrator permission or the configured staff role. Checked per
// action, never cached.
func IsStaff(member *discordgo.Member, staffRoleID string) bool {
	if member == nil {
		return false
	}

	if member.Permissions&discordgo.PermissionAdministrator != 0 {
		return true
	}

	return staffRoleID != "" && slices.Contains(member.Roles, staffRoleID)
}

// StaffRoleID resolves the configured staff role name to its id in the
// guild.
func StaffRoleID(s *discordgo.Session, guildID, roleName string) (string, error) {
	roles, err := s.GuildRoles(guildID)

	if err != nil {
		return "", fmt.Errorf("error fetching guild roles: %w", err)
	}

	for _, role := range roles {
		if role.Name == roleName {
			return role.ID, nil
		}
	}

	return "", fmt.Errorf("staff role %q not found in guild %s", roleName, guildID)
}

// TicketOverwrites hides the ticket channel from the guild at large and
// grants the requester, the staff role and the bot itself access.
func TicketOverwrites(guildID, ownerID, staffRoleID, botID string) []*discordgo.PermissionOverwrite {
	return []*discordgo.PermissionOverwrite{
		{
			// @everyone shares its id with the guild
			ID:   guildID,
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		},
		{
			ID:    ownerID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: ticketMemberPerms,
		},
		{
			ID:    staffRoleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: ticketMemberPerms,
		},
		{
			ID:    botID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: ticketMemberPerms | discordgo.PermissionManageChannels,
		},
	}
}

// MemberOverwrite grants a single user access to an existing ticket
// channel.
func MemberOverwrite(s *discordgo.Session, channelID, userID string) error {
	return s.ChannelPermissionSet(channelID, userID, discordgo.PermissionOverwriteTypeMember, ticketMemberPerms, 0)
}

// RemoveMemberOverwrite revokes a user's access to a ticket channel.
func RemoveMemberOverwrite(s *discordgo.Session, channelID, userID string) error {
	return s.ChannelPermissionDelete(channelID, userID)
}
