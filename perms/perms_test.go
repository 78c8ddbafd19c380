package perms

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestIsStaff(t *testing.T) {
	const staffRole = "role-staff"

	cases := []struct {
		name   string
		member *discordgo.Member
		want   bool
	}{
		{"nil member", nil, false},
		{"no roles, no perms", &discordgo.Member{}, false},
		{"administrator bit", &discordgo.Member{Permissions: discordgo.PermissionAdministrator}, true},
		{"staff role", &discordgo.Member{Roles: []string{"other", staffRole}}, true},
		{"unrelated roles", &discordgo.Member{Roles: []string{"other", "another"}}, false},
	}

	for _, c := range cases {
		if got := IsStaff(c.member, staffRole); got != c.want {
			t.Fatalf("%s: IsStaff = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestIsStaffEmptyRoleID(t *testing.T) {
	// An unresolved staff role must not match members whose role list
	// happens to contain an empty string.
	member := &discordgo.Member{Roles: []string{""}}

	if IsStaff(member, "") {
		t.Fatal("empty staff role id should never grant capability")
	}
}

func TestTicketOverwrites(t *testing.T) {
	ows := TicketOverwrites("guild", "owner", "staff-role", "bot")

	if len(ows) != 4 {
		t.Fatalf("expected 4 overwrites, got %d", len(ows))
	}

	if ows[0].ID != "guild" || ows[0].Deny&discordgo.PermissionViewChannel == 0 {
		t.Fatalf("first overwrite must hide the channel from @everyone: %+v", ows[0])
	}

	for _, ow := range ows[1:] {
		if ow.Allow&discordgo.PermissionViewChannel == 0 {
			t.Fatalf("overwrite for %s must grant view", ow.ID)
		}
	}
}
