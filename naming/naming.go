// Package naming builds channel-safe names for ticket channels.
package naming

import (
	"strconv"
	"strings"
)

// Slugify lowercases text, drops every rune outside [a-z0-9 _-], trims the
// result and collapses whitespace runs into single dashes. An empty input
// yields an empty slug.
func Slugify(text string) string {
	lowered := strings.ToLower(text)

	var b strings.Builder

	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ', r == '_', r == '-':
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), "-")
}

// ChannelName builds the channel name for a new ticket:
// slug(category)-slug(displayName), with slug(nickname) appended only when
// it differs from the display name's slug. If the candidate collides with
// a name already taken, numeric suffixes -1, -2, ... are probed in order
// until a free name is found.
func ChannelName(category, displayName, nickname string, taken func(string) bool) string {
	parts := make([]string, 0, 3)

	for _, p := range []string{Slugify(category), Slugify(displayName)} {
		if p != "" {
			parts = append(parts, p)
		}
	}

	if nick := Slugify(nickname); nick != "" && nick != Slugify(displayName) {
		parts = append(parts, nick)
	}

	base := strings.Join(parts, "-")

	name := base

	for n := 1; taken(name); n++ {
		name = base + "-" + strconv.Itoa(n)
	}

	return name
}
