// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"github.com/SoftbearStudios/terra/server/world"
	"github.com/finnbear/moderation"
	"log"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Make sure to register in init function
type (
	// InvalidInbound means invalid message type from client (possibly out of date).
	// NOTE: Do not register, otherwise client could send type "invalidInbound"
	InvalidInbound struct {
		messageType messageType
	}

	// Join names the viewer and starts streaming.
	Join struct {
		Name string `json:"name"`
	}

	// Move sets the viewer's position.
	Move struct {
		Position world.Vec2f `json:"position"`
	}
)

func init() {
	registerInbound(
		Join{},
		Move{},
	)
}

var reservedNames = [...]string{
	"admin",
	"administrator",
	"console",
	"dev",
	"developer",
	"mod",
	"moderator",
	"owner",
	"root",
	"server",
	"staff",
	"system",
}

func (data Join) Process(_ *Hub, client Client, viewer *Viewer) {
	name, ok := sanitize(data.Name, true, viewerNameLengthMin, viewerNameLengthMax)
	if !ok {
		return
	}

	lower := strings.ToLower(name)
	for _, reservedName := range reservedNames {
		if lower == reservedName {
			log.Println("blocked reserved name", name)
			return
		}
	}

	viewer.Name = name
	if !viewer.Joined {
		viewer.Joined = true
		if !client.Bot() {
			log.Println("viewer joined:", viewer)
		}
	}
}

func (data Move) Process(_ *Hub, _ Client, viewer *Viewer) {
	if !viewer.Joined || !data.Position.Finite() {
		return
	}
	viewer.Position = data.Position
}

func (data InvalidInbound) Process(_ *Hub, _ Client, _ *Viewer) {}

func trimUtf8(in string, low, high int) (str string, ok bool) {
	if !utf8.ValidString(in) {
		return "", false
	}

	// Remove spaces
	str = strings.TrimSpace(in)
	str = strings.TrimFunc(str, func(r rune) bool {
		// NOTE: The following characters are not detected by
		// unicode.IsSpace() but show up as blank

		// https://www.compart.com/en/unicode/U+2800
		// https://www.compart.com/en/unicode/U+200B
		return r == 0x2800 || r == 0x200B
	})

	// Too long but can resize down
	if len(str) > high {
		var builder strings.Builder
		for _, r := range str {
			if builder.Len()+utf8.RuneLen(r) > high {
				break
			}
			builder.WriteRune(r)
		}
		str = builder.String()
	}

	// Too short
	if len(str) < low {
		return "", false
	}
	ok = true
	return
}

func sanitize(text string, name bool, low, high int) (string, bool) {
	if name {
		// Remove these characters
		// Brackets are used in formatting
		// * is used for censoring
		const removals = "()[]{}*"
		for i := 0; i < len(removals); i++ {
			text = strings.ReplaceAll(text, removals[i:i+1], "")
		}
	}

	text = strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || unicode.IsGraphic(r) {
			return r
		}
		return -1
	}, text)

	text, ok := trimUtf8(text, low, high)
	if !ok {
		return "", false
	}

	if name {
		// Censor name
		result := moderation.Scan(text)

		if result.Is(moderation.Inappropriate) {
			if result.Is(moderation.Inappropriate & moderation.Moderate) {
				return "", false
			}
			text, _ = moderation.Censor(text, moderation.Inappropriate)
		}
	}

	return text, true
}
