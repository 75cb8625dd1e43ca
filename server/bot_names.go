// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"math/rand"
	"strings"
)

var botNames = [...]string{
	"atlas",
	"basin",
	"cartographer",
	"cove",
	"delta",
	"drifter",
	"dune",
	"estuary",
	"fjord",
	"glacier",
	"horizon",
	"isthmus",
	"lagoon",
	"mesa",
	"meridian",
	"nomad",
	"pathfinder",
	"plateau",
	"ranger",
	"ridge",
	"scout",
	"shoal",
	"surveyor",
	"tundra",
	"voyager",
	"wanderer",
}

func randomBotName(r *rand.Rand) string {
	name := botNames[r.Intn(len(botNames))]

	if prob(r, 0.1) {
		name = strings.ToUpper(name)
	} else if prob(r, 0.5) {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	return name
}
