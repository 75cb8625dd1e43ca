// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"github.com/SoftbearStudios/terra/server/world"
	"github.com/chewxy/math32"
	"io"
	"math/rand"
)

// BotClient is an in-process viewer that wanders the world to keep the pipeline busy.
type BotClient struct {
	ClientData
	heading    world.Angle
	speed      float32 // world units per second
	destroying bool
}

func (bot *BotClient) Bot() bool {
	return true
}

func (bot *BotClient) Close() {}

func (bot *BotClient) Data() *ClientData {
	return &bot.ClientData
}

func (bot *BotClient) Destroy() {
	if bot.destroying {
		return // In case goroutine hasn't run yet
	}

	bot.destroying = true
	hub := bot.Hub

	// Needs to go through always.
	select {
	case hub.unregister <- bot:
	default:
		go func() {
			hub.unregister <- bot
		}()
	}
}

func (bot *BotClient) Init() {
	r := getRand()
	defer poolRand(r)

	bot.heading = world.Angle(r.Float32()*2*math32.Pi - math32.Pi)
	bot.speed = bot.Hub.cfg.Server.BotSpeed * (0.5 + r.Float32())
	bot.receiveAsync(Join{Name: randomBotName(r)})
}

func (bot *BotClient) Send(out outbound) {
	defer out.Pool()

	if bot.destroying {
		return
	}

	if encodeBotMessages {
		// Discard output
		if err := json.NewEncoder(io.Discard).Encode(Message{Data: out}); err != nil {
			panic("bot test marshal: " + err.Error())
		}
	}

	if status, ok := out.(*Status); ok {
		r := getRand()
		bot.wander(r, status)
		poolRand(r)
	}
}

// wander takes a step of a random walk that is smooth in heading.
func (bot *BotClient) wander(r *rand.Rand, status *Status) {
	// Rage quit
	if prob(r, 1.0/1024) {
		bot.Destroy()
		return
	}

	bot.heading = (bot.heading + world.Angle((r.Float32()-0.5)*0.5)).Wrap()
	seconds := float32(statusPeriod.Seconds())
	bot.receiveAsync(Move{Position: status.Position.AddScaled(bot.heading.Vec2f(), bot.speed*seconds)})
}

func (bot *BotClient) receiveAsync(in inbound) {
	hub := bot.Hub

	signed := SignedInbound{Client: bot, inbound: in}

	// Cannot block hub goroutine.
	select {
	case hub.inbound <- signed:
	default:
		go func() {
			hub.inbound <- signed
		}()
	}
}
