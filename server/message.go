// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"reflect"
	"strings"
)

// Every websocket frame is one envelope, {"type": ..., "data": ...}. The type
// is the Go type name with a lowercase first letter:
//
//	join        {"name": "alice"}                   client to server
//	move        {"position": {"x": 0, "y": 0}}      client to server
//	chunkUpdate {"ready": [...], "shown": [[x, y]]} server to client
//	status      {"viewerID": ..., "chunks": 9}      server to client
var (
	// Inbound types by their envelope type, for decoding.
	inboundMessageTypes = make(map[messageType]reflect.Type)
	// Envelope types of outbounds, for encoding.
	outboundMessageTypes = make(map[reflect.Type]messageType)
)

type (
	// inbound is a client request such as Join or Move.
	inbound interface {
		// Process runs on the hub goroutine.
		Process(hub *Hub, client Client, viewer *Viewer)
	}

	// outbound is sent to a client, such as ChunkUpdate or Status.
	outbound interface {
		// Pool returns the contents of outbound to their sync.Pool
		Pool()
	}

	// Message wraps an inbound or outbound for the envelope codec.
	Message struct {
		Data interface{}
	}

	messageJSON struct {
		Data interface{} `json:"data"`
		Type messageType `json:"type"`
	}

	messageType string

	// SignedInbound is an inbound tagged with the client that sent it.
	SignedInbound struct {
		Client Client
		inbound
	}
)

// typeOf names v's underlying struct type, Join becoming "join".
func typeOf(v interface{}) (reflect.Type, messageType) {
	typ := reflect.TypeOf(v)
	name := typ.Name()
	if typ.Kind() == reflect.Ptr {
		name = typ.Elem().Name()
	}
	return typ, messageType(strings.ToLower(name[:1]) + name[1:])
}

func registerInbound(inbounds ...inbound) {
	for _, in := range inbounds {
		typ, m := typeOf(in)
		inboundMessageTypes[m] = typ
	}
}

func registerOutbound(outbounds ...outbound) {
	for _, out := range outbounds {
		typ, m := typeOf(out)
		outboundMessageTypes[typ] = m
	}
}

func (message Message) messageJSON() messageJSON {
	typ := reflect.TypeOf(message.Data)
	mType, ok := outboundMessageTypes[typ]
	if !ok {
		// Outbounds are built by the server, so this is a bug
		panic("invalid outbound message type " + typ.String())
	}
	return messageJSON{Data: message.Data, Type: mType}
}

// Overridden by jsoniter
func (message Message) MarshalJSON() ([]byte, error) {
	panic("unimplemented")
}

// Overridden by jsoniter
func (message *Message) UnmarshalJSON([]byte) error {
	panic("unimplemented")
}
