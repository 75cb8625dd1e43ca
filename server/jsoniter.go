// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"errors"
	"github.com/SoftbearStudios/terra/server/world"
	jsoniter "github.com/json-iterator/go"
	"reflect"
	"strconv"
	"sync"
	"unsafe"
)

// Make sure functions get run first
var json = func() jsoniter.API {
	neverEmpty := func(pointer unsafe.Pointer) bool { return false }

	// Encoders
	jsoniter.RegisterTypeEncoderFunc(reflect.TypeOf(Message{}).String(), encodeMessage, neverEmpty)
	jsoniter.RegisterTypeEncoderFunc(reflect.TypeOf(world.ChunkCoord{}).String(), encodeChunkCoord, neverEmpty)

	// Decoders
	jsoniter.RegisterTypeDecoderFunc(reflect.TypeOf(Message{}).String(), decodeMessage)
	jsoniter.RegisterTypeDecoderFunc(reflect.TypeOf(world.ChunkCoord{}).String(), decodeChunkCoord)

	return jsoniter.Config{
		IndentionStep:                 0,
		MarshalFloatWith6Digits:       true,
		EscapeHTML:                    false,
		SortMapKeys:                   true,
		UseNumber:                     false,
		DisallowUnknownFields:         false,
		TagKey:                        "json",
		OnlyTaggedField:               false,
		ValidateJsonRawMessage:        false,
		ObjectFieldMustBeSimpleString: true,
		CaseSensitive:                 true,
	}.Froze()
}()

func encodeMessage(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	message := (*Message)(ptr)
	stream.WriteVal(message.messageJSON())
}

// Encodes world.ChunkCoord as [x,y] since clients receive hundreds of them
func encodeChunkCoord(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	coord := *(*world.ChunkCoord)(ptr)
	buf := append(stream.Buffer(), '[')
	buf = strconv.AppendInt(buf, int64(coord.X), 10)
	buf = append(buf, ',')
	buf = strconv.AppendInt(buf, int64(coord.Y), 10)
	stream.SetBuffer(append(buf, ']'))
}

func decodeChunkCoord(ptr unsafe.Pointer, iter *jsoniter.Iterator) {
	coord := (*world.ChunkCoord)(ptr)
	i := 0
	iter.ReadArrayCB(func(iter *jsoniter.Iterator) bool {
		switch i {
		case 0:
			coord.X = iter.ReadInt32()
		case 1:
			coord.Y = iter.ReadInt32()
		default:
			iter.ReportError("decode chunk coord", "more than 2 elements")
			return false
		}
		i++
		return true
	})
	if i != 2 && iter.Error == nil {
		iter.ReportError("decode chunk coord", "expected 2 elements")
	}
}

// Buffers large enough to hold most inbounds
var decodeMessagePool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, 0, 256)
		return &buf
	},
}

func decodeMessage(ptr unsafe.Pointer, topLevelIter *jsoniter.Iterator) {
	bufPtr := decodeMessagePool.Get().(*[]byte)

	// Read bytes so can read twice
	messageBytes := topLevelIter.SkipAndAppendBytes(*bufPtr)

	// Pool iterator with previous pool
	pool := topLevelIter.Pool()
	iter := pool.BorrowIterator(messageBytes)
	defer pool.ReturnIterator(iter)

	// Interface of *inbound
	var in interface{}

	// Doesn't have to read twice if type is first field
	// If type is found c is > 0
	for c := 0; c < 3; c++ {
		iter.ResetBytes(messageBytes)
		iter.ReadObjectCB(func(i *jsoniter.Iterator, field string) bool {
			switch field {
			case "type":
				if in != nil {
					i.Skip()
					return true
				}
				messageTypeBytes := i.ReadStringAsSlice()
				inboundType, ok := inboundMessageTypes[messageType(messageTypeBytes)]
				if !ok {
					inboundType = reflect.TypeOf(InvalidInbound{})
				}
				in = reflect.New(inboundType).Interface()

				if !ok {
					in.(*InvalidInbound).messageType = messageType(messageTypeBytes)
				}
				c++
			case "data":
				if c == 0 {
					i.Skip()
					return true
				}
				i.ReadVal(in)
				c++
				return false // Finished
			default:
				i.Skip()
			}
			return true
		})

		if err := iter.Error; err != nil {
			topLevelIter.Error = err
			return
		}

		// No message type
		if c == 0 {
			topLevelIter.Error = errors.New("no inbound message type")
			return
		}
	}

	// Pool messageBytes
	*bufPtr = messageBytes[:0]
	decodeMessagePool.Put(bufPtr)

	// Store data
	message := (*Message)(ptr)
	message.Data = reflect.Indirect(reflect.ValueOf(in)).Interface()
}
