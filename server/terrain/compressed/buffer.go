// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package compressed

import "io"

// maxRun is the longest run one tuple can hold.
const maxRun = 256

// Buffer run length encodes bytes.
// Each tuple is two bytes, the value followed by count - 1.
// Reading does not modify the encoded bytes, so a Buffer can be read again after Reset.
type Buffer struct {
	buf  []byte
	off  int // Read position (tuple start)
	used int // Bytes of the current tuple already read
}

func (buffer *Buffer) Reset(buf []byte) {
	buffer.buf = buf
	buffer.off = 0
	buffer.used = 0
}

func (buffer *Buffer) writeByte(b byte) {
	buf := buffer.buf
	end := len(buf) - 2

	if end >= 0 && buf[end] == b && buf[end+1] < maxRun-1 {
		// Add 1 to count
		buf[end+1]++
	} else {
		// Start new tuple
		buf = append(buf, b, 0)
	}

	buffer.buf = buf
}

func (buffer *Buffer) Write(buf []byte) (int, error) {
	for _, b := range buf {
		buffer.writeByte(b)
	}
	return len(buf), nil
}

func (buffer *Buffer) Read(buf []byte) (int, error) {
	i := 0
	for i < len(buf) && buffer.off+1 < len(buffer.buf) {
		value := buffer.buf[buffer.off]
		count := int(buffer.buf[buffer.off+1]) + 1

		n := count - buffer.used
		if n > len(buf)-i {
			n = len(buf) - i
		}
		for end := i + n; i < end; i++ {
			buf[i] = value
		}

		buffer.used += n
		if buffer.used == count {
			buffer.off += 2
			buffer.used = 0
		}
	}

	if i == 0 && len(buf) > 0 {
		return 0, io.EOF
	}
	return i, nil
}

// Grow makes space for about n more encoded bytes.
func (buffer *Buffer) Grow(n int) {
	if cap(buffer.buf)-len(buffer.buf) < n {
		buf := make([]byte, len(buffer.buf), len(buffer.buf)+n)
		copy(buf, buffer.buf)
		buffer.buf = buf
	}
}

// Buffer returns the encoded bytes.
func (buffer *Buffer) Buffer() []byte {
	return buffer.buf
}
