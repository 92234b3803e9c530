// Copyright 2021 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package lzxd decodes the LZXD compressed bitstream format used by
// Microsoft CAB archives and XNA/XNB assets. It is a pure streaming
// decoder: callers supply successive compressed chunks and get back the
// decompressed bytes for each; container parsing, chunk framing and
// checksum verification are the caller's responsibility.
package lzxd

import (
	"fmt"

	"github.com/cosnicolaou/lzxd/internal/lzxd"
)

// WindowSize selects the sliding-window capacity an LZXD stream was
// encoded with. It must match the encoder's configuration exactly;
// there is no way to detect it from the bitstream itself.
type WindowSize int

const (
	KB32 WindowSize = iota + 1
	KB64
	KB128
	KB256
	KB512
	KB1024
	KB2048
)

func (w WindowSize) String() string {
	switch w {
	case KB32:
		return "32KB"
	case KB64:
		return "64KB"
	case KB128:
		return "128KB"
	case KB256:
		return "256KB"
	case KB512:
		return "512KB"
	case KB1024:
		return "1024KB"
	case KB2048:
		return "2048KB"
	default:
		return fmt.Sprintf("WindowSize(%d)", int(w))
	}
}

func (w WindowSize) valid() bool {
	return w >= KB32 && w <= KB2048
}

// positionSlots is the fixed table of legal LZ77 position slots for
// each window size.
var positionSlots = map[WindowSize]int{
	KB32:   30,
	KB64:   32,
	KB128:  34,
	KB256:  36,
	KB512:  38,
	KB1024: 42,
	KB2048: 50,
}

// PositionSlots returns P, the number of legal position slots for w.
func (w WindowSize) PositionSlots() int { return positionSlots[w] }

// MainAlphabetSize returns 256 + 8*P, the size of the main Huffman
// alphabet for w.
func (w WindowSize) MainAlphabetSize() int { return 256 + 8*w.PositionSlots() }

// Kind identifies the class of a StructuralError.
type Kind = lzxd.Kind

// The seven fatal error kinds a Decoder can return, re-exported from
// the internal codec so callers never need to import internal/lzxd
// themselves.
const (
	TruncatedInput      = lzxd.TruncatedInput
	InvalidBlockType    = lzxd.InvalidBlockType
	MalformedHuffman    = lzxd.MalformedHuffman
	InvalidPretreeOp    = lzxd.InvalidPretreeOp
	InvalidPositionSlot = lzxd.InvalidPositionSlot
	InvalidSymbol       = lzxd.InvalidSymbol
	OutputOverrun       = lzxd.OutputOverrun
)

// StructuralError is returned when the bitstream is syntactically
// invalid or truncated. A Decoder that has returned a StructuralError
// must not be used again.
type StructuralError = lzxd.StructuralError

// Options configures a Decoder at construction time.
type Options struct {
	e8Override *bool
}

// DecoderOption configures a Decoder via NewDecoder.
type DecoderOption func(*Options)

// WithE8Override forces E8 call-site translation on or off, overriding
// the enabled flag the stream itself carries in its first chunk. Use
// this only when a caller has independently determined (typically from
// container metadata this package never parses) that the stream's
// self-reported E8 parameters are wrong; see DESIGN.md for why the
// decoder never guesses this on its own.
func WithE8Override(enabled bool) DecoderOption {
	return func(o *Options) {
		o.e8Override = &enabled
	}
}

// Decoder is a single-owner, single-threaded LZXD stream decoder. It
// holds the sliding window, repeated-offset LRU, persistent Huffman
// length vectors and block state across calls to DecompressNext; none
// of that state may be shared across goroutines.
type Decoder struct {
	ws    WindowSize
	inner *lzxd.Decoder
}

// NewDecoder constructs a Decoder for the given window size. The window
// size must match the value the stream was encoded with.
func NewDecoder(ws WindowSize, opts ...DecoderOption) (*Decoder, error) {
	if !ws.valid() {
		return nil, fmt.Errorf("lzxd: invalid window size %d", int(ws))
	}
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return &Decoder{
		ws:    ws,
		inner: lzxd.NewDecoder(lzxd.WindowSize(ws), o.e8Override),
	}, nil
}

// DecompressNext decodes one compressed chunk, returning its
// decompressed bytes. chunkOutputSize is the number of decompressed
// bytes the caller expects back for this chunk (32 KiB for every chunk
// but possibly the last, whose true size the caller knows out of band).
// The returned slice is only valid until the next call. On error the
// Decoder is left in an undefined state and must not be reused.
func (d *Decoder) DecompressNext(chunk []byte, chunkOutputSize int) ([]byte, error) {
	return d.inner.DecompressNext(chunk, chunkOutputSize)
}
