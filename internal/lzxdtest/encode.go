// Copyright 2021 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package lzxdtest

import (
	"fmt"

	"github.com/cosnicolaou/lzxd"
)

// There is no system lzxd encoder to shell out to for test fixtures, so
// this file is a small from-scratch bitstream writer instead. It only
// emits verbatim blocks and is deliberately not a general-purpose
// encoder: just enough of the wire format to drive the decoder's full
// read path in tests.

// pretreeSymbols and numLengthSymbols mirror the wire-format constants
// in internal/lzxd; they are small, format-defined numbers (not
// decoding logic) and are duplicated here rather than exported from
// internal/lzxd, which callers outside the lzxd tree should not depend
// on for anything but these two fixed counts.
const (
	pretreeSymbols   = 20
	numLengthSymbols = 249
)

// bitWriter accumulates individual bits MSB-first and packs them into
// 16-bit little-endian code units on demand, the inverse of the
// decoder's bit reader: each run of 16 bits is split into two bytes
// (first 8 bits packed MSB-first into the high byte, next 8 into the
// low byte) and emitted low byte first.
type bitWriter struct{ bits []byte }

func (w *bitWriter) writeBits(v uint32, width uint) {
	for i := int(width) - 1; i >= 0; i-- {
		w.bits = append(w.bits, byte((v>>uint(i))&1))
	}
}

func (w *bitWriter) bytes() []byte {
	n := len(w.bits)
	for n%16 != 0 {
		w.bits = append(w.bits, 0)
		n++
	}
	out := make([]byte, n/8)
	for i := 0; i < n; i += 16 {
		var hi, lo byte
		for j := 0; j < 8; j++ {
			if w.bits[i+j] == 1 {
				hi |= 1 << uint(7-j)
			}
		}
		for j := 0; j < 8; j++ {
			if w.bits[i+8+j] == 1 {
				lo |= 1 << uint(7-j)
			}
		}
		out[i/8] = lo
		out[i/8+1] = hi
	}
	return out
}

// zeroRunLengths splits n into opcode-17 pretree run lengths that sum to
// exactly n. Each run is in 4..19 when n is 0 or at least 4; for n in
// 1..3 the single run returned is n itself, which opcode 17 cannot
// encode.
func zeroRunLengths(n int) []int {
	var runs []int
	for n > 0 {
		r := n
		if r > 19 {
			r = 19
		}
		rem := n - r
		if rem > 0 && rem < 4 {
			r -= 4 - rem
		}
		runs = append(runs, r)
		n -= r
	}
	return runs
}

// writeZeroFillPass writes a pretree-delta pass that leaves all m
// entries at length zero, using a pretree that activates only opcode
// symbol 17 (a complete, single-code length-1 tree).
func writeZeroFillPass(w *bitWriter, m int) {
	for i := 0; i < pretreeSymbols; i++ {
		if i == 17 {
			w.writeBits(1, 4)
		} else {
			w.writeBits(0, 4)
		}
	}
	for _, run := range zeroRunLengths(m) {
		w.writeBits(0, 1) // the sole pretree code, symbol 17
		w.writeBits(uint32(run-4), 4)
	}
}

// writeUniformLengthPass writes a pretree-delta pass over m entries that
// assigns length `length` to the entries listed in activeIdx (sorted
// ascending) and leaves every other entry at zero. It activates exactly
// two pretree symbols: a literal-delta symbol producing `length`, and
// opcode 17 for the zero runs between active entries; both length-1
// codes, so the pretree is a complete 2-symbol tree.
func writeUniformLengthPass(w *bitWriter, m int, activeIdx []int, length uint8) {
	deltaSym := deltaMod17ForLength(length)
	lo, hi := deltaSym, uint8(17)
	if lo > hi {
		lo, hi = hi, lo
	}
	for i := 0; i < pretreeSymbols; i++ {
		if uint8(i) == lo || uint8(i) == hi {
			w.writeBits(1, 4)
		} else {
			w.writeBits(0, 4)
		}
	}
	deltaCode, runCode := uint32(0), uint32(1)
	if deltaSym > 17 {
		deltaCode, runCode = 1, 0
	}

	prev := 0
	for _, idx := range activeIdx {
		for _, run := range zeroRunLengths(idx - prev) {
			w.writeBits(runCode, 1)
			w.writeBits(uint32(run-4), 4)
		}
		w.writeBits(deltaCode, 1)
		prev = idx + 1
	}
	for _, run := range zeroRunLengths(m - prev) {
		w.writeBits(runCode, 1)
		w.writeBits(uint32(run-4), 4)
	}
}

// deltaMod17ForLength returns the pretree literal-delta symbol that,
// applied against a previous length of zero, produces the given length:
// (0 - delta) mod 17 == length, i.e. delta == (17 - length) mod 17.
func deltaMod17ForLength(length uint8) uint8 {
	return uint8((17 - int(length)%17) % 17)
}

// EncodeLiteralChunk builds a single verbatim-block LZXD chunk whose
// output is exactly data, with E8 translation disabled. data must fit in
// one block (len(data) < 1<<24), and ws must match the window size the
// target Decoder was constructed with (it determines the size of the
// unused match-length segment of the main alphabet). The decoder is
// expected to call DecompressNext with chunkOutputSize == len(data) on
// the first call for a fresh decoder (the E8 header bit is only present
// in the first chunk). All 256 possible literal byte values get their
// own length-8 code (a complete canonical tree: 256 codes of length 8
// exactly satisfies Kraft's equality), so the encoded body is simply
// each byte of data written as its own 8-bit codeword.
func EncodeLiteralChunk(ws lzxd.WindowSize, data []byte) ([]byte, error) {
	if len(data) >= 1<<24 {
		return nil, fmt.Errorf("lzxdtest: chunk too large: %d bytes", len(data))
	}
	w := &bitWriter{}
	w.writeBits(0, 1) // E8 translation disabled
	w.writeBits(1, 3) // block type 1: verbatim
	w.writeBits(uint32(len(data)), 24)

	allIdx := make([]int, 256)
	for i := range allIdx {
		allIdx[i] = i
	}
	writeUniformLengthPass(w, 256, allIdx, 8)
	writeZeroFillPass(w, ws.MainAlphabetSize()-256)
	writeZeroFillPass(w, numLengthSymbols)

	for _, b := range data {
		w.writeBits(uint32(b), 8)
	}
	out := w.bytes()
	return append(out, 0, 0, 0, 0), nil
}

// EncodeLRUDemo returns a verbatim-block chunk and the output bytes it
// decodes to: the literals "AB" followed by a position-slot-3 match
// (real offset 1, length 2), which self-overlaps onto the just-written
// 'B' and so repeats it, producing "ABBB". This exercises the
// position-slot >= 3 path through resolveOffset/promote end to end
// rather than just the literal path EncodeLiteralChunk covers. ws must
// match the target Decoder's window size.
func EncodeLRUDemo(ws lzxd.WindowSize) (chunk []byte, want []byte, err error) {
	const (
		symA     = 'A'
		symB     = 'B'
		symMatch = 256 + 3*8 + 0 // position slot 3, length header 0 (len=2)
	)
	w := &bitWriter{}
	w.writeBits(0, 1) // E8 translation disabled
	w.writeBits(1, 3) // block type 1: verbatim
	w.writeBits(4, 24)

	writeUniformLengthPass(w, 256, []int{0, symA, symB}, 2)
	matchM := ws.MainAlphabetSize() - 256
	writeUniformLengthPass(w, matchM, []int{symMatch - 256}, 2)
	writeZeroFillPass(w, numLengthSymbols)

	// Codes, all length 2, assigned in ascending symbol order across
	// the active set {0, 65, 66, 280}: 0->00, 65->01, 66->10, 280->11.
	w.writeBits(0b01, 2) // 'A'
	w.writeBits(0b10, 2) // 'B'
	w.writeBits(0b11, 2) // the match: position slot 3 reads 0 footer bits

	out := append(w.bytes(), 0, 0, 0, 0)
	return out, []byte("ABBB"), nil
}
