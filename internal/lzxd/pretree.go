// Copyright 2021 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package lzxd

// pretreeSymbols is the size of the pretree alphabet: 17 literal deltas
// (0..16) plus the three run-length opcodes 17, 18 and 19.
const pretreeSymbols = 20

// readPretreeLengths reads the 20 four-bit path lengths that precede
// every pretree-delta pass and builds the pretree's own Huffman table.
func readPretreeLengths(br *bitReader) (*huffmanTable, error) {
	lens := make([]uint8, pretreeSymbols)
	for i := range lens {
		v, err := br.readBits(4)
		if err != nil {
			return nil, err
		}
		lens[i] = uint8(v)
	}
	return buildHuffmanTable(lens)
}

// updateLengths applies one pretree-delta pass to produce a new
// length vector of size m, given the previous vector prev (of the same
// size; all-zero the first time an alphabet is ever updated). This is
// the delta-modulo-17 run-length scheme, built on the same canonical
// code machinery as the rest of the package's Huffman tables, but
// generalized to the transmitted-delta update LZXD uses in place of
// directly-transmitted lengths.
func updateLengths(br *bitReader, pretree *huffmanTable, prev []uint8, m int) ([]uint8, error) {
	lens := make([]uint8, m)
	i := 0
	for i < m {
		s, err := pretree.decode(br)
		if err != nil {
			return nil, err
		}
		switch {
		case s <= 16:
			lens[i] = deltaMod17(prev[i], uint8(s))
			i++
		case s == 17:
			z, err := br.readBits(4)
			if err != nil {
				return nil, err
			}
			run := int(z) + 4
			if i+run > m {
				return nil, newError(InvalidPretreeOp, "run of %d zeros at index %d overruns vector of size %d", run, i, m)
			}
			for j := 0; j < run; j++ {
				lens[i+j] = 0
			}
			i += run
		case s == 18:
			z, err := br.readBits(5)
			if err != nil {
				return nil, err
			}
			run := int(z) + 20
			if i+run > m {
				return nil, newError(InvalidPretreeOp, "run of %d zeros at index %d overruns vector of size %d", run, i, m)
			}
			for j := 0; j < run; j++ {
				lens[i+j] = 0
			}
			i += run
		case s == 19:
			z, err := br.readBits(1)
			if err != nil {
				return nil, err
			}
			sp, err := pretree.decode(br)
			if err != nil {
				return nil, err
			}
			if sp > 16 {
				return nil, newError(InvalidPretreeOp, "opcode 19 secondary symbol %d out of range 0..16", sp)
			}
			run := int(z) + 4
			if i+run > m {
				return nil, newError(InvalidPretreeOp, "run of %d repeats at index %d overruns vector of size %d", run, i, m)
			}
			v := deltaMod17(prev[i], uint8(sp))
			for j := 0; j < run; j++ {
				lens[i+j] = v
			}
			i += run
		default:
			return nil, newError(InvalidPretreeOp, "pretree produced out of range symbol %d", s)
		}
	}
	return lens, nil
}

// deltaMod17 computes (prev - delta) mod 17, taking care to stay in the
// 0..16 range for Go's truncating %.
func deltaMod17(prev, delta uint8) uint8 {
	d := int(prev) - int(delta)
	d %= 17
	if d < 0 {
		d += 17
	}
	return uint8(d)
}
