// Copyright 2021 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package lzxd

import "testing"

// writeBitsMSB packs a sequence of (value, width) pairs MSB-first into
// 16-bit little-endian code units, the order bitReader consumes them in
// (the first 8 bits of each unit form its high byte, emitted second),
// padding the final unit with zero bits, then appends a trailing zero
// code unit to satisfy the bitReader's 16-bit word refills.
func writeBitsMSB(pairs [][2]uint) []byte {
	var bits []byte
	for _, p := range pairs {
		v, w := p[0], p[1]
		for i := int(w) - 1; i >= 0; i-- {
			bits = append(bits, byte((v>>uint(i))&1))
		}
	}
	for len(bits)%8 != 0 {
		bits = append(bits, 0)
	}
	out := make([]byte, len(bits)/8)
	for i, b := range bits {
		if b == 1 {
			out[i/8] |= 1 << uint(7-i%8)
		}
	}
	for len(out)%2 != 0 {
		out = append(out, 0)
	}
	for i := 0; i < len(out); i += 2 {
		out[i], out[i+1] = out[i+1], out[i]
	}
	// Guarantee a full extra code unit so peeks near the end of the
	// real data never need it (tests exercise exact-length decodes).
	out = append(out, 0, 0)
	return out
}

func TestHuffmanRoundTrip(t *testing.T) {
	// Symbols: 0->len2, 1->len1, 2->len3, 3->len3.
	// Canonical codes (sorted by (len,symbol)): 1:"0" (len1),
	// 0:"10" (len2), 2:"110" (len3), 3:"111" (len3).
	lens := []uint8{2, 1, 3, 3}
	table, err := buildHuffmanTable(lens)
	if err != nil {
		t.Fatal(err)
	}
	data := writeBitsMSB([][2]uint{
		{0b0, 1},   // symbol 1
		{0b10, 2},  // symbol 0
		{0b110, 3}, // symbol 2
		{0b111, 3}, // symbol 3
	})
	br := newBitReader(data)
	want := []uint16{1, 0, 2, 3}
	for _, w := range want {
		got, err := table.decode(&br)
		if err != nil {
			t.Fatal(err)
		}
		if got != w {
			t.Fatalf("got symbol %d, want %d", got, w)
		}
	}
}

func TestHuffmanSingleSymbol(t *testing.T) {
	lens := make([]uint8, 4)
	lens[2] = 1
	table, err := buildHuffmanTable(lens)
	if err != nil {
		t.Fatal(err)
	}
	data := writeBitsMSB([][2]uint{{0, 1}})
	br := newBitReader(data)
	got, err := table.decode(&br)
	if err != nil {
		t.Fatal(err)
	}
	if got != 2 {
		t.Fatalf("got %d, want 2", got)
	}
}

func TestHuffmanEmptyTable(t *testing.T) {
	table, err := buildHuffmanTable(make([]uint8, 8))
	if err != nil {
		t.Fatal(err)
	}
	br := newBitReader([]byte{0, 0})
	if _, err := table.decode(&br); err == nil {
		t.Fatal("expected error decoding from an empty table")
	}
}

func TestHuffmanOverSubscribed(t *testing.T) {
	// Two length-1 codes exhaust the tree; a third length-1 code
	// over-subscribes it.
	_, err := buildHuffmanTable([]uint8{1, 1, 1})
	if err == nil {
		t.Fatal("expected MalformedHuffman")
	}
	if se, ok := err.(*StructuralError); !ok || se.Kind != MalformedHuffman {
		t.Fatalf("got %v, want MalformedHuffman", err)
	}
}

func TestHuffmanUnderSubscribed(t *testing.T) {
	_, err := buildHuffmanTable([]uint8{1, 2})
	if err == nil {
		t.Fatal("expected MalformedHuffman")
	}
	if se, ok := err.(*StructuralError); !ok || se.Kind != MalformedHuffman {
		t.Fatalf("got %v, want MalformedHuffman", err)
	}
}

func TestHuffmanLongCodeUsesSubtable(t *testing.T) {
	// A complete, uniform-length tree over a 2^14 alphabet: codes are
	// exactly the symbol indices written in 14 bits, ascending, which
	// exactly satisfies Kraft's equality and forces codes longer than
	// primaryTableBits (12), so primary entries must point at a
	// sub-table.
	const n = 1 << 14
	lens := make([]uint8, n)
	for i := range lens {
		lens[i] = 14
	}
	table, err := buildHuffmanTable(lens)
	if err != nil {
		t.Fatal(err)
	}
	if table.subBits == 0 {
		t.Fatal("expected a two-level table for a 14-bit-deep alphabet")
	}

	data := writeBitsMSB([][2]uint{{0, 14}, {n - 1, 14}})
	br := newBitReader(data)
	got, err := table.decode(&br)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Fatalf("got %d, want 0", got)
	}
	got, err = table.decode(&br)
	if err != nil {
		t.Fatal(err)
	}
	if got != n-1 {
		t.Fatalf("got %d, want %d", got, n-1)
	}
}
