// Copyright 2021 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package lzxd

import "testing"

func TestBitReaderReadBits(t *testing.T) {
	// Two little-endian 16-bit words: 0xABCD, 0x1234. MSB-first within
	// each word means the bit stream is 0xAB,0xCD,0x12,0x34 in order.
	data := []byte{0xCD, 0xAB, 0x34, 0x12}
	br := newBitReader(data)

	v, err := br.readBits(8)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0xAB {
		t.Fatalf("got %#x, want 0xAB", v)
	}
	v, err = br.readBits(4)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0xC {
		t.Fatalf("got %#x, want 0xC", v)
	}
	// Remaining: 0xD then the second word 0x1234, spanning a word
	// boundary.
	v, err = br.readBits(12)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0xD12 {
		t.Fatalf("got %#x, want 0xD12", v)
	}
	v, err = br.readBits(8)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x34 {
		t.Fatalf("got %#x, want 0x34", v)
	}
}

func TestBitReaderTruncated(t *testing.T) {
	br := newBitReader([]byte{0x01, 0x02})
	if _, err := br.readBits(16); err != nil {
		t.Fatal(err)
	}
	if _, err := br.readBits(1); err == nil {
		t.Fatal("expected TruncatedInput, got nil")
	} else if se, ok := err.(*StructuralError); !ok || se.Kind != TruncatedInput {
		t.Fatalf("got %v, want TruncatedInput", err)
	}
}

func TestBitReaderReadU24LE(t *testing.T) {
	// Code units 0x3412, 0x0056: the first three octets in bit order are
	// 0x34, 0x12, 0x00, read high octet first.
	br := newBitReader([]byte{0x12, 0x34, 0x56, 0x00})
	v, err := br.readU24LE()
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x341200 {
		t.Fatalf("got %#x, want 0x341200", v)
	}
}

func TestBitReaderAlignToByte(t *testing.T) {
	br := newBitReader([]byte{0xFF, 0x00, 0xAB, 0xCD})
	if _, err := br.readBits(3); err != nil {
		t.Fatal(err)
	}
	if err := br.alignToByte(); err != nil {
		t.Fatal(err)
	}
	if br.consumedBits()%8 != 0 {
		t.Fatalf("not byte aligned: consumed %d bits", br.consumedBits())
	}
	// The 3 bits plus alignment consume the high byte (0x00) of the first
	// code unit; the unread raw bytes, in memory order, are 0xFF, 0xAB, 0xCD.
	raw, err := br.readAlignedBytes(2)
	if err != nil {
		t.Fatal(err)
	}
	if raw[0] != 0xFF || raw[1] != 0xAB {
		t.Fatalf("got %x, want ff ab", raw)
	}
}

func TestBitReaderAlignTo16(t *testing.T) {
	br := newBitReader([]byte{0xFF, 0xFF, 0xAB, 0xCD})
	if _, err := br.readBits(5); err != nil {
		t.Fatal(err)
	}
	if err := br.alignTo16(); err != nil {
		t.Fatal(err)
	}
	if br.consumedBits() != 16 {
		t.Fatalf("consumed %d bits, want 16", br.consumedBits())
	}
	raw, err := br.readAlignedBytes(2)
	if err != nil {
		t.Fatal(err)
	}
	if raw[0] != 0xAB || raw[1] != 0xCD {
		t.Fatalf("got %x, want ab cd", raw)
	}
}
