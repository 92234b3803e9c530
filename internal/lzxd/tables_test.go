// Copyright 2021 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package lzxd

import "testing"

func TestPositionSlotTableFirstEntries(t *testing.T) {
	// Slots 0..3 carry no footer bits; base positions are the slot
	// index itself (the published LZX table's well-known prefix).
	wantFB := []uint{0, 0, 0, 0, 1, 1, 2, 2}
	wantBase := []uint32{0, 1, 2, 3, 4, 6, 8, 12}
	for i := range wantFB {
		if footerBitsTable[i] != wantFB[i] {
			t.Errorf("footerBitsTable[%d] = %d, want %d", i, footerBitsTable[i], wantFB[i])
		}
		if basePositionTable[i] != wantBase[i] {
			t.Errorf("basePositionTable[%d] = %d, want %d", i, basePositionTable[i], wantBase[i])
		}
	}
}

func TestPositionSlotTableRecurrence(t *testing.T) {
	for s := 1; s < numPositionSlotTableEntries; s++ {
		want := basePositionTable[s-1] + (1 << footerBitsTable[s-1])
		if basePositionTable[s] != want {
			t.Errorf("basePositionTable[%d] = %d, want base[%d]+2^fb[%d] = %d", s, basePositionTable[s], s-1, s-1, want)
		}
	}
}

func TestPositionSlotCounts(t *testing.T) {
	cases := []struct {
		ws   WindowSize
		want int
	}{
		{WindowKB32, 30},
		{WindowKB64, 32},
		{WindowKB128, 34},
		{WindowKB256, 36},
		{WindowKB512, 38},
		{WindowKB1024, 42},
		{WindowKB2048, 50},
	}
	for _, c := range cases {
		if got := positionSlotCount(c.ws); got != c.want {
			t.Errorf("positionSlotCount(%v) = %d, want %d", c.ws, got, c.want)
		}
		if got := mainAlphabetSize(c.ws); got != 256+8*c.want {
			t.Errorf("mainAlphabetSize(%v) = %d, want %d", c.ws, got, 256+8*c.want)
		}
	}
}
