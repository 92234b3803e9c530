// Copyright 2021 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package lzxd

// blockKind identifies one of the three LZXD block body encodings.
type blockKind int

const (
	blockVerbatim blockKind = iota + 1
	blockAligned
	blockUncompressed
)

// readBlockHeader decodes a block header at the current bit position
// and updates persistent decoder state (main_lens, length_lens, the
// aligned-offset table, and R0/R1/R2 for uncompressed blocks). It
// returns the block's kind and its size in output bytes.
func (d *Decoder) readBlockHeader(br *bitReader) (blockKind, int, error) {
	kindBits, err := br.readBits(3)
	if err != nil {
		return 0, 0, err
	}
	kind := blockKind(kindBits)
	if kind != blockVerbatim && kind != blockAligned && kind != blockUncompressed {
		return 0, 0, newError(InvalidBlockType, "block type %d is not one of {1,2,3}", kindBits)
	}

	size, err := br.readU24LE()
	if err != nil {
		return 0, 0, err
	}

	switch kind {
	case blockAligned:
		alignedLens := make([]uint8, numAlignedSymbols)
		for i := range alignedLens {
			v, err := br.readBits(3)
			if err != nil {
				return 0, 0, err
			}
			alignedLens[i] = uint8(v)
		}
		d.alignedTable, err = buildHuffmanTable(alignedLens)
		if err != nil {
			return 0, 0, err
		}
		if err := d.rebuildMainAndLength(br); err != nil {
			return 0, 0, err
		}
	case blockVerbatim:
		if err := d.rebuildMainAndLength(br); err != nil {
			return 0, 0, err
		}
	case blockUncompressed:
		if err := br.alignTo16(); err != nil {
			return 0, 0, err
		}
		raw, err := br.readAlignedBytes(12)
		if err != nil {
			return 0, 0, err
		}
		r0 := le32(raw[0:4])
		r1 := le32(raw[4:8])
		r2 := le32(raw[8:12])
		d.ro.reset(r0, r1, r2)
	}

	return kind, int(size), nil
}

// rebuildMainAndLength runs the three pretree-delta passes a verbatim or
// aligned-offset block header carries: main_lens[0:256], then
// main_lens[256:256+8P], then length_lens[0:249]; then rebuilds the two
// Huffman decoders that depend on them.
func (d *Decoder) rebuildMainAndLength(br *bitReader) error {
	pretree, err := readPretreeLengths(br)
	if err != nil {
		return err
	}
	literalLens, err := updateLengths(br, pretree, d.mainLens[:256], 256)
	if err != nil {
		return err
	}
	copy(d.mainLens[:256], literalLens)

	pretree, err = readPretreeLengths(br)
	if err != nil {
		return err
	}
	matchLens, err := updateLengths(br, pretree, d.mainLens[256:], len(d.mainLens)-256)
	if err != nil {
		return err
	}
	copy(d.mainLens[256:], matchLens)

	pretree, err = readPretreeLengths(br)
	if err != nil {
		return err
	}
	lengthLens, err := updateLengths(br, pretree, d.lengthLens, numLengthSymbols)
	if err != nil {
		return err
	}
	copy(d.lengthLens, lengthLens)

	d.mainTable, err = buildHuffmanTable(d.mainLens)
	if err != nil {
		return err
	}
	d.lengthTable, err = buildHuffmanTable(d.lengthLens)
	if err != nil {
		return err
	}
	return nil
}

// resolveOffset decodes the formatted offset for a position slot and
// turns it into a real window offset, updating the repeated-offset LRU.
// aligned selects between the verbatim and aligned-offset footer-bits
// rules for slot >= 3.
func (d *Decoder) resolveOffset(br *bitReader, slot int, aligned bool) (uint32, error) {
	if slot < 3 {
		return d.ro.fromSlot(slot), nil
	}
	if slot >= d.positionSlots {
		return 0, newError(InvalidPositionSlot, "position slot %d exceeds P=%d for the configured window", slot, d.positionSlots)
	}

	fb := footerBitsTable[slot]
	base := basePositionTable[slot]

	var formatted uint32
	if aligned {
		if fb >= 3 {
			verbatimBits, err := br.readBits(fb - 3)
			if err != nil {
				return 0, err
			}
			a, err := d.alignedTable.decode(br)
			if err != nil {
				return 0, err
			}
			formatted = base + (verbatimBits << 3) + uint32(a)
		} else {
			verbatimBits, err := br.readBits(fb)
			if err != nil {
				return 0, err
			}
			formatted = base + verbatimBits
		}
	} else {
		footer, err := br.readBits(fb)
		if err != nil {
			return 0, err
		}
		formatted = base + footer
	}

	if formatted < 2 {
		return 0, newError(InvalidPositionSlot, "formatted offset %d underflows real offset computation", formatted)
	}
	realOffset := formatted - 2
	d.ro.promote(realOffset)
	return realOffset, nil
}

// decodeToken decodes exactly one main-alphabet symbol and applies it
// to the window, returning the (possibly grown) output slice. aligned
// selects the verbatim vs aligned-offset decoding rules for offsets.
func (d *Decoder) decodeToken(br *bitReader, aligned bool, out []byte) ([]byte, error) {
	sym, err := d.mainTable.decode(br)
	if err != nil {
		return out, err
	}
	if sym < 256 {
		return d.win.putLiteral(byte(sym), out), nil
	}

	rel := int(sym) - 256
	slot := rel / 8
	lengthHeader := rel % 8

	var matchLen int
	if lengthHeader < 7 {
		matchLen = lengthHeader + 2
	} else {
		l, err := d.lengthTable.decode(br)
		if err != nil {
			return out, err
		}
		matchLen = int(l) + 9
	}

	realOffset, err := d.resolveOffset(br, slot, aligned)
	if err != nil {
		return out, err
	}
	return d.win.putMatch(matchLen, realOffset, out), nil
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
