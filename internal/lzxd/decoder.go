// Copyright 2021 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package lzxd implements the core LZXD streaming decoder: the
// canonical Huffman and pretree-delta machinery, the three block body
// decoders, the sliding window with its repeated-offset LRU, and the E8
// call-site translation post-filter. It knows nothing about CAB or XNB
// containers, chunk framing, or checksums; callers hand it successive
// compressed chunks and it hands back decompressed bytes.
package lzxd

const (
	numAlignedSymbols = 8
	numLengthSymbols  = 249
)

// decoderState is the decoder's top-level state machine: awaiting a
// block header, or partway through decoding one. remaining counts
// output bytes still owed by the current block, not tokens.
type decoderState int

const (
	stateAwaitingHeader decoderState = iota
	stateInBlock
)

// Decoder is the stateful core of the LZXD decompressor: a single-
// owner, single-threaded state machine with no I/O of its own, holding
// persistent setup state that DecompressNext's block loop reads and
// updates.
type Decoder struct {
	win           *slidingWindow
	ro            repeatedOffsets
	positionSlots int

	mainLens   []uint8
	lengthLens []uint8

	mainTable    *huffmanTable
	lengthTable  *huffmanTable
	alignedTable *huffmanTable

	state        decoderState
	kind         blockKind
	remaining    int
	blockSize    int

	firstChunk bool
	e8Enabled  bool
	e8FileSize uint32
	e8Override *bool

	outputPos uint64
}

// NewDecoder constructs a decoder for the given window size.
func NewDecoder(ws WindowSize, e8Override *bool) *Decoder {
	p := positionSlotCount(ws)
	d := &Decoder{
		win:           newSlidingWindow(windowCapacity(ws)),
		ro:            newRepeatedOffsets(),
		positionSlots: p,
		mainLens:      make([]uint8, mainAlphabetSize(ws)),
		lengthLens:    make([]uint8, numLengthSymbols),
		state:         stateAwaitingHeader,
		firstChunk:    true,
		e8Override:    e8Override,
	}
	return d
}

// DecompressNext decodes exactly one chunk's worth of output. chunk is
// the compressed bytes for this chunk only; chunkOutputSize is the
// number of decompressed bytes the caller expects back (the standard
// 32 KiB, or less for a final short chunk). The returned slice is only
// valid until the next call.
func (d *Decoder) DecompressNext(chunk []byte, chunkOutputSize int) ([]byte, error) {
	br := newBitReader(chunk)
	out := make([]byte, 0, chunkOutputSize)

	if d.firstChunk {
		e8bit, err := br.readBits(1)
		if err != nil {
			return nil, err
		}
		if d.e8Override != nil {
			d.e8Enabled = *d.e8Override
		} else {
			d.e8Enabled = e8bit == 1
		}
		if e8bit == 1 {
			fileSize, err := br.readBits(32)
			if err != nil {
				return nil, err
			}
			d.e8FileSize = fileSize
		}
		d.firstChunk = false
	}

	chunkStart := d.outputPos

	for len(out) < chunkOutputSize {
		if d.state == stateAwaitingHeader {
			kind, size, err := d.readBlockHeader(&br)
			if err != nil {
				return nil, err
			}
			d.kind = kind
			d.remaining = size
			d.blockSize = size
			d.state = stateInBlock
		}

		before := len(out)
		var err error
		switch d.kind {
		case blockVerbatim:
			out, err = d.decodeToken(&br, false, out)
		case blockAligned:
			out, err = d.decodeToken(&br, true, out)
		case blockUncompressed:
			out, err = d.copyUncompressed(&br, out, chunkOutputSize-len(out))
		}
		if err != nil {
			return nil, err
		}
		emitted := len(out) - before
		d.remaining -= emitted
		if d.remaining < 0 {
			return nil, newError(OutputOverrun, "block emitted %d bytes, overrunning remaining count by %d", emitted, -d.remaining)
		}
		if d.remaining == 0 {
			if d.kind == blockUncompressed {
				if err := d.finishUncompressed(&br); err != nil {
					return nil, err
				}
			}
			d.state = stateAwaitingHeader
		}
	}

	if d.e8Enabled && chunkStart < e8BoundAddress {
		translateE8(out, uint32(chunkStart), d.e8FileSize)
	}
	d.outputPos += uint64(len(out))

	return out, nil
}

// copyUncompressed copies raw bytes directly from br into the window,
// at most maxOut of them (a block may span chunks, so this may be far
// fewer than d.remaining).
func (d *Decoder) copyUncompressed(br *bitReader, out []byte, maxOut int) ([]byte, error) {
	n := d.remaining
	if n > maxOut {
		n = maxOut
	}
	raw, err := br.readAlignedBytes(n)
	if err != nil {
		return out, err
	}
	for _, b := range raw {
		out = d.win.putLiteral(b, out)
	}
	return out, nil
}

// finishUncompressed consumes the single padding byte that follows an
// odd-length uncompressed block. Skipping this byte desynchronizes the
// bit reader for the next block header.
func (d *Decoder) finishUncompressed(br *bitReader) error {
	if d.blockSize%2 == 0 {
		return nil
	}
	_, err := br.readAlignedBytes(1)
	return err
}
