// Copyright 2021 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cosnicolaou/lzxd"
)

// This file implements a CLI-only chunk framing invented for lzxdcat:
//
//	uint32le total_decompressed_size
//	repeated until input exhausted:
//	    uint32le chunk_decompressed_size
//	    uint32le compressed_chunk_len
//	    compressed_chunk_len bytes of LZXD chunk data
//
// The lzxd and internal/lzxd packages know nothing about this framing;
// it exists purely to give this command line tool a way to split a file
// into chunks without taking on a CAB or XNB container dependency.

type chunkHeader struct {
	decompressedSize uint32
	compressedLen    uint32
}

func readUint32LE(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func writeUint32LE(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// readChunkHeader reads one chunk header. ok is false, with a nil error,
// when r is exhausted exactly at a header boundary.
func readChunkHeader(r io.Reader) (hdr chunkHeader, ok bool, err error) {
	size, err := readUint32LE(r)
	if err == io.EOF {
		return chunkHeader{}, false, nil
	}
	if err != nil {
		return chunkHeader{}, false, fmt.Errorf("lzxdcat: reading chunk header: %w", err)
	}
	clen, err := readUint32LE(r)
	if err != nil {
		return chunkHeader{}, false, fmt.Errorf("lzxdcat: reading chunk header: %w", err)
	}
	return chunkHeader{decompressedSize: size, compressedLen: clen}, true, nil
}

// Progress reports the framing-level progress of a decompression run:
// each report pertains to one successfully decoded chunk. Decoding is
// strictly sequential, so there is no out-of-order reassembly to report
// on.
type Progress struct {
	Chunk           int
	CompressedBytes int64
}

// decompressFramed reads a framed stream from r, decompressing it with a
// freshly constructed Decoder for windowSize, and writes the result to
// w. If progressCh is non-nil, one Progress is sent per chunk decoded.
func decompressFramed(ctx context.Context, r io.Reader, w io.Writer, windowSize lzxd.WindowSize, progressCh chan<- Progress) error {
	total, err := readUint32LE(r)
	if err != nil {
		return fmt.Errorf("lzxdcat: reading total size: %w", err)
	}
	dec, err := lzxd.NewDecoder(windowSize)
	if err != nil {
		return err
	}

	var written uint32
	for chunkIdx := 0; ; chunkIdx++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		hdr, ok, err := readChunkHeader(r)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		compressed := make([]byte, hdr.compressedLen)
		if _, err := io.ReadFull(r, compressed); err != nil {
			return fmt.Errorf("lzxdcat: reading chunk %d body: %w", chunkIdx, err)
		}
		out, err := dec.DecompressNext(compressed, int(hdr.decompressedSize))
		if err != nil {
			return fmt.Errorf("lzxdcat: chunk %d: %w", chunkIdx, err)
		}
		if _, err := w.Write(out); err != nil {
			return fmt.Errorf("lzxdcat: writing chunk %d output: %w", chunkIdx, err)
		}
		written += uint32(len(out))
		if progressCh != nil {
			progressCh <- Progress{Chunk: chunkIdx + 1, CompressedBytes: int64(hdr.compressedLen)}
		}
	}

	if written != total {
		return fmt.Errorf("lzxdcat: decompressed %d bytes, stream header declared %d", written, total)
	}
	return nil
}

// inspectFramed prints the chunk table of a framed stream without
// decompressing any chunk bodies.
func inspectFramed(w io.Writer, name string, r io.Reader) error {
	total, err := readUint32LE(r)
	if err != nil {
		return fmt.Errorf("lzxdcat: reading total size: %w", err)
	}
	fmt.Fprintf(w, "=== %v ===\n", name)
	fmt.Fprintf(w, "total decompressed size: %d\n", total)
	fmt.Fprintf(w, "chunk, decompressed, compressed, offset\n")

	var offset uint32
	for chunkIdx := 0; ; chunkIdx++ {
		hdr, ok, err := readChunkHeader(r)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if _, err := io.CopyN(io.Discard, r, int64(hdr.compressedLen)); err != nil {
			return fmt.Errorf("lzxdcat: skipping chunk %d body: %w", chunkIdx, err)
		}
		fmt.Fprintf(w, "% 5d, % 12d, % 12d, % 12d\n", chunkIdx, hdr.decompressedSize, hdr.compressedLen, offset)
		offset += hdr.decompressedSize
	}
	return nil
}
