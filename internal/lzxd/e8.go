// Copyright 2021 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package lzxd

// e8ScanLimit is the size of the window within each chunk that E8
// translation considers, regardless of how much larger the chunk is.
const e8ScanLimit = 32 * 1024

// e8BoundAddress is the address ceiling past which E8 translation never
// applies, matching the published LZX transform.
const e8BoundAddress = 0x40000000

// translateE8 rewrites x86 near-call targets in out in place. chunkStart
// is the absolute output position of out[0]; fileSize is the e8 file
// size parameter read from the first chunk. It is a no-op when the chunk
// holds fewer than 10 bytes. It does not check whether translation is
// enabled or whether chunkStart is below the 0x40000000 boundary; the
// decoder checks both before calling it.
//
// This is the published LZX E8 call-translation rule used by every
// CAB/WIM/XNB-compatible decoder: for each 0xE8 byte at absolute
// position A, let value be the signed 32-bit little-endian word that
// follows it. If -A <= value < fileSize, value is replaced by value-A
// when value >= 0, or value+fileSize when value < 0; otherwise the
// bytes are left untouched. The two cases are what let the transform
// round-trip: a call target can be stored either as an offset from the
// start of the file (>= 0) or, for calls to addresses below the
// current position, as a small negative number wrapped around
// fileSize.
func translateE8(out []byte, chunkStart uint32, fileSize uint32) {
	if len(out) < 10 {
		return
	}
	limit := len(out) - 10
	if limit > e8ScanLimit-10 {
		limit = e8ScanLimit - 10
	}

	p := 0
	for p < limit {
		if out[p] != 0xE8 {
			p++
			continue
		}
		absPos := int64(chunkStart) + int64(p)
		value := int64(int32(uint32(out[p+1]) | uint32(out[p+2])<<8 | uint32(out[p+3])<<16 | uint32(out[p+4])<<24))
		if value >= -absPos && value < int64(fileSize) {
			var newVal int64
			if value >= 0 {
				newVal = value - absPos
			} else {
				newVal = value + int64(fileSize)
			}
			u := uint32(newVal)
			out[p+1] = byte(u)
			out[p+2] = byte(u >> 8)
			out[p+3] = byte(u >> 16)
			out[p+4] = byte(u >> 24)
		}
		p += 5
	}
}
