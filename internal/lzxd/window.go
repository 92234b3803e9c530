// Copyright 2021 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package lzxd

// slidingWindow is the circular output buffer LZ77 back-references read
// from, kept deliberately simple: a single byte-by-byte copy loop
// handles both the ordinary and the self-overlapping (offset < length)
// case uniformly, since writing the destination byte before advancing
// the source pointer makes the overlap case fall out for free.
type slidingWindow struct {
	buf    []byte
	cursor int
}

func newSlidingWindow(capacity int) *slidingWindow {
	return &slidingWindow{buf: make([]byte, capacity)}
}

func (w *slidingWindow) capacity() int { return len(w.buf) }

// putLiteral writes b at the cursor and appends it to out.
func (w *slidingWindow) putLiteral(b byte, out []byte) []byte {
	w.buf[w.cursor] = b
	w.cursor++
	if w.cursor == len(w.buf) {
		w.cursor = 0
	}
	return append(out, b)
}

// putMatch copies length bytes from cursor-offset (mod capacity) to the
// cursor, appending the copied bytes to out.
func (w *slidingWindow) putMatch(length int, offset uint32, out []byte) []byte {
	cap := len(w.buf)
	src := w.cursor - int(offset)
	for src < 0 {
		src += cap
	}
	for i := 0; i < length; i++ {
		b := w.buf[src]
		w.buf[w.cursor] = b
		out = append(out, b)
		src++
		if src == cap {
			src = 0
		}
		w.cursor++
		if w.cursor == cap {
			w.cursor = 0
		}
	}
	return out
}

// repeatedOffsets is the 3-slot repeated-offset LRU (R0, R1, R2).
type repeatedOffsets struct {
	r [3]uint32
}

func newRepeatedOffsets() repeatedOffsets {
	return repeatedOffsets{r: [3]uint32{1, 1, 1}}
}

// fromSlot returns the formatted offset for position_slot in {0,1,2},
// applying that slot's specific LRU swap rule. It must not be called
// for slot >= 3.
func (ro *repeatedOffsets) fromSlot(slot int) uint32 {
	switch slot {
	case 0:
		return ro.r[0]
	case 1:
		v := ro.r[1]
		ro.r[0], ro.r[1] = ro.r[1], ro.r[0]
		return v
	case 2:
		v := ro.r[2]
		ro.r[0], ro.r[2] = ro.r[2], ro.r[0]
		return v
	default:
		return 0
	}
}

// promote pushes realOffset to R0, used for position_slot >= 3 matches
// only; slots 0..2 perform their own swap in fromSlot instead.
func (ro *repeatedOffsets) promote(realOffset uint32) {
	ro.r[2] = ro.r[1]
	ro.r[1] = ro.r[0]
	ro.r[0] = realOffset
}

// reset overwrites all three offsets, used by uncompressed blocks to
// resynchronize the LRU from their 12-byte header.
func (ro *repeatedOffsets) reset(r0, r1, r2 uint32) {
	ro.r[0], ro.r[1], ro.r[2] = r0, r1, r2
}
