// Copyright 2021 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package lzxdtest provides test fixtures for the lzxd decoder: random
// payload generators and a from-scratch verbatim-block LZXD bitstream
// writer, used by the package's own tests and by cmd/lzxdcat's.
package lzxdtest

import (
	"fmt"
	"math/rand"
	"time"
)

// fixedRandSeed must stay in sync across test runs so that
// GenPredictableRandomData always returns the same bytes.
const fixedRandSeed = 0x1234

var randSource rand.Source

func init() {
	randSeed := time.Now().UnixNano()
	fmt.Printf("rand seed for GenReproducibleRandomData: %v\n", randSeed)
	randSource = rand.NewSource(randSeed)
}

// GenPredictableRandomData generates random data starting from a fixed,
// known seed; the same size always produces the same bytes.
func GenPredictableRandomData(size int) []byte {
	gen := rand.New(rand.NewSource(fixedRandSeed))
	out := make([]byte, size)
	for i := range out {
		out[i] = byte(gen.Intn(256))
	}
	return out
}

// GenReproducibleRandomData uses the random seed printed by this file's
// init function, so a failing run can be reproduced by hardcoding that
// seed.
func GenReproducibleRandomData(size int) []byte {
	gen := rand.New(randSource)
	out := make([]byte, size)
	for i := range out {
		out[i] = byte(gen.Intn(256))
	}
	return out
}

// FirstN returns at most the first n bytes of b.
func FirstN(n int, b []byte) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
