// Copyright 2021 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package lzxd

import "fmt"

// Kind identifies the class of a StructuralError, matching the seven
// fatal error kinds of the LZXD bitstream format.
type Kind int

const (
	// TruncatedInput indicates the bit reader was exhausted mid-symbol.
	TruncatedInput Kind = iota + 1
	// InvalidBlockType indicates a block-type value outside {1,2,3}.
	InvalidBlockType
	// MalformedHuffman indicates an over- or under-subscribed code-length vector.
	MalformedHuffman
	// InvalidPretreeOp indicates a pretree opcode 19 with an out of range
	// secondary symbol, or a run that would overrun the target vector.
	InvalidPretreeOp
	// InvalidPositionSlot indicates a position slot beyond the configured window.
	InvalidPositionSlot
	// InvalidSymbol indicates a decoded main-alphabet symbol with length 0.
	InvalidSymbol
	// OutputOverrun indicates a block's remaining byte count went negative.
	OutputOverrun
)

func (k Kind) String() string {
	switch k {
	case TruncatedInput:
		return "TruncatedInput"
	case InvalidBlockType:
		return "InvalidBlockType"
	case MalformedHuffman:
		return "MalformedHuffman"
	case InvalidPretreeOp:
		return "InvalidPretreeOp"
	case InvalidPositionSlot:
		return "InvalidPositionSlot"
	case InvalidSymbol:
		return "InvalidSymbol"
	case OutputOverrun:
		return "OutputOverrun"
	default:
		return "Unknown"
	}
}

// A StructuralError is returned when the LZXD bitstream is found to be
// syntactically invalid, or the chunk ends before the decoder expects it
// to. All StructuralErrors are fatal: the decoder that produced one must
// not be reused.
type StructuralError struct {
	Kind Kind
	Msg  string
}

func (s *StructuralError) Error() string {
	return fmt.Sprintf("lzxd: %v: %s", s.Kind, s.Msg)
}

func newError(kind Kind, format string, args ...interface{}) *StructuralError {
	return &StructuralError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
