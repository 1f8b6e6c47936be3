package phytron

import (
	"fmt"
	"strings"
)

// StatusWord is the ordered flag sequence decoded from one status response.
// Its width depends on the protocol generation.
type StatusWord struct {
	bits []bool
}

// Width returns the number of decoded flags.
func (s StatusWord) Width() int { return len(s.bits) }

// Flag returns the flag at index i. Indexing past the decoded width is a
// configuration error, not a zero value.
func (s StatusWord) Flag(i int) (bool, error) {
	if i < 0 || i >= len(s.bits) {
		return false, &StatusLayoutError{Index: i, Width: len(s.bits)}
	}
	return s.bits[i], nil
}

// any reports whether at least one of the given flag indices is set.
func (s StatusWord) any(indices []int) (bool, error) {
	for _, i := range indices {
		set, err := s.Flag(i)
		if err != nil {
			return false, err
		}
		if set {
			return true, nil
		}
	}
	return false, nil
}

// swapped returns a copy of s with the given index pairs exchanged. Used for
// the inversion-aware limit/reference remap before state derivation.
func (s StatusWord) swapped(pairs map[int]int) StatusWord {
	out := make([]bool, len(s.bits))
	copy(out, s.bits)
	for from, to := range pairs {
		if from < len(s.bits) && to < len(s.bits) {
			out[to] = s.bits[from]
		}
	}
	return StatusWord{bits: out}
}

// decodeNibbleStatus expands a decimal status value into flags. The
// controller transmits the status as a decimal integer that must be read as
// a zero-padded hexadecimal number of ndigits digits; each hex digit packs 4
// flags, least significant digit first, bit 0 first. This reconstructs a
// bitfield wider than one register (phyMOTION manual, p. 41).
func decodeNibbleStatus(raw int64, ndigits int) StatusWord {
	hex := fmt.Sprintf("%0*X", ndigits, raw)
	bits := make([]bool, 0, ndigits*4)
	for i := len(hex) - 1; i >= 0; i-- {
		nibble := strings.IndexByte("0123456789ABCDEF", hex[i])
		for b := 0; b < 4; b++ {
			bits = append(bits, (nibble>>b)&1 == 1)
		}
	}
	return StatusWord{bits: bits}
}

// decodeWindowStatus splits a status value into flags via fixed bit-shift
// windows. Older MCC-2 firmware reports a narrow status word where each flag
// sits at a fixed shift; this is not equivalent to the nibble expansion and
// the two must stay separately selectable.
func decodeWindowStatus(raw int64, shifts []uint) StatusWord {
	bits := make([]bool, len(shifts))
	for i, sh := range shifts {
		bits[i] = (raw>>sh)&1 == 1
	}
	return StatusWord{bits: bits}
}

// statusText joins the descriptions of all active flags, newline separated.
// Flags beyond the description table carry no text and are skipped.
func statusText(w StatusWord, descriptions []string) string {
	var active []string
	for i, set := range w.bits {
		if set && i < len(descriptions) {
			active = append(active, descriptions[i])
		}
	}
	return strings.Join(active, "\n")
}
