package session

import "unicode/utf16"

// seededShuffle returns a copy of candidates in an order that is stable for a
// given seed. Different users get different orders, so they meet new words in
// a different sequence.
func seededShuffle(candidates []Candidate, seed string) []Candidate {
	out := make([]Candidate, len(candidates))
	copy(out, candidates)

	var h int32
	for _, c := range utf16.Encode([]rune(seed)) {
		h = (h << 5) - h + int32(c)
	}

	for i := len(out) - 1; i > 0; i-- {
		h = (h << 5) - h + int32(i)
		abs := int64(h)
		if abs < 0 {
			abs = -abs
		}
		j := int(abs % int64(i+1))
		out[i], out[j] = out[j], out[i]
	}

	return out
}
