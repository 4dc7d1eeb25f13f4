// Package textmatch compares typed Arabic answers with their targets and
// grades them on the 0-5 review scale.
package textmatch

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agext/levenshtein"
	"github.com/phrazzld/scry-words/internal/domain"
)

const tatweel = '\u0640'

// Similarity thresholds for partially correct answers.
const (
	closeSimilarity   = 0.85
	partialSimilarity = 0.6
	weakSimilarity    = 0.4
)

var letterFolds = map[rune]rune{
	'\u0623': '\u0627', // alif with hamza above
	'\u0625': '\u0627', // alif with hamza below
	'\u0622': '\u0627', // alif madda
	'\u0671': '\u0627', // alif wasla
	'\u0629': '\u0647', // ta marbuta
	'\u0649': '\u064A', // alif maqsura
}

func isHaraka(r rune) bool {
	return (r >= '\u064B' && r <= '\u065F') || r == '\u0670'
}

func isIgnoredPunct(r rune) bool {
	switch r {
	case '؟', '،', '؛', '.', ',', ':', ';', '!', '?', '\'', '"', '(', ')', '-':
		return true
	}
	return unicode.IsSpace(r)
}

// RemoveHarakat strips short-vowel marks and tatweel.
func RemoveHarakat(s string) string {
	return strings.Map(func(r rune) rune {
		if isHaraka(r) || r == tatweel {
			return -1
		}
		return r
	}, s)
}

// Normalize reduces an Arabic string to a comparison form: harakat and
// tatweel are removed, hamza carriers on alif become bare alif, ta marbuta
// becomes ha, alif maqsura becomes ya, and punctuation and whitespace are
// dropped.
func Normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if isHaraka(r) || r == tatweel || isIgnoredPunct(r) {
			return -1
		}
		if folded, ok := letterFolds[r]; ok {
			return folded
		}
		return r
	}, strings.TrimSpace(s))
}

// Forms splits a target into its accepted alternatives, separated by any of
// "،,;/".
func Forms(target string) []string {
	parts := strings.FieldsFunc(target, func(r rune) bool {
		return r == '،' || r == ',' || r == ';' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Match reports whether input matches any form of target after normalization.
func Match(input, target string) bool {
	in := Normalize(input)
	for _, form := range Forms(target) {
		if Normalize(form) == in {
			return true
		}
	}
	return false
}

// MatchStrict reports whether input equals target, ignoring surrounding space.
func MatchStrict(input, target string) bool {
	return strings.TrimSpace(input) == strings.TrimSpace(target)
}

// Grade scores a typed answer against the best matching form of target.
//
// 5: identical apart from harakat. 4: identical after normalization.
// 3, 2, 1: normalized edit similarity of at least 0.85, 0.6 or 0.4.
// 0: anything else.
func Grade(input, target string) domain.Grade {
	in := Normalize(input)
	bare := RemoveHarakat(strings.TrimSpace(input))

	var best domain.Grade
	for _, form := range Forms(target) {
		norm := Normalize(form)

		if in == norm {
			if bare == RemoveHarakat(form) {
				return domain.MaxGrade
			}
			best = maxGrade(best, 4)
			continue
		}

		maxLen := utf8.RuneCountInString(in)
		if n := utf8.RuneCountInString(norm); n > maxLen {
			maxLen = n
		}
		if maxLen == 0 {
			continue
		}

		similarity := 1 - float64(levenshtein.Distance(in, norm, nil))/float64(maxLen)
		switch {
		case similarity >= closeSimilarity:
			best = maxGrade(best, 3)
		case similarity >= partialSimilarity:
			best = maxGrade(best, 2)
		case similarity >= weakSimilarity:
			best = maxGrade(best, 1)
		}
	}

	return best
}

func maxGrade(a, b domain.Grade) domain.Grade {
	if a > b {
		return a
	}
	return b
}
