package textmatch

import "strings"

var translitTable = map[string]string{
	"a": "ا", "b": "ب", "t": "ت", "th": "ث", "j": "ج", "H": "ح", "kh": "خ",
	"d": "د", "dh": "ذ", "r": "ر", "z": "ز", "s": "س", "sh": "ش", "S": "ص",
	"D": "ض", "T": "ط", "Z": "ظ", "3": "ع", "gh": "غ", "f": "ف", "q": "ق",
	"k": "ك", "l": "ل", "m": "م", "n": "ن", "h": "ه", "w": "و", "y": "ي",
	"aa": "ا", "ii": "ي", "uu": "و", "2": "ء", "'": "ء",
	"la": "لا", "al": "ال",
}

// Transliterate converts a Latin chat-alphabet spelling to Arabic script,
// longest chunk first. Unknown characters are kept as they are.
func Transliterate(input string) string {
	var b strings.Builder
	runes := []rune(input)

	for i := 0; i < len(runes); {
		matched := false
		for size := 3; size >= 1; size-- {
			if i+size > len(runes) {
				continue
			}
			if out, ok := translitTable[string(runes[i:i+size])]; ok {
				b.WriteString(out)
				i += size
				matched = true
				break
			}
		}
		if !matched {
			b.WriteRune(runes[i])
			i++
		}
	}

	return b.String()
}
