package matching

import (
	"strings"
	"unicode"
)

var stopWords = map[string]bool{
	"and": true, "the": true, "for": true, "with": true, "have": true,
	"has": true, "years": true, "year": true, "from": true, "work": true,
	"worked": true, "experience": true,
}

// keywords splits text into lower-cased words of at least three runes.
// '+', '#', '.' and '-' are kept inside words so "c++" or "hvac-r" survive.
func keywords(text string) map[string]bool {
	kw := make(map[string]bool)
	var word strings.Builder
	flush := func() {
		w := strings.Trim(word.String(), ".-")
		word.Reset()
		if len([]rune(w)) >= 3 && !stopWords[w] {
			kw[w] = true
		}
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' || r == '-' {
			word.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return kw
}

// covers reports whether every keyword of a skill appears among tokens, in
// any order. A keyword also matches a longer token it prefixes, so "panel"
// finds "panels". A skill with no keywords is never covered.
func covers(tokens, skill map[string]bool) bool {
	if len(skill) == 0 {
		return false
	}
	for kw := range skill {
		if !tokens[kw] && !hasPrefixed(tokens, kw) {
			return false
		}
	}
	return true
}

func hasPrefixed(tokens map[string]bool, prefix string) bool {
	for tok := range tokens {
		if strings.HasPrefix(tok, prefix) {
			return true
		}
	}
	return false
}
