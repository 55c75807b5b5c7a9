// Package names finds candidate legislator names in transcript prose
// and merges near-duplicate spellings into canonical identities.
package names

import (
	"regexp"
	"strings"
	"unicode"
)

// capName matches 2-3 consecutive capitalized tokens, the surface shape
// of a Spanish full name.
const capName = `([A-ZÁÉÍÓÚÑ][a-záéíóúñ]+(?:\s+[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+){1,2})`

// namePair is the stricter two-token form used in comma-separated lists.
const namePair = `[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+\s+[A-ZÁÉÍÓÚÑ][a-záéíóúñ]+`

const boundary = `(?:\s|,|\.|\?|!|$)`

// Extractor scans transcript text with a fixed set of honorific and
// title patterns. The patterns over-match capitalized functional
// phrases, so every candidate passes through the filters below before
// it counts.
type Extractor struct {
	patterns    []*regexp.Regexp
	listPattern *regexp.Regexp
}

// stopPhrases are functional phrases that surface in name position but
// are never names.
var stopPhrases = []string{
	"de la", "de las", "del", "de los", "el presidente", "la presidente",
	"le voy", "ha sido", "hasta este", "contamos con", "las distintas",
	"presidente de", "representante de", "respecto de", "respecto a",
	"voy a", "va a", "tiene que", "hay que", "debe ser",
	"durante este", "para el", "para la", "pero también", "presentes contamos",
	"registrados hasta", "la lectura", "el orden", "este momento", "muy buenos",
}

// nonNameWords are common Spanish words that never open a real name.
var nonNameWords = map[string]bool{
	"durante": true, "para": true, "pero": true, "también": true,
	"presentes": true, "contamos": true, "registrados": true, "hasta": true,
	"lectura": true, "orden": true, "momento": true, "buenos": true,
	"este": true, "esta": true, "estos": true, "estas": true,
}

// NewExtractor compiles the fixed pattern set.
func NewExtractor() *Extractor {
	return &Extractor{
		patterns: []*regexp.Regexp{
			// "el/la asambleísta [Name]"
			regexp.MustCompile(`(?:el|la|El|La)\s+[aA]sambleísta\s+` + capName + boundary),
			// "el/la legislador/a [Name]"
			regexp.MustCompile(`(?:el|la|El|La)\s+[lL]egisladora?\s+` + capName + boundary),
			// professional titles: "doctor [Name]", "ingeniera [Name]"
			regexp.MustCompile(`(?:doctora?|Doctora?|licenciada?|Licenciada?|ingeniera?|Ingeniera?)\s+` + capName + boundary),
		},
		// "asambleístas [Name1], [Name2], [Name3]" — plural only, the
		// singular form already belongs to the honorific patterns and
		// matching it here would count those mentions twice.
		listPattern: regexp.MustCompile(`[aA]sambleístas\s+(` + namePair + `(?:,\s*` + namePair + `)*)`),
	}
}

// Extract returns a multiset of surviving name candidates with their
// raw occurrence counts.
func (e *Extractor) Extract(text string) map[string]int {
	var raw []string

	for _, p := range e.patterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			raw = append(raw, m[1])
		}
	}

	for _, m := range e.listPattern.FindAllStringSubmatch(text, -1) {
		for _, name := range strings.Split(m[1], ",") {
			raw = append(raw, name)
		}
	}

	counts := make(map[string]int)
	for _, candidate := range raw {
		name, ok := cleanCandidate(candidate)
		if !ok {
			continue
		}
		counts[name]++
	}
	return counts
}

// cleanCandidate normalizes one raw match and applies the rejection
// filters. ok=false means the candidate is a pattern artifact, not a
// name.
func cleanCandidate(raw string) (string, bool) {
	name := titleCase(strings.Join(strings.Fields(raw), " "))

	if len(name) < 6 || containsDigit(name) {
		return "", false
	}

	lower := strings.ToLower(name)
	for _, stop := range stopPhrases {
		if strings.Contains(lower, stop) {
			return "", false
		}
	}

	words := strings.Fields(name)
	if len(words) < 2 || len(words) > 4 {
		return "", false
	}

	if nonNameWords[strings.ToLower(words[0])] {
		return "", false
	}

	return name, true
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// titleCase uppercases the first rune of each word and lowercases the
// rest, preserving accented characters.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		if len(runes) > 0 {
			runes[0] = unicode.ToUpper(runes[0])
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
