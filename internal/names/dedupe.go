package names

import (
	"regexp"
	"sort"
	"strings"
)

// trailingSuffixes are role and speech fragments that pattern matching
// drags in behind an actual name ("Juan Pérez Presidente").
var trailingSuffixes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s+Presidente$`),
	regexp.MustCompile(`(?i)\s+Presidenta$`),
	regexp.MustCompile(`(?i)\s+Ha\s+Sido$`),
	regexp.MustCompile(`(?i)\s+Ha$`),
	regexp.MustCompile(`(?i)\s+Del?\s+`),
	regexp.MustCompile(`(?i)\s+De\s+La$`),
}

// accentFolder maps accented Spanish letters onto their base forms so
// "Pérez" and "Perez" land in the same group.
var accentFolder = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n",
	"Á", "A", "É", "E", "Í", "I", "Ó", "O", "Ú", "U", "Ü", "U", "Ñ", "N",
)

// Normalize strips trailing role/title suffixes from a raw name.
func Normalize(name string) string {
	for _, suffix := range trailingSuffixes {
		name = suffix.ReplaceAllString(name, "")
	}
	return strings.TrimSpace(name)
}

// baseKey groups name variants: the first two tokens, lowercased and
// accent-folded.
func baseKey(name string) (string, bool) {
	words := strings.Fields(name)
	if len(words) < 2 {
		return "", false
	}
	return accentFolder.Replace(strings.ToLower(words[0] + " " + words[1])), true
}

// Dedupe merges raw name variants that share a base into one canonical
// identity. The variant with the highest raw count wins (shorter
// string breaks ties) and carries the summed count of its whole group.
// Feeding the output back through Dedupe is a no-op.
func Dedupe(counts map[string]int) map[string]int {
	type variant struct {
		name  string
		count int
	}

	groups := make(map[string][]variant)
	for name, count := range counts {
		normalized := Normalize(name)
		base, ok := baseKey(normalized)
		if !ok {
			continue
		}
		groups[base] = append(groups[base], variant{name: normalized, count: count})
	}

	canonical := make(map[string]int, len(groups))
	for _, variants := range groups {
		sort.Slice(variants, func(i, j int) bool {
			if variants[i].count != variants[j].count {
				return variants[i].count > variants[j].count
			}
			if len(variants[i].name) != len(variants[j].name) {
				return len(variants[i].name) < len(variants[j].name)
			}
			return variants[i].name < variants[j].name
		})

		total := 0
		for _, v := range variants {
			total += v.count
		}
		canonical[variants[0].name] += total
	}

	return canonical
}

// Significant filters canonical names below the mention threshold.
// Single mentions are almost always pattern-match noise.
func Significant(canonical map[string]int, minMentions int) map[string]int {
	out := make(map[string]int)
	for name, count := range canonical {
		if count >= minMentions {
			out[name] = count
		}
	}
	return out
}

// SortedNames returns the canonical names in deterministic order.
func SortedNames(canonical map[string]int) []string {
	names := make([]string, 0, len(canonical))
	for name := range canonical {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
