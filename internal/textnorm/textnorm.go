// Package textnorm normalizes Ukrainian/Russian chat text before rule
// matching. No spelling correction happens here: the goal is a stable
// canonical form, not a corrected one.
package textnorm

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	nonWordRe    = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	spaceRe      = regexp.MustCompile(`\s+`)
	digitsRe     = regexp.MustCompile(`\d+`)
	nbspReplacer = strings.NewReplacer(" ", "", " ", "")

	// Ukrainian letters are folded onto their Russian look-alikes so one
	// synonym row covers both spellings ("Салтівка" and "Салтовка").
	ukrFolder = strings.NewReplacer(
		"і", "и", "ї", "и", "є", "е", "ґ", "г",
		"І", "и", "Ї", "и", "Є", "е", "Ґ", "г",
	)
)

// Normalize lowercases, folds Ukrainian-specific letters, strips
// punctuation and collapses whitespace.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = ukrFolder.Replace(s)
	s = nonWordRe.ReplaceAllString(s, " ")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Tokens returns the words of the normalized form.
func Tokens(s string) []string {
	norm := Normalize(s)
	if norm == "" {
		return nil
	}
	return strings.Split(norm, " ")
}

// Ints extracts every integer in order of appearance. Digit groups
// separated by a single space join only when the trailing group has
// exactly three digits, so "50 000" reads as 50000 while "25000 40000"
// stays two numbers.
func Ints(s string) []int {
	s = nbspReplacer.Replace(s)
	locs := digitsRe.FindAllStringIndex(s, -1)
	out := make([]int, 0, len(locs))
	for i := 0; i < len(locs); i++ {
		run := s[locs[i][0]:locs[i][1]]
		for i+1 < len(locs) &&
			s[locs[i][1]:locs[i+1][0]] == " " &&
			locs[i+1][1]-locs[i+1][0] == 3 {
			run += s[locs[i+1][0]:locs[i+1][1]]
			i++
		}
		if v, err := strconv.Atoi(run); err == nil {
			out = append(out, v)
		}
	}
	return out
}

// IntsSpaced extracts integers without joining digit groups across
// spaces, for texts where "2 3" means two separate values.
func IntsSpaced(s string) []int {
	s = nbspReplacer.Replace(s)
	matches := digitsRe.FindAllString(s, -1)
	out := make([]int, 0, len(matches))
	for _, m := range matches {
		if v, err := strconv.Atoi(m); err == nil {
			out = append(out, v)
		}
	}
	return out
}

// caseEndings declension suffixes stripped by Stem, longest first.
// Stem always runs on Normalize output, so the Ukrainian genitive
// plural appears in its folded spelling "ив", never "ів".
var caseEndings = []string{
	"ого", "ому", "ими", "ыми", "ами", "ями",
	"ой", "ый", "ий", "ас", "яс", "ое", "ее",
	"ом", "ою", "ам", "ах", "ив", "ов", "ей", "ям", "ях",
	"а", "у", "ю", "о", "е", "і", "и", "ь", "ї",
}

// Stem strips one declension suffix when the remaining stem keeps at
// least three runes. A deliberately light stemmer: location and section
// keywords only need to survive case inflection, not full morphology.
func Stem(word string) string {
	runes := []rune(word)
	if len(runes) <= 3 {
		return word
	}
	for _, ending := range caseEndings {
		er := []rune(ending)
		if len(runes)-len(er) < 3 {
			continue
		}
		if strings.HasSuffix(word, ending) {
			return string(runes[:len(runes)-len(er)])
		}
	}
	return word
}

// ContainsPhrase reports whether the normalized phrase occurs in the
// normalized text on whole-word boundaries.
func ContainsPhrase(normText, normPhrase string) bool {
	if normText == "" || normPhrase == "" {
		return false
	}
	return strings.Contains(" "+normText+" ", " "+normPhrase+" ")
}

// ContainsWord reports whether the word occurs as a standalone token.
func ContainsWord(normText, word string) bool {
	for _, tok := range strings.Split(normText, " ") {
		if tok == word {
			return true
		}
	}
	return false
}
