package docparse

import (
	"strings"
	"unicode/utf8"
)

// languageCandidates fixes the scoring iteration order, which also breaks
// ties: the first candidate reaching the top score wins. English carries
// no signal characters and wins only by default.
var languageCandidates = []string{"ron", "fra", "deu", "eng"}

var languageDiacritics = map[string]string{
	"ron": "ăâîșț",
	"fra": "àâæçéèêëîïôùûüÿœ",
	"deu": "äöüß",
	"eng": "",
}

// romanianKeywords are common words in the documents this service mostly
// sees. Each keyword found adds a scoring bonus for Romanian.
var romanianKeywords = []string{
	"conform", "societatea", "contract", "beneficiar",
	"proiect", "anul", "executant", "cerere",
	"emis", "semnat", "pentru", "acest",
}

const (
	diacriticPoints   = 5
	keywordPoints     = 3
	minLanguageSignal = 3
	minLanguageLength = 20
)

// DetectLanguage guesses the language of extracted text from diacritic
// frequency plus a small Romanian keyword list. It returns "" when the
// text is too short to carry a signal, and defaults to Romanian when no
// candidate scores clearly. Advisory only, never exact identification.
func DetectLanguage(text string) string {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < minLanguageLength {
		return ""
	}
	lower := strings.ToLower(text)

	best := ""
	bestScore := -1
	for _, lang := range languageCandidates {
		score := 0
		if chars := languageDiacritics[lang]; chars != "" {
			for _, r := range lower {
				if strings.ContainsRune(chars, r) {
					score += diacriticPoints
				}
			}
		}
		if lang == "ron" {
			for _, kw := range romanianKeywords {
				if strings.Contains(lower, kw) {
					score += keywordPoints
				}
			}
		}
		if score > bestScore {
			best = lang
			bestScore = score
		}
	}

	if bestScore < minLanguageSignal {
		return "ron"
	}
	return best
}

// OCRLanguages builds the tesseract language-priority string for a
// detected language tag. Unknown or empty tags fall back to the service
// default of Romanian plus English.
func OCRLanguages(detected string) string {
	switch detected {
	case "ron":
		return "ron+eng"
	case "eng":
		return "eng+ron"
	case "fra", "deu", "ita", "spa":
		return detected + "+eng+ron"
	default:
		return "ron+eng"
	}
}
