package content

import (
	"strings"
	"unicode"
)

// Nigerian-English marker words checked before any script sniffing.
var nigerianMarkers = []string{"naira", "lagos", "abuja", "nigeria", "buhari"}

// DetectLanguage guesses the language of cleaned text. Nigerian-English
// markers win, then the first rune falling into a known script block
// decides, then the caller default (or "en").
func DetectLanguage(text, fallback string) string {
	if fallback == "" {
		fallback = "en"
	}

	lower := strings.ToLower(text)
	for _, marker := range nigerianMarkers {
		if strings.Contains(lower, marker) {
			return "en-NG"
		}
	}

	for _, r := range text {
		switch {
		case unicode.Is(unicode.Cyrillic, r):
			return "ru"
		case unicode.Is(unicode.Arabic, r):
			return "ar"
		case unicode.Is(unicode.Hiragana, r), unicode.Is(unicode.Katakana, r):
			return "ja"
		case unicode.Is(unicode.Hangul, r):
			return "ko"
		case unicode.Is(unicode.Han, r):
			return "zh"
		}
	}

	return fallback
}
