// Package bullets turns free text into fixed-size lists of short summary
// lines. Normalize is pure and idempotent; the digest pipeline relies on
// every post carrying exactly the configured number of bullets.
package bullets

import (
	"strings"
)

// legacyMarker was prepended to untranslated bullets by older digest
// versions and is stripped on sight.
const legacyMarker = "(번역 미구성)"

// EnglishFillers pad an English bullet set that came up short.
var EnglishFillers = []string{
	"See the original post for details.",
	"Open the article link for more context.",
	"More information is available in the full post.",
}

// KoreanFillers pad a translated bullet set that came up short.
var KoreanFillers = []string{
	"자세한 내용은 원문을 참고하세요.",
	"추가 정보는 원문에 있습니다.",
	"원문 링크에서 전체 내용을 확인하세요.",
}

// KoreanPlaceholders are shown when no translation was produced at all.
var KoreanPlaceholders = []string{
	"핵심 인사이트를 생성하려면 AOAI 설정이 필요합니다.",
	"현재는 영어 요약만 제공됩니다.",
	"원문 링크에서 전체 내용을 확인하세요.",
}

// noSummaryFillers are used when the feed item carried no summary text.
var noSummaryFillers = []string{
	"Summary is not available in the RSS feed.",
	"Open the article link for full details.",
	"This digest was generated without full-page scraping.",
}

// Normalize sanitizes candidates, keeps the first n non-blank ones in
// order, and pads with fillers until exactly n lines exist. Once the
// filler list is exhausted the last filler repeats.
func Normalize(in []string, n int, fillers []string) []string {
	cleaned := make([]string, 0, n)
	for _, s := range in {
		s = sanitize(s)
		if s == "" {
			continue
		}
		cleaned = append(cleaned, s)
		if len(cleaned) == n {
			break
		}
	}

	fillerIndex := 0
	for len(cleaned) < n {
		filler := "See the original post for details."
		if len(fillers) > 0 {
			i := fillerIndex
			if i >= len(fillers) {
				i = len(fillers) - 1
			}
			filler = fillers[i]
		}
		cleaned = append(cleaned, filler)
		fillerIndex++
	}

	return cleaned
}

// Extract splits a feed summary into up to three sentence bullets. Empty
// input yields an explanatory filler set; text without sentence structure
// yields a single truncated line.
func Extract(summary string) []string {
	text := strings.TrimSpace(summary)
	if text == "" {
		out := make([]string, len(noSummaryFillers))
		copy(out, noSummaryFillers)
		return out
	}

	var parts []string
	for _, s := range SplitSentences(text) {
		s = strings.TrimSpace(s)
		if len(s) < 20 {
			continue
		}
		parts = append(parts, Truncate(s, 160))
		if len(parts) == 3 {
			break
		}
	}

	if len(parts) == 0 {
		return []string{Truncate(text, 140)}
	}
	return parts
}

// SplitSentences splits text after ./!/? followed by whitespace.
func SplitSentences(text string) []string {
	var out []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !isSpace(runes[i+1]) {
			continue
		}
		s := strings.TrimSpace(string(runes[start : i+1]))
		if s != "" {
			out = append(out, s)
		}
		start = i + 1
	}
	if rest := strings.TrimSpace(string(runes[start:])); rest != "" {
		out = append(out, rest)
	}
	return out
}

// Truncate caps s at max runes, appending "..." when it was cut.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// ContainsHangul reports whether s contains at least one Hangul syllable.
func ContainsHangul(s string) bool {
	for _, r := range s {
		if r >= 0xAC00 && r <= 0xD7A3 {
			return true
		}
	}
	return false
}

// AnyHangul reports whether any line in the set contains Hangul.
func AnyHangul(set []string) bool {
	for _, s := range set {
		if ContainsHangul(s) {
			return true
		}
	}
	return false
}

func sanitize(s string) string {
	t := strings.TrimSpace(s)
	if strings.HasPrefix(t, legacyMarker) {
		t = strings.TrimSpace(strings.TrimPrefix(t, legacyMarker))
	}
	return t
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
