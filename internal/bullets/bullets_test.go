package bullets

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAlwaysReturnsTargetCount(t *testing.T) {
	cases := [][]string{
		nil,
		{},
		{""},
		{"one line"},
		{"one", "two", "three"},
		{"one", "two", "three", "four", "five"},
		{"  padded  ", "", "   "},
	}

	for i, in := range cases {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			out := Normalize(in, 3, EnglishFillers)
			assert.Len(t, out, 3)
		})
	}
}

func TestNormalizeKeepsOrderAndTruncatesList(t *testing.T) {
	out := Normalize([]string{"a line here", "b line here", "c line here", "d line here"}, 3, EnglishFillers)
	assert.Equal(t, []string{"a line here", "b line here", "c line here"}, out)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	first := Normalize([]string{"only one real bullet"}, 3, EnglishFillers)
	second := Normalize(first, 3, EnglishFillers)
	assert.Equal(t, first, second)
}

func TestNormalizeEmptyInputYieldsFillers(t *testing.T) {
	out := Normalize(nil, 3, EnglishFillers)
	assert.Equal(t, EnglishFillers, out)
}

func TestNormalizeRepeatsLastFillerWhenExhausted(t *testing.T) {
	fillers := []string{"first filler", "second filler"}
	out := Normalize(nil, 5, fillers)
	assert.Equal(t, []string{
		"first filler",
		"second filler",
		"second filler",
		"second filler",
		"second filler",
	}, out)
}

func TestNormalizeStripsLegacyMarker(t *testing.T) {
	out := Normalize([]string{"(번역 미구성) actual content"}, 1, EnglishFillers)
	assert.Equal(t, []string{"actual content"}, out)
}

func TestExtractEmptySummary(t *testing.T) {
	out := Extract("   ")
	require.Len(t, out, 3)
	assert.Equal(t, "Summary is not available in the RSS feed.", out[0])
}

func TestExtractKeepsFirstThreeSentences(t *testing.T) {
	in := "The first sentence is long enough. The second sentence is long enough too. " +
		"The third sentence also qualifies here. A fourth sentence should be dropped entirely."
	out := Extract(in)
	require.Len(t, out, 3)
	assert.Equal(t, "The first sentence is long enough.", out[0])
	assert.Equal(t, "The third sentence also qualifies here.", out[2])
}

func TestExtractSkipsShortSentences(t *testing.T) {
	out := Extract("Tiny. This sentence is comfortably above the length floor.")
	require.Len(t, out, 1)
	assert.Equal(t, "This sentence is comfortably above the length floor.", out[0])
}

func TestExtractUnsplittableTextTruncates(t *testing.T) {
	long := ""
	for i := 0; i < 30; i++ {
		long += "wordwordno"
	}
	out := Extract(long)
	require.Len(t, out, 1)
	assert.Len(t, []rune(out[0]), 163) // 160 + "..."
}

func TestExtractAllSentencesTooShort(t *testing.T) {
	out := Extract("Too short. Also tiny.")
	require.Len(t, out, 1)
	assert.Equal(t, "Too short. Also tiny.", out[0])
}

func TestSplitSentences(t *testing.T) {
	got := SplitSentences("One here. Two there! Three? Trailing fragment")
	assert.Equal(t, []string{"One here.", "Two there!", "Three?", "Trailing fragment"}, got)
}

func TestSplitSentencesDoesNotBreakInsideTokens(t *testing.T) {
	got := SplitSentences("Version 1.2 shipped today. Done.")
	assert.Equal(t, []string{"Version 1.2 shipped today.", "Done."}, got)
}

func TestContainsHangul(t *testing.T) {
	assert.True(t, ContainsHangul("새 게시글"))
	assert.False(t, ContainsHangul("plain english"))
	assert.True(t, AnyHangul([]string{"english", "요약"}))
	assert.False(t, AnyHangul([]string{"english", "only"}))
}
