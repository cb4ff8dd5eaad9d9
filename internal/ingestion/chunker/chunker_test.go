package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentences(t *testing.T) {
	got := Sentences("First one. Second!  Third? trailing v1.2 words")
	assert.Equal(t, []string{"First one.", "Second!", "Third?", "trailing v1.2 words"}, got)
	assert.Empty(t, Sentences("   "))
}

func TestSplitShortTextIsOneChunk(t *testing.T) {
	got := Split("A short document. It has two sentences.", Options{})
	assert.Equal(t, []string{"A short document. It has two sentences."}, got)
}

func TestSplitOverlapsChunks(t *testing.T) {
	sentence := "This sentence is exactly forty chars!!."
	var b strings.Builder
	for i := 0; i < 30; i++ {
		b.WriteString(sentence)
		b.WriteString(" ")
	}

	// 25 tokens target = 100 chars, 5 tokens overlap = 20 chars.
	got := Split(b.String(), Options{TargetTokens: 25, OverlapTokens: 5})
	require.Greater(t, len(got), 1)
	for i, c := range got {
		assert.LessOrEqual(t, len([]rune(c)), 100+1, "chunk %d too long", i)
	}
	for i := 1; i < len(got); i++ {
		prev := got[i-1]
		overlap := prev[len(prev)-10:]
		assert.Contains(t, got[i], overlap, "chunk %d should start with the tail of chunk %d", i, i-1)
	}
}

func TestSplitDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	assert.Equal(t, DefaultTargetTokens, o.TargetTokens)
	assert.Equal(t, DefaultOverlapTokens, o.OverlapTokens)
}
