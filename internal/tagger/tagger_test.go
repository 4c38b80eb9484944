package tagger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var vocab = []string{"general", "first confession", "pre-marriage", "follow-up", "fasting"}

func TestSuggestFindsConfiguredTags(t *testing.T) {
	d, err := Compile(vocab)
	require.NoError(t, err)

	got := d.Suggest("We talked about her first confession and some pre-marriage questions.")
	assert.Equal(t, []string{"first confession", "pre-marriage"}, got)
}

func TestSuggestIsCaseAndPunctuationInsensitive(t *testing.T) {
	d, err := Compile(vocab)
	require.NoError(t, err)

	got := d.Suggest("FIRST   CONFESSION! Then fasting…")
	assert.Equal(t, []string{"first confession", "fasting"}, got)
}

func TestSuggestDeduplicates(t *testing.T) {
	d, err := Compile(vocab)
	require.NoError(t, err)

	got := d.Suggest("fasting, then more fasting, then general talk about fasting")
	assert.Equal(t, []string{"fasting", "general"}, got)
}

func TestSuggestRespectsWordBoundaries(t *testing.T) {
	d, err := Compile([]string{"art", "confession"})
	require.NoError(t, err)

	assert.Empty(t, d.Suggest("we spoke from the heart"))
	assert.Equal(t, []string{"art"}, d.Suggest("her art class"))
}

func TestStopwordTagsStayConfigurable(t *testing.T) {
	// "general" is an everyday English word; a curated vocabulary must
	// still be able to carry it.
	d, err := Compile([]string{"general", "fasting"})
	require.NoError(t, err)

	assert.True(t, d.IsKnown("general"))
	assert.Equal(t, []string{"general"}, d.Suggest("we had a general talk"))

	d, err = Compile([]string{"with", "fasting"})
	require.NoError(t, err)
	assert.True(t, d.IsKnown("with"))
	assert.Equal(t, []string{"with"}, d.Suggest("met with the family"))
}

func TestBlankTagsDropped(t *testing.T) {
	d, err := Compile([]string{"", "   ", "!!!", "fasting"})
	require.NoError(t, err)

	assert.False(t, d.IsKnown(""))
	assert.True(t, d.IsKnown("fasting"))
	assert.Equal(t, []string{"fasting"}, d.Suggest("fasting questions"))
}

func TestIsKnownFoldsLikeSuggest(t *testing.T) {
	d, err := Compile(vocab)
	require.NoError(t, err)

	assert.True(t, d.IsKnown("First Confession"))
	assert.True(t, d.IsKnown("PRE-MARRIAGE"))
	assert.False(t, d.IsKnown("unknown tag"))
}

func TestEmptyVocabulary(t *testing.T) {
	d, err := Compile(nil)
	require.NoError(t, err)

	assert.Empty(t, d.Suggest("anything at all"))
	assert.False(t, d.IsKnown("anything"))
}
