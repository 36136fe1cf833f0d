package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreIdenticalNames(t *testing.T) {
	assert.Equal(t, 100, Score("चावल", "चावल"))
	assert.Equal(t, 100, Score("Basmati Rice", "basmati rice"))
}

func TestScoreWordOrderInsensitive(t *testing.T) {
	// token sort makes reordered words score as identical
	assert.GreaterOrEqual(t, Score("rice basmati", "basmati rice"), IdentityThreshold)
}

func TestScorePartialContainment(t *testing.T) {
	// partial ratio rescues a short name embedded in a longer one
	assert.GreaterOrEqual(t, Score("rice", "basmati rice 5kg bag"), RenameThreshold)
}

func TestScoreUnrelatedNamesStayLow(t *testing.T) {
	assert.Less(t, Score("चीनी", "राजमा"), RenameThreshold)
}

func TestIsLatin(t *testing.T) {
	assert.True(t, IsLatin("sugar"))
	assert.True(t, IsLatin("moong dal"))
	assert.False(t, IsLatin("चीनी"))
	assert.False(t, IsLatin("मूंग दाल"))
	assert.False(t, IsLatin("123"))
}
