package stock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gupta-labs/khata-sahayak/internal/domain/entity"
)

type stubTranslator struct {
	out   string
	err   error
	calls []string
}

func (s *stubTranslator) Translate(_ context.Context, text, _ string) (string, error) {
	s.calls = append(s.calls, text)
	if s.err != nil {
		return "", s.err
	}
	if s.out == "" {
		return text, nil
	}
	return s.out, nil
}

func seededCatalog(items ...entity.StockItem) *Catalog {
	return NewCatalog(&memStockRepo{items: items}, testLogger(), false)
}

func TestResolveExactNameAndUnit(t *testing.T) {
	cat := seededCatalog(entity.StockItem{ID: "1", ActorID: "a", ItemName: "चावल", Unit: "kg", Quantity: dec("10")})
	m := NewMatcher(cat, &stubTranslator{}, "hi", testLogger())

	res, err := m.Resolve(context.Background(), "a", "चावल", "kg", "hi")
	require.NoError(t, err)
	require.NotNil(t, res.Entry)
	assert.Equal(t, "चावल", res.Name)
	assert.Equal(t, "kg", res.Unit)
}

func TestResolveTranslatesLatinScriptNames(t *testing.T) {
	cat := seededCatalog(entity.StockItem{ID: "1", ActorID: "a", ItemName: "चीनी", Unit: "kg", Quantity: dec("4")})
	tr := &stubTranslator{out: "चीनी"}
	m := NewMatcher(cat, tr, "hi", testLogger())

	res, err := m.Resolve(context.Background(), "a", "sugar", "kg", "en")
	require.NoError(t, err)
	require.NotNil(t, res.Entry)
	assert.Equal(t, "चीनी", res.Name)
	assert.Equal(t, []string{"sugar"}, tr.calls)
}

func TestResolveSkipsTranslationWhenLanguagesMatch(t *testing.T) {
	cat := seededCatalog(entity.StockItem{ID: "1", ActorID: "a", ItemName: "चीनी", Unit: "kg", Quantity: dec("4")})
	tr := &stubTranslator{}
	m := NewMatcher(cat, tr, "hi", testLogger())

	_, err := m.Resolve(context.Background(), "a", "चीनी", "kg", "hi")
	require.NoError(t, err)
	assert.Empty(t, tr.calls)
}

func TestResolveTranslationFailureFallsBackToRawName(t *testing.T) {
	cat := seededCatalog(entity.StockItem{ID: "1", ActorID: "a", ItemName: "sugar", Unit: "kg", Quantity: dec("4")})
	tr := &stubTranslator{err: context.DeadlineExceeded}
	m := NewMatcher(cat, tr, "hi", testLogger())

	res, err := m.Resolve(context.Background(), "a", "sugar", "kg", "en")
	require.NoError(t, err)
	require.NotNil(t, res.Entry)
	assert.Equal(t, "sugar", res.Name)
}

func TestResolveFuzzyRenameAdoptsCatalogSpelling(t *testing.T) {
	cat := seededCatalog(entity.StockItem{ID: "1", ActorID: "a", ItemName: "basmati rice", Unit: "kg", Quantity: dec("10")})
	m := NewMatcher(cat, &stubTranslator{}, "en", testLogger())

	// reordered words still collapse onto the stored spelling
	res, err := m.Resolve(context.Background(), "a", "rice basmati", "kg", "en")
	require.NoError(t, err)
	require.NotNil(t, res.Entry)
	assert.Equal(t, "basmati rice", res.Name)
}

func TestResolveUnitFallbackThresholdBoundary(t *testing.T) {
	// the only catalog entry differs in unit, so resolution rides on the
	// name-only tier and its threshold
	entry := entity.StockItem{ID: "1", ActorID: "a", ItemName: "चावल", Unit: "g", Quantity: dec("500")}

	t.Run("score 79 does not match", func(t *testing.T) {
		cat := seededCatalog(entry)
		m := NewMatcher(cat, &stubTranslator{}, "hi", testLogger())
		m.renameScore = func(a, b string) int { return 0 }
		m.identityScore = func(a, b string) int { return 79 }

		res, err := m.Resolve(context.Background(), "a", "चावल-x", "kg", "hi")
		require.NoError(t, err)
		assert.Nil(t, res.Entry)
	})

	t.Run("score 80 matches and adopts stored unit", func(t *testing.T) {
		cat := seededCatalog(entry)
		m := NewMatcher(cat, &stubTranslator{}, "hi", testLogger())
		m.renameScore = func(a, b string) int { return 0 }
		m.identityScore = func(a, b string) int { return 80 }

		res, err := m.Resolve(context.Background(), "a", "चावल-x", "kg", "hi")
		require.NoError(t, err)
		require.NotNil(t, res.Entry)
		assert.Equal(t, "g", res.Unit)
	})
}

func TestResolveUnknownNameReportsNone(t *testing.T) {
	cat := seededCatalog(entity.StockItem{ID: "1", ActorID: "a", ItemName: "चावल", Unit: "kg", Quantity: dec("10")})
	m := NewMatcher(cat, &stubTranslator{}, "hi", testLogger())

	// no characters in common with the catalog entry, every tier misses
	res, err := m.Resolve(context.Background(), "a", "pencil", "pcs", "hi")
	require.NoError(t, err)
	assert.Nil(t, res.Entry)
	assert.Equal(t, "pcs", res.Unit)
}
