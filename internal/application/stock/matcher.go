package stock

import (
	"context"

	"github.com/gupta-labs/khata-sahayak/internal/application/ports"
	"github.com/gupta-labs/khata-sahayak/internal/domain/entity"
	"github.com/gupta-labs/khata-sahayak/internal/domain/match"
	"github.com/gupta-labs/khata-sahayak/internal/domain/units"
	"github.com/gupta-labs/khata-sahayak/pkg/logger"
)

// MatchResult is the outcome of resolving an extracted item name against
// the catalog. Entry is nil when nothing matched; Name and Unit then carry
// the best-effort lookup key so the caller can report what failed.
type MatchResult struct {
	Entry *entity.StockItem
	Name  string
	Unit  string
	Score int
}

// Matcher resolves free-text item names, possibly in another language or
// script, against a shopkeeper's catalog.
type Matcher struct {
	catalog    *Catalog
	translator ports.TranslationService
	// catalogLang is the language all stored item names are normalized
	// against, Hindi for the Indian market.
	catalogLang string
	log         *logger.Logger

	renameScore   func(a, b string) int
	identityScore func(a, b string) int
}

func NewMatcher(catalog *Catalog, translator ports.TranslationService, catalogLang string, log *logger.Logger) *Matcher {
	return &Matcher{
		catalog:       catalog,
		translator:    translator,
		catalogLang:   catalogLang,
		log:           log,
		renameScore:   match.Score,
		identityScore: match.TokenSort,
	}
}

// Resolve runs the tiered matching pipeline:
//
//  1. translate the query name into the catalog language when the script
//     or detected language says it is foreign to the catalog,
//  2. fuzzy-rename against existing items at the loose threshold, so
//     transliteration noise collapses onto the stored spelling,
//  3. exact (name, unit) key lookup, falling back to a name-only match at
//     the tight threshold that adopts the stored entry's unit.
//
// A nil Entry with a nil error means the name is genuinely unknown.
func (m *Matcher) Resolve(ctx context.Context, actorID, queryName, queryUnit, detectedLang string) (*MatchResult, error) {
	lookupName := m.translated(ctx, queryName, detectedLang)

	items, err := m.catalog.Lookup(ctx, actorID)
	if err != nil {
		return nil, err
	}

	if best, score := bestByName(lookupName, items, m.renameScore); best != nil && score >= match.RenameThreshold {
		lookupName = best.ItemName
	}

	for i := range items {
		if items[i].ItemName == lookupName && units.Normalize(items[i].Unit) == units.Normalize(queryUnit) {
			return &MatchResult{Entry: &items[i], Name: lookupName, Unit: items[i].Unit, Score: 100}, nil
		}
	}

	// the stored unit is authoritative once the item itself is identified
	if best, score := bestByName(lookupName, items, m.identityScore); best != nil && score >= match.IdentityThreshold {
		return &MatchResult{Entry: best, Name: best.ItemName, Unit: best.Unit, Score: score}, nil
	}

	return &MatchResult{Entry: nil, Name: lookupName, Unit: queryUnit}, nil
}

func (m *Matcher) translated(ctx context.Context, queryName, detectedLang string) string {
	needs := false
	switch {
	case match.IsLatin(queryName) && m.catalogLang != "en":
		needs = true
	case detectedLang != "" && detectedLang != m.catalogLang:
		needs = true
	}
	if !needs {
		return queryName
	}
	out, err := m.translator.Translate(ctx, queryName, m.catalogLang)
	if err != nil || out == "" {
		m.log.Warn().Err(err).Str("name", queryName).Msg("translation failed, matching raw name")
		return queryName
	}
	return out
}

func bestByName(query string, items []entity.StockItem, score func(a, b string) int) (*entity.StockItem, int) {
	var best *entity.StockItem
	bestScore := -1
	for i := range items {
		if s := score(query, items[i].ItemName); s > bestScore {
			best = &items[i]
			bestScore = s
		}
	}
	return best, bestScore
}
