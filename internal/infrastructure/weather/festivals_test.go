package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUpcomingFestivalsWithinHorizon(t *testing.T) {
	cal := NewStaticFestivals()
	now := time.Date(2025, time.September, 20, 10, 0, 0, 0, time.UTC)

	got := cal.Upcoming(now, 30)

	names := make([]string, 0, len(got))
	for _, f := range got {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"Navratri", "Durga Puja", "Dussehra", "Karwa Chauth", "Dhanteras", "Diwali"}, names)
}

func TestUpcomingFestivalsExcludesPast(t *testing.T) {
	cal := NewStaticFestivals()
	now := time.Date(2025, time.October, 25, 0, 0, 0, 0, time.UTC)

	got := cal.Upcoming(now, 90)

	for _, f := range got {
		assert.False(t, f.Date.Before(now.Truncate(24*time.Hour)), "festival %s already passed", f.Name)
	}
	names := make([]string, 0, len(got))
	for _, f := range got {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"Chhath Puja", "Guru Nanak Jayanti"}, names)
}

func TestUpcomingFestivalsEmptyOutsideSeason(t *testing.T) {
	cal := NewStaticFestivals()
	now := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)

	assert.Empty(t, cal.Upcoming(now, 90))
}
