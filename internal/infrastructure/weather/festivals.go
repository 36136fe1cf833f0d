package weather

import (
	"time"

	"github.com/gupta-labs/khata-sahayak/internal/application/dto"
	"github.com/gupta-labs/khata-sahayak/internal/application/ports"
)

var _ ports.FestivalCalendar = (*StaticFestivals)(nil)

// StaticFestivals serves the major Indian festival dates from a fixed table.
// A curated list beats scraping for this purpose: the dates are known well
// in advance and never change mid-season.
type StaticFestivals struct {
	festivals []dto.Festival
}

func NewStaticFestivals() *StaticFestivals {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		loc = time.UTC
	}
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
	return &StaticFestivals{
		festivals: []dto.Festival{
			{Name: "Navratri", Date: day(2025, time.September, 22)},
			{Name: "Durga Puja", Date: day(2025, time.September, 28)},
			{Name: "Dussehra", Date: day(2025, time.October, 2)},
			{Name: "Karwa Chauth", Date: day(2025, time.October, 10)},
			{Name: "Dhanteras", Date: day(2025, time.October, 18)},
			{Name: "Diwali", Date: day(2025, time.October, 20)},
			{Name: "Govardhan Puja", Date: day(2025, time.October, 21)},
			{Name: "Bhai Dooj", Date: day(2025, time.October, 22)},
			{Name: "Chhath Puja", Date: day(2025, time.October, 27)},
			{Name: "Guru Nanak Jayanti", Date: day(2025, time.November, 5)},
		},
	}
}

// Upcoming returns the festivals falling within horizonDays of now,
// inclusive on both ends.
func (s *StaticFestivals) Upcoming(now time.Time, horizonDays int) []dto.Festival {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, horizonDays)

	var upcoming []dto.Festival
	for _, f := range s.festivals {
		if !f.Date.Before(start) && !f.Date.After(end) {
			upcoming = append(upcoming, f)
		}
	}
	return upcoming
}
