package dto

import "time"

// Festival is an upcoming regional festival relevant to demand planning.
type Festival struct {
	Name string
	Date time.Time
}

// InsightInput is everything the composer gets to write one daily message
// for one shopkeeper.
type InsightInput struct {
	ActorID        string
	StockSummary   string
	LowStockLines  []string
	ReorderLines   []string
	WeatherSummary string
	Festivals      []Festival
}
