// Package adapter abstracts where integrated records come from. The
// indicator engine only ever sees the Source interface; which backend
// implements it is wiring in the command layer.
package adapter

import "github.com/scielo-analytics/ocametrics/internal/record"

// Filter selects one category partition.
type Filter struct {
	Year       int
	Level      string
	CategoryID string
}

// Source fetches integrated records for indicator computation.
type Source interface {
	// Categories lists the distinct category ids populated at a level for
	// a year. A non-empty categoryID restricts the listing to that id.
	Categories(year int, level, categoryID string) ([]string, error)

	// Fetch returns the records of one category partition: matched
	// records carrying the filter's taxonomy value in the filter's year.
	Fetch(f Filter) ([]record.Integrated, error)
}
