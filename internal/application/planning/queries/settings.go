package queries

import "github.com/andrescamacho/shopfloor-go/internal/domain/planning"

// Settings tunes the planning queries. Zero values fall back to defaults.
type Settings struct {
	HorizonDays          int
	SuggestionLimit      int
	DefaultDailyCapacity float64
	HistoryLimit         int
}

const defaultHistoryLimit = 10

func (s Settings) withDefaults() Settings {
	if s.HorizonDays <= 0 {
		s.HorizonDays = planning.DefaultHorizonDays
	}
	if s.SuggestionLimit <= 0 {
		s.SuggestionLimit = planning.DefaultSuggestionLimit
	}
	if s.DefaultDailyCapacity <= 0 {
		s.DefaultDailyCapacity = planning.DefaultDailyCapacity
	}
	if s.HistoryLimit <= 0 {
		s.HistoryLimit = defaultHistoryLimit
	}
	return s
}
