package config

// PlanningConfig tunes overlap alternatives and plan suggestions
type PlanningConfig struct {
	// Days searched on each side of a conflicting window
	HorizonDays int `mapstructure:"horizon_days" validate:"min=1,max=365"`

	// Maximum alternative slots returned
	SuggestionLimit int `mapstructure:"suggestion_limit" validate:"min=1,max=20"`

	// Units per day assumed for products without completed history
	DefaultDailyCapacity float64 `mapstructure:"default_daily_capacity" validate:"gt=0"`

	// Completed tasks sampled for throughput
	HistoryLimit int `mapstructure:"history_limit" validate:"min=1"`
}
