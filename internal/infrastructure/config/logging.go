package config

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	// debug, info, warn, error
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`

	// json for collectors, text for terminals
	Format string `mapstructure:"format" validate:"required,oneof=json text"`

	Output   string `mapstructure:"output" validate:"required,oneof=stdout stderr file"`
	FilePath string `mapstructure:"file_path" validate:"required_if=Output file"`

	IncludeCaller     bool `mapstructure:"include_caller"`
	IncludeStacktrace bool `mapstructure:"include_stacktrace"`

	// Static fields added to every entry, e.g. plant: north
	Fields map[string]string `mapstructure:"fields"`
}
