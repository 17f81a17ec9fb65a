package config

// Config represents the complete makegsf configuration
type Config struct {
	BaseDir          string            `yaml:"-"` // Directory containing config file, for resolving relative paths
	ScriptEncoding   string            `yaml:"script_encoding"`
	FilenameEncoding string            `yaml:"filename_encoding"`
	Compression      CompressionConfig `yaml:"compression"`
	Manifest         string            `yaml:"manifest"` // Path to SQLite manifest database (e.g., "./built.db")
	Logging          LoggingConfig     `yaml:"logging"`
}

// CompressionConfig holds container compression settings
type CompressionConfig struct {
	Level string `yaml:"level"` // fastest, default, best, none, huffman
}

// LoggingConfig holds diagnostic output settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // info, warn, error
	Color  string `yaml:"color"`  // auto, always, never
	Output string `yaml:"output"` // stdout, stderr, or file path
}

// Defaults returns a Config with sensible defaults
func Defaults() *Config {
	return &Config{
		ScriptEncoding:   "utf-8",
		FilenameEncoding: "utf-8",
		Compression: CompressionConfig{
			Level: "default",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Color:  "auto",
			Output: "stdout",
		},
	}
}
