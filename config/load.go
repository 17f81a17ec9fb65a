package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/karmic64/makegsf/pkg/gsf/logger"
	"github.com/karmic64/makegsf/pkg/gsf/psf"
	"github.com/karmic64/makegsf/pkg/gsf/textconv"
)

// FileName is the config file searched for next to the script.
const FileName = "makegsf.yaml"

// LoadWithPath reads configuration with ENV interpolation and returns both the
// config and the resolved path. A missing default file is not an error.
// scriptDir is where makegsf.yaml is looked for when neither an explicit path
// nor MAKEGSF_CONFIG is given. The path is empty when defaults were used.
func LoadWithPath(configPath, scriptDir string, getenv func(string) string) (*Config, string, error) {
	path, err := resolveConfigPath(configPath, scriptDir, getenv)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		cfg := Defaults()
		if dir, err := filepath.Abs(scriptDir); err == nil {
			cfg.BaseDir = dir
		}
		return cfg, "", nil
	}

	// Get absolute path and directory for resolving relative paths
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve config path: %w", err)
	}
	baseDir := filepath.Dir(absPath)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	data = interpolateEnv(data, getenv)

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.BaseDir = baseDir

	// Resolve relative manifest path
	if cfg.Manifest != "" && !filepath.IsAbs(cfg.Manifest) {
		cfg.Manifest = filepath.Join(baseDir, cfg.Manifest)
	}

	// Resolve relative log file path
	switch cfg.Logging.Output {
	case "", "stdout", "stderr":
	default:
		if !filepath.IsAbs(cfg.Logging.Output) {
			cfg.Logging.Output = filepath.Join(baseDir, cfg.Logging.Output)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, "", err
	}

	return cfg, absPath, nil
}

// resolveConfigPath finds the config file to use.
// Search order: explicit path > MAKEGSF_CONFIG env > makegsf.yaml in scriptDir.
// It returns an empty path when no file applies.
func resolveConfigPath(explicit, scriptDir string, getenv func(string) string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	if envPath := getenv("MAKEGSF_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("MAKEGSF_CONFIG file not found: %s", envPath)
		}
		return envPath, nil
	}

	local := filepath.Join(scriptDir, FileName)
	if _, err := os.Stat(local); err == nil {
		return local, nil
	}

	return "", nil
}

// envPattern matches ${VAR} or ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// interpolateEnv replaces ${VAR} and ${VAR:-default} patterns with environment values.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		value := getenv(string(parts[1]))
		if value == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			value = string(parts[2])
		}

		return []byte(value)
	})
}

// Validate checks the configuration for errors. Call it again after
// applying CLI overrides.
func Validate(cfg *Config) error {
	var errs []string

	if _, err := textconv.Lookup(cfg.ScriptEncoding); err != nil {
		errs = append(errs, fmt.Sprintf("script_encoding: %v", err))
	}
	if _, err := textconv.Lookup(cfg.FilenameEncoding); err != nil {
		errs = append(errs, fmt.Sprintf("filename_encoding: %v", err))
	}

	if _, err := psf.ParseLevel(cfg.Compression.Level); err != nil {
		errs = append(errs, fmt.Sprintf("invalid compression level: %s (must be %s)",
			cfg.Compression.Level, strings.Join(psf.Levels, ", ")))
	}

	if _, err := logger.ParseLevel(cfg.Logging.Level); err != nil {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be info, warn, or error)", cfg.Logging.Level))
	}

	validColors := map[string]bool{"": true, "auto": true, "always": true, "never": true}
	if !validColors[cfg.Logging.Color] {
		errs = append(errs, fmt.Sprintf("invalid log color: %s (must be auto, always, or never)", cfg.Logging.Color))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
