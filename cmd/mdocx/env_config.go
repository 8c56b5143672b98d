package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sfu-bigdata/go-mdocx/internal/config"
)

// envPrefix is the prefix of every recognized environment variable.
const envPrefix = "MDOCX_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // MDOCX_CONFIG: config file name or path
	StyleSet   string        // MDOCX_STYLE_SET: style set name
	MathEngine string        // MDOCX_MATH_ENGINE: latex, browser
	TempDir    string        // MDOCX_TEMP_DIR: equation image directory
	InputDir   string        // MDOCX_INPUT_DIR: default input directory
	OutputDir  string        // MDOCX_OUTPUT_DIR: default output directory
	Workers    int           // MDOCX_WORKERS: parallel workers
	Timeout    time.Duration // MDOCX_TIMEOUT: per-equation timeout
}

// knownEnvVars lists valid MDOCX_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MDOCX_CONFIG":      true,
	"MDOCX_STYLE_SET":   true,
	"MDOCX_MATH_ENGINE": true,
	"MDOCX_TEMP_DIR":    true,
	"MDOCX_INPUT_DIR":   true,
	"MDOCX_OUTPUT_DIR":  true,
	"MDOCX_WORKERS":     true,
	"MDOCX_TIMEOUT":     true,
	"MDOCX_CONTAINER":   true, // read by doctor
}

// loadEnvConfig reads configuration from environment variables.
// Malformed MDOCX_WORKERS and MDOCX_TIMEOUT values are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath: getenv("MDOCX_CONFIG"),
		StyleSet:   getenv("MDOCX_STYLE_SET"),
		MathEngine: getenv("MDOCX_MATH_ENGINE"),
		TempDir:    getenv("MDOCX_TEMP_DIR"),
		InputDir:   getenv("MDOCX_INPUT_DIR"),
		OutputDir:  getenv("MDOCX_OUTPUT_DIR"),
	}

	if timeout := getenv("MDOCX_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := getenv("MDOCX_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized MDOCX_* variables.
// Helps catch typos like MDOCX_STYLESET instead of MDOCX_STYLE_SET.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, kv := range environ {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Only sets values if the env var is set AND the config value is empty.
// This ensures: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.StyleSet != "" && cfg.Styles.Set == "" {
		cfg.Styles.Set = env.StyleSet
	}
	if env.MathEngine != "" && cfg.Math.Engine == "" {
		cfg.Math.Engine = env.MathEngine
	}
	if env.TempDir != "" && cfg.Math.TempDir == "" {
		cfg.Math.TempDir = env.TempDir
	}
	if env.InputDir != "" && cfg.Input.DefaultDir == "" {
		cfg.Input.DefaultDir = env.InputDir
	}
	if env.OutputDir != "" && cfg.Output.DefaultDir == "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.Timeout > 0 && cfg.Math.Timeout == "" {
		cfg.Math.Timeout = env.Timeout.String()
	}
}

// loadConfig resolves the config source: --config flag, then MDOCX_CONFIG,
// then the neutral defaults.
func loadConfig(flagConfig string, env *envConfig) (*config.Config, error) {
	name := flagConfig
	if name == "" {
		name = env.ConfigPath
	}
	if name == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.LoadConfig(name)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}
