package configloader

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/yaklabco/selwalk/pkg/config"
)

// envVarPrefix is the prefix for all selwalk environment variables.
const envVarPrefix = "SELWALK_"

// envSetter applies one variable's value to the config.
type envSetter func(cfg *config.Config, value string) error

type envVar struct {
	suffix      string
	description string
	apply       envSetter
}

// envVars lists the supported variables (without prefix) in display order.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envVars = []envVar{
	{"FLAVOR", "Markdown flavor: commonmark or gfm", func(cfg *config.Config, v string) error {
		cfg.Flavor = config.Flavor(v)
		return nil
	}},
	{"SEVERITY_DEFAULT", "Default severity: error, warning, or info", func(cfg *config.Config, v string) error {
		cfg.SeverityDefault = v
		return nil
	}},
	{"FORMAT", "Output format: text or json", func(cfg *config.Config, v string) error {
		cfg.Format = config.OutputFormat(v)
		return nil
	}},
	{"COLOR", "Color mode: auto, always, or never", func(cfg *config.Config, v string) error {
		cfg.Color = config.ColorMode(v)
		return nil
	}},
	{"JOBS", "Number of parallel workers (0 = auto)", func(cfg *config.Config, v string) error {
		jobs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid integer %q", v)
		}
		cfg.Jobs = jobs
		return nil
	}},
	{"PLUGINS", "Comma-separated list of plugins to run", func(cfg *config.Config, v string) error {
		cfg.Plugins = parseSliceValue(v)
		return nil
	}},
	{"IGNORED_RULES", "Comma-separated list of plugin/rule identifiers to skip", func(cfg *config.Config, v string) error {
		cfg.IgnoredRules = parseSliceValue(v)
		return nil
	}},
	{"IGNORE", "Comma-separated list of ignore patterns", func(cfg *config.Config, v string) error {
		cfg.Ignore = parseSliceValue(v)
		return nil
	}},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with SELWALK_ (e.g., SELWALK_FLAVOR).
func LoadFromEnv(cfg *config.Config) error {
	return loadFromEnv(cfg, os.Getenv)
}

func loadFromEnv(cfg *config.Config, getenv func(string) string) error {
	if cfg == nil {
		return nil
	}

	for _, ev := range envVars {
		name := envVarPrefix + ev.suffix
		value := getenv(name)
		if value == "" {
			continue
		}
		if err := ev.apply(cfg, value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	return nil
}

// parseSliceValue parses a comma-separated string into a slice.
// Each element is trimmed of whitespace.
func parseSliceValue(value string) []string {
	var result []string
	for part := range strings.SplitSeq(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// ListEnvVars returns every supported environment variable with its description,
// sorted by name.
func ListEnvVars() [][2]string {
	out := make([][2]string, 0, len(envVars))
	for _, ev := range envVars {
		out = append(out, [2]string{envVarPrefix + ev.suffix, ev.description})
	}
	slices.SortFunc(out, func(a, b [2]string) int { return strings.Compare(a[0], b[0]) })
	return out
}
