package labpatterns

import (
	"fmt"
	"os"

	"github.com/erc-insight/platform/pkg/common/logger"
	"gopkg.in/yaml.v3"
)

// LoadLibrary reads a pattern library from a YAML file. An empty path or a
// missing file falls back to the compiled-in defaults so the services can
// start without any deployment-specific catalog.
func LoadLibrary(path string) (Library, error) {
	if path == "" {
		return DefaultLibrary(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Log.WithField("path", path).Warn("Pattern library file not found, using defaults")
			return DefaultLibrary(), nil
		}
		return Library{}, fmt.Errorf("reading pattern library: %w", err)
	}

	var lib Library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return Library{}, fmt.Errorf("parsing pattern library: %w", err)
	}

	if err := lib.validate(); err != nil {
		return Library{}, err
	}

	logger.Log.WithFields(map[string]interface{}{
		"path":             path,
		"creatinine_rules": len(lib.Creatinine),
		"analyte_rules":    len(lib.Analytes),
	}).Info("Loaded pattern library")

	return lib, nil
}

func (l Library) validate() error {
	if len(l.Creatinine) == 0 {
		return fmt.Errorf("pattern library has no creatinine rules")
	}
	for _, rule := range l.Creatinine {
		if rule.Name == "" {
			return fmt.Errorf("creatinine rule with empty name")
		}
		if len(rule.Include) == 0 {
			return fmt.Errorf("creatinine rule %q has no include patterns", rule.Name)
		}
		if rule.Validation.Min >= rule.Validation.Max {
			return fmt.Errorf("creatinine rule %q has an empty validation range", rule.Name)
		}
	}
	for _, rule := range l.Analytes {
		if rule.Name == "" || rule.Expr == "" {
			return fmt.Errorf("analyte rule %q is incomplete", rule.Name)
		}
		if rule.Validation.Min >= rule.Validation.Max {
			return fmt.Errorf("analyte rule %q has an empty validation range", rule.Name)
		}
	}
	return nil
}
