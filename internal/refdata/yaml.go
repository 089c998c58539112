package refdata

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Defaults returns the built-in reference tables.
func Defaults() (Dataset, error) {
	return ParseYAML(defaultsYAML)
}

// LoadFile reads reference tables from a YAML file.
func LoadFile(path string) (Dataset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("read reference data %s: %w", path, err)
	}
	return ParseYAML(b)
}

// ParseYAML decodes and validates a reference dataset.
func ParseYAML(b []byte) (Dataset, error) {
	var ds Dataset
	if err := yaml.UnmarshalStrict(b, &ds); err != nil {
		return Dataset{}, fmt.Errorf("decode reference data: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return Dataset{}, err
	}
	return ds, nil
}

// Validate checks table invariants. A zero exchange rate is accepted because
// the pricing engine guards it; a negative one is not.
func (ds Dataset) Validate() error {
	seen := make(map[string]bool)
	for _, c := range ds.Countries {
		key := normalizeKey(c.Name)
		if key == "" {
			return fmt.Errorf("country with empty name")
		}
		if seen[key] {
			return fmt.Errorf("duplicate country %q", c.Name)
		}
		seen[key] = true
		if c.ExchangeRate < 0 {
			return fmt.Errorf("country %q: exchange rate must not be negative", c.Name)
		}
		if c.TaxRate < 0 || c.TaxRate >= 1 {
			return fmt.Errorf("country %q: tax rate must be in [0, 1)", c.Name)
		}
	}
	for _, r := range ds.RiskLevels {
		if strings.TrimSpace(r.Label) == "" {
			return fmt.Errorf("risk level with empty label")
		}
		if r.Fraction < 0 || r.Fraction >= 1 {
			return fmt.Errorf("risk level %q: fraction must be in [0, 1)", r.Label)
		}
	}
	for i, e := range ds.ServiceLevels {
		if strings.TrimSpace(e.Code) == "" {
			return fmt.Errorf("service level %d: empty code", i)
		}
		if e.Uplift < 1 {
			return fmt.Errorf("service level %s/%s: uplift must be >= 1", e.Scope, e.Code)
		}
	}
	for _, o := range ds.Offerings {
		if strings.TrimSpace(o.Name) == "" {
			return fmt.Errorf("offering with empty name")
		}
	}
	for _, e := range ds.LaborRates {
		if strings.TrimSpace(e.Category) == "" || strings.TrimSpace(e.Code) == "" {
			return fmt.Errorf("labor rate with empty category or code")
		}
	}
	return nil
}
