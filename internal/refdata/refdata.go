// Package refdata holds the read-only reference tables the pricing engine
// queries: countries, offerings, service level uplifts, labor rates and risk
// levels.
package refdata

import (
	"sort"
	"strings"
)

// Scope partitions reference rows by the region they apply to.
type Scope string

const (
	ScopeBrazil    Scope = "Brazil"
	ScopeNonBrazil Scope = "no brazil"
	ScopeAll       Scope = "ALL"
)

const (
	// BrazilCountry is the country that selects ScopeBrazil.
	BrazilCountry = "Brazil"
	// GlobalLaborCategory is the labor rate category stored under ScopeAll.
	GlobalLaborCategory = "Brand Rate Full"
	// MachineLaborCategory is the regional labor rate category.
	MachineLaborCategory = "Machine Category"
)

// Matches compares scopes case-insensitively, ignoring surrounding blanks.
func (s Scope) Matches(other Scope) bool {
	return strings.EqualFold(strings.TrimSpace(string(s)), strings.TrimSpace(string(other)))
}

// ScopeForCountry returns the regional scope for a country name.
func ScopeForCountry(country string) Scope {
	if strings.EqualFold(strings.TrimSpace(country), BrazilCountry) {
		return ScopeBrazil
	}
	return ScopeNonBrazil
}

// Country carries currency and tax data. ExchangeRate is local currency per
// one unit of base currency: local = base * ExchangeRate.
type Country struct {
	Name         string  `yaml:"name" json:"name"`
	CurrencyCode string  `yaml:"currency" json:"currency"`
	ExchangeRate float64 `yaml:"exchange_rate" json:"exchange_rate"`
	TaxRate      float64 `yaml:"tax_rate" json:"tax_rate"`
}

// Offering is a catalog entry keyed by name.
type Offering struct {
	Name     string `yaml:"name" json:"name"`
	Code     string `yaml:"code" json:"code"`
	Category string `yaml:"category" json:"category"`
}

// ServiceLevelEntry maps an SLC code within a scope to its uplift factor.
// Key is the long descriptive key the code was derived from.
type ServiceLevelEntry struct {
	Scope  Scope   `yaml:"scope" json:"scope"`
	Key    string  `yaml:"key" json:"key"`
	Code   string  `yaml:"code" json:"code"`
	Uplift float64 `yaml:"uplift" json:"uplift"`
}

// LaborRateEntry is one row of the sparse labor matrix. Rates are in the
// country's local currency; a country absent from Rates has no value.
type LaborRateEntry struct {
	Scope    Scope              `yaml:"scope" json:"scope"`
	Category string             `yaml:"category" json:"category"`
	Code     string             `yaml:"code" json:"code"`
	Rates    map[string]float64 `yaml:"rates" json:"rates"`
}

// Rate returns the local rate for country and whether the cell is populated.
func (e LaborRateEntry) Rate(country string) (float64, bool) {
	if v, ok := e.Rates[country]; ok {
		return v, true
	}
	for name, v := range e.Rates {
		if strings.EqualFold(name, country) {
			return v, true
		}
	}
	return 0, false
}

// RiskLevel is a named contingency fraction.
type RiskLevel struct {
	Label    string  `yaml:"label" json:"label"`
	Fraction float64 `yaml:"fraction" json:"fraction"`
}

// Dataset is the full set of reference tables.
type Dataset struct {
	Countries     []Country           `yaml:"countries"`
	RiskLevels    []RiskLevel         `yaml:"risk_levels"`
	ServiceLevels []ServiceLevelEntry `yaml:"service_levels"`
	Offerings     []Offering          `yaml:"offerings"`
	LaborRates    []LaborRateEntry    `yaml:"labor_rates"`
}

// Store answers lookups against an immutable Dataset. It is safe for
// concurrent use because nothing mutates it after NewStore returns.
type Store struct {
	countries map[string]Country
	offerings map[string]Offering
	data      Dataset
}

// NewStore indexes ds. The caller must not modify ds afterwards.
func NewStore(ds Dataset) *Store {
	s := &Store{
		countries: make(map[string]Country, len(ds.Countries)),
		offerings: make(map[string]Offering, len(ds.Offerings)),
		data:      ds,
	}
	for _, c := range ds.Countries {
		s.countries[normalizeKey(c.Name)] = c
	}
	for _, o := range ds.Offerings {
		s.offerings[normalizeKey(o.Name)] = o
	}
	return s
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Country looks a country up by name, case-insensitively.
func (s *Store) Country(name string) (Country, bool) {
	c, ok := s.countries[normalizeKey(name)]
	return c, ok
}

// Offering looks an offering up by name, case-insensitively.
func (s *Store) Offering(name string) (Offering, bool) {
	o, ok := s.offerings[normalizeKey(name)]
	return o, ok
}

// Countries returns all countries sorted by name.
func (s *Store) Countries() []Country {
	out := append([]Country(nil), s.data.Countries...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Offerings returns the offering catalog in table order.
func (s *Store) Offerings() []Offering {
	return append([]Offering(nil), s.data.Offerings...)
}

// ServiceLevels returns the SLC table in table order.
func (s *Store) ServiceLevels() []ServiceLevelEntry {
	return append([]ServiceLevelEntry(nil), s.data.ServiceLevels...)
}

// LaborRates returns the labor matrix in table order.
func (s *Store) LaborRates() []LaborRateEntry {
	return append([]LaborRateEntry(nil), s.data.LaborRates...)
}

// RiskLevels returns the risk levels in table order.
func (s *Store) RiskLevels() []RiskLevel {
	return append([]RiskLevel(nil), s.data.RiskLevels...)
}

// LaborCategories lists the distinct labor rate categories.
func (s *Store) LaborCategories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range s.data.LaborRates {
		if !seen[e.Category] {
			seen[e.Category] = true
			out = append(out, e.Category)
		}
	}
	return out
}
