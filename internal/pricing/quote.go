package pricing

import (
	"errors"
	"fmt"
)

// ErrLineNotFound is returned when an edit addresses a line index that does
// not exist.
var ErrLineNotFound = errors.New("line item not found")

// ServiceLineItem is one priced service. Depending on the quote's currency
// mode either UnitCostBase or UnitCostLocal is the authored value; the other
// is derived from it with the country's exchange rate.
type ServiceLineItem struct {
	Offering      string  `json:"offering"`
	SLC           string  `json:"slc"`
	Quantity      int     `json:"quantity"`
	Start         Date    `json:"start"`
	End           Date    `json:"end"`
	UnitCostBase  float64 `json:"unit_cost_base"`
	UnitCostLocal float64 `json:"unit_cost_local"`
}

// LaborLineItem is one labor charge. The rate is resolved from reference
// data on every calculation.
type LaborLineItem struct {
	Category string `json:"category"`
	Code     string `json:"code"`
	Quantity int    `json:"quantity"`
}

// Quote is the authored input of one quoting session.
type Quote struct {
	Country         string            `json:"country"`
	CurrencyMode    CurrencyMode      `json:"currency_mode"`
	RiskLevel       string            `json:"risk_level"`
	Margin          float64           `json:"margin"`
	DistributedCost float64           `json:"distributed_cost"`
	ContractStart   Date              `json:"contract_start"`
	ContractEnd     Date              `json:"contract_end"`
	Services        []ServiceLineItem `json:"services"`
	Labor           []LaborLineItem   `json:"labor"`
}

// Defaults seeds a new quote.
type Defaults struct {
	Country   string
	RiskLevel string
	Margin    float64
	Mode      CurrencyMode
}

// NewQuote starts a quote with one empty service line and a one-year
// contract beginning on today.
func NewQuote(d Defaults, today Date) *Quote {
	mode := d.Mode
	if mode == "" {
		mode = ModeBase
	}
	start := DateOf(today.Time)
	return &Quote{
		Country:       d.Country,
		CurrencyMode:  mode,
		RiskLevel:     d.RiskLevel,
		Margin:        d.Margin,
		ContractStart: start,
		ContractEnd:   Date{start.AddDate(1, 0, -1)},
		Services:      []ServiceLineItem{{Quantity: 1}},
		Labor:         []LaborLineItem{},
	}
}

// Clone returns a deep copy.
func (q *Quote) Clone() *Quote {
	c := *q
	c.Services = append([]ServiceLineItem(nil), q.Services...)
	c.Labor = append([]LaborLineItem(nil), q.Labor...)
	return &c
}

// AddService appends a service line and returns its index.
func (q *Quote) AddService(item ServiceLineItem) int {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	q.Services = append(q.Services, item)
	return len(q.Services) - 1
}

// UpdateService replaces the service line at i.
func (q *Quote) UpdateService(i int, item ServiceLineItem) error {
	if i < 0 || i >= len(q.Services) {
		return fmt.Errorf("service line %d: %w", i, ErrLineNotFound)
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	q.Services[i] = item
	return nil
}

// RemoveService deletes the service line at i, keeping order.
func (q *Quote) RemoveService(i int) error {
	if i < 0 || i >= len(q.Services) {
		return fmt.Errorf("service line %d: %w", i, ErrLineNotFound)
	}
	q.Services = append(q.Services[:i], q.Services[i+1:]...)
	return nil
}

// AddLabor appends a labor line and returns its index.
func (q *Quote) AddLabor(item LaborLineItem) int {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	q.Labor = append(q.Labor, item)
	return len(q.Labor) - 1
}

// UpdateLabor replaces the labor line at i.
func (q *Quote) UpdateLabor(i int, item LaborLineItem) error {
	if i < 0 || i >= len(q.Labor) {
		return fmt.Errorf("labor line %d: %w", i, ErrLineNotFound)
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	q.Labor[i] = item
	return nil
}

// RemoveLabor deletes the labor line at i, keeping order.
func (q *Quote) RemoveLabor(i int) error {
	if i < 0 || i >= len(q.Labor) {
		return fmt.Errorf("labor line %d: %w", i, ErrLineNotFound)
	}
	q.Labor = append(q.Labor[:i], q.Labor[i+1:]...)
	return nil
}

// SetUnitCost writes amount as the authored unit cost of service line i in
// the quote's current mode and derives the paired value once.
func (q *Quote) SetUnitCost(i int, amount, rate float64, r Reporter) error {
	if i < 0 || i >= len(q.Services) {
		return fmt.Errorf("service line %d: %w", i, ErrLineNotFound)
	}
	line := &q.Services[i]
	if q.CurrencyMode == ModeLocal {
		line.UnitCostLocal = amount
		line.UnitCostBase = ToBase(amount, rate, ModeLocal, r)
	} else {
		line.UnitCostBase = amount
		line.UnitCostLocal = ToLocal(amount, rate, r)
	}
	return nil
}

// SyncDerived recomputes every derived unit cost from its authored value.
// Call it once after the exchange rate in effect changes.
func (q *Quote) SyncDerived(rate float64, r Reporter) {
	rate = SafeRate(rate, r)
	for i := range q.Services {
		line := &q.Services[i]
		if q.CurrencyMode == ModeLocal {
			line.UnitCostBase = ToBase(line.UnitCostLocal, rate, ModeLocal, nil)
		} else {
			line.UnitCostLocal = ToLocal(line.UnitCostBase, rate, nil)
		}
	}
}

// SetCountry switches the quote's country and re-derives every derived unit
// cost with the new country's rate.
func (q *Quote) SetCountry(name string, rate float64, r Reporter) {
	q.Country = name
	q.SyncDerived(rate, r)
}

// SetCurrencyMode changes which unit cost is authored. Both values are
// already in sync, so nothing is converted.
func (q *Quote) SetCurrencyMode(mode CurrencyMode) {
	q.CurrencyMode = mode
}
