package seed

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/supportquote/internal/refdata"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run loads ds into the reference tables in an idempotent way. Missing rows
// are inserted and rows whose values changed are updated in place. Rows
// absent from ds are kept.
func Run(db *sql.DB, ds refdata.Dataset) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	steps := []func(*sql.Tx, refdata.Dataset, *Stats) error{
		ensureCountries,
		ensureRiskLevels,
		ensureServiceLevels,
		ensureOfferings,
		ensureLaborRates,
	}
	for _, step := range steps {
		if err := step(tx, ds, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureCountries(tx *sql.Tx, ds refdata.Dataset, stats *Stats) error {
	for _, c := range ds.Countries {
		var current refdata.Country
		err := tx.QueryRow(`
			SELECT currency_code, exchange_rate, tax_rate
			FROM countries
			WHERE name = ?
		`, c.Name).Scan(&current.CurrencyCode, &current.ExchangeRate, &current.TaxRate)
		if errors.Is(err, sql.ErrNoRows) {
			if _, err := tx.Exec(`
				INSERT INTO countries (name, currency_code, exchange_rate, tax_rate)
				VALUES (?, ?, ?, ?)
			`, c.Name, c.CurrencyCode, c.ExchangeRate, c.TaxRate); err != nil {
				return fmt.Errorf("insert country %s: %w", c.Name, err)
			}
			stats.Inserts++
			continue
		}
		if err != nil {
			return fmt.Errorf("check country %s: %w", c.Name, err)
		}

		if current.CurrencyCode == c.CurrencyCode && current.ExchangeRate == c.ExchangeRate && current.TaxRate == c.TaxRate {
			continue
		}
		if _, err := tx.Exec(`
			UPDATE countries
			SET
				currency_code = ?,
				exchange_rate = ?,
				tax_rate = ?,
				updated_at = CURRENT_TIMESTAMP
			WHERE name = ?
		`, c.CurrencyCode, c.ExchangeRate, c.TaxRate, c.Name); err != nil {
			return fmt.Errorf("update country %s: %w", c.Name, err)
		}
		stats.Updates++
	}
	return nil
}

func ensureRiskLevels(tx *sql.Tx, ds refdata.Dataset, stats *Stats) error {
	for i, r := range ds.RiskLevels {
		var fraction float64
		var position int
		err := tx.QueryRow(`SELECT fraction, position FROM risk_levels WHERE label = ?`, r.Label).Scan(&fraction, &position)
		if errors.Is(err, sql.ErrNoRows) {
			if _, err := tx.Exec(`
				INSERT INTO risk_levels (label, fraction, position)
				VALUES (?, ?, ?)
			`, r.Label, r.Fraction, i); err != nil {
				return fmt.Errorf("insert risk level %s: %w", r.Label, err)
			}
			stats.Inserts++
			continue
		}
		if err != nil {
			return fmt.Errorf("check risk level %s: %w", r.Label, err)
		}

		if fraction == r.Fraction && position == i {
			continue
		}
		if _, err := tx.Exec(`
			UPDATE risk_levels
			SET fraction = ?, position = ?
			WHERE label = ?
		`, r.Fraction, i, r.Label); err != nil {
			return fmt.Errorf("update risk level %s: %w", r.Label, err)
		}
		stats.Updates++
	}
	return nil
}

func ensureServiceLevels(tx *sql.Tx, ds refdata.Dataset, stats *Stats) error {
	for _, e := range ds.ServiceLevels {
		var uplift float64
		err := tx.QueryRow(`
			SELECT uplift
			FROM service_levels
			WHERE scope = ? AND key = ? AND code = ?
		`, string(e.Scope), e.Key, e.Code).Scan(&uplift)
		if errors.Is(err, sql.ErrNoRows) {
			if _, err := tx.Exec(`
				INSERT INTO service_levels (scope, key, code, uplift)
				VALUES (?, ?, ?, ?)
			`, string(e.Scope), e.Key, e.Code, e.Uplift); err != nil {
				return fmt.Errorf("insert service level %s/%s: %w", e.Scope, e.Code, err)
			}
			stats.Inserts++
			continue
		}
		if err != nil {
			return fmt.Errorf("check service level %s/%s: %w", e.Scope, e.Code, err)
		}

		if uplift == e.Uplift {
			continue
		}
		if _, err := tx.Exec(`
			UPDATE service_levels
			SET uplift = ?
			WHERE scope = ? AND key = ? AND code = ?
		`, e.Uplift, string(e.Scope), e.Key, e.Code); err != nil {
			return fmt.Errorf("update service level %s/%s: %w", e.Scope, e.Code, err)
		}
		stats.Updates++
	}
	return nil
}

func ensureOfferings(tx *sql.Tx, ds refdata.Dataset, stats *Stats) error {
	for _, o := range ds.Offerings {
		var code, category string
		err := tx.QueryRow(`SELECT code, category FROM offerings WHERE name = ?`, o.Name).Scan(&code, &category)
		if errors.Is(err, sql.ErrNoRows) {
			if _, err := tx.Exec(`
				INSERT INTO offerings (name, code, category)
				VALUES (?, ?, ?)
			`, o.Name, o.Code, o.Category); err != nil {
				return fmt.Errorf("insert offering %s: %w", o.Name, err)
			}
			stats.Inserts++
			continue
		}
		if err != nil {
			return fmt.Errorf("check offering %s: %w", o.Name, err)
		}

		if code == o.Code && category == o.Category {
			continue
		}
		if _, err := tx.Exec(`
			UPDATE offerings
			SET code = ?, category = ?
			WHERE name = ?
		`, o.Code, o.Category, o.Name); err != nil {
			return fmt.Errorf("update offering %s: %w", o.Name, err)
		}
		stats.Updates++
	}
	return nil
}

func ensureLaborRates(tx *sql.Tx, ds refdata.Dataset, stats *Stats) error {
	for _, e := range ds.LaborRates {
		var id int64
		err := tx.QueryRow(`
			SELECT id
			FROM labor_rates
			WHERE scope = ? AND category = ? AND code = ?
		`, string(e.Scope), e.Category, e.Code).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			result, err := tx.Exec(`
				INSERT INTO labor_rates (scope, category, code)
				VALUES (?, ?, ?)
			`, string(e.Scope), e.Category, e.Code)
			if err != nil {
				return fmt.Errorf("insert labor rate %s/%s/%s: %w", e.Scope, e.Category, e.Code, err)
			}
			if id, err = result.LastInsertId(); err != nil {
				return fmt.Errorf("labor rate id %s/%s/%s: %w", e.Scope, e.Category, e.Code, err)
			}
			stats.Inserts++
		} else if err != nil {
			return fmt.Errorf("check labor rate %s/%s/%s: %w", e.Scope, e.Category, e.Code, err)
		}

		for country, rate := range e.Rates {
			if err := ensureLaborRateValue(tx, id, e.Code, country, rate, stats); err != nil {
				return err
			}
		}
	}
	return nil
}

func ensureLaborRateValue(tx *sql.Tx, id int64, code, country string, rate float64, stats *Stats) error {
	var current float64
	err := tx.QueryRow(`
		SELECT rate
		FROM labor_rate_values
		WHERE labor_rate_id = ? AND country = ?
	`, id, country).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		stats.Inserts++
	case err != nil:
		return fmt.Errorf("check labor rate value %s/%s: %w", code, country, err)
	case current == rate:
		return nil
	default:
		stats.Updates++
	}

	if _, err := tx.Exec(`
		INSERT INTO labor_rate_values (labor_rate_id, country, rate)
		VALUES (?, ?, ?)
		ON CONFLICT(labor_rate_id, country) DO UPDATE SET rate = excluded.rate
	`, id, country, rate); err != nil {
		return fmt.Errorf("upsert labor rate value %s/%s: %w", code, country, err)
	}
	return nil
}
