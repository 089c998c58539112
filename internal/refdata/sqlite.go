package refdata

import (
	"context"
	"database/sql"
	"fmt"
)

// Load reads every reference table from db into a Dataset.
func Load(ctx context.Context, db *sql.DB) (Dataset, error) {
	var ds Dataset
	var err error

	if ds.Countries, err = loadCountries(ctx, db); err != nil {
		return Dataset{}, err
	}
	if ds.RiskLevels, err = loadRiskLevels(ctx, db); err != nil {
		return Dataset{}, err
	}
	if ds.ServiceLevels, err = loadServiceLevels(ctx, db); err != nil {
		return Dataset{}, err
	}
	if ds.Offerings, err = loadOfferings(ctx, db); err != nil {
		return Dataset{}, err
	}
	if ds.LaborRates, err = loadLaborRates(ctx, db); err != nil {
		return Dataset{}, err
	}

	return ds, nil
}

func loadCountries(ctx context.Context, db *sql.DB) ([]Country, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT name, currency_code, exchange_rate, tax_rate
		FROM countries
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("query countries: %w", err)
	}
	defer rows.Close()

	countries := make([]Country, 0)
	for rows.Next() {
		var c Country
		if err := rows.Scan(&c.Name, &c.CurrencyCode, &c.ExchangeRate, &c.TaxRate); err != nil {
			return nil, fmt.Errorf("scan country: %w", err)
		}
		countries = append(countries, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate countries: %w", err)
	}

	return countries, nil
}

func loadRiskLevels(ctx context.Context, db *sql.DB) ([]RiskLevel, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT label, fraction
		FROM risk_levels
		ORDER BY position, label
	`)
	if err != nil {
		return nil, fmt.Errorf("query risk levels: %w", err)
	}
	defer rows.Close()

	levels := make([]RiskLevel, 0)
	for rows.Next() {
		var r RiskLevel
		if err := rows.Scan(&r.Label, &r.Fraction); err != nil {
			return nil, fmt.Errorf("scan risk level: %w", err)
		}
		levels = append(levels, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate risk levels: %w", err)
	}

	return levels, nil
}

func loadServiceLevels(ctx context.Context, db *sql.DB) ([]ServiceLevelEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT scope, key, code, uplift
		FROM service_levels
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query service levels: %w", err)
	}
	defer rows.Close()

	entries := make([]ServiceLevelEntry, 0)
	for rows.Next() {
		var e ServiceLevelEntry
		var scope string
		if err := rows.Scan(&scope, &e.Key, &e.Code, &e.Uplift); err != nil {
			return nil, fmt.Errorf("scan service level: %w", err)
		}
		e.Scope = Scope(scope)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate service levels: %w", err)
	}

	return entries, nil
}

func loadOfferings(ctx context.Context, db *sql.DB) ([]Offering, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT name, code, COALESCE(category, '')
		FROM offerings
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("query offerings: %w", err)
	}
	defer rows.Close()

	offerings := make([]Offering, 0)
	for rows.Next() {
		var o Offering
		if err := rows.Scan(&o.Name, &o.Code, &o.Category); err != nil {
			return nil, fmt.Errorf("scan offering: %w", err)
		}
		offerings = append(offerings, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate offerings: %w", err)
	}

	return offerings, nil
}

func loadLaborRates(ctx context.Context, db *sql.DB) ([]LaborRateEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT r.id, r.scope, r.category, r.code, v.country, v.rate
		FROM labor_rates r
		LEFT JOIN labor_rate_values v ON v.labor_rate_id = r.id
		ORDER BY r.id
	`)
	if err != nil {
		return nil, fmt.Errorf("query labor rates: %w", err)
	}
	defer rows.Close()

	entries := make([]LaborRateEntry, 0)
	index := make(map[int64]int)
	for rows.Next() {
		var (
			id                    int64
			scope, category, code string
			country               sql.NullString
			rate                  sql.NullFloat64
		)
		if err := rows.Scan(&id, &scope, &category, &code, &country, &rate); err != nil {
			return nil, fmt.Errorf("scan labor rate: %w", err)
		}

		pos, ok := index[id]
		if !ok {
			entries = append(entries, LaborRateEntry{
				Scope:    Scope(scope),
				Category: category,
				Code:     code,
				Rates:    make(map[string]float64),
			})
			pos = len(entries) - 1
			index[id] = pos
		}
		if country.Valid && rate.Valid {
			entries[pos].Rates[country.String] = rate.Float64
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate labor rates: %w", err)
	}

	return entries, nil
}
