package pricing

// DistributedShare spreads a shared cost evenly over lines. With no lines
// there is nothing to carry it and the share is 0.
func DistributedShare(distributedCost float64, lines int) float64 {
	if lines <= 0 {
		return 0
	}
	return distributedCost / float64(lines)
}

// ServiceLineTotal is unit cost × quantity × months × SLC uplift plus the
// line's share of the distributed cost, all in base currency.
func ServiceLineTotal(unitCostBase float64, quantity int, months, slcFactor, distributedShare float64) float64 {
	return unitCostBase*float64(quantity)*months*slcFactor + distributedShare
}

// LaborLineTotal converts a local-currency labor rate to base currency and
// multiplies by quantity.
func LaborLineTotal(localRate, exchangeRate float64, quantity int, r Reporter) float64 {
	return localRate / SafeRate(exchangeRate, r) * float64(quantity)
}
