package mongodb

import "github.com/shopspring/decimal"

func decimalOrZero(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}
