// Package currency converts marketplace prices into the target currency.
//
// Rates come from a static table loaded at startup, so estimates go stale as
// exchange rates move. Callers should present results as rough figures.
package currency

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/nao1215/asinbot/internal/model"
)

var (
	// ErrNegativePrice is returned when a price below zero is converted.
	ErrNegativePrice = errors.New("price must not be negative")
	// ErrOverflow is returned when a converted amount does not fit in an int64.
	ErrOverflow = errors.New("converted amount out of range")
)

var maxAmount = decimal.NewFromInt(math.MaxInt64)

// Converter maps a region to its rate and applies it.
type Converter struct {
	regions *model.RegionTable
}

// NewConverter creates a Converter backed by regions.
func NewConverter(regions *model.RegionTable) *Converter {
	return &Converter{regions: regions}
}

// Rate returns the multiplier for code.
// Unknown regions get a rate of 1 and known=false, meaning "no conversion".
func (c *Converter) Rate(code model.RegionCode) (rate decimal.Decimal, known bool) {
	r, ok := c.regions.Lookup(code)
	if !ok || r.Rate.IsZero() {
		return decimal.NewFromInt(1), false
	}
	return r.Rate, true
}

// Convert multiplies price by the region rate and truncates toward zero.
func (c *Converter) Convert(code model.RegionCode, price decimal.Decimal) (decimal.Decimal, error) {
	if price.IsNegative() {
		return decimal.Zero, fmt.Errorf("convert %s for %s: %w", price, code, ErrNegativePrice)
	}
	rate, _ := c.Rate(code)
	res := price.Mul(rate).Truncate(0)
	if res.GreaterThan(maxAmount) {
		return decimal.Zero, fmt.Errorf("convert %s for %s: %w", price, code, ErrOverflow)
	}
	return res, nil
}
