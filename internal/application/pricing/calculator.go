package pricing

import (
	"strings"

	"bidops-backend/internal/domain"
	"bidops-backend/internal/pkg/apperr"

	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// MoneyScale is the number of decimal places kept on the stored base cost and total price.
const MoneyScale = 4

// Overrides are the optional pack-level inputs. Nil fields take the defaults
// in DefaultOverheads, DefaultContingency, DefaultFxRate and DefaultMargin.
type Overrides struct {
	Overheads   *decimal.Decimal `json:"overheads"`
	Contingency *decimal.Decimal `json:"contingency"`
	FxRate      *decimal.Decimal `json:"fxRate"`
	Margin      *decimal.Decimal `json:"margin"`
}

var (
	DefaultOverheads   = decimal.Zero
	DefaultContingency = decimal.Zero
	DefaultFxRate      = decimal.NewFromInt(1)
	DefaultMargin      = decimal.RequireFromString("0.15")
)

// Breakdown is every intermediate value of one pack calculation.
type Breakdown struct {
	BaseCost        decimal.Decimal `json:"baseCost"`
	WithOverheads   decimal.Decimal `json:"withOverheads"`
	WithContingency decimal.Decimal `json:"withContingency"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`

	Overheads   decimal.Decimal `json:"overheads"`
	Contingency decimal.Decimal `json:"contingency"`
	FxRate      decimal.Decimal `json:"fxRate"`
	Margin      decimal.Decimal `json:"margin"`
}

// Calculate prices a BoQ snapshot. Each step compounds on the previous one:
// base cost, overheads, contingency, FX, then the margin guarded by minMargin.
// rates is keyed by upper-case currency; lines in baseCurrency use rate 1.
func Calculate(items []domain.BoqItem, rates map[string]decimal.Decimal, baseCurrency string, ov Overrides, minMargin decimal.Decimal) (Breakdown, error) {
	base := strings.ToUpper(strings.TrimSpace(baseCurrency))
	if base == "" {
		base = "QAR"
	}

	b := Breakdown{
		Overheads:   pick(ov.Overheads, DefaultOverheads),
		Contingency: pick(ov.Contingency, DefaultContingency),
		FxRate:      pick(ov.FxRate, DefaultFxRate),
		Margin:      pick(ov.Margin, DefaultMargin),
	}
	if err := b.validate(); err != nil {
		return Breakdown{}, err
	}

	baseCost := decimal.Zero
	for _, item := range items {
		currency := strings.ToUpper(strings.TrimSpace(item.UnitCurrency))
		if currency == "" {
			currency = base
		}
		rate := one
		if currency != base {
			r, ok := rates[currency]
			if !ok {
				return Breakdown{}, apperr.Validation("No FX rate configured for currency %s", currency)
			}
			rate = r
		}
		baseCost = baseCost.Add(item.UnitCost.Mul(rate).Mul(item.Qty))
	}

	b.BaseCost = baseCost.Round(MoneyScale)
	b.WithOverheads = b.BaseCost.Mul(one.Add(b.Overheads))
	b.WithContingency = b.WithOverheads.Mul(one.Add(b.Contingency))
	b.Subtotal = b.WithContingency.Mul(b.FxRate)

	if b.Margin.LessThan(minMargin) {
		return Breakdown{}, apperr.Validation("Margin below guardrail of %s%%", minMargin.Mul(decimal.NewFromInt(100)).String())
	}
	b.TotalPrice = b.Subtotal.Mul(one.Add(b.Margin)).Round(MoneyScale)
	return b, nil
}

func (b Breakdown) validate() error {
	switch {
	case b.Overheads.IsNegative():
		return apperr.Validation("overheads must not be negative")
	case b.Contingency.IsNegative():
		return apperr.Validation("contingency must not be negative")
	case !b.FxRate.IsPositive():
		return apperr.Validation("fxRate must be greater than 0")
	case b.Margin.IsNegative():
		return apperr.Validation("margin must not be negative")
	}
	return nil
}

func pick(v *decimal.Decimal, def decimal.Decimal) decimal.Decimal {
	if v == nil {
		return def
	}
	return *v
}
