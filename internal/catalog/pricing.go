package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/omexplus/dropship-backend/pkg/enums"
	pkgerrors "github.com/omexplus/dropship-backend/pkg/errors"
)

var (
	oneHundred = decimal.NewFromInt(100)
)

// SellingPriceCents computes the platform price from the supplier purchase
// price and the link's markup. Results round half up to a whole cent.
func SellingPriceCents(purchaseCents int, markupType enums.MarkupType, markupValue decimal.Decimal) (int, error) {
	if purchaseCents < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "purchase price must not be negative")
	}
	if markupValue.IsNegative() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "markup value must not be negative")
	}

	purchase := decimal.NewFromInt(int64(purchaseCents))
	var selling decimal.Decimal
	switch markupType {
	case enums.MarkupTypePercentage:
		factor := oneHundred.Add(markupValue).Div(oneHundred)
		selling = purchase.Mul(factor)
	case enums.MarkupTypeFixed:
		// fixed markup is expressed in major currency units
		selling = purchase.Add(markupValue.Mul(oneHundred))
	default:
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "unknown markup type")
	}

	return int(selling.Round(0).IntPart()), nil
}

// MarginPercent reports the relative margin of selling over purchase price,
// rounded to two decimal places. A zero purchase price has no defined
// margin, so the percentage is reported as zero.
func MarginPercent(sellingCents, purchaseCents int) (decimal.Decimal, error) {
	if purchaseCents < 0 {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "purchase price must not be negative")
	}
	if purchaseCents == 0 {
		return decimal.Zero, nil
	}
	selling := decimal.NewFromInt(int64(sellingCents))
	purchase := decimal.NewFromInt(int64(purchaseCents))
	return selling.Sub(purchase).Div(purchase).Mul(oneHundred).Round(2), nil
}

// MarginCents is the absolute spread between selling and purchase totals.
func MarginCents(sellingCents, purchaseCents int) int {
	return sellingCents - purchaseCents
}
