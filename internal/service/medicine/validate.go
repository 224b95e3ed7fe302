package medicine

import (
	"github.com/shopspring/decimal"

	apperrors "github.com/medisync/hms-api/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

func validateTaxPercent(tax decimal.Decimal) error {
	if tax.IsNegative() || tax.GreaterThan(hundred) {
		return apperrors.BadRequest("tax_percent must be between 0 and 100", nil)
	}
	return nil
}
