// Package billing computes invoice totals from prescription line items.
// All arithmetic is exact decimal; only the stored monetary fields are
// rounded, to two decimal places.
package billing

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/medisync/hms-api/internal/model"
)

// ErrInvalidInput is returned for negative or out-of-range monetary input.
var ErrInvalidInput = errors.New("invalid billing input")

// ErrDuplicateInvoice is returned when an invoice already exists for the
// appointment. The prescription workflow treats it as a silent no-op.
var ErrDuplicateInvoice = errors.New("invoice already exists for appointment")

// ErrInvalidTransition is returned when a status change is not allowed from
// the invoice's current state, such as paying an invoice twice.
var ErrInvalidTransition = errors.New("invalid invoice status transition")

var (
	hundred    = decimal.NewFromInt(100)
	maxPercent = hundred
)

// LineItem is the billing view of a prescription item: the price and tax
// snapshot taken when the prescription was written.
type LineItem struct {
	UnitPrice  decimal.Decimal
	Quantity   int
	TaxPercent decimal.Decimal
}

// Totals holds every derived monetary field of an invoice, rounded to 2dp.
type Totals struct {
	ConsultationFee decimal.Decimal
	MedicineTotal   decimal.Decimal
	Tax             decimal.Decimal
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
	TotalAmount     decimal.Decimal
}

// Calculate derives invoice totals from the consultation fee, the prescribed
// line items and the global discount percentage.
//
//	medicine_total  = Σ unit_price * quantity
//	tax             = Σ unit_price * quantity * tax_percent / 100   (per line)
//	discount_amount = (fee + medicine_total) * discount_percent / 100
//	total_amount    = fee + medicine_total + tax - discount_amount
//
// The discount applies to the fee+medicine subtotal, not to tax.
func Calculate(consultationFee decimal.Decimal, items []LineItem, discountPercent decimal.Decimal) (Totals, error) {
	if consultationFee.IsNegative() {
		return Totals{}, ErrInvalidInput
	}
	if discountPercent.IsNegative() || discountPercent.GreaterThan(maxPercent) {
		return Totals{}, ErrInvalidInput
	}

	medicineTotal := decimal.Zero
	taxTotal := decimal.Zero
	for _, item := range items {
		if item.Quantity < 1 || item.UnitPrice.IsNegative() {
			return Totals{}, ErrInvalidInput
		}
		if item.TaxPercent.IsNegative() || item.TaxPercent.GreaterThan(maxPercent) {
			return Totals{}, ErrInvalidInput
		}
		qty := decimal.NewFromInt(int64(item.Quantity))
		lineTotal := item.UnitPrice.Mul(qty)
		medicineTotal = medicineTotal.Add(lineTotal)
		taxTotal = taxTotal.Add(lineTotal.Mul(item.TaxPercent).Div(hundred))
	}

	subtotal := consultationFee.Add(medicineTotal)
	discountAmount := subtotal.Mul(discountPercent).Div(hundred).Round(2)
	totalAmount := subtotal.Add(taxTotal).Sub(discountAmount).Round(2)

	return Totals{
		ConsultationFee: consultationFee.Round(2),
		MedicineTotal:   medicineTotal.Round(2),
		Tax:             taxTotal.Round(2),
		DiscountPercent: discountPercent,
		DiscountAmount:  discountAmount,
		TotalAmount:     totalAmount,
	}, nil
}

// Recompute re-derives discount_amount and total_amount from the invoice's
// stored inputs. Called before every persist so the derived fields can never
// drift from the formula, regardless of what the caller touched.
func Recompute(inv *model.Invoice) {
	subtotal := inv.ConsultationFee.Add(inv.MedicineTotal)
	inv.DiscountAmount = subtotal.Mul(inv.DiscountPercent).Div(hundred).Round(2)
	inv.TotalAmount = subtotal.Add(inv.Tax).Sub(inv.DiscountAmount).Round(2)
}

// ItemsFromPrescription converts stored prescription items into billing
// line items.
func ItemsFromPrescription(items []*model.PrescriptionItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, it := range items {
		out = append(out, LineItem{
			UnitPrice:  it.UnitPrice,
			Quantity:   it.Quantity,
			TaxPercent: it.TaxPercent,
		})
	}
	return out
}
