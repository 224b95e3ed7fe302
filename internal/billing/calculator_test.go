package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medisync/hms-api/internal/model"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCalculate(t *testing.T) {
	// fee 500, two medicines: 100 x2 @12% tax, 50 x1 @5% tax, 5% discount.
	items := []LineItem{
		{UnitPrice: dec("100"), Quantity: 2, TaxPercent: dec("12")},
		{UnitPrice: dec("50"), Quantity: 1, TaxPercent: dec("5")},
	}

	totals, err := Calculate(dec("500"), items, dec("5"))
	require.NoError(t, err)

	assert.True(t, totals.MedicineTotal.Equal(dec("250")), "medicine_total = %s", totals.MedicineTotal)
	assert.True(t, totals.Tax.Equal(dec("26.50")), "tax = %s", totals.Tax)
	assert.True(t, totals.DiscountAmount.Equal(dec("37.50")), "discount_amount = %s", totals.DiscountAmount)
	assert.True(t, totals.TotalAmount.Equal(dec("739.00")), "total_amount = %s", totals.TotalAmount)
}

func TestCalculateZeroDiscount(t *testing.T) {
	items := []LineItem{
		{UnitPrice: dec("10"), Quantity: 3, TaxPercent: dec("0")},
	}

	totals, err := Calculate(dec("200"), items, decimal.Zero)
	require.NoError(t, err)

	assert.True(t, totals.MedicineTotal.Equal(dec("30")))
	assert.True(t, totals.Tax.IsZero())
	assert.True(t, totals.DiscountAmount.IsZero())
	assert.True(t, totals.TotalAmount.Equal(dec("230")))
}

func TestCalculateNoItems(t *testing.T) {
	totals, err := Calculate(dec("350"), nil, dec("10"))
	require.NoError(t, err)

	assert.True(t, totals.MedicineTotal.IsZero())
	assert.True(t, totals.DiscountAmount.Equal(dec("35.00")))
	assert.True(t, totals.TotalAmount.Equal(dec("315.00")))
}

func TestCalculateDiscountExcludesTax(t *testing.T) {
	// 100% discount wipes the fee+medicine subtotal but never the tax.
	items := []LineItem{
		{UnitPrice: dec("100"), Quantity: 1, TaxPercent: dec("10")},
	}

	totals, err := Calculate(dec("100"), items, dec("100"))
	require.NoError(t, err)

	assert.True(t, totals.DiscountAmount.Equal(dec("200.00")))
	assert.True(t, totals.TotalAmount.Equal(dec("10.00")))
}

func TestCalculateRounding(t *testing.T) {
	// 33.33 * 3 = 99.99; 7% tax = 6.9993 -> 7.00; subtotal 99.99,
	// 2.5% discount = 2.49975 -> 2.50.
	items := []LineItem{
		{UnitPrice: dec("33.33"), Quantity: 3, TaxPercent: dec("7")},
	}

	totals, err := Calculate(decimal.Zero, items, dec("2.5"))
	require.NoError(t, err)

	assert.True(t, totals.Tax.Equal(dec("7.00")), "tax = %s", totals.Tax)
	assert.True(t, totals.DiscountAmount.Equal(dec("2.50")), "discount = %s", totals.DiscountAmount)
	assert.True(t, totals.TotalAmount.Equal(dec("104.49")), "total = %s", totals.TotalAmount)
}

func TestCalculateRejectsBadInput(t *testing.T) {
	valid := []LineItem{{UnitPrice: dec("10"), Quantity: 1, TaxPercent: dec("5")}}

	_, err := Calculate(dec("-1"), valid, decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidInput, "negative fee")

	_, err = Calculate(dec("100"), valid, dec("-1"))
	assert.ErrorIs(t, err, ErrInvalidInput, "negative discount")

	_, err = Calculate(dec("100"), valid, dec("101"))
	assert.ErrorIs(t, err, ErrInvalidInput, "discount above 100")

	_, err = Calculate(dec("100"), []LineItem{{UnitPrice: dec("-5"), Quantity: 1}}, decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidInput, "negative price")

	_, err = Calculate(dec("100"), []LineItem{{UnitPrice: dec("5"), Quantity: 0}}, decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidInput, "zero quantity")

	_, err = Calculate(dec("100"), []LineItem{{UnitPrice: dec("5"), Quantity: 1, TaxPercent: dec("120")}}, decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidInput, "tax above 100")
}

func TestRecompute(t *testing.T) {
	inv := &model.Invoice{
		ConsultationFee: dec("500"),
		MedicineTotal:   dec("250"),
		Tax:             dec("26.50"),
		DiscountPercent: dec("5"),
		// Derived fields tampered with by the caller.
		DiscountAmount: dec("999"),
		TotalAmount:    dec("1"),
	}

	Recompute(inv)

	assert.True(t, inv.DiscountAmount.Equal(dec("37.50")))
	assert.True(t, inv.TotalAmount.Equal(dec("739.00")))
}

func TestItemsFromPrescription(t *testing.T) {
	items := ItemsFromPrescription([]*model.PrescriptionItem{
		{UnitPrice: dec("100"), Quantity: 2, TaxPercent: dec("12")},
		{UnitPrice: dec("50"), Quantity: 1, TaxPercent: dec("5")},
	})

	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, items[1].UnitPrice.Equal(dec("50")))
}
