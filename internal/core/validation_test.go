package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_AcceptsGoodDraft(t *testing.T) {
	for _, amount := range []string{"12.5", "12.50", "1", "0.01"} {
		errs := Validate("Lunch", amount, "2025-01-01", CategoryFood)
		assert.Empty(t, errs, "amount %q", amount)
		assert.NoError(t, errs.Err())
	}
}

func TestValidate_EmptyTitleOnly(t *testing.T) {
	for _, title := range []string{"", "   ", "\t"} {
		errs := Validate(title, "10", "2025-01-01", CategoryFood)
		assert.Equal(t, FieldErrors{FieldTitle: "Title is required"}, errs)
	}
}

func TestValidate_AmountMessages(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"", "Amount is required"},
		{"  ", "Amount is required"},
		{"abc", "Amount must be a valid number (e.g. 50 or 50.99)"},
		{"12.345", "Amount must be a valid number (e.g. 50 or 50.99)"},
		{"-5", "Amount must be a valid number (e.g. 50 or 50.99)"},
		{"1e3", "Amount must be a valid number (e.g. 50 or 50.99)"},
		{"0", "Amount must be greater than 0"},
		{"0.00", "Amount must be greater than 0"},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			errs := Validate("ok", tt.amount, "2025-01-01", CategoryFood)
			assert.Len(t, errs, 1)
			assert.Equal(t, tt.want, errs[FieldAmount])
		})
	}
}

func TestValidate_ZeroIsDistinctFromFormat(t *testing.T) {
	zero := Validate("ok", "0", "2025-01-01", CategoryFood)[FieldAmount]
	bad := Validate("ok", "x", "2025-01-01", CategoryFood)[FieldAmount]
	assert.NotEmpty(t, zero)
	assert.NotEmpty(t, bad)
	assert.NotEqual(t, zero, bad)
}

func TestValidate_AllMissing(t *testing.T) {
	errs := Validate("", "", "", "")
	assert.Equal(t, FieldErrors{
		FieldTitle:    "Title is required",
		FieldAmount:   "Amount is required",
		FieldDate:     "Date is required",
		FieldCategory: "Please select a category",
	}, errs)
	assert.EqualError(t, errs.Err(),
		"validation failed: amount: Amount is required; category: Please select a category; date: Date is required; title: Title is required")
}

func TestInputDraft(t *testing.T) {
	d, errs := Input{Type: "income", Title: "Pay", Amount: "2500", Date: "2025-02-01", Category: CategorySalary, Description: "Feb"}.Draft()
	assert.Empty(t, errs)
	assert.Equal(t, Income, d.Type)
	assert.Equal(t, "2500.00", FormatAmount(d.Amount))
	assert.Equal(t, "Feb", d.Description)

	_, errs = Input{Type: "gift", Title: "x", Amount: "1", Date: "2025-02-01", Category: CategoryFood}.Draft()
	assert.Equal(t, FieldErrors{FieldType: "Type must be expense or income"}, errs)

	_, errs = Input{Type: "expense", Amount: "0"}.Draft()
	assert.Len(t, errs, 4)
	assert.Equal(t, "Amount must be greater than 0", errs[FieldAmount])
}
