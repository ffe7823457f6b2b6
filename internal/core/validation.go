package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Form field names, shared with the HTTP layer's error payloads.
const (
	FieldTitle    = "title"
	FieldAmount   = "amount"
	FieldDate     = "date"
	FieldCategory = "category"
	FieldType     = "type"
)

const (
	msgTitleRequired    = "Title is required"
	msgAmountRequired   = "Amount is required"
	msgAmountFormat     = "Amount must be a valid number (e.g. 50 or 50.99)"
	msgAmountPositive   = "Amount must be greater than 0"
	msgDateRequired     = "Date is required"
	msgCategoryRequired = "Please select a category"
)

// FieldErrors maps a form field to a human readable problem.
type FieldErrors map[string]string

// Validate checks a draft's primitive fields. It never fails; an empty result
// means the values are acceptable.
func Validate(title, amount, date, category string) FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(title) == "" {
		errs[FieldTitle] = msgTitleRequired
	}

	if _, err := ParseAmount(amount); err != nil {
		switch {
		case errors.Is(err, ErrEmptyAmount):
			errs[FieldAmount] = msgAmountRequired
		case errors.Is(err, ErrNonPositiveAmount):
			errs[FieldAmount] = msgAmountPositive
		default:
			errs[FieldAmount] = msgAmountFormat
		}
	}

	if date == "" {
		errs[FieldDate] = msgDateRequired
	}

	if category == "" {
		errs[FieldCategory] = msgCategoryRequired
	}

	return errs
}

// Err returns nil for an empty set, otherwise a single error listing every
// field in a stable order.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s: %s", f, fe[f])
	}
	return errors.New("validation failed: " + strings.Join(parts, "; "))
}

const msgTypeInvalid = "Type must be expense or income"

// Input is a draft as typed into the form: every field is raw text.
type Input struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Category    string `json:"category"`
}

// Draft validates the input and converts it. The draft is only meaningful
// when the returned FieldErrors is empty.
func (in Input) Draft() (Draft, FieldErrors) {
	errs := Validate(in.Title, in.Amount, in.Date, in.Category)

	typ, err := ParseType(in.Type)
	if err != nil {
		errs[FieldType] = msgTypeInvalid
	}
	if len(errs) > 0 {
		return Draft{}, errs
	}

	amount, _ := ParseAmount(in.Amount)
	return Draft{
		Type:        typ,
		Title:       in.Title,
		Description: in.Description,
		Amount:      amount,
		Date:        in.Date,
		Category:    in.Category,
	}, errs
}
