package journal

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/books/internal/apperr"
)

// Epsilon is the largest debit/credit difference an entry may carry and still
// count as balanced. With amounts limited to cents it admits only exact balance.
var Epsilon = decimal.RequireFromString("0.01")

var hundred = decimal.NewFromInt(100)

// EntryInput is a journal entry submission.
type EntryInput struct {
	Date        time.Time   `validate:"required"`
	Description string      `validate:"required"`
	Reference   string      `validate:"max=64"`
	BusinessID  string      `validate:"max=64"`
	IsAdjusting bool
	PeriodID    string      `validate:"max=64"`
	Lines       []LineInput `validate:"min=2,dive"`
}

// LineInput is one line of a journal entry submission.
type LineInput struct {
	AccountID   string `validate:"required"`
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

// AccountChecker tests whether an account ID exists in the chart of accounts.
type AccountChecker interface {
	Exists(id string) bool
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateEntry checks shape, per-line amounts, account references and the
// balance invariant, in that order, and returns the first violation.
func ValidateEntry(in EntryInput, accounts AccountChecker) error {
	if err := validate.Struct(in); err != nil {
		return shapeError(err)
	}

	debits, credits := decimal.Zero, decimal.Zero
	for i, l := range in.Lines {
		field := fmt.Sprintf("lines[%d]", i)
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return apperr.Validation(field, "amounts must be non-negative")
		}
		if l.Debit.IsZero() == l.Credit.IsZero() {
			return apperr.Validation(field, "line must have exactly one of debit or credit")
		}
		if !isCents(l.Debit) || !isCents(l.Credit) {
			return apperr.Validation(field, "amount has more than 2 decimal places")
		}
		debits = debits.Add(l.Debit)
		credits = credits.Add(l.Credit)
	}

	for _, l := range in.Lines {
		if !accounts.Exists(l.AccountID) {
			return apperr.NotFound("account", l.AccountID)
		}
	}

	if debits.Sub(credits).Abs().GreaterThanOrEqual(Epsilon) {
		return apperr.Unbalanced(debits, credits)
	}
	return nil
}

func isCents(d decimal.Decimal) bool {
	scaled := d.Mul(hundred)
	return scaled.Equal(scaled.Floor())
}

func shapeError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Validation("entry", "%v", err)
	}
	fe := verrs[0]
	field := strings.TrimPrefix(fe.Namespace(), "EntryInput.")
	switch fe.Tag() {
	case "required":
		return apperr.Validation(field, "is required")
	case "min":
		return apperr.Validation(field, "needs at least %s items", fe.Param())
	case "max":
		return apperr.Validation(field, "longer than %s characters", fe.Param())
	}
	return apperr.Validation(field, "failed %s check", fe.Tag())
}
