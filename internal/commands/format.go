package commands

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// formatter renders amounts in the business currency.
type formatter struct {
	cur *money.Currency
}

func newFormatter(code string) formatter {
	cur := money.GetCurrency(code)
	if cur == nil {
		cur = money.GetCurrency(money.USD)
	}
	return formatter{cur: cur}
}

var (
	maxMinor = decimal.NewFromInt(math.MaxInt64)
	minMinor = decimal.NewFromInt(-math.MaxInt64)
)

// amount formats d with the currency symbol and grouping, e.g. "$1,250.00".
// Amounts too large for int64 minor units are printed without grouping.
func (f formatter) amount(d decimal.Decimal) string {
	minor := d.Shift(int32(f.cur.Fraction)).Round(0)
	if minor.GreaterThan(maxMinor) || minor.LessThan(minMinor) {
		return f.ungrouped(d)
	}
	return f.cur.Formatter().Format(minor.IntPart())
}

func (f formatter) ungrouped(d decimal.Decimal) string {
	s := strings.Replace(d.Abs().StringFixed(int32(f.cur.Fraction)), ".", f.cur.Decimal, 1)
	s = strings.Replace(f.cur.Template, "1", s, 1)
	s = strings.Replace(s, "$", f.cur.Grapheme, 1)
	if d.IsNegative() {
		s = "-" + s
	}
	return s
}

// blankZero formats d, or returns "" for zero.
func (f formatter) blankZero(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return f.amount(d)
}

func parseDate(flag, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: expected YYYY-MM-DD, got %q", flag, s)
	}
	return t, nil
}

func parseAmount(flag, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", ""))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("--%s: invalid amount %q", flag, s)
	}
	return d, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
