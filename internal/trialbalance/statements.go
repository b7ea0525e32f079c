package trialbalance

import "github.com/shopspring/decimal"

// IncomeStatement reports revenue and expenses in their normal-balance sign.
type IncomeStatement struct {
	Revenue   decimal.Decimal
	Expenses  decimal.Decimal
	NetIncome decimal.Decimal
}

// NewIncomeStatement derives an income statement from category totals.
func NewIncomeStatement(c Categories) IncomeStatement {
	revenue := c.Revenue.Balance.Neg()
	expenses := c.Expense.Balance
	return IncomeStatement{
		Revenue:   revenue,
		Expenses:  expenses,
		NetIncome: revenue.Sub(expenses),
	}
}

// BalanceSheet reports assets against liabilities and equity. Unclosed
// current-period earnings are carried separately as NetIncome.
type BalanceSheet struct {
	Assets      decimal.Decimal
	Liabilities decimal.Decimal
	Equity      decimal.Decimal
	NetIncome   decimal.Decimal
}

// NewBalanceSheet derives a balance sheet from category totals.
func NewBalanceSheet(c Categories) BalanceSheet {
	return BalanceSheet{
		Assets:      c.Asset.Balance,
		Liabilities: c.Liability.Balance.Neg(),
		Equity:      c.Equity.Balance.Neg(),
		NetIncome:   NewIncomeStatement(c).NetIncome,
	}
}

// Balanced reports whether assets equal liabilities plus equity plus earnings.
func (b BalanceSheet) Balanced() bool {
	return b.Assets.Equal(b.Liabilities.Add(b.Equity).Add(b.NetIncome))
}
