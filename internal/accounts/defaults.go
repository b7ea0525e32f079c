package accounts

import "github.com/cleared-dev/books/internal/model"

// DefaultChart returns the default chart of accounts for an entity type.
// Account IDs equal their codes.
func DefaultChart(entityType string) []model.Account {
	switch entityType {
	case "llc_single_member":
		return llcSingleMemberChart()
	default:
		return llcSingleMemberChart()
	}
}

func acct(code, name string, typ model.AccountType, category, parent, desc string) model.Account {
	return model.Account{ID: code, Code: code, Name: name, Type: typ, Category: category, ParentID: parent, Description: desc}
}

func llcSingleMemberChart() []model.Account {
	return []model.Account{
		acct("1000", "Cash and Bank", model.AccountTypeAsset, "current_assets", "", "Cash accounts"),
		acct("1010", "Business Checking", model.AccountTypeAsset, "current_assets", "1000", "Primary checking account"),
		acct("1020", "Business Savings", model.AccountTypeAsset, "current_assets", "1000", "Savings account"),
		acct("1200", "Accounts Receivable", model.AccountTypeAsset, "current_assets", "", "Customer invoices outstanding"),
		acct("2010", "Credit Card", model.AccountTypeLiability, "current_liabilities", "", "Business credit card"),
		acct("2100", "Accounts Payable", model.AccountTypeLiability, "current_liabilities", "", "Supplier bills outstanding"),
		acct("3010", "Owner's Equity", model.AccountTypeEquity, "", "", "Owner's contributions"),
		acct("3020", "Owner's Draws", model.AccountTypeEquity, "", "", "Owner's withdrawals"),
		acct("4010", "Service Revenue", model.AccountTypeRevenue, "operating_revenue", "", ""),
		acct("4020", "Product Revenue", model.AccountTypeRevenue, "operating_revenue", "", ""),
		acct("5010", "Advertising & Marketing", model.AccountTypeExpense, "operating_expenses", "", "Advertising costs"),
		acct("5020", "Software & SaaS", model.AccountTypeExpense, "operating_expenses", "", "Software subscriptions"),
		acct("5030", "Office Supplies", model.AccountTypeExpense, "operating_expenses", "", "Office supplies and expenses"),
		acct("5040", "Professional Services", model.AccountTypeExpense, "operating_expenses", "", "Legal, accounting, consulting"),
		acct("5090", "Bank Fees", model.AccountTypeExpense, "operating_expenses", "", "Bank and payment processing fees"),
	}
}
