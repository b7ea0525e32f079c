package store

import (
	"time"

	"github.com/shopspring/decimal"
)

// Amounts are stored as text so sqlite never rounds them through REAL.

type accountRow struct {
	ID          string `gorm:"primaryKey"`
	Code        string `gorm:"not null"`
	Name        string `gorm:"not null"`
	Type        string `gorm:"not null;index"`
	Category    string
	ParentID    string
	Description string
}

func (accountRow) TableName() string { return "accounts" }

type entryRow struct {
	ID          string    `gorm:"primaryKey"`
	Year        int       `gorm:"not null;uniqueIndex:idx_entry_seq"`
	Month       int       `gorm:"not null;uniqueIndex:idx_entry_seq"`
	Seq         int       `gorm:"not null;uniqueIndex:idx_entry_seq"`
	Date        time.Time `gorm:"not null;index"`
	Description string    `gorm:"not null"`
	Reference   string
	BusinessID  string
	IsAdjusting bool
	PeriodID    string
	CreatedAt   time.Time
	Lines       []lineRow `gorm:"foreignKey:EntryID"`
}

func (entryRow) TableName() string { return "journal_entries" }

type lineRow struct {
	ID          string          `gorm:"primaryKey"`
	EntryID     string          `gorm:"not null;index"`
	LineNo      int             `gorm:"not null"`
	AccountID   string          `gorm:"not null;index"`
	Debit       decimal.Decimal `gorm:"type:text;not null"`
	Credit      decimal.Decimal `gorm:"type:text;not null"`
	Description string
}

func (lineRow) TableName() string { return "journal_lines" }

type reconciliationRow struct {
	ID             string          `gorm:"primaryKey"`
	AccountID      string          `gorm:"not null;index"`
	BusinessID     string
	StatementDate  time.Time       `gorm:"not null"`
	ClosingBalance decimal.Decimal `gorm:"type:text;not null"`
	IsLocked       bool            `gorm:"not null;default:false"`
	CreatedAt      time.Time
	LockedAt       *time.Time

	// Summary of the latest matching run; MatchedAt is nil until one is stored.
	MatchedAt     *time.Time
	TotalItems    int
	Matched       int
	Adjusted      int
	Unmatched     int
	Rejected      int
	BankBalance   decimal.NullDecimal `gorm:"type:text"`
	LedgerBalance decimal.NullDecimal `gorm:"type:text"`
	Difference    decimal.NullDecimal `gorm:"type:text"`
}

func (reconciliationRow) TableName() string { return "reconciliations" }

type matchRow struct {
	ID               uint   `gorm:"primaryKey"`
	ReconciliationID string `gorm:"not null;index"`
	Position         int    `gorm:"not null"`

	StatementDate        time.Time
	StatementDescription string
	StatementAmount      decimal.NullDecimal `gorm:"type:text"`
	StatementType        string

	LedgerLineID      *string `gorm:"index"`
	LedgerEntryID     string
	LedgerAccountID   string
	LedgerDate        *time.Time
	LedgerDescription string
	LedgerReference   string
	LedgerDebit       decimal.NullDecimal `gorm:"type:text"`
	LedgerCredit      decimal.NullDecimal `gorm:"type:text"`

	MatchType     string `gorm:"not null"`
	Confidence    string `gorm:"not null"`
	NeedsReview   bool
	NeedsCreation bool
}

func (matchRow) TableName() string { return "reconciliation_matches" }

type lineErrorRow struct {
	ID               uint   `gorm:"primaryKey"`
	ReconciliationID string `gorm:"not null;index"`
	Position         int    `gorm:"not null"`
	Message          string `gorm:"not null"`
}

func (lineErrorRow) TableName() string { return "reconciliation_line_errors" }

var allModels = []any{
	&accountRow{},
	&entryRow{},
	&lineRow{},
	&reconciliationRow{},
	&matchRow{},
	&lineErrorRow{},
}
