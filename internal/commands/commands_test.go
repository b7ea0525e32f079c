package commands_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postSample records a deposit and a card payment against checking.
func postSample(t *testing.T, dir string) {
	t.Helper()
	out, err := runBooks(t, "journal", "add", "--repo", dir,
		"--date", "2024-01-15", "--description", "ACME invoice",
		"--debit", "1010=100.00", "--credit", "4010=100.00")
	require.NoError(t, err)
	assert.Contains(t, out, "Created 2024-01-001 (2 lines)")

	_, err = runBooks(t, "journal", "add", "--repo", dir,
		"--date", "2024-01-18", "--description", "GitHub",
		"--debit", "5020=100.00:subscription", "--credit", "1010=100.00")
	require.NoError(t, err)
}

func TestJournal_AddShowAndLedger(t *testing.T) {
	dir := initBooks(t)
	postSample(t, dir)

	out, err := runBooks(t, "journal", "show", "--repo", dir, "2024-01-002")
	require.NoError(t, err)
	assert.Contains(t, out, "GitHub")
	assert.Contains(t, out, "2024-01-002-01")
	assert.Contains(t, out, "$100.00")

	out, err = runBooks(t, "journal", "show", "--repo", dir, "2024-01-002-01")
	require.NoError(t, err)
	assert.Contains(t, out, "GitHub")

	_, err = runBooks(t, "journal", "show", "--repo", dir, "bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation: entryId")

	out, err = runBooks(t, "ledger", "--repo", dir, "1010")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-01-001-01")
	assert.Contains(t, out, "2024-01-002-02")
	assert.Contains(t, out, "$0.00", "running balance returns to zero")

	out, err = runBooks(t, "ledger", "--repo", dir, "1010", "--csv", "--from", "2024-01-16")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "2024-01-002-02,2024-01-002,2024-01-18,1010"))

	_, err = runBooks(t, "ledger", "--repo", dir, "9999")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestJournal_AddRejectsUnbalanced(t *testing.T) {
	dir := initBooks(t)
	_, err := runBooks(t, "journal", "add", "--repo", dir,
		"--date", "2024-01-15", "--description", "bad",
		"--debit", "1010=100.00", "--credit", "4010=99.99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "debits must equal credits")

	_, err = runBooks(t, "journal", "show", "--repo", dir, "2024-01-001")
	assert.Error(t, err, "nothing stored")

	_, err = runBooks(t, "journal", "add", "--repo", dir, "--date", "2024-01-15", "--debit", "1010")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ACCOUNT=AMOUNT")
}

func TestJournal_Import(t *testing.T) {
	dir := initBooks(t)
	csv := "entry_ref,date,description,reference,account_id,debit,credit,memo\n" +
		"a,2024-02-01,Owner contribution,,1010,5000.00,,\n" +
		"a,,,,3010,,5000.00,\n" +
		"b,2024-02-03,Broken,,1010,10.00,,\n" +
		"b,,,,4010,,9.00,\n" +
		"c,2024-02-05,Unknown account,,1010,1.00,,\n" +
		"c,,,,7777,,1.00,\n"
	path := filepath.Join(t.TempDir(), "journal.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	out, err := runBooks(t, "journal", "import", "--repo", dir, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 entries rejected")
	assert.Contains(t, out, "row 2: created 2024-02-001")
	assert.Contains(t, out, "row 4: rejected")
	assert.Contains(t, out, "row 6: rejected")
	assert.Contains(t, out, "Imported 1 of 3 entries")
}

func TestTrialBalance(t *testing.T) {
	dir := initBooks(t)
	postSample(t, dir)

	out, err := runBooks(t, "trial-balance", "--repo", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Service Revenue")
	assert.Regexp(t, `TOTAL\s+\$200\.00\s+\$200\.00\s+\$0\.00`, out)

	out, err = runBooks(t, "trial-balance", "--repo", dir, "--by-category")
	require.NoError(t, err)
	assert.Contains(t, out, "Income statement")
	assert.Contains(t, out, "net income  $0.00")
	assert.Contains(t, out, "  balanced")
}

func createReconciliation(t *testing.T, dir string) string {
	t.Helper()
	out, err := runBooks(t, "reconcile", "create", "--repo", dir, "1010",
		"--statement-date", "2024-01-31", "--closing-balance", "-55.00")
	require.NoError(t, err)
	fields := strings.Fields(out)
	require.GreaterOrEqual(t, len(fields), 3, out)
	return fields[2]
}

func TestReconcile_Lifecycle(t *testing.T) {
	dir := initBooks(t)
	postSample(t, dir)
	id := createReconciliation(t, dir)

	out, err := runBooks(t, "reconcile", "match", "--repo", dir, id, "../../testdata/statement.csv")
	require.NoError(t, err)
	assert.Contains(t, out, "5 lines: 1 matched, 1 need review, 1 unmatched, 2 rejected")
	assert.Contains(t, out, "exact")
	assert.Contains(t, out, "fuzzy")
	assert.Contains(t, out, "line 4 rejected")

	out, err = runBooks(t, "reconcile", "report", "--repo", dir, id, "--details")
	require.NoError(t, err)
	assert.Contains(t, out, "(unlocked)")
	assert.Contains(t, out, "outstanding      $0.00")
	assert.Contains(t, out, "  balanced")
	assert.Contains(t, out, "UNKNOWN POS PURCHASE")

	out, err = runBooks(t, "reconcile", "lock", "--repo", dir, id)
	require.NoError(t, err)
	assert.Contains(t, out, "Locked reconciliation "+id)

	_, err = runBooks(t, "reconcile", "match", "--repo", dir, id, "../../testdata/statement.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conflict")

	_, err = runBooks(t, "reconcile", "lock", "--repo", dir, id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locked")

	out, err = runBooks(t, "reconcile", "report", "--repo", dir, id)
	require.NoError(t, err)
	assert.Contains(t, out, "(locked)")
	assert.Contains(t, out, "1 matched")

	out, err = runBooks(t, "reconcile", "list", "--repo", dir, "1010")
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "true")
}

func TestReconcile_BankAccountName(t *testing.T) {
	dir := initBooks(t)
	cfgPath := filepath.Join(dir, "books.yaml")
	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	data = append(data, []byte("bank_accounts:\n  - name: checking\n    account_id: \"1010\"\n")...)
	require.NoError(t, os.WriteFile(cfgPath, data, 0o644))

	out, err := runBooks(t, "reconcile", "create", "--repo", dir, "checking",
		"--statement-date", "2024-01-31", "--closing-balance", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "1010 Business Checking")

	_, err = runBooks(t, "reconcile", "create", "--repo", dir, "nope",
		"--statement-date", "2024-01-31", "--closing-balance", "0")
	assert.Error(t, err)
}

func TestReconcile_MetricsFile(t *testing.T) {
	dir := initBooks(t)
	postSample(t, dir)
	id := createReconciliation(t, dir)

	metricsPath := filepath.Join(t.TempDir(), "books.prom")
	_, err := runBooks(t, "reconcile", "match", "--repo", dir, "--metrics-file", metricsPath, id, "../../testdata/statement.csv")
	require.NoError(t, err)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "books_ledger_reconciliation_runs_total 1")
}

func TestReconcile_UnknownFormat(t *testing.T) {
	dir := initBooks(t)
	id := createReconciliation(t, dir)
	_, err := runBooks(t, "reconcile", "match", "--repo", dir, "--format", "ofx", id, "../../testdata/statement.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown statement format")
}

func TestAudit_RecordsChanges(t *testing.T) {
	dir := initBooks(t)
	postSample(t, dir)
	id := createReconciliation(t, dir)
	_, err := runBooks(t, "reconcile", "match", "--repo", dir, id, "../../testdata/statement.csv")
	require.NoError(t, err)
	_, err = runBooks(t, "reconcile", "lock", "--repo", dir, id)
	require.NoError(t, err)

	out, err := runBooks(t, "audit", "--repo", dir)
	require.NoError(t, err)
	for _, action := range []string{"init", "entry_created", "reconciliation_created", "reconciliation_matched", "reconciliation_locked"} {
		assert.Contains(t, out, action)
	}
	assert.Contains(t, out, "tester")
	assert.Contains(t, out, "statement.csv: 1 matched, 1 adjusted, 1 unmatched, 2 rejected")

	out, err = runBooks(t, "audit", "--repo", dir, "2024-01-002")
	require.NoError(t, err)
	assert.Contains(t, out, "GitHub, 2 lines")
	assert.NotContains(t, out, "ACME")
}

func TestAudit_RejectedChangesNotRecorded(t *testing.T) {
	dir := initBooks(t)
	_, err := runBooks(t, "journal", "add", "--repo", dir,
		"--date", "2024-01-15", "--debit", "1010=1.00", "--credit", "4010=2.00")
	require.Error(t, err)

	out, err := runBooks(t, "audit", "--repo", dir)
	require.NoError(t, err)
	assert.NotContains(t, out, "entry_created")
}
