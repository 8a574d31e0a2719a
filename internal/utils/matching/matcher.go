// Package matching implements the legacy heuristic that attributes ledger
// transactions to school accounts by text matching. New transactions carry an
// explicit account link; this heuristic remains for transactions recorded before
// the link existed and for the one-time backfill that assigns links to them.
package matching

import (
	"strings"

	"github.com/autoecole-hub/console_backend/internal/core/domain"
)

// MatchAccounts returns every account the transaction can be attributed to.
// An account matches when its display name appears (case-insensitive) in the
// transaction description, or its id appears as a substring of the transaction
// reference. Zero, one, or many accounts may match; attribution is not unique.
func MatchAccounts(txn domain.Transaction, accounts []domain.SchoolAccount) []domain.SchoolAccount {
	var matched []domain.SchoolAccount
	description := strings.ToLower(txn.Description)
	for _, acc := range accounts {
		if acc.Name != "" && strings.Contains(description, strings.ToLower(acc.Name)) {
			matched = append(matched, acc)
			continue
		}
		if acc.AccountID != "" && strings.Contains(txn.Reference, acc.AccountID) {
			matched = append(matched, acc)
		}
	}
	return matched
}

// Matches reports whether the transaction is attributable to the given account,
// either through its explicit account link or through the legacy text heuristic.
func Matches(txn domain.Transaction, account domain.SchoolAccount) bool {
	if txn.AccountID != "" {
		return txn.AccountID == account.AccountID
	}
	if account.Name != "" && strings.Contains(strings.ToLower(txn.Description), strings.ToLower(account.Name)) {
		return true
	}
	return account.AccountID != "" && strings.Contains(txn.Reference, account.AccountID)
}
