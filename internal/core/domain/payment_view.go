package domain

// AccountPaymentView is the payment picture for one school account, as shown to
// operators: the resolved paid figure, the expected amount on the account, and
// the matched transaction history. When the paid total is overridden, the history
// is informational only and is not summed.
type AccountPaymentView struct {
	Account        SchoolAccount
	Paid           PaymentTotal
	MatchedHistory []Transaction
}
