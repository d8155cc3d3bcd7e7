package ledger

import (
	"finance_tracker/internal/domain"
)

// Buckets tells which accounting totals a group transaction counts toward.
// A row may count in two buckets at once (an expense paid by a sponsor), but never in
// both Income and Expense.
type Buckets struct {
	Income      bool
	Expense     bool
	Sponsorship bool
	Advance     bool
}

// expenseBuckets covers every funding source of an EXPENSE row.
var expenseBuckets = map[domain.GroupExpenseSource]Buckets{
	domain.SourceGroupFund:     {Expense: true},
	domain.SourceMemberSponsor: {Expense: true, Sponsorship: true},
	domain.SourceMemberAdvance: {Expense: true, Advance: true},
}

// Classify maps (type, source) to its buckets. INCOME and CONTRIBUTE ignore the source.
// An unknown type or an EXPENSE with an unknown source is a programming defect.
func Classify(t domain.GroupTransactionType, s domain.GroupExpenseSource) (Buckets, error) {
	switch t {
	case domain.GroupIncome:
		return Buckets{Income: true}, nil
	case domain.GroupContribute:
		return Buckets{Sponsorship: true}, nil
	case domain.GroupExpense:
		if b, ok := expenseBuckets[s]; ok {
			return b, nil
		}
		return Buckets{}, unsupported(s)
	}
	return Buckets{}, unsupported(t)
}
