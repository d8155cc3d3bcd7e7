package domain

// TransactionType is the direction of a personal transaction
type TransactionType string

const (
	TransactionIncome  TransactionType = "INCOME"  // Increases the wallet balance
	TransactionExpense TransactionType = "EXPENSE" // Decreases the wallet balance
)

// Valid reports whether t is a known personal transaction type
func (t TransactionType) Valid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

// GroupTransactionType is the kind of a group transaction
type GroupTransactionType string

const (
	GroupIncome     GroupTransactionType = "INCOME"
	GroupExpense    GroupTransactionType = "EXPENSE"
	GroupContribute GroupTransactionType = "CONTRIBUTE"
)

// Valid reports whether t is a known group transaction type
func (t GroupTransactionType) Valid() bool {
	switch t {
	case GroupIncome, GroupExpense, GroupContribute:
		return true
	}
	return false
}

// RequiresSource reports whether a funding source must be recorded for t
func (t GroupTransactionType) RequiresSource() bool {
	return t == GroupExpense || t == GroupContribute
}

// GroupExpenseSource records where the money of a group transaction came from
type GroupExpenseSource string

const (
	SourceNone          GroupExpenseSource = ""
	SourceMemberAdvance GroupExpenseSource = "MEMBER_ADVANCE" // Paid from a member's pre-paid advance
	SourceMemberSponsor GroupExpenseSource = "MEMBER_SPONSOR" // Covered ad hoc by a member
	SourceGroupFund     GroupExpenseSource = "GROUP_FUND"     // Drawn from the shared pool
)

// Valid reports whether s is a known, non-empty source
func (s GroupExpenseSource) Valid() bool {
	switch s {
	case SourceMemberAdvance, SourceMemberSponsor, SourceGroupFund:
		return true
	}
	return false
}

// MemberRole is the role of a group member
type MemberRole string

const (
	RoleAdmin  MemberRole = "ADMIN"
	RoleMember MemberRole = "MEMBER"
)

// SharingStatus is the state of a join request
type SharingStatus string

const (
	SharingPending  SharingStatus = "PENDING"
	SharingAccepted SharingStatus = "ACCEPTED"
	SharingRevoked  SharingStatus = "REVOKED"
	SharingExpired  SharingStatus = "EXPIRED"
)

// Active reports whether the status blocks a new join request
func (s SharingStatus) Active() bool {
	return s == SharingPending || s == SharingAccepted
}
