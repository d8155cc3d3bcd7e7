package ledger

import (
	"fmt"
	"sort"

	"finance_tracker/internal/domain"
	"finance_tracker/internal/money"

	"github.com/shopspring/decimal"
)

// MemberSettlement is one member's position derived from the group log.
type MemberSettlement struct {
	MemberID         uint              `json:"member_id"`
	UserID           *uint             `json:"user_id"`
	Name             string            `json:"name"`
	Role             domain.MemberRole `json:"role"`
	IsCreator        bool              `json:"is_creator"`
	TotalSponsorship decimal.Decimal   `json:"total_sponsorship"`
	TotalAdvance     decimal.Decimal   `json:"total_advance"`
	TotalIncome      decimal.Decimal   `json:"total_income"`
	TotalExpense     decimal.Decimal   `json:"total_expense"`

	// Seeded on the member row, informational only.
	AdvanceAmount decimal.Decimal `json:"advance_amount"`
	BalanceOwed   decimal.Decimal `json:"balance_owed"`
}

// Summary is the group-level settlement view.
type Summary struct {
	GroupID          uint               `json:"group_id"`
	GroupVersion     uint               `json:"group_version"` // Group.Version the log was read at
	InitialFunding   decimal.Decimal    `json:"initial_funding"`
	TotalIncome      decimal.Decimal    `json:"total_income"`
	TotalExpense     decimal.Decimal    `json:"total_expense"`
	TotalSponsorship decimal.Decimal    `json:"total_sponsorship"`
	TotalAdvance     decimal.Decimal    `json:"total_advance"`
	GroupBalance     decimal.Decimal    `json:"group_balance"`
	NetExpense       decimal.Decimal    `json:"net_expense"`
	TransactionCount int                `json:"transaction_count"`
	Members          []MemberSettlement `json:"members"`
}

// Settle derives the summary of a group from its members and its full transaction log.
// It is a pure function of its inputs: the same log always yields the same summary,
// whatever order the rows arrive in. Rows of other groups are ignored.
//
//	groupBalance = max(0, initialFunding + income + sponsorship - expense)
//	netExpense   = expense - sponsorship
func Settle(group domain.Group, members []domain.GroupMember, txs []domain.GroupTransaction) (*Summary, error) {
	s := &Summary{
		GroupID:          group.ID,
		GroupVersion:     group.Version,
		InitialFunding:   group.InitialFunding,
		TotalIncome:      decimal.Zero,
		TotalExpense:     decimal.Zero,
		TotalSponsorship: decimal.Zero,
		TotalAdvance:     decimal.Zero,
	}

	perMember := make(map[uint]*MemberSettlement, len(members))
	for _, m := range members {
		perMember[m.ID] = &MemberSettlement{
			MemberID:         m.ID,
			UserID:           m.UserID,
			Name:             m.Name,
			Role:             m.Role,
			IsCreator:        m.IsUser(group.CreatorID),
			TotalSponsorship: decimal.Zero,
			TotalAdvance:     decimal.Zero,
			TotalIncome:      decimal.Zero,
			TotalExpense:     decimal.Zero,
			AdvanceAmount:    m.AdvanceAmount,
			BalanceOwed:      m.BalanceOwed,
		}
	}

	for _, tx := range txs {
		if tx.GroupID != group.ID {
			continue
		}
		b, err := Classify(tx.Type, tx.Source)
		if err != nil {
			return nil, fmt.Errorf("classify group transaction %d: %w", tx.ID, err)
		}
		s.TransactionCount++
		m := perMember[tx.MemberID] // nil for rows of members no longer listed
		if b.Income {
			s.TotalIncome = money.Add(s.TotalIncome, tx.Amount)
			if m != nil {
				m.TotalIncome = money.Add(m.TotalIncome, tx.Amount)
			}
		}
		if b.Expense {
			s.TotalExpense = money.Add(s.TotalExpense, tx.Amount)
			if m != nil {
				m.TotalExpense = money.Add(m.TotalExpense, tx.Amount)
			}
		}
		if b.Sponsorship {
			s.TotalSponsorship = money.Add(s.TotalSponsorship, tx.Amount)
			if m != nil {
				m.TotalSponsorship = money.Add(m.TotalSponsorship, tx.Amount)
			}
		}
		if b.Advance {
			s.TotalAdvance = money.Add(s.TotalAdvance, tx.Amount)
			if m != nil {
				m.TotalAdvance = money.Add(m.TotalAdvance, tx.Amount)
			}
		}
	}

	inflow := money.Sum(s.InitialFunding, s.TotalIncome, s.TotalSponsorship)
	s.GroupBalance = money.FloorZero(money.Sub(inflow, s.TotalExpense))
	s.NetExpense = money.Sub(s.TotalExpense, s.TotalSponsorship)

	s.Members = make([]MemberSettlement, 0, len(perMember))
	for _, m := range perMember {
		s.Members = append(s.Members, *m)
	}
	sort.Slice(s.Members, func(i, j int) bool { return s.Members[i].MemberID < s.Members[j].MemberID })

	return s, nil
}

// Member returns the settlement of one member, or false if it is not part of the summary.
func (s *Summary) Member(memberID uint) (MemberSettlement, bool) {
	for _, m := range s.Members {
		if m.MemberID == memberID {
			return m, true
		}
	}
	return MemberSettlement{}, false
}
