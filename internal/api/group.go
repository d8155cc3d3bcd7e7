package api

import (
	"net/http" // HTTP status codes
	"time"     // Transaction dates

	"finance_tracker/internal/domain"     // Importing domain models
	"finance_tracker/internal/middleware" // Principal resolution
	"finance_tracker/internal/money"      // Amount parsing
	"finance_tracker/internal/service"    // Ledger use cases

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Decimal amounts
)

// MemberRequest is one member listed at group creation
type MemberRequest struct {
	Name          string `json:"name"`
	UserID        *uint  `json:"user_id"`
	IsCreator     bool   `json:"is_creator"`
	AdvanceAmount string `json:"advance_amount"`
}

// CreateGroupRequest represents a group creation request
type CreateGroupRequest struct {
	Name           string          `json:"name" binding:"required"`
	InitialFunding string          `json:"initial_funding"`
	Members        []MemberRequest `json:"members"`
}

// GroupTransactionRequest represents a create or edit of a group transaction
type GroupTransactionRequest struct {
	MemberID uint       `json:"member_id" binding:"required"` // Member the row is attributed to
	Type     string     `json:"type" binding:"required"`      // INCOME, EXPENSE or CONTRIBUTE
	Source   string     `json:"source"`                       // Required for EXPENSE and CONTRIBUTE
	Amount   string     `json:"amount" binding:"required"`    // Decimal string
	Note     string     `json:"note"`
	Date     *time.Time `json:"date"`
}

func (r GroupTransactionRequest) input() (service.GroupTransactionInput, error) {
	amount, err := money.Parse(r.Amount)
	if err != nil {
		return service.GroupTransactionInput{}, err
	}
	in := service.GroupTransactionInput{
		MemberID: r.MemberID,
		Type:     domain.GroupTransactionType(r.Type),
		Source:   domain.GroupExpenseSource(r.Source),
		Amount:   amount,
		Note:     r.Note,
	}
	if r.Date != nil {
		in.Date = *r.Date
	}
	return in, nil
}

// optionalAmount parses s, treating an empty string as zero
func optionalAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return money.Parse(s)
}

// CreateGroupHandler creates a group owned by the authenticated user
func CreateGroupHandler(svc *service.GroupService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := middleware.CurrentUser(c)
		if err != nil {
			respondError(c, err)
			return
		}
		var req CreateGroupRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		in := service.GroupInput{Name: req.Name}
		if in.InitialFunding, err = optionalAmount(req.InitialFunding); err != nil {
			respondError(c, err)
			return
		}
		for _, m := range req.Members {
			advance, err := optionalAmount(m.AdvanceAmount)
			if err != nil {
				respondError(c, err)
				return
			}
			in.Members = append(in.Members, service.MemberInput{
				Name: m.Name, UserID: m.UserID, IsCreator: m.IsCreator, AdvanceAmount: advance,
			})
		}
		group, err := svc.CreateGroup(c.Request.Context(), userID, in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"group": group})
	}
}

// GetSettlementHandler returns the settlement summary of a group
func GetSettlementHandler(svc *service.GroupService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := middleware.CurrentUser(c)
		if err != nil {
			respondError(c, err)
			return
		}
		groupID, err := pathID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}
		summary, err := svc.GetSettlement(c.Request.Context(), userID, groupID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"settlement": summary})
	}
}

// DeleteGroupHandler deletes a group and everything that belongs to it
func DeleteGroupHandler(svc *service.GroupService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := middleware.CurrentUser(c)
		if err != nil {
			respondError(c, err)
			return
		}
		groupID, err := pathID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}
		if err := svc.DeleteGroup(c.Request.Context(), userID, groupID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Group deleted"})
	}
}

// EnableSharingHandler issues a sharing token for a group
func EnableSharingHandler(svc *service.GroupService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := middleware.CurrentUser(c)
		if err != nil {
			respondError(c, err)
			return
		}
		groupID, err := pathID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}
		token, err := svc.EnableSharing(c.Request.Context(), userID, groupID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"sharing_token": token})
	}
}

// DisableSharingHandler closes a group for join requests
func DisableSharingHandler(svc *service.GroupService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := middleware.CurrentUser(c)
		if err != nil {
			respondError(c, err)
			return
		}
		groupID, err := pathID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}
		if err := svc.DisableSharing(c.Request.Context(), userID, groupID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Sharing disabled"})
	}
}

// AddGroupTransactionHandler records a group transaction
func AddGroupTransactionHandler(svc *service.GroupService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := middleware.CurrentUser(c)
		if err != nil {
			respondError(c, err)
			return
		}
		groupID, err := pathID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}
		var req GroupTransactionRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		in, err := req.input()
		if err != nil {
			respondError(c, err)
			return
		}
		res, err := svc.AddGroupTransaction(c.Request.Context(), userID, groupID, in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, res)
	}
}

// UpdateGroupTransactionHandler edits a group transaction
func UpdateGroupTransactionHandler(svc *service.GroupService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := middleware.CurrentUser(c)
		if err != nil {
			respondError(c, err)
			return
		}
		groupID, err := pathID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}
		txID, err := pathID(c, "txId")
		if err != nil {
			respondError(c, err)
			return
		}
		var req GroupTransactionRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		in, err := req.input()
		if err != nil {
			respondError(c, err)
			return
		}
		res, err := svc.UpdateGroupTransaction(c.Request.Context(), userID, groupID, txID, in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// DeleteGroupTransactionHandler removes a group transaction
func DeleteGroupTransactionHandler(svc *service.GroupService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := middleware.CurrentUser(c)
		if err != nil {
			respondError(c, err)
			return
		}
		groupID, err := pathID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}
		txID, err := pathID(c, "txId")
		if err != nil {
			respondError(c, err)
			return
		}
		res, err := svc.DeleteGroupTransaction(c.Request.Context(), userID, groupID, txID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}
