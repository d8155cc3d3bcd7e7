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

// CreateWalletRequest represents a wallet creation request
type CreateWalletRequest struct {
	Name     string `json:"name" binding:"required"` // Display name
	Currency string `json:"currency"`                // ISO code, USD when empty
	Balance  string `json:"balance"`                 // Opening balance, "0" when empty
}

// TransactionRequest represents a create or edit of a personal transaction
type TransactionRequest struct {
	WalletID   uint       `json:"wallet_id" binding:"required"`   // Target wallet
	CategoryID uint       `json:"category_id" binding:"required"` // Category, must match type
	Type       string     `json:"type" binding:"required"`        // INCOME or EXPENSE
	Amount     string     `json:"amount" binding:"required"`      // Decimal string, e.g. "12.50"
	Note       string     `json:"note"`                           // Free text
	Date       *time.Time `json:"date"`                           // RFC 3339, today when absent
}

func (r TransactionRequest) input() (service.TransactionInput, error) {
	amount, err := money.Parse(r.Amount)
	if err != nil {
		return service.TransactionInput{}, err
	}
	in := service.TransactionInput{
		WalletID:   r.WalletID,
		CategoryID: r.CategoryID,
		Type:       domain.TransactionType(r.Type),
		Amount:     amount,
		Note:       r.Note,
	}
	if r.Date != nil {
		in.Date = *r.Date
	}
	return in, nil
}

// CreateWalletHandler opens a wallet for the authenticated user
func CreateWalletHandler(svc *service.TransactionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := middleware.CurrentUser(c)
		if err != nil {
			respondError(c, err)
			return
		}
		var req CreateWalletRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		balance := decimal.Zero // Opening balance
		if req.Balance != "" {
			if balance, err = money.Parse(req.Balance); err != nil {
				respondError(c, err)
				return
			}
		}
		wallet, err := svc.CreateWallet(c.Request.Context(), userID, service.WalletInput{
			Name:     req.Name,
			Currency: req.Currency,
			Balance:  balance,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Wallet created", "wallet": wallet})
	}
}

// GetWalletHandler returns a wallet of the authenticated user with its transactions
func GetWalletHandler(svc *service.TransactionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := middleware.CurrentUser(c)
		if err != nil {
			respondError(c, err)
			return
		}
		walletID, err := pathID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}
		wallet, err := svc.GetWallet(c.Request.Context(), userID, walletID)
		if err != nil {
			respondError(c, err)
			return
		}
		txs, err := svc.ListWalletTransactions(c.Request.Context(), userID, walletID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"wallet": wallet, "transactions": txs})
	}
}

// CreateTransactionHandler records a transaction and applies it to its wallet
func CreateTransactionHandler(svc *service.TransactionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := middleware.CurrentUser(c)
		if err != nil {
			respondError(c, err)
			return
		}
		var req TransactionRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		in, err := req.input()
		if err != nil {
			respondError(c, err)
			return
		}
		tx, err := svc.CreateTransaction(c.Request.Context(), userID, in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"transaction": tx})
	}
}

// UpdateTransactionHandler edits a transaction, moving its effect between wallets if needed
func UpdateTransactionHandler(svc *service.TransactionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := middleware.CurrentUser(c)
		if err != nil {
			respondError(c, err)
			return
		}
		txID, err := pathID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}
		var req TransactionRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		in, err := req.input()
		if err != nil {
			respondError(c, err)
			return
		}
		tx, err := svc.UpdateTransaction(c.Request.Context(), userID, txID, in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"transaction": tx})
	}
}

// DeleteTransactionHandler removes a transaction and reverses its effect
func DeleteTransactionHandler(svc *service.TransactionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := middleware.CurrentUser(c)
		if err != nil {
			respondError(c, err)
			return
		}
		txID, err := pathID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}
		if err := svc.DeleteTransaction(c.Request.Context(), userID, txID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted"})
	}
}
