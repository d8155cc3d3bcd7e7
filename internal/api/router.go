package api

import (
	"finance_tracker/internal/middleware" // JWT authentication
	"finance_tracker/internal/repository" // Persistence
	"finance_tracker/internal/service"    // Ledger use cases

	"github.com/gin-gonic/gin"                                // Gin web framework
	"github.com/prometheus/client_golang/prometheus/promhttp" // Metrics exposition
)

// Handlers bundles what the routes are served from
type Handlers struct {
	Store        *repository.Store
	Transactions *service.TransactionService
	Groups       *service.GroupService
	Sharings     *service.SharingService
	JWTSecret    string
}

// NewRouter registers every route on a fresh engine
func NewRouter(h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	Register(r, h)
	return r
}

// Register adds the routes to r
func Register(r *gin.Engine, h Handlers) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler())) // Prometheus scrape endpoint

	// Auth routes
	r.POST("/user", RegisterHandler(h.Store))          // Registration endpoint
	r.GET("/user", LoginHandler(h.Store, h.JWTSecret)) // Login endpoint

	// Everything below requires a principal
	authed := r.Group("/", middleware.JWTAuthMiddleware(h.JWTSecret))

	authed.POST("/wallets", CreateWalletHandler(h.Transactions))
	authed.GET("/wallets/:id", GetWalletHandler(h.Transactions))

	authed.POST("/transactions", CreateTransactionHandler(h.Transactions))
	authed.PUT("/transactions/:id", UpdateTransactionHandler(h.Transactions))
	authed.DELETE("/transactions/:id", DeleteTransactionHandler(h.Transactions))

	authed.POST("/groups", CreateGroupHandler(h.Groups))
	authed.DELETE("/groups/:id", DeleteGroupHandler(h.Groups))
	authed.GET("/groups/:id/settlement", GetSettlementHandler(h.Groups))
	authed.POST("/groups/:id/sharing", EnableSharingHandler(h.Groups))
	authed.DELETE("/groups/:id/sharing", DisableSharingHandler(h.Groups))
	authed.POST("/groups/:id/transactions", AddGroupTransactionHandler(h.Groups))
	authed.PUT("/groups/:id/transactions/:txId", UpdateGroupTransactionHandler(h.Groups))
	authed.DELETE("/groups/:id/transactions/:txId", DeleteGroupTransactionHandler(h.Groups))
	authed.POST("/groups/:id/join", RequestJoinHandler(h.Sharings))

	authed.POST("/sharings/:id/accept", AcceptSharingHandler(h.Sharings))
	authed.POST("/sharings/:id/revoke", RevokeSharingHandler(h.Sharings))
}
