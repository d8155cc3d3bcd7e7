package api

import (
	"net/http" // HTTP status codes

	"finance_tracker/internal/middleware" // Principal resolution
	"finance_tracker/internal/service"    // Ledger use cases

	"github.com/gin-gonic/gin" // Gin web framework
)

// JoinRequest carries the sharing token of the group to join
type JoinRequest struct {
	Token string `json:"token" binding:"required"`
}

// RequestJoinHandler files a join request for a shared group
func RequestJoinHandler(svc *service.SharingService) gin.HandlerFunc {
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
		var req JoinRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		sharing, err := svc.RequestJoin(c.Request.Context(), userID, groupID, req.Token)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"sharing": sharing})
	}
}

// AcceptSharingHandler accepts a pending join request
func AcceptSharingHandler(svc *service.SharingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := middleware.CurrentUser(c)
		if err != nil {
			respondError(c, err)
			return
		}
		sharingID, err := pathID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}
		member, err := svc.Accept(c.Request.Context(), userID, sharingID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"member": member})
	}
}

// RevokeSharingHandler withdraws a pending join request
func RevokeSharingHandler(svc *service.SharingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := middleware.CurrentUser(c)
		if err != nil {
			respondError(c, err)
			return
		}
		sharingID, err := pathID(c, "id")
		if err != nil {
			respondError(c, err)
			return
		}
		if err := svc.Revoke(c.Request.Context(), userID, sharingID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Join request revoked"})
	}
}
