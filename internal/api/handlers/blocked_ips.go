package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sentrywaf/waf/internal/blocklist"
)

type BlockedIPsHandler struct {
	checker *blocklist.Checker
}

func NewBlockedIPsHandler(checker *blocklist.Checker) *BlockedIPsHandler {
	return &BlockedIPsHandler{checker: checker}
}

func (h *BlockedIPsHandler) List(c *gin.Context) {
	ips, err := h.checker.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to list blocked ips"})
		return
	}
	c.JSON(http.StatusOK, ips)
}

func (h *BlockedIPsHandler) Unblock(c *gin.Context) {
	ip := c.Param("ip")
	if err := h.checker.Unblock(c.Request.Context(), ip); err != nil {
		if errors.Is(err, blocklist.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "IP not found in blocklist"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to unblock ip"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": ip + " has been unblocked"})
}
