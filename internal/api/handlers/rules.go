package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sentrywaf/waf/internal/rulestore"
)

type RulesHandler struct {
	store *rulestore.Store
}

func NewRulesHandler(store *rulestore.Store) *RulesHandler {
	return &RulesHandler{store: store}
}

func (h *RulesHandler) List(c *gin.Context) {
	rules, err := h.store.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to list rules"})
		return
	}
	c.JSON(http.StatusOK, rules)
}

func (h *RulesHandler) Toggle(c *gin.Context) {
	id := c.Param("id")
	rule, err := h.store.Toggle(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, rulestore.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Rule not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "failed to toggle rule"})
		return
	}
	c.JSON(http.StatusOK, rule)
}
