package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"disposal-platform/internal/audit"
	"disposal-platform/internal/auth"
	"disposal-platform/internal/catalog"
	"disposal-platform/internal/export"
	"disposal-platform/internal/items"
	"disposal-platform/internal/rbac"
	"disposal-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Auth    *auth.Manager
	Items   *items.Service
	Audit   *audit.Service
	Export  *export.Service
	Catalog *catalog.Catalog
}

// writeError maps workflow errors onto HTTP statuses. Unknown errors are
// logged and hidden behind a generic 500.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, items.ErrValidation):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, items.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, items.ErrPrecondition):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, items.ErrBusy):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "another bulk planning run is in progress"})
	default:
		logger.FromGin(c).Error("request failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func itemID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return 0, false
	}
	return id, true
}

// --- Auth ---

type loginRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Login issues an access token.
//
// NOTE: This endpoint trusts the submitted identity. Real deployments must
// validate credentials against a user directory first.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.Role == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id, role required"})
		return
	}
	switch req.Role {
	case rbac.RoleOperator, rbac.RoleApprover, rbac.RoleAdmin:
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}
	token, err := h.Auth.IssueAccess(time.Now(), req.UserID, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token})
}

func (h Handlers) Me(c *gin.Context) {
	uid, _ := auth.UserID(c.Request.Context())
	role, _ := auth.Role(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"user_id": uid, "role": role})
}

// --- Catalog ---

func (h Handlers) ListMethods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"methods": h.Catalog.Methods()})
}

// --- Items ---

func (h Handlers) CreateItem(c *gin.Context) {
	var req items.AddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	it, err := h.Items.Add(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, it)
}

func (h Handlers) ListItems(c *gin.Context) {
	f := items.ListFilter{
		NameContains: c.Query("q"),
		Status:       items.Status(c.Query("status")),
		Method:       catalog.Method(c.Query("method")),
	}
	list, err := h.Items.List(c.Request.Context(), f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": list})
}

func (h Handlers) GetItem(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	it, err := h.Items.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

func (h Handlers) DeleteItem(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	if err := h.Items.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type selectMethodRequest struct {
	Method         string `json:"method"`
	MitigationNote string `json:"mitigation_note"`
}

func (h Handlers) SelectMethod(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	var req selectMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	it, err := h.Items.SelectMethod(c.Request.Context(), id, catalog.Method(req.Method), req.MitigationNote)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

// GetRecommendation reports the method the planner would pick, read-only.
func (h Handlers) GetRecommendation(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	method, err := h.Items.Recommendation(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"method": method, "label": h.Catalog.Label(method)})
}

func (h Handlers) ApplyRecommendation(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	it, err := h.Items.ApplyRecommendation(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

// AutoPlan applies the recommended method to every unplanned item.
func (h Handlers) AutoPlan(c *gin.Context) {
	updated, err := h.Items.AutoPlan(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

func (h Handlers) ApproveItem(c *gin.Context) {
	h.transition(c, h.Items.Approve)
}

func (h Handlers) RejectItem(c *gin.Context) {
	h.transition(c, h.Items.Reject)
}

func (h Handlers) ResetItem(c *gin.Context) {
	h.transition(c, h.Items.Reset)
}

func (h Handlers) ExecuteItem(c *gin.Context) {
	h.transition(c, h.Items.Execute)
}

func (h Handlers) transition(c *gin.Context, op func(ctx context.Context, id int64) (items.Item, error)) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	it, err := op(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

// --- Audit ---

func (h Handlers) ListAudit(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}
	entries, err := h.Audit.List(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// --- Export ---

// ExportCSV streams the inventory as a CSV download.
func (h Handlers) ExportCSV(c *gin.Context) {
	f, err := h.Export.Export(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+f.Name+`"`)
	c.Data(http.StatusOK, f.ContentType, f.Data)
}
