package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"disposal-platform/internal/audit"
	"disposal-platform/internal/catalog"
	"disposal-platform/internal/export"
	"disposal-platform/internal/items"

	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	auditRepo := audit.NewMemoryRepo()
	store := items.NewMemoryStore(auditRepo)
	cat := catalog.Default()
	itemSvc := items.NewService(store, cat)

	h := Handlers{
		Items:   itemSvc,
		Audit:   audit.NewService(auditRepo),
		Export:  export.NewService(itemSvc, cat),
		Catalog: cat,
	}

	r := gin.New()
	r.POST("/items", h.CreateItem)
	r.GET("/items", h.ListItems)
	r.GET("/items/:id", h.GetItem)
	r.DELETE("/items/:id", h.DeleteItem)
	r.POST("/items/:id/method", h.SelectMethod)
	r.GET("/items/:id/recommendation", h.GetRecommendation)
	r.POST("/items/:id/recommendation", h.ApplyRecommendation)
	r.POST("/items/:id/approve", h.ApproveItem)
	r.POST("/items/:id/reject", h.RejectItem)
	r.POST("/items/:id/reset", h.ResetItem)
	r.POST("/items/:id/execute", h.ExecuteItem)
	r.POST("/jobs/auto-plan", h.AutoPlan)
	r.GET("/audit", h.ListAudit)
	r.GET("/export/csv", h.ExportCSV)
	r.GET("/methods", h.ListMethods)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body == "" {
		rd = bytes.NewReader(nil)
	} else {
		rd = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestItemWorkflowOverHTTP(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/items", `{"name":"DDR4 8GB","quantity":150,"facility_age":5}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	var created items.Item
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("create: bad body: %v", err)
	}
	if created.ID == 0 || created.Status != items.StatusPending {
		t.Fatalf("create: unexpected item %+v", created)
	}
	base := fmt.Sprintf("/items/%d", created.ID)

	// Recommendation for qty 150, age 5 is aid reuse.
	w = do(t, r, http.MethodGet, base+"/recommendation", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"aid"`) {
		t.Fatalf("recommendation: got %d %s", w.Code, w.Body.String())
	}

	// Execute before approval must conflict.
	if w = do(t, r, http.MethodPost, base+"/execute", ""); w.Code != http.StatusConflict {
		t.Fatalf("execute pending: expected 409, got %d", w.Code)
	}

	if w = do(t, r, http.MethodPost, base+"/recommendation", ""); w.Code != http.StatusOK {
		t.Fatalf("apply recommendation: got %d %s", w.Code, w.Body.String())
	}
	if w = do(t, r, http.MethodPost, base+"/approve", ""); w.Code != http.StatusOK {
		t.Fatalf("approve: got %d %s", w.Code, w.Body.String())
	}
	w = do(t, r, http.MethodPost, base+"/execute", "")
	if w.Code != http.StatusOK {
		t.Fatalf("execute: got %d %s", w.Code, w.Body.String())
	}
	var executed items.Item
	if err := json.Unmarshal(w.Body.Bytes(), &executed); err != nil {
		t.Fatalf("execute: bad body: %v", err)
	}
	if executed.Status != items.StatusExecuted || executed.Method != catalog.MethodAid {
		t.Fatalf("execute: unexpected item %+v", executed)
	}

	w = do(t, r, http.MethodGet, "/audit", "")
	if w.Code != http.StatusOK {
		t.Fatalf("audit: got %d", w.Code)
	}
	for _, action := range []string{"add", "apply_recommendation", "approve", "execute"} {
		if !strings.Contains(w.Body.String(), `"`+action+`"`) {
			t.Fatalf("audit: missing action %q in %s", action, w.Body.String())
		}
	}
}

func TestErrorStatusMapping(t *testing.T) {
	r := newTestRouter(t)

	if w := do(t, r, http.MethodPost, "/items", `{"name":"   "}`); w.Code != http.StatusBadRequest {
		t.Fatalf("blank name: expected 400, got %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/items/999", ""); w.Code != http.StatusNotFound {
		t.Fatalf("missing item: expected 404, got %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/items/abc", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id: expected 400, got %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/items?status=bogus", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad status filter: expected 400, got %d", w.Code)
	}

	do(t, r, http.MethodPost, "/items", `{"name":"SODIMM","quantity":10}`)
	if w := do(t, r, http.MethodPost, "/items/1/method", `{"method":"incinerate"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown method: expected 400, got %d", w.Code)
	}
	if w := do(t, r, http.MethodPost, "/items/1/approve", ""); w.Code != http.StatusConflict {
		t.Fatalf("approve without method: expected 409, got %d", w.Code)
	}
}

func TestCreateItem_NumericFieldBoundaries(t *testing.T) {
	r := newTestRouter(t)

	// Absent numeric fields clamp to their minimums.
	w := do(t, r, http.MethodPost, "/items", `{"name":"Bare"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("absent numbers: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	var it items.Item
	if err := json.Unmarshal(w.Body.Bytes(), &it); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if it.Quantity != 1 || it.FacilityAge != 0 {
		t.Fatalf("expected quantity 1 and age 0, got %d/%d", it.Quantity, it.FacilityAge)
	}

	// Out-of-range values clamp; malformed JSON numbers are rejected.
	w = do(t, r, http.MethodPost, "/items", `{"name":"Over","quantity":2000000}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("oversized quantity: expected 201, got %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &it); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if it.Quantity != items.MaxQuantity {
		t.Fatalf("expected quantity clamped to %d, got %d", items.MaxQuantity, it.Quantity)
	}
	if w = do(t, r, http.MethodPost, "/items", `{"name":"Bad","quantity":"ten"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("non-numeric quantity: expected 400, got %d", w.Code)
	}
}

func TestAutoPlanEndpoint(t *testing.T) {
	r := newTestRouter(t)

	do(t, r, http.MethodPost, "/items", `{"name":"A","quantity":600}`)
	do(t, r, http.MethodPost, "/items", `{"name":"B","quantity":50,"facility_age":25}`)

	w := do(t, r, http.MethodPost, "/jobs/auto-plan", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"updated":2`) {
		t.Fatalf("auto-plan: got %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodGet, "/items?method=recycle", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"A"`) {
		t.Fatalf("filter by method: got %d %s", w.Code, w.Body.String())
	}
}

func TestExportCSVDownload(t *testing.T) {
	r := newTestRouter(t)
	do(t, r, http.MethodPost, "/items", `{"name":"ECC RDIMM","quantity":120}`)

	w := do(t, r, http.MethodGet, "/export/csv", "")
	if w.Code != http.StatusOK {
		t.Fatalf("export: got %d", w.Code)
	}
	cd := w.Header().Get("Content-Disposition")
	if !strings.Contains(cd, `attachment; filename="memory_disposal_`) {
		t.Fatalf("export: unexpected disposition %q", cd)
	}
	body := w.Body.Bytes()
	if !bytes.HasPrefix(body, []byte("\uFEFF")) {
		t.Fatalf("export: missing BOM prefix")
	}
	if !bytes.Contains(body, []byte("ECC RDIMM")) {
		t.Fatalf("export: missing item row")
	}
}
