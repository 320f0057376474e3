package httpadapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sellerdesk/listing-pipeline/internal/core/domain"
)

type stubEnhancer struct {
	result   *domain.EnhancementResult
	err      error
	lastMode string
}

func (s *stubEnhancer) Enhance(_ context.Context, product *domain.Product, _ string) (*domain.EnhancementResult, error) {
	s.lastMode = "inline"
	return s.result, s.err
}

func (s *stubEnhancer) EnhanceByID(_ context.Context, productID, _ string) (*domain.EnhancementResult, error) {
	s.lastMode = "by-id"
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubEnhancer) EnhanceBatch(_ context.Context, products []*domain.Product, _ string) ([]*domain.EnhancementResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]*domain.EnhancementResult, len(products))
	for i, p := range products {
		out[i] = &domain.EnhancementResult{ProductID: p.ID}
	}
	return out, nil
}

type stubProducts struct {
	store map[string]*domain.Product
	saved []*domain.Product
}

func (s *stubProducts) Save(_ context.Context, products []*domain.Product) ([]*domain.Product, error) {
	s.saved = append(s.saved, products...)
	return products, nil
}

func (s *stubProducts) Update(_ context.Context, products []*domain.Product) ([]*domain.Product, error) {
	return products, nil
}

func (s *stubProducts) GetByID(_ context.Context, id string) (*domain.Product, error) {
	if p, ok := s.store[id]; ok {
		return p, nil
	}
	return nil, domain.WrapError(domain.ErrProductNotFound, "get product", domain.ErrProductNotFound)
}

type stubExports struct {
	records []domain.ExportRecord
}

func (s *stubExports) RecordExport(_ context.Context, record *domain.ExportRecord) error {
	s.records = append(s.records, *record)
	return nil
}

func (s *stubExports) ListExports(_ context.Context) ([]domain.ExportRecord, error) {
	return s.records, nil
}

type stubQueue struct {
	published []domain.EnhanceRequest
	err       error
}

func (s *stubQueue) PublishEnhanceRequested(_ context.Context, req domain.EnhanceRequest) error {
	if s.err != nil {
		return s.err
	}
	s.published = append(s.published, req)
	return nil
}

func (s *stubQueue) SubscribeEnhanceRequested(context.Context, func(context.Context, domain.EnhanceRequest) error) error {
	return nil
}

type stubReports struct {
	path string
}

func (s *stubReports) WriteReport(context.Context, []*domain.EnhancementResult) (string, error) {
	return s.path, nil
}

type testHarness struct {
	enhancer *stubEnhancer
	products *stubProducts
	exports  *stubExports
	queue    *stubQueue
	handler  http.Handler
}

func newHarness() *testHarness {
	h := &testHarness{
		enhancer: &stubEnhancer{result: &domain.EnhancementResult{ProductID: "p-1", OverallScore: 80}},
		products: &stubProducts{store: map[string]*domain.Product{}},
		exports:  &stubExports{},
		queue:    &stubQueue{},
	}
	router := NewRouter(h.enhancer, h.products, h.exports, h.queue, &stubReports{path: "/tmp/report.xlsx"}, nil)
	h.handler = router.Handler()
	return h
}

func (h *testHarness) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	h := newHarness()

	rec := h.do(t, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("no request id header")
	}
}

func TestCreateProductsAssignsIDs(t *testing.T) {
	h := newHarness()

	rec := h.do(t, http.MethodPost, "/v1/products", `[{"title":"Oak Shelf"},{"title":"Pine Shelf","id":"keep-me"}]`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var created []domain.Product
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if len(created) != 2 {
		t.Fatalf("created %d products", len(created))
	}
	if created[0].ID == "" {
		t.Fatal("missing id not assigned")
	}
	if created[1].ID != "keep-me" {
		t.Fatalf("caller-supplied id replaced: %q", created[1].ID)
	}
}

func TestCreateProductsAcceptsSingleObject(t *testing.T) {
	h := newHarness()

	rec := h.do(t, http.MethodPost, "/v1/products", `{"title":"Oak Shelf"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(h.products.saved) != 1 {
		t.Fatalf("saved %d products", len(h.products.saved))
	}
}

func TestCreateProductsRejectsInvalidJSON(t *testing.T) {
	h := newHarness()

	rec := h.do(t, http.MethodPost, "/v1/products", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestGetProductByID(t *testing.T) {
	h := newHarness()
	h.products.store["p-1"] = &domain.Product{ID: "p-1", Title: "Oak Shelf"}

	rec := h.do(t, http.MethodGet, "/v1/products/p-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	rec = h.do(t, http.MethodGet, "/v1/products/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status for missing product = %d", rec.Code)
	}
}

func TestEnhanceInlineProduct(t *testing.T) {
	h := newHarness()

	rec := h.do(t, http.MethodPost, "/v1/enhance", `{"product":{"title":"Oak Shelf"},"marketplace":"amazon"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if h.enhancer.lastMode != "inline" {
		t.Fatalf("mode = %q", h.enhancer.lastMode)
	}
}

func TestEnhanceByStoredID(t *testing.T) {
	h := newHarness()

	rec := h.do(t, http.MethodPost, "/v1/enhance", `{"product_id":"p-1","marketplace":"ebay"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if h.enhancer.lastMode != "by-id" {
		t.Fatalf("mode = %q", h.enhancer.lastMode)
	}
}

func TestEnhanceRequiresProductOrID(t *testing.T) {
	h := newHarness()

	rec := h.do(t, http.MethodPost, "/v1/enhance", `{"marketplace":"amazon"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestEnhanceMapsDomainErrors(t *testing.T) {
	h := newHarness()
	h.enhancer.err = domain.WrapError(domain.ErrProductNotFound, "enhance by id", domain.ErrProductNotFound)

	rec := h.do(t, http.MethodPost, "/v1/enhance", `{"product_id":"missing"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestEnhanceBatchQueuesRequests(t *testing.T) {
	h := newHarness()

	rec := h.do(t, http.MethodPost, "/v1/enhance/batch", `{"product_ids":["p-1","p-2"," "],"marketplace":"walmart"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(h.queue.published) != 2 {
		t.Fatalf("published %d requests, want 2 (blank id skipped)", len(h.queue.published))
	}
	if h.queue.published[0].Marketplace != "walmart" {
		t.Fatalf("request = %+v", h.queue.published[0])
	}

	var body map[string]int
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["queued"] != 2 {
		t.Fatalf("queued = %d", body["queued"])
	}
}

func TestCreateExportRunsBatchAndRecords(t *testing.T) {
	h := newHarness()
	h.products.store["p-1"] = &domain.Product{ID: "p-1"}

	rec := h.do(t, http.MethodPost, "/v1/exports", `{"product_ids":["p-1","missing"],"marketplace":"Amazon"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var record domain.ExportRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &record); err != nil {
		t.Fatal(err)
	}
	if record.ProductCount != 2 {
		t.Fatalf("product count = %d, want missing products included as placeholders", record.ProductCount)
	}
	if record.Marketplace != "amazon" {
		t.Fatalf("marketplace = %q, want lowercased", record.Marketplace)
	}
	if record.FilePath != "/tmp/report.xlsx" {
		t.Fatalf("file path = %q", record.FilePath)
	}
	if len(h.exports.records) != 1 {
		t.Fatalf("recorded %d exports", len(h.exports.records))
	}
}

func TestListExports(t *testing.T) {
	h := newHarness()
	h.exports.records = []domain.ExportRecord{{ID: "e-1"}}

	rec := h.do(t, http.MethodGet, "/v1/exports", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var records []domain.ExportRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %+v", records)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newHarness()

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/v1/enhance"},
		{http.MethodDelete, "/v1/products"},
		{http.MethodPut, "/v1/exports"},
	} {
		rec := h.do(t, tc.method, tc.path, "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s status = %d", tc.method, tc.path, rec.Code)
		}
	}
}
