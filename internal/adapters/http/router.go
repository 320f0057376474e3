package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sellerdesk/listing-pipeline/internal/core/domain"
	"github.com/sellerdesk/listing-pipeline/internal/core/ports"
)

type Router struct {
	enhancer ports.ListingEnhancer
	products ports.ProductRepository
	exports  ports.ExportRepository
	queue    ports.MessageQueue
	reports  ports.ReportWriter
	metrics  http.Handler
}

func NewRouter(
	enhancer ports.ListingEnhancer,
	products ports.ProductRepository,
	exports ports.ExportRepository,
	queue ports.MessageQueue,
	reports ports.ReportWriter,
	metrics http.Handler,
) *Router {
	return &Router{
		enhancer: enhancer,
		products: products,
		exports:  exports,
		queue:    queue,
		reports:  reports,
		metrics:  metrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/products", rt.createProducts)
	mux.HandleFunc("/v1/products/", rt.getProductByID)
	mux.HandleFunc("/v1/enhance", rt.enhanceProduct)
	mux.HandleFunc("/v1/enhance/batch", rt.enhanceBatch)
	mux.HandleFunc("/v1/exports", rt.handleExports)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics)
	}
	return requestIDMiddleware(accessLogMiddleware(mux))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) createProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var products []*domain.Product
	if err := decodeProductPayload(r, &products); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	now := time.Now().UTC()
	for _, product := range products {
		if product.ID == "" {
			product.ID = uuid.NewString()
		}
		product.CreatedAt = now
		product.UpdatedAt = now
	}

	saved, err := rt.products.Save(r.Context(), products)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// decodeProductPayload accepts a single product object or an array.
func decodeProductPayload(r *http.Request, out *[]*domain.Product) error {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return domain.WrapError(domain.ErrInvalidInput, "decode products", err)
	}
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(raw, out); err != nil {
			return domain.WrapError(domain.ErrInvalidInput, "decode products", err)
		}
	} else {
		var single domain.Product
		if err := json.Unmarshal(raw, &single); err != nil {
			return domain.WrapError(domain.ErrInvalidInput, "decode products", err)
		}
		*out = []*domain.Product{&single}
	}
	if len(*out) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "decode products", errEmptyPayload)
	}
	return nil
}

func (rt *Router) getProductByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/products/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "product id is required"})
		return
	}

	product, err := rt.products.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (rt *Router) enhanceProduct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Product     *domain.Product `json:"product"`
		ProductID   string          `json:"product_id"`
		Marketplace string          `json:"marketplace"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	var result *domain.EnhancementResult
	var err error
	switch {
	case req.Product != nil:
		result, err = rt.enhancer.Enhance(r.Context(), req.Product, req.Marketplace)
	case strings.TrimSpace(req.ProductID) != "":
		result, err = rt.enhancer.EnhanceByID(r.Context(), req.ProductID, req.Marketplace)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "either product or product_id is required"})
		return
	}
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) enhanceBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		ProductIDs  []string `json:"product_ids"`
		Marketplace string   `json:"marketplace"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if len(req.ProductIDs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "product_ids is required"})
		return
	}

	queued := 0
	for _, id := range req.ProductIDs {
		if strings.TrimSpace(id) == "" {
			continue
		}
		err := rt.queue.PublishEnhanceRequested(r.Context(), domain.EnhanceRequest{
			ProductID:   id,
			Marketplace: req.Marketplace,
		})
		if err != nil {
			writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
			return
		}
		queued++
	}
	writeJSON(w, http.StatusAccepted, map[string]int{"queued": queued})
}

func (rt *Router) handleExports(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		rt.listExports(w, r)
	case http.MethodPost:
		rt.createExport(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) listExports(w http.ResponseWriter, r *http.Request) {
	records, err := rt.exports.ListExports(r.Context())
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// createExport runs a synchronous batch over stored products and writes
// the xlsx report. A missing product becomes an error-annotated entry in
// the batch rather than failing the export.
func (rt *Router) createExport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductIDs  []string `json:"product_ids"`
		Marketplace string   `json:"marketplace"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if len(req.ProductIDs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "product_ids is required"})
		return
	}

	products := make([]*domain.Product, 0, len(req.ProductIDs))
	for _, id := range req.ProductIDs {
		product, err := rt.products.GetByID(r.Context(), id)
		if err != nil {
			product = &domain.Product{ID: id}
		}
		products = append(products, product)
	}

	results, err := rt.enhancer.EnhanceBatch(r.Context(), products, req.Marketplace)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	path, err := rt.reports.WriteReport(r.Context(), results)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	record := &domain.ExportRecord{
		ID:           uuid.NewString(),
		Marketplace:  strings.ToLower(strings.TrimSpace(req.Marketplace)),
		ProductCount: len(results),
		FilePath:     path,
		CreatedAt:    time.Now().UTC(),
	}
	// The report on disk outlives a history bookkeeping failure.
	if err := rt.exports.RecordExport(r.Context(), record); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"record": record, "warning": "export history not recorded: " + err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
