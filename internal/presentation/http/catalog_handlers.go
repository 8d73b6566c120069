package httppresentation

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	appcatalog "github.com/greenmart/storefront/internal/application/catalog"
	domcatalog "github.com/greenmart/storefront/internal/domain/catalog"
	domorder "github.com/greenmart/storefront/internal/domain/order"
)

// productResponse adds the time-dependent effective price to the stored
// product document.
type productResponse struct {
	*domcatalog.Product
	EffectivePrice float64 `json:"effective_price"`
}

func toProductResponse(p *domcatalog.Product) productResponse {
	return productResponse{Product: p, EffectivePrice: p.EffectivePrice(time.Now().UTC())}
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domcatalog.ListFilter{
		Search:     q.Get("search"),
		CategoryID: q.Get("category_id"),
		ActiveOnly: q.Get("include_inactive") == "",
		InStock:    q.Get("in_stock") == "true",
		Limit:      parseInt64(q.Get("limit"), 20),
		Offset:     parseInt64(q.Get("offset"), 0),
	}

	products, err := h.catalog.ListProducts(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": out})
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

type productRequest struct {
	Name           string                     `json:"name"`
	Description    string                     `json:"description"`
	Brand          string                     `json:"brand"`
	SKU            string                     `json:"sku"`
	OriginalPrice  float64                    `json:"original_price"`
	SalePrice      float64                    `json:"sale_price"`
	Currency       string                     `json:"currency"`
	Quantity       int                        `json:"quantity"`
	CategoryID     string                     `json:"category_id"`
	Specifications []domcatalog.Specification `json:"specifications"`
	Active         bool                       `json:"active"`
	OnSale         bool                       `json:"on_sale"`
	SaleStart      *time.Time                 `json:"sale_start"`
	SaleEnd        *time.Time                 `json:"sale_end"`
}

func (req productRequest) toInput() appcatalog.ProductInput {
	return appcatalog.ProductInput{
		Name:           req.Name,
		Description:    req.Description,
		Brand:          req.Brand,
		SKU:            req.SKU,
		OriginalPrice:  req.OriginalPrice,
		SalePrice:      req.SalePrice,
		Currency:       req.Currency,
		Quantity:       req.Quantity,
		CategoryID:     req.CategoryID,
		Specifications: req.Specifications,
		Active:         req.Active,
		OnSale:         req.OnSale,
		SaleStart:      req.SaleStart,
		SaleEnd:        req.SaleEnd,
	}
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	if !actorFrom(r).Admin {
		writeDomainError(w, domorder.ErrForbidden)
		return
	}

	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	p, err := h.catalog.CreateProduct(r.Context(), req.toInput())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(p))
}

// updateProductRequest mirrors UpdateProductInput: absent fields leave the
// stored product untouched, so clients send only what they change.
type updateProductRequest struct {
	Name           string                     `json:"name"`
	Description    string                     `json:"description"`
	Brand          string                     `json:"brand"`
	OriginalPrice  *float64                   `json:"original_price"`
	SalePrice      *float64                   `json:"sale_price"`
	CategoryID     string                     `json:"category_id"`
	Specifications []domcatalog.Specification `json:"specifications"`
	Active         *bool                      `json:"active"`
	OnSale         *bool                      `json:"on_sale"`
	SaleStart      *time.Time                 `json:"sale_start"`
	SaleEnd        *time.Time                 `json:"sale_end"`
}

func (h *Handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	if !actorFrom(r).Admin {
		writeDomainError(w, domorder.ErrForbidden)
		return
	}

	var req updateProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	p, err := h.catalog.UpdateProduct(r.Context(), chi.URLParam(r, "id"), appcatalog.UpdateProductInput{
		Name:           req.Name,
		Description:    req.Description,
		Brand:          req.Brand,
		OriginalPrice:  req.OriginalPrice,
		SalePrice:      req.SalePrice,
		CategoryID:     req.CategoryID,
		Specifications: req.Specifications,
		Active:         req.Active,
		OnSale:         req.OnSale,
		SaleStart:      req.SaleStart,
		SaleEnd:        req.SaleEnd,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

type adjustStockRequest struct {
	Delta int    `json:"delta"`
	Mode  string `json:"mode"`
}

func (h *Handler) handleAdjustStock(w http.ResponseWriter, r *http.Request) {
	if !actorFrom(r).Admin {
		writeDomainError(w, domorder.ErrForbidden)
		return
	}

	var req adjustStockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	remaining, err := h.catalog.AdjustStock(r.Context(), chi.URLParam(r, "id"), req.Delta, domcatalog.StockMode(req.Mode))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"quantity": remaining})
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ParentID    string `json:"parent_id"`
}

func (h *Handler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	if !actorFrom(r).Admin {
		writeDomainError(w, domorder.ErrForbidden)
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	c, err := h.catalog.CreateCategory(r.Context(), req.Name, req.Description, req.ParentID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func parseInt64(s string, fallback int64) int64 {
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
