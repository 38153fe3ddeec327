package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"go-storefront/internal/model"
	"go-storefront/pkg/apierror"
)

type productAPI interface {
	ListProducts(ctx context.Context, limit int, filter model.ProductFilter, sortKey model.ProductSortKey, reverse bool) ([]model.Product, error)
	GetProductByHandle(ctx context.Context, handle string) (*model.Product, error)
}

type ProductHandler struct {
	products productAPI
}

func NewProductHandler(products productAPI) *ProductHandler {
	return &ProductHandler{products: products}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := model.ProductFilter{Query: strings.TrimSpace(query.Get("query"))}
	if raw := query.Get("min_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			writeError(w, apierror.BadRequest("min_price must be a non-negative number", raw))
			return
		}
		filter.MinPrice = v
		filter.HasMin = true
	}
	if raw := query.Get("max_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			writeError(w, apierror.BadRequest("max_price must be a non-negative number", raw))
			return
		}
		filter.MaxPrice = v
		filter.HasMax = true
	}

	sortKey := model.SortByCreatedAt
	switch strings.ToUpper(query.Get("sort")) {
	case "":
	case "TITLE":
		sortKey = model.SortByTitle
	case "PRICE":
		sortKey = model.SortByPrice
	case "CREATED_AT":
		sortKey = model.SortByCreatedAt
	default:
		writeError(w, apierror.BadRequest("sort must be one of TITLE, PRICE, CREATED_AT", query.Get("sort")))
		return
	}

	reverse := query.Get("reverse") == "true"

	limit := 10
	if raw := query.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 || v > 100 {
			writeError(w, apierror.BadRequest("limit must be between 1 and 100", raw))
			return
		}
		limit = v
	}

	products, err := h.products.ListProducts(r.Context(), limit, filter, sortKey, reverse)
	if err != nil {
		writeError(w, apierror.Upstream("failed to fetch products", err.Error()))
		return
	}

	writeSuccess(w, http.StatusOK, products)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	handle := strings.TrimSpace(chi.URLParam(r, "handle"))
	if handle == "" {
		writeError(w, apierror.BadRequest("product handle is required", ""))
		return
	}

	product, err := h.products.GetProductByHandle(r.Context(), handle)
	if err != nil {
		if err == model.ErrProductNotFound {
			writeError(w, err)
			return
		}
		writeError(w, apierror.Upstream("failed to fetch product", err.Error()))
		return
	}

	writeSuccess(w, http.StatusOK, product)
}
