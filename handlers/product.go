package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"shuttle-store/internal/products"
	"shuttle-store/pkg/ctxmanage"
	"shuttle-store/pkg/logkey"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func (h *Handler) CreateProduct(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	if c.Request.ContentLength > 5*1024 {
		slog.Error("request body limit breached", slog.String(logkey.TraceID, traceId),
			slog.Int64("Size Received", c.Request.ContentLength))
		respondError(c, http.StatusBadRequest, "Request body too large")
		return
	}

	var newProduct products.NewProduct
	if err := c.ShouldBindJSON(&newProduct); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if msg, ok := h.checkStruct(newProduct, traceId); !ok {
		respondError(c, http.StatusBadRequest, msg)
		return
	}

	inserted, err := h.p.InsertProduct(c.Request.Context(), newProduct)
	if err != nil {
		slog.Error("error in inserting the product", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Product creation failed")
		return
	}

	respond(c, http.StatusCreated, "Product created successfully", inserted)
}

func (h *Handler) GetProduct(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	productID := c.Param("id")

	product, err := h.p.GetProductByID(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, products.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Product not found")
			return
		}
		slog.Error("error in retrieving product", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ProductID, productID), slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Failed to fetch product")
		return
	}

	respond(c, http.StatusOK, "Product fetched", product)
}

func (h *Handler) GetProductBySlug(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	slug := c.Param("slug")

	product, err := h.p.GetProductBySlug(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, products.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Product not found")
			return
		}
		slog.Error("error in retrieving product by slug", slog.String(logkey.TraceID, traceId),
			slog.String("Slug", slug), slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Failed to fetch product")
		return
	}

	respond(c, http.StatusOK, "Product fetched", product)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	productID := c.Param("id")

	current, err := h.p.GetProductByID(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, products.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Product not found")
			return
		}
		slog.Error("error in retrieving product", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ProductID, productID), slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Failed to fetch product")
		return
	}

	var updated products.Product
	if err := c.ShouldBindJSON(&updated); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	// Immutable fields survive the update.
	updated.ID = productID
	updated.CreatedAt = current.CreatedAt
	if updated.Status == "" {
		updated.Status = current.Status
	}

	product, err := h.p.UpdateProductInDB(c.Request.Context(), productID, updated)
	if err != nil {
		slog.Error("error in updating the product", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ProductID, productID), slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Product update failed")
		return
	}

	slog.Info("product updated successfully", slog.String(logkey.TraceID, traceId),
		slog.String(logkey.ProductID, productID))
	respond(c, http.StatusOK, "Product updated successfully", product)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	productID := c.Param("id")

	if err := h.p.DeleteProductFromDB(c.Request.Context(), productID); err != nil {
		if errors.Is(err, products.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Product not found")
			return
		}
		slog.Error("error in deleting the product", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ProductID, productID), slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Product deletion failed")
		return
	}

	respond(c, http.StatusOK, "Product successfully deleted", nil)
}

func (h *Handler) ListProducts(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	filter, ok := h.parseListFilter(c)
	if !ok {
		return
	}

	list, total, err := h.p.ListProductsFromDB(c.Request.Context(), filter)
	if err != nil {
		slog.Error("error in fetching products", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Failed to fetch products")
		return
	}

	respondPage(c, "Products fetched", list, Pagination{Total: total, Limit: filter.Limit, Offset: filter.Offset})
}

func (h *Handler) ListFeaturedProducts(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	filter := products.ListFilter{Featured: true, Limit: 12, Sort: "created_at", Order: "desc"}
	list, total, err := h.p.ListProductsFromDB(c.Request.Context(), filter)
	if err != nil {
		slog.Error("error in fetching featured products", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		respondError(c, http.StatusInternalServerError, "Failed to fetch products")
		return
	}

	respondPage(c, "Featured products fetched", list, Pagination{Total: total, Limit: filter.Limit})
}

func (h *Handler) parseListFilter(c *gin.Context) (products.ListFilter, bool) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 || limit > 100 {
		slog.Error("invalid limit parameter", slog.String(logkey.TraceID, traceId))
		respondError(c, http.StatusBadRequest, "Invalid limit parameter")
		return products.ListFilter{}, false
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		slog.Error("invalid offset parameter", slog.String(logkey.TraceID, traceId))
		respondError(c, http.StatusBadRequest, "Invalid offset parameter")
		return products.ListFilter{}, false
	}

	filter := products.ListFilter{
		Name:   c.Query("name"),
		Limit:  limit,
		Offset: offset,
		Sort:   c.DefaultQuery("sort", "name"),
		Order:  c.DefaultQuery("order", "asc"),
	}
	if v := c.Query("category_id"); v != "" {
		filter.CategoryID, _ = strconv.Atoi(v)
	}
	if v := c.Query("brand_id"); v != "" {
		filter.BrandID, _ = strconv.Atoi(v)
	}
	if v := c.Query("min_price"); v != "" {
		filter.MinPrice, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := c.Query("max_price"); v != "" {
		filter.MaxPrice, _ = strconv.ParseInt(v, 10, 64)
	}
	return filter, true
}

// checkStruct runs validator tags and shapes a per-tag message for the client.
func (h *Handler) checkStruct(s any, traceId string) (string, bool) {
	err := h.validate.Struct(s)
	if err == nil {
		return "", true
	}

	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		for _, vErr := range vErrs {
			switch vErr.Tag() {
			case "required":
				return vErr.Field() + " value missing", false
			case "min":
				return vErr.Field() + " value is less than " + vErr.Param(), false
			case "max":
				return vErr.Field() + " value is more than " + vErr.Param(), false
			case "oneof":
				return vErr.Field() + " must be one of " + vErr.Param(), false
			case "email":
				return vErr.Field() + " must be a valid email", false
			default:
				return http.StatusText(http.StatusBadRequest), false
			}
		}
	}

	slog.Error("validation failed", slog.String(logkey.TraceID, traceId),
		slog.String(logkey.ERROR, err.Error()))
	return http.StatusText(http.StatusBadRequest), false
}
