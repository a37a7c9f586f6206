// Package handlers provides HTTP handlers for the API.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pantryshelf/products-service/internal/api/dto"
	"github.com/pantryshelf/products-service/internal/api/middleware"
	domainerrors "github.com/pantryshelf/products-service/internal/domain/errors"
	"github.com/pantryshelf/products-service/internal/services/products"
)

// jsonContentType is sent without a charset parameter.
const jsonContentType = "application/json"

// CollectionsHandler serves the contents of product collections.
type CollectionsHandler struct {
	service products.Service
	timeout time.Duration
}

// NewCollectionsHandler creates a new CollectionsHandler. A zero timeout leaves the
// request context untouched.
func NewCollectionsHandler(service products.Service, timeout time.Duration) *CollectionsHandler {
	return &CollectionsHandler{
		service: service,
		timeout: timeout,
	}
}

// List returns the handler for one collection.
// @Summary List a product collection
// @Description Returns every document of the collection as a JSON array, connecting to the document database on first use
// @Tags Products
// @Produce json
// @Param collection path string true "Collection name" Enums(coffeetea, oil, spices)
// @Success 200 {array} object "Documents in natural order"
// @Failure 500 {object} dto.FetchErrorResponse "Connection or fetch failed"
// @Router /api/{collection} [get]
func (h *CollectionsHandler) List(collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if h.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, h.timeout)
			defer cancel()
		}

		docs, err := h.service.List(ctx, collection)
		if err != nil {
			logger := middleware.GetRequestLogger(c)
			logger.Error().
				Err(err).
				Str("collection", collection).
				Str("kind", domainerrors.Kind(err)).
				Msg("failed to fetch products")
			writeJSON(c, http.StatusInternalServerError, dto.NewFetchErrorResponse())
			return
		}

		writeJSON(c, http.StatusOK, docs)
	}
}

func writeJSON(c *gin.Context, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		logger := middleware.GetRequestLogger(c)
		logger.Error().Err(err).Msg("failed to encode response")
		status = http.StatusInternalServerError
		body, _ = json.Marshal(dto.NewFetchErrorResponse())
	}
	c.Data(status, jsonContentType, body)
}
