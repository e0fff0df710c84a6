package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"jumlamart.com/app/internal/http/middleware"
	"jumlamart.com/app/internal/modules/orders"
	"jumlamart.com/app/internal/shared/apperr"
)

type OrdersHandler struct {
	Logger *slog.Logger
	Repo   *orders.Repo
}

func NewOrdersHandler(logger *slog.Logger, repo *orders.Repo) *OrdersHandler {
	return &OrdersHandler{Logger: logger, Repo: repo}
}

// GET /api/orders/:id
func (h *OrdersHandler) Detail(c *gin.Context) {
	id := c.Param("id")

	o, items, err := h.Repo.GetWithItems(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			middleware.Fail(c, apperr.NotFoundErr("Order not found."))
			return
		}
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": o, "items": items})
}
