package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"jumlamart.com/app/internal/http/middleware"
	"jumlamart.com/app/internal/modules/orders"
	"jumlamart.com/app/internal/shared/apperr"
)

type AdminOverviewHandler struct {
	Logger *slog.Logger
	Repo   *orders.Repo
}

func NewAdminOverviewHandler(logger *slog.Logger, repo *orders.Repo) *AdminOverviewHandler {
	return &AdminOverviewHandler{Logger: logger, Repo: repo}
}

// GET /api/admin/overview?days=30
// Feeds the dashboard charts: daily sales for the area chart, category totals
// for the pie chart, plus the latest paid orders.
func (h *AdminOverviewHandler) Get(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	ctx := c.Request.Context()

	byDay, err := h.Repo.SalesByDay(ctx, days)
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	byCategory, err := h.Repo.SalesByCategory(ctx)
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	recent, err := h.Repo.RecentPaid(ctx, 10)
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"salesByDay":      byDay,
		"salesByCategory": byCategory,
		"recentOrders":    recent,
	})
}
