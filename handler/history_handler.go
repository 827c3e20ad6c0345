package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/docsum-be/repository"
	"github.com/tieubaoca/docsum-be/types"
)

type HistoryHandler struct {
	summaryRepo repository.SummaryRepo
}

func NewHistoryHandler(summaryRepo repository.SummaryRepo) *HistoryHandler {
	return &HistoryHandler{
		summaryRepo: summaryRepo,
	}
}

// ListSummariesHandler handles GET /api/summaries with optional
// file_name, limit and offset query parameters.
func (h *HistoryHandler) ListSummariesHandler(c *gin.Context) {
	fileName := c.Query("file_name")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	records, err := h.summaryRepo.ListSummaries(c.Request.Context(), fileName, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  false,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data:   records,
	})
}

// GetSummaryHandler handles GET /api/summaries/:id.
func (h *HistoryHandler) GetSummaryHandler(c *gin.Context) {
	record, err := h.summaryRepo.GetSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, types.DataResponse{
			Status:  false,
			Message: "Summary not found",
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data:   record,
	})
}
