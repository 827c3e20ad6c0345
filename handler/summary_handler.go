package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	services "github.com/tieubaoca/docsum-be/service"
	"github.com/tieubaoca/docsum-be/types"
)

type SummaryHandler struct {
	fileService    *services.FileService
	summaryService *services.SummaryService
}

func NewSummaryHandler(fileService *services.FileService, summaryService *services.SummaryService) *SummaryHandler {
	return &SummaryHandler{
		fileService:    fileService,
		summaryService: summaryService,
	}
}

// SummarizeTextHandler handles POST /api/summarize with a JSON body.
func (h *SummaryHandler) SummarizeTextHandler(c *gin.Context) {
	var req types.SummarizeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Invalid request body",
		})
		return
	}

	result, err := h.summaryService.SummarizeText(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  false,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status: true,
		Data:   result,
	})
}

// SummarizeUploadHandler handles POST /api/summarize/upload: multipart
// file plus a metadata form field, streaming progress over SSE and
// ending with the final result as JSON.
func (h *SummaryHandler) SummarizeUploadHandler(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Invalid file",
		})
		return
	}
	defer file.Close()

	var req types.SummarizeUploadRequest
	if metadata := c.Request.FormValue("metadata"); metadata != "" {
		if err := json.Unmarshal([]byte(metadata), &req); err != nil {
			c.JSON(http.StatusBadRequest, types.DataResponse{
				Status:  false,
				Message: "Invalid metadata",
			})
			return
		}
	}

	const maxSize = 50 << 20
	if header.Size > maxSize {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "File too large",
		})
		return
	}

	statusChan := make(chan types.ProcessingStatus)
	type outcome struct {
		result *types.SummaryResult
		err    error
	}
	doneChan := make(chan outcome)
	go func() {
		result, err := h.fileService.SummarizeUpload(c.Request.Context(), req, header, statusChan)
		doneChan <- outcome{result: result, err: err}
	}()

	clientGone := c.Writer.CloseNotify()
	for {
		select {
		case <-clientGone:
			return // Client disconnected
		case status := <-statusChan:
			jsonStatus, err := json.Marshal(status)
			if err != nil {
				continue
			}
			c.SSEvent("message", string(jsonStatus))
			c.Writer.Flush()
		case done := <-doneChan:
			if done.err != nil {
				c.JSON(http.StatusInternalServerError, types.DataResponse{
					Status:  false,
					Message: done.err.Error(),
				})
			} else {
				c.JSON(http.StatusOK, types.DataResponse{
					Status: true,
					Data:   done.result,
				})
			}
			return
		}
	}
}
