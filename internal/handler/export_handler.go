package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/sheetexport/internal/logger"
	"github.com/locvowork/sheetexport/internal/service"
)

type ExportHandler struct {
	svc *service.ExportService
}

func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// decodeRequest reads an ExportRequest, keeping JSON numbers exact so
// integers are written as integers.
func decodeRequest(c echo.Context) (service.ExportRequest, error) {
	var req service.ExportRequest
	dec := json.NewDecoder(c.Request().Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		return req, err
	}
	if f := c.QueryParam("format"); f != "" {
		req.Format = f
	}
	for i, sheet := range req.Sheets {
		if sheet.Source != nil {
			return req, fmt.Errorf("sheet %d: data sources are only available to batch jobs", i)
		}
	}
	return req, nil
}

// ExportFileHandler handles POST /export and streams the file back as an
// attachment.
func (h *ExportHandler) ExportFileHandler(c echo.Context) error {
	ctx := c.Request().Context()
	req, err := decodeRequest(c)
	if err != nil {
		return ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	res, err := h.svc.Export(ctx, req)
	if err != nil {
		if service.IsClientError(err) {
			return ResponseError(c, http.StatusBadRequest, "Invalid export request", err)
		}
		logger.ErrorLog(ctx, "export failed", err)
		return ResponseError(c, http.StatusInternalServerError, "Failed to export", err)
	}

	filename := strings.TrimSpace(c.QueryParam("filename"))
	if filename == "" {
		filename = "export"
	}
	filename = strings.TrimSuffix(filename, res.Format.Extension()) + res.Format.Extension()

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	c.Response().Header().Set(echo.HeaderContentLength, strconv.Itoa(len(res.Data)))
	return c.Blob(http.StatusOK, res.Format.ContentType(), res.Data)
}

// PreviewHandler handles POST /export/preview and returns the merge regions
// the export would write.
func (h *ExportHandler) PreviewHandler(c echo.Context) error {
	req, err := decodeRequest(c)
	if err != nil {
		return ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	regions, stats, err := h.svc.Preview(c.Request().Context(), req)
	if err != nil {
		if service.IsClientError(err) {
			return ResponseError(c, http.StatusBadRequest, "Invalid export request", err)
		}
		return ResponseError(c, http.StatusInternalServerError, "Failed to lay out export", err)
	}
	return ResponseSuccess(c, http.StatusOK, "Layout computed successfully", map[string]interface{}{
		"sheets":  stats,
		"regions": regions,
	})
}

func HealthHandler(c echo.Context) error {
	return ResponseSuccess(c, http.StatusOK, "ok", nil)
}
