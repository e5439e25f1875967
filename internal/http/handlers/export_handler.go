// Export HTTP handlers.
//
//   - GET  /export   (download the entries file, application/xml)
//   - POST /export   (copy the entries file to a server-side path)
//
// Both serve the persisted file byte-for-byte, never a re-encoding.
package handlers

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-hydration-backend/internal/export"
)

// ExportRequest names the destination of a server-side export.
type ExportRequest struct {
	// Dest is an absolute path on the server; an existing file is replaced.
	Dest string `json:"dest" binding:"required" example:"/var/backups/water_intake.xml"`
}

// ExportResponse reports the export outcome.
type ExportResponse struct {
	OK bool `json:"ok" example:"true"`
}

// DownloadExport godoc
// @ID          downloadExport
// @Summary     Download the entries file
// @Tags        Export
// @Produce     application/xml
// @Success     200  {file}   file  "water_intake.xml"
// @Failure     500  {object} handlers.ErrorResponse "Nothing to export"
// @Router      /export [get]
func (h *Handlers) DownloadExport(c *gin.Context) {
	var buf bytes.Buffer
	if _, err := h.entries.Download(c.Request.Context(), &buf); err != nil {
		failFor(c, err, ErrCodeExportFailed)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.DefaultFilename+`"`)
	c.Header("Content-Length", strconv.Itoa(buf.Len()))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

// ExportToPath godoc
// @ID          exportToPath
// @Summary     Export the entries file to a server path
// @Description Copies the persisted file to dest. Failure details are logged, not returned.
// @Tags        Export
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.ExportRequest  true  "Destination"
// @Success     200  {object} handlers.ExportResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Export failed"
// @Router      /export [post]
func (h *Handlers) ExportToPath(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "dest required")
		return
	}
	if err := h.entries.Export(c.Request.Context(), req.Dest); err != nil {
		failFor(c, err, ErrCodeExportFailed)
		return
	}
	ok(c, http.StatusOK, ExportResponse{OK: true})
}
