package v1

import (
	"net/http"
	"strings"

	"contact-manager-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type ExportHandler struct {
	exportUC domain.ExportUsecase
}

func NewExportHandler(api *gin.RouterGroup, exportUC domain.ExportUsecase) {
	handler := &ExportHandler{exportUC: exportUC}
	api.GET("/contacts/export", handler.ExportContacts)
}

// ExportContacts godoc
// @Summary      Export contacts to Excel/CSV
// @Description  Downloads every contact as an xlsx workbook or csv file
// @Tags         contacts
// @Produce      application/octet-stream
// @Param        format   query     string  false  "Export format (xlsx, csv). Default: xlsx"
// @Param        columns  query     string  false  "Comma-separated wire names to include"
// @Success      200      {file}    binary
// @Failure      400      {object}  response.ErrorBody
// @Failure      500      {object}  response.ErrorBody
// @Router       /contacts/export [get]
func (h *ExportHandler) ExportContacts(c *gin.Context) {
	req := domain.ExportRequest{
		Format: c.DefaultQuery("format", "xlsx"),
	}
	if cols := c.Query("columns"); cols != "" {
		req.Columns = strings.Split(cols, ",")
	}

	file, err := h.exportUC.ExportContacts(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+file.Filename)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
