package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/reports/fleet returns the fleet overview as an inline PDF.
func FleetReport(c *gin.Context) {
	pdfBytes, filename, err := fleet(c).Reports.FleetPDF(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
