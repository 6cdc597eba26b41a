package ui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"genexplorer/app"
	"genexplorer/domain/core"
	"genexplorer/domain/table"
	apperrors "genexplorer/internal/errors"
	"genexplorer/internal/plot"
	"genexplorer/ui/middleware"

	"github.com/gin-gonic/gin"
)

// filterRequest is the body of POST /api/filter
type filterRequest struct {
	Genes     []string         `json:"genes"`
	Groups    []string         `json:"groups"`
	SizeRange *table.SizeRange `json:"size_range"`
}

// statusFor maps pipeline errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrNothingToExport):
		return http.StatusNoContent
	case errors.Is(err, core.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, core.ErrUnknownKind), errors.Is(err, core.ErrInvalidSizeRange):
		return http.StatusBadRequest
	case core.IsSchemaError(err):
		return http.StatusUnprocessableEntity
	case core.IsStorageError(err):
		return http.StatusInternalServerError
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	switch apperrors.GetCode(err) {
	case apperrors.CodeInvalidInput, apperrors.CodeValidationError:
		return http.StatusBadRequest
	case apperrors.CodeSchemaError:
		return http.StatusUnprocessableEntity
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusNoContent {
		c.Status(status)
		return
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("[%s] %v", c.FullPath(), err)
	} else {
		s.logger.Warn("[%s] %v", c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": apperrors.GetCode(err)})
}

func (s *Server) handleIndex(c *gin.Context) {
	s.renderTemplate(c, "index.html", gin.H{
		"Title":      "Gene & sgRNA explorer",
		"MuPrompt":   plot.PromptFor(table.KindMu),
		"PhiPrompt":  plot.PromptFor(table.KindPhi),
		"MuExport":   "selected_mu_data.csv",
		"PhiExport":  "selected_phi_data.csv",
		"SessionKey": middleware.SessionHeader,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleGenes(c *gin.Context) {
	selected := splitList(c.QueryArray("selected"))
	genes, err := s.explorer.ListGenes(c.Request.Context(), c.Query("search"), selected)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"genes": genes, "count": len(genes)})
}

func (s *Server) handleGroups(c *gin.Context) {
	groups, err := s.explorer.ListGroups(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

func (s *Server) handleSizes(c *gin.Context) {
	r, err := s.explorer.SizeRange(c.Request.Context())
	if errors.Is(err, core.ErrEmptyResult) {
		c.JSON(http.StatusOK, gin.H{"empty": true})
		return
	}
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"min": r.Min, "max": r.Max, "empty": false})
}

func (s *Server) handleFilter(c *gin.Context) {
	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid filter request: %v", err), "code": apperrors.CodeInvalidInput})
		return
	}

	sel := app.SelectionFromInput(req.Genes, req.Groups, req.SizeRange)
	res, err := s.explorer.ApplyFilter(c.Request.Context(), middleware.SessionID(c), sel)
	if err != nil {
		s.writeError(c, err)
		return
	}

	warnings := res.Warnings()
	if warnings == nil {
		warnings = []table.Warning{}
	}
	c.JSON(http.StatusOK, gin.H{
		"request_id": res.RequestID,
		"mu":         res.Mu,
		"phi":        res.Phi,
		"empty":      res.Mu.Empty() && res.Phi.Empty(),
		"warnings":   warnings,
	})
}

func (s *Server) plotSpec(c *gin.Context) (plot.Spec, bool) {
	spec, err := s.explorer.PlotEntity(middleware.SessionID(c), table.Kind(c.Param("kind")), c.Query("entity"))
	if err != nil {
		s.writeError(c, err)
		return plot.Spec{}, false
	}
	return spec, true
}

func (s *Server) handlePlot(c *gin.Context) {
	spec, ok := s.plotSpec(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, spec)
}

// handlePlotHTML renders the plot as an ECharts page, or as an image when
// format is png or svg
func (s *Server) handlePlotHTML(c *gin.Context) {
	spec, ok := s.plotSpec(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	contentType := "text/html; charset=utf-8"
	var err error
	switch format := strings.ToLower(c.DefaultQuery("format", "html")); format {
	case "html":
		err = plot.RenderHTML(spec, &buf)
	case "png":
		contentType = "image/png"
		err = plot.RenderImage(spec, &buf, format)
	case "svg":
		contentType = "image/svg+xml"
		err = plot.RenderImage(spec, &buf, format)
	default:
		s.writeError(c, apperrors.InvalidInput(fmt.Sprintf("unsupported plot format %q", format)))
		return
	}
	if err != nil {
		s.writeError(c, apperrors.Wrap(err, "failed to render plot"))
		return
	}
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (s *Server) handleExport(c *gin.Context) {
	file, err := s.explorer.ExportTable(middleware.SessionID(c), table.Kind(c.Param("kind")), c.DefaultQuery("format", app.FormatCSV))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Header("ETag", fmt.Sprintf("%q", file.ETag))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

func (s *Server) handleDiagnose(c *gin.Context) {
	d, err := s.explorer.DiagnoseGene(c.Request.Context(), c.Param("gene"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
