package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"spendlog/internal/core"
	"spendlog/internal/export"
	applog "spendlog/internal/log"
)

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	s.serveExport(w, r, "transactions.csv", export.ContentTypeCSV, export.WriteCSV)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	s.serveExport(w, r, "transactions.xlsx", export.ContentTypeXLSX, export.WriteXLSX)
}

// serveExport renders into a buffer first so a failure can still become a 500.
func (s *Server) serveExport(w http.ResponseWriter, r *http.Request, filename, contentType string, write func(io.Writer, []core.Transaction) error) {
	list := s.svc.List(filterFromQuery(r))

	var buf bytes.Buffer
	if err := write(&buf, list); err != nil {
		applog.NewStructuredLogger(applog.FromContext(r.Context())).LogError(r.Context(),
			"Export failed", err, applog.ComponentExport, applog.OpExport, applog.NewFields().WithErrorType(applog.ErrorTypeInternal))
		writeServerError(w, r, "export failed")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
