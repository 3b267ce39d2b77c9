package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/xiaofeng1coin/jizhangxt/internal/core"
)

// Uploaded documents are small; 4MB is already far beyond a personal
// ledger.
const maxImportSize = 4 << 20

// reportView backs the annual report page.
type reportView struct {
	Report core.Report
	Years  []string
}

func (s *Server) handleAnnualReport(w http.ResponseWriter, r *http.Request) {
	year := strings.TrimSpace(r.URL.Query().Get("year"))
	rep, years, err := s.ledger.Annual(r.Context(), year)
	if err != nil {
		slog.ErrorContext(r.Context(), "Annual report failed", "year", year, "error", err)
		http.Error(w, "failed to build report", http.StatusInternalServerError)
		return
	}

	s.render(w, r, "annual_report.html", reportView{Report: rep, Years: years})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	data, err := s.ledger.ExportCSV(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "CSV export failed", "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="records_`+core.Today()+`.csv"`)
	_, _ = w.Write(data)
}

func (s *Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	data, err := s.ledger.ExportJSON(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "JSON export failed", "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="ledger_`+core.Today()+`.json"`)
	_, _ = w.Write(data)
}

// handleImportJSON replaces the whole ledger with an uploaded document.
// The file must carry the records, categories and budgets sections or
// the import is rejected and the current ledger stays untouched.
func (s *Server) handleImportJSON(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		redirectWithError(w, r, "/settings", "上传文件无效")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		redirectWithError(w, r, "/settings", "请选择要导入的文件")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImportSize))
	if err != nil {
		redirectWithError(w, r, "/settings", "读取文件失败")
		return
	}

	if err := s.ledger.ImportDocument(r.Context(), data); err != nil {
		slog.WarnContext(r.Context(), "Import rejected", "error", err)
		redirectWithError(w, r, "/settings", "导入失败：文件内容不完整")
		return
	}

	http.Redirect(w, r, "/settings?ok="+url.QueryEscape("数据导入成功"), http.StatusSeeOther)
}
