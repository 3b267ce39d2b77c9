package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/xiaofeng1coin/jizhangxt/internal/core"
)

// settingsView backs the settings page: category lists, budgets and the
// add-form defaults.
type settingsView struct {
	Categories   core.CategorySet
	Budgets      core.BudgetMap
	KeepLastDate bool
	FlashError   string
	FlashSuccess string
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ledger.Snapshot(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Snapshot load failed", "error", err)
		http.Error(w, "failed to load ledger", http.StatusInternalServerError)
		return
	}

	s.render(w, r, "settings.html", settingsView{
		Categories:   snap.Categories,
		Budgets:      snap.Budgets,
		KeepLastDate: snap.Settings.KeepLastDate,
		FlashError:   r.URL.Query().Get("error"),
		FlashSuccess: r.URL.Query().Get("ok"),
	})
}

// handleSetBudgets replaces the budget map from the submitted form. Each
// budget field is named budget_<category>; blank and invalid values drop
// the category's budget.
func (s *Server) handleSetBudgets(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "/settings", "表单格式无效")
		return
	}

	budgets := make(core.BudgetMap)
	for field, values := range r.Form {
		name, ok := strings.CutPrefix(field, "budget_")
		if !ok || len(values) == 0 {
			continue
		}
		raw := strings.TrimSpace(values[0])
		if raw == "" {
			continue
		}
		amount, err := core.ParseAmount(raw)
		if err != nil {
			continue
		}
		budgets[name] = amount
	}

	if err := s.ledger.SetBudgets(r.Context(), budgets); err != nil {
		slog.ErrorContext(r.Context(), "Set budgets failed", "error", err)
		redirectWithError(w, r, "/settings", "保存预算失败")
		return
	}
	http.Redirect(w, r, "/settings?ok="+url.QueryEscape("预算已保存"), http.StatusSeeOther)
}

func (s *Server) handleKeepLastDate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "/settings", "表单格式无效")
		return
	}
	keep := r.Form.Get("keep_last_date") == "on" || r.Form.Get("keep_last_date") == "true"

	if err := s.ledger.SetKeepLastDate(r.Context(), keep); err != nil {
		slog.ErrorContext(r.Context(), "Set keep_last_date failed", "error", err)
		redirectWithError(w, r, "/settings", "保存设置失败")
		return
	}
	http.Redirect(w, r, "/settings?ok="+url.QueryEscape("设置已保存"), http.StatusSeeOther)
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "/settings", "表单格式无效")
		return
	}
	t := core.RecordType(strings.TrimSpace(r.Form.Get("type")))
	name := sanitizeInput(r.Form.Get("name"))

	if err := s.ledger.AddCategory(r.Context(), t, name); err != nil {
		slog.WarnContext(r.Context(), "Add category rejected", "category", name, "error", err)
		redirectWithError(w, r, "/settings", "添加类别失败："+err.Error())
		return
	}
	http.Redirect(w, r, "/settings?ok="+url.QueryEscape("类别已添加"), http.StatusSeeOther)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "/settings", "表单格式无效")
		return
	}
	t := core.RecordType(strings.TrimSpace(r.Form.Get("type")))
	name := strings.TrimSpace(r.Form.Get("name"))

	if err := s.ledger.DeleteCategory(r.Context(), t, name); err != nil {
		slog.WarnContext(r.Context(), "Delete category rejected", "category", name, "error", err)
		redirectWithError(w, r, "/settings", "删除类别失败")
		return
	}
	http.Redirect(w, r, "/settings?ok="+url.QueryEscape("类别已删除"), http.StatusSeeOther)
}
