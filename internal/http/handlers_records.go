package http

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/xiaofeng1coin/jizhangxt/internal/core"
	"github.com/xiaofeng1coin/jizhangxt/internal/services"
)

// indexView is the data behind the main page template.
type indexView struct {
	Dashboard    services.Dashboard
	FlashError   string
	FlashSuccess string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	d, err := s.ledger.LoadDashboard(r.Context(), date)
	if err != nil {
		slog.ErrorContext(r.Context(), "Dashboard load failed", "error", err)
		http.Error(w, "failed to load ledger", http.StatusInternalServerError)
		return
	}

	s.render(w, r, "index.html", indexView{
		Dashboard:    d,
		FlashError:   r.URL.Query().Get("error"),
		FlashSuccess: r.URL.Query().Get("ok"),
	})
}

// recordsView backs the full history page: day groups newest first.
type recordsView struct {
	Days []dayGroup
}

type dayGroup struct {
	Date    string
	Records []core.MergedRecord
	Totals  core.Totals
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ledger.Snapshot(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Snapshot load failed", "error", err)
		http.Error(w, "failed to load ledger", http.StatusInternalServerError)
		return
	}

	selected := strings.TrimSpace(r.URL.Query().Get("selected_date"))

	var view recordsView
	seen := make(map[string]bool)
	for _, rec := range snap.Records {
		if seen[rec.Date] || (selected != "" && rec.Date != selected) {
			continue
		}
		seen[rec.Date] = true
		view.Days = append(view.Days, dayGroup{
			Date:    rec.Date,
			Records: core.MergeForDay(snap.Records, rec.Date),
			Totals:  core.Aggregate(snap.Records, core.Day(rec.Date)),
		})
	}
	sortDayGroups(view.Days)

	s.render(w, r, "records.html", view)
}

func (s *Server) handleAddRecord(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "/", "表单格式无效")
		return
	}

	rec, err := parseRecordForm(r)
	if err != nil {
		redirectWithError(w, r, "/", "金额无效")
		return
	}

	added, err := s.ledger.AddRecord(r.Context(), rec)
	if err != nil {
		slog.WarnContext(r.Context(), "Add record rejected", "error", err)
		redirectWithError(w, r, "/", userMessage(err))
		return
	}

	target := "/?ok=" + url.QueryEscape("记账成功")
	if added.Date != core.Today() {
		target = "/?date=" + url.QueryEscape(added.Date) + "&ok=" + url.QueryEscape("记账成功")
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// editView backs the edit form: the merged group the record anchors.
type editView struct {
	Record     core.MergedRecord
	Categories core.CategorySet
	FlashError string
}

func (s *Server) handleEditRecordForm(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	snap, err := s.ledger.Snapshot(r.Context())
	if err != nil {
		http.Error(w, "failed to load ledger", http.StatusInternalServerError)
		return
	}
	rec, ok := snap.FindRecord(id)
	if !ok {
		redirectWithError(w, r, "/records", "记录不存在")
		return
	}

	// Show the merged group, not the single raw record: saving rewrites
	// the whole day-level line.
	var merged core.MergedRecord
	for _, m := range core.MergeForDay(snap.Records, rec.Date) {
		if m.Type == rec.Type && m.Category == rec.Category {
			merged = m
			merged.ID = id
			break
		}
	}

	s.render(w, r, "edit_record.html", editView{
		Record:     merged,
		Categories: snap.Categories,
		FlashError: r.URL.Query().Get("error"),
	})
}

func (s *Server) handleEditRecord(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "/edit_record/"+url.PathEscape(id), "表单格式无效")
		return
	}

	rec, err := parseRecordForm(r)
	if err != nil {
		redirectWithError(w, r, "/edit_record/"+url.PathEscape(id), "金额无效")
		return
	}

	err = s.ledger.EditRecord(r.Context(), id, core.RecordChanges{
		Type:        rec.Type,
		Category:    rec.Category,
		Amount:      rec.Amount,
		Description: rec.Description,
		Date:        rec.Date,
	})
	if err != nil {
		if errors.Is(err, core.ErrRecordNotFound) {
			redirectWithError(w, r, "/records", "记录不存在")
			return
		}
		redirectWithError(w, r, "/edit_record/"+url.PathEscape(id), userMessage(err))
		return
	}

	http.Redirect(w, r, "/records", http.StatusSeeOther)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.ledger.DeleteRecord(r.Context(), id); err != nil {
		if errors.Is(err, core.ErrRecordNotFound) {
			redirectWithError(w, r, "/records", "记录不存在")
			return
		}
		slog.ErrorContext(r.Context(), "Delete record failed", "record_id", id, "error", err)
		http.Error(w, "failed to delete record", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/records", http.StatusSeeOther)
}

// sortDayGroups orders day groups newest first.
func sortDayGroups(days []dayGroup) {
	sort.SliceStable(days, func(i, j int) bool {
		return days[i].Date > days[j].Date
	})
}

func redirectWithError(w http.ResponseWriter, r *http.Request, path, msg string) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	http.Redirect(w, r, path+sep+"error="+url.QueryEscape(msg), http.StatusSeeOther)
}

// userMessage maps engine errors to localized form feedback.
func userMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		return "金额无效"
	case errors.Is(err, core.ErrInvalidType):
		return "类型无效"
	case errors.Is(err, core.ErrEmptyCategory):
		return "请选择类别"
	case errors.Is(err, core.ErrRecordNotFound):
		return "记录不存在"
	default:
		return "操作失败：" + err.Error()
	}
}
