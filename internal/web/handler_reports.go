package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/vbonduro/gardenbook/internal/domain"
	"github.com/vbonduro/gardenbook/internal/pocketbase"
	"github.com/vbonduro/gardenbook/internal/reports"
	"github.com/vbonduro/gardenbook/internal/service"
)

const (
	reportsPath     = "/reports"
	reportFormFiles = "partials/report_form.html"

	editReportHeading = "Edit Report"
	createLabel       = "Създай"
	saveLabel         = "Запази"

	requiredMessage   = "Заглавието и съдържанието са задължителни"
	saveFailedMessage = "Failed to save report"
	deleteFailedMsg   = "Failed to delete report"
)

func reportEditPath(id string) string   { return "/reports/edit/" + url.PathEscape(id) }
func reportDeletePath(id string) string { return "/reports/delete/" + url.PathEscape(id) }

func (s *Server) reportService(r *http.Request) *service.ReportService {
	client, tokens := s.session(r)
	return service.NewReportService(client, tokens, s.logger)
}

type reportRow struct {
	domain.Report
	EditURL string
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	list, err := s.reportService(r).List(r.Context())
	if err != nil {
		s.logger.Error("list reports failed", "error", err)
		http.Error(w, pocketbase.Message(err, "failed to list reports"), http.StatusBadGateway)
		return
	}

	rows := make([]reportRow, 0, len(list))
	for _, rep := range list {
		rows = append(rows, reportRow{Report: rep, EditURL: reportEditPath(rep.ID)})
	}
	if err := s.renderPage(w, http.StatusOK,
		map[string]any{"Reports": rows, "ActiveNav": "reports"},
		"base.html", "pages/reports.html",
	); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

// reportPage is the render model shared by the create and edit pages.
type reportPage struct {
	Form      reports.View
	Action    string
	DeleteURL string
}

// newReportForm builds a form bound to title and content. Handlers mark the
// loading flag while they talk to the backend.
func newReportForm(id string, title, content *reports.Field, loading *reports.Flag, svc *service.ReportService) *reports.Form {
	p := reports.Props{
		Title:       title,
		Content:     content,
		Loading:     loading,
		SubmitLabel: createLabel,
		ID:          id,
	}
	p.OnSubmit = func(ctx context.Context) error {
		loading.Set(true)
		defer loading.Set(false)
		_, err := svc.Create(ctx, title.Value(), content.Value())
		return err
	}
	if id != "" {
		p.Heading = editReportHeading
		p.SubmitLabel = saveLabel
		p.OnSubmit = func(ctx context.Context) error {
			loading.Set(true)
			defer loading.Set(false)
			_, err := svc.Update(ctx, id, title.Value(), content.Value())
			return err
		}
		p.OnDelete = func(ctx context.Context) error {
			loading.Set(true)
			defer loading.Set(false)
			return svc.Delete(ctx, id)
		}
	}
	return reports.NewForm(p)
}

func (s *Server) handleReportForm(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	svc := s.reportService(r)
	title, content := reports.NewField(""), reports.NewField("")

	if id != "" {
		rep, err := svc.Get(r.Context(), id)
		if errors.Is(err, pocketbase.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			s.logger.Error("get report failed", "report_id", id, "error", err)
			http.Error(w, "failed to get report", http.StatusBadGateway)
			return
		}
		title.Set(rep.Title)
		content.Set(rep.Content)
	}

	form := newReportForm(id, title, content, &reports.Flag{}, svc)
	s.renderReportPage(w, r, http.StatusOK, id, form.View())
}

// bindReportForm copies the posted values into the form through its inputs.
func bindReportForm(r *http.Request, form *reports.Form) error {
	for _, name := range []string{reports.FieldTitle, reports.FieldContent} {
		if err := form.Input(name, r.PostFormValue(name)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) handleSaveReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	form := newReportForm(id, reports.NewField(""), reports.NewField(""), &reports.Flag{}, s.reportService(r))
	if err := bindReportForm(r, form); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	err := form.Submit(r.Context())
	if err == nil {
		redirect(w, r, reportsPath)
		return
	}

	view := form.View()
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, reports.ErrRequired):
		view.Error = requiredMessage
	case errors.Is(err, pocketbase.ErrNotFound):
		http.NotFound(w, r)
		return
	default:
		s.logger.Error("save report failed", "report_id", id, "error", err)
		view.Error = pocketbase.Message(err, saveFailedMessage)
		status = http.StatusBadGateway
	}
	s.renderReportPage(w, r, status, id, view)
}

// handleDeleteReport deletes without asking first; the report form has no
// confirmation step.
func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	form := newReportForm(id, reports.NewField(""), reports.NewField(""), &reports.Flag{}, s.reportService(r))
	if err := bindReportForm(r, form); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	err := form.Delete(r.Context())
	if err == nil {
		redirect(w, r, reportsPath)
		return
	}
	if errors.Is(err, pocketbase.ErrNotFound) {
		http.NotFound(w, r)
		return
	}

	s.logger.Error("delete report failed", "report_id", id, "error", err)
	view := form.View()
	view.Error = pocketbase.Message(err, deleteFailedMsg)
	s.renderReportPage(w, r, http.StatusBadGateway, id, view)
}

// handleReportInput echoes one edited field back as a live preview. The
// request carries the field name in "field" and both current values.
func (s *Server) handleReportInput(w http.ResponseWriter, r *http.Request) {
	title := reports.NewField(r.PostFormValue(reports.FieldTitle))
	content := reports.NewField(r.PostFormValue(reports.FieldContent))
	form := reports.NewForm(reports.Props{Title: title, Content: content})

	name := r.PostFormValue("field")
	if err := form.Input(name, r.PostFormValue(name)); err != nil {
		http.Error(w, "unknown field", http.StatusBadRequest)
		return
	}

	if err := s.renderPartial(w, http.StatusOK, "report_preview", form.View(), "partials/report_preview.html"); err != nil {
		s.logger.Error("render partial failed", "error", err)
	}
}

func (s *Server) renderReportPage(w http.ResponseWriter, r *http.Request, status int, id string, view reports.View) {
	page := reportPage{Form: view, Action: "/reports/create"}
	if id != "" {
		page.Action = reportEditPath(id)
		page.DeleteURL = reportDeletePath(id)
	}

	if isHTMX(r) {
		if err := s.renderPartial(w, status, "report_form", page, reportFormFiles, "partials/report_preview.html"); err != nil {
			s.logger.Error("render partial failed", "error", err)
		}
		return
	}
	if err := s.renderPage(w, status,
		map[string]any{"Page": page, "ActiveNav": "reports"},
		"base.html", "pages/report_edit.html", reportFormFiles, "partials/report_preview.html",
	); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}
