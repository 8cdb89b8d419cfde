package httpapi

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/clock"
	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/types"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"civil": clock.FormatCivil,
}).ParseFS(templateFS, "templates/*.html"))

type dashboardRow struct {
	Name    string
	Known   bool
	UID     string
	Status  types.ResolvedStatus
	Granted bool
	Event   types.AttendanceEvent
}

type dashboardPage struct {
	Stats types.Stats
	Rows  []dashboardRow
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	views, err := s.events.RecentEvents(r.Context(), defaultEventLimit)
	if err != nil {
		s.dashboardError(w, err)
		return
	}
	stats, err := s.events.Stats(r.Context(), s.clock.Today())
	if err != nil {
		s.dashboardError(w, err)
		return
	}

	page := dashboardPage{Stats: stats, Rows: make([]dashboardRow, 0, len(views))}
	for _, v := range views {
		row := dashboardRow{
			Name:    v.DisplayName,
			Known:   v.DisplayName != "",
			UID:     v.Identifier,
			Status:  v.ResolvedStatus,
			Granted: v.ResolvedStatus == types.StatusPresent,
			Event:   v.AttendanceEvent,
		}
		if !row.Known {
			row.Name = "Unknown"
		}
		page.Rows = append(page.Rows, row)
	}

	s.render(w, http.StatusOK, "dashboard.html", page)
}

func (s *Server) dashboardError(w http.ResponseWriter, err error) {
	s.logger.Error("dashboard query failed", "err", err)
	s.render(w, http.StatusInternalServerError, "error.html", nil)
}

// render executes into a buffer first so a template error never produces a
// half-written page.
func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("template render failed", "template", name, "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
