// Package web provides the embedded web UI for browsing stylesheets.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lemonberrylabs/windstyle/pkg/parser"
	"github.com/lemonberrylabs/windstyle/pkg/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handler serves the web UI pages.
type Handler struct {
	store   *store.Store
	funcMap template.FuncMap
}

// pageData wraps all page-specific data with common fields.
type pageData struct {
	NavActive string
	Data      interface{}
}

// New creates a new web UI handler.
func New(s *store.Store) *Handler {
	return &Handler{
		store: s,
		funcMap: template.FuncMap{
			"shortName":  shortName,
			"timeAgo":    timeAgo,
			"formatTime": formatTime,
			"duration":   duration,
			"stateClass": stateClass,
			"stateIcon":  stateIcon,
			"truncate":   truncate,
			"countLines": countLines,
		},
	}
}

func (h *Handler) render(c *fiber.Ctx, page string, navActive string, data interface{}) error {
	// Each page is parsed with the layout alone so define blocks never clash.
	tmpl := template.Must(
		template.New("").Funcs(h.funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+page),
	)

	pd := pageData{
		NavActive: navActive,
		Data:      data,
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, page, pd); err != nil {
		return c.Status(500).SendString(fmt.Sprintf("template error: %v", err))
	}

	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.Send(buf.Bytes())
}

// Register adds web UI routes to the Fiber app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/ui", h.dashboard)
	app.Get("/ui/stylesheets/:id", h.stylesheetDetail)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/ui")
	})
}

// --- Page Data Types ---

type dashboardContent struct {
	Stylesheets  []*stylesheetView
	ValidCount   int
	InvalidCount int
}

type stylesheetView struct {
	*store.Stylesheet
	ID         string
	CheckCount int
}

type stylesheetDetailContent struct {
	Stylesheet *store.Stylesheet
	ID         string
	Snippet    string // caret rendering of the diagnostic, if any
	Checks     []*store.Check
}

type notFoundContent struct {
	Message string
}

// --- Page Handlers ---

func (h *Handler) dashboard(c *fiber.Ctx) error {
	sheets := h.store.ListStylesheets()
	sort.SliceStable(sheets, func(i, j int) bool {
		return sheets[i].UpdateTime.After(sheets[j].UpdateTime)
	})

	content := dashboardContent{}
	for _, sheet := range sheets {
		switch sheet.State {
		case store.StylesheetValid:
			content.ValidCount++
		case store.StylesheetInvalid:
			content.InvalidCount++
		}
		content.Stylesheets = append(content.Stylesheets, &stylesheetView{
			Stylesheet: sheet,
			ID:         shortName(sheet.Name),
			CheckCount: len(h.store.ListChecks(sheet.Name)),
		})
	}

	return h.render(c, "dashboard.html", "dashboard", content)
}

func (h *Handler) stylesheetDetail(c *fiber.Ctx) error {
	id := c.Params("id")
	sheet, err := h.store.GetStylesheet(store.StylesheetName(id))
	if err != nil {
		c.Status(404)
		return h.render(c, "not_found.html", "", notFoundContent{
			Message: fmt.Sprintf("Stylesheet '%s' not found", id),
		})
	}

	checks := h.store.ListChecks(sheet.Name)
	// newest first
	for i, j := 0, len(checks)-1; i < j; i, j = i+1, j-1 {
		checks[i], checks[j] = checks[j], checks[i]
	}

	var snippet string
	if sheet.Diagnostic != nil && sheet.Diagnostic.Line > 0 {
		snippet = parser.FormatError(diagnosticError(sheet.Diagnostic), id, sheet.SourceCode)
	}

	return h.render(c, "stylesheet.html", "stylesheets", stylesheetDetailContent{
		Stylesheet: sheet,
		ID:         id,
		Snippet:    snippet,
		Checks:     checks,
	})
}

// diagnosticError rebuilds a positioned parse error from a stored
// diagnostic so it can be rendered as a snippet.
func diagnosticError(d *store.Diagnostic) error {
	perr := &parser.Error{Message: d.Message}
	switch d.Kind {
	case parser.LexError.String():
		perr.Kind = parser.LexError
	case parser.StructuralError.String():
		perr.Kind = parser.StructuralError
	}
	perr.Pos.Line = d.Line
	perr.Pos.Column = d.Column
	return perr
}

// --- Template Helpers ---

func shortName(fullName string) string {
	parts := strings.Split(fullName, "/")
	if len(parts) > 0 {
		return parts[len(parts)-1]
	}
	return fullName
}

func timeAgo(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		m := int(d.Minutes())
		if m == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", m)
	case d < 24*time.Hour:
		h := int(d.Hours())
		if h == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", h)
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("2006-01-02 15:04:05")
}

func duration(start, end time.Time) string {
	d := end.Sub(start)
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// stateClass and stateIcon accept any state type so templates can pass
// StylesheetState and CheckState values directly.
func stateClass(state any) string {
	switch fmt.Sprint(state) {
	case string(store.StylesheetValid), string(store.CheckSucceeded):
		return "state-succeeded"
	case string(store.StylesheetInvalid), string(store.CheckFailed):
		return "state-failed"
	default:
		return ""
	}
}

func stateIcon(state any) template.HTML {
	switch fmt.Sprint(state) {
	case string(store.StylesheetValid), string(store.CheckSucceeded):
		return "&#10003;"
	case string(store.StylesheetInvalid), string(store.CheckFailed):
		return "&#10007;"
	default:
		return "&#8226;"
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}
