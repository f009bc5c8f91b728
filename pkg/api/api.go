// Package api implements the REST API for parsing windstyle sources and
// managing stored stylesheets and their check runs.
package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lemonberrylabs/windstyle/pkg/ast"
	"github.com/lemonberrylabs/windstyle/pkg/lexer"
	"github.com/lemonberrylabs/windstyle/pkg/loader"
	"github.com/lemonberrylabs/windstyle/pkg/parser"
	"github.com/lemonberrylabs/windstyle/pkg/store"
	"github.com/lemonberrylabs/windstyle/pkg/token"
)

// Server is the windstyle API server.
type Server struct {
	app   *fiber.App
	store *store.Store
	limit int

	mu     sync.RWMutex
	parsed map[string]*ast.Program // keyed by stylesheet name, valid sheets only
}

// New creates a new API server. maxSourceSize bounds every source the
// server parses; zero or less uses parser.MaxSourceSize.
func New(s *store.Store, maxSourceSize int) *Server {
	if maxSourceSize <= 0 {
		maxSourceSize = parser.MaxSourceSize
	}
	srv := &Server{
		store:  s,
		limit:  maxSourceSize,
		parsed: make(map[string]*ast.Program),
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		BodyLimit:             maxSourceSize + 64*1024,
	})

	// Stateless endpoints
	app.Post("/v1/parse", srv.parse)
	app.Post("/v1/tokenize", srv.tokenize)

	// Stylesheets
	app.Post("/v1/stylesheets", srv.createStylesheet)
	app.Get("/v1/stylesheets", srv.listStylesheets)
	app.Get("/v1/stylesheets/:stylesheet", srv.getStylesheet)
	app.Patch("/v1/stylesheets/:stylesheet", srv.updateStylesheet)
	app.Delete("/v1/stylesheets/:stylesheet", srv.deleteStylesheet)
	app.Get("/v1/stylesheets/:stylesheet/ast", srv.getAST)

	// Checks
	app.Post("/v1/stylesheets/:stylesheet/checks", srv.createCheck)
	app.Get("/v1/stylesheets/:stylesheet/checks", srv.listChecks)
	app.Get("/v1/stylesheets/:stylesheet/checks/:check", srv.getCheck)

	srv.app = app
	return srv
}

// Listen starts the HTTP server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Serve runs the HTTP server on an existing listener.
func (s *Server) Serve(ln net.Listener) error {
	return s.app.Listener(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App returns the underlying Fiber app (useful for testing).
func (s *Server) App() *fiber.App {
	return s.app
}

// Program returns the cached tree of a valid stylesheet.
func (s *Server) Program(name string) (*ast.Program, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prog, ok := s.parsed[name]
	return prog, ok
}

func (s *Server) cache(name string, prog *ast.Program) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prog == nil {
		delete(s.parsed, name)
		return
	}
	s.parsed[name] = prog
}

// --- Stateless Handlers ---

type sourceRequest struct {
	Source string `json:"source"`
}

func (s *Server) parse(c *fiber.Ctx) error {
	var req sourceRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidArgument(c, fmt.Sprintf("invalid request body: %v", err))
	}

	prog, err := parser.ParseWithLimit(req.Source, s.limit)
	if err != nil {
		return parseFailure(c, err)
	}
	return c.JSON(fiber.Map{"program": ast.Dump(prog)})
}

func (s *Server) tokenize(c *fiber.Ctx) error {
	var req sourceRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidArgument(c, fmt.Sprintf("invalid request body: %v", err))
	}
	if len(req.Source) > s.limit {
		return parseFailure(c, fmt.Errorf("%w (%d bytes, limit %d)", parser.ErrSourceTooLarge, len(req.Source), s.limit))
	}

	tokens := lexer.New(req.Source).Tokenize()
	items := make([]fiber.Map, len(tokens))
	for i, tok := range tokens {
		items[i] = tokenToJSON(tok)
	}
	return c.JSON(fiber.Map{"tokens": items})
}

// --- Stylesheet Handlers ---

type stylesheetRequest struct {
	SourceContents string `json:"sourceContents"`
	Description    string `json:"description"`
}

var validStylesheetID = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

func (s *Server) createStylesheet(c *fiber.Ctx) error {
	id := c.Query("stylesheetId")
	if id == "" {
		return invalidArgument(c, "stylesheetId query parameter is required")
	}
	if !validStylesheetID.MatchString(id) || len(id) > 128 {
		return invalidArgument(c, fmt.Sprintf("invalid stylesheetId %q", id))
	}

	var req stylesheetRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidArgument(c, fmt.Sprintf("invalid request body: %v", err))
	}
	if req.SourceContents == "" {
		return invalidArgument(c, "sourceContents is required")
	}

	prog, err := parser.ParseWithLimit(req.SourceContents, s.limit)
	if err != nil {
		return parseFailure(c, err)
	}

	sheet, err := s.store.CreateStylesheet(id, req.SourceContents, req.Description, nil)
	if err != nil {
		return storeFailure(c, err)
	}
	s.cache(sheet.Name, prog)

	return c.JSON(stylesheetToJSON(sheet))
}

func (s *Server) getStylesheet(c *fiber.Ctx) error {
	sheet, err := s.store.GetStylesheet(buildStylesheetName(c))
	if err != nil {
		return storeFailure(c, err)
	}
	return c.JSON(stylesheetToJSON(sheet))
}

func (s *Server) listStylesheets(c *fiber.Ctx) error {
	sheets := s.store.ListStylesheets()

	items := make([]fiber.Map, len(sheets))
	for i, sheet := range sheets {
		items[i] = stylesheetToJSON(sheet)
	}
	return c.JSON(fiber.Map{"stylesheets": items})
}

func (s *Server) updateStylesheet(c *fiber.Ctx) error {
	name := buildStylesheetName(c)

	var req stylesheetRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidArgument(c, fmt.Sprintf("invalid request body: %v", err))
	}

	var prog *ast.Program
	if req.SourceContents != "" {
		var err error
		prog, err = parser.ParseWithLimit(req.SourceContents, s.limit)
		if err != nil {
			return parseFailure(c, err)
		}
	}

	sheet, err := s.store.UpdateStylesheet(name, req.SourceContents, req.Description, nil)
	if err != nil {
		return storeFailure(c, err)
	}
	if prog != nil {
		s.cache(name, prog)
	}

	return c.JSON(stylesheetToJSON(sheet))
}

func (s *Server) deleteStylesheet(c *fiber.Ctx) error {
	name := buildStylesheetName(c)
	if err := s.store.DeleteStylesheet(name); err != nil {
		return storeFailure(c, err)
	}
	s.cache(name, nil)
	return c.JSON(fiber.Map{})
}

func (s *Server) getAST(c *fiber.Ctx) error {
	name := buildStylesheetName(c)
	sheet, err := s.store.GetStylesheet(name)
	if err != nil {
		return storeFailure(c, err)
	}
	if sheet.State == store.StylesheetInvalid {
		return c.Status(400).JSON(fiber.Map{
			"error": diagnosticToJSON(400, "FAILED_PRECONDITION", sheet.Diagnostic),
		})
	}

	prog, ok := s.Program(name)
	if !ok {
		// Cache entries can be missing for sheets created directly in the store.
		prog, err = parser.ParseWithLimit(sheet.SourceCode, s.limit)
		if err != nil {
			return parseFailure(c, err)
		}
		s.cache(name, prog)
	}
	return c.JSON(fiber.Map{"program": ast.Dump(prog)})
}

// --- Check Handlers ---

func (s *Server) createCheck(c *fiber.Ctx) error {
	name := buildStylesheetName(c)
	sheet, err := s.store.GetStylesheet(name)
	if err != nil {
		return storeFailure(c, err)
	}

	start := time.Now()
	var result store.CheckResult
	prog, err := parser.ParseWithLimit(sheet.SourceCode, s.limit)
	if err != nil {
		result.Diagnostic = diagnostic(err)
	} else {
		result.Statements = len(prog.Block.Statements)
		result.Styles = len(prog.Block.Styles)
	}

	check, err := s.store.RecordCheck(name, start, result)
	if err != nil {
		return storeFailure(c, err)
	}
	return c.JSON(checkToJSON(check))
}

func (s *Server) listChecks(c *fiber.Ctx) error {
	name := buildStylesheetName(c)
	if _, err := s.store.GetStylesheet(name); err != nil {
		return storeFailure(c, err)
	}

	checks := s.store.ListChecks(name)
	items := make([]fiber.Map, len(checks))
	for i, check := range checks {
		items[i] = checkToJSON(check)
	}
	return c.JSON(fiber.Map{"checks": items})
}

func (s *Server) getCheck(c *fiber.Ctx) error {
	check, err := s.store.GetCheck(buildCheckName(c))
	if err != nil {
		return storeFailure(c, err)
	}
	return c.JSON(checkToJSON(check))
}

// --- Directory Loading ---

// LoadDir parses every source file under dir and stores it as a stylesheet
// named after the file. Files that fail to parse are stored as INVALID with
// their diagnostic; files that cannot be read or named are skipped with a
// warning.
func (s *Server) LoadDir(ctx context.Context, dir string, opts loader.Options) error {
	if opts.MaxSourceSize <= 0 {
		opts.MaxSourceSize = s.limit
	}
	results, err := loader.Dir(ctx, dir, opts)
	if err != nil {
		return fmt.Errorf("loading %s: %w", dir, err)
	}

	loaded := 0
	for _, r := range results {
		id := strings.ToLower(r.ID)
		if id != r.ID {
			log.Printf("Warning: lowercased stylesheet ID %q (from file %q)", id, r.Path)
		}
		if !validStylesheetID.MatchString(id) || len(id) > 128 {
			log.Printf("Warning: skipping file %q, invalid stylesheet ID %q", r.Path, id)
			continue
		}

		var perr *parser.Error
		if r.Err != nil && !errors.As(r.Err, &perr) {
			log.Printf("Warning: could not load %q: %v", r.Path, r.Err)
			continue
		}

		var diag *store.Diagnostic
		if r.Err != nil {
			diag = diagnostic(r.Err)
			log.Printf("Warning: %q does not parse: %v", r.Path, r.Err)
		}

		sheet, err := s.store.CreateStylesheet(id, r.Source, "", diag)
		if err != nil {
			log.Printf("Warning: could not store %q: %v", r.Path, err)
			continue
		}
		s.cache(sheet.Name, r.Program)
		loaded++
	}

	log.Printf("Loaded %d stylesheet(s) from %s", loaded, dir)
	return nil
}

// --- Helpers ---

func buildStylesheetName(c *fiber.Ctx) string {
	return store.StylesheetName(c.Params("stylesheet"))
}

func buildCheckName(c *fiber.Ctx) string {
	return fmt.Sprintf("%s/checks/%s", buildStylesheetName(c), c.Params("check"))
}

// diagnostic converts a parse failure into its stored form. Failures that
// did not come from the parser itself, such as an oversized source, carry
// no position.
func diagnostic(err error) *store.Diagnostic {
	var perr *parser.Error
	switch {
	case errors.As(err, &perr):
		return &store.Diagnostic{
			Kind:    perr.Kind.String(),
			Message: perr.Message,
			Line:    perr.Pos.Line,
			Column:  perr.Pos.Column,
		}
	case errors.Is(err, parser.ErrSourceTooLarge):
		return &store.Diagnostic{Kind: "SourceTooLarge", Message: err.Error()}
	default:
		return &store.Diagnostic{Kind: "Error", Message: err.Error()}
	}
}

func invalidArgument(c *fiber.Ctx, message string) error {
	return c.Status(400).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    400,
			"message": message,
			"status":  "INVALID_ARGUMENT",
		},
	})
}

func parseFailure(c *fiber.Ctx, err error) error {
	return c.Status(400).JSON(fiber.Map{
		"error": diagnosticToJSON(400, "INVALID_ARGUMENT", diagnostic(err)),
	})
}

func storeFailure(c *fiber.Ctx, err error) error {
	code, status := 500, "INTERNAL"
	switch {
	case errors.Is(err, store.ErrNotFound):
		code, status = 404, "NOT_FOUND"
	case errors.Is(err, store.ErrAlreadyExists):
		code, status = 409, "ALREADY_EXISTS"
	}
	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": err.Error(),
			"status":  status,
		},
	})
}

func diagnosticToJSON(code int, status string, d *store.Diagnostic) fiber.Map {
	m := fiber.Map{
		"code":    code,
		"message": d.Message,
		"status":  status,
		"kind":    d.Kind,
	}
	if d.Line > 0 {
		m["line"] = d.Line
		m["column"] = d.Column
	}
	return m
}

func tokenToJSON(tok token.Token) fiber.Map {
	m := fiber.Map{
		"kind":   tok.Kind.String(),
		"raw":    tok.Raw,
		"offset": tok.Pos.Offset,
		"line":   tok.Pos.Line,
		"column": tok.Pos.Column,
	}
	switch {
	case tok.Kind.IsNumeric():
		m["value"] = tok.Num
	case tok.Kind.IsTextual():
		m["text"] = tok.Text
	}
	return m
}

func stylesheetToJSON(sheet *store.Stylesheet) fiber.Map {
	result := fiber.Map{
		"name":           sheet.Name,
		"description":    sheet.Description,
		"state":          sheet.State,
		"revisionId":     sheet.RevisionID,
		"createTime":     sheet.CreateTime.Format(time.RFC3339),
		"updateTime":     sheet.UpdateTime.Format(time.RFC3339),
		"sourceContents": sheet.SourceCode,
	}
	if sheet.Diagnostic != nil {
		result["diagnostic"] = sheet.Diagnostic
	}
	return result
}

func checkToJSON(check *store.Check) fiber.Map {
	result := fiber.Map{
		"name":                 check.Name,
		"state":                check.State,
		"stylesheetRevisionId": check.StylesheetRevisionID,
		"startTime":            check.StartTime.Format(time.RFC3339),
		"endTime":              check.EndTime.Format(time.RFC3339),
		"statements":           check.Statements,
		"styles":               check.Styles,
	}
	if check.Diagnostic != nil {
		result["diagnostic"] = check.Diagnostic
	}
	return result
}
