// Package store provides in-memory storage for stylesheets and their check
// runs.
package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	// ErrNotFound is returned when a stylesheet or check does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when creating a stylesheet whose name is
	// taken.
	ErrAlreadyExists = errors.New("already exists")
)

// StylesheetState reports whether the current source of a stylesheet parses.
type StylesheetState string

const (
	StylesheetValid   StylesheetState = "VALID"
	StylesheetInvalid StylesheetState = "INVALID"
)

// CheckState represents the outcome of a check run.
type CheckState string

const (
	CheckSucceeded CheckState = "SUCCEEDED"
	CheckFailed    CheckState = "FAILED"
)

// Diagnostic describes a parse failure.
type Diagnostic struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

// Stylesheet represents a stored source unit.
type Stylesheet struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	State       StylesheetState `json:"state"`
	RevisionID  string          `json:"revisionId"`
	CreateTime  time.Time       `json:"createTime"`
	UpdateTime  time.Time       `json:"updateTime"`
	SourceCode  string          `json:"sourceContents"`
	Diagnostic  *Diagnostic     `json:"diagnostic,omitempty"`
}

// Check records one parse of a stylesheet revision.
type Check struct {
	Name                 string      `json:"name"`
	State                CheckState  `json:"state"`
	StylesheetRevisionID string      `json:"stylesheetRevisionId"`
	StartTime            time.Time   `json:"startTime"`
	EndTime              time.Time   `json:"endTime"`
	Statements           int         `json:"statements"`
	Styles               int         `json:"styles"`
	Diagnostic           *Diagnostic `json:"diagnostic,omitempty"`

	seq int64
}

// CheckResult is the outcome of parsing a stylesheet: the sizes of the
// top-level block, or the diagnostic when parsing failed.
type CheckResult struct {
	Statements int
	Styles     int
	Diagnostic *Diagnostic
}

// Store is a thread-safe in-memory storage for stylesheets and checks.
// Accessors return copies, so callers never share records with the store.
type Store struct {
	mu          sync.RWMutex
	stylesheets map[string]*Stylesheet
	checks      map[string]*Check

	// Counters for generating unique IDs
	checkCounter int64
	revCounter   int64
}

// New creates a new empty store.
func New() *Store {
	return &Store{
		stylesheets: make(map[string]*Stylesheet),
		checks:      make(map[string]*Check),
	}
}

// StylesheetName returns the resource name for a stylesheet ID.
func StylesheetName(id string) string {
	return "stylesheets/" + id
}

// CreateStylesheet stores a new stylesheet. A nil diag marks it valid.
func (s *Store) CreateStylesheet(id, sourceCode, description string, diag *Diagnostic) (*Stylesheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := StylesheetName(id)
	if _, exists := s.stylesheets[name]; exists {
		return nil, fmt.Errorf("stylesheet '%s' %w", name, ErrAlreadyExists)
	}

	s.revCounter++
	now := time.Now()
	sheet := &Stylesheet{
		Name:        name,
		Description: description,
		RevisionID:  fmt.Sprintf("%06d-000", s.revCounter),
		CreateTime:  now,
		UpdateTime:  now,
		SourceCode:  sourceCode,
	}
	setDiagnostic(sheet, diag)
	s.stylesheets[name] = sheet
	return sheet.clone(), nil
}

// GetStylesheet retrieves a stylesheet by its full name.
func (s *Store) GetStylesheet(name string) (*Stylesheet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sheet, ok := s.stylesheets[name]
	if !ok {
		return nil, fmt.Errorf("stylesheet '%s' %w", name, ErrNotFound)
	}
	return sheet.clone(), nil
}

// ListStylesheets returns all stylesheets ordered by name.
func (s *Store) ListStylesheets() []*Stylesheet {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Stylesheet, 0, len(s.stylesheets))
	for _, sheet := range s.stylesheets {
		result = append(result, sheet.clone())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// UpdateStylesheet replaces the source and diagnostic of a stylesheet and
// bumps its revision. An empty sourceCode keeps the current source; an
// empty description keeps the current description.
func (s *Store) UpdateStylesheet(name, sourceCode, description string, diag *Diagnostic) (*Stylesheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sheet, ok := s.stylesheets[name]
	if !ok {
		return nil, fmt.Errorf("stylesheet '%s' %w", name, ErrNotFound)
	}

	if sourceCode != "" {
		s.revCounter++
		sheet.SourceCode = sourceCode
		sheet.RevisionID = fmt.Sprintf("%06d-000", s.revCounter)
		setDiagnostic(sheet, diag)
	}
	if description != "" {
		sheet.Description = description
	}
	sheet.UpdateTime = time.Now()

	return sheet.clone(), nil
}

// DeleteStylesheet removes a stylesheet and its checks.
func (s *Store) DeleteStylesheet(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.stylesheets[name]; !ok {
		return fmt.Errorf("stylesheet '%s' %w", name, ErrNotFound)
	}
	delete(s.stylesheets, name)

	prefix := name + "/checks/"
	for checkName := range s.checks {
		if strings.HasPrefix(checkName, prefix) {
			delete(s.checks, checkName)
		}
	}
	return nil
}

// RecordCheck stores the result of parsing the current revision of a
// stylesheet. start is when the parse began.
func (s *Store) RecordCheck(stylesheetName string, start time.Time, result CheckResult) (*Check, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sheet, ok := s.stylesheets[stylesheetName]
	if !ok {
		return nil, fmt.Errorf("stylesheet '%s' %w", stylesheetName, ErrNotFound)
	}

	s.checkCounter++
	check := &Check{
		Name:                 fmt.Sprintf("%s/checks/check-%d", stylesheetName, s.checkCounter),
		State:                CheckSucceeded,
		StylesheetRevisionID: sheet.RevisionID,
		StartTime:            start,
		EndTime:              time.Now(),
		Statements:           result.Statements,
		Styles:               result.Styles,
		seq:                  s.checkCounter,
	}
	if result.Diagnostic != nil {
		check.State = CheckFailed
		d := *result.Diagnostic
		check.Diagnostic = &d
	}
	s.checks[check.Name] = check

	cp := *check
	return &cp, nil
}

// GetCheck retrieves a check by its full name.
func (s *Store) GetCheck(name string) (*Check, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	check, ok := s.checks[name]
	if !ok {
		return nil, fmt.Errorf("check '%s' %w", name, ErrNotFound)
	}
	cp := *check
	return &cp, nil
}

// ListChecks returns the checks of a stylesheet, oldest first.
func (s *Store) ListChecks(stylesheetName string) []*Check {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*Check
	prefix := stylesheetName + "/checks/"
	for name, check := range s.checks {
		if strings.HasPrefix(name, prefix) {
			cp := *check
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].seq < result[j].seq })
	return result
}

func setDiagnostic(sheet *Stylesheet, diag *Diagnostic) {
	if diag == nil {
		sheet.State = StylesheetValid
		sheet.Diagnostic = nil
		return
	}
	d := *diag
	sheet.State = StylesheetInvalid
	sheet.Diagnostic = &d
}

func (sheet *Stylesheet) clone() *Stylesheet {
	cp := *sheet
	if sheet.Diagnostic != nil {
		d := *sheet.Diagnostic
		cp.Diagnostic = &d
	}
	return &cp
}
