package integration

import (
	"net/http"
	"strings"
	"testing"
)

// TestAPIStylesheets_CreateAndGet verifies storing a stylesheet and reading
// it back.
func TestAPIStylesheets_CreateAndGet(t *testing.T) {
	id := uniqueID("create")
	source := `@var gap = 8px
.stack { gap: ${gap}; }`
	name := createStylesheet(t, id, source)

	code, sheet := request(t, http.MethodGet, apiURL(name), nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if sheet["sourceContents"] != source {
		t.Errorf("unexpected source %q", sheet["sourceContents"])
	}
	if sheet["state"] != "VALID" {
		t.Errorf("expected VALID, got %v", sheet["state"])
	}
}

// TestAPIStylesheets_Duplicate verifies that a taken ID is rejected.
func TestAPIStylesheets_Duplicate(t *testing.T) {
	id := uniqueID("dup")
	createStylesheet(t, id, "x = 1")

	code, result := request(t, http.MethodPost, apiURL("stylesheets")+"?stylesheetId="+id,
		map[string]string{"sourceContents": "x = 2"})
	if code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %v", code, result)
	}
}

// TestAPIStylesheets_RejectsInvalidSource verifies that sources that do not
// parse are reported with their position and never stored.
func TestAPIStylesheets_RejectsInvalidSource(t *testing.T) {
	id := uniqueID("invalid")
	code, result := request(t, http.MethodPost, apiURL("stylesheets")+"?stylesheetId="+id,
		map[string]string{"sourceContents": ".a {\n  color: red;\n"})
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	e := result["error"].(map[string]any)
	if e["kind"] != "SyntaxError" || !strings.Contains(e["message"].(string), "unterminated block") {
		t.Errorf("unexpected error %v", e)
	}

	code, _ = request(t, http.MethodGet, apiURL("stylesheets/"+id), nil)
	if code != http.StatusNotFound {
		t.Errorf("expected the stylesheet not to exist, got %d", code)
	}
}

// TestAPIStylesheets_UpdateAndAST verifies that a patch replaces the
// served tree.
func TestAPIStylesheets_UpdateAndAST(t *testing.T) {
	name := createStylesheet(t, uniqueID("update"), "x = 1")

	code, sheet := request(t, http.MethodPatch, apiURL(name),
		map[string]string{"sourceContents": ".a { color: red }\n.b { color: blue }"})
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", code, sheet)
	}

	code, result := request(t, http.MethodGet, apiURL(name+"/ast"), nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	b := topBlock(t, result)
	if len(b["statements"].([]any)) != 0 || len(b["styles"].([]any)) != 2 {
		t.Errorf("unexpected block after update %v", b)
	}
}

// TestAPIStylesheets_Checks verifies check runs against successive
// revisions.
func TestAPIStylesheets_Checks(t *testing.T) {
	name := createStylesheet(t, uniqueID("checks"), "@var a = 1\n@var b = 2")

	first := runCheck(t, name)
	if first["state"] != "SUCCEEDED" || first["statements"] != 2.0 {
		t.Errorf("unexpected first check %v", first)
	}

	request(t, http.MethodPatch, apiURL(name), map[string]string{"sourceContents": ".a { color: red }"})
	second := runCheck(t, name)
	if second["styles"] != 1.0 || second["stylesheetRevisionId"] == first["stylesheetRevisionId"] {
		t.Errorf("expected the check to follow the new revision, got %v", second)
	}

	code, list := request(t, http.MethodGet, apiURL(name+"/checks"), nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	checks := list["checks"].([]any)
	if len(checks) != 2 || checks[0].(map[string]any)["name"] != first["name"] {
		t.Errorf("expected both checks oldest first, got %v", checks)
	}
}

// TestAPIStylesheets_Delete verifies deletion.
func TestAPIStylesheets_Delete(t *testing.T) {
	name := createStylesheet(t, uniqueID("delete"), "x = 1")
	runCheck(t, name)

	code, _ := request(t, http.MethodDelete, apiURL(name), nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	code, _ = request(t, http.MethodGet, apiURL(name+"/checks"), nil)
	if code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", code)
	}
}

// TestAPIParse_Stateless verifies the parse and tokenize endpoints.
func TestAPIParse_Stateless(t *testing.T) {
	code, result := request(t, http.MethodPost, apiURL("parse"),
		map[string]string{"source": "@if a {} @elif b {} @elif c {} @else { x = 1 }"})
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", code, result)
	}
	stmt := topBlock(t, result)["statements"].([]any)[0].(map[string]any)
	if stmt["type"] != "If" || len(stmt["branches"].([]any)) != 3 || stmt["else"] == nil {
		t.Errorf("unexpected if node %v", stmt)
	}

	code, result = request(t, http.MethodPost, apiURL("tokenize"), map[string]string{"source": "12px"})
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	tokens := result["tokens"].([]any)
	if len(tokens) != 2 || tokens[0].(map[string]any)["kind"] != "PIXEL" {
		t.Errorf("expected a single PIXEL token before EOF, got %v", tokens)
	}
}
