package token

// keywords maps bare spellings to at-keyword kinds. It is never written
// after package initialization; use LookupKeyword.
var keywords = map[string]Kind{
	"apply":   APPLY,
	"mixin":   MIXIN,
	"include": INCLUDE,
	"func":    FUNC,
	"return":  RETURN,
	"var":     VAR,
	"load":    LOAD,
	"import":  IMPORT,
	"export":  EXPORT,
	"if":      IF,
	"else":    ELSE,
	"elif":    ELIF,
	"while":   WHILE,
	"for":     FOR,
	"js":      JS,
	"log":     LOG,
	"warn":    WARN,
	"error":   ERROR,
	"assert":  ASSERT,
}

// words maps word operators and constants to their kinds.
var words = map[string]Kind{
	"and":   AND,
	"or":    OR,
	"not":   NOT,
	"in":    IN,
	"from":  FROM,
	"as":    AS,
	"None":  NONE,
	"True":  TRUE,
	"False": FALSE,
}

// LookupKeyword returns the at-keyword kind for a bare spelling such as "if".
func LookupKeyword(name string) (Kind, bool) {
	k, ok := keywords[name]
	return k, ok
}

// LookupWord returns the kind of a word operator or constant such as "and"
// or "None".
func LookupWord(name string) (Kind, bool) {
	k, ok := words[name]
	return k, ok
}
