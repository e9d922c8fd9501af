// Package placeholder finds {{ ... }} tokens in template text and reports the
// configuration keys they reference. The template engines substitute values;
// this package exists so a render pass can tell which keys are missing before
// an engine silently renders them empty.
//
// Missing also reads the expressions of if, elif, for, set and with tags, so a
// key used only as a condition or loop source is reported too. Raw, verbatim
// and comment blocks are never evaluated by the engine, so they are not
// scanned.
package placeholder

import (
	"regexp"
	"strings"
)

const (
	openVar      = "{{"
	closeVar     = "}}"
	openComment  = "{#"
	closeComment = "#}"
)

var (
	rootPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*`)
	tagPattern  = regexp.MustCompile(`(?s)\{%-?\s*(if|elif|for|set|with)\s(.*?)-?%\}`)
	forClause   = regexp.MustCompile(`(?s)^\s*(.*?)\s+in\s+(.*)$`)

	// Blocks the engine never evaluates: raw text, comment tags and {# #}.
	literalBlocks = []*regexp.Regexp{
		regexp.MustCompile(`(?s)\{%-?\s*raw\s*-?%\}.*?\{%-?\s*endraw\s*-?%\}`),
		regexp.MustCompile(`(?s)\{% verbatim %\}.*?\{% endverbatim %\}`),
		regexp.MustCompile(`(?s)\{%-?\s*comment\s*-?%\}.*?\{%-?\s*endcomment\s*-?%\}`),
		regexp.MustCompile(`(?s)\{#.*?#\}`),
	}
)

var literals = map[string]struct{}{
	"true": {}, "false": {}, "True": {}, "False": {},
	"nil": {}, "None": {}, "forloop": {},
}

// operators that read like identifiers inside tag expressions.
var keywords = map[string]struct{}{
	"and": {}, "or": {}, "not": {}, "in": {}, "is": {}, "as": {},
	"reversed": {}, "sorted": {},
}

// Reference is a single {{ ... }} token.
type Reference struct {
	// Expr is the trimmed expression between the delimiters.
	Expr string
	// Root is the leading identifier chain of Expr (e.g. "ns.key" for
	// "ns.key|upper"). Empty for literal expressions.
	Root string
	// Start and End are the byte offsets of the whole token in the text.
	Start int
	End   int
}

// Simple reports whether the token is a bare identifier chain with no
// filters, calls, or operators.
func (r Reference) Simple() bool {
	return r.Root != "" && r.Root == r.Expr
}

// Key resolves the configuration key the reference points at, stripping an
// optional namespace prefix. ok is false for literals.
func (r Reference) Key(namespace string) (string, bool) {
	if r.Root == "" {
		return "", false
	}
	parts := strings.Split(r.Root, ".")
	if namespace != "" && parts[0] == namespace {
		if len(parts) < 2 {
			return "", false
		}
		return parts[1], true
	}
	return parts[0], true
}

// Scan returns every {{ ... }} token in text in order of appearance. Tokens
// inside {# ... #} comments are ignored. An unterminated token ends the scan.
func Scan(text string) []Reference {
	var refs []Reference
	pos := 0
	for pos < len(text) {
		next := strings.Index(text[pos:], "{")
		if next < 0 {
			break
		}
		start := pos + next
		rest := text[start:]

		switch {
		case strings.HasPrefix(rest, openComment):
			end := strings.Index(rest[len(openComment):], closeComment)
			if end < 0 {
				return refs
			}
			pos = start + len(openComment) + end + len(closeComment)
		case strings.HasPrefix(rest, openVar):
			end := strings.Index(rest[len(openVar):], closeVar)
			if end < 0 {
				return refs
			}
			inner := rest[len(openVar) : len(openVar)+end]
			tokenEnd := start + len(openVar) + end + len(closeVar)
			refs = append(refs, newReference(inner, start, tokenEnd))
			pos = tokenEnd
		default:
			pos = start + 1
		}
	}
	return refs
}

// Missing returns the keys referenced by text that has does not report, in
// first-seen order without duplicates. Names bound locally by for/set/with
// tags are not treated as configuration keys.
func Missing(text, namespace string, has func(string) bool) []string {
	text = stripLiteralBlocks(text)
	tags, locals := tagReferences(text)
	seen := make(map[string]struct{})
	var missing []string

	for _, ref := range append(Scan(text), tags...) {
		key, ok := ref.Key(namespace)
		if !ok {
			continue
		}
		if _, isLocal := locals[key]; isLocal {
			continue
		}
		if _, isLiteral := literals[key]; isLiteral {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if !has(key) {
			missing = append(missing, key)
		}
	}
	return missing
}

// Contains reports whether text holds at least one token.
func Contains(text string) bool {
	return len(Scan(text)) > 0
}

func newReference(inner string, start, end int) Reference {
	expr := strings.TrimSpace(inner)
	expr = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(expr, "-"), "-"))
	return Reference{
		Expr:  expr,
		Root:  rootPattern.FindString(expr),
		Start: start,
		End:   end,
	}
}

// tagReferences reads the expressions of if/elif/for/set/with tags. It returns
// the identifier chains those expressions read and the names they bind.
func tagReferences(text string) ([]Reference, map[string]struct{}) {
	var refs []Reference
	locals := make(map[string]struct{})

	for _, loc := range tagPattern.FindAllStringSubmatchIndex(text, -1) {
		keyword := text[loc[2]:loc[3]]
		body := text[loc[4]:loc[5]]

		if keyword == "for" {
			clause := forClause.FindStringSubmatch(body)
			if clause == nil {
				continue
			}
			for _, name := range strings.Split(clause[1], ",") {
				if name = strings.TrimSpace(name); name != "" {
					locals[name] = struct{}{}
				}
			}
			body = clause[2]
		}

		reads, binds := identifiers(body)
		for _, name := range binds {
			locals[name] = struct{}{}
		}
		for _, chain := range reads {
			refs = append(refs, Reference{Expr: chain, Root: chain, Start: loc[0], End: loc[1]})
		}
	}
	return refs, locals
}

// identifiers splits a tag expression into the identifier chains it reads and
// the names it assigns (x in "x = y", or a in "y as a"). String literals,
// numbers, filter names and operators are skipped.
func identifiers(expr string) (reads, binds []string) {
	prev := ""
	for i := 0; i < len(expr); {
		c := expr[i]
		switch {
		case c == '"' || c == '\'':
			i = skipString(expr, i)
			prev = ""
		case isDigit(c):
			for i < len(expr) && (isIdent(expr[i]) || expr[i] == '.') {
				i++
			}
			prev = ""
		case isIdentStart(c):
			chain := rootPattern.FindString(expr[i:])
			i += len(chain)
			next := strings.TrimLeft(expr[i:], " \t\r\n")
			afterPipe := strings.HasSuffix(strings.TrimRight(expr[:i-len(chain)], " \t\r\n"), "|")

			switch {
			case afterPipe:
			case prev == "as":
				binds = append(binds, chain)
			case strings.HasPrefix(next, "=") && !strings.HasPrefix(next, "=="):
				binds = append(binds, chain)
			default:
				if _, kw := keywords[chain]; !kw {
					reads = append(reads, chain)
				}
			}
			prev = chain
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++
		default:
			i++
			prev = ""
		}
	}
	return reads, binds
}

func skipString(expr string, i int) int {
	quote := expr[i]
	for i++; i < len(expr); i++ {
		switch expr[i] {
		case '\\':
			i++
		case quote:
			return i + 1
		}
	}
	return len(expr)
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdent(c byte) bool { return isIdentStart(c) || isDigit(c) }

func stripLiteralBlocks(text string) string {
	if !strings.Contains(text, "{%") && !strings.Contains(text, "{#") {
		return text
	}
	for _, block := range literalBlocks {
		text = block.ReplaceAllString(text, "")
	}
	return text
}
