// Package diag implements the diagnostics spec §4.7 describes: the
// first-class, never-halting output of type mismatches, schema violations,
// and unreachable-statement warnings. Internal invariant violations (spec
// §7's "bug" class) are NOT modeled here — those panic, by design, and
// never reach this package.
package diag

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// Kind enumerates the diagnostic kinds of §4.7.
type Kind int

const (
	TypeMismatch Kind = iota
	SchemaViolation
	UnreachableStatement
	InternalError
)

func (k Kind) String() string {
	switch k {
	case TypeMismatch:
		return "type_mismatch"
	case SchemaViolation:
		return "schema_violation"
	case UnreachableStatement:
		return "unreachable_statement"
	case InternalError:
		return "internal_error"
	default:
		return "?"
	}
}

// Severity enumerates Warning/Error.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Diagnostic is one reported issue (§4.7).
type Diagnostic struct {
	ID       uuid.UUID
	File     string
	Line     int
	Col      int
	EndLine  int
	EndCol   int
	Message  string
	Kind     Kind
	Severity Severity
}

// key identifies a diagnostic for dedup purposes: (file, line, col, kind).
// Two diagnostics with different messages but the same position/kind are
// still considered the same report (the first one recorded wins), mirroring
// funxy's own addError dedup discipline.
type key struct {
	File string
	Line int
	Col  int
	Kind Kind
}

// Bag collects diagnostics, deduplicating by position+kind.
type Bag struct {
	seen  map[key]bool
	items []Diagnostic
}

func NewBag() *Bag { return &Bag{seen: map[key]bool{}} }

func (b *Bag) Add(d Diagnostic) {
	k := key{File: d.File, Line: d.Line, Col: d.Col, Kind: d.Kind}
	if b.seen[k] {
		return
	}
	b.seen[k] = true
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	b.items = append(b.items, d)
}

// Sorted returns the diagnostics ordered by (file, line, col, message,
// kind), the ordering spec §8's "Diagnostic stability" property is tested
// against.
func (b *Bag) Sorted() []Diagnostic {
	out := append([]Diagnostic{}, b.items...)
	sort.Slice(out, func(i, j int) bool {
		a, c := out[i], out[j]
		if a.File != c.File {
			return a.File < c.File
		}
		if a.Line != c.Line {
			return a.Line < c.Line
		}
		if a.Col != c.Col {
			return a.Col < c.Col
		}
		if a.Message != c.Message {
			return a.Message < c.Message
		}
		return a.Kind < c.Kind
	})
	return out
}

// TypeMismatchf builds a TypeMismatch warning whose message is format
// applied to args via fmt.Sprintf.
func TypeMismatchf(file string, line, col int, format string, args ...interface{}) Diagnostic {
	return Diagnostic{File: file, Line: line, Col: col, Kind: TypeMismatch, Severity: Warning,
		Message: fmt.Sprintf(format, args...)}
}

// SchemaViolationErr builds a SchemaViolation error-severity diagnostic
// (§4.6's rule-kind conflicts are always errors).
func SchemaViolationErr(file string, line, col int, format string, args ...interface{}) Diagnostic {
	return Diagnostic{File: file, Line: line, Col: col, Kind: SchemaViolation, Severity: Error,
		Message: fmt.Sprintf(format, args...)}
}

// UnreachableWarn builds an UnreachableStatement warning.
func UnreachableWarn(file string, line, col int) Diagnostic {
	return Diagnostic{File: file, Line: line, Col: col, Kind: UnreachableStatement, Severity: Warning,
		Message: "statement is unreachable"}
}

// HumanCount formats n the way operator-facing diagnostics in the corpus
// humanize large numbers (e.g. "12,345").
func HumanCount(n int) string { return humanize.Comma(int64(n)) }
