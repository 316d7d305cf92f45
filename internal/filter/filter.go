// Package filter builds OData filter expressions for Table queries
// (spec.md §4.6): a recursive n-ary tree of field names, operators, and
// quoted constants, serialized by joining with single spaces and
// parenthesizing nested sequences.
package filter

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Expr is one element of a filter sequence: either a literal token (a field
// name, an operator keyword, or a pre-formatted constant) or a nested
// sequence that gets wrapped in parentheses when serialized.
type Expr interface {
	render() string
}

// token is a bare piece of filter text emitted verbatim.
type token string

func (t token) render() string { return string(t) }

// seq is a nested sequence; it renders itself wrapped in parentheses.
type seq []Expr

func (s seq) render() string { return "(" + Build(s...) + ")" }

// Field emits a bare property name.
func Field(name string) Expr { return token(name) }

// Op emits an OData operator keyword (eq, gt, ge, lt, le, ne, and, not, or).
func Op(name string) Expr { return token(name) }

// Seq groups a nested sequence, producing parenthesization when rendered
// inside a larger expression.
func Seq(parts ...Expr) Expr { return seq(parts) }

// Build joins parts with single spaces, the top-level entry point
// ("filter(expr)" in spec.md §4.6 terms). Nested Seq values parenthesize
// themselves; Build itself never adds an outer pair.
func Build(parts ...Expr) string {
	rendered := make([]string, len(parts))
	for i, p := range parts {
		rendered[i] = p.render()
	}
	return strings.Join(rendered, " ")
}

// String formats a string constant: single-quoted, with every embedded
// single quote doubled.
func String(s string) Expr {
	return token("'" + strings.ReplaceAll(s, "'", "''") + "'")
}

// Number formats a numeric constant in decimal form.
func Number(n float64) Expr {
	return token(strconv.FormatFloat(n, 'f', -1, 64))
}

// Bool formats a boolean constant; the zero value renders false.
func Bool(b bool) Expr {
	if b {
		return token("true")
	}
	return token("false")
}

// Date formats a datetime constant as datetime'<ISO-8601>'.
func Date(d time.Time) Expr {
	return token(fmt.Sprintf("datetime'%s'", d.UTC().Format(time.RFC3339Nano)))
}

// GUID formats a GUID constant as guid'<value>'.
func GUID(g string) Expr {
	return token(fmt.Sprintf("guid'%s'", g))
}
