package table

import (
	"time"

	"github.com/contoso-cloud/azstore/internal/filter"
)

// FilterExpr is an OData filter expression fragment for QueryEntities.
type FilterExpr = filter.Expr

// FilterField references an entity property by name.
func FilterField(name string) FilterExpr { return filter.Field(name) }

// FilterOp renders a raw operator or keyword token (eq, ne, and, or, not, ...).
func FilterOp(name string) FilterExpr { return filter.Op(name) }

// FilterSeq groups parts in parentheses, for building nested expressions.
func FilterSeq(parts ...FilterExpr) FilterExpr { return filter.Seq(parts...) }

// FilterBuild renders parts into a single $filter query value.
func FilterBuild(parts ...FilterExpr) string { return filter.Build(parts...) }

// FilterString renders s as a quoted, escaped OData string literal.
func FilterString(s string) FilterExpr { return filter.String(s) }

// FilterNumber renders n as an OData numeric literal.
func FilterNumber(n float64) FilterExpr { return filter.Number(n) }

// FilterBool renders b as the OData literal true/false.
func FilterBool(b bool) FilterExpr { return filter.Bool(b) }

// FilterDate renders d as an OData datetime literal.
func FilterDate(d time.Time) FilterExpr { return filter.Date(d) }

// FilterGUID renders g as an OData guid literal.
func FilterGUID(g string) FilterExpr { return filter.GUID(g) }
