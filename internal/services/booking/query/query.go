// Package query implements AIP-160 filter parsing, ordering, and pagination
// for session listings against the in-memory snapshot.
package query

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"

	apperrors "github.com/tableside/tableside/internal/platform/errors"
	"github.com/tableside/tableside/internal/services/booking/domain/session"
)

const (
	// DefaultLimit is the page size used when the caller does not set one.
	DefaultLimit = 20
	// MaxLimit caps the page size a caller may request.
	MaxLimit = 100
)

// Params describes a session listing request.
type Params struct {
	// Filter is an AIP-160 expression over the declared session fields.
	Filter string
	// OrderBy is a comma-separated list of sortable fields, each with an
	// optional "desc" suffix.
	OrderBy string
	// Page is 1-based; zero means the first page.
	Page int
	// Limit is the page size; zero means DefaultLimit.
	Limit int
}

// Result is one page of a session listing.
type Result struct {
	Sessions []session.Session
	Total    int
	Page     int
	Limit    int
	Pages    int
}

// SessionDeclarations returns the field declarations for session filtering.
func SessionDeclarations() (*filtering.Declarations, error) {
	return filtering.NewDeclarations(
		filtering.DeclareStandardFunctions(),
		filtering.DeclareIdent("cuisine", filtering.TypeString),
		filtering.DeclareIdent("status", filtering.TypeString),
		filtering.DeclareIdent("title", filtering.TypeString),
		filtering.DeclareIdent("host_id", filtering.TypeInt),
		filtering.DeclareIdent("price", filtering.TypeFloat),
		filtering.DeclareIdent("rating", filtering.TypeFloat),
	)
}

// predicate reports whether a session matches a compiled filter.
type predicate func(session.Session) bool

// List applies filter, order, and pagination to the snapshot and returns one
// page. The input slice is not modified.
func List(sessions []session.Session, params Params) (Result, error) {
	match, err := compileFilter(params.Filter)
	if err != nil {
		return Result{}, err
	}

	less, err := compileOrder(params.OrderBy)
	if err != nil {
		return Result{}, err
	}

	page, limit, err := normalizePage(params.Page, params.Limit)
	if err != nil {
		return Result{}, err
	}

	filtered := make([]session.Session, 0, len(sessions))
	for _, s := range sessions {
		if match == nil || match(s) {
			filtered = append(filtered, s)
		}
	}

	if less != nil {
		sort.SliceStable(filtered, func(i, j int) bool {
			return less(filtered[i], filtered[j])
		})
	}

	total := len(filtered)
	pages := 0
	if total > 0 {
		pages = int(math.Ceil(float64(total) / float64(limit)))
	}

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return Result{
		Sessions: filtered[start:end],
		Total:    total,
		Page:     page,
		Limit:    limit,
		Pages:    pages,
	}, nil
}

func normalizePage(page, limit int) (int, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 0 || limit > MaxLimit {
		return 0, 0, apperrors.WithMetadata(apperrors.CodeQueryInvalidLimit,
			fmt.Sprintf("limit must be between 1 and %d", MaxLimit),
			map[string]string{"Limit": fmt.Sprint(limit)})
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	return page, limit, nil
}

// compileFilter parses an AIP-160 filter expression into a predicate.
// Returns a nil predicate for an empty filter string.
func compileFilter(filterStr string) (predicate, error) {
	if strings.TrimSpace(filterStr) == "" {
		return nil, nil
	}

	decls, err := SessionDeclarations()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUnknown, "create filter declarations", err)
	}

	filter, err := filtering.ParseFilterString(filterStr, decls)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeQueryInvalidFilter, "parse filter", err)
	}

	return translateExpr(filter.CheckedExpr.GetExpr())
}

// translateExpr translates a CEL expression to a predicate.
func translateExpr(e *expr.Expr) (predicate, error) {
	if e == nil {
		return nil, invalidFilter("empty expression")
	}

	switch kind := e.ExprKind.(type) {
	case *expr.Expr_CallExpr:
		return translateCall(kind.CallExpr)
	default:
		return nil, invalidFilter(fmt.Sprintf("unsupported expression type: %T", kind))
	}
}

// translateCall translates a CEL function call to a predicate.
func translateCall(call *expr.Expr_Call) (predicate, error) {
	switch call.Function {
	case "_&&_", "AND":
		return translateLogical(call.Args, func(l, r predicate) predicate {
			return func(s session.Session) bool { return l(s) && r(s) }
		})
	case "_||_", "OR":
		return translateLogical(call.Args, func(l, r predicate) predicate {
			return func(s session.Session) bool { return l(s) || r(s) }
		})
	case "NOT", "!_":
		if len(call.Args) != 1 {
			return nil, invalidFilter("NOT requires 1 argument")
		}
		inner, err := translateExpr(call.Args[0])
		if err != nil {
			return nil, err
		}
		return func(s session.Session) bool { return !inner(s) }, nil
	case "_==_", "=":
		return translateComparison(call.Args, cmpEq)
	case "_!=_", "!=":
		return translateComparison(call.Args, cmpNe)
	case "_<_", "<":
		return translateComparison(call.Args, cmpLt)
	case "_<=_", "<=":
		return translateComparison(call.Args, cmpLe)
	case "_>_", ">":
		return translateComparison(call.Args, cmpGt)
	case "_>=_", ">=":
		return translateComparison(call.Args, cmpGe)
	case ":":
		return translateHas(call.Args)
	default:
		return nil, invalidFilter(fmt.Sprintf("unsupported function: %s", call.Function))
	}
}

func translateLogical(args []*expr.Expr, combine func(l, r predicate) predicate) (predicate, error) {
	if len(args) != 2 {
		return nil, invalidFilter("logical operator requires 2 arguments")
	}
	left, err := translateExpr(args[0])
	if err != nil {
		return nil, err
	}
	right, err := translateExpr(args[1])
	if err != nil {
		return nil, err
	}
	return combine(left, right), nil
}

type cmpOp int

const (
	cmpEq cmpOp = iota
	cmpNe
	cmpLt
	cmpLe
	cmpGt
	cmpGe
)

func translateComparison(args []*expr.Expr, op cmpOp) (predicate, error) {
	field, value, err := extractOperands(args)
	if err != nil {
		return nil, err
	}

	switch field {
	case "cuisine":
		return stringPredicate(field, value, op, func(s session.Session) string { return s.Cuisine })
	case "status":
		return stringPredicate(field, value, op, func(s session.Session) string { return string(s.Status) })
	case "title":
		return stringPredicate(field, value, op, func(s session.Session) string { return s.Title })
	case "host_id":
		id, ok := value.(int64)
		if !ok {
			return nil, invalidFilter("host_id requires an integer value")
		}
		return numberPredicate(float64(id), op, func(s session.Session) float64 { return float64(s.HostID) })
	case "price":
		num, err := floatValue(value)
		if err != nil {
			return nil, err
		}
		return numberPredicate(num, op, func(s session.Session) float64 { return s.Price })
	case "rating":
		num, err := floatValue(value)
		if err != nil {
			return nil, err
		}
		return numberPredicate(num, op, func(s session.Session) float64 { return s.Rating })
	default:
		return nil, invalidFilter(fmt.Sprintf("unknown field: %s", field))
	}
}

// translateHas handles the ":" operator as a case-insensitive substring match
// on string fields and a tag membership test on tags.
func translateHas(args []*expr.Expr) (predicate, error) {
	field, value, err := extractOperands(args)
	if err != nil {
		return nil, err
	}
	needle, ok := value.(string)
	if !ok {
		return nil, invalidFilter("the has operator requires a string value")
	}
	needle = strings.ToLower(needle)

	var get func(session.Session) string
	switch field {
	case "title":
		get = func(s session.Session) string { return s.Title }
	case "cuisine":
		get = func(s session.Session) string { return s.Cuisine }
	default:
		return nil, invalidFilter(fmt.Sprintf("the has operator is not supported for field: %s", field))
	}
	return func(s session.Session) bool {
		return strings.Contains(strings.ToLower(get(s)), needle)
	}, nil
}

func stringPredicate(field string, value any, op cmpOp, get func(session.Session) string) (predicate, error) {
	want, ok := value.(string)
	if !ok {
		return nil, invalidFilter(fmt.Sprintf("%s requires a string value", field))
	}
	switch op {
	case cmpEq:
		return func(s session.Session) bool { return get(s) == want }, nil
	case cmpNe:
		return func(s session.Session) bool { return get(s) != want }, nil
	default:
		return nil, invalidFilter(fmt.Sprintf("field %s only supports equality operators", field))
	}
}

func numberPredicate(want float64, op cmpOp, get func(session.Session) float64) (predicate, error) {
	switch op {
	case cmpEq:
		return func(s session.Session) bool { return get(s) == want }, nil
	case cmpNe:
		return func(s session.Session) bool { return get(s) != want }, nil
	case cmpLt:
		return func(s session.Session) bool { return get(s) < want }, nil
	case cmpLe:
		return func(s session.Session) bool { return get(s) <= want }, nil
	case cmpGt:
		return func(s session.Session) bool { return get(s) > want }, nil
	case cmpGe:
		return func(s session.Session) bool { return get(s) >= want }, nil
	default:
		return nil, invalidFilter("unsupported comparison")
	}
}

func extractOperands(args []*expr.Expr) (string, any, error) {
	if len(args) != 2 {
		return "", nil, invalidFilter("comparison requires 2 arguments")
	}
	field, err := extractFieldName(args[0])
	if err != nil {
		return "", nil, err
	}
	value, err := extractValue(args[1])
	if err != nil {
		return "", nil, err
	}
	return field, value, nil
}

func extractFieldName(e *expr.Expr) (string, error) {
	if e == nil {
		return "", invalidFilter("nil expression")
	}
	switch kind := e.ExprKind.(type) {
	case *expr.Expr_IdentExpr:
		return kind.IdentExpr.Name, nil
	default:
		return "", invalidFilter(fmt.Sprintf("expected identifier, got %T", kind))
	}
}

func extractValue(e *expr.Expr) (any, error) {
	if e == nil {
		return nil, invalidFilter("nil expression")
	}
	switch kind := e.ExprKind.(type) {
	case *expr.Expr_ConstExpr:
		return extractConstValue(kind.ConstExpr)
	default:
		return nil, invalidFilter(fmt.Sprintf("expected constant, got %T", kind))
	}
}

func extractConstValue(c *expr.Constant) (any, error) {
	if c == nil {
		return nil, invalidFilter("nil constant")
	}
	switch kind := c.ConstantKind.(type) {
	case *expr.Constant_StringValue:
		return kind.StringValue, nil
	case *expr.Constant_Int64Value:
		return kind.Int64Value, nil
	case *expr.Constant_Uint64Value:
		return int64(kind.Uint64Value), nil
	case *expr.Constant_DoubleValue:
		return kind.DoubleValue, nil
	case *expr.Constant_BoolValue:
		return kind.BoolValue, nil
	default:
		return nil, invalidFilter(fmt.Sprintf("unsupported constant type: %T", kind))
	}
}

func floatValue(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	default:
		return 0, invalidFilter("expected a numeric value")
	}
}

func invalidFilter(message string) *apperrors.Error {
	return apperrors.New(apperrors.CodeQueryInvalidFilter, message)
}
