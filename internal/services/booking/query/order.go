package query

import (
	"fmt"
	"strings"

	apperrors "github.com/tableside/tableside/internal/platform/errors"
	"github.com/tableside/tableside/internal/services/booking/domain/session"
)

// sortKeys maps order_by field names to comparable sort keys. Timestamps sort
// by their unix nanosecond value.
var sortKeys = map[string]func(session.Session) float64{
	"rating":     func(s session.Session) float64 { return s.Rating },
	"price":      func(s session.Session) float64 { return s.Price },
	"views":      func(s session.Session) float64 { return float64(s.Views) },
	"start_time": func(s session.Session) float64 { return float64(s.StartTime.UnixNano()) },
	"created_at": func(s session.Session) float64 { return float64(s.CreatedAt.UnixNano()) },
}

type orderTerm struct {
	key  func(session.Session) float64
	desc bool
}

// compileOrder parses an order_by clause like "rating desc, price" into a
// less function. Returns nil for an empty clause.
func compileOrder(orderBy string) (func(a, b session.Session) bool, error) {
	orderBy = strings.TrimSpace(orderBy)
	if orderBy == "" {
		return nil, nil
	}

	var terms []orderTerm
	for _, raw := range strings.Split(orderBy, ",") {
		parts := strings.Fields(raw)
		if len(parts) == 0 || len(parts) > 2 {
			return nil, invalidOrder(fmt.Sprintf("malformed order_by term: %q", strings.TrimSpace(raw)))
		}

		key, ok := sortKeys[parts[0]]
		if !ok {
			return nil, invalidOrder(fmt.Sprintf("unknown order_by field: %s", parts[0]))
		}

		term := orderTerm{key: key}
		if len(parts) == 2 {
			switch strings.ToLower(parts[1]) {
			case "desc":
				term.desc = true
			case "asc":
			default:
				return nil, invalidOrder(fmt.Sprintf("unknown sort direction: %s", parts[1]))
			}
		}
		terms = append(terms, term)
	}

	return func(a, b session.Session) bool {
		for _, term := range terms {
			av, bv := term.key(a), term.key(b)
			if av == bv {
				continue
			}
			if term.desc {
				return av > bv
			}
			return av < bv
		}
		return false
	}, nil
}

func invalidOrder(message string) *apperrors.Error {
	return apperrors.New(apperrors.CodeQueryInvalidOrder, message)
}
