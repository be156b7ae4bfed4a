// Package policy is the single authorization gate for booking operations.
//
// The service consults Allowed before attempting any mutation so the role
// and ownership rules live in one auditable place instead of being scattered
// across handlers.
package policy

import (
	"fmt"
	"strconv"

	apperrors "github.com/tableside/tableside/internal/platform/errors"
	"github.com/tableside/tableside/internal/services/booking/domain/session"
	"github.com/tableside/tableside/internal/services/booking/domain/user"
)

// Caller identifies who is performing an operation. The zero value is an
// unauthenticated guest.
type Caller struct {
	ID   int64
	Role user.Role
}

// Guest returns the unauthenticated caller.
func Guest() Caller {
	return Caller{}
}

// Authenticated reports whether the caller has a verified identity.
func (c Caller) Authenticated() bool {
	return c.ID != 0 && c.Role != user.RoleUnspecified
}

// Operation describes a category of booking operation for policy checks.
type Operation int

const (
	// OpUnspecified represents an invalid operation.
	OpUnspecified Operation = iota
	// OpRead represents read-only operations.
	OpRead
	// OpCreate represents creating a session.
	OpCreate
	// OpUpdate represents editing session content.
	OpUpdate
	// OpDelete represents removing a session.
	OpDelete
	// OpPublish represents publishing a draft session.
	OpPublish
	// OpJoin represents taking a seat in a session.
	OpJoin
	// OpLeave represents releasing a seat in a session.
	OpLeave
	// OpStart represents starting a session.
	OpStart
	// OpEnd represents ending a session.
	OpEnd
)

var (
	// ErrUnauthenticated indicates a caller with no verified identity.
	ErrUnauthenticated = apperrors.New(apperrors.CodeCallerUnauthenticated, "caller is not authenticated")
	// ErrNotHost indicates a caller without the host role.
	ErrNotHost = apperrors.New(apperrors.CodeCallerNotHost, "caller does not have the host role")
	// ErrNotOwner indicates a host acting on a session they do not own.
	ErrNotOwner = apperrors.New(apperrors.CodeCallerNotOwner, "caller does not own this session")
)

// Allowed decides whether the caller may perform op against the session.
// Reads are open to everyone, join/leave require only an authenticated
// identity, and every other mutation requires the owning host.
func Allowed(caller Caller, op Operation, s session.Session) error {
	switch op {
	case OpRead:
		return nil

	case OpJoin, OpLeave:
		if !caller.Authenticated() {
			return newUnauthenticatedError(op)
		}
		return nil

	case OpCreate:
		if !caller.Authenticated() {
			return newUnauthenticatedError(op)
		}
		if caller.Role != user.RoleHost {
			return newNotHostError(caller, op)
		}
		return nil

	case OpUpdate, OpDelete, OpPublish, OpStart, OpEnd:
		if !caller.Authenticated() {
			return newUnauthenticatedError(op)
		}
		if caller.Role != user.RoleHost {
			return newNotHostError(caller, op)
		}
		if s.HostID != caller.ID {
			return apperrors.WithMetadata(
				apperrors.CodeCallerNotOwner,
				fmt.Sprintf("caller %d does not own session %d", caller.ID, s.ID),
				map[string]string{
					"CallerID":  strconv.FormatInt(caller.ID, 10),
					"SessionID": strconv.FormatInt(s.ID, 10),
					"Operation": operationLabel(op),
				},
			)
		}
		return nil

	default:
		return apperrors.New(apperrors.CodeCallerUnauthenticated, "operation is not recognized")
	}
}

// newUnauthenticatedError creates metadata for guests attempting mutations.
func newUnauthenticatedError(op Operation) *apperrors.Error {
	return apperrors.WithMetadata(
		apperrors.CodeCallerUnauthenticated,
		fmt.Sprintf("operation %s requires an authenticated caller", operationLabel(op)),
		map[string]string{"Operation": operationLabel(op)},
	)
}

// newNotHostError creates metadata for non-host callers attempting host operations.
func newNotHostError(caller Caller, op Operation) *apperrors.Error {
	return apperrors.WithMetadata(
		apperrors.CodeCallerNotHost,
		fmt.Sprintf("operation %s requires the host role", operationLabel(op)),
		map[string]string{
			"CallerID":  strconv.FormatInt(caller.ID, 10),
			"Operation": operationLabel(op),
		},
	)
}

// operationLabel returns a stable label for a booking operation.
func operationLabel(op Operation) string {
	switch op {
	case OpRead:
		return "READ"
	case OpCreate:
		return "CREATE"
	case OpUpdate:
		return "UPDATE"
	case OpDelete:
		return "DELETE"
	case OpPublish:
		return "PUBLISH"
	case OpJoin:
		return "JOIN"
	case OpLeave:
		return "LEAVE"
	case OpStart:
		return "START"
	case OpEnd:
		return "END"
	default:
		return "UNSPECIFIED"
	}
}
