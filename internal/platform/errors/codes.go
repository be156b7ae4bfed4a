package errors

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// User errors
	CodeUserDisplayNameEmpty Code = "USER_DISPLAY_NAME_EMPTY"
	CodeUserInvalidRole      Code = "USER_INVALID_ROLE"

	// Session validation errors
	CodeSessionTitleEmpty        Code = "SESSION_TITLE_EMPTY"
	CodeSessionScheduleInvalid   Code = "SESSION_SCHEDULE_INVALID"
	CodeSessionStartInPast       Code = "SESSION_START_IN_PAST"
	CodeSessionCapacityInvalid   Code = "SESSION_CAPACITY_INVALID"
	CodeSessionPublishIncomplete Code = "SESSION_PUBLISH_INCOMPLETE"

	// Session lifecycle errors
	CodeSessionStatusDisallowsOp       Code = "SESSION_STATUS_DISALLOWS_OPERATION"
	CodeSessionInvalidStatusTransition Code = "SESSION_INVALID_STATUS_TRANSITION"
	CodeSessionAlreadyJoined           Code = "SESSION_ALREADY_JOINED"
	CodeSessionFull                    Code = "SESSION_FULL"

	// Caller errors
	CodeCallerUnauthenticated Code = "CALLER_UNAUTHENTICATED"
	CodeCallerNotHost         Code = "CALLER_NOT_HOST"
	CodeCallerNotOwner        Code = "CALLER_NOT_OWNER"
	CodeTokenInvalid          Code = "TOKEN_INVALID"
	CodeTokenExpired          Code = "TOKEN_EXPIRED"

	// Request and query errors
	CodeRequestMalformed   Code = "REQUEST_MALFORMED"
	CodeQueryInvalidFilter Code = "QUERY_INVALID_FILTER"
	CodeQueryInvalidOrder  Code = "QUERY_INVALID_ORDER_BY"
	CodeQueryInvalidLimit  Code = "QUERY_INVALID_LIMIT"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// Class groups codes into the coarse taxonomy callers branch on.
type Class int

const (
	// ClassInternal represents unexpected failures.
	ClassInternal Class = iota
	// ClassValidation represents malformed or logically inconsistent input.
	ClassValidation
	// ClassNotFound represents a missing entity.
	ClassNotFound
	// ClassAuthorization represents a caller lacking identity, role, or ownership.
	ClassAuthorization
	// ClassConflict represents an operation invalid for the entity's current state.
	ClassConflict
	// ClassCapacity represents a session with no seats left.
	ClassCapacity
)

// Class maps a code to its taxonomy class.
func (c Code) Class() Class {
	switch c {
	case CodeUserDisplayNameEmpty,
		CodeUserInvalidRole,
		CodeSessionTitleEmpty,
		CodeSessionScheduleInvalid,
		CodeSessionStartInPast,
		CodeSessionCapacityInvalid,
		CodeSessionPublishIncomplete,
		CodeRequestMalformed,
		CodeQueryInvalidFilter,
		CodeQueryInvalidOrder,
		CodeQueryInvalidLimit:
		return ClassValidation

	case CodeNotFound:
		return ClassNotFound

	case CodeCallerUnauthenticated,
		CodeCallerNotHost,
		CodeCallerNotOwner,
		CodeTokenInvalid,
		CodeTokenExpired:
		return ClassAuthorization

	case CodeSessionStatusDisallowsOp,
		CodeSessionInvalidStatusTransition,
		CodeSessionAlreadyJoined:
		return ClassConflict

	case CodeSessionFull:
		return ClassCapacity

	default:
		return ClassInternal
	}
}

// GRPCCode maps domain codes to gRPC status codes for RPC gateways.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeUserDisplayNameEmpty,
		CodeUserInvalidRole,
		CodeSessionTitleEmpty,
		CodeSessionScheduleInvalid,
		CodeSessionStartInPast,
		CodeSessionCapacityInvalid,
		CodeSessionPublishIncomplete,
		CodeRequestMalformed,
		CodeQueryInvalidFilter,
		CodeQueryInvalidOrder,
		CodeQueryInvalidLimit:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeSessionStatusDisallowsOp,
		CodeSessionInvalidStatusTransition:
		return codes.FailedPrecondition

	// AlreadyExists - duplicate membership
	case CodeSessionAlreadyJoined:
		return codes.AlreadyExists

	// ResourceExhausted - capacity reached
	case CodeSessionFull:
		return codes.ResourceExhausted

	// Unauthenticated - no verifiable identity
	case CodeCallerUnauthenticated,
		CodeTokenInvalid,
		CodeTokenExpired:
		return codes.Unauthenticated

	// PermissionDenied - identity present but not allowed
	case CodeCallerNotHost,
		CodeCallerNotOwner:
		return codes.PermissionDenied

	// NotFound - resource doesn't exist
	case CodeNotFound:
		return codes.NotFound

	default:
		return codes.Internal
	}
}

// HTTPStatus maps domain codes to fixed HTTP status codes for the JSON adapter.
func (c Code) HTTPStatus() int {
	switch c.Class() {
	case ClassValidation:
		return http.StatusBadRequest
	case ClassNotFound:
		return http.StatusNotFound
	case ClassAuthorization:
		switch c {
		case CodeCallerNotHost, CodeCallerNotOwner:
			return http.StatusForbidden
		}
		return http.StatusUnauthorized
	case ClassConflict, ClassCapacity:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
