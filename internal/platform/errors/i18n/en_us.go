package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeUserDisplayNameEmpty           = "USER_DISPLAY_NAME_EMPTY"
	CodeUserInvalidRole                = "USER_INVALID_ROLE"
	CodeSessionTitleEmpty              = "SESSION_TITLE_EMPTY"
	CodeSessionScheduleInvalid         = "SESSION_SCHEDULE_INVALID"
	CodeSessionStartInPast             = "SESSION_START_IN_PAST"
	CodeSessionCapacityInvalid         = "SESSION_CAPACITY_INVALID"
	CodeSessionPublishIncomplete       = "SESSION_PUBLISH_INCOMPLETE"
	CodeSessionStatusDisallowsOp       = "SESSION_STATUS_DISALLOWS_OPERATION"
	CodeSessionInvalidStatusTransition = "SESSION_INVALID_STATUS_TRANSITION"
	CodeSessionAlreadyJoined           = "SESSION_ALREADY_JOINED"
	CodeSessionFull                    = "SESSION_FULL"
	CodeCallerUnauthenticated          = "CALLER_UNAUTHENTICATED"
	CodeCallerNotHost                  = "CALLER_NOT_HOST"
	CodeCallerNotOwner                 = "CALLER_NOT_OWNER"
	CodeTokenInvalid                   = "TOKEN_INVALID"
	CodeTokenExpired                   = "TOKEN_EXPIRED"
	CodeRequestMalformed               = "REQUEST_MALFORMED"
	CodeQueryInvalidFilter             = "QUERY_INVALID_FILTER"
	CodeQueryInvalidOrder              = "QUERY_INVALID_ORDER_BY"
	CodeQueryInvalidLimit              = "QUERY_INVALID_LIMIT"
	CodeNotFound                       = "NOT_FOUND"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[Code]string{
		// User errors
		CodeUserDisplayNameEmpty: "Display name cannot be empty",
		CodeUserInvalidRole:      "Invalid user role specified",

		// Session validation errors
		CodeSessionTitleEmpty:        "Session title cannot be empty",
		CodeSessionScheduleInvalid:   "Session end time must be after its start time",
		CodeSessionStartInPast:       "Session start time must be in the future",
		CodeSessionCapacityInvalid:   "Session capacity must be at least 1",
		CodeSessionPublishIncomplete: "Session is missing {{.Field}} and cannot be published",

		// Session lifecycle errors
		CodeSessionStatusDisallowsOp:       "Session status {{.Status}} does not allow {{.Operation}}",
		CodeSessionInvalidStatusTransition: "Cannot transition session from {{.FromStatus}} to {{.ToStatus}}",
		CodeSessionAlreadyJoined:           "You have already joined this session",
		CodeSessionFull:                    "Session is full",

		// Caller errors
		CodeCallerUnauthenticated: "Sign in to continue",
		CodeCallerNotHost:         "Only hosts can perform this action",
		CodeCallerNotOwner:        "Only the session host can perform this action",
		CodeTokenInvalid:          "Access token is invalid",
		CodeTokenExpired:          "Access token has expired",

		// Request and query errors
		CodeRequestMalformed:   "Request body is malformed",
		CodeQueryInvalidFilter: "Filter expression is invalid",
		CodeQueryInvalidOrder:  "Sort field {{.Field}} is not supported",
		CodeQueryInvalidLimit:  "Page limit must be a positive number",

		// Storage errors
		CodeNotFound: "The requested record was not found",
	},
}
