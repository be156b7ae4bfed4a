// Package httpapi exposes the booking service as a JSON HTTP API.
//
// Session lifecycle actions use custom verbs in the path, AIP style:
// POST /v1/sessions/{id}:publish, {id}:join, {id}:leave, {id}:start,
// {id}:end.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/tableside/tableside/internal/platform/errors"
	"github.com/tableside/tableside/internal/platform/errors/i18n"
	"github.com/tableside/tableside/internal/platform/requestctx"
	"github.com/tableside/tableside/internal/services/booking/domain/session"
	"github.com/tableside/tableside/internal/services/booking/domain/user"
	"github.com/tableside/tableside/internal/services/booking/policy"
	"github.com/tableside/tableside/internal/services/booking/query"
	"github.com/tableside/tableside/internal/services/booking/service"
)

// VerifyFunc turns a bearer token into a caller.
type VerifyFunc func(token string) (policy.Caller, error)

// Handler serves the booking HTTP API.
type Handler struct {
	svc    *service.Service
	verify VerifyFunc
}

// NewHandler creates the HTTP handler. verify may be nil, in which case all
// requests are treated as unauthenticated guests.
func NewHandler(svc *service.Service, verify VerifyFunc) *Handler {
	return &Handler{svc: svc, verify: verify}
}

// Routes returns the routed handler with middleware applied.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.handleHealth)

	mux.HandleFunc("POST /v1/users", h.handleRegisterUser)
	mux.HandleFunc("GET /v1/users/{id}", h.handleGetUser)

	mux.HandleFunc("POST /v1/sessions", h.handleCreateSession)
	mux.HandleFunc("GET /v1/sessions", h.handleListSessions)
	mux.HandleFunc("GET /v1/sessions/{id}", h.handleGetSession)
	mux.HandleFunc("PATCH /v1/sessions/{id}", h.handleUpdateSession)
	mux.HandleFunc("DELETE /v1/sessions/{id}", h.handleDeleteSession)
	// Custom verbs share one segment ("{id}:publish"), so they route
	// through a single pattern and dispatch on the verb suffix.
	mux.HandleFunc("POST /v1/sessions/{name}", h.handleSessionAction)

	return h.withRequestID(h.withCaller(h.withSpan(mux)))
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type registerUserRequest struct {
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Bio         string `json:"bio"`
}

func (h *Handler) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	role, _ := user.ParseRole(req.Role)
	created, err := h.svc.RegisterUser(r.Context(), user.CreateInput{
		Role:        role,
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Bio:         req.Bio,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(created))
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	u, err := h.svc.GetUser(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

type createSessionRequest struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Cuisine         string   `json:"cuisine"`
	Tags            []string `json:"tags"`
	Price           float64  `json:"price"`
	MaxParticipants int      `json:"max_participants"`
	StartTime       rfc3339  `json:"start_time"`
	EndTime         rfc3339  `json:"end_time"`
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	created, err := h.svc.CreateSession(r.Context(), callerFrom(r), session.CreateInput{
		Title:           req.Title,
		Description:     req.Description,
		Cuisine:         req.Cuisine,
		Tags:            req.Tags,
		Price:           req.Price,
		MaxParticipants: req.MaxParticipants,
		StartTime:       req.StartTime.Time,
		EndTime:         req.EndTime.Time,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(created))
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	s, err := h.svc.GetSession(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(s))
}

func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	params := query.Params{
		Filter:  r.URL.Query().Get("filter"),
		OrderBy: r.URL.Query().Get("order_by"),
	}
	var err error
	if params.Page, err = queryInt(r, "page"); err != nil {
		h.writeError(w, r, err)
		return
	}
	if params.Limit, err = queryInt(r, "limit"); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.svc.ListSessions(r.Context(), params)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	sessions := make([]sessionResponse, 0, len(result.Sessions))
	for _, s := range result.Sessions {
		sessions = append(sessions, toSessionResponse(s))
	}
	writeJSON(w, http.StatusOK, listSessionsResponse{
		Sessions: sessions,
		Total:    result.Total,
		Page:     result.Page,
		Limit:    result.Limit,
		Pages:    result.Pages,
	})
}

type updateSessionRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Cuisine     *string   `json:"cuisine"`
	Tags        *[]string `json:"tags"`
	Price       *float64  `json:"price"`
	Rating      *float64  `json:"rating"`
	StartTime   *rfc3339  `json:"start_time"`
	EndTime     *rfc3339  `json:"end_time"`
}

func (h *Handler) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req updateSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	patch := session.ContentPatch{
		Title:       req.Title,
		Description: req.Description,
		Cuisine:     req.Cuisine,
		Tags:        req.Tags,
		Price:       req.Price,
		Rating:      req.Rating,
	}
	if req.StartTime != nil {
		patch.StartTime = &req.StartTime.Time
	}
	if req.EndTime != nil {
		patch.EndTime = &req.EndTime.Time
	}

	updated, err := h.svc.UpdateSession(r.Context(), callerFrom(r), sessionID, patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(updated))
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.svc.DeleteSession(r.Context(), callerFrom(r), sessionID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSessionAction dispatches the lifecycle custom verbs.
func (h *Handler) handleSessionAction(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	rawID, verb, found := strings.Cut(name, ":")
	if !found {
		h.writeError(w, r, apperrors.New(apperrors.CodeNotFound, "unknown session action"))
		return
	}
	sessionID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		h.writeError(w, r, apperrors.New(apperrors.CodeNotFound, "session id must be an integer"))
		return
	}

	caller := callerFrom(r)
	var updated session.Session
	switch verb {
	case "publish":
		updated, err = h.svc.PublishSession(r.Context(), caller, sessionID)
	case "join":
		updated, err = h.svc.JoinSession(r.Context(), caller, sessionID)
	case "leave":
		updated, err = h.svc.LeaveSession(r.Context(), caller, sessionID)
	case "start":
		updated, err = h.svc.StartSession(r.Context(), caller, sessionID)
	case "end":
		updated, err = h.svc.EndSession(r.Context(), caller, sessionID)
	default:
		h.writeError(w, r, apperrors.WithMetadata(apperrors.CodeNotFound,
			fmt.Sprintf("unknown session action %q", verb),
			map[string]string{"Action": verb}))
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(updated))
}

// writeError renders a domain error with a localized message.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		appErr = apperrors.Wrap(apperrors.CodeUnknown, "internal error", err)
	}

	status := appErr.Code.HTTPStatus()
	if status >= http.StatusInternalServerError {
		log.Printf("internal error: request_id=%s err=%v", requestctx.RequestIDFromContext(r.Context()), err)
	}

	catalog := i18n.GetCatalog(r.Header.Get("Accept-Language"))
	writeJSON(w, status, errorResponse{Error: errorBody{
		Code:      string(appErr.Code),
		Message:   catalog.Format(string(appErr.Code), appErr.Metadata),
		RequestID: requestctx.RequestIDFromContext(r.Context()),
	}})
}

func pathID(r *http.Request, key string) (int64, error) {
	value, err := strconv.ParseInt(r.PathValue(key), 10, 64)
	if err != nil || value <= 0 {
		return 0, apperrors.New(apperrors.CodeNotFound, "identifier must be a positive integer")
	}
	return value, nil
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.WithMetadata(apperrors.CodeQueryInvalidLimit,
			fmt.Sprintf("%s must be an integer", key),
			map[string]string{"Field": key})
	}
	return value, nil
}

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return apperrors.Wrap(apperrors.CodeRequestMalformed, "malformed request body", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("encode response: %v", err)
	}
}
