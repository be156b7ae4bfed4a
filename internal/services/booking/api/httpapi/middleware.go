package httpapi

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tableside/tableside/internal/platform/requestctx"
	"github.com/tableside/tableside/internal/services/booking/identity"
	"github.com/tableside/tableside/internal/services/booking/policy"
)

const requestIDHeader = "X-Request-Id"

var tracer = otel.Tracer("github.com/tableside/tableside/internal/services/booking/api/httpapi")

// withRequestID assigns every request an identifier, honoring one supplied
// by the caller, and echoes it on the response.
func (h *Handler) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(requestctx.WithRequestID(r.Context(), requestID)))
	})
}

// withCaller verifies the bearer token, if any, and stores the resulting
// caller on the context. Requests without a token proceed as guests; the
// policy layer decides what guests may do.
func (h *Handler) withCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok || h.verify == nil {
			next.ServeHTTP(w, r.WithContext(identity.WithCaller(r.Context(), policy.Guest())))
			return
		}

		caller, err := h.verify(token)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(identity.WithCaller(r.Context(), caller)))
	})
}

// withSpan opens a trace span for each request.
func (h *Handler) withSpan(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
				attribute.String("request.id", requestctx.RequestIDFromContext(r.Context())),
			),
		)
		defer span.End()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func callerFrom(r *http.Request) policy.Caller {
	return identity.CallerFromContext(r.Context())
}
