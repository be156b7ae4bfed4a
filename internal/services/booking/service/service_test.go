package service

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/tableside/tableside/internal/platform/errors"
	"github.com/tableside/tableside/internal/services/booking/domain/session"
	"github.com/tableside/tableside/internal/services/booking/domain/user"
	"github.com/tableside/tableside/internal/services/booking/policy"
	"github.com/tableside/tableside/internal/services/booking/query"
	"github.com/tableside/tableside/internal/services/booking/storage"
	"github.com/tableside/tableside/internal/services/booking/storage/memory"
)

var testClock = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testClock }

var (
	hostCaller        = policy.Caller{ID: 1, Role: user.RoleHost}
	otherHostCaller   = policy.Caller{ID: 2, Role: user.RoleHost}
	participantCaller = policy.Caller{ID: 3, Role: user.RoleParticipant}
)

func newService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	svc := New(Stores{Users: store, Sessions: store}, WithClock(fixedNow))
	return svc, store
}

func sessionInput(capacity int) session.CreateInput {
	return session.CreateInput{
		Title:           "Sourdough Fundamentals",
		Description:     "Starter care and first bake",
		Cuisine:         "bakery",
		Price:           55,
		MaxParticipants: capacity,
		StartTime:       testClock.Add(48 * time.Hour),
		EndTime:         testClock.Add(52 * time.Hour),
	}
}

func createPublished(t *testing.T, svc *Service, capacity int) session.Session {
	t.Helper()
	ctx := context.Background()
	created, err := svc.CreateSession(ctx, hostCaller, sessionInput(capacity))
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	published, err := svc.PublishSession(ctx, hostCaller, created.ID)
	if err != nil {
		t.Fatalf("publish session: %v", err)
	}
	return published
}

func TestRegisterUserAssignsSequentialIDs(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	first, err := svc.RegisterUser(ctx, user.CreateInput{Role: user.RoleHost, DisplayName: "Chef Ana"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	second, err := svc.RegisterUser(ctx, user.CreateInput{Role: user.RoleParticipant, DisplayName: "Ben"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("expected ids 1 and 2, got %d and %d", first.ID, second.ID)
	}

	got, err := svc.GetUser(ctx, first.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.DisplayName != "Chef Ana" {
		t.Fatalf("expected Chef Ana, got %q", got.DisplayName)
	}
}

func TestRegisterUserRejectsInvalidInput(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.RegisterUser(context.Background(), user.CreateInput{Role: user.RoleHost})
	if !errors.Is(err, user.ErrEmptyDisplayName) {
		t.Fatalf("expected ErrEmptyDisplayName, got %v", err)
	}
}

func TestCreateSessionRequiresHostRole(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.CreateSession(context.Background(), participantCaller, sessionInput(8))
	if apperrors.CodeOf(err) != apperrors.CodeCallerNotHost {
		t.Fatalf("expected CALLER_NOT_HOST, got %v", err)
	}
}

func TestCreateSessionOwnsHostID(t *testing.T) {
	svc, _ := newService(t)
	input := sessionInput(8)
	input.HostID = 999

	created, err := svc.CreateSession(context.Background(), hostCaller, input)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if created.HostID != hostCaller.ID {
		t.Fatalf("expected host id %d, got %d", hostCaller.ID, created.HostID)
	}
	if created.Status != session.StatusDraft {
		t.Fatalf("expected draft, got %v", created.Status)
	}
}

func TestBookingLifecycle(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	published := createPublished(t, svc, 2)

	joined, err := svc.JoinSession(ctx, participantCaller, published.ID)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if joined.Status != session.StatusBooking {
		t.Fatalf("expected booking after first join, got %v", joined.Status)
	}

	second := policy.Caller{ID: 4, Role: user.RoleParticipant}
	full, err := svc.JoinSession(ctx, second, published.ID)
	if err != nil {
		t.Fatalf("second join: %v", err)
	}
	if full.Status != session.StatusFull {
		t.Fatalf("expected full after capacity reached, got %v", full.Status)
	}

	third := policy.Caller{ID: 5, Role: user.RoleParticipant}
	_, err = svc.JoinSession(ctx, third, published.ID)
	if apperrors.CodeOf(err) != apperrors.CodeSessionFull {
		t.Fatalf("expected SESSION_FULL, got %v", err)
	}

	reopened, err := svc.LeaveSession(ctx, second, published.ID)
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if reopened.Status != session.StatusBooking || len(reopened.Participants) != 1 {
		t.Fatalf("expected reopened booking with 1 seat, got %+v", reopened)
	}

	started, err := svc.StartSession(ctx, hostCaller, published.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.Status != session.StatusInProgress || !started.IsLive {
		t.Fatalf("expected live in-progress session, got %+v", started)
	}

	// Leaving after start is a no-op.
	unchanged, err := svc.LeaveSession(ctx, participantCaller, published.ID)
	if err != nil {
		t.Fatalf("leave after start: %v", err)
	}
	if len(unchanged.Participants) != 1 {
		t.Fatalf("leave after start removed a seat: %+v", unchanged)
	}

	ended, err := svc.EndSession(ctx, hostCaller, published.ID)
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if ended.Status != session.StatusCompleted || ended.IsLive || ended.ActualEndTime == nil {
		t.Fatalf("expected completed session with actual end time, got %+v", ended)
	}
}

func TestJoinDuplicateRejected(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	published := createPublished(t, svc, 8)

	if _, err := svc.JoinSession(ctx, participantCaller, published.ID); err != nil {
		t.Fatalf("join: %v", err)
	}
	_, err := svc.JoinSession(ctx, participantCaller, published.ID)
	if apperrors.CodeOf(err) != apperrors.CodeSessionAlreadyJoined {
		t.Fatalf("expected SESSION_ALREADY_JOINED, got %v", err)
	}
}

func TestUpdateSessionRequiresOwnership(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	published := createPublished(t, svc, 8)

	title := "Hijacked"
	_, err := svc.UpdateSession(ctx, otherHostCaller, published.ID, session.ContentPatch{Title: &title})
	if apperrors.CodeOf(err) != apperrors.CodeCallerNotOwner {
		t.Fatalf("expected CALLER_NOT_OWNER, got %v", err)
	}

	got, _ := store.GetSession(ctx, published.ID)
	if got.Title != published.Title {
		t.Fatalf("denied update leaked into store: %q", got.Title)
	}
}

func TestUpdateSessionAppliesPatch(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	published := createPublished(t, svc, 8)

	title := "Sourdough Masterclass"
	price := 70.0
	updated, err := svc.UpdateSession(ctx, hostCaller, published.ID, session.ContentPatch{Title: &title, Price: &price})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != title || updated.Price != price {
		t.Fatalf("patch not applied: %+v", updated)
	}
}

func TestDeleteSessionBlockedAfterStart(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	published := createPublished(t, svc, 8)

	if _, err := svc.JoinSession(ctx, participantCaller, published.ID); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := svc.StartSession(ctx, hostCaller, published.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	err := svc.DeleteSession(ctx, hostCaller, published.ID)
	if apperrors.CodeOf(err) != apperrors.CodeSessionStatusDisallowsOp {
		t.Fatalf("expected SESSION_STATUS_DISALLOWS_OPERATION, got %v", err)
	}
	if _, err := store.GetSession(ctx, published.ID); err != nil {
		t.Fatalf("blocked delete removed the session: %v", err)
	}
}

func TestDeleteSessionRemovesDraft(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, hostCaller, sessionInput(8))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.DeleteSession(ctx, hostCaller, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = svc.GetSession(ctx, created.ID)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestDeleteSessionRequiresOwnership(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	published := createPublished(t, svc, 8)

	err := svc.DeleteSession(ctx, otherHostCaller, published.ID)
	if apperrors.CodeOf(err) != apperrors.CodeCallerNotOwner {
		t.Fatalf("expected CALLER_NOT_OWNER, got %v", err)
	}
}

func TestGetSessionCountsViews(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	published := createPublished(t, svc, 8)

	for i := 0; i < 3; i++ {
		if _, err := svc.GetSession(ctx, published.ID); err != nil {
			t.Fatalf("get: %v", err)
		}
	}
	got, err := svc.GetSession(ctx, published.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Views != 4 {
		t.Fatalf("expected 4 views, got %d", got.Views)
	}
	if !got.UpdatedAt.Equal(published.UpdatedAt) {
		t.Fatalf("view bumped updated_at: %v", got.UpdatedAt)
	}
}

func TestListSessionsFiltersAndPages(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		input := sessionInput(8)
		if i == 2 {
			input.Cuisine = "thai"
		}
		created, err := svc.CreateSession(ctx, hostCaller, input)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := svc.PublishSession(ctx, hostCaller, created.ID); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}

	result, err := svc.ListSessions(ctx, query.Params{Filter: `cuisine = "bakery"`})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if result.Total != 2 {
		t.Fatalf("expected 2 bakery sessions, got %d", result.Total)
	}

	_, err = svc.ListSessions(ctx, query.Params{Filter: `bogus = 1`})
	if apperrors.CodeOf(err) != apperrors.CodeQueryInvalidFilter {
		t.Fatalf("expected QUERY_INVALID_FILTER, got %v", err)
	}
}

func TestGuestCannotMutate(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	published := createPublished(t, svc, 8)

	_, err := svc.JoinSession(ctx, policy.Guest(), published.ID)
	if apperrors.CodeOf(err) != apperrors.CodeCallerUnauthenticated {
		t.Fatalf("expected CALLER_UNAUTHENTICATED, got %v", err)
	}
}

// fakeSessionStore lets tests inject storage failures.
type fakeSessionStore struct {
	storage.SessionStore
	putSession func(ctx context.Context, s session.Session) error
}

func (f *fakeSessionStore) PutSession(ctx context.Context, s session.Session) error {
	return f.putSession(ctx, s)
}

func TestCreateSessionPropagatesStoreError(t *testing.T) {
	boom := errors.New("disk on fire")
	svc := New(Stores{
		Sessions: &fakeSessionStore{putSession: func(context.Context, session.Session) error { return boom }},
	}, WithClock(fixedNow))

	_, err := svc.CreateSession(context.Background(), hostCaller, sessionInput(8))
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}
