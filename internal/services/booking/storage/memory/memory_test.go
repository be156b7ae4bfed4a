package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	apperrors "github.com/tableside/tableside/internal/platform/errors"
	"github.com/tableside/tableside/internal/services/booking/domain/session"
	"github.com/tableside/tableside/internal/services/booking/domain/user"
	"github.com/tableside/tableside/internal/services/booking/storage"
)

var testClock = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testClock }

func newSession(t *testing.T, id int64, capacity int) session.Session {
	t.Helper()
	s, err := session.Create(session.CreateInput{
		HostID:          1,
		Title:           "Dumpling Basics",
		Description:     "Fold and steam",
		Cuisine:         "chinese",
		Price:           30,
		MaxParticipants: capacity,
		StartTime:       testClock.Add(24 * time.Hour),
		EndTime:         testClock.Add(26 * time.Hour),
	}, fixedNow, func() int64 { return id })
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	s, err = session.Publish(s, fixedNow)
	if err != nil {
		t.Fatalf("publish session: %v", err)
	}
	return s
}

func TestUserRoundTrip(t *testing.T) {
	store := New()
	ctx := context.Background()

	if _, err := store.GetUser(ctx, 404); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	u := user.User{ID: 7, Role: user.RoleHost, DisplayName: "Chef Ana"}
	if err := store.PutUser(ctx, u); err != nil {
		t.Fatalf("put user: %v", err)
	}
	got, err := store.GetUser(ctx, 7)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.DisplayName != "Chef Ana" {
		t.Fatalf("expected Chef Ana, got %q", got.DisplayName)
	}
}

func TestGetSessionReturnsCopy(t *testing.T) {
	store := New()
	ctx := context.Background()
	s := newSession(t, 1, 8)
	s.Tags = []string{"steam"}
	if err := store.PutSession(ctx, s); err != nil {
		t.Fatalf("put session: %v", err)
	}

	got, err := store.GetSession(ctx, 1)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	got.Tags[0] = "mutated"
	got.Title = "mutated"

	again, err := store.GetSession(ctx, 1)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if again.Tags[0] != "steam" || again.Title != "Dumpling Basics" {
		t.Fatalf("stored session was mutated through a returned copy: %+v", again)
	}
}

func TestMutateSessionAppliesResult(t *testing.T) {
	store := New()
	ctx := context.Background()
	if err := store.PutSession(ctx, newSession(t, 1, 8)); err != nil {
		t.Fatalf("put session: %v", err)
	}

	updated, err := store.MutateSession(ctx, 1, func(s session.Session) (session.Session, error) {
		return session.Join(s, 42, fixedNow)
	})
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if len(updated.Participants) != 1 {
		t.Fatalf("expected 1 participant, got %d", len(updated.Participants))
	}

	got, _ := store.GetSession(ctx, 1)
	if len(got.Participants) != 1 || got.Status != session.StatusBooking {
		t.Fatalf("mutation not persisted: %+v", got)
	}
}

func TestMutateSessionRollsBackOnError(t *testing.T) {
	store := New()
	ctx := context.Background()
	if err := store.PutSession(ctx, newSession(t, 1, 8)); err != nil {
		t.Fatalf("put session: %v", err)
	}

	boom := errors.New("boom")
	_, err := store.MutateSession(ctx, 1, func(s session.Session) (session.Session, error) {
		s.Title = "half applied"
		return s, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}

	got, _ := store.GetSession(ctx, 1)
	if got.Title != "Dumpling Basics" {
		t.Fatalf("failed mutation leaked into store: %q", got.Title)
	}
}

func TestMutateSessionNotFound(t *testing.T) {
	store := New()
	_, err := store.MutateSession(context.Background(), 404, func(s session.Session) (session.Session, error) {
		return s, nil
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteSessionGuard(t *testing.T) {
	store := New()
	ctx := context.Background()
	if err := store.PutSession(ctx, newSession(t, 1, 8)); err != nil {
		t.Fatalf("put session: %v", err)
	}

	denied := errors.New("denied")
	err := store.DeleteSession(ctx, 1, func(session.Session) error { return denied })
	if !errors.Is(err, denied) {
		t.Fatalf("expected guard error, got %v", err)
	}
	if _, err := store.GetSession(ctx, 1); err != nil {
		t.Fatalf("guarded delete removed the session: %v", err)
	}

	if err := store.DeleteSession(ctx, 1, nil); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetSession(ctx, 1); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.DeleteSession(ctx, 1, nil); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestSnapshotSessionsInsertionOrder(t *testing.T) {
	store := New()
	ctx := context.Background()
	for _, id := range []int64{3, 1, 2} {
		if err := store.PutSession(ctx, newSession(t, id, 8)); err != nil {
			t.Fatalf("put session %d: %v", id, err)
		}
	}
	if err := store.DeleteSession(ctx, 1, nil); err != nil {
		t.Fatalf("delete: %v", err)
	}

	snapshot, err := store.SnapshotSessions(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snapshot) != 2 || snapshot[0].ID != 3 || snapshot[1].ID != 2 {
		t.Fatalf("expected ids [3 2], got %+v", snapshot)
	}
}

func TestAddSessionView(t *testing.T) {
	store := New()
	ctx := context.Background()
	if err := store.PutSession(ctx, newSession(t, 1, 8)); err != nil {
		t.Fatalf("put session: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := store.AddSessionView(ctx, 1); err != nil {
			t.Fatalf("add view: %v", err)
		}
	}
	got, _ := store.GetSession(ctx, 1)
	if got.Views != 3 {
		t.Fatalf("expected 3 views, got %d", got.Views)
	}
}

func TestConcurrentJoinsNeverExceedCapacity(t *testing.T) {
	const capacity = 5
	const contenders = 32

	store := New()
	ctx := context.Background()
	if err := store.PutSession(ctx, newSession(t, 1, capacity)); err != nil {
		t.Fatalf("put session: %v", err)
	}

	var wg sync.WaitGroup
	results := make(chan error, contenders)
	for i := 0; i < contenders; i++ {
		userID := int64(100 + i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.MutateSession(ctx, 1, func(s session.Session) (session.Session, error) {
				return session.Join(s, userID, fixedNow)
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var admitted, rejected int
	for err := range results {
		switch {
		case err == nil:
			admitted++
		case apperrors.CodeOf(err) == apperrors.CodeSessionFull:
			rejected++
		default:
			t.Fatalf("unexpected join error: %v", err)
		}
	}
	if admitted != capacity || rejected != contenders-capacity {
		t.Fatalf("expected %d admitted and %d rejected, got %d/%d", capacity, contenders-capacity, admitted, rejected)
	}

	got, _ := store.GetSession(ctx, 1)
	if len(got.Participants) != capacity || got.Status != session.StatusFull {
		t.Fatalf("expected full session with %d seats, got %d participants in %v", capacity, len(got.Participants), got.Status)
	}
}
