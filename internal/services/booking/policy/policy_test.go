package policy

import (
	"errors"
	"testing"

	apperrors "github.com/tableside/tableside/internal/platform/errors"
	"github.com/tableside/tableside/internal/services/booking/domain/session"
	"github.com/tableside/tableside/internal/services/booking/domain/user"
)

var (
	owner       = Caller{ID: 1, Role: user.RoleHost}
	otherHost   = Caller{ID: 2, Role: user.RoleHost}
	participant = Caller{ID: 3, Role: user.RoleParticipant}
	guest       = Guest()

	ownedSession = session.Session{ID: 10, HostID: 1, Status: session.StatusDraft}
)

func TestReadsAreOpen(t *testing.T) {
	for _, caller := range []Caller{owner, otherHost, participant, guest} {
		if err := Allowed(caller, OpRead, ownedSession); err != nil {
			t.Fatalf("read by %+v: %v", caller, err)
		}
	}
}

func TestJoinAndLeaveRequireIdentityOnly(t *testing.T) {
	for _, op := range []Operation{OpJoin, OpLeave} {
		if err := Allowed(participant, op, ownedSession); err != nil {
			t.Fatalf("participant %v: %v", op, err)
		}
		if err := Allowed(otherHost, op, ownedSession); err != nil {
			t.Fatalf("host %v: %v", op, err)
		}
		err := Allowed(guest, op, ownedSession)
		if !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("guest %v: expected ErrUnauthenticated, got %v", op, err)
		}
	}
}

func TestCreateRequiresHostRole(t *testing.T) {
	if err := Allowed(owner, OpCreate, session.Session{}); err != nil {
		t.Fatalf("host create: %v", err)
	}
	if err := Allowed(participant, OpCreate, session.Session{}); !errors.Is(err, ErrNotHost) {
		t.Fatalf("participant create: expected ErrNotHost, got %v", err)
	}
	if err := Allowed(guest, OpCreate, session.Session{}); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("guest create: expected ErrUnauthenticated, got %v", err)
	}
}

func TestLifecycleOperationsRequireOwnership(t *testing.T) {
	for _, op := range []Operation{OpUpdate, OpDelete, OpPublish, OpStart, OpEnd} {
		if err := Allowed(owner, op, ownedSession); err != nil {
			t.Fatalf("owner %v: %v", op, err)
		}

		err := Allowed(otherHost, op, ownedSession)
		if !errors.Is(err, ErrNotOwner) {
			t.Fatalf("non-owner host %v: expected ErrNotOwner, got %v", op, err)
		}

		err = Allowed(participant, op, ownedSession)
		if !errors.Is(err, ErrNotHost) {
			t.Fatalf("participant %v: expected ErrNotHost, got %v", op, err)
		}

		err = Allowed(guest, op, ownedSession)
		if !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("guest %v: expected ErrUnauthenticated, got %v", op, err)
		}
	}
}

func TestNotOwnerErrorCarriesMetadata(t *testing.T) {
	err := Allowed(otherHost, OpPublish, ownedSession)
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected domain error, got %T", err)
	}
	if appErr.Metadata["CallerID"] != "2" || appErr.Metadata["SessionID"] != "10" {
		t.Fatalf("unexpected metadata: %v", appErr.Metadata)
	}
}

func TestAuthenticated(t *testing.T) {
	if guest.Authenticated() {
		t.Fatal("guest should not be authenticated")
	}
	if !participant.Authenticated() {
		t.Fatal("participant should be authenticated")
	}
	if (Caller{ID: 5}).Authenticated() {
		t.Fatal("caller without role should not be authenticated")
	}
}
