package session

import (
	"fmt"
	"strconv"
	"time"

	apperrors "github.com/tableside/tableside/internal/platform/errors"
)

var (
	// ErrAlreadyJoined indicates the caller already holds a seat.
	ErrAlreadyJoined = apperrors.New(apperrors.CodeSessionAlreadyJoined, "user has already joined this session")
	// ErrFull indicates the session has no seats left.
	ErrFull = apperrors.New(apperrors.CodeSessionFull, "session is at capacity")
	// ErrStatusDisallowsOperation indicates a status that disallows the requested operation.
	ErrStatusDisallowsOperation = apperrors.New(apperrors.CodeSessionStatusDisallowsOp, "session status does not allow operation")
	// ErrInvalidStatusTransition indicates a disallowed status change.
	ErrInvalidStatusTransition = apperrors.New(apperrors.CodeSessionInvalidStatusTransition, "session status transition is not allowed")
)

// Publish moves a draft session to published. Title, description, and a
// coherent scheduling window must all be present.
func Publish(s Session, now func() time.Time) (Session, error) {
	if s.Status != StatusDraft {
		return Session{}, newStatusOpError(s.Status, "PUBLISH")
	}
	if field, ok := missingPublishField(s); !ok {
		return Session{}, apperrors.WithMetadata(
			apperrors.CodeSessionPublishIncomplete,
			fmt.Sprintf("session is missing %s and cannot be published", field),
			map[string]string{"Field": field},
		)
	}
	return transition(s, StatusPublished, now)
}

// Join admits a participant. The published->booking and capacity-exhaustion
// transitions happen here as side effects of a successful admission. A full
// session reports capacity exhaustion regardless of whether it closed before
// or during the caller's attempt.
func Join(s Session, userID int64, now func() time.Time) (Session, error) {
	switch s.Status {
	case StatusPublished, StatusBooking, StatusFull:
	default:
		return Session{}, newStatusOpError(s.Status, "JOIN")
	}
	if s.HasParticipant(userID) {
		return Session{}, apperrors.WithMetadata(
			apperrors.CodeSessionAlreadyJoined,
			fmt.Sprintf("user %d has already joined session %d", userID, s.ID),
			map[string]string{"UserID": strconv.FormatInt(userID, 10)},
		)
	}
	if len(s.Participants) >= s.MaxParticipants {
		return Session{}, apperrors.WithMetadata(
			apperrors.CodeSessionFull,
			fmt.Sprintf("session %d is at capacity %d", s.ID, s.MaxParticipants),
			map[string]string{"Capacity": strconv.Itoa(s.MaxParticipants)},
		)
	}

	if now == nil {
		now = time.Now
	}
	joinedAt := now().UTC()

	updated := s.Clone()
	updated.Participants = append(updated.Participants, Participant{UserID: userID, JoinedAt: joinedAt})
	switch {
	case len(updated.Participants) == updated.MaxParticipants:
		updated.Status = StatusFull
	case updated.Status == StatusPublished:
		updated.Status = StatusBooking
	}
	updated.UpdatedAt = joinedAt
	return updated, nil
}

// Leave releases the caller's seat. Removing a non-member is a no-op, not an
// error, and a session that has already started is left untouched. Leaving a
// full session reopens it to booking; booking never reverts to published.
func Leave(s Session, userID int64, now func() time.Time) (Session, error) {
	switch s.Status {
	case StatusPublished, StatusBooking, StatusFull:
	default:
		return s.Clone(), nil
	}
	if !s.HasParticipant(userID) {
		return s.Clone(), nil
	}

	if now == nil {
		now = time.Now
	}

	updated := s.Clone()
	participants := updated.Participants[:0]
	for _, p := range updated.Participants {
		if p.UserID != userID {
			participants = append(participants, p)
		}
	}
	updated.Participants = participants
	if updated.Status == StatusFull {
		updated.Status = StatusBooking
	}
	updated.UpdatedAt = now().UTC()
	return updated, nil
}

// Start moves a session with bookings to in-progress and marks it live.
func Start(s Session, now func() time.Time) (Session, error) {
	if s.Status != StatusBooking && s.Status != StatusFull {
		return Session{}, newStatusOpError(s.Status, "START")
	}
	updated, err := transition(s, StatusInProgress, now)
	if err != nil {
		return Session{}, err
	}
	updated.IsLive = true
	return updated, nil
}

// End completes an in-progress session, stamps the actual end time, and
// clears the live flag. Completed is terminal.
func End(s Session, now func() time.Time) (Session, error) {
	if s.Status != StatusInProgress {
		return Session{}, newStatusOpError(s.Status, "END")
	}
	updated, err := transition(s, StatusCompleted, now)
	if err != nil {
		return Session{}, err
	}
	updated.IsLive = false
	endedAt := updated.UpdatedAt
	updated.ActualEndTime = &endedAt
	return updated, nil
}

// CanEditContent reports whether content fields may still change.
func CanEditContent(s Session) error {
	switch s.Status {
	case StatusDraft, StatusPublished, StatusBooking:
		return nil
	default:
		return newStatusOpError(s.Status, "UPDATE")
	}
}

// CanDelete reports whether the session may still be removed.
func CanDelete(s Session) error {
	switch s.Status {
	case StatusDraft, StatusPublished, StatusBooking:
		return nil
	default:
		return newStatusOpError(s.Status, "DELETE")
	}
}

// transition applies a status change and stamps UpdatedAt.
func transition(s Session, target Status, now func() time.Time) (Session, error) {
	if now == nil {
		now = time.Now
	}
	if !isStatusTransitionAllowed(s.Status, target) {
		fromStatus := statusLabel(s.Status)
		toStatus := statusLabel(target)
		return Session{}, apperrors.WithMetadata(
			apperrors.CodeSessionInvalidStatusTransition,
			fmt.Sprintf("session status transition not allowed: %s -> %s", fromStatus, toStatus),
			map[string]string{"FromStatus": fromStatus, "ToStatus": toStatus},
		)
	}

	updated := s.Clone()
	updated.Status = target
	updated.UpdatedAt = now().UTC()
	return updated, nil
}

// missingPublishField returns the first publish-required field that is absent.
func missingPublishField(s Session) (string, bool) {
	switch {
	case s.Title == "":
		return "title", false
	case s.Description == "":
		return "description", false
	case s.StartTime.IsZero():
		return "start time", false
	case s.EndTime.IsZero():
		return "end time", false
	default:
		return "", true
	}
}

// newStatusOpError creates metadata for disallowed status/operation combinations.
func newStatusOpError(status Status, op string) *apperrors.Error {
	label := statusLabel(status)
	return apperrors.WithMetadata(
		apperrors.CodeSessionStatusDisallowsOp,
		fmt.Sprintf("session status %s does not allow operation %s", label, op),
		map[string]string{"Status": label, "Operation": op},
	)
}
