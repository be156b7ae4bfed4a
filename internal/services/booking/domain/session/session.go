// Package session holds the bookable activity entity and its lifecycle rules.
//
// All lifecycle functions are pure: they take a session value, return a new
// value or a typed error, and never apply a partial mutation. Serializing
// concurrent transitions for one session id is the storage layer's job.
package session

import (
	"strings"
	"time"

	apperrors "github.com/tableside/tableside/internal/platform/errors"
)

var (
	// ErrScheduleInvalid indicates an end time at or before the start time.
	ErrScheduleInvalid = apperrors.New(apperrors.CodeSessionScheduleInvalid, "session end time must be after start time")
	// ErrStartInPast indicates a start time that is not strictly in the future.
	ErrStartInPast = apperrors.New(apperrors.CodeSessionStartInPast, "session start time must be in the future")
	// ErrCapacityInvalid indicates a non-positive participant capacity.
	ErrCapacityInvalid = apperrors.New(apperrors.CodeSessionCapacityInvalid, "session capacity must be at least 1")
)

// Participant records one admitted seat.
type Participant struct {
	UserID   int64
	JoinedAt time.Time
}

// Session represents a schedulable group activity offered by a host.
//
// HostID, MaxParticipants, and the id are immutable after creation. Status
// and Participants are owned by the lifecycle functions in this package and
// must not be written directly by callers.
type Session struct {
	ID     int64
	HostID int64
	Status Status

	// Content fields, editable by the owning host while the session has
	// not started.
	Title       string
	Description string
	Cuisine     string
	Tags        []string
	Price       float64
	Rating      float64

	MaxParticipants int
	Participants    []Participant

	StartTime time.Time
	EndTime   time.Time
	// ActualEndTime is stamped by End and is nil until then.
	ActualEndTime *time.Time
	IsLive        bool

	// Views is a best-effort read counter, exempt from the strict
	// consistency rules that apply to participant state.
	Views int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateInput describes the fields needed to create a session.
type CreateInput struct {
	HostID          int64
	Title           string
	Description     string
	Cuisine         string
	Tags            []string
	Price           float64
	MaxParticipants int
	StartTime       time.Time
	EndTime         time.Time
}

// Create builds a new draft session with an assigned id and timestamps.
// The scheduling window must be coherent and start strictly in the future;
// content completeness is only enforced at publish time.
func Create(input CreateInput, now func() time.Time, nextID func() int64) (Session, error) {
	if now == nil {
		now = time.Now
	}

	createdAt := now().UTC()
	normalized, err := NormalizeCreateInput(input, createdAt)
	if err != nil {
		return Session{}, err
	}

	return Session{
		ID:              nextID(),
		HostID:          normalized.HostID,
		Status:          StatusDraft,
		Title:           normalized.Title,
		Description:     normalized.Description,
		Cuisine:         normalized.Cuisine,
		Tags:            normalized.Tags,
		Price:           normalized.Price,
		MaxParticipants: normalized.MaxParticipants,
		Participants:    nil,
		StartTime:       normalized.StartTime,
		EndTime:         normalized.EndTime,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}, nil
}

// NormalizeCreateInput trims and validates session creation input against
// the given reference time.
func NormalizeCreateInput(input CreateInput, now time.Time) (CreateInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Cuisine = strings.TrimSpace(input.Cuisine)
	if input.MaxParticipants < 1 {
		return CreateInput{}, ErrCapacityInvalid
	}
	if !input.EndTime.After(input.StartTime) {
		return CreateInput{}, ErrScheduleInvalid
	}
	if !input.StartTime.After(now) {
		return CreateInput{}, ErrStartInPast
	}
	if input.Tags != nil {
		tags := make([]string, 0, len(input.Tags))
		for _, tag := range input.Tags {
			tag = strings.TrimSpace(tag)
			if tag != "" {
				tags = append(tags, tag)
			}
		}
		input.Tags = tags
	}
	return input, nil
}

// HasParticipant reports whether the user currently holds a seat.
func (s Session) HasParticipant(userID int64) bool {
	for _, p := range s.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy safe to hand across goroutine boundaries.
func (s Session) Clone() Session {
	copied := s
	if s.Tags != nil {
		copied.Tags = append([]string(nil), s.Tags...)
	}
	if s.Participants != nil {
		copied.Participants = append([]Participant(nil), s.Participants...)
	}
	if s.ActualEndTime != nil {
		endedAt := *s.ActualEndTime
		copied.ActualEndTime = &endedAt
	}
	return copied
}
