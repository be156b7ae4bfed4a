package httpapi

import (
	"fmt"
	"time"

	"github.com/tableside/tableside/internal/services/booking/domain/session"
	"github.com/tableside/tableside/internal/services/booking/domain/user"
)

// rfc3339 is a time.Time that marshals as an RFC 3339 string and rejects
// anything else on input.
type rfc3339 struct {
	time.Time
}

func (t rfc3339) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", t.UTC().Format(time.RFC3339))), nil
}

func (t *rfc3339) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return fmt.Errorf("timestamp must be an RFC 3339 string")
	}
	parsed, err := time.Parse(time.RFC3339, raw[1:len(raw)-1])
	if err != nil {
		return fmt.Errorf("parse timestamp: %w", err)
	}
	t.Time = parsed
	return nil
}

type userResponse struct {
	ID             int64   `json:"id"`
	Role           string  `json:"role"`
	DisplayName    string  `json:"display_name"`
	Email          string  `json:"email,omitempty"`
	Bio            string  `json:"bio,omitempty"`
	Rating         float64 `json:"rating"`
	SessionsHosted int     `json:"sessions_hosted"`
	CreatedAt      rfc3339 `json:"created_at"`
	UpdatedAt      rfc3339 `json:"updated_at"`
}

func toUserResponse(u user.User) userResponse {
	return userResponse{
		ID:             u.ID,
		Role:           string(u.Role),
		DisplayName:    u.DisplayName,
		Email:          u.Email,
		Bio:            u.Bio,
		Rating:         u.Rating,
		SessionsHosted: u.SessionsHosted,
		CreatedAt:      rfc3339{u.CreatedAt},
		UpdatedAt:      rfc3339{u.UpdatedAt},
	}
}

type participantResponse struct {
	UserID   int64   `json:"user_id"`
	JoinedAt rfc3339 `json:"joined_at"`
}

type sessionResponse struct {
	ID                  int64                 `json:"id"`
	HostID              int64                 `json:"host_id"`
	Status              string                `json:"status"`
	Title               string                `json:"title"`
	Description         string                `json:"description,omitempty"`
	Cuisine             string                `json:"cuisine,omitempty"`
	Tags                []string              `json:"tags,omitempty"`
	Price               float64               `json:"price"`
	Rating              float64               `json:"rating"`
	MaxParticipants     int                   `json:"max_participants"`
	CurrentParticipants int                   `json:"current_participants"`
	Participants        []participantResponse `json:"participants,omitempty"`
	StartTime           rfc3339               `json:"start_time"`
	EndTime             rfc3339               `json:"end_time"`
	ActualEndTime       *rfc3339              `json:"actual_end_time,omitempty"`
	IsLive              bool                  `json:"is_live"`
	Views               int64                 `json:"views"`
	CreatedAt           rfc3339               `json:"created_at"`
	UpdatedAt           rfc3339               `json:"updated_at"`
}

func toSessionResponse(s session.Session) sessionResponse {
	resp := sessionResponse{
		ID:                  s.ID,
		HostID:              s.HostID,
		Status:              string(s.Status),
		Title:               s.Title,
		Description:         s.Description,
		Cuisine:             s.Cuisine,
		Tags:                s.Tags,
		Price:               s.Price,
		Rating:              s.Rating,
		MaxParticipants:     s.MaxParticipants,
		CurrentParticipants: len(s.Participants),
		StartTime:           rfc3339{s.StartTime},
		EndTime:             rfc3339{s.EndTime},
		IsLive:              s.IsLive,
		Views:               s.Views,
		CreatedAt:           rfc3339{s.CreatedAt},
		UpdatedAt:           rfc3339{s.UpdatedAt},
	}
	for _, p := range s.Participants {
		resp.Participants = append(resp.Participants, participantResponse{
			UserID:   p.UserID,
			JoinedAt: rfc3339{p.JoinedAt},
		})
	}
	if s.ActualEndTime != nil {
		resp.ActualEndTime = &rfc3339{*s.ActualEndTime}
	}
	return resp
}

type listSessionsResponse struct {
	Sessions []sessionResponse `json:"sessions"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
	Pages    int               `json:"pages"`
}

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}
