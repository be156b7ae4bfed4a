package session

import (
	"strings"
	"time"
)

// ContentPatch is an explicit partial update of caller-editable content
// fields. Lifecycle-owned state (status, participants, host, capacity,
// views) is deliberately absent so it cannot be set through an update.
type ContentPatch struct {
	Title       *string
	Description *string
	Cuisine     *string
	Tags        *[]string
	Price       *float64
	Rating      *float64
	StartTime   *time.Time
	EndTime     *time.Time
}

// IsZero reports whether the patch changes nothing.
func (p ContentPatch) IsZero() bool {
	return p.Title == nil &&
		p.Description == nil &&
		p.Cuisine == nil &&
		p.Tags == nil &&
		p.Price == nil &&
		p.Rating == nil &&
		p.StartTime == nil &&
		p.EndTime == nil
}

// ApplyPatch applies a content patch and stamps UpdatedAt. The session must
// not have started, and a patched scheduling window must stay coherent.
func ApplyPatch(s Session, patch ContentPatch, now func() time.Time) (Session, error) {
	if err := CanEditContent(s); err != nil {
		return Session{}, err
	}
	if now == nil {
		now = time.Now
	}

	updated := s.Clone()
	if patch.Title != nil {
		updated.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		updated.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Cuisine != nil {
		updated.Cuisine = strings.TrimSpace(*patch.Cuisine)
	}
	if patch.Tags != nil {
		tags := make([]string, 0, len(*patch.Tags))
		for _, tag := range *patch.Tags {
			tag = strings.TrimSpace(tag)
			if tag != "" {
				tags = append(tags, tag)
			}
		}
		updated.Tags = tags
	}
	if patch.Price != nil {
		updated.Price = *patch.Price
	}
	if patch.Rating != nil {
		updated.Rating = *patch.Rating
	}
	if patch.StartTime != nil {
		updated.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		updated.EndTime = *patch.EndTime
	}

	if !updated.EndTime.After(updated.StartTime) {
		return Session{}, ErrScheduleInvalid
	}

	updated.UpdatedAt = now().UTC()
	return updated, nil
}
