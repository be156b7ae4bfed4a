package session

import "strings"

// Status describes the lifecycle state of a session.
type Status string

const (
	// StatusUnspecified represents an invalid status value.
	StatusUnspecified Status = ""
	// StatusDraft indicates a session being prepared by its host.
	StatusDraft Status = "draft"
	// StatusPublished indicates a session visible to participants with no bookings yet.
	StatusPublished Status = "published"
	// StatusBooking indicates a session with at least one participant and open seats.
	StatusBooking Status = "booking"
	// StatusFull indicates a session whose capacity is exhausted.
	StatusFull Status = "full"
	// StatusInProgress indicates a session the host has started.
	StatusInProgress Status = "in-progress"
	// StatusCompleted indicates a session the host has ended. Terminal.
	StatusCompleted Status = "completed"
)

// ParseStatus canonicalizes a status label.
func ParseStatus(value string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "draft":
		return StatusDraft, true
	case "published":
		return StatusPublished, true
	case "booking":
		return StatusBooking, true
	case "full":
		return StatusFull, true
	case "in-progress", "in_progress":
		return StatusInProgress, true
	case "completed":
		return StatusCompleted, true
	default:
		return StatusUnspecified, false
	}
}

// isStatusTransitionAllowed enforces valid session lifecycle transitions.
// Published reaches booking or full through joins, never through a direct
// host action; completed is terminal.
func isStatusTransitionAllowed(from, to Status) bool {
	switch from {
	case StatusDraft:
		return to == StatusPublished
	case StatusPublished:
		return to == StatusBooking || to == StatusFull
	case StatusBooking:
		return to == StatusFull || to == StatusInProgress
	case StatusFull:
		return to == StatusBooking || to == StatusInProgress
	case StatusInProgress:
		return to == StatusCompleted
	default:
		return false
	}
}

// statusLabel returns a stable label for a session status.
func statusLabel(status Status) string {
	switch status {
	case StatusDraft:
		return "DRAFT"
	case StatusPublished:
		return "PUBLISHED"
	case StatusBooking:
		return "BOOKING"
	case StatusFull:
		return "FULL"
	case StatusInProgress:
		return "IN_PROGRESS"
	case StatusCompleted:
		return "COMPLETED"
	default:
		return "UNSPECIFIED"
	}
}
