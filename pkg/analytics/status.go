package analytics

// Status is the lifecycle state of a session:
// started -> in_progress* -> completed | dropped_off
type Status string

const (
	StatusStarted    Status = "started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusDroppedOff Status = "dropped_off"
)

// SessionStatus derives the lifecycle state from a search record.
// Completion wins over a drop-off recorded earlier in the same session.
func SessionStatus(s Search) Status {
	switch {
	case s.IsCompleted:
		return StatusCompleted
	case s.DroppedOffAt != nil:
		return StatusDroppedOff
	case s.CurrentStep > 1:
		return StatusInProgress
	default:
		return StatusStarted
	}
}
