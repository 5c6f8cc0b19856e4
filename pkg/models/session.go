package models

import "time"

// SessionTurn is one request/response exchange within a conversation
// session: the lesson request plus a short summary of the produced
// artifact.
type SessionTurn struct {
	Index       int           `yaml:"index"`
	Request     LessonRequest `yaml:"request"`
	PlanSummary string        `yaml:"plan_summary"`
	Timestamp   time.Time     `yaml:"timestamp"`
}

// Size is the turn's contribution to the session's running size counter,
// measured in runes of retained text.
func (t SessionTurn) Size() int {
	return len([]rune(t.Request.Subject)) +
		len([]rune(t.Request.Topic)) +
		len([]rune(t.PlanSummary))
}

// CompactedSummary replaces older turns once a session outgrows the
// compaction threshold. Compaction is lossy: older detail is summarized,
// not retained verbatim.
type CompactedSummary struct {
	Text           string    `yaml:"text"`
	TurnsCompacted int       `yaml:"turns_compacted"`
	CompactedAt    time.Time `yaml:"compacted_at"`
}

// Size is the summary's contribution to the running size counter.
func (s CompactedSummary) Size() int {
	return len([]rune(s.Text))
}

// SessionContext is the bounded conversational context handed to the
// content-generation stage: the compacted summary (if any) followed by the
// retained tail of recent turns, oldest first.
type SessionContext struct {
	SessionID string           `yaml:"session_id"`
	Summary   CompactedSummary `yaml:"summary"`
	Compacted bool             `yaml:"compacted"`
	Turns     []SessionTurn    `yaml:"turns"`
}
