// Package storage holds the two stateful stores the workflow reads and
// writes: the per-conversation session store with context compaction, and
// the long-term memory bank of teacher preferences.
package storage

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pedagogue-ai/pedagogue/pkg/models"
	"gopkg.in/yaml.v3"
)

// SessionStoreManager manages per-conversation rolling history. Records
// live in process memory only; a session id is created on its first turn
// and never shared across ids.
type SessionStoreManager interface {
	AppendTurn(sessionID string, req models.LessonRequest, planSummary string) error
	Context(sessionID string) (models.SessionContext, error)
	TurnCount(sessionID string) int
	SessionCount() int
	ExportSession(sessionID, path string) error
}

// sessionRecord is the mutable state for one session id, owned exclusively
// by the store.
type sessionRecord struct {
	mu        sync.Mutex
	sessionID string
	turns     []models.SessionTurn
	summary   models.CompactedSummary
	compacted bool
	size      int // running size counter over summary + retained turns
	nextIndex int
}

type inMemorySessionStore struct {
	mu       sync.RWMutex
	records  map[string]*sessionRecord
	maxSize  int // compaction threshold T
	retain   int // turns kept verbatim after compaction, K
	now      func() time.Time
}

// NewSessionStoreManager creates an in-memory session store. compactThreshold
// is the running-size bound T; retainTurns is the tail length K kept verbatim
// when a session is compacted.
func NewSessionStoreManager(compactThreshold, retainTurns int) SessionStoreManager {
	if compactThreshold < 1 {
		compactThreshold = 1
	}
	if retainTurns < 1 {
		retainTurns = 1
	}
	return &inMemorySessionStore{
		records: make(map[string]*sessionRecord),
		maxSize: compactThreshold,
		retain:  retainTurns,
		now:     time.Now,
	}
}

// record returns the session record for id, creating it on first use.
func (s *inMemorySessionStore) record(sessionID string) *sessionRecord {
	s.mu.RLock()
	rec, ok := s.records[sessionID]
	s.mu.RUnlock()
	if ok {
		return rec
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok = s.records[sessionID]; ok {
		return rec
	}
	rec = &sessionRecord{sessionID: sessionID, nextIndex: 1}
	s.records[sessionID] = rec
	return rec
}

// AppendTurn records one completed exchange. If the running size counter
// exceeds the threshold afterwards, the record is compacted synchronously
// before AppendTurn returns, so the retained context is always bounded.
func (s *inMemorySessionStore) AppendTurn(sessionID string, req models.LessonRequest, planSummary string) error {
	if sessionID == "" {
		return fmt.Errorf("appending turn: session id must not be empty")
	}

	rec := s.record(sessionID)
	rec.mu.Lock()
	defer rec.mu.Unlock()

	turn := models.SessionTurn{
		Index:       rec.nextIndex,
		Request:     req,
		PlanSummary: planSummary,
		Timestamp:   s.now(),
	}
	rec.nextIndex++
	rec.turns = append(rec.turns, turn)
	rec.size += turn.Size()

	if rec.size > s.maxSize {
		s.compact(rec)
	}
	return nil
}

// compact replaces all turns except the newest K with a lossy summary and
// resets the counter to the summary size plus the retained tail. The tail
// itself is never summarized, so a session whose newest K turns alone
// outweigh the threshold stays over it until more turns arrive to fold
// away; the bound trades exactness for keeping recent turns verbatim.
// Caller holds the record lock.
func (s *inMemorySessionStore) compact(rec *sessionRecord) {
	if len(rec.turns) <= s.retain {
		// Nothing older than the tail to fold away; the oversized tail is
		// retained as-is and will be summarized once enough turns exist.
		return
	}

	older := rec.turns[:len(rec.turns)-s.retain]
	tail := rec.turns[len(rec.turns)-s.retain:]

	rec.summary = models.CompactedSummary{
		Text:           summarizeTurns(rec.summary, older),
		TurnsCompacted: rec.summary.TurnsCompacted + len(older),
		CompactedAt:    s.now(),
	}
	rec.compacted = true
	rec.turns = append([]models.SessionTurn(nil), tail...)

	tailSize := 0
	for _, t := range rec.turns {
		tailSize += t.Size()
	}

	// The summary is lossy by design: trim it if summary + tail would still
	// exceed the threshold, so the retained size stays bounded.
	if budget := s.maxSize - tailSize; budget >= 0 && rec.summary.Size() > budget {
		runes := []rune(rec.summary.Text)
		rec.summary.Text = string(runes[:budget])
	}

	rec.size = rec.summary.Size() + tailSize
}

// summarizeTurns folds older turns (and any prior summary) into a short
// subject tally. Older detail is summarized, not retained verbatim.
func summarizeTurns(prev models.CompactedSummary, older []models.SessionTurn) string {
	counts := make(map[string]int)
	var order []string
	for _, t := range older {
		subj := t.Request.Subject
		if counts[subj] == 0 {
			order = append(order, subj)
		}
		counts[subj]++
	}
	sort.Strings(order)

	parts := make([]string, 0, len(order))
	for _, subj := range order {
		parts = append(parts, fmt.Sprintf("%s (%dx)", subj, counts[subj]))
	}

	total := prev.TurnsCompacted + len(older)
	text := fmt.Sprintf("Попередня розмова (%d запитів): %s", total, strings.Join(parts, ", "))
	if prev.Text != "" {
		// Earlier summaries already folded their subjects away; keep the
		// newest tally only, noting the combined count.
		return text
	}
	return text
}

// Context returns the bounded context for a session: the compacted summary
// (if any) plus the retained tail of turns, oldest first. Unknown sessions
// yield an empty context rather than an error.
func (s *inMemorySessionStore) Context(sessionID string) (models.SessionContext, error) {
	s.mu.RLock()
	rec, ok := s.records[sessionID]
	s.mu.RUnlock()
	if !ok {
		return models.SessionContext{SessionID: sessionID}, nil
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	turns := make([]models.SessionTurn, len(rec.turns))
	copy(turns, rec.turns)
	return models.SessionContext{
		SessionID: sessionID,
		Summary:   rec.summary,
		Compacted: rec.compacted,
		Turns:     turns,
	}, nil
}

// TurnCount returns the number of retained turns for a session (after any
// compaction). Unknown sessions count zero.
func (s *inMemorySessionStore) TurnCount(sessionID string) int {
	s.mu.RLock()
	rec, ok := s.records[sessionID]
	s.mu.RUnlock()
	if !ok {
		return 0
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return len(rec.turns)
}

// SessionCount returns how many distinct session ids the store has seen.
func (s *inMemorySessionStore) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// ExportSession writes a session's retained context to a YAML file.
func (s *inMemorySessionStore) ExportSession(sessionID, path string) error {
	ctx, err := s.Context(sessionID)
	if err != nil {
		return fmt.Errorf("exporting session %s: %w", sessionID, err)
	}
	if len(ctx.Turns) == 0 && !ctx.Compacted {
		return fmt.Errorf("exporting session %s: no turns recorded", sessionID)
	}

	data, err := yaml.Marshal(&ctx)
	if err != nil {
		return fmt.Errorf("exporting session %s: %w", sessionID, err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("exporting session %s: %w", sessionID, err)
	}
	return nil
}
