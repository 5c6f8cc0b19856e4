package storage

import (
	"fmt"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/pedagogue-ai/pedagogue/pkg/models"
)

// *For any* sequence of appended turns, the retained context SHALL stay
// within the compaction threshold, except when the verbatim tail alone
// already exceeds it — in which case no more than the tail is retained.
func TestPropertySessionSizeBounded(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		threshold := rapid.IntRange(20, 300).Draw(rt, "threshold")
		retain := rapid.IntRange(1, 6).Draw(rt, "retain")
		store := NewSessionStoreManager(threshold, retain)

		subjects := []string{"Математика", "Історія", "Біологія"}
		numTurns := rapid.IntRange(1, 30).Draw(rt, "numTurns")

		for i := 0; i < numTurns; i++ {
			subject := rapid.SampledFrom(subjects).Draw(rt, fmt.Sprintf("subject_%d", i))
			summaryLen := rapid.IntRange(0, 80).Draw(rt, fmt.Sprintf("summaryLen_%d", i))
			req := models.LessonRequest{
				Grade:           5,
				Subject:         subject,
				Topic:           fmt.Sprintf("Тема %d", i),
				DurationMinutes: 45,
			}
			if err := store.AppendTurn("s", req, strings.Repeat("п", summaryLen)); err != nil {
				rt.Fatalf("AppendTurn failed: %v", err)
			}

			ctx, err := store.Context("s")
			if err != nil {
				rt.Fatalf("Context failed: %v", err)
			}
			if len(ctx.Turns) > i+1 {
				rt.Fatalf("more turns retained than appended: %d > %d", len(ctx.Turns), i+1)
			}

			size := contextSize(ctx)
			if size > threshold && len(ctx.Turns) > retain {
				rt.Fatalf("after %d appends: size %d > threshold %d with %d retained turns (retain %d)",
					i+1, size, threshold, len(ctx.Turns), retain)
			}
		}
	})
}

// *For any* compacted session, the retained turns SHALL be the newest ones
// in their original order with their original indexes.
func TestPropertyCompactionPreservesNewestTurns(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		retain := rapid.IntRange(1, 4).Draw(rt, "retain")
		store := NewSessionStoreManager(50, retain)

		numTurns := rapid.IntRange(retain+1, 20).Draw(rt, "numTurns")
		for i := 0; i < numTurns; i++ {
			req := models.LessonRequest{
				Grade:           5,
				Subject:         "Математика",
				Topic:           fmt.Sprintf("Тема номер %d", i),
				DurationMinutes: 45,
			}
			if err := store.AppendTurn("s", req, "достатньо довгий підсумок плану"); err != nil {
				rt.Fatalf("AppendTurn failed: %v", err)
			}
		}

		ctx, _ := store.Context("s")
		if !ctx.Compacted {
			rt.Skip("sequence never crossed the threshold")
		}

		n := len(ctx.Turns)
		for i, turn := range ctx.Turns {
			wantIndex := numTurns - n + i + 1
			if turn.Index != wantIndex {
				rt.Fatalf("retained turn %d has index %d, want %d", i, turn.Index, wantIndex)
			}
			wantTopic := fmt.Sprintf("Тема номер %d", wantIndex-1)
			if turn.Request.Topic != wantTopic {
				rt.Fatalf("retained turn %d topic %q, want %q", i, turn.Request.Topic, wantTopic)
			}
		}
	})
}
