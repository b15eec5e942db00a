package store

import (
	"context"
	"log"

	"github.com/ayusman/bodyplay/internal/engine"
)

// Reporter saves finished attempts as sessions of the configured player.
type Reporter struct {
	store *Store
}

// NewReporter returns a Reporter backed by s.
func NewReporter(s *Store) *Reporter {
	return &Reporter{store: s}
}

// Report implements engine.Reporter.
func (r *Reporter) Report(ctx context.Context, res engine.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s := SessionFromResult(r.store.PlayerName(), res)
	if err := r.store.Sessions().Create(s); err != nil {
		return err
	}

	log.Printf("Saved %s session %s (score %d)", s.GameType, s.ID, s.Score)
	for _, a := range s.Unlocked {
		log.Printf("Achievement unlocked for %s: %s", s.Player, a)
	}
	return nil
}

// SessionFromResult converts an engine result into an unsaved session.
func SessionFromResult(player string, res engine.Result) *Session {
	return &Session{
		Player:   player,
		GameType: res.GameType.String(),
		Score:    res.Score,
		Duration: res.DurationSeconds,
		Accuracy: res.Accuracy,
		Metadata: res.Metadata,
	}
}
