// internal/schedule/session.go
package schedule

import (
	"context"
	"time"
)

// BoardPosition is where a game currently sits on the scheduling board. A nil
// position means the game is in the unscheduled pool.
type BoardPosition struct {
	CourtID int64
	StartAt time.Time
}

// PlacementSession models the interactive drag workflow for one operator's
// board: a drop updates the board optimistically, the engine validates the
// commit, and a rejection rolls the board back so it never shows a placement
// the server refused. The session is request-scoped state owned by the
// caller; the engine itself stays stateless.
type PlacementSession struct {
	engine *Engine
	board  map[int64]*BoardPosition
}

func NewPlacementSession(engine *Engine) *PlacementSession {
	return &PlacementSession{
		engine: engine,
		board:  make(map[int64]*BoardPosition),
	}
}

// Track seeds the board with a game's current position. Pass nil for an
// unscheduled game.
func (s *PlacementSession) Track(gameID int64, position *BoardPosition) {
	s.board[gameID] = position
}

// Position reports where the board currently shows a game.
func (s *PlacementSession) Position(gameID int64) *BoardPosition {
	return s.board[gameID]
}

// Move drops a game onto a (court, start) cell. The board updates
// immediately; if the engine rejects the commit, the board rolls back to the
// pre-drop position and the rejection is returned for the caller to surface.
func (s *PlacementSession) Move(ctx context.Context, gameID, courtID int64, startAt time.Time) error {
	previous := s.board[gameID]
	s.board[gameID] = &BoardPosition{CourtID: courtID, StartAt: startAt}

	if _, err := s.engine.PlaceGame(ctx, gameID, courtID, startAt); err != nil {
		s.board[gameID] = previous
		return err
	}
	return nil
}

// Remove returns a game to the unscheduled pool. Clearing has no constraints,
// but the board still rolls back if the engine call fails.
func (s *PlacementSession) Remove(ctx context.Context, gameID int64) error {
	previous := s.board[gameID]
	s.board[gameID] = nil

	if err := s.engine.UnscheduleGame(ctx, gameID); err != nil {
		s.board[gameID] = previous
		return err
	}
	return nil
}
