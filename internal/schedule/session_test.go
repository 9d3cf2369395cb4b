package schedule

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSessionMoveCommits(t *testing.T) {
	engine, database := newTestEngine(t)
	eventID := seedFixture(t, database)
	gameID := seedGame(t, database, eventID, 1, 2, "pool")

	session := NewPlacementSession(engine)
	session.Track(gameID, nil)

	start := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	if err := session.Move(context.Background(), gameID, 1, start); err != nil {
		t.Fatalf("move: %v", err)
	}

	position := session.Position(gameID)
	if position == nil {
		t.Fatal("board shows no position after successful move")
	}
	if position.CourtID != 1 || !position.StartAt.Equal(start) {
		t.Errorf("board position = %+v", position)
	}
}

// Dropping a game onto an occupied cell rejects the commit and the board
// rolls back to where the game was before the drop.
func TestSessionMoveRollsBackOnRejection(t *testing.T) {
	engine, database := newTestEngine(t)
	eventID := seedFixture(t, database)
	blocker := seedGame(t, database, eventID, 1, 2, "pool")
	gameID := seedGame(t, database, eventID, 3, 4, "pool")

	ctx := context.Background()
	occupied := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	if _, err := engine.PlaceGame(ctx, blocker, 1, occupied); err != nil {
		t.Fatalf("place blocker: %v", err)
	}

	session := NewPlacementSession(engine)
	prior := &BoardPosition{CourtID: 2, StartAt: time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)}
	session.Track(gameID, prior)

	err := session.Move(ctx, gameID, 1, occupied)
	var violation *Violation
	if !errors.As(err, &violation) {
		t.Fatalf("err = %v, want Violation", err)
	}
	if violation.Code != ReasonCourtConflict {
		t.Errorf("Code = %s, want %s", violation.Code, ReasonCourtConflict)
	}

	position := session.Position(gameID)
	if position != prior {
		t.Errorf("board position = %+v, want rollback to %+v", position, prior)
	}
}

func TestSessionMoveRollsBackToUnscheduled(t *testing.T) {
	engine, database := newTestEngine(t)
	eventID := seedFixture(t, database)
	blocker := seedGame(t, database, eventID, 1, 2, "pool")
	gameID := seedGame(t, database, eventID, 3, 4, "pool")

	ctx := context.Background()
	occupied := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	if _, err := engine.PlaceGame(ctx, blocker, 1, occupied); err != nil {
		t.Fatalf("place blocker: %v", err)
	}

	session := NewPlacementSession(engine)
	session.Track(gameID, nil)

	if err := session.Move(ctx, gameID, 1, occupied); err == nil {
		t.Fatal("expected rejection")
	}
	if position := session.Position(gameID); position != nil {
		t.Errorf("board position = %+v, want nil (unscheduled)", position)
	}
}

func TestSessionRemove(t *testing.T) {
	engine, database := newTestEngine(t)
	eventID := seedFixture(t, database)
	gameID := seedGame(t, database, eventID, 1, 2, "pool")

	ctx := context.Background()
	start := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	if _, err := engine.PlaceGame(ctx, gameID, 1, start); err != nil {
		t.Fatalf("place: %v", err)
	}

	session := NewPlacementSession(engine)
	session.Track(gameID, &BoardPosition{CourtID: 1, StartAt: start})

	if err := session.Remove(ctx, gameID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if position := session.Position(gameID); position != nil {
		t.Errorf("board position = %+v, want nil", position)
	}

	game, err := database.Queries.GetGame(ctx, gameID)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if game.ScheduledAt.Valid {
		t.Errorf("game still scheduled: %+v", game)
	}
}
