// internal/db/venues.go
package db

import "context"

const listVenues = `
SELECT id, name
FROM venues
ORDER BY name, id
`

func (q *Queries) ListVenues(ctx context.Context) ([]Venue, error) {
	rows, err := q.db.QueryContext(ctx, listVenues)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var venues []Venue
	for rows.Next() {
		var v Venue
		if err := rows.Scan(&v.ID, &v.Name); err != nil {
			return nil, err
		}
		venues = append(venues, v)
	}
	return venues, rows.Err()
}

const listCourts = `
SELECT c.id, c.venue_id, c.name, v.name AS venue_name
FROM courts c
JOIN venues v ON v.id = c.venue_id
ORDER BY v.name, c.name, c.id
`

type ListCourtsRow struct {
	ID        int64
	VenueID   int64
	Name      string
	VenueName string
}

// ListCourts returns all courts in a stable scan order: venue name first,
// then court name, then id. The planner relies on this order being
// deterministic.
func (q *Queries) ListCourts(ctx context.Context) ([]ListCourtsRow, error) {
	rows, err := q.db.QueryContext(ctx, listCourts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courts []ListCourtsRow
	for rows.Next() {
		var c ListCourtsRow
		if err := rows.Scan(&c.ID, &c.VenueID, &c.Name, &c.VenueName); err != nil {
			return nil, err
		}
		courts = append(courts, c)
	}
	return courts, rows.Err()
}

const getCourt = `
SELECT c.id, c.venue_id, c.name, v.name AS venue_name
FROM courts c
JOIN venues v ON v.id = c.venue_id
WHERE c.id = ?
`

func (q *Queries) GetCourt(ctx context.Context, id int64) (ListCourtsRow, error) {
	var c ListCourtsRow
	err := q.db.QueryRowContext(ctx, getCourt, id).Scan(&c.ID, &c.VenueID, &c.Name, &c.VenueName)
	return c, err
}
