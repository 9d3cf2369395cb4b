// internal/db/events.go
package db

import "context"

const listEvents = `
SELECT id, name, start_date, end_date
FROM events
ORDER BY start_date, id
`

func (q *Queries) ListEvents(ctx context.Context) ([]Event, error) {
	rows, err := q.db.QueryContext(ctx, listEvents)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Name, &e.StartDate, &e.EndDate); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

const getEvent = `
SELECT id, name, start_date, end_date
FROM events
WHERE id = ?
`

func (q *Queries) GetEvent(ctx context.Context, id int64) (Event, error) {
	var e Event
	err := q.db.QueryRowContext(ctx, getEvent, id).Scan(&e.ID, &e.Name, &e.StartDate, &e.EndDate)
	return e, err
}
