// internal/db/teams.go
package db

import "context"

const getTeam = `
SELECT id, name
FROM teams
WHERE id = ?
`

func (q *Queries) GetTeam(ctx context.Context, id int64) (Team, error) {
	var t Team
	err := q.db.QueryRowContext(ctx, getTeam, id).Scan(&t.ID, &t.Name)
	return t, err
}
