package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"time"
)

// Event is one row of the append-only grade event log.
type Event struct {
	Offset    int64
	Type      string
	Key       string // natural key: studentID|assessmentID
	Actor     string
	DataJSON  string
	CreatedAt int64
}

// Repo appends grade lifecycle events. Write failures are logged and
// swallowed: auditing never fails a grade write.
type Repo struct{ db *sql.DB }

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) GradeEvent(ctx context.Context, typ, key, actorID string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte("{}")
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, actor, data, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		typ, key, actorID, string(data), time.Now().Unix())
	if err != nil {
		log.Printf("audit: append %s %s: %v", typ, key, err)
	}
}

// Recent returns the newest n events, for the admin activity view.
func (r *Repo) Recent(ctx context.Context, n int) ([]Event, error) {
	if n <= 0 || n > 500 {
		n = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT "offset", typ, key, actor, data, created_at FROM event_log
		 ORDER BY "offset" DESC LIMIT $1`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Offset, &e.Type, &e.Key, &e.Actor, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
