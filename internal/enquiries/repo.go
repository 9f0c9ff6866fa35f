// Package enquiries reads customer contact messages. Submissions arrive from
// outside this service; it only lists them.
package enquiries

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Enquiry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"-"`
}

// MarshalJSON carries CreatedAt as epoch milliseconds in "timestamp".
func (e Enquiry) MarshalJSON() ([]byte, error) {
	type plain Enquiry
	var ms int64
	if !e.CreatedAt.IsZero() {
		ms = e.CreatedAt.UnixMilli()
	}
	return json.Marshal(struct {
		plain
		Timestamp int64 `json:"timestamp"`
	}{plain(e), ms})
}

type Repo struct{ DB *pgxpool.Pool }

// List returns every enquiry, newest first.
func (r *Repo) List(ctx context.Context) ([]Enquiry, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, email, phone, subject, message, created_at
		FROM enquiries ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list enquiries: %w", err)
	}
	defer rows.Close()

	out := []Enquiry{}
	for rows.Next() {
		var e Enquiry
		if err := rows.Scan(&e.ID, &e.Name, &e.Email, &e.Phone, &e.Subject, &e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
