package enquiries

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ariefcatur/go-storefront/internal/postgres/pgtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListNewestFirst(t *testing.T) {
	db := pgtest.Start(t)
	ctx := context.Background()

	now := time.Now().UTC()
	_, err := db.Exec(ctx, `
		INSERT INTO enquiries (id, name, subject, message, created_at) VALUES
		('e1', 'Ravi', 'Bulk order', 'Need 50 boards', $1),
		('e2', '', '', 'Do you ship abroad?', $2)`,
		now.Add(-time.Hour), now)
	require.NoError(t, err)

	es, err := (&Repo{DB: db}).List(ctx)
	require.NoError(t, err)
	require.Len(t, es, 2)
	assert.Equal(t, "e2", es[0].ID)
	assert.Equal(t, "Ravi", es[1].Name)
	assert.False(t, es[1].CreatedAt.IsZero())
}

func TestEnquiryJSONTimestamp(t *testing.T) {
	at := time.UnixMilli(1700000000000)
	b, err := json.Marshal(Enquiry{ID: "e1", CreatedAt: at})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"timestamp":1700000000000`)
}
