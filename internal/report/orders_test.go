package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

func TestOrdersSheet(t *testing.T) {
	at := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	in := []orders.Order{{
		ID:        "o1",
		UserEmail: "asha@example.com",
		Items: []orders.Item{
			{ProductID: "p1", Name: "Uno", Price: decimal.NewFromInt(100), Quantity: 2},
			{ProductID: "p2", Name: "Servo", Price: decimal.NewFromInt(50), Quantity: 1},
		},
		Subtotal:  decimal.NewFromInt(250),
		Shipping:  decimal.NewFromInt(50),
		Total:     decimal.NewFromInt(300),
		Status:    orders.StatusPending,
		CreatedAt: at,
	}}

	var buf bytes.Buffer
	require.NoError(t, Orders(&buf, in))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)
	sheet := f.Sheets[0]
	assert.Equal(t, "Orders", sheet.Name)
	require.Len(t, sheet.Rows, 2)

	row := sheet.Rows[1]
	assert.Equal(t, "o1", row.Cells[0].String())
	assert.Equal(t, "Uno x2, Servo x1", row.Cells[2].String())
	assert.Equal(t, "3", row.Cells[3].String())
	assert.Equal(t, "300.00", row.Cells[6].String())
	assert.Equal(t, "2026-10-18 09:30:00", row.Cells[8].String())
}
