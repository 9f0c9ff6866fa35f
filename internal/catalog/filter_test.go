package catalog

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func sampleProducts() []Product {
	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	return []Product{
		{ID: "p1", Name: "Arduino Uno", Category: "Boards", Description: "ATmega328 board", CreatedAt: base},
		{ID: "p2", Name: "Resistor Kit", Category: "passives", Description: "600 pieces", CreatedAt: base.Add(time.Hour)},
		{ID: "p3", Name: "ESP32 DevKit", Category: "boards", Description: "WiFi + BLE", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "p4", Name: "Breadboard", Category: "Tools", Description: "830 tie points for boards", CreatedAt: base.Add(3 * time.Hour)},
	}
}

func ids(ps []Product) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestFilterApply(t *testing.T) {
	ps := sampleProducts()
	cases := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"zero filter keeps everything", Filter{}, []string{"p1", "p2", "p3", "p4"}},
		{"all is no filter", Filter{Category: "ALL"}, []string{"p1", "p2", "p3", "p4"}},
		{"category is case-insensitive exact", Filter{Category: "BOARDS"}, []string{"p1", "p3"}},
		{"category does not substring", Filter{Category: "board"}, []string{}},
		{"query matches name", Filter{Query: "  esp32 "}, []string{"p3"}},
		{"query matches description and category", Filter{Query: "boards"}, []string{"p1", "p3", "p4"}},
		{"category AND query", Filter{Category: "tools", Query: "board"}, []string{"p4"}},
		{"no match", Filter{Query: "capacitor"}, []string{}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, ids(c.filter.Apply(ps)))
		})
	}
}

func TestFeaturedNewestFirstWithoutMutating(t *testing.T) {
	ps := sampleProducts()
	got := Featured(ps, 2)
	assert.Equal(t, []string{"p4", "p3"}, ids(got))
	assert.Equal(t, []string{"p1", "p2", "p3", "p4"}, ids(ps))
	assert.Len(t, Featured(ps, 8), 4)
}

func TestIsNew(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	assert.True(t, IsNew(Product{CreatedAt: now.Add(-6 * 24 * time.Hour)}, now))
	assert.False(t, IsNew(Product{CreatedAt: now.Add(-8 * 24 * time.Hour)}, now))
	assert.False(t, IsNew(Product{}, now))
}

func TestCategories(t *testing.T) {
	got := Categories(sampleProducts())
	assert.Equal(t, []CategoryCount{
		{Name: "Boards", Count: 2},
		{Name: "passives", Count: 1},
		{Name: "Tools", Count: 1},
	}, got)
}

func TestProductJSONUsesMillis(t *testing.T) {
	at := time.UnixMilli(1760000000123).UTC()
	p := Product{ID: "p1", Name: "LED", Price: decimal.RequireFromString("2.5"), CreatedAt: at, UpdatedAt: at, ImagePublicID: "secret"}

	b, err := p.MarshalJSON()
	assert.NoError(t, err)
	assert.Contains(t, string(b), `"created_at":1760000000123`)
	assert.NotContains(t, string(b), "secret")

	var back Product
	assert.NoError(t, back.UnmarshalJSON(b))
	assert.True(t, at.Equal(back.CreatedAt))
	assert.True(t, p.Price.Equal(back.Price))
}
