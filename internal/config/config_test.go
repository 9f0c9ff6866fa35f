package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("FREE_SHIPPING_OVER", "")
	t.Setenv("CART_TTL", "")

	cfg := Load()
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "500", cfg.Shop.FreeShippingOver.String())
	assert.Equal(t, "50", cfg.Shop.ShippingFee.String())
	assert.Equal(t, 30*24*time.Hour, cfg.Shop.CartTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " k1:9092, ,k2:9092 ")
	t.Setenv("SHIPPING_FEE", "75.50")
	t.Setenv("LOW_STOCK_THRESHOLD", "3")

	cfg := Load()
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "75.5", cfg.Shop.ShippingFee.String())
	assert.Equal(t, 3, cfg.Shop.LowStockThreshold)
}

func TestLoadInvalidFallsBack(t *testing.T) {
	t.Setenv("SHIPPING_FEE", "-1")
	t.Setenv("CART_TTL", "forever")
	t.Setenv("LOW_STOCK_THRESHOLD", "x")

	cfg := Load()
	assert.Equal(t, "50", cfg.Shop.ShippingFee.String())
	assert.Equal(t, 30*24*time.Hour, cfg.Shop.CartTTL)
	assert.Equal(t, 5, cfg.Shop.LowStockThreshold)
}
