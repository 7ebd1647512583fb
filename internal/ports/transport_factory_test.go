package ports_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridgeline/docxmit/internal/model"
	"github.com/ridgeline/docxmit/internal/ports"
)

func TestNewTransportPickup(t *testing.T) {
	cfg := model.TransportConfig{Kind: "pickup", Dir: filepath.Join(t.TempDir(), "drop")}
	transport, err := ports.NewTransport(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, transport)
	assert.IsType(t, &ports.PickupTransport{}, transport)
}

func TestNewTransportEmailNeverDialsAtConstruction(t *testing.T) {
	cfg := model.TransportConfig{Kind: "email", Host: "mail.example.invalid", Port: 25, User: "carrier@example.com"}
	transport, err := ports.NewTransport(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &ports.SMTPTransport{}, transport)
}

func TestNewTransportUnknownKindErrors(t *testing.T) {
	cfg := model.TransportConfig{Kind: "carrier-pigeon"}
	_, err := ports.NewTransport(context.Background(), cfg)
	assert.ErrorContains(t, err, "unknown transport kind")
}

func TestNewTransportWrapsWithRateLimitWhenConfigured(t *testing.T) {
	cfg := model.TransportConfig{Kind: "pickup", Dir: filepath.Join(t.TempDir(), "drop"), RateHz: 5}
	transport, err := ports.NewTransport(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &ports.RateLimitedTransport{}, transport)
}

func TestNewTransportNoRateLimitReturnsUnwrapped(t *testing.T) {
	cfg := model.TransportConfig{Kind: "pickup", Dir: filepath.Join(t.TempDir(), "drop")}
	transport, err := ports.NewTransport(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &ports.PickupTransport{}, transport)
}
