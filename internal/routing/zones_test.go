package routing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedZones map[[2]float64]string

func (z fixedZones) GetTimezoneName(lng, lat float64) string { return z[[2]float64{lng, lat}] }

func TestTimeZone_UsesGeocodedPoint(t *testing.T) {
	fb := newFakeBackend(t, "Ok")
	cfg := DefaultConfig()
	cfg.GeocoderEndpoint = fb.srv.URL
	cfg.Zones = fixedZones{{-9.1393, 38.7223}: "Europe/Lisbon"}
	c, err := NewClient(cfg, nil)
	require.NoError(t, err)

	loc, err := c.TimeZone(context.Background(), "Lisbon")
	require.NoError(t, err)
	assert.Equal(t, "Europe/Lisbon", loc.String())

	_, err = c.TimeZone(context.Background(), "Porto")
	assert.ErrorIs(t, err, ErrPlaceNotFound, "point outside every zone")

	_, err = c.TimeZone(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, ErrPlaceNotFound)
	assert.Equal(t, int32(3), fb.geocodeCalls.Load())
}

func TestTimeZone_BundledData(t *testing.T) {
	if testing.Short() {
		t.Skip("loads the bundled time zone data")
	}
	fb := newFakeBackend(t, "Ok")
	c := newTestClient(t, fb)

	loc, err := c.TimeZone(context.Background(), "Porto")
	require.NoError(t, err)
	assert.Equal(t, "Europe/Lisbon", loc.String())
}
