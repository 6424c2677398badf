package routing

import (
	"context"
	"fmt"
	"time"

	"github.com/ringsaturn/tzf"
	"go.uber.org/zap"
)

// ZoneFinder maps a coordinate to an IANA time zone name, or "" when the
// point lies in no zone.
type ZoneFinder interface {
	GetTimezoneName(lng, lat float64) string
}

// zoneFinder returns the configured finder, loading the bundled tzf data on
// first use.
func (c *Client) zoneFinder() (ZoneFinder, error) {
	c.zonesOnce.Do(func() {
		if c.cfg.Zones != nil {
			c.zones = c.cfg.Zones
			return
		}
		start := time.Now()
		c.zones, c.zonesErr = tzf.NewDefaultFinder()
		c.log.Debug("time zone data loaded", zap.Duration("took", time.Since(start)), zap.Error(c.zonesErr))
	})
	return c.zones, c.zonesErr
}

// TimeZone geocodes place and returns the time zone it lies in.
func (c *Client) TimeZone(ctx context.Context, place string) (*time.Location, error) {
	pt, err := c.geocode(ctx, place)
	if err != nil {
		return nil, err
	}
	finder, err := c.zoneFinder()
	if err != nil {
		return nil, fmt.Errorf("%w: loading time zones: %v", ErrUnavailable, err)
	}
	name := finder.GetTimezoneName(pt.Lon, pt.Lat)
	if name == "" {
		return nil, fmt.Errorf("%w: no time zone for %s", ErrPlaceNotFound, place)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading zone %s: %w", name, err)
	}
	return loc, nil
}
