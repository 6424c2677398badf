// Package routing estimates driving distance and time between two places for
// road-trip pacing, and finds the time zone of a destination. It geocodes with
// a Nominatim-compatible service and routes with an OSRM-compatible service;
// both lookups are cached.
package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alexanderramin/itinera/internal/domain"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrPlaceNotFound indicates the geocoder had no match for a place name.
	ErrPlaceNotFound = errors.New("place not found")

	// ErrNoRoute indicates the router found no drivable route.
	ErrNoRoute = errors.New("no route between places")

	// ErrUnavailable indicates a routing or geocoding backend failed.
	ErrUnavailable = errors.New("routing service unavailable")
)

// Route is a driving estimate between two places.
type Route struct {
	DistanceKm float64
	Duration   time.Duration
}

// Hours returns the duration in fractional hours.
func (r Route) Hours() float64 { return r.Duration.Hours() }

// RouteService resolves driving routes. Callers treat every error as "no
// route information" and continue without it.
type RouteService interface {
	GetDrivingRoute(ctx context.Context, origin, destination string, style domain.TravelStyle) (*Route, error)
}

// Config configures the HTTP route service.
type Config struct {
	Endpoint         string // OSRM base URL
	GeocoderEndpoint string // Nominatim base URL
	UserAgent        string
	CacheSize        int
	Timeout          time.Duration
	// Zones overrides the bundled time zone data.
	Zones ZoneFinder
}

// DefaultConfig points at the public OSRM and Nominatim demo servers.
func DefaultConfig() Config {
	return Config{
		Endpoint:         "https://router.project-osrm.org",
		GeocoderEndpoint: "https://nominatim.openstreetmap.org",
		UserAgent:        "itinera/1.0",
		CacheSize:        256,
		Timeout:          8 * time.Second,
	}
}

type coord struct {
	Lat, Lon float64
}

// Client is the HTTP RouteService.
type Client struct {
	cfg    Config
	http   *http.Client
	log    *zap.Logger
	places *lru.Cache[string, coord]
	routes *lru.Cache[string, Route]

	zonesOnce sync.Once
	zones     ZoneFinder
	zonesErr  error
}

// NewClient creates a route service. log may be nil.
func NewClient(cfg Config, log *zap.Logger) (*Client, error) {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultConfig().CacheSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	places, err := lru.New[string, coord](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating place cache: %w", err)
	}
	routes, err := lru.New[string, Route](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating route cache: %w", err)
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		log:    log,
		places: places,
		routes: routes,
	}, nil
}

// styleFactor stretches car estimates for slower vehicles.
func styleFactor(style domain.TravelStyle) float64 {
	switch style {
	case domain.StyleRVTrip:
		return 1.2
	case domain.StyleMotorcycle:
		return 1.1
	default:
		return 1.0
	}
}

// GetDrivingRoute returns the driving route from origin to destination, with
// the duration adjusted for the vehicle implied by style.
func (c *Client) GetDrivingRoute(ctx context.Context, origin, destination string, style domain.TravelStyle) (*Route, error) {
	key := cacheKey(origin) + "|" + cacheKey(destination)
	base, ok := c.routes.Get(key)
	if !ok {
		var from, to coord
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			from, err = c.geocode(gctx, origin)
			return err
		})
		g.Go(func() (err error) {
			to, err = c.geocode(gctx, destination)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		var err error
		base, err = c.route(ctx, from, to)
		if err != nil {
			return nil, err
		}
		c.routes.Add(key, base)
	}

	r := base
	r.Duration = time.Duration(float64(base.Duration) * styleFactor(style))
	c.log.Debug("route resolved",
		zap.String("origin", origin),
		zap.String("destination", destination),
		zap.Float64("distance_km", r.DistanceKm),
		zap.Duration("duration", r.Duration),
		zap.Bool("cached", ok))
	return &r, nil
}

func cacheKey(place string) string {
	return strings.ToLower(strings.Join(strings.Fields(place), " "))
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (c *Client) geocode(ctx context.Context, place string) (coord, error) {
	key := cacheKey(place)
	if key == "" {
		return coord{}, fmt.Errorf("%w: empty place name", ErrPlaceNotFound)
	}
	if pt, ok := c.places.Get(key); ok {
		return pt, nil
	}

	q := url.Values{}
	q.Set("q", place)
	q.Set("format", "json")
	q.Set("limit", "1")
	var results []nominatimResult
	if err := c.getJSON(ctx, strings.TrimRight(c.cfg.GeocoderEndpoint, "/")+"/search?"+q.Encode(), &results); err != nil {
		return coord{}, err
	}
	if len(results) == 0 {
		return coord{}, fmt.Errorf("%w: %s", ErrPlaceNotFound, place)
	}
	lat, errLat := strconv.ParseFloat(results[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(results[0].Lon, 64)
	if errLat != nil || errLon != nil {
		return coord{}, fmt.Errorf("%w: bad coordinates for %s", ErrUnavailable, place)
	}

	pt := coord{Lat: lat, Lon: lon}
	c.places.Add(key, pt)
	return pt, nil
}

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"` // meters
		Duration float64 `json:"duration"` // seconds
	} `json:"routes"`
}

func (c *Client) route(ctx context.Context, from, to coord) (Route, error) {
	u := fmt.Sprintf("%s/route/v1/driving/%s,%s;%s,%s?overview=false",
		strings.TrimRight(c.cfg.Endpoint, "/"),
		formatCoord(from.Lon), formatCoord(from.Lat),
		formatCoord(to.Lon), formatCoord(to.Lat))

	var resp osrmResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return Route{}, err
	}
	if resp.Code != "Ok" || len(resp.Routes) == 0 {
		return Route{}, fmt.Errorf("%w: osrm code %q", ErrNoRoute, resp.Code)
	}
	best := resp.Routes[0]
	return Route{
		DistanceKm: best.Distance / 1000,
		Duration:   time.Duration(best.Duration * float64(time.Second)),
	}, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d from %s", ErrUnavailable, resp.StatusCode, req.URL.Host)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrUnavailable, err)
	}
	return nil
}
