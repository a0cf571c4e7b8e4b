package maps

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	gmaps "googlemaps.github.io/maps"
)

const (
	region   = "br"
	language = "pt-BR"
)

// GoogleProvider implements Provider on the Geocoding and Directions APIs.
type GoogleProvider struct {
	client *gmaps.Client
}

type GoogleOption = gmaps.ClientOption

// WithBaseURL points the client at another host, used by tests.
func WithBaseURL(url string) GoogleOption { return gmaps.WithBaseURL(url) }

// WithTimeout bounds every request made by the client.
func WithTimeout(d time.Duration) GoogleOption {
	return gmaps.WithHTTPClient(&http.Client{Timeout: d})
}

// NewGoogleProvider creates a client limited to qps requests per second.
func NewGoogleProvider(apiKey string, qps int, opts ...GoogleOption) (*GoogleProvider, error) {
	options := []gmaps.ClientOption{gmaps.WithAPIKey(apiKey)}
	if qps > 0 {
		options = append(options, gmaps.WithRateLimit(qps))
	}
	options = append(options, opts...)

	client, err := gmaps.NewClient(options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleProvider{client: client}, nil
}

func (p *GoogleProvider) Geocode(ctx context.Context, place string) (Coordinates, error) {
	results, err := p.client.Geocode(ctx, &gmaps.GeocodingRequest{
		Address:  place,
		Region:   region,
		Language: language,
	})
	if err != nil {
		return Coordinates{}, newError("geocode", place, classify(err), err)
	}
	if len(results) == 0 {
		return Coordinates{}, newError("geocode", place, ErrNotFound, nil)
	}

	loc := results[0].Geometry.Location
	return Coordinates{Lat: loc.Lat, Lng: loc.Lng}, nil
}

// Route returns the driving distance summed over all legs of the first route.
func (p *GoogleProvider) Route(ctx context.Context, origin, destination Coordinates) (RouteInfo, error) {
	target := origin.String() + " -> " + destination.String()
	routes, _, err := p.client.Directions(ctx, &gmaps.DirectionsRequest{
		Origin:      origin.String(),
		Destination: destination.String(),
		Mode:        gmaps.TravelModeDriving,
		Language:    language,
	})
	if err != nil {
		return RouteInfo{}, newError("route", target, classify(err), err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return RouteInfo{}, newError("route", target, ErrNotFound, nil)
	}

	var meters int64
	for _, leg := range routes[0].Legs {
		meters += int64(leg.Distance.Meters)
	}

	points, err := routes[0].OverviewPolyline.Decode()
	if err != nil {
		return RouteInfo{}, newError("route", target, ErrTransient, fmt.Errorf("decode polyline: %w", err))
	}
	path := make([]Coordinates, 0, len(points))
	for _, pt := range points {
		path = append(path, Coordinates{Lat: pt.Lat, Lng: pt.Lng})
	}

	return RouteInfo{DistanceKm: decimal.New(meters, -3), Path: path}, nil
}

func (c Coordinates) String() string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lng, 'f', -1, 64)
}
