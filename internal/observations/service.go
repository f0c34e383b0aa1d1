package observations

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"saa-api/internal/providers/fmi"
	"saa-api/internal/types"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// FeatureProvider runs WFS stored queries
type FeatureProvider interface {
	GetFeature(ctx context.Context, query fmi.StoredQuery) ([]fmi.Member, error)
}

// Service provides the latest weather station observations as GeoJSON
type Service interface {
	GetObservations(ctx context.Context) (*geojson.FeatureCollection, error)
}

// Station is the merged view of all members reported at one rounded coordinate
type Station struct {
	Coordinates types.Coords
	Temperature *float64
	WindSpeed   *float64
}

// latestQuery asks for the most recent temperature and 10 minute mean wind speed of every station
var latestQuery = fmi.StoredQuery{
	ID:         fmi.QueryObservationsSimple,
	Parameters: []string{fmi.ParamTemperature, fmi.ParamWindSpeed},
	Extra:      url.Values{"latest": {"true"}},
}

type observationService struct {
	provider FeatureProvider
	logger   *slog.Logger
}

// NewObservationService creates a new observation service backed by the given provider
func NewObservationService(provider FeatureProvider, logger *slog.Logger) Service {
	return &observationService{
		provider: provider,
		logger:   logger.With("component", "observation-service"),
	}
}

// GetObservations fetches the latest observations and returns one Point feature per station
func (s *observationService) GetObservations(ctx context.Context) (*geojson.FeatureCollection, error) {
	members, err := s.provider.GetFeature(ctx, latestQuery)
	if err != nil {
		s.logger.Error("failed to get observations from provider", "error", err)
		return nil, fmt.Errorf("failed to get observations: %w", err)
	}

	stations, err := MergeStations(members)
	if err != nil {
		s.logger.Error("failed to read observation members", "error", err)
		return nil, fmt.Errorf("failed to read observations: %w", err)
	}

	s.logger.Debug("merged observations",
		"member_count", len(members),
		"station_count", len(stations),
	)

	return ToFeatureCollection(stations), nil
}

// MergeStations groups members by coordinate rounded to 4 decimals, in the
// order each coordinate is first seen. Members missing a position, name or
// value are skipped. For each parameter the last non-missing value wins.
func MergeStations(members []fmi.Member) ([]Station, error) {
	index := make(map[types.CoordKey]int)
	var stations []Station

	for _, m := range members {
		if m.Pos == nil || m.ParameterName == nil || m.ParameterValue == nil {
			continue
		}

		coords, err := fmi.ParsePos(*m.Pos)
		if err != nil {
			return nil, err
		}

		key := coords.Key()
		i, ok := index[key]
		if !ok {
			stations = append(stations, Station{Coordinates: coords})
			i = len(stations) - 1
			index[key] = i
		}

		var target **float64
		switch strings.TrimSpace(*m.ParameterName) {
		case fmi.ParamTemperature:
			target = &stations[i].Temperature
		case fmi.ParamWindSpeed:
			target = &stations[i].WindSpeed
		default:
			continue
		}

		value, err := fmi.ParseValue(*m.ParameterValue)
		if err != nil {
			return nil, err
		}
		if value != nil {
			*target = value
		}
	}

	return stations, nil
}

// ToFeatureCollection renders stations as GeoJSON Point features
func ToFeatureCollection(stations []Station) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, st := range stations {
		f := geojson.NewFeature(orb.Point(st.Coordinates.GeoJSON()))
		f.Properties["name"] = StationName(st.Coordinates)
		f.Properties["t2m"] = st.Temperature
		f.Properties["ws"] = st.WindSpeed
		fc.Append(f)
	}
	return fc
}

// StationName returns the display name of a station at the given coordinates
func StationName(c types.Coords) string {
	return fmt.Sprintf("Sääasema %.2f, %.2f", c.Latitude, c.Longitude)
}
