package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"saa-api/internal/providers/fmi"
	"saa-api/internal/types"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Finland as lon/lat min/max
const (
	BBox     = "19,59,32,71"
	Timestep = 360 // minutes
)

// FeatureProvider runs WFS stored queries
type FeatureProvider interface {
	GetFeature(ctx context.Context, query fmi.StoredQuery) ([]fmi.Member, error)
}

// Service provides gridded temperature forecasts as GeoJSON
type Service interface {
	GetForecast(ctx context.Context) (*geojson.FeatureCollection, error)
}

// Sample is a single grid point at a single forecast time
type Sample struct {
	Coordinates types.Coords
	Temperature *float64
}

var gridQuery = fmi.StoredQuery{
	ID:         fmi.QueryHarmonieGrid,
	Parameters: []string{fmi.ParamTemperature},
	Extra: url.Values{
		"bbox":     {BBox},
		"timestep": {fmt.Sprint(Timestep)},
	},
}

type forecastService struct {
	provider FeatureProvider
	logger   *slog.Logger
}

func NewForecastService(provider FeatureProvider, logger *slog.Logger) Service {
	return &forecastService{
		provider: provider,
		logger:   logger.With("component", "forecast-service"),
	}
}

func (s *forecastService) GetForecast(ctx context.Context) (*geojson.FeatureCollection, error) {
	members, err := s.provider.GetFeature(ctx, gridQuery)
	if err != nil {
		s.logger.Error("failed to get forecast from provider", "error", err)
		return nil, fmt.Errorf("failed to get forecast: %w", err)
	}

	samples, err := ToSamples(members)
	if err != nil {
		s.logger.Error("failed to read forecast members", "error", err)
		return nil, fmt.Errorf("failed to read forecast: %w", err)
	}

	s.logger.Debug("mapped forecast samples",
		"member_count", len(members),
		"sample_count", len(samples),
	)

	return ToFeatureCollection(samples), nil
}

// ToSamples returns one sample per member that has both a position and a
// value. Grid points repeat once per forecast time and are not merged.
func ToSamples(members []fmi.Member) ([]Sample, error) {
	samples := make([]Sample, 0, len(members))
	for _, m := range members {
		if m.Pos == nil || m.ParameterValue == nil {
			continue
		}

		coords, err := fmi.ParsePos(*m.Pos)
		if err != nil {
			return nil, err
		}

		value, err := fmi.ParseValue(*m.ParameterValue)
		if err != nil {
			return nil, err
		}

		samples = append(samples, Sample{Coordinates: coords, Temperature: value})
	}
	return samples, nil
}

// ToFeatureCollection renders samples as GeoJSON Point features
func ToFeatureCollection(samples []Sample) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, sm := range samples {
		f := geojson.NewFeature(orb.Point(sm.Coordinates.GeoJSON()))
		f.Properties["t2m"] = sm.Temperature
		fc.Append(f)
	}
	return fc
}
