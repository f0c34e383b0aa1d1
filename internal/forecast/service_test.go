package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"saa-api/internal/providers/fmi"
	"strings"
	"testing"
)

type mockFeatureProvider struct {
	members []fmi.Member
	err     error
	query   fmi.StoredQuery
}

func (m *mockFeatureProvider) GetFeature(ctx context.Context, query fmi.StoredQuery) ([]fmi.Member, error) {
	m.query = query
	return m.members, m.err
}

func gridMember(pos, value string) fmi.Member {
	name := "t2m"
	return fmi.Member{Pos: &pos, ParameterName: &name, ParameterValue: &value}
}

func TestToSamples(t *testing.T) {
	pos := "60.0 24.0"
	value := "1.0"

	tests := []struct {
		name      string
		members   []fmi.Member
		wantCount int
	}{
		{
			name: "identical coordinates are not merged",
			members: []fmi.Member{
				gridMember("60.1699 24.9384", "1.0"),
				gridMember("60.1699 24.9384", "2.0"),
				gridMember("60.1699 24.9384", "3.0"),
			},
			wantCount: 3,
		},
		{
			name: "members without position or value are skipped",
			members: []fmi.Member{
				{ParameterValue: &value},
				{Pos: &pos},
				gridMember("61.0 25.0", "-4.5"),
			},
			wantCount: 1,
		},
		{
			name:      "parameter name is not required",
			members:   []fmi.Member{{Pos: &pos, ParameterValue: &value}},
			wantCount: 1,
		},
		{
			name:      "no members",
			members:   nil,
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToSamples(tt.members)
			if err != nil {
				t.Fatalf("ToSamples() unexpected error = %v", err)
			}
			if len(got) != tt.wantCount {
				t.Errorf("ToSamples() returned %d samples, want %d", len(got), tt.wantCount)
			}
		})
	}
}

func TestToSamples_MissingSentinel(t *testing.T) {
	got, err := ToSamples([]fmi.Member{gridMember("60.0 24.0", "NaN")})
	if err != nil {
		t.Fatalf("ToSamples() unexpected error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("ToSamples() returned %d samples, want 1", len(got))
	}
	if got[0].Temperature != nil {
		t.Errorf("Temperature = %v, want nil", *got[0].Temperature)
	}
}

func TestToSamples_MalformedData(t *testing.T) {
	tests := []struct {
		name   string
		member fmi.Member
	}{
		{"bad position", gridMember("60.0,24.0", "1.0")},
		{"bad value", gridMember("60.0 24.0", "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToSamples([]fmi.Member{tt.member})
			if !errors.Is(err, fmi.ErrMalformedResponse) {
				t.Errorf("ToSamples() error = %v, want ErrMalformedResponse", err)
			}
		})
	}
}

func TestForecastService_GetForecast(t *testing.T) {
	provider := &mockFeatureProvider{
		members: []fmi.Member{
			gridMember("60.1699 24.9384", "1.5"),
			gridMember("60.1699 24.9384", "2.5"),
			gridMember("60.1699 24.9384", "NaN"),
		},
	}
	service := NewForecastService(provider, slog.New(slog.NewTextHandler(io.Discard, nil)))

	fc, err := service.GetForecast(context.Background())
	if err != nil {
		t.Fatalf("GetForecast() unexpected error = %v", err)
	}

	if provider.query.ID != "fmi::forecast::harmonie::surface::grid" {
		t.Errorf("query ID = %q, want %q", provider.query.ID, "fmi::forecast::harmonie::surface::grid")
	}
	if strings.Join(provider.query.Parameters, ",") != "t2m" {
		t.Errorf("query parameters = %v, want [t2m]", provider.query.Parameters)
	}
	if provider.query.Extra.Get("bbox") != "19,59,32,71" {
		t.Errorf("query bbox = %q, want %q", provider.query.Extra.Get("bbox"), "19,59,32,71")
	}
	if provider.query.Extra.Get("timestep") != "360" {
		t.Errorf("query timestep = %q, want %q", provider.query.Extra.Get("timestep"), "360")
	}

	raw, err := json.Marshal(fc)
	if err != nil {
		t.Fatalf("failed to marshal feature collection: %v", err)
	}

	var decoded struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("failed to decode feature collection: %v", err)
	}

	if len(decoded.Features) != 3 {
		t.Fatalf("got %d features, want 3", len(decoded.Features))
	}

	wantT2m := []any{1.5, 2.5, nil}
	for i, f := range decoded.Features {
		if len(f.Geometry.Coordinates) != 2 || f.Geometry.Coordinates[0] != 24.9384 || f.Geometry.Coordinates[1] != 60.1699 {
			t.Errorf("feature %d coordinates = %v, want [24.9384 60.1699]", i, f.Geometry.Coordinates)
		}
		if len(f.Properties) != 1 {
			t.Errorf("feature %d properties = %v, want only t2m", i, f.Properties)
		}
		if f.Properties["t2m"] != wantT2m[i] {
			t.Errorf("feature %d t2m = %v, want %v", i, f.Properties["t2m"], wantT2m[i])
		}
	}
}

func TestForecastService_GetForecast_ProviderError(t *testing.T) {
	upstreamErr := errors.New("fetch returned status 503")
	service := NewForecastService(&mockFeatureProvider{err: upstreamErr}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	fc, err := service.GetForecast(context.Background())
	if fc != nil {
		t.Errorf("GetForecast() collection = %v, want nil", fc)
	}
	if !errors.Is(err, upstreamErr) {
		t.Errorf("GetForecast() error = %v, want wrapped %v", err, upstreamErr)
	}
}
