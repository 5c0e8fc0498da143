// Package anomaly computes per-cell vegetation index anomalies for a region
// and year: the z-score of the selected year's summer composite value against
// the 2017-2023 series of the same grid cell.
package anomaly

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/ta346/greenzone-web/internal/apperrors"
	"github.com/ta346/greenzone-web/internal/geo"
)

// Query identifies one anomaly computation.
type Query struct {
	Province    string
	Soum        string
	Index       string // display name: NDVI, EVI, SAVI
	Year        string
	GrazingOnly bool
}

// Sample is one grid cell observation: the summer composite value of a
// vegetation index series for one year.
type Sample struct {
	Lon     float64
	Lat     float64
	Year    int
	Value   float64
	Pasture bool
}

// SampleStore yields the yearly series for every grid cell of a region.
type SampleStore interface {
	Samples(ctx context.Context, province, soum, series string) ([]Sample, error)
}

// Cache stores computed feature collections keyed by query.
type Cache interface {
	Get(ctx context.Context, key string) (*geo.FeatureCollection, bool, error)
	Set(ctx context.Context, key string, fc *geo.FeatureCollection, ttl time.Duration) error
}

// seriesFor maps the UI index names onto stored series. The UI option "SAVI"
// has always selected the msavi series; keep that mapping.
func seriesFor(index string) (string, bool) {
	switch index {
	case "NDVI":
		return "ndvi", true
	case "EVI":
		return "evi", true
	case "SAVI":
		return "msavi", true
	default:
		return "", false
	}
}

// Config tunes the service.
type Config struct {
	CacheTTL time.Duration
}

// Service computes anomaly feature collections.
type Service struct {
	store  SampleStore
	cache  Cache
	cfg    Config
	logger *slog.Logger
	tracer oteltrace.Tracer
}

// NewService builds the service. cache may be nil to disable caching.
func NewService(store SampleStore, cache Cache, cfg Config, logger *slog.Logger) *Service {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 15 * time.Minute
	}
	return &Service{
		store:  store,
		cache:  cache,
		cfg:    cfg,
		logger: logger.With("component", "anomaly.service"),
		tracer: noop.NewTracerProvider().Tracer("greenzone/anomaly"),
	}
}

// SetTracer installs the tracer used to span computations.
func (s *Service) SetTracer(t oteltrace.Tracer) {
	if t != nil {
		s.tracer = t
	}
}

// MapData computes the anomaly feature collection for q.
func (s *Service) MapData(ctx context.Context, q Query) (*geo.FeatureCollection, error) {
	ctx, span := s.tracer.Start(ctx, "anomaly.map_data",
		oteltrace.WithAttributes(
			attribute.String("province", q.Province),
			attribute.String("soum", q.Soum),
			attribute.String("vegetation_index", q.Index),
			attribute.String("year", q.Year),
			attribute.Bool("grazing_only", q.GrazingOnly),
		))
	defer span.End()

	series, ok := seriesFor(q.Index)
	if !ok {
		return nil, apperrors.Wrap("invalid_input", fmt.Sprintf("unknown vegetation index %q", q.Index), nil)
	}
	year, err := strconv.Atoi(q.Year)
	if err != nil {
		return nil, apperrors.Wrap("invalid_input", fmt.Sprintf("invalid year %q", q.Year), err)
	}

	if s.cache != nil {
		if fc, hit, cacheErr := s.cache.Get(ctx, cacheKey(q)); cacheErr != nil {
			s.logger.Warn("cache get failed", "error", cacheErr)
		} else if hit {
			span.SetAttributes(attribute.Bool("cache_hit", true))
			return fc, nil
		}
	}

	samples, err := s.store.Samples(ctx, q.Province, q.Soum, series)
	if err != nil {
		return nil, apperrors.Wrap("store_error", "load samples", err)
	}
	if len(samples) == 0 {
		return nil, apperrors.Wrap("unknown_region", fmt.Sprintf("no data for %s / %s", q.Province, q.Soum), nil)
	}

	fc := zScores(samples, year, q.GrazingOnly)
	s.logger.Info("anomaly computed",
		"province", q.Province, "soum", q.Soum, "series", series,
		"year", year, "cells", len(fc.Features))

	if s.cache != nil {
		if cacheErr := s.cache.Set(ctx, cacheKey(q), fc, s.cfg.CacheTTL); cacheErr != nil {
			s.logger.Warn("cache set failed", "error", cacheErr)
		}
	}
	return fc, nil
}

type cell struct {
	lon, lat float64
}

// zScores reduces the sample series per grid cell. Cells without the selected
// year or with zero spread are skipped; grazingOnly keeps pasture cells only.
func zScores(samples []Sample, year int, grazingOnly bool) *geo.FeatureCollection {
	byCell := make(map[cell][]Sample)
	for _, s := range samples {
		if grazingOnly && !s.Pasture {
			continue
		}
		c := cell{lon: s.Lon, lat: s.Lat}
		byCell[c] = append(byCell[c], s)
	}

	cells := make([]cell, 0, len(byCell))
	for c := range byCell {
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].lat != cells[j].lat {
			return cells[i].lat < cells[j].lat
		}
		return cells[i].lon < cells[j].lon
	})

	fc := geo.NewCollection()
	for _, c := range cells {
		series := byCell[c]
		selected, found := math.NaN(), false
		var sum float64
		for _, s := range series {
			sum += s.Value
			if s.Year == year {
				selected, found = s.Value, true
			}
		}
		if !found || len(series) < 2 {
			continue
		}
		mean := sum / float64(len(series))
		var sq float64
		for _, s := range series {
			d := s.Value - mean
			sq += d * d
		}
		std := math.Sqrt(sq / float64(len(series)))
		if std == 0 {
			continue
		}
		fc.Features = append(fc.Features, geo.NewPointFeature(c.lon, c.lat, (selected-mean)/std))
	}
	return fc
}

func cacheKey(q Query) string {
	return fmt.Sprintf("anomaly:%s:%s:%s:%s:%t", q.Province, q.Soum, q.Index, q.Year, q.GrazingOnly)
}
