// Package dispatch performs the outbound fetch-and-render round trip: one
// JSON POST per apply action against the anomaly endpoint.
//
// Concurrent dispatches are fenced with a monotonically increasing sequence
// number: a response whose sequence is lower than the highest already applied
// is discarded, so the displayed payload always reflects the latest issued
// query even when responses arrive out of order.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/ta346/greenzone-web/internal/filter"
	"github.com/ta346/greenzone-web/internal/geo"
)

// Path is the anomaly endpoint path on the API server.
const Path = "/api/fetch_anomaly_map_data"

// DefaultBaseURL points at a locally running greenzone-server.
const DefaultBaseURL = "http://localhost:8080"

// Result is the outcome of one dispatch. Either Payload or Err is set.
type Result struct {
	Seq     uint64
	Query   filter.QueryPayload
	Payload *geo.FeatureCollection
	Err     error
}

// Dispatcher issues anomaly queries and fences their responses.
type Dispatcher struct {
	baseURL string
	client  *http.Client
	tracer  oteltrace.Tracer

	mu      sync.Mutex
	nextSeq uint64
	applied uint64 // highest sequence already applied
}

// Option tweaks a Dispatcher.
type Option func(*Dispatcher)

// WithHTTPClient overrides the HTTP client (tests).
func WithHTTPClient(c *http.Client) Option {
	return func(d *Dispatcher) { d.client = c }
}

// WithTracer sets the tracer used to span each dispatch.
func WithTracer(t oteltrace.Tracer) Option {
	return func(d *Dispatcher) { d.tracer = t }
}

// New builds a dispatcher against baseURL.
func New(baseURL string, opts ...Option) *Dispatcher {
	url := strings.TrimSpace(baseURL)
	if url == "" {
		url = DefaultBaseURL
	}
	d := &Dispatcher{
		baseURL: strings.TrimRight(url, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		tracer: noop.NewTracerProvider().Tracer("greenzone/dispatch"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Next reserves the sequence number for a dispatch about to be issued.
func (d *Dispatcher) Next() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextSeq++
	return d.nextSeq
}

// Dispatch performs the POST for query under the given sequence number.
// Failures are logged here and carried in the Result; they never panic the
// caller and never clear previously applied data.
func (d *Dispatcher) Dispatch(ctx context.Context, seq uint64, query filter.QueryPayload) Result {
	ctx, span := d.tracer.Start(ctx, "fetch_anomaly_map_data",
		oteltrace.WithAttributes(
			attribute.String("province", query.SelectedProvince),
			attribute.String("soum", query.SelectedSoum),
			attribute.String("vegetation_index", query.SelectedVegetationIndex),
			attribute.String("year", query.SelectedYear),
			attribute.Bool("grazing_only", query.GrazingOnly),
			attribute.Int64("seq", int64(seq)),
		))
	defer span.End()

	payload, err := d.post(ctx, query)
	if err != nil {
		span.RecordError(err)
		log.Printf("dispatch: query seq=%d failed: %v", seq, err)
		return Result{Seq: seq, Query: query, Err: err}
	}
	return Result{Seq: seq, Query: query, Payload: payload}
}

// TryApply decides whether a result may replace the displayed payload.
// Failed results and results superseded by a later-issued apply are rejected.
// A successful apply advances the fence.
func (d *Dispatcher) TryApply(r Result) bool {
	if r.Err != nil || r.Payload == nil {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if r.Seq <= d.applied {
		log.Printf("dispatch: dropping stale response seq=%d (applied=%d)", r.Seq, d.applied)
		return false
	}
	d.applied = r.Seq
	return true
}

func (d *Dispatcher) post(ctx context.Context, query filter.QueryPayload) (*geo.FeatureCollection, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+Path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build anomaly request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("anomaly request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("anomaly request error: status=%d body=%s", resp.StatusCode, string(payload))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read anomaly response: %w", err)
	}
	fc, err := geo.Decode(raw)
	if err != nil {
		return nil, err
	}
	return fc, nil
}
