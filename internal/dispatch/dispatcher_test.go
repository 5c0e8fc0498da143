package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ta346/greenzone-web/internal/filter"
	"github.com/ta346/greenzone-web/internal/geo"
)

func testQuery() filter.QueryPayload {
	return filter.QueryPayload{
		SelectedProvince:        "Tuv",
		SelectedSoum:            "Zuunmod",
		SelectedVegetationIndex: "NDVI",
		SelectedYear:            "2023",
		GrazingOnly:             true,
	}
}

func collectionWith(z float64) *geo.FeatureCollection {
	fc := geo.NewCollection()
	fc.Features = append(fc.Features, geo.NewPointFeature(106.9, 47.7, z))
	return fc
}

func TestDispatchPostsQueryAndDecodesCollection(t *testing.T) {
	var gotBody filter.QueryPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, Path, r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(collectionWith(1.5))
	}))
	defer srv.Close()

	d := New(srv.URL)
	seq := d.Next()
	res := d.Dispatch(context.Background(), seq, testQuery())

	require.NoError(t, res.Err)
	require.Equal(t, testQuery(), gotBody)
	require.Len(t, res.Payload.Features, 1)
	require.True(t, d.TryApply(res))
}

func TestDispatchFailureLeavesFenceUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := New(srv.URL)

	// First apply succeeds conceptually: simulate one applied payload.
	ok := d.TryApply(Result{Seq: d.Next(), Payload: collectionWith(0.2)})
	require.True(t, ok)

	// A failing dispatch must not displace the applied payload.
	seq := d.Next()
	res := d.Dispatch(context.Background(), seq, testQuery())
	require.Error(t, res.Err)
	require.Nil(t, res.Payload)
	require.False(t, d.TryApply(res))

	// The fence still admits the next successful response.
	require.True(t, d.TryApply(Result{Seq: d.Next(), Payload: collectionWith(0.3)}))
}

func TestTryApplyDiscardsStaleOutOfOrderResponse(t *testing.T) {
	d := New("")

	first := d.Next()
	second := d.Next()

	// The later-issued request resolves first and is applied.
	require.True(t, d.TryApply(Result{Seq: second, Payload: collectionWith(0.9)}))

	// The earlier request's response arrives afterwards: discarded, so
	// issue-order wins rather than arrival-order.
	require.False(t, d.TryApply(Result{Seq: first, Payload: collectionWith(0.1)}))
}

func TestDispatchMalformedResponseBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"type": "FeatureCollection", "features": [`))
	}))
	defer srv.Close()

	d := New(srv.URL)
	res := d.Dispatch(context.Background(), d.Next(), testQuery())
	require.Error(t, res.Err)
	require.False(t, d.TryApply(res))
}

func TestDispatchServerUnreachable(t *testing.T) {
	d := New("http://127.0.0.1:1") // nothing listens here
	res := d.Dispatch(context.Background(), d.Next(), testQuery())
	require.Error(t, res.Err)
}

func TestNewDefaultBaseURL(t *testing.T) {
	d := New("  ")
	require.Equal(t, DefaultBaseURL, d.baseURL)
	d = New("http://example.com/")
	require.Equal(t, "http://example.com", d.baseURL)
}
