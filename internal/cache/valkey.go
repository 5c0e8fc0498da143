package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/ta346/greenzone-web/internal/geo"
)

// Valkey caches feature collections in a Valkey-compatible database so
// repeated queries across server instances skip the computation.
type Valkey struct {
	client valkey.Client
	prefix string
}

// NewValkey constructs a cache backed by Valkey.
func NewValkey(client valkey.Client, prefix string) *Valkey {
	if prefix == "" {
		prefix = "greenzone"
	}
	return &Valkey{client: client, prefix: prefix}
}

// Get implements anomaly.Cache.
func (v *Valkey) Get(ctx context.Context, key string) (*geo.FeatureCollection, bool, error) {
	cmd := v.client.B().Get().Key(v.prefix + ":" + key).Build()
	payload, err := v.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var fc geo.FeatureCollection
	if err := json.Unmarshal([]byte(payload), &fc); err != nil {
		return nil, false, err
	}
	return &fc, true, nil
}

// Set implements anomaly.Cache.
func (v *Valkey) Set(ctx context.Context, key string, fc *geo.FeatureCollection, ttl time.Duration) error {
	payload, err := json.Marshal(fc)
	if err != nil {
		return err
	}
	builder := v.client.B().Set().Key(v.prefix + ":" + key).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return v.client.Do(ctx, cmd).Error()
}
