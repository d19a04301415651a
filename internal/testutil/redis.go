//go:build integration

package testutil

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/google/go-cmp/cmp"
)

// OverlayDB is the Redis database the integration tests use for the
// disabled-entry overlay.
const OverlayDB = 15

// SeedOverlay loads a JSON seed file into a Redis database.
// The JSON format is: { "key": { "ROUTER": ["entry", ...], ... }, ... }
// Each top-level key becomes a Redis string holding its JSON value.
func SeedOverlay(t *testing.T, addr string, db int, seedFile string) {
	t.Helper()

	data, err := os.ReadFile(seedFile)
	if err != nil {
		t.Fatalf("reading seed file %s: %v", seedFile, err)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		t.Fatalf("parsing seed file %s: %v", seedFile, err)
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	defer client.Close()

	ctx := context.Background()
	for key, value := range keys {
		if err := client.Set(ctx, key, []byte(value), 0).Err(); err != nil {
			t.Fatalf("seeding %s: %v", key, err)
		}
	}
}

// FlushDB flushes a specific Redis database.
func FlushDB(t *testing.T, addr string, db int) {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	defer client.Close()

	if err := client.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("flushing DB %d: %v", db, err)
	}
}

// ReadOverlay returns the router lists stored under key in OverlayDB.
func ReadOverlay(t *testing.T, addr, key string) map[string][]string {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: addr, DB: OverlayDB})
	defer client.Close()

	raw, err := client.Get(context.Background(), key).Bytes()
	if err != nil {
		t.Fatalf("reading %s: %v", key, err)
	}
	var lists map[string][]string
	if err := json.Unmarshal(raw, &lists); err != nil {
		t.Fatalf("decoding %s: %v", key, err)
	}
	return lists
}

// AssertOverlay fails the test unless router's list under key equals want.
func AssertOverlay(t *testing.T, addr, key, router string, want []string) {
	t.Helper()

	got := ReadOverlay(t, addr, key)[router]
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("%s[%s] mismatch (-want +got):\n%s", key, router, diff)
	}
}
