//go:build integration

package overlay_test

import (
	"context"
	"testing"

	"github.com/erikjseidel/salt-netdb/internal/testutil"
	"github.com/erikjseidel/salt-netdb/pkg/overlay"
)

func TestRedisOverlayIntegration(t *testing.T) {
	testutil.SkipIfNoRedis(t)
	addr := testutil.RedisAddr()
	testutil.FlushDB(t, addr, testutil.OverlayDB)

	store := overlay.NewRedisStore(addr, testutil.OverlayDB)
	defer store.Close()
	o := overlay.New(store, "SIN1")
	ctx := context.Background()

	if r := o.AddEntry(ctx, overlay.KeyEthernet, "eth3"); !r.Result {
		t.Fatalf("AddEntry() = %+v", r)
	}
	testutil.AssertOverlay(t, addr, overlay.KeyEthernet, "SIN1", []string{"eth3"})

	if r := o.RemoveEntry(ctx, overlay.KeyEthernet, "eth3"); !r.Result {
		t.Fatalf("RemoveEntry() = %+v", r)
	}
	testutil.AssertOverlay(t, addr, overlay.KeyEthernet, "SIN1", []string{})
}

func TestRedisOverlaySeeded(t *testing.T) {
	testutil.SkipIfNoRedis(t)
	addr := testutil.RedisAddr()
	testutil.FlushDB(t, addr, testutil.OverlayDB)
	testutil.SeedOverlay(t, addr, testutil.OverlayDB, testutil.SeedPath("overlay.json"))

	store := overlay.NewRedisStore(addr, testutil.OverlayDB)
	defer store.Close()
	ctx := testutil.Context(t)

	sin := overlay.New(store, "SIN1")
	if r := sin.CheckEntry(ctx, overlay.KeyBGP, "23.181.64.4"); r.Out != true {
		t.Errorf("CheckEntry() = %+v", r)
	}
	if r := sin.AddEntry(ctx, overlay.KeyEthernet, "eth3"); r.Result {
		t.Errorf("AddEntry() of a seeded entry = %+v", r)
	}

	fra := overlay.New(store, "FRA1")
	if r := fra.AddEntry(ctx, overlay.KeyEthernet, "eth0"); !r.Result {
		t.Fatalf("AddEntry() = %+v", r)
	}
	testutil.AssertOverlay(t, addr, overlay.KeyEthernet, "FRA1", []string{"eth0"})
	testutil.AssertOverlay(t, addr, overlay.KeyEthernet, "SIN1", []string{"eth3"})
}
