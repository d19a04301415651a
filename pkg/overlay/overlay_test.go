package overlay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"

	"github.com/erikjseidel/salt-netdb/pkg/util"
)

func newTestOverlay(t *testing.T, router string) (*Overlay, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store := NewRedisStore(mr.Addr(), 0)
	t.Cleanup(func() { store.Close() })
	return New(store, router), mr
}

func TestAddRemoveScenario(t *testing.T) {
	ctx := context.Background()
	o, mr := newTestOverlay(t, "R1")

	r := o.AddEntry(ctx, KeyBGP, "23.181.64.4")
	if !r.Result || r.Comment != "Entry successfully added" {
		t.Fatalf("first AddEntry() = %+v", r)
	}
	if diff := cmp.Diff([]string{"23.181.64.4"}, r.Out); diff != "" {
		t.Errorf("AddEntry() out mismatch (-want +got):\n%s", diff)
	}

	r = o.AddEntry(ctx, KeyBGP, "23.181.64.4")
	if r.Result || r.Comment != "Entry already added in REDIS" {
		t.Errorf("second AddEntry() = %+v", r)
	}
	if got, _ := mr.Get(KeyBGP); got != `{"R1":["23.181.64.4"]}` {
		t.Errorf("stored value = %s", got)
	}

	r = o.RemoveEntry(ctx, KeyBGP, "23.181.64.4")
	if !r.Result || r.Comment != "Entry removed" {
		t.Fatalf("RemoveEntry() = %+v", r)
	}
	if diff := cmp.Diff([]string{}, r.Out); diff != "" {
		t.Errorf("RemoveEntry() out mismatch (-want +got):\n%s", diff)
	}

	r = o.CheckEntry(ctx, KeyBGP, "23.181.64.4")
	if !r.Result || r.Out != false || r.Comment != "Entry not found" {
		t.Errorf("CheckEntry() after removal = %+v", r)
	}

	r = o.GetEntries(ctx, KeyBGP)
	if !r.Result {
		t.Errorf("GetEntries() = %+v, the emptied list should persist", r)
	}
	if diff := cmp.Diff([]string{}, r.Out); diff != "" {
		t.Errorf("GetEntries() out mismatch (-want +got):\n%s", diff)
	}
}

func TestRemoveMissing(t *testing.T) {
	ctx := context.Background()
	o, mr := newTestOverlay(t, "R1")

	if r := o.RemoveEntry(ctx, KeyEthernet, "eth3"); r.Result || r.Comment != "Entry not found" {
		t.Errorf("RemoveEntry() on empty store = %+v", r)
	}
	if mr.Exists(KeyEthernet) {
		t.Error("RemoveEntry() should not create the key")
	}

	o.Add(ctx, KeyEthernet, "eth1")
	if _, err := o.Remove(ctx, KeyEthernet, "eth3"); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("Remove() error = %v, want ErrNotFound", err)
	}
	entries, _, _ := o.Entries(ctx, KeyEthernet)
	if diff := cmp.Diff([]string{"eth1"}, entries); diff != "" {
		t.Errorf("list changed (-want +got):\n%s", diff)
	}
}

func TestRouterIsolation(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	store := NewRedisStore(mr.Addr(), 0)
	defer store.Close()

	sin := New(store, "SIN1")
	fra := New(store, "FRA1")

	sin.Add(ctx, KeyTunnel, "tun261")
	fra.Add(ctx, KeyTunnel, "tun1")
	fra.Add(ctx, KeyTunnel, "tun2")

	if ok, _ := sin.Contains(ctx, KeyTunnel, "tun1"); ok {
		t.Error("SIN1 should not see FRA1 entries")
	}
	if _, err := fra.Remove(ctx, KeyTunnel, "tun1"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	sinEntries, _, _ := sin.Entries(ctx, KeyTunnel)
	fraEntries, _, _ := fra.Entries(ctx, KeyTunnel)
	if diff := cmp.Diff([]string{"tun261"}, sinEntries); diff != "" {
		t.Errorf("SIN1 entries mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"tun2"}, fraEntries); diff != "" {
		t.Errorf("FRA1 entries mismatch (-want +got):\n%s", diff)
	}
}

func TestGetEntriesUnseenRouter(t *testing.T) {
	ctx := context.Background()
	o, mr := newTestOverlay(t, "R2")
	mr.Set(KeyISIS, `{"R1":["eth0"]}`)

	r := o.GetEntries(ctx, KeyISIS)
	if r.Result || r.Comment != "No entries found" {
		t.Errorf("GetEntries() = %+v", r)
	}
	if diff := cmp.Diff([]string{}, r.Out); diff != "" {
		t.Errorf("GetEntries() out mismatch (-want +got):\n%s", diff)
	}
}

func TestNonListRouterValueIsReplaced(t *testing.T) {
	ctx := context.Background()
	o, mr := newTestOverlay(t, "R1")
	mr.Set(KeyEthernet, `{"R1":"garbage","R9":{"keep":true}}`)

	if _, err := o.Add(ctx, KeyEthernet, "eth0"); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	got, _ := mr.Get(KeyEthernet)
	if got != `{"R1":["eth0"],"R9":{"keep":true}}` {
		t.Errorf("stored value = %s", got)
	}
}

func TestEmptyEntryRejected(t *testing.T) {
	ctx := context.Background()
	o, _ := newTestOverlay(t, "R1")
	if _, err := o.Add(ctx, KeyBGP, ""); !errors.Is(err, util.ErrValidationFailed) {
		t.Errorf("Add(\"\") error = %v", err)
	}
	if _, err := o.Remove(ctx, KeyBGP, ""); !errors.Is(err, util.ErrValidationFailed) {
		t.Errorf("Remove(\"\") error = %v", err)
	}
}

func TestFailClosed(t *testing.T) {
	ctx := context.Background()
	o, mr := newTestOverlay(t, "R1")
	o.Add(ctx, KeyBGP, "10.0.0.2")
	mr.Close()

	if _, err := o.Contains(ctx, KeyBGP, "10.0.0.2"); !errors.Is(err, util.ErrBackend) {
		t.Errorf("Contains() error = %v, want ErrBackend", err)
	}
	for name, r := range map[string]interface{ IsBackendError() bool }{
		"add":    o.AddEntry(ctx, KeyBGP, "10.0.0.3"),
		"remove": o.RemoveEntry(ctx, KeyBGP, "10.0.0.2"),
		"check":  o.CheckEntry(ctx, KeyBGP, "10.0.0.2"),
		"get":    o.GetEntries(ctx, KeyBGP),
	} {
		if !r.IsBackendError() {
			t.Errorf("%s: expected a backend error envelope", name)
		}
	}
}

func TestCorruptDocument(t *testing.T) {
	ctx := context.Background()
	o, mr := newTestOverlay(t, "R1")
	mr.Set(KeyBGP, `not json`)
	if _, _, err := o.Entries(ctx, KeyBGP); !errors.Is(err, util.ErrBackend) {
		t.Errorf("Entries() error = %v, want ErrBackend", err)
	}
}

func TestCorruptDocumentAdd(t *testing.T) {
	ctx := context.Background()
	o, mr := newTestOverlay(t, "R1")
	mr.Set(KeyBGP, `not json`)
	if _, err := o.Add(ctx, KeyBGP, "10.0.0.2"); !errors.Is(err, util.ErrBackend) {
		t.Errorf("Add() error = %v, want ErrBackend", err)
	}
	if got, _ := mr.Get(KeyBGP); got != `not json` {
		t.Errorf("stored value = %s, want it untouched", got)
	}
}

func TestConcurrentAddsAreNotLost(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		router := "R1"
		if i%2 == 1 {
			router = "R2"
		}
		store := NewRedisStore(mr.Addr(), 0)
		t.Cleanup(func() { store.Close() })
		o := New(store, router)
		entry := fmt.Sprintf("eth%d", i)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := o.Add(ctx, KeyEthernet, entry); err != nil {
				errs <- fmt.Errorf("Add(%s) on %s: %w", entry, router, err)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	for _, router := range []string{"R1", "R2"} {
		entries, _, err := New(NewRedisStore(mr.Addr(), 0), router).Entries(ctx, KeyEthernet)
		if err != nil {
			t.Fatalf("Entries() error = %v", err)
		}
		if len(entries) != writers/2 {
			t.Errorf("%s entries = %v, want %d", router, entries, writers/2)
		}
	}
}
