// Package overlay manages the per-router lists of administratively disabled
// entries (interfaces, tunnels, BGP peers, IS-IS interfaces) kept in Redis.
//
// Each list lives under a Redis key and is divided by router so several
// routers can share one database:
//
//	ethernet_disabled: {"SIN1": ["eth3", "bond0.20"], "FRA1": []}
//
// Keys, routers and lists are created lazily and never deleted; removing the
// last entry leaves an empty list behind.
//
// The overlay fails closed. Any store error is returned as a backend error
// and callers must abort rather than guess whether an entry is disabled.
package overlay

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/erikjseidel/salt-netdb/pkg/util"
)

// Well-known overlay keys.
const (
	KeyEthernet = "ethernet_disabled"
	KeyTunnel   = "tunnel_disabled"
	KeyBGP      = "bgp_disabled"
	KeyISIS     = "isis_disabled"
)

// Overlay is the disabled-entry overlay of one router.
type Overlay struct {
	store  Store
	router string
}

// New returns the overlay of router backed by store.
func New(store Store, router string) *Overlay {
	return &Overlay{store: store, router: router}
}

// Router returns the router id the overlay is bound to.
func (o *Overlay) Router() string { return o.router }

// load reads the document under key.
func (o *Overlay) load(ctx context.Context, key string) (map[string]json.RawMessage, error) {
	raw, found, err := o.store.Get(ctx, key)
	if err != nil {
		return nil, util.NewBackendError("redis", err)
	}
	return decodeDoc(key, raw, found)
}

// decodeDoc parses a stored document. Router values that are not string
// lists are kept as raw JSON and treated as absent.
func decodeDoc(key string, raw []byte, found bool) (map[string]json.RawMessage, error) {
	doc := make(map[string]json.RawMessage)
	if !found || len(raw) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, util.NewBackendError("redis", fmt.Errorf("decoding %s: %w", key, err))
	}
	return doc, nil
}

// update applies fn to the router's list under key as one atomic
// read-modify-write of the document.
func (o *Overlay) update(ctx context.Context, key string, fn func(entries []string) ([]string, error)) ([]string, error) {
	var (
		entries []string
		fnErr   error
	)
	err := o.store.Update(ctx, key, func(raw []byte, found bool) ([]byte, error) {
		doc, err := decodeDoc(key, raw, found)
		if err != nil {
			fnErr = err
			return nil, err
		}
		cur, _ := o.list(doc)
		entries, fnErr = fn(cur)
		if fnErr != nil {
			entries = cur
			return nil, fnErr
		}
		if err := o.setList(doc, entries); err != nil {
			fnErr = err
			return nil, err
		}
		return json.Marshal(doc)
	})
	if fnErr != nil {
		return entries, fnErr
	}
	if err != nil {
		return nil, util.NewBackendError("redis", err)
	}
	return entries, nil
}

func (o *Overlay) list(doc map[string]json.RawMessage) ([]string, bool) {
	raw, ok := doc[o.router]
	if !ok {
		return nil, false
	}
	var entries []string
	if err := json.Unmarshal(raw, &entries); err != nil || entries == nil {
		return nil, false
	}
	return entries, true
}

func (o *Overlay) setList(doc map[string]json.RawMessage, entries []string) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	doc[o.router] = raw
	return nil
}

func checkEntry(entry string) error {
	if entry == "" {
		return util.NewValidationError("entry: must not be empty")
	}
	return nil
}

// Entries returns the router's list under key. found is false when the
// router has no list under key.
func (o *Overlay) Entries(ctx context.Context, key string) (entries []string, found bool, err error) {
	doc, err := o.load(ctx, key)
	if err != nil {
		return nil, false, err
	}
	entries, found = o.list(doc)
	if entries == nil {
		entries = []string{}
	}
	return entries, found, nil
}

// Contains reports whether entry is in the router's list under key.
func (o *Overlay) Contains(ctx context.Context, key, entry string) (bool, error) {
	entries, _, err := o.Entries(ctx, key)
	if err != nil {
		return false, err
	}
	return util.Contains(entries, entry), nil
}

// Add appends entry to the router's list under key, creating the key and
// list as needed. Adding an entry twice fails with ErrAlreadyExists and
// leaves the list unchanged.
func (o *Overlay) Add(ctx context.Context, key, entry string) ([]string, error) {
	if err := checkEntry(entry); err != nil {
		return nil, err
	}
	entries, err := o.update(ctx, key, func(entries []string) ([]string, error) {
		if util.Contains(entries, entry) {
			return nil, fmt.Errorf("%s in %s: %w", entry, key, util.ErrAlreadyExists)
		}
		return append(entries, entry), nil
	})
	if err != nil {
		return entries, err
	}
	util.WithRouter(o.router).WithField("key", key).Debugf("overlay: added %s", entry)
	return entries, nil
}

// Remove deletes entry from the router's list under key. Removing an
// absent entry fails with ErrNotFound and leaves the list unchanged.
func (o *Overlay) Remove(ctx context.Context, key, entry string) ([]string, error) {
	if err := checkEntry(entry); err != nil {
		return nil, err
	}
	entries, err := o.update(ctx, key, func(entries []string) ([]string, error) {
		for i, e := range entries {
			if e == entry {
				return append(entries[:i:i], entries[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("%s in %s: %w", entry, key, util.ErrNotFound)
	})
	if err != nil {
		return entries, err
	}
	util.WithRouter(o.router).WithField("key", key).Debugf("overlay: removed %s", entry)
	return entries, nil
}
