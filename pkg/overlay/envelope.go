package overlay

import (
	"context"
	"errors"

	"github.com/erikjseidel/salt-netdb/pkg/result"
	"github.com/erikjseidel/salt-netdb/pkg/util"
)

// AddEntry is Add answered with the response envelope.
func (o *Overlay) AddEntry(ctx context.Context, key, entry string) *result.Return {
	entries, err := o.Add(ctx, key, entry)
	switch {
	case errors.Is(err, util.ErrAlreadyExists):
		return result.Fail("Entry already added in REDIS")
	case err != nil:
		return result.FromError(err)
	}
	return result.OK("Entry successfully added", entries)
}

// RemoveEntry is Remove answered with the response envelope.
func (o *Overlay) RemoveEntry(ctx context.Context, key, entry string) *result.Return {
	entries, err := o.Remove(ctx, key, entry)
	switch {
	case errors.Is(err, util.ErrNotFound):
		return result.Fail("Entry not found")
	case err != nil:
		return result.FromError(err)
	}
	return result.OK("Entry removed", entries)
}

// CheckEntry reports presence in Out. A missing entry is a successful
// answer with Out false.
func (o *Overlay) CheckEntry(ctx context.Context, key, entry string) *result.Return {
	found, err := o.Contains(ctx, key, entry)
	if err != nil {
		return result.FromError(err)
	}
	if found {
		return result.OK("Entry found", true)
	}
	return result.OK("Entry not found", false)
}

// GetEntries returns the router's list under key. A router with no list
// fails with "No entries found" and an empty Out.
func (o *Overlay) GetEntries(ctx context.Context, key string) *result.Return {
	entries, found, err := o.Entries(ctx, key)
	if err != nil {
		return result.FromError(err)
	}
	if !found {
		return &result.Return{Result: false, Comment: "No entries found", Out: []string{}}
	}
	return result.OK("", entries)
}
