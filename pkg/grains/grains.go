// Package grains loads the facts operations need about the router they run
// against: its netdb id and the device column entry.
package grains

import (
	"context"
	"fmt"

	"github.com/erikjseidel/salt-netdb/pkg/column"
	"github.com/erikjseidel/salt-netdb/pkg/util"
)

// OSVyOS is the only router OS with operational command support.
const OSVyOS = "vyos"

// Source reads typed column containers from netdb.
type Source interface {
	Container(ctx context.Context, setID, columnType string) (column.Container, error)
}

// Grains are the router facts.
type Grains struct {
	ID        string             `json:"id"`
	Location  string             `json:"location"`
	Providers []string           `json:"providers"`
	Roles     []string           `json:"roles,omitempty"`
	NodeName  string             `json:"node_name"`
	CVars     column.DeviceCVars `json:"cvars"`
	OS        string             `json:"os"`
}

// Load reads the device column entry for id. The id is upper-cased.
func Load(ctx context.Context, src Source, id, os string) (*Grains, error) {
	id = util.NormalizeSetID(id)
	if id == "" {
		return nil, util.NewValidationError("netdb.id: required")
	}

	c, err := src.Container(ctx, id, string(column.TypeDevice))
	if err != nil {
		return nil, fmt.Errorf("loading grains for %s: %w", id, err)
	}
	devices, ok := c.(*column.DeviceContainer)
	if !ok {
		return nil, fmt.Errorf("loading grains for %s: unexpected %s container", id, c.ColumnType())
	}
	d, ok := devices.Column[id]
	if !ok {
		return nil, &util.ColumnNotFoundError{Column: string(column.TypeDevice), SetID: id}
	}

	util.WithRouter(id).WithField("node_name", d.NodeName).Debug("Loaded grains")
	return &Grains{
		ID:        id,
		Location:  d.Location,
		Providers: d.Providers,
		Roles:     d.Roles,
		NodeName:  d.NodeName,
		CVars:     d.CVars,
		OS:        os,
	}, nil
}

// IsVyOS reports whether operational commands can run on the router.
func (g *Grains) IsVyOS() bool {
	return g != nil && g.OS == OSVyOS
}
