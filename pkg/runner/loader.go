package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/erikjseidel/salt-netdb/pkg/column"
	"github.com/erikjseidel/salt-netdb/pkg/netdb"
	"github.com/erikjseidel/salt-netdb/pkg/result"
	"github.com/erikjseidel/salt-netdb/pkg/util"
)

func validColumn(name string) bool {
	_, err := column.Resolve(name)
	return err == nil
}

func readYAML(path string) (interface{}, *result.Return) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &result.Return{Result: false, Error: true, Comment: "File not found."}
	}
	if err != nil {
		return nil, &result.Return{Result: false, Error: true, Comment: err.Error()}
	}
	var data interface{}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, &result.Return{Result: false, Error: true, Comment: fmt.Sprintf("%s: %v", path, err)}
	}
	return data, nil
}

// LoadYAML bulk loads column data from a YAML file. netdb only creates
// elements that do not exist yet.
func (r *Runner) LoadYAML(ctx context.Context, columnType, path string, test bool) *result.Return {
	if !validColumn(columnType) {
		return result.Fail("Invalid column")
	}
	data, fail := readYAML(path)
	if fail != nil {
		return fail
	}
	start := time.Now()
	ret := answer(r.netdb.Save(ctx, columnType, data, test))
	r.record("loader.load", "", columnType, test, ret, start)
	return ret
}

// UpdateFromYAML bulk updates column data from a YAML file. netdb only
// replaces elements that already exist.
func (r *Runner) UpdateFromYAML(ctx context.Context, columnType, path string, test bool) *result.Return {
	if !validColumn(columnType) {
		return result.Fail("Invalid column")
	}
	data, fail := readYAML(path)
	if fail != nil {
		return fail
	}
	start := time.Now()
	ret := answer(r.netdb.Update(ctx, columnType, data, test))
	r.record("loader.update", "", columnType, test, ret, start)
	return ret
}

// GetColumn returns a whole column. With raw the column is returned as a
// YAML document that UpdateFromYAML accepts.
func (r *Runner) GetColumn(ctx context.Context, columnType string, raw bool) *result.Return {
	if !validColumn(columnType) {
		return result.Fail("Invalid column")
	}
	return rawYAML(answer(r.netdb.Get(ctx, columnType)), raw)
}

// Query returns the column fragment selected by the element identifiers.
// Set ids are upper-cased unless they name a shared set ("_...").
func (r *Runner) Query(ctx context.Context, columnType, setID, category, family, element string, raw bool) *result.Return {
	if !validColumn(columnType) {
		return result.Fail("Invalid column")
	}
	f := netdb.Filter{
		SetID:    util.NormalizeSetID(setID),
		Category: category,
		Family:   family,
		Element:  element,
	}
	return rawYAML(answer(r.netdb.Query(ctx, columnType, f)), raw)
}

func rawYAML(ret *result.Return, raw bool) *result.Return {
	if !raw || !ret.Result {
		return ret
	}
	out, err := yaml.Marshal(ret.Out)
	if err != nil {
		return &result.Return{Result: false, Error: true, Comment: err.Error()}
	}
	ret.Out = string(out)
	return ret
}
