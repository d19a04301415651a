package column

import (
	"bytes"
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/erikjseidel/salt-netdb/pkg/util"
)

var (
	jsonUnmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// fieldCache maps a struct type to its JSON member names.
var fieldCache sync.Map

// checkMemberNames walks data against the Go type t and rejects any object
// member whose name is not exactly a declared JSON name. encoding/json
// folds case when matching members, so "MTU" would otherwise be accepted
// as "mtu".
func checkMemberNames(data []byte, t reflect.Type) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return util.NewValidationError(err.Error())
	}
	return walkMembers(doc, t, "")
}

func walkMembers(v interface{}, t reflect.Type, path string) error {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	pt := reflect.PointerTo(t)
	if pt.Implements(jsonUnmarshalerType) || pt.Implements(textUnmarshalerType) {
		return nil
	}

	switch t.Kind() {
	case reflect.Struct:
		obj, ok := v.(map[string]interface{})
		if !ok {
			return nil
		}
		fields := structMembers(t)
		for _, k := range sortedKeys(obj) {
			ft, ok := fields[k]
			if !ok {
				return util.NewValidationError(fmt.Sprintf("%s: unknown field %q", pathOrRoot(path), k))
			}
			if err := walkMembers(obj[k], ft, join2(path, k)); err != nil {
				return err
			}
		}
	case reflect.Map:
		obj, ok := v.(map[string]interface{})
		if !ok {
			return nil
		}
		for _, k := range sortedKeys(obj) {
			if err := walkMembers(obj[k], t.Elem(), keyed(pathOrRoot(path), k)); err != nil {
				return err
			}
		}
	case reflect.Slice, reflect.Array:
		arr, ok := v.([]interface{})
		if !ok {
			return nil
		}
		for i, e := range arr {
			if err := walkMembers(e, t.Elem(), keyed(pathOrRoot(path), itoa(i))); err != nil {
				return err
			}
		}
	}
	return nil
}

func structMembers(t reflect.Type) map[string]reflect.Type {
	if m, ok := fieldCache.Load(t); ok {
		return m.(map[string]reflect.Type)
	}
	m := make(map[string]reflect.Type)
	collectMembers(t, m)
	fieldCache.Store(t, m)
	return m
}

func collectMembers(t reflect.Type, m map[string]reflect.Type) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")

		if f.Anonymous && name == "" {
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				collectMembers(ft, m)
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		if name == "" {
			name = f.Name
		}
		if _, dup := m[name]; !dup {
			m[name] = f.Type
		}
	}
}

// foldsToAny reports whether key matches one of names ignoring case
// without matching any exactly.
func foldsToAny(key string, names map[string]bool) bool {
	if names[key] {
		return false
	}
	for n := range names {
		if strings.EqualFold(n, key) {
			return true
		}
	}
	return false
}

func join2(path, key string) string {
	if path == "" {
		return key
	}
	return join(path, key)
}

func pathOrRoot(path string) string {
	if path == "" {
		return "document"
	}
	return path
}
