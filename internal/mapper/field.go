// Package mapper caches how Go struct types map onto EDN maps: which
// fields take part and under which key.
package mapper

import (
	"reflect"
	"slices"
	"strings"
	"sync"
)

// TagName is the struct tag consulted for field names and options.
const TagName = "edn"

// Field is one struct field visible to encoding and decoding. Fields of
// embedded structs are promoted as Go promotes them.
type Field struct {
	Name      string
	Index     []int
	Tagged    bool
	OmitEmpty bool
	depth     int
}

// Fields is the cached field set of a struct type.
type Fields struct {
	// List holds the fields in declaration order.
	List []Field

	exact map[string]int
	fold  map[string]int
}

// Lookup finds the field for key, first by exact name and then ignoring
// case.
func (fs *Fields) Lookup(key string) (Field, bool) {
	if i, ok := fs.exact[key]; ok {
		return fs.List[i], true
	}
	if i, ok := fs.fold[strings.ToLower(key)]; ok {
		return fs.List[i], true
	}
	return Field{}, false
}

var fieldCache sync.Map // map[reflect.Type]*Fields

// Cached returns the fields of the struct type t, computing them once.
// Unexported fields and fields tagged `edn:"-"` are skipped. When an
// embedded struct promotes a name that a shallower field already uses,
// the shallower field wins.
func Cached(t reflect.Type) *Fields {
	if f, ok := fieldCache.Load(t); ok {
		return f.(*Fields)
	}

	var all []Field
	var walk func(t reflect.Type, index []int, depth int)
	walk = func(t reflect.Type, index []int, depth int) {
		for i := range t.NumField() {
			sf := t.Field(i)
			tag := sf.Tag.Get(TagName)
			if tag == "-" {
				continue
			}
			name, opts, _ := strings.Cut(tag, ",")
			idx := append(slices.Clip(index), i)

			if sf.Anonymous && name == "" {
				ft := sf.Type
				if ft.Kind() == reflect.Pointer {
					if !sf.IsExported() {
						// An unexported embedded pointer cannot be allocated.
						continue
					}
					ft = ft.Elem()
				}
				if ft.Kind() == reflect.Struct {
					walk(ft, idx, depth+1)
					continue
				}
			}
			if !sf.IsExported() {
				continue
			}

			f := Field{Name: sf.Name, Index: idx, depth: depth}
			if name != "" {
				f.Name = name
				f.Tagged = true
			}
			for opts != "" {
				var opt string
				opt, opts, _ = strings.Cut(opts, ",")
				if strings.TrimSpace(opt) == "omitempty" {
					f.OmitEmpty = true
				}
			}
			all = append(all, f)
		}
	}
	walk(t, nil, 0)

	shallowest := make(map[string]int)
	for _, f := range all {
		if d, ok := shallowest[f.Name]; !ok || f.depth < d {
			shallowest[f.Name] = f.depth
		}
	}
	fs := &Fields{exact: make(map[string]int), fold: make(map[string]int)}
	for _, f := range all {
		if shallowest[f.Name] != f.depth {
			continue
		}
		if _, dup := fs.exact[f.Name]; dup {
			continue
		}
		fs.exact[f.Name] = len(fs.List)
		fs.List = append(fs.List, f)
	}
	for i, f := range fs.List {
		lower := strings.ToLower(f.Name)
		if _, ok := fs.fold[lower]; !ok {
			fs.fold[lower] = i
		}
	}

	actual, _ := fieldCache.LoadOrStore(t, fs)
	return actual.(*Fields)
}
