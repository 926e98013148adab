package postgres

import (
	"reflect"
	"sync"
)

// The catalog and document repos build their squirrel INSERT and
// UPDATE statements from entity structs, keyed by "db" tags. The tag
// walk is reflection-heavy, so per-type layouts are computed once and
// cached.

// dbField pairs a struct field index with its column name.
type dbField struct {
	index int
	col   string
}

// dbLayout is the cached tag layout of one entity type. Embedded
// structs (entity.Catalog, entity.BaseDocument) are recorded by index
// and flattened on demand.
type dbLayout struct {
	fields   []dbField
	embedded []int
}

var layoutCache sync.Map // reflect.Type -> *dbLayout

func layoutFor(t reflect.Type) *dbLayout {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if cached, ok := layoutCache.Load(t); ok {
		return cached.(*dbLayout)
	}

	l := &dbLayout{}
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.Anonymous {
				l.embedded = append(l.embedded, i)
				continue
			}
			tag := f.Tag.Get("db")
			if tag == "" || tag == "-" {
				continue
			}
			l.fields = append(l.fields, dbField{index: i, col: tag})
		}
	}

	layoutCache.Store(t, l)
	return l
}

// ExtractDBColumns lists the column names of T in declaration order,
// embedded base entities first. Repos call it once at construction to
// build their SELECT lists.
func ExtractDBColumns[T any]() []string {
	var zero T
	return columnsOf(reflect.TypeOf(zero))
}

func columnsOf(t reflect.Type) []string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	l := layoutFor(t)
	var cols []string
	for _, idx := range l.embedded {
		cols = append(cols, columnsOf(t.Field(idx).Type)...)
	}
	for _, f := range l.fields {
		cols = append(cols, f.col)
	}
	return cols
}

// StructToMap flattens an entity into a column-to-value map for
// squirrel SetMap/Values. Fields without a "db" tag and tags of "-"
// are skipped.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	l := layoutFor(rv.Type())
	res := make(map[string]any, len(l.fields))
	for _, idx := range l.embedded {
		for k, val := range StructToMap(rv.Field(idx).Interface()) {
			res[k] = val
		}
	}
	for _, f := range l.fields {
		res[f.col] = rv.Field(f.index).Interface()
	}
	return res
}
