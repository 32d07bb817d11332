package http

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

// isoLayout matches the browser's Date.toISOString.
const isoLayout = "2006-01-02T15:04:05.000Z"

var timeType = reflect.TypeOf(time.Time{})

// EncodeParams flattens a struct or map into the query dialect the backend
// expects:
//
//	{a: {b: 1}}                    -> a.b=1
//	{ids: [1, 2]}                  -> ids[0]=1&ids[1]=2
//	{sorts: [{column: x, asc: 1}]} -> sorts[0].column=x&sorts[0].asc=1
//
// Struct fields are named by their json tag and honour omitempty. Nil values
// are skipped and times are sent as UTC ISO-8601 with milliseconds.
func EncodeParams(params any) (url.Values, error) {
	out := url.Values{}
	if params == nil {
		return out, nil
	}
	if v, ok := params.(url.Values); ok {
		return v, nil
	}

	rv, ok := deref(reflect.ValueOf(params))
	if !ok {
		return out, nil
	}
	if rv.Kind() != reflect.Struct && rv.Kind() != reflect.Map {
		return nil, fmt.Errorf("params must be a struct or map, got %s", rv.Kind())
	}
	if rv.Type() == timeType {
		return nil, fmt.Errorf("params must be a struct or map, got time.Time")
	}

	encodeValue(out, "", rv)
	return out, nil
}

func encodeValue(out url.Values, key string, v reflect.Value) {
	v, ok := deref(v)
	if !ok {
		return
	}

	if v.Type() == timeType {
		if v.CanInterface() {
			out.Add(key, v.Interface().(time.Time).UTC().Format(isoLayout))
		}
		return
	}

	switch v.Kind() {
	case reflect.Struct:
		eachField(v, func(name string, fv reflect.Value) {
			encodeValue(out, joinKey(key, name), fv)
		})
	case reflect.Map:
		keys := v.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
		for _, k := range keys {
			encodeValue(out, joinKey(key, fmt.Sprint(k.Interface())), v.MapIndex(k))
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			encodeValue(out, fmt.Sprintf("%s[%d]", key, i), v.Index(i))
		}
	default:
		if s, ok := scalar(v); ok {
			out.Add(key, s)
		}
	}
}

// eachField walks exported fields, flattening untagged embedded structs.
func eachField(v reflect.Value, fn func(name string, fv reflect.Value)) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		fv := v.Field(i)

		name, omitEmpty, skip := parseTag(f)
		if skip {
			continue
		}
		if f.Anonymous && f.Tag.Get("json") == "" {
			if ev, ok := deref(fv); ok && ev.Kind() == reflect.Struct {
				eachField(ev, fn)
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		if omitEmpty && fv.IsZero() {
			continue
		}
		fn(name, fv)
	}
}

func parseTag(f reflect.StructField) (name string, omitEmpty, skip bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	if name == "" {
		name = f.Name
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" || opt == "omitzero" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}

func deref(v reflect.Value) (reflect.Value, bool) {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	return v, v.IsValid()
}

func scalar(v reflect.Value) (string, bool) {
	switch v.Kind() {
	case reflect.String:
		return v.String(), true
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), true
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 32), true
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64), true
	}
	return "", false
}

func joinKey(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}
