package urlstate

import (
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the canonical form of instants in query parameters
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Minify shortens known keys and values. Unknown keys and values are copied
// as they are.
func Minify(params map[string]string) map[string]string {
	out := make(map[string]string, len(params))
	for key, value := range params {
		spec, ok := fields[key]
		if !ok {
			out[key] = value
			continue
		}
		out[spec.short] = minifyValue(spec, value)
	}
	return out
}

// Expand is the inverse of Minify. Keys without a short form are assumed to
// be canonical already.
func Expand(params map[string]string) map[string]string {
	out := make(map[string]string, len(params))
	for key, value := range params {
		full, ok := shortKeys[key]
		if !ok {
			out[key] = value
			continue
		}
		out[full] = expandValue(fields[full], value)
	}
	return out
}

func minifyValue(spec fieldSpec, value string) string {
	switch spec.kind {
	case kindEnum:
		return spec.values.minify(value)
	case kindList:
		return mapList(value, spec.values.minify)
	case kindSort:
		return mapSort(value, spec.values.minify, directionValues.minify)
	case kindDate:
		return minifyDate(value)
	default:
		return value
	}
}

func expandValue(spec fieldSpec, value string) string {
	switch spec.kind {
	case kindEnum:
		return spec.values.expand(value)
	case kindList:
		return mapList(value, spec.values.expand)
	case kindSort:
		return mapSort(value, spec.values.expand, directionValues.expand)
	case kindDate:
		return expandDate(value)
	default:
		return value
	}
}

func mapList(value string, fn func(string) string) string {
	if value == "" {
		return value
	}
	items := strings.Split(value, ",")
	for i, item := range items {
		items[i] = fn(item)
	}
	return strings.Join(items, ",")
}

func mapSort(value string, column, direction func(string) string) string {
	if value == "" {
		return value
	}
	pairs := strings.Split(value, ",")
	for i, pair := range pairs {
		id, dir, found := strings.Cut(pair, ":")
		if !found {
			pairs[i] = column(id)
			continue
		}
		pairs[i] = column(id) + ":" + direction(dir)
	}
	return strings.Join(pairs, ",")
}

// rawDatePrefix marks a date value that was not an instant and is carried
// verbatim, so expansion does not read it as base-36 milliseconds.
const rawDatePrefix = "~"

func minifyDate(value string) string {
	if value == "" {
		return value
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return rawDatePrefix + value
	}
	return strconv.FormatInt(t.UnixMilli(), 36)
}

func expandDate(value string) string {
	if raw, ok := strings.CutPrefix(value, rawDatePrefix); ok {
		return raw
	}
	ms, err := strconv.ParseInt(value, 36, 64)
	if err != nil {
		return value
	}
	return FormatTime(time.UnixMilli(ms))
}

// FormatTime renders t in the canonical UTC millisecond layout
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
