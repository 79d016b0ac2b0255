package urlstate

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"
)

func sampleState() QueryState {
	return QueryState{
		Tab:            "logs",
		VisibleColumns: []string{"runName", "status", "duration", "branch"},
		ColumnOrder:    []string{"duration", "runName", "branch", "status"},
		SortOrder: []SortField{
			{Column: "startedAt", Direction: Desc},
			{Column: "runName", Direction: Asc},
		},
		Timeframe: Timeframe{
			From: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
			To:   time.Date(2024, 1, 2, 18, 30, 15, 250*int(time.Millisecond), time.UTC),
		},
		Criteria: map[string]string{
			"status": "RUNNING,FAILED_TO_START",
			"result": "FAILED,PASSED",
			"search": "checkout flow",
		},
	}
}

func TestMinifyExpand(t *testing.T) {
	params := map[string]string{
		KeyTab:            "logs",
		KeyVisibleColumns: "runName,status,customColumn",
		KeySortOrder:      "startedAt:desc,owner:asc",
		KeyFrom:           "2024-01-01T10:00:00.000Z",
		KeyStatus:         "RUNNING,COMPLETED",
		"futureParam":     "keep-me",
	}

	min := Minify(params)
	want := map[string]string{
		"t":           "l",
		"vc":          "rn,st,customColumn",
		"so":          "sa:d,ow:a",
		"f":           strconv.FormatInt(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC).UnixMilli(), 36),
		"s":           "R,C",
		"futureParam": "keep-me",
	}
	if !reflect.DeepEqual(min, want) {
		t.Errorf("Minify() = %v, want %v", min, want)
	}

	if got := Expand(min); !reflect.DeepEqual(got, params) {
		t.Errorf("Expand(Minify()) = %v, want %v", got, params)
	}
}

func TestMinifyUnknownValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown tab", KeyTab, "reports"},
		{"unknown column in list", KeyColumnOrder, "runName,brandNew"},
		{"unknown direction", KeySortOrder, "runName:sideways"},
		{"sort without direction", KeySortOrder, "runName"},
		{"relative time", KeyRelative, "24h"},
		{"empty list", KeyVisibleColumns, ""},
		{"date keyword", KeyFrom, "now"},
		{"date that looks like base 36", KeyTo, "zz"},
		{"date with marker prefix", KeyFrom, "~now"},
		{"empty date", KeyTo, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := map[string]string{tt.key: tt.value}
			got := Expand(Minify(in))
			if got[tt.key] != tt.value {
				t.Errorf("round trip of %q = %q", tt.value, got[tt.key])
			}
		})
	}
}

func TestDateBase36(t *testing.T) {
	instant := "2023-06-15T08:45:30.123Z"
	short := minifyDate(instant)
	ms, err := strconv.ParseInt(short, 36, 64)
	if err != nil {
		t.Fatalf("minified date %q is not base 36: %v", short, err)
	}
	if ms != time.Date(2023, 6, 15, 8, 45, 30, 123*int(time.Millisecond), time.UTC).UnixMilli() {
		t.Errorf("unexpected epoch millis %d", ms)
	}
	if got := expandDate(short); got != instant {
		t.Errorf("expandDate() = %q, want %q", got, instant)
	}

	// Offsets are normalised to UTC
	if got := expandDate(minifyDate("2023-06-15T10:45:30.123+02:00")); got != instant {
		t.Errorf("offset instant expanded to %q", got)
	}
}

func TestTablesAreBijective(t *testing.T) {
	for name, table := range map[string]*valueTable{
		"tab":       tabValues,
		"column":    columnValues,
		"status":    statusValues,
		"result":    resultValues,
		"direction": directionValues,
	} {
		if len(table.forward) != len(table.reverse) {
			t.Errorf("%s table is not a bijection", name)
		}
		for full, short := range table.forward {
			if table.reverse[short] != full {
				t.Errorf("%s: %q -> %q does not reverse", name, full, short)
			}
		}
	}
	if len(shortKeys) != len(fields) {
		t.Errorf("short key table has %d entries, want %d", len(shortKeys), len(fields))
	}
}

func TestEncodeDecodeState(t *testing.T) {
	state := sampleState()

	encoded, err := EncodeState(state)
	if err != nil {
		t.Fatalf("EncodeState() error = %v", err)
	}
	if encoded == "" {
		t.Fatal("want non-empty encoding")
	}
	if strings.ContainsAny(encoded, "+/=?&#") {
		t.Errorf("encoding is not URL safe: %q", encoded)
	}

	got := NewCodec(nil).DecodeState(encoded)
	if got == nil {
		t.Fatal("DecodeState() = nil")
	}

	if got.Tab != state.Tab {
		t.Errorf("tab = %q, want %q", got.Tab, state.Tab)
	}
	if !reflect.DeepEqual(got.VisibleColumns, state.VisibleColumns) {
		t.Errorf("visible columns = %v, want %v", got.VisibleColumns, state.VisibleColumns)
	}
	if !reflect.DeepEqual(got.ColumnOrder, state.ColumnOrder) {
		t.Errorf("column order = %v, want %v", got.ColumnOrder, state.ColumnOrder)
	}
	if !reflect.DeepEqual(got.SortOrder, state.SortOrder) {
		t.Errorf("sort order = %v, want %v", got.SortOrder, state.SortOrder)
	}
	if !got.Timeframe.From.Equal(state.Timeframe.From) || !got.Timeframe.To.Equal(state.Timeframe.To) {
		t.Errorf("timeframe = %+v, want %+v", got.Timeframe, state.Timeframe)
	}
	if !reflect.DeepEqual(got.Criteria, state.Criteria) {
		t.Errorf("criteria = %v, want %v", got.Criteria, state.Criteria)
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	a, err := EncodeState(sampleState())
	if err != nil {
		t.Fatal(err)
	}
	b, err := EncodeState(sampleState())
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("encodings differ: %q vs %q", a, b)
	}
}

func TestEmptyState(t *testing.T) {
	encoded, err := Encode(map[string]string{})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if encoded != "" {
		t.Errorf("empty params encoded to %q", encoded)
	}
	if encoded, _ := EncodeState(QueryState{}); encoded != "" {
		t.Errorf("empty state encoded to %q", encoded)
	}
	if got := NewCodec(nil).Decode(""); got != nil {
		t.Errorf("Decode(\"\") = %v, want nil", got)
	}
}

func TestDecodeCorrupt(t *testing.T) {
	valid, err := Encode(map[string]string{KeyTab: "logs"})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		input string
	}{
		{"not base64", "!!!not-base64!!!"},
		{"not deflate", "aGVsbG8gd29ybGQ"},
		{"truncated", valid[:len(valid)/2]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeParams(tt.input); !errors.Is(err, ErrCorrupt) {
				t.Errorf("want ErrCorrupt, got %v", err)
			}
			if got := NewCodec(nil).Decode(tt.input); got != nil {
				t.Errorf("Decode() = %v, want nil", got)
			}
		})
	}
}

func TestDecodeNonStringValues(t *testing.T) {
	if _, err := unmarshalObject([]byte(`{"t":"l","p":3}`)); err == nil {
		t.Error("want error for numeric value")
	}
	if _, err := unmarshalObject([]byte(`["t"]`)); err == nil {
		t.Error("want error for non-object payload")
	}
}

func TestFromParamsErrors(t *testing.T) {
	if _, err := FromParams(map[string]string{KeyFrom: "yesterday"}); err == nil {
		t.Error("want error for invalid from")
	}
	if _, err := FromParams(map[string]string{KeySortOrder: "runName:up"}); err == nil {
		t.Error("want error for invalid direction")
	}
	if s := NewCodec(nil).DecodeState(mustEncode(t, map[string]string{KeySortOrder: ":asc"})); s != nil {
		t.Errorf("DecodeState() = %+v, want nil", s)
	}
}

func TestReservedCriteriaIgnored(t *testing.T) {
	s := QueryState{Tab: "logs", Criteria: map[string]string{KeyTab: "methods", "owner": "ana"}}
	params := s.Params()
	if params[KeyTab] != "logs" {
		t.Errorf("tab param = %q, want logs", params[KeyTab])
	}
	if params["owner"] != "ana" {
		t.Errorf("owner param = %q", params["owner"])
	}
}

func TestURLHelpers(t *testing.T) {
	encoded := mustEncode(t, map[string]string{KeyTab: "artifacts"})

	link, err := WithState("https://dash.example.com/runs/9?x=1", encoded)
	if err != nil {
		t.Fatalf("WithState() error = %v", err)
	}
	got := NewCodec(nil).FromURL(link)
	if got[KeyTab] != "artifacts" {
		t.Errorf("FromURL() = %v", got)
	}

	cleared, err := WithState(link, "")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(cleared, QueryParam+"=") {
		t.Errorf("q should be removed: %s", cleared)
	}
	if NewCodec(nil).FromURL(cleared) != nil {
		t.Error("missing q should decode to nil")
	}
}

func mustEncode(t *testing.T, params map[string]string) string {
	t.Helper()
	s, err := Encode(params)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	return s
}
