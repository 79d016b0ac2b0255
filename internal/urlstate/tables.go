package urlstate

import "fmt"

// Parameter names of the canonical query string
const (
	KeyTab            = "tab"
	KeyVisibleColumns = "visibleColumns"
	KeyColumnOrder    = "columnOrder"
	KeySortOrder      = "sortOrder"
	KeyFrom           = "from"
	KeyTo             = "to"
	KeyRelative       = "relative"
	KeyStatus         = "status"
	KeyResult         = "result"
)

type fieldKind int

const (
	kindPlain fieldKind = iota
	kindEnum            // single value looked up in a table
	kindList            // comma-separated values, each looked up
	kindSort            // id:direction pairs
	kindDate            // ISO-8601 instant, stored as base-36 epoch millis
)

// valueTable is a bidirectional lookup between full values and short codes
type valueTable struct {
	forward map[string]string
	reverse map[string]string
}

func newValueTable(name string, pairs map[string]string) *valueTable {
	t := &valueTable{
		forward: make(map[string]string, len(pairs)),
		reverse: make(map[string]string, len(pairs)),
	}
	for full, short := range pairs {
		if prev, dup := t.reverse[short]; dup {
			panic(fmt.Sprintf("urlstate: %s table maps both %q and %q to %q", name, prev, full, short))
		}
		t.forward[full] = short
		t.reverse[short] = full
	}
	return t
}

func (t *valueTable) minify(v string) string {
	if t == nil {
		return v
	}
	if short, ok := t.forward[v]; ok {
		return short
	}
	return v
}

func (t *valueTable) expand(v string) string {
	if t == nil {
		return v
	}
	if full, ok := t.reverse[v]; ok {
		return full
	}
	return v
}

var (
	tabValues = newValueTable("tab", map[string]string{
		"overview":  "o",
		"methods":   "m",
		"logs":      "l",
		"artifacts": "a",
		"history":   "h",
	})

	columnValues = newValueTable("column", map[string]string{
		"runName":     "rn",
		"status":      "st",
		"result":      "re",
		"startedAt":   "sa",
		"finishedAt":  "fa",
		"duration":    "du",
		"branch":      "br",
		"environment": "en",
		"owner":       "ow",
		"suite":       "su",
		"passed":      "pa",
		"failed":      "fl",
		"skipped":     "sk",
		"tags":        "tg",
	})

	statusValues = newValueTable("status", map[string]string{
		"QUEUED":    "Q",
		"RUNNING":   "R",
		"COMPLETED": "C",
		"CANCELLED": "X",
		"ERRORED":   "E",
	})

	resultValues = newValueTable("result", map[string]string{
		"PASSED":  "P",
		"FAILED":  "F",
		"SKIPPED": "S",
		"FLAKY":   "K",
		"UNKNOWN": "U",
	})

	directionValues = newValueTable("direction", map[string]string{
		"asc":  "a",
		"desc": "d",
	})
)

type fieldSpec struct {
	short  string
	kind   fieldKind
	values *valueTable
}

// fields maps canonical parameter names to their short key and value codec.
// Search criteria without an entry here pass through untouched.
var fields = map[string]fieldSpec{
	KeyTab:            {short: "t", kind: kindEnum, values: tabValues},
	KeyVisibleColumns: {short: "vc", kind: kindList, values: columnValues},
	KeyColumnOrder:    {short: "co", kind: kindList, values: columnValues},
	KeySortOrder:      {short: "so", kind: kindSort, values: columnValues},
	KeyFrom:           {short: "f", kind: kindDate},
	KeyTo:             {short: "e", kind: kindDate},
	KeyRelative:       {short: "r", kind: kindPlain},
	KeyStatus:         {short: "s", kind: kindList, values: statusValues},
	KeyResult:         {short: "rs", kind: kindList, values: resultValues},
	"search":          {short: "q", kind: kindPlain},
	"runName":         {short: "n", kind: kindPlain},
	"branch":          {short: "b", kind: kindPlain},
	"environment":     {short: "env", kind: kindPlain},
	"owner":           {short: "o", kind: kindPlain},
	"suite":           {short: "su", kind: kindPlain},
	"tags":            {short: "tg", kind: kindPlain},
	"page":            {short: "p", kind: kindPlain},
	"pageSize":        {short: "ps", kind: kindPlain},
}

var shortKeys = func() map[string]string {
	reverse := make(map[string]string, len(fields))
	for full, spec := range fields {
		if prev, dup := reverse[spec.short]; dup {
			panic(fmt.Sprintf("urlstate: keys %q and %q share short key %q", prev, full, spec.short))
		}
		reverse[spec.short] = full
	}
	return reverse
}()
