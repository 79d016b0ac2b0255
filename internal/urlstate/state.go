package urlstate

import (
	"fmt"
	"strings"
	"time"
)

// Direction of a sort field
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortField orders results by one column
type SortField struct {
	Column    string    `json:"column"`
	Direction Direction `json:"direction"`
}

// Timeframe is either an absolute From/To range or a relative duration such
// as "24h". Zero times are omitted.
type Timeframe struct {
	From     time.Time `json:"from,omitempty"`
	To       time.Time `json:"to,omitempty"`
	Relative string    `json:"relative,omitempty"`
}

// QueryState is the UI state persisted in the q parameter
type QueryState struct {
	Tab            string            `json:"tab,omitempty"`
	VisibleColumns []string          `json:"visible_columns,omitempty"`
	ColumnOrder    []string          `json:"column_order,omitempty"`
	SortOrder      []SortField       `json:"sort_order,omitempty"`
	Timeframe      Timeframe         `json:"timeframe"`
	Criteria       map[string]string `json:"criteria,omitempty"`
}

var reservedKeys = map[string]bool{
	KeyTab:            true,
	KeyVisibleColumns: true,
	KeyColumnOrder:    true,
	KeySortOrder:      true,
	KeyFrom:           true,
	KeyTo:             true,
	KeyRelative:       true,
}

// IsReserved reports whether key is owned by a QueryState field and cannot
// be used as a search criterion.
func IsReserved(key string) bool {
	return reservedKeys[key]
}

// Params flattens the state into canonical query parameters. Empty fields
// produce no parameter.
func (s QueryState) Params() map[string]string {
	params := make(map[string]string)
	for k, v := range s.Criteria {
		if !IsReserved(k) {
			params[k] = v
		}
	}

	if s.Tab != "" {
		params[KeyTab] = s.Tab
	}
	if len(s.VisibleColumns) > 0 {
		params[KeyVisibleColumns] = strings.Join(s.VisibleColumns, ",")
	}
	if len(s.ColumnOrder) > 0 {
		params[KeyColumnOrder] = strings.Join(s.ColumnOrder, ",")
	}
	if len(s.SortOrder) > 0 {
		pairs := make([]string, len(s.SortOrder))
		for i, f := range s.SortOrder {
			pairs[i] = f.Column + ":" + string(f.Direction)
		}
		params[KeySortOrder] = strings.Join(pairs, ",")
	}
	if !s.Timeframe.From.IsZero() {
		params[KeyFrom] = FormatTime(s.Timeframe.From)
	}
	if !s.Timeframe.To.IsZero() {
		params[KeyTo] = FormatTime(s.Timeframe.To)
	}
	if s.Timeframe.Relative != "" {
		params[KeyRelative] = s.Timeframe.Relative
	}
	return params
}

// FromParams rebuilds a QueryState from canonical query parameters. Keys not
// owned by a field become criteria.
func FromParams(params map[string]string) (QueryState, error) {
	var s QueryState
	for key, value := range params {
		switch key {
		case KeyTab:
			s.Tab = value
		case KeyVisibleColumns:
			s.VisibleColumns = splitList(value)
		case KeyColumnOrder:
			s.ColumnOrder = splitList(value)
		case KeySortOrder:
			order, err := ParseSortOrder(value)
			if err != nil {
				return QueryState{}, err
			}
			s.SortOrder = order
		case KeyFrom:
			t, err := ParseTime(value)
			if err != nil {
				return QueryState{}, fmt.Errorf("invalid %s: %w", key, err)
			}
			s.Timeframe.From = t
		case KeyTo:
			t, err := ParseTime(value)
			if err != nil {
				return QueryState{}, fmt.Errorf("invalid %s: %w", key, err)
			}
			s.Timeframe.To = t
		case KeyRelative:
			s.Timeframe.Relative = value
		default:
			if s.Criteria == nil {
				s.Criteria = make(map[string]string)
			}
			s.Criteria[key] = value
		}
	}
	return s, nil
}

// ParseSortOrder parses "id:dir,id:dir". A missing direction means ascending.
func ParseSortOrder(value string) ([]SortField, error) {
	var order []SortField
	for _, pair := range splitList(value) {
		column, dir, found := strings.Cut(pair, ":")
		if column == "" {
			return nil, fmt.Errorf("invalid sort field %q", pair)
		}
		d := Asc
		if found {
			switch Direction(dir) {
			case Asc, Desc:
				d = Direction(dir)
			default:
				return nil, fmt.Errorf("invalid sort direction %q", dir)
			}
		}
		order = append(order, SortField{Column: column, Direction: d})
	}
	return order, nil
}

// ParseTime parses an ISO-8601 instant and truncates it to milliseconds
func ParseTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC().Truncate(time.Millisecond), nil
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, ",")
}
