package minishop

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/nhle/notification-center/internal/model"
)

// Notification is one element of GET /recent.
type Notification struct {
	ID        FlexID   `json:"id"`
	Type      string   `json:"type"`
	Title     string   `json:"title"`
	Message   string   `json:"message"`
	Timestamp FlexTime `json:"timestamp"`
	Severity  string   `json:"severity"`
	Read      bool     `json:"read"`
}

// StatsResponse is the body of GET /stats.
type StatsResponse struct {
	Total      int            `json:"total"`
	Unread     int            `json:"unread"`
	ByType     map[string]int `json:"byType"`
	BySeverity map[string]int `json:"bySeverity"`
	LastUpdate FlexTime       `json:"lastUpdate"`
}

// FlexID accepts either a JSON string or a JSON number.
type FlexID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = FlexID(n.String())
	return nil
}

// timestampLayouts are tried in order for string timestamps. Layouts
// without a zone are interpreted in local time.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// FlexTime decodes the timestamp shapes a Jackson-backed server may emit:
// ISO strings with or without zone, [y,M,d,h,m,s,nanos] arrays, or epoch
// milliseconds. Anything unrecognised decodes to the zero time.
type FlexTime struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler. It never fails so that one
// malformed timestamp cannot discard a whole snapshot.
func (t *FlexTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	t.Time = time.Time{}

	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		return nil

	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		t.Time = parseTimestamp(s)

	case data[0] == '[':
		var parts []int
		if err := json.Unmarshal(data, &parts); err != nil || len(parts) < 3 {
			return nil
		}
		for len(parts) < 7 {
			parts = append(parts, 0)
		}
		t.Time = time.Date(
			parts[0], time.Month(parts[1]), parts[2],
			parts[3], parts[4], parts[5], parts[6],
			time.Local,
		)

	default:
		ms, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return nil
		}
		t.Time = time.UnixMilli(ms)
	}

	return nil
}

// parseTimestamp parses a string timestamp against timestampLayouts.
func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// toModel converts a wire notification to the domain type.
func (n Notification) toModel() model.Notification {
	return model.Notification{
		ID:        string(n.ID),
		Type:      n.Type,
		Severity:  model.Severity(strings.ToUpper(strings.TrimSpace(n.Severity))),
		Title:     n.Title,
		Message:   n.Message,
		Timestamp: n.Timestamp.Time,
		Read:      n.Read,
	}
}

// toModel converts a stats response to the domain type.
func (s StatsResponse) toModel() model.Stats {
	byType := s.ByType
	if byType == nil {
		byType = map[string]int{}
	}
	return model.Stats{
		Total:      s.Total,
		Unread:     s.Unread,
		ByType:     byType,
		BySeverity: s.BySeverity,
		LastUpdate: s.LastUpdate.Time,
	}
}
