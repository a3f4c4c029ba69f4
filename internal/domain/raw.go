package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"
)

// RawRepoRecord is one entry of the snapshot's repo-data.json.
//
// Besides the fixed fields, the JSON object carries a pair of keys per growth
// window, e.g. "Added30" and "Baseline30". Decoding is lenient: a field with
// the wrong type is treated as absent rather than failing the whole snapshot.
type RawRepoRecord struct {
	Name        string
	Stars       int64
	Language    string
	Topics      string
	Description string
	Added       map[Window]int64
	Baseline    map[Window]int64
}

const (
	addedPrefix    = "Added"
	baselinePrefix = "Baseline"
)

// UnmarshalJSON implements json.Unmarshaler.
func (r *RawRepoRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*r = RawRepoRecord{
		Added:    map[Window]int64{},
		Baseline: map[Window]int64{},
	}
	for key, raw := range fields {
		switch key {
		case "Name":
			r.Name = rawString(raw)
		case "Language":
			r.Language = rawString(raw)
		case "Topics":
			r.Topics = rawString(raw)
		case "Description":
			r.Description = rawString(raw)
		case "Stars":
			r.Stars, _ = rawInt(raw)
		default:
			if w, ok := windowKey(key, addedPrefix); ok {
				if v, ok := rawInt(raw); ok {
					r.Added[w] = v
				}
			} else if w, ok := windowKey(key, baselinePrefix); ok {
				if v, ok := rawInt(raw); ok {
					r.Baseline[w] = v
				}
			}
		}
	}
	return nil
}

// MarshalJSON writes the keys in a stable order: Name, Stars, the window
// pairs by ascending window, Language, Topics, Description.
func (r RawRepoRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	writeKV := func(key string, v any) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.WriteString(strconv.Quote(key))
		buf.WriteByte(':')
		buf.Write(b)
		return nil
	}
	if err := writeKV("Name", r.Name); err != nil {
		return nil, err
	}
	if err := writeKV("Stars", r.Stars); err != nil {
		return nil, err
	}
	for _, w := range r.Windows() {
		if v, ok := r.Added[w]; ok {
			if err := writeKV(addedPrefix+strconv.Itoa(int(w)), v); err != nil {
				return nil, err
			}
		}
		if v, ok := r.Baseline[w]; ok {
			if err := writeKV(baselinePrefix+strconv.Itoa(int(w)), v); err != nil {
				return nil, err
			}
		}
	}
	for _, kv := range []struct{ k, v string }{
		{"Language", r.Language},
		{"Topics", r.Topics},
		{"Description", r.Description},
	} {
		if err := writeKV(kv.k, kv.v); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Windows returns every window that has at least one of its two counts, ascending.
func (r RawRepoRecord) Windows() []Window {
	seen := map[Window]struct{}{}
	for w := range r.Added {
		seen[w] = struct{}{}
	}
	for w := range r.Baseline {
		seen[w] = struct{}{}
	}
	out := make([]Window, 0, len(seen))
	for w := range seen {
		out = append(out, w)
	}
	slices.Sort(out)
	return out
}

// Growth returns the growth pair for w, or nil when either count is missing.
func (r RawRepoRecord) Growth(w Window) *GrowthValue {
	added, okA := r.Added[w]
	baseline, okB := r.Baseline[w]
	if !okA || !okB {
		return nil
	}
	return &GrowthValue{Baseline: baseline, Added: added}
}

func windowKey(key, prefix string) (Window, bool) {
	rest, ok := strings.CutPrefix(key, prefix)
	if !ok || rest == "" {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n <= 0 {
		return 0, false
	}
	return Window(n), true
}

func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// rawInt accepts JSON numbers and numeric strings. Non-finite or
// non-numeric values report false.
func rawInt(raw json.RawMessage) (int64, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, false
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(math.Round(f)), true
}
