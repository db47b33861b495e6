package domain

import (
	"bytes"
	"encoding/json"
	"sort"
)

var (
	moduleKeys   = []string{"id", "title", "status"}
	manifestKeys = []string{"name", "language", "modules", "currentModule", "version", "courseCompleted"}
)

// MarshalJSON writes the known fields in schema order followed by preserved
// unknown keys in sorted order, so equal values always serialize identically.
func (mi ModuleInfo) MarshalJSON() ([]byte, error) {
	type plain ModuleInfo
	return marshalWithExtra(plain(mi), mi.Extra, moduleKeys)
}

// UnmarshalJSON reads the known fields and keeps every other key in Extra
func (mi *ModuleInfo) UnmarshalJSON(data []byte) error {
	type plain ModuleInfo
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := unknownKeys(data, moduleKeys)
	if err != nil {
		return err
	}
	*mi = ModuleInfo(p)
	mi.Extra = extra
	return nil
}

// MarshalJSON writes the manifest deterministically; see ModuleInfo.MarshalJSON
func (m CourseManifest) MarshalJSON() ([]byte, error) {
	type plain CourseManifest
	return marshalWithExtra(plain(m), m.Extra, manifestKeys)
}

// UnmarshalJSON reads the manifest and keeps unrecognized keys in Extra
func (m *CourseManifest) UnmarshalJSON(data []byte) error {
	type plain CourseManifest
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := unknownKeys(data, manifestKeys)
	if err != nil {
		return err
	}
	*m = CourseManifest(p)
	m.Extra = extra
	return nil
}

func marshalWithExtra(v any, extra map[string]json.RawMessage, known []string) ([]byte, error) {
	base, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return base, nil
	}

	keys := make([]string, 0, len(extra))
	for k := range extra {
		if !contains(known, k) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return base, nil
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(base[:len(base)-1])
	needComma := len(bytes.TrimSpace(base)) > 2
	for _, k := range keys {
		if needComma {
			buf.WriteByte(',')
		}
		needComma = true
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		raw := extra[k]
		if len(raw) == 0 {
			raw = json.RawMessage("null")
		}
		buf.Write(raw)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func unknownKeys(data []byte, known []string) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
