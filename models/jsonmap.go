package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSONMap stores a free-form JSON object in a single JSON/JSONB column. It backs
// Action/Reaction.ConfigSchema and Workflow.ActionConfig/ReactionConfig (spec §3).
//
// No JSON-Schema or generic-JSON-column library (e.g. gorm.io/datatypes) appears anywhere
// in the example pack, so this type is the one deliberately stdlib-only piece of the model
// layer — see DESIGN.md.
type JSONMap map[string]interface{}

// Value implements driver.Valuer for GORM/database/sql writes.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for GORM/database/sql reads.
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("models: JSONMap.Scan: unsupported source type")
	}
	if len(raw) == 0 {
		*m = JSONMap{}
		return nil
	}
	out := JSONMap{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*m = out
	return nil
}

// GetString returns the string value of key, and whether it was present and a string.
func (m JSONMap) GetString(key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetFloat returns the numeric value of key (JSON numbers decode as float64).
func (m JSONMap) GetFloat(key string) (float64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// GetBool returns the boolean value of key, and whether it was present and a bool.
func (m JSONMap) GetBool(key string) (bool, bool) {
	v, ok := m[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}
