package models

import "fmt"

// ValidateConfig checks a Workflow's actionConfig/reactionConfig against an Action/Reaction's
// ConfigSchema. It implements the subset of JSON-Schema the built-in catalog's schemas actually
// use: {"type":"object","required":[...],"properties":{name:{"type":..., "enum":[...]}}}.
//
// No JSON-Schema library appears anywhere in the example pack (confirmed by grep across all
// ~2500 files), so this is one of the few stdlib-only pieces of the module — see DESIGN.md.
func ValidateConfig(schema JSONMap, config JSONMap) error {
	if schema == nil {
		return nil
	}
	if required, ok := schema["required"].([]interface{}); ok {
		for _, r := range required {
			name, _ := r.(string)
			if name == "" {
				continue
			}
			if _, present := config[name]; !present {
				return fmt.Errorf("missing required field %q", name)
			}
		}
	}
	props, _ := schema["properties"].(map[string]interface{})
	for name, rawProp := range props {
		value, present := config[name]
		if !present {
			continue
		}
		prop, ok := rawProp.(map[string]interface{})
		if !ok {
			continue
		}
		if t, ok := prop["type"].(string); ok {
			if err := checkType(name, t, value); err != nil {
				return err
			}
		}
		if enum, ok := prop["enum"].([]interface{}); ok {
			if !contains(enum, value) {
				return fmt.Errorf("field %q must be one of %v", name, enum)
			}
		}
	}
	return nil
}

func checkType(field, jsonType string, value interface{}) error {
	ok := true
	switch jsonType {
	case "string":
		_, ok = value.(string)
	case "number":
		_, ok = value.(float64)
	case "integer":
		f, isFloat := value.(float64)
		ok = isFloat && f == float64(int64(f))
	case "boolean":
		_, ok = value.(bool)
	case "object":
		_, ok = value.(map[string]interface{})
	case "array":
		_, ok = value.([]interface{})
	}
	if !ok {
		return fmt.Errorf("field %q must be of type %s", field, jsonType)
	}
	return nil
}

func contains(haystack []interface{}, needle interface{}) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}
