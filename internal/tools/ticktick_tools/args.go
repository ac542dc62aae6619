package ticktick_tools

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/teemow/ticktick-mcp/internal/ticktick"
)

// requiredString returns args[name] as a non-empty string.
func requiredString(args map[string]interface{}, name string) (string, error) {
	v, ok := args[name].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", ticktick.NewValidationError(name, "is required")
	}
	return v, nil
}

// optionalString returns args[name] or "" when it is absent or not a string.
func optionalString(args map[string]interface{}, name string) string {
	v, _ := args[name].(string)
	return v
}

// optionalInt reads an integral number. ok is false when the argument is absent.
func optionalInt(args map[string]interface{}, name string) (v int, ok bool, err error) {
	raw, present := args[name]
	if !present || raw == nil {
		return 0, false, nil
	}
	switch n := raw.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, false, ticktick.NewValidationError(name, "must be an integer, got %v", n)
		}
		return int(n), true, nil
	case int:
		return n, true, nil
	case int64:
		return int(n), true, nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false, ticktick.NewValidationError(name, "must be an integer, got %s", n)
		}
		return int(i), true, nil
	default:
		return 0, false, ticktick.NewValidationError(name, "must be a number")
	}
}

// optionalBool reads a boolean. ok is false when the argument is absent.
func optionalBool(args map[string]interface{}, name string) (v bool, ok bool, err error) {
	raw, present := args[name]
	if !present || raw == nil {
		return false, false, nil
	}
	b, isBool := raw.(bool)
	if !isBool {
		return false, false, ticktick.NewValidationError(name, "must be a boolean")
	}
	return b, true, nil
}

// priorityArg reads an optional priority and checks it is 0, 1, 3 or 5.
func priorityArg(args map[string]interface{}) (p int, ok bool, err error) {
	p, ok, err = optionalInt(args, "priority")
	if err != nil || !ok {
		return 0, ok, err
	}
	if !ticktick.ValidPriority(p) {
		return 0, false, ticktick.NewValidationError("priority", "must be one of 0 (none), 1 (low), 3 (medium), 5 (high), got %d", p)
	}
	return p, true, nil
}

// objectList returns an array argument of objects. Clients that send
// the array as a JSON string are accepted too.
func objectList(args map[string]interface{}, name string) ([]map[string]interface{}, error) {
	raw, present := args[name]
	if !present || raw == nil {
		return nil, ticktick.NewValidationError(name, "is required")
	}
	if s, isString := raw.(string); isString {
		var decoded []interface{}
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			return nil, ticktick.NewValidationError(name, "must be an array of objects")
		}
		raw = decoded
	}
	list, isList := raw.([]interface{})
	if !isList {
		return nil, ticktick.NewValidationError(name, "must be an array of objects")
	}
	if len(list) == 0 {
		return nil, ticktick.NewValidationError(name, "must not be empty")
	}
	items := make([]map[string]interface{}, len(list))
	for i, item := range list {
		obj, isObj := item.(map[string]interface{})
		if !isObj {
			return nil, ticktick.NewValidationError(name, "item %d must be an object", i)
		}
		items[i] = obj
	}
	return items, nil
}
