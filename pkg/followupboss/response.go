package followupboss

import "encoding/json"

// PersonID extracts the created/updated person identifier from an events
// response. Responses are opaque maps by design; this helper exists only
// because the person id is the one field every caller needs back.
func PersonID(resp map[string]any) (int64, bool) {
	person, ok := resp["person"].(map[string]any)
	if !ok {
		return 0, false
	}
	switch id := person["id"].(type) {
	case float64:
		return int64(id), true
	case json.Number:
		n, err := id.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	case int64:
		return id, true
	case int:
		return int64(id), true
	default:
		return 0, false
	}
}
