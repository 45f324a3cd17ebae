package terraform

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// orderedEntry is one key/value pair of a JSON object, in source order.
type orderedEntry struct {
	Key   string
	Value json.RawMessage
}

// decodeOrderedObject walks a JSON object's tokens directly so that key
// order survives into vertex insertion order — encoding/json's map
// decoding does not preserve it, and insertion order is load-bearing for
// the stable topological tie-break.
func decodeOrderedObject(data json.RawMessage) ([]orderedEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return nil, fmt.Errorf("expected JSON object, got %v", tok)
	}

	var entries []orderedEntry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		entries = append(entries, orderedEntry{Key: key, Value: raw})
	}
	return entries, nil
}
