package analyze

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lehigh-university-libraries/cardscanner/internal/models"
)

// ParseResponse normalises an analysis body to a list of records.
// Accepted shapes are {"results": [...]}, {"data": [...]}, a bare array,
// and a single record object.
func ParseResponse(body []byte) ([]models.ContactRecord, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, errors.New("empty response body")
	}

	if trimmed[0] == '[' {
		var list []models.ContactRecord
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("failed to decode contact list: %w", err)
		}
		return list, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	for _, key := range []string{"results", "data"} {
		raw, ok := envelope[key]
		if !ok || isNull(raw) {
			continue
		}
		var list []models.ContactRecord
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("failed to decode %q: %w", key, err)
		}
		return list, nil
	}

	var single models.ContactRecord
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return nil, fmt.Errorf("failed to decode contact: %w", err)
	}
	return []models.ContactRecord{single}, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
