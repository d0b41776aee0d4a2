package clerksync

import (
	"bytes"
	"encoding/json"

	"gorm.io/datatypes"
)

// document converts a raw metadata value; absent and null yield nil.
func document(raw json.RawMessage) datatypes.JSON {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	return datatypes.JSON(raw)
}

// pickStatus returns the first candidate accepted by valid, or fallback.
func pickStatus(valid func(string) bool, fallback string, candidates ...string) string {
	for _, c := range candidates {
		if c != "" && valid(c) {
			return c
		}
	}
	return fallback
}

func orString(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
