package protocol

import (
	"encoding/json"
	"fmt"
)

// KeyBytes is opaque key material that crosses the wire as a JSON array of
// integers 0-255 rather than the base64 string encoding/json would use for
// a []byte. The relay never interprets its content.
type KeyBytes []byte

func (k KeyBytes) MarshalJSON() ([]byte, error) {
	ints := make([]int, len(k))
	for i, b := range k {
		ints[i] = int(b)
	}
	return json.Marshal(ints)
}

func (k *KeyBytes) UnmarshalJSON(data []byte) error {
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return fmt.Errorf("key bytes: %w", err)
	}
	out := make([]byte, len(ints))
	for i, n := range ints {
		if n < 0 || n > 255 {
			return fmt.Errorf("key bytes: value %d out of range", n)
		}
		out[i] = byte(n)
	}
	*k = out
	return nil
}
