package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// SKU identifies a product. Catalog data carries SKUs both as JSON numbers
// and as strings; two SKUs are equal when their text is equal, and the
// original JSON kind is kept so documents round-trip unchanged.
type SKU struct {
	value   string
	numeric bool
}

// NewSKU builds a string SKU, e.g. from a URL path segment.
func NewSKU(s string) SKU {
	return SKU{value: strings.TrimSpace(s)}
}

func (s SKU) String() string { return s.value }

func (s SKU) IsZero() bool { return s.value == "" }

func (s SKU) Equal(other SKU) bool { return s.value == other.value }

func (s SKU) MarshalJSON() ([]byte, error) {
	if s.numeric {
		return []byte(s.value), nil
	}
	return json.Marshal(s.value)
}

func (s *SKU) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = SKU{}
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = NewSKU(v)
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var n json.Number
	if err := dec.Decode(&n); err != nil {
		return fmt.Errorf("sku must be a string or number: %w", err)
	}
	*s = SKU{value: n.String(), numeric: true}
	return nil
}
