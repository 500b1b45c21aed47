package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Product is a catalog item attached to a measurement, keyed by SKU within
// its parent measurement. Apart from the sku it is free-form: whatever the
// caller or the catalog record supplied is stored and served back as is.
type Product struct {
	SKU    SKU
	Fields map[string]any
}

// NewProduct builds a product from a sku and plain field values.
func NewProduct(sku SKU, fields map[string]any) Product {
	p := Product{SKU: sku, Fields: map[string]any{}}
	for k, v := range fields {
		if k != "sku" {
			p.Fields[k] = v
		}
	}
	return p
}

// Get returns the raw value of a field.
func (p Product) Get(name string) (any, bool) {
	v, ok := p.Fields[name]
	return v, ok
}

// Text returns a string field, or "" when absent or not a string.
func (p Product) Text(name string) string {
	s, _ := p.Fields[name].(string)
	return s
}

// Number returns a numeric field. Strings such as "$120" are not numbers.
func (p Product) Number(name string) (float64, bool) {
	switch v := p.Fields[name].(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

func (p *Product) set(name string, v any) {
	if p.Fields == nil {
		p.Fields = map[string]any{}
	}
	p.Fields[name] = v
}

func (p *Product) unset(name string) {
	delete(p.Fields, name)
}

func (p Product) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(p.Fields)+1)
	for k, v := range p.Fields {
		doc[k] = v
	}
	if !p.SKU.IsZero() {
		doc["sku"] = p.SKU
	}
	return json.Marshal(doc)
}

func (p *Product) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := Product{Fields: make(map[string]any, len(raw))}
	for k, v := range raw {
		if k == "sku" {
			if err := out.SKU.UnmarshalJSON(v); err != nil {
				return err
			}
			continue
		}
		val, err := decodeLoose(v)
		if err != nil {
			return err
		}
		out.Fields[k] = val
	}
	*p = out
	return nil
}

// CatalogProduct is one record of the master product list. Records come from
// spreadsheet ingestion and carry whatever columns the sheet had, so they are
// kept as free-form documents; sku and id are the only fields the service
// interprets.
type CatalogProduct map[string]any

// SKU returns the record's sku as text, or "" when absent.
func (p CatalogProduct) SKU() string {
	return scalarText(p["sku"])
}

// ID returns the record's numeric id as text, or "" when absent.
func (p CatalogProduct) ID() string {
	return scalarText(p["id"])
}

// Matches reports whether key names this record by id or sku.
func (p CatalogProduct) Matches(key string) bool {
	if key == "" {
		return false
	}
	if id := p.ID(); id != "" && id == key {
		return true
	}
	return p.SKU() == key
}

func scalarText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprint(t)
	}
}
