package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Field is one entry of a patch document. Set distinguishes an absent key
// from an explicit null (Set with a nil Value).
type Field[T any] struct {
	Set   bool
	Value *T
}

func (f Field[T]) applyPtr(dst **T) {
	if f.Set {
		*dst = f.Value
	}
}

func (f Field[T]) applyValue(dst *T) {
	if f.Set && f.Value != nil {
		*dst = *f.Value
	}
}

// applyOrZero treats an explicit null as "clear the field".
func (f Field[T]) applyOrZero(dst *T) {
	if !f.Set {
		return
	}
	var zero T
	*dst = zero
	if f.Value != nil {
		*dst = *f.Value
	}
}

type patchFields map[string]json.RawMessage

// parsePatch decodes a patch body into raw fields and enforces the shared
// rules: non-empty, no immutable keys, nothing outside the allow-list.
func parsePatch(body []byte, allowed []string) (patchFields, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, invalid("No updates provided")
	}
	var fields patchFields
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, invalid("Invalid request format")
	}
	if len(fields) == 0 {
		return nil, invalid("No updates provided")
	}
	if _, ok := fields["sku"]; ok {
		return nil, invalid("Cannot update SKU")
	}
	if _, ok := fields["id"]; ok {
		return nil, invalid("Cannot update id")
	}

	allow := make(map[string]struct{}, len(allowed))
	for _, name := range allowed {
		allow[name] = struct{}{}
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := allow[k]; !ok {
			return nil, invalid(fmt.Sprintf("unknown field %q", k))
		}
	}
	return fields, nil
}

func decodeField[T any](fields patchFields, name string) (Field[T], error) {
	raw, ok := fields[name]
	if !ok {
		return Field[T]{}, nil
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return Field[T]{Set: true}, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return Field[T]{}, invalid(fmt.Sprintf("invalid value for %q", name))
	}
	return Field[T]{Set: true, Value: &v}, nil
}

// decodeRequired is decodeField for keys that may not be nulled out.
func decodeRequired[T any](fields patchFields, name string) (Field[T], error) {
	f, err := decodeField[T](fields, name)
	if err != nil {
		return f, err
	}
	if f.Set && f.Value == nil {
		return Field[T]{}, invalid(fmt.Sprintf("%q cannot be null", name))
	}
	return f, nil
}

// ProjectPatch lists the fields PATCH /projects/:id may change.
type ProjectPatch struct {
	Name Field[string]
}

func ParseProjectPatch(body []byte) (ProjectPatch, error) {
	var p ProjectPatch
	fields, err := parsePatch(body, []string{"name"})
	if err != nil {
		return p, err
	}
	p.Name, err = decodeRequired[string](fields, "name")
	return p, err
}

func (p ProjectPatch) Apply(project *Project) {
	p.Name.applyValue(&project.Name)
}

type SpacePatch struct {
	Name   Field[string]
	Images Field[[]string]
}

func ParseSpacePatch(body []byte) (SpacePatch, error) {
	var p SpacePatch
	fields, err := parsePatch(body, []string{"name", "images"})
	if err != nil {
		return p, err
	}
	if p.Name, err = decodeRequired[string](fields, "name"); err != nil {
		return p, err
	}
	p.Images, err = decodeField[[]string](fields, "images")
	return p, err
}

func (p SpacePatch) Apply(space *Space) {
	p.Name.applyValue(&space.Name)
	p.Images.applyOrZero(&space.Images)
}

type MeasurementPatch struct {
	Name       Field[string]
	Quantity   Field[float64]
	Dimensions Field[Dimensions]
	Category   Field[string]
	Note       Field[string]
	Images     Field[[]string]
}

func ParseMeasurementPatch(body []byte) (MeasurementPatch, error) {
	var p MeasurementPatch
	fields, err := parsePatch(body, []string{"name", "quantity", "dimensions", "category", "note", "images"})
	if err != nil {
		return p, err
	}
	if p.Name, err = decodeRequired[string](fields, "name"); err != nil {
		return p, err
	}
	if p.Quantity, err = decodeField[float64](fields, "quantity"); err != nil {
		return p, err
	}
	if p.Dimensions, err = decodeField[Dimensions](fields, "dimensions"); err != nil {
		return p, err
	}
	if p.Category, err = decodeField[string](fields, "category"); err != nil {
		return p, err
	}
	if p.Note, err = decodeField[string](fields, "note"); err != nil {
		return p, err
	}
	p.Images, err = decodeField[[]string](fields, "images")
	return p, err
}

func (p MeasurementPatch) Apply(m *Measurement) {
	p.Name.applyValue(&m.Name)
	p.Quantity.applyPtr(&m.Quantity)
	p.Dimensions.applyPtr(&m.Dimensions)
	p.Category.applyPtr(&m.Category)
	p.Note.applyOrZero(&m.Note)
	p.Images.applyOrZero(&m.Images)
}

// ProductPatch covers the product fields callers may edit. The sku is the
// product's key and never changes once embedded. Only PATCH is held to this
// list; keys a product arrived with are left alone.
type ProductPatch struct {
	set   map[string]any
	unset []string
}

// productFieldCheck validates the JSON type of each editable product field.
var productFieldCheck = map[string]func(patchFields, string) error{
	"item":       checkField[string],
	"dimensions": checkField[string],
	"images":     checkField[[]string],
	"price":      checkField[float64],
	"vendor":     checkField[string],
	"sheetName":  checkField[string],
	"notes":      checkField[string],
	"quantity":   checkField[float64],
	"total":      checkField[float64],
}

func checkField[T any](fields patchFields, name string) error {
	_, err := decodeField[T](fields, name)
	return err
}

func ParseProductPatch(body []byte) (ProductPatch, error) {
	var p ProductPatch
	allowed := make([]string, 0, len(productFieldCheck))
	for name := range productFieldCheck {
		allowed = append(allowed, name)
	}
	fields, err := parsePatch(body, allowed)
	if err != nil {
		return p, err
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	p.set = map[string]any{}
	for _, name := range names {
		if err := productFieldCheck[name](fields, name); err != nil {
			return ProductPatch{}, err
		}
		raw := fields[name]
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			p.unset = append(p.unset, name)
			continue
		}
		v, err := decodeLoose(raw)
		if err != nil {
			return ProductPatch{}, invalid(fmt.Sprintf("invalid value for %q", name))
		}
		p.set[name] = v
	}
	return p, nil
}

// Apply writes the patched fields; an explicit null removes the field.
func (p ProductPatch) Apply(product *Product) {
	for name, v := range p.set {
		product.set(name, v)
	}
	for _, name := range p.unset {
		product.unset(name)
	}
}
