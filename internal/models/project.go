package models

import "encoding/json"

// Project is the root document. It is always read and written whole.
type Project struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Spaces []Space `json:"spaces"`

	// Extra holds stored keys the service does not interpret.
	Extra map[string]json.RawMessage `json:"-"`
}

// Space is a named area of a project.
type Space struct {
	ID           int64         `json:"id"`
	Name         string        `json:"name"`
	Measurements []Measurement `json:"measurements"`
	Images       []string      `json:"images,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Dimensions of a measured item. Any axis may be unknown.
type Dimensions struct {
	Depth  *float64 `json:"depth"`
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`

	Extra map[string]json.RawMessage `json:"-"`
}

type Measurement struct {
	ID         int64       `json:"id"`
	Name       string      `json:"name"`
	Quantity   *float64    `json:"quantity"`
	Dimensions *Dimensions `json:"dimensions"`
	Category   *string     `json:"category"`
	Note       string      `json:"note,omitempty"`
	Images     []string    `json:"images,omitempty"`
	Products   []Product   `json:"products"`

	Extra map[string]json.RawMessage `json:"-"`
}

type (
	projectDoc     Project
	spaceDoc       Space
	dimensionsDoc  Dimensions
	measurementDoc Measurement
)

func (p Project) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(projectDoc(p), p.Extra)
}

func (p *Project) UnmarshalJSON(data []byte) error {
	var doc projectDoc
	extra, err := unmarshalWithExtra(data, &doc)
	if err != nil {
		return err
	}
	doc.Extra = extra
	*p = Project(doc)
	return nil
}

func (s Space) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(spaceDoc(s), s.Extra)
}

func (s *Space) UnmarshalJSON(data []byte) error {
	var doc spaceDoc
	extra, err := unmarshalWithExtra(data, &doc)
	if err != nil {
		return err
	}
	doc.Extra = extra
	*s = Space(doc)
	return nil
}

func (d Dimensions) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(dimensionsDoc(d), d.Extra)
}

func (d *Dimensions) UnmarshalJSON(data []byte) error {
	var doc dimensionsDoc
	extra, err := unmarshalWithExtra(data, &doc)
	if err != nil {
		return err
	}
	doc.Extra = extra
	*d = Dimensions(doc)
	return nil
}

func (m Measurement) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(measurementDoc(m), m.Extra)
}

func (m *Measurement) UnmarshalJSON(data []byte) error {
	var doc measurementDoc
	extra, err := unmarshalWithExtra(data, &doc)
	if err != nil {
		return err
	}
	doc.Extra = extra
	*m = Measurement(doc)
	return nil
}

// Normalize replaces nil child collections with empty ones so documents
// always serialize "spaces", "measurements" and "products" as arrays.
func (p *Project) Normalize() {
	if p.Spaces == nil {
		p.Spaces = []Space{}
	}
	for i := range p.Spaces {
		p.Spaces[i].normalize()
	}
}

func (s *Space) normalize() {
	if s.Measurements == nil {
		s.Measurements = []Measurement{}
	}
	for i := range s.Measurements {
		if s.Measurements[i].Products == nil {
			s.Measurements[i].Products = []Product{}
		}
	}
}

// FindSpace returns a pointer into p.Spaces so callers mutate in place.
func (p *Project) FindSpace(id int64) *Space {
	for i := range p.Spaces {
		if p.Spaces[i].ID == id {
			return &p.Spaces[i]
		}
	}
	return nil
}

// RemoveSpace filters the space out. Missing ids are a no-op.
func (p *Project) RemoveSpace(id int64) {
	kept := p.Spaces[:0]
	for _, s := range p.Spaces {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	p.Spaces = kept
}

func (s *Space) FindMeasurement(id int64) *Measurement {
	for i := range s.Measurements {
		if s.Measurements[i].ID == id {
			return &s.Measurements[i]
		}
	}
	return nil
}

func (s *Space) RemoveMeasurement(id int64) {
	kept := s.Measurements[:0]
	for _, m := range s.Measurements {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	s.Measurements = kept
}

// RemoveImage drops every occurrence of url from the space's images.
func (s *Space) RemoveImage(url string) {
	if len(s.Images) == 0 {
		return
	}
	kept := make([]string, 0, len(s.Images))
	for _, img := range s.Images {
		if img != url {
			kept = append(kept, img)
		}
	}
	s.Images = kept
}

func (m *Measurement) FindProduct(sku SKU) *Product {
	for i := range m.Products {
		if m.Products[i].SKU.Equal(sku) {
			return &m.Products[i]
		}
	}
	return nil
}

func (m *Measurement) RemoveProduct(sku SKU) {
	kept := m.Products[:0]
	for _, p := range m.Products {
		if !p.SKU.Equal(sku) {
			kept = append(kept, p)
		}
	}
	m.Products = kept
}
