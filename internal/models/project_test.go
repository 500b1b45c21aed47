package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectNormalizeSerializesEmptyArrays(t *testing.T) {
	var p Project
	require.NoError(t, json.Unmarshal([]byte(`{"id": 1, "name": "Loft", "spaces": [{"id": 2, "name": "Bath"}]}`), &p))
	p.Normalize()

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":"Loft","spaces":[{"id":2,"name":"Bath","measurements":[]}]}`, string(out))
}

func TestProjectTreeHelpers(t *testing.T) {
	p := &Project{ID: 1, Spaces: []Space{
		{ID: 10, Name: "Kitchen", Images: []string{"a", "b", "a"}, Measurements: []Measurement{
			{ID: 100, Products: []Product{{SKU: NewSKU("A")}, {SKU: NewSKU("B")}}},
			{ID: 101},
		}},
		{ID: 11, Name: "Hall"},
	}}

	s := p.FindSpace(10)
	require.NotNil(t, s)
	s.Name = "Galley"
	assert.Equal(t, "Galley", p.Spaces[0].Name)
	assert.Nil(t, p.FindSpace(99))

	s.RemoveImage("a")
	assert.Equal(t, []string{"b"}, p.Spaces[0].Images)

	m := s.FindMeasurement(100)
	require.NotNil(t, m)
	assert.NotNil(t, m.FindProduct(NewSKU("B")))
	m.RemoveProduct(NewSKU("A"))
	assert.Len(t, m.Products, 1)
	assert.Nil(t, m.FindProduct(NewSKU("A")))

	s.RemoveMeasurement(101)
	s.RemoveMeasurement(999)
	assert.Len(t, s.Measurements, 1)

	p.RemoveSpace(11)
	assert.Len(t, p.Spaces, 1)
	assert.Equal(t, int64(10), p.Spaces[0].ID)
}

func TestProjectInputAcceptsSpaceNamesOrObjects(t *testing.T) {
	var in ProjectInput
	require.NoError(t, json.Unmarshal([]byte(`{"name": "Loft", "spaces": ["Kitchen", {"name": "Bath"}]}`), &in))
	assert.Equal(t, []SpaceName{"Kitchen", "Bath"}, in.Spaces)
}

func TestProjectKeepsUnknownKeys(t *testing.T) {
	in := `{"id": 7, "name": "Loft", "owner": {"name": "Ana"}, "spaces": [
		{"id": 1, "name": "Kitchen", "floor": 2, "measurements": [
			{"id": 3, "name": "Sink", "quantity": 1, "category": null, "mounted": true,
			 "dimensions": {"width": 60, "depth": null, "height": null, "unit": "cm"},
			 "products": [{"sku": 501, "item": "Tap", "color": "red", "price": "$120"}]}
		]}
	]}`
	var p Project
	require.NoError(t, json.Unmarshal([]byte(in), &p))
	assert.Contains(t, p.Extra, "owner")
	assert.Contains(t, p.Spaces[0].Extra, "floor")

	patch, err := ParseProjectPatch([]byte(`{"name": "P2"}`))
	require.NoError(t, err)
	patch.Apply(&p)

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": 7, "name": "P2", "owner": {"name": "Ana"}, "spaces": [
		{"id": 1, "name": "Kitchen", "floor": 2, "measurements": [
			{"id": 3, "name": "Sink", "quantity": 1, "category": null, "mounted": true,
			 "dimensions": {"width": 60, "depth": null, "height": null, "unit": "cm"},
			 "products": [{"sku": 501, "item": "Tap", "color": "red", "price": "$120"}]}
		]}
	]}`, string(out))
}

func TestProductIsFreeForm(t *testing.T) {
	var p Product
	require.NoError(t, json.Unmarshal([]byte(`{"sku": "B2", "finish": "walnut", "price": "$120", "weight": 1.50}`), &p))
	assert.Equal(t, "B2", p.SKU.String())
	assert.Equal(t, "walnut", p.Text("finish"))
	_, ok := p.Number("price")
	assert.False(t, ok)

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, `{"finish":"walnut","price":"$120","sku":"B2","weight":1.50}`, string(out))
}
