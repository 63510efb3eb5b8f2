package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrInvalidProduct = errors.New("invalid product")

// Product is one catalog record. Beyond the five fixed fields an admin may
// submit arbitrary extra attributes on create; those are kept verbatim in
// Extra and flattened back to the top level when the record is serialized.
type Product struct {
	ID          int64
	Name        string
	Price       float64
	Description string
	Images      []string

	Extra map[string]json.RawMessage
}

func isReserved(key string) bool {
	switch key {
	case "id", "name", "price", "description", "images":
		return true
	}
	return false
}

func (p Product) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(p.Extra)+5)
	for k, v := range p.Extra {
		m[k] = v
	}

	m["id"] = p.ID
	m["name"] = p.Name
	m["price"] = p.Price
	if p.Description != "" {
		m["description"] = p.Description
	}

	images := p.Images
	if images == nil {
		images = []string{}
	}
	m["images"] = images

	return json.Marshal(m)
}

func (p *Product) UnmarshalJSON(data []byte) error {
	var fixed struct {
		ID          int64    `json:"id"`
		Name        string   `json:"name"`
		Price       float64  `json:"price"`
		Description string   `json:"description"`
		Images      []string `json:"images"`
	}
	if err := json.Unmarshal(data, &fixed); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k := range raw {
		if isReserved(k) {
			delete(raw, k)
		}
	}

	*p = Product{
		ID:          fixed.ID,
		Name:        fixed.Name,
		Price:       fixed.Price,
		Description: fixed.Description,
		Images:      fixed.Images,
	}
	if len(raw) > 0 {
		p.Extra = raw
	}
	return nil
}

// NewFromPayload builds a product from a decoded create payload, assigning
// id. The caller never picks the id; a submitted one is dropped. Fields
// beyond the required five are kept as extras.
func NewFromPayload(raw map[string]json.RawMessage, id int64) (Product, error) {
	p := Product{ID: id}
	var err error

	if p.Name, err = requiredText(raw, "name"); err != nil {
		return Product{}, err
	}
	if p.Description, err = requiredText(raw, "description"); err != nil {
		return Product{}, err
	}

	rawPrice, ok := raw["price"]
	if !ok || json.Unmarshal(rawPrice, &p.Price) != nil {
		return Product{}, fmt.Errorf("%w: price must be a number", ErrInvalidProduct)
	}
	if p.Price == 0 {
		return Product{}, fmt.Errorf("%w: price must be non-zero", ErrInvalidProduct)
	}

	rawImages, ok := raw["images"]
	if !ok || json.Unmarshal(rawImages, &p.Images) != nil || len(p.Images) == 0 {
		return Product{}, fmt.Errorf("%w: images must be a non-empty array of strings", ErrInvalidProduct)
	}

	extra := make(map[string]json.RawMessage, len(raw))
	for k, v := range raw {
		if isReserved(k) {
			continue
		}
		extra[k] = v
	}
	if len(extra) > 0 {
		p.Extra = extra
	}

	return p, nil
}

func requiredText(raw map[string]json.RawMessage, key string) (string, error) {
	v, ok := raw[key]
	if !ok {
		return "", fmt.Errorf("%w: %s required", ErrInvalidProduct, key)
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil || s == "" {
		return "", fmt.Errorf("%w: %s must be a non-empty string", ErrInvalidProduct, key)
	}
	return s, nil
}

// NextID returns one past the highest id in products, or 1 for an empty
// catalog.
func NextID(products []Product) int64 {
	var max int64
	for _, p := range products {
		if p.ID > max {
			max = p.ID
		}
	}
	return max + 1
}
