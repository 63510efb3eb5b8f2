package cart

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrInvalidItem = errors.New("invalid line item")

// LineItem is a denormalized snapshot of a product at the moment it was
// added. It is not a live reference: later product edits or deletions do
// not touch existing cart entries, and there is no quantity field. Adding
// the same product twice yields two items.
type LineItem struct {
	ID     int64    `json:"id"`
	Name   string   `json:"name"`
	Price  float64  `json:"price"`
	Images []string `json:"images"`
}

// ParseAdd extracts exactly the four snapshotted fields from a decoded add
// payload and discards everything else. The id is not checked against the
// catalog.
func ParseAdd(raw map[string]json.RawMessage) (LineItem, error) {
	var it LineItem

	rawID, ok := raw["id"]
	if !ok || json.Unmarshal(rawID, &it.ID) != nil || it.ID == 0 {
		return LineItem{}, fmt.Errorf("%w: id required", ErrInvalidItem)
	}

	rawName, ok := raw["name"]
	if !ok || json.Unmarshal(rawName, &it.Name) != nil || it.Name == "" {
		return LineItem{}, fmt.Errorf("%w: name required", ErrInvalidItem)
	}

	var price *float64
	rawPrice, ok := raw["price"]
	if !ok || json.Unmarshal(rawPrice, &price) != nil || price == nil {
		return LineItem{}, fmt.Errorf("%w: price must be a number", ErrInvalidItem)
	}
	it.Price = *price

	rawImages, ok := raw["images"]
	if !ok || json.Unmarshal(rawImages, &it.Images) != nil || it.Images == nil {
		return LineItem{}, fmt.Errorf("%w: images must be an array of strings", ErrInvalidItem)
	}

	return it, nil
}
