package bulk

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/kailas-cloud/shelfdex/internal/domain"
	"github.com/kailas-cloud/shelfdex/internal/domain/book"
)

// IDField is the optional member carrying a caller-supplied id in bulk input.
const IDField = "_id"

// Item is one bulk input. Err holds a decoding failure; such items are
// reported as failures without reaching the store.
type Item struct {
	ID   string
	Book book.Book
	Err  error
}

// AssignIDs gives every item without an id its 1-indexed position.
func AssignIDs(items []Item) {
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = strconv.Itoa(i + 1)
		}
	}
}

// ParseItems decodes a JSON array of documents. A malformed array fails the
// whole call; a malformed element only marks its own Item.
func ParseItems(raw []byte) ([]Item, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, domain.NewValidationError("", "bulk input must be a JSON array of objects: %v", err)
	}

	items := make([]Item, len(elems))
	for i, el := range elems {
		items[i] = parseItem(el)
	}
	AssignIDs(items)
	return items, nil
}

func parseItem(el json.RawMessage) Item {
	var meta map[string]json.RawMessage
	if err := json.Unmarshal(el, &meta); err != nil {
		return Item{Err: domain.NewValidationError("", "document must be a JSON object")}
	}

	var it Item
	if rawID, ok := meta[IDField]; ok && !bytes.Equal(bytes.TrimSpace(rawID), []byte("null")) {
		id, err := decodeID(rawID)
		if err != nil {
			return Item{Err: err}
		}
		it.ID = id
	}

	b, err := book.Decode(el)
	if err != nil {
		it.Err = err
		return it
	}
	it.Book = b
	return it
}

// decodeID accepts a string or an integer id.
func decodeID(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err == nil {
		if _, err := n.Int64(); err == nil {
			return n.String(), nil
		}
	}
	return "", domain.NewValidationError(IDField, "must be a string or an integer")
}
