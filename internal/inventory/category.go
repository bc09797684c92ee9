package inventory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// CategoryKind records which shape the backend used for a category: a bare
// id such as 3, a bare name such as "Beverages", or a full object such as
// {"id":3,"name":"Beverages"}.
type CategoryKind int

// Category shapes seen on the wire.
const (
	CategoryNone CategoryKind = iota
	CategoryByID
	CategoryByName
	CategoryFull
)

// Category is the canonical form of an item category. The backend sends a
// bare id, a bare name, or a full object; all three decode into Category and
// Kind remembers which one arrived.
type Category struct {
	ID   int          `json:"id"`
	Name string       `json:"name"`
	Kind CategoryKind `json:"-"`
}

// CategoryID builds a category known only by id.
func CategoryID(id int) Category { return Category{ID: id, Kind: CategoryByID} }

// CategoryNamed builds a category known only by name.
func CategoryNamed(name string) Category { return Category{Name: name, Kind: CategoryByName} }

// IsZero reports whether no category is set.
func (c Category) IsZero() bool { return c.ID == 0 && c.Name == "" }

// Label is what to display for the category.
func (c Category) Label() string {
	switch {
	case c.Name != "":
		return c.Name
	case c.ID != 0:
		return "#" + strconv.Itoa(c.ID)
	default:
		return "Uncategorized"
	}
}

// UnmarshalJSON accepts a number, a string, an object or null.
func (c *Category) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*c = Category{}
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		// Some drafts send numeric ids as strings.
		if id, err := strconv.Atoi(s); err == nil {
			*c = CategoryID(id)
			return nil
		}
		if s == "" {
			*c = Category{}
			return nil
		}
		*c = CategoryNamed(s)
		return nil
	case data[0] == '{':
		var full struct {
			ID   json.Number `json:"id"`
			Name string      `json:"name"`
		}
		if err := json.Unmarshal(data, &full); err != nil {
			return fmt.Errorf("decode category object: %w", err)
		}
		id := 0
		if full.ID != "" {
			n, err := strconv.Atoi(full.ID.String())
			if err != nil {
				return fmt.Errorf("category id %q is not an integer", full.ID)
			}
			id = n
		}
		*c = Category{ID: id, Name: full.Name, Kind: CategoryFull}
		return nil
	default:
		var id int
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("category must be an id, a name or an object: %w", err)
		}
		*c = CategoryID(id)
		return nil
	}
}

// MarshalJSON sends the category back in the richest form known: a full
// object when both parts are known, otherwise the bare id or name.
func (c Category) MarshalJSON() ([]byte, error) {
	switch {
	case c.ID != 0 && c.Name != "":
		return json.Marshal(struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		}{c.ID, c.Name})
	case c.ID != 0:
		return []byte(strconv.Itoa(c.ID)), nil
	case c.Name != "":
		return json.Marshal(c.Name)
	default:
		return []byte("null"), nil
	}
}

// Resolve fills in the missing half of a partial category from the known
// category list. Unknown categories are returned unchanged.
func (c Category) Resolve(known []Category) Category {
	if c.ID != 0 && c.Name != "" {
		return c
	}
	for _, k := range known {
		switch {
		case c.ID != 0 && k.ID == c.ID && k.Name != "":
			c.Name = k.Name
			return c
		case c.Name != "" && k.ID != 0 && strings.EqualFold(k.Name, c.Name):
			c.ID = k.ID
			return c
		}
	}
	return c
}
