// Package artifact defines the cached, content-addressed result of one
// stage invocation and the stores that persist it.
package artifact

import "strings"

// Fragment is one addressable piece of document content.
type Fragment struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// Data is an ordered fragment collection. Order is insertion order and is
// significant: concatenation and fingerprinting both depend on it.
type Data []Fragment

// FromText wraps a single text into the canonical one-fragment form.
func FromText(text string) Data {
	return Data{{ID: "1", Content: text}}
}

// Set appends the fragment, or replaces the content of an existing ID
// in place without disturbing order.
func (d *Data) Set(id, content string) {
	for i := range *d {
		if (*d)[i].ID == id {
			(*d)[i].Content = content
			return
		}
	}
	*d = append(*d, Fragment{ID: id, Content: content})
}

// Get returns the content for an ID.
func (d Data) Get(id string) (string, bool) {
	for _, f := range d {
		if f.ID == id {
			return f.Content, true
		}
	}
	return "", false
}

// IDs returns the fragment IDs in order.
func (d Data) IDs() []string {
	ids := make([]string, len(d))
	for i, f := range d {
		ids[i] = f.ID
	}
	return ids
}

// Text concatenates all fragment contents in order.
func (d Data) Text() string {
	var b strings.Builder
	for _, f := range d {
		b.WriteString(f.Content)
	}
	return b.String()
}

// Clone returns an independent copy.
func (d Data) Clone() Data {
	if d == nil {
		return nil
	}
	out := make(Data, len(d))
	copy(out, d)
	return out
}

// Equal reports whether two collections hold identical fragments in
// identical order.
func (d Data) Equal(other Data) bool {
	if len(d) != len(other) {
		return false
	}
	for i := range d {
		if d[i] != other[i] {
			return false
		}
	}
	return true
}
