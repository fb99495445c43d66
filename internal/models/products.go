package models

import (
	"slices"
	"strings"
)

// Key names the product input key events the tag widget reacts to
type Key string

// enum values for Key
const (
	KeyEnter     Key = "Enter"
	KeyBackspace Key = "Backspace"
)

// ProductList is the ordered, duplicate-free list of product tags of a draft
type ProductList []string

// ParseProductList rebuilds a list from its comma-joined form
func ParseProductList(s string) ProductList {
	return ProductList(nil).Add(s)
}

// Add commits one tag per comma-separated part of text so the list always
// equals its comma-joined form.
// Blank parts and duplicates are ignored.
func (p ProductList) Add(text string) ProductList {
	out := p
	for _, part := range strings.Split(text, ",") {
		name := strings.TrimSpace(part)
		if name == "" || slices.Contains(out, name) {
			continue
		}
		if len(out) == len(p) {
			out = slices.Clone(p)
		}
		out = append(out, name)
	}
	return out
}

// Remove drops the named tag
func (p ProductList) Remove(name string) ProductList {
	return slices.DeleteFunc(slices.Clone(p), func(s string) bool { return s == name })
}

// RemoveLast drops the most recently added tag
func (p ProductList) RemoveLast() ProductList {
	if len(p) == 0 {
		return p
	}
	return slices.Clone(p[:len(p)-1])
}

// HandleKey applies a key press on the product input. It returns the new
// list and the text left in the input box.
func (p ProductList) HandleKey(key Key, input string) (ProductList, string) {
	switch key {
	case KeyEnter:
		return p.Add(input), ""
	case KeyBackspace:
		if input == "" {
			return p.RemoveLast(), ""
		}
	}
	return p, input
}

// String returns the comma-joined form submitted with the form
func (p ProductList) String() string {
	return strings.Join(p, ",")
}
