// Package a2ui models agent-authored UI component trees: the component
// vocabulary, normalization of common authoring mistakes, merge-by-ID
// updates, and JSON Pointer operations on the data model.
package a2ui

import "encoding/json"

// Component is one node of a component tree. Children reference other
// components by ID; the component with ID "root" anchors rendering.
// Unrecognised wire fields survive round-trips through Extra.
type Component struct {
	ID       string
	Kind     string
	Style    map[string]any
	Children []string
	Text     string
	Extra    map[string]any
}

// UnmarshalJSON decodes the wire form, folding unknown keys into Extra.
func (c *Component) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = Component{}
	for key, val := range raw {
		switch key {
		case "id":
			if s, ok := val.(string); ok {
				c.ID = s
			}
		case "component":
			if s, ok := val.(string); ok {
				c.Kind = s
			}
		case "style":
			if m, ok := val.(map[string]any); ok {
				c.Style = m
			}
		case "children":
			if list, ok := val.([]any); ok {
				for _, item := range list {
					if s, ok := item.(string); ok {
						c.Children = append(c.Children, s)
					}
				}
			}
		case "text":
			if s, ok := val.(string); ok {
				c.Text = s
			}
		default:
			if c.Extra == nil {
				c.Extra = make(map[string]any)
			}
			c.Extra[key] = val
		}
	}
	return nil
}

// MarshalJSON encodes back to the wire form.
func (c Component) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(c.Extra)+5)
	for k, v := range c.Extra {
		m[k] = v
	}
	m["id"] = c.ID
	m["component"] = c.Kind
	if c.Style != nil {
		m["style"] = c.Style
	}
	if c.Children != nil {
		m["children"] = c.Children
	}
	if c.Text != "" {
		m["text"] = c.Text
	}
	return json.Marshal(m)
}
