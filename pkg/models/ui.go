package models

// ComponentType enumerates the node kinds a client can render.
type ComponentType string

const (
	ComponentTypeColumn       ComponentType = "column"
	ComponentTypeRow          ComponentType = "row"
	ComponentTypeText         ComponentType = "text"
	ComponentTypeTextInput    ComponentType = "text_input"
	ComponentTypeButton       ComponentType = "button"
	ComponentTypeDropdown     ComponentType = "dropdown"
	ComponentTypeImageCapture ComponentType = "image_capture"
	ComponentTypeVideo        ComponentType = "video"
	ComponentTypeOTPInput     ComponentType = "otp_input"
	ComponentTypeCheckbox     ComponentType = "checkbox"
)

// SubmitFormAction is the properties.action.type value marking a button whose
// collect_fields must be sent back on submit.
const SubmitFormAction = "submit_form"

// Component is one node of a UIScreen tree.
type Component struct {
	ID            string         `json:"id"`
	ComponentType ComponentType  `json:"component_type"     validate:"required"`
	Properties    map[string]any `json:"properties,omitempty"`
	Children      []*Component   `json:"children,omitempty"`
}

// UIScreen is the rendering blueprint for one screen. SessionID is a catalog
// label, not the runtime session identifier.
type UIScreen struct {
	ID           string       `json:"id"         validate:"required"`
	ScreenID     string       `json:"screen_id"`
	SessionID    string       `json:"session_id,omitempty"`
	UIComponents []*Component `json:"ui_components"`
}

// Walk visits every component of the screen in depth-first order.
func (s *UIScreen) Walk(fn func(*Component)) {
	for _, c := range s.UIComponents {
		c.walk(fn)
	}
}

func (c *Component) walk(fn func(*Component)) {
	if c == nil {
		return
	}

	fn(c)

	for _, child := range c.Children {
		child.walk(fn)
	}
}

// CollectFields returns the ordered field names of a submit_form button, or
// nil when the component is not a submit button. The slice aliases the
// underlying properties; callers that mutate it must go through
// SetCollectFields.
func (c *Component) CollectFields() []string {
	action, ok := c.Properties["action"].(map[string]any)
	if !ok {
		return nil
	}

	if t, _ := action["type"].(string); t != SubmitFormAction {
		return nil
	}

	switch fields := action["collect_fields"].(type) {
	case []string:
		return fields
	case []any:
		names := make([]string, 0, len(fields))

		for _, f := range fields {
			if name, ok := f.(string); ok {
				names = append(names, name)
			}
		}

		return names
	default:
		return nil
	}
}

// SetCollectFields replaces the collect_fields list of a submit_form button.
// It is a no-op for any other component.
func (c *Component) SetCollectFields(names []string) {
	action, ok := c.Properties["action"].(map[string]any)
	if !ok {
		return
	}

	if t, _ := action["type"].(string); t != SubmitFormAction {
		return
	}

	values := make([]any, len(names))
	for i, n := range names {
		values[i] = n
	}

	action["collect_fields"] = values
}

// Clone returns a deep copy of the screen. Rewriting identifiers must never
// touch the catalog-owned tree.
func (s *UIScreen) Clone() *UIScreen {
	if s == nil {
		return nil
	}

	clone := &UIScreen{
		ID:        s.ID,
		ScreenID:  s.ScreenID,
		SessionID: s.SessionID,
	}

	if s.UIComponents != nil {
		clone.UIComponents = make([]*Component, len(s.UIComponents))
		for i, c := range s.UIComponents {
			clone.UIComponents[i] = c.Clone()
		}
	}

	return clone
}

// Clone returns a deep copy of the component subtree.
func (c *Component) Clone() *Component {
	if c == nil {
		return nil
	}

	clone := &Component{
		ID:            c.ID,
		ComponentType: c.ComponentType,
	}

	if c.Properties != nil {
		clone.Properties = cloneValue(c.Properties).(map[string]any)
	}

	if c.Children != nil {
		clone.Children = make([]*Component, len(c.Children))
		for i, child := range c.Children {
			clone.Children[i] = child.Clone()
		}
	}

	return clone
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[k] = cloneValue(item)
		}

		return m
	case []any:
		s := make([]any, len(val))
		for i, item := range val {
			s[i] = cloneValue(item)
		}

		return s
	case []string:
		s := make([]string, len(val))
		copy(s, val)

		return s
	default:
		return val
	}
}
