package a2ui

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// ErrUnknownKind is returned when a component kind survives neither the
// alias table nor PascalCase correction.
var ErrUnknownKind = errors.New("a2ui: unknown component kind")

var validKinds = map[string]struct{}{
	// Layout
	"Column": {}, "Row": {}, "Grid": {}, "Box": {}, "Card": {}, "Spacer": {}, "Divider": {},
	// Content
	"Text": {}, "Image": {}, "Icon": {}, "Avatar": {},
	// Data display
	"List": {}, "Table": {}, "Progress": {}, "ProgressBar": {}, "Badge": {},
	// Feedback
	"Spinner": {},
}

// kindAliases maps common authoring mistakes to the canonical kind.
var kindAliases = map[string]string{
	"column": "Column", "row": "Row", "grid": "Grid", "box": "Box",
	"card": "Card", "spacer": "Spacer", "divider": "Divider",
	"text": "Text", "image": "Image", "icon": "Icon", "avatar": "Avatar",
	"list": "List", "table": "Table", "progress": "Progress",
	"progressbar": "ProgressBar", "badge": "Badge", "spinner": "Spinner",

	"rectangle": "Box", "rect": "Box", "container": "Box", "div": "Box",
	"view": "Box",
	"span": "Text", "label": "Text", "paragraph": "Text", "p": "Text",
	"img": "Image", "picture": "Image", "photo": "Image",
	"vstack": "Column", "stack": "Column",
	"hstack": "Row", "flex": "Row", "flexbox": "Row",
}

// ValidKinds returns the canonical component kinds, sorted.
func ValidKinds() []string {
	kinds := make([]string, 0, len(validKinds))
	for k := range validKinds {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// NormalizeComponent fixes common authoring mistakes on a single component:
// kind aliases ("rectangle" becomes "Box"), lowercase kinds, and a legacy
// "props" key standing in for "style". An unrecognisable kind is an error.
func NormalizeComponent(c Component, logger *slog.Logger) (Component, error) {
	if logger == nil {
		logger = slog.Default()
	}

	name := strings.TrimSpace(c.Kind)
	if name == "" {
		return c, fmt.Errorf("%w: component %q has no kind", ErrUnknownKind, c.ID)
	}

	if canonical, ok := kindAliases[strings.ToLower(name)]; ok {
		if name != canonical {
			logger.Warn("a2ui: component kind normalized", "from", name, "to", canonical, "id", c.ID)
		}
		c.Kind = canonical
	} else if _, ok := validKinds[name]; !ok {
		pascal := strings.ToUpper(name[:1]) + name[1:]
		if _, ok := validKinds[pascal]; !ok {
			return c, fmt.Errorf("%w: %q (valid: %s)", ErrUnknownKind, name, strings.Join(ValidKinds(), ", "))
		}
		logger.Warn("a2ui: component kind normalized", "from", name, "to", pascal, "id", c.ID)
		c.Kind = pascal
	}

	if c.Style == nil {
		if props, ok := c.Extra["props"].(map[string]any); ok {
			logger.Warn("a2ui: 'props' converted to 'style'", "id", c.ID)
			c.Style = props
			delete(c.Extra, "props")
		}
	}

	return c, nil
}

// Normalize applies NormalizeComponent to a batch. Any failure rejects the
// whole batch so a partial tree never reaches a surface.
func Normalize(comps []Component, logger *slog.Logger) ([]Component, error) {
	out := make([]Component, 0, len(comps))
	for _, c := range comps {
		n, err := NormalizeComponent(c, logger)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// EnsureRoot guarantees a component with ID "root": receivers start
// rendering there. When absent, all components are wrapped in a centered
// Column whose children are the batch's IDs.
func EnsureRoot(comps []Component) []Component {
	for _, c := range comps {
		if c.ID == "root" {
			return comps
		}
	}

	childIDs := make([]string, 0, len(comps))
	for _, c := range comps {
		if c.ID != "" {
			childIDs = append(childIDs, c.ID)
		}
	}

	root := Component{
		ID:       "root",
		Kind:     "Column",
		Children: childIDs,
		Style: map[string]any{
			"justifyContent": "center",
			"alignItems":     "center",
			"height":         "100%",
			"width":          "100%",
		},
	}
	return append([]Component{root}, comps...)
}
