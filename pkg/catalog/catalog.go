package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/sahayakhq/sahayak/pkg/models"
)

//go:embed schema.json data/catalog.json
var embedded embed.FS

// Document is the on-disk catalog artifact. Which artifact is authoritative
// is a deployment decision; the catalog never selects one itself.
type Document struct {
	Actions      []*models.Action      `json:"actions"`
	UIScreens    []*models.UIScreen    `json:"ui_screens"`
	APIEndpoints []*models.APIEndpoint `json:"api_endpoints"`
}

// Catalog is the validated, immutable in-memory registry. Loaded once at
// startup; readers need no synchronization.
type Catalog struct {
	actions   map[string]*models.Action
	screens   map[string]*models.UIScreen
	endpoints map[string]*models.APIEndpoint
	ordered   []*models.Action
}

// Load reads and validates a catalog artifact from disk.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	return Parse(data)
}

// Default builds the catalog from the artifact embedded in the binary.
func Default() (*Catalog, error) {
	data, err := embedded.ReadFile("data/catalog.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded catalog: %w", err)
	}

	return Parse(data)
}

// Parse validates raw catalog bytes against the document schema, decodes
// them and runs referential integrity checks.
func Parse(data []byte) (*Catalog, error) {
	if err := validateSchema(data); err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog document: %w", err)
	}

	return New(&doc)
}

// New indexes a document and fails on the first integrity sweep that finds
// problems. Every problem names the offending record so the operator can fix
// the artifact.
func New(doc *Document) (*Catalog, error) {
	c := &Catalog{
		actions:   make(map[string]*models.Action, len(doc.Actions)),
		screens:   make(map[string]*models.UIScreen, len(doc.UIScreens)),
		endpoints: make(map[string]*models.APIEndpoint, len(doc.APIEndpoints)),
		ordered:   doc.Actions,
	}

	var problems []string

	for _, screen := range doc.UIScreens {
		if _, dup := c.screens[screen.ID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate ui screen id %q", screen.ID))

			continue
		}

		c.screens[screen.ID] = screen
		problems = append(problems, validateScreen(screen)...)
	}

	for _, endpoint := range doc.APIEndpoints {
		if _, dup := c.endpoints[endpoint.ID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate api endpoint id %q", endpoint.ID))

			continue
		}

		c.endpoints[endpoint.ID] = endpoint
	}

	for _, action := range doc.Actions {
		if _, dup := c.actions[action.ID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate action id %q", action.ID))

			continue
		}

		c.actions[action.ID] = action
	}

	problems = append(problems, c.validateReferences()...)

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	return c, nil
}

// validateReferences sweeps every action for dangling ids. Self-references
// are fine: a self-loop on error is the normal way to re-prompt.
func (c *Catalog) validateReferences() []string {
	var problems []string

	for _, action := range c.ordered {
		if id := action.NextSuccessActionID; id != nil {
			if _, ok := c.actions[*id]; !ok {
				problems = append(problems, fmt.Sprintf(
					"action %q references missing success successor %q", action.ID, *id))
			}
		}

		if id := action.NextErrActionID; id != nil {
			if _, ok := c.actions[*id]; !ok {
				problems = append(problems, fmt.Sprintf(
					"action %q references missing error successor %q", action.ID, *id))
			}
		}

		if id := action.UIID; id != nil {
			if _, ok := c.screens[*id]; !ok {
				problems = append(problems, fmt.Sprintf(
					"action %q references missing ui screen %q", action.ID, *id))
			}
		}

		if id := action.APIDetailID; id != nil {
			if _, ok := c.endpoints[*id]; !ok {
				problems = append(problems, fmt.Sprintf(
					"action %q references missing api endpoint %q", action.ID, *id))
			}
		}

		if action.UIID == nil && action.APIDetailID == nil {
			problems = append(problems, fmt.Sprintf(
				"action %q has neither a ui screen nor an api endpoint", action.ID))
		}
	}

	return problems
}

// validateScreen checks component id uniqueness and collect_fields closure
// within a single screen.
func validateScreen(screen *models.UIScreen) []string {
	var problems []string

	ids := make(map[string]struct{})

	screen.Walk(func(comp *models.Component) {
		if comp.ID == "" {
			return
		}

		if strings.Contains(comp.ID, "$") {
			problems = append(problems, fmt.Sprintf(
				"ui screen %q component %q uses the reserved '$' character", screen.ID, comp.ID))
		}

		if _, dup := ids[comp.ID]; dup {
			problems = append(problems, fmt.Sprintf(
				"ui screen %q has duplicate component id %q", screen.ID, comp.ID))
		}

		ids[comp.ID] = struct{}{}
	})

	screen.Walk(func(comp *models.Component) {
		for _, name := range comp.CollectFields() {
			if _, ok := ids[name]; !ok {
				problems = append(problems, fmt.Sprintf(
					"ui screen %q button %q collects unknown field %q", screen.ID, comp.ID, name))
			}
		}
	})

	return problems
}

func validateSchema(data []byte) error {
	schema, err := embedded.ReadFile("schema.json")
	if err != nil {
		return fmt.Errorf("failed to read catalog schema: %w", err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(schema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("catalog schema validation failed: %w", err)
	}

	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}

		return &ValidationError{Problems: problems}
	}

	return nil
}

// Action returns the action for an id.
func (c *Catalog) Action(id string) (*models.Action, error) {
	action, ok := c.actions[id]
	if !ok {
		return nil, &NotFoundError{Kind: "action", ID: id, Err: ErrActionNotFound}
	}

	return action, nil
}

// UI returns the screen for an id.
func (c *Catalog) UI(id string) (*models.UIScreen, error) {
	screen, ok := c.screens[id]
	if !ok {
		return nil, &NotFoundError{Kind: "ui", ID: id, Err: ErrUINotFound}
	}

	return screen, nil
}

// API returns the endpoint for an id.
func (c *Catalog) API(id string) (*models.APIEndpoint, error) {
	endpoint, ok := c.endpoints[id]
	if !ok {
		return nil, &NotFoundError{Kind: "api", ID: id, Err: ErrAPINotFound}
	}

	return endpoint, nil
}

// Actions returns every action in artifact order, for indexing at startup.
func (c *Catalog) Actions() []*models.Action {
	return c.ordered
}
