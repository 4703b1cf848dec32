package tools

import (
	"fmt"
)

// Tool names. Clients call these by exact string.
const (
	SearchOUVideosName = "search_ou_videos"
	VideosBySportName  = "get_videos_by_sport"
	RecentVideosName   = "get_recent_videos"
)

const (
	defaultLimit       = 10
	defaultDays        = 30
	limitParamDesc     = "Maximum results (default: 10, max: 50)"
	sportParamExamples = "Football, Softball, Basketball, Gymnastics, etc."
	schemaTypeObject   = "object"
	propertyTypeString = "string"
	propertyTypeNumber = "number"
)

// Property describes one tool parameter.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Default     any    `json:"default,omitempty"`
}

// InputSchema is the JSON-schema subset used to describe tool arguments.
type InputSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`
}

// Definition is a tool as advertised by tools/list.
type Definition struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
}

// Catalog is an ordered, read-only registry of tool definitions.
type Catalog struct {
	defs  []Definition
	index map[string]int
}

// NewCatalog registers defs in order. Names must be unique and every required
// parameter must be a declared property.
func NewCatalog(defs ...Definition) (*Catalog, error) {
	c := &Catalog{
		defs:  make([]Definition, 0, len(defs)),
		index: make(map[string]int, len(defs)),
	}
	for _, def := range defs {
		if def.Name == "" {
			return nil, fmt.Errorf("tool definition without a name")
		}
		if _, dup := c.index[def.Name]; dup {
			return nil, fmt.Errorf("tool %q registered twice", def.Name)
		}
		for _, req := range def.InputSchema.Required {
			if _, ok := def.InputSchema.Properties[req]; !ok {
				return nil, fmt.Errorf("tool %q requires undeclared parameter %q", def.Name, req)
			}
		}
		if def.InputSchema.Required == nil {
			def.InputSchema.Required = []string{}
		}
		c.index[def.Name] = len(c.defs)
		c.defs = append(c.defs, def)
	}
	return c, nil
}

// List returns the definitions in registration order.
func (c *Catalog) List() []Definition {
	out := make([]Definition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Get looks a definition up by name.
func (c *Catalog) Get(name string) (Definition, bool) {
	i, ok := c.index[name]
	if !ok {
		return Definition{}, false
	}
	return c.defs[i], true
}

// DefaultCatalog returns the Oklahoma Sooners video tools.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(
		Definition{
			Name:        SearchOUVideosName,
			Description: "Search the Oklahoma Sooners video database for game highlights, player performances, memorable plays, and historic moments.",
			InputSchema: InputSchema{
				Type: schemaTypeObject,
				Properties: map[string]Property{
					"query": {
						Type:        propertyTypeString,
						Description: "Search terms (e.g., 'Dillon Gabriel touchdown', 'Red River Rivalry')",
					},
					"limit": {Type: propertyTypeNumber, Description: limitParamDesc, Default: defaultLimit},
				},
				Required: []string{"query"},
			},
		},
		Definition{
			Name:        VideosBySportName,
			Description: "Get Oklahoma Sooners videos filtered by sport, optionally limited by days.",
			InputSchema: InputSchema{
				Type: schemaTypeObject,
				Properties: map[string]Property{
					"sport": {Type: propertyTypeString, Description: "Sport name (" + sportParamExamples + ")"},
					"days":  {Type: propertyTypeNumber, Description: "Fetch videos from last N days (default: 30)", Default: defaultDays},
					"limit": {Type: propertyTypeNumber, Description: limitParamDesc, Default: defaultLimit},
				},
				Required: []string{"sport"},
			},
		},
		Definition{
			Name:        RecentVideosName,
			Description: "Get the most recently published Oklahoma Sooners videos, optionally filtered by sport.",
			InputSchema: InputSchema{
				Type: schemaTypeObject,
				Properties: map[string]Property{
					"sport": {Type: propertyTypeString, Description: "Optional sport filter (Football, Softball, etc.)"},
					"limit": {Type: propertyTypeNumber, Description: limitParamDesc, Default: defaultLimit},
				},
			},
		},
	)
	if err != nil {
		panic(err)
	}
	return c
}
