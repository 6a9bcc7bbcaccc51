package domain

// Catalog is the hand-authored description of a product: its components,
// their constructor argument schema and the initialization calls wiring them
type Catalog struct {
	Product      string               `json:"product,omitempty" yaml:"product"`
	Version      string               `json:"version,omitempty" yaml:"version"`
	Components   []CatalogComponent   `json:"components,omitempty" yaml:"components"`
	Initializers []CatalogInitializer `json:"initializers,omitempty" yaml:"initializers"`
}

// CatalogComponent is the static description of one component
type CatalogComponent struct {
	Name      string                    `json:"name,omitempty" yaml:"name"`
	Artifact  string                    `json:"artifact,omitempty" yaml:"artifact"`
	Source    string                    `json:"source,omitempty" yaml:"source"`
	Args      []CatalogArg              `json:"args,omitempty" yaml:"args"`
	DependsOn []string                  `json:"depends_on,omitempty" yaml:"depends_on"`
	Variants  map[string]CatalogVariant `json:"variants,omitempty" yaml:"variants"`
}

// CatalogVariant is an alternative implementation of a component. Its
// artifact, source and args replace the component's own.
type CatalogVariant struct {
	Artifact string       `json:"artifact,omitempty" yaml:"artifact"`
	Source   string       `json:"source,omitempty" yaml:"source"`
	Args     []CatalogArg `json:"args,omitempty" yaml:"args"`
}

// CatalogArg is an argument template bound against a ChainConfig
type CatalogArg struct {
	Type     string   `json:"type,omitempty" yaml:"type"`
	Value    any      `json:"value,omitempty" yaml:"value"`
	Config   string   `json:"config,omitempty" yaml:"config"`
	Ref      string   `json:"ref,omitempty" yaml:"ref"`
	Refs     []string `json:"refs,omitempty" yaml:"refs"`
	Optional bool     `json:"optional,omitempty" yaml:"optional"`
}

// CatalogInitializer is a post-deploy call on one component
type CatalogInitializer struct {
	Name      string       `json:"name,omitempty" yaml:"name"`
	Target    string       `json:"target,omitempty" yaml:"target"`
	Signature string       `json:"signature,omitempty" yaml:"signature"`
	Args      []CatalogArg `json:"args,omitempty" yaml:"args"`
	After     []string     `json:"after,omitempty" yaml:"after"`
}

// Component returns a catalog component by name
func (c *Catalog) Component(name string) (*CatalogComponent, bool) {
	for i := range c.Components {
		if c.Components[i].Name == name {
			return &c.Components[i], true
		}
	}
	return nil, false
}

// Names returns the component names in declaration order
func (c *Catalog) Names() []string {
	names := make([]string, len(c.Components))
	for i, component := range c.Components {
		names[i] = component.Name
	}
	return names
}
