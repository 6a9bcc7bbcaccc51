package catalog

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/trebuchet-org/catapult/internal/config"
	"github.com/trebuchet-org/catapult/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed products/*.yaml
var products embed.FS

// Loader serves the embedded product catalogs, or a single catalog file
// given on the command line
type Loader struct {
	file  string
	mu    sync.Mutex
	cache map[string]*domain.Catalog
}

// NewLoader creates a catalog loader
func NewLoader(cfg *config.RuntimeConfig) *Loader {
	return &Loader{
		file:  cfg.CatalogFile,
		cache: make(map[string]*domain.Catalog),
	}
}

// Products lists the available products
func (l *Loader) Products() []string {
	if l.file != "" {
		if c, err := l.loadFile(); err == nil {
			return []string{c.Product}
		}
		return nil
	}

	entries, err := products.ReadDir("products")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Strings(names)
	return names
}

// Load returns the catalog of a product
func (l *Loader) Load(product string) (*domain.Catalog, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if c, ok := l.cache[product]; ok {
		return c, nil
	}

	var (
		c   *domain.Catalog
		err error
	)
	if l.file != "" {
		c, err = l.loadFileLocked()
		if err == nil && c.Product != product {
			err = fmt.Errorf("%w: catalog %s describes product %q, not %q", domain.ErrInvalidConfig, l.file, c.Product, product)
		}
	} else {
		var data []byte
		data, err = products.ReadFile(path.Join("products", product+".yaml"))
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: unknown product %q", domain.ErrInvalidConfig, product)
		}
		if err == nil {
			c, err = Parse(bytes.NewReader(data))
		}
	}
	if err != nil {
		return nil, err
	}

	l.cache[product] = c
	return c, nil
}

func (l *Loader) loadFile() (*domain.Catalog, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadFileLocked()
}

func (l *Loader) loadFileLocked() (*domain.Catalog, error) {
	f, err := os.Open(l.file)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes and validates a catalog document
func Parse(r io.Reader) (*domain.Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c domain.Catalog
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: failed to decode catalog: %v", domain.ErrInvalidConfig, err)
	}
	if err := Validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the structural rules of a catalog. Reference targets are
// resolved later against the chain's enabled set.
func Validate(c *domain.Catalog) error {
	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Product == "" {
		addf("product is required")
	}

	seen := make(map[string]bool, len(c.Components))
	for i, comp := range c.Components {
		switch {
		case comp.Name == "":
			addf("component %d has no name", i)
		case seen[comp.Name]:
			addf("component %s is declared twice", comp.Name)
		}
		seen[comp.Name] = true

		if comp.Artifact == "" || comp.Source == "" {
			addf("component %s needs artifact and source", comp.Name)
		}
		checkArgs(comp.Name, comp.Args, addf)
		for variant, v := range comp.Variants {
			owner := comp.Name + "/" + variant
			if v.Artifact == "" || v.Source == "" {
				addf("variant %s needs artifact and source", owner)
			}
			checkArgs(owner, v.Args, addf)
		}
	}

	steps := make(map[string]bool, len(c.Initializers))
	for _, init := range c.Initializers {
		switch {
		case init.Name == "":
			addf("initializer on %s has no name", init.Target)
		case steps[init.Name]:
			addf("initializer %s is declared twice", init.Name)
		}
		steps[init.Name] = true

		if !seen[init.Target] {
			addf("initializer %s targets unknown component %q", init.Name, init.Target)
		}
		if !strings.Contains(init.Signature, "(") {
			addf("initializer %s has malformed signature %q", init.Name, init.Signature)
		}
		checkArgs(init.Name, init.Args, addf)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: catalog %s: %s", domain.ErrInvalidConfig, c.Product, strings.Join(problems, "; "))
	}
	return nil
}

func checkArgs(owner string, args []domain.CatalogArg, addf func(string, ...any)) {
	for i, arg := range args {
		if arg.Type == "" {
			addf("%s arg %d has no type", owner, i)
		}
	}
}
