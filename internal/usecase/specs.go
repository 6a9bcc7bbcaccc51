package usecase

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/trebuchet-org/catapult/internal/domain"
)

// refPrefix marks a configured value as a component reference
const refPrefix = "@"

// BuildComponentSpecs binds every catalog component against a chain config.
// Disabled components are returned too so references to them can be told
// apart from references to names the catalog does not know.
func BuildComponentSpecs(catalog *domain.Catalog, cfg *domain.ChainConfig) ([]domain.ComponentSpec, error) {
	if err := checkConfiguredComponents(catalog, cfg); err != nil {
		return nil, err
	}

	known := func(name string) bool {
		_, ok := catalog.Component(name)
		return ok
	}

	specs := make([]domain.ComponentSpec, 0, len(catalog.Components))
	for i, component := range catalog.Components {
		flags := cfg.Flags(component.Name)

		artifact, source, templates := component.Artifact, component.Source, component.Args
		if flags.Variant != "" {
			variant, ok := component.Variants[flags.Variant]
			if !ok {
				return nil, fmt.Errorf("%w: component %s has no variant %q", domain.ErrInvalidConfig, component.Name, flags.Variant)
			}
			artifact, source, templates = variant.Artifact, variant.Source, variant.Args
		}

		args := make([]domain.Arg, 0, len(templates))
		for j, tmpl := range templates {
			arg, err := bindArg(tmpl, cfg, fmt.Sprintf("%s constructor arg %d", component.Name, j), false, known)
			if err != nil {
				// Disabled components may need values the chain does not configure
				if !flags.Enabled {
					args = nil
					break
				}
				return nil, err
			}
			args = append(args, arg)
		}

		for _, dep := range component.DependsOn {
			if !known(dep) {
				return nil, &domain.UnknownComponentError{Name: dep, ReferencedBy: component.Name, Suggestions: suggest(dep, catalog.Names())}
			}
		}

		specs = append(specs, domain.ComponentSpec{
			Name:            component.Name,
			Enabled:         flags.Enabled,
			AutoVerify:      flags.AutoVerify,
			Code:            domain.CodeIdentifier{Artifact: artifact, Source: source},
			ConstructorArgs: args,
			DependsOn:       component.DependsOn,
			Salt:            cfg.Salt + flags.SaltSuffix,
			Variant:         flags.Variant,
			Index:           i,
		})
	}

	return specs, nil
}

// BuildInitializationSteps binds the catalog initializers whose target is
// enabled on the chain
func BuildInitializationSteps(catalog *domain.Catalog, cfg *domain.ChainConfig) ([]domain.InitializationStep, error) {
	known := func(name string) bool {
		_, ok := catalog.Component(name)
		return ok
	}

	stepNames := make(map[string]bool, len(catalog.Initializers))
	for _, init := range catalog.Initializers {
		stepNames[init.Name] = true
	}

	var steps []domain.InitializationStep
	for i, init := range catalog.Initializers {
		if !known(init.Target) {
			return nil, &domain.UnknownComponentError{Name: init.Target, ReferencedBy: init.Name, Suggestions: suggest(init.Target, catalog.Names())}
		}
		for _, after := range init.After {
			if !stepNames[after] {
				return nil, fmt.Errorf("%w: initializer %s runs after unknown step %q", domain.ErrInvalidConfig, init.Name, after)
			}
		}
		if !cfg.Enabled(init.Target) {
			continue
		}

		args := make([]domain.Arg, 0, len(init.Args))
		for j, tmpl := range init.Args {
			arg, err := bindArg(tmpl, cfg, fmt.Sprintf("%s arg %d", init.Name, j), true, known)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}

		steps = append(steps, domain.InitializationStep{
			Name:      init.Name,
			Target:    init.Target,
			Signature: init.Signature,
			Args:      args,
			After:     init.After,
			Index:     i,
		})
	}

	return steps, nil
}

// bindArg turns an argument template into an Arg. With expandRefs, configured
// strings of the form "@name" become component references.
func bindArg(tmpl domain.CatalogArg, cfg *domain.ChainConfig, owner string, expandRefs bool, known func(string) bool) (domain.Arg, error) {
	if tmpl.Type == "" {
		return domain.Arg{}, fmt.Errorf("%w: %s has no type", domain.ErrInvalidConfig, owner)
	}

	set := 0
	for _, present := range []bool{tmpl.Value != nil, tmpl.Config != "", tmpl.Ref != "", len(tmpl.Refs) > 0} {
		if present {
			set++
		}
	}
	if set != 1 {
		return domain.Arg{}, fmt.Errorf("%w: %s must set exactly one of value, config, ref or refs", domain.ErrInvalidConfig, owner)
	}

	checkRefs := func(names ...string) error {
		for _, name := range names {
			if !known(name) {
				return &domain.UnknownComponentError{Name: name, ReferencedBy: owner}
			}
		}
		return nil
	}

	switch {
	case tmpl.Ref != "":
		if err := checkRefs(tmpl.Ref); err != nil {
			return domain.Arg{}, err
		}
		return domain.ComponentRef(tmpl.Type, tmpl.Ref), nil

	case len(tmpl.Refs) > 0:
		if err := checkRefs(tmpl.Refs...); err != nil {
			return domain.Arg{}, err
		}
		return domain.RefList(tmpl.Type, tmpl.Refs, tmpl.Optional), nil

	case tmpl.Config != "":
		value, ok := cfg.Value(tmpl.Config)
		if !ok {
			return domain.Arg{}, fmt.Errorf("%w: %s needs value %q, which is not configured for %s", domain.ErrInvalidConfig, owner, tmpl.Config, cfg.Name)
		}
		if expandRefs {
			if arg, isRef, err := refsFromValue(tmpl.Type, value, tmpl.Optional); err != nil {
				return domain.Arg{}, fmt.Errorf("%s: %w", owner, err)
			} else if isRef {
				if err := checkRefs(arg.References()...); err != nil {
					return domain.Arg{}, err
				}
				return arg, nil
			}
		}
		return domain.Literal(tmpl.Type, value), nil

	default:
		return domain.Literal(tmpl.Type, tmpl.Value), nil
	}
}

// refsFromValue converts "@name" strings into references. Lists must be
// all references or all literals.
func refsFromValue(abiType string, value any, optional bool) (domain.Arg, bool, error) {
	switch v := value.(type) {
	case string:
		if name, ok := strings.CutPrefix(v, refPrefix); ok {
			return domain.ComponentRef(abiType, name), true, nil
		}
	case []any:
		var names []string
		for _, item := range v {
			s, isString := item.(string)
			if name, ok := strings.CutPrefix(s, refPrefix); isString && ok {
				names = append(names, name)
			}
		}
		switch {
		case len(names) == 0:
			return domain.Arg{}, false, nil
		case len(names) != len(v):
			return domain.Arg{}, false, fmt.Errorf("%w: list mixes component references and literals", domain.ErrInvalidArgument)
		default:
			return domain.RefList(abiType, names, optional), true, nil
		}
	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return refsFromValue(abiType, items, optional)
	}
	return domain.Arg{}, false, nil
}

// checkConfiguredComponents rejects chain flags for components the catalog does not know
func checkConfiguredComponents(catalog *domain.Catalog, cfg *domain.ChainConfig) error {
	for _, name := range domain.SortedKeys(cfg.Components) {
		if _, ok := catalog.Component(name); !ok {
			return &domain.UnknownComponentError{
				Name:         name,
				ReferencedBy: fmt.Sprintf("chain %s", cfg.Name),
				Suggestions:  suggest(name, catalog.Names()),
			}
		}
	}
	return nil
}

// suggest returns up to three close matches for a misspelled name
func suggest(name string, candidates []string) []string {
	matches := fuzzy.Find(name, candidates)
	var out []string
	for i, match := range matches {
		if i == 3 {
			break
		}
		out = append(out, match.Str)
	}
	return out
}
