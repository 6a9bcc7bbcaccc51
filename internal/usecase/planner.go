package usecase

import (
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/catapult/internal/domain"
)

// Planner turns a chain config and a catalog into an ordered deployment plan
type Planner struct {
	log *slog.Logger
}

// NewPlanner creates a new planner
func NewPlanner(log *slog.Logger) *Planner {
	return &Planner{log: log.With("component", "Planner")}
}

// Plan orders the enabled components so that every constructor reference
// points at an earlier step. Components in alreadyDeployed become attach
// steps at their usual position.
func (p *Planner) Plan(cfg *domain.ChainConfig, catalog *domain.Catalog, alreadyDeployed map[string]common.Address) (*domain.DeploymentPlan, error) {
	specs, err := BuildComponentSpecs(catalog, cfg)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]domain.ComponentSpec, len(specs))
	var enabled []string
	for _, spec := range specs {
		byName[spec.Name] = spec
		if spec.Enabled {
			enabled = append(enabled, spec.Name)
		}
	}

	for _, name := range domain.SortedKeys(alreadyDeployed) {
		if _, ok := byName[name]; !ok {
			return nil, &domain.UnknownComponentError{Name: name, ReferencedBy: "already-deployed set", Suggestions: suggest(name, catalog.Names())}
		}
	}

	external := make(map[string]common.Address)
	for name, addr := range alreadyDeployed {
		if !byName[name].Enabled {
			external[name] = addr
		}
	}

	// Every required reference must be enabled or have a known address
	for _, name := range enabled {
		spec := byName[name]
		for _, arg := range spec.ConstructorArgs {
			if !arg.Required() {
				continue
			}
			for _, ref := range arg.References() {
				if !byName[ref].Enabled {
					if _, ok := external[ref]; !ok {
						return nil, &domain.MissingDependencyError{Component: name, Dependency: ref}
					}
				}
			}
		}
		for _, dep := range spec.DependsOn {
			if !byName[dep].Enabled {
				if _, ok := external[dep]; !ok {
					return nil, &domain.MissingDependencyError{Component: name, Dependency: dep}
				}
			}
		}
	}

	order, err := NewDependencyGraph(specs).Restrict(enabled).TopologicalSort()
	if err != nil {
		return nil, err
	}

	plan := &domain.DeploymentPlan{
		Chain:    cfg.Name,
		ChainID:  cfg.ChainID,
		Product:  catalog.Product,
		External: external,
	}
	for _, name := range order {
		step := domain.DeploymentStep{Component: byName[name], Action: domain.StepDeploy}
		if addr, ok := alreadyDeployed[name]; ok {
			step.Action = domain.StepAttach
			step.Address = addr
		}
		plan.Steps = append(plan.Steps, step)
	}

	inits, err := BuildInitializationSteps(catalog, cfg)
	if err != nil {
		return nil, err
	}
	plan.Initializers, err = orderInitializers(inits)
	if err != nil {
		return nil, err
	}

	p.log.Debug("Planned deployment",
		"chain", cfg.Name,
		"steps", len(plan.Steps),
		"deploys", plan.DeployCount(),
		"initializers", len(plan.Initializers),
	)

	return plan, nil
}

// orderInitializers sorts steps by their after constraints, keeping
// declaration order otherwise. Constraints on steps that are not part of
// the run are ignored here and handled by the initializer.
func orderInitializers(steps []domain.InitializationStep) ([]domain.InitializationStep, error) {
	index := make(map[string]int, len(steps))
	byName := make(map[string]domain.InitializationStep, len(steps))
	for _, step := range steps {
		if _, dup := index[step.Name]; dup {
			return nil, fmt.Errorf("%w: initializer %s is declared twice", domain.ErrInvalidConfig, step.Name)
		}
		index[step.Name] = step.Index
		byName[step.Name] = step
	}

	order, err := topologicalSort(index, func(name string) []string {
		seen := make(map[string]bool)
		var deps []string
		for _, after := range byName[name].After {
			if _, ok := index[after]; ok && !seen[after] {
				seen[after] = true
				deps = append(deps, after)
			}
		}
		return deps
	})
	if err != nil {
		return nil, err
	}

	ordered := make([]domain.InitializationStep, len(order))
	for i, name := range order {
		ordered[i] = byName[name]
	}
	return ordered, nil
}
