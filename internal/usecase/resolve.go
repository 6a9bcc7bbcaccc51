package usecase

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/catapult/internal/domain"
)

// ResolveArgs replaces component references with addresses. A required
// reference without an address is a planning error; optional references in
// a list are dropped.
func ResolveArgs(args []domain.Arg, addresses map[string]common.Address) ([]domain.ResolvedArg, error) {
	resolved := make([]domain.ResolvedArg, 0, len(args))
	for i, arg := range args {
		switch arg.Kind {
		case domain.ArgLiteral:
			resolved = append(resolved, domain.ResolvedArg{Type: arg.Type, Value: arg.Value})

		case domain.ArgComponentRef:
			addr, ok := addresses[arg.Ref]
			if !ok {
				return nil, fmt.Errorf("%w: arg %d references %s, which has no address", domain.ErrMissingDependency, i, arg.Ref)
			}
			resolved = append(resolved, domain.ResolvedArg{Type: arg.Type, Value: addr})

		case domain.ArgRefList:
			list := make([]common.Address, 0, len(arg.Refs))
			for _, ref := range arg.Refs {
				addr, ok := addresses[ref]
				if !ok {
					if arg.Optional {
						continue
					}
					return nil, fmt.Errorf("%w: arg %d references %s, which has no address", domain.ErrMissingDependency, i, ref)
				}
				list = append(list, addr)
			}
			resolved = append(resolved, domain.ResolvedArg{Type: arg.Type, Value: list})

		default:
			return nil, fmt.Errorf("%w: arg %d has unknown kind %s", domain.ErrInvalidArgument, i, arg.Kind)
		}
	}
	return resolved, nil
}
