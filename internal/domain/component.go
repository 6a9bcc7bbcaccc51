package domain

import (
	"fmt"
	"strings"
)

// ArgKind tags the variant held by an Arg
type ArgKind int

const (
	// ArgLiteral is a static value taken from configuration
	ArgLiteral ArgKind = iota
	// ArgComponentRef is the address of another component in the run
	ArgComponentRef
	// ArgRefList is an address list built from several component references
	ArgRefList
)

func (k ArgKind) String() string {
	switch k {
	case ArgLiteral:
		return "literal"
	case ArgComponentRef:
		return "ref"
	case ArgRefList:
		return "refs"
	default:
		return fmt.Sprintf("ArgKind(%d)", int(k))
	}
}

// Arg is one typed argument of a constructor or initialization call.
// Exactly one of Value, Ref or Refs is meaningful, selected by Kind.
type Arg struct {
	Kind ArgKind
	// Type is the solidity ABI type, e.g. "address" or "uint256[]"
	Type  string
	Value any
	Ref   string
	Refs  []string
	// Optional drops references that cannot be resolved instead of failing.
	// Only meaningful for ArgRefList.
	Optional bool
}

// Literal creates a literal argument
func Literal(abiType string, value any) Arg {
	return Arg{Kind: ArgLiteral, Type: abiType, Value: value}
}

// ComponentRef creates an argument resolved to another component's address
func ComponentRef(abiType, name string) Arg {
	return Arg{Kind: ArgComponentRef, Type: abiType, Ref: name}
}

// RefList creates an address list argument resolved from several components
func RefList(abiType string, names []string, optional bool) Arg {
	return Arg{Kind: ArgRefList, Type: abiType, Refs: names, Optional: optional}
}

// References returns the component names this argument depends on
func (a Arg) References() []string {
	switch a.Kind {
	case ArgComponentRef:
		return []string{a.Ref}
	case ArgRefList:
		return a.Refs
	default:
		return nil
	}
}

// Required reports whether every reference must resolve
func (a Arg) Required() bool {
	return a.Kind == ArgComponentRef || (a.Kind == ArgRefList && !a.Optional)
}

func (a Arg) String() string {
	switch a.Kind {
	case ArgComponentRef:
		return fmt.Sprintf("%s @%s", a.Type, a.Ref)
	case ArgRefList:
		return fmt.Sprintf("%s [@%s]", a.Type, strings.Join(a.Refs, " @"))
	default:
		return fmt.Sprintf("%s %v", a.Type, a.Value)
	}
}

// ResolvedArg is an argument whose references have been replaced by addresses
type ResolvedArg struct {
	Type  string
	Value any
}

// CodeIdentifier points at a component's creation bytecode and verification metadata
type CodeIdentifier struct {
	// Artifact is the contract name inside the compiled source
	Artifact string
	// Source is the project-relative path of the solidity source file
	Source string
}

// Location returns the "path.sol:Name" form used by verifiers
func (c CodeIdentifier) Location() string {
	if c.Source == "" {
		return c.Artifact
	}
	return c.Source + ":" + c.Artifact
}

// ComponentSpec describes one deployable unit of a run
type ComponentSpec struct {
	Name            string
	Enabled         bool
	AutoVerify      bool
	Code            CodeIdentifier
	ConstructorArgs []Arg
	// DependsOn lists ordering constraints that are not constructor arguments
	DependsOn []string
	Salt      string
	Variant   string
	// Index is the declaration position in the catalog, used to break ties
	Index int
}

// Dependencies returns every component this spec must be ordered after
func (s ComponentSpec) Dependencies() []string {
	seen := make(map[string]bool)
	var deps []string
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			deps = append(deps, name)
		}
	}
	for _, arg := range s.ConstructorArgs {
		for _, ref := range arg.References() {
			add(ref)
		}
	}
	for _, dep := range s.DependsOn {
		add(dep)
	}
	return deps
}

// EncodeSalt right-pads a salt string to 32 bytes, keeping the last byte zero
// so the value round-trips as a bytes32 string.
func EncodeSalt(salt string) ([32]byte, error) {
	var out [32]byte
	if len(salt) > 31 {
		return out, fmt.Errorf("%w: salt %q is longer than 31 bytes", ErrInvalidArgument, salt)
	}
	copy(out[:], salt)
	return out, nil
}
