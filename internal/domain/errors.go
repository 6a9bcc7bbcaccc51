package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the run phases
var (
	// ErrConfigNotFound is returned when no configuration exists for a chain
	ErrConfigNotFound = errors.New("config not found")

	// ErrInvalidConfig is returned when a configuration fails validation
	ErrInvalidConfig = errors.New("invalid config")

	// ErrCyclicDependency is returned when the enabled components form a cycle
	ErrCyclicDependency = errors.New("cyclic dependency")

	// ErrUnknownComponent is returned when a name does not exist in the catalog
	ErrUnknownComponent = errors.New("unknown component")

	// ErrMissingDependency is returned when a required reference cannot be satisfied
	ErrMissingDependency = errors.New("missing dependency")

	// ErrInvalidArgument is returned when an argument cannot be bound or encoded
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDeploymentFailed is returned when a deployment transaction fails
	ErrDeploymentFailed = errors.New("deployment failed")

	// ErrInitializationFailed is returned when an initialization call fails
	ErrInitializationFailed = errors.New("initialization failed")

	// ErrVerificationFailed is returned when contract verification fails
	ErrVerificationFailed = errors.New("verification failed")

	// ErrVerificationUnsupported is returned when a verifier cannot serve a request at all.
	// Verification is not retried after it.
	ErrVerificationUnsupported = errors.New("verification unsupported")

	// ErrArtifactNotFound is returned when no build artifact matches a code identifier
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrManifestNotFound is returned when a chain has no recorded deployments
	ErrManifestNotFound = errors.New("manifest not found")

	// ErrAborted is returned when the user declines to broadcast
	ErrAborted = errors.New("aborted")
)

// ConfigNotFoundError reports a chain without deploy configuration
type ConfigNotFoundError struct {
	Chain       string
	Suggestions []string
}

func (e *ConfigNotFoundError) Error() string {
	msg := fmt.Sprintf("missing deploy config for %s", e.Chain)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

func (e *ConfigNotFoundError) Is(target error) bool {
	return target == ErrConfigNotFound
}

// CyclicDependencyError reports a cycle among enabled components
type CyclicDependencyError struct {
	Cycle []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("cyclic dependency: %s", strings.Join(e.Cycle, " -> "))
}

func (e *CyclicDependencyError) Is(target error) bool {
	return target == ErrCyclicDependency
}

// UnknownComponentError reports a reference to a name missing from the catalog
type UnknownComponentError struct {
	Name         string
	ReferencedBy string
	Suggestions  []string
}

func (e *UnknownComponentError) Error() string {
	msg := fmt.Sprintf("unknown component %q", e.Name)
	if e.ReferencedBy != "" {
		msg += fmt.Sprintf(" referenced by %s", e.ReferencedBy)
	}
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

func (e *UnknownComponentError) Is(target error) bool {
	return target == ErrUnknownComponent
}

// MissingDependencyError reports a required reference to a component that is
// neither enabled nor already deployed
type MissingDependencyError struct {
	Component  string
	Dependency string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("%s requires %s, which is disabled and has no known address", e.Component, e.Dependency)
}

func (e *MissingDependencyError) Is(target error) bool {
	return target == ErrMissingDependency
}

// DeploymentFailedError reports a component whose deployment did not complete
type DeploymentFailedError struct {
	Component string
	Cause     error
}

func (e *DeploymentFailedError) Error() string {
	return fmt.Sprintf("deployment of %s failed: %v", e.Component, e.Cause)
}

func (e *DeploymentFailedError) Unwrap() error {
	return e.Cause
}

func (e *DeploymentFailedError) Is(target error) bool {
	return target == ErrDeploymentFailed
}

// InitializationFailedError reports an initialization call that did not complete
type InitializationFailedError struct {
	Step  string
	Cause error
}

func (e *InitializationFailedError) Error() string {
	return fmt.Sprintf("initialization %s failed: %v", e.Step, e.Cause)
}

func (e *InitializationFailedError) Unwrap() error {
	return e.Cause
}

func (e *InitializationFailedError) Is(target error) bool {
	return target == ErrInitializationFailed
}

// VerificationFailedError reports a verification submission that did not succeed
type VerificationFailedError struct {
	Component string
	Cause     error
}

func (e *VerificationFailedError) Error() string {
	return fmt.Sprintf("verification of %s failed: %v", e.Component, e.Cause)
}

func (e *VerificationFailedError) Unwrap() error {
	return e.Cause
}

func (e *VerificationFailedError) Is(target error) bool {
	return target == ErrVerificationFailed
}
