package models

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/plinth-labs/plinth/internal/domain"
)

// StepKind represents what a manifest step does on-chain
type StepKind string

const (
	StepKindAttach StepKind = "attach"
	StepKindDeploy StepKind = "deploy"
	StepKindLink   StepKind = "link"
)

// ReferencePrefix marks a step argument as a reference to a known address
const ReferencePrefix = "@"

// Manifest is an ordered list of deployment steps plus the externally
// supplied addresses they may reference.
type Manifest struct {
	Name      string            `toml:"name" yaml:"name"`
	Addresses map[string]string `toml:"addresses" yaml:"addresses"`
	Steps     []Step            `toml:"steps" yaml:"steps"`
}

// Step is a single attach, deploy or link operation
type Step struct {
	Kind     StepKind `toml:"kind" yaml:"kind"`
	Name     string   `toml:"name" yaml:"name"`         // Output name, referenced as @Name
	Contract string   `toml:"contract" yaml:"contract"` // Artifact name, e.g. "ZetaJackpot"

	// attach
	Address string `toml:"address" yaml:"address"` // Literal or @reference

	// link
	Target string `toml:"target" yaml:"target"` // Step whose contract receives the call
	Method string `toml:"method" yaml:"method"`

	// Constructor arguments for deploy, call arguments for link
	Args []string `toml:"args" yaml:"args"`
	// Constructor arguments submitted for verification of attached contracts
	VerifyArgs []string `toml:"verify_args" yaml:"verify_args"`

	Verify   bool   `toml:"verify" yaml:"verify"`
	Record   bool   `toml:"record" yaml:"record"`
	RecordAs string `toml:"record_as" yaml:"record_as"` // Registry display name, defaults to Name
}

// IsReference reports whether a step argument references a known address
func IsReference(arg string) bool {
	return strings.HasPrefix(arg, ReferencePrefix)
}

// ReferenceName strips the reference prefix from an argument
func ReferenceName(arg string) string {
	return strings.TrimPrefix(arg, ReferencePrefix)
}

// DisplayName returns the name used for the registry record
func (s Step) DisplayName() string {
	if s.RecordAs != "" {
		return s.RecordAs
	}
	return s.Name
}

// ConstructorArgs returns the arguments to submit for verification
func (s Step) ConstructorArgs() []string {
	if s.Kind == StepKindAttach {
		return s.VerifyArgs
	}
	return s.Args
}

// Validate checks the manifest ordering invariant: every reference must point to
// an external address or to the output of an earlier step.
func (m *Manifest) Validate() error {
	if len(m.Steps) == 0 {
		return fmt.Errorf("%w: no steps", domain.ErrInvalidManifest)
	}

	for name, addr := range m.Addresses {
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("%w: external address %s=%q", domain.ErrInvalidAddress, name, addr)
		}
	}

	known := make(map[string]StepKind, len(m.Steps))
	resolvable := func(arg string) bool {
		name := ReferenceName(arg)
		if _, ok := m.Addresses[name]; ok {
			return true
		}
		kind, ok := known[name]
		return ok && kind != StepKindLink
	}

	for i, step := range m.Steps {
		if step.Name == "" {
			return fmt.Errorf("%w: step %d has no name", domain.ErrInvalidManifest, i)
		}
		if _, dup := known[step.Name]; dup {
			return fmt.Errorf("%w: duplicate step name %q", domain.ErrInvalidManifest, step.Name)
		}
		if _, clash := m.Addresses[step.Name]; clash {
			return fmt.Errorf("%w: step %q shadows an external address", domain.ErrInvalidManifest, step.Name)
		}

		switch step.Kind {
		case StepKindAttach:
			if step.Contract == "" {
				return fmt.Errorf("%w: attach step %q has no contract", domain.ErrInvalidManifest, step.Name)
			}
			if step.Address == "" {
				return fmt.Errorf("%w: attach step %q has no address", domain.ErrInvalidManifest, step.Name)
			}
			if IsReference(step.Address) {
				if !resolvable(step.Address) {
					return fmt.Errorf("%w: step %q address %s", domain.ErrUnresolvedReference, step.Name, step.Address)
				}
			} else if !common.IsHexAddress(step.Address) {
				return fmt.Errorf("%w: step %q address %q", domain.ErrInvalidAddress, step.Name, step.Address)
			}
		case StepKindDeploy:
			if step.Contract == "" {
				return fmt.Errorf("%w: deploy step %q has no contract", domain.ErrInvalidManifest, step.Name)
			}
		case StepKindLink:
			if step.Method == "" {
				return fmt.Errorf("%w: link step %q has no method", domain.ErrInvalidManifest, step.Name)
			}
			if kind, ok := known[step.Target]; !ok || kind == StepKindLink {
				return fmt.Errorf("%w: link step %q targets %q", domain.ErrUnresolvedReference, step.Name, step.Target)
			}
			if step.Verify || step.Record {
				return fmt.Errorf("%w: link step %q cannot be verified or recorded", domain.ErrInvalidManifest, step.Name)
			}
		default:
			return fmt.Errorf("%w: step %q has unknown kind %q", domain.ErrInvalidManifest, step.Name, step.Kind)
		}

		for _, arg := range append(append([]string{}, step.Args...), step.VerifyArgs...) {
			if IsReference(arg) && !resolvable(arg) {
				return fmt.Errorf("%w: step %q argument %s", domain.ErrUnresolvedReference, step.Name, arg)
			}
		}

		known[step.Name] = step.Kind
	}

	return nil
}
