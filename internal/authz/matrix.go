package authz

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Wildcard matches any module or action when it appears in matrix
// configuration. It is never accepted as caller input.
const Wildcard = "*"

// Matrix is the process-wide role/permission table. It is built once at
// startup and read-only afterwards, so concurrent lookups need no locking.
type Matrix struct {
	global Role
	roles  map[Role]matrixEntry
}

type matrixEntry struct {
	inherits []Role
	modules  map[string]actionSet
}

type actionSet struct {
	wildcard bool
	actions  map[string]struct{}
}

// GlobalRole returns the single role permitted unconditional access, or ""
// when none is configured.
func (m *Matrix) GlobalRole() Role {
	return m.global
}

// Knows reports whether the role exists in the matrix.
func (m *Matrix) Knows(role Role) bool {
	if role == m.global && role != "" {
		return true
	}
	_, ok := m.roles[role]
	return ok
}

// Lookup reports whether the role may perform action within module, either
// directly, via a wildcard grant, or through an inherited role.
func (m *Matrix) Lookup(role Role, module, action string) bool {
	return m.lookup(role, module, action, make(map[Role]struct{}))
}

func (m *Matrix) lookup(role Role, module, action string, seen map[Role]struct{}) bool {
	if _, ok := seen[role]; ok {
		return false
	}
	seen[role] = struct{}{}

	if role != "" && role == m.global {
		return true
	}
	entry, ok := m.roles[role]
	if !ok {
		return false
	}
	if matchActions(entry.modules, module, action) {
		return true
	}
	for _, parent := range entry.inherits {
		if m.lookup(parent, module, action, seen) {
			return true
		}
	}
	return false
}

func matchActions(modules map[string]actionSet, module, action string) bool {
	for _, key := range []string{module, Wildcard} {
		set, ok := modules[key]
		if !ok {
			continue
		}
		if set.wildcard {
			return true
		}
		if _, ok := set.actions[action]; ok {
			return true
		}
	}
	return false
}

// MatrixBuilder accumulates role grants before validation. Build is the only
// way to obtain a Matrix; an invalid configuration never produces one.
type MatrixBuilder struct {
	global Role
	dupe   bool
	roles  map[Role]*builderEntry
	order  []Role
}

type builderEntry struct {
	inherits []Role
	modules  map[string][]string
}

// NewMatrixBuilder returns an empty builder.
func NewMatrixBuilder() *MatrixBuilder {
	return &MatrixBuilder{roles: make(map[Role]*builderEntry)}
}

func (b *MatrixBuilder) entry(role Role) *builderEntry {
	e, ok := b.roles[role]
	if !ok {
		e = &builderEntry{modules: make(map[string][]string)}
		b.roles[role] = e
		b.order = append(b.order, role)
	}
	return e
}

// Role registers a role without any grants.
func (b *MatrixBuilder) Role(role Role) *MatrixBuilder {
	b.entry(role)
	return b
}

// Global marks the role as the unconditional super-administrator. Only one
// role may carry the flag; a second call makes Build fail.
func (b *MatrixBuilder) Global(role Role) *MatrixBuilder {
	b.entry(role)
	if b.global != "" && b.global != role {
		b.dupe = true
		return b
	}
	b.global = role
	return b
}

// Grant allows role to perform the listed actions within module.
func (b *MatrixBuilder) Grant(role Role, module string, actions ...string) *MatrixBuilder {
	e := b.entry(role)
	e.modules[module] = append(e.modules[module], actions...)
	return b
}

// Inherit makes role fall back to the grants of each parent role.
func (b *MatrixBuilder) Inherit(role Role, parents ...Role) *MatrixBuilder {
	e := b.entry(role)
	e.inherits = append(e.inherits, parents...)
	return b
}

// Build validates the accumulated configuration and freezes it into a
// Matrix. It fails closed: duplicate global roles, references to undefined
// roles, and inheritance cycles are all rejected.
func (b *MatrixBuilder) Build() (*Matrix, error) {
	if b.dupe {
		return nil, fmt.Errorf("%w: more than one role marked global", ErrConfig)
	}
	for role, e := range b.roles {
		for _, parent := range e.inherits {
			if _, ok := b.roles[parent]; !ok {
				return nil, fmt.Errorf("%w: role %q inherits undefined role %q", ErrConfig, role, parent)
			}
		}
	}
	if err := b.detectCycles(); err != nil {
		return nil, err
	}

	m := &Matrix{global: b.global, roles: make(map[Role]matrixEntry, len(b.roles))}
	for role, e := range b.roles {
		entry := matrixEntry{modules: make(map[string]actionSet, len(e.modules))}
		entry.inherits = append(entry.inherits, e.inherits...)
		for module, actions := range e.modules {
			set := actionSet{actions: make(map[string]struct{}, len(actions))}
			for _, action := range actions {
				action = strings.TrimSpace(strings.ToLower(action))
				if action == "" {
					continue
				}
				if action == Wildcard {
					set.wildcard = true
					continue
				}
				set.actions[action] = struct{}{}
			}
			entry.modules[strings.TrimSpace(strings.ToLower(module))] = set
		}
		m.roles[role] = entry
	}
	return m, nil
}

func (b *MatrixBuilder) detectCycles() error {
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[Role]int, len(b.roles))

	var visit func(role Role, trail []Role) error
	visit = func(role Role, trail []Role) error {
		switch state[role] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: role inheritance cycle through %q", ErrConfig, joinRoles(append(trail, role)))
		}
		state[role] = visiting
		for _, parent := range b.roles[role].inherits {
			if err := visit(parent, append(trail, role)); err != nil {
				return err
			}
		}
		state[role] = done
		return nil
	}

	for _, role := range b.order {
		if err := visit(role, nil); err != nil {
			return err
		}
	}
	return nil
}

func joinRoles(roles []Role) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, " -> ")
}

type matrixFile struct {
	Roles map[string]roleSpec `yaml:"roles" validate:"required,min=1,dive"`
}

type roleSpec struct {
	Global   bool                `yaml:"global"`
	Inherits []string            `yaml:"inherits"`
	Modules  map[string][]string `yaml:"modules" validate:"omitempty,dive,min=1,dive,required"`
}

// LoadMatrix reads the permission matrix from a YAML file and builds it.
func LoadMatrix(path string) (*Matrix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrConfig, path, err)
	}
	return ParseMatrix(data)
}

// ParseMatrix builds a Matrix from raw YAML configuration.
func ParseMatrix(data []byte) (*Matrix, error) {
	var file matrixFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: parse yaml: %v", ErrConfig, err)
	}
	if err := validator.New().Struct(file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	b := NewMatrixBuilder()
	for name, spec := range file.Roles {
		role := Role(strings.TrimSpace(strings.ToLower(name)))
		if role == "" || role == Wildcard {
			return nil, fmt.Errorf("%w: invalid role name %q", ErrConfig, name)
		}
		b.Role(role)
		if spec.Global {
			b.Global(role)
		}
		for _, parent := range spec.Inherits {
			b.Inherit(role, Role(strings.TrimSpace(strings.ToLower(parent))))
		}
		for module, actions := range spec.Modules {
			b.Grant(role, module, actions...)
		}
	}
	return b.Build()
}
