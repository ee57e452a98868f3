package symbol

import (
	_ "embed"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/hazop-ai/pidsym/errors"
)

//go:embed families.yaml
var builtinFamilies []byte

// SourceBuiltin marks families compiled into the binary.
const SourceBuiltin = "builtin"

// familyFile is the on-disk shape of families.yaml and custom family files.
type familyFile struct {
	Policies map[string]Policy `yaml:"policies"`
	Families []Family          `yaml:"families"`
}

// Registry holds the known families in registration order.
type Registry struct {
	mu       sync.RWMutex
	order    []string
	families map[string]*Family
	aliases  map[string]string
	policies map[string]Policy
	version  string // running pidsym version, checked against Family.Requires
}

// NewRegistry creates an empty registry.
func NewRegistry(toolVersion string) *Registry {
	return &Registry{
		families: make(map[string]*Family),
		aliases:  make(map[string]string),
		policies: make(map[string]Policy),
		version:  toolVersion,
	}
}

// DefaultRegistry returns a registry holding the built-in ISO and PIP families.
func DefaultRegistry(toolVersion string) (*Registry, error) {
	r := NewRegistry(toolVersion)
	if err := r.Load(builtinFamilies, SourceBuiltin); err != nil {
		return nil, errors.Wrap(err, "failed to load built-in families")
	}
	return r, nil
}

// Load parses a family file and registers its policies and families.
// Policies become visible to later files, so a custom family may use "body".
func (r *Registry) Load(data []byte, source string) error {
	var file familyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return errors.Wrapf(err, "failed to parse family file %s", source)
	}

	r.mu.Lock()
	for name, p := range file.Policies {
		r.policies[name] = p
	}
	r.mu.Unlock()

	for _, f := range file.Families {
		f.Source = source
		if err := r.Register(f); err != nil {
			return errors.Wrapf(err, "%s", source)
		}
	}
	return nil
}

// LoadDir loads every *.yaml and *.yml file in dir, in name order.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(err, "failed to read family dir %s", dir)
	}

	var files []string
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "failed to read %s", path)
		}
		if err := r.Load(data, path); err != nil {
			return err
		}
	}
	return nil
}

// Register adds a family. Returns an error on a name or alias conflict, an
// unknown policy, or an unsatisfied version constraint.
func (r *Registry) Register(f Family) error {
	f.Name = strings.ToLower(strings.TrimSpace(f.Name))
	if f.Name == "" {
		return errors.New("family name cannot be empty")
	}
	for i, alias := range f.Aliases {
		f.Aliases[i] = strings.ToLower(strings.TrimSpace(alias))
	}
	f.applyDefaults()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.lookup(f.Name); exists {
		return errors.Newf("family already registered: %s", f.Name)
	}
	for _, alias := range f.Aliases {
		if _, exists := r.lookup(alias); exists {
			return errors.Newf("family alias %q of %s already in use", alias, f.Name)
		}
	}

	policy, ok := r.policies[f.PolicyName]
	if !ok {
		return errors.WithHintf(
			errors.Newf("family %s uses unknown policy %q", f.Name, f.PolicyName),
			"known policies: %s", strings.Join(r.policyNames(), ", "))
	}
	f.Policy = policy

	if err := r.validateVersion(f); err != nil {
		return err
	}

	r.families[f.Name] = &f
	r.order = append(r.order, f.Name)
	for _, alias := range f.Aliases {
		r.aliases[alias] = f.Name
	}
	return nil
}

// Get returns the family registered under name or one of its aliases.
func (r *Registry) Get(name string) (*Family, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if f, ok := r.lookup(name); ok {
		return f, nil
	}
	return nil, errors.NewUnknownFamilyError(name, r.order)
}

// Policy returns a named policy.
func (r *Registry) Policy(name string) (Policy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.policies[name]
	return p, ok
}

// List returns all families in registration order.
func (r *Registry) List() []*Family {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Family, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.families[name])
	}
	return out
}

// Names returns the registered family names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

func (r *Registry) lookup(name string) (*Family, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if f, ok := r.families[key]; ok {
		return f, true
	}
	if canonical, ok := r.aliases[key]; ok {
		return r.families[canonical], true
	}
	return nil, false
}

func (r *Registry) policyNames() []string {
	names := make([]string, 0, len(r.policies))
	for name := range r.policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// validateVersion checks a family's requires constraint against the running
// version. Development builds satisfy every constraint.
func (r *Registry) validateVersion(f Family) error {
	if f.Requires == "" || r.version == "" || r.version == "dev" {
		return nil
	}

	running, err := semver.NewVersion(r.version)
	if err != nil {
		return errors.Wrapf(err, "invalid pidsym version %s", r.version)
	}

	constraint, err := semver.NewConstraint(f.Requires)
	if err != nil {
		return errors.Wrapf(err, "family %s: invalid version constraint %s", f.Name, f.Requires)
	}

	if !constraint.Check(running) {
		return errors.Newf("family %s requires pidsym %s, but running %s", f.Name, f.Requires, r.version)
	}
	return nil
}
