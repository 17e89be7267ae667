package lint

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/selwalk/internal/logging"
	"github.com/yaklabco/selwalk/pkg/config"
	"github.com/yaklabco/selwalk/pkg/selector"
)

// entry is one compiled selector of one rule. slot is its position in registration
// order, which is also dispatch order.
type entry struct {
	slot     int
	rule     *registeredRule
	selector string
	compiled *selector.Compiled
}

type registeredRule struct {
	plugin    string
	name      string
	rule      Rule
	selectors []string
	entries   []*entry
}

// RuleInfo describes a registered or ignored rule.
type RuleInfo struct {
	Plugin    string
	Name      string
	Meta      RuleMeta
	Selectors []string
	Ignored   bool
}

// ID returns "plugin/rule".
func (ri RuleInfo) ID() string { return config.QualifiedRuleName(ri.Plugin, ri.Name) }

// Registry holds the plugins installed for one run. It is built explicitly, handed to
// BuildTable once, and discarded with the run.
type Registry struct {
	mu      sync.RWMutex
	cfg     *config.Config
	logger  *log.Logger
	ignored map[string]struct{}
	sealed  bool

	plugins []string
	rules   []*registeredRule
	skipped []RuleInfo
	entries []*entry
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithIgnoredRules excludes "plugin/rule" identifiers from registration.
func WithIgnoredRules(ids ...string) RegistryOption {
	return func(r *Registry) {
		for _, id := range ids {
			r.ignored[id] = struct{}{}
		}
	}
}

// WithConfig supplies rule options to declaring contexts and adds the configuration's
// ignored rules.
func WithConfig(cfg *config.Config) RegistryOption {
	return func(r *Registry) {
		r.cfg = cfg
		WithIgnoredRules(cfg.Ignored()...)(r)
	}
}

// WithLogger sets the registry logger.
func WithLogger(logger *log.Logger) RegistryOption {
	return func(r *Registry) { r.logger = logger }
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		ignored: make(map[string]struct{}),
		logger:  logging.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Install registers plugins in order. A duplicate or unnamed plugin is rejected as a
// whole. Within a plugin, a rule whose Create fails or whose selectors do not parse is
// rejected alone and the remaining rules are registered. The returned error joins
// every rejection.
func (r *Registry) Install(plugins ...Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return ErrRegistrySealed
	}

	var errs []error
	for _, p := range plugins {
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("%w: empty name", ErrInvalidPlugin))
			continue
		}
		if slices.Contains(r.plugins, p.Name) {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicatePlugin, p.Name))
			continue
		}
		r.plugins = append(r.plugins, p.Name)

		for _, name := range slices.Sorted(maps.Keys(p.Rules)) {
			if err := r.register(p.Name, name, p.Rules[name]); err != nil {
				errs = append(errs, err)
			}
		}

		r.logger.Debug("installed plugin", logging.FieldPlugin, p.Name, logging.FieldEntries, len(r.entries))
	}

	return errors.Join(errs...)
}

func (r *Registry) register(plugin, name string, rule Rule) error {
	id := config.QualifiedRuleName(plugin, name)

	if _, ok := r.ignored[id]; ok {
		r.skipped = append(r.skipped, RuleInfo{Plugin: plugin, Name: name, Meta: rule.Meta, Ignored: true})
		r.logger.Debug("skipping ignored rule", logging.FieldPlugin, plugin, logging.FieldRule, name)
		return nil
	}

	if rule.Create == nil && rule.CreateOrdered == nil {
		return fmt.Errorf("%w: %s has no Create", ErrInvalidRule, id)
	}

	rc := newDeclaringContext(plugin, name, r.cfg, r.logger)
	visitors, err := rule.visitors(rc)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidRule, id, err)
	}

	reg := &registeredRule{plugin: plugin, name: name, rule: rule}
	reg.selectors = make([]string, len(visitors))
	for i, v := range visitors {
		reg.selectors[i] = v.Selector
	}

	compiled := make([]*selector.Compiled, len(reg.selectors))
	for i, src := range reg.selectors {
		c, err := selector.Compile(src)
		if err != nil {
			return &SelectorError{Plugin: plugin, Rule: name, Selector: src, Err: err}
		}
		compiled[i] = c
	}

	for i, src := range reg.selectors {
		e := &entry{slot: len(r.entries), rule: reg, selector: src, compiled: compiled[i]}
		reg.entries = append(reg.entries, e)
		r.entries = append(r.entries, e)
	}
	r.rules = append(r.rules, reg)

	r.logger.Debug("registered rule",
		logging.FieldPlugin, plugin,
		logging.FieldRule, name,
		logging.FieldSelector, reg.selectors,
	)
	return nil
}
