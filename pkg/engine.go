package hornql

import (
	"time"
)

// Engine runs forward chaining: every rule's body is enumerated
// against the store and its head asserted for each binding, over and
// over until a full pass derives nothing new. Because heads only add
// type labels or write attributes, the process is monotonic and a
// fixpoint exists; the pass cap only guards against rules that keep
// rewriting an attribute back and forth.
type Engine struct {
	store     *Store
	rules     []*Rule
	asOf      time.Time
	maxPasses int
}

// RunStats summarizes one fixpoint run.
type RunStats struct {
	Passes       int
	DerivedTypes int
	DerivedAttrs int
}

// NewEngine compiles and validates a rule set against the store's
// schema. Every validation failure surfaces here as invalidRule, so a
// bad rule can never reach Run.
func NewEngine(store *Store, set *RuleSet, cfg Config) (*Engine, error) {
	rules, err := compileRules(store.Schema(), set)
	if err != nil {
		return nil, err
	}
	asOf := time.Time{}
	for _, rule := range rules {
		if rule.usesDate {
			asOf, err = cfg.Date()
			if err != nil {
				return nil, &invalidRule{Rule: rule.Name, Reason: err.Error()}
			}
			break
		}
	}
	maxPasses := cfg.MaxFixpointPasses
	if maxPasses <= 0 {
		maxPasses = DefaultConfig().MaxFixpointPasses
	}
	return &Engine{
		store:     store,
		rules:     rules,
		asOf:      asOf,
		maxPasses: maxPasses,
	}, nil
}

func (e *Engine) Rules() []*Rule {
	return e.rules
}

// Run chases the fixpoint. Rules fire in declaration order within a
// pass; each rule's bindings are fully enumerated before its head is
// asserted, so the store never mutates under a live iterator.
func (e *Engine) Run() (*RunStats, error) {
	stats := &RunStats{}
	for {
		if stats.Passes >= e.maxPasses {
			return nil, &ruleEngineDidNotConverge{Passes: stats.Passes}
		}
		stats.Passes++
		progress := false
		for _, rule := range e.rules {
			changed, err := e.fire(rule, stats)
			if err != nil {
				return nil, err
			}
			progress = progress || changed
		}
		if !progress {
			return stats, nil
		}
	}
}

func (e *Engine) fire(rule *Rule, stats *RunStats) (bool, error) {
	rows, err := e.store.Match(rule.body, e.asOf)
	if err != nil {
		return false, err
	}
	bindings, err := rows.Drain()
	if err != nil {
		return false, err
	}

	changed := false
	for _, binding := range bindings {
		derived, err := e.assert(rule.head, binding)
		if err != nil {
			return false, err
		}
		if derived {
			changed = true
			switch rule.head.(type) {
			case *typeHead:
				stats.DerivedTypes++
			case *attrHead:
				stats.DerivedAttrs++
			}
		}
	}
	return changed, nil
}

func (e *Engine) assert(head ruleHead, binding Binding) (bool, error) {
	switch h := head.(type) {
	case *typeHead:
		id, err := bindingEntity(binding, h.entityVar)
		if err != nil {
			return false, err
		}
		return e.store.AddType(id, h.label)
	case *attrHead:
		id, err := bindingEntity(binding, h.entityVar)
		if err != nil {
			return false, err
		}
		value := h.value.Lit
		if h.value.isVar() {
			value = binding[h.value.Var]
		}
		return e.store.SetAttribute(id, h.attribute, value)
	}
	return false, nil
}
