package hornql

import (
	"fmt"

	"github.com/hornql/hornql/pkg/lang"
)

// Rule is a named Horn clause: a conjunctive body pattern and a single
// derivation head. Heads assert a type label or write a derived
// attribute. The store has no retraction, so only monotonic heads are
// expressible.
type Rule struct {
	Name string

	body     *Pattern
	head     ruleHead
	usesDate bool
}

type ruleHead interface {
	String() string
}

type typeHead struct {
	entityVar string
	label     string
}

func (h *typeHead) String() string {
	return fmt.Sprintf("%s(?%s)", h.label, h.entityVar)
}

type attrHead struct {
	entityVar string
	attribute string
	value     Term
}

func (h *attrHead) String() string {
	return fmt.Sprintf("%s(?%s, %s)", h.attribute, h.entityVar, h.value)
}

func (r *Rule) String() string {
	return fmt.Sprintf("rule %s: %s -> %s.", r.Name, r.body, r.head)
}

// compileRules resolves a parsed rule set against the schema, failing
// fast with invalidRule on the first malformed rule.
func compileRules(schema *Schema, set *RuleSet) ([]*Rule, error) {
	rules := make([]*Rule, len(set.Rules))
	for idx, decl := range set.Rules {
		rule, err := compileRule(schema, decl)
		if err != nil {
			return nil, err
		}
		rules[idx] = rule
	}
	return rules, nil
}

func compileRule(schema *Schema, decl *RuleDecl) (*Rule, error) {
	fail := func(reason string) (*Rule, error) {
		return nil, &invalidRule{Rule: decl.Name, Reason: reason}
	}

	body, err := compileAtoms(schema, decl.Body)
	if err != nil {
		return fail(err.Error())
	}
	usesDate, err := body.validate(schema, true)
	if err != nil {
		return fail(err.Error())
	}

	bound := map[string]bool{}
	for _, clause := range body.Clauses {
		collectVars(clause, bound)
	}

	head, err := compileHead(schema, decl.Head, bound)
	if err != nil {
		return fail(err.Error())
	}

	return &Rule{
		Name:     decl.Name,
		body:     body,
		head:     head,
		usesDate: usesDate,
	}, nil
}

func compileHead(schema *Schema, atom *Atom, bound map[string]bool) (ruleHead, error) {
	if isBuiltinPredicate(atom.Pred) {
		return nil, fmt.Errorf("head can't be a builtin: %s", atom.Pred)
	}
	if _, ok := schema.relations[atom.Pred]; ok {
		return nil, fmt.Errorf("head can't derive a relation: %s", atom.Pred)
	}

	headVar := func(t *AtomTerm) (string, error) {
		if t.Var == "" {
			return "", fmt.Errorf("head entity must be a variable")
		}
		name := t.Var[1:] // strip '?'
		if !bound[name] {
			return "", fmt.Errorf("head variable ?%s is not bound by the body", name)
		}
		return name, nil
	}

	if schema.HasClass(atom.Pred) {
		if len(atom.Args) != 1 {
			return nil, fmt.Errorf("class head %s wants 1 argument; got %d", atom.Pred, len(atom.Args))
		}
		entity, err := headVar(atom.Args[0])
		if err != nil {
			return nil, err
		}
		return &typeHead{entityVar: entity, label: atom.Pred}, nil
	}

	desc, ok := schema.attributes[atom.Pred]
	if !ok {
		return nil, fmt.Errorf("head must assert a class or attribute; %s is neither", atom.Pred)
	}
	if desc.presentation {
		return nil, fmt.Errorf("head can't write presentation attribute %s", atom.Pred)
	}
	if len(atom.Args) != 2 {
		return nil, fmt.Errorf("attribute head %s wants 2 arguments; got %d", atom.Pred, len(atom.Args))
	}
	entity, err := headVar(atom.Args[0])
	if err != nil {
		return nil, err
	}
	value, err := atom.Args[1].term(schema, atom.Pred)
	if err != nil {
		return nil, err
	}
	if value.isVar() {
		if !bound[value.Var] {
			return nil, fmt.Errorf("head variable ?%s is not bound by the body", value.Var)
		}
	} else if !desc.typ.Accepts(value.Lit) {
		return nil, fmt.Errorf("attribute %s wants %s; head writes %s",
			atom.Pred, desc.typ, value.Lit.GetType())
	}
	return &attrHead{entityVar: entity, attribute: atom.Pred, value: value}, nil
}

func collectVars(clause Clause, into map[string]bool) {
	note := func(t Term) {
		if t.isVar() {
			into[t.Var] = true
		}
	}
	switch c := clause.(type) {
	case *TypeClause:
		note(c.Entity)
	case *AttrClause:
		note(c.Entity)
		note(c.Value)
	case *RelClause:
		note(c.Subject)
		note(c.Object)
	case *FilterClause:
		// filters bind nothing
	}
}

// bindingEntity pulls the entity id a head variable is bound to.
func bindingEntity(b Binding, varName string) (string, error) {
	val, ok := b[varName]
	if !ok {
		return "", fmt.Errorf("unbound head variable ?%s", varName)
	}
	s, ok := val.(*lang.VString)
	if !ok {
		return "", fmt.Errorf("head variable ?%s is bound to a %s, not an entity", varName, val.GetType())
	}
	return string(*s), nil
}
