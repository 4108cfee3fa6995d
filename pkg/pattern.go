package hornql

import (
	"fmt"
	"strings"

	"github.com/hornql/hornql/pkg/lang"
)

// Term is one argument position in a clause: either a ?variable or a
// literal. Entity ids appear as string literals.
type Term struct {
	Var string
	Lit lang.Value
}

func VarTerm(name string) Term {
	return Term{Var: name}
}

func LitTerm(v lang.Value) Term {
	return Term{Lit: v}
}

func (t Term) isVar() bool {
	return t.Var != ""
}

func (t Term) String() string {
	if t.isVar() {
		return "?" + t.Var
	}
	return t.Lit.String()
}

// Pattern is a conjunction of clauses, evaluated left to right.
type Pattern struct {
	Clauses []Clause
}

func (p *Pattern) String() string {
	parts := make([]string, len(p.Clauses))
	for idx, clause := range p.Clauses {
		parts[idx] = clause.String()
	}
	return strings.Join(parts, " ^ ")
}

type Clause interface {
	String() string
	validate(v *patternValidator) error
}

// TypeClause matches entities carrying a type label: Doctor(?d).
type TypeClause struct {
	Entity Term
	Label  string
}

// AttrClause matches a data property: yearsExperience(?d, ?y).
type AttrClause struct {
	Entity    Term
	Attribute string
	Value     Term
}

// RelClause matches an object property: worksAt(?d, ?h).
type RelClause struct {
	Subject  Term
	Relation string
	Object   Term
}

// FilterClause applies a builtin predicate to already-bound values:
// greaterThan(?y, 15). The date builtins (ageAtLeast, overdueAtLeast)
// evaluate against the pattern's as-of date.
type FilterClause struct {
	Fn    string
	Left  Term
	Right Term
}

func (c *TypeClause) String() string {
	return fmt.Sprintf("%s(%s)", c.Label, c.Entity)
}

func (c *AttrClause) String() string {
	return fmt.Sprintf("%s(%s, %s)", c.Attribute, c.Entity, c.Value)
}

func (c *RelClause) String() string {
	return fmt.Sprintf("%s(%s, %s)", c.Relation, c.Subject, c.Object)
}

func (c *FilterClause) String() string {
	return fmt.Sprintf("%s(%s, %s)", c.Fn, c.Left, c.Right)
}

// Builtin comparison predicates usable in filter position.
var builtinPredicates = map[string]bool{
	"greaterThan": true,
	"atLeast":     true,
	"lessThan":    true,
	"atMost":      true,
	"equal":       true,
	"notEqual":    true,
	// date builtins, relative to the as-of date
	"ageAtLeast":     true,
	"overdueAtLeast": true,
}

var dateBuiltins = map[string]bool{
	"ageAtLeast":     true,
	"overdueAtLeast": true,
}

func isBuiltinPredicate(name string) bool {
	return builtinPredicates[name]
}

type patternValidator struct {
	schema *Schema
	// forRule forbids presentation attributes, which are display
	// metadata and must stay invisible to derivation.
	forRule  bool
	bound    map[string]bool
	usesDate bool
}

// validate checks a pattern against the schema and variable-binding
// order. Returns whether any clause needs the as-of date.
func (p *Pattern) validate(schema *Schema, forRule bool) (bool, error) {
	v := &patternValidator{
		schema:  schema,
		forRule: forRule,
		bound:   map[string]bool{},
	}
	if len(p.Clauses) == 0 {
		return false, fmt.Errorf("empty pattern")
	}
	for _, clause := range p.Clauses {
		if err := clause.validate(v); err != nil {
			return false, err
		}
	}
	return v.usesDate, nil
}

func (v *patternValidator) bind(t Term) {
	if t.isVar() {
		v.bound[t.Var] = true
	}
}

func (v *patternValidator) requireBound(fn string, t Term) error {
	if t.isVar() && !v.bound[t.Var] {
		return fmt.Errorf("%s needs ?%s bound by an earlier clause", fn, t.Var)
	}
	return nil
}

func (v *patternValidator) requireEntityTerm(t Term) error {
	if t.isVar() {
		return nil
	}
	if _, ok := t.Lit.(*lang.VString); !ok {
		return fmt.Errorf("entity position needs an id, not %s", t.Lit.GetType())
	}
	return nil
}

func (c *TypeClause) validate(v *patternValidator) error {
	if _, err := v.schema.class(c.Label); err != nil {
		return err
	}
	if err := v.requireEntityTerm(c.Entity); err != nil {
		return err
	}
	v.bind(c.Entity)
	return nil
}

func (c *AttrClause) validate(v *patternValidator) error {
	desc, err := v.schema.attribute(c.Attribute)
	if err != nil {
		return err
	}
	if v.forRule && desc.presentation {
		return fmt.Errorf("presentation attribute %s can't appear in a rule", c.Attribute)
	}
	if err := v.requireEntityTerm(c.Entity); err != nil {
		return err
	}
	if !c.Value.isVar() && !desc.typ.Accepts(c.Value.Lit) {
		return &typeMismatch{
			Attribute: c.Attribute,
			Wanted:    desc.typ.String(),
			Got:       c.Value.Lit.GetType().String(),
		}
	}
	v.bind(c.Entity)
	v.bind(c.Value)
	return nil
}

func (c *RelClause) validate(v *patternValidator) error {
	if _, err := v.schema.relation(c.Relation); err != nil {
		return err
	}
	if err := v.requireEntityTerm(c.Subject); err != nil {
		return err
	}
	if err := v.requireEntityTerm(c.Object); err != nil {
		return err
	}
	v.bind(c.Subject)
	v.bind(c.Object)
	return nil
}

func (c *FilterClause) validate(v *patternValidator) error {
	if !isBuiltinPredicate(c.Fn) {
		return fmt.Errorf("unknown predicate: %s", c.Fn)
	}
	if err := v.requireBound(c.Fn, c.Left); err != nil {
		return err
	}
	if err := v.requireBound(c.Fn, c.Right); err != nil {
		return err
	}
	if dateBuiltins[c.Fn] {
		v.usesDate = true
		if !c.Right.isVar() {
			if _, ok := c.Right.Lit.(*lang.VInt); !ok {
				return fmt.Errorf("%s wants an int threshold", c.Fn)
			}
		}
	}
	return nil
}
