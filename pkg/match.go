package hornql

import (
	"bufio"
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/hornql/hornql/pkg/lang"
)

// Binding maps variable names to values. Entity bindings are VStrings
// holding the entity id.
type Binding map[string]lang.Value

func (b Binding) clone() Binding {
	out := make(Binding, len(b)+1)
	for name, val := range b {
		out[name] = val
	}
	return out
}

// WriteAsJSON writes the binding with sorted keys, so two runs over
// the same store produce byte-identical output.
func (b Binding) WriteAsJSON(w *bufio.Writer) error {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)

	if _, err := w.WriteString("{"); err != nil {
		return err
	}
	for idx, name := range names {
		if idx > 0 {
			if _, err := w.WriteString(","); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(fmt.Sprintf("%#v:", name)); err != nil {
			return err
		}
		if err := b[name].WriteAsJSON(w); err != nil {
			return err
		}
	}
	_, err := w.WriteString("}")
	return err
}

func (b Binding) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	if err := b.WriteAsJSON(w); err != nil {
		return nil, err
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type endOfMatches struct{}

// EndOfMatches is returned by Rows.Next once the binding sequence is
// exhausted.
var EndOfMatches = &endOfMatches{}

func (endOfMatches) Error() string {
	return "reached end of matches"
}

// Rows is a lazy iterator over the bindings satisfying a pattern. One
// Match call produces one pass; calling Match again re-executes. The
// order is the store's entity insertion order, stable as long as the
// store isn't mutated mid-iteration (which the access contract
// forbids).
type Rows struct {
	db      *Store
	clauses []Clause
	asOf    time.Time

	levels []*matchLevel
	done   bool
}

type matchLevel struct {
	candidates []Binding
	idx        int
}

// Match evaluates a pattern against the store. asOf anchors the date
// builtins; patterns that don't use them may pass the zero time.
func (db *Store) Match(p *Pattern, asOf time.Time) (*Rows, error) {
	usesDate, err := p.validate(db.schema, false)
	if err != nil {
		return nil, &validationError{error: err}
	}
	if usesDate && asOf.IsZero() {
		return nil, &validationError{error: fmt.Errorf("pattern uses a date predicate but no as-of date was given")}
	}
	return &Rows{
		db:      db,
		clauses: p.Clauses,
		asOf:    asOf,
	}, nil
}

// Next returns the next binding, or EndOfMatches.
func (r *Rows) Next() (Binding, error) {
	if r.done {
		return nil, EndOfMatches
	}
	if r.levels == nil {
		first, err := r.expand(r.clauses[0], Binding{})
		if err != nil {
			r.done = true
			return nil, err
		}
		r.levels = []*matchLevel{{candidates: first}}
	}
	for {
		if len(r.levels) == 0 {
			r.done = true
			return nil, EndOfMatches
		}
		level := r.levels[len(r.levels)-1]
		if level.idx >= len(level.candidates) {
			r.levels = r.levels[:len(r.levels)-1]
			continue
		}
		binding := level.candidates[level.idx]
		level.idx++
		if len(r.levels) == len(r.clauses) {
			return binding, nil
		}
		next, err := r.expand(r.clauses[len(r.levels)], binding)
		if err != nil {
			r.done = true
			return nil, err
		}
		r.levels = append(r.levels, &matchLevel{candidates: next})
	}
}

func (r *Rows) Close() error {
	r.done = true
	return nil
}

// Drain collects every remaining binding.
func (r *Rows) Drain() ([]Binding, error) {
	var out []Binding
	for {
		binding, err := r.Next()
		if err == EndOfMatches {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, binding)
	}
}

// resolveEntity turns an entity-position term into a concrete id, if
// the term is a literal or an already-bound variable.
func resolveEntity(t Term, b Binding) (string, bool) {
	if !t.isVar() {
		return lang.MustBeVString(t.Lit), true
	}
	if val, ok := b[t.Var]; ok {
		if s, isStr := val.(*lang.VString); isStr {
			return string(*s), true
		}
		// A non-entity value bound in entity position can never match.
		return "", true
	}
	return "", false
}

func resolveValue(t Term, b Binding) (lang.Value, bool) {
	if !t.isVar() {
		return t.Lit, true
	}
	val, ok := b[t.Var]
	return val, ok
}

// expand computes all one-clause extensions of a partial binding.
func (r *Rows) expand(clause Clause, b Binding) ([]Binding, error) {
	switch c := clause.(type) {
	case *TypeClause:
		return r.expandType(c, b), nil
	case *AttrClause:
		return r.expandAttr(c, b), nil
	case *RelClause:
		return r.expandRel(c, b), nil
	case *FilterClause:
		return r.expandFilter(c, b)
	}
	return nil, fmt.Errorf("unknown clause type %T", clause)
}

func (r *Rows) expandType(c *TypeClause, b Binding) []Binding {
	if id, bound := resolveEntity(c.Entity, b); bound {
		if r.db.HasType(id, c.Label) {
			return []Binding{b}
		}
		return nil
	}
	var out []Binding
	for _, id := range r.db.entityOrder {
		if r.db.HasType(id, c.Label) {
			extended := b.clone()
			extended[c.Entity.Var] = lang.NewVString(id)
			out = append(out, extended)
		}
	}
	return out
}

func (r *Rows) expandAttr(c *AttrClause, b Binding) []Binding {
	matchOne := func(id string, base Binding) []Binding {
		val, ok := r.db.Attribute(id, c.Attribute)
		if !ok {
			return nil
		}
		if want, bound := resolveValue(c.Value, base); bound {
			if lang.Equal(val, want) {
				return []Binding{base}
			}
			return nil
		}
		extended := base.clone()
		extended[c.Value.Var] = val
		return []Binding{extended}
	}

	if id, bound := resolveEntity(c.Entity, b); bound {
		return matchOne(id, b)
	}
	var out []Binding
	for _, id := range r.db.entityOrder {
		base := b.clone()
		base[c.Entity.Var] = lang.NewVString(id)
		out = append(out, matchOne(id, base)...)
	}
	return out
}

func (r *Rows) expandRel(c *RelClause, b Binding) []Binding {
	subjID, subjBound := resolveEntity(c.Subject, b)
	objID, objBound := resolveEntity(c.Object, b)

	extend := func(varName string, id string, base Binding) Binding {
		extended := base.clone()
		extended[varName] = lang.NewVString(id)
		return extended
	}

	switch {
	case subjBound && objBound:
		for _, target := range r.db.Related(subjID, c.Relation) {
			if target == objID {
				return []Binding{b}
			}
		}
		return nil
	case subjBound:
		var out []Binding
		for _, target := range r.db.Related(subjID, c.Relation) {
			out = append(out, extend(c.Object.Var, target, b))
		}
		return out
	case objBound:
		// The inverse is always materialized, so walk it instead of
		// scanning every subject.
		inverse := r.db.schema.relations[c.Relation].inverse
		var out []Binding
		for _, source := range r.db.Related(objID, inverse) {
			out = append(out, extend(c.Subject.Var, source, b))
		}
		return out
	default:
		var out []Binding
		for _, id := range r.db.entityOrder {
			for _, target := range r.db.Related(id, c.Relation) {
				extended := extend(c.Subject.Var, id, b)
				extended[c.Object.Var] = lang.NewVString(target)
				out = append(out, extended)
			}
		}
		return out
	}
}

func (r *Rows) expandFilter(c *FilterClause, b Binding) ([]Binding, error) {
	left, _ := resolveValue(c.Left, b)
	right, _ := resolveValue(c.Right, b)

	keep, err := evalBuiltin(c.Fn, left, right, r.asOf)
	if err != nil {
		return nil, err
	}
	if keep {
		return []Binding{b}, nil
	}
	return nil, nil
}

func evalBuiltin(fn string, left lang.Value, right lang.Value, asOf time.Time) (bool, error) {
	switch fn {
	case "equal":
		return lang.Equal(left, right), nil
	case "notEqual":
		return !lang.Equal(left, right), nil
	case "ageAtLeast", "overdueAtLeast":
		date, ok := left.(*lang.VDate)
		if !ok {
			return false, fmt.Errorf("%s wants a date; got %s", fn, left.GetType())
		}
		threshold, ok := right.(*lang.VInt)
		if !ok {
			return false, fmt.Errorf("%s wants an int threshold; got %s", fn, right.GetType())
		}
		if fn == "ageAtLeast" {
			return date.AgeAt(asOf) >= int(*threshold), nil
		}
		return date.DaysBefore(asOf) >= int(*threshold), nil
	}

	cmp, err := lang.Compare(left, right)
	if err != nil {
		return false, err
	}
	switch fn {
	case "greaterThan":
		return cmp > 0, nil
	case "atLeast":
		return cmp >= 0, nil
	case "lessThan":
		return cmp < 0, nil
	case "atMost":
		return cmp <= 0, nil
	}
	return false, fmt.Errorf("unknown predicate: %s", fn)
}
