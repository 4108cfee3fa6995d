package hornql

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/alecthomas/participle"
	"github.com/alecthomas/participle/lexer"

	"github.com/hornql/hornql/pkg/lang"
)

var (
	hornLexer = lexer.Unquote(lexer.Must(lexer.Regexp(`(\s+)`+
		`|(?P<Keyword>(?:entity|type|set|link|match|infer|rule)\b)`+
		`|(?P<Date>\d{4}-\d{2}-\d{2})`+
		`|(?P<Number>[-+]?\d*\.?\d+)`+
		`|(?P<String>'[^']*'|"[^"]*")`+
		`|(?P<Var>\?[a-zA-Z_][a-zA-Z0-9_]*)`+
		`|(?P<Ident>[a-zA-Z_][a-zA-Z0-9_]*)`+
		`|(?P<Operators>->|\^|[(),=.:])`,
	)), "String")

	stmtParser = participle.MustBuild(&Statement{}, hornLexer)
	ruleParser = participle.MustBuild(&RuleSet{}, hornLexer)
)

type Statement struct {
	Entity *EntityStmt `  @@`
	Type   *TypeStmt   `| @@`
	Set    *SetStmt    `| @@`
	Link   *LinkStmt   `| @@`
	Match  *MatchStmt  `| @@`
	Infer  *InferStmt  `| @@`
}

type EntityStmt struct {
	ID string `"entity" @Ident`
}

type TypeStmt struct {
	ID    string `"type" @Ident`
	Label string `@Ident`
}

type SetStmt struct {
	ID        string   `"set" @Ident`
	Attribute string   `@Ident`
	Value     *Literal `"=" @@`
}

type LinkStmt struct {
	Subject  string `"link" @Ident`
	Relation string `@Ident`
	Object   string `@Ident`
}

type MatchStmt struct {
	Atoms []*Atom `"match" @@ { "^" @@ }`
}

type InferStmt struct {
	Infer bool `@"infer"`
}

// Atom is a parsed predicate application; compileAtoms sorts out
// whether the predicate names a class, attribute, relation, or
// builtin.
type Atom struct {
	Pred string      `@Ident`
	Args []*AtomTerm `"(" @@ { "," @@ } ")"`
}

type AtomTerm struct {
	Var string   `  @Var`
	Lit *Literal `| @@`
}

type Literal struct {
	Date  string  `  @Date`
	Num   *string `| @Number`
	Str   *string `| @String`
	Ident string  `| @Ident`
}

// RuleSet is a parsed rule file: one or more named Horn clauses like
//
//	rule SeniorDoctor:
//	  Doctor(?d) ^ yearsExperience(?d, ?y) ^ greaterThan(?y, 15)
//	  -> SeniorDoctor(?d).
type RuleSet struct {
	Rules []*RuleDecl `{ @@ }`
}

type RuleDecl struct {
	Name string  `"rule" @Ident ":"`
	Body []*Atom `@@ { "^" @@ }`
	Head *Atom   `"->" @@ "."`
}

// Parse parses a wire statement.
func Parse(input string) (*Statement, error) {
	result := &Statement{}
	if err := stmtParser.ParseString(input, result); err != nil {
		return nil, &parseError{error: err}
	}
	return result, nil
}

// ParseRules parses a rule source file.
func ParseRules(input string) (*RuleSet, error) {
	result := &RuleSet{}
	if err := ruleParser.ParseString(input, result); err != nil {
		return nil, &parseError{error: err}
	}
	return result, nil
}

// value converts a literal, using the attribute's declared type to
// pick between int and decimal and to pass enum values through.
func (l *Literal) value(want lang.Type) (lang.Value, error) {
	switch {
	case l.Date != "":
		return lang.ParseDate(l.Date)
	case l.Num != nil:
		f, err := strconv.ParseFloat(*l.Num, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", *l.Num)
		}
		if want == lang.TDecimal {
			return lang.NewVDecimal(f), nil
		}
		if _, frac := math.Modf(f); frac == 0 {
			return lang.NewVInt(int(f)), nil
		}
		return lang.NewVDecimal(f), nil
	case l.Str != nil:
		return lang.NewVString(*l.Str), nil
	case l.Ident == "true":
		return lang.NewVBool(true), nil
	case l.Ident == "false":
		return lang.NewVBool(false), nil
	case l.Ident != "":
		// bare idents are entity ids or enum values
		return lang.NewVString(l.Ident), nil
	}
	return nil, fmt.Errorf("empty literal")
}

func (t *AtomTerm) term(schema *Schema, pred string) (Term, error) {
	if t.Var != "" {
		return VarTerm(strings.TrimPrefix(t.Var, "?")), nil
	}
	var want lang.Type
	if desc, ok := schema.attributes[pred]; ok {
		want = desc.typ
	}
	val, err := t.Lit.value(want)
	if err != nil {
		return Term{}, err
	}
	return LitTerm(val), nil
}

// compileAtoms resolves parsed atoms into pattern clauses against the
// schema. Unknown predicates are reported by name so rule validation
// can fail fast.
func compileAtoms(schema *Schema, atoms []*Atom) (*Pattern, error) {
	clauses := make([]Clause, len(atoms))
	for idx, atom := range atoms {
		clause, err := compileAtom(schema, atom)
		if err != nil {
			return nil, err
		}
		clauses[idx] = clause
	}
	return &Pattern{Clauses: clauses}, nil
}

func compileAtom(schema *Schema, atom *Atom) (Clause, error) {
	terms := make([]Term, len(atom.Args))
	for idx, arg := range atom.Args {
		term, err := arg.term(schema, atom.Pred)
		if err != nil {
			return nil, err
		}
		terms[idx] = term
	}

	switch {
	case schema.HasClass(atom.Pred):
		if len(terms) != 1 {
			return nil, fmt.Errorf("class atom %s wants 1 argument; got %d", atom.Pred, len(terms))
		}
		return &TypeClause{Entity: terms[0], Label: atom.Pred}, nil
	case isBuiltinPredicate(atom.Pred):
		if len(terms) != 2 {
			return nil, fmt.Errorf("builtin %s wants 2 arguments; got %d", atom.Pred, len(terms))
		}
		return &FilterClause{Fn: atom.Pred, Left: terms[0], Right: terms[1]}, nil
	default:
		if len(terms) != 2 {
			return nil, fmt.Errorf("property atom %s wants 2 arguments; got %d", atom.Pred, len(terms))
		}
		if _, ok := schema.attributes[atom.Pred]; ok {
			return &AttrClause{Entity: terms[0], Attribute: atom.Pred, Value: terms[1]}, nil
		}
		if _, ok := schema.relations[atom.Pred]; ok {
			return &RelClause{Subject: terms[0], Relation: atom.Pred, Object: terms[1]}, nil
		}
		return nil, fmt.Errorf("unknown predicate: %s", atom.Pred)
	}
}
