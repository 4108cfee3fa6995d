package hornql

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/hornql/hornql/pkg/lang"
)

// hospitalFixture builds a small ward: two doctors, two treatments,
// two patients, two bills. Exactly one of each pair should classify.
func hospitalFixture(t *testing.T) *Store {
	t.Helper()
	db := NewStore(HospitalSchema())

	type fact struct {
		id    string
		label string
		attr  string
		value lang.Value
	}
	date := func(s string) lang.Value {
		d, err := lang.ParseDate(s)
		if err != nil {
			t.Fatal(err)
		}
		return d
	}
	facts := []fact{
		{"d1", "Doctor", "yearsExperience", lang.NewVInt(20)},
		{"d2", "Doctor", "yearsExperience", lang.NewVInt(10)},
		{"t1", "Treatment", "cost", lang.NewVDecimal(1500.50)},
		{"t2", "Treatment", "cost", lang.NewVDecimal(500)},
		{"p1", "Patient", "dateOfBirth", date("1950-04-12")},
		{"p2", "Patient", "dateOfBirth", date("2000-09-30")},
		{"b1", "Bill", "dueDate", date("2025-09-01")},
		{"b2", "Bill", "dueDate", date("2025-12-20")},
	}
	for _, f := range facts {
		if _, err := db.CreateEntity(f.id); err != nil {
			t.Fatal(err)
		}
		if _, err := db.AddType(f.id, f.label); err != nil {
			t.Fatal(err)
		}
		if _, err := db.SetAttribute(f.id, f.attr, f.value); err != nil {
			t.Fatal(err)
		}
	}
	return db
}

func TestHospitalClassification(t *testing.T) {
	db := hospitalFixture(t)
	engine, err := NewHospitalEngine(db, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	stats, err := engine.Run()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Passes != 2 {
		t.Errorf("expected 2 passes; got %d", stats.Passes)
	}
	if stats.DerivedTypes != 4 {
		t.Errorf("expected 4 derived types; got %d", stats.DerivedTypes)
	}

	expect := map[string]struct {
		label string
		want  bool
	}{
		"d1": {"SeniorDoctor", true},
		"d2": {"SeniorDoctor", false},
		"t1": {"HighCostTreatment", true},
		"t2": {"HighCostTreatment", false},
		"p1": {"ElderlyPatient", true},
		"p2": {"ElderlyPatient", false},
		"b1": {"DelinquentAccount", true},
		"b2": {"DelinquentAccount", false},
	}
	for id, e := range expect {
		if got := db.HasType(id, e.label); got != e.want {
			t.Errorf("%s %s: expected %v; got %v", id, e.label, e.want, got)
		}
	}

	// derived labels carry their supertypes
	if !db.HasType("p1", "Patient") || !db.HasType("p1", "Person") {
		t.Error("closure missing on derived ElderlyPatient")
	}
}

func TestInferIdempotent(t *testing.T) {
	db := hospitalFixture(t)
	engine, err := NewHospitalEngine(db, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Run(); err != nil {
		t.Fatal(err)
	}
	stats, err := engine.Run()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Passes != 1 || stats.DerivedTypes != 0 || stats.DerivedAttrs != 0 {
		t.Fatalf("second run should be a no-op; got %+v", stats)
	}
}

func TestSeniorBoundary(t *testing.T) {
	build := func() *Store {
		db := NewStore(HospitalSchema())
		if _, err := db.CreateEntity("d3"); err != nil {
			t.Fatal(err)
		}
		if _, err := db.AddType("d3", "Doctor"); err != nil {
			t.Fatal(err)
		}
		if _, err := db.SetAttribute("d3", "yearsExperience", lang.NewVInt(15)); err != nil {
			t.Fatal(err)
		}
		return db
	}

	// strict by default: exactly the threshold doesn't qualify
	db := build()
	engine, err := NewHospitalEngine(db, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Run(); err != nil {
		t.Fatal(err)
	}
	if db.HasType("d3", "SeniorDoctor") {
		t.Error("threshold should be exclusive by default")
	}

	// inclusive switch flips the boundary
	db = build()
	cfg := DefaultConfig()
	cfg.SeniorInclusive = true
	engine, err = NewHospitalEngine(db, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Run(); err != nil {
		t.Fatal(err)
	}
	if !db.HasType("d3", "SeniorDoctor") {
		t.Error("inclusive threshold should qualify")
	}
}

func TestInvalidRules(t *testing.T) {
	db := NewStore(HospitalSchema())
	cases := []struct {
		name   string
		source string
		reason string
	}{
		{
			"unknown predicate",
			"rule X: Doctor(?d) ^ bogus(?d, ?y) -> SeniorDoctor(?d).",
			"unknown predicate: bogus",
		},
		{
			"unbound head variable",
			"rule X: Doctor(?d) -> SeniorDoctor(?x).",
			"?x is not bound",
		},
		{
			"builtin head",
			"rule X: Doctor(?d) ^ yearsExperience(?d, ?y) -> greaterThan(?y, 15).",
			"head can't be a builtin",
		},
		{
			"relation head",
			"rule X: Doctor(?d) ^ worksAt(?d, ?h) -> supervises(?d, ?h).",
			"head can't derive a relation",
		},
		{
			"presentation attribute in body",
			"rule X: Doctor(?d) ^ labelEn(?d, ?l) -> SeniorDoctor(?d).",
			"presentation attribute labelEn",
		},
		{
			"presentation attribute head",
			"rule X: Doctor(?d) ^ firstName(?d, ?n) -> labelEn(?d, ?n).",
			"presentation attribute labelEn",
		},
		{
			"literal head entity",
			"rule X: Doctor(?d) -> SeniorDoctor(d1).",
			"head entity must be a variable",
		},
		{
			"filter before binding",
			"rule X: greaterThan(?y, 15) ^ Doctor(?y) -> SeniorDoctor(?y).",
			"needs ?y bound",
		},
	}
	for _, c := range cases {
		set, err := ParseRules(c.source)
		if err != nil {
			t.Fatalf("%s: parse: %v", c.name, err)
		}
		_, err = NewEngine(db, set, DefaultConfig())
		if err == nil {
			t.Errorf("%s: expected invalid rule error", c.name)
			continue
		}
		if !strings.HasPrefix(err.Error(), "invalid rule X:") {
			t.Errorf("%s: expected invalid rule error; got %q", c.name, err.Error())
		}
		if !strings.Contains(err.Error(), c.reason) {
			t.Errorf("%s: expected reason %q in %q", c.name, c.reason, err.Error())
		}
	}
}

func TestConvergenceCap(t *testing.T) {
	db := hospitalFixture(t)
	cfg := DefaultConfig()
	cfg.MaxFixpointPasses = 1
	engine, err := NewHospitalEngine(db, cfg)
	if err != nil {
		t.Fatal(err)
	}
	_, err = engine.Run()
	if err == nil {
		t.Fatal("expected convergence error")
	}
	if err.Error() != "rule engine did not converge after 1 passes" {
		t.Fatalf("got %q", err.Error())
	}
	// everything derived before the cap stays in the store
	if !db.HasType("d1", "SeniorDoctor") {
		t.Error("partial derivations should be kept")
	}
}

func TestDerivedAttributeChain(t *testing.T) {
	db := NewStore(HospitalSchema())
	if _, err := db.CreateEntity("d1"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.AddType("d1", "Doctor"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.SetAttribute("d1", "yearsExperience", lang.NewVInt(20)); err != nil {
		t.Fatal(err)
	}

	// declared in dependency-reversed order, so the attribute head only
	// fires on the second pass
	set, err := ParseRules(`
rule SeniorOnCall:
  SeniorDoctor(?d) -> isAvailable(?d, true).

rule SeniorDoctor:
  Doctor(?d) ^ yearsExperience(?d, ?y) ^ greaterThan(?y, 15)
  -> SeniorDoctor(?d).
`)
	if err != nil {
		t.Fatal(err)
	}
	engine, err := NewEngine(db, set, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	stats, err := engine.Run()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Passes != 3 {
		t.Errorf("expected 3 passes; got %d", stats.Passes)
	}
	if stats.DerivedTypes != 1 || stats.DerivedAttrs != 1 {
		t.Errorf("got %+v", stats)
	}
	val, ok := db.Attribute("d1", "isAvailable")
	if !ok || !lang.Equal(val, lang.NewVBool(true)) {
		t.Fatalf("expected isAvailable=true; got %v", val)
	}
}

func TestDeterministicResults(t *testing.T) {
	run := func() []byte {
		db := hospitalFixture(t)
		engine, err := NewHospitalEngine(db, DefaultConfig())
		if err != nil {
			t.Fatal(err)
		}
		if _, err := engine.Run(); err != nil {
			t.Fatal(err)
		}
		pattern := parsePattern(t, db.Schema(), "Person(?p)")
		rows, err := db.Match(pattern, time.Time{})
		if err != nil {
			t.Fatal(err)
		}
		bindings, err := rows.Drain()
		if err != nil {
			t.Fatal(err)
		}
		data, err := json.Marshal(bindings)
		if err != nil {
			t.Fatal(err)
		}
		return data
	}

	first := run()
	second := run()
	if !bytes.Equal(first, second) {
		t.Fatalf("results differ:\n%s\n%s", first, second)
	}
}
