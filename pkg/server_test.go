package hornql

import (
	"testing"
)

func TestServerScript(t *testing.T) {
	ref := runSimpleTestScript(t, []simpleTestStmt{
		{stmt: "entity d1", ack: "created d1"},
		{stmt: "entity d1", error: "entity already exists: d1"},
		{stmt: "type d1 Doctor", ack: "d1 is Doctor"},
		{stmt: "type d1 Doctor", ack: "d1 already Doctor"},
		{stmt: "type d1 Wizard", error: "no such class: Wizard"},
		{stmt: "set d1 yearsExperience = 20", ack: "set d1.yearsExperience"},
		{stmt: "set d1 yearsExperience = 'lots'", error: "attribute yearsExperience wants int; got string"},
		{stmt: "set ghost yearsExperience = 5", error: "no such entity: ghost"},
		{stmt: "entity d2", ack: "created d2"},
		{stmt: "type d2 Doctor", ack: "d2 is Doctor"},
		{stmt: "set d2 yearsExperience = 10", ack: "set d2.yearsExperience"},
		{stmt: "entity h1", ack: "created h1"},
		{stmt: "type h1 Hospital", ack: "h1 is Hospital"},
		{stmt: "link d1 worksAt h1", ack: "linked d1 worksAt h1"},
		{stmt: "link d1 flies h1", error: "no such relation: flies"},
		{
			query:    "match Doctor(?d) ^ yearsExperience(?d, ?y)",
			bindings: `[{"d":"d1","y":20},{"d":"d2","y":10}]`,
		},
		{query: "match SeniorDoctor(?d)", bindings: `[]`},
		{stmt: "infer", ack: "converged after 2 passes; derived 1 types, 0 attributes"},
		{query: "match SeniorDoctor(?d)", bindings: `[{"d":"d1"}]`},
		{query: "match hasStaff(?h, ?d)", bindings: `[{"d":"d1","h":"h1"}]`},
		{query: "match bogus(?x, ?y)", error: "validation error: unknown predicate: bogus"},

		// new facts after an infer are picked up by the next one
		{stmt: "entity p1", ack: "created p1"},
		{stmt: "type p1 Patient", ack: "p1 is Patient"},
		{stmt: "set p1 dateOfBirth = 1950-04-12", ack: "set p1.dateOfBirth"},
		{stmt: "infer", ack: "converged after 2 passes; derived 1 types, 0 attributes"},
		{query: "match ElderlyPatient(?p)", bindings: `[{"p":"p1"}]`},
	})
	ref.Close()
}

func TestClientInfer(t *testing.T) {
	server, client, err := NewTestServer(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer server.Close()
	defer client.Close()

	for _, stmt := range []string{
		"entity d1",
		"type d1 Doctor",
		"set d1 yearsExperience = 30",
	} {
		if _, err := client.Exec(stmt); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := client.Infer()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Passes != 2 || stats.DerivedTypes != 1 || stats.DerivedAttrs != 0 {
		t.Fatalf("got %+v", stats)
	}
}
