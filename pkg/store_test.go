package hornql

import (
	"reflect"
	"testing"

	"github.com/hornql/hornql/pkg/lang"
)

func TestCreateEntity(t *testing.T) {
	db := NewStore(HospitalSchema())
	if _, err := db.CreateEntity("d1"); err != nil {
		t.Fatal(err)
	}
	_, err := db.CreateEntity("d1")
	if err == nil {
		t.Fatal("expected duplicate entity error")
	}
	if err.Error() != "entity already exists: d1" {
		t.Fatalf("got %q", err.Error())
	}
}

func TestSetAttribute(t *testing.T) {
	db := NewStore(HospitalSchema())
	if _, err := db.CreateEntity("d1"); err != nil {
		t.Fatal(err)
	}

	// unknown entity
	if _, err := db.SetAttribute("nope", "yearsExperience", lang.NewVInt(3)); err == nil {
		t.Fatal("expected unknown entity error")
	}

	// type mismatch
	_, err := db.SetAttribute("d1", "yearsExperience", lang.NewVString("twenty"))
	if err == nil {
		t.Fatal("expected type mismatch")
	}
	if err.Error() != "attribute yearsExperience wants int; got string" {
		t.Fatalf("got %q", err.Error())
	}

	// change reporting drives fixpoint progress detection
	changed, err := db.SetAttribute("d1", "yearsExperience", lang.NewVInt(20))
	if err != nil || !changed {
		t.Fatalf("first write should report a change (err=%v)", err)
	}
	changed, _ = db.SetAttribute("d1", "yearsExperience", lang.NewVInt(20))
	if changed {
		t.Fatal("same value should report no change")
	}
	changed, _ = db.SetAttribute("d1", "yearsExperience", lang.NewVInt(21))
	if !changed {
		t.Fatal("new value should report a change")
	}
	val, ok := db.Attribute("d1", "yearsExperience")
	if !ok || !lang.Equal(val, lang.NewVInt(21)) {
		t.Fatalf("got %v", val)
	}

	// enum attribute rejects non-members
	if _, err := db.CreateEntity("a1"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.SetAttribute("a1", "status", lang.NewVString("Pending")); err == nil {
		t.Fatal("expected enum rejection")
	}
	if _, err := db.SetAttribute("a1", "status", lang.NewVString("No-show")); err != nil {
		t.Fatal(err)
	}
}

func TestAddTypeClosure(t *testing.T) {
	db := NewStore(HospitalSchema())
	if _, err := db.CreateEntity("d1"); err != nil {
		t.Fatal(err)
	}

	added, err := db.AddType("d1", "SeniorDoctor")
	if err != nil {
		t.Fatal(err)
	}
	if !added {
		t.Fatal("first assertion should report new labels")
	}
	want := []string{"SeniorDoctor", "Doctor", "Person"}
	if got := db.Types("d1"); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v; got %v", want, got)
	}

	// idempotent
	added, err = db.AddType("d1", "Doctor")
	if err != nil {
		t.Fatal(err)
	}
	if added {
		t.Fatal("re-assertion should report nothing new")
	}

	if _, err := db.AddType("d1", "Wizard"); err == nil {
		t.Fatal("expected no such class error")
	}
	if _, err := db.AddType("nope", "Doctor"); err == nil {
		t.Fatal("expected unknown entity error")
	}
}

func TestAddRelationInverse(t *testing.T) {
	db := NewStore(HospitalSchema())
	for _, id := range []string{"d1", "h1"} {
		if _, err := db.CreateEntity(id); err != nil {
			t.Fatal(err)
		}
	}

	if err := db.AddRelation("d1", "worksAt", "h1"); err != nil {
		t.Fatal(err)
	}
	if got := db.Related("d1", "worksAt"); !reflect.DeepEqual(got, []string{"h1"}) {
		t.Fatalf("got %v", got)
	}
	if got := db.Related("h1", "hasStaff"); !reflect.DeepEqual(got, []string{"d1"}) {
		t.Fatalf("inverse not materialized: %v", got)
	}

	// re-adding is a no-op
	if err := db.AddRelation("d1", "worksAt", "h1"); err != nil {
		t.Fatal(err)
	}
	if got := db.Related("d1", "worksAt"); len(got) != 1 {
		t.Fatalf("duplicate link: %v", got)
	}

	if err := db.AddRelation("d1", "worksAt", "nope"); err == nil {
		t.Fatal("expected unknown entity error")
	}
	if err := db.AddRelation("d1", "marriedTo", "h1"); err == nil {
		t.Fatal("expected no such relation error")
	}
}

func TestCounts(t *testing.T) {
	db := NewStore(HospitalSchema())
	for _, id := range []string{"d1", "h1"} {
		if _, err := db.CreateEntity(id); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := db.AddType("d1", "Doctor"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.SetAttribute("d1", "yearsExperience", lang.NewVInt(20)); err != nil {
		t.Fatal(err)
	}
	if err := db.AddRelation("d1", "worksAt", "h1"); err != nil {
		t.Fatal(err)
	}
	if got := db.NumEntities(); got != 2 {
		t.Fatalf("expected 2 entities; got %d", got)
	}
	// Doctor + Person labels, one attribute, one link each way.
	if got := db.NumFacts(); got != 5 {
		t.Fatalf("expected 5 facts; got %d", got)
	}
}
