package lang

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("1960-03-15")
	if err != nil {
		t.Fatal(err)
	}
	if d.String() != "1960-03-15" {
		t.Fatalf("got %s", d.String())
	}
	if _, err := ParseDate("03/15/1960"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestAgeAt(t *testing.T) {
	asOf := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		birth string
		age   int
	}{
		{"1960-01-01", 66}, // anniversary today
		{"1960-01-02", 65}, // anniversary tomorrow
		{"1960-12-31", 65},
		{"2000-06-15", 25},
		{"2026-01-01", 0},
	}
	for _, c := range cases {
		d, err := ParseDate(c.birth)
		if err != nil {
			t.Fatal(err)
		}
		if got := d.AgeAt(asOf); got != c.age {
			t.Errorf("AgeAt(%s): expected %d; got %d", c.birth, c.age, got)
		}
	}
}

func TestDaysBefore(t *testing.T) {
	asOf := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		date string
		days int
	}{
		{"2025-12-31", 1},
		{"2025-10-03", 90},
		{"2026-01-01", 0},
		{"2026-01-02", -1},
	}
	for _, c := range cases {
		d, err := ParseDate(c.date)
		if err != nil {
			t.Fatal(err)
		}
		if got := d.DaysBefore(asOf); got != c.days {
			t.Errorf("DaysBefore(%s): expected %d; got %d", c.date, c.days, got)
		}
	}
}

func TestCompare(t *testing.T) {
	cases := []struct {
		a, b Value
		cmp  int
	}{
		{NewVInt(3), NewVInt(5), -1},
		{NewVInt(5), NewVInt(5), 0},
		{NewVInt(7), NewVDecimal(6.5), 1},
		{NewVDecimal(1.5), NewVInt(2), -1},
		{NewVString("a"), NewVString("b"), -1},
	}
	for _, c := range cases {
		got, err := Compare(c.a, c.b)
		if err != nil {
			t.Fatal(err)
		}
		if got != c.cmp {
			t.Errorf("Compare(%s, %s): expected %d; got %d", c.a, c.b, c.cmp, got)
		}
	}

	if _, err := Compare(NewVBool(true), NewVBool(false)); err == nil {
		t.Error("bools shouldn't be ordered")
	}
	if _, err := Compare(NewVInt(1), NewVString("1")); err == nil {
		t.Error("int and string shouldn't be comparable")
	}
}

func TestEqual(t *testing.T) {
	if !Equal(NewVInt(2), NewVDecimal(2)) {
		t.Error("2 should equal 2.0")
	}
	if Equal(NewVInt(2), NewVString("2")) {
		t.Error("int 2 shouldn't equal string 2")
	}
	a, _ := ParseDate("2020-05-01")
	b, _ := ParseDate("2020-05-01")
	if !Equal(a, b) {
		t.Error("same dates should be equal")
	}
}

func TestEnumAccepts(t *testing.T) {
	status := NewTEnum("Status", "Scheduled", "Completed")
	if !status.Accepts(NewVString("Scheduled")) {
		t.Error("member value rejected")
	}
	if status.Accepts(NewVString("Bogus")) {
		t.Error("non-member value accepted")
	}
	if status.Accepts(NewVInt(1)) {
		t.Error("non-string accepted")
	}
}
