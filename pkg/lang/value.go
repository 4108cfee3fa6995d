package lang

import (
	"bufio"
	"fmt"
	"time"
)

// Value is a scalar attribute value: the object of a data property.
type Value interface {
	GetType() Type
	String() string

	WriteAsJSON(*bufio.Writer) error
}

// Int

type VInt int

var _ Value = NewVInt(0)

func NewVInt(v int) *VInt {
	val := VInt(v)
	return &val
}

func (v *VInt) GetType() Type {
	return TInt
}

func (v *VInt) String() string {
	return fmt.Sprintf("%d", int(*v))
}

func (v *VInt) WriteAsJSON(w *bufio.Writer) error {
	_, err := w.WriteString(v.String())
	return err
}

// Decimal

type VDecimal float64

var _ Value = NewVDecimal(0)

func NewVDecimal(v float64) *VDecimal {
	val := VDecimal(v)
	return &val
}

func (v *VDecimal) GetType() Type {
	return TDecimal
}

func (v *VDecimal) String() string {
	return fmt.Sprintf("%g", float64(*v))
}

func (v *VDecimal) WriteAsJSON(w *bufio.Writer) error {
	_, err := w.WriteString(v.String())
	return err
}

// String

type VString string

var _ Value = NewVString("")

func NewVString(s string) *VString {
	val := VString(s)
	return &val
}

func (v *VString) GetType() Type {
	return TString
}

func (v *VString) String() string {
	return string(*v)
}

func (v *VString) WriteAsJSON(w *bufio.Writer) error {
	_, err := w.WriteString(fmt.Sprintf("%#v", string(*v)))
	return err
}

func MustBeVString(v Value) string {
	s, ok := v.(*VString)
	if !ok {
		panic(fmt.Sprintf("not a string: %s", v.String()))
	}
	return string(*s)
}

// Bool

type VBool bool

var _ Value = NewVBool(false)

func NewVBool(b bool) *VBool {
	val := VBool(b)
	return &val
}

func (v *VBool) GetType() Type {
	return TBool
}

func (v *VBool) String() string {
	if *v {
		return "true"
	}
	return "false"
}

func (v *VBool) WriteAsJSON(w *bufio.Writer) error {
	_, err := w.WriteString(v.String())
	return err
}

// Date

const dateLayout = "2006-01-02"

// VDate is a calendar date. The time-of-day part is always zero, UTC.
type VDate time.Time

var _ Value = &VDate{}

func NewVDate(t time.Time) *VDate {
	val := VDate(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
	return &val
}

func ParseDate(s string) (*VDate, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	return NewVDate(t), nil
}

func (v *VDate) Time() time.Time {
	return time.Time(*v)
}

func (v *VDate) GetType() Type {
	return TDate
}

func (v *VDate) String() string {
	return v.Time().Format(dateLayout)
}

func (v *VDate) WriteAsJSON(w *bufio.Writer) error {
	_, err := w.WriteString(fmt.Sprintf("%#v", v.String()))
	return err
}

// AgeAt returns the number of whole years from the date to asOf.
func (v *VDate) AgeAt(asOf time.Time) int {
	t := v.Time()
	years := asOf.Year() - t.Year()
	anniversary := time.Date(asOf.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	if anniversary.After(today) {
		years--
	}
	return years
}

// DaysBefore returns how many whole days the date precedes asOf.
// Negative if the date is in asOf's future.
func (v *VDate) DaysBefore(asOf time.Time) int {
	day := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	return int(day.Sub(v.Time()).Hours() / 24)
}
