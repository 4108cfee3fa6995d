package lang

import (
	"fmt"
	"strings"
)

// Type is the declared kind of a data property.
type Type interface {
	String() string

	// Accepts reports whether a value may be stored under this type.
	Accepts(v Value) bool
}

func ParseType(name string) (Type, error) {
	switch name {
	case "int":
		return TInt, nil
	case "decimal":
		return TDecimal, nil
	case "string":
		return TString, nil
	case "bool":
		return TBool, nil
	case "date":
		return TDate, nil
	default:
		return nil, fmt.Errorf("can't parse type %s", name)
	}
}

// Int

type tInt struct{}

var TInt = &tInt{}
var _ Type = TInt

func (tInt) String() string {
	return "int"
}

func (tInt) Accepts(v Value) bool {
	_, ok := v.(*VInt)
	return ok
}

// Decimal

type tDecimal struct{}

var TDecimal = &tDecimal{}
var _ Type = TDecimal

func (tDecimal) String() string {
	return "decimal"
}

// Ints are acceptable decimals; comparison promotes them.
func (tDecimal) Accepts(v Value) bool {
	switch v.(type) {
	case *VDecimal, *VInt:
		return true
	}
	return false
}

// String

type tString struct{}

var TString = &tString{}
var _ Type = TString

func (tString) String() string {
	return "string"
}

func (tString) Accepts(v Value) bool {
	_, ok := v.(*VString)
	return ok
}

// Bool

type tBool struct{}

var TBool = &tBool{}
var _ Type = TBool

func (tBool) String() string {
	return "bool"
}

func (tBool) Accepts(v Value) bool {
	_, ok := v.(*VBool)
	return ok
}

// Date

type tDate struct{}

var TDate = &tDate{}
var _ Type = TDate

func (tDate) String() string {
	return "date"
}

func (tDate) Accepts(v Value) bool {
	_, ok := v.(*VDate)
	return ok
}

// Enum

// TEnum is a closed set of string values.
type TEnum struct {
	name   string
	values []string
}

var _ Type = &TEnum{}

func NewTEnum(name string, values ...string) *TEnum {
	return &TEnum{
		name:   name,
		values: values,
	}
}

func (te *TEnum) String() string {
	return fmt.Sprintf("enum %s (%s)", te.name, strings.Join(te.values, " | "))
}

func (te *TEnum) Accepts(v Value) bool {
	s, ok := v.(*VString)
	if !ok {
		return false
	}
	for _, candidate := range te.values {
		if candidate == string(*s) {
			return true
		}
	}
	return false
}
