package hornql

import "fmt"

type duplicateEntity struct {
	ID string
}

func (e *duplicateEntity) Error() string {
	return fmt.Sprintf("entity already exists: %s", e.ID)
}

type unknownEntity struct {
	ID string
}

func (e *unknownEntity) Error() string {
	return fmt.Sprintf("no such entity: %s", e.ID)
}

type typeMismatch struct {
	Attribute string
	Wanted    string
	Got       string
}

func (e *typeMismatch) Error() string {
	return fmt.Sprintf("attribute %s wants %s; got %s", e.Attribute, e.Wanted, e.Got)
}

type noSuchClass struct {
	Label string
}

func (e *noSuchClass) Error() string {
	return fmt.Sprintf("no such class: %s", e.Label)
}

type noSuchAttribute struct {
	Name string
}

func (e *noSuchAttribute) Error() string {
	return fmt.Sprintf("no such attribute: %s", e.Name)
}

type noSuchRelation struct {
	Name string
}

func (e *noSuchRelation) Error() string {
	return fmt.Sprintf("no such relation: %s", e.Name)
}

type invalidRule struct {
	Rule   string
	Reason string
}

func (e *invalidRule) Error() string {
	return fmt.Sprintf("invalid rule %s: %s", e.Rule, e.Reason)
}

// ruleEngineDidNotConverge reports a fixpoint run that hit the pass
// cap while still deriving facts. The store keeps everything derived
// up to the cap.
type ruleEngineDidNotConverge struct {
	Passes int
}

func (e *ruleEngineDidNotConverge) Error() string {
	return fmt.Sprintf("rule engine did not converge after %d passes", e.Passes)
}

type parseError struct {
	error error
}

func (e *parseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.error.Error())
}

type validationError struct {
	error error
}

func (e *validationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.error.Error())
}
