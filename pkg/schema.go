package hornql

import (
	"fmt"
	"sort"

	"github.com/hornql/hornql/pkg/lang"
)

// Schema declares the vocabulary facts are written in: class labels
// with their supertypes, data properties with scalar kinds, and object
// properties with registered inverses.
type Schema struct {
	classes    map[string]*classDescriptor
	classOrder []string
	attributes map[string]*attributeDescriptor
	relations  map[string]*relationDescriptor
}

type classDescriptor struct {
	name    string
	parents []string
	// closure holds the label itself plus all its supertypes,
	// computed once when the class is declared.
	closure []string
}

type attributeDescriptor struct {
	name string
	typ  lang.Type
	// presentation attributes (display labels) are invisible to rules.
	presentation bool
}

type relationDescriptor struct {
	name    string
	inverse string
}

func NewSchema() *Schema {
	return &Schema{
		classes:    map[string]*classDescriptor{},
		attributes: map[string]*attributeDescriptor{},
		relations:  map[string]*relationDescriptor{},
	}
}

// AddClass declares a class label. Parents must already be declared,
// so the supertype closure can be taken from them directly.
func (s *Schema) AddClass(name string, parents ...string) error {
	if _, ok := s.classes[name]; ok {
		return fmt.Errorf("class already declared: %s", name)
	}
	closure := []string{name}
	seen := map[string]bool{name: true}
	for _, parent := range parents {
		parentDesc, ok := s.classes[parent]
		if !ok {
			return &noSuchClass{Label: parent}
		}
		for _, label := range parentDesc.closure {
			if !seen[label] {
				seen[label] = true
				closure = append(closure, label)
			}
		}
	}
	s.classes[name] = &classDescriptor{
		name:    name,
		parents: parents,
		closure: closure,
	}
	s.classOrder = append(s.classOrder, name)
	return nil
}

func (s *Schema) AddAttribute(name string, typ lang.Type) error {
	if _, ok := s.attributes[name]; ok {
		return fmt.Errorf("attribute already declared: %s", name)
	}
	s.attributes[name] = &attributeDescriptor{name: name, typ: typ}
	return nil
}

// AddDisplayAttribute declares a presentation-only string attribute.
// Rule bodies may not mention it; match patterns may.
func (s *Schema) AddDisplayAttribute(name string) error {
	if err := s.AddAttribute(name, lang.TString); err != nil {
		return err
	}
	s.attributes[name].presentation = true
	return nil
}

// AddRelation declares an object property and its inverse. Both
// directions become queryable names.
func (s *Schema) AddRelation(name string, inverse string) error {
	if _, ok := s.relations[name]; ok {
		return fmt.Errorf("relation already declared: %s", name)
	}
	if _, ok := s.relations[inverse]; ok {
		return fmt.Errorf("relation already declared: %s", inverse)
	}
	s.relations[name] = &relationDescriptor{name: name, inverse: inverse}
	s.relations[inverse] = &relationDescriptor{name: inverse, inverse: name}
	return nil
}

func (s *Schema) class(label string) (*classDescriptor, error) {
	desc, ok := s.classes[label]
	if !ok {
		return nil, &noSuchClass{Label: label}
	}
	return desc, nil
}

func (s *Schema) attribute(name string) (*attributeDescriptor, error) {
	desc, ok := s.attributes[name]
	if !ok {
		return nil, &noSuchAttribute{Name: name}
	}
	return desc, nil
}

func (s *Schema) relation(name string) (*relationDescriptor, error) {
	desc, ok := s.relations[name]
	if !ok {
		return nil, &noSuchRelation{Name: name}
	}
	return desc, nil
}

func (s *Schema) HasClass(label string) bool {
	_, ok := s.classes[label]
	return ok
}

// Closure returns the label and all its supertypes.
func (s *Schema) Closure(label string) ([]string, error) {
	desc, err := s.class(label)
	if err != nil {
		return nil, err
	}
	return desc.closure, nil
}

// AttributeNames returns the declared attribute names, sorted.
func (s *Schema) AttributeNames() []string {
	names := make([]string, 0, len(s.attributes))
	for name := range s.attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ClassNames returns class labels in declaration order.
func (s *Schema) ClassNames() []string {
	names := make([]string, len(s.classOrder))
	copy(names, s.classOrder)
	return names
}
