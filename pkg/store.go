package hornql

import (
	"github.com/hornql/hornql/pkg/lang"
)

// Store is the fact store: a typed graph of entities, their type
// labels, scalar attributes, and relations. Facts only accumulate;
// there is no deletion path. Closing the program discards everything.
//
// The store itself is not safe for concurrent use. Callers that share
// one across goroutines (the server does) must hold exclusive access
// for a whole statement, including an entire rule-engine fixpoint run.
type Store struct {
	schema *Schema

	entities    map[string]*Entity
	entityOrder []string
}

// Entity is one identified individual plus everything asserted about
// it. Type labels only grow; attributes are single-valued with
// last-write-wins; relation targets keep insertion order so match
// results are deterministic for a given load order.
type Entity struct {
	id    string
	types map[string]bool
	// typeOrder mirrors types for deterministic listing.
	typeOrder []string
	attrs     map[string]lang.Value
	attrOrder []string
	out       map[string][]string
}

func NewStore(schema *Schema) *Store {
	return &Store{
		schema:   schema,
		entities: map[string]*Entity{},
	}
}

func (db *Store) Schema() *Schema {
	return db.schema
}

func (db *Store) CreateEntity(id string) (*Entity, error) {
	if _, ok := db.entities[id]; ok {
		return nil, &duplicateEntity{ID: id}
	}
	entity := &Entity{
		id:    id,
		types: map[string]bool{},
		attrs: map[string]lang.Value{},
		out:   map[string][]string{},
	}
	db.entities[id] = entity
	db.entityOrder = append(db.entityOrder, id)
	return entity, nil
}

// SetAttribute writes a scalar attribute, overwriting any previous
// value. It reports whether the stored value changed, which the rule
// engine uses to detect fixpoint progress on derived-attribute heads.
func (db *Store) SetAttribute(id string, name string, value lang.Value) (bool, error) {
	entity, ok := db.entities[id]
	if !ok {
		return false, &unknownEntity{ID: id}
	}
	desc, err := db.schema.attribute(name)
	if err != nil {
		return false, err
	}
	if !desc.typ.Accepts(value) {
		return false, &typeMismatch{
			Attribute: name,
			Wanted:    desc.typ.String(),
			Got:       value.GetType().String(),
		}
	}
	old, had := entity.attrs[name]
	if had && lang.Equal(old, value) {
		return false, nil
	}
	if !had {
		entity.attrOrder = append(entity.attrOrder, name)
	}
	entity.attrs[name] = value
	return true, nil
}

// AddRelation links subject to object and atomically asserts the
// registered inverse. Re-adding an existing link is a no-op.
func (db *Store) AddRelation(subject string, name string, object string) error {
	desc, err := db.schema.relation(name)
	if err != nil {
		return err
	}
	subjEntity, ok := db.entities[subject]
	if !ok {
		return &unknownEntity{ID: subject}
	}
	objEntity, ok := db.entities[object]
	if !ok {
		return &unknownEntity{ID: object}
	}
	subjEntity.addLink(name, object)
	objEntity.addLink(desc.inverse, subject)
	return nil
}

// AddType asserts a type label and, per the schema's supertype
// closure, every label it implies. Reports whether any label was new.
func (db *Store) AddType(id string, label string) (bool, error) {
	entity, ok := db.entities[id]
	if !ok {
		return false, &unknownEntity{ID: id}
	}
	closure, err := db.schema.Closure(label)
	if err != nil {
		return false, err
	}
	added := false
	for _, l := range closure {
		if !entity.types[l] {
			entity.types[l] = true
			entity.typeOrder = append(entity.typeOrder, l)
			added = true
		}
	}
	return added, nil
}

func (db *Store) HasType(id string, label string) bool {
	entity, ok := db.entities[id]
	if !ok {
		return false
	}
	return entity.types[label]
}

// Attribute returns an entity's attribute value, if set.
func (db *Store) Attribute(id string, name string) (lang.Value, bool) {
	entity, ok := db.entities[id]
	if !ok {
		return nil, false
	}
	val, ok := entity.attrs[name]
	return val, ok
}

// Related returns relation targets in insertion order.
func (db *Store) Related(id string, relation string) []string {
	entity, ok := db.entities[id]
	if !ok {
		return nil
	}
	return entity.out[relation]
}

// EntityIDs returns all entity ids in creation order.
func (db *Store) EntityIDs() []string {
	ids := make([]string, len(db.entityOrder))
	copy(ids, db.entityOrder)
	return ids
}

// Types returns an entity's labels in assertion order.
func (db *Store) Types(id string) []string {
	entity, ok := db.entities[id]
	if !ok {
		return nil
	}
	labels := make([]string, len(entity.typeOrder))
	copy(labels, entity.typeOrder)
	return labels
}

func (db *Store) entity(id string) (*Entity, bool) {
	entity, ok := db.entities[id]
	return entity, ok
}

// Counts for the metrics gauges.

func (db *Store) NumEntities() int {
	return len(db.entities)
}

func (db *Store) NumFacts() int {
	count := 0
	for _, entity := range db.entities {
		count += len(entity.typeOrder) + len(entity.attrs)
		for _, targets := range entity.out {
			count += len(targets)
		}
	}
	return count
}

func (e *Entity) ID() string {
	return e.id
}

func (e *Entity) addLink(relation string, target string) {
	for _, existing := range e.out[relation] {
		if existing == target {
			return
		}
	}
	e.out[relation] = append(e.out[relation], target)
}
