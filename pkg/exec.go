package hornql

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// executeStatement runs one parsed statement under the store lock and
// records latency. Every mutation path, and a whole infer run, happens
// while the lock is held.
func (db *Database) executeStatement(statement *Statement, channel *channel) (*stmtResult, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	start := time.Now()
	result, err := db.apply(statement)
	elapsed := float64(time.Since(start).Nanoseconds())

	if db.metrics != nil {
		switch {
		case statement.Match != nil:
			db.metrics.matchLatency.Observe(elapsed)
		case statement.Infer != nil:
			db.metrics.inferLatency.Observe(elapsed)
		default:
			db.metrics.writeLatency.Observe(elapsed)
		}
		if err == nil && result.stats != nil {
			db.metrics.derivedFacts.Add(float64(result.stats.DerivedTypes + result.stats.DerivedAttrs))
			db.metrics.fixpointPasses.Add(float64(result.stats.Passes))
		}
	}
	return result, err
}

// apply dispatches a statement against the store. Callers hold db.mu.
func (db *Database) apply(statement *Statement) (*stmtResult, error) {
	switch {
	case statement.Entity != nil:
		stmt := statement.Entity
		if _, err := db.store.CreateEntity(stmt.ID); err != nil {
			return nil, err
		}
		return &stmtResult{ack: fmt.Sprintf("created %s", stmt.ID)}, nil

	case statement.Type != nil:
		stmt := statement.Type
		added, err := db.store.AddType(stmt.ID, stmt.Label)
		if err != nil {
			return nil, err
		}
		if !added {
			return &stmtResult{ack: fmt.Sprintf("%s already %s", stmt.ID, stmt.Label)}, nil
		}
		return &stmtResult{ack: fmt.Sprintf("%s is %s", stmt.ID, stmt.Label)}, nil

	case statement.Set != nil:
		stmt := statement.Set
		desc, err := db.store.Schema().attribute(stmt.Attribute)
		if err != nil {
			return nil, err
		}
		value, err := stmt.Value.value(desc.typ)
		if err != nil {
			return nil, errors.Wrapf(err, "set %s.%s", stmt.ID, stmt.Attribute)
		}
		if _, err := db.store.SetAttribute(stmt.ID, stmt.Attribute, value); err != nil {
			return nil, err
		}
		return &stmtResult{ack: fmt.Sprintf("set %s.%s", stmt.ID, stmt.Attribute)}, nil

	case statement.Link != nil:
		stmt := statement.Link
		if err := db.store.AddRelation(stmt.Subject, stmt.Relation, stmt.Object); err != nil {
			return nil, err
		}
		return &stmtResult{ack: fmt.Sprintf("linked %s %s %s", stmt.Subject, stmt.Relation, stmt.Object)}, nil

	case statement.Match != nil:
		pattern, err := compileAtoms(db.store.Schema(), statement.Match.Atoms)
		if err != nil {
			return nil, &validationError{error: err}
		}
		rows, err := db.store.Match(pattern, db.asOf)
		if err != nil {
			return nil, err
		}
		bindings, err := rows.Drain()
		if err != nil {
			return nil, errors.Wrap(err, "evaluating match")
		}
		if bindings == nil {
			bindings = []Binding{}
		}
		return &stmtResult{bindings: bindings}, nil

	case statement.Infer != nil:
		stats, err := db.engine.Run()
		if err != nil {
			return nil, err
		}
		ack := fmt.Sprintf("converged after %d passes; derived %d types, %d attributes",
			stats.Passes, stats.DerivedTypes, stats.DerivedAttrs)
		return &stmtResult{ack: ack, stats: stats}, nil
	}
	return nil, errors.New("unknown statement type")
}
