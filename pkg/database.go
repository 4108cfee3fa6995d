package hornql

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Database is the served assembly: the hospital store, the builtin
// rule engine, and the websocket connections speaking the statement
// language at it.
//
// mu serializes statements. It is held for a whole statement,
// including an entire infer fixpoint run, so readers never observe a
// half-applied derivation pass.
type Database struct {
	cfg    Config
	store  *Store
	engine *Engine
	asOf   time.Time

	mu               sync.Mutex
	connections      map[connectionID]*connection
	nextConnectionID int

	ctx     context.Context
	metrics *metrics
}

func NewDatabase(cfg Config) (*Database, error) {
	store := NewStore(HospitalSchema())
	engine, err := NewHospitalEngine(store, cfg)
	if err != nil {
		return nil, err
	}
	// The date is optional for stores whose rules and queries never
	// touch the date builtins; Match rejects date patterns itself when
	// it is missing.
	asOf, _ := cfg.Date()

	db := &Database{
		cfg:         cfg,
		store:       store,
		engine:      engine,
		asOf:        asOf,
		connections: make(map[connectionID]*connection),
		ctx:         context.Background(),
	}
	db.metrics = newMetrics(db)
	return db, nil
}

func (db *Database) Store() *Store {
	return db.store
}

// addConnection attaches a websocket and serves statements on it
// until it closes.
func (db *Database) addConnection(wsConn *websocket.Conn) {
	db.mu.Lock()
	conn := newConnection(wsConn, db, db.nextConnectionID)
	db.nextConnectionID++
	db.connections[conn.id] = conn
	db.mu.Unlock()
	conn.handleStatements()
}

func (db *Database) removeConn(conn *connection) {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.connections, conn.id)
}

func (db *Database) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, conn := range db.connections {
		conn.clientConn.Close()
	}
	db.connections = make(map[connectionID]*connection)
	return nil
}
