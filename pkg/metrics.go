package hornql

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	registry *prometheus.Registry

	// Counters
	nextConnectionID prometheus.CounterFunc
	derivedFacts     prometheus.Counter
	fixpointPasses   prometheus.Counter

	// Gauges
	openConnections prometheus.GaugeFunc
	openStatements  prometheus.GaugeFunc
	entities        prometheus.GaugeFunc
	facts           prometheus.GaugeFunc

	// Latency histograms
	matchLatency prometheus.Summary
	writeLatency prometheus.Summary
	inferLatency prometheus.Summary
}

func newMetrics(db *Database) *metrics {
	m := &metrics{
		nextConnectionID: prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Name: "next_connection_id",
				Help: "number of connections to this server over its lifetime",
			},
			func() float64 {
				return float64(db.nextConnectionID)
			},
		),
		derivedFacts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "derived_facts",
				Help: "facts asserted by the rule engine over the server's lifetime",
			},
		),
		fixpointPasses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "fixpoint_passes",
				Help: "rule engine passes run over the server's lifetime",
			},
		),
		openConnections: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "open_connections",
				Help: "number of connections currently open",
			},
			func() float64 {
				return float64(len(db.connections))
			},
		),
		openStatements: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "open_statements",
				Help: "number of statements currently executing across all connections",
			},
			func() float64 {
				// TODO: synchronize access to db.connections
				count := 0
				for _, conn := range db.connections {
					count += len(conn.channels)
				}
				return float64(count)
			},
		),
		entities: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "entities",
				Help: "number of entities in the store",
			},
			func() float64 {
				return float64(db.store.NumEntities())
			},
		),
		facts: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "facts",
				Help: "number of facts (type labels, attributes, relation links) in the store",
			},
			func() float64 {
				return float64(db.store.NumFacts())
			},
		),
		matchLatency: prometheus.NewSummary(
			prometheus.SummaryOpts{
				Name: "match_latency_ns",
				Help: "latency to evaluate a match statement",
			},
		),
		writeLatency: prometheus.NewSummary(
			prometheus.SummaryOpts{
				Name: "write_latency_ns",
				Help: "latency to execute an entity, type, set, or link statement",
			},
		),
		inferLatency: prometheus.NewSummary(
			prometheus.SummaryOpts{
				Name: "infer_latency_ns",
				Help: "latency to run the rule engine to fixpoint",
			},
		),
	}
	m.registry = prometheus.NewPedanticRegistry()
	reg := m.registry

	reg.MustRegister(prometheus.NewProcessCollector(os.Getpid(), ""))
	reg.MustRegister(prometheus.NewGoCollector())

	reg.MustRegister(m.nextConnectionID)
	reg.MustRegister(m.derivedFacts)
	reg.MustRegister(m.fixpointPasses)
	reg.MustRegister(m.openConnections)
	reg.MustRegister(m.openStatements)
	reg.MustRegister(m.entities)
	reg.MustRegister(m.facts)
	reg.MustRegister(m.matchLatency)
	reg.MustRegister(m.writeLatency)
	reg.MustRegister(m.inferLatency)
	return m
}
