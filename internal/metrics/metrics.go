package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"featgraph/internal/graph"
)

// Registry holds every featgraph collector. It is separate from the
// default registry so a run can dump exactly its own series.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// UnitsTotal counts units handed to the builder.
	UnitsTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: "featgraph",
		Name:      "units_total",
		Help:      "Units processed by the feature graph builder",
	})

	// UnitsFailed counts units whose build or output failed.
	// Labels: kind (structural_violation, unsupported_shape, host_io, front_end)
	UnitsFailed = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "featgraph",
		Name:      "units_failed_total",
		Help:      "Units that failed, by error kind",
	}, []string{"kind"})

	// PassDuration measures each builder pass.
	// Labels: pass
	PassDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "featgraph",
		Name:      "pass_duration_seconds",
		Help:      "Duration of each graph construction pass",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
	}, []string{"pass"})

	// GraphNodes records the node count of each finished graph.
	GraphNodes = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: "featgraph",
		Name:      "graph_nodes",
		Help:      "Nodes per finished feature graph",
		Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
	})

	// GraphEdges counts emitted edges by kind.
	// Labels: kind
	GraphEdges = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "featgraph",
		Name:      "graph_edges_total",
		Help:      "Edges emitted into finished feature graphs, by kind",
	}, []string{"kind"})
)

// ObserveGraph records the size of a finished graph.
func ObserveGraph(g *graph.Graph) {
	GraphNodes.Observe(float64(g.NodeCount()))
	for kind, n := range g.EdgeKindCounts() {
		GraphEdges.WithLabelValues(kind.String()).Add(float64(n))
	}
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
