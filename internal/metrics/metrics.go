// Package metrics exposes the state of a running simulation as Prometheus
// gauges and counters.
package metrics

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/steveyegge/flaxsim/internal/report"
	"github.com/steveyegge/flaxsim/internal/simulation"
	"github.com/steveyegge/flaxsim/internal/types"
)

const namespace = "flaxsim"

// ArtifactName is the published name of the rendered metrics
const ArtifactName = "metrics.prom"

// Collector is a simulation sink that mirrors every snapshot into its own
// Prometheus registry
type Collector struct {
	registry *prometheus.Registry
	textfile string

	height       *prometheus.GaugeVec
	rootLength   *prometheus.GaugeVec
	flowers      *prometheus.GaugeVec
	appearance   *prometheus.GaugeVec
	stress       *prometheus.GaugeVec
	growthFactor *prometheus.GaugeVec
	environment  *prometheus.GaugeVec
	phase        *prometheus.GaugeVec
	day          prometheus.Gauge
	days         prometheus.Counter
	faults       *prometheus.CounterVec
}

var (
	_ simulation.Sink     = (*Collector)(nil)
	_ simulation.Finisher = (*Collector)(nil)
)

// NewCollector registers the flaxsim metrics on a fresh registry. When
// textfile is not empty, Finish writes the final values there.
func NewCollector(textfile string) *Collector {
	plantGauge := func(name, help string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "plant",
			Name:      name,
			Help:      help,
		}, []string{"plant"})
	}

	c := &Collector{
		registry:     prometheus.NewRegistry(),
		textfile:     textfile,
		height:       plantGauge("height_cm", "Plant height in centimetres."),
		rootLength:   plantGauge("root_length_cm", "Plant root length in centimetres."),
		flowers:      plantGauge("flowers", "Number of flowers on the plant."),
		appearance:   plantGauge("appearance", "Appearance rating from 0 to 10."),
		stress:       plantGauge("stress_level", "Stress of the last simulated day, 0 to 1."),
		growthFactor: plantGauge("growth_factor", "Growth factor applied on the last simulated day."),
		environment: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "environment_value",
			Help:      "Realized value of an environmental parameter on the last simulated day.",
		}, []string{"parameter"}),
		phase: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "phase",
			Help:      "1 for the current growth phase, 0 otherwise.",
		}, []string{"phase"}),
		day: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "day",
			Help:      "Last simulated day.",
		}),
		days: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "days_total",
			Help:      "Simulated days.",
		}),
		faults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "environment_faults_total",
			Help:      "Days on which a parameter was pushed outside its optimal range.",
		}, []string{"parameter", "direction"}),
	}

	c.registry.MustRegister(
		c.height, c.rootLength, c.flowers, c.appearance, c.stress, c.growthFactor,
		c.environment, c.phase, c.day, c.days, c.faults,
	)
	return c
}

// Registry returns the registry holding the collector's metrics
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// OnSnapshot updates every metric from snap
func (c *Collector) OnSnapshot(_ context.Context, snap types.DailySnapshot) error {
	for _, p := range snap.Plants {
		id := strconv.Itoa(p.PlantID)
		c.height.WithLabelValues(id).Set(p.State.Height)
		c.rootLength.WithLabelValues(id).Set(p.State.RootLength)
		c.flowers.WithLabelValues(id).Set(float64(p.State.Flowers))
		c.appearance.WithLabelValues(id).Set(p.State.Appearance)
		c.stress.WithLabelValues(id).Set(p.State.StressLevel)
		c.growthFactor.WithLabelValues(id).Set(p.GrowthFactor)
	}

	for _, param := range types.AllParams() {
		c.environment.WithLabelValues(string(param)).Set(snap.Reading.Value(param))
	}
	for _, phase := range types.AllPhases() {
		v := 0.0
		if phase == snap.Phase {
			v = 1
		}
		c.phase.WithLabelValues(string(phase)).Set(v)
	}

	c.day.Set(float64(snap.Day))
	c.days.Inc()
	if snap.Error.Active {
		c.faults.WithLabelValues(string(snap.Error.Param), string(snap.Error.Direction)).Inc()
	}
	return nil
}

// Finish writes the textfile, if one was configured
func (c *Collector) Finish(context.Context, simulation.RunInfo) error {
	if c.textfile == "" {
		return nil
	}
	return c.WriteTextfile(c.textfile)
}

// WriteTextfile writes the current values in the node_exporter textfile format
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

// Render returns the current values in the Prometheus text exposition format
func (c *Collector) Render() ([]byte, error) {
	families, err := c.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("failed to gather metrics: %w", err)
	}
	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", mf.GetName(), err)
		}
	}
	return buf.Bytes(), nil
}

// Artifact exposes Render to a report publisher
func (c *Collector) Artifact() report.Artifact {
	return report.Artifact{Name: ArtifactName, Render: c.Render}
}
