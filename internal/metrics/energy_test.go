package metrics

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/sim"
)

func freeBall(t *testing.T, vel dynamo.Vec2) (*physics.Simulation, *physics.Ball) {
	t.Helper()
	s, err := physics.New(physics.DefaultParams())
	if err != nil {
		t.Fatalf("new simulation: %v", err)
	}
	b, err := s.AddBall(1, 0, dynamo.V(0, 0))
	if err != nil {
		t.Fatalf("add ball: %v", err)
	}
	b.Vel = vel
	return s, b
}

func TestEnergyMean(t *testing.T) {
	s, b := freeBall(t, dynamo.V(3, 4))
	m := NewEnergy()

	m.Observe(s, 0)
	if math.Abs(m.Value()-12.5) > 1e-12 {
		t.Errorf("expected energy 12.5, got %f", m.Value())
	}

	b.Vel = dynamo.Vec2{}
	m.Observe(s, 0)
	if math.Abs(m.Value()-6.25) > 1e-12 {
		t.Errorf("expected mean energy 6.25, got %f", m.Value())
	}
	if mean := m.Mean(); mean.Potential != 0 || math.Abs(mean.Kinetic-6.25) > 1e-12 {
		t.Errorf("expected mean kinetic 6.25 and no potential, got %+v", mean)
	}
}

func TestEnergyReset(t *testing.T) {
	s, _ := freeBall(t, dynamo.V(1, 1))
	m := NewEnergy()

	m.Observe(s, 0)
	if m.Value() == 0 {
		t.Error("expected non-zero energy")
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyDrift(t *testing.T) {
	s, b := freeBall(t, dynamo.V(3, 4))
	m := NewEnergyDrift()

	m.Observe(s, 0)
	if m.Value() != 0 {
		t.Errorf("expected zero drift after one sample, got %f", m.Value())
	}

	b.Vel = dynamo.V(0, 0)
	m.Observe(s, 0.1)
	b.Vel = dynamo.V(3, 4)
	m.Observe(s, 0.2)

	if math.Abs(m.Value()-1) > 1e-12 {
		t.Errorf("expected max drift 1, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero drift after reset")
	}
}

func TestMaxStrain(t *testing.T) {
	s, err := physics.New(physics.DefaultParams())
	if err != nil {
		t.Fatalf("new simulation: %v", err)
	}
	a, _ := s.AddBall(1, 1, dynamo.V(0, 0))
	b, _ := s.AddBall(1, 0, dynamo.V(1.5, 0))
	if _, err := s.AddSpring(a, b, 1, 10); err != nil {
		t.Fatalf("add spring: %v", err)
	}
	m := NewMaxStrain()

	m.Observe(s, 0)
	if math.Abs(m.Value()-0.5) > 1e-12 {
		t.Errorf("expected strain 0.5, got %f", m.Value())
	}

	b.Pos = dynamo.V(0.25, 0)
	m.Observe(s, 0)
	if math.Abs(m.Value()-0.75) > 1e-12 {
		t.Errorf("expected compression strain 0.75, got %f", m.Value())
	}
}

func TestStability(t *testing.T) {
	s, b := freeBall(t, dynamo.V(3, 4))
	m := NewStability(1)

	if m.Value() != 1 {
		t.Errorf("expected 1 before any sample, got %f", m.Value())
	}

	m.Observe(s, 0)
	b.Vel = dynamo.V(0.5, 0)
	m.Observe(s, 0)

	if m.Value() != 0.5 {
		t.Errorf("expected stability 0.5, got %f", m.Value())
	}
	if m.FirstViolation() != 0 {
		t.Errorf("expected first violation at t=0, got %f", m.FirstViolation())
	}

	m.Reset()
	if !math.IsNaN(m.FirstViolation()) || m.Value() != 1 {
		t.Errorf("expected clean state after reset, got first=%f value=%f", m.FirstViolation(), m.Value())
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range Names() {
		m, err := Get(name)
		if err != nil {
			t.Fatalf("get %s: %v", name, err)
		}
		if m.Name() != name {
			t.Errorf("expected metric named %s, got %s", name, m.Name())
		}
	}
	if _, err := Get("nope"); err == nil {
		t.Error("expected error for unknown metric")
	}
	if len(All()) != len(Names()) {
		t.Errorf("expected %d metrics, got %d", len(Names()), len(All()))
	}
}

func TestMetricsThroughDriver(t *testing.T) {
	s, err := physics.New(physics.DefaultParams())
	if err != nil {
		t.Fatalf("new simulation: %v", err)
	}
	a, _ := s.AddBall(0.1, 1, dynamo.V(0, 0))
	b, _ := s.AddBall(0.1, 0, dynamo.V(0, -0.04))
	if _, err := s.AddSpring(a, b, 0.04, 500); err != nil {
		t.Fatalf("add spring: %v", err)
	}
	d, err := sim.New(s, sim.Config{Substeps: 50, Dt: 4e-5})
	if err != nil {
		t.Fatalf("new driver: %v", err)
	}
	for _, m := range All() {
		d.AddMetric(m)
	}

	result, err := d.Run(context.Background(), 20, nil)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Metrics["stability"] != 1 {
		t.Errorf("expected a settled pendulum to be stable, got %f", result.Metrics["stability"])
	}
	if strain := result.Metrics["max_strain"]; strain <= 0 || strain > 0.2 {
		t.Errorf("expected small positive strain from gravity sag, got %f", strain)
	}
}
