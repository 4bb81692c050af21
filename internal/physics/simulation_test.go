package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/integrators"
)

func newTestSim(t *testing.T, p Params) *Simulation {
	t.Helper()
	s, err := New(p)
	if err != nil {
		t.Fatalf("new simulation: %v", err)
	}
	return s
}

func zeroGravity() Params {
	p := DefaultParams()
	p.Gravity = dynamo.Vec2{}
	return p
}

func TestNewRejectsInvalidParams(t *testing.T) {
	tests := []struct {
		name string
		mod  func(p *Params)
	}{
		{"negative half-life", func(p *Params) { p.HalfLife = -1 }},
		{"NaN half-life", func(p *Params) { p.HalfLife = math.NaN() }},
		{"negative grab limit", func(p *Params) { p.GrabDistanceLimit = -0.1 }},
		{"infinite gravity", func(p *Params) { p.Gravity = dynamo.V(0, math.Inf(-1)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mod(&p)
			if _, err := New(p); !errors.Is(err, dynamo.ErrParameterBounds) {
				t.Errorf("expected ErrParameterBounds, got %v", err)
			}
		})
	}
}

func TestAddBallValidation(t *testing.T) {
	s := newTestSim(t, DefaultParams())

	tests := []struct {
		name   string
		mass   float64
		anchor int
		want   error
	}{
		{"zero mass", 0, 0, dynamo.ErrInvalidMass},
		{"negative mass", -1, 0, dynamo.ErrInvalidMass},
		{"NaN mass", math.NaN(), 0, dynamo.ErrInvalidMass},
		{"infinite mass", math.Inf(1), 0, dynamo.ErrInvalidMass},
		{"negative anchor", 1, -1, dynamo.ErrParameterBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.AddBall(tt.mass, tt.anchor, dynamo.Vec2{}); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if len(s.Balls()) != 0 {
		t.Errorf("expected no balls after rejected adds, got %d", len(s.Balls()))
	}
}

func TestAddSpringValidation(t *testing.T) {
	s := newTestSim(t, DefaultParams())
	a, _ := s.AddBall(1, 1, dynamo.V(0, 0))
	b, _ := s.AddBall(1, 0, dynamo.V(1, 0))

	other := newTestSim(t, DefaultParams())
	foreign, _ := other.AddBall(1, 0, dynamo.V(2, 0))

	tests := []struct {
		name   string
		b1, b2 *Ball
		rest   float64
		k      float64
		want   error
	}{
		{"zero stiffness", a, b, 1, 0, dynamo.ErrInvalidStiffness},
		{"negative stiffness", a, b, 1, -5, dynamo.ErrInvalidStiffness},
		{"negative rest length", a, b, -1, 10, dynamo.ErrParameterBounds},
		{"same ball", a, a, 1, 10, dynamo.ErrDegenerateSpring},
		{"foreign ball", a, foreign, 1, 10, dynamo.ErrUnknownBall},
		{"nil ball", nil, b, 1, 10, dynamo.ErrUnknownBall},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.AddSpring(tt.b1, tt.b2, tt.rest, tt.k); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := s.AddSpring(a, b, 0, 10); err != nil {
		t.Errorf("zero rest length should be accepted, got %v", err)
	}
}

func TestSpringAtRestLength(t *testing.T) {
	s := newTestSim(t, zeroGravity())
	b1, _ := s.AddBall(0.01, 1, dynamo.V(0, 0))
	b2, _ := s.AddBall(0.01, 0, dynamo.V(0.04, 0))
	if _, err := s.AddSpring(b1, b2, 0.04, 500); err != nil {
		t.Fatalf("add spring: %v", err)
	}

	s.Update(1e-4)

	if b2.Force.X != 0 || b2.Force.Y != 0 {
		t.Errorf("expected zero force on ball2, got %v", b2.Force)
	}
	if !b2.Pos.ApproxEqual(dynamo.V(0.04, 0), 1e-12) {
		t.Errorf("expected ball2 to stay at (0.04, 0), got %v", b2.Pos)
	}
}

func TestSpringForceIsEqualAndOpposite(t *testing.T) {
	s := newTestSim(t, zeroGravity())
	b1, _ := s.AddBall(1, 0, dynamo.V(0.1, -0.3))
	b2, _ := s.AddBall(2, 0, dynamo.V(0.7, 0.5))
	sp, _ := s.AddSpring(b1, b2, 0.2, 37)

	s.AccumulateForces()

	if b1.Force != b2.Force.Neg() {
		t.Errorf("expected %v == -%v", b1.Force, b2.Force)
	}

	// stretched: ball2 is pulled back toward ball1
	f, ok := sp.Force()
	if !ok {
		t.Fatal("expected a force for separated endpoints")
	}
	if f.Dot(b2.Pos.Sub(b1.Pos)) >= 0 {
		t.Errorf("expected restoring force on ball2, got %v", f)
	}
	expected := 37 * (1.0 - 0.2)
	if math.Abs(f.Len()-expected) > 1e-9 {
		t.Errorf("expected force magnitude %f, got %f", expected, f.Len())
	}
}

func TestCompressedSpringPushesApart(t *testing.T) {
	s := newTestSim(t, zeroGravity())
	b1, _ := s.AddBall(1, 0, dynamo.V(0, 0))
	b2, _ := s.AddBall(1, 0, dynamo.V(0.5, 0))
	s.AddSpring(b1, b2, 1, 10)

	s.AccumulateForces()

	if b2.Force.X <= 0 || b1.Force.X >= 0 {
		t.Errorf("expected endpoints pushed apart, got %v and %v", b1.Force, b2.Force)
	}
}

func TestZeroLengthSpring(t *testing.T) {
	s := newTestSim(t, zeroGravity())
	b1, _ := s.AddBall(1, 0, dynamo.V(0.3, 0.3))
	b2, _ := s.AddBall(1, 0, dynamo.V(0.3, 0.3))
	sp, _ := s.AddSpring(b1, b2, 0.1, 100)

	if _, ok := sp.Force(); ok {
		t.Error("expected no force for coincident endpoints")
	}

	s.Update(1e-3)

	if !b1.Force.IsZero() || !b2.Force.IsZero() {
		t.Errorf("expected zero forces, got %v and %v", b1.Force, b2.Force)
	}
	if !b1.Pos.IsValid() || !b2.Pos.IsValid() {
		t.Error("positions became invalid")
	}
}

func TestAnchorImmobility(t *testing.T) {
	s := newTestSim(t, DefaultParams())
	anchor, _ := s.AddBall(0.01, 1, dynamo.V(0, 0))
	prev := anchor
	for i := 1; i <= 5; i++ {
		b, _ := s.AddBall(0.01, 0, dynamo.V(0.03*float64(i), -0.03*float64(i)))
		s.AddSpring(prev, b, 0.04, 500)
		prev = b
	}
	anchor.Vel = dynamo.V(0.5, 0)

	for i := 0; i < 2000; i++ {
		s.Update(1e-5)
	}

	if anchor.Pos != dynamo.V(0, 0) {
		t.Errorf("anchor moved to %v", anchor.Pos)
	}
	if anchor.Vel != dynamo.V(0.5, 0) {
		t.Errorf("anchor velocity changed to %v", anchor.Vel)
	}
	if prev.Pos == dynamo.V(0.15, -0.15) {
		t.Error("expected mobile tip to move")
	}
}

func TestFreeFall(t *testing.T) {
	p := DefaultParams()
	p.HalfLife = 0
	s := newTestSim(t, p)
	b, _ := s.AddBall(2, 0, dynamo.V(0, 1))

	dt := 1e-3
	for i := 0; i < 100; i++ {
		s.Update(dt)
	}

	tt := 0.1
	if math.Abs(b.Pos.Y-(1-0.5*DefaultGravity*tt*tt)) > 1e-9 {
		t.Errorf("expected y %.9f, got %.9f", 1-0.5*DefaultGravity*tt*tt, b.Pos.Y)
	}
	if math.Abs(s.Time()-tt) > 1e-12 {
		t.Errorf("expected time %f, got %f", tt, s.Time())
	}
	if s.Steps() != 100 {
		t.Errorf("expected 100 steps, got %d", s.Steps())
	}
}

func TestDampingHalfLife(t *testing.T) {
	p := zeroGravity()
	p.HalfLife = 0.2
	s := newTestSim(t, p)
	b, _ := s.AddBall(1, 0, dynamo.Vec2{})
	b.Vel = dynamo.V(1, 0)

	dt := 1e-3
	for i := 0; i < 200; i++ {
		s.Update(dt)
	}

	if math.Abs(b.Vel.X-0.5) > 1e-9 {
		t.Errorf("expected velocity 0.5 after one half-life, got %f", b.Vel.X)
	}
}

func TestRetain(t *testing.T) {
	p := zeroGravity()
	p.HalfLife = 0
	s := newTestSim(t, p)
	if s.Retain(0.1) != 1 {
		t.Errorf("expected no damping with zero half-life, got %f", s.Retain(0.1))
	}

	p.HalfLife = 0.1
	s = newTestSim(t, p)
	if math.Abs(s.Retain(0.1)-0.5) > 1e-12 {
		t.Errorf("expected 0.5, got %f", s.Retain(0.1))
	}
	// dt-invariance: two half steps retain the same as one full step
	if math.Abs(s.Retain(0.05)*s.Retain(0.05)-s.Retain(0.1)) > 1e-12 {
		t.Error("expected retained fraction to compose across sub-steps")
	}
}

func TestUpdateIgnoresNonPositiveDt(t *testing.T) {
	s := newTestSim(t, DefaultParams())
	b, _ := s.AddBall(1, 0, dynamo.V(0, 0))

	s.Update(0)
	s.Update(-1)

	if b.Pos != dynamo.V(0, 0) || s.Steps() != 0 {
		t.Errorf("expected no change, got pos %v steps %d", b.Pos, s.Steps())
	}
}

func TestEnergyBoundedWithoutDamping(t *testing.T) {
	p := zeroGravity()
	p.HalfLife = 0
	s := newTestSim(t, p)
	b1, _ := s.AddBall(0.01, 1, dynamo.V(0, 0))
	b2, _ := s.AddBall(0.01, 0, dynamo.V(0.05, 0.01))
	s.AddSpring(b1, b2, 0.04, 500)

	e0 := s.ComputeEnergy().Total()
	if e0 <= 0 {
		t.Fatalf("expected positive initial energy, got %f", e0)
	}

	maxDrift := 0.0
	for i := 0; i < 50000; i++ {
		s.Update(1e-6)
		if i%1000 == 0 {
			drift := math.Abs(s.ComputeEnergy().Total()-e0) / e0
			maxDrift = math.Max(maxDrift, drift)
		}
	}

	if maxDrift > 0.01 {
		t.Errorf("energy drift too large: %.6f", maxDrift)
	}
}

func TestComputeEnergy(t *testing.T) {
	s := newTestSim(t, DefaultParams())
	b1, _ := s.AddBall(2, 1, dynamo.V(0, 1))
	b2, _ := s.AddBall(1, 0, dynamo.V(0, -0.5))
	b2.Vel = dynamo.V(3, 4)
	s.AddSpring(b1, b2, 1, 10)

	e := s.ComputeEnergy()

	expectedKE := 0.5 * 1 * 25
	if math.Abs(e.Kinetic-expectedKE) > 1e-12 {
		t.Errorf("expected kinetic %f, got %f", expectedKE, e.Kinetic)
	}
	// gravity: 2*9.8*1 + 1*9.8*(-0.5); spring stretched by 0.5
	expectedPE := 2*DefaultGravity*1 - 1*DefaultGravity*0.5 + 0.5*10*0.25
	if math.Abs(e.Potential-expectedPE) > 1e-12 {
		t.Errorf("expected potential %f, got %f", expectedPE, e.Potential)
	}
	if math.Abs(e.Total()-(expectedKE+expectedPE)) > 1e-12 {
		t.Errorf("expected total %f, got %f", expectedKE+expectedPE, e.Total())
	}

	before := *b2
	s.ComputeEnergy()
	if b2.Pos != before.Pos || b2.Vel != before.Vel || b2.Force != before.Force {
		t.Error("ComputeEnergy mutated ball state")
	}
}

func TestIntegratorSelection(t *testing.T) {
	s := newTestSim(t, DefaultParams())
	if s.Integrator().Name() != "midpoint" {
		t.Errorf("expected midpoint default, got %s", s.Integrator().Name())
	}

	p := DefaultParams()
	p.Integrator = integrators.NewEuler()
	s = newTestSim(t, p)
	if s.Integrator().Name() != "euler" {
		t.Errorf("expected euler, got %s", s.Integrator().Name())
	}
}

func TestBallOrder(t *testing.T) {
	s := newTestSim(t, DefaultParams())
	for i := 0; i < 4; i++ {
		s.AddBall(1, 0, dynamo.V(float64(i), 0))
	}

	for i, b := range s.Balls() {
		if b.Index() != i {
			t.Errorf("expected index %d, got %d", i, b.Index())
		}
		got, ok := s.BallByIndex(i)
		if !ok || got != b {
			t.Errorf("BallByIndex(%d) returned wrong ball", i)
		}
	}
	if _, ok := s.BallByIndex(4); ok {
		t.Error("expected out of range lookup to fail")
	}
}
