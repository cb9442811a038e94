package solver

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/gekko3d/gekko-physics/geom"
)

// testBody is a minimal RigidBody double tracking linear/angular velocity
// mutations from applied impulses directly, the way a real body would.
type testBody struct {
	mass     float32
	position geom.Vector3
	rotation geom.Quaternion
	linVel   geom.Vector3
	angVel   geom.Vector3
	inertia  geom.Vector3
	static   bool
}

func newDynamicBody(mass float32, position, velocity geom.Vector3) *testBody {
	return &testBody{
		mass:     mass,
		position: position,
		rotation: mgl32.QuatIdent(),
		linVel:   velocity,
		inertia:  geom.Vector3{1, 1, 1},
	}
}

func (b *testBody) Mass() float32 { return b.mass }
func (b *testBody) InverseMass() float32 {
	if b.static || b.mass < geom.KindaSmall {
		return 0
	}
	return 1 / b.mass
}
func (b *testBody) Position() geom.Vector3        { return b.position }
func (b *testBody) Rotation() geom.Quaternion     { return b.rotation }
func (b *testBody) LinearVelocity() geom.Vector3  { return b.linVel }
func (b *testBody) AngularVelocity() geom.Vector3 { return b.angVel }
func (b *testBody) LocalInertia() geom.Vector3    { return b.inertia }
func (b *testBody) IsStatic() bool                { return b.static }
func (b *testBody) ApplyLinearImpulse(impulse geom.Vector3) {
	b.linVel = b.linVel.Add(impulse.Mul(b.InverseMass()))
}
func (b *testBody) ApplyAngularImpulse(impulse geom.Vector3) {
	b.angVel = b.angVel.Add(impulse.Mul(b.InverseMass()))
}

type mapResolver map[Handle]RigidBody

func (m mapResolver) Resolve(h Handle) (RigidBody, bool) {
	b, ok := m[h]
	return b, ok
}

// S6: two unit-mass dynamic spheres closing on the x-axis must have their
// relative normal velocity vanish after one solved iteration.
func TestVelocityConstraint_S6_ClosingVelocityVanishes(t *testing.T) {
	bodyA := newDynamicBody(1, geom.Vector3{-1, 0, 0}, geom.Vector3{1, 0, 0})
	bodyB := newDynamicBody(1, geom.Vector3{1, 0, 0}, geom.Vector3{-1, 0, 0})

	resolver := mapResolver{1: bodyA, 2: bodyB}

	s := New()
	c := NewVelocityConstraint(geom.Vector3{1, 0, 0}, 0, 0)
	c.SetContactData(geom.Vector3{0, 0, 0}, geom.Vector3{1, 0, 0}, 0)
	s.Submit(1, 2, "contact", c)

	s.SolveAll(resolver, 1)

	rel := relativeVelocityAt(bodyA, bodyB, geom.Vector3{0, 0, 0})
	closing := rel.Dot(geom.Vector3{1, 0, 0})
	assert.Less(t, absF(closing), float32(1e-3))
}

// Property 7: a system at rest (zero relative velocity, zero penetration)
// must not change accumulated lambda across solve calls.
func TestSolver_Property_WarmStartAtRest(t *testing.T) {
	bodyA := newDynamicBody(1, geom.Vector3{-1, 0, 0}, geom.Vector3{0, 0, 0})
	bodyB := newDynamicBody(1, geom.Vector3{1, 0, 0}, geom.Vector3{0, 0, 0})
	resolver := mapResolver{1: bodyA, 2: bodyB}

	s := New()
	c := NewVelocityConstraint(geom.Vector3{1, 0, 0}, 0, 0)
	c.SetContactData(geom.Vector3{0, 0, 0}, geom.Vector3{1, 0, 0}, 0)
	s.Submit(1, 2, "contact", c)

	s.SolveAll(resolver, 1)
	lambdaAfterFirst := s.groups[groupKey{pair: CanonicalPair(1, 2), category: "contact"}].Lambda[0]

	s.SolveAll(resolver, 1)
	lambdaAfterSecond := s.groups[groupKey{pair: CanonicalPair(1, 2), category: "contact"}].Lambda[0]

	assert.Equal(t, lambdaAfterFirst, lambdaAfterSecond)
	assert.Equal(t, float32(0), lambdaAfterFirst)
}

// Property 8: accumulated lambda is never below MinLambda, across several
// iterations where the unclamped solution would go negative (a separating
// contact).
func TestSolver_Property_Clamping(t *testing.T) {
	bodyA := newDynamicBody(1, geom.Vector3{-1, 0, 0}, geom.Vector3{-1, 0, 0})
	bodyB := newDynamicBody(1, geom.Vector3{1, 0, 0}, geom.Vector3{1, 0, 0})
	resolver := mapResolver{1: bodyA, 2: bodyB}

	s := New()
	c := NewVelocityConstraint(geom.Vector3{1, 0, 0}, 0, 0)
	c.SetContactData(geom.Vector3{0, 0, 0}, geom.Vector3{1, 0, 0}, 0)
	s.Submit(1, 2, "contact", c)

	s.SolveAll(resolver, 8)

	lambda := s.groups[groupKey{pair: CanonicalPair(1, 2), category: "contact"}].Lambda[0]
	assert.GreaterOrEqual(t, lambda, float32(0))
}

// Property 9: submit(A, B) and submit(B, A) target the same group.
func TestSolver_Property_Canonicalization(t *testing.T) {
	s := New()
	c1 := NewVelocityConstraint(geom.Vector3{1, 0, 0}, 0, 0)
	c2 := NewVelocityConstraint(geom.Vector3{1, 0, 0}, 0, 0)

	s.Submit(1, 2, "contact", c1)
	s.Submit(2, 1, "contact", c2)

	assert.Equal(t, 1, s.GroupCount())
	g := s.groups[groupKey{pair: CanonicalPair(1, 2), category: "contact"}]
	assert.Len(t, g.Constraints, 2)
}

func TestSolver_Unsubmit(t *testing.T) {
	s := New()
	c := NewVelocityConstraint(geom.Vector3{1, 0, 0}, 0, 0)
	s.Submit(1, 2, "contact", c)
	assert.Equal(t, 1, s.GroupCount())

	s.Unsubmit(2, 1, "contact")
	assert.Equal(t, 0, s.GroupCount())
}

// A stale body reference (unresolved handle) is treated as static: its
// counterpart still receives an impulse, but no panic and no update to the
// missing side.
func TestSolver_StaleBodyReferenceTreatedAsStatic(t *testing.T) {
	bodyB := newDynamicBody(1, geom.Vector3{1, 0, 0}, geom.Vector3{-1, 0, 0})
	resolver := mapResolver{2: bodyB}

	s := New()
	c := NewVelocityConstraint(geom.Vector3{1, 0, 0}, 0, 0)
	c.SetContactData(geom.Vector3{0, 0, 0}, geom.Vector3{1, 0, 0}, 0)
	s.Submit(1, 2, "contact", c)

	assert.NotPanics(t, func() { s.SolveAll(resolver, 4) })
}

func absF(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
