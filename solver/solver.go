// Package solver implements a sequential-impulse velocity-constraint
// solver with warm-starting: constraints are grouped by canonicalized body
// pair and category, and the accumulated lambda for each constraint slot
// persists across solve calls so a resting contact converges in a single
// iteration.
package solver

import "github.com/gekko3d/gekko-physics/geom"

// Handle identifies a rigid body to the solver. The collision manager
// assigns handles as a monotonic sequence, so canonicalizing a pair by
// handle order is stable even though Go gives no guarantee about pointer
// ordering across a moving collector.
type Handle uint64

// RigidBody is the body state the solver reads and mutates. Implementations
// are expected to apply impulses by scaling them with inverse mass / world
// inverse inertia internally, the same contract a caller gets from
// apply_linear_impulse / apply_angular_impulse in the wider engine.
type RigidBody interface {
	Mass() float32
	InverseMass() float32
	Position() geom.Vector3
	Rotation() geom.Quaternion
	LinearVelocity() geom.Vector3
	AngularVelocity() geom.Vector3
	// LocalInertia returns the diagonal of the body's local inertia tensor.
	LocalInertia() geom.Vector3
	IsStatic() bool
	ApplyLinearImpulse(impulse geom.Vector3)
	ApplyAngularImpulse(impulse geom.Vector3)
}

// Resolver maps a solver Handle back to a live RigidBody. Resolve returns
// false for an expired handle; the solver treats that side of the pair as a
// static, infinite-mass body for that solve (StaleBodyReference).
type Resolver interface {
	Resolve(h Handle) (RigidBody, bool)
}

// Constraint is a single velocity constraint within a group. Solve consumes
// the current accumulated lambda and returns the updated value plus the
// impulse to apply along the constraint's own bookkeeping (the solver
// applies that impulse to both bodies using the constraint's contact
// point).
type Constraint interface {
	Solve(bodyA, bodyB RigidBody, lambda float32) (newLambda float32, impulse geom.Vector3)
	ContactPoint() geom.Vector3
}

// Pair is a canonicalized, order-independent body pair: submitting (A, B)
// and (B, A) under the same category always resolve to the same Pair.
type Pair struct {
	A, B Handle
}

// CanonicalPair orders a and b so that Pair{a,b} == Pair{b,a} regardless of
// submission order.
func CanonicalPair(a, b Handle) Pair {
	if a <= b {
		return Pair{A: a, B: b}
	}
	return Pair{A: b, B: a}
}

type groupKey struct {
	pair     Pair
	category string
}

// Group holds every constraint submitted for one canonical pair and
// category, along with the warm-started lambda for each constraint slot.
type Group struct {
	Pair        Pair
	Category    string
	Constraints []Constraint
	Lambda      []float32
}

// Solver owns every live constraint group. It is not safe for concurrent
// use; the collision manager drives it from a single tick.
type Solver struct {
	groups map[groupKey]*Group
}

// New constructs an empty solver.
func New() *Solver {
	return &Solver{groups: make(map[groupKey]*Group)}
}

// Submit appends a constraint to the group for (bodyA, bodyB, category) at
// the next free slot index, creating the group if none exists. A slot index
// still covered by a prior ResetConstraints call keeps its accumulated
// lambda (warm-start); a genuinely new slot starts at zero.
func (s *Solver) Submit(bodyA, bodyB Handle, category string, c Constraint) {
	key := groupKey{pair: CanonicalPair(bodyA, bodyB), category: category}
	g, ok := s.groups[key]
	if !ok {
		g = &Group{Pair: key.pair, Category: category}
		s.groups[key] = g
	}
	idx := len(g.Constraints)
	g.Constraints = append(g.Constraints, c)
	if idx >= len(g.Lambda) {
		g.Lambda = append(g.Lambda, 0)
	}
}

// ResetConstraints clears every group's constraint list while preserving
// its accumulated lambdas by slot index, so the next round of Submit calls
// for the same pair/category/slot warm-starts from the prior solve. Call
// this once per tick before re-submitting that tick's constraints.
func (s *Solver) ResetConstraints() {
	for _, g := range s.groups {
		g.Constraints = g.Constraints[:0]
	}
}

// Unsubmit removes the entire group for (bodyA, bodyB, category), if any.
func (s *Solver) Unsubmit(bodyA, bodyB Handle, category string) {
	key := groupKey{pair: CanonicalPair(bodyA, bodyB), category: category}
	delete(s.groups, key)
}

// PruneEmpty removes every group left with zero constraints after a
// ResetConstraints call that was never followed by a matching Submit
// (i.e. a pair that stopped colliding). Call after a tick's emission step.
func (s *Solver) PruneEmpty() {
	for key, g := range s.groups {
		if len(g.Constraints) == 0 {
			delete(s.groups, key)
		}
	}
}

// GroupCount returns the number of live constraint groups, mostly useful
// for tick-summary logging.
func (s *Solver) GroupCount() int { return len(s.groups) }

// Groups returns every live group. Callers must not mutate the returned
// groups outside of SolveAll/SolveCategory.
func (s *Solver) Groups() []*Group {
	out := make([]*Group, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, g)
	}
	return out
}

var staticBody = &fallbackStaticBody{}

// fallbackStaticBody stands in for a stale/expired body reference: zero
// velocity, infinite mass, impulses are no-ops.
type fallbackStaticBody struct{}

func (*fallbackStaticBody) Mass() float32                      { return 0 }
func (*fallbackStaticBody) InverseMass() float32               { return 0 }
func (*fallbackStaticBody) Position() geom.Vector3              { return geom.Vector3{} }
func (*fallbackStaticBody) Rotation() geom.Quaternion           { return geom.Identity().Rotation }
func (*fallbackStaticBody) LinearVelocity() geom.Vector3        { return geom.Vector3{} }
func (*fallbackStaticBody) AngularVelocity() geom.Vector3       { return geom.Vector3{} }
func (*fallbackStaticBody) LocalInertia() geom.Vector3          { return geom.Vector3{} }
func (*fallbackStaticBody) IsStatic() bool                      { return true }
func (*fallbackStaticBody) ApplyLinearImpulse(geom.Vector3)     {}
func (*fallbackStaticBody) ApplyAngularImpulse(geom.Vector3)    {}

// SolveAll runs iterations full passes over every group, resolving bodies
// through resolver on each pass (a handle can go stale between passes if
// the caller mutates state mid-solve, though the manager's pipeline
// disallows that during a tick).
func (s *Solver) SolveAll(resolver Resolver, iterations int) {
	for i := 0; i < iterations; i++ {
		for _, g := range s.groups {
			s.solveGroup(resolver, g)
		}
	}
}

// SolveCategory runs iterations passes restricted to groups tagged with
// category.
func (s *Solver) SolveCategory(resolver Resolver, category string, iterations int) {
	for i := 0; i < iterations; i++ {
		for _, g := range s.groups {
			if g.Category != category {
				continue
			}
			s.solveGroup(resolver, g)
		}
	}
}

func (s *Solver) solveGroup(resolver Resolver, g *Group) {
	bodyA, okA := resolver.Resolve(g.Pair.A)
	if !okA {
		bodyA = staticBody
	}
	bodyB, okB := resolver.Resolve(g.Pair.B)
	if !okB {
		bodyB = staticBody
	}

	for i, c := range g.Constraints {
		newLambda, impulse := c.Solve(bodyA, bodyB, g.Lambda[i])
		g.Lambda[i] = newLambda

		contact := c.ContactPoint()
		if okA {
			rA := contact.Sub(bodyA.Position())
			bodyA.ApplyLinearImpulse(impulse.Mul(-1))
			bodyA.ApplyAngularImpulse(rA.Cross(impulse).Mul(-1))
		}
		if okB {
			rB := contact.Sub(bodyB.Position())
			bodyB.ApplyLinearImpulse(impulse)
			bodyB.ApplyAngularImpulse(rB.Cross(impulse))
		}
	}
}
