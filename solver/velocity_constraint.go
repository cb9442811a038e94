package solver

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/gekko-physics/geom"
)

// effectiveMassFloor is the effective-mass epsilon below which a
// constraint is treated as numerically degenerate. Below this the solver
// substitutes 1.0 rather than skip the constraint outright, matching the
// "safe fallback" behavior of the resolved velocity constraint.
const effectiveMassFloor = geom.KindaSmall

// VelocityConstraint is a single-axis velocity constraint: it drives the
// relative velocity of two bodies at a contact point, projected onto
// Direction, toward DesiredSpeed, with an optional Baumgarte position bias.
type VelocityConstraint struct {
	Direction    geom.Vector3
	DesiredSpeed float32
	Bias         float32
	// PositionError is the penetration depth (or other position error) fed
	// into the bias term; 0 disables position correction.
	PositionError float32
	// MinLambda bounds the accumulated lambda from below; 0 for a
	// push-only contact constraint, -Inf-like very negative values for a
	// two-sided constraint.
	MinLambda float32

	contactPoint  geom.Vector3
	contactNormal geom.Vector3
}

// NewVelocityConstraint constructs a constraint along direction targeting
// desiredSpeed, with the accumulated lambda bounded below by minLambda.
func NewVelocityConstraint(direction geom.Vector3, desiredSpeed, minLambda float32) *VelocityConstraint {
	return &VelocityConstraint{Direction: direction, DesiredSpeed: desiredSpeed, MinLambda: minLambda}
}

// SetContactData records the contact point/normal/penetration used by the
// bias term and by the solver's impulse application step.
func (c *VelocityConstraint) SetContactData(point, normal geom.Vector3, penetration float32) {
	c.contactPoint = point
	c.contactNormal = normal
	c.PositionError = penetration
}

// ContactPoint returns the point impulses are applied at.
func (c *VelocityConstraint) ContactPoint() geom.Vector3 { return c.contactPoint }

// Solve computes the relative contact velocity along Direction, derives the
// velocity error and position bias, computes the effective mass including
// rotational contributions, and returns the updated accumulated lambda plus
// the impulse to apply (Direction scaled by the lambda delta actually
// applied this call, after clamping).
func (c *VelocityConstraint) Solve(bodyA, bodyB RigidBody, lambda float32) (float32, geom.Vector3) {
	relativeVelocity := relativeVelocityAt(bodyA, bodyB, c.contactPoint)
	projectedSpeed := relativeVelocity.Dot(c.Direction)

	velocityError := projectedSpeed - c.DesiredSpeed
	positionCorrection := c.Bias * c.PositionError

	effMass := effectiveMass(bodyA, bodyB, c.contactPoint, c.Direction)
	if effMass < effectiveMassFloor {
		effMass = 1.0
	}

	deltaLambda := -(velocityError + positionCorrection) / effMass

	oldLambda := lambda
	newLambda := oldLambda + deltaLambda
	if newLambda < c.MinLambda {
		newLambda = c.MinLambda
	}
	appliedLambda := newLambda - oldLambda

	impulse := c.Direction.Mul(appliedLambda)
	return newLambda, impulse
}

func relativeVelocityAt(bodyA, bodyB RigidBody, contactPoint geom.Vector3) geom.Vector3 {
	rA := contactPoint.Sub(bodyA.Position())
	rB := contactPoint.Sub(bodyB.Position())

	velA := bodyA.LinearVelocity().Add(bodyA.AngularVelocity().Cross(rA))
	velB := bodyB.LinearVelocity().Add(bodyB.AngularVelocity().Cross(rB))

	return velB.Sub(velA)
}

func effectiveMass(bodyA, bodyB RigidBody, contactPoint, direction geom.Vector3) float32 {
	invMassA := bodyA.InverseMass()
	invMassB := bodyB.InverseMass()

	rA := contactPoint.Sub(bodyA.Position())
	rB := contactPoint.Sub(bodyB.Position())

	crossA := rA.Cross(direction)
	crossB := rB.Cross(direction)

	invInertiaA := worldInverseInertia(bodyA)
	invInertiaB := worldInverseInertia(bodyB)

	angularA := invInertiaA.Mul3x1(crossA)
	angularB := invInertiaB.Mul3x1(crossB)

	termA := crossA.Dot(angularA)
	termB := crossB.Dot(angularB)

	return invMassA + invMassB + termA + termB
}

// worldInverseInertia rotates the body's local diagonal inverse inertia
// tensor into world space: R * I_local^-1 * R^T.
func worldInverseInertia(body RigidBody) mgl32.Mat3 {
	local := body.LocalInertia()
	invDiag := mgl32.Mat3{
		invOrZero(local.X()), 0, 0,
		0, invOrZero(local.Y()), 0,
		0, 0, invOrZero(local.Z()),
	}

	r := geom.QuatToMat3(body.Rotation())
	return r.Mul3(invDiag).Mul3(r.Transpose())
}

func invOrZero(v float32) float32 {
	if v < geom.KindaSmall {
		return 0
	}
	return 1 / v
}
