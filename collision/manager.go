// Package collision ties the broad phase, narrow phase and constraint
// solver together into a per-tick pipeline: cleanup destroyed components,
// refresh the tree, find candidate pairs, generate contacts, submit and
// solve constraints, and dispatch enter/stay/exit events to subscribers.
package collision

import (
	"github.com/google/uuid"

	"github.com/gekko3d/gekko-physics/arena"
	"github.com/gekko3d/gekko-physics/bvh"
	"github.com/gekko3d/gekko-physics/geom"
	"github.com/gekko3d/gekko-physics/shape"
	"github.com/gekko3d/gekko-physics/solver"
)

// Body is the rigid body state a registered collider is attached to. It
// combines the constraint solver's consumed RigidBody contract with the
// broad phase's Boundable contract, plus an IsDestroyed flag the manager
// polls during cleanup.
type Body interface {
	solver.RigidBody
	Transform() geom.Transform
	BoundsDirty() bool
	ClearDirty()
	IsDestroyed() bool
}

// ShapeKind selects which concrete shape.Shape Create builds.
type ShapeKind int

const (
	ShapeBox ShapeKind = iota
	ShapeSphere
)

// ColliderID identifies a registered collider; it doubles as the solver
// Handle for the body it's attached to, since the manager is the sole
// assigner of both.
type ColliderID = solver.Handle

// Contact is a single narrow-phase result between two colliders.
type Contact struct {
	Point       geom.Vector3
	Normal      geom.Vector3
	Penetration float32
	IsTouching  bool
}

// Detector performs narrow-phase contact generation between two shapes
// under their world transforms. It is the seam this package leaves for an
// external collision-detection algorithm (GJK/EPA, SAT, etc.).
type Detector interface {
	Detect(shapeA, shapeB shape.Shape, xfA, xfB geom.Transform) Contact
}

// EventState classifies a CollisionEvent relative to the previous tick's
// touching set.
type EventState int

const (
	Enter EventState = iota
	Stay
	Exit
)

// CollisionEvent is broadcast to subscribers whenever a pair's touching
// state changes, or persists, between ticks.
type CollisionEvent struct {
	PairA, PairB ColliderID
	State        EventState
	Contact      Contact
}

// Subscriber receives every CollisionEvent dispatched at the end of a tick.
type Subscriber func(CollisionEvent)

// Config carries every tunable the manager and its subsystems read. There
// is no global/singleton fallback: a zero Config is invalid, use
// DefaultConfig.
type Config struct {
	InitialCapacity  int
	AABBExtension    float32
	MinMargin        float32
	SolverIterations int
	BaumgarteBias    float32
	PenetrationSlop  float32
}

// DefaultConfig returns the defaults named in the external-interfaces
// table.
func DefaultConfig() Config {
	return Config{
		InitialCapacity:  128,
		AABBExtension:    0.1,
		MinMargin:        0.01,
		SolverIterations: 6,
		BaumgarteBias:    0.2,
		PenetrationSlop:  0.01,
	}
}

type collider struct {
	shape shape.Shape
	body  Body
}

func (c *collider) HalfExtent() geom.Vector3  { return c.shape.HalfExtent() }
func (c *collider) Transform() geom.Transform { return c.body.Transform() }
func (c *collider) BoundsDirty() bool         { return c.body.BoundsDirty() }
func (c *collider) ClearDirty()               { c.body.ClearDirty() }

type componentEntry struct {
	id       ColliderID
	collider *collider
	nodeID   bvh.NodeID
}

type pairKey struct {
	A, B ColliderID
}

func canonicalColliderPair(a, b ColliderID) pairKey {
	if a <= b {
		return pairKey{A: a, B: b}
	}
	return pairKey{A: b, B: a}
}

// Manager owns the broad phase tree, the solver, the component registry and
// the active-pair diff state. It is not safe for concurrent use; Tick must
// not run concurrently with Create/UnregisterAll.
type Manager struct {
	config Config

	tree    *bvh.Tree
	solver  *solver.Solver
	scratch *arena.Arena

	detector Detector

	components []componentEntry
	indexByID  map[ColliderID]int
	nextID     ColliderID

	activePairs map[pairKey]Contact
	subscribers map[uuid.UUID]Subscriber

	isInitialized bool
}

// NewManager constructs a manager using detector for narrow-phase contact
// generation. Initialize must be called before Create/Tick.
func NewManager(config Config, detector Detector) *Manager {
	return &Manager{
		config:      config,
		detector:    detector,
		indexByID:   make(map[ColliderID]int),
		activePairs: make(map[pairKey]Contact),
		subscribers: make(map[uuid.UUID]Subscriber),
	}
}

// Initialize constructs the tree, solver and scratch arena. Idempotent.
func (m *Manager) Initialize() {
	if m.isInitialized {
		return
	}
	m.tree = bvh.NewTreeTuned(m.config.InitialCapacity, m.config.AABBExtension, m.config.MinMargin)
	m.solver = solver.New()
	m.scratch = arena.New(m.config.InitialCapacity * 64)
	m.isInitialized = true
}

// Release unregisters every component and drops the subsystems. Idempotent.
func (m *Manager) Release() {
	if !m.isInitialized {
		return
	}
	m.UnregisterAll()
	m.scratch.Drop()
	m.tree = nil
	m.solver = nil
	m.scratch = nil
	m.isInitialized = false
}

// Create registers a collider for body with the given shape kind and local
// half-extent (for ShapeSphere, only the X component is used as the
// radius), inserts it into the tree, and returns its id. Returns false if
// the manager is not initialized.
func (m *Manager) Create(body Body, kind ShapeKind, halfExtent geom.Vector3) (ColliderID, bool) {
	if !m.isInitialized {
		return 0, false
	}

	var sh shape.Shape
	switch kind {
	case ShapeSphere:
		sh = shape.NewSphere(halfExtent.X())
	default:
		sh = shape.NewBox(halfExtent)
	}

	c := &collider{shape: sh, body: body}
	nodeID := m.tree.Insert(c)

	id := m.nextID
	m.nextID++

	m.components = append(m.components, componentEntry{id: id, collider: c, nodeID: nodeID})
	m.indexByID[id] = len(m.components) - 1

	return id, true
}

// UnregisterAll removes every component from the tree and clears all pair
// and solver state.
func (m *Manager) UnregisterAll() {
	if !m.isInitialized {
		return
	}
	for _, entry := range m.components {
		m.tree.Remove(entry.nodeID)
	}
	m.components = nil
	m.indexByID = make(map[ColliderID]int)
	m.activePairs = make(map[pairKey]Contact)
	m.solver = solver.New()
}

// Subscribe registers fn to receive every CollisionEvent dispatched from
// future ticks, and returns a stable tag for Unsubscribe.
func (m *Manager) Subscribe(fn Subscriber) uuid.UUID {
	tag := uuid.New()
	m.subscribers[tag] = fn
	return tag
}

// Unsubscribe removes a previously registered subscriber. No-op if tag is
// unknown.
func (m *Manager) Unsubscribe(tag uuid.UUID) {
	delete(m.subscribers, tag)
}

// Resolve implements solver.Resolver by looking up the live body attached
// to handle, if any.
func (m *Manager) Resolve(h solver.Handle) (solver.RigidBody, bool) {
	idx, ok := m.indexByID[h]
	if !ok {
		return nil, false
	}
	return m.components[idx].collider.body, true
}

// Tick runs the fixed six-step pipeline: cleanup, broad phase, narrow
// phase, constraint emission, solve, event dispatch.
func (m *Manager) Tick(dt float32) {
	if !m.isInitialized {
		return
	}

	m.scratch.Reset()

	m.cleanup()
	candidates := m.broadPhase()
	m.solver.ResetConstraints()
	touching := m.narrowPhaseAndEmit(candidates)
	m.solver.PruneEmpty()
	m.solver.SolveAll(m, m.config.SolverIterations)
	m.dispatchEvents(touching)
}

func (m *Manager) cleanup() {
	var destroyedIDs []ColliderID
	for _, entry := range m.components {
		if entry.collider.body.IsDestroyed() {
			destroyedIDs = append(destroyedIDs, entry.id)
		}
	}
	for _, id := range destroyedIDs {
		m.removeComponent(id)
	}
}

// removeComponent removes id from the tree and the component registry via
// swap-and-pop, rewriting indexByID for the moved tail entry.
func (m *Manager) removeComponent(id ColliderID) {
	idx, ok := m.indexByID[id]
	if !ok {
		return
	}

	m.tree.Remove(m.components[idx].nodeID)

	last := len(m.components) - 1
	m.components[idx] = m.components[last]
	m.components = m.components[:last]
	delete(m.indexByID, id)

	if idx < len(m.components) {
		m.indexByID[m.components[idx].id] = idx
	}

	for key := range m.activePairs {
		if key.A == id || key.B == id {
			delete(m.activePairs, key)
		}
	}
}

// broadPhase refreshes the tree and returns deduplicated candidate pairs,
// each backed by an arena-allocated pairKey to keep tick-scoped scratch off
// the GC'd heap.
func (m *Manager) broadPhase() []*pairKey {
	m.tree.Update()

	seen := make(map[pairKey]bool)
	var candidates []*pairKey

	for _, entry := range m.components {
		bounds := m.tree.GetFatBounds(entry.nodeID)
		m.tree.QueryOverlap(bounds, func(otherID bvh.NodeID) {
			if otherID == entry.nodeID {
				return
			}
			otherEntry, ok := m.componentByNode(otherID)
			if !ok {
				return
			}
			key := canonicalColliderPair(entry.id, otherEntry.id)
			if seen[key] {
				return
			}
			seen[key] = true

			alloc, err := arena.Alloc(m.scratch, key)
			if err != nil {
				return
			}
			candidates = append(candidates, alloc)
		})
	}

	return candidates
}

func (m *Manager) componentByNode(nodeID bvh.NodeID) (componentEntry, bool) {
	for _, entry := range m.components {
		if entry.nodeID == nodeID {
			return entry, true
		}
	}
	return componentEntry{}, false
}

func (m *Manager) narrowPhaseAndEmit(candidates []*pairKey) map[pairKey]Contact {
	touching := make(map[pairKey]Contact)

	for _, pk := range candidates {
		idxA, okA := m.indexByID[pk.A]
		idxB, okB := m.indexByID[pk.B]
		if !okA || !okB {
			continue
		}
		colliderA := m.components[idxA].collider
		colliderB := m.components[idxB].collider

		contact := m.detector.Detect(colliderA.shape, colliderB.shape, colliderA.Transform(), colliderB.Transform())
		if !contact.IsTouching {
			continue
		}
		touching[*pk] = contact

		penetration := contact.Penetration - m.config.PenetrationSlop
		if penetration < 0 {
			penetration = 0
		}

		c := solver.NewVelocityConstraint(contact.Normal, 0, 0)
		c.Bias = m.config.BaumgarteBias
		c.SetContactData(contact.Point, contact.Normal, penetration)

		m.solver.Submit(pk.A, pk.B, "contact", c)
	}

	return touching
}

func (m *Manager) dispatchEvents(touching map[pairKey]Contact) {
	for key, contact := range touching {
		_, wasActive := m.activePairs[key]
		state := Stay
		if !wasActive {
			state = Enter
		}
		m.emit(CollisionEvent{PairA: key.A, PairB: key.B, State: state, Contact: contact})
	}
	for key, contact := range m.activePairs {
		if _, stillTouching := touching[key]; !stillTouching {
			m.emit(CollisionEvent{PairA: key.A, PairB: key.B, State: Exit, Contact: contact})
		}
	}
	m.activePairs = touching
}

func (m *Manager) emit(evt CollisionEvent) {
	for _, fn := range m.subscribers {
		fn(evt)
	}
}
