package gekko

import "github.com/gekko3d/gekko-physics/collision"

// PhysicsModule wires a collision.Manager into a host application: it owns
// the manager, a Time clock, and a Logger, and exposes a single Update call
// a caller's frame loop invokes once per frame. It intentionally does not
// depend on any reflection-based system/resource scheduler: an engine that
// already has one injects PhysicsModule.Update as a plain system function
// taking whatever resources it needs.
type PhysicsModule struct {
	Manager *collision.Manager
	Time    *Time
	Logger  Logger
}

// NewPhysicsModule constructs and initializes a collision.Manager with cfg
// and detector, ready to accept Create calls and be driven by Update. A nil
// logger installs a no-op logger.
func NewPhysicsModule(cfg collision.Config, detector collision.Detector, logger Logger) *PhysicsModule {
	if logger == nil {
		logger = NewNopLogger()
	}
	mgr := collision.NewManager(cfg, detector)
	mgr.Initialize()
	return &PhysicsModule{
		Manager: mgr,
		Time:    NewTime(),
		Logger:  logger,
	}
}

// Update advances the module's clock and ticks the collision manager once.
// Call this once per frame from the host's main loop.
func (m *PhysicsModule) Update() {
	dt := m.Time.Tick()
	m.Manager.Tick(dt)
	m.Logger.Debugf("physics tick frame=%d dt=%.4f", m.Time.FrameCount, dt)
}

// Shutdown releases the manager's subsystems. Call once, on teardown.
func (m *PhysicsModule) Shutdown() {
	m.Manager.Release()
}
