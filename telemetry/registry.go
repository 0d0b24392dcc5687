package telemetry

// PhaseInfo describes a step phase for display.
type PhaseInfo struct {
	ID          string // Phase name as recorded by PerfCollector
	Name        string // Display name
	Description string // What the phase does
}

// PhaseRegistry holds metadata about the step phases in reporting order.
// It keeps the UI and perf tracker naming in sync.
type PhaseRegistry struct {
	phases []PhaseInfo
	byID   map[string]PhaseInfo
}

// NewPhaseRegistry creates a registry with every step phase.
func NewPhaseRegistry() *PhaseRegistry {
	reg := &PhaseRegistry{
		byID: make(map[string]PhaseInfo),
	}
	reg.Register(PhaseInfo{ID: PhaseAdvect, Name: "Advect", Description: "Moves particles through the wind field"})
	reg.Register(PhaseInfo{ID: PhaseDeposit, Name: "Deposit", Description: "Paints the plume into the contamination mask"})
	reg.Register(PhaseInfo{ID: PhaseEmit, Name: "Emit", Description: "Releases explosion bursts"})
	reg.Register(PhaseInfo{ID: PhaseTelemetry, Name: "Telemetry", Description: "Flushes stats windows and bookmarks"})
	return reg
}

// Register adds a phase. Registering an existing ID replaces its metadata
// without changing its position.
func (r *PhaseRegistry) Register(info PhaseInfo) {
	if _, ok := r.byID[info.ID]; ok {
		for i := range r.phases {
			if r.phases[i].ID == info.ID {
				r.phases[i] = info
			}
		}
	} else {
		r.phases = append(r.phases, info)
	}
	r.byID[info.ID] = info
}

// Get returns phase info by ID.
func (r *PhaseRegistry) Get(id string) (PhaseInfo, bool) {
	info, ok := r.byID[id]
	return info, ok
}

// GetName returns the display name for a phase ID.
// Falls back to the ID itself if not found.
func (r *PhaseRegistry) GetName(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// All returns all registered phases.
func (r *PhaseRegistry) All() []PhaseInfo {
	return r.phases
}

// IDs returns all phase IDs in registration order.
func (r *PhaseRegistry) IDs() []string {
	ids := make([]string, len(r.phases))
	for i, info := range r.phases {
		ids[i] = info.ID
	}
	return ids
}
