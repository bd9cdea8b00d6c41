// Package object materializes the driver's fixed object hierarchy: one
// plug-in owning one device and one clock, the device owning its streams
// and controls. The whole tree is built once and never changes while the
// driver is loaded.
package object

import "sort"

// Config selects which objects the graph contains. The set is fixed at
// build time; there is no way to add or remove objects afterwards.
type Config struct {
	HasInput  bool
	HasOutput bool

	// DataSourceControls adds a data-source control per enabled
	// direction to the device's child list.
	DataSourceControls bool
}

// Graph is the arena of driver objects. Lookup is O(1) by ID; parent and
// child relations are stored as ID lists, never as pointers.
type Graph struct {
	infos    map[ID]Info
	children map[ID][]ID

	plugin ID
	device ID
	clock  ID

	inputStream  ID
	outputStream ID
}

// Build assigns IDs sequentially starting at the plug-in and returns the
// completed graph. For a given Config the assignment is deterministic:
// plug-in, device, then per direction stream/volume/mute (input before
// output), data-source controls, and the clock last.
func Build(cfg Config) *Graph {
	g := &Graph{
		infos:    make(map[ID]Info),
		children: make(map[ID][]ID),
	}

	next := ID(1)
	alloc := func(class Class, scope Scope, kind ControlKind, owner ID) ID {
		id := next
		next++
		g.infos[id] = Info{ID: id, Class: class, Scope: scope, Kind: kind, Owner: owner}
		if owner != Unknown {
			g.children[owner] = append(g.children[owner], id)
		}
		return id
	}

	g.plugin = alloc(ClassPlugIn, ScopeGlobal, ControlNone, Unknown)
	g.device = alloc(ClassDevice, ScopeGlobal, ControlNone, g.plugin)

	if cfg.HasInput {
		g.inputStream = alloc(ClassStream, ScopeInput, ControlNone, g.device)
		alloc(ClassControl, ScopeInput, ControlVolume, g.device)
		alloc(ClassControl, ScopeInput, ControlMute, g.device)
	}
	if cfg.HasOutput {
		g.outputStream = alloc(ClassStream, ScopeOutput, ControlNone, g.device)
		alloc(ClassControl, ScopeOutput, ControlVolume, g.device)
		alloc(ClassControl, ScopeOutput, ControlMute, g.device)
	}
	if cfg.DataSourceControls {
		if cfg.HasInput {
			alloc(ClassControl, ScopeInput, ControlDataSource, g.device)
		}
		if cfg.HasOutput {
			alloc(ClassControl, ScopeOutput, ControlDataSource, g.device)
		}
	}

	g.clock = alloc(ClassClock, ScopeGlobal, ControlNone, g.plugin)

	// Child enumeration order is part of the external contract: streams
	// before controls, ascending ID within each group.
	for owner, kids := range g.children {
		sort.Slice(kids, func(i, j int) bool {
			a, b := g.infos[kids[i]], g.infos[kids[j]]
			if (a.Class == ClassStream) != (b.Class == ClassStream) {
				return a.Class == ClassStream
			}
			return a.ID < b.ID
		})
		g.children[owner] = kids
	}

	return g
}

// Contains reports whether id names an object in the graph.
func (g *Graph) Contains(id ID) bool {
	_, ok := g.infos[id]
	return ok
}

// Info returns the description of id.
func (g *Graph) Info(id ID) (Info, bool) {
	info, ok := g.infos[id]
	return info, ok
}

func (g *Graph) PlugIn() ID { return g.plugin }
func (g *Graph) Device() ID { return g.device }
func (g *Graph) Clock() ID  { return g.clock }

// InputStream returns the input stream ID, or false when the input
// direction is not configured.
func (g *Graph) InputStream() (ID, bool) {
	return g.inputStream, g.inputStream != Unknown
}

// OutputStream returns the output stream ID, or false when the output
// direction is not configured.
func (g *Graph) OutputStream() (ID, bool) {
	return g.outputStream, g.outputStream != Unknown
}

// IsStream reports whether id is one of the device's streams.
func (g *Graph) IsStream(id ID) bool {
	info, ok := g.infos[id]
	return ok && info.Class == ClassStream
}

// Children returns owner's children visible in scope, in the contract
// order. A Global query sees every child; a directional query sees only
// the children of that direction. The returned slice must not be
// modified.
func (g *Graph) Children(owner ID, scope Scope) []ID {
	kids := g.children[owner]
	if scope == ScopeGlobal {
		return kids
	}
	var out []ID
	for _, id := range kids {
		if g.infos[id].Scope == scope {
			out = append(out, id)
		}
	}
	return out
}

// Streams returns the device's stream children visible in scope.
func (g *Graph) Streams(scope Scope) []ID {
	return g.childrenOfClass(ClassStream, scope)
}

// Controls returns the device's control children visible in scope.
func (g *Graph) Controls(scope Scope) []ID {
	return g.childrenOfClass(ClassControl, scope)
}

func (g *Graph) childrenOfClass(class Class, scope Scope) []ID {
	var out []ID
	for _, id := range g.Children(g.device, scope) {
		if g.infos[id].Class == class {
			out = append(out, id)
		}
	}
	return out
}

// Control finds the device control of the given kind and scope.
func (g *Graph) Control(kind ControlKind, scope Scope) (ID, bool) {
	for _, id := range g.children[g.device] {
		info := g.infos[id]
		if info.Class == ClassControl && info.Kind == kind && info.Scope == scope {
			return id, true
		}
	}
	return Unknown, false
}
