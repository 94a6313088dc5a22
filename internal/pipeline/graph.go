package pipeline

import (
	"context"
	"errors"
	"fmt"
)

// Graph construction and execution errors.
var (
	// ErrUnboundedCycle indicates a cycle not covered by a bounded RetryPolicy.
	ErrUnboundedCycle = errors.New("graph cycle is not bounded by a retry policy")
	// ErrNotCompiled indicates Run was called before Compile.
	ErrNotCompiled = errors.New("graph has not been compiled")
)

// Graph is a directed graph of stages. Each stage has exactly one outgoing
// transition: an unconditional edge or a named router. The only legal cycles
// are retry loops closed by a router carrying a bounded RetryPolicy; Compile
// rejects everything else at construction time.
type Graph struct {
	stages   map[string]Stage
	edges    map[string]string
	routers  map[string]Router
	entry    string
	terminal string
	compiled bool
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		stages:  make(map[string]Stage),
		edges:   make(map[string]string),
		routers: make(map[string]Router),
	}
}

// AddStage registers a stage node. Stage names are unique.
func (g *Graph) AddStage(s Stage) error {
	if s.Name == "" {
		return errors.New("stage has no name")
	}
	if s.Run == nil {
		return fmt.Errorf("stage %s has no run function", s.Name)
	}
	if _, ok := g.stages[s.Name]; ok {
		return fmt.Errorf("stage %s already registered", s.Name)
	}
	g.stages[s.Name] = s
	g.compiled = false
	return nil
}

// AddEdge wires an unconditional transition from one stage to the next.
func (g *Graph) AddEdge(from, to string) error {
	if _, ok := g.routers[from]; ok {
		return fmt.Errorf("stage %s already has a conditional edge", from)
	}
	if _, ok := g.edges[from]; ok {
		return fmt.Errorf("stage %s already has an edge", from)
	}
	g.edges[from] = to
	g.compiled = false
	return nil
}

// AddConditionalEdge wires a router as the outgoing transition of a stage.
func (g *Graph) AddConditionalEdge(from string, r Router) error {
	if _, ok := g.edges[from]; ok {
		return fmt.Errorf("stage %s already has an edge", from)
	}
	if _, ok := g.routers[from]; ok {
		return fmt.Errorf("stage %s already has a conditional edge", from)
	}
	if r.Decide == nil {
		return fmt.Errorf("router %s has no decide function", r.Name)
	}
	if len(r.Targets) == 0 {
		return fmt.Errorf("router %s has no targets", r.Name)
	}
	g.routers[from] = r
	g.compiled = false
	return nil
}

// SetEntryPoint names the stage a run starts at.
func (g *Graph) SetEntryPoint(name string) {
	g.entry = name
	g.compiled = false
}

// SetTerminal names the stage a run ends after.
func (g *Graph) SetTerminal(name string) {
	g.terminal = name
	g.compiled = false
}

// Compile validates the graph shape: entry and terminal are registered,
// every transition targets a registered stage, every non-terminal stage has
// an outgoing transition, and the only cycles are loops closed by a bounded
// router. A graph must compile before it can run.
func (g *Graph) Compile() error {
	if g.entry == "" {
		return errors.New("graph has no entry point")
	}
	if g.terminal == "" {
		return errors.New("graph has no terminal stage")
	}
	if _, ok := g.stages[g.entry]; !ok {
		return fmt.Errorf("entry point %s is not a registered stage", g.entry)
	}
	if _, ok := g.stages[g.terminal]; !ok {
		return fmt.Errorf("terminal %s is not a registered stage", g.terminal)
	}

	for from, to := range g.edges {
		if _, ok := g.stages[from]; !ok {
			return fmt.Errorf("edge from unknown stage %s", from)
		}
		if _, ok := g.stages[to]; !ok {
			return fmt.Errorf("edge from %s targets unknown stage %s", from, to)
		}
	}
	for from, r := range g.routers {
		if _, ok := g.stages[from]; !ok {
			return fmt.Errorf("conditional edge from unknown stage %s", from)
		}
		for decision, to := range r.Targets {
			if _, ok := g.stages[to]; !ok {
				return fmt.Errorf("router %s target %s for decision %q is not a registered stage", r.Name, to, decision)
			}
		}
	}

	for name := range g.stages {
		if name == g.terminal {
			continue
		}
		_, hasEdge := g.edges[name]
		_, hasRouter := g.routers[name]
		if !hasEdge && !hasRouter {
			return fmt.Errorf("stage %s has no outgoing transition", name)
		}
	}

	if g.hasUnboundedCycle() {
		return ErrUnboundedCycle
	}

	g.compiled = true
	return nil
}

// hasUnboundedCycle runs a DFS with coloring over the subgraph of
// transitions that are not excused by a bounded retry policy. Edges from a
// bounded router are excluded; any back edge that remains is a cycle the
// engine could never leave.
func (g *Graph) hasUnboundedCycle() bool {
	adj := make(map[string][]string, len(g.stages))
	for from, to := range g.edges {
		adj[from] = append(adj[from], to)
	}
	for from, r := range g.routers {
		if r.Policy.Bounded() {
			continue
		}
		for _, to := range r.Targets {
			adj[from] = append(adj[from], to)
		}
	}

	// 0 = unvisited, 1 = in progress, 2 = done.
	colors := make(map[string]int, len(g.stages))

	var visit func(name string) bool
	visit = func(name string) bool {
		colors[name] = 1
		for _, next := range adj[name] {
			switch colors[next] {
			case 1:
				return true
			case 0:
				if visit(next) {
					return true
				}
			}
		}
		colors[name] = 2
		return false
	}

	for name := range g.stages {
		if colors[name] == 0 && visit(name) {
			return true
		}
	}
	return false
}

// Run executes the graph from the entry point until the terminal stage has
// run, the context is cancelled, or a stage fails. Execution is strictly
// sequential; events are emitted to the (possibly nil) emitter as a side
// channel and never influence control flow.
func (g *Graph) Run(ctx context.Context, pc *Context, emitter *Emitter) error {
	if !g.compiled {
		return ErrNotCompiled
	}

	// Upper bound on steps, so a misbehaving Decide cannot spin forever:
	// every stage once per visit, every bounded loop at most MaxAttempts
	// extra passes through the graph.
	maxSteps := len(g.stages)
	for _, r := range g.routers {
		if r.Policy.Bounded() {
			maxSteps += r.Policy.MaxAttempts * len(g.stages)
		}
	}

	current := g.entry
	for steps := 0; ; steps++ {
		if err := ctx.Err(); err != nil {
			emitter.Emit(Event{Type: EventRunFailed, Stage: current, Err: err})
			return fmt.Errorf("run cancelled before stage %s: %w", current, err)
		}
		if steps > maxSteps {
			err := fmt.Errorf("stage %s: router produced a non-terminating walk", current)
			emitter.Emit(Event{Type: EventRunFailed, Stage: current, Err: err})
			return err
		}

		stage := g.stages[current]
		emitter.Emit(Event{Type: EventStageStarted, Stage: current})
		if err := stage.Run(ctx, pc); err != nil {
			emitter.Emit(Event{Type: EventStageFailed, Stage: current, Err: err})
			emitter.Emit(Event{Type: EventRunFailed, Stage: current, Err: err})
			return fmt.Errorf("stage %s: %w", current, err)
		}
		emitter.Emit(Event{Type: EventStageCompleted, Stage: current})

		if current == g.terminal {
			emitter.Emit(Event{Type: EventRunCompleted, Stage: current})
			return nil
		}

		next, err := g.next(current, pc, emitter)
		if err != nil {
			emitter.Emit(Event{Type: EventRunFailed, Stage: current, Err: err})
			return err
		}
		current = next
	}
}

func (g *Graph) next(current string, pc *Context, emitter *Emitter) (string, error) {
	if to, ok := g.edges[current]; ok {
		return to, nil
	}
	r := g.routers[current]
	decision := r.Decide(pc)
	to, ok := r.Targets[decision]
	if !ok {
		return "", fmt.Errorf("router %s returned unknown decision %q", r.Name, decision)
	}
	if decision == RouteRetry {
		emitter.Emit(Event{Type: EventRetry, Stage: r.Name, Message: decision})
	}
	return to, nil
}
