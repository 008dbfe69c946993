// Package domain contains the core domain model for the target dependency graph.
package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// Graph is the validated dependency DAG of a project. It holds targets in
// topological order and is read-only after construction.
type Graph struct {
	targets    map[string]Target
	order      []string
	dependents map[string][]string
}

// BuildGraph validates the project's dependency references and computes a
// topological order using Kahn's algorithm. The zero-in-degree queue is
// seeded in declaration order and siblings keep declaration order, so the
// result is deterministic for a given descriptor tree.
func BuildGraph(p *Project) (*Graph, error) {
	g := &Graph{
		targets:    make(map[string]Target, len(p.Targets)),
		dependents: make(map[string][]string, len(p.Targets)),
	}
	for _, t := range p.Targets {
		g.targets[t.Name] = t
	}

	for _, t := range p.Targets {
		for _, dep := range t.Deps {
			if _, ok := g.targets[dep]; !ok {
				return nil, zerr.With(zerr.With(zerr.Wrap(ErrUnknownDependency, "validate dependencies"),
					"target", t.Name), "dep", dep)
			}
			g.dependents[dep] = append(g.dependents[dep], t.Name)
		}
	}

	inDegree := make(map[string]int, len(p.Targets))
	for _, t := range p.Targets {
		inDegree[t.Name] = len(t.Deps)
	}

	var queue []string
	for _, t := range p.Targets {
		if inDegree[t.Name] == 0 {
			queue = append(queue, t.Name)
		}
	}

	order := make([]string, 0, len(p.Targets))
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		order = append(order, name)

		// Dependents were collected in declaration order, so nodes that
		// become ready in the same step keep declaration order too.
		for _, dep := range g.dependents[name] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(order) < len(p.Targets) {
		var unresolved []string
		for _, t := range p.Targets {
			if inDegree[t.Name] > 0 {
				unresolved = append(unresolved, t.Name)
			}
		}
		return nil, zerr.With(zerr.Wrap(ErrCycle, "order targets"), "nodes", strings.Join(unresolved, ", "))
	}

	g.order = order
	return g, nil
}

// Len returns the number of targets in the graph.
func (g *Graph) Len() int {
	return len(g.order)
}

// Order returns the full topological order of the graph.
func (g *Graph) Order() []Target {
	out := make([]Target, len(g.order))
	for i, name := range g.order {
		out[i] = g.targets[name]
	}
	return out
}

// Target looks up a target by name.
func (g *Graph) Target(name string) (Target, bool) {
	t, ok := g.targets[name]
	return t, ok
}

// DirectDeps returns the direct dependencies of a target in declaration order.
func (g *Graph) DirectDeps(name string) []Target {
	t, ok := g.targets[name]
	if !ok {
		return nil
	}
	deps := make([]Target, 0, len(t.Deps))
	for _, dep := range t.Deps {
		deps = append(deps, g.targets[dep])
	}
	return deps
}

// Dependents returns the names of targets that directly depend on name.
func (g *Graph) Dependents(name string) []string {
	return g.dependents[name]
}
