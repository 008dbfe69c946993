package domain

import "go.trai.ch/zerr"

// Filter restricts the topological order to the transitive dependency
// closure of the requested names. An empty request returns the full order.
// The result keeps the relative positions of the full order, so it remains
// a valid topological order.
func (g *Graph) Filter(requested []string) ([]Target, error) {
	if len(requested) == 0 {
		return g.Order(), nil
	}

	closure := make(map[string]bool)
	var visit func(name string) error
	visit = func(name string) error {
		if closure[name] {
			return nil
		}
		t, ok := g.targets[name]
		if !ok {
			return zerr.With(zerr.Wrap(ErrUnknownTarget, "filter targets"), "target", name)
		}
		closure[name] = true
		for _, dep := range t.Deps {
			if err := visit(dep); err != nil {
				return err
			}
		}
		return nil
	}

	for _, name := range requested {
		if err := visit(name); err != nil {
			return nil, err
		}
	}

	var out []Target
	for _, name := range g.order {
		if closure[name] {
			out = append(out, g.targets[name])
		}
	}
	return out, nil
}
