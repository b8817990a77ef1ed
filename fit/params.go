package fit

import "fmt"

const normName = "norm"

// Params returns the current values of a component's parameters in
// declared order. The normalization is left out unless includeNorm is set,
// since it is usually re-derived rather than carried between stages.
func Params(m Model, component string, includeNorm bool) ([]float64, error) {
	names, err := m.ParameterNames(component)
	if err != nil {
		return nil, err
	}

	out := make([]float64, 0, len(names))
	for _, name := range names {
		if name == normName && !includeNorm {
			continue
		}
		p, err := m.Parameter(component, name)
		if err != nil {
			return nil, err
		}
		out = append(out, p.Value)
	}
	return out, nil
}

// SetParams pins a component's parameters near values, in declared order:
// each is set to "v -0.1,,,v", which freezes it at v. Unless frozen is
// set, every assigned parameter is then released for the next fit.
// Surplus names or values are ignored.
func SetParams(m Model, component string, values []float64, frozen bool) error {
	names, err := m.ParameterNames(component)
	if err != nil {
		return err
	}

	n := min(len(names), len(values))
	settings := make(map[int]Setting, n)
	indices := make([]int, 0, n)
	for i := range n {
		p, err := m.Parameter(component, names[i])
		if err != nil {
			return err
		}
		settings[p.Index] = NewSetting(values[i], -0.1).WithTop(values[i])
		indices = append(indices, p.Index)
	}

	if err := m.SetPars(settings); err != nil {
		return fmt.Errorf("set %s parameters: %w", component, err)
	}
	if frozen {
		return nil
	}
	for _, idx := range indices {
		if err := m.SetFrozen(idx, false); err != nil {
			return fmt.Errorf("release %s parameter %d: %w", component, idx, err)
		}
	}
	return nil
}

// Sigmas returns the one-sigma uncertainties of a component's parameters in
// declared order, normalization included.
func Sigmas(m Model, component string) ([]float64, error) {
	names, err := m.ParameterNames(component)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(names))
	for i, name := range names {
		p, err := m.Parameter(component, name)
		if err != nil {
			return nil, err
		}
		out[i] = p.Sigma
	}
	return out, nil
}

// Parameters returns a snapshot of every parameter of m, component by
// component in model order.
func Parameters(m Model) ([]Parameter, error) {
	var out []Parameter
	for _, comp := range m.ComponentNames() {
		names, err := m.ParameterNames(comp)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			p, err := m.Parameter(comp, name)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		}
	}
	return out, nil
}
