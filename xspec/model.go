package xspec

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-xspec/fit"
)

type component struct {
	name  string
	first int
	names []string
	units []string
}

// Model is a model defined in a running interpreter.
type Model struct {
	e          *Engine
	expr       string
	components []component
}

var _ fit.Model = (*Model)(nil)

// describe reads the component layout of the active model:
// "tclout modcomp" is the component count, "tclout compinfo n" gives
// "name firstParam nParams", "tclout pinfo i" gives "name unit".
func (e *Engine) describe(expr string) (*Model, error) {
	v, err := e.tclout("modcomp")
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(firstField(v))
	if err != nil {
		return nil, fmt.Errorf("xspec: modcomp %q: %w", v, err)
	}

	m := &Model{e: e, expr: expr}
	for i := 1; i <= n; i++ {
		v, err := e.tclout(fmt.Sprintf("compinfo %d", i))
		if err != nil {
			return nil, err
		}
		f := strings.Fields(v)
		if len(f) < 3 {
			return nil, fmt.Errorf("xspec: compinfo %d %q", i, v)
		}
		first, err1 := strconv.Atoi(f[1])
		count, err2 := strconv.Atoi(f[2])
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("xspec: compinfo %d %q", i, v)
		}

		c := component{name: f[0], first: first}
		for idx := first; idx < first+count; idx++ {
			v, err := e.tclout(fmt.Sprintf("pinfo %d", idx))
			if err != nil {
				return nil, err
			}
			pf := strings.Fields(v)
			if len(pf) == 0 {
				return nil, fmt.Errorf("xspec: pinfo %d empty", idx)
			}
			unit := ""
			if len(pf) > 1 {
				unit = pf[1]
			}
			c.names = append(c.names, pf[0])
			c.units = append(c.units, unit)
		}
		m.components = append(m.components, c)
	}
	return m, nil
}

// Expression returns the expression the model was defined with.
func (m *Model) Expression() string { return m.expr }

// ComponentNames returns the component names reported by XSPEC.
func (m *Model) ComponentNames() []string {
	out := make([]string, len(m.components))
	for i, c := range m.components {
		out[i] = c.name
	}
	return out
}

func (m *Model) component(name string) (*component, error) {
	for i := range m.components {
		if m.components[i].name == name {
			return &m.components[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", fit.ErrUnknownComponent, name)
}

// ParameterNames returns the parameter names of component in order.
func (m *Model) ParameterNames(component string) ([]string, error) {
	c, err := m.component(component)
	if err != nil {
		return nil, err
	}
	return slices.Clone(c.names), nil
}

// Parameter queries the current value, sigma and error bounds of a
// parameter. "tclout param i" gives "value delta min bot top max"; a
// negative delta means frozen.
func (m *Model) Parameter(component, name string) (fit.Parameter, error) {
	c, err := m.component(component)
	if err != nil {
		return fit.Parameter{}, err
	}
	k := slices.Index(c.names, name)
	if k < 0 {
		return fit.Parameter{}, fmt.Errorf("%w: %s.%s", fit.ErrUnknownParameter, component, name)
	}

	p := fit.Parameter{Component: component, Name: name, Unit: c.units[k], Index: c.first + k}

	v, err := m.e.tclout(fmt.Sprintf("param %d", p.Index))
	if err != nil {
		return p, err
	}
	f := strings.Fields(v)
	if len(f) < 2 {
		return p, fmt.Errorf("xspec: param %d %q", p.Index, v)
	}
	if p.Value, err = strconv.ParseFloat(f[0], 64); err != nil {
		return p, fmt.Errorf("xspec: param %d %q: %w", p.Index, v, err)
	}
	delta, err := strconv.ParseFloat(f[1], 64)
	if err != nil {
		return p, fmt.Errorf("xspec: param %d %q: %w", p.Index, v, err)
	}
	p.Frozen = delta < 0

	v, err = m.e.tclout(fmt.Sprintf("sigma %d", p.Index))
	if err != nil {
		return p, err
	}
	if p.Sigma, err = parseFloat(v); err != nil {
		// Frozen parameters report no sigma.
		p.Sigma = 0
	}

	v, err = m.e.tclout(fmt.Sprintf("error %d", p.Index))
	if err != nil {
		return p, err
	}
	p.Error, err = parseError(v)
	if err != nil {
		return p, fmt.Errorf("xspec: error %d: %w", p.Index, err)
	}
	return p, nil
}

// parseError decodes "lower upper FFFFFFFFF".
func parseError(v string) (fit.ErrorBounds, error) {
	f := strings.Fields(v)
	if len(f) < 3 {
		return fit.ErrorBounds{}, fmt.Errorf("%w: %q", fit.ErrBadErrorStatus, v)
	}
	var b fit.ErrorBounds
	var err error
	if b.Lower, err = strconv.ParseFloat(f[0], 64); err != nil {
		return b, err
	}
	if b.Upper, err = strconv.ParseFloat(f[1], 64); err != nil {
		return b, err
	}
	b.Status, err = fit.ParseErrorStatus(f[2])
	return b, err
}

// SetPars issues one newpar command per index, in index order.
func (m *Model) SetPars(settings map[int]fit.Setting) error {
	for _, idx := range slices.Sorted(maps.Keys(settings)) {
		if err := m.e.exec(fmt.Sprintf("newpar %d %s", idx, settings[idx])); err != nil {
			return err
		}
	}
	return nil
}

// SetFrozen sends "freeze i" or "thaw i".
func (m *Model) SetFrozen(index int, frozen bool) error {
	if frozen {
		return m.e.exec(fmt.Sprintf("freeze %d", index))
	}
	return m.e.exec(fmt.Sprintf("thaw %d", index))
}
