// Package fake provides an in-memory fit.Engine. It applies parameter
// settings and masks like the real engine, records every call and
// snapshots the model at each fit, but does not fit anything.
package fake

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/cwbudde/algo-xspec/fit"
)

// Snapshot is the engine state at one Perform call.
type Snapshot struct {
	Expression string
	// Mask is the active ignore strings joined by "; ", empty when every
	// channel is noticed.
	Mask      string
	Params    []fit.Parameter
	Statistic fit.Statistic
}

// Frozen returns the frozen flag of component.name.
func (s Snapshot) Frozen(component, name string) (frozen, ok bool) {
	for _, p := range s.Params {
		if p.Component == component && p.Name == name {
			return p.Frozen, true
		}
	}
	return false, false
}

// Engine is a deterministic fit.Engine.
type Engine struct {
	mu sync.Mutex

	catalog map[string]Component
	stats   []fit.Statistic
	fail    map[string]error

	abundance  string
	method     string
	query      string
	iterations int

	model   *Model
	ignored []string

	calls     []string
	snapshots []Snapshot
}

// Option configures an Engine.
type Option func(*Engine)

// WithComponent adds or replaces a catalog component.
func WithComponent(c Component) Option {
	return func(e *Engine) {
		e.catalog[c.Name] = c
	}
}

// WithStatistics sets the statistics returned by successive Perform calls.
// The last one repeats once they run out.
func WithStatistics(stats ...fit.Statistic) Option {
	return func(e *Engine) {
		e.stats = append([]fit.Statistic(nil), stats...)
	}
}

// WithFailure makes every call of the named method return err.
func WithFailure(method string, err error) Option {
	return func(e *Engine) {
		e.fail[method] = err
	}
}

// New returns an Engine with the default catalog.
func New(opts ...Option) *Engine {
	e := &Engine{
		catalog: make(map[string]Component),
		fail:    make(map[string]error),
		method:  "chi",
	}
	for _, c := range DefaultCatalog() {
		e.catalog[c.Name] = c
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Calls returns the recorded calls, e.g. "ignore 0.-2 10-**".
func (e *Engine) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.calls...)
}

// Snapshots returns one snapshot per Perform call.
func (e *Engine) Snapshots() []Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Snapshot(nil), e.snapshots...)
}

// Settings returns the current abundance, statistic, query policy and
// iteration count.
func (e *Engine) Settings() (abundance, method, query string, iterations int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.abundance, e.method, e.query, e.iterations
}

func (e *Engine) record(method, call string) error {
	e.calls = append(e.calls, call)
	return e.fail[method]
}

// SetAbundance records the abundance table.
func (e *Engine) SetAbundance(table string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.record("SetAbundance", "abund "+table); err != nil {
		return err
	}
	e.abundance = table
	return nil
}

// SetStatMethod records the method reported by later statistics.
func (e *Engine) SetStatMethod(method string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.record("SetStatMethod", "statistic "+method); err != nil {
		return err
	}
	e.method = method
	return nil
}

// SetQuery records the query policy.
func (e *Engine) SetQuery(policy string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.record("SetQuery", "query "+policy); err != nil {
		return err
	}
	e.query = policy
	return nil
}

// SetIterations records the iteration budget.
func (e *Engine) SetIterations(n int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.record("SetIterations", fmt.Sprintf("iterations %d", n)); err != nil {
		return err
	}
	e.iterations = n
	return nil
}

// ClearModels drops the current model.
func (e *Engine) ClearModels() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.record("ClearModels", "model clear"); err != nil {
		return err
	}
	e.model = nil
	return nil
}

// NewModel builds a model from the catalog entries named in expr, which
// joins component names with "+". Unknown names fail with
// fit.ErrUnknownComponent.
func (e *Engine) NewModel(expr string) (fit.Model, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.record("NewModel", "model "+expr); err != nil {
		return nil, err
	}

	m := &Model{engine: e, expr: expr}
	for _, name := range strings.Split(expr, "+") {
		name = strings.TrimSpace(name)
		c, ok := e.catalog[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", fit.ErrUnknownComponent, name)
		}
		m.components = append(m.components, name)
		for _, ps := range c.Params {
			m.params = append(m.params, fit.Parameter{
				Component: name,
				Name:      ps.Name,
				Unit:      ps.Unit,
				Index:     len(m.params) + 1,
				Value:     ps.Value,
				Frozen:    ps.Frozen,
			})
		}
	}
	e.model = m
	return m, nil
}

// Ignore adds ranges to the mask shown in snapshots.
func (e *Engine) Ignore(ranges string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.record("Ignore", "ignore "+ranges); err != nil {
		return err
	}
	e.ignored = append(e.ignored, ranges)
	return nil
}

// NoticeAll clears the mask.
func (e *Engine) NoticeAll() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.record("NoticeAll", "notice all"); err != nil {
		return err
	}
	e.ignored = nil
	return nil
}

// Renorm only records the call.
func (e *Engine) Renorm() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.record("Renorm", "renorm")
}

// Perform snapshots the model and returns the next configured statistic.
// Free parameters get a sigma of a tenth of their value.
func (e *Engine) Perform() (fit.Statistic, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.record("Perform", "fit"); err != nil {
		return fit.Statistic{}, err
	}
	if e.model == nil {
		return fit.Statistic{}, fmt.Errorf("fake: no model loaded")
	}

	stat := fit.Statistic{Method: e.method, Value: 1, DOF: 10, NullHyp: 0.5}
	if n := len(e.stats); n > 0 {
		stat = e.stats[min(len(e.snapshots), n-1)]
		stat.Method = e.method
	}

	for i := range e.model.params {
		p := &e.model.params[i]
		if p.Frozen {
			p.Sigma = 0
		} else {
			p.Sigma = math.Abs(p.Value) / 10
		}
	}

	e.snapshots = append(e.snapshots, Snapshot{
		Expression: e.model.expr,
		Mask:       strings.Join(e.ignored, "; "),
		Params:     append([]fit.Parameter(nil), e.model.params...),
		Statistic:  stat,
	})
	return stat, nil
}

// Model is a model loaded in an Engine.
type Model struct {
	engine     *Engine
	expr       string
	components []string
	params     []fit.Parameter
}

// Expression returns the model expression.
func (m *Model) Expression() string { return m.expr }

// ComponentNames returns the components in expression order.
func (m *Model) ComponentNames() []string {
	return append([]string(nil), m.components...)
}

// ParameterNames returns the parameter names of component in order.
func (m *Model) ParameterNames(component string) ([]string, error) {
	m.engine.mu.Lock()
	defer m.engine.mu.Unlock()

	var names []string
	for _, p := range m.params {
		if p.Component == component {
			names = append(names, p.Name)
		}
	}
	if names == nil {
		return nil, fmt.Errorf("%w: %q", fit.ErrUnknownComponent, component)
	}
	return names, nil
}

// Parameter returns the current state of component.name.
func (m *Model) Parameter(component, name string) (fit.Parameter, error) {
	m.engine.mu.Lock()
	defer m.engine.mu.Unlock()

	for _, p := range m.params {
		if p.Component == component && p.Name == name {
			return p, nil
		}
	}
	return fit.Parameter{}, fmt.Errorf("%w: %s.%s", fit.ErrUnknownParameter, component, name)
}

// SetPars applies settings in index order. A blank delta keeps the
// frozen flag; a negative one freezes.
func (m *Model) SetPars(settings map[int]fit.Setting) error {
	m.engine.mu.Lock()
	defer m.engine.mu.Unlock()

	for idx := range settings {
		if idx < 1 || idx > len(m.params) {
			return fmt.Errorf("%w: index %d", fit.ErrUnknownParameter, idx)
		}
	}
	for _, idx := range slices.Sorted(maps.Keys(settings)) {
		s := settings[idx]
		if err := m.engine.record("SetPars", fmt.Sprintf("newpar %d %s", idx, s)); err != nil {
			return err
		}
		p := &m.params[idx-1]
		p.Value = s.Value
		if !math.IsNaN(s.Delta) {
			p.Frozen = s.Freezes()
		}
	}
	return nil
}

// SetFrozen freezes or thaws parameter index.
func (m *Model) SetFrozen(index int, frozen bool) error {
	m.engine.mu.Lock()
	defer m.engine.mu.Unlock()

	if index < 1 || index > len(m.params) {
		return fmt.Errorf("%w: index %d", fit.ErrUnknownParameter, index)
	}
	call := "thaw"
	if frozen {
		call = "freeze"
	}
	if err := m.engine.record("SetFrozen", fmt.Sprintf("%s %d", call, index)); err != nil {
		return err
	}
	m.params[index-1].Frozen = frozen
	return nil
}
