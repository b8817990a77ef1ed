package fit

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrUnknownComponent is returned for a component name the model does not contain.
	ErrUnknownComponent = errors.New("fit: unknown model component")
	// ErrUnknownParameter is returned for a parameter name the component does not declare.
	ErrUnknownParameter = errors.New("fit: unknown parameter")
)

// Engine is the external spectral-fitting engine. Implementations hold
// process-wide state (loaded data, active model), so calls must not be
// interleaved between runs; see Session.
type Engine interface {
	SetAbundance(table string) error
	SetStatMethod(method string) error
	SetQuery(policy string) error
	SetIterations(n int) error
	// ClearModels removes every model; Model values obtained earlier
	// must not be used afterwards.
	ClearModels() error
	NewModel(expr string) (Model, error)
	// Ignore masks channels; ranges use the engine's energy syntax,
	// e.g. "0.-2 10-**".
	Ignore(ranges string) error
	NoticeAll() error
	Renorm() error
	// Perform runs the fit. Non-convergence is reported through the
	// returned statistic, not as an error.
	Perform() (Statistic, error)
}

// Model is a model expression loaded in an Engine.
type Model interface {
	Expression() string
	ComponentNames() []string
	// ParameterNames returns the declared parameter names of a component
	// in order, normalization included.
	ParameterNames(component string) ([]string, error)
	Parameter(component, name string) (Parameter, error)
	// SetPars assigns parameters by their model-wide 1-based index.
	SetPars(settings map[int]Setting) error
	SetFrozen(index int, frozen bool) error
}

// Parameter is a snapshot of one model parameter.
type Parameter struct {
	Component string
	Name      string
	Unit      string
	Index     int
	Value     float64
	Sigma     float64
	Frozen    bool
	Error     ErrorBounds
}

// Statistic is the outcome of a fit.
type Statistic struct {
	Method  string
	Value   float64
	DOF     int
	NullHyp float64
}

func (s Statistic) String() string {
	method := s.Method
	if method != "" {
		method = strings.ToUpper(method[:1]) + method[1:]
	}
	return fmt.Sprintf("%s %.3f, null hypothesis probability %.2e with %d degrees of freedom",
		method, s.Value, s.NullHyp, s.DOF)
}

// Setting is a parameter assignment in the engine's six-field syntax
// "value delta,min,bot,top,max". NaN fields are left blank so the engine
// keeps its current value for them. A negative delta freezes the
// parameter.
type Setting struct {
	Value float64
	Delta float64
	Min   float64
	Bot   float64
	Top   float64
	Max   float64
}

// NewSetting returns a Setting with all limits blank.
func NewSetting(value, delta float64) Setting {
	nan := math.NaN()
	return Setting{Value: value, Delta: delta, Min: nan, Bot: nan, Top: nan, Max: nan}
}

// WithTop returns a copy of s with the soft upper limit set.
func (s Setting) WithTop(top float64) Setting {
	s.Top = top
	return s
}

// Freezes reports whether applying s freezes the parameter.
func (s Setting) Freezes() bool {
	return s.Delta < 0
}

func (s Setting) String() string {
	fields := []string{
		formatField(s.Delta), formatField(s.Min), formatField(s.Bot),
		formatField(s.Top), formatField(s.Max),
	}
	for len(fields) > 0 && fields[len(fields)-1] == "" {
		fields = fields[:len(fields)-1]
	}
	if len(fields) == 0 {
		return formatField(s.Value)
	}
	return formatField(s.Value) + " " + strings.Join(fields, ",")
}

func formatField(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
