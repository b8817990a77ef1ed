package fake

// ParamSpec declares a component parameter.
type ParamSpec struct {
	Name   string
	Unit   string
	Value  float64
	Frozen bool
}

// Component declares a model component.
type Component struct {
	Name   string
	Params []ParamSpec
}

// DefaultCatalog returns the components the engine knows out of the box,
// with the parameter layouts of their XSPEC counterparts.
func DefaultCatalog() []Component {
	return []Component{
		{Name: "apec", Params: []ParamSpec{
			{Name: "kT", Unit: "keV", Value: 1},
			{Name: "Abundanc", Value: 1, Frozen: true},
			{Name: "Redshift", Value: 0, Frozen: true},
			{Name: "norm", Value: 1},
		}},
		{Name: "vth", Params: []ParamSpec{
			{Name: "kT", Unit: "keV", Value: 1.5},
			{Name: "abund", Value: 1, Frozen: true},
			{Name: "norm", Value: 1},
		}},
		{Name: "bknpower", Params: []ParamSpec{
			{Name: "PhoIndx1", Value: 1},
			{Name: "BreakE", Unit: "keV", Value: 5},
			{Name: "PhoIndx2", Value: 2},
			{Name: "norm", Value: 1},
		}},
		{Name: "thick2", Params: []ParamSpec{
			{Name: "p", Value: 4},
			{Name: "eebrk", Unit: "keV", Value: 150, Frozen: true},
			{Name: "q", Value: 6, Frozen: true},
			{Name: "eelow", Unit: "keV", Value: 20},
			{Name: "eehigh", Unit: "keV", Value: 32000, Frozen: true},
			{Name: "norm", Value: 1},
		}},
		{Name: "powerlaw", Params: []ParamSpec{
			{Name: "PhoIndex", Value: 1},
			{Name: "norm", Value: 1},
		}},
	}
}
