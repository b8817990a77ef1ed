package fit

import "slices"

// BreakKind tags a BreakConvention.
type BreakKind int

const (
	// BreakNone means the component has no break energy.
	BreakNone BreakKind = iota
	// BreakSingle is one break-energy parameter (broken power laws).
	BreakSingle
	// BreakLowAndBreak is a low-energy cutoff plus break energy pair
	// (thick-target bremsstrahlung models).
	BreakLowAndBreak
	// BreakWithoutLow is a pair-convention break energy whose low-energy
	// cutoff is missing. The break is seeded but never released.
	BreakWithoutLow
)

func (k BreakKind) String() string {
	switch k {
	case BreakSingle:
		return "single"
	case BreakLowAndBreak:
		return "low+break"
	case BreakWithoutLow:
		return "break only"
	default:
		return "none"
	}
}

// Parameter names of the known break conventions.
const (
	SingleBreakName = "BreakE"
	PairBreakName   = "eebrk"
	PairLowName     = "eelow"
)

// BreakConvention names the break-energy parameters of a non-thermal
// component.
type BreakConvention struct {
	Kind  BreakKind
	Break string
	Low   string
}

// Single is the one-parameter convention.
func Single(name string) BreakConvention {
	return BreakConvention{Kind: BreakSingle, Break: name}
}

// LowAndBreak is the two-parameter convention.
func LowAndBreak(low, brk string) BreakConvention {
	return BreakConvention{Kind: BreakLowAndBreak, Break: brk, Low: low}
}

// BreakOnly is the pair convention without its low-energy parameter.
func BreakOnly(brk string) BreakConvention {
	return BreakConvention{Kind: BreakWithoutLow, Break: brk}
}

// NoBreak is the convention of components without a break energy.
func NoBreak() BreakConvention {
	return BreakConvention{}
}

// Resolved reports whether a break parameter was found.
func (c BreakConvention) Resolved() bool { return c.Kind != BreakNone }

// Releasable reports whether the break is fitted free after its frozen
// first pass.
func (c BreakConvention) Releasable() bool {
	return c.Kind == BreakSingle || c.Kind == BreakLowAndBreak
}

// ResolveBreak picks the break convention from a component's declared
// parameter names: "BreakE" first, then the "eebrk"/"eelow" pair. An
// "eebrk" without "eelow" is still seeded but not released.
func ResolveBreak(names []string) BreakConvention {
	if slices.Contains(names, SingleBreakName) {
		return Single(SingleBreakName)
	}
	if !slices.Contains(names, PairBreakName) {
		return NoBreak()
	}
	if slices.Contains(names, PairLowName) {
		return LowAndBreak(PairLowName, PairBreakName)
	}
	return BreakOnly(PairBreakName)
}
