// Package fit drives a staged spectral fit on an external fitting engine.
//
// The engine (XSPEC or a stand-in) is reached only through the Engine and
// Model interfaces. Engines keep process-wide state, so every run happens
// inside a Session, which grants exclusive access to one engine:
//
//	s, err := fit.OpenSession(engine)
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//
//	o, err := fit.NewOrchestrator(fit.DefaultConfig())
//	res, err := o.Run(s)
//
// The thermal component is fitted first over the low-energy band, then
// frozen while the non-thermal component is fitted over the high-energy
// band, and finally both are fitted jointly. Break energies are found by
// ResolveBreak, which knows the "BreakE" convention of broken power laws
// and the "eebrk"/"eelow" pair of thick-target models.
//
// Engine non-convergence is not an error: the returned Statistic is left
// for the caller to judge.
package fit
