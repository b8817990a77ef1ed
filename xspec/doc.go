// Package xspec implements fit.Engine on top of the XSPEC Tcl command
// interface.
//
// Commands are written one per line to the interpreter's standard input.
// Values are read back with "tclout" and printed with "puts", and every
// command is framed by a sentinel line so replies are separated from
// XSPEC's own output. Start spawns the interpreter; NewConn wraps any
// reader/writer pair, which is how the tests drive a scripted transcript.
//
//	e, err := xspec.Start(ctx, "xspec", nil)
//	if err != nil {
//		return err
//	}
//	defer e.Close()
//	err = e.LoadData("1:1 window.fits")
package xspec
