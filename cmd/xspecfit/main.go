// Command xspecfit reduces time-resolved X-ray rate files to single spectra
// and fits them with XSPEC.
//
// Usage:
//
//	xspecfit reduce <rate.fits> --start <time> --end <time> [--out <file>]
//	xspecfit times <rate.fits>
//	xspecfit fit [data-spec ...] [--dry-run]
//
// Examples:
//
//	xspecfit times stx_spectrum_20220723_122031.fits
//	xspecfit reduce stx_spectrum.fits --start 2022-07-23T12:20:00 --end 2022-07-23T12:25:00
//	xspecfit fit "1:1 stx_spectrum_122000-122500.fits" --nonthermal thick2
//	xspecfit fit --dry-run --log-level debug
package main

import (
	"os"

	"github.com/cwbudde/algo-xspec/cmd/xspecfit/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
