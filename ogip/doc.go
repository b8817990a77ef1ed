// Package ogip reads, reduces and writes OGIP rate files: time-binned
// detector count rates with statistical and systematic errors, livetime and
// channel identifiers.
//
// The central operation is Reduce, which collapses the rows of a RateTable
// falling in a half-open window [start, end) into a single averaged
// spectrum that a spectral-fitting engine can load:
//
//   - RATE, STAT_ERR and SYS_ERR are averaged per channel
//   - Exposure is the sum of TIMEDEL*LIVETIME over the selected rows
//   - TIMEDEL of the output row is the summed bin duration
//   - TSTARTI/TSTARTF/TSTOPI/TSTOPF carry the requested window in MJD
//
// Some files store TIME as seconds from a reference epoch instead of MJD.
// Reduce detects this (see TimeOrigin) and rebuilds absolute times from the
// MJDREF and TIMEZERO header keywords before selecting rows.
//
// # Usage
//
//	f, err := ogip.ReadFile("spectrogram.fits")
//	spec, hdr, err := ogip.Reduce(f.Rate, f.RateHeader,
//		"2022-07-23T12:20:00", "2022-07-23T12:25:00")
//	err = ogip.WriteSpectrum("window.fits", f, spec, hdr)
package ogip
