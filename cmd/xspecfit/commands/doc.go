// Package commands defines the xspecfit CLI.
//
// Commands
//
//   - reduce   Average the rows of a rate file over a time window
//   - times    Print the absolute time axis of a rate file
//   - fit      Run the staged thermal plus non-thermal fit
//
// # Implementation
//
// The root command loads the YAML configuration, builds the logger and the
// metrics registry before any subcommand runs, and writes the metrics
// textfile after it returns.
package commands
