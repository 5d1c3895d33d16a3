// Package cli wires the stuart subcommands to kong.
//
// Global flags configure logging (--log-*) and, when built with the pprof
// tag, profiling (--pprof-*). Flag defaults may be set in
// $XDG_CONFIG_HOME/stuart/config.yml, or the JSON file config.yml.json
// beside it:
//
//	log_level: debug
//	build:
//	  progress: true
//
// Keys under a command name apply to that command only. Flags given on the
// command line win over both files.
//
// Typical use:
//
//	stuart build -C ./blog --progress
//	stuart check --continue-on-error
//	stuart functions date
//	stuart fmt json content/index.html
package cli
