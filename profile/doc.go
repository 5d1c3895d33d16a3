// Package profile provides optional runtime profiling through
// [github.com/pkg/profile].
//
// Profiling is compiled in only with the "pprof" build tag:
//
//	go build -tags pprof .
//	stuart --pprof-mode cpu build
//	go tool pprof -http=: ~/.cache/stuart/pprof/cpu.pprof
//
// Without the tag, [Modes] is empty and [Profiler.Start] does nothing. With
// it, importing the package also registers the net/http/pprof handlers.
package profile
