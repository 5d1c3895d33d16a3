package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`

// Profiler selects what to profile and where to write it.
type Profiler struct {
	// Mode is one of [Modes]. An empty or unknown mode disables profiling.
	Mode string
	// Path is the output directory. Empty uses a temporary directory.
	Path string
	// Quiet suppresses the profiler's own start and stop messages.
	Quiet bool
}

// Stopper ends a running profile and flushes it to disk.
type Stopper interface{ Stop() }

// Start begins profiling. Without the pprof build tag, or with no mode set,
// it returns a Stopper that does nothing. Stop is always safe to call.
func (p Profiler) Start() Stopper {
	if p.Mode == "" {
		return ignore{}
	}

	return start(p)
}

type ignore struct{}

func (ignore) Stop() {}
