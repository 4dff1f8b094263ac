package release

type (
	// Sent to announce the number of fragments to assemble.
	EventSetFragmentTotal int

	// Sent when a fragment has been folded into the release.
	EventAddedFragment struct {
		Err  error
		Name string
	}

	// Sent when the build has finished, or when a fatal error occurs.
	EventDone struct {
		Err     error
		Version string
	}
)
