package minecraft

type ProgressType string

const (
	ProgressVersion   ProgressType = "VERSION"
	ProgressClient    ProgressType = "CLIENT"
	ProgressLibraries ProgressType = "LIBRARIES"
	ProgressAssets    ProgressType = "ASSETS"
	ProgressLaunch    ProgressType = "LAUNCH"
	ProgressMods      ProgressType = "MODS"
)

const (
	StepInit    = "INIT"
	StepFetch   = "FETCH"
	StepPercent = "PERCENT"
	StepDone    = "DONE"
)

// ProgressReport is the data packet sent from the pipeline to the UI
type ProgressReport struct {
	Type    ProgressType
	Step    string
	Current int // items finished so far
	Total   int // items this phase has to fetch
	Percent int // single-file progress, StepPercent only
	Message string
}

// ProgressReporter receives reports from concurrent download workers, so
// implementations must be safe for concurrent use.
type ProgressReporter interface {
	Report(report ProgressReport)
}

type nopReporter struct{}

func (nopReporter) Report(ProgressReport) {}

func orNop(pr ProgressReporter) ProgressReporter {
	if pr == nil {
		return nopReporter{}
	}
	return pr
}
