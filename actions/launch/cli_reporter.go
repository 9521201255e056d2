package launch

import (
	"context"
	"fmt"
	"sync"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"go.uber.org/zap"

	"github.com/PiotrWarzachowski/blue-launcher/internal/platform/minecraft"
)

// Reporter is a minecraft.ProgressReporter the command waits on before
// printing its summary.
type Reporter interface {
	minecraft.ProgressReporter
	Finish()
}

// CLIReporter draws one bar per download phase.
type CLIReporter struct {
	progress *mpb.Progress
	mu       sync.Mutex
	bars     map[minecraft.ProgressType]*mpb.Bar
}

func NewCLIReporter(ctx context.Context) *CLIReporter {
	return &CLIReporter{
		progress: mpb.NewWithContext(ctx, mpb.WithWidth(60)),
		bars:     make(map[minecraft.ProgressType]*mpb.Bar),
	}
}

var phaseLabels = map[minecraft.ProgressType]string{
	minecraft.ProgressClient:    "🎮 Client",
	minecraft.ProgressLibraries: "📚 Libraries",
	minecraft.ProgressAssets:    "🎨 Assets",
	minecraft.ProgressMods:      "🧩 Mod",
}

func percentPhase(t minecraft.ProgressType) bool {
	return t == minecraft.ProgressClient || t == minecraft.ProgressMods
}

func (r *CLIReporter) Report(p minecraft.ProgressReport) {
	r.mu.Lock()
	defer r.mu.Unlock()

	label, ok := phaseLabels[p.Type]
	if !ok {
		return
	}

	bar := r.bars[p.Type]
	if p.Step == minecraft.StepInit && bar == nil {
		total := int64(p.Total)
		counter := decor.CountersNoUnit("%d / %d", decor.WCSyncSpace)
		if percentPhase(p.Type) {
			total = 100
			counter = decor.Percentage(decor.WCSyncSpace)
		}
		r.bars[p.Type] = r.progress.AddBar(total,
			mpb.PrependDecorators(
				decor.Name(fmt.Sprintf("%-14s", label), decor.WCSyncSpaceR),
				counter,
			),
			mpb.AppendDecorators(
				decor.OnComplete(
					decor.AverageETA(decor.ET_STYLE_GO), "✨ Done!",
				),
			),
		)
		return
	}

	if bar == nil {
		return
	}

	switch p.Step {
	case minecraft.StepPercent:
		bar.SetCurrent(int64(p.Percent))
	case minecraft.StepFetch:
		bar.SetCurrent(int64(p.Current))
	case minecraft.StepDone:
		if percentPhase(p.Type) {
			bar.SetCurrent(100)
		} else {
			bar.SetCurrent(int64(p.Total))
		}
	}
}

// Finish aborts bars left incomplete by a failed phase, then waits for the
// final render.
func (r *CLIReporter) Finish() {
	r.mu.Lock()
	for _, bar := range r.bars {
		if !bar.Completed() {
			bar.Abort(false)
		}
	}
	r.mu.Unlock()

	r.progress.Wait()
}

// LogReporter is used when stdout is not a terminal.
type LogReporter struct {
	logger *zap.Logger
}

func NewLogReporter(logger *zap.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

func (r *LogReporter) Report(p minecraft.ProgressReport) {
	switch p.Step {
	case minecraft.StepInit, minecraft.StepDone:
		r.logger.Info("progress",
			zap.String("phase", string(p.Type)),
			zap.String("step", p.Step),
			zap.Int("current", p.Current),
			zap.Int("total", p.Total),
			zap.String("message", p.Message),
		)
	}
}

func (r *LogReporter) Finish() {}
