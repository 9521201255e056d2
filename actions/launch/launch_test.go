package launch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PiotrWarzachowski/blue-launcher/internal/platform/minecraft"
)

func TestRedact(t *testing.T) {
	args := []string{"--username", "Notch", "--accessToken", "secret", "--userType", "msa"}

	got := redact(args)
	require.Equal(t, []string{"--username", "Notch", "--accessToken", "***", "--userType", "msa"}, got)
	require.Equal(t, "secret", args[3])
}

func TestDescribeLaunchError(t *testing.T) {
	require.Contains(t, describeLaunchError(&minecraft.LaunchError{Reason: minecraft.ReasonRuntimeMissing, Message: "java"}), "--java")
	require.Contains(t, describeLaunchError(&minecraft.LaunchError{Reason: minecraft.ReasonVersionNotInstalled, Message: "9.99.9"}), "9.99.9")
	require.Contains(t, describeLaunchError(minecraft.ErrCredentialsInvalid), "login")

	unreadable := describeLaunchError(&minecraft.LaunchError{Reason: minecraft.ReasonCredentialsInvalid, Message: "stored account is unreadable"})
	require.Contains(t, unreadable, "stored account is unreadable")
	require.Contains(t, unreadable, "login")
	require.NotContains(t, describeLaunchError(minecraft.ErrCredentialsInvalid), "()")
	require.Equal(t, "disk full", describeLaunchError(errors.New("disk full")))
}

func TestCLIReporter_FinishWithIncompleteBars(t *testing.T) {
	r := NewCLIReporter(context.Background())
	r.Report(minecraft.ProgressReport{Type: minecraft.ProgressVersion, Step: minecraft.StepInit})
	r.Report(minecraft.ProgressReport{Type: minecraft.ProgressLibraries, Step: minecraft.StepInit, Total: 3})
	r.Report(minecraft.ProgressReport{Type: minecraft.ProgressLibraries, Step: minecraft.StepFetch, Current: 1, Total: 3})
	r.Report(minecraft.ProgressReport{Type: minecraft.ProgressClient, Step: minecraft.StepInit, Total: 1})
	r.Report(minecraft.ProgressReport{Type: minecraft.ProgressClient, Step: minecraft.StepDone, Total: 1})

	require.Len(t, r.bars, 2)
	r.Finish()
}
