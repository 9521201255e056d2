package login

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/PiotrWarzachowski/blue-launcher/internal/platform/microsoft"
)

type scriptedPoller struct {
	results []func() (*microsoft.PollResult, error)
	calls   int
}

func (p *scriptedPoller) Poll(ctx context.Context, s *microsoft.DeviceAuthorizationSession) (*microsoft.PollResult, error) {
	f := p.results[p.calls]
	p.calls++
	return f()
}

func pending() (*microsoft.PollResult, error) { return &microsoft.PollResult{Pending: true}, nil }

func TestWaitForApproval_CompletesAfterPending(t *testing.T) {
	acc := &microsoft.Account{Profile: microsoft.PlayerProfile{Name: "Notch"}}
	p := &scriptedPoller{results: []func() (*microsoft.PollResult, error){
		pending,
		func() (*microsoft.PollResult, error) { return nil, errors.New("connection reset") },
		pending,
		func() (*microsoft.PollResult, error) { return &microsoft.PollResult{Account: acc}, nil },
	}}

	got, err := waitForApproval(context.Background(), p, &microsoft.DeviceAuthorizationSession{}, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, acc, got)
	require.Equal(t, 4, p.calls)
}

func TestWaitForApproval_Deadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	p := &scriptedPoller{}
	for i := 0; i < 1000; i++ {
		p.results = append(p.results, func() (*microsoft.PollResult, error) {
			time.Sleep(time.Millisecond)
			return pending()
		})
	}

	_, err := waitForApproval(ctx, p, &microsoft.DeviceAuthorizationSession{}, zap.NewNop())
	require.ErrorIs(t, err, microsoft.ErrExpired)
}

func TestWaitForApproval_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := waitForApproval(ctx, &scriptedPoller{}, &microsoft.DeviceAuthorizationSession{}, zap.NewNop())
	require.ErrorIs(t, err, context.Canceled)
}

func TestDescribeAuthError(t *testing.T) {
	require.Contains(t, describeAuthError(microsoft.ErrExpired), "expired")
	require.Contains(t, describeAuthError(microsoft.ErrNoEntitlement), "does not own Minecraft")
	require.Contains(t,
		describeAuthError(&microsoft.AuthError{Reason: microsoft.ReasonXSTSDenied, Description: "child account"}),
		"child account",
	)
	require.Equal(t, "boom", describeAuthError(errors.New("boom")))
}

func TestOpenBrowser(t *testing.T) {
	var opened string
	orig := openURL
	openURL = func(url string) error {
		opened = url
		return nil
	}
	t.Cleanup(func() { openURL = orig })

	require.NoError(t, openBrowser("https://www.microsoft.com/link"))
	require.Equal(t, "https://www.microsoft.com/link", opened)
}
