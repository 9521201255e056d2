package minecraft

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplies(t *testing.T) {
	windows := Platform{OS: "windows", Arch: "x86_64"}
	linux := Platform{OS: "linux", Arch: "x86_64"}
	osx := Platform{OS: "osx", Arch: "arm64"}

	allowExceptWindows := []Rule{
		{Action: ActionAllow},
		{Action: ActionDisallow, OS: &OSRule{Name: "windows"}},
	}

	tests := []struct {
		name  string
		rules []Rule
		p     Platform
		want  bool
	}{
		{"no rules", nil, linux, true},
		{"generic allow", []Rule{{Action: ActionAllow}}, windows, true},
		{"generic disallow", []Rule{{Action: ActionDisallow}}, linux, false},
		{"allow then disallow current os", allowExceptWindows, windows, false},
		{"allow then disallow other os", allowExceptWindows, linux, true},
		{"os specific allow only", []Rule{{Action: ActionAllow, OS: &OSRule{Name: "osx"}}}, osx, true},
		{"os specific allow other os", []Rule{{Action: ActionAllow, OS: &OSRule{Name: "osx"}}}, linux, false},
		{
			"later generic overrides earlier specific",
			[]Rule{
				{Action: ActionDisallow, OS: &OSRule{Name: "linux"}},
				{Action: ActionAllow},
			},
			linux, true,
		},
		{
			"arch mismatch does not match",
			[]Rule{{Action: ActionAllow, OS: &OSRule{Name: "osx", Arch: "x86_64"}}},
			osx, false,
		},
		{
			"feature rules never match",
			[]Rule{{Action: ActionAllow, Features: map[string]bool{"is_demo_user": true}}},
			linux, false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Applies(tt.rules, tt.p))
		})
	}
}

func TestApplies_GenericAllowWithoutOSRules(t *testing.T) {
	for _, os := range []string{"windows", "osx", "linux", "freebsd"} {
		require.True(t, Applies([]Rule{{Action: ActionAllow}}, Platform{OS: os}), os)
	}
}

func TestCurrentPlatformNames(t *testing.T) {
	require.Equal(t, "osx", osName("darwin"))
	require.Equal(t, "linux", osName("linux"))
	require.Equal(t, "x86", archName("386"))
	require.Equal(t, "x86_64", archName("amd64"))
	require.Equal(t, "arm64", archName("arm64"))
	require.NotEmpty(t, CurrentPlatform().OS)
}
