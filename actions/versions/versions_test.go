package versions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/PiotrWarzachowski/blue-launcher/internal/platform/minecraft"
)

func TestFormatEntry(t *testing.T) {
	v := minecraft.VersionManifestEntry{
		ID:          "1.20.1",
		Type:        "release",
		ReleaseTime: time.Date(2023, 6, 12, 13, 25, 51, 0, time.UTC),
	}

	line := formatEntry(v, true)
	require.Contains(t, line, "1.20.1")
	require.Contains(t, line, colorGreen+"release")
	require.Contains(t, line, "2023-06-12")
	require.Contains(t, line, "✓")

	require.NotContains(t, formatEntry(v, false), "✓")
}
