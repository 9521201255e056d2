package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PiotrWarzachowski/blue-launcher/internal/platform/microsoft"
)

func testAccount() *microsoft.Account {
	return &microsoft.Account{
		Tokens: microsoft.TokenSet{
			IdentityToken:        "ms",
			XboxLiveToken:        "xbl",
			XSTSToken:            "xsts",
			XSTSUserHash:         "uhs",
			MinecraftAccessToken: "mc-secret-token",
		},
		Profile: microsoft.PlayerProfile{ID: "069a79f444e94726a5befca90e38aaf5", Name: "Notch"},
	}
}

func TestSaveLoadAccount(t *testing.T) {
	s, err := NewStorage(t.TempDir())
	require.NoError(t, err)
	require.False(t, s.HasAccount())

	loaded, err := s.LoadAccount()
	require.NoError(t, err)
	require.Nil(t, loaded)

	require.NoError(t, s.SaveAccount(testAccount()))
	require.True(t, s.HasAccount())

	loaded, err = s.LoadAccount()
	require.NoError(t, err)
	require.Equal(t, testAccount(), loaded.Account())
	require.False(t, loaded.SavedAt.IsZero())

	raw, err := os.ReadFile(filepath.Join(s.GetBasePath(), AccountFile))
	require.NoError(t, err)
	require.NotContains(t, string(raw), "mc-secret-token")
}

func TestSaveAccount_RejectsPartialTokens(t *testing.T) {
	s, err := NewStorage(t.TempDir())
	require.NoError(t, err)

	acc := testAccount()
	acc.Tokens.MinecraftAccessToken = ""
	require.Error(t, s.SaveAccount(acc))
	require.Error(t, s.SaveAccount(nil))
	require.False(t, s.HasAccount())
}

func TestKeyIsReused(t *testing.T) {
	dir := t.TempDir()
	first, err := NewStorage(dir)
	require.NoError(t, err)
	require.NoError(t, first.SaveAccount(testAccount()))

	second, err := NewStorage(dir)
	require.NoError(t, err)
	loaded, err := second.LoadAccount()
	require.NoError(t, err)
	require.Equal(t, "Notch", loaded.Profile.Name)
}

func TestLoadAccount_WrongKey(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStorage(dir)
	require.NoError(t, err)
	require.NoError(t, s.SaveAccount(testAccount()))

	require.NoError(t, os.WriteFile(filepath.Join(dir, KeyFile), make([]byte, 32), 0600))
	other, err := NewStorage(dir)
	require.NoError(t, err)

	_, err = other.LoadAccount()
	require.Error(t, err)
}

func TestDeleteAccount(t *testing.T) {
	s, err := NewStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.DeleteAccount())
	require.NoError(t, s.SaveAccount(testAccount()))
	require.NoError(t, s.DeleteAccount())
	require.False(t, s.HasAccount())
}
