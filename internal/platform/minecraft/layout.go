package minecraft

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsafePath is returned for remote-supplied names that would resolve
// outside the game directory.
var ErrUnsafePath = errors.New("path escapes game directory")

const (
	VersionsDir  = "versions"
	LibrariesDir = "libraries"
	AssetsDir    = "assets"
	IndexesDir   = "indexes"
	ObjectsDir   = "objects"
	NativesDir   = "natives"
	ModsDir      = "mods"
)

// Layout names every path inside the game directory.
type Layout struct {
	Root string
}

func (l Layout) VersionDir(id string) string {
	return filepath.Join(l.Root, VersionsDir, id)
}

func (l Layout) DescriptorPath(id string) string {
	return filepath.Join(l.VersionDir(id), id+".json")
}

func (l Layout) ClientPath(id string) string {
	return filepath.Join(l.VersionDir(id), id+".jar")
}

func (l Layout) NativesPath(id string) string {
	return filepath.Join(l.VersionDir(id), NativesDir)
}

func (l Layout) LibraryPath(rel string) string {
	return filepath.Join(l.Root, LibrariesDir, filepath.FromSlash(rel))
}

func (l Layout) AssetsPath() string {
	return filepath.Join(l.Root, AssetsDir)
}

func (l Layout) AssetIndexPath(id string) string {
	return filepath.Join(l.AssetsPath(), IndexesDir, id+".json")
}

// SafeLibraryPath is LibraryPath for a path taken from a descriptor. Absolute
// paths and paths leaving the libraries directory are rejected.
func (l Layout) SafeLibraryPath(rel string) (string, error) {
	if rel == "" || filepath.IsAbs(rel) || strings.HasPrefix(rel, "/") || filepath.VolumeName(rel) != "" {
		return "", fmt.Errorf("library %q: %w", rel, ErrUnsafePath)
	}

	base := filepath.Join(l.Root, LibrariesDir)
	path := l.LibraryPath(rel)
	out, err := filepath.Rel(base, path)
	if err != nil || out == "." || out == ".." || strings.HasPrefix(out, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("library %q: %w", rel, ErrUnsafePath)
	}
	return path, nil
}

func (l Layout) ModsPath() string {
	return filepath.Join(l.Root, ModsDir)
}

// ValidAssetHash reports whether hash is a 40-character lowercase hex SHA-1.
func ValidAssetHash(hash string) bool {
	if len(hash) != 40 {
		return false
	}
	for i := 0; i < len(hash); i++ {
		c := hash[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// AssetObjectPath shards objects by the first two hex characters of their
// hash. Callers check the hash with ValidAssetHash first.
func (l Layout) AssetObjectPath(hash string) string {
	return filepath.Join(l.AssetsPath(), ObjectsDir, hash[:2], hash)
}

// Ensure creates the top-level directory tree.
func (l Layout) Ensure() error {
	for _, dir := range []string{
		filepath.Join(l.Root, VersionsDir),
		filepath.Join(l.Root, LibrariesDir),
		filepath.Join(l.AssetsPath(), IndexesDir),
		filepath.Join(l.AssetsPath(), ObjectsDir),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Installed reports whether the descriptor and client archive of id are on disk.
func (l Layout) Installed(id string) bool {
	return exists(l.DescriptorPath(id)) && exists(l.ClientPath(id))
}
