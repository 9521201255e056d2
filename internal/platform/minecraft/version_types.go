package minecraft

import (
	"errors"
	"fmt"
	"time"
)

// ErrVersionNotFound is matched by a ResolutionError for an id that is
// absent from the live manifest.
var ErrVersionNotFound = errors.New("version not found in manifest")

type ResolutionError struct {
	VersionID string
	Err       error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve version %q: %v", e.VersionID, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

type VersionManifest struct {
	Latest struct {
		Release  string `json:"release"`
		Snapshot string `json:"snapshot"`
	} `json:"latest"`
	Versions []VersionManifestEntry `json:"versions"`
}

// VersionManifestEntry is one row of the remote catalog. URL points at the
// version descriptor document.
type VersionManifestEntry struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	URL         string    `json:"url"`
	ReleaseTime time.Time `json:"releaseTime"`
}

type VersionDescriptor struct {
	ID         string        `json:"id"`
	Type       string        `json:"type"`
	MainClass  string        `json:"mainClass"`
	Assets     string        `json:"assets"`
	AssetIndex AssetIndexRef `json:"assetIndex"`
	Downloads  struct {
		Client Artifact `json:"client"`
	} `json:"downloads"`
	Libraries []Library `json:"libraries"`
}

type AssetIndexRef struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	SHA1      string `json:"sha1"`
	Size      int64  `json:"size"`
	TotalSize int64  `json:"totalSize"`
}

// Artifact is anything downloadable: a library jar or the client archive.
// Path is relative to the libraries directory and empty for the client.
type Artifact struct {
	Path string `json:"path,omitempty"`
	SHA1 string `json:"sha1"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

// Library is one classpath dependency. No rules means always included.
type Library struct {
	Name      string `json:"name"`
	Downloads struct {
		Artifact *Artifact `json:"artifact,omitempty"`
	} `json:"downloads"`
	Rules []Rule `json:"rules,omitempty"`
}

type RuleAction string

const (
	ActionAllow    RuleAction = "allow"
	ActionDisallow RuleAction = "disallow"
)

type Rule struct {
	Action   RuleAction      `json:"action"`
	OS       *OSRule         `json:"os,omitempty"`
	Features map[string]bool `json:"features,omitempty"`
}

type OSRule struct {
	Name string `json:"name,omitempty"`
	Arch string `json:"arch,omitempty"`
}

// AssetIndex maps logical asset names to content-addressed objects.
type AssetIndex struct {
	Objects map[string]AssetObject `json:"objects"`
}

type AssetObject struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}
