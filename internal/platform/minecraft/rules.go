package minecraft

import "runtime"

// Platform is the os/arch pair rules are evaluated against, in the
// vocabulary version descriptors use ("windows", "osx", "linux").
type Platform struct {
	OS   string
	Arch string
}

func CurrentPlatform() Platform {
	return Platform{OS: osName(runtime.GOOS), Arch: archName(runtime.GOARCH)}
}

func osName(goos string) string {
	if goos == "darwin" {
		return "osx"
	}
	return goos
}

func archName(goarch string) string {
	switch goarch {
	case "386":
		return "x86"
	case "amd64":
		return "x86_64"
	}
	return goarch
}

// Applies walks the whole rule list and keeps the action of the last rule
// that matches p. An empty list always applies; a non-empty list starts from
// "not applicable".
func Applies(rules []Rule, p Platform) bool {
	if len(rules) == 0 {
		return true
	}

	allowed := false
	for _, r := range rules {
		if r.matches(p) {
			allowed = r.Action == ActionAllow
		}
	}
	return allowed
}

// AppliesTo reports whether the library belongs on p's classpath.
func (l Library) AppliesTo(p Platform) bool {
	return Applies(l.Rules, p)
}

// matches treats a rule without an os block as generic. Feature-gated rules
// never match since the launcher enables no optional features.
func (r Rule) matches(p Platform) bool {
	if len(r.Features) > 0 {
		return false
	}
	if r.OS == nil {
		return true
	}
	if r.OS.Name != "" && r.OS.Name != p.OS {
		return false
	}
	if r.OS.Arch != "" && r.OS.Arch != p.Arch {
		return false
	}
	return true
}
