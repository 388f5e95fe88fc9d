package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

// Build metadata of the binary embedding reqmw, set with -ldflags -X.
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// ModulePath is the import path of this library, used to find its own
// version among the binary's dependencies.
const ModulePath = "github.com/kbukum/reqmw"

const shortCommitLen = 7

// readBuildInfo is replaced in tests.
var readBuildInfo = debug.ReadBuildInfo

// Info describes the running binary and the reqmw release linked into it.
type Info struct {
	Version   string    `json:"version"`
	GitCommit string    `json:"git_commit"`
	BuildTime string    `json:"build_time"`
	BuildDate time.Time `json:"build_date"`
	GoVersion string    `json:"go_version"`
	IsRelease bool      `json:"is_release"`
	IsDirty   bool      `json:"is_dirty"`
	// Library is the reqmw module version, empty when built from a checkout.
	Library string `json:"library,omitempty"`
}

// GetVersionInfo merges the -ldflags variables with the build info stamped
// by the Go toolchain. Explicit variables win over VCS settings.
func GetVersionInfo() *Info {
	info := &Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		IsRelease: Version != "dev" && !strings.Contains(Version, "dirty"),
	}
	if bi, ok := readBuildInfo(); ok {
		info.applyBuildInfo(bi)
	}
	if info.BuildTime != "" {
		if t, err := time.Parse(time.RFC3339, info.BuildTime); err == nil {
			info.BuildDate = t
		}
	}
	if len(info.GitCommit) > shortCommitLen {
		info.GitCommit = info.GitCommit[:shortCommitLen]
	}
	return info
}

func (info *Info) applyBuildInfo(bi *debug.BuildInfo) {
	info.GoVersion = bi.GoVersion
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = s.Value
			}
		case "vcs.time":
			if info.BuildTime == "" {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			info.IsDirty = s.Value == "true"
		}
	}

	mod := &bi.Main
	for _, dep := range bi.Deps {
		if dep.Path == ModulePath {
			mod = dep
			if dep.Replace != nil {
				mod = dep.Replace
			}
			break
		}
	}
	if mod.Path == ModulePath && mod.Version != "(devel)" {
		info.Library = mod.Version
	}
}

// GetShortVersion returns Version with the short commit appended when known,
// e.g. "1.4.0-abc1234" or "1.4.0-abc1234-dirty".
func GetShortVersion() string {
	info := GetVersionInfo()
	if info.GitCommit == "" {
		return info.Version
	}
	if info.IsDirty {
		return fmt.Sprintf("%s-%s-dirty", info.Version, info.GitCommit)
	}
	return fmt.Sprintf("%s-%s", info.Version, info.GitCommit)
}

// UserAgent builds a User-Agent such as "billing-client/1.4.0 reqmw/v0.3.0".
// An empty ver falls back to GetShortVersion; the reqmw token carries a
// version only when the library was linked as a released module. Without a
// product the result is "reqmw/<ver>".
func UserAgent(product, ver string) string {
	if ver == "" {
		ver = GetShortVersion()
	}
	lib := "reqmw"
	if v := GetVersionInfo().Library; v != "" {
		lib += "/" + v
	}
	if product == "" {
		return "reqmw/" + ver
	}
	return product + "/" + ver + " " + lib
}
