package common

import (
	"fmt"
	"strings"
)

// Version is stamped by the release build:
//
//	go build -ldflags "-X github.com/Alia5/luaexpose/internal/codegen/common.Version=x.y.z"
var Version = ""

const devVersion = "0.0.1-dev"

// GetVersion normalizes Version, dropping a leading "v". Unstamped builds
// report a dev version; a stamp without a dotted base is an error.
func GetVersion() (string, error) {
	if Version == "" {
		return devVersion, nil
	}
	v := strings.TrimPrefix(Version, "v")
	if base, _, _ := strings.Cut(v, "-"); !strings.Contains(base, ".") {
		return "", fmt.Errorf("invalid version format: %s (expected x.y.z)", Version)
	}
	return v, nil
}
