// Package version reports the release of the notary binaries and the
// transaction family versions they speak.
package version

import (
	"fmt"
	"strings"

	"github.com/mosaicnetworks/notary/src/notary"
)

// Flag contains extra info about the version, such as "rc1". It is empty for
// releases.
const Flag = ""

var (
	// Version is The full version string
	Version = "0.1.0"

	// GitCommit is set with --ldflags "-X github.com/mosaicnetworks/notary/src/version.GitCommit=$(git rev-parse HEAD)"
	GitCommit string
)

func init() {
	if Flag != "" {
		Version += "-" + Flag
	}

	if len(GitCommit) >= 8 {
		Version += "-" + GitCommit[:8]
	}
}

// Describe returns the release and the supported family versions, e.g.
// "0.1.0 (notary 1.0, 2.0)".
func Describe() string {
	return fmt.Sprintf("%s (%s %s)",
		Version,
		notary.FamilyName,
		strings.Join(notary.Versions(), ", "))
}
