package version

import (
	"errors"
	"fmt"
)

// Configuration format version understood by this build.
const (
	ConfigMajor    = 2
	ConfigMinor    = 10
	ConfigRevision = 0
)

const (
	maxMajor    = 99
	maxMinor    = 99
	maxRevision = 9999
	maxPacked   = 99_999_999

	majorFactor = 1_000_000
	minorFactor = 10_000
)

// ErrOutOfRange is returned when a component or packed value cannot be
// represented.
var ErrOutOfRange = errors.New("version out of range")

// Current is the packed configuration version written by this build.
var Current = MustBuild(ConfigMajor, ConfigMinor, ConfigRevision)

// Build packs a three-part version into one integer:
// major*1_000_000 + minor*10_000 + revision.
func Build(major, minor, revision int) (int, error) {
	if major < 0 || major > maxMajor {
		return 0, fmt.Errorf("%w: major %d not in [0, %d]", ErrOutOfRange, major, maxMajor)
	}
	if minor < 0 || minor > maxMinor {
		return 0, fmt.Errorf("%w: minor %d not in [0, %d]", ErrOutOfRange, minor, maxMinor)
	}
	if revision < 0 || revision > maxRevision {
		return 0, fmt.Errorf("%w: revision %d not in [0, %d]", ErrOutOfRange, revision, maxRevision)
	}
	return major*majorFactor + minor*minorFactor + revision, nil
}

// MustBuild is Build for constants. It panics on invalid input.
func MustBuild(major, minor, revision int) int {
	v, err := Build(major, minor, revision)
	if err != nil {
		panic(err)
	}
	return v
}

// Split is the exact inverse of Build.
func Split(v int) (major, minor, revision int, err error) {
	if v < 0 || v > maxPacked {
		return 0, 0, 0, fmt.Errorf("%w: packed version %d not in [0, %d]", ErrOutOfRange, v, maxPacked)
	}
	major = v / majorFactor
	minor = (v % majorFactor) / minorFactor
	revision = v % minorFactor
	return major, minor, revision, nil
}

// String formats a packed version as "major.minor.revision".
func String(v int) string {
	major, minor, revision, err := Split(v)
	if err != nil {
		return fmt.Sprintf("invalid(%d)", v)
	}
	return fmt.Sprintf("%d.%d.%d", major, minor, revision)
}

// Compatible reports whether v shares major and minor with Current.
// Revisions never change the format.
func Compatible(v int) bool {
	major, minor, _, err := Split(v)
	if err != nil {
		return false
	}
	return major == ConfigMajor && minor == ConfigMinor
}
