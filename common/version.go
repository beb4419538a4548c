package common

import "github.com/nspcc-dev/neo-go/pkg/interop/native/std"

// Contract version is encoded as major*1_000_000 + minor*1_000 + patch and
// must match the VERSION file.
const (
	major = 0
	minor = 2
	patch = 0

	// The oldest version the contract can be updated from. Storage of older
	// versions needs migration routines which don't exist.
	prevMajor = 0
	prevMinor = 1
	prevPatch = 0

	Version     = major*1_000_000 + minor*1_000 + patch
	PrevVersion = prevMajor*1_000_000 + prevMinor*1_000 + prevPatch

	// ErrVersionMismatch is thrown by CheckVersion on update from a version
	// older than PrevVersion.
	ErrVersionMismatch = "previous version mismatch"
	// ErrAlreadyUpdated is thrown by CheckVersion on update from the current
	// version.
	ErrAlreadyUpdated = "contract is already of the latest version"
)

// CheckVersion panics if the contract of the given version can't be updated
// to the current one.
func CheckVersion(from int) {
	switch {
	case from < PrevVersion:
		panic(ErrVersionMismatch + ": expected >=" + std.Itoa(PrevVersion, 10) + ", got " + std.Itoa(from, 10))
	case from == Version:
		panic(ErrAlreadyUpdated + ": " + std.Itoa(Version, 10))
	}
}

// AppendVersion appends version of the running contract to the update data,
// so the updated contract receives the version it is updated from.
func AppendVersion(data any) []any {
	if data == nil {
		return []any{Version}
	}
	return append(data.([]any), Version)
}
