package resolver

import "storecheck/internal/version"

// Status is the outcome of a successful resolution. It holds the version
// strings exactly as supplied; comparison happens in CanUpdate.
type Status struct {
	localVersion string
	storeVersion string
	appStoreLink string
	releaseNotes string
	hasNotes     bool
}

// NewStatus builds a status without release notes.
func NewStatus(localVersion, storeVersion, appStoreLink string) Status {
	return Status{
		localVersion: localVersion,
		storeVersion: storeVersion,
		appStoreLink: appStoreLink,
	}
}

// WithReleaseNotes returns a copy of s carrying notes.
func (s Status) WithReleaseNotes(notes string) Status {
	s.releaseNotes = notes
	s.hasNotes = true
	return s
}

// LocalVersion returns the installed version.
func (s Status) LocalVersion() string { return s.localVersion }

// StoreVersion returns the version published by the catalog.
func (s Status) StoreVersion() string { return s.storeVersion }

// AppStoreLink returns the URL where the update can be obtained.
func (s Status) AppStoreLink() string { return s.appStoreLink }

// ReleaseNotes returns the store release notes, if the catalog had any.
func (s Status) ReleaseNotes() (string, bool) { return s.releaseNotes, s.hasNotes }

// CanUpdate reports whether the store version orders after the local one.
// Either version failing to parse yields an invalid_segment error.
func (s Status) CanUpdate() (bool, error) {
	return version.IsNewer(s.localVersion, s.storeVersion)
}
