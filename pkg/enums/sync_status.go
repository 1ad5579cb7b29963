package enums

import "fmt"

// SyncStatus records the outcome of the last catalog refresh for a link.
type SyncStatus string

const (
	SyncStatusPending SyncStatus = "pending"
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusMissing SyncStatus = "missing"
	SyncStatusError   SyncStatus = "error"
)

var validSyncStatuses = []SyncStatus{
	SyncStatusPending,
	SyncStatusSynced,
	SyncStatusMissing,
	SyncStatusError,
}

// String implements fmt.Stringer.
func (s SyncStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SyncStatus.
func (s SyncStatus) IsValid() bool {
	for _, candidate := range validSyncStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSyncStatus converts raw input into a SyncStatus.
func ParseSyncStatus(value string) (SyncStatus, error) {
	for _, candidate := range validSyncStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sync status %q", value)
}
