package enums

import "fmt"

// SyncFrequency describes how often a supplier catalog is refreshed.
type SyncFrequency string

const (
	SyncFrequencyManual SyncFrequency = "manual"
	SyncFrequencyHourly SyncFrequency = "hourly"
	SyncFrequencyDaily  SyncFrequency = "daily"
	SyncFrequencyWeekly SyncFrequency = "weekly"
)

var validSyncFrequencies = []SyncFrequency{
	SyncFrequencyManual,
	SyncFrequencyHourly,
	SyncFrequencyDaily,
	SyncFrequencyWeekly,
}

// String implements fmt.Stringer.
func (s SyncFrequency) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SyncFrequency.
func (s SyncFrequency) IsValid() bool {
	for _, candidate := range validSyncFrequencies {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSyncFrequency converts raw input into a SyncFrequency.
func ParseSyncFrequency(value string) (SyncFrequency, error) {
	for _, candidate := range validSyncFrequencies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sync frequency %q", value)
}
