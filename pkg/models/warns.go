package models

import "time"

// WarnDateLayout is how warn timestamps are stored in the warns file.
const WarnDateLayout = "02/01/2006 15:04"

// WarnRecord is a single infraction logged against a user
type WarnRecord struct {
	Reason string `json:"reason"`
	Date   string `json:"date"`
	Mod    string `json:"mod"`
}

// NewWarnRecord stamps a record with the given capture time.
func NewWarnRecord(reason, mod string, at time.Time) WarnRecord {
	return WarnRecord{
		Reason: reason,
		Date:   at.Format(WarnDateLayout),
		Mod:    mod,
	}
}

// WarnsDocument is the on-disk shape of the warns file: user id -> ordered records.
type WarnsDocument map[string][]WarnRecord

// XPDocument is the on-disk shape of the XP file: user id -> point total.
type XPDocument map[string]int
