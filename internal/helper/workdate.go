package helper

import (
	"time"
)

// Clinic runs on KST regardless of where an instance is deployed.
func ClinicLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		return time.Local
	}
	return loc
}

// WorkDate is the clinic-day key used to scope every queue read. A task added
// at 23:59 KST belongs to that day's queue, not the server's local day.
func WorkDate(t time.Time) string {
	return t.In(ClinicLocation()).Format("2006-01-02")
}

func Today() string {
	return WorkDate(time.Now())
}
