package postgresadapter

import "time"

// SystemClock implements ports.Clock from the system wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
