// Package providers supplies the ProviderClient collaborators spec.md marks "assumed to
// exist" (§1): narrow probe/act HTTP adapters for Gmail, Drive, Facebook, GitHub, and
// Spotify, plus the SMTP and Clock collaborators named in spec §6. Every adapter converts
// HTTP-layer failures into a Result rather than a Go error — "HTTP-layer errors are
// converted to {success:false, error} — they are never raised upward" (spec §4.3) — so
// Checkers and Executors never need to type-switch on transport errors.
package providers

import "time"

// Result is the ExecutionResult-shaped value every probe/act call returns (spec §4.3).
type Result struct {
	Success bool
	Message string
	Error   string
}

// Ok builds a successful Result.
func Ok(message string) Result { return Result{Success: true, Message: message} }

// Fail builds a failed Result, typically from an upstream HTTP status or transport error.
func Fail(err error) Result {
	if err == nil {
		return Result{Success: false, Error: "unknown error"}
	}
	return Result{Success: false, Error: err.Error()}
}

// Clock is the collaborator interface spec §6 names: "Clock.now(tz) -> instant".
type Clock interface {
	Now(tz string) (time.Time, error)
}

// SystemClock is the real wall-clock implementation, resolving IANA timezone names through
// the standard library's tzdata.
type SystemClock struct{}

func (SystemClock) Now(tz string) (time.Time, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, err
	}
	return time.Now().In(loc), nil
}
