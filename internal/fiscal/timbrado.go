package fiscal

import (
	"errors"
	"fmt"
	"time"
)

var ErrTimbradoExpired = errors.New("timbrado_expired")

// expiryWarningWindow is how close to expiry a timbrado may be before
// validation attaches a warning.
const expiryWarningWindow = 30

// Timbrado is a validated fiscal stamp number.
type Timbrado struct {
	// Number is the digit-only timbrado.
	Number string
	// DaysToExpire is days until expiry, when an expiry date was supplied.
	DaysToExpire int
	// ExpiryWarning is set when expiry falls within 30 days of today.
	ExpiryWarning bool
}

// ExpiredError reports a timbrado whose expiry date has passed. Issuing
// documents under an expired timbrado is a compliance violation, so
// callers must treat this as a hard stop.
type ExpiredError struct {
	Expiry      time.Time
	DaysExpired int
}

func (e *ExpiredError) Error() string {
	return fmt.Sprintf("timbrado expired on %s (%d days ago)", e.Expiry.Format("2006-01-02"), e.DaysExpired)
}

func (e *ExpiredError) Unwrap() error { return ErrTimbradoExpired }

// ValidateTimbrado validates a timbrado number and, when an expiry date
// is supplied, its lifecycle relative to today. Dates are compared by
// calendar day in UTC.
func ValidateTimbrado(raw string, expiry *time.Time, today time.Time) (Timbrado, error) {
	clean := digitsOnly(raw)
	if clean == "" {
		return Timbrado{}, fmt.Errorf("%w: timbrado is empty", ErrInvalidFormat)
	}
	if len(clean) < 8 {
		return Timbrado{}, fmt.Errorf("%w: timbrado must have at least 8 digits, got %q", ErrInvalidFormat, raw)
	}

	result := Timbrado{Number: clean}
	if expiry == nil {
		return result, nil
	}

	expiryDay := truncateToDay(*expiry)
	todayDay := truncateToDay(today)

	if expiryDay.Before(todayDay) {
		days := int(todayDay.Sub(expiryDay).Hours() / 24)
		return Timbrado{}, &ExpiredError{Expiry: expiryDay, DaysExpired: days}
	}

	result.DaysToExpire = int(expiryDay.Sub(todayDay).Hours() / 24)
	result.ExpiryWarning = result.DaysToExpire <= expiryWarningWindow
	return result, nil
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
