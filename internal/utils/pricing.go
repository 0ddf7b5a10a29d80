package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const secondsPerDay = 24 * 60 * 60

// bookingLayouts are the ISO-8601 shapes accepted for booking dates. Values
// without a zone are read as UTC.
var bookingLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseBookingTime parses an ISO-8601 date or timestamp.
func ParseBookingTime(value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range bookingLayouts {
		if t, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected ISO-8601", value)
}

// InclusiveDays counts both endpoints: whole days between start and end,
// floored, plus one. A same-day booking is 1 day; end before start yields < 1.
// Counting on Unix seconds keeps ranges beyond time.Duration's ~292 years exact.
func InclusiveDays(start, end time.Time) int {
	secs := end.Unix() - start.Unix()
	if end.Nanosecond() < start.Nanosecond() {
		secs--
	}
	return int(floorDiv(secs, secondsPerDay)) + 1
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// ErrInvalidDateRange is returned when the end date falls before the start date.
var ErrInvalidDateRange = errors.New("end date must be after start date")

// CalculateRentalCost returns pricePerDay * days * quantity.
func CalculateRentalCost(pricePerDay decimal.Decimal, days, quantity int) decimal.Decimal {
	return pricePerDay.Mul(decimal.NewFromInt(int64(days))).Mul(decimal.NewFromInt(int64(quantity)))
}

// ParseBookingWindow parses both endpoints of a booking and returns the
// inclusive day count.
func ParseBookingWindow(startDate, endDate string) (time.Time, time.Time, int, error) {
	start, err := ParseBookingTime(startDate)
	if err != nil {
		return time.Time{}, time.Time{}, 0, fmt.Errorf("invalid start_date: %w", err)
	}
	end, err := ParseBookingTime(endDate)
	if err != nil {
		return time.Time{}, time.Time{}, 0, fmt.Errorf("invalid end_date: %w", err)
	}
	days := InclusiveDays(start, end)
	if days < 1 {
		return time.Time{}, time.Time{}, 0, ErrInvalidDateRange
	}
	return start, end, days, nil
}
