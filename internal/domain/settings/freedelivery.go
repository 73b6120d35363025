package settings

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/freshplate/storefront/internal/domain/delivery"
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseFreeDeliverySchedule extracts the free-delivery schedule from raw
// configuration rows. The payload is a JSON object mapping weekday names to
// arrays of city names. A missing key yields an empty schedule, which makes
// delivery unavailable everywhere (fail closed). Unknown weekday keys or
// non-array values are a BadValueError.
func ParseFreeDeliverySchedule(rows []Row) (delivery.Schedule, error) {
	sched := make(delivery.Schedule)

	raw, ok := indexRows(rows)[KeyFreeDelivery]
	if !ok {
		return sched, nil
	}

	d := jx.DecodeBytes(raw)
	switch d.Next() {
	case jx.Null:
		return sched, nil
	case jx.Object:
	default:
		return nil, &BadValueError{Key: KeyFreeDelivery, Value: string(raw), Want: "object"}
	}

	err := d.Obj(func(d *jx.Decoder, key string) error {
		day, ok := weekdays[strings.ToLower(strings.TrimSpace(key))]
		if !ok {
			return &BadValueError{Key: KeyFreeDelivery, Value: key, Want: "weekday name"}
		}
		if d.Next() != jx.Array {
			return &BadValueError{Key: KeyFreeDelivery, Value: key, Want: "array of city names"}
		}
		return d.Arr(func(d *jx.Decoder) error {
			city, err := d.Str()
			if err != nil {
				return &BadValueError{Key: KeyFreeDelivery, Value: key, Want: "array of city names"}
			}
			sched.Add(day, city)
			return nil
		})
	})
	if err != nil {
		var bad *BadValueError
		if errors.As(err, &bad) {
			return nil, bad
		}
		return nil, &BadValueError{Key: KeyFreeDelivery, Value: string(raw), Want: "object"}
	}

	return sched, nil
}
