// Package delivery decides whether delivery is offered for a given
// date and city, and whether the order qualifies for waived delivery charge.
package delivery

import (
	"strings"
	"time"
)

// Type enumerates how an order reaches the customer.
type Type string

const (
	// TypePickup means the customer collects the order in person.
	TypePickup Type = "PICKUP"
	// TypeDelivery means the order is dispatched to a customer address.
	TypeDelivery Type = "DELIVERY"
)

// Valid reports whether t is a known delivery type.
func (t Type) Valid() bool {
	return t == TypePickup || t == TypeDelivery
}

// Schedule maps each weekday to the set of cities where delivery is offered
// free of charge that day. City keys are stored normalized; use NormalizeCity
// before inserting.
type Schedule map[time.Weekday]map[string]struct{}

// NormalizeCity lowers and trims a free-text city name. City strings come
// from user input and geocoders, so exact-match comparison is too strict.
func NormalizeCity(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

// Available reports whether delivery is offered at all for the date's
// weekday and the given city. An empty or missing weekday entry means
// delivery is not offered: the schedule fails closed.
func (s Schedule) Available(date time.Time, city string) bool {
	cities, ok := s[date.Weekday()]
	if !ok || len(cities) == 0 {
		return false
	}
	_, ok = cities[NormalizeCity(city)]
	return ok
}

// FreeEligible reports whether the order qualifies for waived delivery
// charge. Pickup orders never do: there is no delivery to waive.
func (s Schedule) FreeEligible(date time.Time, city string, typ Type) bool {
	return typ == TypeDelivery && s.Available(date, city)
}

// Add registers a city as serviced on the given weekday.
func (s Schedule) Add(day time.Weekday, city string) {
	cities, ok := s[day]
	if !ok {
		cities = make(map[string]struct{})
		s[day] = cities
	}
	cities[NormalizeCity(city)] = struct{}{}
}
