package flights

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Catalog is an in-process flight inventory. It backs the flight-search
// namespace in demo deployments where no external inventory API exists.
type Catalog struct {
	options []Option
}

// NewCatalog creates a catalog over the given inventory. With no options it
// serves the built-in demo inventory.
func NewCatalog(options ...Option) *Catalog {
	if len(options) == 0 {
		options = demoInventory()
	}
	return &Catalog{options: options}
}

// Search returns options matching the query, cheapest first. Origin and
// destination match IATA codes case-insensitively and are both required.
func (c *Catalog) Search(ctx context.Context, q Query) ([]Option, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(q.Origin) == "" || strings.TrimSpace(q.Destination) == "" {
		return nil, fmt.Errorf("flights: origin and destination are required")
	}

	origin := normalize(q.Origin)
	destination := normalize(q.Destination)

	var matches []Option
	for _, opt := range c.options {
		if normalize(opt.Origin) != origin || normalize(opt.Destination) != destination {
			continue
		}
		if q.Date != "" && !strings.HasPrefix(opt.Departure, q.Date) {
			continue
		}
		matches = append(matches, opt)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Price < matches[j].Price
	})
	return matches, nil
}

func normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// demoInventory seeds routes used by the demo conversation flows.
func demoInventory() []Option {
	return []Option{
		{Airline: "United", FlightNumber: "UA 523", Origin: "SFO", Destination: "JFK", Departure: "2026-09-14T08:05", Arrival: "2026-09-14T16:40", Cabin: "economy", Stops: 0, Price: 289, Currency: "USD"},
		{Airline: "Delta", FlightNumber: "DL 1182", Origin: "SFO", Destination: "JFK", Departure: "2026-09-14T11:30", Arrival: "2026-09-14T20:10", Cabin: "economy", Stops: 0, Price: 312, Currency: "USD"},
		{Airline: "JetBlue", FlightNumber: "B6 615", Origin: "SFO", Destination: "JFK", Departure: "2026-09-14T22:15", Arrival: "2026-09-15T06:45", Cabin: "economy", Stops: 0, Price: 244, Currency: "USD"},
		{Airline: "United", FlightNumber: "UA 930", Origin: "SFO", Destination: "LHR", Departure: "2026-09-20T18:45", Arrival: "2026-09-21T13:05", Cabin: "economy", Stops: 0, Price: 612, Currency: "USD"},
		{Airline: "British Airways", FlightNumber: "BA 286", Origin: "SFO", Destination: "LHR", Departure: "2026-09-20T16:20", Arrival: "2026-09-21T10:55", Cabin: "premium", Stops: 0, Price: 1105, Currency: "USD"},
		{Airline: "Air France", FlightNumber: "AF 23", Origin: "JFK", Destination: "CDG", Departure: "2026-09-22T19:30", Arrival: "2026-09-23T08:50", Cabin: "economy", Stops: 0, Price: 534, Currency: "USD"},
		{Airline: "Lufthansa", FlightNumber: "LH 441", Origin: "JFK", Destination: "FRA", Departure: "2026-09-22T17:10", Arrival: "2026-09-23T07:00", Cabin: "economy", Stops: 0, Price: 498, Currency: "USD"},
		{Airline: "ANA", FlightNumber: "NH 107", Origin: "SFO", Destination: "HND", Departure: "2026-10-02T11:00", Arrival: "2026-10-03T14:25", Cabin: "economy", Stops: 0, Price: 876, Currency: "USD"},
	}
}
