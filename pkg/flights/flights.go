// Package flights provides the flight-search collaborator used by the
// agent's flight tools. Search arguments pass through the policy gate
// unmodified; results are advisory and carry no booking state.
package flights

import "context"

// Query describes a one-way flight search.
type Query struct {
	// Origin is the departure airport IATA code or city name.
	Origin string `json:"origin"`

	// Destination is the arrival airport IATA code or city name.
	Destination string `json:"destination"`

	// Date is the departure date in YYYY-MM-DD form. Optional; an empty
	// date matches any departure.
	Date string `json:"date,omitempty"`

	// Passengers is the seat count. Zero is treated as one.
	Passengers int `json:"passengers,omitempty"`
}

// Option is a single bookable flight returned by a search.
type Option struct {
	Airline      string  `json:"airline"`
	FlightNumber string  `json:"flight_number"`
	Origin       string  `json:"origin"`
	Destination  string  `json:"destination"`
	Departure    string  `json:"departure"`
	Arrival      string  `json:"arrival"`
	Cabin        string  `json:"cabin"`
	Stops        int     `json:"stops"`
	Price        float64 `json:"price"`
	Currency     string  `json:"currency"`
}

// Searcher finds flight options for a query.
type Searcher interface {
	Search(ctx context.Context, q Query) ([]Option, error)
}
