package tools

import (
	"context"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/travelweaver/weaver/pkg/flights"
)

// SearchFlightsTool queries the flight inventory. Its arguments pass through
// the policy gate unmodified.
type SearchFlightsTool struct {
	searcher flights.Searcher
}

// NewSearchFlightsTool creates the search_flights tool over the given inventory.
func NewSearchFlightsTool(searcher flights.Searcher) *SearchFlightsTool {
	return &SearchFlightsTool{searcher: searcher}
}

func (t *SearchFlightsTool) Name() string       { return "search_flights" }
func (t *SearchFlightsTool) ServerName() string { return ServerFlights }

func (t *SearchFlightsTool) Description() string {
	return "Search available flights between two airports. Returns options sorted by price."
}

func (t *SearchFlightsTool) Schema() map[string]interface{} {
	return BaseToolSchema(
		map[string]interface{}{
			"origin": map[string]interface{}{
				"type":        "string",
				"description": "Departure airport IATA code (e.g., SFO).",
			},
			"destination": map[string]interface{}{
				"type":        "string",
				"description": "Arrival airport IATA code (e.g., JFK).",
			},
			"date": map[string]interface{}{
				"type":        "string",
				"description": "Departure date in YYYY-MM-DD form. Optional.",
			},
			"passengers": map[string]interface{}{
				"type":        "integer",
				"description": "Number of travelers. Defaults to 1.",
			},
		},
		[]string{"origin", "destination"},
	)
}

func (t *SearchFlightsTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var args struct {
		XMLName     xml.Name `xml:"arguments"`
		Origin      string   `xml:"origin"`
		Destination string   `xml:"destination"`
		Date        string   `xml:"date"`
		Passengers  string   `xml:"passengers"`
	}
	if err := UnmarshalXMLWithFallback(argsXML, &args); err != nil {
		return "", nil, fmt.Errorf("invalid arguments for search_flights: %w", err)
	}

	passengers := 1
	if strings.TrimSpace(args.Passengers) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(args.Passengers))
		if err != nil || n < 1 {
			return "", nil, fmt.Errorf("invalid passengers %q", args.Passengers)
		}
		passengers = n
	}

	options, err := t.searcher.Search(ctx, flights.Query{
		Origin:      args.Origin,
		Destination: args.Destination,
		Date:        args.Date,
		Passengers:  passengers,
	})
	if err != nil {
		return "", nil, fmt.Errorf("flight search failed: %w", err)
	}

	metadata := map[string]interface{}{"result_count": len(options)}
	if len(options) == 0 {
		return fmt.Sprintf("No flights found from %s to %s.", args.Origin, args.Destination), metadata, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d flights from %s to %s:\n", len(options), args.Origin, args.Destination)
	for _, opt := range options {
		fmt.Fprintf(&b, "- %s %s departs %s arrives %s, %s, %d stops, %.0f %s\n",
			opt.Airline, opt.FlightNumber, opt.Departure, opt.Arrival, opt.Cabin, opt.Stops, opt.Price, opt.Currency)
	}
	return strings.TrimSpace(b.String()), metadata, nil
}

func (t *SearchFlightsTool) IsLoopBreaking() bool { return false }
