package inp

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// Network is the set of every section of an INP file
type Network struct {
	// Defaults are used by Create* methods
	Defaults         Defaults
	Inputs           Inputs
	Links            Links
	Connectors       Connectors
	ParkingLots      ParkingLots
	TransitLines     TransitLines
	RoutingDecisions *RoutingDecisions
	Nodes            Nodes
}

// NewNetwork returns empty network with built-in factory defaults
func NewNetwork() *Network {
	return &Network{
		Defaults:         DefaultValues(),
		Inputs:           make(Inputs),
		Links:            make(Links),
		Connectors:       make(Connectors),
		ParkingLots:      make(ParkingLots),
		TransitLines:     make(TransitLines),
		RoutingDecisions: NewRoutingDecisions(false),
		Nodes:            make(Nodes),
	}
}

func (net *Network) CreateLink(from, to orb.Point, options ...LinkOption) (*Link, error) {
	return createLink(net.Links, net.Defaults.Link, from, to, options...)
}

func (net *Network) CreateConnector(fromLink, toLink LinkID, options ...ConnectorOption) (*Connector, error) {
	return createConnector(net.Connectors, net.Defaults.Connector, net.Links, fromLink, toLink, options...)
}

func (net *Network) CreateParkingLot(link LinkID, lane int, at, length float64, options ...ParkingOption) (*ParkingLot, error) {
	return createParking(net.ParkingLots, net.Defaults.Parking, link, lane, at, length, options...)
}

func (net *Network) CreateTransitLine(link, destination LinkID, at float64, desiredSpeed, vehicleType int, options ...TransitOption) (*TransitLine, error) {
	return createTransit(net.TransitLines, net.Defaults.Transit, link, destination, at, desiredSpeed, vehicleType, options...)
}

func (net *Network) CreateRoutingDecision(link LinkID, at float64, options ...RoutingOption) (*RoutingDecision, error) {
	return createRouting(net.RoutingDecisions, net.Defaults.Routing, link, at, options...)
}

func (net *Network) CreateNodeArea(area orb.Ring, options ...NodeOption) (*Node, error) {
	return createNode(net.Nodes, net.Defaults.Node, area, nil, options...)
}

func (net *Network) CreateNodeLinks(links []LinkID, options ...NodeOption) (*Node, error) {
	if links == nil {
		links = []LinkID{}
	}
	return createNode(net.Nodes, net.Defaults.Node, nil, links, options...)
}

func (net *Network) CreateInput(link LinkID, demand float64, composition int, options ...InputOption) (*Input, error) {
	return createInput(net.Inputs, net.Defaults.Input, link, demand, composition, options...)
}

// quoteName wraps name into quotes unless it is quoted already
func quoteName(name string) string {
	if len(name) >= 2 && strings.HasPrefix(name, quote) && strings.HasSuffix(name, quote) {
		return name
	}
	return quote + name + quote
}

func roundTo(v float64, digits int) float64 {
	pow := math.Pow(10, float64(digits))
	return math.Round(v*pow) / pow
}

// ExportToCSV writes links and connectors into '<fname>_links.csv' and '<fname>_connectors.csv' with WKT geometry
func (net *Network) ExportToCSV(fname string) error {
	fnameParts := strings.Split(fname, ".csv")
	fnameLinks := fnameParts[0] + "_links.csv"
	fnameConnectors := fnameParts[0] + "_connectors.csv"

	err := net.exportLinksToCSV(fnameLinks)
	if err != nil {
		return errors.Wrap(err, "Can't export links")
	}

	err = net.exportConnectorsToCSV(fnameConnectors)
	if err != nil {
		return errors.Wrap(err, "Can't export connectors")
	}
	return nil
}

func (net *Network) exportLinksToCSV(fname string) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	err = writer.Write([]string{"id", "name", "behavior_type", "display_type", "lanes", "lane_widths", "length_meters", "evaluation", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}

	for _, id := range net.Links.ids() {
		link := net.Links[LinkID(id)]
		err = writer.Write([]string{
			fmt.Sprintf("%d", link.ID),
			strings.Trim(link.Name, quote),
			link.BehaviorType,
			link.DisplayType,
			fmt.Sprintf("%d", link.Lanes),
			strings.Join(link.LaneWidths, ","),
			fmt.Sprintf("%f", link.LengthMeters()),
			fmt.Sprintf("%t", link.Evaluation),
			LinkWKT(link),
		})
		if err != nil {
			return errors.Wrap(err, "Can't write link")
		}
	}
	return nil
}

func (net *Network) exportConnectorsToCSV(fname string) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	err = writer.Write([]string{"id", "name", "from_link", "from_lanes", "from_at", "to_link", "to_lanes", "to_at", "length_meters", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}

	for _, id := range net.Connectors.ids() {
		connector := net.Connectors[ConnectorID(id)]
		err = writer.Write([]string{
			fmt.Sprintf("%d", connector.ID),
			strings.Trim(connector.Name, quote),
			fmt.Sprintf("%d", connector.FromLink),
			joinInts(connector.FromLanes, ","),
			connector.FromAt,
			fmt.Sprintf("%d", connector.ToLink),
			joinInts(connector.ToLanes, ","),
			connector.ToAt,
			fmt.Sprintf("%f", connector.LengthMeters()),
			ConnectorWKT(connector),
		})
		if err != nil {
			return errors.Wrap(err, "Can't write connector")
		}
	}
	return nil
}
