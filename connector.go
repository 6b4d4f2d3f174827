package inp

import (
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"
)

type ConnectorID int

// Connector joins lanes of two links
type Connector struct {
	ID            ConnectorID
	Name          string
	Label         Label
	FromLink      LinkID
	FromLanes     []int
	FromAt        string
	ToLink        LinkID
	ToLanes       []int
	ToAt          string
	BehaviorType  string
	DisplayType   string
	Over          orb.LineString
	DxEmergStop   string
	DxLaneChange  string
	Gradient      string
	Cost          string
	Surcharges    [2]string
	SegmentLength string
	Visualization bool
}

type Connectors map[ConnectorID]*Connector

// LengthMeters returns length of the connector polyline
func (connector *Connector) LengthMeters() float64 {
	return planar.Length(connector.Over)
}

/* Decoding */

type connectorAccumulator struct {
	connectors Connectors
	current    *Connector
	handlers   map[string]func([]string) error
}

func newConnectorAccumulator(connectors Connectors) *connectorAccumulator {
	acc := &connectorAccumulator{connectors: connectors}
	acc.handlers = map[string]func([]string) error{
		"CONNECTOR":     acc.start,
		"FROM":          acc.from,
		"OVER":          acc.over,
		"TO":            acc.to,
		"DX_EMERG_STOP": acc.dxEmergStop,
		"GRADIENT":      acc.gradient,
		"SEGMENT":       acc.segment,
	}
	return acc
}

func (acc *connectorAccumulator) decodeLine(tokens []string) error {
	if tokens[0] != "CONNECTOR" && acc.current == nil {
		if _, ok := acc.handlers[tokens[0]]; ok {
			return errNoRecord(tokens[0])
		}
	}
	return dispatch(SectionConnectors, tokens, acc.handlers)
}

func (acc *connectorAccumulator) finish() error {
	if acc.current != nil {
		acc.connectors[acc.current.ID] = acc.current
	}
	acc.current = nil
	return nil
}

// CONNECTOR 10000 NAME "" LABEL 0.00 0.00
func (acc *connectorAccumulator) start(tokens []string) error {
	f := readFields(tokens)
	connector := &Connector{
		ID:    ConnectorID(f.int(1)),
		Name:  f.str(3),
		Label: Label{f.str(5), f.str(6)},
	}
	if f.err != nil {
		return abandonRecord(acc, f.err)
	}
	acc.finish()
	acc.current = connector
	return nil
}

// FROM LINK 1 LANES 1 2 AT 95.000
func (acc *connectorAccumulator) from(tokens []string) error {
	f := readFields(tokens)
	extraLanes := len(tokens) - 7
	if extraLanes < 0 {
		extraLanes = 0
	}
	link := LinkID(f.int(2))
	lanes := f.ints(4, 5+extraLanes)
	at := f.str(6 + extraLanes)
	if f.err != nil {
		return f.err
	}
	acc.current.FromLink = link
	acc.current.FromLanes = lanes
	acc.current.FromAt = at
	return nil
}

// OVER 95.0 0.0 0.000 OVER 97.0 1.0 0.000. Next OVER lines extend the polyline
func (acc *connectorAccumulator) over(tokens []string) error {
	f := readFields(tokens)
	pts := f.overPoints()
	if f.err != nil {
		return f.err
	}
	acc.current.Over = append(acc.current.Over, pts...)
	return nil
}

// TO LINK 2 LANES 1 AT 0.000 BEHAVIORTYPE 1 DISPLAYTYPE 1 ALL
func (acc *connectorAccumulator) to(tokens []string) error {
	f := readFields(tokens)
	extraLanes := len(tokens) - 12
	if extraLanes < 0 {
		extraLanes = 0
	}
	link := LinkID(f.int(2))
	lanes := f.ints(4, 5+extraLanes)
	at := f.str(6 + extraLanes)
	behaviorType := f.str(8 + extraLanes)
	displayType := f.str(10 + extraLanes)
	if f.err != nil {
		return f.err
	}
	acc.current.ToLink = link
	acc.current.ToLanes = lanes
	acc.current.ToAt = at
	acc.current.BehaviorType = behaviorType
	acc.current.DisplayType = displayType
	return nil
}

// DX_EMERG_STOP 4.999 DX_LANE_CHANGE 200.010
func (acc *connectorAccumulator) dxEmergStop(tokens []string) error {
	f := readFields(tokens)
	emergStop, laneChange := f.str(1), f.str(3)
	if f.err != nil {
		return f.err
	}
	acc.current.DxEmergStop = emergStop
	acc.current.DxLaneChange = laneChange
	return nil
}

// GRADIENT 0.00000 COST 0.00000 SURCHARGE 0.00000 SURCHARGE 0.00000
func (acc *connectorAccumulator) gradient(tokens []string) error {
	f := readFields(tokens)
	gradient, cost := f.str(1), f.str(3)
	surcharges := [2]string{f.str(5), f.str(7)}
	if f.err != nil {
		return f.err
	}
	acc.current.Gradient = gradient
	acc.current.Cost = cost
	acc.current.Surcharges = surcharges
	return nil
}

// SEGMENT LENGTH 10.000 [NONE] ANIMATION
func (acc *connectorAccumulator) segment(tokens []string) error {
	f := readFields(tokens)
	length, visualization := f.str(2), f.str(3)
	if f.err != nil {
		return f.err
	}
	acc.current.SegmentLength = length
	acc.current.Visualization = visualization != "NONE"
	return nil
}

// DecodeConnectors reads the Connectors section of an INP stream
func DecodeConnectors(r io.Reader, options ...func(*Decoder)) (Connectors, Diagnostics) {
	net, diags := sectionDecoder(SectionConnectors, options).Decode(r)
	return net.Connectors, diags
}

// ReadConnectors reads the Connectors section of an INP file
func ReadConnectors(filename string, options ...func(*Decoder)) (Connectors, Diagnostics) {
	net, diags := sectionDecoder(SectionConnectors, options).Read(filename)
	return net.Connectors, diags
}

/* Encoding */

// Encode renders the connector in INP syntax
func (connector *Connector) Encode() ([]string, error) {
	if len(connector.FromLanes) == 0 || len(connector.ToLanes) == 0 {
		return nil, &ConsistencyError{Entity: "connector", ID: int(connector.ID), Reason: "no lanes to connect"}
	}
	out := make([]string, 0, 7)
	out = append(out, "CONNECTOR "+strconv.Itoa(int(connector.ID))+" NAME "+connector.Name+" LABEL "+connector.Label[0]+" "+connector.Label[1])
	out = append(out, rjust("FROM LINK ", 12)+strconv.Itoa(int(connector.FromLink))+" LANES "+joinInts(connector.FromLanes, " ")+" AT "+connector.FromAt)

	var over strings.Builder
	over.WriteString("  ")
	for _, pt := range connector.Over {
		over.WriteString("OVER " + formatCoord(pt.X()) + " " + formatCoord(pt.Y()) + " 0.000 ")
	}
	out = append(out, over.String())

	out = append(out, rjust("TO LINK ", 10)+strconv.Itoa(int(connector.ToLink))+" LANES "+joinInts(connector.ToLanes, " ")+" AT "+ljust(connector.ToAt, 6)+
		" BEHAVIORTYPE "+connector.BehaviorType+" DISPLAYTYPE "+connector.DisplayType+" ALL")
	out = append(out, rjust("DX_EMERG_STOP ", 16)+connector.DxEmergStop+" DX_LANE_CHANGE "+connector.DxLaneChange)
	out = append(out, rjust("GRADIENT ", 11)+connector.Gradient+" COST "+connector.Cost+" SURCHARGE "+connector.Surcharges[0]+" SURCHARGE "+connector.Surcharges[1])
	if connector.Visualization {
		out = append(out, rjust("SEGMENT LENGTH ", 17)+connector.SegmentLength+" ANIMATION")
	} else {
		out = append(out, rjust("SEGMENT LENGTH ", 17)+connector.SegmentLength+" NONE ANIMATION")
	}
	return out, nil
}

func (connectors Connectors) ids() []int {
	ids := make([]int, 0, len(connectors))
	for id := range connectors {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	return ids
}

func (connectors Connectors) encoders() []encoder {
	res := make([]encoder, 0, len(connectors))
	for _, id := range connectors.ids() {
		res = append(res, connectors[ConnectorID(id)])
	}
	return res
}

/* Factory */

// ConnectorOption overrides a field of a connector being created
type ConnectorOption func(*Connector)

// WithConnectorID sets an explicit id. Existing connector with the same id is replaced.
// Ids start from 1: zero is the same as no id and takes the next free one
func WithConnectorID(id ConnectorID) ConnectorOption {
	return func(connector *Connector) {
		connector.ID = id
	}
}

// WithConnectorName sets the name. Quotes are added when missing
func WithConnectorName(name string) ConnectorOption {
	return func(connector *Connector) {
		connector.Name = quoteName(name)
	}
}

// WithConnectorLanes sets lanes of both ends
func WithConnectorLanes(fromLanes, toLanes []int) ConnectorOption {
	return func(connector *Connector) {
		connector.FromLanes = fromLanes
		connector.ToLanes = toLanes
	}
}

// Create adds a new connector from the end of one link to the start of another using built-in defaults
func (connectors Connectors) Create(links Links, fromLink, toLink LinkID, options ...ConnectorOption) (*Connector, error) {
	return createConnector(connectors, DefaultValues().Connector, links, fromLink, toLink, options...)
}

// nudge shifts coinciding anchors apart so the first connector segment has non-zero length
const nudge = 0.001

func createConnector(connectors Connectors, defaults ConnectorDefaults, links Links, fromLink, toLink LinkID, options ...ConnectorOption) (*Connector, error) {
	source, ok := links[fromLink]
	if !ok {
		return nil, errors.Errorf("Can't create connector: link %d not found", fromLink)
	}
	target, ok := links[toLink]
	if !ok {
		return nil, errors.Errorf("Can't create connector: link %d not found", toLink)
	}
	connector := &Connector{
		FromLink:      fromLink,
		ToLink:        toLink,
		Name:          defaults.Name,
		Label:         defaults.Label,
		FromLanes:     []int{defaults.Lane},
		FromAt:        source.Length,
		ToLanes:       []int{defaults.Lane},
		ToAt:          defaults.ToAt,
		Over:          connectorPolyline(source.To, target.From),
		BehaviorType:  defaults.BehaviorType,
		DisplayType:   defaults.DisplayType,
		DxEmergStop:   defaults.DxEmergStop,
		DxLaneChange:  defaults.DxLaneChange,
		Gradient:      defaults.Gradient,
		Cost:          defaults.Cost,
		Surcharges:    [2]string{defaults.Surcharge, defaults.Surcharge},
		SegmentLength: defaults.SegmentLength,
		Visualization: defaults.Visualization,
	}
	for _, option := range options {
		option(connector)
	}
	if connector.ID == 0 {
		maxID, ok := maxKey(connectors.ids())
		if !ok {
			return nil, &MissingIdError{Entity: "connector"}
		}
		connector.ID = ConnectorID(maxID + 1)
	}
	connectors[connector.ID] = connector
	return connector, nil
}

// connectorPolyline returns four points from the end of one link to the start of another.
// Coinciding anchors get nudged first, otherwise middle points are successive midpoints.
func connectorPolyline(start, end orb.Point) orb.LineString {
	var p1, p2, p3 orb.Point
	if start.Equal(end) {
		p1 = orb.Point{start.X(), start.Y() + nudge}
		p2 = orb.Point{end.X() + nudge, end.Y()}
		p3 = midPoint(p2, end)
	} else {
		p1 = start
		p2 = midPoint(end, p1)
		p3 = midPoint(p2, end)
	}
	return orb.LineString{p1, p2, p3, end}
}

func midPoint(p, q orb.Point) orb.Point {
	return orb.Point{(p.X() + q.X()) / 2, (p.Y() + q.Y()) / 2}
}
