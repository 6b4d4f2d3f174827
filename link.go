package inp

import (
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

type LinkID int

// Label is the position of the record caption as written in the file
type Label [2]string

// Link is a single road segment of the network
type Link struct {
	ID            LinkID
	Name          string
	Label         Label
	BehaviorType  string
	DisplayType   string
	Length        string
	Lanes         int
	LaneWidths    []string
	Gradient      string
	Cost          string
	Surcharges    [2]string
	SegmentLength string
	From          orb.Point
	To            orb.Point
	// Intermediate points between From and To. Nil for straight links
	Over       orb.LineString
	Evaluation bool
}

// Links is collection of links keyed by id
type Links map[LinkID]*Link

// Geometry returns full polyline of the link: From, intermediate points, To
func (link *Link) Geometry() orb.LineString {
	line := make(orb.LineString, 0, len(link.Over)+2)
	line = append(line, link.From)
	line = append(line, link.Over...)
	line = append(line, link.To)
	return line
}

// LengthMeters returns declared length. Falls back to geometric length if the declared one is not a number
func (link *Link) LengthMeters() float64 {
	v, err := strconv.ParseFloat(link.Length, 64)
	if err != nil {
		return planar.Length(link.Geometry())
	}
	return v
}

/* Decoding */

type linkAccumulator struct {
	links       Links
	current     *Link
	overStarted bool
	handlers    map[string]func([]string) error
}

func newLinkAccumulator(links Links) *linkAccumulator {
	acc := &linkAccumulator{links: links}
	acc.handlers = map[string]func([]string) error{
		"LINK":         acc.start,
		"BEHAVIORTYPE": acc.behaviorType,
		"LENGTH":       acc.length,
		"FROM":         acc.from,
		"TO":           acc.to,
		"OVER":         acc.over,
	}
	return acc
}

func (acc *linkAccumulator) decodeLine(tokens []string) error {
	if tokens[0] != "LINK" && acc.current == nil {
		if _, ok := acc.handlers[tokens[0]]; ok {
			return errNoRecord(tokens[0])
		}
	}
	return dispatch(SectionLinks, tokens, acc.handlers)
}

func (acc *linkAccumulator) finish() error {
	if acc.current != nil {
		acc.links[acc.current.ID] = acc.current
	}
	acc.current = nil
	acc.overStarted = false
	return nil
}

// LINK 1 NAME "" LABEL 0.00 0.00
func (acc *linkAccumulator) start(tokens []string) error {
	f := readFields(tokens)
	link := &Link{
		ID:    LinkID(f.int(1)),
		Name:  f.str(3),
		Label: Label{f.str(5), f.str(6)},
	}
	if f.err != nil {
		return abandonRecord(acc, f.err)
	}
	acc.finish()
	acc.current = link
	return nil
}

// BEHAVIORTYPE 1 DISPLAYTYPE 1
func (acc *linkAccumulator) behaviorType(tokens []string) error {
	f := readFields(tokens)
	behaviorType, displayType := f.str(1), f.str(3)
	if f.err != nil {
		return f.err
	}
	acc.current.BehaviorType = behaviorType
	acc.current.DisplayType = displayType
	return nil
}

// LENGTH 100.000 LANES 2 LANE_WIDTH 3.50 3.50 GRADIENT 0.00000 COST 0.00000 SURCHARGE 0.00000 SURCHARGE 0.00000 SEGMENT LENGTH 10.000 [EVALUATION]
//
// Number of widths follows the lane count and shifts every next field
func (acc *linkAccumulator) length(tokens []string) error {
	f := readFields(tokens)
	length := f.str(1)
	lanes := f.int(3)
	if f.err != nil {
		return f.err
	}
	if lanes > len(tokens)-5 {
		return &FormatError{Keyword: tokens[0], Index: len(tokens), Have: len(tokens), Reason: "is missing: " + strconv.Itoa(lanes) + " lanes need as many lane widths"}
	}
	var widths []string
	if lanes > 1 {
		widths = f.strs(5, 5+lanes)
	} else {
		widths = []string{f.str(5)}
	}
	// Single lane links may carry surplus widths, the rest of the line starts at GRADIENT
	gradientAt := 5 + len(widths)
	for i := gradientAt; i < len(tokens); i++ {
		if tokens[i] == "GRADIENT" {
			gradientAt = i
			break
		}
	}
	gradient := f.str(gradientAt + 1)
	cost := f.str(gradientAt + 3)
	surcharges := [2]string{f.str(gradientAt + 5), f.str(gradientAt + 7)}
	segmentLength := f.str(gradientAt + 10)
	if f.err != nil {
		return f.err
	}
	link := acc.current
	link.Length = length
	link.Lanes = lanes
	link.LaneWidths = widths
	link.Gradient = gradient
	link.Cost = cost
	link.Surcharges = surcharges
	link.SegmentLength = segmentLength
	link.Evaluation = tokens[len(tokens)-1] == "EVALUATION"
	return nil
}

// FROM 0.0 0.0
func (acc *linkAccumulator) from(tokens []string) error {
	f := readFields(tokens)
	pt := f.point(1)
	if f.err != nil {
		return f.err
	}
	acc.current.From = pt
	return nil
}

// TO 100.0 0.0
func (acc *linkAccumulator) to(tokens []string) error {
	f := readFields(tokens)
	pt := f.point(1)
	if f.err != nil {
		return f.err
	}
	acc.current.To = pt
	return nil
}

// OVER 10.0 5.0 0.000 OVER 20.0 5.0 0.000. Next OVER lines extend the polyline
func (acc *linkAccumulator) over(tokens []string) error {
	f := readFields(tokens)
	pts := f.overPoints()
	if f.err != nil {
		return f.err
	}
	if !acc.overStarted {
		acc.current.Over = make(orb.LineString, 0, len(pts))
		acc.overStarted = true
	}
	acc.current.Over = append(acc.current.Over, pts...)
	return nil
}

// DecodeLinks reads the Links section of an INP stream
func DecodeLinks(r io.Reader, options ...func(*Decoder)) (Links, Diagnostics) {
	net, diags := sectionDecoder(SectionLinks, options).Decode(r)
	return net.Links, diags
}

// ReadLinks reads the Links section of an INP file
func ReadLinks(filename string, options ...func(*Decoder)) (Links, Diagnostics) {
	net, diags := sectionDecoder(SectionLinks, options).Read(filename)
	return net.Links, diags
}

/* Encoding */

// Encode renders the link in INP syntax
func (link *Link) Encode() ([]string, error) {
	if len(link.LaneWidths) == 0 {
		return nil, &ConsistencyError{Entity: "link", ID: int(link.ID), Reason: "no lane widths"}
	}
	if link.Lanes > 1 && len(link.LaneWidths) != link.Lanes {
		return nil, &ConsistencyError{Entity: "link", ID: int(link.ID), Reason: "number of lane widths differs from number of lanes"}
	}
	out := make([]string, 0, 5)
	out = append(out, "LINK "+rjust(strconv.Itoa(int(link.ID)), 6)+" NAME "+link.Name+" LABEL "+link.Label[0]+" "+link.Label[1])
	out = append(out, rjust("BEHAVIORTYPE ", 15)+rjust(link.BehaviorType, 5)+" DISPLAYTYPE"+rjust(link.DisplayType, 5))

	var widths strings.Builder
	if len(link.LaneWidths) > 1 {
		for _, width := range link.LaneWidths {
			widths.WriteString(rjust(width, 5))
		}
	} else {
		widths.WriteString(rjust(link.LaneWidths[0], 5))
	}
	evaluation := ""
	if link.Evaluation {
		evaluation = " EVALUATION"
	}
	out = append(out, rjust("LENGTH ", 9)+rjust(link.Length, 8)+
		" LANES "+rjust(strconv.Itoa(link.Lanes), 2)+
		" LANE_WIDTH "+widths.String()+
		" GRADIENT "+ljust(link.Gradient, 10)+
		" COST "+ljust(link.Cost, 7)+
		" SURCHARGE "+link.Surcharges[0]+
		" SURCHARGE "+link.Surcharges[1]+
		" SEGMENT LENGTH "+rjust(link.SegmentLength, 8)+
		evaluation)

	out = append(out, rjust("FROM ", 7)+formatCoord(link.From.X())+" "+formatCoord(link.From.Y()))
	if link.Over != nil {
		var over strings.Builder
		over.WriteString(" ")
		for _, pt := range link.Over {
			over.WriteString(" OVER " + formatCoord(pt.X()) + " " + formatCoord(pt.Y()) + " 0.000")
		}
		out = append(out, over.String())
	}
	out = append(out, rjust("TO ", 5)+rjust(formatCoord(link.To.X()), 10)+" "+formatCoord(link.To.Y()))
	return out, nil
}

func (links Links) ids() []int {
	ids := make([]int, 0, len(links))
	for id := range links {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	return ids
}

func (links Links) encoders() []encoder {
	res := make([]encoder, 0, len(links))
	for _, id := range links.ids() {
		res = append(res, links[LinkID(id)])
	}
	return res
}

/* Factory */

// LinkOption overrides a field of a link being created
type LinkOption func(*Link)

// WithLinkID sets an explicit id. Existing link with the same id is replaced.
// Ids start from 1: zero is the same as no id and takes the next free one
func WithLinkID(id LinkID) LinkOption {
	return func(link *Link) {
		link.ID = id
	}
}

// WithLinkOver sets intermediate points. Link length is derived from them
func WithLinkOver(over orb.LineString) LinkOption {
	return func(link *Link) {
		link.Over = over
	}
}

// WithLinkName sets the name. Quotes are added when missing
func WithLinkName(name string) LinkOption {
	return func(link *Link) {
		link.Name = quoteName(name)
	}
}

// WithLanes sets lane count and, optionally, per-lane widths
func WithLanes(lanes int, widths ...string) LinkOption {
	return func(link *Link) {
		link.Lanes = lanes
		if len(widths) > 0 {
			link.LaneWidths = widths
		}
	}
}

// WithLinkBehavior sets behavior and display types
func WithLinkBehavior(behaviorType, displayType string) LinkOption {
	return func(link *Link) {
		link.BehaviorType = behaviorType
		link.DisplayType = displayType
	}
}

// Create adds a new link between two points using built-in defaults
func (links Links) Create(from, to orb.Point, options ...LinkOption) (*Link, error) {
	return createLink(links, DefaultValues().Link, from, to, options...)
}

func createLink(links Links, defaults LinkDefaults, from, to orb.Point, options ...LinkOption) (*Link, error) {
	link := &Link{
		From:          from,
		To:            to,
		Name:          defaults.Name,
		Label:         defaults.Label,
		BehaviorType:  defaults.BehaviorType,
		DisplayType:   defaults.DisplayType,
		Lanes:         defaults.Lanes,
		LaneWidths:    []string{defaults.LaneWidth},
		Gradient:      defaults.Gradient,
		Cost:          defaults.Cost,
		Surcharges:    [2]string{defaults.Surcharge, defaults.Surcharge},
		SegmentLength: defaults.SegmentLength,
		Evaluation:    defaults.Evaluation,
	}
	for _, option := range options {
		option(link)
	}
	if link.ID == 0 {
		maxID, ok := maxKey(links.ids())
		if !ok {
			return nil, &MissingIdError{Entity: "link"}
		}
		link.ID = LinkID(maxID + 1)
	}
	// Single default width is spread over every lane
	if link.Lanes > 1 && len(link.LaneWidths) == 1 {
		width := link.LaneWidths[0]
		link.LaneWidths = make([]string, link.Lanes)
		for i := range link.LaneWidths {
			link.LaneWidths[i] = width
		}
	}
	if link.Length == "" {
		link.Length = formatCoord(roundTo(planar.Length(link.Geometry()), 3))
	}
	links[link.ID] = link
	return link, nil
}
