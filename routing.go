package inp

import (
	"io"
	"sort"
	"strconv"
	"strings"
)

// TimeWindow is a [From; Until) interval in simulation seconds
type TimeWindow struct {
	From  string
	Until string
}

// Route is one alternative of a routing decision
type Route struct {
	Number          int
	DestinationLink LinkID
	At              string
	// Fractions holds one value per time window of the decision
	Fractions []string
	// Over is the ordered list of traversed links and connectors. Nil when the route has none
	Over []int
}

// RoutingDecision is a decision point on a link splitting traffic over several routes
type RoutingDecision struct {
	Number         int
	Name           string
	Label          Label
	Link           LinkID
	At             string
	Times          []TimeWindow
	VehicleClasses string
	PT             string
	Alternatives   bool
	Routes         []*Route
}

// Route returns the route with given number or nil
func (decision *RoutingDecision) Route(num int) *Route {
	for _, route := range decision.Routes {
		if route.Number == num {
			return route
		}
	}
	return nil
}

// RoutingDecisions keeps decision variants in file order.
// Key is the decision number, or the originating link id when KeyByLink is set.
type RoutingDecisions struct {
	KeyByLink bool
	Decisions map[int][]*RoutingDecision
}

func NewRoutingDecisions(keyByLink bool) *RoutingDecisions {
	return &RoutingDecisions{
		KeyByLink: keyByLink,
		Decisions: make(map[int][]*RoutingDecision),
	}
}

func (decisions *RoutingDecisions) key(decision *RoutingDecision) int {
	if decisions.KeyByLink {
		return int(decision.Link)
	}
	return decision.Number
}

func (decisions *RoutingDecisions) add(decision *RoutingDecision) {
	key := decisions.key(decision)
	decisions.Decisions[key] = append(decisions.Decisions[key], decision)
}

// Len returns number of decision variants
func (decisions *RoutingDecisions) Len() int {
	n := 0
	for _, variants := range decisions.Decisions {
		n += len(variants)
	}
	return n
}

// All returns every variant ordered by key and then by file order
func (decisions *RoutingDecisions) All() []*RoutingDecision {
	keys := make([]int, 0, len(decisions.Decisions))
	for key := range decisions.Decisions {
		keys = append(keys, key)
	}
	sort.Ints(keys)
	res := make([]*RoutingDecision, 0, decisions.Len())
	for _, key := range keys {
		res = append(res, decisions.Decisions[key]...)
	}
	return res
}

/* Decoding */

type routingHeader struct {
	number int
	name   string
	label  Label
	used   bool
}

type routingAccumulator struct {
	decisions  *RoutingDecisions
	routeLinks bool
	header     *routingHeader
	current    *RoutingDecision
	route      *Route
	overMode   bool
	handlers   map[string]func([]string) error
}

func newRoutingAccumulator(decisions *RoutingDecisions, routeLinks bool) *routingAccumulator {
	acc := &routingAccumulator{decisions: decisions, routeLinks: routeLinks}
	acc.handlers = map[string]func([]string) error{
		"ROUTING_DECISION": acc.start,
		"LINK":             acc.link,
		"TIME":             acc.time,
		"VEHICLE_CLASSES":  acc.vehicleClasses,
		"PT":               acc.pt,
		"ALTERNATIVES":     acc.alternatives,
		"ROUTE":            acc.routeStart,
		"FRACTION":         acc.fraction,
		"OVER":             acc.over,
	}
	return acc
}

func (acc *routingAccumulator) decodeLine(tokens []string) error {
	keyword := tokens[0]
	if _, ok := acc.handlers[keyword]; !ok {
		// Traversed links wrapped over several lines
		if isInteger(keyword) {
			if !acc.routeLinks {
				return nil
			}
			if acc.overMode {
				return acc.overContinuation(tokens)
			}
		}
		return &UnrecognizedTokenError{Section: SectionRouting, Token: keyword}
	}
	switch keyword {
	case "ROUTING_DECISION":
	case "LINK":
		if acc.header == nil {
			return errNoRecord(keyword)
		}
	case "FRACTION", "OVER":
		if acc.route == nil {
			return errNoRecord(keyword)
		}
	default:
		if acc.current == nil {
			return errNoRecord(keyword)
		}
	}
	return dispatch(SectionRouting, tokens, acc.handlers)
}

// commit moves the current variant into the collection
func (acc *routingAccumulator) commit() {
	if acc.current != nil {
		acc.decisions.add(acc.current)
	}
	acc.current = nil
	acc.route = nil
	acc.overMode = false
}

func (acc *routingAccumulator) finish() error {
	acc.commit()
	header := acc.header
	acc.header = nil
	if header != nil && !header.used {
		return &ConsistencyError{Entity: "routing decision", ID: header.number, Reason: "no LINK line, record dropped"}
	}
	return nil
}

// ROUTING_DECISION 1 NAME "" LABEL 0.00 0.00
func (acc *routingAccumulator) start(tokens []string) error {
	f := readFields(tokens)
	header := &routingHeader{
		number: f.int(1),
		name:   f.str(3),
		label:  Label{f.str(5), f.str(6)},
	}
	if f.err != nil {
		return abandonRecord(acc, f.err)
	}
	err := acc.finish()
	acc.header = header
	return err
}

// LINK 1 AT 10.000. Every LINK line under one header is a separate variant
func (acc *routingAccumulator) link(tokens []string) error {
	f := readFields(tokens)
	link := LinkID(f.int(1))
	at := f.str(3)
	if f.err != nil {
		return f.err
	}
	acc.commit()
	acc.header.used = true
	acc.current = &RoutingDecision{
		Number: acc.header.number,
		Name:   acc.header.name,
		Label:  acc.header.label,
		Link:   link,
		At:     at,
	}
	return nil
}

// TIME FROM 0.0 UNTIL 3600.0 FROM 3600.0 UNTIL 7200.0
func (acc *routingAccumulator) time(tokens []string) error {
	f := readFields(tokens)
	num := (len(tokens) - 1) / 4
	times := make([]TimeWindow, 0, num)
	for i := 0; i < num; i++ {
		times = append(times, TimeWindow{From: f.str(2 + 4*i), Until: f.str(4 + 4*i)})
	}
	if f.err != nil {
		return f.err
	}
	acc.current.Times = times
	return nil
}

// VEHICLE_CLASSES 1
func (acc *routingAccumulator) vehicleClasses(tokens []string) error {
	f := readFields(tokens)
	classes := f.str(1)
	if f.err != nil {
		return f.err
	}
	acc.current.VehicleClasses = classes
	return nil
}

// PT 1
func (acc *routingAccumulator) pt(tokens []string) error {
	f := readFields(tokens)
	pt := f.str(1)
	if f.err != nil {
		return f.err
	}
	acc.current.PT = pt
	return nil
}

func (acc *routingAccumulator) alternatives(tokens []string) error {
	acc.current.Alternatives = true
	return nil
}

// ROUTE 1 DESTINATION LINK 5 AT 20.000
func (acc *routingAccumulator) routeStart(tokens []string) error {
	f := readFields(tokens)
	route := &Route{
		Number:          f.int(1),
		DestinationLink: LinkID(f.int(4)),
		At:              f.str(6),
	}
	if f.err != nil {
		return f.err
	}
	acc.current.Routes = append(acc.current.Routes, route)
	acc.route = route
	acc.overMode = false
	return nil
}

// FRACTION 1.000 FRACTION 0.500. One value per time window
func (acc *routingAccumulator) fraction(tokens []string) error {
	f := readFields(tokens)
	num := len(acc.current.Times)
	if num == 0 {
		num = len(tokens) / 2
	}
	fractions := make([]string, 0, num)
	for i := 0; i < num; i++ {
		fractions = append(fractions, f.str(1+2*i))
	}
	if f.err != nil {
		return f.err
	}
	acc.route.Fractions = fractions
	return nil
}

// OVER 1 10000 2 10001 3
func (acc *routingAccumulator) over(tokens []string) error {
	if !acc.routeLinks {
		return nil
	}
	f := readFields(tokens)
	ids := f.ints(1, len(tokens))
	if f.err != nil {
		return f.err
	}
	acc.route.Over = ids
	acc.overMode = true
	return nil
}

func (acc *routingAccumulator) overContinuation(tokens []string) error {
	f := readFields(tokens)
	ids := f.ints(0, len(tokens))
	if f.err != nil {
		return f.err
	}
	acc.route.Over = append(acc.route.Over, ids...)
	return nil
}

// DecodeRoutingDecisions reads the Routing Decisions section of an INP stream
func DecodeRoutingDecisions(r io.Reader, options ...func(*Decoder)) (*RoutingDecisions, Diagnostics) {
	net, diags := sectionDecoder(SectionRouting, options).Decode(r)
	return net.RoutingDecisions, diags
}

// ReadRoutingDecisions reads the Routing Decisions section of an INP file
func ReadRoutingDecisions(filename string, options ...func(*Decoder)) (*RoutingDecisions, Diagnostics) {
	net, diags := sectionDecoder(SectionRouting, options).Read(filename)
	return net.RoutingDecisions, diags
}

/* Encoding */

const overLinksPerLine = 10

// Encode renders the decision variant in INP syntax. Traversed links are wrapped every ten entries
func (decision *RoutingDecision) Encode() ([]string, error) {
	out := make([]string, 0, 4+3*len(decision.Routes))
	out = append(out, "ROUTING_DECISION "+ljust(strconv.Itoa(decision.Number), 4)+" NAME "+decision.Name+" LABEL "+decision.Label[0]+" "+decision.Label[1])
	out = append(out, rjust("LINK ", 10)+strconv.Itoa(int(decision.Link))+rjust("AT ", 5)+decision.At)

	var times strings.Builder
	times.WriteString(rjust("TIME", 9))
	for _, window := range decision.Times {
		times.WriteString("  FROM " + window.From + " UNTIL " + window.Until)
	}
	out = append(out, times.String())

	if decision.VehicleClasses != "" {
		out = append(out, rjust("VEHICLE_CLASSES ", 21)+decision.VehicleClasses)
	} else if decision.PT != "" {
		out = append(out, rjust("PT ", 21)+decision.PT)
	}
	if decision.Alternatives {
		out = append(out, "     ALTERNATIVES")
	}
	for _, route := range decision.Routes {
		if len(decision.Times) > 0 && len(route.Fractions) != len(decision.Times) {
			return nil, &ConsistencyError{Entity: "routing decision", ID: decision.Number, Reason: "route " + strconv.Itoa(route.Number) + " has fractions not matching time windows"}
		}
		if route.Over != nil && len(route.Over) == 0 {
			return nil, &ConsistencyError{Entity: "routing decision", ID: decision.Number, Reason: "route " + strconv.Itoa(route.Number) + " has traversed links referenced but not populated"}
		}
		out = append(out, rjust("ROUTE", 11)+rjust(strconv.Itoa(route.Number), 6)+" DESTINATION LINK"+rjust(strconv.Itoa(int(route.DestinationLink)), 6)+" AT"+rjust(route.At, 9))
		var fractions strings.Builder
		for _, fraction := range route.Fractions {
			fractions.WriteString(rjust("FRACTION ", 16) + fraction)
		}
		out = append(out, fractions.String())
		out = append(out, encodeOver(route.Over)...)
	}
	return out, nil
}

func encodeOver(ids []int) []string {
	if len(ids) == 0 {
		return nil
	}
	var lines []string
	var line strings.Builder
	line.WriteString(rjust("OVER ", 11))
	for i, id := range ids {
		if i > 0 && i%overLinksPerLine == 0 {
			lines = append(lines, line.String())
			line.Reset()
			line.WriteString(strings.Repeat(" ", 11))
		}
		line.WriteString(rjust(strconv.Itoa(id), 6))
	}
	return append(lines, line.String())
}

func (decisions *RoutingDecisions) encoders() []encoder {
	all := decisions.All()
	res := make([]encoder, 0, len(all))
	for _, decision := range all {
		res = append(res, decision)
	}
	return res
}

/* Factory */

// RoutingOption overrides a field of a routing decision being created
type RoutingOption func(*RoutingDecision)

// WithDecisionNumber sets an explicit decision number. Variant with the same number and key is replaced.
// Zero is the same as no number
func WithDecisionNumber(num int) RoutingOption {
	return func(decision *RoutingDecision) {
		decision.Number = num
	}
}

// WithTimeWindows sets the time windows. Every route must carry one fraction per window
func WithTimeWindows(windows ...TimeWindow) RoutingOption {
	return func(decision *RoutingDecision) {
		decision.Times = windows
	}
}

// WithRoute appends a route to destination link. Fractions default to one per time window
func WithRoute(destination LinkID, at float64, fractions ...float64) RoutingOption {
	return func(decision *RoutingDecision) {
		route := &Route{
			Number:          len(decision.Routes) + 1,
			DestinationLink: destination,
			At:              formatCoord(at),
		}
		for _, fraction := range fractions {
			route.Fractions = append(route.Fractions, strconv.FormatFloat(fraction, 'f', 3, 64))
		}
		decision.Routes = append(decision.Routes, route)
	}
}

// WithRouteOver sets traversed links of the last added route
func WithRouteOver(over ...int) RoutingOption {
	return func(decision *RoutingDecision) {
		if len(decision.Routes) == 0 {
			return
		}
		decision.Routes[len(decision.Routes)-1].Over = over
	}
}

// WithPT makes the decision apply to public transport lines instead of vehicle classes
func WithPT(pt string) RoutingOption {
	return func(decision *RoutingDecision) {
		decision.VehicleClasses = ""
		decision.PT = pt
	}
}

// Create adds a new decision variant placed on link at offset 'at' using built-in defaults
func (decisions *RoutingDecisions) Create(link LinkID, at float64, options ...RoutingOption) (*RoutingDecision, error) {
	return createRouting(decisions, DefaultValues().Routing, link, at, options...)
}

func createRouting(decisions *RoutingDecisions, defaults RoutingDefaults, link LinkID, at float64, options ...RoutingOption) (*RoutingDecision, error) {
	decision := &RoutingDecision{
		Link:           link,
		At:             formatCoord(at),
		Name:           defaults.Name,
		Label:          defaults.Label,
		Times:          []TimeWindow{{From: defaults.From, Until: defaults.Until}},
		VehicleClasses: defaults.VehicleClasses,
	}
	for _, option := range options {
		option(decision)
	}
	for _, route := range decision.Routes {
		if len(route.Fractions) == 0 {
			for range decision.Times {
				route.Fractions = append(route.Fractions, defaults.Fraction)
			}
		}
	}
	if decision.Number == 0 {
		numbers := make([]int, 0, decisions.Len())
		for _, variant := range decisions.All() {
			numbers = append(numbers, variant.Number)
		}
		maxNum, ok := maxKey(numbers)
		if !ok {
			return nil, &MissingIdError{Entity: "routing decision"}
		}
		decision.Number = maxNum + 1
	}
	key := decisions.key(decision)
	for i, variant := range decisions.Decisions[key] {
		if variant.Number == decision.Number {
			decisions.Decisions[key][i] = decision
			return decision, nil
		}
	}
	decisions.add(decision)
	return decision, nil
}
