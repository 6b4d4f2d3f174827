package inp

import (
	"io"
	"sort"
	"strconv"
	"strings"
)

type ParkingID int

// ParkingLot is a parking area placed along a link
type ParkingLot struct {
	ID           ParkingID
	Name         string
	Label        Label
	SpacesLength string
	Zones        string
	Fraction     string
	Link         LinkID
	// Lane is 0 when the lot is not bound to a lane
	Lane         int
	At           string
	Length       string
	Capacity     string
	Occupancy    string
	DesiredSpeed string
	OpenHours    [2]string
	MaxTime      string
	FlatFee      string
	FeePerHour   string
	Attraction   []string
	Composition  string
}

type ParkingLots map[ParkingID]*ParkingLot

/* Decoding */

type parkingAccumulator struct {
	lots     ParkingLots
	current  *ParkingLot
	handlers map[string]func([]string) error
}

func newParkingAccumulator(lots ParkingLots) *parkingAccumulator {
	acc := &parkingAccumulator{lots: lots}
	acc.handlers = map[string]func([]string) error{
		"PARKING_LOT":    acc.start,
		"PARKING_SPACES": acc.single(2, func(lot *ParkingLot, v string) { lot.SpacesLength = v }),
		"ZONES":          acc.zones,
		"POSITION":       acc.position,
		"LENGTH":         acc.single(1, func(lot *ParkingLot, v string) { lot.Length = v }),
		"CAPACITY":       acc.single(1, func(lot *ParkingLot, v string) { lot.Capacity = v }),
		"OCCUPANCY":      acc.single(1, func(lot *ParkingLot, v string) { lot.Occupancy = v }),
		"DEFAULT":        acc.single(2, func(lot *ParkingLot, v string) { lot.DesiredSpeed = v }),
		"OPEN_HOURS":     acc.openHours,
		"MAX_TIME":       acc.single(1, func(lot *ParkingLot, v string) { lot.MaxTime = v }),
		"FLAT_FEE":       acc.single(1, func(lot *ParkingLot, v string) { lot.FlatFee = v }),
		"FEE_PER_HOUR":   acc.single(1, func(lot *ParkingLot, v string) { lot.FeePerHour = v }),
		"ATTRACTION":     acc.attraction,
		"COMPOSITION":    acc.single(1, func(lot *ParkingLot, v string) { lot.Composition = v }),
	}
	return acc
}

func (acc *parkingAccumulator) decodeLine(tokens []string) error {
	if tokens[0] != "PARKING_LOT" && acc.current == nil {
		if _, ok := acc.handlers[tokens[0]]; ok {
			return errNoRecord(tokens[0])
		}
	}
	return dispatch(SectionParking, tokens, acc.handlers)
}

func (acc *parkingAccumulator) finish() error {
	if acc.current != nil {
		acc.lots[acc.current.ID] = acc.current
	}
	acc.current = nil
	return nil
}

// single builds a handler storing one token found at idx
func (acc *parkingAccumulator) single(idx int, set func(*ParkingLot, string)) func([]string) error {
	return func(tokens []string) error {
		f := readFields(tokens)
		v := f.str(idx)
		if f.err != nil {
			return f.err
		}
		set(acc.current, v)
		return nil
	}
}

// PARKING_LOT 1 NAME "lot" LABEL 0.000 0.000
func (acc *parkingAccumulator) start(tokens []string) error {
	f := readFields(tokens)
	lot := &ParkingLot{
		ID:    ParkingID(f.int(1)),
		Name:  f.str(3),
		Label: Label{f.str(5), f.str(6)},
	}
	if f.err != nil {
		return abandonRecord(acc, f.err)
	}
	acc.finish()
	acc.current = lot
	return nil
}

// ZONES 1 FRACTION 1.000
func (acc *parkingAccumulator) zones(tokens []string) error {
	f := readFields(tokens)
	zones, fraction := f.str(1), f.str(3)
	if f.err != nil {
		return f.err
	}
	acc.current.Zones = zones
	acc.current.Fraction = fraction
	return nil
}

// POSITION LINK 1 [LANE 1] AT 25.000
func (acc *parkingAccumulator) position(tokens []string) error {
	f := readFields(tokens)
	link := LinkID(f.int(2))
	lane := 0
	var at string
	if len(tokens) >= 7 && tokens[3] == "LANE" {
		lane = f.int(4)
		at = f.str(6)
	} else {
		at = f.str(4)
	}
	if f.err != nil {
		return f.err
	}
	acc.current.Link = link
	acc.current.Lane = lane
	acc.current.At = at
	return nil
}

// OPEN_HOURS FROM 0 UNTIL 99999
func (acc *parkingAccumulator) openHours(tokens []string) error {
	f := readFields(tokens)
	hours := [2]string{f.str(2), f.str(4)}
	if f.err != nil {
		return f.err
	}
	acc.current.OpenHours = hours
	return nil
}

// ATTRACTION 0.0 0.0
func (acc *parkingAccumulator) attraction(tokens []string) error {
	f := readFields(tokens)
	values := f.strs(1, len(tokens))
	if len(values) == 0 {
		f.fail(1, "")
	}
	if f.err != nil {
		return f.err
	}
	acc.current.Attraction = values
	return nil
}

// DecodeParkingLots reads the Parking section of an INP stream
func DecodeParkingLots(r io.Reader, options ...func(*Decoder)) (ParkingLots, Diagnostics) {
	net, diags := sectionDecoder(SectionParking, options).Decode(r)
	return net.ParkingLots, diags
}

// ReadParkingLots reads the Parking section of an INP file
func ReadParkingLots(filename string, options ...func(*Decoder)) (ParkingLots, Diagnostics) {
	net, diags := sectionDecoder(SectionParking, options).Read(filename)
	return net.ParkingLots, diags
}

/* Encoding */

// Encode renders the parking lot in INP syntax
func (lot *ParkingLot) Encode() ([]string, error) {
	out := make([]string, 0, 15)
	out = append(out, "PARKING_LOT "+strconv.Itoa(int(lot.ID))+" NAME "+lot.Name+" LABEL "+lot.Label[0]+" "+lot.Label[1])
	if lot.SpacesLength != "" {
		out = append(out, rjust("PARKING_SPACES LENGTH ", 24)+lot.SpacesLength)
	}
	out = append(out, rjust("ZONES ", 8)+rjust(lot.Zones, 6)+" FRACTION "+rjust(lot.Fraction, 7))
	if lot.Lane != 0 {
		out = append(out, rjust("POSITION LINK ", 16)+strconv.Itoa(int(lot.Link))+" LANE "+strconv.Itoa(lot.Lane)+" AT "+lot.At)
	} else {
		out = append(out, rjust("POSITION LINK ", 16)+strconv.Itoa(int(lot.Link))+" AT "+lot.At)
	}
	out = append(out, rjust("LENGTH ", 9)+rjust(lot.Length, 9))
	out = append(out, rjust("CAPACITY   ", 13)+lot.Capacity)
	out = append(out, rjust("OCCUPANCY ", 12)+lot.Occupancy)
	out = append(out, rjust("DEFAULT DESIRED_SPEED ", 24)+lot.DesiredSpeed)
	out = append(out, rjust("OPEN_HOURS  FROM ", 19)+ljust(lot.OpenHours[0], 2)+" UNTIL "+lot.OpenHours[1])
	out = append(out, rjust("MAX_TIME ", 11)+lot.MaxTime)
	out = append(out, rjust("FLAT_FEE ", 11)+lot.FlatFee)
	out = append(out, rjust("FEE_PER_HOUR ", 15)+lot.FeePerHour)
	out = append(out, rjust("ATTRACTION ", 13)+strings.Join(lot.Attraction, " "))
	if lot.Composition != "" {
		out = append(out, rjust("COMPOSITION ", 14)+lot.Composition)
	}
	return out, nil
}

func (lots ParkingLots) ids() []int {
	ids := make([]int, 0, len(lots))
	for id := range lots {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	return ids
}

func (lots ParkingLots) encoders() []encoder {
	res := make([]encoder, 0, len(lots))
	for _, id := range lots.ids() {
		res = append(res, lots[ParkingID(id)])
	}
	return res
}

/* Factory */

// ParkingOption overrides a field of a parking lot being created
type ParkingOption func(*ParkingLot)

// WithParkingID sets an explicit id. Existing lot with the same id is replaced.
// Zero is the same as no id
func WithParkingID(id ParkingID) ParkingOption {
	return func(lot *ParkingLot) {
		lot.ID = id
	}
}

// WithParkingName sets the name. Quotes are added when missing
func WithParkingName(name string) ParkingOption {
	return func(lot *ParkingLot) {
		lot.Name = quoteName(name)
	}
}

// WithCapacity sets number of parking spaces
func WithCapacity(capacity int) ParkingOption {
	return func(lot *ParkingLot) {
		lot.Capacity = strconv.Itoa(capacity)
	}
}

// WithFees sets flat fee and fee per hour
func WithFees(flat, perHour float64) ParkingOption {
	return func(lot *ParkingLot) {
		lot.FlatFee = formatCoord(flat)
		lot.FeePerHour = formatCoord(perHour)
	}
}

// WithOpenHours sets the time window the lot accepts vehicles in
func WithOpenHours(from, until int) ParkingOption {
	return func(lot *ParkingLot) {
		lot.OpenHours = [2]string{strconv.Itoa(from), strconv.Itoa(until)}
	}
}

// Create adds a new parking lot of the given length placed on link at offset 'at' using built-in defaults.
// Lane 0 leaves the lot unbound to a lane.
func (lots ParkingLots) Create(link LinkID, lane int, at, length float64, options ...ParkingOption) (*ParkingLot, error) {
	return createParking(lots, DefaultValues().Parking, link, lane, at, length, options...)
}

func createParking(lots ParkingLots, defaults ParkingDefaults, link LinkID, lane int, at, length float64, options ...ParkingOption) (*ParkingLot, error) {
	lot := &ParkingLot{
		Link:         link,
		Lane:         lane,
		At:           formatCoord(at),
		Length:       formatCoord(length),
		Name:         defaults.Name,
		Label:        defaults.Label,
		SpacesLength: defaults.SpacesLength,
		Zones:        defaults.Zones,
		Fraction:     defaults.Fraction,
		Capacity:     defaults.Capacity,
		Occupancy:    defaults.Occupancy,
		DesiredSpeed: defaults.DesiredSpeed,
		OpenHours:    defaults.OpenHours,
		MaxTime:      defaults.MaxTime,
		FlatFee:      defaults.FlatFee,
		FeePerHour:   defaults.FeePerHour,
		Attraction:   append([]string(nil), defaults.Attraction...),
		Composition:  defaults.Composition,
	}
	for _, option := range options {
		option(lot)
	}
	if lot.ID == 0 {
		maxID, ok := maxKey(lots.ids())
		if !ok {
			return nil, &MissingIdError{Entity: "parking lot"}
		}
		lot.ID = ParkingID(maxID + 1)
	}
	lots[lot.ID] = lot
	return lot, nil
}
