package inp

import (
	"io"
	"sort"
	"strconv"
	"strings"
)

type TransitID int

// StartTime is one departure of a transit line
type StartTime struct {
	Time      string
	Course    string
	Occupancy string
}

// TransitLine is a public transport line running from a source link to a destination link
type TransitLine struct {
	ID           TransitID
	Name         string
	Route        string
	Priority     string
	Length       string
	MeanDistance string
	// PTTelematics is set when the line carries the PT_TELE flag
	PTTelematics    bool
	AnmID           string
	Link            LinkID
	DesiredSpeed    string
	VehicleType     string
	Color           string
	TimeOffset      string
	DestinationLink LinkID
	At              string
	StartTimes      []StartTime
}

type TransitLines map[TransitID]*TransitLine

const startTimesPerLine = 5

/* Decoding */

// transitAccumulator keeps the LINE header until ANM_ID turns it into a record
type transitAccumulator struct {
	lines    TransitLines
	current  *TransitLine
	anmSeen  bool
	handlers map[string]func([]string) error
}

func newTransitAccumulator(lines TransitLines) *transitAccumulator {
	acc := &transitAccumulator{lines: lines}
	acc.handlers = map[string]func([]string) error{
		"LINE":        acc.start,
		"ANM_ID":      acc.anmID,
		"COLOR":       acc.color,
		"DESTINATION": acc.destination,
		"START_TIMES": acc.startTimes,
	}
	return acc
}

func (acc *transitAccumulator) decodeLine(tokens []string) error {
	keyword := tokens[0]
	if _, ok := acc.handlers[keyword]; !ok {
		// Departures wrapped over several lines have no leading keyword: `25200 COURSE 1 OCCUPANCY 0`
		f := readFields(tokens)
		if f.str(1) == "COURSE" {
			return acc.course(tokens)
		}
		if f.err != nil {
			return f.err
		}
		return &UnrecognizedTokenError{Section: SectionTransit, Token: keyword}
	}
	switch keyword {
	case "LINE":
	case "ANM_ID":
		if acc.current == nil {
			return errNoRecord(keyword)
		}
	default:
		if acc.current == nil || !acc.anmSeen {
			return errNoRecord(keyword)
		}
	}
	return dispatch(SectionTransit, tokens, acc.handlers)
}

func (acc *transitAccumulator) finish() error {
	defer func() {
		acc.current = nil
		acc.anmSeen = false
	}()
	if acc.current == nil {
		return nil
	}
	if !acc.anmSeen {
		return &ConsistencyError{Entity: "transit line", ID: int(acc.current.ID), Reason: "no ANM_ID line, record dropped"}
	}
	acc.lines[acc.current.ID] = acc.current
	return nil
}

// LINE 1 NAME "bus" LINE 1 ROUTE 1 PRIORITY 0 LENGTH 0 MDN 0 [PT_TELE]
func (acc *transitAccumulator) start(tokens []string) error {
	f := readFields(tokens)
	line := &TransitLine{
		ID:           TransitID(f.int(1)),
		Name:         f.str(3),
		Route:        f.str(7),
		Priority:     f.str(9),
		Length:       f.str(11),
		MeanDistance: f.str(13),
		PTTelematics: tokens[len(tokens)-1] == "PT_TELE",
	}
	if f.err != nil {
		return abandonRecord(acc, f.err)
	}
	if err := acc.finish(); err != nil {
		acc.current = line
		return err
	}
	acc.current = line
	return nil
}

// ANM_ID "" SOURCE LINK 1 DESIRED_SPEED 50 VEHICLE_TYPE 300
func (acc *transitAccumulator) anmID(tokens []string) error {
	f := readFields(tokens)
	anm := f.str(1)
	link := LinkID(f.int(4))
	desiredSpeed := f.str(6)
	vehicleType := f.str(8)
	if f.err != nil {
		return f.err
	}
	acc.current.AnmID = anm
	acc.current.Link = link
	acc.current.DesiredSpeed = desiredSpeed
	acc.current.VehicleType = vehicleType
	acc.anmSeen = true
	return nil
}

// COLOR CYAN TIME_OFFSET 0.0
func (acc *transitAccumulator) color(tokens []string) error {
	f := readFields(tokens)
	color, offset := f.str(1), f.str(3)
	if f.err != nil {
		return f.err
	}
	acc.current.Color = color
	acc.current.TimeOffset = offset
	return nil
}

// DESTINATION LINK 2 AT 90.000
func (acc *transitAccumulator) destination(tokens []string) error {
	f := readFields(tokens)
	link := LinkID(f.int(2))
	at := f.str(4)
	if f.err != nil {
		return f.err
	}
	acc.current.DestinationLink = link
	acc.current.At = at
	return nil
}

// START_TIMES 25200 COURSE 1 OCCUPANCY 0 26100 COURSE 2 OCCUPANCY 0
func (acc *transitAccumulator) startTimes(tokens []string) error {
	times, err := readStartTimes(tokens, 1)
	if err != nil {
		return err
	}
	acc.current.StartTimes = times
	return nil
}

// 27000 COURSE 3 OCCUPANCY 0
func (acc *transitAccumulator) course(tokens []string) error {
	if acc.current == nil || !acc.anmSeen {
		return errNoRecord("COURSE")
	}
	times, err := readStartTimes(tokens, 0)
	if err != nil {
		return err
	}
	acc.current.StartTimes = append(acc.current.StartTimes, times...)
	return nil
}

// readStartTimes reads `time COURSE c OCCUPANCY o` groups beginning at offset
func readStartTimes(tokens []string, offset int) ([]StartTime, error) {
	f := readFields(tokens)
	num := (len(tokens) - offset) / 5
	times := make([]StartTime, 0, num)
	for i := 0; i < num; i++ {
		base := offset + 5*i
		times = append(times, StartTime{
			Time:      f.str(base),
			Course:    f.str(base + 2),
			Occupancy: f.str(base + 4),
		})
	}
	if f.err != nil {
		return nil, f.err
	}
	return times, nil
}

// DecodeTransitLines reads the Public Transport section of an INP stream
func DecodeTransitLines(r io.Reader, options ...func(*Decoder)) (TransitLines, Diagnostics) {
	net, diags := sectionDecoder(SectionTransit, options).Decode(r)
	return net.TransitLines, diags
}

// ReadTransitLines reads the Public Transport section of an INP file
func ReadTransitLines(filename string, options ...func(*Decoder)) (TransitLines, Diagnostics) {
	net, diags := sectionDecoder(SectionTransit, options).Read(filename)
	return net.TransitLines, diags
}

/* Encoding */

// Encode renders the transit line in INP syntax. Departures are wrapped every five entries
func (line *TransitLine) Encode() ([]string, error) {
	pt := ""
	if line.PTTelematics {
		pt = " PT_TELE"
	}
	id := strconv.Itoa(int(line.ID))
	out := make([]string, 0, 5)
	out = append(out, "LINE "+rjust(id, 4)+" NAME "+line.Name+"  LINE "+rjust(id, 3)+"  ROUTE "+rjust(line.Route, 3)+
		"    PRIORITY "+line.Priority+"  LENGTH "+line.Length+"  MDN "+line.MeanDistance+pt)
	out = append(out, rjust("ANM_ID ", 12)+line.AnmID+" SOURCE    LINK "+strconv.Itoa(int(line.Link))+
		" DESIRED_SPEED "+line.DesiredSpeed+" VEHICLE_TYPE "+line.VehicleType)
	out = append(out, rjust("COLOR ", 24)+line.Color+" TIME_OFFSET "+rjust(line.TimeOffset, 6))
	out = append(out, rjust("DESTINATION    LINK ", 32)+strconv.Itoa(int(line.DestinationLink))+" AT "+rjust(line.At, 8))
	if len(line.StartTimes) == 0 {
		return out, nil
	}
	var times strings.Builder
	times.WriteString(rjust("START_TIMES ", 24))
	for i, st := range line.StartTimes {
		if i > 0 && i%startTimesPerLine == 0 {
			out = append(out, times.String())
			times.Reset()
		}
		times.WriteString(st.Time + " COURSE " + st.Course + " OCCUPANCY " + st.Occupancy + " ")
	}
	out = append(out, times.String())
	return out, nil
}

func (lines TransitLines) ids() []int {
	ids := make([]int, 0, len(lines))
	for id := range lines {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	return ids
}

func (lines TransitLines) encoders() []encoder {
	res := make([]encoder, 0, len(lines))
	for _, id := range lines.ids() {
		res = append(res, lines[TransitID(id)])
	}
	return res
}

/* Factory */

// TransitOption overrides a field of a transit line being created
type TransitOption func(*TransitLine)

// WithTransitID sets an explicit line number. Existing line with the same number is replaced.
// Zero is the same as no number
func WithTransitID(id TransitID) TransitOption {
	return func(line *TransitLine) {
		line.ID = id
	}
}

// WithTransitName sets the name. Quotes are added when missing
func WithTransitName(name string) TransitOption {
	return func(line *TransitLine) {
		line.Name = quoteName(name)
	}
}

// WithColor sets display color
func WithColor(color string) TransitOption {
	return func(line *TransitLine) {
		line.Color = color
	}
}

// WithStartTimes sets departures
func WithStartTimes(times ...StartTime) TransitOption {
	return func(line *TransitLine) {
		line.StartTimes = times
	}
}

// Create adds a new transit line from link to destination link (stopping at offset 'at') using built-in defaults
func (lines TransitLines) Create(link, destination LinkID, at float64, desiredSpeed, vehicleType int, options ...TransitOption) (*TransitLine, error) {
	return createTransit(lines, DefaultValues().Transit, link, destination, at, desiredSpeed, vehicleType, options...)
}

func createTransit(lines TransitLines, defaults TransitDefaults, link, destination LinkID, at float64, desiredSpeed, vehicleType int, options ...TransitOption) (*TransitLine, error) {
	line := &TransitLine{
		Link:            link,
		DestinationLink: destination,
		At:              formatCoord(at),
		DesiredSpeed:    strconv.Itoa(desiredSpeed),
		VehicleType:     strconv.Itoa(vehicleType),
		AnmID:           defaults.AnmID,
		Name:            defaults.Name,
		Route:           defaults.Route,
		Priority:        defaults.Priority,
		Length:          defaults.Length,
		MeanDistance:    defaults.MeanDistance,
		PTTelematics:    defaults.PTTelematics,
		Color:           defaults.Color,
		TimeOffset:      defaults.TimeOffset,
	}
	for _, option := range options {
		option(line)
	}
	if line.ID == 0 {
		maxID, ok := maxKey(lines.ids())
		if !ok {
			return nil, &MissingIdError{Entity: "transit line"}
		}
		line.ID = TransitID(maxID + 1)
	}
	lines[line.ID] = line
	return line, nil
}
