package inp

import (
	"io"
	"sort"
	"strconv"
)

// Input is a traffic demand entering the network on a link during one time window
type Input struct {
	Number      int
	Name        string
	Label       Label
	Link        LinkID
	Demand      string
	Exact       bool
	Composition string
	From        string
	Until       string
}

// Inputs keeps every demand interval of a link in file order
type Inputs map[LinkID][]*Input

/* Decoding */

type inputAccumulator struct {
	inputs   Inputs
	number   int
	started  bool
	name     string
	label    Label
	current  *Input
	handlers map[string]func([]string) error
}

func newInputAccumulator(inputs Inputs) *inputAccumulator {
	acc := &inputAccumulator{inputs: inputs}
	acc.handlers = map[string]func([]string) error{
		"INPUT": acc.start,
		"NAME":  acc.nameLabel,
		"LINK":  acc.link,
		"TIME":  acc.time,
	}
	return acc
}

func (acc *inputAccumulator) decodeLine(tokens []string) error {
	switch tokens[0] {
	case "INPUT":
	case "TIME":
		if acc.current == nil {
			return errNoRecord(tokens[0])
		}
	default:
		if _, ok := acc.handlers[tokens[0]]; ok && !acc.started {
			return errNoRecord(tokens[0])
		}
	}
	return dispatch(SectionInputs, tokens, acc.handlers)
}

func (acc *inputAccumulator) commit() {
	if acc.current != nil {
		acc.inputs[acc.current.Link] = append(acc.inputs[acc.current.Link], acc.current)
	}
	acc.current = nil
}

func (acc *inputAccumulator) finish() error {
	acc.commit()
	acc.started = false
	acc.name = ""
	acc.label = Label{}
	return nil
}

// INPUT 1
func (acc *inputAccumulator) start(tokens []string) error {
	f := readFields(tokens)
	number := f.int(1)
	if f.err != nil {
		return abandonRecord(acc, f.err)
	}
	acc.finish()
	acc.number = number
	acc.started = true
	return nil
}

// NAME "" LABEL 0.00 0.00
func (acc *inputAccumulator) nameLabel(tokens []string) error {
	f := readFields(tokens)
	name := f.str(1)
	var label Label
	if len(tokens) > 2 {
		label = Label{f.str(3), f.str(4)}
	}
	if f.err != nil {
		return f.err
	}
	acc.name = name
	acc.label = label
	return nil
}

// LINK 1 Q [EXACT] 500.000 COMPOSITION 1
func (acc *inputAccumulator) link(tokens []string) error {
	f := readFields(tokens)
	link := LinkID(f.int(1))
	exact := len(tokens) > 3 && tokens[3] == "EXACT"
	shift := 0
	if exact {
		shift = 1
	}
	demand := f.str(3 + shift)
	composition := f.str(5 + shift)
	if f.err != nil {
		return f.err
	}
	acc.commit()
	acc.current = &Input{
		Number:      acc.number,
		Name:        acc.name,
		Label:       acc.label,
		Link:        link,
		Demand:      demand,
		Exact:       exact,
		Composition: composition,
	}
	return nil
}

// TIME FROM 0.0 UNTIL 3600.0
func (acc *inputAccumulator) time(tokens []string) error {
	f := readFields(tokens)
	from, until := f.str(2), f.str(4)
	if f.err != nil {
		return f.err
	}
	acc.current.From = from
	acc.current.Until = until
	return nil
}

// DecodeInputs reads the Inputs section of an INP stream
func DecodeInputs(r io.Reader, options ...func(*Decoder)) (Inputs, Diagnostics) {
	net, diags := sectionDecoder(SectionInputs, options).Decode(r)
	return net.Inputs, diags
}

// ReadInputs reads the Inputs section of an INP file
func ReadInputs(filename string, options ...func(*Decoder)) (Inputs, Diagnostics) {
	net, diags := sectionDecoder(SectionInputs, options).Read(filename)
	return net.Inputs, diags
}

/* Encoding */

// Encode renders the input in INP syntax
func (input *Input) Encode() ([]string, error) {
	exact := ""
	if input.Exact {
		exact = "EXACT "
	}
	return []string{
		"INPUT " + rjust(strconv.Itoa(input.Number), 6),
		rjust("NAME ", 10) + input.Name + " LABEL  " + input.Label[0] + " " + input.Label[1],
		rjust("LINK ", 10) + strconv.Itoa(int(input.Link)) + " Q " + exact + input.Demand + " COMPOSITION " + input.Composition,
		rjust("TIME FROM ", 15) + input.From + " UNTIL " + input.Until,
	}, nil
}

func (inputs Inputs) ids() []int {
	ids := make([]int, 0, len(inputs))
	for id := range inputs {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	return ids
}

// numbers returns input numbers of every interval
func (inputs Inputs) numbers() []int {
	var res []int
	for _, intervals := range inputs {
		for _, input := range intervals {
			res = append(res, input.Number)
		}
	}
	return res
}

func (inputs Inputs) encoders() []encoder {
	var res []encoder
	for _, id := range inputs.ids() {
		for _, input := range inputs[LinkID(id)] {
			res = append(res, input)
		}
	}
	return res
}

/* Factory */

// InputOption overrides a field of an input being created
type InputOption func(*Input)

// WithInputNumber sets an explicit input number. Interval of the same link with the same number is replaced.
// Zero is the same as no number and takes the next free one
func WithInputNumber(num int) InputOption {
	return func(input *Input) {
		input.Number = num
	}
}

// WithInputName sets the name. Quotes are added when missing
func WithInputName(name string) InputOption {
	return func(input *Input) {
		input.Name = quoteName(name)
	}
}

// WithInputTime sets the active time window
func WithInputTime(from, until float64) InputOption {
	return func(input *Input) {
		input.From = formatCoord(from)
		input.Until = formatCoord(until)
	}
}

// WithExact makes the simulation feed exactly the given demand
func WithExact(exact bool) InputOption {
	return func(input *Input) {
		input.Exact = exact
	}
}

// Create adds a new demand interval on link using built-in defaults
func (inputs Inputs) Create(link LinkID, demand float64, composition int, options ...InputOption) (*Input, error) {
	return createInput(inputs, DefaultValues().Input, link, demand, composition, options...)
}

func createInput(inputs Inputs, defaults InputDefaults, link LinkID, demand float64, composition int, options ...InputOption) (*Input, error) {
	input := &Input{
		Link:        link,
		Demand:      strconv.FormatFloat(demand, 'f', 3, 64),
		Composition: strconv.Itoa(composition),
		Name:        defaults.Name,
		Label:       defaults.Label,
		From:        defaults.From,
		Until:       defaults.Until,
	}
	for _, option := range options {
		option(input)
	}
	if input.Number == 0 {
		maxNum, ok := maxKey(inputs.numbers())
		if !ok {
			return nil, &MissingIdError{Entity: "input"}
		}
		input.Number = maxNum + 1
	}
	for i, interval := range inputs[link] {
		if interval.Number == input.Number {
			inputs[link][i] = input
			return input, nil
		}
	}
	inputs[link] = append(inputs[link], input)
	return input, nil
}
