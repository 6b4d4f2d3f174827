package inp

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Decoder reads INP sections into a Network
type Decoder struct {
	strictMode       bool
	routingKeyByLink bool
	routeLinks       bool
	sections         []string
}

var allSections = []string{
	SectionLinks,
	SectionConnectors,
	SectionParking,
	SectionInputs,
	SectionRouting,
	SectionTransit,
	SectionNodes,
}

func (dec *Decoder) String() string {
	return fmt.Sprintf(`
INP decoder parameters:
	strict_mode enabled?: %t
	routing keyed by link?: %t
	route links enabled?: %t
	sections: '%s'
	`,
		dec.strictMode,
		dec.routingKeyByLink,
		dec.routeLinks,
		strings.Join(dec.sections, ","),
	)
}

func NewDecoder(options ...func(*Decoder)) *Decoder {
	dec := &Decoder{
		strictMode:       false,
		routingKeyByLink: false,
		routeLinks:       true,
		sections:         allSections,
	}
	for _, option := range options {
		option(dec)
	}
	return dec
}

// WithStrictMode stops decoding at the first FormatError
func WithStrictMode(strictMode bool) func(*Decoder) {
	return func(dec *Decoder) {
		dec.strictMode = strictMode
	}
}

// WithRoutingKeyByLink keys routing decisions by originating link instead of decision number
func WithRoutingKeyByLink(byLink bool) func(*Decoder) {
	return func(dec *Decoder) {
		dec.routingKeyByLink = byLink
	}
}

// WithRouteLinks enables reading of traversed links (OVER) for routes
func WithRouteLinks(routeLinks bool) func(*Decoder) {
	return func(dec *Decoder) {
		dec.routeLinks = routeLinks
	}
}

// WithSections restricts decoding to the given sections
func WithSections(sections ...string) func(*Decoder) {
	return func(dec *Decoder) {
		dec.sections = sections
	}
}

// Decode reads every requested section of r. When r fails an empty network is returned
// together with a FileAccessError diagnostic.
func (dec *Decoder) Decode(r io.Reader) (*Network, Diagnostics) {
	net := NewNetwork()
	net.RoutingDecisions.KeyByLink = dec.routingKeyByLink
	decoders := make(map[string]lineDecoder, len(dec.sections))
	for _, section := range dec.sections {
		switch section {
		case SectionInputs:
			decoders[section] = newInputAccumulator(net.Inputs)
		case SectionLinks:
			decoders[section] = newLinkAccumulator(net.Links)
		case SectionConnectors:
			decoders[section] = newConnectorAccumulator(net.Connectors)
		case SectionParking:
			decoders[section] = newParkingAccumulator(net.ParkingLots)
		case SectionTransit:
			decoders[section] = newTransitAccumulator(net.TransitLines)
		case SectionRouting:
			decoders[section] = newRoutingAccumulator(net.RoutingDecisions, dec.routeLinks)
		case SectionNodes:
			decoders[section] = newNodeAccumulator(net.Nodes)
		}
	}
	diags, err := scanSections(r, decoders, dec.strictMode)
	if err != nil {
		empty := NewNetwork()
		empty.RoutingDecisions.KeyByLink = dec.routingKeyByLink
		return empty, append(diags, Diagnostic{Err: &FileAccessError{Cause: err}})
	}
	return net, diags
}

// Read opens filename and decodes it
func (dec *Decoder) Read(filename string) (*Network, Diagnostics) {
	file, err := os.Open(filename)
	if err != nil {
		empty := NewNetwork()
		empty.RoutingDecisions.KeyByLink = dec.routingKeyByLink
		return empty, Diagnostics{{Err: &FileAccessError{Filename: filename, Cause: err}}}
	}
	defer file.Close()
	net, diags := dec.Decode(file)
	for i := range diags {
		if accessErr, ok := diags[i].Err.(*FileAccessError); ok {
			accessErr.Filename = filename
		}
	}
	return net, diags
}

// ReadNetwork decodes every section of an INP file in a single pass
func ReadNetwork(filename string, options ...func(*Decoder)) (*Network, Diagnostics) {
	return NewDecoder(options...).Read(filename)
}

// DecodeNetwork decodes every section of an INP stream in a single pass
func DecodeNetwork(r io.Reader, options ...func(*Decoder)) (*Network, Diagnostics) {
	return NewDecoder(options...).Decode(r)
}

// sectionDecoder builds a decoder for one section on top of user options
func sectionDecoder(section string, options []func(*Decoder)) *Decoder {
	dec := NewDecoder(options...)
	dec.sections = []string{section}
	return dec
}
