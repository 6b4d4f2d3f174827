package inp

import (
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

type NodeID int

// Node groups a part of the network for evaluation.
// It is defined either by an area polygon or by explicit member links.
type Node struct {
	ID         NodeID
	Name       string
	Label      Label
	Evaluation bool
	// Area is nil for nodes defined by links
	Area  orb.Ring
	Links []LinkID
}

type Nodes map[NodeID]*Node

/* Decoding */

type nodeAccumulator struct {
	nodes    Nodes
	current  *Node
	linkMode bool
	handlers map[string]func([]string) error
}

func newNodeAccumulator(nodes Nodes) *nodeAccumulator {
	acc := &nodeAccumulator{nodes: nodes}
	acc.handlers = map[string]func([]string) error{
		"NODE":         acc.start,
		"EVALUATION":   acc.evaluation,
		"NETWORK_AREA": acc.networkArea,
		"OVER":         acc.over,
		"LINK":         acc.link,
	}
	return acc
}

func (acc *nodeAccumulator) decodeLine(tokens []string) error {
	if tokens[0] != "NODE" && acc.current == nil {
		if _, ok := acc.handlers[tokens[0]]; ok {
			return errNoRecord(tokens[0])
		}
	}
	return dispatch(SectionNodes, tokens, acc.handlers)
}

func (acc *nodeAccumulator) finish() error {
	if acc.current != nil {
		acc.nodes[acc.current.ID] = acc.current
	}
	acc.current = nil
	acc.linkMode = false
	return nil
}

// NODE 1 NAME "" LABEL 0.00 0.00
func (acc *nodeAccumulator) start(tokens []string) error {
	f := readFields(tokens)
	node := &Node{
		ID:    NodeID(f.int(1)),
		Name:  f.str(3),
		Label: Label{f.str(5), f.str(6)},
	}
	if f.err != nil {
		return abandonRecord(acc, f.err)
	}
	acc.finish()
	acc.current = node
	return nil
}

// EVALUATION YES
func (acc *nodeAccumulator) evaluation(tokens []string) error {
	f := readFields(tokens)
	v := f.str(1)
	if f.err != nil {
		return f.err
	}
	acc.current.Evaluation = v == "YES"
	return nil
}

// NETWORK_AREA 4 0.0 0.0 10.0 0.0 10.0 10.0 0.0 10.0
//
// Without a point count the node lists its links on the following `LINK <id>` lines
func (acc *nodeAccumulator) networkArea(tokens []string) error {
	if len(tokens) == 1 {
		acc.linkMode = true
		acc.current.Links = []LinkID{}
		return nil
	}
	f := readFields(tokens)
	num := f.int(1)
	if f.err == nil && num < 0 {
		f.fail(1, "should be a non-negative point count, got '"+tokens[1]+"'")
	}
	area := make(orb.Ring, 0, f.span(2, 2+2*num)/2)
	for i := 0; i < num && f.err == nil; i++ {
		area = append(area, f.point(2+2*i))
	}
	if f.err != nil {
		return f.err
	}
	acc.linkMode = false
	acc.current.Area = area
	return nil
}

// OVER 10.0 10.0 0.000 OVER 0.0 10.0 0.000. Extends the area polygon
func (acc *nodeAccumulator) over(tokens []string) error {
	f := readFields(tokens)
	pts := f.overPoints()
	if f.err != nil {
		return f.err
	}
	acc.current.Area = append(acc.current.Area, pts...)
	return nil
}

// LINK 12
func (acc *nodeAccumulator) link(tokens []string) error {
	if !acc.linkMode {
		return &FormatError{Keyword: tokens[0], Index: -1, Reason: "member link outside of a link-mode NETWORK_AREA"}
	}
	f := readFields(tokens)
	link := LinkID(f.int(1))
	if f.err != nil {
		return f.err
	}
	acc.current.Links = append(acc.current.Links, link)
	return nil
}

// DecodeNodes reads the Nodes section of an INP stream
func DecodeNodes(r io.Reader, options ...func(*Decoder)) (Nodes, Diagnostics) {
	net, diags := sectionDecoder(SectionNodes, options).Decode(r)
	return net.Nodes, diags
}

// ReadNodes reads the Nodes section of an INP file
func ReadNodes(filename string, options ...func(*Decoder)) (Nodes, Diagnostics) {
	net, diags := sectionDecoder(SectionNodes, options).Read(filename)
	return net.Nodes, diags
}

/* Encoding */

func yesNo(v bool) string {
	if v {
		return "YES"
	}
	return "NO"
}

// Encode renders the node in INP syntax
func (node *Node) Encode() ([]string, error) {
	if node.Area != nil && node.Links != nil {
		return nil, &ConsistencyError{Entity: "node", ID: int(node.ID), Reason: "both area and member links are set"}
	}
	out := make([]string, 0, 3+len(node.Links))
	out = append(out, "NODE "+strconv.Itoa(int(node.ID))+" NAME "+node.Name+" LABEL "+node.Label[0]+" "+node.Label[1])
	out = append(out, rjust("EVALUATION ", 13)+yesNo(node.Evaluation))
	switch {
	case node.Area != nil:
		var area strings.Builder
		area.WriteString(rjust("NETWORK_AREA ", 15) + strconv.Itoa(len(node.Area)))
		for _, pt := range node.Area {
			area.WriteString("  " + formatCoord(pt.X()) + " " + formatCoord(pt.Y()))
		}
		out = append(out, area.String())
	case node.Links != nil:
		out = append(out, rjust("NETWORK_AREA", 16))
		for _, link := range node.Links {
			out[len(out)-1] += "    "
			out = append(out, "LINK "+rjust(strconv.Itoa(int(link)), 10))
		}
	}
	return out, nil
}

func (nodes Nodes) ids() []int {
	ids := make([]int, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	return ids
}

func (nodes Nodes) encoders() []encoder {
	res := make([]encoder, 0, len(nodes))
	for _, id := range nodes.ids() {
		res = append(res, nodes[NodeID(id)])
	}
	return res
}

/* Factory */

// NodeOption overrides a field of a node being created
type NodeOption func(*Node)

// WithNodeID sets an explicit id. Existing node with the same id is replaced.
// Zero is the same as no id
func WithNodeID(id NodeID) NodeOption {
	return func(node *Node) {
		node.ID = id
	}
}

// WithNodeName sets the name. Quotes are added when missing
func WithNodeName(name string) NodeOption {
	return func(node *Node) {
		node.Name = quoteName(name)
	}
}

// WithNodeEvaluation turns node evaluation on or off
func WithNodeEvaluation(evaluation bool) NodeOption {
	return func(node *Node) {
		node.Evaluation = evaluation
	}
}

// CreateArea adds a new node bounded by the area polygon using built-in defaults
func (nodes Nodes) CreateArea(area orb.Ring, options ...NodeOption) (*Node, error) {
	return createNode(nodes, DefaultValues().Node, area, nil, options...)
}

// CreateLinks adds a new node made of the given links using built-in defaults
func (nodes Nodes) CreateLinks(links []LinkID, options ...NodeOption) (*Node, error) {
	if links == nil {
		links = []LinkID{}
	}
	return createNode(nodes, DefaultValues().Node, nil, links, options...)
}

func createNode(nodes Nodes, defaults NodeDefaults, area orb.Ring, links []LinkID, options ...NodeOption) (*Node, error) {
	node := &Node{
		Area:       area,
		Links:      links,
		Name:       defaults.Name,
		Label:      defaults.Label,
		Evaluation: defaults.Evaluation,
	}
	for _, option := range options {
		option(node)
	}
	if node.ID == 0 {
		maxID, ok := maxKey(nodes.ids())
		if !ok {
			return nil, &MissingIdError{Entity: "node"}
		}
		node.ID = NodeID(maxID + 1)
	}
	nodes[node.ID] = node
	return node, nil
}
