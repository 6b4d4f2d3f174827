package inp

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/pkg/errors"
)

// osmSegment is a part of a way between two nodes shared with other ways (or way ends)
type osmSegment struct {
	way   *osmWay
	nodes []osm.NodeID
}

// importedLink keeps OSM context of a created link
type importedLink struct {
	id     LinkID
	twin   LinkID
	source osm.NodeID
	target osm.NodeID
	geom   orb.LineString
	lanes  int
}

// ImportOSM reads OSM file (.osm, .xml or .pbf) and builds links and connectors of a new network
func ImportOSM(filename string, options ...func(*OSMImporter)) (*Network, error) {
	return NewOSMImporter(filename, options...).Import()
}

// Import builds network from the OSM file of the importer
func (importer *OSMImporter) Import() (*Network, error) {
	data, err := readOSM(importer.filename, importer.highwaysSet(), importer.verbose)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read OSM data")
	}

	net := NewNetwork()
	net.Defaults = importer.defaults

	if importer.verbose {
		fmt.Printf("Preparing links... ")
	}
	st := time.Now()
	project := data.projection()
	links := make([]*importedLink, 0, 2*len(data.ways))
	nextLinkID := importer.startLinkID
	for _, segment := range data.segments() {
		geom := make(orb.LineString, 0, len(segment.nodes))
		for _, nodeID := range segment.nodes {
			pt, ok := data.nodes[nodeID]
			if !ok {
				continue
			}
			geom = append(geom, project(pt))
		}
		geom = dedupLine(roundLine(geom, 3))
		if len(geom) < 2 {
			if importer.verbose {
				fmt.Printf("\n\t[WARNING]: Degenerated segment of way '%d' has been skipped\n", segment.way.ID)
			}
			continue
		}
		source, target := segment.nodes[0], segment.nodes[len(segment.nodes)-1]
		if segment.way.IsReversed {
			geom = reverseLine(geom)
			source, target = target, source
		}
		forwardLanes, backwardLanes := segment.way.directionLanes()
		if segment.way.Oneway {
			link, err := importer.createLink(net, LinkID(nextLinkID), segment.way, geom, forwardLanes)
			if err != nil {
				return nil, err
			}
			nextLinkID++
			links = append(links, &importedLink{id: link.ID, source: source, target: target, geom: link.Geometry(), lanes: forwardLanes})
			continue
		}
		// Both directions are shifted from the way axis by a half of their width, traffic keeps right
		forwardGeom := roundLine(offsetCurve(geom, -importer.laneWidth*float64(forwardLanes)/2), 3)
		backwardGeom := reverseLine(roundLine(offsetCurve(geom, importer.laneWidth*float64(backwardLanes)/2), 3))
		forward, err := importer.createLink(net, LinkID(nextLinkID), segment.way, forwardGeom, forwardLanes)
		if err != nil {
			return nil, err
		}
		backward, err := importer.createLink(net, LinkID(nextLinkID+1), segment.way, backwardGeom, backwardLanes)
		if err != nil {
			return nil, err
		}
		nextLinkID += 2
		links = append(links,
			&importedLink{id: forward.ID, twin: backward.ID, source: source, target: target, geom: forward.Geometry(), lanes: forwardLanes},
			&importedLink{id: backward.ID, twin: forward.ID, source: target, target: source, geom: backward.Geometry(), lanes: backwardLanes},
		)
	}
	if importer.verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
		fmt.Printf("Preparing connectors... ")
	}
	st = time.Now()

	nextConnectorID := importer.startConnectorID
	if nextConnectorID < nextLinkID {
		nextConnectorID = nextLinkID
	}
	startsAt := make(map[osm.NodeID][]*importedLink)
	for _, link := range links {
		startsAt[link.source] = append(startsAt[link.source], link)
	}
	for _, incoming := range links {
		for _, outgoing := range startsAt[incoming.target] {
			if outgoing.id == incoming.twin || outgoing.id == incoming.id {
				continue
			}
			if importer.isUTurn(incoming.geom, outgoing.geom) {
				continue
			}
			name, movement := turnMovement(incoming.geom, outgoing.geom)
			fromLanes, toLanes := movementLanes(movement, incoming.lanes, outgoing.lanes)
			_, err := net.CreateConnector(incoming.id, outgoing.id,
				WithConnectorID(ConnectorID(nextConnectorID)),
				WithConnectorName(name),
				WithConnectorLanes(fromLanes, toLanes),
			)
			if err != nil {
				return nil, errors.Wrapf(err, "Can't connect link %d to link %d", incoming.id, outgoing.id)
			}
			nextConnectorID++
		}
	}
	if importer.verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
		fmt.Printf("Number of links: %d\n", len(net.Links))
		fmt.Printf("Number of connectors: %d\n", len(net.Connectors))
	}
	return net, nil
}

func (importer *OSMImporter) createLink(net *Network, id LinkID, way *osmWay, geom orb.LineString, lanes int) (*Link, error) {
	options := []LinkOption{
		WithLinkID(id),
		WithLanes(lanes, strconv.FormatFloat(importer.laneWidth, 'f', 2, 64)),
		WithLinkBehavior(behaviorTypeByLinkType[way.linkType], net.Defaults.Link.DisplayType),
	}
	if len(geom) > 2 {
		options = append(options, WithLinkOver(geom[1:len(geom)-1].Clone()))
	}
	if name := way.linkName(); name != "" {
		options = append(options, WithLinkName(name))
	}
	link, err := net.CreateLink(geom[0], geom[len(geom)-1], options...)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't create link for way %d", way.ID)
	}
	return link, nil
}

// isUTurn checks angle between the last segment of incoming line and the first segment of outgoing line
func (importer *OSMImporter) isUTurn(incoming, outgoing orb.LineString) bool {
	last := orb.LineString{incoming[len(incoming)-2], incoming[len(incoming)-1]}
	first := orb.LineString{outgoing[0], outgoing[1]}
	angle := angleBetweenLines(last, first) * 180 / math.Pi
	return math.Abs(angle) >= importer.uturnAngle
}

// movementLanes returns connected lanes. Lane 1 is the rightmost one.
// Through movements join as many lanes as both links have, turns take a single lane on their side
func movementLanes(movement MovementType, incomingLanes, outgoingLanes int) ([]int, []int) {
	switch movement {
	case MOVEMENT_RIGHT:
		return []int{1}, []int{1}
	case MOVEMENT_LEFT, MOVEMENT_U_TURN:
		return []int{incomingLanes}, []int{outgoingLanes}
	}
	lanes := incomingLanes
	if outgoingLanes < lanes {
		lanes = outgoingLanes
	}
	laneNums := make([]int, lanes)
	for i := range laneNums {
		laneNums[i] = i + 1
	}
	return laneNums, laneNums
}

// projection returns function turning lon/lat into local metric coordinates.
// Web-mercator metres are scaled by cosine of the origin latitude and shifted so the south-west corner is (0, 0)
func (data *osmDataRaw) projection() func(orb.Point) orb.Point {
	bound := orb.Bound{Min: orb.Point{math.Inf(1), math.Inf(1)}, Max: orb.Point{math.Inf(-1), math.Inf(-1)}}
	for _, pt := range data.nodes {
		bound = bound.Extend(pt)
	}
	if len(data.nodes) == 0 {
		return pointToEuclidean
	}
	origin := pointToEuclidean(bound.Min)
	scale := math.Cos(bound.Center().Lat() * math.Pi / 180)
	return func(pt orb.Point) orb.Point {
		euclidean := pointToEuclidean(pt)
		return orb.Point{(euclidean.X() - origin.X()) * scale, (euclidean.Y() - origin.Y()) * scale}
	}
}

// segments splits ways at nodes which are shared by several ways
func (data *osmDataRaw) segments() []osmSegment {
	useCount := make(map[osm.NodeID]int)
	for _, way := range data.ways {
		for i, nodeID := range way.Nodes {
			useCount[nodeID]++
			// Way ends are always split points
			if i == 0 || i == len(way.Nodes)-1 {
				useCount[nodeID]++
			}
		}
	}
	segments := make([]osmSegment, 0, len(data.ways))
	for _, way := range data.ways {
		current := []osm.NodeID{way.Nodes[0]}
		for _, nodeID := range way.Nodes[1:] {
			current = append(current, nodeID)
			if useCount[nodeID] > 1 {
				segments = append(segments, osmSegment{way: way, nodes: current})
				current = []osm.NodeID{nodeID}
			}
		}
	}
	return segments
}
