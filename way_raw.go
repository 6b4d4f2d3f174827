package inp

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/paulmach/osm"
)

// osmWay is a highway way with tags flattened for import
type osmWay struct {
	ID            osm.WayID
	Nodes         []osm.NodeID
	TagMap        osm.Tags
	name          string
	highway       string
	motorVehicle  string
	motorcar      string
	access        string
	service       string
	area          string
	lanes         int
	lanesForward  int
	lanesBackward int
	linkType      LinkType
	Oneway        bool
	IsReversed    bool
}

var (
	lanesRegExp = regexp.MustCompile(`\d+`)
)

func newOSMWay(way *osm.Way, verbose bool) *osmWay {
	prepared := &osmWay{
		ID:            way.ID,
		Nodes:         make([]osm.NodeID, 0, len(way.Nodes)),
		TagMap:        make(osm.Tags, len(way.Tags)),
		lanes:         -1,
		lanesForward:  -1,
		lanesBackward: -1,
	}
	copy(prepared.TagMap, way.Tags)
	for _, node := range way.Nodes {
		prepared.Nodes = append(prepared.Nodes, node.ID)
	}
	prepared.processTags(verbose)
	return prepared
}

func (way *osmWay) processTags(verbose bool) {
	way.name = way.TagMap.Find("name")
	way.highway = way.TagMap.Find("highway")
	way.motorVehicle = way.TagMap.Find("motor_vehicle")
	way.motorcar = way.TagMap.Find("motorcar")
	way.access = way.TagMap.Find("access")
	way.service = way.TagMap.Find("service")
	way.area = way.TagMap.Find("area")
	way.linkType = linkTypeByHighway[getHighwayType(way.highway)]

	way.lanes = parseLanes(way.TagMap.Find("lanes"), "lanes", way.ID, verbose)
	way.lanesForward = parseLanes(way.TagMap.Find("lanes:forward"), "lanes:forward", way.ID, verbose)
	way.lanesBackward = parseLanes(way.TagMap.Find("lanes:backward"), "lanes:backward", way.ID, verbose)

	onewayText := way.TagMap.Find("oneway")
	switch onewayText {
	case "yes", "1", "true":
		way.Oneway = true
	case "-1", "reverse":
		way.Oneway = true
		way.IsReversed = true
	case "", "no", "0", "false":
		way.Oneway = way.TagMap.Find("junction") == "roundabout" || way.linkType == LINK_MOTORWAY
	default:
		// Reversible and alternating ways depend on time conditions
		way.Oneway = false
		if verbose {
			fmt.Printf("[WARNING]: Unhandled `oneway` tag value has been met: '%s'. Way ID: '%d'\n", onewayText, way.ID)
		}
	}
}

// parseLanes returns -1 when the tag is absent or malformed. Values like "2;3" take the first number
func parseLanes(value, tag string, wayID osm.WayID, verbose bool) int {
	if value == "" {
		return -1
	}
	lanesNum := lanesRegExp.FindString(value)
	lanes, err := strconv.Atoi(lanesNum)
	if err != nil || lanes <= 0 {
		if verbose {
			fmt.Printf("[WARNING]: Provided `%s` tag value should be a positive integer. Got '%s'. Way ID: '%d'\n", tag, value, wayID)
		}
		return -1
	}
	return lanes
}

// allowsAuto checks access tags for motorized traffic
func (way *osmWay) allowsAuto() bool {
	values := map[AccessType]string{
		ACCESS_MOTOR_VEHICLE: way.motorVehicle,
		ACCESS_MOTORCAR:      way.motorcar,
		ACCESS_OSM_ACCESS:    way.access,
		ACCESS_SERVICE:       way.service,
	}
	for accessType, allowed := range autoAccessInclude {
		if _, ok := allowed[values[accessType]]; ok {
			return true
		}
	}
	for accessType, denied := range autoAccessExclude {
		if _, ok := denied[values[accessType]]; ok {
			return false
		}
	}
	return true
}

// directionLanes returns lanes for forward and backward direction of the way. Oneway ways have no backward lanes
func (way *osmWay) directionLanes() (int, int) {
	defaultLanes := defaultLanesByLinkType[way.linkType]
	if defaultLanes == 0 {
		defaultLanes = 1
	}
	if way.Oneway {
		switch {
		case way.lanes > 0:
			return way.lanes, 0
		case way.lanesForward > 0:
			return way.lanesForward, 0
		}
		return defaultLanes, 0
	}
	forward, backward := way.lanesForward, way.lanesBackward
	if way.lanes > 0 {
		switch {
		case forward < 0 && backward < 0:
			forward = (way.lanes + 1) / 2
			backward = way.lanes - forward
		case forward < 0:
			forward = way.lanes - backward
		case backward < 0:
			backward = way.lanes - forward
		}
	}
	if forward <= 0 {
		forward = defaultLanes
	}
	if backward <= 0 {
		backward = defaultLanes
	}
	return forward, backward
}

// linkName returns way name safe to be put in quotes
func (way *osmWay) linkName() string {
	return strings.ReplaceAll(way.name, quote, "'")
}
