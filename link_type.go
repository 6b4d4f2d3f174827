package inp

type LinkType uint16

const (
	LINK_MOTORWAY = LinkType(iota + 1)
	LINK_TRUNK
	LINK_PRIMARY
	LINK_SECONDARY
	LINK_TERTIARY
	LINK_RESIDENTIAL
	LINK_LIVING_STREET
	LINK_SERVICE
	LINK_UNCLASSIFIED
)

func (iotaIdx LinkType) String() string {
	return [...]string{"motorway", "trunk", "primary", "secondary", "tertiary", "residential", "living_street", "service", "unclassified"}[iotaIdx-1]
}

// Driving behavior presets of the simulation
const (
	behaviorUrban   = "1"
	behaviorFreeway = "3"
)

var (
	// defaultLanesByLinkType is the number of lanes per direction when the way has no `lanes` tags
	defaultLanesByLinkType = map[LinkType]int{
		LINK_MOTORWAY:      4,
		LINK_TRUNK:         3,
		LINK_PRIMARY:       3,
		LINK_SECONDARY:     2,
		LINK_TERTIARY:      2,
		LINK_RESIDENTIAL:   1,
		LINK_LIVING_STREET: 1,
		LINK_SERVICE:       1,
		LINK_UNCLASSIFIED:  1,
	}
	behaviorTypeByLinkType = map[LinkType]string{
		LINK_MOTORWAY:      behaviorFreeway,
		LINK_TRUNK:         behaviorFreeway,
		LINK_PRIMARY:       behaviorUrban,
		LINK_SECONDARY:     behaviorUrban,
		LINK_TERTIARY:      behaviorUrban,
		LINK_RESIDENTIAL:   behaviorUrban,
		LINK_LIVING_STREET: behaviorUrban,
		LINK_SERVICE:       behaviorUrban,
		LINK_UNCLASSIFIED:  behaviorUrban,
	}
)
