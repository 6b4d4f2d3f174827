package inp

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// LinkWKT returns WKT representation of the full link polyline
func LinkWKT(link *Link) string {
	return wkt.MarshalString(link.Geometry())
}

// ConnectorWKT returns WKT representation of the connector polyline. Empty string for connectors without points
func ConnectorWKT(connector *Connector) string {
	if len(connector.Over) == 0 {
		return ""
	}
	return wkt.MarshalString(connector.Over)
}

// NodeWKT returns WKT polygon of the node area. Empty string for nodes defined by links
func NodeWKT(node *Node) string {
	if len(node.Area) == 0 {
		return ""
	}
	return wkt.MarshalString(orb.Polygon{closeRing(node.Area)})
}

func closeRing(ring orb.Ring) orb.Ring {
	if len(ring) == 0 || ring.Closed() {
		return ring
	}
	closed := make(orb.Ring, 0, len(ring)+1)
	closed = append(closed, ring...)
	return append(closed, ring[0])
}
