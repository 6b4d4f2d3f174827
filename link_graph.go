package inp

import (
	"fmt"

	"github.com/LdDl/ch"
	"github.com/pkg/errors"
)

// LinkGraph is a contraction hierarchies graph where both links and connectors are vertices.
// Edge link->connector weights the link length, edge connector->link weights the connector length.
type LinkGraph struct {
	graph      ch.Graph
	links      map[int64]bool
	connectors map[int64]bool
}

// NewLinkGraph builds and contracts graph of the network. Link and connector ids must not collide.
func NewLinkGraph(links Links, connectors Connectors) (*LinkGraph, error) {
	lg := &LinkGraph{
		graph:      ch.Graph{},
		links:      make(map[int64]bool, len(links)),
		connectors: make(map[int64]bool, len(connectors)),
	}
	for _, id := range links.ids() {
		vertex := int64(id)
		err := lg.graph.CreateVertex(vertex)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't create vertex for link %d", id)
		}
		lg.links[vertex] = true
	}
	for _, id := range connectors.ids() {
		vertex := int64(id)
		if lg.links[vertex] {
			return nil, &ConsistencyError{Entity: "connector", ID: id, Reason: "id collides with link id"}
		}
		connector := connectors[ConnectorID(id)]
		source, ok := links[connector.FromLink]
		if !ok {
			continue
		}
		if _, ok := links[connector.ToLink]; !ok {
			continue
		}
		err := lg.graph.CreateVertex(vertex)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't create vertex for connector %d", id)
		}
		lg.connectors[vertex] = true
		err = lg.graph.AddEdge(int64(connector.FromLink), vertex, source.LengthMeters())
		if err != nil {
			return nil, errors.Wrapf(err, "Can't wrap link %d and connector %d as edge", connector.FromLink, id)
		}
		err = lg.graph.AddEdge(vertex, int64(connector.ToLink), connector.LengthMeters())
		if err != nil {
			return nil, errors.Wrapf(err, "Can't wrap connector %d and link %d as edge", id, connector.ToLink)
		}
	}
	lg.graph.PrepareContractionHierarchies()
	return lg, nil
}

// ShortestPath returns ids of links and connectors traversed from one link to another, both ends included
func (lg *LinkGraph) ShortestPath(from, to LinkID) ([]int, float64, error) {
	if !lg.links[int64(from)] {
		return nil, -1, errors.Errorf("Link %d is not in the graph", from)
	}
	if !lg.links[int64(to)] {
		return nil, -1, errors.Errorf("Link %d is not in the graph", to)
	}
	if from == to {
		return []int{int(from)}, 0, nil
	}
	cost, vertices := lg.graph.ShortestPath(int64(from), int64(to))
	if cost < 0 || len(vertices) == 0 {
		return nil, -1, errors.Errorf("No path between links %d and %d", from, to)
	}
	path := make([]int, len(vertices))
	for i, vertex := range vertices {
		path[i] = int(vertex)
	}
	return path, cost, nil
}

// CompleteRoutes fills traversed links of every route which has none.
// Routes ending on the link they start from are left as is. Unreachable destinations are reported as diagnostics.
func (net *Network) CompleteRoutes(graph *LinkGraph) (int, Diagnostics) {
	filled := 0
	var diags Diagnostics
	for _, decision := range net.RoutingDecisions.All() {
		for _, route := range decision.Routes {
			if route.Over != nil || route.DestinationLink == decision.Link {
				continue
			}
			path, _, err := graph.ShortestPath(decision.Link, route.DestinationLink)
			if err != nil {
				diags = append(diags, Diagnostic{
					Section: SectionRouting,
					Err: &ConsistencyError{
						Entity: "routing decision",
						ID:     decision.Number,
						Reason: fmt.Sprintf("route %d: %s", route.Number, err),
					},
				})
				continue
			}
			route.Over = path
			filled++
		}
	}
	return filled, diags
}
