package inp

import (
	"os"
	"strings"

	"github.com/paulmach/orb"
	geojson "github.com/paulmach/go.geojson"
	"github.com/pkg/errors"
)

// lineStringCoords converts polyline to GeoJSON coordinates
func lineStringCoords(line orb.LineString) [][]float64 {
	pts2d := make([][]float64, len(line))
	for i := range line {
		pts2d[i] = []float64{line[i].X(), line[i].Y()}
	}
	return pts2d
}

// ringCoords converts area to closed GeoJSON ring
func ringCoords(ring orb.Ring) [][]float64 {
	return lineStringCoords(orb.LineString(closeRing(ring)))
}

// GeoJSON returns links and connectors as LineString features and area nodes as Polygon features.
// Coordinates are network coordinates as written in the file.
func (net *Network) GeoJSON() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, id := range net.Links.ids() {
		link := net.Links[LinkID(id)]
		feature := geojson.NewLineStringFeature(lineStringCoords(link.Geometry()))
		feature.SetProperty("kind", "link")
		feature.SetProperty("id", int(link.ID))
		feature.SetProperty("name", strings.Trim(link.Name, quote))
		feature.SetProperty("lanes", link.Lanes)
		feature.SetProperty("length", link.LengthMeters())
		fc.AddFeature(feature)
	}
	for _, id := range net.Connectors.ids() {
		connector := net.Connectors[ConnectorID(id)]
		feature := geojson.NewLineStringFeature(lineStringCoords(connector.Over))
		feature.SetProperty("kind", "connector")
		feature.SetProperty("id", int(connector.ID))
		feature.SetProperty("name", strings.Trim(connector.Name, quote))
		feature.SetProperty("from_link", int(connector.FromLink))
		feature.SetProperty("to_link", int(connector.ToLink))
		fc.AddFeature(feature)
	}
	for _, id := range net.Nodes.ids() {
		node := net.Nodes[NodeID(id)]
		if len(node.Area) == 0 {
			continue
		}
		feature := geojson.NewPolygonFeature([][][]float64{ringCoords(node.Area)})
		feature.SetProperty("kind", "node")
		feature.SetProperty("id", int(node.ID))
		feature.SetProperty("name", strings.Trim(node.Name, quote))
		fc.AddFeature(feature)
	}
	return fc
}

// ExportToGeoJSON writes GeoJSON representation of the network into fname
func (net *Network) ExportToGeoJSON(fname string) error {
	b, err := net.GeoJSON().MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "Can't convert network to geojson format")
	}
	err = os.WriteFile(fname, b, 0644)
	if err != nil {
		return errors.Wrap(err, "Can't write geojson file")
	}
	return nil
}
