package inp

import (
	"fmt"
	"strings"
)

// OSMImporter turns OSM highways into links and connectors
type OSMImporter struct {
	filename         string
	highways         []string
	laneWidth        float64
	startLinkID      int
	startConnectorID int
	uturnAngle       float64
	verbose          bool
	defaults         Defaults
}

func (importer *OSMImporter) String() string {
	return fmt.Sprintf(`
OSM importer parameters:
	filename: '%s'
	highways: '%s'
	lane_width: %f
	start_link_id: %d
	start_connector_id: %d
	uturn_angle: %f
	verbose: %t
	`,
		importer.filename,
		strings.Join(importer.highways, ","),
		importer.laneWidth,
		importer.startLinkID,
		importer.startConnectorID,
		importer.uturnAngle,
		importer.verbose,
	)
}

func NewOSMImporter(fileName string, options ...func(*OSMImporter)) *OSMImporter {
	importer := &OSMImporter{
		filename:         fileName,
		highways:         DefaultHighways,
		laneWidth:        3.5,
		startLinkID:      1,
		startConnectorID: 10000,
		uturnAngle:       170.0,
		verbose:          false,
		defaults:         DefaultValues(),
	}
	for _, option := range options {
		option(importer)
	}
	return importer
}

// WithHighways sets `highway` tag values to be imported
func WithHighways(highways []string) func(*OSMImporter) {
	return func(importer *OSMImporter) {
		importer.highways = highways
	}
}

// WithLaneWidth sets width of every lane, meters
func WithLaneWidth(laneWidth float64) func(*OSMImporter) {
	return func(importer *OSMImporter) {
		importer.laneWidth = laneWidth
	}
}

func WithStartLinkID(startLinkID int) func(*OSMImporter) {
	return func(importer *OSMImporter) {
		importer.startLinkID = startLinkID
	}
}

// WithStartConnectorID sets first connector id. It is moved past the last link id if they collide
func WithStartConnectorID(startConnectorID int) func(*OSMImporter) {
	return func(importer *OSMImporter) {
		importer.startConnectorID = startConnectorID
	}
}

// WithUTurnAngle sets turn angle (degrees) starting from which links are not connected
func WithUTurnAngle(degrees float64) func(*OSMImporter) {
	return func(importer *OSMImporter) {
		importer.uturnAngle = degrees
	}
}

func WithVerbose(verbose bool) func(*OSMImporter) {
	return func(importer *OSMImporter) {
		importer.verbose = verbose
	}
}

// WithImportDefaults sets factory defaults of the created network
func WithImportDefaults(defaults Defaults) func(*OSMImporter) {
	return func(importer *OSMImporter) {
		importer.defaults = defaults
	}
}

func (importer *OSMImporter) highwaysSet() map[string]struct{} {
	set := make(map[string]struct{}, len(importer.highways))
	for _, highway := range importer.highways {
		set[highway] = struct{}{}
	}
	return set
}
