package inp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const osmJunction = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
  <node id="1" lat="0.0" lon="0.0"/>
  <node id="2" lat="0.0" lon="0.001"/>
  <node id="3" lat="0.0" lon="0.002"/>
  <node id="4" lat="0.001" lon="0.001"/>
  <node id="5" lat="0.001" lon="0.002"/>
  <way id="10">
    <nd ref="1"/>
    <nd ref="2"/>
    <nd ref="3"/>
    <tag k="highway" v="primary"/>
    <tag k="oneway" v="yes"/>
    <tag k="lanes" v="2"/>
    <tag k="name" v="Main &quot;Street&quot;"/>
  </way>
  <way id="11">
    <nd ref="2"/>
    <nd ref="4"/>
    <tag k="highway" v="residential"/>
    <tag k="oneway" v="yes"/>
  </way>
  <way id="12">
    <nd ref="4"/>
    <nd ref="5"/>
    <tag k="highway" v="footway"/>
  </way>
  <way id="13">
    <nd ref="3"/>
    <nd ref="5"/>
    <tag k="highway" v="service"/>
    <tag k="access" v="no"/>
  </way>
</osm>
`

const osmStreet = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="test">
  <node id="1" lat="0.0" lon="0.0"/>
  <node id="2" lat="0.0" lon="0.001"/>
  <way id="20">
    <nd ref="1"/>
    <nd ref="2"/>
    <tag k="highway" v="residential"/>
  </way>
</osm>
`

func writeOSM(t *testing.T, content string) string {
	t.Helper()
	fname := filepath.Join(t.TempDir(), "map.osm")
	require.NoError(t, os.WriteFile(fname, []byte(content), 0o644))
	return fname
}

func TestImportOSMJunction(t *testing.T) {
	net, err := ImportOSM(writeOSM(t, osmJunction))
	require.NoError(t, err)
	require.Len(t, net.Links, 3)
	require.Len(t, net.Connectors, 2)

	west := net.Links[1]
	assert.Equal(t, 2, west.Lanes)
	assert.Equal(t, []string{"3.50", "3.50"}, west.LaneWidths)
	assert.Equal(t, `"Main 'Street'"`, west.Name)
	assert.Equal(t, behaviorUrban, west.BehaviorType)
	assert.InDelta(t, 0.0, west.From.X(), 1e-9)
	assert.InDelta(t, 111.319, west.To.X(), 1e-2)

	side := net.Links[3]
	assert.Equal(t, 1, side.Lanes)
	assert.Equal(t, `""`, side.Name)
	assert.Equal(t, west.To, side.From)

	thru := net.Connectors[10000]
	assert.Equal(t, `"EBT"`, thru.Name)
	assert.Equal(t, LinkID(1), thru.FromLink)
	assert.Equal(t, LinkID(2), thru.ToLink)
	assert.Equal(t, []int{1, 2}, thru.FromLanes)
	assert.Equal(t, []int{1, 2}, thru.ToLanes)
	assert.Equal(t, west.Length, thru.FromAt)

	left := net.Connectors[10001]
	assert.Equal(t, `"EBL"`, left.Name)
	assert.Equal(t, LinkID(3), left.ToLink)
	assert.Equal(t, []int{2}, left.FromLanes)
	assert.Equal(t, []int{1}, left.ToLanes)
}

func TestImportOSMTwoWayStreet(t *testing.T) {
	net, err := ImportOSM(writeOSM(t, osmStreet), WithStartLinkID(100), WithStartConnectorID(1), WithLaneWidth(3))
	require.NoError(t, err)
	require.Len(t, net.Links, 2)
	assert.Empty(t, net.Connectors)

	forward, backward := net.Links[100], net.Links[101]
	require.NotNil(t, forward)
	require.NotNil(t, backward)
	// Eastbound traffic keeps to the south side of the axis
	assert.InDelta(t, -1.5, forward.From.Y(), 1e-6)
	assert.InDelta(t, 1.5, backward.From.Y(), 1e-6)
	assert.Greater(t, backward.From.X(), backward.To.X())
	assert.Equal(t, []string{"3.00"}, forward.LaneWidths)
}

func TestImportOSMUTurnThreshold(t *testing.T) {
	// Any turn is filtered out when threshold is zero
	net, err := ImportOSM(writeOSM(t, osmJunction), WithUTurnAngle(0))
	require.NoError(t, err)
	assert.Empty(t, net.Connectors)
	assert.Len(t, net.Links, 3)
}

func TestImportOSMErrors(t *testing.T) {
	_, err := ImportOSM(filepath.Join(t.TempDir(), "missing.osm"))
	var accessErr *FileAccessError
	require.ErrorAs(t, err, &accessErr)

	fname := filepath.Join(t.TempDir(), "map.json")
	require.NoError(t, os.WriteFile(fname, []byte("{}"), 0o644))
	_, err = ImportOSM(fname)
	require.Error(t, err)
}

func TestMovementLanes(t *testing.T) {
	from, to := movementLanes(MOVEMENT_THRU, 3, 2)
	assert.Equal(t, []int{1, 2}, from)
	assert.Equal(t, []int{1, 2}, to)
	from, to = movementLanes(MOVEMENT_RIGHT, 3, 2)
	assert.Equal(t, []int{1}, from)
	assert.Equal(t, []int{1}, to)
	from, to = movementLanes(MOVEMENT_LEFT, 3, 2)
	assert.Equal(t, []int{3}, from)
	assert.Equal(t, []int{2}, to)
}
