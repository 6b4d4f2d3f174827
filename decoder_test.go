package inp

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// networkSample holds every section in the order the network is written
var networkSample = linksSample + connectorsSample + parkingSample + inputsSample + routingSample + transitSample + nodesSample

func TestDecodeNetwork(t *testing.T) {
	net, diags := DecodeNetwork(strings.NewReader(networkSample))
	require.Empty(t, diags)
	assert.Len(t, net.Links, 2)
	assert.Len(t, net.Connectors, 2)
	assert.Len(t, net.ParkingLots, 2)
	assert.Len(t, net.Inputs, 2)
	assert.Equal(t, 2, net.RoutingDecisions.Len())
	assert.Len(t, net.TransitLines, 2)
	assert.Len(t, net.Nodes, 2)
}

func TestNetworkWrite(t *testing.T) {
	net, diags := DecodeNetwork(strings.NewReader(networkSample))
	require.Empty(t, diags)

	var buf bytes.Buffer
	require.NoError(t, net.Write(&buf))
	assert.Equal(t, networkSample, buf.String())
}

func TestNetworkWriteSkipsEmptySections(t *testing.T) {
	net, diags := DecodeNetwork(strings.NewReader(nodesSample + linksSample))
	require.Empty(t, diags)

	var buf bytes.Buffer
	require.NoError(t, net.Write(&buf))
	assert.Equal(t, linksSample+nodesSample, buf.String())
}

func TestNetworkWriteFailsAtomically(t *testing.T) {
	net := NewNetwork()
	net.Links[1] = &Link{ID: 1, Lanes: 2, LaneWidths: []string{"3.5"}}

	fname := filepath.Join(t.TempDir(), "broken.inp")
	err := net.Export(fname)
	var consistency *ConsistencyError
	require.ErrorAs(t, err, &consistency)
	_, err = os.Stat(fname)
	assert.True(t, os.IsNotExist(err))
}

func TestDecodeSelectedSections(t *testing.T) {
	net, diags := DecodeNetwork(strings.NewReader(networkSample), WithSections(SectionNodes, SectionInputs))
	require.Empty(t, diags)
	assert.Empty(t, net.Links)
	assert.Empty(t, net.Connectors)
	assert.Equal(t, 0, net.RoutingDecisions.Len())
	assert.Len(t, net.Nodes, 2)
	assert.Len(t, net.Inputs, 2)

	// Single-section readers ignore everything else in the stream
	lots, diags := DecodeParkingLots(strings.NewReader(networkSample))
	require.Empty(t, diags)
	assert.Len(t, lots, 2)
}

func TestUnrecognizedTokens(t *testing.T) {
	src := "Some preamble the decoder does not know about\n" +
		"-- Links: --\n" +
		"------------\n" +
		"LINK 1 NAME \"\" LABEL 0.00 0.00\n" +
		"WIDTH 3.0\n" +
		"FROM 0.0 0.0\n" +
		"\n" +
		"   \n" +
		"TO 1.0 0.0\n" +
		"-- Signal Controllers: --\n" +
		"SIGNAL_CONTROLLER 1\n"
	links, diags := DecodeLinks(strings.NewReader(src))
	require.Len(t, diags, 1)
	assert.Equal(t, 5, diags[0].Line)
	assert.Equal(t, SectionLinks, diags[0].Section)
	assert.False(t, diags.Fatal())
	assert.Equal(t, "line 5: Unrecognized token 'WIDTH' in section 'Links:'", diags[0].String())
	require.Len(t, links, 1)
	assert.Equal(t, 1.0, links[1].To.X())
}

func TestStrictMode(t *testing.T) {
	src := "-- Links: --\n" +
		"LINK 1 NAME \"\" LABEL 0.00 0.00\n" +
		"FROM x 0.0\n" +
		"LINK 2 NAME \"\" LABEL 0.00 0.00\n" +
		"-- Nodes: --\n" +
		"NODE 1 NAME \"\" LABEL 0.00 0.00\n"

	net, diags := DecodeNetwork(strings.NewReader(src))
	require.Len(t, diags, 1)
	assert.Len(t, net.Links, 2)
	assert.Len(t, net.Nodes, 1)

	net, diags = DecodeNetwork(strings.NewReader(src), WithStrictMode(true))
	require.Len(t, diags, 1)
	require.Error(t, diags.Err())
	assert.Contains(t, diags.Err().Error(), "token #1 should be a number")
	assert.Len(t, net.Links, 1)
	assert.Empty(t, net.Nodes)
}

func TestReadNetwork(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "net.inp")
	require.NoError(t, os.WriteFile(fname, []byte(networkSample), 0o644))

	net, diags := ReadNetwork(fname)
	require.Empty(t, diags)
	assert.NoError(t, diags.Err())
	assert.Len(t, net.Links, 2)

	links, diags := ReadLinks(fname)
	require.Empty(t, diags)
	assert.Len(t, links, 2)

	out := filepath.Join(t.TempDir(), "out.inp")
	require.NoError(t, net.Export(out))
	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, networkSample, string(written))
}

func TestReadMissingFile(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "missing.inp")
	net, diags := ReadNetwork(fname, WithRoutingKeyByLink(true))
	require.Len(t, diags, 1)
	assert.True(t, diags.Fatal())
	var accessErr *FileAccessError
	require.ErrorAs(t, diags[0].Err, &accessErr)
	assert.Equal(t, fname, accessErr.Filename)
	assert.True(t, os.IsNotExist(accessErr.Cause))

	assert.Empty(t, net.Links)
	assert.True(t, net.RoutingDecisions.KeyByLink)

	nodes, diags := ReadNodes(fname)
	require.Len(t, diags, 1)
	assert.Empty(t, nodes)
}

func TestDecoderString(t *testing.T) {
	dec := NewDecoder(WithStrictMode(true), WithSections(SectionLinks, SectionNodes))
	assert.Contains(t, dec.String(), "strict_mode enabled?: true")
	assert.Contains(t, dec.String(), "sections: 'Links:,Nodes:'")
}
