package inp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const linksSample = `-- Links: --
------------
LINK      1 NAME "Main street" LABEL 0.00 0.00
  BEHAVIORTYPE     1 DISPLAYTYPE    1
  LENGTH  100.000 LANES  2 LANE_WIDTH  3.50 3.50 GRADIENT 0.00000    COST 0.00000 SURCHARGE 0.00000 SURCHARGE 0.00000 SEGMENT LENGTH   10.000
  FROM 0.0 0.0
  OVER 50.0 5.0 0.000
  TO      100.0 0.0
LINK      2 NAME "" LABEL 0.00 0.00
  BEHAVIORTYPE     3 DISPLAYTYPE    1
  LENGTH   50.000 LANES  1 LANE_WIDTH  3.75 GRADIENT 0.00000    COST 0.00000 SURCHARGE 0.00000 SURCHARGE 0.00000 SEGMENT LENGTH   10.000 EVALUATION
  FROM 100.0 0.0
  TO      150.0 0.0
`

func TestDecodeLinks(t *testing.T) {
	links, diags := DecodeLinks(strings.NewReader(linksSample))
	require.Empty(t, diags)
	require.Len(t, links, 2)

	first := links[1]
	assert.Equal(t, `"Main street"`, first.Name)
	assert.Equal(t, Label{"0.00", "0.00"}, first.Label)
	assert.Equal(t, "1", first.BehaviorType)
	assert.Equal(t, "100.000", first.Length)
	assert.Equal(t, 2, first.Lanes)
	assert.Equal(t, []string{"3.50", "3.50"}, first.LaneWidths)
	assert.Equal(t, [2]string{"0.00000", "0.00000"}, first.Surcharges)
	assert.Equal(t, "10.000", first.SegmentLength)
	assert.Equal(t, orb.Point{0, 0}, first.From)
	assert.Equal(t, orb.LineString{{50, 5}}, first.Over)
	assert.Equal(t, orb.Point{100, 0}, first.To)
	assert.False(t, first.Evaluation)

	second := links[2]
	assert.Equal(t, `""`, second.Name)
	assert.Equal(t, "3", second.BehaviorType)
	assert.Equal(t, []string{"3.75"}, second.LaneWidths)
	assert.Nil(t, second.Over)
	assert.True(t, second.Evaluation)
}

func TestLinksRoundTrip(t *testing.T) {
	links, diags := DecodeLinks(strings.NewReader(linksSample))
	require.Empty(t, diags)

	var buf bytes.Buffer
	require.NoError(t, WriteLinks(&buf, links))
	assert.Equal(t, linksSample, buf.String())

	again, diags := DecodeLinks(&buf)
	require.Empty(t, diags)
	assert.Equal(t, links, again)
}

func TestLinkMinimalBlock(t *testing.T) {
	src := "-- Links: --\n" +
		`LINK 1 NAME "" LABEL 0.00 0.00` + "\n" +
		"BEHAVIORTYPE 1 DISPLAYTYPE 1\n" +
		"FROM 0.0 0.0\n" +
		"TO 100.0 0.0\n"
	links, diags := DecodeLinks(strings.NewReader(src))
	require.Empty(t, diags)
	require.Len(t, links, 1)
	link := links[1]
	assert.Equal(t, LinkID(1), link.ID)
	assert.Equal(t, `""`, link.Name)
	assert.Equal(t, "1", link.BehaviorType)
	assert.Equal(t, "1", link.DisplayType)
	assert.Equal(t, orb.Point{0, 0}, link.From)
	assert.Equal(t, orb.Point{100, 0}, link.To)
}

func TestLinkLaneWidths(t *testing.T) {
	cases := []struct {
		name   string
		length string
		want   []string
	}{
		{"three lanes", "LENGTH 10.0 LANES 3 LANE_WIDTH 3.0 3.5 4.0 GRADIENT 0.0 COST 0.0 SURCHARGE 0.0 SURCHARGE 0.0 SEGMENT LENGTH 10.0", []string{"3.0", "3.5", "4.0"}},
		{"single lane reads one width", "LENGTH 10.0 LANES 1 LANE_WIDTH 3.0 GRADIENT 0.0 COST 0.0 SURCHARGE 0.0 SURCHARGE 0.0 SEGMENT LENGTH 10.0", []string{"3.0"}},
		{"single lane ignores surplus widths", "LENGTH 10.0 LANES 1 LANE_WIDTH 3.0 3.5 4.0 GRADIENT 0.1 COST 0.2 SURCHARGE 0.3 SURCHARGE 0.4 SEGMENT LENGTH 12.0", []string{"3.0"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := "-- Links: --\nLINK 1 NAME \"\" LABEL 0.00 0.00\n" + tc.length + "\n"
			links, diags := DecodeLinks(strings.NewReader(src))
			require.Empty(t, diags)
			assert.Equal(t, tc.want, links[1].LaneWidths)
		})
	}

	src := "-- Links: --\nLINK 1 NAME \"\" LABEL 0.00 0.00\n" + cases[2].length + "\n"
	links, diags := DecodeLinks(strings.NewReader(src))
	require.Empty(t, diags)
	assert.Equal(t, "0.1", links[1].Gradient)
	assert.Equal(t, "0.2", links[1].Cost)
	assert.Equal(t, [2]string{"0.3", "0.4"}, links[1].Surcharges)
	assert.Equal(t, "12.0", links[1].SegmentLength)
}

func TestLinkHugeLaneCount(t *testing.T) {
	for _, lanes := range []string{"9223372036854775000", "9223372036854775807", "3000000000"} {
		src := "-- Links: --\n" +
			"LINK 1 NAME \"\" LABEL 0.00 0.00\n" +
			"LENGTH 10.0 LANES " + lanes + " LANE_WIDTH 3.5\n"
		links, diags := DecodeLinks(strings.NewReader(src))
		require.Len(t, diags, 1, lanes)
		var formatErr *FormatError
		require.ErrorAs(t, diags[0].Err, &formatErr)
		assert.Equal(t, "LENGTH", formatErr.Keyword)
		assert.Equal(t, 6, formatErr.Index)
		assert.Equal(t, 2, diags[0].Line)
		assert.Len(t, links, 1)
	}
}

func TestLinkBrokenStartKeepsPreviousRecord(t *testing.T) {
	src := "-- Links: --\n" +
		"LINK 1 NAME \"\" LABEL 0.00 0.00\n" +
		"BEHAVIORTYPE 1 DISPLAYTYPE 1\n" +
		"FROM 0.0 0.0\n" +
		"TO 10.0 0.0\n" +
		"LINK x2 NAME \"\" LABEL 0.00 0.00\n" +
		"BEHAVIORTYPE 7 DISPLAYTYPE 7\n" +
		"FROM 500.0 500.0\n" +
		"TO 900.0 900.0\n"
	links, diags := DecodeLinks(strings.NewReader(src))
	require.Len(t, links, 1)
	assert.Equal(t, "1", links[1].BehaviorType)
	assert.Equal(t, orb.Point{0, 0}, links[1].From)
	assert.Equal(t, orb.Point{10, 0}, links[1].To)

	require.Len(t, diags, 4)
	assert.Equal(t, 6, diags[0].Line)
	for i, diag := range diags[1:] {
		var formatErr *FormatError
		require.ErrorAs(t, diag.Err, &formatErr)
		assert.Equal(t, -1, formatErr.Index)
		assert.Equal(t, 7+i, diag.Line)
	}
}

func TestLinkShortLengthLine(t *testing.T) {
	src := "-- Links: --\n" +
		"LINK 1 NAME \"\" LABEL 0.00 0.00\n" +
		"LENGTH 10.0 LANES 3 LANE_WIDTH 3.0 3.5\n" +
		"FROM 1.0 2.0\n" +
		"LINK 2 NAME \"\" LABEL 0.00 0.00\n"
	links, diags := DecodeLinks(strings.NewReader(src))
	require.Len(t, diags, 1)
	assert.Equal(t, 3, diags[0].Line)
	var formatErr *FormatError
	require.ErrorAs(t, diags[0].Err, &formatErr)
	assert.Equal(t, "LENGTH", formatErr.Keyword)
	assert.True(t, diags.Fatal())
	// Best effort: the rest of the file is still decoded
	require.Len(t, links, 2)
	assert.Equal(t, orb.Point{1, 2}, links[1].From)

	links, diags = DecodeLinks(strings.NewReader(src), WithStrictMode(true))
	require.Len(t, diags, 1)
	assert.Len(t, links, 1)
}

func TestLinkOverAccumulates(t *testing.T) {
	src := "-- Links: --\n" +
		"LINK 1 NAME \"\" LABEL 0.00 0.00\n" +
		"FROM 0.0 0.0\n" +
		"OVER 1.0 1.0 0.000 OVER 2.0 2.0 0.000\n" +
		"OVER 3.0 3.0 0.000\n" +
		"TO 4.0 4.0\n"
	links, diags := DecodeLinks(strings.NewReader(src))
	require.Empty(t, diags)
	assert.Equal(t, orb.LineString{{1, 1}, {2, 2}, {3, 3}}, links[1].Over)
}

func TestCreateLink(t *testing.T) {
	links := Links{}
	_, err := links.Create(orb.Point{0, 0}, orb.Point{3, 4})
	var missing *MissingIdError
	require.ErrorAs(t, err, &missing)
	assert.Empty(t, links)

	straight, err := links.Create(orb.Point{0, 0}, orb.Point{3, 4}, WithLinkID(1))
	require.NoError(t, err)
	assert.Equal(t, "5.0", straight.Length)
	assert.InDelta(t, 5.0, straight.LengthMeters(), 1e-6)
	assert.Nil(t, straight.Over)

	curved, err := links.Create(orb.Point{0, 0}, orb.Point{4, 4}, WithLinkID(3), WithLinkOver(orb.LineString{{0, 4}}))
	require.NoError(t, err)
	assert.InDelta(t, 8.0, curved.LengthMeters(), 1e-6)

	next, err := links.Create(orb.Point{0, 0}, orb.Point{1, 0}, WithLanes(2), WithLinkName("Side"))
	require.NoError(t, err)
	assert.Equal(t, LinkID(4), next.ID)
	assert.Equal(t, `"Side"`, next.Name)
	assert.Equal(t, []string{"3.66", "3.66"}, next.LaneWidths)
	assert.Equal(t, "1", next.BehaviorType)
	assert.Equal(t, Label{"0.00", "0.00"}, next.Label)

	lines, err := next.Encode()
	require.NoError(t, err)
	assert.Equal(t, "  LENGTH      1.0 LANES  2 LANE_WIDTH  3.66 3.66 GRADIENT 0.00000    COST 0.00000 SURCHARGE 0.00000 SURCHARGE 0.00000 SEGMENT LENGTH   10.000", lines[2])
}

func TestLinkEncodeInconsistent(t *testing.T) {
	link := &Link{ID: 7, Lanes: 3, LaneWidths: []string{"3.5", "3.5"}}
	_, err := link.Encode()
	var consistency *ConsistencyError
	require.ErrorAs(t, err, &consistency)
	assert.Equal(t, 7, consistency.ID)
}

func TestCreateLinkZeroID(t *testing.T) {
	links := Links{}
	_, err := links.Create(orb.Point{0, 0}, orb.Point{1, 0}, WithLinkID(0))
	var missing *MissingIdError
	require.ErrorAs(t, err, &missing)

	_, err = links.Create(orb.Point{0, 0}, orb.Point{1, 0}, WithLinkID(5))
	require.NoError(t, err)
	link, err := links.Create(orb.Point{0, 0}, orb.Point{1, 0}, WithLinkID(0))
	require.NoError(t, err)
	assert.Equal(t, LinkID(6), link.ID)
	assert.NotContains(t, links, LinkID(0))
}
