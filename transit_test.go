package inp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var transitSample = strings.Join([]string{
	`-- Public Transport: --`,
	`-----------------`,
	`LINE    1 NAME "Bus 1"  LINE   1  ROUTE   1    PRIORITY 0  LENGTH 0  MDN 0`,
	`     ANM_ID "" SOURCE    LINK 1 DESIRED_SPEED 50 VEHICLE_TYPE 300`,
	`                  COLOR CYAN TIME_OFFSET    0.0`,
	`            DESTINATION    LINK 2 AT   90.000`,
	`            START_TIMES 100 COURSE 1 OCCUPANCY 0 200 COURSE 2 OCCUPANCY 0 300 COURSE 3 OCCUPANCY 0 400 COURSE 4 OCCUPANCY 0 500 COURSE 5 OCCUPANCY 0 `,
	`600 COURSE 6 OCCUPANCY 10 `,
	`LINE    2 NAME ""  LINE   2  ROUTE  12    PRIORITY 1  LENGTH 12  MDN 3 PT_TELE`,
	`     ANM_ID "7" SOURCE    LINK 4 DESIRED_SPEED 40 VEHICLE_TYPE 400`,
	`                  COLOR RED TIME_OFFSET   30.0`,
	`            DESTINATION    LINK 5 AT  120.500`,
	"",
}, "\n")

func TestDecodeTransitLines(t *testing.T) {
	lines, diags := DecodeTransitLines(strings.NewReader(transitSample))
	require.Empty(t, diags)
	require.Len(t, lines, 2)

	bus := lines[1]
	assert.Equal(t, `"Bus 1"`, bus.Name)
	assert.Equal(t, "1", bus.Route)
	assert.False(t, bus.PTTelematics)
	assert.Equal(t, `""`, bus.AnmID)
	assert.Equal(t, LinkID(1), bus.Link)
	assert.Equal(t, "50", bus.DesiredSpeed)
	assert.Equal(t, "300", bus.VehicleType)
	assert.Equal(t, "CYAN", bus.Color)
	assert.Equal(t, LinkID(2), bus.DestinationLink)
	assert.Equal(t, "90.000", bus.At)
	require.Len(t, bus.StartTimes, 6)
	assert.Equal(t, StartTime{Time: "600", Course: "6", Occupancy: "10"}, bus.StartTimes[5])

	tram := lines[2]
	assert.True(t, tram.PTTelematics)
	assert.Equal(t, "12", tram.Route)
	assert.Equal(t, "1", tram.Priority)
	assert.Equal(t, "3", tram.MeanDistance)
	assert.Equal(t, "30.0", tram.TimeOffset)
	assert.Empty(t, tram.StartTimes)
}

func TestTransitLinesRoundTrip(t *testing.T) {
	lines, diags := DecodeTransitLines(strings.NewReader(transitSample))
	require.Empty(t, diags)

	var buf bytes.Buffer
	require.NoError(t, WriteTransitLines(&buf, lines))
	assert.Equal(t, transitSample, buf.String())
}

func TestTransitWithoutAnmID(t *testing.T) {
	src := "-- Public Transport: --\n" +
		"LINE 1 NAME \"a\" LINE 1 ROUTE 1 PRIORITY 0 LENGTH 0 MDN 0\n" +
		"COLOR CYAN TIME_OFFSET 0.0\n" +
		"LINE 2 NAME \"b\" LINE 2 ROUTE 1 PRIORITY 0 LENGTH 0 MDN 0\n" +
		"ANM_ID \"\" SOURCE LINK 1 DESIRED_SPEED 50 VEHICLE_TYPE 300\n"
	lines, diags := DecodeTransitLines(strings.NewReader(src))
	require.Len(t, diags, 2)

	var formatErr *FormatError
	require.ErrorAs(t, diags[0].Err, &formatErr)
	assert.Equal(t, "COLOR", formatErr.Keyword)
	var consistency *ConsistencyError
	require.ErrorAs(t, diags[1].Err, &consistency)
	assert.Equal(t, 1, consistency.ID)
	assert.Equal(t, 4, diags[1].Line)

	require.Len(t, lines, 1)
	assert.Contains(t, lines, TransitID(2))
}

func TestTransitStrayLines(t *testing.T) {
	src := "-- Public Transport: --\n" +
		"LINE 1 NAME \"a\" LINE 1 ROUTE 1 PRIORITY 0 LENGTH 0 MDN 0\n" +
		"ANM_ID \"\" SOURCE LINK 1 DESIRED_SPEED 50 VEHICLE_TYPE 300\n" +
		"STOP\n" +
		"100 NOT_A_COURSE\n" +
		"100 COURSE 1 OCCUPANCY 0\n"
	lines, diags := DecodeTransitLines(strings.NewReader(src))
	require.Len(t, diags, 2)
	var formatErr *FormatError
	require.ErrorAs(t, diags[0].Err, &formatErr)
	assert.Equal(t, 1, formatErr.Index)
	var tokenErr *UnrecognizedTokenError
	require.ErrorAs(t, diags[1].Err, &tokenErr)
	assert.Equal(t, "100", tokenErr.Token)

	require.Len(t, lines, 1)
	assert.Equal(t, []StartTime{{Time: "100", Course: "1", Occupancy: "0"}}, lines[1].StartTimes)
}

func TestCreateTransitLine(t *testing.T) {
	lines := TransitLines{}
	_, err := lines.Create(1, 2, 90, 50, 300)
	var missing *MissingIdError
	require.ErrorAs(t, err, &missing)

	line, err := lines.Create(1, 2, 90, 50, 300, WithTransitID(1), WithTransitName("Bus 1"),
		WithStartTimes(StartTime{"100", "1", "0"}, StartTime{"200", "2", "0"}))
	require.NoError(t, err)
	out, err := line.Encode()
	require.NoError(t, err)
	assert.Equal(t, []string{
		`LINE    1 NAME "Bus 1"  LINE   1  ROUTE   0    PRIORITY 0  LENGTH 0  MDN 0`,
		`     ANM_ID "" SOURCE    LINK 1 DESIRED_SPEED 50 VEHICLE_TYPE 300`,
		`                  COLOR CYAN TIME_OFFSET    0.0`,
		`            DESTINATION    LINK 2 AT     90.0`,
		`            START_TIMES 100 COURSE 1 OCCUPANCY 0 200 COURSE 2 OCCUPANCY 0 `,
	}, out)

	next, err := lines.Create(3, 4, 10, 30, 400, WithColor("RED"))
	require.NoError(t, err)
	assert.Equal(t, TransitID(2), next.ID)
	assert.Equal(t, "RED", next.Color)
}

func TestTransitBrokenStartKeepsPreviousRecord(t *testing.T) {
	src := "-- Public Transport: --\n" +
		"LINE 1 NAME \"a\" LINE 1 ROUTE 1 PRIORITY 0 LENGTH 0 MDN 0\n" +
		"ANM_ID \"\" SOURCE LINK 1 DESIRED_SPEED 50 VEHICLE_TYPE 300\n" +
		"COLOR CYAN TIME_OFFSET 0.0\n" +
		"LINE x NAME \"b\" LINE 2 ROUTE 1 PRIORITY 0 LENGTH 0 MDN 0\n" +
		"ANM_ID \"\" SOURCE LINK 9 DESIRED_SPEED 90 VEHICLE_TYPE 900\n" +
		"COLOR RED TIME_OFFSET 0.0\n"
	lines, diags := DecodeTransitLines(strings.NewReader(src))
	require.Len(t, lines, 1)
	assert.Equal(t, LinkID(1), lines[1].Link)
	assert.Equal(t, "CYAN", lines[1].Color)
	require.Len(t, diags, 3)
	assert.Equal(t, 5, diags[0].Line)
	assert.Equal(t, 6, diags[1].Line)
	assert.Equal(t, 7, diags[2].Line)
}

func TestTransitBrokenStartAfterDroppedRecord(t *testing.T) {
	src := "-- Public Transport: --\n" +
		"LINE 1 NAME \"a\" LINE 1 ROUTE 1 PRIORITY 0 LENGTH 0 MDN 0\n" +
		"LINE x NAME \"b\" LINE 2 ROUTE 1 PRIORITY 0 LENGTH 0 MDN 0\n"
	lines, diags := DecodeTransitLines(strings.NewReader(src))
	assert.Empty(t, lines)
	require.Len(t, diags, 2)
	var consistency *ConsistencyError
	require.ErrorAs(t, diags[0].Err, &consistency)
	assert.Equal(t, 1, consistency.ID)
	var formatErr *FormatError
	require.ErrorAs(t, diags[1].Err, &formatErr)
	assert.Equal(t, 1, formatErr.Index)
	assert.Equal(t, 3, diags[0].Line)
	assert.Equal(t, 3, diags[1].Line)
}
