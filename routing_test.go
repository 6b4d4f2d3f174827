package inp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var routingSample = strings.Join([]string{
	`-- Routing Decisions: --`,
	`------------------------`,
	`ROUTING_DECISION 1    NAME "Main" LABEL 0.00 0.00`,
	`     LINK 1  AT 10.000`,
	`     TIME  FROM 0.0 UNTIL 3600.0  FROM 3600.0 UNTIL 7200.0`,
	`     VEHICLE_CLASSES 1`,
	`      ROUTE     1 DESTINATION LINK     5 AT   20.000`,
	`       FRACTION 0.700       FRACTION 0.500`,
	`     OVER      1     2     3     4     5     6     7     8     9    10`,
	`               11    12`,
	`      ROUTE     2 DESTINATION LINK     6 AT    2.500`,
	`       FRACTION 0.300       FRACTION 0.500`,
	`ROUTING_DECISION 2    NAME "" LABEL 0.00 0.00`,
	`     LINK 3  AT 5.000`,
	`     TIME  FROM 0.0 UNTIL 99999.0`,
	`                  PT 1`,
	`     ALTERNATIVES`,
	`      ROUTE     1 DESTINATION LINK     7 AT   10.000`,
	`       FRACTION 1.000`,
	"",
}, "\n")

func TestDecodeRoutingDecisions(t *testing.T) {
	decisions, diags := DecodeRoutingDecisions(strings.NewReader(routingSample))
	require.Empty(t, diags)
	require.Equal(t, 2, decisions.Len())

	main := decisions.Decisions[1][0]
	assert.Equal(t, `"Main"`, main.Name)
	assert.Equal(t, LinkID(1), main.Link)
	assert.Equal(t, "10.000", main.At)
	assert.Equal(t, []TimeWindow{{"0.0", "3600.0"}, {"3600.0", "7200.0"}}, main.Times)
	assert.Equal(t, "1", main.VehicleClasses)
	require.Len(t, main.Routes, 2)
	first := main.Route(1)
	require.NotNil(t, first)
	assert.Equal(t, LinkID(5), first.DestinationLink)
	assert.Equal(t, []string{"0.700", "0.500"}, first.Fractions)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, first.Over)
	assert.Nil(t, main.Route(2).Over)
	assert.Nil(t, main.Route(3))

	pt := decisions.Decisions[2][0]
	assert.Empty(t, pt.VehicleClasses)
	assert.Equal(t, "1", pt.PT)
	assert.True(t, pt.Alternatives)
}

func TestRoutingDecisionsRoundTrip(t *testing.T) {
	decisions, diags := DecodeRoutingDecisions(strings.NewReader(routingSample))
	require.Empty(t, diags)

	var buf bytes.Buffer
	require.NoError(t, WriteRoutingDecisions(&buf, decisions))
	assert.Equal(t, routingSample, buf.String())
}

func TestRoutingWithoutRouteLinks(t *testing.T) {
	decisions, diags := DecodeRoutingDecisions(strings.NewReader(routingSample), WithRouteLinks(false))
	require.Empty(t, diags)
	first := decisions.Decisions[1][0].Route(1)
	assert.Nil(t, first.Over)
	assert.Equal(t, []string{"0.700", "0.500"}, first.Fractions)
}

func TestRoutingVariantsUnderOneHeader(t *testing.T) {
	src := "-- Routing Decisions: --\n" +
		"ROUTING_DECISION 4 NAME \"x\" LABEL 0.00 0.00\n" +
		"LINK 10 AT 1.0\n" +
		"TIME FROM 0.0 UNTIL 10.0\n" +
		"ROUTE 1 DESTINATION LINK 11 AT 2.0\n" +
		"FRACTION 1.0\n" +
		"LINK 20 AT 3.0\n" +
		"TIME FROM 0.0 UNTIL 10.0\n" +
		"ROUTE 1 DESTINATION LINK 21 AT 4.0\n" +
		"FRACTION 1.0\n"

	decisions, diags := DecodeRoutingDecisions(strings.NewReader(src))
	require.Empty(t, diags)
	require.Len(t, decisions.Decisions[4], 2)
	assert.Equal(t, LinkID(10), decisions.Decisions[4][0].Link)
	assert.Equal(t, LinkID(20), decisions.Decisions[4][1].Link)
	assert.Equal(t, `"x"`, decisions.Decisions[4][1].Name)

	byLink, diags := DecodeRoutingDecisions(strings.NewReader(src), WithRoutingKeyByLink(true))
	require.Empty(t, diags)
	assert.True(t, byLink.KeyByLink)
	require.Len(t, byLink.Decisions, 2)
	assert.Equal(t, 4, byLink.Decisions[10][0].Number)
	assert.Equal(t, LinkID(21), byLink.Decisions[20][0].Routes[0].DestinationLink)
}

func TestRoutingFractionsWithoutTime(t *testing.T) {
	src := "-- Routing Decisions: --\n" +
		"ROUTING_DECISION 1 NAME \"\" LABEL 0.00 0.00\n" +
		"LINK 1 AT 1.0\n" +
		"ROUTE 1 DESTINATION LINK 2 AT 2.0\n" +
		"FRACTION 0.2 FRACTION 0.8\n"
	decisions, diags := DecodeRoutingDecisions(strings.NewReader(src))
	require.Empty(t, diags)
	assert.Equal(t, []string{"0.2", "0.8"}, decisions.Decisions[1][0].Routes[0].Fractions)
}

func TestRoutingBrokenRecords(t *testing.T) {
	src := "-- Routing Decisions: --\n" +
		"ROUTE 1 DESTINATION LINK 2 AT 2.0\n" +
		"ROUTING_DECISION 1 NAME \"\" LABEL 0.00 0.00\n" +
		"ROUTING_DECISION 2 NAME \"\" LABEL 0.00 0.00\n" +
		"LINK 1 AT 1.0\n" +
		"FRACTION 1.0\n" +
		"17 18\n"
	decisions, diags := DecodeRoutingDecisions(strings.NewReader(src))
	require.Len(t, diags, 4)

	var formatErr *FormatError
	require.ErrorAs(t, diags[0].Err, &formatErr)
	assert.Equal(t, "ROUTE", formatErr.Keyword)

	var consistency *ConsistencyError
	require.ErrorAs(t, diags[1].Err, &consistency)
	assert.Equal(t, 1, consistency.ID)
	assert.Equal(t, 4, diags[1].Line)

	require.ErrorAs(t, diags[2].Err, &formatErr)
	assert.Equal(t, "FRACTION", formatErr.Keyword)

	var tokenErr *UnrecognizedTokenError
	require.ErrorAs(t, diags[3].Err, &tokenErr)
	assert.Equal(t, "17", tokenErr.Token)

	assert.Equal(t, 1, decisions.Len())
	assert.Equal(t, 2, decisions.All()[0].Number)
}

func TestRoutingEncodeInconsistent(t *testing.T) {
	decision := &RoutingDecision{
		Number: 3,
		Times:  []TimeWindow{{"0.0", "10.0"}, {"10.0", "20.0"}},
		Routes: []*Route{{Number: 1, Fractions: []string{"1.000"}}},
	}
	_, err := decision.Encode()
	var consistency *ConsistencyError
	require.ErrorAs(t, err, &consistency)
	assert.Equal(t, 3, consistency.ID)

	decision.Routes[0].Fractions = []string{"1.000", "1.000"}
	decision.Routes[0].Over = []int{}
	_, err = decision.Encode()
	require.ErrorAs(t, err, &consistency)

	decision.Routes[0].Over = nil
	_, err = decision.Encode()
	require.NoError(t, err)
}

func TestCreateRoutingDecision(t *testing.T) {
	decisions := NewRoutingDecisions(false)
	_, err := decisions.Create(1, 10)
	var missing *MissingIdError
	require.ErrorAs(t, err, &missing)

	decision, err := decisions.Create(1, 10, WithDecisionNumber(5),
		WithTimeWindows(TimeWindow{"0.0", "1800.0"}, TimeWindow{"1800.0", "3600.0"}),
		WithRoute(5, 20),
		WithRoute(6, 2.5, 0.25, 0.75),
		WithRouteOver(10000, 2, 10001),
	)
	require.NoError(t, err)
	require.Len(t, decision.Routes, 2)
	assert.Equal(t, []string{"1.000", "1.000"}, decision.Routes[0].Fractions)
	assert.Equal(t, []string{"0.250", "0.750"}, decision.Routes[1].Fractions)
	assert.Equal(t, 2, decision.Routes[1].Number)

	lines, err := decision.Encode()
	require.NoError(t, err)
	assert.Equal(t, []string{
		`ROUTING_DECISION 5    NAME "" LABEL 0.00 0.00`,
		`     LINK 1  AT 10.0`,
		`     TIME  FROM 0.0 UNTIL 1800.0  FROM 1800.0 UNTIL 3600.0`,
		`     VEHICLE_CLASSES 1`,
		`      ROUTE     1 DESTINATION LINK     5 AT     20.0`,
		`       FRACTION 1.000       FRACTION 1.000`,
		`      ROUTE     2 DESTINATION LINK     6 AT      2.5`,
		`       FRACTION 0.250       FRACTION 0.750`,
		`     OVER  10000     2 10001`,
	}, lines)

	next, err := decisions.Create(2, 1, WithPT("3"))
	require.NoError(t, err)
	assert.Equal(t, 6, next.Number)
	assert.Empty(t, next.VehicleClasses)

	replaced, err := decisions.Create(1, 15, WithDecisionNumber(5))
	require.NoError(t, err)
	assert.Equal(t, 2, decisions.Len())
	assert.Same(t, replaced, decisions.Decisions[5][0])
}

func TestRoutingBrokenStartKeepsPreviousRecord(t *testing.T) {
	src := "-- Routing Decisions: --\n" +
		"ROUTING_DECISION 1 NAME \"\" LABEL 0.00 0.00\n" +
		"LINK 1 AT 10.0\n" +
		"ROUTE 1 DESTINATION LINK 5 AT 20.0\n" +
		"ROUTING_DECISION two NAME \"\" LABEL 0.00 0.00\n" +
		"LINK 9 AT 10.0\n" +
		"ROUTE 2 DESTINATION LINK 6 AT 1.0\n"
	decisions, diags := DecodeRoutingDecisions(strings.NewReader(src))
	require.Equal(t, 1, decisions.Len())
	decision := decisions.All()[0]
	assert.Equal(t, LinkID(1), decision.Link)
	require.Len(t, decision.Routes, 1)
	assert.Equal(t, LinkID(5), decision.Routes[0].DestinationLink)
	require.Len(t, diags, 3)
	assert.Equal(t, 5, diags[0].Line)
	assert.Equal(t, 6, diags[1].Line)
	assert.Equal(t, 7, diags[2].Line)
}
