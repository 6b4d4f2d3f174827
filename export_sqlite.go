package inp

import (
	"database/sql"
	"os"
	"strings"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const (
	createLinks = `CREATE TABLE links (
    link_id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    behavior_type TEXT NOT NULL,
    display_type TEXT NOT NULL,
    lanes INTEGER NOT NULL,
    lane_widths TEXT NOT NULL,
    length REAL NOT NULL,
    evaluation INTEGER NOT NULL,
    geom TEXT NOT NULL
);`

	createConnectors = `CREATE TABLE connectors (
    connector_id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    from_link INTEGER NOT NULL,
    from_lanes TEXT NOT NULL,
    from_at TEXT NOT NULL,
    to_link INTEGER NOT NULL,
    to_lanes TEXT NOT NULL,
    to_at TEXT NOT NULL,
    length REAL NOT NULL,
    geom TEXT
);`

	createNodes = `CREATE TABLE nodes (
    node_id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    evaluation INTEGER NOT NULL,
    links TEXT,
    geom TEXT
);`

	createParkingLots = `CREATE TABLE parking_lots (
    parking_id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    link_id INTEGER NOT NULL,
    lane INTEGER,
    at TEXT NOT NULL,
    length TEXT NOT NULL,
    capacity TEXT NOT NULL,
    occupancy TEXT NOT NULL,
    open_from TEXT NOT NULL,
    open_until TEXT NOT NULL
);`

	createTransitLines = `CREATE TABLE transit_lines (
    line_id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    link_id INTEGER NOT NULL,
    destination_link INTEGER NOT NULL,
    at TEXT NOT NULL,
    desired_speed TEXT NOT NULL,
    vehicle_type TEXT NOT NULL,
    color TEXT NOT NULL,
    start_times INTEGER NOT NULL
);`

	createInputs = `CREATE TABLE inputs (
    link_id INTEGER NOT NULL,
    input_number INTEGER NOT NULL,
    name TEXT NOT NULL,
    demand TEXT NOT NULL,
    exact INTEGER NOT NULL,
    composition TEXT NOT NULL,
    time_from TEXT NOT NULL,
    time_until TEXT NOT NULL
);`

	createRoutingDecisions = `CREATE TABLE routing_decisions (
    decision_number INTEGER NOT NULL,
    name TEXT NOT NULL,
    link_id INTEGER NOT NULL,
    at TEXT NOT NULL,
    time_windows TEXT NOT NULL,
    vehicle_classes TEXT NOT NULL,
    PRIMARY KEY (decision_number, link_id)
);`

	createRoutes = `CREATE TABLE routes (
    decision_number INTEGER NOT NULL,
    decision_link INTEGER NOT NULL,
    route_number INTEGER NOT NULL,
    destination_link INTEGER NOT NULL,
    at TEXT NOT NULL,
    fractions TEXT NOT NULL,
    traversed TEXT,
    FOREIGN KEY (decision_number, decision_link) REFERENCES routing_decisions(decision_number, link_id)
);`
)

var sqliteSchema = []string{
	createLinks,
	createConnectors,
	createNodes,
	createParkingLots,
	createTransitLines,
	createInputs,
	createRoutingDecisions,
	createRoutes,
}

// ExportSQLite writes every section of the network into a fresh SQLite database. Existing file is replaced
func ExportSQLite(fname string, net *Network) error {
	err := os.Remove(fname)
	if err != nil && !os.IsNotExist(err) {
		return &FileAccessError{Filename: fname, Cause: err}
	}
	db, err := sql.Open("sqlite", fname)
	if err != nil {
		return errors.Wrap(err, "Can't open database")
	}
	defer db.Close()

	for _, ddl := range sqliteSchema {
		if _, err := db.Exec(ddl); err != nil {
			return errors.Wrap(err, "Can't create schema")
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "Can't start transaction")
	}
	inserts := []struct {
		table string
		query string
		rows  [][]interface{}
	}{
		{"links", `INSERT INTO links VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, linkRows(net.Links)},
		{"connectors", `INSERT INTO connectors VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, connectorRows(net.Connectors)},
		{"nodes", `INSERT INTO nodes VALUES (?, ?, ?, ?, ?)`, nodeRows(net.Nodes)},
		{"parking_lots", `INSERT INTO parking_lots VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, parkingRows(net.ParkingLots)},
		{"transit_lines", `INSERT INTO transit_lines VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, transitRows(net.TransitLines)},
		{"inputs", `INSERT INTO inputs VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, inputRows(net.Inputs)},
		{"routing_decisions", `INSERT OR REPLACE INTO routing_decisions VALUES (?, ?, ?, ?, ?, ?)`, decisionRows(net.RoutingDecisions)},
		{"routes", `INSERT INTO routes VALUES (?, ?, ?, ?, ?, ?, ?)`, routeRows(net.RoutingDecisions)},
	}
	for _, insert := range inserts {
		err = insertRows(tx, insert.query, insert.rows)
		if err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "Can't fill table '%s'", insert.table)
		}
	}
	return errors.Wrap(tx.Commit(), "Can't commit transaction")
}

func insertRows(tx *sql.Tx, query string, rows [][]interface{}) error {
	if len(rows) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(query)
	if err != nil {
		return errors.Wrap(err, "Can't prepare statement")
	}
	defer stmt.Close()
	for _, row := range rows {
		if _, err := stmt.Exec(row...); err != nil {
			return err
		}
	}
	return nil
}

// nullable turns empty strings into NULL
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func linkRows(links Links) [][]interface{} {
	rows := make([][]interface{}, 0, len(links))
	for _, id := range links.ids() {
		link := links[LinkID(id)]
		rows = append(rows, []interface{}{
			id, strings.Trim(link.Name, quote), link.BehaviorType, link.DisplayType, link.Lanes,
			strings.Join(link.LaneWidths, ","), link.LengthMeters(), link.Evaluation, LinkWKT(link),
		})
	}
	return rows
}

func connectorRows(connectors Connectors) [][]interface{} {
	rows := make([][]interface{}, 0, len(connectors))
	for _, id := range connectors.ids() {
		connector := connectors[ConnectorID(id)]
		rows = append(rows, []interface{}{
			id, strings.Trim(connector.Name, quote),
			int(connector.FromLink), joinInts(connector.FromLanes, ","), connector.FromAt,
			int(connector.ToLink), joinInts(connector.ToLanes, ","), connector.ToAt,
			connector.LengthMeters(), nullable(ConnectorWKT(connector)),
		})
	}
	return rows
}

func nodeRows(nodes Nodes) [][]interface{} {
	rows := make([][]interface{}, 0, len(nodes))
	for _, id := range nodes.ids() {
		node := nodes[NodeID(id)]
		var members interface{}
		if node.Links != nil {
			ids := make([]int, len(node.Links))
			for i, link := range node.Links {
				ids[i] = int(link)
			}
			members = joinInts(ids, ",")
		}
		rows = append(rows, []interface{}{
			id, strings.Trim(node.Name, quote), node.Evaluation, members, nullable(NodeWKT(node)),
		})
	}
	return rows
}

func parkingRows(lots ParkingLots) [][]interface{} {
	rows := make([][]interface{}, 0, len(lots))
	for _, id := range lots.ids() {
		lot := lots[ParkingID(id)]
		var lane interface{}
		if lot.Lane > 0 {
			lane = lot.Lane
		}
		rows = append(rows, []interface{}{
			id, strings.Trim(lot.Name, quote), int(lot.Link), lane, lot.At, lot.Length,
			lot.Capacity, lot.Occupancy, lot.OpenHours[0], lot.OpenHours[1],
		})
	}
	return rows
}

func transitRows(lines TransitLines) [][]interface{} {
	rows := make([][]interface{}, 0, len(lines))
	for _, id := range lines.ids() {
		line := lines[TransitID(id)]
		rows = append(rows, []interface{}{
			id, strings.Trim(line.Name, quote), int(line.Link), int(line.DestinationLink), line.At,
			line.DesiredSpeed, line.VehicleType, line.Color, len(line.StartTimes),
		})
	}
	return rows
}

func inputRows(inputs Inputs) [][]interface{} {
	rows := make([][]interface{}, 0, len(inputs))
	for _, id := range inputs.ids() {
		for _, input := range inputs[LinkID(id)] {
			rows = append(rows, []interface{}{
				id, input.Number, strings.Trim(input.Name, quote), input.Demand, input.Exact,
				input.Composition, input.From, input.Until,
			})
		}
	}
	return rows
}

func timeWindowsText(times []TimeWindow) string {
	parts := make([]string, len(times))
	for i, window := range times {
		parts[i] = window.From + "-" + window.Until
	}
	return strings.Join(parts, ",")
}

func decisionRows(decisions *RoutingDecisions) [][]interface{} {
	all := decisions.All()
	rows := make([][]interface{}, 0, len(all))
	for _, decision := range all {
		rows = append(rows, []interface{}{
			decision.Number, strings.Trim(decision.Name, quote), int(decision.Link), decision.At,
			timeWindowsText(decision.Times), decision.VehicleClasses,
		})
	}
	return rows
}

func routeRows(decisions *RoutingDecisions) [][]interface{} {
	rows := [][]interface{}{}
	for _, decision := range decisions.All() {
		for _, route := range decision.Routes {
			var over interface{}
			if route.Over != nil {
				over = joinInts(route.Over, ",")
			}
			rows = append(rows, []interface{}{
				decision.Number, int(decision.Link), route.Number, int(route.DestinationLink),
				route.At, strings.Join(route.Fractions, ","), over,
			})
		}
	}
	return rows
}
