package main

import (
	"fmt"
	"time"

	"github.com/LdDl/inp"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var formatCmd = &cobra.Command{
	Use:   "format <in.inp> <out.inp>",
	Short: "Decode a network and write it back with canonical padding",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		net, err := readNetwork(args[0])
		if err != nil {
			return err
		}
		return net.Export(args[1])
	},
}

var geojsonCmd = &cobra.Command{
	Use:   "geojson <in.inp> <out.geojson>",
	Short: "Export links, connectors and area nodes as GeoJSON",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		net, err := readNetwork(args[0])
		if err != nil {
			return err
		}
		return net.ExportToGeoJSON(args[1])
	},
}

var csvCmd = &cobra.Command{
	Use:   "csv <in.inp> <out.csv>",
	Short: "Export links and connectors as ';' separated files with WKT geometry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		net, err := readNetwork(args[0])
		if err != nil {
			return err
		}
		return net.ExportToCSV(args[1])
	},
}

var sqliteCmd = &cobra.Command{
	Use:   "sqlite <in.inp> <out.db>",
	Short: "Export every section into a SQLite database",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		net, err := readNetwork(args[0])
		if err != nil {
			return err
		}
		return inp.ExportSQLite(args[1], net)
	},
}

// readNetwork decodes file and prints diagnostics. Fatal diagnostics abort the command
func readNetwork(filename string) (*inp.Network, error) {
	verbose := cfg.GetBool(cfgKeyVerbose)
	if verbose {
		fmt.Printf("Reading network '%s'... ", filename)
	}
	st := time.Now()
	net, diags := inp.ReadNetwork(filename, decoderOptions()...)
	if verbose {
		fmt.Printf("Done in %v\n", time.Since(st))
		for _, diag := range diags {
			fmt.Printf("\t[WARNING]: %s\n", diag)
		}
		fmt.Printf("Number of inputs: %d\n", len(net.Inputs))
		fmt.Printf("Number of links: %d\n", len(net.Links))
		fmt.Printf("Number of connectors: %d\n", len(net.Connectors))
		fmt.Printf("Number of parking lots: %d\n", len(net.ParkingLots))
		fmt.Printf("Number of transit lines: %d\n", len(net.TransitLines))
		fmt.Printf("Number of routing decisions: %d\n", net.RoutingDecisions.Len())
		fmt.Printf("Number of nodes: %d\n", len(net.Nodes))
	}
	if diags.Fatal() {
		return nil, errors.Wrapf(diags.Err(), "Can't decode '%s'", filename)
	}
	defaults, err := factoryDefaults()
	if err != nil {
		return nil, err
	}
	net.Defaults = defaults
	return net, nil
}

func init() {
	for _, cmd := range []*cobra.Command{formatCmd, geojsonCmd, csvCmd, sqliteCmd, routesCmd} {
		cmd.Flags().Bool(cfgKeyRouteLinks, true, "keep traversed links of routes")
		cmd.Flags().Bool(cfgKeyKeyByLink, false, "key routing decisions by originating link")
	}
}
