package main

import (
	"fmt"

	"github.com/LdDl/inp"
	"github.com/spf13/cobra"
)

var osmCmd = &cobra.Command{
	Use:   "osm <in.osm.pbf> <out.inp>",
	Short: "Build links and connectors from OpenStreetMap highways",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := factoryDefaults()
		if err != nil {
			return err
		}
		importer := inp.NewOSMImporter(args[0],
			inp.WithHighways(cfg.GetStringSlice(cfgKeyHighways)),
			inp.WithLaneWidth(cfg.GetFloat64(cfgKeyLaneWidth)),
			inp.WithStartLinkID(cfg.GetInt(cfgKeyStartLinkID)),
			inp.WithStartConnectorID(cfg.GetInt(cfgKeyStartConnectorID)),
			inp.WithUTurnAngle(cfg.GetFloat64(cfgKeyUTurnAngle)),
			inp.WithVerbose(cfg.GetBool(cfgKeyVerbose)),
			inp.WithImportDefaults(defaults),
		)
		if cfg.GetBool(cfgKeyVerbose) {
			fmt.Println(importer)
		}
		net, err := importer.Import()
		if err != nil {
			return err
		}
		return net.Export(args[1])
	},
}

func init() {
	osmCmd.Flags().StringSlice(cfgKeyHighways, inp.DefaultHighways, "highway tag values to import (separated by commas)")
	osmCmd.Flags().Float64(cfgKeyLaneWidth, 3.5, "lane width, meters")
	osmCmd.Flags().Int(cfgKeyStartLinkID, 1, "id of the first created link")
	osmCmd.Flags().Int(cfgKeyStartConnectorID, 10000, "id of the first created connector")
	osmCmd.Flags().Float64(cfgKeyUTurnAngle, 170.0, "turn angle (degrees) starting from which links are not connected")
}
