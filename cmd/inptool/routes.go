package main

import (
	"fmt"
	"time"

	"github.com/LdDl/inp"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var routesCmd = &cobra.Command{
	Use:   "routes <in.inp> <out.inp>",
	Short: "Fill traversed links of routes which have none with the shortest path",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		net, err := readNetwork(args[0])
		if err != nil {
			return err
		}
		verbose := cfg.GetBool(cfgKeyVerbose)
		if verbose {
			fmt.Printf("Preparing contraction hierarchies... ")
		}
		st := time.Now()
		graph, err := inp.NewLinkGraph(net.Links, net.Connectors)
		if err != nil {
			return errors.Wrap(err, "Can't build link graph")
		}
		if verbose {
			fmt.Printf("Done in %v\n", time.Since(st))
		}
		filled, diags := net.CompleteRoutes(graph)
		if verbose {
			for _, diag := range diags {
				fmt.Printf("\t[WARNING]: %s\n", diag)
			}
			fmt.Printf("Number of filled routes: %d\n", filled)
		}
		return net.Export(args[1])
	},
}
