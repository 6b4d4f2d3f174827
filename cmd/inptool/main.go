package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// configFile is set by the --config flag
	configFile string

	// cfg holds flags merged with the config file and INPTOOL_* environment variables
	cfg *viper.Viper
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "inptool",
	Short: "inptool converts and edits VISSIM INP networks",
	Long: `inptool decodes VISSIM INP network files, re-encodes them with canonical padding,
exports them to GeoJSON, CSV or SQLite, fills missing route paths and builds
new networks from OpenStreetMap data.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v, err := loadConfig(configFile, cmd)
		if err != nil {
			return err
		}
		cfg = v
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ./inptool.yaml if present)")
	rootCmd.PersistentFlags().Bool(cfgKeyVerbose, false, "print progress and warnings")
	rootCmd.PersistentFlags().Bool(cfgKeyStrict, false, "stop decoding at the first malformed line")
	rootCmd.PersistentFlags().String(cfgKeyDefaults, "", "YAML file with factory defaults")

	rootCmd.AddCommand(formatCmd)
	rootCmd.AddCommand(geojsonCmd)
	rootCmd.AddCommand(csvCmd)
	rootCmd.AddCommand(sqliteCmd)
	rootCmd.AddCommand(routesCmd)
	rootCmd.AddCommand(osmCmd)
}
