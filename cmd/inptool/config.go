package main

import (
	"github.com/LdDl/inp"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	configFileName = "inptool"
	configFileType = "yaml"
	envPrefix      = "INPTOOL"

	cfgKeyVerbose          = "verbose"
	cfgKeyStrict           = "strict"
	cfgKeyDefaults         = "defaults"
	cfgKeyRouteLinks       = "route_links"
	cfgKeyKeyByLink        = "key_by_link"
	cfgKeyHighways         = "highways"
	cfgKeyLaneWidth        = "lane_width"
	cfgKeyStartLinkID      = "start_link_id"
	cfgKeyStartConnectorID = "start_connector_id"
	cfgKeyUTurnAngle       = "uturn_angle"
)

// loadConfig merges command flags, INPTOOL_* environment variables and the config file.
// A missing default config file is not an error
func loadConfig(path string, cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyRouteLinks, true)
	v.SetDefault(cfgKeyHighways, inp.DefaultHighways)
	v.SetDefault(cfgKeyLaneWidth, 3.5)
	v.SetDefault(cfgKeyStartLinkID, 1)
	v.SetDefault(cfgKeyStartConnectorID, 10000)
	v.SetDefault(cfgKeyUTurnAngle, 170.0)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, errors.Wrap(err, "Can't bind flags")
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && path == "" {
			return v, nil
		}
		return nil, errors.Wrap(err, "Can't read config")
	}
	return v, nil
}

// decoderOptions turns configuration into decoder options
func decoderOptions() []func(*inp.Decoder) {
	return []func(*inp.Decoder){
		inp.WithStrictMode(cfg.GetBool(cfgKeyStrict)),
		inp.WithRouteLinks(cfg.GetBool(cfgKeyRouteLinks)),
		inp.WithRoutingKeyByLink(cfg.GetBool(cfgKeyKeyByLink)),
	}
}

// factoryDefaults returns built-in defaults or the ones from the configured YAML file
func factoryDefaults() (inp.Defaults, error) {
	path := cfg.GetString(cfgKeyDefaults)
	if path == "" {
		return inp.DefaultValues(), nil
	}
	defaults, err := inp.LoadDefaults(path)
	if err != nil {
		return inp.Defaults{}, errors.Wrap(err, "Can't load factory defaults")
	}
	return defaults, nil
}
