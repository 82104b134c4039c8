package config

import (
	"github.com/francois-poidevin/adsbchecker/internal/app/opensky"
	"github.com/francois-poidevin/adsbchecker/internal/app/sinkers/db"
	"github.com/francois-poidevin/adsbchecker/internal/app/sinkers/file"
	"github.com/francois-poidevin/adsbchecker/internal/launcher"
)

// Configuration contains conectivity settings
type Configuration struct {
	Log struct {
		Level string `toml:"level" default:"warn" comment:"Log level: trace, debug, info, warn, error, fatal and panic"`
	} `toml:"log" comment:"###############################\n Logs Settings \n##############################"`

	Launcher launcher.Configuration `toml:"launcher" comment:"###############################\n Python delegate launcher \n##############################"`

	Checker struct {
		Lookback   int                   `toml:"lookback" default:"15" comment:"look back N minutes"`
		Continuous bool                  `toml:"continuous" default:"false" comment:"run continuous monitoring"`
		Interval   int                   `toml:"interval" default:"60" comment:"check interval in seconds (continuous mode)"`
		Bbox       string                `toml:"bbox" comment:"optional tracking bbox 'lat,lon^lat,lon' (SW^NE)"`
		Sinkertype string                `toml:"sinkertype" default:"STDOUT" comment:"comma separated sinkers (STDOUT|FILE|DB)"`
		Opensky    opensky.Configuration `toml:"opensky" comment:"###############################\n OpenSky API \n##############################"`
		File       file.Configuration    `toml:"file" comment:"###############################\n file sinker configuration \n##############################"`
		Postgres   db.Configuration      `toml:"postgres" comment:"###############################\n db sinker configuration \n##############################"`
	} `toml:"checker" comment:"###############################\n ADS-B checker Settings \n##############################"`

	Server struct {
		Listen string `toml:"listen" default:":8080" comment:"HTTP API listen address"`
	} `toml:"server" comment:"###############################\n HTTP API Settings \n##############################"`
}
