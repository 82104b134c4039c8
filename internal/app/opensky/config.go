package opensky

// Configuration settings for the OpenSky Network REST API
type Configuration struct {
	URL      string  `toml:"url" default:"https://opensky-network.org/api" comment:"OpenSky REST API base URL"`
	Timeout  int     `toml:"timeout" default:"10" comment:"HTTP timeout in seconds"`
	Rate     float64 `toml:"rate" default:"1" comment:"maximum requests per second sent to OpenSky (0 disables throttling)"`
	Username string  `toml:"username" comment:"optional OpenSky account, anonymous access when empty"`
	Password string  `toml:"password" comment:"optional OpenSky password"`
}
