package file

// Configuration settings for file sinking
type Configuration struct {
	Outputdir  string `toml:"outputdir" default:"." comment:"directory receiving the JSON snapshots (~ is expanded)"`
	Outputfile string `toml:"outputfile" comment:"fixed output file name, adsb_data_YYYYMMDD_HHMMSS.json when empty"`
}
