package launcher

// Configuration settings for the delegate launcher
type Configuration struct {
	Interpreter string `toml:"interpreter" default:"python3" comment:"Python 3 interpreter looked up on PATH"`
	Installer   string `toml:"installer" default:"pip3" comment:"first install tool tried for the dependency"`
	Dependency  string `toml:"dependency" default:"requests" comment:"HTTP client package installed before delegating"`
	Delegate    string `toml:"delegate" default:"adsb_checker.py" comment:"delegate program, resolved next to the launcher executable"`
}
