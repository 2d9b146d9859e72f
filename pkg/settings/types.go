package settings

// File is the optional YAML config. Empty fields mean "not set" and fall
// through to the environment or built-in defaults.
type File struct {
	Host      string `yaml:"host"`
	Port      string `yaml:"port"`
	Token     string `yaml:"token"`
	RelayFile string `yaml:"relayFile"`
	LogLevel  string `yaml:"logLevel"`

	Mirror struct {
		URL   string `yaml:"url"`
		Token string `yaml:"token"`
	} `yaml:"mirror"`

	Git struct {
		AutoPush      *bool  `yaml:"autoPush"`
		Remote        string `yaml:"remote"`
		Branch        string `yaml:"branch"`
		CommitMessage string `yaml:"commitMessage"`
	} `yaml:"git"`

	Probe struct {
		Timeout     string `yaml:"timeout"`
		Concurrency int    `yaml:"concurrency"`
		TorSocks5   string `yaml:"torSocks5"`
	} `yaml:"probe"`
}
