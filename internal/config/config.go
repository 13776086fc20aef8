package config

import "time"

// Config is the root configuration shared by all tools in this repository.
type Config struct {
	Instance    InstanceConfig    `yaml:"instance"`
	API         APIConfig         `yaml:"api"`
	Instruments InstrumentsConfig `yaml:"instruments"`
	Database    DatabaseConfig    `yaml:"database"`
	Connection  ConnectionConfig  `yaml:"connection"`
	Writers     WritersConfig     `yaml:"writers"`
	Poller      PollerConfig      `yaml:"poller"`
	Monitor     MonitorConfig     `yaml:"monitor"`
	Analyzer    AnalyzerConfig    `yaml:"analyzer"`
	Launch      LaunchConfig      `yaml:"launch"`
	Paths       PathsConfig       `yaml:"paths"`
	EnvSetup    EnvSetupConfig    `yaml:"envsetup"`
}

// InstanceConfig identifies this monitor instance.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// APIConfig holds Alor API settings.
type APIConfig struct {
	RestURL  string `yaml:"rest_url"`
	WSURL    string `yaml:"ws_url"`
	OAuthURL string `yaml:"oauth_url"`
	Exchange string `yaml:"exchange"`

	// RefreshToken is the long-lived token from alor.dev; usually supplied
	// as ${ALOR_REFRESH_TOKEN} via the environment or a .env file.
	RefreshToken string `yaml:"refresh_token"`

	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	TokenTTL   time.Duration `yaml:"token_ttl"`
}

// InstrumentsConfig points at the instrument list files.
type InstrumentsConfig struct {
	MOEXFile   string `yaml:"moex_file"`
	CryptoFile string `yaml:"crypto_file"`
}

// DatabaseConfig holds the optional quote-history database.
// Leaving history.host empty disables the writers entirely.
type DatabaseConfig struct {
	History DBConfig `yaml:"history"`
}

// DBConfig holds a single PostgreSQL connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// ConnectionConfig holds websocket connection settings.
type ConnectionConfig struct {
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `yaml:"reconnect_max_delay"`
	PingTimeout        time.Duration `yaml:"ping_timeout"`
	WriteTimeout       time.Duration `yaml:"write_timeout"`
	SubscribeTimeout   time.Duration `yaml:"subscribe_timeout"`
	BufferSize         int           `yaml:"buffer_size"`

	// BookDepth is the number of levels requested per order book
	// subscription; the monitor only consumes the top level.
	BookDepth int `yaml:"book_depth"`

	// Frequency is the minimum interval, in milliseconds, between
	// updates the server pushes per subscription. 0 means every change.
	Frequency int `yaml:"frequency"`
}

// WritersConfig holds batch writer settings.
type WritersConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BufferSize    int           `yaml:"buffer_size"`
}

// PollerConfig holds REST snapshot poller settings.
type PollerConfig struct {
	Interval    time.Duration `yaml:"interval"`
	Concurrency int           `yaml:"concurrency"`
	Timeout     time.Duration `yaml:"timeout"`
}

// MonitorConfig holds live display settings.
type MonitorConfig struct {
	// DisplayEvery redraws the table once per this many updates,
	// so a busy feed does not make the console flicker.
	DisplayEvery int `yaml:"display_every"`

	// RefreshInterval redraws the table when the feed is quiet.
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// AnalyzerConfig holds daily trades analysis settings.
type AnalyzerConfig struct {
	// TradesDir is the directory the broker terminal exports daily
	// trade files into.
	TradesDir string `yaml:"trades_dir"`

	// FilePattern is a Go time layout producing the daily file name,
	// e.g. "Trades_02.01.2006.csv".
	FilePattern string `yaml:"file_pattern"`
}

// LaunchConfig holds launcher settings.
type LaunchConfig struct {
	// Tool is the executable looked up on PATH before anything runs.
	Tool string `yaml:"tool"`

	// Entry is the entry script/binary handed to the tool.
	Entry string `yaml:"entry"`

	// Args are extra arguments appended after the entry.
	Args []string `yaml:"args"`

	// OutputDir is created before the child runs if it is missing.
	OutputDir string `yaml:"output_dir"`

	// LogFile is the log the child is expected to produce; referenced
	// in the failure message so the operator knows where to look.
	LogFile string `yaml:"log_file"`
}

// PathsConfig holds the candidate list for the path discovery utility.
type PathsConfig struct {
	Candidates []string `yaml:"candidates"`
}

// EnvSetupConfig holds the environment setup utility settings.
type EnvSetupConfig struct {
	// Profile is the shell startup file the assignment block is
	// appended to.
	Profile string `yaml:"profile"`

	ProjectRoot string `yaml:"project_root"`
	DataDir     string `yaml:"data_dir"`
	DesktopDir  string `yaml:"desktop_dir"`
}
