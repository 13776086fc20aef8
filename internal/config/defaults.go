package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultRestURL  = "https://api.alor.ru"
	DefaultWSURL    = "wss://api.alor.ru/ws"
	DefaultOAuthURL = "https://oauth.alor.ru"
	DefaultExchange = "MOEX"

	DefaultAPITimeout = 10 * time.Second
	DefaultMaxRetries = 3
	DefaultTokenTTL   = 60 * time.Second

	DefaultMOEXFile   = "instruments.txt"
	DefaultCryptoFile = "crypto_instruments.txt"

	DefaultDBPort    = 5432
	DefaultDBSSLMode = "prefer"
	DefaultMaxConns  = 10
	DefaultMinConns  = 2

	DefaultReconnectBaseDelay = 1 * time.Second
	DefaultReconnectMaxDelay  = 60 * time.Second
	DefaultPingTimeout        = 30 * time.Second
	DefaultWriteTimeout       = 5 * time.Second
	DefaultSubscribeTimeout   = 10 * time.Second
	DefaultConnBufferSize     = 10000
	DefaultBookDepth          = 20

	DefaultBatchSize     = 500
	DefaultFlushInterval = 1 * time.Second
	DefaultBufferSize    = 10000

	DefaultPollInterval    = 500 * time.Millisecond
	DefaultPollConcurrency = 4
	DefaultPollTimeout     = 10 * time.Second

	DefaultDisplayEvery    = 5
	DefaultRefreshInterval = 2 * time.Second

	DefaultFilePattern = "Trades_02.01.2006.csv"

	DefaultOutputDir = "input"
	DefaultLogFile   = "trades_analyzer.log"

	DefaultProfile = ".bashrc"
)

func (c *Config) applyDefaults() {
	// API defaults
	if c.API.RestURL == "" {
		c.API.RestURL = DefaultRestURL
	}
	if c.API.WSURL == "" {
		c.API.WSURL = DefaultWSURL
	}
	if c.API.OAuthURL == "" {
		c.API.OAuthURL = DefaultOAuthURL
	}
	if c.API.Exchange == "" {
		c.API.Exchange = DefaultExchange
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}
	if c.API.TokenTTL == 0 {
		c.API.TokenTTL = DefaultTokenTTL
	}

	// Instrument lists
	if c.Instruments.MOEXFile == "" {
		c.Instruments.MOEXFile = DefaultMOEXFile
	}
	if c.Instruments.CryptoFile == "" {
		c.Instruments.CryptoFile = DefaultCryptoFile
	}

	// Database defaults (only meaningful when a host is configured)
	applyDBDefaults(&c.Database.History)

	// Connection defaults
	if c.Connection.ReconnectBaseDelay == 0 {
		c.Connection.ReconnectBaseDelay = DefaultReconnectBaseDelay
	}
	if c.Connection.ReconnectMaxDelay == 0 {
		c.Connection.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}
	if c.Connection.PingTimeout == 0 {
		c.Connection.PingTimeout = DefaultPingTimeout
	}
	if c.Connection.WriteTimeout == 0 {
		c.Connection.WriteTimeout = DefaultWriteTimeout
	}
	if c.Connection.SubscribeTimeout == 0 {
		c.Connection.SubscribeTimeout = DefaultSubscribeTimeout
	}
	if c.Connection.BufferSize == 0 {
		c.Connection.BufferSize = DefaultConnBufferSize
	}
	if c.Connection.BookDepth == 0 {
		c.Connection.BookDepth = DefaultBookDepth
	}

	// Writers defaults
	if c.Writers.BatchSize == 0 {
		c.Writers.BatchSize = DefaultBatchSize
	}
	if c.Writers.FlushInterval == 0 {
		c.Writers.FlushInterval = DefaultFlushInterval
	}
	if c.Writers.BufferSize == 0 {
		c.Writers.BufferSize = DefaultBufferSize
	}

	// Poller defaults
	if c.Poller.Interval == 0 {
		c.Poller.Interval = DefaultPollInterval
	}
	if c.Poller.Concurrency == 0 {
		c.Poller.Concurrency = DefaultPollConcurrency
	}
	if c.Poller.Timeout == 0 {
		c.Poller.Timeout = DefaultPollTimeout
	}

	// Monitor defaults
	if c.Monitor.DisplayEvery == 0 {
		c.Monitor.DisplayEvery = DefaultDisplayEvery
	}
	if c.Monitor.RefreshInterval == 0 {
		c.Monitor.RefreshInterval = DefaultRefreshInterval
	}

	// Analyzer defaults
	if c.Analyzer.FilePattern == "" {
		c.Analyzer.FilePattern = DefaultFilePattern
	}

	// Launcher defaults
	if c.Launch.OutputDir == "" {
		c.Launch.OutputDir = DefaultOutputDir
	}
	if c.Launch.LogFile == "" {
		c.Launch.LogFile = DefaultLogFile
	}

	// Environment setup defaults
	if c.EnvSetup.Profile == "" {
		c.EnvSetup.Profile = DefaultProfile
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
