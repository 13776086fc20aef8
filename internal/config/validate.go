package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
// Only the sections the streaming tools depend on are validated; the
// launcher-style utilities call Load without validation.
func (c *Config) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if c.API.RestURL == "" {
		return errors.New("api.rest_url is required")
	}
	if c.API.WSURL == "" {
		return errors.New("api.ws_url is required")
	}
	if c.API.RefreshToken == "" {
		return errors.New("api.refresh_token is required (set ALOR_REFRESH_TOKEN)")
	}

	if c.Database.History.Host != "" {
		if err := c.Database.History.validate("database.history"); err != nil {
			return err
		}
	}

	if c.Connection.BufferSize < 1 {
		return errors.New("connection.buffer_size must be >= 1")
	}
	if c.Connection.BookDepth < 1 {
		return errors.New("connection.book_depth must be >= 1")
	}
	if c.Connection.Frequency < 0 {
		return errors.New("connection.frequency must be >= 0")
	}

	if c.Writers.BatchSize < 1 {
		return errors.New("writers.batch_size must be >= 1")
	}
	if c.Writers.BufferSize < 1 {
		return errors.New("writers.buffer_size must be >= 1")
	}

	if c.Poller.Concurrency < 1 {
		return errors.New("poller.concurrency must be >= 1")
	}

	if c.Monitor.DisplayEvery < 1 {
		return errors.New("monitor.display_every must be >= 1")
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
