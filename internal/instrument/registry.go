package instrument

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/Progress-collab/trades-analyzer/internal/model"
)

// Source provides the set of instruments to track. Consumers depend on
// this interface rather than the registry itself.
type Source interface {
	Instruments() []model.Instrument
	Symbols() []string
}

// Registry loads instrument lists from files and serves them to pollers
// and subscription managers.
type Registry struct {
	logger *slog.Logger

	mu    sync.RWMutex
	files map[model.Group]string
	list  []model.Instrument
}

// NewRegistry creates an empty registry. Use AddFile and Load to
// populate it.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger: logger,
		files:  make(map[model.Group]string),
	}
}

// AddFile registers a list file for a group. An empty path is ignored
// so unused groups can stay unconfigured.
func (r *Registry) AddFile(group model.Group, path string) {
	if path == "" {
		return
	}
	r.mu.Lock()
	r.files[group] = path
	r.mu.Unlock()
}

// Load reads all registered list files, replacing the current set.
// MOEX instruments come first, then crypto, each in file order.
func (r *Registry) Load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var list []model.Instrument
	seen := make(map[string]bool)

	for _, group := range []model.Group{model.GroupMOEX, model.GroupCrypto} {
		path, ok := r.files[group]
		if !ok {
			continue
		}

		symbols, err := readList(path)
		if err != nil {
			return fmt.Errorf("load %s instruments: %w", group, err)
		}

		for _, sym := range symbols {
			if seen[sym] {
				continue
			}
			seen[sym] = true
			list = append(list, model.Instrument{
				Symbol:   sym,
				Exchange: exchangeFor(group),
				Group:    group,
			})
		}

		r.logger.Info("loaded instrument list",
			"group", group,
			"file", path,
			"count", len(symbols),
		)
	}

	r.list = list
	return nil
}

// Reload re-reads the list files. On error the previous set is kept.
func (r *Registry) Reload() error {
	return r.Load()
}

// Instruments returns a copy of the current instrument set.
func (r *Registry) Instruments() []model.Instrument {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Instrument, len(r.list))
	copy(out, r.list)
	return out
}

// Symbols returns the symbols of the current set, in load order.
func (r *Registry) Symbols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.list))
	for i, inst := range r.list {
		out[i] = inst.Symbol
	}
	return out
}

// Group returns the instruments belonging to one group.
func (r *Registry) Group(group model.Group) []model.Instrument {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.Instrument
	for _, inst := range r.list {
		if inst.Group == group {
			out = append(out, inst)
		}
	}
	return out
}

func exchangeFor(group model.Group) string {
	if group == model.GroupCrypto {
		return "CRYPTO"
	}
	return "MOEX"
}

// readList parses a list file: one symbol per line, '#' comments and
// blank lines skipped, symbols uppercased.
func readList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var symbols []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		symbols = append(symbols, strings.ToUpper(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return symbols, nil
}
