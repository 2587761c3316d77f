package config

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// FileConfig is the optional YAML overlay named by LEDGER_CONFIG.
// Unset fields keep their environment values.
type FileConfig struct {
	InitialCreditLimit *float64 `yaml:"initial_credit_limit"`
	CORSOrigins        []string `yaml:"cors_allowed_origins"`
	RateRPS            *int     `yaml:"rate_rps"`
}

// Loader reads a FileConfig and reloads it when the file changes.
type Loader struct {
	path     string
	mu       sync.RWMutex
	current  FileConfig
	onChange []func(FileConfig)
}

// NewLoader performs the initial load of path.
func NewLoader(path string) (*Loader, error) {
	l := &Loader{path: path}
	fc, err := l.load()
	if err != nil {
		return nil, err
	}
	l.current = fc
	return l, nil
}

func (l *Loader) Config() FileConfig {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// OnChange registers fn to run after every successful reload.
func (l *Loader) OnChange(fn func(FileConfig)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Reload re-reads the file and notifies OnChange callbacks. On error the
// previous config stays current.
func (l *Loader) Reload() (FileConfig, error) {
	fc, err := l.load()
	if err != nil {
		return FileConfig{}, err
	}
	l.mu.Lock()
	l.current = fc
	callbacks := make([]func(FileConfig), len(l.onChange))
	copy(callbacks, l.onChange)
	l.mu.Unlock()
	for _, fn := range callbacks {
		fn(fc)
	}
	return fc, nil
}

// Watch reloads the file on write/create events until stop is called.
func (l *Loader) Watch() (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	if err := w.Add(l.path); err != nil {
		w.Close()
		return nil, fmt.Errorf("config watcher add %s: %w", l.path, err)
	}

	done := make(chan struct{})
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					if _, err := l.Reload(); err != nil {
						slog.Warn("config reload failed, keeping previous", "path", l.path, "err", err)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("config watcher", "err", err)
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }, nil
}

func (l *Loader) load() (FileConfig, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("read config %s: %w", l.path, err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return FileConfig{}, fmt.Errorf("parse config %s: %w", l.path, err)
	}
	if fc.InitialCreditLimit != nil && *fc.InitialCreditLimit < 0 {
		return FileConfig{}, fmt.Errorf("config %s: initial_credit_limit must be >= 0", l.path)
	}
	return fc, nil
}
