package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/meigma/gamecache"
	"github.com/meigma/gamecache/config"
)

// settings holds the tool configuration. Values come from the YAML file
// named by --config and are overridden by explicitly set flags.
type settings struct {
	CacheDir       string `yaml:"cache_dir"`
	CacheURL       string `yaml:"cache_url"`
	Codec          string `yaml:"codec"`
	ItemCapacity   int    `yaml:"item_cache_capacity"`
	ObjectCapacity int    `yaml:"object_cache_capacity"`
	OpcodePolicy   string `yaml:"opcode_policy"`
	LogLevel       string `yaml:"log_level"`
	Version        int    `yaml:"pack_version"`
	CPUProfile     string `yaml:"-"`
}

func defaultSettings() settings {
	return settings{
		CacheDir: ".",
		Codec:    "bzip2",
		LogLevel: "warn",
	}
}

// loadSettings reads a YAML settings file over the defaults.
func loadSettings(path string) (settings, error) {
	s := defaultSettings()
	raw, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		return s, err
	}
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// flagValues are the raw command-line flags before merging.
type flagValues struct {
	configPath string
	s          settings
}

func newFlagSet(fv *flagValues) *pflag.FlagSet {
	fs := pflag.NewFlagSet("cachetool", pflag.ContinueOnError)
	fs.StringVar(&fv.configPath, "config", "", "YAML settings file")
	fs.StringVarP(&fv.s.CacheDir, "cache-dir", "d", ".", "cache directory")
	fs.StringVar(&fv.s.CacheURL, "cache-url", "", "read the cache over HTTP from this URL instead of --cache-dir")
	fs.StringVar(&fv.s.Codec, "codec", "bzip2", "archive codec: bzip2, zstd or lz4")
	fs.IntVar(&fv.s.ItemCapacity, "item-cache", 0, "decoded item cache capacity (0 for default)")
	fs.IntVar(&fv.s.ObjectCapacity, "object-cache", 0, "decoded object cache capacity (0 for default)")
	fs.StringVar(&fv.s.OpcodePolicy, "opcode-policy", "fail", "unknown opcode handling: fail or skip")
	fs.StringVar(&fv.s.LogLevel, "log-level", "warn", "log level: debug, info, warn or error")
	fs.IntVar(&fv.s.Version, "pack-version", 0, "version trailer written by pack")
	fs.StringVar(&fv.s.CPUProfile, "cpuprofile", "", "write a CPU profile to this file")
	fs.BoolP("help", "h", false, "show help")
	fs.SortFlags = false
	return fs
}

// resolve merges the settings file and explicitly set flags.
func (fv *flagValues) resolve(fs *pflag.FlagSet) (settings, error) {
	s := defaultSettings()
	if fv.configPath != "" {
		var err error
		if s, err = loadSettings(fv.configPath); err != nil {
			return s, err
		}
	}

	override := map[string]func(){
		"cache-dir":     func() { s.CacheDir = fv.s.CacheDir },
		"cache-url":     func() { s.CacheURL = fv.s.CacheURL },
		"codec":         func() { s.Codec = fv.s.Codec },
		"item-cache":    func() { s.ItemCapacity = fv.s.ItemCapacity },
		"object-cache":  func() { s.ObjectCapacity = fv.s.ObjectCapacity },
		"opcode-policy": func() { s.OpcodePolicy = fv.s.OpcodePolicy },
		"log-level":     func() { s.LogLevel = fv.s.LogLevel },
		"pack-version":  func() { s.Version = fv.s.Version },
	}
	fs.Visit(func(f *pflag.Flag) {
		if set, ok := override[f.Name]; ok {
			set()
		}
	})
	s.CPUProfile = fv.s.CPUProfile
	return s, nil
}

func (s settings) logger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// options returns the manager options for these settings.
func (s settings) options(logger *slog.Logger) ([]gamecache.Option, error) {
	policy, err := config.ParsePolicy(s.OpcodePolicy)
	if err != nil {
		return nil, err
	}
	return []gamecache.Option{
		gamecache.WithLogger(logger),
		gamecache.WithCodec(s.Codec),
		gamecache.WithItemCacheCapacity(s.ItemCapacity),
		gamecache.WithObjectCacheCapacity(s.ObjectCapacity),
		gamecache.WithOpcodePolicy(policy),
	}, nil
}
