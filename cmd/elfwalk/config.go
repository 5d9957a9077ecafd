package main

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/vietanhduong/elfwalk/pkg/logging"
	"github.com/vietanhduong/elfwalk/pkg/syms"
	"github.com/vietanhduong/elfwalk/pkg/syms/elf"
)

const (
	envPrefix = "ELFWALK"

	configFlag     = "config"
	outputFlag     = "output"
	demangleFlag   = "demangle"
	maxSymbolsFlag = "max-symbols"
	jobsFlag       = "jobs"
	neededFlag     = "needed"
	buildIDFlag    = "build-id"
	resolveFlag    = "resolve"
	lookupFlag     = "lookup"
	cacheSizeFlag  = "cache-size"
	verboseFlag    = "verbose"
)

const (
	outputText = "text"
	outputJson = "json"
)

type config struct {
	output     string
	demangle   syms.DemangleType
	maxSymbols int
	jobs       int
	needed     bool
	buildID    bool
	resolve    []uint64
	lookup     []string
	cacheSize  int
}

func registerFlags(fs *pflag.FlagSet) {
	fs.String(configFlag, "", "Config `file` (any format supported by viper). Flags and ELFWALK_* environment variables take precedence.")
	fs.StringP(outputFlag, "o", outputText, "Output format. Must be 'text' or 'json'.")
	fs.String(demangleFlag, string(syms.DemangleNone), "Demangle symbol names. Available options: NONE, SIMPLIFIED, TEMPLATES, FULL.")
	fs.Int(maxSymbolsFlag, elf.DefaultMaxSymbols, "Upper bound of symbol records read per dynamic segment.")
	fs.IntP(jobsFlag, "j", runtime.NumCPU(), "Number of files parsed concurrently.")
	fs.Bool(neededFlag, false, "Also print the DT_NEEDED libraries and DT_SONAME.")
	fs.Bool(buildIDFlag, false, "Also print the build ID found in PT_NOTE segments.")
	fs.StringSlice(resolveFlag, nil, "Resolve the given virtual `addresses` (e.g. 0x1149) to the closest preceding symbol.")
	fs.StringSlice(lookupFlag, nil, "Print the address of the given symbol `names` (as stored in the file, not demangled).")
	fs.Int(cacheSizeFlag, 10000, "Size of the LRU cache in front of address resolution.")
	fs.BoolP(verboseFlag, "v", false, "Shorthand for --log.level=debug.")
	logging.RegisterFlags(fs)
}

func newViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("viper bind flags: %w", err)
	}
	if path := v.GetString(configFlag); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("viper read config %s: %w", path, err)
		}
	}
	return v, nil
}

func loadConfig(v *viper.Viper) (*config, error) {
	cfg := &config{
		output:     strings.ToLower(v.GetString(outputFlag)),
		demangle:   syms.ParseDemangleType(v.GetString(demangleFlag)),
		maxSymbols: v.GetInt(maxSymbolsFlag),
		jobs:       v.GetInt(jobsFlag),
		needed:     v.GetBool(neededFlag),
		buildID:    v.GetBool(buildIDFlag),
		cacheSize:  v.GetInt(cacheSizeFlag),
	}
	if cfg.output != outputText && cfg.output != outputJson {
		return nil, fmt.Errorf("invalid --%s %q", outputFlag, cfg.output)
	}
	if cfg.jobs <= 0 {
		cfg.jobs = 1
	}
	for _, s := range v.GetStringSlice(resolveFlag) {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		addr, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --%s address %q: %w", resolveFlag, s, err)
		}
		cfg.resolve = append(cfg.resolve, addr)
	}
	for _, s := range v.GetStringSlice(lookupFlag) {
		if s = strings.TrimSpace(s); s != "" {
			cfg.lookup = append(cfg.lookup, s)
		}
	}
	return cfg, nil
}
