package config

import (
	"flag"
	"fmt"
	"io"
	"strconv"
)

const Usage = `myOwnWebServer -webRoot=C:\localWebSite -webIP=192.168.100.23 -webPort=5300`

var ErrUsage = fmt.Errorf("invalid format of arguments")

// intValue keeps the raw text so a malformed port is reported as such
// instead of as a generic flag error.
type intValue struct {
	raw string
}

func (v *intValue) String() string { return v.raw }

func (v *intValue) Set(s string) error {
	v.raw = s
	return nil
}

// FromArgs builds a Config from command-line arguments. When -config names a
// file it is loaded first and any other flag given overrides its values.
func FromArgs(args []string) (Config, error) {
	fs := flag.NewFlagSet("myOwnWebServer", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configPath  = fs.String("config", "", "TOML or YAML configuration file")
		root        = fs.String("webRoot", "", "directory to serve files from")
		address     = fs.String("webIP", "", "IP address to bind to")
		port        intValue
		logFile     = fs.String("logFile", "", "log file path")
		maxLogSize  = fs.String("maxLogSize", "", "rotate the log file past this size, e.g. 10MB")
		readTimeout = fs.Duration("readTimeout", 0, "deadline for reading a request, 0 waits forever")
	)
	fs.Var(&port, "webPort", "port to listen on")

	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return Config{}, fmt.Errorf("%w: unexpected argument %q", ErrUsage, fs.Arg(0))
	}

	cfg := Default()
	if *configPath != "" {
		loaded, err := Load(*configPath)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}

	var err error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "webRoot":
			cfg.Root = *root
		case "webIP":
			cfg.Address = *address
		case "webPort":
			n, convErr := strconv.Atoi(port.raw)
			if convErr != nil {
				err = fmt.Errorf("%w: %q", ErrInvalidPort, port.raw)
				return
			}
			cfg.Port = n
		case "logFile":
			cfg.LogFile = *logFile
		case "maxLogSize":
			cfg.MaxLogSize = *maxLogSize
		case "readTimeout":
			cfg.ReadTimeout = *readTimeout
		}
	})
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}
