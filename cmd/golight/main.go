// Command golight performs basic operations on light bulbs over the LAN:
// discovery, power and color control, and effects.
package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lumenlabs/golight"
	"github.com/lumenlabs/golight/common"
	"github.com/lumenlabs/golight/discovery"
)

type config struct {
	Timeout  time.Duration `yaml:"timeout"`
	LogLevel string        `yaml:"log_level"`
	Duration time.Duration `yaml:"duration"`

	Discovery struct {
		Rounds       int           `yaml:"rounds"`
		RoundTimeout time.Duration `yaml:"round_timeout"`
		Subnet       string        `yaml:"subnet"`
	} `yaml:"discovery"`
}

var (
	client *golight.Client
	cfg    config

	flagConfig   string
	flagTimeout  time.Duration
	flagLogLevel string
	flagDuration time.Duration

	logger = logrus.New()
	app    *cobra.Command
)

func init() {
	app = &cobra.Command{
		Use:   `golight`,
		Short: `control light bulbs on the local network`,
		PersistentPreRun: func(c *cobra.Command, args []string) {
			loadConfig()
			setLogger()
		},
	}

	golight.SetLogger(logger)

	app.PersistentFlags().StringVarP(&flagConfig, `config`, `c`, ``, `config file (default $HOME/.config/golight.yaml)`)
	app.PersistentFlags().DurationVarP(&flagTimeout, `timeout`, `t`, common.DefaultTimeout, `timeout for all operations`)
	app.PersistentFlags().StringVarP(&flagLogLevel, `log-level`, `L`, `info`, `log level, one of: [debug,info,warn,error]`)
	app.PersistentFlags().DurationVarP(&flagDuration, `duration`, `d`, 500*time.Millisecond, `transition duration for power and color changes`)

	app.AddCommand(cmdScan)
	app.AddCommand(cmdOn)
	app.AddCommand(cmdOff)
	app.AddCommand(cmdColor)
	app.AddCommand(cmdLabel)
	app.AddCommand(cmdInfo)
	app.AddCommand(cmdWaveform)
	app.AddCommand(cmdEffect)
	app.AddCommand(cmdStop)
	app.AddCommand(cmdEffects)
}

func main() {
	if err := app.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig overlays the yaml config under the flag defaults.  A missing
// file is fine; a broken one is fatal so typos don't silently vanish.
func loadConfig() {
	path := flagConfig
	if path == `` {
		home, err := os.UserHomeDir()
		if err != nil {
			return
		}
		path = filepath.Join(home, `.config`, `golight.yaml`)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if flagConfig != `` {
			logger.WithField(`error`, err).Fatalln(`Could not read config file`)
		}
		return
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logger.WithFields(logrus.Fields{
			`file`:  path,
			`error`: err,
		}).Fatalln(`Could not parse config file`)
	}

	if cfg.Timeout > 0 && !app.PersistentFlags().Changed(`timeout`) {
		flagTimeout = cfg.Timeout
	}
	if cfg.LogLevel != `` && !app.PersistentFlags().Changed(`log-level`) {
		flagLogLevel = cfg.LogLevel
	}
	if cfg.Duration > 0 && !app.PersistentFlags().Changed(`duration`) {
		flagDuration = cfg.Duration
	}
}

func setupClient(c *cobra.Command, args []string) {
	opts := discovery.Options{
		Rounds:       cfg.Discovery.Rounds,
		RoundTimeout: cfg.Discovery.RoundTimeout,
		Subnet:       cfg.Discovery.Subnet,
	}
	client = golight.NewClient(
		golight.WithTimeout(flagTimeout),
		golight.WithDiscoveryOptions(opts),
	)
}

func closeClient(c *cobra.Command, args []string) {
	if err := client.Close(); err != nil {
		logger.WithField(`error`, err).Fatalln(`Failed closing client`)
	}
}

func setLogger() {
	switch flagLogLevel {
	case `debug`:
		logger.Level = logrus.DebugLevel
	case `info`:
		logger.Level = logrus.InfoLevel
	case `warn`:
		logger.Level = logrus.WarnLevel
	case `error`:
		logger.Level = logrus.ErrorLevel
	default:
		logger.Level = logrus.InfoLevel
	}
}
