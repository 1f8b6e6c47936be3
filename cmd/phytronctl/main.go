// Command phytronctl is an operator CLI for Phytron MCC-2 and phyMOTION
// stepper motor controllers. It reads a YAML file describing the controller
// link and its axes, then issues one driver operation per invocation.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/MBI-Div-B/go-phytron/phytron"
)

type linkConfig struct {
	Type   string                   `yaml:"type"` // "serial" or "tcp"
	Serial phytron.SerialLinkConfig `yaml:"serial,omitempty"`
	TCP    phytron.TCPLinkConfig    `yaml:"tcp,omitempty"`
}

type config struct {
	SettingsFile string               `yaml:"settings_file,omitempty"`
	Link         linkConfig           `yaml:"link"`
	Axes         []phytron.AxisConfig `yaml:"axes"`
}

func (c *config) validate() error {
	var err error
	switch c.Link.Type {
	case "serial":
		if c.Link.Serial.Path == "" {
			err = multierr.Append(err, errors.New("link.serial.path required"))
		}
	case "tcp":
		if c.Link.TCP.Address == "" {
			err = multierr.Append(err, errors.New("link.tcp.address required"))
		}
	default:
		err = multierr.Append(err, fmt.Errorf("unknown link type %q, acceptable values are serial and tcp", c.Link.Type))
	}
	if len(c.Axes) == 0 {
		err = multierr.Append(err, errors.New("at least one axis required"))
	}
	for i := range c.Axes {
		if aerr := c.Axes[i].Validate(); aerr != nil {
			err = multierr.Append(err, errors.Wrapf(aerr, "axis %d", i))
		}
	}
	return err
}

func loadConfig(path string) (*config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return &c, c.validate()
}

// session bundles the link and axes opened for one CLI invocation.
type session struct {
	link phytron.ControllerLink
	axes map[string]*phytron.Axis
}

func openSession(ctx context.Context, c *config, logger golog.Logger) (*session, error) {
	var link phytron.ControllerLink
	var err error
	switch c.Link.Type {
	case "serial":
		link, err = phytron.NewSerialLink(c.Link.Serial, logger)
	case "tcp":
		link, err = phytron.NewTCPLink(c.Link.TCP, logger)
	}
	if err != nil {
		return nil, err
	}

	var settings phytron.SettingsStore
	if c.SettingsFile != "" {
		settings, err = phytron.OpenFileSettings(c.SettingsFile)
		if err != nil {
			// Fall back to defaults rather than refusing to talk to the
			// hardware over a broken settings file.
			logger.Warnw("settings unavailable, inversion flags default to false", "error", err)
			settings = nil
		}
	}

	s := &session{link: link, axes: make(map[string]*phytron.Axis)}
	for _, ac := range c.Axes {
		axis, err := phytron.NewAxis(ctx, link, ac, settings, logger.Named(ac.Name))
		if err != nil {
			return nil, multierr.Combine(err, link.Close())
		}
		s.axes[ac.Name] = axis
	}
	return s, nil
}

func (s *session) axis(name string) (*phytron.Axis, error) {
	a, ok := s.axes[name]
	if !ok {
		return nil, fmt.Errorf("no axis named %q in config", name)
	}
	return a, nil
}

func main() {
	logger := golog.NewLogger("phytronctl")

	var cfg *config
	app := &cli.App{
		Name:  "phytronctl",
		Usage: "talk to Phytron MCC-2 / phyMOTION stepper controllers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "phytron.yaml",
				Usage:   "link and axis configuration file",
			},
			&cli.BoolFlag{Name: "debug", Usage: "log wire traffic"},
		},
		Before: func(cctx *cli.Context) error {
			if cctx.Bool("debug") {
				logger = golog.NewDebugLogger("phytronctl")
			}
			var err error
			cfg, err = loadConfig(cctx.String("config"))
			return err
		},
		Commands: []*cli.Command{
			{
				Name:      "status",
				Usage:     "print state and active status flags of an axis",
				ArgsUsage: "<axis>",
				Action: withAxis(&cfg, logger, func(ctx context.Context, a *phytron.Axis) error {
					state, err := a.State(ctx)
					if err != nil {
						return err
					}
					text, err := a.StatusText(ctx)
					if err != nil {
						return err
					}
					fmt.Println(state)
					if text != "" {
						fmt.Println(text)
					}
					return nil
				}),
			},
			{
				Name:      "position",
				Usage:     "print the current position of an axis",
				ArgsUsage: "<axis>",
				Action: withAxis(&cfg, logger, func(ctx context.Context, a *phytron.Axis) error {
					pos, err := a.Position(ctx)
					if err != nil {
						return err
					}
					spu, err := a.StepsPerUnit(ctx)
					if err != nil {
						return err
					}
					if phytron.DisplayFormat(spu) == "%8d" {
						fmt.Printf("%8d\n", int64(pos))
					} else {
						fmt.Printf("%8.3f\n", pos)
					}
					return nil
				}),
			},
			{
				Name:      "move",
				Usage:     "start an absolute move",
				ArgsUsage: "<axis> <position>",
				Action: withAxisArg(&cfg, logger, func(ctx context.Context, a *phytron.Axis, arg string) error {
					pos, err := strconv.ParseFloat(arg, 64)
					if err != nil {
						return errors.Wrapf(err, "bad position %q", arg)
					}
					return a.MoveAbsolute(ctx, pos)
				}),
			},
			{
				Name:      "jog",
				Usage:     "jog continuously",
				ArgsUsage: "<axis> +|-",
				Action: withAxisArg(&cfg, logger, func(ctx context.Context, a *phytron.Axis, arg string) error {
					switch arg {
					case "+":
						return a.JogPlus(ctx)
					case "-":
						return a.JogMinus(ctx)
					}
					return fmt.Errorf("bad jog direction %q, acceptable values are + and -", arg)
				}),
			},
			{
				Name:      "home",
				Usage:     "drive to the reference switch",
				ArgsUsage: "<axis> +|-",
				Action: withAxisArg(&cfg, logger, func(ctx context.Context, a *phytron.Axis, arg string) error {
					switch arg {
					case "+":
						return a.HomePlus(ctx)
					case "-":
						return a.HomeMinus(ctx)
					}
					return fmt.Errorf("bad homing direction %q, acceptable values are + and -", arg)
				}),
			},
			{
				Name:      "stop",
				Usage:     "stop on the deceleration ramp",
				ArgsUsage: "<axis>",
				Action: withAxis(&cfg, logger, func(ctx context.Context, a *phytron.Axis) error {
					return a.Stop(ctx)
				}),
			},
			{
				Name:      "abort",
				Usage:     "stop immediately, without the ramp",
				ArgsUsage: "<axis>",
				Action: withAxis(&cfg, logger, func(ctx context.Context, a *phytron.Axis) error {
					return a.Abort(ctx)
				}),
			},
			{
				Name:      "params",
				Usage:     "dump all numbered parameters of an axis",
				ArgsUsage: "<axis>",
				Action: withAxis(&cfg, logger, func(ctx context.Context, a *phytron.Axis) error {
					dump, err := a.DumpAllParameters(ctx)
					if err != nil {
						return err
					}
					fmt.Print(dump)
					return nil
				}),
			},
			{
				Name:      "firmware",
				Usage:     "print the controller firmware version",
				ArgsUsage: "<axis>",
				Action: withAxis(&cfg, logger, func(ctx context.Context, a *phytron.Axis) error {
					version, err := a.FirmwareVersion(ctx)
					if err != nil {
						return err
					}
					fmt.Println(version)
					return nil
				}),
			},
			{
				Name:      "save",
				Usage:     "commit parameters to the EEPROM",
				ArgsUsage: "<axis>",
				Action: withAxis(&cfg, logger, func(ctx context.Context, a *phytron.Axis) error {
					return a.WriteToEEPROM(ctx)
				}),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Fatal(err)
	}
}

// withAxis adapts a one-axis action to a CLI action, opening the session on
// demand so config parsing errors surface before any serial traffic.
func withAxis(cfg **config, logger golog.Logger, fn func(context.Context, *phytron.Axis) error) cli.ActionFunc {
	return func(cctx *cli.Context) error {
		if cctx.NArg() < 1 {
			return errors.New("axis name required")
		}
		ctx := cctx.Context
		s, err := openSession(ctx, *cfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := s.link.Close(); err != nil {
				logger.Errorw("error closing link", "error", err)
			}
		}()
		a, err := s.axis(cctx.Args().Get(0))
		if err != nil {
			return err
		}
		return fn(ctx, a)
	}
}

func withAxisArg(cfg **config, logger golog.Logger, fn func(context.Context, *phytron.Axis, string) error) cli.ActionFunc {
	return func(cctx *cli.Context) error {
		if cctx.NArg() < 2 {
			return errors.New("axis name and argument required")
		}
		return withAxis(cfg, logger, func(ctx context.Context, a *phytron.Axis) error {
			return fn(ctx, a, cctx.Args().Get(1))
		})(cctx)
	}
}
