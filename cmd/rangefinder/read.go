package main

import (
	"github.com/urfave/cli/v2"

	"github.com/mklimuk/rangefinder/cmd/rangefinder/console"
	"github.com/mklimuk/rangefinder/config"
)

var distanceCmd = cli.Command{
	Name:    "distance",
	Aliases: []string{"dist"},
	Usage:   "take a single distance measurement",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return console.Exit(1, "configuration error: %s", console.Red(err))
		}
		s, closer, err := openSensor(c, cfg)
		if err != nil {
			return console.Exit(1, "could not open sensor: %s", console.Red(err))
		}
		defer func() { _ = closer() }()
		cm, err := s.ReadDistance(commandContext(c))
		if err != nil {
			return console.Exit(1, "error reading distance: %s", console.Red(err))
		}
		console.PInfof(console.PictoRuler, "%s cm", console.White(cm))
		return nil
	},
}

var velocityCmd = cli.Command{
	Name:  "velocity",
	Usage: "read the velocity register",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return console.Exit(1, "configuration error: %s", console.Red(err))
		}
		s, closer, err := openSensor(c, cfg)
		if err != nil {
			return console.Exit(1, "could not open sensor: %s", console.Red(err))
		}
		defer func() { _ = closer() }()
		v, err := s.ReadVelocity(commandContext(c))
		if err != nil {
			return console.Exit(1, "error reading velocity: %s", console.Red(err))
		}
		console.PInfof(console.PictoSpeed, "%s", console.White(v))
		return nil
	},
}

var statusCmd = cli.Command{
	Name:  "status",
	Usage: "decode the status register",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return console.Exit(1, "configuration error: %s", console.Red(err))
		}
		s, closer, err := openSensor(c, cfg)
		if err != nil {
			return console.Exit(1, "could not open sensor: %s", console.Red(err))
		}
		defer func() { _ = closer() }()
		st, err := s.Status(commandContext(c))
		if err != nil {
			return console.Exit(1, "error reading status: %s", console.Red(err))
		}
		console.Printf("busy:               %s\n", console.Flag(st.Busy))
		console.Printf("reference overflow: %s\n", console.Flag(st.ReferenceOverflow))
		console.Printf("signal overflow:    %s\n", console.Flag(st.SignalOverflow))
		console.Printf("invalid signal:     %s\n", console.Flag(st.InvalidSignal))
		console.Printf("secondary return:   %s\n", console.Flag(st.SecondaryReturn))
		console.Printf("healthy:            %s\n", console.Health(st.Healthy))
		console.Printf("process error:      %s\n", console.Flag(st.ProcessError))
		return nil
	},
}

var dumpCmd = cli.Command{
	Name:  "dump",
	Usage: "read every readable register and print its segments as yaml",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return console.Exit(1, "configuration error: %s", console.Red(err))
		}
		if cfg.Adapter == config.AdapterMock {
			return console.Exit(1, "dump needs a hardware adapter")
		}
		d, closer, err := openLidar(c, cfg)
		if err != nil {
			return console.Exit(1, "could not open sensor: %s", console.Red(err))
		}
		defer func() { _ = closer() }()
		dump, err := d.Dump(commandContext(c))
		if err != nil {
			return console.Exit(1, "error reading registers: %s", console.Red(err))
		}
		return printYAML(dump)
	},
}

var resetCmd = cli.Command{
	Name:  "reset",
	Usage: "reset the sensor to its default configuration",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "do not ask for confirmation"},
	},
	Action: func(c *cli.Context) error {
		if !c.Bool("yes") {
			answer, err := console.YesOrNo("reset the sensor?")
			if err != nil {
				return console.Exit(1, "prompt error: %s", console.Red(err))
			}
			if answer != console.Yes {
				console.PInfof(console.PictoStop, "aborted")
				return nil
			}
		}
		cfg, err := loadConfig(c)
		if err != nil {
			return console.Exit(1, "configuration error: %s", console.Red(err))
		}
		s, closer, err := openSensor(c, cfg)
		if err != nil {
			return console.Exit(1, "could not open sensor: %s", console.Red(err))
		}
		defer func() { _ = closer() }()
		if err := s.Reset(commandContext(c)); err != nil {
			return console.Exit(1, "reset failed: %s", console.Red(err))
		}
		console.PInfof(console.PictoFinish, "sensor reset")
		return nil
	},
}
