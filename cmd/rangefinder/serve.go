package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/rangefinder/cmd/rangefinder/console"
	"github.com/mklimuk/rangefinder/config"
	"github.com/mklimuk/rangefinder/server"
)

var serveCmd = cli.Command{
	Name:  "serve",
	Usage: "reset the sensor, arm continuous ranging and serve readings over http",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "listen", Aliases: []string{"l"}, Value: ":5000", Usage: "listen address"},
		&cli.BoolFlag{Name: "advertise", Usage: "announce the endpoint over mdns"},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return console.Exit(1, "configuration error: %s", console.Red(err))
		}
		ctx := commandContext(c)
		s, closer, err := openSensor(c, cfg)
		if err != nil {
			return console.Exit(1, "could not open sensor: %s", console.Red(err))
		}
		defer func() { _ = closer() }()

		if err := s.Reset(ctx); err != nil {
			return console.Exit(1, "sensor reset failed: %s", console.Red(err))
		}
		if err := s.ArmContinuous(ctx); err != nil {
			return console.Exit(1, "could not arm continuous ranging: %s", console.Red(err))
		}

		ln, err := net.Listen("tcp", cfg.Listen)
		if err != nil {
			return console.Exit(1, "could not listen on %s: %s", cfg.Listen, console.Red(err))
		}
		if cfg.Advertise {
			adv, err := advertise(ln)
			if err != nil {
				console.Warnf("mdns advertisement disabled: %s", err)
			}
			defer adv.Stop()
		}

		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		srv := server.New(s, server.Config{Listen: cfg.Listen, Version: config.Version})
		console.PInfof(console.PictoPin, "serving on %s", ln.Addr())
		if err := srv.Serve(ctx, ln); err != nil {
			return console.Exit(1, "http server error: %s", console.Red(err))
		}
		console.PInfof(console.PictoFinish, "stopped")
		return nil
	},
}

func advertise(ln net.Listener) (*server.Advertisement, error) {
	_, portStr, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		return nil, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not resolve hostname: %w", err)
	}
	return server.Advertise("rangefinder-"+host, port, config.Version)
}
