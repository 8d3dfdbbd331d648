package server

import (
	"fmt"
	"log/slog"

	"github.com/enbility/zeroconf/v3"
)

const (
	ServiceType = "_http._tcp"
	Domain      = "local."
)

// Advertisement is a running mDNS announcement.
type Advertisement struct {
	server *zeroconf.Server
}

// Advertise announces the HTTP endpoint on all interfaces.
func Advertise(instance string, port int, version string) (*Advertisement, error) {
	txt := []string{
		"path=/distance",
		"version=" + version,
	}
	srv, err := zeroconf.Register(instance, ServiceType, Domain, port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("could not register mdns service: %w", err)
	}
	slog.Info("advertising over mdns", "instance", instance, "service", ServiceType, "port", port)
	return &Advertisement{server: srv}, nil
}

func (a *Advertisement) Stop() {
	if a == nil || a.server == nil {
		return
	}
	a.server.Shutdown()
	a.server = nil
}
