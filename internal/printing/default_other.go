//go:build !windows

package printing

import (
	"paperjet/internal/config"
	"paperjet/internal/cupsclient"
	"paperjet/internal/cupsnative"
	"paperjet/internal/logging"
)

// Default returns the CUPS platform for the scheduler named by cfg, or by
// client.conf and the CUPS_* environment.
func Default(cfg config.Config) Platform {
	client := newClient(cfg)
	return NewCUPS(cupsnative.New(client), WithJobTitle(cfg.JobTitle), WithJobUser(client.User))
}

func newClient(cfg config.Config) *cupsclient.Client {
	client := cupsclient.NewFromConfig(
		cupsclient.WithServer(cfg.Server),
		cupsclient.WithTimeout(cfg.Timeout),
	)
	client.Transport = logging.AccessTransport(client.User)
	return client
}

// ServerKey identifies the scheduler printers were enumerated from.
func ServerKey(cfg config.Config) string {
	return newClient(cfg).Server()
}
