// seam-chat is an interactive SEAM peer.
//
// It listens for inbound connections over UDP, optionally announces
// itself via mDNS, and drives an outbound connection from a readline
// command loop.
package main

import (
	"context"
	"flag"
	stdlog "log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/seam-protocol/seam-go/cmd/seam-chat/interactive"
	"github.com/seam-protocol/seam-go/pkg/config"
	"github.com/seam-protocol/seam-go/pkg/discovery"
	"github.com/seam-protocol/seam-go/pkg/log"
	"github.com/seam-protocol/seam-go/pkg/transport"
)

func main() {
	var (
		configFile string
		localPeer  string
		remotePeer string
		listenAddr string
		noDiscover bool
	)
	flag.StringVar(&configFile, "config", "", "Configuration file path")
	flag.StringVar(&localPeer, "local", "", "Local peer address (decimal)")
	flag.StringVar(&remotePeer, "remote", "", "Remote peer address (decimal)")
	flag.StringVar(&listenAddr, "listen", config.DefaultListenAddress, "UDP listen address")
	flag.BoolVar(&noDiscover, "no-discover", false, "Disable mDNS discovery")
	flag.Parse()

	cfg, err := loadConfig(configFile, localPeer, remotePeer, listenAddr)
	if err != nil {
		stdlog.Fatalf("Configuration error: %v", err)
	}
	if noDiscover {
		cfg.Discovery.Enabled = false
	}

	tr, err := transport.NewUDP(cfg.Local.Listen)
	if err != nil {
		stdlog.Fatalf("Failed to start UDP transport: %v", err)
	}
	defer tr.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	chat, err := interactive.New(cfg, tr)
	if err != nil {
		stdlog.Fatalf("Failed to create interactive chat: %v", err)
	}

	// Route log output through readline to avoid mangling the prompt.
	logger := buildLogger(cfg, chat)
	chat.SetLogger(logger)
	tr.SetHandler(chat)

	if cfg.Discovery.Enabled {
		startDiscovery(ctx, cfg, tr, chat)
	}

	go chat.Run(ctx, cancel)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
	case <-ctx.Done():
	}

	chat.Close()
}

// loadConfig reads the configuration file, or assembles one from
// flags when no file is given.
func loadConfig(path, localPeer, remotePeer, listenAddr string) (*config.Config, error) {
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		if remotePeer != "" {
			cfg.Remote.Peer = remotePeer
		}
		return cfg, cfg.Validate()
	}

	cfg := config.New(localPeer)
	cfg.Local.Listen = listenAddr
	cfg.Remote.Peer = remotePeer
	cfg.Discovery.Enabled = true
	return cfg, cfg.Validate()
}

// buildLogger assembles the event logger: slog to the readline-safe
// writer, plus an optional CBOR event file.
func buildLogger(cfg *config.Config, chat *interactive.Chat) log.Logger {
	handler := slog.NewTextHandler(chat.Stdout(), &slog.HandlerOptions{Level: slog.LevelDebug})
	loggers := []log.Logger{log.NewSlogAdapter(slog.New(handler))}

	if cfg.Log.File != "" {
		fileLogger, err := log.NewFileLogger(cfg.Log.File)
		if err != nil {
			stdlog.Printf("Warning: event log disabled: %v", err)
		} else {
			loggers = append(loggers, fileLogger)
		}
	}
	return log.NewMultiLogger(loggers...)
}

// startDiscovery announces the local peer and feeds discovered peers
// into the transport's peer table.
func startDiscovery(ctx context.Context, cfg *config.Config, tr *transport.UDP, chat *interactive.Chat) {
	port := listenPort(cfg.Local.Listen)

	adv := discovery.NewAdvertiser(discovery.DefaultAdvertiserConfig())
	if err := adv.Advertise(cfg.LocalPeer(), port); err != nil {
		stdlog.Printf("Warning: mDNS advertise failed: %v", err)
	}
	go func() {
		<-ctx.Done()
		adv.Stop()
	}()

	browser := discovery.NewBrowser(discovery.DefaultBrowserConfig())
	results, err := browser.Browse(ctx)
	if err != nil {
		stdlog.Printf("Warning: mDNS browse failed: %v", err)
		return
	}

	go func() {
		for svc := range results {
			if svc.Peer == cfg.LocalPeer() || len(svc.Addresses) == 0 {
				continue
			}
			ip := net.ParseIP(svc.Addresses[0])
			if ip == nil {
				continue
			}
			endpoint := &net.UDPAddr{IP: ip, Port: int(svc.Port)}
			tr.AddPeer(svc.Peer, endpoint)
			chat.PeerDiscovered(svc, endpoint)
		}
	}()
}

func listenPort(listen string) int {
	_, portStr, err := net.SplitHostPort(listen)
	if err != nil {
		return 0
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0
	}
	return port
}
