package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/sirupsen/logrus"

	"github.com/RedPaladin7/lanjack/blackjack"
	"github.com/RedPaladin7/lanjack/config"
)

const defaultVersion = "1.0.0"

func main() {
	var (
		mode          = flag.String("mode", "server", "Run as server or client")
		configPath    = flag.String("config", "", "Directory containing lanjack.yaml")
		name          = flag.String("name", "", "Server or player name (max 32 bytes on the wire)")
		tcpPort       = flag.Int("tcp-port", 0, "Server TCP port (0 = auto)")
		udpPort       = flag.Int("udp-port", blackjack.DefaultUDPPort, "UDP offer port")
		offerInterval = flag.Duration("offer-interval", blackjack.DefaultOfferInterval, "Time between UDP offers")
		apiAddr       = flag.String("api-addr", "", "Status API address, e.g. localhost:8080 (empty = off)")
		rounds        = flag.Int("rounds", 0, "Rounds per session (0 = ask)")
		logLevel      = flag.String("log-level", "", "Log level (debug, info, warn, error)")
		version       = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *version {
		fmt.Printf("LAN Blackjack v%s\n", defaultVersion)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("Invalid configuration: %s", err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			cfg.Server.Name = *name
			cfg.Client.Name = *name
		case "tcp-port":
			cfg.Server.TCPPort = *tcpPort
		case "udp-port":
			cfg.Server.UDPPort = *udpPort
			cfg.Client.UDPPort = *udpPort
		case "offer-interval":
			cfg.Server.OfferInterval = *offerInterval
		case "api-addr":
			cfg.Server.APIAddr = *apiAddr
		case "rounds":
			cfg.Client.Rounds = *rounds
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	if err := config.Validate(cfg); err != nil {
		logrus.Fatalf("Invalid configuration: %s", err)
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", cfg.LogLevel)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	switch *mode {
	case "server":
		go runServer(ctx, cfg.Server)
	case "client":
		go runClient(ctx, cfg.Client)
	default:
		logrus.Fatalf("Unknown mode %q, want server or client", *mode)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logrus.Info("Shutdown signal received")
	cancel()
	// Give the server a moment to stop broadcasting; sessions are not drained.
	time.Sleep(100 * time.Millisecond)
}

func runServer(ctx context.Context, cfg config.ServerConfig) {
	srv := blackjack.NewServer(blackjack.ServerConfig{
		Name:             cfg.Name,
		ListenAddr:       fmt.Sprintf(":%d", cfg.TCPPort),
		UDPPort:          cfg.UDPPort,
		BroadcastAddr:    cfg.BroadcastAddr,
		OfferInterval:    cfg.OfferInterval,
		APIListenAddr:    cfg.APIAddr,
		HandshakeTimeout: cfg.HandshakeTimeout,
		ReadTimeout:      cfg.ReadTimeout,
	})
	if err := srv.Listen(); err != nil {
		logrus.Fatal(err)
	}
	logrus.Infof("Server started, listening on IP address %s, TCP port %d", localIP(), srv.TCPPort())
	if cfg.APIAddr != "" {
		logrus.Infof("  Health:  GET  http://%s/api/health", cfg.APIAddr)
		logrus.Infof("  Stats:   GET  http://%s/api/stats", cfg.APIAddr)
	}
	if err := srv.Start(ctx); err != nil {
		logrus.Fatal(err)
	}
}

func runClient(ctx context.Context, cfg config.ClientConfig) {
	pterm.DefaultHeader.Println("LAN Blackjack")
	for ctx.Err() == nil {
		spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Client started, listening for offer requests on UDP %d...", cfg.UDPPort))
		d, err := blackjack.ListenOffer(cfg.UDPPort, cfg.ListenTimeout)
		if err != nil {
			spinner.Fail(err.Error())
			var timeout *blackjack.TimeoutError
			if !errors.As(err, &timeout) {
				logrus.Errorf("offer listener: %s", err)
			}
			time.Sleep(cfg.Backoff)
			continue
		}
		spinner.Success(fmt.Sprintf("Received offer from %q at %s", d.ServerName, d.TCPAddr()))

		n := cfg.Rounds
		if n == 0 {
			if n, err = askRounds(); err != nil {
				logrus.Errorf("reading rounds: %s", err)
				return
			}
		}
		client := blackjack.NewClient(blackjack.ClientConfig{
			Name:           cfg.Name,
			Rounds:         n,
			ConnectTimeout: cfg.ConnectTimeout,
			ReadTimeout:    cfg.ReadTimeout,
			Decider:        consoleDecider{},
			OnRound:        printRound,
		})
		tally, err := client.Play(ctx, d.TCPAddr())
		if err != nil {
			logrus.WithField("server", d.TCPAddr()).Errorf("session failed: %s", err)
			time.Sleep(cfg.Backoff)
			continue
		}
		printSummary(d.ServerName, tally)
	}
}
