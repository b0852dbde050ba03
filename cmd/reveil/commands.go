package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Mavwarf/reveil/internal/alarm"
	"github.com/Mavwarf/reveil/internal/audio"
	"github.com/Mavwarf/reveil/internal/config"
	"github.com/Mavwarf/reveil/internal/dashboard"
	"github.com/Mavwarf/reveil/internal/engine"
	"github.com/Mavwarf/reveil/internal/eventlog"
	"github.com/Mavwarf/reveil/internal/notify"
	"github.com/Mavwarf/reveil/internal/paths"
	"github.com/Mavwarf/reveil/internal/playback"
)

// consoleToaster mirrors UI feedback onto the terminal for headless runs.
type consoleToaster struct{}

func (consoleToaster) Toast(message, severity string) {
	if severity == "error" {
		fmt.Fprintf(os.Stderr, "[%s] %s\n", severity, message)
		return
	}
	fmt.Printf("[%s] %s\n", severity, message)
}

// multiToaster fans feedback out to several sinks.
type multiToaster []engine.Toaster

func (m multiToaster) Toast(message, severity string) {
	for _, t := range m {
		t.Toast(message, severity)
	}
}

func runCmd(configPath string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		fatal("%v", err)
	}

	catalog := cfg.Catalog()
	manager := playback.NewManager(playback.Options{
		Catalog:        catalog,
		Shuffle:        cfg.Options.ShuffleFailover,
		AttemptTimeout: time.Duration(cfg.Options.StreamTimeoutSeconds) * time.Second,
	})

	// Ring history is best-effort: a broken database disables it but
	// never blocks the alarm engine.
	var store eventlog.Store
	if s, err := eventlog.NewSQLiteStore(paths.DBPath()); err != nil {
		fmt.Fprintf(os.Stderr, "warning: ring history disabled: %v\n", err)
	} else {
		store = s
		defer s.Close()
		if removed, err := s.Clean(cfg.Options.HistoryDays); err == nil && removed > 0 {
			fmt.Printf("cleaned %d old history entries\n", removed)
		}
	}

	var channels []notify.Notifier
	if cfg.Options.DesktopToast {
		channels = append(channels, notify.Desktop{Title: "reveil"})
	}
	if m := cfg.Options.MQTT; m != nil {
		channels = append(channels, notify.MQTT{
			Broker:   m.Broker,
			ClientID: m.ClientID,
			Topic:    m.Topic,
			QoS:      m.QoS,
			Retain:   m.Retain,
			Username: m.Username,
			Password: m.Password,
		})
	}
	if w := cfg.Options.Webhook; w != nil {
		channels = append(channels, notify.Webhook{URL: w.URL, Headers: w.Headers})
	}

	registry := alarm.NewRegistry()
	for _, a := range cfg.Alarms {
		if _, err := registry.Add(a); err != nil {
			fmt.Fprintf(os.Stderr, "warning: skipping alarm %q: %v\n", a.Time, err)
		}
	}

	eng := engine.New(engine.Options{
		Registry:      registry,
		Sounder:       manager,
		Notifier:      notify.NewDispatcher(channels...),
		SnoozeMinutes: cfg.Options.SnoozeMinutes,
	})

	server := dashboard.NewServer(eng, store, catalog)
	eng.SetToaster(multiToaster{consoleToaster{}, server})
	if store != nil {
		eng.SetHistory(store)
	}

	go func() {
		if err := server.Serve(cfg.Options.ListenAddr); err != nil {
			fmt.Fprintf(os.Stderr, "warning: dashboard stopped: %v\n", err)
		}
	}()
	fmt.Printf("reveil %s listening on http://%s (%d alarms)\n",
		version, cfg.Options.ListenAddr, eng.Registry().Len())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		fmt.Println("shutting down")
		cancel()
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	eng.Run(ctx, ticker.C)
}

func soundsCmd() {
	for _, name := range audio.Names() {
		def, _ := audio.Lookup(name)
		fmt.Printf("  %-10s %s\n", name, def.Description)
	}
}

func stationsCmd(configPath string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		fatal("%v", err)
	}
	for _, st := range cfg.Catalog().Stations() {
		fmt.Printf("  %-16s %-24s %s\n", st.ID, st.Name, st.Genre)
	}
}

func playCmd(args []string, configPath string, volume int) {
	if len(args) != 1 {
		fatal("usage: reveil play <sound|radio:stationId>")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fatal("%v", err)
	}
	if volume < 0 {
		volume = cfg.Options.DefaultVolume
	}

	manager := playback.NewManager(playback.Options{
		Catalog:        cfg.Catalog(),
		Shuffle:        cfg.Options.ShuffleFailover,
		AttemptTimeout: time.Duration(cfg.Options.StreamTimeoutSeconds) * time.Second,
	})
	manager.Start(args[0], volume)
	defer manager.Stop()

	fmt.Println("playing for 10 seconds, Ctrl-C to stop early")
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	timeout := time.After(10 * time.Second)
	for {
		select {
		case ev := <-manager.Events():
			fmt.Printf("[%s] %s\n", ev.Severity, ev.Message)
		case <-sig:
			return
		case <-timeout:
			return
		}
	}
}

func historyCmd(args []string) {
	days := 7
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			fatal("days must be a non-negative integer")
		}
		days = n
	}

	store, err := eventlog.NewSQLiteStore(paths.DBPath())
	if err != nil {
		fatal("%v", err)
	}
	defer store.Close()

	entries, err := store.Entries(days)
	if err != nil {
		fatal("%v", err)
	}
	if len(entries) == 0 {
		fmt.Println("no ring history")
		return
	}
	for _, e := range entries {
		label := e.Label
		if label == "" {
			label = "-"
		}
		fmt.Printf("  %s  %-8s  %-20s %s\n",
			e.Time.Format("2006-01-02 15:04:05"), e.Kind, label, e.Detail)
	}
}

func cleanCmd(args []string) {
	days := config.DefaultHistoryDays
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			fatal("days must be a positive integer")
		}
		days = n
	}

	store, err := eventlog.NewSQLiteStore(paths.DBPath())
	if err != nil {
		fatal("%v", err)
	}
	defer store.Close()

	removed, err := store.Clean(days)
	if err != nil {
		fatal("%v", err)
	}
	fmt.Printf("removed %d entries older than %d days\n", removed, days)
}
