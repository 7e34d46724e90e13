package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"roadside-rescue/internal/client/api"
	"roadside-rescue/internal/client/geo"
	"roadside-rescue/internal/client/guard"
	"roadside-rescue/internal/client/notify"
	"roadside-rescue/internal/client/push"
	"roadside-rescue/internal/client/session"
	"roadside-rescue/internal/config"
	"roadside-rescue/internal/models"
	"roadside-rescue/pkg/logger"
)

// app is what every command shares. It is built once in PersistentPreRunE.
type app struct {
	cfg      *config.ClientConfig
	log      *logger.Logger
	store    *session.Store
	api      *api.Client
	guard    *guard.Guard
	notifier notify.Notifier
	in       *lineReader
	out      io.Writer
}

func newApp(in io.Reader, out io.Writer) (*app, error) {
	cfg := config.LoadClient()

	output := "stderr"
	if cfg.LogFile != "" {
		output = cfg.LogFile
	}
	log, err := logger.NewLogger(&logger.Config{
		Level:   logger.LogLevel(cfg.LogLevel),
		Format:  "text",
		Output:  output,
		AppName: "roadside",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}

	storage, err := session.NewFileStorage(cfg.SessionFile)
	if err != nil {
		return nil, err
	}
	store := session.NewStore(storage, log)
	store.Init()

	return &app{
		cfg:      cfg,
		log:      log,
		store:    store,
		api:      api.New(cfg.APIURL, store, api.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}), api.WithLogger(log)),
		guard:    guard.New(store),
		notifier: notify.NewTerminal(out, true),
		in:       newLineReader(in),
		out:      out,
	}, nil
}

// enter resolves page through the guard and fails unless the session may
// view it.
func (a *app) enter(page string) error {
	resolved := a.guard.Resolve(page)
	if resolved == page {
		return nil
	}
	switch resolved {
	case guard.PageLogin:
		return fmt.Errorf("not logged in: run `roadside login` first")
	case guard.PageDriverDashboard:
		return fmt.Errorf("this command is for mechanics; you are logged in as a driver")
	case guard.PageMechanicDashboard:
		return fmt.Errorf("this command is for drivers; you are logged in as a mechanic")
	}
	return fmt.Errorf("you are already logged in; run `roadside logout` first")
}

type locationFlags struct {
	lat, lng     float64
	testLocation bool
}

func (f *locationFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.lat, "lat", 0, "latitude to report")
	cmd.Flags().Float64Var(&f.lng, "lng", 0, "longitude to report")
	cmd.Flags().BoolVar(&f.testLocation, "test-location", false, "use the fixed test location (Dehradun)")
}

// tracker builds a geo tracker from the flags: explicit coordinates, then
// the configured HTTP locator, then nothing.
func (a *app) tracker(cmd *cobra.Command, f *locationFlags) *geo.Tracker {
	var locator geo.Locator = geo.Unavailable
	switch {
	case cmd.Flags().Changed("lat") && cmd.Flags().Changed("lng"):
		locator = geo.StaticLocator{Coords: models.Coordinates{Lat: f.lat, Lng: f.lng}}
	case a.cfg.LocationURL != "":
		locator = &geo.HTTPLocator{URL: a.cfg.LocationURL, Client: &http.Client{Timeout: a.cfg.LocationTimeout}}
	}

	t := geo.NewTracker(locator, a.cfg.LocationTimeout)
	if f.testLocation {
		t.UseTestLocation()
	}
	return t
}

// subscribe nudges the view on every server push while ctx lives.
func (a *app) subscribe(ctx context.Context, nudge func()) {
	if !a.cfg.Push {
		return
	}
	sub, err := push.NewSubscriber(a.cfg.APIURL, a.store.Token, a.log)
	if err != nil {
		a.log.WithError(err).Warn("Push disabled")
		return
	}
	go func() {
		err := sub.Run(ctx, func(ev push.Event) {
			a.log.WithField("type", ev.Type).Debug("Push event")
			nudge()
		})
		if err != nil {
			a.log.WithError(err).Info("Push subscription ended")
		}
	}()
}

// Confirm implements driver.Confirmer on top of the shared input.
func (a *app) Confirm(prompt string) bool {
	fmt.Fprintf(a.out, "%s [y/N] ", prompt)
	line, ok := a.in.Next()
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

type yes struct{}

func (yes) Confirm(string) bool { return true }

func isSessionExpired(err error) bool {
	return errors.Is(err, api.ErrSessionExpired)
}
