package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"roadside-rescue/internal/client/api"
	"roadside-rescue/internal/client/guard"
	"roadside-rescue/internal/client/mechanic"
	"roadside-rescue/internal/client/notify"
	"roadside-rescue/internal/models"
)

func newMechanicCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mechanic",
		Short: "Go online and handle jobs",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			return a.enter(guard.PageMechanicDashboard)
		},
	}
	cmd.AddCommand(
		newMechanicToggleCmd(a),
		newMechanicNearbyCmd(a),
		newMechanicJobCmd(a),
		newMechanicActionCmd(a, "accept", "Accept a nearby request", (*mechanic.View).Accept),
		newMechanicActionCmd(a, "reject", "Decline a nearby request", (*mechanic.View).Reject),
		newMechanicJobActionCmd(a, "start", "Start the trip to your active job", (*mechanic.View).Start),
		newMechanicJobActionCmd(a, "complete", "Mark your active job completed", (*mechanic.View).Complete),
		newMechanicWatchCmd(a),
	)
	return cmd
}

func (a *app) mechanicView(cmd *cobra.Command, loc *locationFlags) *mechanic.View {
	return mechanic.New(a.api, a.tracker(cmd, loc), a.notifier, mechanic.Config{
		PollInterval: a.cfg.MechanicPoll,
		PingInterval: a.cfg.LocationPing,
	}, a.log)
}

func newMechanicToggleCmd(a *app) *cobra.Command {
	var loc locationFlags
	cmd := &cobra.Command{
		Use:   "toggle",
		Short: "Switch between online and offline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			view := a.mechanicView(cmd, &loc)
			defer view.Close()
			if err := view.Open(cmd.Context()); err != nil {
				return err
			}
			_, err := view.Toggle(cmd.Context())
			return err
		},
	}
	loc.register(cmd)
	return cmd
}

func newMechanicNearbyCmd(a *app) *cobra.Command {
	var loc locationFlags
	cmd := &cobra.Command{
		Use:   "nearby",
		Short: "List pending requests near you",
		RunE: func(cmd *cobra.Command, _ []string) error {
			requests, err := a.api.NearbyRequests(cmd.Context())
			if err != nil {
				notify.APIError(a.notifier, err, "Failed to load nearby requests")
				return err
			}
			tracker := a.tracker(cmd, &loc)
			if !loc.testLocation {
				_, _ = tracker.Acquire(cmd.Context())
			}
			var from *models.Coordinates
			if c, ok := tracker.Location(); ok {
				from = &c
			}

			r := renderer{w: a.out, color: true}
			r.section(fmt.Sprintf("Nearby requests (%d)", len(requests)))
			if len(requests) == 0 {
				fmt.Fprintln(a.out, "No requests nearby")
			}
			for _, req := range requests {
				r.request(req, from)
			}
			return nil
		},
	}
	loc.register(cmd)
	return cmd
}

func newMechanicJobCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "job",
		Short: "Show your active job",
		RunE: func(cmd *cobra.Command, _ []string) error {
			job, err := a.api.ActiveJob(cmd.Context())
			if err != nil {
				return err
			}
			if job == nil {
				fmt.Fprintln(a.out, "No active job")
				return nil
			}
			renderer{w: a.out, color: true}.request(*job, nil)
			return nil
		},
	}
}

type idAction func(v *mechanic.View, ctx context.Context, id int64) error

func newMechanicActionCmd(a *app, use, short string, act idAction) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <request-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			view := a.mechanicView(cmd, &locationFlags{})
			defer view.Close()
			return act(view, cmd.Context(), id)
		},
	}
}

type jobAction func(v *mechanic.View, ctx context.Context) error

func newMechanicJobActionCmd(a *app, use, short string, act jobAction) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			view := a.mechanicView(cmd, &locationFlags{})
			defer view.Close()
			if err := view.Open(cmd.Context()); err != nil {
				return err
			}
			err := act(view, cmd.Context())
			if errors.Is(err, mechanic.ErrNoActiveJob) {
				return fmt.Errorf("you have no active job")
			}
			return err
		},
	}
}

func newMechanicWatchCmd(a *app) *cobra.Command {
	var loc locationFlags
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Live dashboard; type `help` for commands",
		RunE: func(cmd *cobra.Command, _ []string) error {
			view := a.mechanicView(cmd, &loc)
			defer view.Close()
			return a.watchMechanic(cmd.Context(), view)
		},
	}
	loc.register(cmd)
	return cmd
}

const mechanicHelp = `commands:
  toggle          go online or offline
  accept <id>     accept a nearby request
  reject <id>     decline a nearby request
  start           start the trip to the active job
  complete        complete the active job
  refresh         reload now
  quit`

func (a *app) watchMechanic(ctx context.Context, view *mechanic.View) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := view.Open(ctx); err != nil {
		return err
	}
	a.subscribe(ctx, view.Nudge)

	r := renderer{w: a.out, color: true}
	show := func() {
		r.mechanicDashboard(view.Snapshot())
		fmt.Fprint(a.out, "> ")
	}
	fmt.Fprintln(a.out, mechanicHelp)
	show()

	lines := a.in.Lines()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-view.Expired():
			return api.ErrSessionExpired
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			verb, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
			var err error
			switch verb {
			case "":
			case "quit", "exit":
				return nil
			case "help":
				fmt.Fprintln(a.out, mechanicHelp)
			case "toggle":
				_, err = view.Toggle(ctx)
			case "accept", "reject":
				id, perr := parseID(arg)
				if perr != nil {
					a.notifier.Error(perr.Error())
					break
				}
				if verb == "accept" {
					err = view.Accept(ctx, id)
				} else {
					err = view.Reject(ctx, id)
				}
			case "start":
				err = view.Start(ctx)
			case "complete":
				err = view.Complete(ctx)
			case "refresh":
				err = view.Refresh(ctx)
			default:
				a.notifier.Error(fmt.Sprintf("unknown command %q", verb))
			}
			if errors.Is(err, mechanic.ErrNoActiveJob) {
				a.notifier.Error("No active job")
			}
			if isSessionExpired(err) {
				return err
			}
			show()
		}
	}
}
