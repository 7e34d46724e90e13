package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"roadside-rescue/internal/client/api"
	"roadside-rescue/internal/client/driver"
	"roadside-rescue/internal/client/guard"
)

func newDriverCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "driver",
		Short: "Request and track roadside help",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			return a.enter(guard.PageDriverDashboard)
		},
	}
	cmd.AddCommand(
		newDriverRequestCmd(a),
		newDriverListCmd(a),
		newDriverCancelCmd(a),
		newDriverWatchCmd(a),
	)
	return cmd
}

func (a *app) driverView(cmd *cobra.Command, loc *locationFlags, confirm driver.Confirmer) *driver.View {
	return driver.New(a.api, a.tracker(cmd, loc), a.notifier, confirm, a.cfg.DriverPoll, a.log)
}

func newDriverRequestCmd(a *app) *cobra.Command {
	var (
		loc     locationFlags
		vehicle string
		problem string
	)
	cmd := &cobra.Command{
		Use:   "request",
		Short: "Send a new help request from your current location",
		RunE: func(cmd *cobra.Command, _ []string) error {
			view := a.driverView(cmd, &loc, a)
			if err := view.SetVehicleType(vehicle); err != nil {
				return err
			}
			view.SetProblem(problem)
			if !loc.testLocation {
				if _, err := view.Locate(cmd.Context()); err != nil {
					return err
				}
			}
			created, err := view.Submit(cmd.Context())
			if err != nil {
				return err
			}
			renderer{w: a.out, color: true}.request(*created, nil)
			return nil
		},
	}
	loc.register(cmd)
	cmd.Flags().StringVar(&vehicle, "vehicle", "car", "car, bike, or truck")
	cmd.Flags().StringVar(&problem, "problem", "", "what went wrong")
	return cmd
}

func newDriverListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show your active requests and history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			view := a.driverView(cmd, &locationFlags{}, a)
			if err := view.Refresh(cmd.Context()); err != nil {
				return err
			}
			active, history := view.Requests()
			renderer{w: a.out, color: true}.driverRequests(active, history)
			return nil
		},
	}
}

func newDriverCancelCmd(a *app) *cobra.Command {
	var skipConfirm bool
	cmd := &cobra.Command{
		Use:   "cancel <request-id>",
		Short: "Cancel a pending request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var confirm driver.Confirmer = a
			if skipConfirm {
				confirm = yes{}
			}
			view := a.driverView(cmd, &locationFlags{}, confirm)
			if err := view.Refresh(cmd.Context()); err != nil {
				return err
			}
			return view.Cancel(cmd.Context(), id)
		},
	}
	cmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newDriverWatchCmd(a *app) *cobra.Command {
	var loc locationFlags
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Live dashboard; type `help` for commands",
		RunE: func(cmd *cobra.Command, _ []string) error {
			view := a.driverView(cmd, &loc, a)
			return a.watchDriver(cmd.Context(), view)
		},
	}
	loc.register(cmd)
	return cmd
}

const driverHelp = `commands:
  vehicle <car|bike|truck>   set the vehicle type
  problem <text>             describe the problem
  locate                     acquire your location
  test                       use the test location
  send                       submit the request
  cancel <id>                cancel a pending request
  refresh                    reload now
  quit`

func (a *app) watchDriver(ctx context.Context, view *driver.View) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	view.Run(ctx)
	defer view.Stop()
	a.subscribe(ctx, view.Nudge)

	r := renderer{w: a.out, color: true}
	show := func() {
		active, history := view.Requests()
		r.driverRequests(active, history)
		vehicle, problem, loc, ok := view.Form()
		where := "not set"
		if ok {
			where = fmt.Sprintf("%.4f, %.4f", loc.Lat, loc.Lng)
		}
		fmt.Fprintf(a.out, "\nNew request: vehicle=%s location=%s problem=%q\n> ", vehicle, where, problem)
	}
	fmt.Fprintln(a.out, driverHelp)
	if err := view.Refresh(ctx); err != nil {
		return err
	}
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
			switch verb {
			case "":
			case "quit", "exit":
				return nil
			case "help":
				fmt.Fprintln(a.out, driverHelp)
			case "vehicle":
				if err := view.SetVehicleType(arg); err != nil {
					a.notifier.Error(err.Error())
				}
			case "problem":
				view.SetProblem(arg)
			case "locate":
				_, _ = view.Locate(ctx)
			case "test":
				view.UseTestLocation()
			case "send":
				_, _ = view.Submit(ctx)
			case "cancel":
				id, err := parseID(arg)
				if err != nil {
					a.notifier.Error(err.Error())
					break
				}
				if err := view.Cancel(ctx, id); errors.Is(err, driver.ErrNotCancellable) {
					a.notifier.Error("Only pending requests can be cancelled")
				}
			case "refresh":
				view.Nudge()
			default:
				a.notifier.Error(fmt.Sprintf("unknown command %q", verb))
			}
			show()
		}
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(s), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid request id %q", s)
	}
	return id, nil
}
