package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"hackathon/internal/adapters/storage"
	"hackathon/internal/app"
	"hackathon/internal/application/projections"
	"hackathon/internal/config"
	"hackathon/internal/domain/clockgate"
	"hackathon/internal/domain/countdown"
)

var now = time.Now

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		Args:  cobra.NoArgs,
		RunE: c.withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
			fmt.Fprintf(cmd.OutOrStdout(), "%s at schema version %d\n", a.Env.DBPath, storage.LatestSchemaVersion())
			return nil
		}),
	}
}

func gates(ev config.Event) []projections.NamedSchedule {
	s := ev.Schedules()
	return []projections.NamedSchedule{
		{Name: "registration", Schedule: s.Registration},
		{Name: "ideation", Schedule: s.Ideation},
		{Name: "judging", Schedule: s.Judging},
		{Name: "results", Schedule: s.Results},
	}
}

func findGate(ev config.Event, name string) (clockgate.Schedule, error) {
	for _, g := range gates(ev) {
		if g.Name == name {
			return g.Schedule, nil
		}
	}
	return clockgate.Schedule{}, fmt.Errorf("unknown gate %q: want registration, ideation, judging or results", name)
}

func printPhases(w io.Writer, statuses []projections.PhaseStatus) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "GATE\tPHASE\tNEXT\tAT\tREMAINING\n")
	for _, st := range statuses {
		next, when, left := "-", "-", "-"
		if st.NextAt != nil {
			next = st.NextPhase
			when = st.NextAt.Local().Format(time.RFC3339)
			left = st.Remaining.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", st.Name, st.Phase, next, when, left)
	}
	tw.Flush()
}

func (c *cli) phaseCmd() *cobra.Command {
	var (
		watch    bool
		gate     string
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "phase",
		Short: "Show the phase of every gate, or follow one with --watch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ev, err := c.event()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !watch {
				t := now()
				fmt.Fprintf(out, "%s\n\n", ev.Name)
				printPhases(out, projections.QueryPhaseStatus(t, gates(ev)))
				return nil
			}

			s, err := findGate(ev, gate)
			if err != nil {
				return err
			}
			return clockgate.Watch(cmd.Context(), s, now, interval, func(phase string) {
				fmt.Fprintf(out, "%s %s %s\n", now().Format(time.RFC3339), gate, phase)
			})
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "print every phase change until the gate is terminal")
	cmd.Flags().StringVar(&gate, "gate", "registration", "gate to watch")
	cmd.Flags().DurationVar(&interval, "interval", clockgate.DefaultInterval, "how often to re-check the phase")
	return cmd
}

func (c *cli) countdownCmd() *cobra.Command {
	var (
		gate     string
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "countdown",
		Short: "Count down to a gate's next boundary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ev, err := c.event()
			if err != nil {
				return err
			}
			s, err := findGate(ev, gate)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			next, ok := s.Next(now())
			if !ok {
				fmt.Fprintf(out, "%s is %s; nothing left to count down\n", gate, s.Resolve(now()))
				return nil
			}

			p := countdown.NewPresenter()
			p.Clock = now
			p.Interval = interval
			fmt.Fprintf(out, "%s becomes %s at %s\n", gate, next.Phase, next.At.Local().Format(time.RFC3339))
			return p.Run(cmd.Context(), next.At,
				func(r countdown.Remaining) { fmt.Fprintf(out, "\r%s ", r) },
				func() { fmt.Fprintf(out, "\r%s is now %s\n", gate, next.Phase) })
		},
	}
	cmd.Flags().StringVar(&gate, "gate", "registration", "gate to count down")
	cmd.Flags().DurationVar(&interval, "interval", countdown.DefaultInterval, "refresh interval")
	return cmd
}
