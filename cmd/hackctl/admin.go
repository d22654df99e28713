package main

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"hackathon/internal/app"
	"hackathon/internal/application/listutil"
	"hackathon/internal/application/orchestrators"
	"hackathon/internal/application/projections"
	"hackathon/internal/domain/account"
	"hackathon/internal/domain/export"
	"hackathon/internal/domain/leaderboard"
)

func render[T any](src projections.ItemSource[T], view listutil.View[T], schema export.Schema[T], q url.Values, format string, dedupe bool, adjust func(listutil.ListParams) listutil.ListParams) (export.Document, error) {
	params := view.Parse(q)
	if adjust != nil {
		params = adjust(params)
	}
	return projections.QueryExport(src, view, schema, projections.ExportQuery{
		List:    params,
		Options: export.Options{Format: format, Dedupe: dedupe, Now: now()},
	})
}

func (c *cli) exportCmd() *cobra.Command {
	var (
		format string
		out    string
		search string
		all    bool
		dedupe bool
		sortBy string
		dir    string
		filter []string
	)
	cmd := &cobra.Command{
		Use:   "export <registrations|submissions|scores|leaderboard>",
		Short: "Export a board as csv, txt or json",
		Args:  cobra.ExactArgs(1),
		RunE: c.withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			q := url.Values{}
			q.Set("q", search)
			q.Set("sort", sortBy)
			q.Set("dir", dir)
			if all {
				q.Set("all", "1")
			}
			for _, kv := range filter {
				k, v, ok := strings.Cut(kv, "=")
				if !ok || k == "" {
					return fmt.Errorf("--filter %q: want key=value", kv)
				}
				q.Set(k, v)
			}

			m := a.Moderator
			m.EnsureFresh(cmd.Context(), 0)
			var doc export.Document
			switch args[0] {
			case orchestrators.BoardRegistrations:
				doc, err = render(m.Registrations, projections.RegistrationView, projections.RegistrationExport, q, f, dedupe, projections.ActiveRegistrationsByDefault)
			case orchestrators.BoardSubmissions:
				doc, err = render(m.Submissions, projections.SubmissionView, projections.SubmissionExport, q, f, dedupe, nil)
			case orchestrators.BoardScores:
				doc, err = render(m.Scores, projections.ScoreView, projections.ScoreExport, q, f, dedupe, nil)
			case orchestrators.BoardLeaderboard:
				doc, err = render(m.Leaderboard, projections.LeaderboardView, projections.LeaderboardExport, q, f, dedupe, nil)
			default:
				return fmt.Errorf("unknown board %q", args[0])
			}
			if err != nil {
				return err
			}

			if out == "" {
				_, err = cmd.OutOrStdout().Write(doc.Data)
				return err
			}
			if out == "." {
				out = doc.Filename
			}
			if err := os.WriteFile(out, doc.Data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d records to %s\n", doc.Records, out)
			return nil
		}),
	}
	cmd.Flags().StringVar(&format, "format", export.FormatCSV, "csv, txt or json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file; \".\" uses the generated filename; empty writes to stdout")
	cmd.Flags().StringVar(&search, "q", "", "search term")
	cmd.Flags().BoolVar(&all, "all", false, "export the whole board, ignoring search and filters")
	cmd.Flags().BoolVar(&dedupe, "dedupe", false, "drop repeated identities, keeping the first")
	cmd.Flags().StringVar(&sortBy, "sort", "", "sort key")
	cmd.Flags().StringVar(&dir, "dir", "", "asc or desc")
	cmd.Flags().StringArrayVar(&filter, "filter", nil, "view filter as key=value, repeatable")
	return cmd
}

func (c *cli) moderateCmd() *cobra.Command {
	var board string
	cmd := &cobra.Command{
		Use:   "moderate <archive|restore|present|absent|rate|delete> <id> [rating]",
		Short: "Apply a moderation action to one record",
		Long: "archive, restore, present, absent and rate act on registrations.\n" +
			"delete removes a record from the board named by --board.\n" +
			"rate without a value clears the rating.",
		Args: cobra.RangeArgs(2, 3),
		RunE: c.withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
			ctx := cmd.Context()
			m := a.Moderator
			m.EnsureFresh(ctx, 0)
			action, id := args[0], args[1]
			out := cmd.OutOrStdout()

			if action == "delete" {
				var err error
				switch board {
				case orchestrators.BoardRegistrations:
					err = m.DeleteRegistration(ctx, id)
				case orchestrators.BoardSubmissions:
					err = m.DeleteSubmission(ctx, id)
				case orchestrators.BoardScores:
					err = m.DeleteScore(ctx, id)
				case orchestrators.BoardLeaderboard:
					err = m.DeleteLeaderboardEntry(ctx, id)
				default:
					return fmt.Errorf("unknown board %q", board)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "deleted %s from %s\n", id, board)
				return nil
			}

			var rating *int
			if len(args) == 3 {
				if action != "rate" {
					return fmt.Errorf("%s takes no value", action)
				}
				n, err := strconv.Atoi(args[2])
				if err != nil {
					return fmt.Errorf("rating %q is not a number", args[2])
				}
				rating = &n
			}

			var err error
			switch action {
			case "archive":
				_, err = m.ArchiveRegistration(ctx, id)
			case "restore":
				_, err = m.RestoreRegistration(ctx, id)
			case "present":
				_, err = m.MarkPresent(ctx, id, true)
			case "absent":
				_, err = m.MarkPresent(ctx, id, false)
			case "rate":
				_, err = m.RateRegistration(ctx, id, rating)
			default:
				return fmt.Errorf("unknown action %q", action)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s\n", action, id)
			return nil
		}),
	}
	cmd.Flags().StringVar(&board, "board", orchestrators.BoardRegistrations, "board for delete")
	return cmd
}

func optionalInt(v int) *int {
	if v < 0 {
		return nil
	}
	return &v
}

func printLeaderboard(w io.Writer, rows []projections.LeaderboardRow) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "RANK\tTEAM\tR1\tR2\tR3\tTOTAL\tDRIFT\tID\n")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s", r.Rank, r.TeamName)
		for _, pts := range r.Rounds {
			if pts == nil {
				fmt.Fprint(tw, "\t-")
			} else {
				fmt.Fprintf(tw, "\t%d", *pts)
			}
		}
		fmt.Fprintf(tw, "\t%d\t%d\t%s\n", r.Total, r.Drift, r.ID)
	}
	tw.Flush()
}

func (c *cli) leaderboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show or edit the leaderboard",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show every row, published or not",
		Args:  cobra.NoArgs,
		RunE: c.withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
			res, err := projections.QueryLeaderboard(cmd.Context(), true, projections.LeaderboardDeps{
				Store:   a.Stores.LeaderboardStore,
				Results: a.Event.Schedules().Results,
				Clock:   now,
			})
			if err != nil {
				return err
			}
			state := "hidden until " + res.PublishesAt.Local().Format("2006-01-02 15:04 MST")
			if res.Published {
				state = "published"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "leaderboard %s\n\n", state)
			printLeaderboard(cmd.OutOrStdout(), res.Rows)
			return nil
		}),
	})

	var (
		id     string
		team   string
		rounds [leaderboard.Rounds]int
		total  int
	)
	set := &cobra.Command{
		Use:   "set",
		Short: "Create a row, or update the row given by --id",
		Args:  cobra.NoArgs,
		RunE: c.withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
			a.Moderator.EnsureFresh(cmd.Context(), 0)
			in := orchestrators.LeaderboardInput{ID: id, TeamName: team, Total: optionalInt(total)}
			for i, pts := range rounds {
				in.Rounds[i] = optionalInt(pts)
			}
			e, err := a.Moderator.SaveLeaderboardEntry(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s total %d drift %d\n", e.ID, e.TeamName, e.Total, e.Drift())
			return nil
		}),
	}
	set.Flags().StringVar(&id, "id", "", "row to update; empty creates one")
	set.Flags().StringVar(&team, "team", "", "team name")
	for i := range rounds {
		set.Flags().IntVar(&rounds[i], fmt.Sprintf("round%d", i+1), -1, fmt.Sprintf("round %d points; negative leaves it unscored", i+1))
	}
	set.Flags().IntVar(&total, "total", -1, "total as entered; negative derives it from the rounds")
	cmd.AddCommand(set)
	return cmd
}

func (c *cli) broadcastCmd() *cobra.Command {
	var (
		in       orchestrators.BroadcastInput
		bodyFile string
	)
	cmd := &cobra.Command{
		Use:   "broadcast",
		Short: "Queue an announcement to every matching team leader",
		Args:  cobra.NoArgs,
		RunE: c.withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
			if bodyFile != "" {
				data, err := os.ReadFile(bodyFile)
				if err != nil {
					return err
				}
				in.Body = string(data)
			}
			res, err := orchestrators.ExecuteBroadcast(cmd.Context(), in, orchestrators.BroadcastDeps{
				Registrations: a.Stores.RegistrationStore,
				Outbox:        a.Stores.OutboxStore,
				Event:         a.Event.Name,
				Clock:         now,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "queued %d emails; run \"outbox process\" to send them now\n", res.Recipients)
			return nil
		}),
	}
	cmd.Flags().StringVar(&in.Subject, "subject", "", "subject line")
	cmd.Flags().StringVar(&in.Body, "body", "", "markdown body")
	cmd.Flags().StringVar(&bodyFile, "body-file", "", "read the markdown body from a file")
	cmd.Flags().StringVar(&in.Domain, "domain", "", "only teams in this domain")
	cmd.Flags().StringVar(&in.Slot, "slot", "", "only teams in this slot")
	cmd.Flags().BoolVar(&in.PresentOnly, "present-only", false, "only teams marked present")
	return cmd
}

func (c *cli) createAccountCmd() *cobra.Command {
	var in orchestrators.CreateAccountInput
	cmd := &cobra.Command{
		Use:   "create-account",
		Short: "Create an admin or judge login",
		Long:  "The password is read from HACKATHON_NEW_PASSWORD when --password is not given.",
		Args:  cobra.NoArgs,
		RunE: c.withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
			if in.Password == "" {
				in.Password = os.Getenv("HACKATHON_NEW_PASSWORD")
			}
			acct, err := orchestrators.ExecuteCreateAccount(cmd.Context(), in, orchestrators.CreateAccountDeps{
				AccountStore: a.Stores.AccountStore,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", acct.Role, acct.Email, acct.ID)
			return nil
		}),
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "login email")
	cmd.Flags().StringVar(&in.DisplayName, "name", "", "display name")
	cmd.Flags().StringVar(&in.Role, "role", account.RoleJudge, "admin or judge")
	cmd.Flags().StringVar(&in.Password, "password", "", "password, at least 12 characters")
	return cmd
}

func (c *cli) outboxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outbox",
		Short: "Inspect and drive the email outbox",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "process",
		Short: "Attempt every due entry once",
		Args:  cobra.NoArgs,
		RunE: c.withApp(func(cmd *cobra.Command, _ []string, a *app.App) error {
			n, err := a.Outbox.ProcessPending(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "attempted %d entries\n", n)
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "retry <id>",
		Short: "Attempt one entry now, ignoring its backoff",
		Args:  cobra.ExactArgs(1),
		RunE: c.withApp(func(cmd *cobra.Command, args []string, a *app.App) error {
			err := a.Outbox.ProcessSingle(cmd.Context(), args[0])
			if errors.Is(err, orchestrators.ErrTerminalEntry) {
				return fmt.Errorf("entry %s is already finished", args[0])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "retried %s\n", args[0])
			return nil
		}),
	})
	return cmd
}
