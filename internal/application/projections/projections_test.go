package projections

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	judgingStore "hackathon/internal/adapters/storage/judging"
	"hackathon/internal/application/listutil"
	"hackathon/internal/domain/clockgate"
	"hackathon/internal/domain/export"
	"hackathon/internal/domain/judging"
	"hackathon/internal/domain/leaderboard"
	"hackathon/internal/domain/registration"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func intp(v int) *int { return &v }

// staticSource is a fixed board.
type staticSource[T any] struct {
	items    []T
	degraded bool
}

func (s staticSource[T]) Items() []T     { return append([]T(nil), s.items...) }
func (s staticSource[T]) Degraded() bool { return s.degraded }

func registrations() []registration.Registration {
	return []registration.Registration{
		{ID: "r1", TeamName: "Null Pointers", LeaderEmail: "ana@uni.example", Domain: "health", Rating: intp(7)},
		{ID: "r2", TeamName: "Segfaults", LeaderEmail: "ben@uni.example", Domain: "fintech", Archived: true, Rating: intp(9)},
		{ID: "r3", TeamName: "Off By One", LeaderEmail: "ANA@uni.example", Domain: "health"},
		{ID: "r4", TeamName: "Heap Heroes", LeaderEmail: "cy@uni.example", Domain: "health", Rating: intp(3)},
	}
}

func params(raw string) listutil.ListParams {
	q, _ := url.ParseQuery(raw)
	return RegistrationView.Parse(q)
}

func ids(rs []registration.Registration) string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return strings.Join(out, ",")
}

func TestQueryModerationList(t *testing.T) {
	src := staticSource[registration.Registration]{items: registrations()}
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"archived hidden by default", "", "r1,r3,r4"},
		{"search is case-insensitive", "q=NULL", "r1"},
		{"filter then sort with nil last", "domain=health&sort=rating&dir=desc", "r1,r4,r3"},
		{"nil last ascending too", "domain=health&sort=rating", "r4,r1,r3"},
		{"explicit archived", "archived=true", "r2"},
		{"all ignores search and filters", "all=true&q=zzz&domain=fintech&sort=team_name", "r4,r1,r3,r2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := QueryModerationList[registration.Registration](src, RegistrationView, ActiveRegistrationsByDefault(params(tt.query)))
			if got := ids(res.Items); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
			if res.Total != 4 {
				t.Errorf("Total = %d, want 4", res.Total)
			}
		})
	}
}

func TestQueryModerationList_Pagination(t *testing.T) {
	var items []registration.Registration
	for i := 0; i < 25; i++ {
		items = append(items, registration.Registration{ID: string(rune('a' + i)), TeamName: "T"})
	}
	src := staticSource[registration.Registration]{items: items}
	res := QueryModerationList[registration.Registration](src, RegistrationView, params("page=3&per_page=10"))
	if len(res.Items) != 5 || res.Page.TotalPages != 3 || res.Matched != 25 {
		t.Errorf("unexpected page %+v with %d items", res.Page, len(res.Items))
	}
}

func TestQueryModerationList_Degraded(t *testing.T) {
	src := staticSource[registration.Registration]{degraded: true}
	res := QueryModerationList[registration.Registration](src, RegistrationView, params(""))
	if !res.Degraded || len(res.Items) != 0 || res.Items == nil {
		t.Errorf("expected an empty, non-nil degraded result, got %+v", res)
	}
}

func TestQueryExport_DedupeAndAll(t *testing.T) {
	src := staticSource[registration.Registration]{items: registrations()}

	doc, err := QueryExport[registration.Registration](src, RegistrationView, RegistrationExport, ExportQuery{
		List:    ActiveRegistrationsByDefault(params("domain=health")),
		Options: export.Options{Format: "csv", Dedupe: true, Now: now},
	})
	if err != nil {
		t.Fatal(err)
	}
	if doc.Records != 2 {
		t.Errorf("expected r3 deduped against r1 by email, got %d records", doc.Records)
	}
	if doc.Filename != "registrations-20260310-120000.csv" {
		t.Errorf("Filename = %q", doc.Filename)
	}
	if !strings.HasPrefix(string(doc.Data), "Code,Team,Leader,Email") {
		t.Errorf("unexpected header: %s", doc.Data)
	}

	doc, err = QueryExport[registration.Registration](src, RegistrationView, RegistrationExport, ExportQuery{
		List:    ActiveRegistrationsByDefault(params("all=true&domain=health")),
		Options: export.Options{Format: "json", Now: now},
	})
	if err != nil {
		t.Fatal(err)
	}
	if doc.Records != 4 || doc.ContentType != "application/json" {
		t.Errorf("all export = %d records, %s", doc.Records, doc.ContentType)
	}

	if _, err := QueryExport[registration.Registration](src, RegistrationView, RegistrationExport, ExportQuery{Options: export.Options{Format: "xml"}}); !errors.Is(err, export.ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

type leaderboardList []leaderboard.Entry

func (l leaderboardList) List(context.Context) ([]leaderboard.Entry, error) { return l, nil }

func TestQueryLeaderboard(t *testing.T) {
	store := leaderboardList{
		{ID: "a", TeamName: "Segfaults", Rounds: [3]*int{intp(10), intp(10), nil}, Total: 20},
		{ID: "b", TeamName: "Null Pointers", Rounds: [3]*int{intp(15), intp(10), intp(5)}, Total: 25},
		{ID: "c", TeamName: "Heap Heroes", Rounds: [3]*int{intp(12), intp(8), nil}, Total: 20},
	}
	results := clockgate.Schedule{Initial: clockgate.PhaseHidden, Boundaries: []clockgate.Boundary{{Phase: clockgate.PhasePublished, At: now}}}

	before := LeaderboardDeps{Store: store, Results: results, Clock: func() time.Time { return now.Add(-time.Second) }}
	res, err := QueryLeaderboard(context.Background(), false, before)
	if err != nil {
		t.Fatal(err)
	}
	if res.Published || len(res.Rows) != 0 || !res.PublishesAt.Equal(now) {
		t.Errorf("leaderboard should be hidden before publish time: %+v", res)
	}
	res, _ = QueryLeaderboard(context.Background(), true, before)
	if len(res.Rows) != 3 {
		t.Errorf("admins see hidden rows, got %d", len(res.Rows))
	}

	at := LeaderboardDeps{Store: store, Results: results, Clock: func() time.Time { return now }}
	res, err = QueryLeaderboard(context.Background(), false, at)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Published {
		t.Fatal("publish boundary itself belongs to the published phase")
	}
	var got []string
	for _, r := range res.Rows {
		got = append(got, r.TeamName)
	}
	if strings.Join(got, ",") != "Null Pointers,Heap Heroes,Segfaults" {
		t.Errorf("order = %v", got)
	}
	if res.Rows[1].Rank != 2 || res.Rows[2].Rank != 2 {
		t.Errorf("ties should share a rank: %+v", res.Rows)
	}
	if res.Rows[0].Drift != -5 || res.Rows[0].RoundSum != 30 {
		t.Errorf("drift not surfaced: %+v", res.Rows[0])
	}
}

type scoreList []judging.Score

func (s scoreList) List(_ context.Context, f judgingStore.ListFilter) ([]judging.Score, error) {
	var out []judging.Score
	for _, sc := range s {
		if f.JudgeID == "" || sc.JudgeID == f.JudgeID {
			out = append(out, sc)
		}
	}
	return out, nil
}

func TestQueryJudgingSummary(t *testing.T) {
	store := scoreList{
		{SubmissionID: "s1", TeamName: "A", JudgeID: "j1", Scores: judging.Scores{Innovation: 10}},
		{SubmissionID: "s2", TeamName: "B", JudgeID: "j1", Scores: judging.Scores{Innovation: 20}},
		{SubmissionID: "s1", TeamName: "A", JudgeID: "j2", Scores: judging.Scores{Innovation: 20}},
	}
	sums, err := QueryJudgingSummary(context.Background(), JudgingSummaryDeps{Scores: store})
	if err != nil {
		t.Fatal(err)
	}
	if len(sums) != 2 || sums[0].SubmissionID != "s2" || sums[1].Average != 15 || sums[1].Judges != 2 {
		t.Errorf("unexpected summaries %+v", sums)
	}

	mine, _ := QueryJudgeScores(context.Background(), "j2", JudgingSummaryDeps{Scores: store})
	if len(mine) != 1 {
		t.Errorf("judge j2 has %d scores, want 1", len(mine))
	}
}

func TestQueryPhaseStatus(t *testing.T) {
	reg := clockgate.Window(now.Add(-time.Hour), now.Add(90061*time.Second))
	ideas := clockgate.Window(now.Add(-2*time.Hour), now.Add(-time.Hour))
	got := QueryPhaseStatus(now, []NamedSchedule{{Name: "registration", Schedule: reg}, {Name: "ideation", Schedule: ideas}})

	if got[0].Phase != clockgate.PhaseOpen || got[0].NextPhase != clockgate.PhaseClosed {
		t.Errorf("registration = %+v", got[0])
	}
	if r := got[0].Remaining; r.Days != 1 || r.Hours != 1 || r.Minutes != 1 || r.Seconds != 1 {
		t.Errorf("remaining = %+v, want 1/1/1/1", r)
	}
	if got[1].Phase != clockgate.PhaseClosed || !got[1].Terminal || got[1].NextAt != nil {
		t.Errorf("ideation = %+v", got[1])
	}
}

func TestBuildDraftView(t *testing.T) {
	d := registration.NewDraft("d1", registration.DefaultRules())
	if _, err := d.AddMember(); err != nil {
		t.Fatal(err)
	}
	d.Registration.Problem = "three short words"
	v := BuildDraftView(d)
	if v.Step != registration.StepTeam || !v.IsFirst || v.IsLast {
		t.Errorf("unexpected position %+v", v)
	}
	if len(v.Steps) != 7 || v.Steps[2].Label != "Member 1 of 1" {
		t.Errorf("steps = %+v", v.Steps)
	}
	if v.Registration.ProblemWords != 3 || len(v.Registration.Members) != 1 {
		t.Errorf("registration view = %+v", v.Registration)
	}
}
