package dashboard

import (
	"testing"
	"time"

	"github.com/tacbarber/barberdesk/internal/barber"
)

func appt(start time.Time, status barber.Status, price *float64) barber.Appointment {
	a := barber.Appointment{Start: &start, Status: status}
	if price != nil {
		a.Service = &barber.Service{Name: "Corte", Price: price}
	}
	return a
}

func euros(v float64) *float64 { return &v }

func TestTrailingWeekBoundary(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	appts := []barber.Appointment{
		appt(now.Add(-TrailingWindow), barber.StatusPending, nil),
		appt(now.Add(-TrailingWindow-time.Second), barber.StatusPending, nil),
		appt(now, barber.StatusPending, nil),
		appt(now.Add(time.Hour), barber.StatusPending, nil),
	}
	if got := TrailingWeekCount(appts, now); got != 2 {
		t.Fatalf("expected exactly 7 days and now to count, got %d", got)
	}
}

func TestScenarioSummary(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)
	appts := []barber.Appointment{
		appt(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC), barber.StatusCompleted, euros(25)),
		appt(time.Date(2024, 3, 15, 16, 0, 0, 0, time.UTC), "", euros(12)),
		appt(time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC), barber.StatusCompleted, euros(40)),
	}
	inactive := false
	clients := []barber.Client{{ID: 1}, {ID: 2, Active: &inactive}}
	services := []barber.Service{{ID: 1}}

	summary := Summarize(now, appts, clients, services)
	if summary.TodayCount != 2 {
		t.Fatalf("expected 2 appointments today, got %d", summary.TodayCount)
	}
	if summary.RevenueLabel() != "25.00 €" {
		t.Fatalf("unexpected revenue %q", summary.RevenueLabel())
	}
	if summary.ActiveClients != 1 || summary.ActiveServices != 1 {
		t.Fatalf("unexpected active counts %d %d", summary.ActiveClients, summary.ActiveServices)
	}
	want := map[barber.Status]int{
		barber.StatusPending:   1,
		barber.StatusConfirmed: 0,
		barber.StatusCompleted: 1,
		barber.StatusCancelled: 0,
	}
	if len(summary.TodayByStatus) != 4 {
		t.Fatalf("expected four statuses, got %+v", summary.TodayByStatus)
	}
	for _, sc := range summary.TodayByStatus {
		if want[sc.Status] != sc.Count {
			t.Fatalf("status %s = %d, want %d", sc.Status, sc.Count, want[sc.Status])
		}
	}
}

func TestTodayRevenueIgnoresMissingPrice(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)
	appts := []barber.Appointment{
		appt(now.Add(-time.Hour), barber.StatusCompleted, nil),
		appt(now.Add(-2*time.Hour), barber.StatusCompleted, euros(9.5)),
		appt(now.Add(-3*time.Hour), barber.StatusCancelled, euros(100)),
	}
	if got := TodayRevenue(appts, now); got != 9.5 {
		t.Fatalf("expected 9.5, got %v", got)
	}
}

func TestTodayByStatusIgnoresUnknown(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)
	appts := []barber.Appointment{appt(now, barber.Status("PERDIDA"), nil)}
	for _, sc := range TodayByStatus(appts, now) {
		if sc.Count != 0 {
			t.Fatalf("expected unknown status to be ignored, got %+v", sc)
		}
	}
}

func TestRecent(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	var appts []barber.Appointment
	for i := 0; i < 12; i++ {
		a := appt(base.Add(time.Duration(i)*time.Hour), barber.StatusPending, nil)
		a.ID = int64(i + 1)
		appts = append(appts, a)
	}
	appts = append(appts, barber.Appointment{ID: 99})
	tie := appt(base.Add(11*time.Hour), barber.StatusPending, nil)
	tie.ID = 50
	appts = append(appts, tie)

	recent := Recent(appts, RecentLimit)
	if len(recent) != 10 {
		t.Fatalf("expected 10 entries, got %d", len(recent))
	}
	if recent[0].ID != 12 || recent[1].ID != 50 {
		t.Fatalf("expected latest first with stable ties, got %d %d", recent[0].ID, recent[1].ID)
	}
	for i := 1; i < len(recent); i++ {
		if recent[i].Start.After(*recent[i-1].Start) {
			t.Fatalf("expected descending order at %d", i)
		}
	}
	for _, a := range recent {
		if a.ID == 99 {
			t.Fatalf("expected appointment without start to be excluded")
		}
	}
}

func TestMonthGridMarch2024(t *testing.T) {
	start := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	today := time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)
	grid := MonthGrid(2024, time.March, []barber.Appointment{appt(start, barber.StatusPending, nil), appt(start, barber.StatusPending, nil)}, today)

	if LeadingBlanks(2024, time.March) != 4 {
		t.Fatalf("expected 4 leading blanks for March 2024")
	}
	if grid.Label != "marzo 2024" {
		t.Fatalf("unexpected label %q", grid.Label)
	}
	if len(grid.Cells) != 4+31 {
		t.Fatalf("unexpected cell count %d", len(grid.Cells))
	}
	for i := 0; i < 4; i++ {
		if !grid.Cells[i].Blank {
			t.Fatalf("expected cell %d blank", i)
		}
	}
	fifth := grid.Cells[4+4]
	if fifth.Day != 5 || fifth.Count != 2 || !fifth.HasEvents {
		t.Fatalf("unexpected cell for day 5: %+v", fifth)
	}
	if !grid.Cells[4+14].Today {
		t.Fatalf("expected day 15 flagged as today")
	}
	weeks := grid.Weeks()
	if len(weeks) != 5 || len(weeks[4]) != 7 {
		t.Fatalf("unexpected week layout %d", len(weeks))
	}
}

func TestLeadingBlanksSundayStart(t *testing.T) {
	// September 2024 starts on a Sunday.
	if got := LeadingBlanks(2024, time.September); got != 6 {
		t.Fatalf("expected 6 blanks, got %d", got)
	}
}

func TestBoardNavigatesWithoutRefetch(t *testing.T) {
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	dec := time.Date(2023, 12, 24, 11, 0, 0, 0, time.UTC)
	board := NewBoard([]barber.Appointment{appt(dec, barber.StatusConfirmed, nil)}, now)

	if g := board.Grid(); g.Label != "enero 2024" {
		t.Fatalf("unexpected initial month %q", g.Label)
	}
	prev := board.Prev()
	if prev.Label != "diciembre 2023" {
		t.Fatalf("expected to cross the year boundary, got %q", prev.Label)
	}
	found := false
	for _, c := range prev.Cells {
		if c.Day == 24 && c.HasEvents {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected snapshot appointment on the 24th")
	}
	board.Next()
	if next := board.Next(); next.Label != "febrero 2024" {
		t.Fatalf("unexpected month after next %q", next.Label)
	}
}
