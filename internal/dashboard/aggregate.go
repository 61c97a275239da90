// Package dashboard computes the summary cards, the status breakdown, the
// recent list and the month grid from fetched collections. Every function
// is pure in its inputs and a reference time.
package dashboard

import (
	"sort"
	"time"

	"github.com/tacbarber/barberdesk/internal/barber"
)

const (
	TrailingWindow = 7 * 24 * time.Hour
	RecentLimit    = 10
	dateLayout     = "2006-01-02"
)

type StatusCount struct {
	Status barber.Status
	Count  int
}

type Summary struct {
	TodayCount     int
	WeekCount      int
	TodayRevenue   float64
	ActiveClients  int
	ActiveServices int
	TodayByStatus  []StatusCount
	Recent         []barber.Appointment
}

func (s Summary) RevenueLabel() string { return barber.FormatEuros(s.TodayRevenue) }

// Summarize builds every card of the dashboard. now decides both "today"
// (its calendar date) and the trailing window (elapsed time).
func Summarize(now time.Time, appts []barber.Appointment, clients []barber.Client, services []barber.Service) Summary {
	return Summary{
		TodayCount:     TodayCount(appts, now),
		WeekCount:      TrailingWeekCount(appts, now),
		TodayRevenue:   TodayRevenue(appts, now),
		ActiveClients:  CountActive(clients),
		ActiveServices: CountActive(services),
		TodayByStatus:  TodayByStatus(appts, now),
		Recent:         Recent(appts, RecentLimit),
	}
}

func isToday(a barber.Appointment, now time.Time) bool {
	return a.Start != nil && a.Start.Format(dateLayout) == now.Format(dateLayout)
}

func TodayCount(appts []barber.Appointment, now time.Time) int {
	count := 0
	for _, a := range appts {
		if isToday(a, now) {
			count++
		}
	}
	return count
}

// TrailingWeekCount counts starts with 0 <= now-start <= 7 days. Future
// appointments are not counted.
func TrailingWeekCount(appts []barber.Appointment, now time.Time) int {
	count := 0
	for _, a := range appts {
		if a.Start == nil {
			continue
		}
		elapsed := now.Sub(*a.Start)
		if elapsed >= 0 && elapsed <= TrailingWindow {
			count++
		}
	}
	return count
}

// TodayRevenue sums the service price of today's completed appointments.
func TodayRevenue(appts []barber.Appointment, now time.Time) float64 {
	total := 0.0
	for _, a := range appts {
		if !isToday(a, now) || effectiveStatus(a) != barber.StatusCompleted {
			continue
		}
		if price := a.Price(); price != nil {
			total += *price
		}
	}
	return total
}

type activeFlag interface {
	IsActive() bool
}

func CountActive[T activeFlag](items []T) int {
	count := 0
	for _, item := range items {
		if item.IsActive() {
			count++
		}
	}
	return count
}

// TodayByStatus always reports the four known statuses in display order.
func TodayByStatus(appts []barber.Appointment, now time.Time) []StatusCount {
	counts := make(map[barber.Status]int, len(barber.Statuses))
	for _, a := range appts {
		if !isToday(a, now) {
			continue
		}
		status := effectiveStatus(a)
		if !status.Known() {
			continue
		}
		counts[status]++
	}
	out := make([]StatusCount, 0, len(barber.Statuses))
	for _, status := range barber.Statuses {
		out = append(out, StatusCount{Status: status, Count: counts[status]})
	}
	return out
}

// Recent returns at most limit appointments, latest start first. Ties keep
// their input order; appointments without a start are left out.
func Recent(appts []barber.Appointment, limit int) []barber.Appointment {
	out := make([]barber.Appointment, 0, len(appts))
	for _, a := range appts {
		if a.Start != nil {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.After(*out[j].Start)
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func effectiveStatus(a barber.Appointment) barber.Status {
	if a.Status == "" {
		return barber.ParseStatus(a.StatusRaw)
	}
	return a.Status
}
