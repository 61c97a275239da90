package dashboard

import (
	"strconv"
	"time"

	"github.com/tacbarber/barberdesk/internal/barber"
)

var monthNames = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// Weekdays are the Monday-first column headers.
var Weekdays = []string{"L", "M", "X", "J", "V", "S", "D"}

type Cell struct {
	Blank     bool
	Day       int
	Date      string
	Count     int
	Today     bool
	HasEvents bool
}

type Grid struct {
	Year  int
	Month time.Month
	Label string
	Cells []Cell
}

// LeadingBlanks is the number of empty cells before day 1 in a
// Monday-first week.
func LeadingBlanks(year int, month time.Month) int {
	weekday := int(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return weekday - 1
}

func MonthLabel(year int, month time.Month) string {
	return monthNames[month-1] + " " + strconv.Itoa(year)
}

// MonthGrid lays out one month. today is compared by calendar date.
func MonthGrid(year int, month time.Month, appts []barber.Appointment, today time.Time) Grid {
	perDay := make(map[string]int)
	for _, a := range appts {
		if date := a.Date(); date != "" {
			perDay[date]++
		}
	}

	blanks := LeadingBlanks(year, month)
	days := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	todayKey := today.Format(dateLayout)

	cells := make([]Cell, 0, blanks+days)
	for i := 0; i < blanks; i++ {
		cells = append(cells, Cell{Blank: true})
	}
	for day := 1; day <= days; day++ {
		date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(dateLayout)
		count := perDay[date]
		cells = append(cells, Cell{
			Day:       day,
			Date:      date,
			Count:     count,
			Today:     date == todayKey,
			HasEvents: count > 0,
		})
	}
	return Grid{Year: year, Month: month, Label: MonthLabel(year, month), Cells: cells}
}

// Weeks splits the cells into rows of seven, padding the last row.
func (g Grid) Weeks() [][]Cell {
	var weeks [][]Cell
	for start := 0; start < len(g.Cells); start += 7 {
		end := start + 7
		row := make([]Cell, 0, 7)
		if end > len(g.Cells) {
			row = append(row, g.Cells[start:]...)
			for len(row) < 7 {
				row = append(row, Cell{Blank: true})
			}
		} else {
			row = append(row, g.Cells[start:end]...)
		}
		weeks = append(weeks, row)
	}
	return weeks
}

// Board holds one fetched snapshot and the month being shown. Prev and Next
// move the month without fetching again.
type Board struct {
	appts []barber.Appointment
	year  int
	month time.Month
	today time.Time
}

func NewBoard(appts []barber.Appointment, now time.Time) *Board {
	return &Board{appts: appts, year: now.Year(), month: now.Month(), today: now}
}

func (b *Board) Prev() Grid {
	b.shift(-1)
	return b.Grid()
}

func (b *Board) Next() Grid {
	b.shift(1)
	return b.Grid()
}

func (b *Board) shift(delta int) {
	first := time.Date(b.year, b.month+time.Month(delta), 1, 0, 0, 0, 0, time.UTC)
	b.year, b.month = first.Year(), first.Month()
}

func (b *Board) Grid() Grid {
	return MonthGrid(b.year, b.month, b.appts, b.today)
}
