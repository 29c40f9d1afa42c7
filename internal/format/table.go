package format

import (
	"fmt"
	"strings"

	"golang.org/x/text/width"

	"mtgplan/internal/model"
	"mtgplan/internal/tz"
)

const cellPadding = 2

var tableHeader = []string{"City", "Local Time", "UTC Offset"}

// Rows resolves the start of c in baseZone and returns one row per
// participant with its local date-time and UTC offset.
func (f *Formatter) Rows(baseZone string, c model.Candidate, participants []model.Participant) ([]model.Row, error) {
	r, zs, err := resolve(baseZone, c, participants)
	if err != nil {
		return nil, err
	}
	rows := make([]model.Row, 0, len(zs))
	for _, p := range zs {
		proj := tz.ProjectIn(r.window.Start, p.loc)
		rows = append(rows, model.Row{
			Label:  p.Label,
			Zone:   p.Zone,
			Local:  r.window.Start.In(p.loc).Format(localLayout),
			Offset: UTCOffset(proj.OffsetMinutes),
		})
	}
	return rows, nil
}

// Table renders Rows as a column-aligned block: a header, a dash separator
// and one line per participant. Every cell is right-padded to its column's
// width, East Asian wide characters counting as two columns.
func (f *Formatter) Table(baseZone string, c model.Candidate, participants []model.Participant) (string, error) {
	rows, err := f.Rows(baseZone, c, participants)
	if err != nil {
		return "", err
	}

	cells := make([][]string, 0, len(rows)+1)
	cells = append(cells, tableHeader)
	for _, r := range rows {
		cells = append(cells, []string{r.Label, r.Local, r.Offset})
	}

	widths := make([]int, len(tableHeader))
	for _, row := range cells {
		for i, cell := range row {
			widths[i] = max(widths[i], DisplayWidth(cell))
		}
	}

	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}

	lines := make([]string, 0, len(cells)+1)
	lines = append(lines, renderRow(cells[0], widths))
	lines = append(lines, renderRow(sep, widths))
	for _, row := range cells[1:] {
		lines = append(lines, renderRow(row, widths))
	}
	return strings.Join(lines, "\n"), nil
}

func renderRow(row []string, widths []int) string {
	var b strings.Builder
	for i, cell := range row {
		b.WriteString(cell)
		b.WriteString(strings.Repeat(" ", widths[i]+cellPadding-DisplayWidth(cell)))
	}
	return b.String()
}

// DisplayWidth returns the number of terminal columns s occupies.
func DisplayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

// UTCOffset renders an offset in minutes as "UTC+9", "UTC-5" or, for
// fractional hours, "UTC+5:30".
func UTCOffset(minutes int) string {
	sign := "+"
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	h, m := minutes/60, minutes%60
	if m == 0 {
		return fmt.Sprintf("UTC%s%d", sign, h)
	}
	return fmt.Sprintf("UTC%s%d:%02d", sign, h, m)
}
