package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophdrop/internal/client/models"
	"github.com/dmitrijs2005/gophdrop/internal/client/progress"
	"github.com/dmitrijs2005/gophdrop/internal/client/registry"
	"github.com/dmitrijs2005/gophdrop/internal/client/transfer"
	"github.com/olekukonko/tablewriter"
	"golang.org/x/term"
)

const (
	noURLText    = "No URL available (private file)"
	defaultWidth = 80
	timeLayout   = "2006-01-02 15:04:05"
	minBarWidth  = 10
)

// progressPrinter renders transfer events. On a terminal it redraws a single
// line with a bar; otherwise it prints one line per whole-percent change.
type progressPrinter struct {
	out   io.Writer
	tty   bool
	width func() int
	now   func() time.Time

	mu          sync.Mutex
	lastPercent int
	last        progress.Estimate
	drawn       bool
}

func newProgressPrinter(out io.Writer) *progressPrinter {
	p := &progressPrinter{
		out:         out,
		width:       func() int { return defaultWidth },
		now:         time.Now,
		lastPercent: -1,
		last:        progress.Estimate{ETASeconds: progress.ETAUnknown},
	}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.tty = true
		p.width = func() int {
			w, _, err := term.GetSize(int(f.Fd()))
			if err != nil || w <= 0 {
				return defaultWidth
			}
			return w
		}
	}
	return p
}

// Handle is the transfer observer.
func (p *progressPrinter) Handle(ev transfer.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch ev.Kind {
	case transfer.EventProgress:
		p.last = ev.Estimate
		if p.tty {
			fmt.Fprint(p.out, "\r"+p.barLine(ev))
			p.drawn = true
			return
		}
		if ev.Estimate.Percent != p.lastPercent {
			p.lastPercent = ev.Estimate.Percent
			fmt.Fprintln(p.out, p.textLine(ev))
		}

	case transfer.EventCompleted:
		p.finishLine()
		where := ""
		if ev.Entry != nil {
			where = ev.Entry.AccessURL
			if where == "" {
				where = ev.Entry.StoragePath
			}
		}
		if where != "" {
			fmt.Fprintf(p.out, "%s: %s\n", ev.Record.Message, where)
		} else {
			fmt.Fprintln(p.out, ev.Record.Message)
		}

	case transfer.EventFailed:
		p.finishLine()
		fmt.Fprintln(p.out, ev.Record.Message)
	}
}

// Last returns the most recent estimate seen.
func (p *progressPrinter) Last() progress.Estimate {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

func (p *progressPrinter) finishLine() {
	if p.drawn {
		fmt.Fprintln(p.out)
		p.drawn = false
	}
	p.lastPercent = -1
}

func (p *progressPrinter) textLine(ev transfer.Event) string {
	return fmt.Sprintf("%s %3d%% %s", ev.Record.FileName, ev.Estimate.Percent, p.details(ev))
}

func (p *progressPrinter) barLine(ev transfer.Event) string {
	details := p.details(ev)
	width := p.width()

	barWidth := width - len(details) - 9
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}
	filled := barWidth * ev.Estimate.Percent / 100
	bar := strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled)

	line := fmt.Sprintf("[%s] %3d%% %s", bar, ev.Estimate.Percent, details)
	if len(line) < width-1 {
		line += strings.Repeat(" ", width-1-len(line))
	}
	return line
}

func (p *progressPrinter) details(ev transfer.Event) string {
	return fmt.Sprintf("%s/%s %s ETA %s %s",
		progress.FormatBytes(ev.Record.BytesSent),
		progress.FormatBytes(ev.Record.TotalBytes),
		progress.FormatSpeed(ev.Estimate.SpeedBytesPerSec),
		progress.FormatETA(ev.Estimate),
		elapsed(ev.Record, p.now()),
	)
}

func elapsed(rec models.TransferRecord, now time.Time) string {
	if rec.StartedAt.IsZero() {
		return ""
	}
	secs := int64(now.Sub(rec.StartedAt).Seconds())
	if secs < 0 {
		secs = 0
	}
	return "elapsed " + progress.FormatSeconds(secs)
}

func originLabel(o models.Origin) string {
	switch o {
	case models.OriginLocalOnly:
		return "local only"
	case models.OriginRemoteOnly:
		return "bucket only"
	case models.OriginBoth:
		return "local + bucket"
	default:
		return "-"
	}
}

// renderView prints the files view as a numbered table. Numbers are the
// 1-based positions accepted by delete.
func renderView(w io.Writer, v registry.View) {
	if v.Status != "" {
		fmt.Fprintln(w, v.Status)
	}
	fmt.Fprintf(w, "Total: %d\n", v.Count())
	if v.Count() == 0 {
		fmt.Fprintln(w, "No files uploaded yet")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Name", "Origin", "Submitted", "URL"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	for i, e := range v.Entries {
		submitted := "-"
		if e.SubmittedAt != nil {
			submitted = e.SubmittedAt.Local().Format(timeLayout)
		}
		url := e.AccessURL
		if url == "" {
			url = noURLText
		}
		table.Append([]string{fmt.Sprint(i + 1), e.DisplayName, originLabel(e.Origin), submitted, url})
	}
	table.Render()
}
