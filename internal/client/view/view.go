// Package view renders tasks for the terminal.
package view

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/dmitrijs2005/taskdesk/internal/client/models"
	"github.com/dmitrijs2005/taskdesk/internal/client/repositories/uploads"
)

// Tone is the colour family of a badge.
type Tone string

const (
	ToneRose    Tone = "rose"
	ToneAmber   Tone = "amber"
	ToneEmerald Tone = "emerald"
	ToneBlue    Tone = "blue"
	ToneGray    Tone = "gray"
)

var toneColors = map[Tone]lipgloss.Color{
	ToneRose:    lipgloss.Color("#e11d48"),
	ToneAmber:   lipgloss.Color("#d97706"),
	ToneEmerald: lipgloss.Color("#059669"),
	ToneBlue:    lipgloss.Color("#2563eb"),
	ToneGray:    lipgloss.Color("#6b7280"),
}

// ProgressTone picks the badge tone of a completion percentage.
func ProgressTone(percent float64) Tone {
	switch {
	case percent < 50:
		return ToneRose
	case percent < 80:
		return ToneAmber
	default:
		return ToneEmerald
	}
}

func PriorityTone(p models.Priority) Tone {
	switch p {
	case models.PriorityHigh:
		return ToneRose
	case models.PriorityMedium:
		return ToneAmber
	case models.PriorityLow:
		return ToneGray
	}
	return ToneBlue
}

func StageTone(s models.Stage) Tone {
	switch s {
	case models.StageCompleted:
		return ToneEmerald
	case models.StageInProgress:
		return ToneAmber
	}
	return ToneBlue
}

func activityIcon(t models.ActivityType) string {
	switch t {
	case models.ActivityStarted:
		return "▶"
	case models.ActivityCompleted:
		return "✔"
	case models.ActivityInProgress:
		return "…"
	case models.ActivityCommented:
		return "✎"
	case models.ActivityBug:
		return "✖"
	case models.ActivityAssigned:
		return "@"
	}
	return "•"
}

// Renderer writes styled output to one writer.
type Renderer struct {
	w   io.Writer
	r   *lipgloss.Renderer
	now func() time.Time
}

func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w, r: lipgloss.NewRenderer(w), now: time.Now}
}

// WithClock fixes the reference time of relative dates.
func (v *Renderer) WithClock(now func() time.Time) *Renderer {
	v.now = now
	return v
}

func (v *Renderer) badge(t Tone, text string) string {
	return v.r.NewStyle().Bold(true).Foreground(toneColors[t]).Render(text)
}

func (v *Renderer) heading(text string) string {
	return v.r.NewStyle().Bold(true).Underline(true).Render(text)
}

func (v *Renderer) faint(text string) string {
	return v.r.NewStyle().Faint(true).Render(text)
}

// Task writes the detail view of t.
func (v *Renderer) Task(t *models.Task) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", v.r.NewStyle().Bold(true).Render(t.Title))
	fmt.Fprintf(&b, "%s  %s\n",
		v.badge(PriorityTone(t.Priority), strings.ToUpper(string(t.Priority))+" PRIORITY"),
		v.badge(StageTone(t.Stage), strings.ToUpper(string(t.Stage))))
	fmt.Fprintf(&b, "Created: %s\n", t.Date.Format("Mon Jan 2 2006"))
	fmt.Fprintf(&b, "Assets: %d  Sub-Tasks: %d\n", len(t.Assets), len(t.SubTasks))

	if t.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", t.Description)
	}

	if len(t.Team) > 0 {
		fmt.Fprintf(&b, "\n%s\n", v.heading("TASK TEAM"))
		for _, u := range t.Team {
			fmt.Fprintf(&b, "  %s\n", memberLine(u))
		}
	}

	if len(t.SubTasks) > 0 {
		p := t.PercentComplete()
		fmt.Fprintf(&b, "\n%s  %s\n", v.heading("SUB-TASKS"),
			v.badge(ProgressTone(p), fmt.Sprintf("%.2f%% done", p)))
		for _, st := range t.SubTasks {
			mark := "[ ]"
			if st.IsCompleted {
				mark = "[x]"
			}
			line := fmt.Sprintf("  %s %s", mark, st.Title)
			if st.Tag != "" {
				line += " " + v.faint("#"+st.Tag)
			}
			if !st.Date.IsZero() {
				line += " " + v.faint(st.Date.Format("2006-01-02"))
			}
			fmt.Fprintf(&b, "%s %s\n", line, v.faint("("+st.ID+")"))
		}
	}

	if len(t.Assets) > 0 {
		fmt.Fprintf(&b, "\n%s\n", v.heading("ASSETS"))
		for _, a := range t.Assets {
			fmt.Fprintf(&b, "  %s\n", a)
		}
	}

	if len(t.Links) > 0 {
		fmt.Fprintf(&b, "\n%s\n", v.heading("SUPPORT LINKS"))
		for _, l := range t.Links {
			fmt.Fprintf(&b, "  %s\n", l)
		}
	}

	if len(t.Activities) > 0 {
		fmt.Fprintf(&b, "\n%s\n", v.heading("ACTIVITIES"))
		for _, a := range t.Activities {
			b.WriteString(v.activity(a))
		}
	}

	_, err := io.WriteString(v.w, b.String())
	return err
}

func memberLine(u models.UserRef) string {
	if u.Name == "" {
		return u.ID
	}
	line := fmt.Sprintf("%s %s", u.Initials(), u.Name)
	if u.Title != "" {
		line += " · " + u.Title
	}
	return line
}

func (v *Renderer) activity(a models.Activity) string {
	who := ""
	if a.By != nil {
		who = a.By.Name
		if who == "" {
			who = a.By.ID
		}
	}
	when := humanize.RelTime(a.Date, v.now(), "ago", "from now")

	head := fmt.Sprintf("  %s %s", activityIcon(a.Type), strings.ToUpper(string(a.Type)))
	if who != "" {
		head += " by " + who
	}
	return fmt.Sprintf("%s %s\n      %s\n", head, v.faint(when), a.Body)
}

// Activity writes a single timeline entry.
func (v *Renderer) Activity(a models.Activity) error {
	_, err := io.WriteString(v.w, v.activity(a))
	return err
}

// Orphans lists journal records of uploads no task refers to.
func (v *Renderer) Orphans(recs []uploads.Record) error {
	var b strings.Builder
	if len(recs) == 0 {
		b.WriteString("No orphaned uploads.\n")
	}
	for _, r := range recs {
		fmt.Fprintf(&b, "%s  %s  %s  %s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.FileName,
			humanize.Bytes(uint64(max(r.Size, 0))),
			r.URL)
	}
	_, err := io.WriteString(v.w, b.String())
	return err
}
