package cli

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/Veraticus/claims-triage/internal/discovery"
	"github.com/Veraticus/claims-triage/internal/model"
)

// CategoryGroup is one team's categories in picker order.
type CategoryGroup struct {
	Team       string
	Categories []model.Category
}

// GroupByTeam groups categories under their team, teams and categories sorted by name.
func GroupByTeam(categories []model.Category) []CategoryGroup {
	sorted := slices.Clone(categories)
	slices.SortStableFunc(sorted, func(a, b model.Category) int {
		if c := cmp.Compare(a.TeamName, b.TeamName); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	var groups []CategoryGroup
	for _, c := range sorted {
		if len(groups) == 0 || groups[len(groups)-1].Team != c.TeamName {
			groups = append(groups, CategoryGroup{Team: c.TeamName})
		}
		g := &groups[len(groups)-1]
		g.Categories = append(g.Categories, c)
	}
	return groups
}

// TriageStats summarizes one triage session.
type TriageStats struct {
	Duration time.Duration
	Total    int
	Assigned int
	Skipped  int
	Stopped  bool
}

// TriagePrompter walks a discovery queue and asks for a category per item.
type TriagePrompter struct {
	writer   io.Writer
	reader   *LineReader
	progress bool
}

// NewTriagePrompter creates a prompter reading from r and writing to w.
func NewTriagePrompter(r io.Reader, w io.Writer) *TriagePrompter {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &TriagePrompter{reader: NewLineReader(r), writer: w, progress: true}
}

// DisableProgress turns off the progress bar.
func (p *TriagePrompter) DisableProgress() { p.progress = false }

// Triage prompts for every item in q. Entering a category number assigns it;
// s skips, b goes back one item, ? reprints the list and q stops early.
// End of input stops the session without error.
func (p *TriagePrompter) Triage(ctx context.Context, q *discovery.Queue, categories []model.Category) (TriageStats, error) {
	start := time.Now()
	stats := TriageStats{Total: q.Len()}
	if q.Len() == 0 {
		return stats, nil
	}
	if len(categories) == 0 {
		return stats, errors.New("no categories exist; create categories before triaging")
	}

	groups := GroupByTeam(categories)
	numbered := make([]model.Category, 0, len(categories))
	byID := make(map[int]model.Category, len(categories))
	for _, g := range groups {
		numbered = append(numbered, g.Categories...)
		for _, c := range g.Categories {
			byID[c.ID] = c
		}
	}

	p.printf("%s\n", FormatTitle(fmt.Sprintf("Triage %d new %s values", q.Len(), q.RuleType())))
	p.printf("%s\n", RenderCategoryPicker(groups))

	var bar *progressbar.ProgressBar
	if p.progress {
		bar = p.newProgressBar(q.Len(), string(q.RuleType()))
	}

	i := 0
	for i < q.Len() {
		item := q.Item(i)
		current := ""
		if item.ProposedCategoryID != nil {
			current = " " + SubtleStyle.Render(fmt.Sprintf("(currently %s)", byID[*item.ProposedCategoryID].Name))
		}
		p.printf("\n%s %s%s\n", SubtleStyle.Render(fmt.Sprintf("[%d/%d]", i+1, q.Len())), BoldStyle.Render(item.Text), current)
		p.printf("%s", FormatPrompt("Category # (s=skip, b=back, ?=list, q=finish)"))

		line, err := p.reader.ReadLine(ctx)
		if errors.Is(err, io.EOF) {
			stats.Stopped = true
			break
		}
		if err != nil {
			return stats, err
		}

		switch strings.ToLower(line) {
		case "s", "":
			i++
		case "b":
			if i > 0 {
				i--
			}
		case "?":
			p.printf("%s\n", RenderCategoryPicker(groups))
		case "q":
			stats.Stopped = true
			i = q.Len()
		default:
			n, convErr := strconv.Atoi(line)
			if convErr != nil || n < 1 || n > len(numbered) {
				p.printf("%s\n", FormatError(fmt.Sprintf("Enter a number between 1 and %d.", len(numbered))))
				continue
			}
			cat := numbered[n-1]
			if err := q.Assign(i, cat.ID); err != nil {
				return stats, err
			}
			p.printf("%s\n", FormatSuccess(fmt.Sprintf("%s → %s (%s)", item.Text, cat.Name, cat.TeamName)))
			i++
		}

		if bar != nil {
			if err := bar.Set(q.Len() - q.Pending()); err != nil {
				slog.Warn("Failed to update progress bar", "error", err)
			}
		}
	}

	if bar != nil {
		_ = bar.Finish()
		p.printf("\n")
	}

	stats.Assigned = q.Len() - q.Pending()
	stats.Skipped = q.Pending()
	stats.Duration = time.Since(start)
	return stats, nil
}

func (p *TriagePrompter) newProgressBar(total int, what string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(fmt.Sprintf("[cyan][bold]Assigned %s values[reset]", what)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// ShowCompletion prints the session summary.
func (p *TriagePrompter) ShowCompletion(ruleType model.RuleType, stats TriageStats) {
	summary := fmt.Sprintf("%s Statistics:\n", ChartIcon) +
		fmt.Sprintf("  • New %s values: %d\n", ruleType, stats.Total) +
		fmt.Sprintf("  • Assigned: %d\n", stats.Assigned) +
		fmt.Sprintf("  • Left for later: %d\n", stats.Skipped) +
		fmt.Sprintf("  • Time taken: %s", stats.Duration.Round(time.Second))

	p.printf("%s\n", RenderBox("Triage Complete", summary))
}

func (p *TriagePrompter) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(p.writer, format, args...); err != nil {
		slog.Warn("Failed to write prompt output", "error", err)
	}
}
