// Package display renders recommendation results for people and for
// machines.
package display

import (
	"fmt"
	"io"
	"strings"

	"hellchannel/internal/drops"
	"hellchannel/internal/recommend"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const timeLayout = "2006-01-02 15:04"

type Options struct {
	// Color highlights the top channel with ANSI colors.
	Color bool
	// GearWidth wraps the gear column, 0 leaves it unbounded.
	GearWidth int
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

// Banner is the headline naming the channel with the most drops.
func Banner(top drops.ChannelRanking) string {
	return fmt.Sprintf("🎯 지금 가장 핫한 채널은 %s 입니다! 드랍 수: %d개", top.Channel, top.DropCount)
}

// Table writes the ranking as a terminal table together with the top
// channel banner and any staleness or data quality notices.
func Table(w io.Writer, result recommend.Result, opts Options) error {
	var b strings.Builder

	if reason := recommend.Describe(result); reason != "" {
		fmt.Fprintf(&b, "⚠️ %s\n", reason)
	}
	if result.PublishErr != nil {
		fmt.Fprintf(&b, "⚠️ snapshot not saved: %v\n", result.PublishErr)
	}

	top, ok := drops.Top(result.Rankings)
	if !ok {
		b.WriteString("아직 집계된 드랍 기록이 없습니다.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}
	b.WriteString(Banner(top))
	b.WriteString("\n")
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"순위", "채널", "카테고리", "득템 수", "드랍된 장비 목록"})
	for i, ranking := range result.Rankings {
		t.AppendRow(table.Row{
			i + 1,
			ranking.Channel,
			ranking.Category,
			ranking.DropCount,
			strings.Join(ranking.GearList, ", "),
		})
	}
	t.AppendFooter(table.Row{"", "", "합계", drops.TotalDrops(result.Rankings), ""})

	if opts.GearWidth > 0 {
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 5, WidthMax: opts.GearWidth, WidthMaxEnforcer: text.WrapSoft},
		})
	}
	if opts.Color {
		t.SetRowPainter(func(row table.Row) text.Colors {
			if rank, ok := row[0].(int); ok && rank == 1 {
				return text.Colors{text.Bold, text.FgHiRed}
			}
			return nil
		})
	}
	t.Render()

	var footer strings.Builder
	for _, pair := range result.Similar {
		fmt.Fprintf(
			&footer,
			"ℹ️ '%s' and '%s' may be the same channel (similarity %.2f)\n",
			pair.Left, pair.Right, pair.Similarity,
		)
	}
	fmt.Fprintf(
		&footer,
		"%s · %d events from %s · %s\n",
		result.Origin, result.Events, strings.Join(result.Sources, ", "),
		result.GeneratedAt.Format(timeLayout),
	)
	_, err := io.WriteString(w, footer.String())
	return err
}

// Events writes raw drop events, one row each.
func Events(w io.Writer, events []drops.DropEvent) {
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "채널", "장비", "카테고리", "출처", "링크"})
	for i, event := range events {
		t.AppendRow(table.Row{i + 1, event.Channel, event.Gear, event.Category, event.Source, event.Link})
	}
	t.AppendFooter(table.Row{"", "", "", "", "합계", len(events)})
	t.Render()
}

// RenderUnavailable writes the notice shown when no data could be loaded at
// all. An empty ranking is rendered by Table instead.
func RenderUnavailable(w io.Writer, result recommend.Result) error {
	var b strings.Builder
	b.WriteString("❌ 드랍 데이터를 불러올 수 없습니다.\n")
	if reason := recommend.Describe(result); reason != "" {
		fmt.Fprintf(&b, "   %s\n", reason)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
