package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/michaelscutari/assetpath/internal/content"
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err)
	}

	if !m.loaded {
		return "Loading..."
	}

	var b strings.Builder
	headerLines := 0

	writeLine := func(line string) {
		b.WriteString(line)
		b.WriteString("\n")
		headerLines++
	}

	writeLine(titleStyle.Render("assetpath - Course Asset Browser"))

	courseLabel := fmt.Sprintf("Course: %s", truncateMiddle(m.course.String(), max(10, m.width-8)))
	writeLine(breadcrumbStyle.Render(courseLabel))

	base := m.baseURL
	if base == "" {
		base = "(none)"
	}
	if m.stats != nil {
		info := fmt.Sprintf("Assets: %s | Locked: %s | Total: %s | CDN: %s",
			FormatCount(m.stats.AssetCount),
			FormatCount(m.stats.LockedCount),
			FormatSize(m.stats.TotalLength),
			base,
		)
		writeLine(statsStyle.Render(info))
	}

	status := fmt.Sprintf("Items: %s", FormatCount(int64(len(m.assets))))
	if m.filter != "" {
		status += fmt.Sprintf(" | Filter: %q", m.filter)
	}
	if sel := m.selected(); sel != nil {
		status += fmt.Sprintf(" | Sel: %s (%s)", sel.Name, FormatSize(sel.Length))
	}
	writeLine(statusStyle.Render(status))

	if m.filterActive {
		writeLine(filterStyle.Render(fmt.Sprintf("Filter: %s_", m.filter)))
	} else if m.filter != "" {
		writeLine(filterStyle.Render(fmt.Sprintf("Filter: %s", m.filter)))
	}

	sizeLabel := headerLabel("SIZE", m.sort == SortBySize, "v")
	typeLabel := headerLabel("TYPE", m.sort == SortByType, "^")
	nameLabel := headerLabel("NAME", m.sort == SortByName, "^")

	// Footer: blank, URL, help.
	footerLines := 3
	visibleRows := m.height - headerLines - footerLines
	if visibleRows < 5 {
		visibleRows = 5
	}

	startIdx := 0
	if m.cursor >= visibleRows {
		startIdx = m.cursor - visibleRows + 1
	}
	endIdx := min(len(m.assets), startIdx+visibleRows)

	widths := calcColumnWidths(m.assets, startIdx, endIdx, sizeLabel, lockLabel, typeLabel)
	nameWidth := calcNameWidth(m.width, widths)
	gap := strings.Repeat(" ", colGap)
	nameGap := strings.Repeat(" ", nameGapWidth)

	nameLabel = truncateRight(nameLabel, nameWidth)
	namePad := max(0, nameWidth-len(nameLabel))
	header := fmt.Sprintf("%*s%s%-*s%s%-*s%s%s%s%s%*s",
		widths.size, sizeLabel,
		gap,
		widths.lock, lockLabel,
		gap,
		widths.typ, typeLabel,
		nameGap,
		nameLabel,
		strings.Repeat(" ", namePad),
		gap,
		barColWidth, "SIZE%",
	)
	writeLine(headerStyle.Render(header))

	for i := startIdx; i < endIdx; i++ {
		b.WriteString(m.formatAsset(m.assets[i], i == m.cursor, widths, nameWidth))
		b.WriteString("\n")
	}

	displayedRows := min(len(m.assets)-startIdx, visibleRows)
	for i := displayedRows; i < visibleRows; i++ {
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.selURL != "" {
		url := truncateMiddle(m.selURL, max(10, m.width-5))
		b.WriteString(urlStyle.Render("URL: " + url))
	}
	b.WriteString("\n")
	help := m.helpLine()
	if len(m.assets) > 0 {
		help = fmt.Sprintf("%s [%d/%d]", help, m.cursor+1, len(m.assets))
	}
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

type columnWidths struct {
	size int
	lock int
	typ  int
}

const (
	lockLabel     = "LOCK"
	colGap        = 2
	nameGapWidth  = 2
	minNameWidth  = 10
	maxTypeWidth  = 24
	barBlockWidth = 10                                        // number of block characters
	barPctWidth   = 4                                         // " 78%" or "100%"
	barGapWidth   = 1                                         // space between blocks and pct
	barColWidth   = barBlockWidth + barGapWidth + barPctWidth // 15
)

func calcColumnWidths(assets []*content.StaticContent, startIdx, endIdx int, sizeLabel, lockHeader, typeLabel string) columnWidths {
	w := columnWidths{
		size: len(sizeLabel),
		lock: len(lockHeader),
		typ:  len(typeLabel),
	}

	for i := startIdx; i < endIdx; i++ {
		c := assets[i]
		if n := len(FormatSize(c.Length)); n > w.size {
			w.size = n
		}
		if n := len(c.ContentType); n > w.typ {
			w.typ = n
		}
	}
	if w.typ > maxTypeWidth {
		w.typ = maxTypeWidth
	}

	return w
}

func calcNameWidth(totalWidth int, w columnWidths) int {
	// columns + gaps between 3 data cols (2) + gap before name + gap before bar + bar
	used := w.size + w.lock + w.typ + (colGap * 3) + nameGapWidth + barColWidth
	nameWidth := totalWidth - used
	if nameWidth < minNameWidth {
		nameWidth = minNameWidth
	}
	return nameWidth
}

func truncateRight(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

func (m *Model) formatAsset(c *content.StaticContent, selected bool, widths columnWidths, nameWidth int) string {
	size := FormatSize(c.Length)

	lock := ""
	if c.Locked {
		lock = "yes"
	}

	rawName := truncateRight(c.Name, nameWidth)
	var styledName string
	switch {
	case c.Locked:
		styledName = lockedStyle.Render(rawName)
	case c.IsImage():
		styledName = imageStyle.Render(rawName)
	default:
		styledName = fileStyle.Render(rawName)
	}

	pad := max(0, nameWidth-len(rawName))
	paddedName := styledName + strings.Repeat(" ", pad)

	var total int64
	if m.stats != nil {
		total = m.stats.TotalLength
	}
	bar := formatBar(c.Length, total)

	gap := strings.Repeat(" ", colGap)
	nameGap := strings.Repeat(" ", nameGapWidth)
	line := fmt.Sprintf("%*s%s%-*s%s%-*s%s%s%s%s",
		widths.size, size,
		gap,
		widths.lock, lock,
		gap,
		widths.typ, truncateRight(c.ContentType, widths.typ),
		nameGap,
		paddedName,
		gap,
		bar,
	)

	if selected {
		return selectedStyle.Render(line)
	}
	return line
}

func formatBar(entryVal, parentTotal int64) string {
	if parentTotal <= 0 || entryVal <= 0 {
		empty := strings.Repeat("░", barBlockWidth)
		return barEmptyStyle.Render(empty) + fmt.Sprintf("  %3d%%", 0)
	}

	pct := float64(entryVal) / float64(parentTotal) * 100
	if pct > 100 {
		pct = 100
	}

	filled := int(math.Round(pct / 100 * float64(barBlockWidth)))
	if filled < 1 && entryVal > 0 {
		filled = 1
	}
	if filled > barBlockWidth {
		filled = barBlockWidth
	}

	filledStr := barFilledStyle.Render(strings.Repeat("█", filled))
	emptyStr := barEmptyStyle.Render(strings.Repeat("░", barBlockWidth-filled))
	return filledStr + emptyStr + fmt.Sprintf("  %3d%%", int(math.Round(pct)))
}

func headerLabel(label string, active bool, dir string) string {
	if active {
		return label + dir
	}
	return label
}

func truncateMiddle(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	head := (maxLen - 3) / 2
	tail := maxLen - 3 - head
	return s[:head] + "..." + s[len(s)-tail:]
}
