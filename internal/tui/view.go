package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/pile/internal/model"
	"github.com/nikbrunner/pile/internal/storage"
	"github.com/nikbrunner/pile/internal/tags"
	"github.com/nikbrunner/pile/internal/tui/layout"
)

func (a App) renderView() string {
	// Alerts win over any other modal.
	if len(a.alerts) > 0 {
		return a.renderAlert()
	}
	switch a.mode {
	case ModeAdd, ModeConfirmDelete:
		return a.renderModal()
	case ModeHelp:
		return a.renderHelpOverlay()
	}

	paneHeight := layout.CalculatePaneHeight(a.height, a.layoutConfig.Pane)
	split := layout.CalculateSplit(a.width, a.layoutConfig.Pane)

	columns := lipgloss.JoinHorizontal(
		lipgloss.Top,
		a.renderListPane(split.ListWidth, paneHeight),
		a.renderTagPane(split.TagWidth, paneHeight),
	)

	content := a.styles.App.Render(
		lipgloss.JoinVertical(lipgloss.Left, a.renderHeader(), columns, a.renderHelpBar()),
	)

	// Use Place to ensure exact terminal dimensions and prevent overflow
	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top, content)
}

// renderHeader renders the list title and the store status.
func (a App) renderHeader() string {
	var title string
	if a.activeTag != "" {
		title = fmt.Sprintf("Tag: %s (%d)", a.activeTag, len(a.ctrl.Visible(a.activeTag)))
	} else {
		title = fmt.Sprintf("All Items (%d)", len(a.ctrl.Bookmarks()))
	}

	header := a.styles.Title.Render("pile") + "  " + title
	if a.activeTag != "" {
		header += a.styles.Help.Render("  [esc] remove")
	}
	return header + "  " + a.renderStatus()
}

// renderStatus renders which store backs the session.
func (a App) renderStatus() string {
	style := a.styles.StatusLocal
	if a.ctrl.Kind() == storage.KindRemote {
		style = a.styles.StatusOK
	}
	status := style.Render("● " + a.ctrl.Status())
	if a.ctrl.Busy() {
		status += a.styles.Help.Render(" syncing")
	}
	return status
}

func (a App) renderListPane(width, height int) string {
	var content strings.Builder

	headerLines := 0
	if a.mode == ModeFilter || a.filter.Active() {
		headerLines = 1
	}
	visible := layout.CalculateVisibleItems(height, headerLines, a.layoutConfig.Pane.LinesPerBookmark)
	itemWidth := layout.CalculateItemWidth(width, a.layoutConfig.Pane)

	if a.mode == ModeFilter {
		content.WriteString("/" + a.filter.Input.View() + "\n")
	} else if a.filter.Active() {
		content.WriteString(a.styles.Tag.Render("/"+a.filter.Input.Value()) + "\n")
	}

	if len(a.items) == 0 {
		switch {
		case a.filter.Active():
			content.WriteString(a.styles.Empty.Render("(no matches)"))
		case a.activeTag != "":
			content.WriteString(a.styles.Empty.Render("(no bookmarks tagged " + a.activeTag + ")"))
		default:
			content.WriteString(a.styles.Empty.Render("(no bookmarks yet, press a to add one)"))
		}
	} else {
		offset := layout.CalculateViewportOffset(a.cursor, len(a.items), visible)
		for i, b := range a.items {
			if i < offset {
				continue
			}
			if i >= offset+visible {
				break
			}
			content.WriteString(a.renderBookmark(b, i == a.cursor, itemWidth) + "\n")
		}
	}

	style := a.styles.Pane
	if a.mode == ModeNormal || a.mode == ModeFilter {
		style = a.styles.PaneActive
	}
	return style.
		Width(width).
		Height(height).
		Render(strings.TrimRight(content.String(), "\n"))
}

// renderBookmark renders one bookmark as title, url and a tags/date line.
func (a App) renderBookmark(b model.Bookmark, isCursor bool, maxWidth int) string {
	marker := "○ "
	if b.IsRead {
		marker = "✓ "
	}
	title, _ := layout.TruncateText(marker+b.Title, maxWidth, a.layoutConfig.Text)

	if isCursor {
		for layout.VisibleLength(title) < maxWidth {
			title += " "
		}
		title = a.styles.ItemSelected.Render(title)
	} else if b.IsRead {
		title = a.styles.ItemRead.Render(title)
	} else {
		title = a.styles.Item.Render(title)
	}

	url, _ := layout.TruncateText(b.URL, maxWidth-2, a.layoutConfig.Text)

	meta := a.styles.Date.Render(b.Created().Format("2006-01-02"))
	if len(b.Tags) > 0 {
		tagList := make([]string, len(b.Tags))
		for i, tag := range b.Tags {
			tagList[i] = "#" + tag
		}
		meta += " " + a.styles.Tag.Render(strings.Join(tagList, " "))
	}
	meta = layout.TruncateANSIAware(meta, maxWidth-2, a.layoutConfig.Text)

	return title + "\n   " + a.styles.URL.Render(url) + "\n   " + meta
}

// renderTagPane renders the tag cloud, largest tags first.
func (a App) renderTagPane(width, height int) string {
	var content strings.Builder
	content.WriteString(a.styles.Title.Render("Tags") + "\n\n")

	counts := a.ctrl.TagCounts()
	if len(counts) == 0 {
		content.WriteString(a.styles.Empty.Render("(no tags)"))
	} else {
		words := make([]string, len(counts))
		for i, tc := range counts {
			words[i] = a.renderTag(tc)
		}
		content.WriteString(layout.FlowWords(words, layout.CalculateItemWidth(width, a.layoutConfig.Pane)))
	}

	return a.styles.Pane.
		Width(width).
		Height(height).
		Render(content.String())
}

func (a App) renderTag(tc model.TagCount) string {
	text := fmt.Sprintf("%s(%d)", tc.Tag, tc.Count)
	if tc.Tag == a.activeTag {
		return a.styles.TagActive.Render(text)
	}
	switch tags.SizeOf(tc.Count) {
	case tags.Large:
		return a.styles.TagLarge.Render(strings.ToUpper(tc.Tag)) + a.styles.TagSmall.Render(fmt.Sprintf("(%d)", tc.Count))
	case tags.Medium:
		return a.styles.TagMedium.Render(text)
	default:
		return a.styles.TagSmall.Render(text)
	}
}

// renderModal renders the add form or the delete confirmation centered.
func (a App) renderModal() string {
	var title, content strings.Builder

	widthPercent := a.layoutConfig.Modal.DefaultWidthPercent
	if a.mode == ModeAdd {
		widthPercent = a.layoutConfig.Modal.LargeWidthPercent
	}
	modalWidth := layout.CalculateModalWidth(a.width, widthPercent, a.layoutConfig.Modal)

	switch a.mode {
	case ModeAdd:
		title.WriteString("Add Bookmark\n\n")
		labels := [fieldCount]string{"URL:", "Title:", "Description:", "Tags:"}
		for i, label := range labels {
			content.WriteString(label + "\n")
			content.WriteString(a.form.Inputs[i].View())
			content.WriteString("\n\n")
		}
		switch {
		case a.form.Suggesting:
			content.WriteString(a.styles.Message.Render("Asking AI for suggestions...") + "\n\n")
		case a.form.Error != "":
			content.WriteString(a.styles.Error.Render(a.form.Error) + "\n\n")
		}
		content.WriteString(a.renderHintsInline(a.getAddFormHints().All()))

	case ModeConfirmDelete:
		title.WriteString("Delete Bookmark?\n\n")
		name := a.deleteID
		if b := a.ctrl.Bookmarks().GetByID(a.deleteID); b != nil {
			name = b.Title
		}
		name, _ = layout.TruncateText(name, modalWidth-6, a.layoutConfig.Text)
		content.WriteString(name + "\n\n")
		content.WriteString(a.renderHintsInline([]Hint{
			{Key: "y/Enter", Desc: "delete"},
			{Key: "any", Desc: "cancel"},
		}))
	}

	modal := a.styles.Modal.
		Width(modalWidth).
		Render(a.styles.Title.Render(title.String()) + content.String())

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, modal)
}

// renderAlert renders the oldest unacknowledged failure.
func (a App) renderAlert() string {
	modalWidth := layout.CalculateModalWidth(a.width, a.layoutConfig.Modal.DefaultWidthPercent, a.layoutConfig.Modal)

	var content strings.Builder
	content.WriteString(a.styles.Error.Render("Error") + "\n\n")
	content.WriteString(a.alerts[0] + "\n\n")
	if more := len(a.alerts) - 1; more > 0 {
		content.WriteString(a.styles.Help.Render(fmt.Sprintf("%d more", more)) + "\n")
	}
	content.WriteString(a.styles.Help.Render("press any key"))

	modal := a.styles.Alert.Width(modalWidth).Render(content.String())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, modal)
}

func (a App) renderHelpOverlay() string {
	// Brutalist style: no border, just raw columns
	modalStyle := lipgloss.NewStyle().
		Padding(1, 2)

	var left strings.Builder
	left.WriteString(a.styles.Title.Render("nav") + "\n")
	left.WriteString("j/k  move\n")
	left.WriteString("gg   top\n")
	left.WriteString("G    bottom\n")
	left.WriteString("\n")
	left.WriteString(a.styles.Title.Render("tags") + "\n")
	left.WriteString("t    item's tag\n")
	left.WriteString("tab  next tag\n")
	left.WriteString("esc  clear\n")
	left.WriteString("/    filter\n")

	var right strings.Builder
	right.WriteString(a.styles.Title.Render("act") + "\n")
	right.WriteString("o    open url\n")
	right.WriteString("Y    yank url\n")
	right.WriteString("r    toggle read\n")
	right.WriteString("a    add\n")
	right.WriteString("C-s  AI suggest\n")
	right.WriteString("d    delete\n")
	right.WriteString("R    reload\n")
	right.WriteString("\n")
	right.WriteString(a.styles.Help.Render("[?/esc] close  [q] quit"))

	colWidth := a.layoutConfig.Modal.HelpColumnWidth
	leftCol := lipgloss.NewStyle().Width(colWidth).Render(left.String())
	rightCol := lipgloss.NewStyle().Width(colWidth).Render(right.String())
	cols := lipgloss.JoinHorizontal(lipgloss.Top, leftCol, "  ", rightCol)

	return lipgloss.Place(
		a.width,
		a.height,
		lipgloss.Left,
		lipgloss.Top,
		modalStyle.Render(cols),
	)
}

func (a App) renderHelpBar() string {
	var lines []string

	// Message replaces the gap line
	if a.messageText != "" {
		lines = append(lines, a.renderMessageLine())
	} else {
		lines = append(lines, "")
	}

	lines = append(lines, a.renderHints(a.getContextualHints()))
	return strings.Join(lines, "\n")
}

func (a App) renderMessageLine() string {
	switch a.messageType {
	case MessageError:
		return a.styles.Error.Render("✗ " + a.messageText)
	case MessageSuccess:
		return a.styles.StatusOK.Render("✓ " + a.messageText)
	default:
		return a.styles.Message.Render(a.messageText)
	}
}
