package layout

// Split holds the widths of the bookmark list and the tag cloud.
type Split struct {
	ListWidth int
	TagWidth  int
}

// CalculatePaneHeight computes the content height for panes.
// Returns at least MinHeight.
func CalculatePaneHeight(terminalHeight int, cfg PaneConfig) int {
	height := terminalHeight - cfg.HeightReduction
	if height < cfg.MinHeight {
		return cfg.MinHeight
	}
	return height
}

// CalculateSplit divides the terminal between list and tag cloud.
// The tag cloud takes TagPaneWidthPercent, clamped to its min and max;
// the list gets the rest but never less than the tag cloud's minimum.
func CalculateSplit(terminalWidth int, cfg PaneConfig) Split {
	tagWidth := terminalWidth * cfg.TagPaneWidthPercent / 100
	if tagWidth < cfg.MinTagPaneWidth {
		tagWidth = cfg.MinTagPaneWidth
	}
	if tagWidth > cfg.MaxTagPaneWidth {
		tagWidth = cfg.MaxTagPaneWidth
	}

	listWidth := terminalWidth - cfg.SplitOffset - tagWidth
	if listWidth < cfg.MinTagPaneWidth {
		listWidth = cfg.MinTagPaneWidth
	}

	return Split{ListWidth: listWidth, TagWidth: tagWidth}
}

// CalculateItemWidth computes the width available for item content.
func CalculateItemWidth(paneWidth int, cfg PaneConfig) int {
	width := paneWidth - cfg.ContentPadding
	if width < 1 {
		return 1
	}
	return width
}

// CalculateVisibleItems computes how many entries fit in a pane when each
// entry takes linesPerItem rows after headerLines.
func CalculateVisibleItems(paneHeight, headerLines, linesPerItem int) int {
	if linesPerItem < 1 {
		linesPerItem = 1
	}
	n := (paneHeight - headerLines) / linesPerItem
	if n < 1 {
		return 1
	}
	return n
}

// CalculateViewportOffset calculates the scroll offset needed to keep the
// selected item visible within the viewport.
func CalculateViewportOffset(selected, total, viewportHeight int) int {
	if total <= viewportHeight {
		return 0
	}

	// Keep selection roughly centered, but clamp to valid range
	offset := selected - viewportHeight/2
	if offset < 0 {
		offset = 0
	}

	maxOffset := total - viewportHeight
	if offset > maxOffset {
		offset = maxOffset
	}

	return offset
}
