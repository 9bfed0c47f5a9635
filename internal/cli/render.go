package cli

import (
	"fmt"
	"strings"

	"github.com/rodsouza/minhasfinancas/internal/model"
)

// RenderPreview formats a statement preview batch as a table. Records that
// were already imported render dimmed with a marker so the user can tell at
// a glance what a commit would actually write.
func RenderPreview(records []model.StatementRecord) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Statement preview"))
	b.WriteString("\n")
	b.WriteString(BoldStyle.Render(fmt.Sprintf("%-12s %-12s %10s  %s",
		"DATE", "EXTERNAL ID", "AMOUNT", "DESCRIPTION")))
	b.WriteString("\n")

	imported := 0
	for _, record := range records {
		line := fmt.Sprintf("%-12s %-12s %10.2f  %s",
			record.Date.Format("2006-01-02"),
			record.ExternalID,
			record.Amount,
			record.Description)

		if record.AlreadyImported {
			imported++
			line = SubtleStyle.Render(line + "  (already imported)")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	summary := fmt.Sprintf("%d records, %d new, %d already imported",
		len(records), len(records)-imported, imported)
	b.WriteString(SubtleStyle.Render(summary))
	b.WriteString("\n")

	return b.String()
}

// RenderCategoryTree formats a user's chart of accounts with children
// indented under their parents.
func RenderCategoryTree(categories []model.Category) string {
	children := make(map[int64][]model.Category)
	var roots []model.Category
	for _, category := range categories {
		if category.IsRoot() {
			roots = append(roots, category)
		} else {
			children[category.ParentID] = append(children[category.ParentID], category)
		}
	}

	var b strings.Builder
	for _, root := range roots {
		b.WriteString(fmt.Sprintf("%d  %s [%s]\n", root.ID, BoldStyle.Render(root.Description), root.Kind))
		for _, child := range children[root.ID] {
			b.WriteString(fmt.Sprintf("%d    └─ %s\n", child.ID, child.Description))
		}
	}
	return b.String()
}
