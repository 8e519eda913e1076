package parser

import "strings"

// cell returns the trimmed value at idx, or "" when the row is too short.
func cell(row []string, idx *int) string {
	if idx == nil || *idx < 0 || *idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[*idx])
}

// headerTexts joins the rows before the data so account patterns can search them.
func headerTexts(rows [][]string, skip int) []string {
	var out []string
	for i := 0; i < skip && i < len(rows); i++ {
		out = append(out, strings.Join(rows[i], " "))
	}
	return out
}
