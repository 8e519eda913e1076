package sources

import "strings"

// DateFormat pairs a descriptor date-format label with its Go layout.
type DateFormat struct {
	Label  string
	Layout string
}

// DateFormats is the ordered list of calendar grammars tried by the row parser.
var DateFormats = []DateFormat{
	{Label: "YYYY/MM/DD", Layout: "2006/1/2"},
	{Label: "YYYY年MM月DD日", Layout: "2006年1月2日"},
	{Label: "YYYYMMDD", Layout: "20060102"},
	{Label: "YYYY.MM.DD", Layout: "2006.1.2"},
	{Label: "YYYY-MM-DD", Layout: "2006-1-2"},
}

// LookupDateFormat finds a grammar by label, case-insensitively.
func LookupDateFormat(label string) (DateFormat, bool) {
	for _, f := range DateFormats {
		if strings.EqualFold(f.Label, strings.TrimSpace(label)) {
			return f, true
		}
	}
	return DateFormat{}, false
}

// DateLayouts returns the grammars to try for a descriptor, its own label first.
func (d *Descriptor) DateLayouts() []string {
	layouts := make([]string, 0, len(DateFormats))
	preferred, ok := LookupDateFormat(d.DateFormat)
	if ok {
		layouts = append(layouts, preferred.Layout)
	}
	for _, f := range DateFormats {
		if ok && f.Layout == preferred.Layout {
			continue
		}
		layouts = append(layouts, f.Layout)
	}
	return layouts
}
