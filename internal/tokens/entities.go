package tokens

import (
	"fmt"
	"strings"
)

// EntityStyle is how an entity label is displayed.
type EntityStyle struct {
	Tooltip string `json:"tooltip"`
	Color   string `json:"color"`
}

// entityStyles covers the CoNLL-2003 and OntoNotes label sets.
var entityStyles = map[string]EntityStyle{
	"PER":         {Tooltip: "Person", Color: "pink"},
	"LOC":         {Tooltip: "Location", Color: "green"},
	"ORG":         {Tooltip: "Organization", Color: "blue"},
	"MISC":        {Tooltip: "Miscellaneous", Color: "gray"},
	"PERSON":      {Tooltip: "Person", Color: "pink"},
	"CARDINAL":    {Tooltip: "Cardinal Number", Color: "orange"},
	"EVENT":       {Tooltip: "Event", Color: "green"},
	"DATE":        {Tooltip: "Date", Color: "fuchsia"},
	"FAC":         {Tooltip: "Facility", Color: "cobalt"},
	"GPE":         {Tooltip: "Country/City/State", Color: "teal"},
	"LANGUAGE":    {Tooltip: "Language", Color: "red"},
	"LAW":         {Tooltip: "Law", Color: "brown"},
	"MONEY":       {Tooltip: "Monetary Value", Color: "orange"},
	"NORP":        {Tooltip: "Nationalities, Religious/Political Groups", Color: "green"},
	"ORDINAL":     {Tooltip: "Ordinal Value", Color: "orange"},
	"PERCENT":     {Tooltip: "Percentage", Color: "orange"},
	"PRODUCT":     {Tooltip: "Product", Color: "purple"},
	"QUANTITY":    {Tooltip: "Quantity", Color: "orange"},
	"TIME":        {Tooltip: "Time", Color: "fuchsia"},
	"WORK_OF_ART": {Tooltip: "Work of Art/Media", Color: "tan"},
}

// StyleFor returns the display style for an entity label. Unknown labels
// are shown in gray with the raw label as tooltip.
func StyleFor(label string) EntityStyle {
	if s, ok := entityStyles[label]; ok {
		return s
	}
	return EntityStyle{Tooltip: label, Color: "gray"}
}

// EntitySpan is a run of words that either forms one entity or is plain text.
type EntitySpan struct {
	Text   string      `json:"text"`
	Entity string      `json:"entity,omitempty"`
	Style  EntityStyle `json:"style,omitempty"`
}

// IsEntity reports whether the span carries an entity label.
func (e EntitySpan) IsEntity() bool { return e.Entity != "" }

// GroupEntities folds BIOUL tags over words into display spans. A B/I run
// that is never closed by an L tag is flushed as an entity when the next
// span starts.
func GroupEntities(words, tags []string) ([]EntitySpan, error) {
	if len(words) != len(tags) {
		return nil, fmt.Errorf("%w: %d words, %d tags", ErrLengthMismatch, len(words), len(tags))
	}

	var (
		out     []EntitySpan
		run     []string
		runType string
	)
	flush := func() {
		if len(run) > 0 {
			out = append(out, EntitySpan{Text: strings.Join(run, " "), Entity: runType, Style: StyleFor(runType)})
		}
		run, runType = nil, ""
	}

	for i, tag := range tags {
		word := words[i]
		if tag == "O" || tag == "" {
			flush()
			out = append(out, EntitySpan{Text: word})
			continue
		}

		prefix, label := splitTag(tag)
		switch prefix {
		case "U":
			flush()
			out = append(out, EntitySpan{Text: word, Entity: label, Style: StyleFor(label)})
		case "B":
			flush()
			run, runType = []string{word}, label
		case "I":
			if runType == "" {
				runType = label
			}
			run = append(run, word)
		case "L":
			if runType == "" {
				runType = label
			}
			run = append(run, word)
			out = append(out, EntitySpan{Text: strings.Join(run, " "), Entity: label, Style: StyleFor(label)})
			run, runType = nil, ""
		default:
			return nil, fmt.Errorf("unknown tag %q at position %d", tag, i)
		}
	}
	flush()
	return out, nil
}

// Entities returns only the spans that carry an entity label.
func Entities(spans []EntitySpan) []EntitySpan {
	var out []EntitySpan
	for _, s := range spans {
		if s.IsEntity() {
			out = append(out, s)
		}
	}
	return out
}

func splitTag(tag string) (prefix, label string) {
	prefix, label, ok := strings.Cut(tag, "-")
	if !ok {
		return tag, ""
	}
	return prefix, label
}
