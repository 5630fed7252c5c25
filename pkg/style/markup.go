package style

import (
	"regexp"

	"github.com/charmbracelet/lipgloss"
)

type markupTag struct {
	pattern *regexp.Regexp
	style   lipgloss.Style
}

// MarkupParser handles parsing and rendering of markup tags such as
// [dotfile]kitty[/dotfile]
type MarkupParser struct {
	tags map[string]markupTag
}

// NewMarkupParser creates a new markup parser with default styles
func NewMarkupParser() *MarkupParser {
	p := &MarkupParser{tags: map[string]markupTag{}}
	for tag, style := range map[string]lipgloss.Style{
		"title":   TitleStyle,
		"success": SuccessStyle,
		"error":   ErrorStyle,
		"warning": WarningStyle,
		"info":    InfoStyle,
		"code":    CodeStyle,
		"path":    PathStyle,
		"muted":   MutedStyle,
		"dotfile": DotfileStyle,
		"step":    StepStyle,
		"bold":    lipgloss.NewStyle().Bold(true),
		"italic":  lipgloss.NewStyle().Italic(true),
	} {
		p.AddStyle(tag, style)
	}
	return p
}

// Render processes markup text and returns styled output
func (p *MarkupParser) Render(text string) string {
	result := text

	// Keep processing until no more changes are made so nested tags resolve
	for {
		before := result
		for _, tag := range p.tags {
			result = tag.pattern.ReplaceAllStringFunc(result, func(match string) string {
				submatch := tag.pattern.FindStringSubmatch(match)
				if len(submatch) != 2 {
					return match
				}
				return tag.style.Render(submatch[1])
			})
		}
		if result == before {
			return result
		}
	}
}

// AddStyle allows adding custom styles
func (p *MarkupParser) AddStyle(tag string, style lipgloss.Style) {
	p.tags[tag] = markupTag{
		pattern: regexp.MustCompile(`\[` + regexp.QuoteMeta(tag) + `\](.*?)\[/` + regexp.QuoteMeta(tag) + `\]`),
		style:   style,
	}
}

// Global parser instance
var defaultParser = NewMarkupParser()

// Render is a convenience function using the default parser
func Render(text string) string {
	return defaultParser.Render(text)
}
