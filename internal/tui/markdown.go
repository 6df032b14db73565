package tui

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma"
	"github.com/alecthomas/chroma/formatters"
	"github.com/alecthomas/chroma/lexers"
	"github.com/alecthomas/chroma/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	codeBlockRegex = regexp.MustCompile(`(?s)<pre><code(?: class="language-([a-zA-Z0-9]+)")?>(.*?)</code></pre>`)
	inlineCodeRe   = regexp.MustCompile(`<code>([^<]+)</code>`)
	headingRegex   = regexp.MustCompile(`<h([1-6])[^>]*>(.*?)</h[1-6]>`)
	strongRegex    = regexp.MustCompile(`<strong>(.*?)</strong>`)
	emRegex        = regexp.MustCompile(`<em>(.*?)</em>`)
	linkRegex      = regexp.MustCompile(`<a href="([^"]*)">(.*?)</a>`)
	blockquoteRe   = regexp.MustCompile(`(?s)<blockquote>(.*?)</blockquote>`)
	listRegex      = regexp.MustCompile(`(?s)<(ul|ol)>(.*?)</(?:ul|ol)>`)
	liRegex        = regexp.MustCompile(`<li>(.*?)</li>`)
	htmlTagRegex   = regexp.MustCompile(`<[^>]+>`)
	multiNewline   = regexp.MustCompile(`\n{3,}`)
)

// MarkdownRenderer renders assistant message bodies: markdown via goldmark,
// then the intermediate HTML flattened into styled terminal text, with code
// blocks syntax-highlighted by chroma.
type MarkdownRenderer struct {
	md        goldmark.Markdown
	formatter chroma.Formatter
	style     *chroma.Style

	theme Theme
}

func NewMarkdownRenderer(theme Theme) *MarkdownRenderer {
	return &MarkdownRenderer{
		md: goldmark.New(
			goldmark.WithRendererOptions(html.WithHardWraps()),
			goldmark.WithExtensions(extension.GFM, extension.Strikethrough),
		),
		formatter: formatters.Get("terminal256"),
		style:     styles.Get("monokai"),
		theme:     theme,
	}
}

// Render converts markdown content into terminal text wrapped to width.
// Anything that fails to parse falls back to the raw content.
func (r *MarkdownRenderer) Render(content string, width int) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(content), &buf); err != nil {
		return content
	}
	return r.flatten(buf.String(), width)
}

func (r *MarkdownRenderer) flatten(htmlContent string, width int) string {
	out := htmlContent

	// Code blocks are lifted out first so later passes don't chew on them.
	var codeBlocks []string
	out = codeBlockRegex.ReplaceAllStringFunc(out, func(m string) string {
		sub := codeBlockRegex.FindStringSubmatch(m)
		code := decodeEntities(sub[2])
		codeWidth := width - 4
		if codeWidth < 20 {
			codeWidth = 20
		}
		styled := lipgloss.NewStyle().
			Foreground(r.theme.TextPrimary).
			Padding(0, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(r.theme.Border).
			Width(codeWidth).
			Render(r.highlight(code, sub[1]))
		codeBlocks = append(codeBlocks, styled)
		return fmt.Sprintf("\n{{CODE_%d}}\n", len(codeBlocks)-1)
	})

	out = inlineCodeRe.ReplaceAllStringFunc(out, func(m string) string {
		sub := inlineCodeRe.FindStringSubmatch(m)
		return lipgloss.NewStyle().Foreground(r.theme.Accent2).Render(decodeEntities(sub[1]))
	})

	out = headingRegex.ReplaceAllStringFunc(out, func(m string) string {
		sub := headingRegex.FindStringSubmatch(m)
		return lipgloss.NewStyle().Bold(true).Foreground(r.theme.Accent).Render(sub[2]) + "\n"
	})

	out = strongRegex.ReplaceAllStringFunc(out, func(m string) string {
		sub := strongRegex.FindStringSubmatch(m)
		return lipgloss.NewStyle().Bold(true).Render(sub[1])
	})
	out = emRegex.ReplaceAllStringFunc(out, func(m string) string {
		sub := emRegex.FindStringSubmatch(m)
		return lipgloss.NewStyle().Italic(true).Render(sub[1])
	})
	out = linkRegex.ReplaceAllStringFunc(out, func(m string) string {
		sub := linkRegex.FindStringSubmatch(m)
		return lipgloss.NewStyle().Foreground(r.theme.Accent).Underline(true).
			Render(fmt.Sprintf("%s (%s)", sub[2], sub[1]))
	})

	out = blockquoteRe.ReplaceAllStringFunc(out, func(m string) string {
		sub := blockquoteRe.FindStringSubmatch(m)
		content := htmlTagRegex.ReplaceAllString(strings.TrimSpace(sub[1]), "")
		return lipgloss.NewStyle().
			Foreground(r.theme.TextMuted).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(r.theme.Border).
			PaddingLeft(1).
			Render(content) + "\n"
	})

	out = listRegex.ReplaceAllStringFunc(out, func(m string) string {
		sub := listRegex.FindStringSubmatch(m)
		ordered := sub[1] == "ol"
		items := liRegex.FindAllStringSubmatch(sub[2], -1)
		var list strings.Builder
		for i, item := range items {
			marker := "• "
			if ordered {
				marker = fmt.Sprintf("%d. ", i+1)
			}
			list.WriteString("  ")
			list.WriteString(lipgloss.NewStyle().Foreground(r.theme.Accent).Render(marker))
			list.WriteString(htmlTagRegex.ReplaceAllString(item[1], ""))
			list.WriteString("\n")
		}
		return list.String()
	})

	out = strings.NewReplacer(
		"<p>", "",
		"</p>", "\n",
		"<br>", "\n",
		"<br/>", "\n",
		"<br />", "\n",
	).Replace(out)

	for i, block := range codeBlocks {
		out = strings.ReplaceAll(out, fmt.Sprintf("{{CODE_%d}}", i), block)
	}

	out = htmlTagRegex.ReplaceAllString(out, "")
	out = decodeEntities(out)
	out = multiNewline.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

func (r *MarkdownRenderer) highlight(code, lang string) string {
	var lexer chroma.Lexer
	if lang != "" {
		lexer = lexers.Get(lang)
	}
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf bytes.Buffer
	if err := r.formatter.Format(&buf, r.style, iterator); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&#x27;", "'",
	"&#x60;", "`",
	"&nbsp;", " ",
	"&hellip;", "...",
)

func decodeEntities(s string) string {
	return entityReplacer.Replace(s)
}
