package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/markdown"
)

// Writer renders a report to its destination.
type Writer interface {
	// Write outputs the report and returns the number of bytes written.
	Write(r *Report) (int, error)
}

// Format names an output rendering.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
)

// NewWriter returns the writer for format. Unknown formats fall back to text.
func NewWriter(format Format, output io.Writer) Writer {
	if format == FormatMarkdown {
		return NewMarkdownWriter(output)
	}
	return NewTextWriter(output)
}

// Section headings of the text layout.
const (
	headerTitle       = "HERE'S YOUR SKIN ANALYSIS:"
	personalizedTitle = "PERSONALIZED ANALYSIS:"
	formTitle         = "FORM-BASED OBSERVATIONS:"
	imageTitle        = "IMAGE-BASED OBSERVATIONS:"
	recommendTitle    = "RECOMMENDED SKINCARE:"
	reportedPrefix    = "- You reported: "
	recommendPrefix   = "- "
	imageLineFormat   = "Image %d: %s"
)

// TextWriter renders the flat UTF-8 layout.
type TextWriter struct {
	output io.Writer
}

// NewTextWriter creates a TextWriter that writes to output.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{output: output}
}

// Write outputs the report in the text layout.
func (w *TextWriter) Write(r *Report) (int, error) {
	var b strings.Builder

	b.WriteString(headerTitle + "\n")
	b.WriteString(strings.Repeat("-", 34) + "\n\n")

	b.WriteString(personalizedTitle + "\n")
	b.WriteString(strings.Repeat("-", 35) + "\n")
	b.WriteString(r.Narrative)
	b.WriteString("\n\n")

	b.WriteString(formTitle + "\n")
	b.WriteString(strings.Repeat("-", 35) + "\n")
	for _, c := range r.Conditions {
		b.WriteString(reportedPrefix + string(c) + "\n")
	}
	b.WriteString("\n\n")

	b.WriteString(imageTitle + "\n")
	b.WriteString(strings.Repeat("-", 36) + "\n")
	for _, img := range r.Images {
		fmt.Fprintf(&b, imageLineFormat+"\n", img.Index, img.Class)
	}
	b.WriteString("\n\n")

	b.WriteString(recommendTitle + "\n")
	b.WriteString(strings.Repeat("-", 35) + "\n")
	for _, rec := range r.Recommendations {
		b.WriteString(recommendPrefix + rec + "\n")
	}
	b.WriteString("\n\n")

	return io.WriteString(w.output, b.String())
}

// MarkdownWriter renders the report as GitHub-flavored Markdown, including
// per-image confidence.
type MarkdownWriter struct {
	output io.Writer
}

// NewMarkdownWriter creates a MarkdownWriter that writes to output.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{output: output}
}

// Write outputs the report in Markdown.
func (w *MarkdownWriter) Write(r *Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Skin Analysis")
	md.PlainText("")

	md.H2("Personalized Analysis")
	md.PlainText("")
	if lines := narrativeLines(r.Narrative); len(lines) > 0 {
		md.BulletList(lines...)
	} else {
		md.PlainText("No lifestyle answers provided.")
	}
	md.PlainText("")

	md.H2("Form-Based Observations")
	md.PlainText("")
	if len(r.Conditions) > 0 {
		items := make([]string, len(r.Conditions))
		for i, c := range r.Conditions {
			items[i] = "You reported: " + string(c)
		}
		md.BulletList(items...)
	} else {
		md.PlainText("No conditions reported.")
	}
	md.PlainText("")

	md.H2("Image-Based Observations")
	md.PlainText("")
	rows := make([][]string, len(r.Images))
	for i, img := range r.Images {
		rows[i] = []string{
			fmt.Sprintf("%d", img.Index),
			img.Class,
			fmt.Sprintf("%.2f%%", img.Percent()),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Image", "Class", "Confidence"},
		Rows:   rows,
	})
	md.PlainText("")

	md.H2("Recommended Skincare")
	md.PlainText("")
	if len(r.Recommendations) > 0 {
		md.BulletList(r.Recommendations...)
	} else {
		md.PlainText("No specific recommendations.")
	}
	md.PlainText("")

	return len(md.String()), md.Build()
}

func narrativeLines(narrative string) []string {
	var lines []string
	for _, l := range strings.Split(narrative, "\n") {
		l = strings.TrimSpace(strings.TrimPrefix(l, "- "))
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// Text renders r in the text layout.
func (r *Report) Text() string {
	var buf bytes.Buffer
	_, _ = NewTextWriter(&buf).Write(r) //nolint:errcheck // bytes.Buffer never fails
	return buf.String()
}

// Markdown renders r as Markdown.
func (r *Report) Markdown() (string, error) {
	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).Write(r); err != nil {
		return "", err
	}
	return buf.String(), nil
}
