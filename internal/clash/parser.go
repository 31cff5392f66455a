// Package clash reads clash-detection reports exported from Navisworks and
// works out which pair of categories collided.
package clash

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/Veraticus/clash-cost/internal/model"
)

// maxScannedResults bounds how many clash results are inspected for path links.
const maxScannedResults = 5

// Source tells where a detection came from.
type Source string

const (
	// SourceLocator means both ids came from the clash test selection locators.
	SourceLocator Source = "locator"
	// SourcePathLink means at least one id came from a clash result path.
	SourcePathLink Source = "pathlink"
	// SourceFileName means the ids came from the report file name.
	SourceFileName Source = "filename"
)

// Detection is the category pair read from a report. Row or Col is empty
// when that side could not be identified.
type Detection struct {
	Row    string
	Col    string
	Source Source
}

// Key returns the matrix key when both sides were identified.
func (d Detection) Key() (model.MatrixKey, bool) {
	if d.Row == "" || d.Col == "" {
		return model.MatrixKey{}, false
	}
	return model.MatrixKey{Row: d.Row, Col: d.Col}, true
}

// Report is the part of a clash report used for detection.
type Report struct {
	LeftLocator  string
	RightLocator string
	// PathLinks holds, per scanned clash result, each path link as its
	// node names joined with "/".
	PathLinks [][]string
}

// ParseReport extracts the first clash test's selection locators and the path
// links of the first few clash results.
func ParseReport(r io.Reader) (*Report, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false

	var (
		report     Report
		stack      []string
		text       strings.Builder
		nodes      []string
		inPathLink bool
		results    int
		leftSeen   bool
		rightSeen  bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse clash report: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := strings.ToLower(t.Name.Local)
			stack = append(stack, name)
			switch name {
			case "clashresult":
				results++
				if results <= maxScannedResults {
					report.PathLinks = append(report.PathLinks, nil)
				}
			case "pathlink":
				if results > 0 && results <= maxScannedResults {
					inPathLink = true
					nodes = nodes[:0]
				}
			}
			text.Reset()

		case xml.CharData:
			text.Write(t)

		case xml.EndElement:
			name := strings.ToLower(t.Name.Local)
			switch {
			case name == "locator" && !leftSeen && hasSuffix(stack, "clashtest", "left", "clashselection", "locator"):
				report.LeftLocator = strings.TrimSpace(text.String())
				leftSeen = true
			case name == "locator" && !rightSeen && hasSuffix(stack, "clashtest", "right", "clashselection", "locator"):
				report.RightLocator = strings.TrimSpace(text.String())
				rightSeen = true
			case name == "node" && inPathLink:
				nodes = append(nodes, strings.TrimSpace(text.String()))
			case name == "pathlink" && inPathLink:
				last := len(report.PathLinks) - 1
				report.PathLinks[last] = append(report.PathLinks[last], strings.Join(nodes, "/"))
				inPathLink = false
			}
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			text.Reset()
		}
	}

	return &report, nil
}

func hasSuffix(stack []string, suffix ...string) bool {
	if len(stack) < len(suffix) {
		return false
	}
	tail := stack[len(stack)-len(suffix):]
	for i := range suffix {
		if tail[i] != suffix[i] {
			return false
		}
	}
	return true
}

// Detect identifies the colliding categories. Locators win when both map to
// a category; otherwise the first scanned clash result with two path links
// that map on either side decides, keeping locator ids for the unmapped side.
// The file name is the fallback.
func Detect(filename string, report *Report) Detection {
	if report != nil {
		locRow := MapPath(report.LeftLocator)
		locCol := MapPath(report.RightLocator)
		if locRow != "" && locCol != "" {
			return Detection{Row: locRow, Col: locCol, Source: SourceLocator}
		}

		for _, links := range report.PathLinks {
			if len(links) < 2 {
				continue
			}
			deepRow, deepCol := MapPath(links[0]), MapPath(links[1])
			if deepRow == "" && deepCol == "" {
				continue
			}
			d := Detection{Row: deepRow, Col: deepCol, Source: SourcePathLink}
			if d.Row == "" {
				d.Row = locRow
			}
			if d.Col == "" {
				d.Col = locCol
			}
			return d
		}
	}

	row, col := detectFromName(filename)
	return Detection{Row: row, Col: col, Source: SourceFileName}
}

// Parser reads clash reports from files.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a parser.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// ParseFile detects the category pair of the report read from reader. A
// report that is not valid XML is detected from its file name alone.
func (p *Parser) ParseFile(_ context.Context, filename string, reader io.Reader) (Detection, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return Detection{}, fmt.Errorf("failed to read clash report: %w", err)
	}

	base := filepath.Base(filename)
	report, err := ParseReport(strings.NewReader(string(content)))
	if err != nil {
		p.logger.Warn("Clash report is not valid XML, using file name",
			"file", base,
			"error", err)
		report = nil
	}

	d := Detect(base, report)
	p.logger.Info("Detected clash categories",
		"file", base,
		"row", d.Row,
		"col", d.Col,
		"source", d.Source)
	return d, nil
}
