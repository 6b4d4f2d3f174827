package inp

import (
	"bufio"
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Section names as they appear in the second token of a header line, e.g. `-- Links: --`
const (
	SectionInputs     = "Inputs:"
	SectionLinks      = "Links:"
	SectionConnectors = "Connectors:"
	SectionParking    = "Parking"
	SectionTransit    = "Public"
	SectionRouting    = "Routing"
	SectionNodes      = "Nodes:"
)

const headerMarker = "--"

// maxLineSize bounds a single line. Routes and polylines over large networks produce long lines
const maxLineSize = 16 * 1024 * 1024

// lineDecoder is a per-section accumulator turning tokenized lines into records
type lineDecoder interface {
	decodeLine(tokens []string) error
	// finish commits the record being accumulated, if any
	finish() error
}

// scanSections routes every line of r to the decoder registered for the current section.
// Lines outside of any section or inside a section without a decoder are dropped.
// The returned error is set only when r itself fails.
func scanSections(r io.Reader, decoders map[string]lineDecoder, strictMode bool) (Diagnostics, error) {
	var diags Diagnostics
	lineNum := 0
	section := ""
	report := func(err error) bool {
		if err == nil {
			return false
		}
		errs, ok := err.(lineErrors)
		if !ok {
			errs = lineErrors{err}
		}
		stop := false
		for _, e := range errs {
			diags = append(diags, Diagnostic{Line: lineNum, Section: section, Err: e})
			var formatErr *FormatError
			stop = stop || (strictMode && errors.As(e, &formatErr))
		}
		return stop
	}
	names := make([]string, 0, len(decoders))
	for name := range decoders {
		names = append(names, name)
	}
	sort.Strings(names)
	finishAll := func() {
		for _, name := range names {
			if err := decoders[name].finish(); err != nil {
				diags = append(diags, Diagnostic{Line: lineNum, Section: name, Err: err})
			}
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		lineNum++
		tokens := Tokenize(scanner.Text())
		if len(tokens) == 0 {
			continue
		}
		if tokens[0] == headerMarker && len(tokens) > 1 {
			if decoder, ok := decoders[section]; ok {
				report(decoder.finish())
			}
			section = tokens[1]
			continue
		}
		if isBannerUnderline(tokens) {
			continue
		}
		decoder, ok := decoders[section]
		if !ok {
			continue
		}
		if stop := report(decoder.decodeLine(tokens)); stop {
			finishAll()
			return diags, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return diags, err
	}
	finishAll()
	return diags, nil
}

// isBannerUnderline detects the dashed line printed under a section header
func isBannerUnderline(tokens []string) bool {
	return len(tokens) == 1 && strings.Trim(tokens[0], "-") == ""
}

// dispatch looks up the handler for the leading keyword of a line
func dispatch(section string, tokens []string, handlers map[string]func([]string) error) error {
	handler, ok := handlers[tokens[0]]
	if !ok {
		return &UnrecognizedTokenError{Section: section, Token: tokens[0]}
	}
	return handler(tokens)
}

// lineErrors carries several problems found on one line. Each one becomes a separate diagnostic
type lineErrors []error

func (errs lineErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// abandonRecord commits what was accumulated before a broken record start, so the
// continuation lines of the broken record can not leak into the previous one
func abandonRecord(decoder lineDecoder, startErr error) error {
	if err := decoder.finish(); err != nil {
		return lineErrors{err, startErr}
	}
	return startErr
}

func errNoRecord(keyword string) error {
	return &FormatError{Keyword: keyword, Index: -1, Reason: "continuation line met before any record start"}
}
