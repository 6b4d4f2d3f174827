package inp

import (
	"bufio"
	"io"
	"os"

	"github.com/pkg/errors"
)

// encoder renders one record as INP lines
type encoder interface {
	Encode() ([]string, error)
}

// sectionBanners are the two header lines written before the records of each section
var sectionBanners = map[string][2]string{
	SectionInputs:     {"-- Inputs: --", "-------------"},
	SectionLinks:      {"-- Links: --", "------------"},
	SectionConnectors: {"-- Connectors: --", "-----------------"},
	SectionParking:    {"-- Parking Lots: --", "-------------------"},
	SectionTransit:    {"-- Public Transport: --", "-----------------"},
	SectionRouting:    {"-- Routing Decisions: --", "------------------------"},
	SectionNodes:      {"-- Nodes: --", "------------"},
}

// renderSection returns banner and every record line. Nothing is returned if a record fails to encode
func renderSection(section string, encoders []encoder) ([]string, error) {
	banner := sectionBanners[section]
	lines := []string{banner[0], banner[1]}
	for _, enc := range encoders {
		recordLines, err := enc.Encode()
		if err != nil {
			return nil, errors.Wrapf(err, "Can't encode record of section '%s'", section)
		}
		lines = append(lines, recordLines...)
	}
	return lines, nil
}

func writeLines(w io.Writer, lines []string) error {
	buf := bufio.NewWriter(w)
	for _, line := range lines {
		if _, err := buf.WriteString(line + "\n"); err != nil {
			return errors.Wrap(err, "Can't write line")
		}
	}
	return errors.Wrap(buf.Flush(), "Can't flush lines")
}

// exportLines truncates fname and writes lines through a single handle
func exportLines(fname string, lines []string) error {
	file, err := os.Create(fname)
	if err != nil {
		return &FileAccessError{Filename: fname, Cause: err}
	}
	if err := writeLines(file, lines); err != nil {
		file.Close()
		return err
	}
	return errors.Wrap(file.Close(), "Can't close file")
}

func writeSection(w io.Writer, section string, encoders []encoder) error {
	lines, err := renderSection(section, encoders)
	if err != nil {
		return err
	}
	return writeLines(w, lines)
}

func exportSection(fname, section string, encoders []encoder) error {
	lines, err := renderSection(section, encoders)
	if err != nil {
		return err
	}
	return exportLines(fname, lines)
}

// Write renders every non-empty section of the network into w
func (net *Network) Write(w io.Writer) error {
	lines, err := net.render()
	if err != nil {
		return err
	}
	return writeLines(w, lines)
}

// Export writes every non-empty section of the network into fname.
// All records are rendered before the file is touched, so an encoding error leaves no partial file.
func (net *Network) Export(fname string) error {
	lines, err := net.render()
	if err != nil {
		return err
	}
	return exportLines(fname, lines)
}

func (net *Network) sectionEncoders(section string) []encoder {
	switch section {
	case SectionInputs:
		return net.Inputs.encoders()
	case SectionLinks:
		return net.Links.encoders()
	case SectionConnectors:
		return net.Connectors.encoders()
	case SectionParking:
		return net.ParkingLots.encoders()
	case SectionTransit:
		return net.TransitLines.encoders()
	case SectionRouting:
		return net.RoutingDecisions.encoders()
	case SectionNodes:
		return net.Nodes.encoders()
	}
	return nil
}

func (net *Network) render() ([]string, error) {
	var lines []string
	for _, section := range allSections {
		encoders := net.sectionEncoders(section)
		if len(encoders) == 0 {
			continue
		}
		sectionLines, err := renderSection(section, encoders)
		if err != nil {
			return nil, err
		}
		lines = append(lines, sectionLines...)
	}
	return lines, nil
}

func WriteInputs(w io.Writer, inputs Inputs) error {
	return writeSection(w, SectionInputs, inputs.encoders())
}

func ExportInputs(fname string, inputs Inputs) error {
	return exportSection(fname, SectionInputs, inputs.encoders())
}

func WriteLinks(w io.Writer, links Links) error {
	return writeSection(w, SectionLinks, links.encoders())
}

func ExportLinks(fname string, links Links) error {
	return exportSection(fname, SectionLinks, links.encoders())
}

func WriteConnectors(w io.Writer, connectors Connectors) error {
	return writeSection(w, SectionConnectors, connectors.encoders())
}

func ExportConnectors(fname string, connectors Connectors) error {
	return exportSection(fname, SectionConnectors, connectors.encoders())
}

func WriteParkingLots(w io.Writer, lots ParkingLots) error {
	return writeSection(w, SectionParking, lots.encoders())
}

func ExportParkingLots(fname string, lots ParkingLots) error {
	return exportSection(fname, SectionParking, lots.encoders())
}

func WriteTransitLines(w io.Writer, lines TransitLines) error {
	return writeSection(w, SectionTransit, lines.encoders())
}

func ExportTransitLines(fname string, lines TransitLines) error {
	return exportSection(fname, SectionTransit, lines.encoders())
}

func WriteRoutingDecisions(w io.Writer, decisions *RoutingDecisions) error {
	return writeSection(w, SectionRouting, decisions.encoders())
}

func ExportRoutingDecisions(fname string, decisions *RoutingDecisions) error {
	return exportSection(fname, SectionRouting, decisions.encoders())
}

func WriteNodes(w io.Writer, nodes Nodes) error {
	return writeSection(w, SectionNodes, nodes.encoders())
}

func ExportNodes(fname string, nodes Nodes) error {
	return exportSection(fname, SectionNodes, nodes.encoders())
}
