package dossier

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/arrayops/telescopecm/internal/active"
	"github.com/arrayops/telescopecm/internal/cmtime"
	"github.com/arrayops/telescopecm/internal/hookup"
	"github.com/arrayops/telescopecm/internal/model"
)

var headerStyle = lipgloss.NewStyle().Bold(true)

var dossierHeaders = []string{"Part", "Type", "Input ports", "Output ports", "Start", "Stop"}

// RenderParts renders the dossiers as a bordered text table in NP key order.
func RenderParts(dossiers map[string]*Dossier) string {
	tbl := newTable(dossierHeaders)
	for _, row := range dossierRows(dossiers) {
		tbl.Row(row...)
	}
	return tbl.String()
}

// RenderPartsCSV renders the dossiers as CSV with the same columns as the
// text table.
func RenderPartsCSV(dossiers map[string]*Dossier) (string, error) {
	return writeCSV(dossierHeaders, dossierRows(dossiers))
}

func dossierRows(dossiers map[string]*Dossier) [][]string {
	var rows [][]string
	for _, pn := range Keys(dossiers) {
		d := dossiers[pn]
		rows = append(rows, []string{
			d.Part.PN,
			d.Part.PartType,
			strings.Join(d.InputPorts, ", "),
			strings.Join(d.OutputPorts, ", "),
			cmtime.Display(d.Part.Start),
			cmtime.DisplayStop(d.Part.Stop),
		})
	}
	return rows
}

// RenderNotes renders the annotation history of each dossier part.
func RenderNotes(dossiers map[string]*Dossier) string {
	tbl := newTable([]string{"Part", "Posted", "Comment", "Reference"})
	for _, pn := range Keys(dossiers) {
		for _, note := range dossiers[pn].Notes {
			tbl.Row(note.PN, cmtime.Display(note.PostingTime), note.Comment, note.Reference)
		}
	}
	return tbl.String()
}

// HookupColumns derives the widest column set across the entries' matched
// topologies, with the polarization-port key first and timing columns last.
func HookupColumns(entries map[string]*hookup.Entry) []string {
	var widest []string
	for _, pn := range entryKeys(entries) {
		entry := entries[pn]
		for _, key := range entry.Keys() {
			if cols := entry.Columns[key]; len(cols) > len(widest) {
				widest = cols
			}
		}
	}
	return append([]string{"part", "pol-port"}, widest...)
}

// RenderHookup renders resolved hookup entries as a text table. With
// fullOnly set, keys whose chain is not fully connected are skipped.
func RenderHookup(snap *active.Snapshot, entries map[string]*hookup.Entry, fullOnly bool) string {
	headers := HookupColumns(entries)
	tbl := newTable(headers)
	for _, row := range hookupRows(snap, entries, headers, fullOnly) {
		tbl.Row(row...)
	}
	return tbl.String()
}

// RenderHookupCSV renders resolved hookup entries as CSV.
func RenderHookupCSV(snap *active.Snapshot, entries map[string]*hookup.Entry, fullOnly bool) (string, error) {
	headers := HookupColumns(entries)
	return writeCSV(headers, hookupRows(snap, entries, headers, fullOnly))
}

func hookupRows(snap *active.Snapshot, entries map[string]*hookup.Entry, headers []string, fullOnly bool) [][]string {
	var rows [][]string
	for _, pn := range entryKeys(entries) {
		entry := entries[pn]
		for _, key := range entry.Keys() {
			if fullOnly && !entry.FullyConnected[key] {
				continue
			}
			rows = append(rows, hookupRow(snap, entry, key, headers))
		}
	}
	return rows
}

// hookupRow places each chain part under its part-type column and fills the
// timing columns from the chain's validity window.
func hookupRow(snap *active.Snapshot, entry *hookup.Entry, key string, headers []string) []string {
	byType := make(map[string]string)
	for _, conn := range entry.Hookup[key] {
		for _, pn := range []string{conn.UpstreamPart, conn.DownstreamPart} {
			if p, ok := snap.Parts[pn]; ok {
				byType[p.PartType] = pn
			}
		}
	}
	if len(entry.Hookup[key]) == 0 {
		byType[entry.PartType] = entry.PN
	}

	timing := entry.Timing[key]
	row := make([]string, 0, len(headers))
	for _, col := range headers {
		switch col {
		case "part":
			row = append(row, entry.PN)
		case "pol-port":
			row = append(row, key)
		case "start":
			row = append(row, cmtime.Display(timing.Start))
		case "stop":
			row = append(row, cmtime.DisplayStop(timing.Stop))
		default:
			row = append(row, byType[col])
		}
	}
	return row
}

// Notes collects the annotations of every part appearing in the resolved
// chains, keyed by part number. The snapshot's info index must be loaded.
func Notes(snap *active.Snapshot, entries map[string]*hookup.Entry) map[string][]model.PartInfo {
	notes := make(map[string][]model.PartInfo)
	for _, entry := range entries {
		for _, key := range entry.Keys() {
			for _, conn := range entry.Hookup[key] {
				for _, pn := range []string{conn.UpstreamPart, conn.DownstreamPart} {
					if _, done := notes[pn]; done {
						continue
					}
					if info, ok := snap.Info[pn]; ok {
						notes[pn] = info
					}
				}
			}
		}
	}
	return notes
}

// RenderApriori renders the active apriori statuses in NP key order. The
// snapshot's apriori index must be loaded.
func RenderApriori(snap *active.Snapshot) string {
	antennas := make([]string, 0, len(snap.Apriori))
	for antenna := range snap.Apriori {
		antennas = append(antennas, antenna)
	}

	tbl := newTable([]string{"Antenna", "Status", "Start", "Stop"})
	for _, antenna := range model.SortKeys(antennas, model.OrderNP) {
		status := snap.Apriori[antenna]
		tbl.Row(status.Antenna, status.Status, cmtime.Display(status.Start), cmtime.DisplayStop(status.Stop))
	}
	return tbl.String()
}

func entryKeys(entries map[string]*hookup.Entry) []string {
	pns := make([]string, 0, len(entries))
	for pn := range entries {
		pns = append(pns, pn)
	}
	return model.SortKeys(pns, model.OrderNP)
}

func newTable(headers []string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...)
}

func writeCSV(headers []string, rows [][]string) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(headers); err != nil {
		return "", fmt.Errorf("dossier: write csv header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("dossier: write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("dossier: flush csv: %w", err)
	}
	return buf.String(), nil
}
