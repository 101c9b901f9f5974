package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"github.com/wzshiming/ctc"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"github.com/metal-toolbox/gcesync/internal/model"
	"github.com/metal-toolbox/gcesync/internal/probe"
	"github.com/metal-toolbox/gcesync/internal/reconcile"
)

// Format is an output format for reports.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"

	bannerBar = "================="
)

var (
	ErrFormat = errors.New("unsupported report format")
	ErrRender = errors.New("error rendering report")
)

// Formats returns the supported output formats.
func Formats() []string {
	return []string{string(FormatText), string(FormatJSON), string(FormatYAML)}
}

// Renderer writes plans and listings to an output in the configured format.
type Renderer struct {
	w      io.Writer
	format Format
	color  bool
}

// New returns a Renderer, color applies to the text format banners only.
func New(w io.Writer, format string, color bool) (*Renderer, error) {
	switch f := Format(format); f {
	case FormatText, FormatJSON, FormatYAML:
		return &Renderer{w: w, format: f, color: color}, nil
	default:
		return nil, errors.Wrap(ErrFormat, format)
	}
}

// Plan renders the plan, item statuses reflect any changes applied.
func (r *Renderer) Plan(plan *reconcile.Plan) error {
	doc, err := newPlanDocument(plan)
	if err != nil {
		return err
	}

	if r.format != FormatText {
		return r.encode(doc)
	}

	if plan.Mode == model.ModeReadOnly {
		fmt.Fprintln(r.w, "Read-only")
	}

	if plan.Mode.PlansImports() {
		r.banner(
			fmt.Sprintf("Total of %d GCE servers to import (import=%t)", len(doc.Imports), plan.Mode.Applies()),
			ctc.ForegroundGreen,
		)

		tw := r.table(table.Row{"ADDRESS", "GROUPS", "TYPE", "STATUS"})
		for idx := range doc.Imports {
			row := &doc.Imports[idx]
			tw.AppendRow(table.Row{row.Address, row.ServerGroups, row.Type, statusString(row.Status, row.Error)})
		}

		tw.Render()
	}

	if plan.Mode.PlansDeletes() {
		r.banner(
			fmt.Sprintf("Total of %d servers on Cyberwatch to delete (delete=%t)", len(doc.Deletes), plan.Mode.Applies()),
			ctc.ForegroundRed,
		)

		tw := r.table(table.Row{"HOSTNAME", "REMOTE IP", "ID", "STATUS"})
		for idx := range doc.Deletes {
			row := &doc.Deletes[idx]
			tw.AppendRow(table.Row{row.Hostname, row.RemoteIP, row.ID, statusString(row.Status, row.Error)})
		}

		tw.Render()
	}

	if len(doc.Unreachable) > 0 {
		r.banner(fmt.Sprintf("Total of %d GCE servers with no port to connect", len(doc.Unreachable)), ctc.ForegroundYellow)

		tw := r.table(table.Row{"NAME", "ADDRESS", "ZONE", "STATE"})
		for _, row := range doc.Unreachable {
			tw.AppendRow(table.Row{row.Name, row.Address, row.Zone, row.State})
		}

		tw.Render()
	}

	return nil
}

// Instances renders a cloud inventory listing.
func (r *Renderer) Instances(instances []model.Instance) error {
	rows := make([]InstanceRow, 0, len(instances))

	for idx := range instances {
		row := InstanceRow{}
		if err := copier.Copy(&row, &instances[idx]); err != nil {
			return errors.Wrap(ErrRender, err.Error())
		}

		row.Address = instances[idx].PrimaryIP()
		rows = append(rows, row)
	}

	if r.format != FormatText {
		return r.encode(rows)
	}

	tw := r.table(table.Row{"NAME", "ADDRESS", "ZONE", "STATE", "LABELS"})
	for _, row := range rows {
		tw.AppendRow(table.Row{row.Name, row.Address, row.Zone, row.State, labelString(row.Labels)})
	}

	tw.AppendFooter(table.Row{"", "", "", "TOTAL", len(rows)})
	tw.Render()

	return nil
}

// RemoteAccesses renders an asset store remote access listing, credentials are left out.
func (r *Renderer) RemoteAccesses(remoteAccesses []model.RemoteAccess) error {
	rows := make([]RemoteAccessRow, 0, len(remoteAccesses))

	for idx := range remoteAccesses {
		row := RemoteAccessRow{}
		if err := copier.Copy(&row, &remoteAccesses[idx]); err != nil {
			return errors.Wrap(ErrRender, err.Error())
		}

		rows = append(rows, row)
	}

	if r.format != FormatText {
		return r.encode(rows)
	}

	tw := r.table(table.Row{"ID", "ADDRESS", "PORT", "TYPE", "SERVER ID"})
	for _, row := range rows {
		tw.AppendRow(table.Row{row.ID, row.Address, row.Port, row.Type, row.ServerID})
	}

	tw.AppendFooter(table.Row{"", "", "", "TOTAL", len(rows)})
	tw.Render()

	return nil
}

// Servers renders an asset store server listing.
func (r *Renderer) Servers(servers []model.Server) error {
	rows := make([]ServerRow, 0, len(servers))

	for idx := range servers {
		row, err := newServerRow(&servers[idx])
		if err != nil {
			return err
		}

		rows = append(rows, row)
	}

	if r.format != FormatText {
		return r.encode(rows)
	}

	tw := r.table(table.Row{"ID", "HOSTNAME", "REMOTE IP", "GROUPS"})
	for _, row := range rows {
		tw.AppendRow(table.Row{row.ID, row.Hostname, row.RemoteIP, strings.Join(row.Groups, model.ServerGroupsSeparator)})
	}

	tw.AppendFooter(table.Row{"", "", "TOTAL", len(rows)})
	tw.Render()

	return nil
}

// Probe renders the classification of a host.
func (r *Renderer) Probe(host string, method probe.Method) error {
	row := ProbeRow{Address: host, Method: method}
	if accessType, ok := method.AccessType(); ok {
		row.Type = accessType
	}

	if r.format != FormatText {
		return r.encode(row)
	}

	tw := r.table(table.Row{"ADDRESS", "METHOD", "TYPE"})
	tw.AppendRow(table.Row{row.Address, row.Method, row.Type})
	tw.Render()

	return nil
}

func (r *Renderer) encode(v any) error {
	switch r.format {
	case FormatJSON:
		enc := json.NewEncoder(r.w)
		enc.SetIndent("", "  ")

		if err := enc.Encode(v); err != nil {
			return errors.Wrap(ErrRender, err.Error())
		}
	case FormatYAML:
		enc := yaml.NewEncoder(r.w)
		enc.SetIndent(2)

		if err := enc.Encode(v); err != nil {
			return errors.Wrap(ErrRender, err.Error())
		}

		if err := enc.Close(); err != nil {
			return errors.Wrap(ErrRender, err.Error())
		}
	default:
		return errors.Wrap(ErrFormat, string(r.format))
	}

	return nil
}

func (r *Renderer) banner(text string, color ctc.Color) {
	line := bannerBar + " " + text + " " + bannerBar
	if r.color {
		line = fmt.Sprint(color, line, ctc.Reset)
	}

	fmt.Fprintf(r.w, "\n%s\n", line)
}

func (r *Renderer) table(header table.Row) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(r.w)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(header)

	return tw
}

func statusString(status reconcile.Status, errMsg string) string {
	if errMsg == "" {
		return string(status)
	}

	return string(status) + ": " + errMsg
}

func labelString(labels map[string]string) string {
	pairs := make([]string, 0, len(labels))
	for k, v := range labels {
		pairs = append(pairs, k+"="+v)
	}

	slices.Sort(pairs)

	return strings.Join(pairs, ",")
}
