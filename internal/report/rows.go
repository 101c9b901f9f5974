package report

import (
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"

	"github.com/metal-toolbox/gcesync/internal/model"
	"github.com/metal-toolbox/gcesync/internal/probe"
	"github.com/metal-toolbox/gcesync/internal/reconcile"
)

// Rows are projections of the model types without credentials.

type ImportRow struct {
	Instance     string           `json:"instance" yaml:"instance"`
	Address      string           `json:"address" yaml:"address"`
	Port         int              `json:"port" yaml:"port"`
	Type         model.AccessType `json:"type" yaml:"type"`
	ServerGroups string           `json:"server_groups" yaml:"server_groups"`
	ID           int              `json:"id,omitempty" yaml:"id,omitempty"`
	Status       reconcile.Status `json:"status" yaml:"status"`
	Error        string           `json:"error,omitempty" yaml:"error,omitempty"`
}

type DeleteRow struct {
	ID       int              `json:"id" yaml:"id"`
	Hostname string           `json:"hostname" yaml:"hostname"`
	RemoteIP string           `json:"remote_ip" yaml:"remote_ip"`
	Groups   []string         `json:"groups" yaml:"groups"`
	Status   reconcile.Status `json:"status" yaml:"status"`
	Error    string           `json:"error,omitempty" yaml:"error,omitempty"`
}

type InstanceRow struct {
	Name    string            `json:"name" yaml:"name"`
	Address string            `json:"address" yaml:"address"`
	Zone    string            `json:"zone" yaml:"zone"`
	State   string            `json:"state" yaml:"state"`
	Labels  map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
}

type RemoteAccessRow struct {
	ID       int              `json:"id" yaml:"id"`
	Address  string           `json:"address" yaml:"address"`
	Port     int              `json:"port" yaml:"port"`
	Type     model.AccessType `json:"type" yaml:"type"`
	ServerID int              `json:"server_id,omitempty" yaml:"server_id,omitempty"`
}

type ServerRow struct {
	ID       int      `json:"id" yaml:"id"`
	Hostname string   `json:"hostname" yaml:"hostname"`
	RemoteIP string   `json:"remote_ip" yaml:"remote_ip"`
	Groups   []string `json:"groups" yaml:"groups" copier:"-"`
}

type ProbeRow struct {
	Address string           `json:"address" yaml:"address"`
	Method  probe.Method     `json:"method" yaml:"method"`
	Type    model.AccessType `json:"type,omitempty" yaml:"type,omitempty"`
}

// PlanDocument is the structured form of a plan.
//
// Applied is true when the mode writes changes and every planned item was written.
type PlanDocument struct {
	Mode        model.Mode    `json:"mode" yaml:"mode"`
	Applied     bool          `json:"applied" yaml:"applied"`
	Imports     []ImportRow   `json:"imports" yaml:"imports"`
	Deletes     []DeleteRow   `json:"deletes" yaml:"deletes"`
	Unreachable []InstanceRow `json:"unreachable" yaml:"unreachable"`
}

func newPlanDocument(plan *reconcile.Plan) (*PlanDocument, error) {
	doc := &PlanDocument{
		Mode:        plan.Mode,
		Applied:     applied(plan),
		Imports:     make([]ImportRow, 0, len(plan.Imports)),
		Deletes:     make([]DeleteRow, 0, len(plan.Deletes)),
		Unreachable: make([]InstanceRow, 0, len(plan.Unreachable)),
	}

	for _, imp := range plan.Imports {
		row := ImportRow{}

		// the remote access first, the import status fields take precedence
		if err := copier.Copy(&row, &imp.RemoteAccess); err != nil {
			return nil, errors.Wrap(ErrRender, err.Error())
		}

		if err := copier.Copy(&row, imp); err != nil {
			return nil, errors.Wrap(ErrRender, err.Error())
		}

		doc.Imports = append(doc.Imports, row)
	}

	for _, del := range plan.Deletes {
		server, err := newServerRow(&del.Server)
		if err != nil {
			return nil, err
		}

		doc.Deletes = append(doc.Deletes, DeleteRow{
			ID:       server.ID,
			Hostname: server.Hostname,
			RemoteIP: server.RemoteIP,
			Groups:   server.Groups,
			Status:   del.Status,
			Error:    del.Error,
		})
	}

	for idx := range plan.Unreachable {
		row := InstanceRow{}
		if err := copier.Copy(&row, &plan.Unreachable[idx]); err != nil {
			return nil, errors.Wrap(ErrRender, err.Error())
		}

		row.Address = plan.Unreachable[idx].PrimaryIP()
		doc.Unreachable = append(doc.Unreachable, row)
	}

	return doc, nil
}

func newServerRow(server *model.Server) (ServerRow, error) {
	row := ServerRow{Groups: make([]string, 0, len(server.Groups))}

	if err := copier.Copy(&row, server); err != nil {
		return row, errors.Wrap(ErrRender, err.Error())
	}

	for _, g := range server.Groups {
		row.Groups = append(row.Groups, g.Name)
	}

	return row, nil
}

func applied(plan *reconcile.Plan) bool {
	if !plan.Mode.Applies() {
		return false
	}

	for _, imp := range plan.Imports {
		if imp.Status != reconcile.StatusImported {
			return false
		}
	}

	for _, del := range plan.Deletes {
		if del.Status != reconcile.StatusDeleted {
			return false
		}
	}

	return true
}
