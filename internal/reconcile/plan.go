package reconcile

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/exp/slices"

	"github.com/metal-toolbox/gcesync/internal/cloud"
	"github.com/metal-toolbox/gcesync/internal/metrics"
	"github.com/metal-toolbox/gcesync/internal/model"
	"github.com/metal-toolbox/gcesync/internal/probe"
	"github.com/metal-toolbox/gcesync/internal/store"
)

const (
	pkgName = "internal/reconcile"

	actionImport = "import"
	actionDelete = "delete"
)

var (
	ErrPlan  = errors.New("error planning changes")
	ErrApply = errors.New("error applying changes")
)

// Status is the outcome of a planned import or delete.
type Status string

const (
	StatusPlanned  Status = "planned"
	StatusImported Status = "imported"
	StatusDeleted  Status = "deleted"
	StatusFailed   Status = "failed"
)

// Import is a remote access to be created for an instance missing from the asset store.
type Import struct {
	Instance     string
	RemoteAccess model.RemoteAccess
	Status       Status
	Error        string
}

// Delete is a server record to be removed as its instance is gone.
type Delete struct {
	Server model.Server
	Status Status
	Error  string
}

// Plan is the set of changes computed for a run.
type Plan struct {
	Mode    model.Mode
	Imports []*Import
	Deletes []*Delete
	// Unreachable are running instances missing from the asset store with no remote access port open.
	Unreachable []model.Instance
}

// Reconciler diffs the cloud inventory against the asset store records.
type Reconciler struct {
	provider   cloud.Provider
	repository store.Repository
	classifier probe.Classifier
	templates  *Templates
	// managedGroup is the asset group of the servers this tool imported.
	managedGroup string
	logger       *logrus.Entry
}

// New returns a Reconciler, templates may be nil when the mode never plans imports.
func New(
	provider cloud.Provider,
	repository store.Repository,
	classifier probe.Classifier,
	templates *Templates,
	managedGroup string,
	logger *logrus.Entry,
) *Reconciler {
	if managedGroup == "" {
		managedGroup = model.DefaultManagedGroup
	}

	return &Reconciler{
		provider:     provider,
		repository:   repository,
		classifier:   classifier,
		templates:    templates,
		managedGroup: managedGroup,
		logger:       logger,
	}
}

// Plan lists both inventories and computes the imports and deletes for the mode.
func (r *Reconciler) Plan(ctx context.Context, mode model.Mode) (*Plan, error) {
	ctx, span := otel.Tracer(pkgName).Start(ctx, "Reconciler.Plan")
	defer span.End()

	span.SetAttributes(attribute.String("mode", string(mode)))

	if mode.PlansImports() && r.templates == nil {
		return nil, errors.Wrap(ErrPlan, "import templates required for mode "+string(mode))
	}

	if err := r.repository.Ping(ctx); err != nil {
		return nil, err
	}

	var remoteAccesses []model.RemoteAccess

	if mode.PlansImports() {
		var err error

		remoteAccesses, err = r.repository.RemoteAccesses(ctx)
		if err != nil {
			return nil, err
		}
	}

	instances, err := r.provider.ListInstances(ctx)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Mode: mode, Imports: []*Import{}, Deletes: []*Delete{}, Unreachable: []model.Instance{}}

	if mode.PlansImports() {
		plan.Imports, plan.Unreachable = r.PlanImports(ctx, remoteAccesses, instances)
	}

	if mode.PlansDeletes() {
		servers, err := r.repository.Servers(ctx)
		if err != nil {
			return nil, err
		}

		plan.Deletes = PlanDeletes(servers, instances, r.managedGroup)
	}

	metrics.ActionCounter.WithLabelValues(actionImport, string(StatusPlanned)).Add(float64(len(plan.Imports)))
	metrics.ActionCounter.WithLabelValues(actionDelete, string(StatusPlanned)).Add(float64(len(plan.Deletes)))

	r.logger.WithFields(logrus.Fields{
		"mode":        mode,
		"instances":   len(instances),
		"imports":     len(plan.Imports),
		"deletes":     len(plan.Deletes),
		"unreachable": len(plan.Unreachable),
	}).Info("plan computed")

	return plan, nil
}

// PlanImports returns the remote accesses to create for running instances whose primary IP
// has no remote access, and the instances that could not be classified.
func (r *Reconciler) PlanImports(ctx context.Context, remoteAccesses []model.RemoteAccess, instances []model.Instance) ([]*Import, []model.Instance) {
	known := make(map[string]struct{}, len(remoteAccesses))
	for idx := range remoteAccesses {
		known[remoteAccesses[idx].Address] = struct{}{}
	}

	imports := []*Import{}
	unreachable := []model.Instance{}

	for idx := range instances {
		instance := &instances[idx]

		address := instance.PrimaryIP()
		if !instance.Running() || address == "" {
			continue
		}

		// one record per address
		if _, exists := known[address]; exists {
			continue
		}

		known[address] = struct{}{}

		method := r.classifier.Classify(ctx, address)

		remoteAccess, ok := r.templates.RemoteAccess(method, address, r.templates.ServerGroups(instance))
		if !ok {
			r.logger.WithFields(logrus.Fields{
				"instance": instance.Name,
				"address":  address,
			}).Warn("no port to connect")

			unreachable = append(unreachable, *instance)

			continue
		}

		imports = append(imports, &Import{
			Instance:     instance.Name,
			RemoteAccess: remoteAccess,
			Status:       StatusPlanned,
		})
	}

	slices.SortFunc(imports, func(a, b *Import) int {
		return strings.Compare(a.RemoteAccess.Address, b.RemoteAccess.Address)
	})

	slices.SortFunc(unreachable, func(a, b model.Instance) int {
		return strings.Compare(a.PrimaryIP(), b.PrimaryIP())
	})

	return imports, unreachable
}

// PlanDeletes returns the servers in the managed group whose remote IP is not the primary IP of any instance.
//
// Instances in every state count as present, a stopped instance keeps its record.
func PlanDeletes(servers []model.Server, instances []model.Instance, managedGroup string) []*Delete {
	present := make(map[string]struct{}, len(instances))

	for idx := range instances {
		if address := instances[idx].PrimaryIP(); address != "" {
			present[address] = struct{}{}
		}
	}

	deletes := []*Delete{}
	planned := map[int]struct{}{}

	for idx := range servers {
		server := &servers[idx]

		if _, exists := present[server.RemoteIP]; exists {
			continue
		}

		if !server.InGroup(managedGroup) {
			continue
		}

		if _, exists := planned[server.ID]; exists {
			continue
		}

		planned[server.ID] = struct{}{}

		deletes = append(deletes, &Delete{Server: *server, Status: StatusPlanned})
	}

	slices.SortFunc(deletes, func(a, b *Delete) int {
		if c := strings.Compare(a.Server.RemoteIP, b.Server.RemoteIP); c != 0 {
			return c
		}

		return a.Server.ID - b.Server.ID
	})

	return deletes
}
