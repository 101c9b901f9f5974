package reconcile

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"github.com/metal-toolbox/gcesync/internal/metrics"
)

// Apply writes the planned imports and deletes to the asset store when the plan mode applies changes.
//
// Imports are created before deletes. The first store error stops the run, the failed item is marked
// and the remaining items are left planned.
func (r *Reconciler) Apply(ctx context.Context, plan *Plan) error {
	if !plan.Mode.Applies() {
		return nil
	}

	ctx, span := otel.Tracer(pkgName).Start(ctx, "Reconciler.Apply")
	defer span.End()

	for _, imp := range plan.Imports {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(ErrApply, err.Error())
		}

		created, err := r.repository.CreateRemoteAccess(ctx, &imp.RemoteAccess)
		if err != nil {
			imp.Status = StatusFailed
			imp.Error = err.Error()
			metrics.ActionCounter.WithLabelValues(actionImport, string(StatusFailed)).Inc()

			return errors.Wrap(ErrApply, "import "+imp.RemoteAccess.Address+": "+err.Error())
		}

		imp.Status = StatusImported
		if created != nil {
			imp.RemoteAccess.ID = created.ID
		}

		metrics.ActionCounter.WithLabelValues(actionImport, string(StatusImported)).Inc()

		r.logger.WithFields(logrus.Fields{
			"instance": imp.Instance,
			"address":  imp.RemoteAccess.Address,
			"type":     imp.RemoteAccess.Type,
		}).Info("remote access imported")
	}

	for _, del := range plan.Deletes {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(ErrApply, err.Error())
		}

		if err := r.repository.DeleteServer(ctx, del.Server.ID); err != nil {
			del.Status = StatusFailed
			del.Error = err.Error()
			metrics.ActionCounter.WithLabelValues(actionDelete, string(StatusFailed)).Inc()

			return errors.Wrap(ErrApply, "delete server "+strconv.Itoa(del.Server.ID)+": "+err.Error())
		}

		del.Status = StatusDeleted
		metrics.ActionCounter.WithLabelValues(actionDelete, string(StatusDeleted)).Inc()

		r.logger.WithFields(logrus.Fields{
			"hostname":  del.Server.Hostname,
			"remote_ip": del.Server.RemoteIP,
			"id":        del.Server.ID,
		}).Info("server deleted")
	}

	return nil
}
