package cloud

import (
	"context"
	"os"
	"path"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	compute "google.golang.org/api/compute/v1"
	"google.golang.org/api/option"

	"github.com/metal-toolbox/gcesync/internal/app"
	"github.com/metal-toolbox/gcesync/internal/metrics"
	"github.com/metal-toolbox/gcesync/internal/model"
)

const (
	pkgName = "internal/cloud"
)

// GCE lists the instances of a Google Compute Engine project.
type GCE struct {
	project string
	zones   []string
	service *compute.Service
	logger  *logrus.Logger
}

// NewGCE returns a GCE provider authenticated with the service account JSON key in the configuration.
func NewGCE(ctx context.Context, cfg *app.GCEOptions, logger *logrus.Logger) (*GCE, error) {
	keyJSON, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, errors.Wrap(app.ErrConfig, "gce credentials file: "+err.Error())
	}

	creds, err := google.CredentialsFromJSON(ctx, keyJSON, compute.ComputeReadonlyScope)
	if err != nil {
		return nil, errors.Wrap(app.ErrConfig, "gce credentials: "+err.Error())
	}

	project := cfg.Project
	if project == "" {
		project = creds.ProjectID
	}

	if project == "" {
		return nil, errors.Wrap(app.ErrConfig, "gce.project not defined and not present in the credentials file")
	}

	// wrap the OAuth token transport around the otel http client to collect telemetry
	httpClient := oauth2.NewClient(
		context.WithValue(ctx, oauth2.HTTPClient, otelhttp.DefaultClient),
		creds.TokenSource,
	)

	return newGCE(ctx, project, cfg.Zones, logger, option.WithHTTPClient(httpClient))
}

func newGCE(ctx context.Context, project string, zones []string, logger *logrus.Logger, opts ...option.ClientOption) (*GCE, error) {
	service, err := compute.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(ErrCloudQuery, "compute client: "+err.Error())
	}

	return &GCE{
		project: project,
		zones:   zones,
		service: service,
		logger:  logger,
	}, nil
}

// ListInstances returns the instances in the configured zones, or in all zones when none are configured.
func (g *GCE) ListInstances(ctx context.Context) ([]model.Instance, error) {
	ctx, span := otel.Tracer(pkgName).Start(ctx, "GCE.ListInstances")
	defer span.End()

	instances := []model.Instance{}

	collect := func(items []*compute.Instance) {
		for _, item := range items {
			instances = append(instances, fromComputeInstance(item))
		}
	}

	if len(g.zones) == 0 {
		err := g.service.Instances.AggregatedList(g.project).Pages(ctx, func(page *compute.InstanceAggregatedList) error {
			scopes := maps.Keys(page.Items)
			slices.Sort(scopes)

			for _, scope := range scopes {
				collect(page.Items[scope].Instances)
			}

			return nil
		})
		if err != nil {
			return nil, errors.Wrap(ErrCloudQuery, "project "+g.project+": "+err.Error())
		}
	} else {
		for _, zone := range g.zones {
			err := g.service.Instances.List(g.project, zone).Pages(ctx, func(page *compute.InstanceList) error {
				collect(page.Items)
				return nil
			})
			if err != nil {
				return nil, errors.Wrap(ErrCloudQuery, "project "+g.project+" zone "+zone+": "+err.Error())
			}
		}
	}

	span.SetAttributes(attribute.Int("count", len(instances)))
	recordListed(model.SourceGCE, instances)

	g.logger.WithFields(logrus.Fields{
		"project":   g.project,
		"instances": len(instances),
	}).Debug("listed GCE instances")

	return instances, nil
}

func fromComputeInstance(i *compute.Instance) model.Instance {
	instance := model.Instance{
		Name:   i.Name,
		State:  strings.ToLower(i.Status),
		Labels: i.Labels,
	}

	// the zone is returned as a resource URL
	if i.Zone != "" {
		instance.Zone = path.Base(i.Zone)
	}

	for _, nic := range i.NetworkInterfaces {
		for _, accessConfig := range nic.AccessConfigs {
			if accessConfig.NatIP != "" {
				instance.PublicIPs = append(instance.PublicIPs, accessConfig.NatIP)
			}
		}
	}

	return instance
}

func recordListed(source string, instances []model.Instance) {
	metrics.InstancesListed.Reset()

	for idx := range instances {
		metrics.InstancesListed.WithLabelValues(source, instances[idx].State).Inc()
	}
}
