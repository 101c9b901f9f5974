package cloud

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	compute "google.golang.org/api/compute/v1"
	"google.golang.org/api/option"

	"github.com/metal-toolbox/gcesync/internal/model"
)

const aggregatedPage1 = `{
  "items": {
    "zones/us-central1-a": {
      "instances": [
        {
          "name": "web-1",
          "status": "RUNNING",
          "zone": "https://www.googleapis.com/compute/v1/projects/quickstart/zones/us-central1-a",
          "labels": {"group": "web"},
          "networkInterfaces": [{"accessConfigs": [{"natIP": "203.0.113.10"}]}]
        }
      ]
    },
    "zones/asia-east1-a": {
      "warning": {"code": "NO_RESULTS_ON_PAGE"}
    }
  },
  "nextPageToken": "page-2"
}`

const aggregatedPage2 = `{
  "items": {
    "zones/europe-west1-b": {
      "instances": [
        {
          "name": "win-1",
          "status": "TERMINATED",
          "zone": "https://www.googleapis.com/compute/v1/projects/quickstart/zones/europe-west1-b",
          "networkInterfaces": [{"accessConfigs": [{}]}]
        }
      ]
    }
  }
}`

const zoneList = `{
  "items": [
    {
      "name": "db-1",
      "status": "RUNNING",
      "zone": "https://www.googleapis.com/compute/v1/projects/quickstart/zones/us-east1-b",
      "networkInterfaces": [
        {"accessConfigs": [{"natIP": "198.51.100.1"}]},
        {"accessConfigs": [{"natIP": "198.51.100.2"}]}
      ]
    }
  ]
}`

func newTestGCE(t *testing.T, zones []string, handler http.HandlerFunc) *GCE {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g, err := newGCE(
		context.Background(),
		"quickstart",
		zones,
		logrus.New(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)

	return g
}

func TestGCEListInstancesAggregated(t *testing.T) {
	g := newTestGCE(t, nil, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "projects/quickstart/aggregated/instances"), r.URL.Path)

		w.Header().Set("Content-Type", "application/json")

		if r.URL.Query().Get("pageToken") == "page-2" {
			_, _ = w.Write([]byte(aggregatedPage2))
			return
		}

		_, _ = w.Write([]byte(aggregatedPage1))
	})

	got, err := g.ListInstances(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, model.Instance{
		Name:      "web-1",
		State:     "running",
		PublicIPs: []string{"203.0.113.10"},
		Zone:      "us-central1-a",
		Labels:    map[string]string{"group": "web"},
	}, got[0])

	assert.Equal(t, "win-1", got[1].Name)
	assert.Equal(t, "terminated", got[1].State)
	assert.Equal(t, "europe-west1-b", got[1].Zone)
	assert.Empty(t, got[1].PublicIPs)
}

func TestGCEListInstancesByZone(t *testing.T) {
	g := newTestGCE(t, []string{"us-east1-b"}, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "projects/quickstart/zones/us-east1-b/instances"), r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(zoneList))
	})

	got, err := g.ListInstances(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"198.51.100.1", "198.51.100.2"}, got[0].PublicIPs)
	assert.Equal(t, "198.51.100.1", got[0].PrimaryIP())
}

func TestGCEListInstancesError(t *testing.T) {
	g := newTestGCE(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"Required 'compute.instances.list' permission"}}`))
	})

	_, err := g.ListInstances(context.Background())
	require.ErrorIs(t, err, ErrCloudQuery)
	assert.Contains(t, err.Error(), "compute.instances.list")
}

func TestFromComputeInstance(t *testing.T) {
	got := fromComputeInstance(&compute.Instance{Name: "bare", Status: "STAGING"})

	assert.Equal(t, "bare", got.Name)
	assert.Equal(t, "staging", got.State)
	assert.Equal(t, "", got.Zone)
	assert.Nil(t, got.PublicIPs)
}
