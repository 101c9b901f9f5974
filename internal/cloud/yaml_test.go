package cloud

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const inventoryYAML = `
instances:
  - name: web-1
    state: running
    zone: us-central1-a
    public_ips: [203.0.113.10]
    labels:
      group: web
  - name: batch-1
    state: terminated
    zone: us-central1-b
`

func TestYamlListInstances(t *testing.T) {
	tests := []struct {
		name          string
		contents      string
		noFile        bool
		wantCount     int
		expectedError error
	}{
		{"inventory with instances", inventoryYAML, false, 2, nil},
		{"empty inventory", "", false, 0, nil},
		{"bad yaml", "instances: {", false, 0, ErrInventoryFile},
		{"missing file", "", true, 0, ErrInventoryFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "inventory.yml")
			if !tt.noFile {
				require.NoError(t, os.WriteFile(path, []byte(tt.contents), 0o600))
			}

			got, err := NewYamlProvider(path, logrus.New()).ListInstances(context.Background())
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}

			require.NoError(t, err)
			assert.Len(t, got, tt.wantCount)
		})
	}
}

func TestYamlListInstancesFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.yml")
	require.NoError(t, os.WriteFile(path, []byte(inventoryYAML), 0o600))

	got, err := NewYamlProvider(path, logrus.New()).ListInstances(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "web-1", got[0].Name)
	assert.True(t, got[0].Running())
	assert.Equal(t, "203.0.113.10", got[0].PrimaryIP())
	assert.Equal(t, "web", got[0].Labels["group"])
	assert.Equal(t, "", got[1].PrimaryIP())
}
