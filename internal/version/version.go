package version

import (
	"runtime"
	rdebug "runtime/debug"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GitCommit         string
	GitBranch         string
	GitSummary        string
	BuildDate         string
	AppVersion        string
	ComputeAPIVersion = dependencyVersion("google.golang.org/api")
	GoVersion         = runtime.Version()
)

type Version struct {
	GitCommit         string `json:"git_commit"`
	GitBranch         string `json:"git_branch"`
	GitSummary        string `json:"git_summary"`
	BuildDate         string `json:"build_date"`
	AppVersion        string `json:"app_version"`
	GoVersion         string `json:"go_version"`
	ComputeAPIVersion string `json:"compute_api_version"`
}

func Current() Version {
	return Version{
		GitBranch:         GitBranch,
		GitCommit:         GitCommit,
		GitSummary:        GitSummary,
		BuildDate:         BuildDate,
		AppVersion:        AppVersion,
		GoVersion:         GoVersion,
		ComputeAPIVersion: ComputeAPIVersion,
	}
}

// UserAgent is sent on requests to the asset store API.
func UserAgent() string {
	if AppVersion == "" {
		return "gcesync/dev"
	}

	return "gcesync/" + AppVersion
}

func ExportBuildInfoMetric() {
	buildInfo := promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gcesync_build_info",
			Help: "A metric with a constant '1' value, labeled by branch, commit, summary, builddate, version, Go version from which gcesync was built.",
		},
		[]string{"branch", "commit", "summary", "builddate", "version", "goversion", "computeAPIVersion"},
	)

	buildInfo.WithLabelValues(GitBranch, GitCommit, GitSummary, BuildDate, AppVersion, GoVersion, ComputeAPIVersion).Set(1)
}

func dependencyVersion(path string) string {
	buildInfo, ok := rdebug.ReadBuildInfo()
	if !ok {
		return ""
	}

	for _, d := range buildInfo.Deps {
		if strings.HasPrefix(d.Path, path) {
			return d.Version
		}
	}

	return ""
}
