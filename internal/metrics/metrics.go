package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldreport_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fieldreport_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	submissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldreport_submissions_total",
			Help: "Form submissions by form type and result",
		},
		[]string{"form_type", "result"},
	)

	mirrorFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldreport_mirror_failures_total",
			Help: "Document mirror writes that failed, by operation",
		},
		[]string{"operation"},
	)

	uploadedBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fieldreport_uploaded_bytes_total",
			Help: "Bytes written to the blob store by submissions",
		},
	)

	backupRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldreport_backup_runs_total",
			Help: "Scheduled backup runs by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(apiRequestsTotal)
	prometheus.MustRegister(apiRequestDuration)
	prometheus.MustRegister(submissionsTotal)
	prometheus.MustRegister(mirrorFailuresTotal)
	prometheus.MustRegister(uploadedBytesTotal)
	prometheus.MustRegister(backupRunsTotal)
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordAPIRequest(method, path string, status int, seconds float64) {
	apiRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	apiRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

// Submission results.
const (
	ResultOK         = "ok"
	ResultDraft      = "draft"
	ResultInvalid    = "invalid"
	ResultUploadFail = "upload_failed"
	ResultError      = "error"
)

func RecordSubmission(formType, result string) {
	submissionsTotal.WithLabelValues(formType, result).Inc()
}

func RecordMirrorFailure(operation string) {
	mirrorFailuresTotal.WithLabelValues(operation).Inc()
}

func RecordUpload(size int64) {
	uploadedBytesTotal.Add(float64(size))
}

func RecordBackup(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	backupRunsTotal.WithLabelValues(result).Inc()
}
