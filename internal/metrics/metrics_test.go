package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordSubmission(t *testing.T) {
	before := testutil.ToFloat64(submissionsTotal.WithLabelValues("rnc", ResultOK))
	RecordSubmission("rnc", ResultOK)
	assert.Equal(t, before+1, testutil.ToFloat64(submissionsTotal.WithLabelValues("rnc", ResultOK)))
}

func TestRecordMirrorFailure(t *testing.T) {
	before := testutil.ToFloat64(mirrorFailuresTotal.WithLabelValues("upsert_report"))
	RecordMirrorFailure("upsert_report")
	assert.Equal(t, before+1, testutil.ToFloat64(mirrorFailuresTotal.WithLabelValues("upsert_report")))
}

func TestRecordAPIRequest(t *testing.T) {
	RecordAPIRequest("GET", "/forms", 200, 0.01)
	assert.Equal(t, 1.0, testutil.ToFloat64(apiRequestsTotal.WithLabelValues("GET", "/forms", "200")))
}
