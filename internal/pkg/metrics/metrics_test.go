package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordJobFinished(t *testing.T) {
	completed := testutil.ToFloat64(jobsTotal.WithLabelValues("completed"))
	failed := testutil.ToFloat64(jobsTotal.WithLabelValues("failed"))

	RecordJobFinished("completed")
	RecordJobFinished("completed")
	RecordJobFinished("failed")

	assert.Equal(t, completed+2, testutil.ToFloat64(jobsTotal.WithLabelValues("completed")))
	assert.Equal(t, failed+1, testutil.ToFloat64(jobsTotal.WithLabelValues("failed")))
}

func TestRecordImage(t *testing.T) {
	ok := testutil.ToFloat64(imagesProcessed.WithLabelValues("success"))
	bad := testutil.ToFloat64(imagesProcessed.WithLabelValues("failure"))

	RecordImage(true, 20*time.Millisecond)
	RecordImage(false, time.Millisecond)

	assert.Equal(t, ok+1, testutil.ToFloat64(imagesProcessed.WithLabelValues("success")))
	assert.Equal(t, bad+1, testutil.ToFloat64(imagesProcessed.WithLabelValues("failure")))
}

func TestActiveJobs(t *testing.T) {
	before := testutil.ToFloat64(activeJobs)

	JobStarted()
	JobStarted()
	assert.Equal(t, before+2, testutil.ToFloat64(activeJobs))

	JobStopped()
	JobStopped()
	assert.Equal(t, before, testutil.ToFloat64(activeJobs))
}
