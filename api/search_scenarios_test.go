package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/gedcom-search/config"
	testutil "github.com/gcbaptista/gedcom-search/internal/testing"
	"github.com/gcbaptista/gedcom-search/model"
)

func TestSampleTreeRanking(t *testing.T) {
	eng := testutil.CreateTestEngine(t, config.EngineSettings{Workers: 3})
	testutil.AddSampleRecords(t, eng)

	testutil.RunSearchTests(t, eng, []testutil.SearchTestCase{
		{Name: "individual outranks spouse name", Query: "Mary Jones", Limit: 2, ExpectedIDs: []string{"@I2@", "@F1@"}},
		{Name: "exact name wins", Query: "john smith", Limit: 1, ExpectedIDs: []string{"@I1@"}},
		{Name: "no match", Query: "9999"},
	})
}

func TestImportSampleRecords(t *testing.T) {
	eng := testutil.CreateTestEngine(t, config.EngineSettings{})

	jobID := eng.ImportRecordsAsync(testutil.SampleRecords())
	job := testutil.WaitForJobCompletion(t, eng, jobID, testutil.DefaultJobPollingOptions())

	require.Equal(t, model.JobStatusCompleted, job.Status, "job error: %s", job.Error)
	counts := eng.RecordCount()
	assert.Equal(t, 3, counts[model.Individual])
	assert.Equal(t, 1, counts[model.Family])
	assert.Equal(t, 1, counts[model.Source])
	assert.Equal(t, 1, counts[model.Media])
}
