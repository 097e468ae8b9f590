package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCorpus = `[
  {"_id": {"$oid": "65f1a0000000000000000001"}, "type": "MCQ", "title": "Capital of France",
   "options": [{"text": "Paris", "isCorrectAnswer": true}, {"text": "Rome", "isCorrectAnswer": false}]},
  {"_id": {"$oid": "65f1a0000000000000000002"}, "type": "ANAGRAM", "title": "Unscramble listen",
   "blocks": [{"text": "silent", "isAnswer": true}]},
  {"_id": {"$oid": "65f1a0000000000000000003"}, "type": "READ_ALONG", "title": "The quick fox"},
  {"_id": {"$oid": "not-an-object-id"}, "type": "MCQ", "title": "Broken"}
]`

type ingestResult struct {
	RunID     string `json:"run_id"`
	Total     int    `json:"total"`
	Inserted  int    `json:"inserted"`
	Failed    int    `json:"failed"`
	Rejected  int    `json:"rejected"`
	Batches   int    `json:"batches"`
	Retried   int    `json:"retried"`
	Recovered int    `json:"recovered"`
}

func runIngestCmd(t *testing.T, args ...string) (ingestResult, error) {
	t.Helper()

	root := NewRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"ingest"}, args...))

	err := root.Execute()

	var res ingestResult
	if out.Len() > 0 {
		require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	}
	return res, err
}

func TestIngestCmd_SQLite(t *testing.T) {
	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "questions.json")
	require.NoError(t, os.WriteFile(corpusPath, []byte(testCorpus), 0o600))

	args := []string{
		"--env", "local",
		"--driver", "sqlite",
		"--db-path", filepath.Join(dir, "questsearch.db"),
		"--file", corpusPath,
		"--lock-path", filepath.Join(dir, "ingest.lock"),
		"--log-level", "error",
	}

	first, err := runIngestCmd(t, args...)
	require.NoError(t, err)
	assert.NotEmpty(t, first.RunID)
	assert.Equal(t, 4, first.Total)
	assert.Equal(t, 3, first.Inserted)
	assert.Equal(t, 1, first.Failed)
	assert.Equal(t, 1, first.Rejected)
	assert.Equal(t, 1, first.Batches)
	assert.Zero(t, first.Retried)

	// stored records are never overwritten
	second, err := runIngestCmd(t, args...)
	require.NoError(t, err)
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, 4, second.Total)
	assert.Zero(t, second.Inserted)
	assert.Equal(t, 4, second.Failed)
	assert.Equal(t, 3, second.Retried)
	assert.Zero(t, second.Recovered)
}

func TestIngestCmd_RequiresFile(t *testing.T) {
	_, err := runIngestCmd(t, "--env", "local", "--driver", "sqlite")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "file" not set`)
}

func TestIngestCmd_MissingCorpus(t *testing.T) {
	dir := t.TempDir()
	_, err := runIngestCmd(t,
		"--env", "local",
		"--driver", "sqlite",
		"--file", filepath.Join(dir, "missing.json"),
		"--lock-path", filepath.Join(dir, "ingest.lock"),
	)
	require.Error(t, err)
}

func TestIngestCmd_RejectsOversizedBatch(t *testing.T) {
	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "questions.json")
	require.NoError(t, os.WriteFile(corpusPath, []byte(testCorpus), 0o600))

	_, err := runIngestCmd(t,
		"--env", "local",
		"--driver", "sqlite",
		"--file", corpusPath,
		"--batch-size", "5001",
		"--lock-path", filepath.Join(dir, "ingest.lock"),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest.batch_size must not exceed 5000")
}
