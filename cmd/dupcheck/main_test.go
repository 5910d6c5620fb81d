package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josegonzalez/dupcheck/pkg/dupcheck"
	"github.com/josegonzalez/dupcheck/pkg/testutil"
)

func pool(t *testing.T, name string) string {
	t.Helper()
	loader, err := testutil.NewLoaderFromRepo()
	require.NoError(t, err)
	return loader.Path("pools", name)
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDetectText(t *testing.T) {
	out, _, err := run(t, "detect",
		"--entity", "leads",
		"--candidate", pool(t, "candidate_lead.yaml"),
		"--pool", pool(t, "crm.yaml"),
	)
	require.NoError(t, err)

	assert.Contains(t, out, "Found duplicates (confidence: medium)")
	assert.Contains(t, out, "1. lead-1")
	assert.Contains(t, out, "Score: 65")
	assert.Contains(t, out, "Matched: email, name")
}

func TestDetectJSON(t *testing.T) {
	out, _, err := run(t, "detect",
		"--entity", "lead",
		"--candidate", pool(t, "candidate_lead.yaml"),
		"--pool", pool(t, "crm.yaml"),
		"--format", "json",
	)
	require.NoError(t, err)

	var result struct {
		HasDuplicates bool   `json:"hasDuplicates"`
		Confidence    string `json:"confidence"`
		Matches       []struct {
			ID    string `json:"id"`
			Score int    `json:"score"`
		} `json:"matches"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.HasDuplicates)
	assert.Equal(t, "medium", result.Confidence)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, "lead-1", result.Matches[0].ID)
}

func TestDetectNoDuplicates(t *testing.T) {
	candidate := writeFile(t, "candidate.yaml", "name: Umbrella\nwebsiteurl: umbrella.example\n")

	out, _, err := run(t, "detect", "--entity", "account", "--candidate", candidate, "--pool", pool(t, "crm.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "No duplicates found\n", out)
}

func TestDetectWithConfigAndDebugLogging(t *testing.T) {
	config := writeFile(t, "config.yaml", "cache:\n  backend: memory\n  max_size: 100\n")

	_, logs, err := run(t, "detect",
		"--config", config,
		"--log-level", "debug",
		"--entity", "lead",
		"--candidate", pool(t, "candidate_lead.yaml"),
		"--pool", pool(t, "crm.yaml"),
	)
	require.NoError(t, err)
	assert.Contains(t, logs, "loaded configuration")
	assert.Contains(t, logs, "duplicate detection complete")
}

func TestDetectErrors(t *testing.T) {
	candidate := pool(t, "candidate_lead.yaml")
	crm := pool(t, "crm.yaml")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown entity", []string{"detect", "--entity", "deal", "--candidate", candidate, "--pool", crm}, "unknown entity type"},
		{"unknown format", []string{"detect", "--entity", "lead", "--candidate", candidate, "--pool", crm, "--format", "xml"}, "unknown output format"},
		{"missing pool", []string{"detect", "--entity", "lead", "--candidate", candidate, "--pool", "/nonexistent/pool.yaml"}, "opening pool"},
		{"missing flag", []string{"detect", "--entity", "lead", "--candidate", candidate}, "pool"},
		{"bad log level", []string{"--log-level", "loud", "normalize", "x"}, "invalid log level"},
		{"bad config", []string{"--config", "/nonexistent/config.yaml", "normalize", "x"}, "invalid configuration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestExplain(t *testing.T) {
	candidate := writeFile(t, "candidate.yaml", "name: Acme Corp\nwebsiteurl: https://www.acme.com\n")
	existing := writeFile(t, "existing.json", `{"accountid": "acct-1", "name": "Acme Corporation", "websiteurl": "http://acme.com"}`)

	out, _, err := run(t, "explain", "--entity", "account", "--candidate", candidate, "--existing", existing)
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	assert.True(t, strings.HasPrefix(lines[0], "  name "), lines[0])
	assert.True(t, strings.HasPrefix(lines[2], "+ website "), lines[2])
	assert.Contains(t, out, "Score: 30 (threshold 50, excluded)")

	out, _, err = run(t, "explain", "--entity", "account", "--candidate", candidate, "--existing", existing, "--format", "json")
	require.NoError(t, err)

	var exp dupcheck.Explanation
	require.NoError(t, json.Unmarshal([]byte(out), &exp))
	assert.Equal(t, "acct-1", exp.ID)
	assert.Equal(t, 30, exp.Score)
	assert.False(t, exp.Admitted)
}

func TestSimilarity(t *testing.T) {
	out, _, err := run(t, "similarity", "Acme Corp", "Acme Corporation")
	require.NoError(t, err)
	assert.Contains(t, out, "Similarity: 51\n")
	assert.Contains(t, out, "Jaro-Winkler: ")

	_, _, err = run(t, "similarity", "only-one")
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	out, _, err := run(t, "normalize", "  ACME, Inc. ", "https://www.acme.com")
	require.NoError(t, err)
	assert.Equal(t, "acme inc\nhttpswwwacmecom\n", out)

	config := writeFile(t, "config.yaml", "fold_diacritics: true\n")
	out, _, err = run(t, "--config", config, "normalize", "José")
	require.NoError(t, err)
	assert.Equal(t, "jose\n", out)
}
