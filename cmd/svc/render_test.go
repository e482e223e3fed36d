package main

import (
	"bytes"
	"testing"

	shared "svc/shared/types"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func init() {
	color.NoColor = true
}

func hashPtr(v int64) *int64 { return &v }

func TestPrintCommit(t *testing.T) {
	c := &shared.Commit{
		ID:      "a3957d",
		Message: "m",
		Branch:  "master",
		Records: []shared.Record{
			{FileName: "a.txt", Change: "remove"},
			{FileName: "b.txt", Change: "change", OldHash: hashPtr(615), NewHash: hashPtr(616)},
			{FileName: "B.txt", Change: "add"},
		},
		Snapshot: []shared.SnapshotEntry{{Name: "b.txt", Hash: 616}, {Name: "B.txt", Hash: 583}},
	}

	var buf bytes.Buffer
	printCommit(&buf, c)

	want := "a3957d [master]: m\n" +
		"    + B.txt\n" +
		"    - a.txt\n" +
		"    / b.txt [       615 ->        616]\n" +
		"\n" +
		"    Tracked files (2):\n" +
		"    [       616] b.txt\n" +
		"    [       583] B.txt\n"
	assert.Equal(t, want, buf.String())
}

func TestPrintBranches(t *testing.T) {
	var buf bytes.Buffer
	printBranches(&buf, &shared.BranchesResponse{Active: "dev", Branches: []string{"master", "dev"}})
	assert.Equal(t, "  master\n* dev\n", buf.String())
}

func TestPrintLog(t *testing.T) {
	var buf bytes.Buffer
	printLog(&buf, []shared.Commit{
		{ID: "b36804", Message: "Merged branch dev", Parents: []string{"443094", "abc123"}},
		{ID: "443094", Message: "first"},
	})
	assert.Equal(t, "b36804 Merged branch dev (merge [443094 abc123])\n443094 first\n", buf.String())
}

func TestPrintStatus(t *testing.T) {
	var buf bytes.Buffer
	printStatus(&buf, &shared.StatusResponse{
		Branch: "master",
		Head:   "443094",
		Files: []shared.FileStatus{
			{Path: "a.txt", Status: "modified"},
			{Path: "b.txt", Status: "staged"},
		},
	})
	assert.Equal(t, "On branch master\nHead 443094\n\nFiles:\n\n\tM a.txt\n\tA b.txt\n", buf.String())
}

func TestParseResolutions(t *testing.T) {
	got, err := parseResolutions([]string{"a.txt=fixed.txt", "gone.txt="})
	assert.NoError(t, err)
	assert.Equal(t, []shared.Resolution{
		{FileName: "a.txt", ResolvedFile: "fixed.txt"},
		{FileName: "gone.txt"},
	}, got)

	_, err = parseResolutions([]string{"nofile"})
	assert.Error(t, err)
	_, err = parseResolutions([]string{"=x"})
	assert.Error(t, err)
}
