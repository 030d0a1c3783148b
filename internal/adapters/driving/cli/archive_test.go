package cli

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/archivevault/internal/core/domain"
)

// day returns midnight of the given date at UTC+8 in unix seconds.
func day(year int, month time.Month, d int) int64 {
	return time.Date(year, month, d, 0, 0, 0, 0, time.FixedZone("", 8*3600)).Unix()
}

func testDetail() *domain.ArchiveDetail {
	return &domain.ArchiveDetail{
		Archive: domain.Archive{
			ID:           "a1",
			OriginalName: "bridge_20240102.zip",
			ArchiveDate:  day(2024, 1, 2),
			Status:       domain.ArchiveCompleted,
		},
		MainDocument: &domain.MainDocument{
			ArchiveID:     "a1",
			InstructionNo: "QL-2024-001",
			Title:         "大桥检测指令",
			IssuedAt:      "2024-01-02",
			Content:       "对大桥进行检测",
		},
		Attachments: []domain.Attachment{
			{ID: "f1", ArchiveID: "a1", DisplayName: "pier.jpg", FileType: domain.FileTypeImage, SizeBytes: 2048},
		},
		Annotations: []domain.Annotation{
			{ID: "n1", ArchiveID: "a1", TargetKind: "docx_block", TargetRef: "p:000002", Content: "桥墩裂缝"},
		},
	}
}

func TestArchiveCmd_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range archiveCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"list", "show", "blocks", "delete"} {
		assert.True(t, names[want], want)
	}
	assert.NotNil(t, archiveCmd.PersistentFlags().Lookup("json"))
}

func TestArchiveList_Empty(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "archive", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No archives imported.")
}

func TestArchiveList(t *testing.T) {
	m := setupTestServices(t)
	m.archive.archives = []domain.ArchiveSummary{
		{Archive: domain.Archive{ID: "a1", OriginalName: "bridge.zip", ArchiveDate: day(2024, 1, 2), Status: domain.ArchiveCompleted},
			InstructionNo: "QL-2024-001", Title: "大桥检测指令"},
		{Archive: domain.Archive{ID: "a2", OriginalName: "broken.zip", ArchiveDate: day(2024, 1, 3), Status: domain.ArchiveFailed,
			Error: "missing instruction document"}},
	}

	out, err := execute(t, "archive", "list", "-n", "5", "--offset", "10", "--from", "2024-01-01")

	require.NoError(t, err)
	assert.Equal(t, 5, m.archive.filter.Limit)
	assert.Equal(t, 10, m.archive.filter.Offset)
	require.NotNil(t, m.archive.filter.DateFrom)
	assert.Equal(t, day(2024, 1, 1), *m.archive.filter.DateFrom)
	assert.Nil(t, m.archive.filter.DateTo)

	assert.Contains(t, out, "a1  2024-01-02  completed")
	assert.Contains(t, out, "QL-2024-001 大桥检测指令")
	assert.Contains(t, out, "error: missing instruction document")
}

func TestArchiveList_BadRange(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "archive", "list", "--from", "2024-02-01", "--to", "2024-01-01")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestArchiveShow(t *testing.T) {
	m := setupTestServices(t)
	m.archive.detail = testDetail()

	out, err := execute(t, "archive", "show", "a1")

	require.NoError(t, err)
	assert.Contains(t, out, "Archive:  a1")
	assert.Contains(t, out, "Date:     2024-01-02")
	assert.Contains(t, out, "Instruction No: QL-2024-001")
	assert.Contains(t, out, "对大桥进行检测")
	assert.Contains(t, out, "Attachments (1):")
	assert.Contains(t, out, "pier.jpg")
	assert.Contains(t, out, "Annotations (1):")
	assert.Contains(t, out, "n1  docx_block:p:000002  桥墩裂缝")
}

func TestArchiveShow_JSON(t *testing.T) {
	m := setupTestServices(t)
	m.archive.detail = testDetail()

	out, err := execute(t, "archive", "show", "--json", "a1")
	require.NoError(t, err)

	var got domain.ArchiveDetail
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "a1", got.Archive.ID)
	require.NotNil(t, got.MainDocument)
	assert.Equal(t, "QL-2024-001", got.MainDocument.InstructionNo)
}

func TestArchiveShow_NotFound(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "archive", "show", "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestArchiveBlocks(t *testing.T) {
	m := setupTestServices(t)
	m.archive.blocks = []domain.Block{
		{ArchiveID: "a1", ID: "p:000001", Text: "大桥检测指令"},
		{ArchiveID: "a1", ID: "p:000002", Text: "对大桥进行检测"},
	}

	out, err := execute(t, "archive", "blocks", "a1")

	require.NoError(t, err)
	assert.Contains(t, out, "p:000001  大桥检测指令")
	assert.Contains(t, out, "p:000002  对大桥进行检测")
}

func TestArchiveDelete(t *testing.T) {
	m := setupTestServices(t)

	out, err := execute(t, "archive", "delete", "a1")

	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, m.archive.deleted)
	assert.Contains(t, out, "Archive a1 deleted.")
}

func TestArchiveCmd_NoService(t *testing.T) {
	clearServices(t)

	for _, args := range [][]string{
		{"archive", "list"},
		{"archive", "show", "a1"},
		{"archive", "blocks", "a1"},
		{"archive", "delete", "a1"},
	} {
		_, err := execute(t, args...)
		assert.EqualError(t, err, "archive service not configured", args)
	}
}
