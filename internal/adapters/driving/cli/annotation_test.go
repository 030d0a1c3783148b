package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/archivevault/internal/core/domain"
)

func TestAnnotationCmd_Alias(t *testing.T) {
	assert.Contains(t, annotationCmd.Aliases, "note")
}

func TestAnnotationAdd_Archive(t *testing.T) {
	m := setupTestServices(t)

	out, err := execute(t, "annotation", "add", "a1", "桥墩", "裂缝")

	require.NoError(t, err)
	require.Len(t, m.annotation.created, 1)
	req := m.annotation.created[0]
	assert.Equal(t, "a1", req.ArchiveID)
	assert.Equal(t, "桥墩 裂缝", req.Content)
	assert.Empty(t, req.TargetKind)
	assert.Nil(t, req.Locator)
	assert.Contains(t, out, "Annotation n1 added to archive:a1.")
}

func TestAnnotationAdd_Target(t *testing.T) {
	m := setupTestServices(t)

	out, err := execute(t, "note", "add",
		"--target-kind", "docx_block", "--target-ref", "p:000002",
		"--locator", `{"start":0,"end":2}`,
		"a1", "check")

	require.NoError(t, err)
	require.Len(t, m.annotation.created, 1)
	req := m.annotation.created[0]
	assert.Equal(t, "docx_block", req.TargetKind)
	assert.Equal(t, "p:000002", req.TargetRef)
	assert.JSONEq(t, `{"start":0,"end":2}`, string(req.Locator))
	assert.Contains(t, out, "Annotation n1 added to docx_block:p:000002.")
}

func TestAnnotationAdd_Error(t *testing.T) {
	m := setupTestServices(t)
	m.annotation.err = domain.ErrInvalidInput

	_, err := execute(t, "annotation", "add", "a1", "text")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAnnotationList(t *testing.T) {
	m := setupTestServices(t)

	out, err := execute(t, "annotation", "list", "a1")
	require.NoError(t, err)
	assert.Contains(t, out, "No annotations.")

	m.annotation.notes = []domain.Annotation{
		{ID: "n1", ArchiveID: "a1", TargetKind: "archive", TargetRef: "a1", Content: "复查"},
	}
	out, err = execute(t, "annotation", "list", "a1")
	require.NoError(t, err)
	assert.Contains(t, out, "n1  archive:a1  复查")
}

func TestAnnotationList_JSON(t *testing.T) {
	m := setupTestServices(t)
	m.annotation.notes = []domain.Annotation{{ID: "n1", ArchiveID: "a1", Content: "复查"}}

	out, err := execute(t, "annotation", "list", "--json", "a1")
	require.NoError(t, err)

	var got []domain.Annotation
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "复查", got[0].Content)
}

func TestAnnotationDelete(t *testing.T) {
	m := setupTestServices(t)

	out, err := execute(t, "annotation", "delete", "n1")

	require.NoError(t, err)
	assert.Equal(t, []string{"n1"}, m.annotation.deleted)
	assert.Contains(t, out, "Annotation n1 deleted.")
}

func TestAnnotationCmd_NoService(t *testing.T) {
	clearServices(t)

	_, err := execute(t, "annotation", "list", "a1")

	assert.EqualError(t, err, "annotation service not configured")
}
