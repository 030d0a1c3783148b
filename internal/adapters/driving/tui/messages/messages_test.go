package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/archivevault/internal/core/domain"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view     ViewType
		expected string
	}{
		{ViewSearch, "search"},
		{ViewArchive, "archive"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.view.String())
		})
	}
}

func TestViewType_SearchIsDefault(t *testing.T) {
	var v ViewType
	assert.Equal(t, ViewSearch, v)
}

func TestSearchCompleted(t *testing.T) {
	page := &domain.SearchPage{
		Items: []domain.Hit{&domain.BlockHit{ArchiveID: "a1", BlockID: "p:000001"}},
		Limit: 50,
	}
	msg := SearchCompleted{Query: "桥", Page: page}

	assert.Equal(t, "桥", msg.Query)
	assert.Len(t, msg.Page.Items, 1)
	assert.NoError(t, msg.Err)
}

func TestArchiveLoaded_WithError(t *testing.T) {
	err := errors.New("not found")
	msg := ArchiveLoaded{ArchiveID: "a1", Err: err}

	assert.Nil(t, msg.Detail)
	assert.Equal(t, err, msg.Err)
}

func TestHitSelected(t *testing.T) {
	hit := &domain.AttachmentHit{ArchiveID: "a1", FileID: "f1", DisplayName: "photo.jpg"}
	msg := HitSelected{Hit: hit}

	assert.Equal(t, "a1", msg.Hit.Archive())
	assert.Equal(t, domain.HitAttachment, msg.Hit.Kind())
}
