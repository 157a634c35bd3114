package services

import (
	"encoding/base64"
	"testing"

	"student/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterializeAttachments(t *testing.T) {
	csv := "name,score\nada,10\n"
	attachments := []models.Attachment{
		{Name: "data.csv", URL: "data:text/csv;base64," + base64.StdEncoding.EncodeToString([]byte(csv))},
		{Name: "remote.png", URL: "https://example.com/remote.png"},
		{Name: "broken.txt", URL: "data:text/plain;base64,!!!not-base64!!!"},
		{Name: "image.bin", URL: "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe, 0x00})},
		{Name: "note.txt", URL: "data:,Hello%20World"},
		{Name: "", URL: "data:,nameless"},
	}

	files := MaterializeAttachments(attachments, testLogger())

	require.Len(t, files, 2)
	assert.Equal(t, models.FileRecord{Name: "data.csv", Content: csv}, files[0])
	assert.Equal(t, models.FileRecord{Name: "note.txt", Content: "Hello World"}, files[1])
}

func TestMaterializeAttachmentsEmpty(t *testing.T) {
	assert.Empty(t, MaterializeAttachments(nil, testLogger()))
}
