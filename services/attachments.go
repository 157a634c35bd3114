package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"student/models"

	"github.com/sirupsen/logrus"
	"github.com/vincent-petithory/dataurl"
)

// MaterializeAttachments decodes inline data: URL attachments into file records.
// Remote URLs, malformed payloads and non-text content are skipped and logged;
// a bad attachment never aborts the round.
func MaterializeAttachments(attachments []models.Attachment, logger logrus.FieldLogger) []models.FileRecord {
	var files []models.FileRecord
	for _, att := range attachments {
		log := logger.WithField("attachment", att.Name)

		if strings.TrimSpace(att.Name) == "" {
			log.Warn("Skipping attachment without a name")
			continue
		}
		if !isDataURL(att.URL) {
			log.WithField("url", truncate(att.URL, 80)).Info("Skipping non-inline attachment")
			continue
		}

		content, err := decodeDataURL(att.URL)
		if err != nil {
			log.WithError(err).Warn("Skipping undecodable attachment")
			continue
		}
		if content == "" {
			log.Info("Skipping empty attachment")
			continue
		}

		files = append(files, models.FileRecord{Name: att.Name, Content: content})
	}
	return files
}

func isDataURL(u string) bool {
	return len(u) >= 5 && strings.EqualFold(u[:5], "data:")
}

// decodeDataURL decodes an RFC 2397 URL and requires the payload to be UTF-8 text
func decodeDataURL(u string) (string, error) {
	parsed, err := dataurl.DecodeString(u)
	if err != nil {
		return "", fmt.Errorf("decode data url: %w", err)
	}
	if !utf8.Valid(parsed.Data) {
		return "", fmt.Errorf("attachment of type %s is not UTF-8 text", parsed.MediaType.ContentType())
	}
	return string(parsed.Data), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
