package services

import (
	"encoding/base64"
	"fmt"
	"html"
	"strings"
	"unicode"
	"unicode/utf8"

	"student/models"
	"student/utils"
)

const (
	readmeName      = "README.md"
	placeholderName = "index.html"
	licenseMarker   = "## License"
)

const mitLicenseFooter = `

## License

This project is licensed under the MIT License. See the LICENSE file for details.
`

// Repairer corrects one category of defect in a generated file set.
// Every stage is total: it never fails and never panics on odd input.
type Repairer func(files []models.FileRecord, brief string) []models.FileRecord

// DefaultRepairers is the pipeline applied to model output, in order
var DefaultRepairers = []Repairer{
	DropIncomplete,
	CleanPaths,
	UnwrapBase64,
	DedupePaths,
	EnsureReadme,
	EnsureLicense,
	EnsureArtifact,
}

// Repair runs the default pipeline left to right
func Repair(files []models.FileRecord, brief string) []models.FileRecord {
	for _, stage := range DefaultRepairers {
		files = stage(files, brief)
	}
	return files
}

// DropIncomplete removes records with an empty name or content
func DropIncomplete(files []models.FileRecord, _ string) []models.FileRecord {
	kept := make([]models.FileRecord, 0, len(files))
	for _, f := range files {
		if f.IsComplete() {
			kept = append(kept, f)
		}
	}
	return kept
}

// UnwrapBase64 replaces content that is base64-encoded text with the decoded text.
// Models sometimes wrap content and sometimes don't; plain content passes through.
func UnwrapBase64(files []models.FileRecord, _ string) []models.FileRecord {
	out := make([]models.FileRecord, len(files))
	for i, f := range files {
		if decoded, ok := decodeBase64Text(f.Content); ok {
			f.Content = decoded
		}
		out[i] = f
	}
	return out
}

// CleanPaths rewrites names to the repository path they will be published at,
// so ./README.md and docs/../README.md are recognised as the README.
// Names that escape the root are left for the publisher to reject.
func CleanPaths(files []models.FileRecord, _ string) []models.FileRecord {
	out := make([]models.FileRecord, len(files))
	for i, f := range files {
		if cleaned, ok := utils.CleanRepoPath(f.Name); ok {
			f.Name = cleaned
		}
		out[i] = f
	}
	return out
}

// DedupePaths keeps the first record for each path. README.md matches ignoring case.
func DedupePaths(files []models.FileRecord, _ string) []models.FileRecord {
	out := make([]models.FileRecord, 0, len(files))
	seen := make(map[string]bool, len(files))
	for _, f := range files {
		key := f.Name
		if utils.IsReadme(key) {
			key = readmeName
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f)
	}
	return out
}

// EnsureReadme synthesises a README from the brief and the file list when none exists
func EnsureReadme(files []models.FileRecord, brief string) []models.FileRecord {
	if readmeIndex(files) >= 0 {
		return files
	}
	return append(files, models.FileRecord{Name: readmeName, Content: synthesizeReadme(brief, files)})
}

// EnsureLicense appends the MIT footer when the README has no license section
func EnsureLicense(files []models.FileRecord, _ string) []models.FileRecord {
	i := readmeIndex(files)
	if i < 0 || strings.Contains(files[i].Content, licenseMarker) {
		return files
	}
	out := append([]models.FileRecord(nil), files...)
	out[i].Content = strings.TrimRight(out[i].Content, "\n") + mitLicenseFooter
	return out
}

// EnsureArtifact adds a placeholder page when the README is the only file
func EnsureArtifact(files []models.FileRecord, brief string) []models.FileRecord {
	for _, f := range files {
		if !utils.IsReadme(f.Name) {
			return files
		}
	}
	return append(files, models.FileRecord{Name: placeholderName, Content: placeholderPage(brief)})
}

// FallbackFiles returns the fixed two-file deliverable used when there is no
// brief or the model output can't be used
func FallbackFiles(brief string) []models.FileRecord {
	files := []models.FileRecord{{Name: placeholderName, Content: placeholderPage(brief)}}
	return Repair(files, brief)
}

func readmeIndex(files []models.FileRecord) int {
	for i, f := range files {
		if utils.IsReadme(f.Name) {
			return i
		}
	}
	return -1
}

func decodeBase64Text(content string) (string, bool) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", false
	}
	raw, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil || len(raw) == 0 || !utf8.Valid(raw) {
		return "", false
	}
	decoded := string(raw)
	for _, r := range decoded {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return "", false
		}
	}
	return decoded, true
}

func synthesizeReadme(brief string, files []models.FileRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", projectTitle(brief))

	if summary := strings.TrimSpace(brief); summary != "" {
		fmt.Fprintf(&b, "%s\n\n", summary)
	} else {
		b.WriteString("A static site generated automatically and published with GitHub Pages.\n\n")
	}

	b.WriteString("## Files\n\n")
	if len(files) == 0 {
		b.WriteString("- README.md\n")
	}
	for _, f := range files {
		fmt.Fprintf(&b, "- `%s`\n", f.Name)
	}

	b.WriteString("\n## Usage\n\nOpen `index.html` in a browser or visit the repository's GitHub Pages URL.\n")
	return b.String()
}

func placeholderPage(brief string) string {
	title := projectTitle(brief)
	body := "Fallback page"
	if summary := strings.TrimSpace(brief); summary != "" {
		body = summary
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>%s</title>
</head>
<body>
  <h1>%s</h1>
  <p>%s</p>
</body>
</html>
`, html.EscapeString(title), html.EscapeString(title), html.EscapeString(body))
}

// projectTitle takes the first line of the brief, capped at 60 runes
func projectTitle(brief string) string {
	line := strings.TrimSpace(brief)
	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	if line == "" {
		return "Generated Project"
	}
	if runes := []rune(line); len(runes) > 60 {
		line = strings.TrimSpace(string(runes[:60])) + "..."
	}
	return line
}
