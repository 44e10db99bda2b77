package transcript

import (
	"errors"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/seanblong/podsearch/pkg/models"
)

// SplitFrontMatter separates a leading YAML front-matter block
// ("---\n...\n---") from the transcript body. Content without a front-matter
// block is returned whole with empty metadata.
func SplitFrontMatter(content string) (models.TranscriptMetadata, string, error) {
	var meta models.TranscriptMetadata

	trimmed := strings.TrimPrefix(content, "\ufeff")
	if !strings.HasPrefix(trimmed, "---") {
		return meta, content, nil
	}

	rest := trimmed[3:]
	rest = strings.TrimPrefix(rest, "\r\n")
	rest = strings.TrimPrefix(rest, "\n")

	end := strings.Index(rest, "\n---")
	if end < 0 {
		return meta, "", errors.New("unterminated front matter")
	}
	block := rest[:end]
	body := rest[end+4:]
	if i := strings.Index(body, "\n"); i >= 0 {
		body = body[i+1:]
	} else {
		body = ""
	}

	if err := yaml.Unmarshal([]byte(block), &meta); err != nil {
		return models.TranscriptMetadata{}, "", err
	}
	return meta, body, nil
}
