package extract

import (
	"fmt"

	"github.com/lu4p/cat"
)

// extractOpenDocument handles .odt and .rtf, which cat detects from the content.
func extractOpenDocument(content []byte) (string, error) {
	text, err := cat.FromBytes(content)
	if err != nil {
		return "", fmt.Errorf("extract document: %w", err)
	}
	return text, nil
}
