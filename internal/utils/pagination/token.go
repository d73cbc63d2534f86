package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const dateFormat = time.DateOnly

// EncodeToken creates a base64 encoded cursor from the entry date and entry id of
// the last item on a page. Entries are listed newest first, so the next page
// starts strictly after (entryDate, entryID) in descending order.
func EncodeToken(entryDate time.Time, entryID string) string {
	tokenStr := fmt.Sprintf("%s|%s", entryDate.UTC().Format(dateFormat), entryID)
	return base64.URLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeToken parses the base64 encoded cursor back into entry date and entry id.
func DecodeToken(token string) (time.Time, string, error) {
	decodedBytes, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 2)
	if len(parts) != 2 || parts[1] == "" {
		return time.Time{}, "", fmt.Errorf("invalid pagination token format (split)")
	}

	entryDate, err := time.ParseInLocation(dateFormat, parts[0], time.UTC)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid pagination token format (entry date parse): %w", err)
	}
	return entryDate, parts[1], nil
}
