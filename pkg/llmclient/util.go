package llmclient

import (
	"strings"
	"time"
)

// secondsToDuration converts a whole-seconds config value to a time.Duration.
func secondsToDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

// containsFold reports whether s contains substr, ignoring case — used to
// detect provider quota/billing phrases embedded in free-text error bodies.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
