package hygiene

import (
	"log"

	"eshop-backend/pkg/push"
)

// Directory is the slice of the recipient directory the cleaner consumes.
type Directory interface {
	AllWithToken() ([]push.Recipient, error)
	BulkClearTokens(userIDs []string) (int64, error)
}

// Cleaner proactively clears structurally invalid device tokens from the
// directory. It complements the dispatch engine's reactive invalidation:
// structural cleanup only, no live verification against the provider
// (that would burn delivery quota).
type Cleaner struct {
	directory Directory
}

func NewCleaner(directory Directory) *Cleaner {
	return &Cleaner{directory: directory}
}

// Run scans the directory, clears every token failing a structural check,
// and returns the number of users cleared. Zero is a normal outcome.
func (c *Cleaner) Run() (int64, error) {
	recipients, err := c.directory.AllWithToken()
	if err != nil {
		return 0, err
	}

	var invalid []string
	for _, r := range recipients {
		if err := push.ValidateToken(r.Token); err != nil {
			log.Printf("[Hygiene] Invalid token for user %s: %v", r.UserID, err)
			invalid = append(invalid, r.UserID)
		}
	}

	if len(invalid) == 0 {
		log.Println("[Hygiene] No invalid device tokens found during cleanup")
		return 0, nil
	}

	cleared, err := c.directory.BulkClearTokens(invalid)
	if err != nil {
		return 0, err
	}
	log.Printf("[Hygiene] Cleaned up %d invalid device tokens", cleared)
	return cleared, nil
}
