package cache

import "fmt"

// BulkStatusKey names the cached status snapshot of one bulk order.
func BulkStatusKey(bulkOrderID string) string {
	return fmt.Sprintf("printdesk:bulk:status:%s", bulkOrderID)
}
