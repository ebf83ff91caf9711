package download

import "time"

// Event is one granted download, recorded for audit. The log is
// append-only; events are never updated or deleted.
type Event struct {
	ID           int64     `db:"id"`
	PurchaseID   int64     `db:"purchase_id"`
	Token        string    `db:"download_token"`
	IPAddress    string    `db:"ip_address"`
	UserAgent    string    `db:"user_agent"`
	DownloadedAt time.Time `db:"downloaded_at"`
}

func NewEvent(purchaseID int64, token, ipAddress, userAgent string) *Event {
	return &Event{
		PurchaseID:   purchaseID,
		Token:        token,
		IPAddress:    ipAddress,
		UserAgent:    userAgent,
		DownloadedAt: time.Now().UTC(),
	}
}
