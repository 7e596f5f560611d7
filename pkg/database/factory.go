package database

// NewAuditLog opens the default audit log backend at dbPath. It exists as a
// seam for swapping backends without touching callers; today it always
// returns a BoltAuditLog.
func NewAuditLog(dbPath string) (AuditLog, error) {
	return NewBoltAuditLog(dbPath)
}
