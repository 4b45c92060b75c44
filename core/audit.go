package core

// AuditService is any append-only sink that records user-visible actions.
// Entries arrive fully formatted; the sink never reads them back.
type AuditService interface {
	Append(entry string)
}
