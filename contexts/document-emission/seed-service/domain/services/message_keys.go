package services

const seedKeyPrefix = "seed"

// OrderingGroup keeps every message of one remittance document in a single
// FIFO group.
func OrderingGroup(remittanceDocumentID string) string {
	return seedKeyPrefix + "-" + remittanceDocumentID
}

// DeduplicationKey collapses re-sends for the same declaration inside the
// queue's deduplication window.
func DeduplicationKey(remittanceDocumentID string, contentDeclarationID string) string {
	return OrderingGroup(remittanceDocumentID) + "-" + contentDeclarationID
}
