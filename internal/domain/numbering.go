package domain

import "fmt"

type DocumentType string

const (
	DocumentTypeOrder   DocumentType = "ORD"
	DocumentTypeInvoice DocumentType = "INV"
	DocumentTypePickup  DocumentType = "PKP"
)

// FormatDocumentNumber renders numbers such as ORD-2026-0042.
func FormatDocumentNumber(docType DocumentType, year int, seq int32) string {
	return fmt.Sprintf("%s-%04d-%04d", docType, year, seq)
}
