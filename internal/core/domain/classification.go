package domain

// ExtractionResult is the raw input handed to the naming core: text already
// extracted by an OCR or parsing collaborator plus the original extension.
type ExtractionResult struct {
	Text              string `json:"text"`
	OriginalExtension string `json:"original_extension"`
	Language          string `json:"language,omitempty"`
}

type DocumentType string

const (
	TypeInvoice     DocumentType = "invoice"
	TypeReceipt     DocumentType = "receipt"
	TypeContract    DocumentType = "contract"
	TypeLetter      DocumentType = "letter"
	TypeReport      DocumentType = "report"
	TypeCertificate DocumentType = "certificate"
	TypeForm        DocumentType = "form"
	TypeMemo        DocumentType = "memo"
	TypeID          DocumentType = "id"
	TypeTicket      DocumentType = "ticket"
	TypeDocument    DocumentType = "document"
)

// ClassificationContext holds the fields pulled out of a document's text.
// Every field except DocumentType is optional; an empty string means the
// pattern did not match.
type ClassificationContext struct {
	DocumentType DocumentType `json:"document_type"`
	Company      string       `json:"company,omitempty"`
	Subject      string       `json:"subject,omitempty"`
	Date         string       `json:"date,omitempty"`
	Amount       string       `json:"amount,omitempty"`
}
