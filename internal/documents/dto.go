package documents

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	DocumentID string `json:"documentId"`
	OwnerID    string `json:"ownerId"`
	Title      string `json:"title"`
	Category   string `json:"category"`
	FileRef    string `json:"fileRef,omitempty"`
	Archived   bool   `json:"archived"`
	ShareLink  string `json:"shareLink,omitempty"`
	IsOwner    bool   `json:"isOwner"`
	CreatedAt  int64  `json:"createdAt"`
	UpdatedAt  int64  `json:"updatedAt"`
}

// NewResponse builds the response body for doc as seen by a viewer for
// whom isOwner holds.
func NewResponse(doc Document, isOwner bool) DocumentResponse {
	return DocumentResponse{
		DocumentID: doc.ID,
		OwnerID:    doc.OwnerID,
		Title:      doc.Title,
		Category:   doc.Category,
		FileRef:    doc.FileRef,
		Archived:   doc.Archived,
		ShareLink:  doc.ShareLink,
		IsOwner:    isOwner,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}
}
