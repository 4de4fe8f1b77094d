package models

// IncomingFile references one attachment received from the messaging transport.
// FileRef is the transport's opaque handle used to download the bytes later.
type IncomingFile struct {
	UserID    int64  `json:"userId"`
	ChatID    int64  `json:"chatId"`
	MessageID int    `json:"messageId"`
	FileRef   string `json:"fileRef"`
	FileName  string `json:"fileName"`
}

// UploadOutcome is the tagged result of uploading one attachment: either a
// store file ID, or an error keyed back to the originating message.
type UploadOutcome struct {
	File   IncomingFile `json:"file"`
	FileID string       `json:"fileId,omitempty"`
	Err    error        `json:"-"`
}

// Succeeded reports whether the upload produced a store file ID.
func (o UploadOutcome) Succeeded() bool {
	return o.Err == nil
}

// BatchDecision carries a user's confirm/cancel choice on a completed batch
// back from the transport to the decision handlers.
type BatchDecision struct {
	BatchID     string
	UserID      int64
	ChatID      int64
	MessageID   int
	CallbackID  string
	MessageText string
}
