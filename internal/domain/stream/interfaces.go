package stream

import "context"

// Repository provides persistence for feed entries.
type Repository interface {
	List(ctx context.Context, opts ListOptions) ([]Entry, error)
	Create(ctx context.Context, entry *Entry) error
	Delete(ctx context.Context, id string) error
}

// Cipher seals entry content.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) string
}

// LinkPreviewer looks up metadata for a URL. A nil preview means none found.
type LinkPreviewer interface {
	Preview(ctx context.Context, rawURL string) (*Preview, error)
}
