package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FileKind enumerates the media types the transport can hand over.
type FileKind string

const (
	KindPhoto     FileKind = "photo"
	KindVideo     FileKind = "video"
	KindDocument  FileKind = "document"
	KindAudio     FileKind = "audio"
	KindVoice     FileKind = "voice"
	KindAnimation FileKind = "animation"
)

// Valid reports whether the kind belongs to the closed set.
func (k FileKind) Valid() bool {
	switch k {
	case KindPhoto, KindVideo, KindDocument, KindAudio, KindVoice, KindAnimation:
		return true
	}
	return false
}

// Category is a named bucket of file references owned by a single user.
// Names are unique per user and case-sensitive.
type Category struct {
	ID        uuid.UUID `bson:"id" db:"id"`
	UserID    int64     `bson:"user_id" db:"user_id"`
	Name      string    `bson:"name" db:"name"`
	CreatedAt time.Time `bson:"created_at" db:"created_at"`
}

// CategoryInfo pairs a category with its current file count for menu listings.
type CategoryInfo struct {
	Category
	FileCount int
}

// FileRef points at media held by the transport. Pointer is an opaque
// identifier the transport uses to re-deliver the original bytes; the core
// never parses it. Seq is the explicit position within the owning category
// and defines retrieval order.
type FileRef struct {
	Seq         int64     `bson:"seq" db:"seq"`
	Kind        FileKind  `bson:"kind" db:"kind"`
	Pointer     string    `bson:"pointer" db:"pointer"`
	DisplayName string    `bson:"display_name,omitempty" db:"display_name"`
	AddedAt     time.Time `bson:"added_at" db:"added_at"`
}

// FileDraft is a file reference before the store assigned its sequence index.
type FileDraft struct {
	Kind        FileKind
	Pointer     string
	DisplayName string
}

// Label returns the display name or a generated fallback like "photo_0003".
func (f FileRef) Label() string {
	if f.DisplayName != "" {
		return f.DisplayName
	}
	return fmt.Sprintf("%s_%04d", f.Kind, f.Seq+1)
}
