package driven

import (
	"context"

	"github.com/minsukim/notisync/internal/core/domain"
)

// StoreInfo describes one remote document store.
type StoreInfo struct {
	// Name is the store's opaque resource name.
	Name string

	// DisplayName is the label the store was created under.
	DisplayName string

	// SizeBytes is the store's reported size.
	SizeBytes int64
}

// ArtifactUpload carries the payload of one artifact upload.
type ArtifactUpload struct {
	// DisplayName is the human-readable artifact label.
	DisplayName string

	// Body is the normalized text blob to index.
	Body string

	// Metadata is attached to the artifact; it must include
	// domain.MetaPageID and domain.MetaLastEdited.
	Metadata map[string]string
}

// ArtifactStore is the gateway to the remote searchable document store.
// Uploads are asynchronous: Upload returns an operation name which is
// polled via PollOperation until the store reports completion.
type ArtifactStore interface {
	// EnsureStore returns the store with the given display name,
	// creating it when absent. The bool reports whether it was created.
	EnsureStore(ctx context.Context, displayName string) (StoreInfo, bool, error)

	// ListStores returns all stores visible to the credential.
	ListStores(ctx context.Context) ([]StoreInfo, error)

	// DeleteStore removes a store and everything in it.
	DeleteStore(ctx context.Context, storeName string) error

	// ListArtifacts returns every artifact in a store with its metadata.
	ListArtifacts(ctx context.Context, storeName string) ([]domain.StoredArtifact, error)

	// FindArtifact locates the artifact carrying the given page_id
	// metadata, or nil when none exists.
	FindArtifact(ctx context.Context, storeName, pageID string) (*domain.StoredArtifact, error)

	// Upload submits a new artifact and returns the async operation name.
	Upload(ctx context.Context, storeName string, up ArtifactUpload) (string, error)

	// PollOperation reports whether the upload operation has completed.
	PollOperation(ctx context.Context, operation string) (bool, error)

	// DeleteArtifact removes one artifact by resource name.
	DeleteArtifact(ctx context.Context, artifactName string) error
}
