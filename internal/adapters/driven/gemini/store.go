package gemini

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	"github.com/minsukim/notisync/internal/core/domain"
	"github.com/minsukim/notisync/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ArtifactStore = (*Store)(nil)

// listPageSize is the page size for store and document listings.
const listPageSize = 100

// Store is the file search store gateway. Store and document resource
// names are opaque API paths ("fileSearchStores/..."), passed through
// verbatim.
type Store struct {
	client *Client
}

// NewStore creates a file search store gateway.
func NewStore(client *Client) *Store {
	return &Store{client: client}
}

// API wire types.

type storeResource struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	SizeBytes   int64  `json:"sizeBytes,string"`
}

type listStoresResponse struct {
	FileSearchStores []storeResource `json:"fileSearchStores"`
	NextPageToken    string          `json:"nextPageToken"`
}

type customMetadata struct {
	Key         string `json:"key"`
	StringValue string `json:"stringValue"`
}

type documentResource struct {
	Name           string           `json:"name"`
	DisplayName    string           `json:"displayName"`
	CustomMetadata []customMetadata `json:"customMetadata"`
}

type listDocumentsResponse struct {
	Documents     []documentResource `json:"documents"`
	NextPageToken string             `json:"nextPageToken"`
}

type operationResource struct {
	Name  string `json:"name"`
	Done  bool   `json:"done"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// EnsureStore returns the store with the given display name, creating it
// when absent.
func (s *Store) EnsureStore(ctx context.Context, displayName string) (driven.StoreInfo, bool, error) {
	stores, err := s.ListStores(ctx)
	if err != nil {
		return driven.StoreInfo{}, false, err
	}
	for _, st := range stores {
		if st.DisplayName == displayName {
			return st, false, nil
		}
	}

	var created storeResource
	err = s.client.doJSON(ctx, http.MethodPost, "fileSearchStores",
		map[string]string{"displayName": displayName}, &created)
	if err != nil {
		return driven.StoreInfo{}, false, fmt.Errorf("create store: %w", err)
	}
	return driven.StoreInfo{
		Name:        created.Name,
		DisplayName: created.DisplayName,
		SizeBytes:   created.SizeBytes,
	}, true, nil
}

// ListStores returns all file search stores visible to the credential.
func (s *Store) ListStores(ctx context.Context) ([]driven.StoreInfo, error) {
	var stores []driven.StoreInfo
	pageToken := ""
	for {
		path := fmt.Sprintf("fileSearchStores?pageSize=%d", listPageSize)
		if pageToken != "" {
			path += "&pageToken=" + url.QueryEscape(pageToken)
		}

		var resp listStoresResponse
		if err := s.client.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
			return nil, fmt.Errorf("list stores: %w", err)
		}
		for _, st := range resp.FileSearchStores {
			stores = append(stores, driven.StoreInfo{
				Name:        st.Name,
				DisplayName: st.DisplayName,
				SizeBytes:   st.SizeBytes,
			})
		}
		if resp.NextPageToken == "" {
			return stores, nil
		}
		pageToken = resp.NextPageToken
	}
}

// DeleteStore removes a store and everything in it.
func (s *Store) DeleteStore(ctx context.Context, storeName string) error {
	if err := s.client.doJSON(ctx, http.MethodDelete, storeName+"?force=true", nil, nil); err != nil {
		return fmt.Errorf("delete store: %w", err)
	}
	return nil
}

// ListArtifacts returns every document in a store with its metadata.
func (s *Store) ListArtifacts(ctx context.Context, storeName string) ([]domain.StoredArtifact, error) {
	var artifacts []domain.StoredArtifact
	pageToken := ""
	for {
		path := fmt.Sprintf("%s/documents?pageSize=%d", storeName, listPageSize)
		if pageToken != "" {
			path += "&pageToken=" + url.QueryEscape(pageToken)
		}

		var resp listDocumentsResponse
		if err := s.client.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}
		for _, doc := range resp.Documents {
			artifacts = append(artifacts, toArtifact(doc))
		}
		if resp.NextPageToken == "" {
			return artifacts, nil
		}
		pageToken = resp.NextPageToken
	}
}

// FindArtifact locates the document carrying the given page_id metadata.
func (s *Store) FindArtifact(ctx context.Context, storeName, pageID string) (*domain.StoredArtifact, error) {
	artifacts, err := s.ListArtifacts(ctx, storeName)
	if err != nil {
		return nil, err
	}
	for i := range artifacts {
		if artifacts[i].PageID() == pageID {
			return &artifacts[i], nil
		}
	}
	return nil, nil
}

// Upload submits a document to the store's indexing pipeline via the
// multipart media endpoint and returns the async operation name.
func (s *Store) Upload(ctx context.Context, storeName string, up driven.ArtifactUpload) (string, error) {
	meta := map[string]any{"displayName": up.DisplayName}
	if len(up.Metadata) > 0 {
		var cm []customMetadata
		for k, v := range up.Metadata {
			cm = append(cm, customMetadata{Key: k, StringValue: v})
		}
		meta["customMetadata"] = cm
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := mw.CreatePart(metaHeader)
	if err != nil {
		return "", fmt.Errorf("create metadata part: %w", err)
	}
	if err := writeJSON(metaPart, meta); err != nil {
		return "", fmt.Errorf("write metadata part: %w", err)
	}

	fileHeader := textproto.MIMEHeader{}
	fileHeader.Set("Content-Type", "text/plain; charset=UTF-8")
	filePart, err := mw.CreatePart(fileHeader)
	if err != nil {
		return "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := filePart.Write([]byte(up.Body)); err != nil {
		return "", fmt.Errorf("write file part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("finalize multipart body: %w", err)
	}

	uploadURL := fmt.Sprintf("%s/upload/%s/%s:uploadToFileSearchStore",
		s.client.baseURL, apiVersion, storeName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, &body)
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", "multipart/related; boundary="+mw.Boundary())
	req.Header.Set("X-Goog-Upload-Protocol", "multipart")
	req.Header.Set("x-goog-api-key", s.client.apiKey)

	var op operationResource
	if err := s.client.doRaw(req, &op); err != nil {
		return "", fmt.Errorf("upload document: %w", err)
	}
	return op.Name, nil
}

// PollOperation reports whether the upload operation has completed. A
// failed operation surfaces as an error on the poll that observes it.
func (s *Store) PollOperation(ctx context.Context, operation string) (bool, error) {
	var op operationResource
	if err := s.client.doJSON(ctx, http.MethodGet, operation, nil, &op); err != nil {
		return false, fmt.Errorf("get operation: %w", err)
	}
	if op.Error != nil {
		return false, fmt.Errorf("operation %s failed: %s", operation, op.Error.Message)
	}
	return op.Done, nil
}

// DeleteArtifact removes one document by resource name.
func (s *Store) DeleteArtifact(ctx context.Context, artifactName string) error {
	if err := s.client.doJSON(ctx, http.MethodDelete, artifactName+"?force=true", nil, nil); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// toArtifact converts an API document into the domain representation.
func toArtifact(doc documentResource) domain.StoredArtifact {
	meta := make(map[string]string, len(doc.CustomMetadata))
	for _, cm := range doc.CustomMetadata {
		if cm.Key != "" {
			meta[cm.Key] = cm.StringValue
		}
	}
	return domain.StoredArtifact{
		Name:        doc.Name,
		DisplayName: doc.DisplayName,
		Metadata:    meta,
	}
}
