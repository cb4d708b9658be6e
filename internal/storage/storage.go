package storage

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	storage_go "github.com/supabase-community/storage-go"
	supa "github.com/supabase-community/supabase-go"
)

const bucketName = "audio"

// contentTypes maps common audio extensions to MIME types, used when the
// uploading client did not supply a content type.
var contentTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
}

// Store wraps the Supabase storage bucket holding uploaded media.
type Store struct {
	client  *supa.Client
	baseURL string
	log     *logrus.Logger
}

func New(client *supa.Client, baseURL string, log *logrus.Logger) *Store {
	return &Store{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

// SaveUpload stores an uploaded file under a collision-resistant generated
// name and returns the object name along with its public URL.
func (s *Store) SaveUpload(fileHeader *multipart.FileHeader) (string, string, error) {
	ext := filepath.Ext(fileHeader.Filename)
	objectName := uuid.NewString() + ext

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = contentTypeForExtension(ext)
	}
	s.log.Infof("Uploading %s with content type %s", objectName, contentType)

	file, err := fileHeader.Open()
	if err != nil {
		return "", "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	_, err = s.client.Storage.UploadFile(bucketName, objectName, file, storage_go.FileOptions{
		ContentType: &contentType,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload file to storage: %w", err)
	}

	return objectName, s.PublicURL(objectName), nil
}

// PublicURL composes the publicly fetchable URL for an object in the
// audio bucket.
func (s *Store) PublicURL(objectName string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, bucketName, objectName)
}

// Download fetches the full byte payload for an object key.
func (s *Store) Download(key string) ([]byte, error) {
	data, err := s.client.Storage.DownloadFile(bucketName, key)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s from storage: %w", key, err)
	}
	return data, nil
}

func contentTypeForExtension(ext string) string {
	if ct, ok := contentTypes[strings.ToLower(ext)]; ok {
		return ct
	}
	return "application/octet-stream"
}
