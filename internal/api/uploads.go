package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/sagebionetworks/bridge-sdk-go/internal/config"
)

// Request announces an upload and returns where to PUT the file.
func (s UploadsService) Request(ctx context.Context, session Session, req UploadRequest) (*UploadSession, error) {
	if req.Name == "" || req.ContentLength <= 0 || req.ContentMD5 == "" {
		return nil, argumentError("upload", "name, content length and MD5 are required")
	}
	path, err := s.resourcePath(config.UploadAPI)
	if err != nil {
		return nil, err
	}
	var result UploadSession
	if err := s.do(ctx, http.MethodPost, path, &session, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Complete tells the server the file for upload id has been stored.
func (s UploadsService) Complete(ctx context.Context, session Session, id string) error {
	path, err := s.resourcePath(config.UploadAPI, id, "complete")
	if err != nil {
		return err
	}
	return s.do(ctx, http.MethodPost, path, &session, nil, nil)
}

// PutFile stores data at the pre-signed URL of upload. The URL belongs to
// the storage service, so no session token is sent. req must be the
// request the upload was created from.
func (s UploadsService) PutFile(ctx context.Context, upload UploadSession, req UploadRequest, data []byte) error {
	u, err := url.Parse(upload.URL)
	if err != nil || !u.IsAbs() || (u.Scheme != "https" && u.Scheme != "http") {
		return argumentError("upload", "url must be an absolute http(s) URL")
	}
	if upload.Expires != nil && upload.Expires.Before(time.Now()) {
		return argumentError("upload", "upload session expired at "+upload.Expires.Format(time.RFC3339))
	}
	if int64(len(data)) != req.ContentLength {
		return argumentError("data", "length does not match the upload request")
	}

	header := http.Header{}
	header.Set("Content-Type", req.ContentType)
	header.Set("Content-MD5", req.ContentMD5)
	_, err = s.execute(ctx, http.MethodPut, upload.URL, "", data, header)
	return err
}
