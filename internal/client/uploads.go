package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/bobmcallan/feedpulse/internal/interfaces"
	"github.com/bobmcallan/feedpulse/internal/models"
)

func uploadPrefix(kind string) (string, error) {
	switch kind {
	case models.UploadFeedback:
		return "/feedback/upload-csv", nil
	case models.UploadCustomers:
		return "/customers/upload-csv", nil
	}
	return "", fmt.Errorf("unknown upload kind %q", kind)
}

// UploadCSV sends the file (step 1) and returns the detected columns and the
// suggested mapping.
func (c *Client) UploadCSV(ctx context.Context, kind, filename string, r io.Reader) (*models.UploadInit, error) {
	prefix, err := uploadPrefix(kind)
	if err != nil {
		return nil, err
	}
	var env models.Envelope[models.UploadInit]
	if err := c.upload(ctx, prefix, filename, r, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// ConfirmUpload submits the column mapping (step 2).
func (c *Client) ConfirmUpload(ctx context.Context, kind, uploadID string, body models.UploadConfirm) (*models.UploadConfirmed, error) {
	prefix, err := uploadPrefix(kind)
	if err != nil {
		return nil, err
	}
	var env models.Envelope[models.UploadConfirmed]
	if err := c.send(ctx, http.MethodPost, prefix+"/"+url.PathEscape(uploadID)+"/confirm", body, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// ImportUpload runs the import (step 3).
func (c *Client) ImportUpload(ctx context.Context, kind, uploadID string) (*models.UploadResult, error) {
	prefix, err := uploadPrefix(kind)
	if err != nil {
		return nil, err
	}
	var env models.Envelope[models.UploadResult]
	if err := c.send(ctx, http.MethodPost, prefix+"/"+url.PathEscape(uploadID)+"/import", nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// ListUploads returns the upload history.
func (c *Client) ListUploads(ctx context.Context) ([]models.UploadRecord, error) {
	var env models.Envelope[[]models.UploadRecord]
	if err := c.get(ctx, "/uploads", nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// GetUpload fetches one history entry.
func (c *Client) GetUpload(ctx context.Context, id string) (*models.UploadRecord, error) {
	var env models.Envelope[models.UploadRecord]
	if err := c.get(ctx, "/uploads/"+url.PathEscape(id), nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// DeleteUpload removes a history entry.
func (c *Client) DeleteUpload(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, "/uploads/"+url.PathEscape(id), nil, nil)
}

var (
	_ interfaces.UploadAPI  = (*Client)(nil)
	_ interfaces.UploadsAPI = (*Client)(nil)
)
