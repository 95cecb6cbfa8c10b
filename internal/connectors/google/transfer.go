package google

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	gauth "golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/zotcast/zotcast/internal/core/ports/driven"
	"github.com/zotcast/zotcast/internal/logx"
)

// maxStateSize caps a pulled state file at 8 MiB. The real table is a few
// kilobytes; anything larger means the file ID points at the wrong document.
const maxStateSize = 8 << 20

// stateContentType is the MIME type recorded on the Drive copy.
const stateContentType = "text/csv"

// Transfer moves the state file to and from a fixed Drive file. The file is
// never created or deleted here; it must already exist and be shared with
// the service account.
type Transfer struct {
	svc    *drive.Service
	fileID string
	log    logx.Logger
}

var _ driven.StateTransfer = (*Transfer)(nil)

// NewTransfer builds a Drive transfer from a service-account key file.
func NewTransfer(ctx context.Context, credentialsFile, fileID string, log logx.Logger) (*Transfer, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read service account key: %w", err)
	}

	creds, err := gauth.CredentialsFromJSON(ctx, data, drive.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account key: %w", err)
	}

	svc, err := drive.NewService(ctx, option.WithTokenSource(creds.TokenSource))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	return newTransfer(svc, fileID, log), nil
}

// newTransfer wires a Transfer onto an existing Drive service.
func newTransfer(svc *drive.Service, fileID string, log logx.Logger) *Transfer {
	return &Transfer{svc: svc, fileID: fileID, log: log}
}

// Pull downloads the content of the remote state file.
func (t *Transfer) Pull(ctx context.Context) ([]byte, error) {
	resp, err := t.svc.Files.Get(t.fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("download state file: %w", wrapError(err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxStateSize+1))
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}
	if len(data) > maxStateSize {
		return nil, fmt.Errorf("state file exceeds %d bytes", maxStateSize)
	}

	t.log.Debug("pulled state file",
		logx.String("file_id", t.fileID),
		logx.Int("bytes", len(data)))

	return data, nil
}

// Push uploads data as the new content of the remote state file. Drive keeps
// the file's identity and sharing; only the media is replaced.
func (t *Transfer) Push(ctx context.Context, data []byte) error {
	_, err := t.svc.Files.Update(t.fileID, &drive.File{}).
		Media(bytes.NewReader(data), googleapi.ContentType(stateContentType)).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("upload state file: %w", wrapError(err))
	}

	t.log.Debug("pushed state file",
		logx.String("file_id", t.fileID),
		logx.Int("bytes", len(data)))

	return nil
}
