package googleDriveApi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/KotFed0t/insider_watchlist_bot/config"
	"github.com/KotFed0t/insider_watchlist_bot/utils"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	downloadLinkTemplate = "https://drive.google.com/file/d/%s/view"
	exportTagProperty    = "insiderWatchlist"
	listPageSize         = 100
)

// GoogleDriveApi hosts watchlist exports that are too large to send through telegram.
// Uploaded files are tagged with an app property, cleanup only ever touches tagged files.
type GoogleDriveApi struct {
	srv       *drive.Service
	fileTTL   time.Duration
	exportTag string
}

func New(ctx context.Context, cfg *config.Config) *GoogleDriveApi {
	srv, err := drive.NewService(ctx, option.WithCredentialsFile(cfg.GoogleDrive.CredentialsFile))
	if err != nil {
		slog.Error("failed on drive.NewService", slog.String("err", err.Error()))
		panic(err)
	}
	return &GoogleDriveApi{srv: srv, fileTTL: cfg.GoogleDrive.FileTTL, exportTag: cfg.GoogleDrive.ExportTag}
}

// exportFile describes an upload: a public, tagged file named after the export.
func (a *GoogleDriveApi) exportFile(filename string) *drive.File {
	return &drive.File{
		Name:          filename,
		MimeType:      mime.TypeByExtension(filepath.Ext(filename)),
		AppProperties: map[string]string{exportTagProperty: a.exportTag},
	}
}

// expiredExportsQuery selects non-trashed exports with our tag created before threshold.
func (a *GoogleDriveApi) expiredExportsQuery(threshold time.Time) string {
	return fmt.Sprintf(
		"appProperties has { key='%s' and value='%s' } and createdTime < '%s' and trashed = false",
		exportTagProperty,
		strings.ReplaceAll(a.exportTag, "'", `\'`),
		threshold.UTC().Format(time.RFC3339),
	)
}

func (a *GoogleDriveApi) UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "GoogleDriveApi.UploadFile"

	slog.Debug("UploadFile start", slog.String("rqID", rqID), slog.String("op", op), slog.String("filename", filename))

	uploadedFile, err := a.srv.Files.
		Create(a.exportFile(filename)).
		Media(reader).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		slog.Error("failed on uploading export to google drive", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	// link sharing, anyone with the link can view the export
	_, err = a.srv.Permissions.Create(uploadedFile.Id, &drive.Permission{Type: "anyone", Role: "reader"}).Context(ctx).Do()
	if err != nil {
		slog.Error("failed on sharing export", slog.String("rqID", rqID), slog.String("op", op), slog.String("fileID", uploadedFile.Id), slog.String("err", err.Error()))
		if delErr := a.srv.Files.Delete(uploadedFile.Id).Context(ctx).Do(); delErr != nil {
			slog.Warn("can't delete unshared export", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", delErr.Error()))
		}
		return "", err
	}

	slog.Debug("UploadFile completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("fileID", uploadedFile.Id))

	return fmt.Sprintf(downloadLinkTemplate, uploadedFile.Id), nil
}

// DeleteOldFiles removes tagged exports older than the configured TTL.
func (a *GoogleDriveApi) DeleteOldFiles(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "GoogleDriveApi.DeleteOldFiles"

	query := a.expiredExportsQuery(time.Now().Add(-a.fileTTL))
	slog.Debug("DeleteOldFiles start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))

	var expired []*drive.File
	err := a.srv.Files.List().
		Q(query).
		Fields("nextPageToken, files(id, name)").
		PageSize(listPageSize).
		Pages(ctx, func(page *drive.FileList) error {
			expired = append(expired, page.Files...)
			return nil
		})
	if err != nil {
		slog.Error("failed on listing expired exports", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	deleted := 0
	for _, f := range expired {
		if err = a.srv.Files.Delete(f.Id).Context(ctx).Do(); err != nil {
			slog.Error(
				"failed on deleting export",
				slog.String("rqID", rqID),
				slog.String("op", op),
				slog.String("fileID", f.Id),
				slog.String("name", f.Name),
				slog.String("err", err.Error()),
			)
			continue
		}
		deleted++
	}

	slog.Info("expired exports deleted", slog.String("rqID", rqID), slog.String("op", op), slog.Int("deleted", deleted), slog.Int("failed", len(expired)-deleted))

	if deleted < len(expired) {
		return fmt.Errorf("%d of %d expired exports were not deleted", len(expired)-deleted, len(expired))
	}
	return nil
}
