package upload

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/claude/clientportal/internal/models"
	"github.com/claude/clientportal/internal/source/xlsx"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal   int
	FilesChanged int
	FilesSkipped int
	SheetsSent   int
	Sent         bool
}

// Uploader turns a manifest and its workbooks into a client document and
// sends it to the portal. The whole document is replaced on every send, so
// nothing is sent unless some file changed since the last upload.
type Uploader struct {
	client *Client
	state  *StateDB
	dryRun bool
	force  bool
	log    *slog.Logger
	now    func() time.Time
	stats  Stats
}

// New creates a new Uploader. client may be nil in dry-run mode.
func New(client *Client, state *StateDB, dryRun, force bool, log *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		state:  state,
		dryRun: dryRun,
		force:  force,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// fileInfo tracks a file's metadata for state DB operations.
type fileInfo struct {
	path string
	size int64
	hash string
}

// Run executes the upload pipeline for the manifest at manifestPath.
// Workbook paths in the manifest are relative to its directory.
func (u *Uploader) Run(ctx context.Context, manifestPath string) (*Stats, error) {
	m, err := LoadManifest(manifestPath)
	if err != nil {
		return &u.stats, err
	}
	baseDir := filepath.Dir(manifestPath)

	files, changed, err := u.checkFiles(manifestPath, baseDir, m)
	if err != nil {
		return &u.stats, err
	}
	if !changed && !u.force {
		u.log.Info("no changes since last upload", "client", m.ClientEmail)
		return &u.stats, nil
	}

	doc, err := u.buildDocument(baseDir, m)
	if err != nil {
		return &u.stats, err
	}
	u.stats.SheetsSent = doc.TotalSpreadsheets

	if u.dryRun {
		u.log.Info("dry-run: would send document",
			"client", doc.ClientEmail,
			"professionals", len(doc.Professionals),
			"spreadsheets", doc.TotalSpreadsheets,
		)
		return &u.stats, nil
	}

	res, err := u.client.SendClient(ctx, doc)
	if err != nil {
		return &u.stats, fmt.Errorf("sending %s: %w", doc.ClientEmail, err)
	}
	u.stats.Sent = true
	u.log.Info("uploaded client",
		"client", res.ClientEmail,
		"spreadsheets", res.TotalSpreadsheets,
	)

	for _, fi := range files {
		if err := u.state.MarkUploaded(fi.path, fi.size, fi.hash); err != nil {
			u.log.Warn("failed to mark uploaded", "file", fi.path, "error", err)
		}
	}
	if err := u.state.SetSyncState("last_upload:"+doc.ClientEmail, doc.LastUpdated.Format(time.RFC3339)); err != nil {
		u.log.Warn("failed to save sync state", "error", err)
	}

	return &u.stats, nil
}

// checkFiles hashes the manifest and every local workbook, reporting whether
// any of them differ from the last successful upload.
func (u *Uploader) checkFiles(manifestPath, baseDir string, m *Manifest) ([]fileInfo, bool, error) {
	paths := []string{manifestPath}
	seen := map[string]bool{}
	for _, p := range m.Professionals {
		for _, s := range p.Services {
			for _, wb := range s.Workbooks {
				if wb.Path == "" {
					continue
				}
				abs := resolve(baseDir, wb.Path)
				if !seen[abs] {
					seen[abs] = true
					paths = append(paths, abs)
				}
			}
		}
	}

	var files []fileInfo
	changed := false
	for _, path := range paths {
		u.stats.FilesTotal++

		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, false, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, false, fmt.Errorf("stat %s: %w", path, err)
		}
		hash, err := HashFile(abs)
		if err != nil {
			return nil, false, fmt.Errorf("hashing %s: %w", path, err)
		}

		uploaded, err := u.state.IsUploaded(abs, info.Size(), hash)
		if err != nil {
			return nil, false, fmt.Errorf("state check %s: %w", path, err)
		}
		if uploaded {
			u.stats.FilesSkipped++
		} else {
			u.stats.FilesChanged++
			changed = true
		}
		files = append(files, fileInfo{path: abs, size: info.Size(), hash: hash})
	}
	return files, changed, nil
}

// buildDocument reads every workbook into the manifest's skeleton document.
// A workbook that cannot be read fails the run so a partial document never
// replaces the stored one.
func (u *Uploader) buildDocument(baseDir string, m *Manifest) (models.ClientData, error) {
	doc := m.skeleton()
	now := u.now()

	for pi, p := range m.Professionals {
		for si, s := range p.Services {
			svc := &doc.Professionals[pi].Services[si]
			for _, wb := range s.Workbooks {
				sheets, err := readWorkbook(baseDir, wb, now)
				if err != nil {
					return doc, fmt.Errorf("service %s: %w", s.ID, err)
				}
				svc.Spreadsheets = append(svc.Spreadsheets, sheets...)
			}
		}
	}

	doc.CountSpreadsheets()
	doc.LastUpdated = now
	return doc, nil
}

func readWorkbook(baseDir string, wb ManifestWorkbook, now time.Time) ([]models.SheetData, error) {
	if wb.URL != "" {
		tabs := wb.Sheets
		if len(tabs) == 0 {
			tabs = []string{""}
		}
		out := make([]models.SheetData, 0, len(tabs))
		for _, tab := range tabs {
			out = append(out, models.SheetData{
				SheetID:    SheetID(wb.URL, tab),
				SheetURL:   wb.URL,
				SheetTitle: tab,
				Data:       models.Grid{},
				CreatedAt:  now,
			})
		}
		return out, nil
	}

	path := resolve(baseDir, wb.Path)
	var sheets []xlsx.Sheet
	switch {
	case strings.EqualFold(filepath.Ext(path), ".csv"):
		g, err := xlsx.ReadFile(path, "")
		if err != nil {
			return nil, err
		}
		sheets = []xlsx.Sheet{{Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), Grid: g}}
	case len(wb.Sheets) == 0:
		all, err := xlsx.ReadWorkbook(path)
		if err != nil {
			return nil, err
		}
		sheets = all
	default:
		for _, name := range wb.Sheets {
			g, err := xlsx.ReadSheet(path, name)
			if err != nil {
				return nil, err
			}
			sheets = append(sheets, xlsx.Sheet{Name: name, Grid: g})
		}
	}

	out := make([]models.SheetData, 0, len(sheets))
	for _, sh := range sheets {
		out = append(out, models.SheetData{
			SheetID:    SheetID(wb.Path, sh.Name),
			SheetURL:   filepath.ToSlash(wb.Path),
			SheetTitle: sh.Name,
			Data:       sh.Grid,
			RowCount:   len(sh.Grid),
			CreatedAt:  now,
		})
	}
	return out, nil
}

// SheetID derives a stable sheet ID from a workbook location and tab name,
// so exercise keys survive re-uploads.
func SheetID(location, tab string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(location+"#"+tab)).String()
}

func resolve(baseDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
