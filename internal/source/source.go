// Package source defines how grids are fetched for a sheet. The sheets,
// xlsx and firestore subpackages are the concrete backends.
package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/claude/clientportal/internal/models"
)

// GridFetcher loads the current grid for one sheet of a service.
type GridFetcher interface {
	FetchGrid(ctx context.Context, sheet models.SheetData) (models.Grid, error)
}

// Directory loads client documents from the system of record.
type Directory interface {
	Client(ctx context.Context, email string) (*models.ClientData, error)
	Clients(ctx context.Context) ([]models.ClientData, error)
}

// ErrStatic marks a sheet that has no live source, such as an uploaded
// snapshot on a server without a workbook directory. Its grid stays as is.
var ErrStatic = errors.New("sheet has no live source")

// Switch sends http(s) sheet URLs to Remote and everything else to Local.
// A sheet without a URL, or whose backend is nil, is ErrStatic.
type Switch struct {
	Remote GridFetcher
	Local  GridFetcher
}

// FetchGrid implements GridFetcher.
func (s Switch) FetchGrid(ctx context.Context, sheet models.SheetData) (models.Grid, error) {
	next := s.Local
	if strings.HasPrefix(sheet.SheetURL, "https://") || strings.HasPrefix(sheet.SheetURL, "http://") {
		next = s.Remote
	}
	if next == nil || sheet.SheetURL == "" {
		return nil, fmt.Errorf("sheet %q (%s): %w", sheet.SheetID, sheet.SheetURL, ErrStatic)
	}
	return next.FetchGrid(ctx, sheet)
}
