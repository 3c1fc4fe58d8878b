// Package firestore loads client documents from a Firestore "clients"
// collection, the directory professionals maintain from their dashboard.
package firestore

import (
	"context"
	"errors"
	"fmt"

	fs "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/claude/clientportal/internal/models"
)

// Collection is the default collection holding client documents.
const Collection = "clients"

// ErrClientNotFound is returned when no document matches an email.
var ErrClientNotFound = errors.New("client not found in directory")

// Directory reads client documents.
type Directory struct {
	client     *fs.Client
	collection string
}

// New opens a Firestore client for the given project.
func New(ctx context.Context, projectID, collection string, opts ...option.ClientOption) (*Directory, error) {
	client, err := fs.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}
	if collection == "" {
		collection = Collection
	}
	return &Directory{client: client, collection: collection}, nil
}

// Close releases the underlying client.
func (d *Directory) Close() error {
	return d.client.Close()
}

// Client returns the document whose clientEmail matches email. Documents
// keyed by the email itself are found too.
func (d *Directory) Client(ctx context.Context, email string) (*models.ClientData, error) {
	docs, err := d.client.Collection(d.collection).
		Where("clientEmail", "==", email).
		Limit(1).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, fmt.Errorf("querying client %s: %w", email, err)
	}
	if len(docs) > 0 {
		c := ClientFromMap(docs[0].Ref.ID, docs[0].Data())
		return &c, nil
	}

	snap, err := d.client.Collection(d.collection).Doc(email).Get(ctx)
	if err != nil {
		if !snap.Exists() {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("reading client %s: %w", email, err)
	}
	c := ClientFromMap(snap.Ref.ID, snap.Data())
	return &c, nil
}

// Clients returns every client document in the collection.
func (d *Directory) Clients(ctx context.Context) ([]models.ClientData, error) {
	iter := d.client.Collection(d.collection).Documents(ctx)
	defer iter.Stop()

	var out []models.ClientData
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing clients: %w", err)
		}
		out = append(out, ClientFromMap(doc.Ref.ID, doc.Data()))
	}
	return out, nil
}
