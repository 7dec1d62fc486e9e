package sink

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"

	"github.com/okian/autoapply/internal/domain/model"
)

// Firestore writes one document per run into a collection.
type Firestore struct {
	client     *firestore.Client
	collection string
}

// NewFirestore connects to projectID. An empty projectID is detected from the
// credentials; an empty credentialsFile falls back to application default
// credentials.
func NewFirestore(ctx context.Context, projectID, collection, credentialsFile string) (*Firestore, error) {
	if projectID == "" {
		projectID = firestore.DetectProjectID
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: firestore: %w", ErrConnect, err)
	}
	if collection == "" {
		collection = "applications"
	}
	return &Firestore{client: client, collection: collection}, nil
}

// Upsert implements Sink with a merge-all set.
func (f *Firestore) Upsert(ctx context.Context, rec model.RunRecord) error { //nolint:gocritic // hugeParam: matches Sink
	_, err := f.client.Collection(f.collection).Doc(rec.RunID).Set(ctx, rec.Fields(), firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("%w: firestore %s/%s: %w", ErrWrite, f.collection, rec.RunID, err)
	}
	return nil
}

// Name implements Sink.
func (*Firestore) Name() string { return "firestore" }

// Close implements Sink.
func (f *Firestore) Close() error { return f.client.Close() }
