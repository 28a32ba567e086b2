// Package remote copies benchmark result files from Azure Blob Storage into a
// local results directory.
package remote

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/grainchain/grainbench/internal/store"
	"golang.org/x/sync/errgroup"
)

const maxParallelDownloads = 4

// blobAPI is the subset of *azblob.Client used by Syncer.
type blobAPI interface {
	NewListBlobsFlatPager(containerName string, o *azblob.ListBlobsFlatOptions) *runtime.Pager[azblob.ListBlobsFlatResponse]
	DownloadFile(ctx context.Context, containerName, blobName string, file *os.File, o *azblob.DownloadFileOptions) (int64, error)
}

// Result lists the local file names a sync touched.
type Result struct {
	Downloaded []string `json:"downloaded"`
	Skipped    []string `json:"skipped"`
}

// Syncer downloads result blobs from one container.
type Syncer struct {
	client    blobAPI
	container string
	prefix    string
	logger    *slog.Logger
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithPrefix restricts the sync to blobs whose names start with prefix.
func WithPrefix(prefix string) Option {
	return func(s *Syncer) { s.prefix = prefix }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Syncer) { s.logger = l }
}

// NewSyncer connects to the storage account at accountURL using the default
// Azure credential chain (environment, workload identity, managed identity,
// Azure CLI).
func NewSyncer(accountURL, container string, opts ...Option) (*Syncer, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("creating Azure credential: %w", err)
	}
	client, err := azblob.NewClient(accountURL, cred, &azblob.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry:     policy.RetryOptions{MaxRetries: 3},
			Telemetry: policy.TelemetryOptions{ApplicationID: "grainbench"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating blob client: %w", err)
	}
	return newSyncer(client, container, opts...), nil
}

func newSyncer(client blobAPI, container string, opts ...Option) *Syncer {
	s := &Syncer{client: client, container: container, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type blobRef struct {
	name string
	file string
	size int64
}

// Sync downloads every result blob missing from dir. A local file with the
// same name and size is left alone.
func (s *Syncer) Sync(ctx context.Context, dir string) (Result, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("creating results directory: %w", err)
	}

	blobs, err := s.list(ctx)
	if err != nil {
		return Result{}, err
	}

	var (
		mu  sync.Mutex
		res Result
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelDownloads)
	for _, b := range blobs {
		local := filepath.Join(dir, b.file)
		if fi, err := os.Stat(local); err == nil && fi.Size() == b.size {
			res.Skipped = append(res.Skipped, b.file)
			continue
		}
		g.Go(func() error {
			if err := s.download(ctx, b, local); err != nil {
				return err
			}
			mu.Lock()
			res.Downloaded = append(res.Downloaded, b.file)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	sort.Strings(res.Downloaded)
	sort.Strings(res.Skipped)
	s.logger.Info("synced benchmark results", "container", s.container, "downloaded", len(res.Downloaded), "skipped", len(res.Skipped))
	return res, nil
}

func (s *Syncer) list(ctx context.Context) ([]blobRef, error) {
	opts := &azblob.ListBlobsFlatOptions{}
	if s.prefix != "" {
		opts.Prefix = &s.prefix
	}

	var blobs []blobRef
	pager := s.client.NewListBlobsFlatPager(s.container, opts)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing blobs in %s: %w", s.container, err)
		}
		if page.Segment == nil {
			continue
		}
		for _, item := range page.Segment.BlobItems {
			if item == nil || item.Name == nil {
				continue
			}
			file := path.Base(*item.Name)
			if !store.IsResultFile(file) {
				continue
			}
			ref := blobRef{name: *item.Name, file: file}
			if item.Properties != nil && item.Properties.ContentLength != nil {
				ref.size = *item.Properties.ContentLength
			}
			blobs = append(blobs, ref)
		}
	}
	return blobs, nil
}

// download writes the blob to a temporary file in the target directory and
// renames it into place.
func (s *Syncer) download(ctx context.Context, b blobRef, local string) error {
	tmp, err := os.CreateTemp(filepath.Dir(local), ".download-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := s.client.DownloadFile(ctx, s.container, b.name, tmp, nil)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("downloading %s: %w", b.name, err)
	}
	if err := os.Rename(tmp.Name(), local); err != nil {
		return fmt.Errorf("saving %s: %w", b.file, err)
	}
	s.logger.Debug("downloaded blob", "blob", b.name, "bytes", n)
	return nil
}
