// Package uploader fans a batch of listing photos out to object storage
// and returns their URLs in the original order.
package uploader

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tenzind12/housing/internal/model"
)

// ObjectStore is the object storage boundary: upload a named blob, get a
// fetchable URL back; delete by the same key.
type ObjectStore interface {
	Upload(key string, data []byte, progress func(transferred, total int64)) (string, error)
	Delete(key string) error
}

// ProgressFunc observes per-task upload progress. Purely informational.
type ProgressFunc func(key string, transferred, total int64)

// UploadError reports which image of the batch failed first.
type UploadError struct {
	Index int
	Name  string
	Err   error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload image %d (%s): %v", e.Index, e.Name, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// Coordinator uploads every image of a submission concurrently. All
// uploads must succeed; on any failure the whole batch fails and objects
// already stored by sibling tasks are deleted best-effort.
type Coordinator struct {
	Store    ObjectStore
	Progress ProgressFunc
}

func NewCoordinator(store ObjectStore) *Coordinator {
	return &Coordinator{
		Store: store,
		Progress: func(key string, transferred, total int64) {
			log.Printf("upload %s: %d/%d bytes", key, transferred, total)
		},
	}
}

// UploadAll launches one upload task per image. The returned URL sequence
// matches the input order regardless of completion order. Tasks are not
// cancelled on sibling failure; they run to completion and the first error
// wins.
func (c *Coordinator) UploadAll(ownerID string, images []model.ImageFile) ([]string, error) {
	urls := make([]string, len(images))
	keys := make([]string, len(images))

	var g errgroup.Group
	for i, img := range images {
		i, img := i, img
		// Key derivation matches the form cap of 6 concurrent tasks; the
		// random token keeps keys unique across submissions reusing the
		// same file names.
		key := fmt.Sprintf("%s-%s-%s", ownerID, img.Name, uuid.NewString())
		keys[i] = key

		g.Go(func() error {
			url, err := c.Store.Upload(key, img.Data, func(transferred, total int64) {
				if c.Progress != nil {
					c.Progress(key, transferred, total)
				}
			})
			if err != nil {
				return &UploadError{Index: i, Name: img.Name, Err: err}
			}
			urls[i] = url
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		c.cleanup(keys, urls)
		return nil, err
	}
	return urls, nil
}

// cleanup deletes the objects that sibling tasks managed to store before
// the batch failed. Failures here are logged only; nothing references the
// objects yet.
func (c *Coordinator) cleanup(keys, urls []string) {
	for i, url := range urls {
		if url == "" {
			continue
		}
		if err := c.Store.Delete(keys[i]); err != nil {
			log.Printf("cleanup of %s failed: %v", keys[i], err)
		}
	}
}
