package repository

import (
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
)

// uploadChunkSize is how many bytes are written between progress reports.
const uploadChunkSize = 32 * 1024

// PhotoRepository stores photo blobs in a GridFS bucket and hands back
// publicly fetchable URLs served by the photo route.
type PhotoRepository struct {
	DB      *mongo.Database
	BaseURL string
}

func NewPhotoRepository(client *mongo.Client, dbName, baseURL string) *PhotoRepository {
	return &PhotoRepository{DB: client.Database(dbName), BaseURL: baseURL}
}

// Upload stores one blob under the given storage key and returns its URL.
// progress, when non-nil, is called after every chunk with the bytes
// transferred so far and the total size.
func (r *PhotoRepository) Upload(key string, data []byte, progress func(transferred, total int64)) (string, error) {
	bucket, err := gridfs.NewBucket(r.DB)
	if err != nil {
		return "", err
	}

	stream, err := bucket.OpenUploadStream(key)
	if err != nil {
		return "", err
	}

	total := int64(len(data))
	var written int64
	for written < total {
		end := written + uploadChunkSize
		if end > total {
			end = total
		}
		n, err := stream.Write(data[written:end])
		if err != nil {
			stream.Close()
			return "", err
		}
		written += int64(n)
		if progress != nil {
			progress(written, total)
		}
	}

	if err := stream.Close(); err != nil {
		return "", err
	}

	id, ok := stream.FileID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected GridFS file id type %T", stream.FileID)
	}
	return fmt.Sprintf("%s/api/photos/%s", r.BaseURL, id.Hex()), nil
}

// Delete removes the blob stored under key. Used to clean up siblings of a
// failed upload batch.
func (r *PhotoRepository) Delete(key string) error {
	bucket, err := gridfs.NewBucket(r.DB)
	if err != nil {
		return err
	}

	cursor, err := bucket.Find(bson.M{"filename": key})
	if err != nil {
		return err
	}
	defer cursor.Close(nil)

	for cursor.Next(nil) {
		var file struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&file); err != nil {
			return err
		}
		if err := bucket.Delete(file.ID); err != nil {
			return err
		}
	}
	return cursor.Err()
}

// Download returns the raw bytes of a stored photo by its object id.
func (r *PhotoRepository) Download(photoID string) ([]byte, error) {
	bucket, err := gridfs.NewBucket(r.DB)
	if err != nil {
		return nil, err
	}

	objID, err := primitive.ObjectIDFromHex(photoID)
	if err != nil {
		return nil, err
	}

	stream, err := bucket.OpenDownloadStream(objID)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	return io.ReadAll(stream)
}
