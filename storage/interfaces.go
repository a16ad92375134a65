package storage

import "estate-browser/models"

// FeedWriter is the interface any export backend must satisfy.
type FeedWriter interface {
	Name() string
	WriteSnapshot(snap *models.FeedSnapshot) error
	Close() error
}
