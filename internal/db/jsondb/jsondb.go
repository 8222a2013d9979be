// Package jsondb is a JSON-file document store holding users, contents and share links.
// Every mutation is written through to the file; an empty file name keeps the data in memory only.
package jsondb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/brainly/internal/models"
	"github.com/patric-chuzhbe/brainly/internal/user"
)

type JSONDB struct {
	mu       sync.RWMutex
	fileName string
	Cache    CacheStruct
}

type CacheStruct struct {
	Users      map[string]*user.User
	Contents   []*models.Content
	ShareLinks map[string]*models.ShareLink
}

// NewCache returns an empty, ready to use cache.
func NewCache() CacheStruct {
	return CacheStruct{
		Users:      map[string]*user.User{},
		Contents:   []*models.Content{},
		ShareLinks: map[string]*models.ShareLink{},
	}
}

func New(fileName string) (*JSONDB, error) {
	db := &JSONDB{
		fileName: fileName,
		Cache:    NewCache(),
	}

	err := parseJSONFile(fileName, &db.Cache)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		if err := writeToJSONFile(fileName, db.Cache); err != nil {
			return nil, err
		}
	}
	db.Cache.normalize()

	return db, nil
}

func (c *CacheStruct) normalize() {
	if c.Users == nil {
		c.Users = map[string]*user.User{}
	}
	if c.Contents == nil {
		c.Contents = []*models.Content{}
	}
	if c.ShareLinks == nil {
		c.ShareLinks = map[string]*models.ShareLink{}
	}
}

func writeToJSONFile(fileName string, cache interface{}) error {
	jsonData, err := json.MarshalIndent(cache, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}

	if err := os.WriteFile(fileName, jsonData, 0644); err != nil {
		return fmt.Errorf("error writing to file: %w", err)
	}

	return nil
}

func parseJSONFile(fileName string, cache *CacheStruct) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(cache)
}

// persist must be called with the write lock held.
func (db *JSONDB) persist() error {
	if db.fileName == "" {
		return nil
	}

	return writeToJSONFile(db.fileName, db.Cache)
}

// commit persists the cache and undoes the pending change with rollback when the write fails.
// It must be called with the write lock held.
func (db *JSONDB) commit(rollback func()) error {
	if err := db.persist(); err != nil {
		rollback()
		return err
	}

	return nil
}

func (db *JSONDB) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, existing := range db.Cache.Users {
		if existing.Name == usr.Name {
			return "", models.ErrDuplicateUserName
		}
	}

	stored := *usr
	stored.ID = uuid.NewString()
	db.Cache.Users[stored.ID] = &stored

	err := db.commit(func() {
		delete(db.Cache.Users, stored.ID)
	})
	if err != nil {
		return "", err
	}

	return stored.ID, nil
}

func (db *JSONDB) GetUserByName(ctx context.Context, name string) (*user.User, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, usr := range db.Cache.Users {
		if usr.Name == name {
			found := *usr
			return &found, true, nil
		}
	}

	return nil, false, nil
}

func (db *JSONDB) GetUserByID(ctx context.Context, userID string) (*user.User, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	usr, ok := db.Cache.Users[userID]
	if !ok {
		return nil, false, nil
	}
	found := *usr

	return &found, true, nil
}

func (db *JSONDB) InsertContent(ctx context.Context, content *models.Content) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	stored := *content
	stored.ID = uuid.NewString()
	stored.Tags = append([]string{}, content.Tags...)
	previous := db.Cache.Contents
	db.Cache.Contents = append(previous[:len(previous):len(previous)], &stored)

	err := db.commit(func() {
		db.Cache.Contents = previous
	})
	if err != nil {
		return "", err
	}

	return stored.ID, nil
}

func (db *JSONDB) GetUserContents(ctx context.Context, userID string) ([]models.Content, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	owned := funk.Filter(db.Cache.Contents, func(c *models.Content) bool {
		return c.UserID == userID
	}).([]*models.Content)

	result := make([]models.Content, 0, len(owned))
	for _, c := range owned {
		item := *c
		item.Tags = append([]string{}, c.Tags...)
		result = append(result, item)
	}

	return result, nil
}

func (db *JSONDB) DeleteUserContent(ctx context.Context, userID, contentID string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	previous := db.Cache.Contents
	for i, c := range previous {
		if c.ID == contentID && c.UserID == userID {
			remaining := make([]*models.Content, 0, len(previous)-1)
			remaining = append(remaining, previous[:i]...)
			db.Cache.Contents = append(remaining, previous[i+1:]...)

			err := db.commit(func() {
				db.Cache.Contents = previous
			})
			if err != nil {
				return false, err
			}

			return true, nil
		}
	}

	return false, nil
}

func (db *JSONDB) IsShareHashExists(ctx context.Context, hash string) (bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	_, exists := db.Cache.ShareLinks[hash]

	return exists, nil
}

func (db *JSONDB) InsertShareLink(ctx context.Context, link *models.ShareLink) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.Cache.ShareLinks[link.Hash]; exists {
		return models.ErrDuplicateShareHash
	}
	stored := *link
	db.Cache.ShareLinks[stored.Hash] = &stored

	return db.commit(func() {
		delete(db.Cache.ShareLinks, stored.Hash)
	})
}

func (db *JSONDB) FindShareLinkByHash(ctx context.Context, hash string) (*models.ShareLink, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	link, ok := db.Cache.ShareLinks[hash]
	if !ok {
		return nil, false, nil
	}
	found := *link

	return &found, true, nil
}

func (db *JSONDB) DeleteUserShareLinks(ctx context.Context, userID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	removed := map[string]*models.ShareLink{}
	for hash, link := range db.Cache.ShareLinks {
		if link.UserID == userID {
			delete(db.Cache.ShareLinks, hash)
			removed[hash] = link
		}
	}
	if len(removed) == 0 {
		return nil
	}

	return db.commit(func() {
		for hash, link := range removed {
			db.Cache.ShareLinks[hash] = link
		}
	})
}

func (db *JSONDB) GetNumberOfUsers(ctx context.Context) (int64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return int64(len(db.Cache.Users)), nil
}

func (db *JSONDB) GetNumberOfContents(ctx context.Context) (int64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return int64(len(db.Cache.Contents)), nil
}

func (db *JSONDB) GetNumberOfShareLinks(ctx context.Context) (int64, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return int64(len(db.Cache.ShareLinks)), nil
}

func (db *JSONDB) Ping(ctx context.Context) error {
	return nil
}

func (db *JSONDB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.persist()
}
