package jsondb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/google/uuid"

	"github.com/patric-chuzhbe/biolink/internal/models"
	"github.com/patric-chuzhbe/biolink/internal/user"
)

// JSONDB is a file-backed document store. All collections live in an
// in-memory cache which is written back to the file on Close.
type JSONDB struct {
	fileName string
	Cache    CacheStruct
}

// CacheStruct holds every collection of the store.
type CacheStruct struct {
	Users         map[string]*user.User
	EmailToUserID map[string]string
	Profiles      map[string]*models.Profile
	UsernameToID  map[string]string
	Links         map[string]*models.Link
}

func emptyCache() CacheStruct {
	return CacheStruct{
		Users:         map[string]*user.User{},
		EmailToUserID: map[string]string{},
		Profiles:      map[string]*models.Profile{},
		UsernameToID:  map[string]string{},
		Links:         map[string]*models.Link{},
	}
}

func initDBFile(fileName string) error {
	dbFile, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(dbFile, `{
	"Users": {},
	"EmailToUserID": {},
	"Profiles": {},
	"UsernameToID": {},
	"Links": {}
}`)
	if err != nil {
		return err
	}
	return dbFile.Close()
}

func writeToJSONFile(fileName string, cache interface{}) error {
	jsonData, err := json.MarshalIndent(cache, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %s", err)
	}

	file, err2 := os.OpenFile(fileName, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err2 != nil {
		return fmt.Errorf("error opening file: %s", err2)
	}
	defer file.Close()

	_, err = file.Write(jsonData)
	if err != nil {
		return fmt.Errorf("error writing to file: %s", err)
	}

	return nil
}

func parseJSONFile(fileName string, cacheMap *CacheStruct) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	err = decoder.Decode(cacheMap)
	if err != nil {
		return err
	}

	return nil
}

// New opens the store, creating and initializing the file when missing.
func New(fileName string) (*JSONDB, error) {
	theDB := JSONDB{
		fileName: fileName,
		Cache:    emptyCache(),
	}

	err := parseJSONFile(theDB.fileName, &theDB.Cache)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		err := initDBFile(fileName)
		if err != nil {
			return nil, err
		}
		err = parseJSONFile(theDB.fileName, &theDB.Cache)
		if err != nil {
			return nil, err
		}
	}

	return &theDB, nil
}

// Close persists the cache back to the file.
func (db *JSONDB) Close() error {
	err := writeToJSONFile(db.fileName, db.Cache)
	if err != nil {
		return err
	}

	return nil
}

// Ping reports the store as always reachable.
func (db *JSONDB) Ping(ctx context.Context) error {
	return nil
}

// The cache never shares pointers with callers: rows are copied on both
// insert and read so an in-memory edit on the caller's side cannot leak
// into the store before it is explicitly persisted.

// CreateUser stores the user, assigning an id when the caller left it empty.
func (db *JSONDB) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	if usr.ID == "" {
		usr.ID = uuid.New().String()
	}
	stored := *usr
	db.Cache.Users[stored.ID] = &stored
	db.Cache.EmailToUserID[stored.Email] = stored.ID

	return stored.ID, nil
}

// GetUserByID looks a user up by id.
func (db *JSONDB) GetUserByID(ctx context.Context, userID string) (*user.User, bool, error) {
	usr, found := db.Cache.Users[userID]
	if !found {
		return nil, false, nil
	}
	result := *usr

	return &result, true, nil
}

// GetUserByEmail looks a user up by email.
func (db *JSONDB) GetUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	userID, found := db.Cache.EmailToUserID[email]
	if !found {
		return nil, false, nil
	}

	return db.GetUserByID(ctx, userID)
}

// UpdateUser replaces the stored user row.
func (db *JSONDB) UpdateUser(ctx context.Context, usr *user.User) error {
	stored := *usr
	db.Cache.Users[stored.ID] = &stored
	db.Cache.EmailToUserID[stored.Email] = stored.ID

	return nil
}

// GetProfileByID looks a profile up by its owner's id.
func (db *JSONDB) GetProfileByID(ctx context.Context, userID string) (*models.Profile, bool, error) {
	profile, found := db.Cache.Profiles[userID]
	if !found {
		return nil, false, nil
	}
	result := *profile

	return &result, true, nil
}

// GetProfileByUsername looks a profile up by username.
func (db *JSONDB) GetProfileByUsername(ctx context.Context, username string) (*models.Profile, bool, error) {
	userID, found := db.Cache.UsernameToID[username]
	if !found {
		return nil, false, nil
	}

	return db.GetProfileByID(ctx, userID)
}

// InsertProfile stores a new profile; the username and the owner must
// both be unclaimed.
func (db *JSONDB) InsertProfile(ctx context.Context, profile *models.Profile) error {
	if _, taken := db.Cache.UsernameToID[profile.Username]; taken {
		return models.ErrUsernameTaken
	}
	if _, taken := db.Cache.Profiles[profile.ID]; taken {
		return models.ErrUsernameTaken
	}

	stored := *profile
	db.Cache.Profiles[stored.ID] = &stored
	db.Cache.UsernameToID[stored.Username] = stored.ID

	return nil
}

// UpdateProfile applies the patch to the stored profile.
func (db *JSONDB) UpdateProfile(ctx context.Context, userID string, patch models.ProfilePatch) error {
	profile, found := db.Cache.Profiles[userID]
	if !found {
		return models.ErrProfileNotFound
	}

	profile.Apply(patch)

	return nil
}

// GetUserLinks returns the user's links ordered by order index ascending,
// ties broken by id.
func (db *JSONDB) GetUserLinks(ctx context.Context, userID string) ([]*models.Link, error) {
	links := []*models.Link{}
	for _, link := range db.Cache.Links {
		if link.UserID == userID {
			result := *link
			links = append(links, &result)
		}
	}

	sort.Slice(links, func(i, j int) bool {
		if links[i].OrderIndex != links[j].OrderIndex {
			return links[i].OrderIndex < links[j].OrderIndex
		}
		return links[i].ID < links[j].ID
	})

	return links, nil
}

// InsertLink stores a copy of the link and returns the assigned id.
func (db *JSONDB) InsertLink(ctx context.Context, link *models.Link) (string, error) {
	stored := *link
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	db.Cache.Links[stored.ID] = &stored

	return stored.ID, nil
}

// UpdateLink applies the patch to the stored link.
func (db *JSONDB) UpdateLink(ctx context.Context, linkID string, patch models.LinkPatch) error {
	link, found := db.Cache.Links[linkID]
	if !found {
		return models.ErrLinkNotFound
	}

	link.Apply(patch)

	return nil
}

// DeleteLink removes the link. Remaining links keep their order index
// values; order index is a sort key, not a dense sequence.
func (db *JSONDB) DeleteLink(ctx context.Context, linkID string) error {
	if _, found := db.Cache.Links[linkID]; !found {
		return models.ErrLinkNotFound
	}

	delete(db.Cache.Links, linkID)

	return nil
}

// GetNumberOfProfiles returns the profile count.
func (db *JSONDB) GetNumberOfProfiles(ctx context.Context) (int64, error) {
	return int64(len(db.Cache.Profiles)), nil
}

// GetNumberOfLinks returns the link count.
func (db *JSONDB) GetNumberOfLinks(ctx context.Context) (int64, error) {
	return int64(len(db.Cache.Links)), nil
}
