// Package postgresdb provides a PostgreSQL-based implementation of the
// storage interface for persisting users, profiles and links.
package postgresdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/thoas/go-funk"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/patric-chuzhbe/biolink/internal/models"
	"github.com/patric-chuzhbe/biolink/internal/user"
)

// PostgresDB is a PostgreSQL-backed implementation of the document store.
// It handles all persistence operations via a PostgreSQL database connection.
type PostgresDB struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

type initOptions struct {
	DBPreReset bool
}

// InitOption defines a functional option for configuring database initialization.
type InitOption func(*initOptions)

// WithDBPreReset enables or disables resetting the database schema before migration.
// It can be used for test setups or development purposes.
func WithDBPreReset(value bool) InitOption {
	return func(options *initOptions) {
		options.DBPreReset = value
	}
}

// New establishes a connection to the PostgreSQL database,
// runs schema migrations, and returns a configured PostgresDB instance.
// Optionally accepts initialization options, such as WithDBPreReset.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	migrationsDir string,
	optionsProto ...InitOption,
) (*PostgresDB, error) {
	options := &initOptions{
		DBPreReset: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	database, err := sql.Open("pgx", databaseDSN)
	if err != nil {
		return nil, err
	}

	result := &PostgresDB{
		database:          database,
		connectionTimeout: connectionTimeout,
	}

	if options.DBPreReset {
		if err := result.resetDB(ctx); err != nil {
			return nil,
				fmt.Errorf(
					"in internal/db/postgresdb/postgresdb.go/New(): error while `result.resetDB()` calling: %w",
					err,
				)
		}
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return nil,
			fmt.Errorf(
				"in internal/db/postgresdb/postgresdb.go/New(): error while `goose.SetDialect()` calling: %w",
				err,
			)
	}

	if err := goose.Up(result.database, migrationsDir); err != nil {
		return nil,
			fmt.Errorf(
				"in internal/db/postgresdb/postgresdb.go/New(): error while `goose.Up()` calling: %w",
				err,
			)
	}

	return result, nil
}

// CreateUser inserts a new user record into the database.
// Returns the created user ID or an error if insertion fails.
func (db *PostgresDB) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	row := db.database.QueryRowContext(
		ctx,
		`
			INSERT INTO users (id, email, password_hash, one_time_code)
				VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4)
				RETURNING id
		`,
		usr.ID,
		usr.Email,
		usr.PasswordHash,
		usr.OneTimeCode,
	)
	var userIDFromDB string
	err := row.Scan(&userIDFromDB)
	if err != nil {
		return "", err
	}

	return userIDFromDB, nil
}

// GetUserByID fetches a user by their UUID from the database.
func (db *PostgresDB) GetUserByID(ctx context.Context, userID string) (*user.User, bool, error) {
	row := db.database.QueryRowContext(
		ctx,
		`SELECT id, email, password_hash, one_time_code FROM users WHERE id = $1`,
		userID,
	)

	return scanUser(row)
}

// GetUserByEmail fetches a user by their email from the database.
func (db *PostgresDB) GetUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	row := db.database.QueryRowContext(
		ctx,
		`SELECT id, email, password_hash, one_time_code FROM users WHERE email = $1`,
		email,
	)

	return scanUser(row)
}

func scanUser(row *sql.Row) (*user.User, bool, error) {
	usr := &user.User{}
	err := row.Scan(&usr.ID, &usr.Email, &usr.PasswordHash, &usr.OneTimeCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return usr, true, nil
}

// UpdateUser replaces the mutable user columns.
func (db *PostgresDB) UpdateUser(ctx context.Context, usr *user.User) error {
	_, err := db.database.ExecContext(
		ctx,
		`
			UPDATE users
				SET email = $2,
					password_hash = $3,
					one_time_code = $4
				WHERE id = $1
		`,
		usr.ID,
		usr.Email,
		usr.PasswordHash,
		usr.OneTimeCode,
	)
	if err != nil {
		return err
	}

	return nil
}

const profileColumns = `
	id,
	username,
	COALESCE(display_name, ''),
	COALESCE(bio, ''),
	COALESCE(avatar_url, ''),
	COALESCE(theme_id, ''),
	COALESCE(button_color, ''),
	COALESCE(button_text_color, ''),
	COALESCE(social_email, ''),
	COALESCE(social_instagram, ''),
	COALESCE(social_youtube, ''),
	COALESCE(social_telegram, ''),
	COALESCE(social_twitter, '')
`

// GetProfileByID fetches a profile by its owner's id.
func (db *PostgresDB) GetProfileByID(ctx context.Context, userID string) (*models.Profile, bool, error) {
	row := db.database.QueryRowContext(
		ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`,
		userID,
	)

	return scanProfile(row)
}

// GetProfileByUsername fetches a profile by its public username.
func (db *PostgresDB) GetProfileByUsername(ctx context.Context, username string) (*models.Profile, bool, error) {
	row := db.database.QueryRowContext(
		ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE username = $1`,
		username,
	)

	return scanProfile(row)
}

func scanProfile(row *sql.Row) (*models.Profile, bool, error) {
	profile := &models.Profile{}
	err := row.Scan(
		&profile.ID,
		&profile.Username,
		&profile.DisplayName,
		&profile.Bio,
		&profile.AvatarURL,
		&profile.ThemeID,
		&profile.ButtonColor,
		&profile.ButtonTextColor,
		&profile.SocialEmail,
		&profile.SocialInstagram,
		&profile.SocialYoutube,
		&profile.SocialTelegram,
		&profile.SocialTwitter,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return profile, true, nil
}

// InsertProfile stores a new profile. The username and the owner must
// both be unclaimed; on a conflict models.ErrUsernameTaken is returned.
func (db *PostgresDB) InsertProfile(ctx context.Context, profile *models.Profile) error {
	row := db.database.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM profiles WHERE username = $1 OR id = $2`,
		profile.Username,
		profile.ID,
	)
	var conflicting int
	if err := row.Scan(&conflicting); err != nil {
		return err
	}
	if conflicting > 0 {
		return models.ErrUsernameTaken
	}

	_, err := db.database.ExecContext(
		ctx,
		`
			INSERT INTO profiles (id, username, display_name, theme_id)
				VALUES ($1, $2, $3, $4)
		`,
		profile.ID,
		profile.Username,
		profile.DisplayName,
		profile.ThemeID,
	)
	if err != nil {
		return err
	}

	return nil
}

// UpdateProfile applies the patch to the stored profile. Patch keys are
// wire field names; nil values write SQL NULL.
func (db *PostgresDB) UpdateProfile(ctx context.Context, userID string, patch models.ProfilePatch) error {
	if len(patch) == 0 {
		return nil
	}

	setClauses, queryParams := buildSetClauses(map[string]any(patch), 2)

	result, err := db.database.ExecContext(
		ctx,
		fmt.Sprintf(`UPDATE profiles SET %s WHERE id = $1`, setClauses),
		append([]interface{}{userID}, queryParams...)...,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrProfileNotFound
	}

	return nil
}

// GetUserLinks retrieves all links for a given user, ordered by order
// index ascending, ties broken by id.
func (db *PostgresDB) GetUserLinks(ctx context.Context, userID string) ([]*models.Link, error) {
	rows, err := db.database.QueryContext(
		ctx,
		`
			SELECT
					id,
					user_id,
					COALESCE(title, ''),
					COALESCE(url, ''),
					is_enabled,
					order_index,
					COALESCE(image_url, ''),
					COALESCE(icon, '')
				FROM links
				WHERE user_id = $1
				ORDER BY order_index ASC, id ASC
		`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []*models.Link{}
	for rows.Next() {
		link := &models.Link{}
		err = rows.Scan(
			&link.ID,
			&link.UserID,
			&link.Title,
			&link.URL,
			&link.IsEnabled,
			&link.OrderIndex,
			&link.ImageURL,
			&link.Icon,
		)
		if err != nil {
			return nil, err
		}

		result = append(result, link)
	}

	err = rows.Err()
	if err != nil {
		return nil, err
	}

	return result, nil
}

// InsertLink creates a new link row and returns the assigned identifier.
func (db *PostgresDB) InsertLink(ctx context.Context, link *models.Link) (string, error) {
	row := db.database.QueryRowContext(
		ctx,
		`
			INSERT INTO links (id, user_id, title, url, is_enabled, order_index, image_url, icon)
				VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, $6, $7, $8)
				RETURNING id
		`,
		link.ID,
		link.UserID,
		link.Title,
		link.URL,
		link.IsEnabled,
		link.OrderIndex,
		link.ImageURL,
		link.Icon,
	)
	var linkIDFromDB string
	err := row.Scan(&linkIDFromDB)
	if err != nil {
		return "", err
	}

	return linkIDFromDB, nil
}

// UpdateLink applies the patch to the stored link.
func (db *PostgresDB) UpdateLink(ctx context.Context, linkID string, patch models.LinkPatch) error {
	if len(patch) == 0 {
		return nil
	}

	setClauses, queryParams := buildSetClauses(map[string]any(patch), 2)

	result, err := db.database.ExecContext(
		ctx,
		fmt.Sprintf(`UPDATE links SET %s WHERE id = $1`, setClauses),
		append([]interface{}{linkID}, queryParams...)...,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrLinkNotFound
	}

	return nil
}

// DeleteLink removes the link row. Remaining rows keep their order index
// values.
func (db *PostgresDB) DeleteLink(ctx context.Context, linkID string) error {
	result, err := db.database.ExecContext(
		ctx,
		`DELETE FROM links WHERE id = $1`,
		linkID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrLinkNotFound
	}

	return nil
}

// GetNumberOfProfiles returns the profile count.
func (db *PostgresDB) GetNumberOfProfiles(ctx context.Context) (int64, error) {
	return db.countRows(ctx, `SELECT COUNT(*) FROM profiles`)
}

// GetNumberOfLinks returns the link count.
func (db *PostgresDB) GetNumberOfLinks(ctx context.Context) (int64, error) {
	return db.countRows(ctx, `SELECT COUNT(*) FROM links`)
}

func (db *PostgresDB) countRows(ctx context.Context, query string) (int64, error) {
	row := db.database.QueryRowContext(ctx, query)
	var count int64
	err := row.Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Ping verifies connectivity with the PostgreSQL database within the configured timeout.
func (db *PostgresDB) Ping(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.database.PingContext(ctxWithTimeout)
}

// Close closes the database connection and releases any associated resources.
func (db *PostgresDB) Close() error {
	err := db.database.Close()
	if err != nil {
		return err
	}

	return nil
}

func (db *PostgresDB) resetDB(ctx context.Context) error {
	_, err := db.database.ExecContext(
		ctx,
		`
			DO $$
			DECLARE
				r RECORD;
			BEGIN
				FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = 'public') LOOP
					EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
				END LOOP;
			END $$;
		`,
	)
	if err != nil {
		return fmt.Errorf(
			"in internal/db/postgresdb/postgresdb.go/resetDB(): error while `db.database.ExecContext()` calling: %w",
			err,
		)
	}
	return nil
}

// buildSetClauses renders a patch as `"col" = $N` assignments with
// deterministic column order. Placeholders are numbered from firstParam.
func buildSetClauses(patch map[string]any, firstParam int) (string, []interface{}) {
	columns := funk.Keys(patch).([]string)
	sort.Strings(columns)

	clauses := make([]string, len(columns))
	queryParams := make([]interface{}, len(columns))
	for i, column := range columns {
		clauses[i] = fmt.Sprintf(`"%s" = $%d`, column, firstParam+i)
		queryParams[i] = patch[column]
	}

	return strings.Join(clauses, ", "), queryParams
}
