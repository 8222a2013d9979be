// Package postgresdb provides a PostgreSQL-based implementation of the storage interface
// for users, saved contents and share links. The schema is managed by goose migrations.
package postgresdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/patric-chuzhbe/brainly/internal/models"
	"github.com/patric-chuzhbe/brainly/internal/user"
)

const uniqueViolationCode = "23505"

// PostgresDB is a PostgreSQL-backed storage.
type PostgresDB struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

type initOptions struct {
	DBPreReset bool
}

// InitOption defines a functional option for configuring database initialization.
type InitOption func(*initOptions)

// WithDBPreReset drops every public table before migrating. Used by tests.
func WithDBPreReset(value bool) InitOption {
	return func(options *initOptions) {
		options.DBPreReset = value
	}
}

// New connects to PostgreSQL, runs the schema migrations and returns the storage.
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

	if err := result.Ping(ctx); err != nil {
		return nil,
			fmt.Errorf(
				"in internal/db/postgresdb/postgresdb.go/New(): error while `result.Ping()` calling: %w",
				err,
			)
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

	if err := goose.UpContext(ctx, result.database, migrationsDir); err != nil {
		return nil,
			fmt.Errorf(
				"in internal/db/postgresdb/postgresdb.go/New(): error while `goose.UpContext()` calling: %w",
				err,
			)
	}

	return result, nil
}

// CreateUser inserts a new user and returns its generated ID.
// A taken name yields models.ErrDuplicateUserName.
func (db *PostgresDB) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	row := db.database.QueryRowContext(
		ctx,
		`INSERT INTO users (name, password_hash, email) VALUES ($1, $2, $3) RETURNING id`,
		usr.Name,
		usr.PasswordHash,
		usr.Email,
	)
	var userID string
	if err := row.Scan(&userID); err != nil {
		if isUniqueViolation(err) {
			return "", models.ErrDuplicateUserName
		}
		return "", err
	}

	return userID, nil
}

// GetUserByName fetches a user by its unique name.
func (db *PostgresDB) GetUserByName(ctx context.Context, name string) (*user.User, bool, error) {
	return db.getUser(
		ctx,
		`SELECT id, name, password_hash, email FROM users WHERE name = $1`,
		name,
	)
}

// GetUserByID fetches a user by its UUID.
func (db *PostgresDB) GetUserByID(ctx context.Context, userID string) (*user.User, bool, error) {
	return db.getUser(
		ctx,
		`SELECT id, name, password_hash, email FROM users WHERE id = $1`,
		userID,
	)
}

func (db *PostgresDB) getUser(ctx context.Context, query string, arg string) (*user.User, bool, error) {
	row := db.database.QueryRowContext(ctx, query, arg)

	usr := &user.User{}
	err := row.Scan(&usr.ID, &usr.Name, &usr.PasswordHash, &usr.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return usr, true, nil
}

// InsertContent stores a content record and returns its generated ID.
func (db *PostgresDB) InsertContent(ctx context.Context, content *models.Content) (string, error) {
	row := db.database.QueryRowContext(
		ctx,
		`INSERT INTO contents (type, title, link, user_id) VALUES ($1, $2, $3, $4) RETURNING id`,
		content.Type,
		content.Title,
		content.Link,
		content.UserID,
	)
	var contentID string
	if err := row.Scan(&contentID); err != nil {
		return "", err
	}

	return contentID, nil
}

// GetUserContents lists the user's contents in insertion order.
func (db *PostgresDB) GetUserContents(ctx context.Context, userID string) ([]models.Content, error) {
	rows, err := db.database.QueryContext(
		ctx,
		`
			SELECT id, type, title, link, user_id
				FROM contents
				WHERE user_id = $1
				ORDER BY created_at, id
		`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []models.Content{}
	for rows.Next() {
		content := models.Content{Tags: []string{}}
		err = rows.Scan(&content.ID, &content.Type, &content.Title, &content.Link, &content.UserID)
		if err != nil {
			return nil, err
		}
		result = append(result, content)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// DeleteUserContent deletes the content only when it belongs to userID.
func (db *PostgresDB) DeleteUserContent(ctx context.Context, userID, contentID string) (bool, error) {
	result, err := db.database.ExecContext(
		ctx,
		`DELETE FROM contents WHERE id = $1 AND user_id = $2`,
		contentID,
		userID,
	)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// IsShareHashExists checks whether any share link uses the hash.
func (db *PostgresDB) IsShareHashExists(ctx context.Context, hash string) (bool, error) {
	row := db.database.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM share_links WHERE hash = $1)`,
		hash,
	)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// InsertShareLink stores the link. A hash taken concurrently yields models.ErrDuplicateShareHash.
func (db *PostgresDB) InsertShareLink(ctx context.Context, link *models.ShareLink) error {
	_, err := db.database.ExecContext(
		ctx,
		`INSERT INTO share_links (hash, user_id) VALUES ($1, $2)`,
		link.Hash,
		link.UserID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrDuplicateShareHash
		}
		return err
	}

	return nil
}

// FindShareLinkByHash looks a share link up by its hash.
func (db *PostgresDB) FindShareLinkByHash(ctx context.Context, hash string) (*models.ShareLink, bool, error) {
	row := db.database.QueryRowContext(
		ctx,
		`SELECT hash, user_id FROM share_links WHERE hash = $1`,
		hash,
	)
	link := &models.ShareLink{}
	err := row.Scan(&link.Hash, &link.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return link, true, nil
}

// DeleteUserShareLinks removes every share link of the user.
func (db *PostgresDB) DeleteUserShareLinks(ctx context.Context, userID string) error {
	_, err := db.database.ExecContext(
		ctx,
		`DELETE FROM share_links WHERE user_id = $1`,
		userID,
	)

	return err
}

func (db *PostgresDB) GetNumberOfUsers(ctx context.Context) (int64, error) {
	return db.count(ctx, `SELECT COUNT(*) FROM users`)
}

func (db *PostgresDB) GetNumberOfContents(ctx context.Context) (int64, error) {
	return db.count(ctx, `SELECT COUNT(*) FROM contents`)
}

func (db *PostgresDB) GetNumberOfShareLinks(ctx context.Context) (int64, error) {
	return db.count(ctx, `SELECT COUNT(*) FROM share_links`)
}

func (db *PostgresDB) count(ctx context.Context, query string) (int64, error) {
	var result int64
	if err := db.database.QueryRowContext(ctx, query).Scan(&result); err != nil {
		return 0, err
	}

	return result, nil
}

// Ping verifies connectivity with the PostgreSQL database within the configured timeout.
func (db *PostgresDB) Ping(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.database.PingContext(ctxWithTimeout)
}

// Close closes the database connection and releases any associated resources.
func (db *PostgresDB) Close() error {
	return db.database.Close()
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

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
