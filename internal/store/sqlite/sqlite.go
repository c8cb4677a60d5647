package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/alphabot-ai/quill/internal/model"
	"github.com/alphabot-ai/quill/internal/store"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection serializes writers; the pragma is per connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 3000;"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrations is an ordered list of SQL migrations.
// Each migration runs exactly once, tracked by schema_version table.
// References between tables are plain columns: dangling authors and posts
// are allowed after deletes.
var migrations = []string{
	`
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	first_name TEXT,
	last_name TEXT
);

CREATE TABLE IF NOT EXISTS posts (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	content TEXT NOT NULL,
	author TEXT NOT NULL,
	seq INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_posts_author ON posts(author, seq);

CREATE TABLE IF NOT EXISTS comments (
	id TEXT PRIMARY KEY,
	content TEXT NOT NULL,
	author TEXT NOT NULL,
	post TEXT NOT NULL,
	seq INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_comments_post ON comments(post, seq);
`,
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`); err != nil {
		return err
	}

	var currentVersion int
	row := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`)
	if err := row.Scan(&currentVersion); err != nil {
		return err
	}

	for i := currentVersion; i < len(migrations); i++ {
		if _, err := db.Exec(migrations[i]); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
		if _, err := db.Exec(`INSERT INTO schema_version (version) VALUES (?)`, i+1); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", i+1, err)
		}
	}

	return nil
}

func (s *Store) CreateUser(ctx context.Context, user *model.User) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
INSERT INTO users (id, username, email, password, first_name, last_name)
VALUES (?, ?, ?, ?, ?, ?)
`, id, user.Username, user.Email, user.Password, nullIfEmpty(user.FirstName), nullIfEmpty(user.LastName))
	if err != nil {
		return "", mapUniqueErr(err)
	}
	user.ID = id
	return id, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (model.User, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, username, email, password, first_name, last_name FROM users WHERE id = ?
`, id)
	return scanUser(row)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, username, email, password, first_name, last_name FROM users WHERE username = ?
`, username)
	return scanUser(row)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, username, email, password, first_name, last_name FROM users WHERE email = ?
`, email)
	return scanUser(row)
}

func (s *Store) UpdateUser(ctx context.Context, id string, patch model.UserPatch) error {
	var set setClause
	set.add("username", patch.Username)
	set.add("email", patch.Email)
	set.add("password", patch.Password)
	set.add("first_name", patch.FirstName)
	set.add("last_name", patch.LastName)
	if err := s.update(ctx, "users", id, set); err != nil {
		return mapUniqueErr(err)
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *Store) CreatePost(ctx context.Context, post *model.Post) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
INSERT INTO posts (id, title, description, content, author, seq)
VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM posts))
`, id, post.Title, post.Description, post.Content, post.Author)
	if err != nil {
		return "", err
	}
	post.ID = id
	return id, nil
}

func (s *Store) GetPost(ctx context.Context, id string) (model.Post, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, title, description, content, author FROM posts WHERE id = ?
`, id)
	return scanPost(row)
}

func (s *Store) ListPostsByAuthor(ctx context.Context, authorID string) ([]model.Post, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, title, description, content, author FROM posts WHERE author = ? ORDER BY seq ASC
`, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (s *Store) UpdatePost(ctx context.Context, id string, patch model.PostPatch) error {
	var set setClause
	set.add("title", patch.Title)
	set.add("description", patch.Description)
	set.add("content", patch.Content)
	return s.update(ctx, "posts", id, set)
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	return err
}

func (s *Store) CreateComment(ctx context.Context, comment *model.Comment) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
INSERT INTO comments (id, content, author, post, seq)
VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM comments))
`, id, comment.Content, comment.Author, comment.Post)
	if err != nil {
		return "", err
	}
	comment.ID = id
	return id, nil
}

func (s *Store) GetComment(ctx context.Context, id string) (model.Comment, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, content, author, post FROM comments WHERE id = ?
`, id)
	return scanComment(row)
}

func (s *Store) ListCommentsByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, content, author, post FROM comments WHERE post = ? ORDER BY seq ASC
`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

func (s *Store) UpdateComment(ctx context.Context, id string, patch model.CommentPatch) error {
	var set setClause
	set.add("content", patch.Content)
	return s.update(ctx, "comments", id, set)
}

func (s *Store) DeleteComment(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	return err
}

// update applies set to the row with the given id. An empty set only checks
// that the row exists.
func (s *Store) update(ctx context.Context, table, id string, set setClause) error {
	if len(set.columns) == 0 {
		var found int
		err := s.db.QueryRowContext(ctx, `SELECT 1 FROM `+table+` WHERE id = ?`, id).Scan(&found)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		return err
	}
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = ?`, table, strings.Join(set.columns, ", "))
	res, err := s.db.ExecContext(ctx, query, append(set.args, id)...)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

type setClause struct {
	columns []string
	args    []any
}

func (c *setClause) add(column string, value *string) {
	if value == nil {
		return
	}
	c.columns = append(c.columns, column+" = ?")
	c.args = append(c.args, *value)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (model.User, error) {
	var user model.User
	var first, last sql.NullString
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.Password, &first, &last); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, store.ErrNotFound
		}
		return model.User{}, err
	}
	user.FirstName = first.String
	user.LastName = last.String
	return user, nil
}

func scanPost(row scanner) (model.Post, error) {
	var post model.Post
	if err := row.Scan(&post.ID, &post.Title, &post.Description, &post.Content, &post.Author); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Post{}, store.ErrNotFound
		}
		return model.Post{}, err
	}
	return post, nil
}

func scanComment(row scanner) (model.Comment, error) {
	var comment model.Comment
	if err := row.Scan(&comment.ID, &comment.Content, &comment.Author, &comment.Post); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Comment{}, store.ErrNotFound
		}
		return model.Comment{}, err
	}
	return comment, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// mapUniqueErr turns "UNIQUE constraint failed: users.<col>" into the
// matching store sentinel.
func mapUniqueErr(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "unique constraint failed") {
		return err
	}
	switch {
	case strings.Contains(msg, "users.username"):
		return store.ErrDuplicateUsername
	case strings.Contains(msg, "users.email"):
		return store.ErrDuplicateEmail
	}
	return err
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

var _ store.Store = (*Store)(nil)
