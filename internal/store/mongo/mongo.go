// Package mongo stores users, posts and comments as documents in MongoDB,
// one collection per resource.
package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/alphabot-ai/quill/internal/model"
	"github.com/alphabot-ai/quill/internal/store"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection    = "users"
	postsCollection    = "posts"
	commentsCollection = "comments"
)

type Store struct {
	client   *mongo.Client
	users    *mongo.Collection
	posts    *mongo.Collection
	comments *mongo.Collection
}

// Open connects to uri and ensures the unique indexes on users exist.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	db := client.Database(database)
	s := &Store{
		client:   client,
		users:    db.Collection(usersCollection),
		posts:    db.Collection(postsCollection),
		comments: db.Collection(commentsCollection),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return err
	}
	if _, err := s.posts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "author", Value: 1}, {Key: "createdAt", Value: 1}},
	}); err != nil {
		return err
	}
	_, err = s.comments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "post", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Drop removes every collection. Used by tests to start from a clean database.
func (s *Store) Drop(ctx context.Context) error {
	for _, c := range []*mongo.Collection{s.users, s.posts, s.comments} {
		if err := c.Drop(ctx); err != nil {
			return err
		}
	}
	return s.ensureIndexes(ctx)
}

type postDoc struct {
	model.Post `bson:",inline"`
	CreatedAt  time.Time `bson:"createdAt"`
}

type commentDoc struct {
	model.Comment `bson:",inline"`
	CreatedAt     time.Time `bson:"createdAt"`
}

func (s *Store) CreateUser(ctx context.Context, user *model.User) (string, error) {
	doc := *user
	doc.ID = uuid.NewString()
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		return "", mapDuplicateErr(err)
	}
	user.ID = doc.ID
	return doc.ID, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (model.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	return s.findUser(ctx, bson.M{"username": username})
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (model.User, error) {
	var user model.User
	if err := s.users.FindOne(ctx, filter).Decode(&user); err != nil {
		return model.User{}, mapNoDocuments(err)
	}
	return user, nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, patch model.UserPatch) error {
	set := bson.M{}
	setIf(set, "username", patch.Username)
	setIf(set, "email", patch.Email)
	setIf(set, "password", patch.Password)
	setIf(set, "firstName", patch.FirstName)
	setIf(set, "lastName", patch.LastName)
	return mapDuplicateErr(s.update(ctx, s.users, id, set))
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CreatePost(ctx context.Context, post *model.Post) (string, error) {
	doc := postDoc{Post: *post, CreatedAt: time.Now().UTC()}
	doc.ID = uuid.NewString()
	if _, err := s.posts.InsertOne(ctx, doc); err != nil {
		return "", err
	}
	post.ID = doc.ID
	return doc.ID, nil
}

func (s *Store) GetPost(ctx context.Context, id string) (model.Post, error) {
	var doc postDoc
	if err := s.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return model.Post{}, mapNoDocuments(err)
	}
	return doc.Post, nil
}

func (s *Store) ListPostsByAuthor(ctx context.Context, authorID string) ([]model.Post, error) {
	cursor, err := s.posts.Find(ctx, bson.M{"author": authorID}, byCreation())
	if err != nil {
		return nil, err
	}
	var docs []postDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	posts := make([]model.Post, 0, len(docs))
	for _, d := range docs {
		posts = append(posts, d.Post)
	}
	return posts, nil
}

func (s *Store) UpdatePost(ctx context.Context, id string, patch model.PostPatch) error {
	set := bson.M{}
	setIf(set, "title", patch.Title)
	setIf(set, "description", patch.Description)
	setIf(set, "content", patch.Content)
	return s.update(ctx, s.posts, id, set)
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	_, err := s.posts.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (s *Store) CreateComment(ctx context.Context, comment *model.Comment) (string, error) {
	doc := commentDoc{Comment: *comment, CreatedAt: time.Now().UTC()}
	doc.ID = uuid.NewString()
	if _, err := s.comments.InsertOne(ctx, doc); err != nil {
		return "", err
	}
	comment.ID = doc.ID
	return doc.ID, nil
}

func (s *Store) GetComment(ctx context.Context, id string) (model.Comment, error) {
	var doc commentDoc
	if err := s.comments.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return model.Comment{}, mapNoDocuments(err)
	}
	return doc.Comment, nil
}

func (s *Store) ListCommentsByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	cursor, err := s.comments.Find(ctx, bson.M{"post": postID}, byCreation())
	if err != nil {
		return nil, err
	}
	var docs []commentDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	comments := make([]model.Comment, 0, len(docs))
	for _, d := range docs {
		comments = append(comments, d.Comment)
	}
	return comments, nil
}

func (s *Store) UpdateComment(ctx context.Context, id string, patch model.CommentPatch) error {
	set := bson.M{}
	setIf(set, "content", patch.Content)
	return s.update(ctx, s.comments, id, set)
}

func (s *Store) DeleteComment(ctx context.Context, id string) error {
	_, err := s.comments.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// update applies set to the document with the given id. An empty set only
// checks that the document exists.
func (s *Store) update(ctx context.Context, coll *mongo.Collection, id string, set bson.M) error {
	if len(set) == 0 {
		n, err := coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
		if err != nil {
			return err
		}
		if n == 0 {
			return store.ErrNotFound
		}
		return nil
	}
	res, err := coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func byCreation() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
}

func setIf(set bson.M, key string, value *string) {
	if value != nil {
		set[key] = *value
	}
}

func mapNoDocuments(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	return err
}

func mapDuplicateErr(err error) error {
	if err == nil || !mongo.IsDuplicateKeyError(err) {
		return err
	}
	var we mongo.WriteException
	messages := []string{err.Error()}
	if errors.As(err, &we) {
		messages = messages[:0]
		for _, e := range we.WriteErrors {
			messages = append(messages, e.Message)
		}
	}
	for _, msg := range messages {
		switch duplicateIndex(msg) {
		case "username_1":
			return store.ErrDuplicateUsername
		case "email_1":
			return store.ErrDuplicateEmail
		}
	}
	return err
}

// duplicateIndex returns the index named in an E11000 message. The key value
// follows the index name, so only the first "index: " is read.
func duplicateIndex(msg string) string {
	_, rest, ok := strings.Cut(msg, "index: ")
	if !ok {
		return ""
	}
	name, _, _ := strings.Cut(rest, " ")
	return name
}

var _ store.Store = (*Store)(nil)
