package blog

import (
	"context"
	"strings"

	"github.com/alphabot-ai/quill/internal/auth"
	"github.com/alphabot-ai/quill/internal/model"
	"github.com/alphabot-ai/quill/internal/store"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/pkg/errors"
)

// Hasher turns secrets into salted hashes and checks them back.
type Hasher interface {
	Hash(secret string) (string, error)
	Verify(secret, hash string) bool
}

// TokenIssuer mints session tokens for authenticated users.
type TokenIssuer interface {
	Issue(claims auth.Claims) (string, error)
}

// Directory owns user accounts: registration, login and profile changes.
type Directory struct {
	users  store.UserStore
	posts  store.PostStore
	hasher Hasher
	tokens TokenIssuer
}

func NewDirectory(users store.UserStore, posts store.PostStore, hasher Hasher, tokens TokenIssuer) *Directory {
	return &Directory{users: users, posts: posts, hasher: hasher, tokens: tokens}
}

type Registration struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (r Registration) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(1, 64)),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// Register creates an account and returns its id. The username check runs
// before the email check, so a request clashing on both reports the
// username.
func (d *Directory) Register(ctx context.Context, reg Registration) (string, error) {
	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.TrimSpace(reg.Email)
	if err := reg.Validate(); err != nil {
		return "", invalid(err)
	}

	if _, err := d.users.GetUserByUsername(ctx, reg.Username); err == nil {
		return "", newError(KindConflict, "Username already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", internal(err, "lookup username")
	}
	if _, err := d.users.GetUserByEmail(ctx, reg.Email); err == nil {
		return "", newError(KindConflict, "Email already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", internal(err, "lookup email")
	}

	hash, err := d.hasher.Hash(reg.Password)
	if err != nil {
		return "", internal(err, "hash password")
	}
	user := model.User{
		Username:  reg.Username,
		Email:     reg.Email,
		Password:  hash,
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
	}
	id, err := d.users.CreateUser(ctx, &user)
	if err != nil {
		return "", userWriteErr(err, "create user")
	}
	return id, nil
}

type LoginResult struct {
	UserID   string
	Username string
	Token    string
}

func (d *Directory) Login(ctx context.Context, username, password string) (LoginResult, error) {
	username = strings.TrimSpace(username)
	if err := validation.Validate(username, validation.Required); err != nil {
		return LoginResult{}, newError(KindInvalid, "username: "+err.Error())
	}
	user, err := d.users.GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return LoginResult{}, newError(KindNotFound, "Username not Found")
	}
	if err != nil {
		return LoginResult{}, internal(err, "lookup user")
	}
	if password == "" || !d.hasher.Verify(password, user.Password) {
		return LoginResult{}, newError(KindBadCredential, "Password does not Match")
	}
	token, err := d.tokens.Issue(auth.Claims{UserID: user.ID, Username: user.Username})
	if err != nil {
		return LoginResult{}, internal(err, "issue token")
	}
	return LoginResult{UserID: user.ID, Username: user.Username, Token: token}, nil
}

// Verify confirms that username belongs to an account.
func (d *Directory) Verify(ctx context.Context, username string) (model.PublicUser, error) {
	user, err := d.public(ctx, username)
	if KindOf(err) == KindNotFound {
		return model.PublicUser{}, newError(KindNotFound, "Can't find User!")
	}
	return user, err
}

func (d *Directory) Get(ctx context.Context, username string) (model.PublicUser, error) {
	return d.public(ctx, username)
}

func (d *Directory) public(ctx context.Context, username string) (model.PublicUser, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return model.PublicUser{}, newError(KindInvalid, "Invalid Username")
	}
	user, err := d.users.GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return model.PublicUser{}, newError(KindNotFound, "Couldn't Find the User")
	}
	if err != nil {
		return model.PublicUser{}, internal(err, "lookup user")
	}
	posts, err := d.posts.ListPostsByAuthor(ctx, user.ID)
	if err != nil {
		return model.PublicUser{}, internal(err, "list posts")
	}
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return user.Public(ids), nil
}

// Update merges patch into the caller's own account. A new password in the
// patch is plaintext and gets hashed before it is stored.
func (d *Directory) Update(ctx context.Context, callerID, userID string, patch model.UserPatch) error {
	if userID == "" {
		return newError(KindInvalid, "userId: cannot be blank")
	}
	patch.Username = trimmed(patch.Username)
	patch.Email = trimmed(patch.Email)
	if err := (validation.Errors{
		"username": validation.Validate(patch.Username, validation.NilOrNotEmpty),
		"email":    validation.Validate(patch.Email, validation.NilOrNotEmpty, is.Email),
		"password": validation.Validate(patch.Password, validation.NilOrNotEmpty),
	}).Filter(); err != nil {
		return invalid(err)
	}
	if callerID != userID {
		return newError(KindForbidden, "You can only update your own account")
	}
	if patch.Password != nil {
		hash, err := d.hasher.Hash(*patch.Password)
		if err != nil {
			return internal(err, "hash password")
		}
		patch.Password = &hash
	}
	if err := d.users.UpdateUser(ctx, userID, patch); err != nil {
		return userWriteErr(err, "update user")
	}
	return nil
}

// Delete removes the caller's own account. Posts and comments it authored
// are left in place.
func (d *Directory) Delete(ctx context.Context, callerID, userID string) error {
	if userID == "" {
		return newError(KindInvalid, "userId: cannot be blank")
	}
	if callerID != userID {
		return newError(KindForbidden, "You can only delete your own account")
	}
	if err := d.users.DeleteUser(ctx, userID); err != nil {
		return userWriteErr(err, "delete user")
	}
	return nil
}

func userWriteErr(err error, op string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return newError(KindNotFound, "User Not Found...!")
	case errors.Is(err, store.ErrDuplicateUsername):
		return newError(KindConflict, "Username already exists")
	case errors.Is(err, store.ErrDuplicateEmail):
		return newError(KindConflict, "Email already exists")
	}
	return internal(err, op)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
