package model

// User is the stored account record. Password holds the bcrypt hash and is
// never serialized outward; use Public for responses.
type User struct {
	ID        string `json:"_id" bson:"_id"`
	Username  string `json:"username" bson:"username"`
	Email     string `json:"email" bson:"email"`
	Password  string `json:"-" bson:"password"`
	FirstName string `json:"firstName,omitempty" bson:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty" bson:"lastName,omitempty"`
}

// PublicUser is a User without its password. Posts is derived from the
// post collection at read time and never stored.
type PublicUser struct {
	ID        string   `json:"_id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	FirstName string   `json:"firstName,omitempty"`
	LastName  string   `json:"lastName,omitempty"`
	Posts     []string `json:"posts"`
}

func (u User) Public(posts []string) PublicUser {
	if posts == nil {
		posts = []string{}
	}
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Posts:     posts,
	}
}

type Post struct {
	ID          string `json:"_id" bson:"_id"`
	Title       string `json:"title" bson:"title"`
	Description string `json:"description" bson:"description"`
	Content     string `json:"content" bson:"content"`
	Author      string `json:"author" bson:"author"`
}

type Comment struct {
	ID      string `json:"_id" bson:"_id"`
	Content string `json:"content" bson:"content"`
	Author  string `json:"author" bson:"author"`
	Post    string `json:"post" bson:"post"`
}

// UserPatch carries the fields of a partial user update. Nil fields are
// left untouched. Password must already be hashed.
type UserPatch struct {
	Username  *string
	Email     *string
	Password  *string
	FirstName *string
	LastName  *string
}

func (p UserPatch) Empty() bool {
	return p.Username == nil && p.Email == nil && p.Password == nil && p.FirstName == nil && p.LastName == nil
}

type PostPatch struct {
	Title       *string
	Description *string
	Content     *string
}

func (p PostPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Content == nil
}

type CommentPatch struct {
	Content *string
}

func (p CommentPatch) Empty() bool {
	return p.Content == nil
}
