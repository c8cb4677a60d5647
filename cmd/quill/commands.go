package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/alphabot-ai/quill/internal/client"
	"github.com/alphabot-ai/quill/internal/model"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	okColor    = color.New(color.FgHiGreen, color.Bold)
	titleColor = color.New(color.FgHiCyan, color.Bold)
	dimColor   = color.New(color.Faint)
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in",
	RunE:  runRegister,
}

var loginCmd = &cobra.Command{
	Use:     "login",
	Aliases: []string{"auth"},
	Short:   "Log in and save a session token",
	RunE:    runLogin,
}

var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"whoami"},
	Short:   "Show the saved session",
	RunE:    runStatus,
}

var postCmd = &cobra.Command{
	Use:     "post",
	Aliases: []string{"submit"},
	Short:   "Publish a post, or edit one with --id",
	RunE:    runPost,
}

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Comment on a post, or edit a comment with --id",
	RunE:  runComment,
}

var readCmd = &cobra.Command{
	Use:     "read [username]",
	Aliases: []string{"list"},
	Short:   "Show a user's profile and posts, or one post with its comments",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runRead,
}

var deleteCmd = &cobra.Command{
	Use:     "delete",
	Aliases: []string{"rm"},
	Short:   "Delete one of your posts, comments, or your account",
	RunE:    runDelete,
}

func init() {
	for _, cmd := range []*cobra.Command{registerCmd, loginCmd} {
		cmd.Flags().String("username", "", "Username (required)")
		cmd.Flags().String("password", "", "Password (required)")
		_ = cmd.MarkFlagRequired("username")
		_ = cmd.MarkFlagRequired("password")
	}
	registerCmd.Flags().String("email", "", "Email address (required)")
	registerCmd.Flags().String("first-name", "", "First name")
	registerCmd.Flags().String("last-name", "", "Last name")
	_ = registerCmd.MarkFlagRequired("email")

	postCmd.Flags().String("id", "", "Edit the post with this id instead of creating one")
	postCmd.Flags().String("title", "", "Post title")
	postCmd.Flags().String("description", "", "Short description")
	postCmd.Flags().String("content", "", "Link to the post's media")

	commentCmd.Flags().String("id", "", "Edit the comment with this id instead of creating one")
	commentCmd.Flags().String("post", "", "Post id to comment on")
	commentCmd.Flags().String("text", "", "Comment text (required)")
	_ = commentCmd.MarkFlagRequired("text")

	readCmd.Flags().String("post", "", "Show this post and its comments (needs the author's username)")

	deleteCmd.Flags().String("post", "", "Post id to delete")
	deleteCmd.Flags().String("comment", "", "Comment id to delete")
	deleteCmd.Flags().Bool("account", false, "Delete your account")
}

func runRegister(cmd *cobra.Command, args []string) error {
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")
	email, _ := cmd.Flags().GetString("email")
	first, _ := cmd.Flags().GetString("first-name")
	last, _ := cmd.Flags().GetString("last-name")

	c := anonymousClient()
	id, err := c.Register(model.RegisterRequest{
		Username: username, Password: password, Email: email, FirstName: first, LastName: last,
	})
	if err != nil {
		return err
	}
	okColor.Printf("✓ Registered %s", username)
	dimColor.Printf(" (%s)\n", id)
	return login(c, username, password, id)
}

func runLogin(cmd *cobra.Command, args []string) error {
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")

	c := anonymousClient()
	user, err := c.Verify(username)
	if err != nil {
		return err
	}
	return login(c, username, password, user.ID)
}

func login(c *client.Client, username, password, userID string) error {
	token, err := c.Login(username, password)
	if err != nil {
		return err
	}
	if err := saveSession(session{BaseURL: c.BaseURL, Username: username, UserID: userID, Token: token}); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	okColor.Printf("✓ Logged in as %s\n", username)
	dimColor.Printf("  Session: %s\n", sessionPath())
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	s, c, err := sessionClient()
	if err != nil {
		fmt.Println("Status: not logged in")
		fmt.Println("\nRun: quill register --username <name> --password <pw> --email <email>")
		return nil
	}
	fmt.Printf("User:   %s (%s)\n", titleColor.Sprint(s.Username), s.UserID)
	fmt.Printf("Server: %s\n", c.BaseURL)
	user, err := c.GetUser(s.Username)
	if err != nil {
		return err
	}
	fmt.Printf("Posts:  %d\n", len(user.Posts))
	return nil
}

func runPost(cmd *cobra.Command, args []string) error {
	s, c, err := sessionClient()
	if err != nil {
		return err
	}
	id, _ := cmd.Flags().GetString("id")
	title, _ := cmd.Flags().GetString("title")
	description, _ := cmd.Flags().GetString("description")
	content, _ := cmd.Flags().GetString("content")

	if id != "" {
		req := model.PostUpdateRequest{PostID: id}
		if cmd.Flags().Changed("title") {
			req.Title = &title
		}
		if cmd.Flags().Changed("description") {
			req.Description = &description
		}
		if cmd.Flags().Changed("content") {
			req.Content = &content
		}
		if err := c.UpdatePost(req); err != nil {
			return err
		}
		okColor.Printf("✓ Updated post %s\n", id)
		return nil
	}

	post, err := c.CreatePost(model.CreatePostRequest{
		Title: title, Description: description, Content: content, Author: s.Username,
	})
	if err != nil {
		return err
	}
	okColor.Printf("✓ Posted %q", post.Title)
	dimColor.Printf(" (%s)\n", post.ID)
	return nil
}

func runComment(cmd *cobra.Command, args []string) error {
	s, c, err := sessionClient()
	if err != nil {
		return err
	}
	id, _ := cmd.Flags().GetString("id")
	postID, _ := cmd.Flags().GetString("post")
	text, _ := cmd.Flags().GetString("text")

	if id != "" {
		if err := c.UpdateComment(model.CommentUpdateRequest{CommentID: id, Content: &text}); err != nil {
			return err
		}
		okColor.Printf("✓ Updated comment %s\n", id)
		return nil
	}
	if postID == "" {
		return errors.New("--post is required when creating a comment")
	}
	comment, err := c.CreateComment(model.CreateCommentRequest{Content: text, Author: s.Username, Post: postID})
	if err != nil {
		return err
	}
	okColor.Printf("✓ Commented on %s", postID)
	dimColor.Printf(" (%s)\n", comment.ID)
	return nil
}

func runRead(cmd *cobra.Command, args []string) error {
	c := anonymousClient()
	username := ""
	if len(args) == 1 {
		username = args[0]
	} else if s, err := loadSession(); err == nil {
		username = s.Username
	}
	if username == "" {
		return errors.New("give a username to read")
	}

	user, err := c.GetUser(username)
	if err != nil {
		return err
	}

	postID, _ := cmd.Flags().GetString("post")
	if postID != "" {
		post, err := c.GetPost(user.ID, postID)
		if err != nil {
			return err
		}
		printPost(post, user.Username)
		comments, err := c.ListComments(post.ID)
		if err != nil {
			return err
		}
		fmt.Printf("\n  %d comments\n", len(comments))
		for _, cm := range comments {
			fmt.Printf("  - %s ", cm.Content)
			dimColor.Printf("[%s by %s]\n", cm.ID, cm.Author)
		}
		return nil
	}

	fmt.Printf("%s <%s>\n", titleColor.Sprint(user.Username), user.Email)
	posts, err := c.ListPosts(user.ID)
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		fmt.Println("\nNo posts yet")
		return nil
	}
	for _, post := range posts {
		fmt.Println()
		printPost(post, user.Username)
	}
	return nil
}

func printPost(post model.Post, author string) {
	fmt.Println(titleColor.Sprint(post.Title))
	fmt.Printf("  %s\n", post.Description)
	fmt.Printf("  %s\n", post.Content)
	dimColor.Printf("  id %s by %s\n", post.ID, author)
}

func runDelete(cmd *cobra.Command, args []string) error {
	s, c, err := sessionClient()
	if err != nil {
		return err
	}
	postID, _ := cmd.Flags().GetString("post")
	commentID, _ := cmd.Flags().GetString("comment")
	account, _ := cmd.Flags().GetBool("account")

	switch {
	case postID != "":
		if err := c.DeletePost(postID); err != nil {
			return err
		}
		okColor.Printf("✓ Deleted post %s\n", postID)
	case commentID != "":
		if err := c.DeleteComment(commentID); err != nil {
			return err
		}
		okColor.Printf("✓ Deleted comment %s\n", commentID)
	case account:
		err := c.DeleteUser(s.UserID)
		if err != nil && client.StatusCode(err) != http.StatusNotFound {
			return err
		}
		if err := saveSession(session{BaseURL: s.BaseURL}); err != nil {
			return err
		}
		okColor.Printf("✓ Deleted account %s\n", s.Username)
	default:
		return errors.New("one of --post, --comment or --account is required")
	}
	return nil
}
