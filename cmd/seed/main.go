package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"

	"github.com/alphabot-ai/quill/internal/client"
	"github.com/alphabot-ai/quill/internal/model"
)

var authors = []struct {
	username  string
	firstName string
	lastName  string
}{
	{"alice", "Alice", "Liddell"},
	{"bob", "Bob", "Marley"},
	{"carol", "Carol", "Danvers"},
	{"dave", "Dave", "Bowman"},
}

var posts = []struct {
	title       string
	description string
	content     string
}{
	{"Morning light", "Sunrise over the harbour", "https://example.com/media/harbour.jpg"},
	{"Weekend hike", "Ridge trail in the fog", "https://example.com/media/ridge.jpg"},
	{"Sourdough, attempt five", "Finally an open crumb", "https://example.com/media/bread.jpg"},
	{"Street market", "Colours from the Saturday market", "https://example.com/media/market.jpg"},
	{"Night drive", "Long exposure on the coast road", "https://example.com/media/coast.mp4"},
	{"First snow", "The garden this morning", "https://example.com/media/snow.jpg"},
	{"Studio desk", "Where the work happens", "https://example.com/media/desk.jpg"},
	{"Tide pools", "Low tide finds", "https://example.com/media/tide.jpg"},
}

var remarks = []string{
	"Love this!",
	"Where was this taken?",
	"The colours are amazing.",
	"Need to try this myself.",
	"Great shot.",
	"This made my day.",
	"What camera do you use?",
	"Beautiful.",
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Quill server URL")
	flag.Parse()

	log.Printf("Seeding database at %s...\n", *baseURL)

	var clients []*client.Client
	for _, a := range authors {
		c := client.New(*baseURL)
		password := a.username + "-password"
		_, err := c.Register(model.RegisterRequest{
			Username:  a.username,
			Password:  password,
			Email:     a.username + "@example.com",
			FirstName: a.firstName,
			LastName:  a.lastName,
		})
		if err != nil {
			log.Fatalf("register %s: %v", a.username, err)
		}
		if _, err := c.Login(a.username, password); err != nil {
			log.Fatalf("login %s: %v", a.username, err)
		}
		log.Printf("✓ Registered author: %s", a.username)
		clients = append(clients, c)
	}

	var postIDs []string
	for _, p := range posts {
		idx := rand.Intn(len(clients))
		post, err := clients[idx].CreatePost(model.CreatePostRequest{
			Title:       p.title,
			Description: p.description,
			Content:     p.content,
			Author:      authors[idx].username,
		})
		if err != nil {
			log.Printf("✗ Failed to create post: %v", err)
			continue
		}
		postIDs = append(postIDs, post.ID)
		log.Printf("✓ Posted %q (by %s)", p.title, authors[idx].username)
	}

	commentCount := 0
	for _, postID := range postIDs {
		// 0-3 comments per post
		n := rand.Intn(4)
		for i := 0; i < n; i++ {
			idx := rand.Intn(len(clients))
			comment, err := clients[idx].CreateComment(model.CreateCommentRequest{
				Content: remarks[rand.Intn(len(remarks))],
				Author:  authors[idx].username,
				Post:    postID,
			})
			if err != nil {
				log.Printf("✗ Failed to comment: %v", err)
				continue
			}
			commentCount++
			log.Printf("  ↳ Comment %s (by %s)", comment.ID, authors[idx].username)
		}
	}

	fmt.Println("\n=== Seed Complete ===")
	fmt.Printf("Authors:  %d\n", len(authors))
	fmt.Printf("Posts:    %d\n", len(postIDs))
	fmt.Printf("Comments: %d\n", commentCount)
	fmt.Println("\nAPI docs:", *baseURL+"/swagger/")
}
