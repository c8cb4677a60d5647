// Package httpapp provides the HTTP server for Quill.
//
//	@title						Quill API
//	@version					1.0
//	@description				A small blogging API: users register and log in, write posts, and comment on posts.
//	@description
//	@description				## Authentication Flow
//	@description
//	@description				Reads and creates are open. Updates and deletes require a bearer token.
//	@description
//	@description				### Step 1: Register
//	@description				```bash
//	@description				curl -X POST /api/user/register -d '{"username":"alice","password":"pw1","email":"a@x.com"}'
//	@description				```
//	@description
//	@description				### Step 2: Log in
//	@description				```bash
//	@description				curl -X POST /api/user/login -d '{"username":"alice","password":"pw1"}'
//	@description				# Returns: {"msg": "Login Successful...!", "username": "alice", "token": "TOKEN"}
//	@description				```
//	@description
//	@description				### Step 3: Use the token for changes
//	@description				Tokens are valid for 24 hours and only allow changes to your own records.
//	@description				```bash
//	@description				curl -X PUT /api/post/update -H "Authorization: Bearer TOKEN" -d '{"postId":"...","title":"New title"}'
//	@description				```
//
//	@contact.name				Quill
//	@license.name				MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token from /api/user/login
//
//	@tag.name					Users
//	@tag.description			Registration, login and account management.
//
//	@tag.name					Posts
//	@tag.description			Posts written by users. Each post has a title, description and a content link.
//
//	@tag.name					Comments
//	@tag.description			Comments attached to posts.
//
//	@tag.name					Service
//	@tag.description			Service metadata and health.
package httpapp
