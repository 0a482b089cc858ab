// Package stores defines the application's persistent domain stores.
//
// Each store is a persist.Store over its own durable key with a default
// shape and a vocabulary of actions:
//
//	app-settings  Settings  theme, language, sidebar, chat model, editor
//	auth          Auth      bearer token and session id
//	user-profile  Profile   account fields, recent chats, quiz stats
//	novel-draft   Novel     one novel in progress: volumes, chapters, drafts
//
// Session opens all four over a shared adapter.
package stores
