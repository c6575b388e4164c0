// Package web provides the embedded front-end assets.
package web

import "embed"

// FS contains the embedded chat and audio pages plus their scripts.
//
//go:embed login.html index.html audio.html groq.js audio.js constant.js
var FS embed.FS
