// Package sources fetches video metadata and transcripts from YouTube.
//
// Split by responsibility:
//
//	youtube_innertube.go  — Innertube API types, constants, and low-level HTTP primitives
//	youtube_metadata.go   — video metadata (ANDROID /player + watch-page meta fallback)
//	youtube_transcript.go — transcript fetching (page scrape, engagement panel, player)
package sources
