package studioserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/anatolykoptev/go_studio/internal/engine"
	"github.com/anatolykoptev/go_studio/internal/engine/sources"
	"github.com/anatolykoptev/go_studio/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// VideoInput is the input for video_info and video_transcript.
type VideoInput struct {
	// Video is a YouTube URL or bare 11-character video ID.
	Video string `json:"video"`
}

// TranscriptOutput is the output for video_transcript.
type TranscriptOutput struct {
	VideoID    string `json:"video_id"`
	Transcript string `json:"transcript"`
	Truncated  bool   `json:"truncated,omitempty"`
}

func registerVideoInfo(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_info",
		Description: "Fetch basic metadata for a YouTube video: title, channel, duration, views, description. Accepts a URL or bare video ID. Results are cached.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input VideoInput) (*mcp.CallToolResult, *engine.VideoInfo, error) {
		videoID, ok := toolutil.ExtractVideoID(input.Video)
		if !ok {
			return nil, nil, fmt.Errorf("not a YouTube URL or video ID: %q", input.Video)
		}

		cacheKey := engine.CacheKey("video_info", videoID)
		if info, ok := toolutil.CacheLoadJSON[*engine.VideoInfo](ctx, cacheKey); ok {
			return nil, info, nil
		}

		info, err := sources.FetchVideoInfo(ctx, videoID)
		if err != nil {
			return nil, nil, err
		}

		toolutil.CacheStoreJSON(ctx, cacheKey, info)
		return nil, info, nil
	})
}

func registerVideoTranscript(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_transcript",
		Description: "Fetch the transcript of a YouTube video as plain text. Accepts a URL or bare video ID. Long transcripts are truncated at a word boundary. Results are cached.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input VideoInput) (*mcp.CallToolResult, *TranscriptOutput, error) {
		videoID, ok := toolutil.ExtractVideoID(input.Video)
		if !ok {
			return nil, nil, fmt.Errorf("not a YouTube URL or video ID: %q", input.Video)
		}

		cacheKey := engine.CacheKey("video_transcript", videoID)
		if out, ok := toolutil.CacheLoadJSON[*TranscriptOutput](ctx, cacheKey); ok {
			return nil, out, nil
		}

		text, err := sources.FetchTranscript(ctx, videoID, engine.Cfg.TranscriptLangs)
		if err != nil {
			return nil, nil, err
		}
		if text == "" {
			return nil, nil, errors.New("transcript is empty")
		}

		out := &TranscriptOutput{VideoID: videoID, Transcript: text}
		if max := engine.Cfg.MaxContentChars; max > 0 && len(text) > max {
			out.Transcript = engine.TruncateAtWord(text, max)
			out.Truncated = true
		}

		toolutil.CacheStoreJSON(ctx, cacheKey, out)
		return nil, out, nil
	})
}
