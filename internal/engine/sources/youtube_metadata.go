package sources

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/anatolykoptev/go_studio/internal/engine"
)

// Video metadata fetching.
// Primary:  ANDROID Innertube /player → videoDetails
// Fallback: watch page <meta> tags (works when /player is blocked)

// fetchInfoViaPlayer builds VideoInfo from the ANDROID player response.
func fetchInfoViaPlayer(ctx context.Context, videoID string) (*engine.VideoInfo, error) {
	playerResp, err := postInnerTubeANDROID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	vd := playerResp.VideoDetails
	if vd == nil || vd.Title == "" {
		reason := ""
		if playerResp.PlayabilityStatus != nil {
			reason = playerResp.PlayabilityStatus.Reason
		}
		if reason != "" {
			return nil, fmt.Errorf("video unavailable: %s", reason)
		}
		return nil, errors.New("no videoDetails in player response")
	}

	duration, _ := strconv.Atoi(vd.LengthSeconds)
	return &engine.VideoInfo{
		ID:          videoID,
		Title:       vd.Title,
		Channel:     vd.Author,
		Duration:    duration,
		Views:       vd.ViewCount,
		Description: vd.ShortDescription,
	}, nil
}

// metaTags walks an HTML document and collects <meta> name/property → content pairs.
func metaTags(doc *html.Node) map[string]string {
	tags := make(map[string]string)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" {
			var key, content string
			for _, a := range n.Attr {
				switch a.Key {
				case "name", "property", "itemprop":
					if key == "" {
						key = a.Val
					}
				case "content":
					content = a.Val
				}
			}
			if key != "" && content != "" {
				if _, seen := tags[key]; !seen {
					tags[key] = content
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return tags
}

// fetchInfoViaWatchPage scrapes <meta> tags from the watch page HTML.
// Slimmer than the player response: no view count or duration guarantees.
func fetchInfoViaWatchPage(ctx context.Context, videoID string) (*engine.VideoInfo, error) {
	body, err := fetchWatchPage(ctx, videoID)
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parse watch page: %w", err)
	}
	tags := metaTags(doc)

	title := tags["og:title"]
	if title == "" {
		title = tags["title"]
	}
	if title == "" {
		return nil, errors.New("no title meta in watch page")
	}

	info := &engine.VideoInfo{
		ID:          videoID,
		Title:       title,
		Description: tags["og:description"],
	}
	// itemprop duration is ISO 8601 (PT#M#S); itemprop name carries the channel
	// on some page variants.
	if d := tags["duration"]; d != "" {
		info.Duration = parseISODuration(d)
	}
	if v := tags["interactionCount"]; v != "" {
		info.Views = v
	}
	return info, nil
}

// parseISODuration converts an ISO 8601 duration like "PT1H2M3S" to seconds.
// Returns 0 on anything it cannot parse.
func parseISODuration(s string) int {
	s = strings.TrimPrefix(s, "PT")
	total := 0
	num := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			num = num*10 + int(r-'0')
		case r == 'H':
			total += num * 3600
			num = 0
		case r == 'M':
			total += num * 60
			num = 0
		case r == 'S':
			total += num
			num = 0
		default:
			return 0
		}
	}
	return total
}

// FetchVideoInfo fetches basic metadata for a YouTube video.
func FetchVideoInfo(ctx context.Context, videoID string) (*engine.VideoInfo, error) {
	engine.IncrVideoInfoRequests()

	info, err := fetchInfoViaPlayer(ctx, videoID)
	if err == nil {
		return info, nil
	}

	info2, err2 := fetchInfoViaWatchPage(ctx, videoID)
	if err2 != nil {
		return nil, fmt.Errorf("video info: player: %v; watch page: %w", err, err2)
	}
	return info2, nil
}
