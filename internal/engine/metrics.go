package engine

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Operational counters across the engine.
var (
	metricOrganizeRequests   atomic.Int64
	metricLLMPrimaryCalls    atomic.Int64
	metricLLMPrimaryErrors   atomic.Int64
	metricLLMFallbackCalls   atomic.Int64
	metricLLMFallbackErrors  atomic.Int64
	metricParseErrors        atomic.Int64
	metricTrackEvents        atomic.Int64
	metricTrackErrors        atomic.Int64
	metricVideoInfoRequests  atomic.Int64
	metricTranscriptRequests atomic.Int64
	metricChecklistSaves     atomic.Int64
	metricChecklistSaveFails atomic.Int64
)

// Incrementors for the sources/ sub-package.
func IncrVideoInfoRequests()  { metricVideoInfoRequests.Add(1) }
func IncrTranscriptRequests() { metricTranscriptRequests.Add(1) }

// Incrementors for the tool layer.
func IncrChecklistSaves()     { metricChecklistSaves.Add(1) }
func IncrChecklistSaveFails() { metricChecklistSaveFails.Add(1) }

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"organize_requests":    metricOrganizeRequests.Load(),
		"llm_primary_calls":    metricLLMPrimaryCalls.Load(),
		"llm_primary_errors":   metricLLMPrimaryErrors.Load(),
		"llm_fallback_calls":   metricLLMFallbackCalls.Load(),
		"llm_fallback_errors":  metricLLMFallbackErrors.Load(),
		"parse_errors":         metricParseErrors.Load(),
		"track_events":         metricTrackEvents.Load(),
		"track_errors":         metricTrackErrors.Load(),
		"video_info_requests":  metricVideoInfoRequests.Load(),
		"transcript_requests":  metricTranscriptRequests.Load(),
		"checklist_saves":      metricChecklistSaves.Load(),
		"checklist_save_fails": metricChecklistSaveFails.Load(),
		"cache_hits":           hits,
		"cache_misses":         misses,
	}
}

// FormatMetrics returns metrics as a simple text format for the HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"organize_requests",
		"llm_primary_calls", "llm_primary_errors",
		"llm_fallback_calls", "llm_fallback_errors",
		"parse_errors",
		"track_events", "track_errors",
		"video_info_requests", "transcript_requests",
		"checklist_saves", "checklist_save_fails",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}
