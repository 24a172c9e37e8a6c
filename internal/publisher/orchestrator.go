package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/solodevhq/megaphone/internal/platform"
)

// PublishRequest is one logical outbound post fanned out across platforms.
// Every platform in Platforms must have an entry in Credentials; one that
// does not gets a missing-credentials failure entry without any network call.
type PublishRequest struct {
	Platforms       []string
	Content         string
	Title           string
	PlatformContent map[string]string
	MediaURLs       []string
	Credentials     map[string]platform.Credentials
	Targets         map[string]platform.Target
}

// Results maps platform name to that platform's independent outcome. The key
// set is always exactly the requested platform set.
type Results map[string]platform.PublishResult

// AllSuccessful reports whether every platform succeeded. An empty result set
// (from an empty target set) counts as successful: there was nothing to fail.
func (r Results) AllSuccessful() bool {
	for _, result := range r {
		if !result.Success {
			return false
		}
	}
	return true
}

// ErrorSummary concatenates failing platforms as "platform: error; ...",
// in platform-name order so the summary is stable.
func (r Results) ErrorSummary() string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)

	var parts []string
	for _, name := range names {
		if result := r[name]; !result.Success {
			parts = append(parts, fmt.Sprintf("%s: %s", name, result.Error))
		}
	}
	return strings.Join(parts, "; ")
}

// Orchestrator fans a publish request out across the adapter registry and
// collects per-platform outcomes. It performs no retries; retry policy
// belongs to the caller.
type Orchestrator struct {
	registry *platform.Registry
	timeout  time.Duration
}

func NewOrchestrator(registry *platform.Registry, timeout time.Duration) *Orchestrator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Orchestrator{registry: registry, timeout: timeout}
}

type platformOutcome struct {
	name   string
	result platform.PublishResult
}

// Publish runs every platform call concurrently and waits for all of them.
// One platform failing never prevents the others from being attempted or
// reported.
func (o *Orchestrator) Publish(ctx context.Context, req PublishRequest) Results {
	outcomes := make(chan platformOutcome, len(req.Platforms))

	for _, name := range req.Platforms {
		go func(name string) {
			outcomes <- platformOutcome{name: name, result: o.publishOne(ctx, req, name)}
		}(name)
	}

	results := make(Results, len(req.Platforms))
	for range req.Platforms {
		outcome := <-outcomes
		results[outcome.name] = outcome.result
	}
	return results
}

func (o *Orchestrator) publishOne(ctx context.Context, req PublishRequest, name string) (result platform.PublishResult) {
	// An adapter is not supposed to panic, but a panicking one must still
	// produce a failure entry rather than take down the whole fan-out.
	defer func() {
		if p := recover(); p != nil {
			slog.Error("platform publish panicked", "platform", name, "panic", fmt.Sprintf("%v", p))
			result = platform.PublishResult{Success: false, Error: fmt.Sprintf("panic: %v", p)}
		}
	}()

	adapter, ok := o.registry.Get(name)
	if !ok {
		return platform.PublishResult{Success: false, Error: platform.ErrUnknownPlatform.Error()}
	}

	creds, ok := req.Credentials[name]
	if !ok {
		return platform.PublishResult{Success: false, Error: platform.ErrMissingCredentials.Error()}
	}

	body := req.Content
	if override, ok := req.PlatformContent[name]; ok && override != "" {
		body = override
	}

	content := platform.Content{
		Body:      body,
		Title:     req.Title,
		MediaURLs: req.MediaURLs,
	}
	if target, ok := req.Targets[name]; ok {
		content.Subreddit = target.Subreddit
	}

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	done := make(chan platform.PublishResult, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- platform.PublishResult{Success: false, Error: fmt.Sprintf("panic: %v", p)}
			}
		}()
		done <- adapter.Publish(callCtx, creds, content)
	}()

	select {
	case result := <-done:
		return result
	case <-callCtx.Done():
		// a hung platform call must look like any other failure
		return platform.PublishResult{Success: false, Error: "timeout"}
	}
}
