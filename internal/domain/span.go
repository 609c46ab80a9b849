package domain

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Span times one stage of a pipeline run
type Span struct {
	Name    string `json:"name"`
	Elapsed *int64 `json:"elapsed"`
	startTs time.Time
}

type ctxKey string

const ContextProfileKey ctxKey = "performanceProfile"

// Profile is simply a list of spans. safe to share between goroutines
type Profile struct {
	mu      sync.Mutex
	Spans   []*Span `json:"spans"`
	startTs time.Time
	TotalMs *int64 `json:"totalMs"`
}

func NewProfile() (newProfile *Profile, endNewProfile func()) {
	newProfile = &Profile{
		Spans:   []*Span{},
		startTs: time.Now(),
	}
	return newProfile, newProfile.End
}

func NewCtxWithProfile(ctx context.Context) (context.Context, *Profile) {
	profile, _ := NewProfile()
	return context.WithValue(ctx, ContextProfileKey, profile), profile
}

// GetProfile returns the profile on ctx. if there isn't one, a detached
// profile is returned so callers never need a nil check
func GetProfile(ctx context.Context) *Profile {
	if profile, ok := ctx.Value(ContextProfileKey).(*Profile); ok {
		return profile
	}
	profile, _ := NewProfile()
	return profile
}

func (p *Profile) End() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.TotalMs == nil {
		t := time.Since(p.startTs).Milliseconds()
		p.TotalMs = &t
	}
}

func (s *Span) end() {
	if s.Elapsed == nil {
		t := time.Since(s.startTs).Milliseconds()
		s.Elapsed = &t
	}
}

// StartSpan records a new span. the returned func ends it
func (p *Profile) StartSpan(name string) func() {
	s := &Span{
		Name:    name,
		startTs: time.Now(),
	}
	p.mu.Lock()
	p.Spans = append(p.Spans, s)
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		s.end()
	}
}

func (p *Profile) SpanNames() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.Spans))
	for i, s := range p.Spans {
		out[i] = s.Name
	}
	return out
}

func (p *Profile) ToJsonBytes() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return json.Marshal(p.Spans)
}
