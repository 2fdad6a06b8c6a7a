// Package verifier runs an ordered catalog of end-to-end checks against the
// wedding-card backend and records one result per logical assertion.
package verifier

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wondertwin-ai/weddingcheck/internal/client"
)

// API is the backend surface the scenarios drive. *client.Client implements it.
type API interface {
	BaseURL() string
	Do(ctx context.Context, method, path string, query url.Values, body any) (*client.Response, error)
	Send(ctx context.Context, r client.Request) (*client.Response, error)
	Login(ctx context.Context, username, password string) (*client.Response, error)
	Profile(ctx context.Context, sessionID string) (*client.Response, error)
	GetWedding(ctx context.Context, sessionID string) (*client.Response, error)
	UpdateWedding(ctx context.Context, sessionID string, fields map[string]any) (*client.Response, error)
	UpdateFAQs(ctx context.Context, sessionID string, faqs []client.FAQ) (*client.Response, error)
	UpdateParty(ctx context.Context, sessionID string, list client.PartyList, members []any) (*client.Response, error)
	UpdateTheme(ctx context.Context, sessionID, theme string) (*client.Response, error)
	PostGuestbook(ctx context.Context, entry client.GuestbookEntry) (*client.Response, error)
	ListGuestbook(ctx context.Context, weddingID string) (*client.Response, error)
}

// Scenario is one named check. Run may record several results.
type Scenario struct {
	Name   string
	Family Family
	Run    func(ctx context.Context, v *Verifier, rec *Recorder)
}

// Credentials are the account the run logs in with.
type Credentials struct {
	Username string
	Password string
}

// State is what earlier scenarios learned for later ones.
type State struct {
	SessionID string
	UserID    string
	WeddingID string
	Theme     string

	// Party member ids generated by this run, keyed by list.
	AddedMembers map[client.PartyList]string
	// EditedMemberID is the bridal party member given the new designation.
	EditedMemberID string
	// DeletedMemberID is the groom party member removed by this run.
	DeletedMemberID string

	// MessageIDs holds the message_id of each greeting posted by this run,
	// in post order. A failed post leaves an empty entry.
	MessageIDs []string
	// IntegrationMessageIDs are the posts made between theme changes.
	IntegrationMessageIDs []string
}

// Observer is notified as the run progresses.
type Observer interface {
	ScenarioStarted(s Scenario)
	ResultRecorded(r Result)
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithObserver registers o for progress notifications.
func WithObserver(o Observer) Option {
	return func(v *Verifier) { v.observers = append(v.observers, o) }
}

// WithClock overrides the result timestamp source.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) { v.now = now }
}

// Verifier runs scenarios sequentially and owns the result log.
type Verifier struct {
	API   API
	Creds Credentials
	State State

	logger    *zap.Logger
	observers []Observer
	now       func() time.Time

	mu      sync.Mutex
	results []Result
}

// New creates a Verifier. A nil logger is replaced with a no-op logger.
func New(api API, creds Credentials, logger *zap.Logger, opts ...Option) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := &Verifier{
		API:    api,
		Creds:  creds,
		State:  State{AddedMembers: make(map[client.PartyList]string)},
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Run executes scenarios strictly in order and returns the summary of every
// result recorded so far. A scenario that panics is recorded as a failure;
// after ctx is cancelled each remaining scenario records a failure without
// issuing requests.
func (v *Verifier) Run(ctx context.Context, scenarios []Scenario) *Summary {
	start := v.now()
	v.logger.Info("starting verification",
		zap.String("base_url", v.API.BaseURL()),
		zap.Int("scenarios", len(scenarios)),
	)

	for _, s := range scenarios {
		for _, o := range v.observers {
			o.ScenarioStarted(s)
		}
		rec := &Recorder{v: v, family: s.Family}
		if err := ctx.Err(); err != nil {
			rec.Fail(s.Name, fmt.Sprintf("not run: %v", err))
			continue
		}
		v.runOne(ctx, s, rec)
	}

	summary := Summarize(v.Results())
	v.logger.Info("verification finished",
		zap.Int("total", summary.Total),
		zap.Int("passed", summary.Passed),
		zap.Int("failed", summary.Failed),
		zap.Duration("elapsed", v.now().Sub(start)),
	)
	return summary
}

func (v *Verifier) runOne(ctx context.Context, s Scenario, rec *Recorder) {
	defer func() {
		if p := recover(); p != nil {
			v.logger.Error("scenario panicked", zap.String("scenario", s.Name), zap.Any("panic", p))
			rec.Failf(s.Name, "scenario panicked: %v", p)
		}
	}()
	v.logger.Debug("running scenario", zap.String("scenario", s.Name), zap.String("family", string(s.Family)))
	s.Run(ctx, v, rec)
}

func (v *Verifier) record(r Result) {
	r.Timestamp = timestamp(v.now())
	v.mu.Lock()
	v.results = append(v.results, r)
	v.mu.Unlock()

	if r.Passed {
		v.logger.Debug("check passed", zap.String("test", r.Name))
	} else {
		v.logger.Debug("check failed", zap.String("test", r.Name), zap.String("message", r.Message))
	}
	for _, o := range v.observers {
		o.ResultRecorded(r)
	}
}

// Results returns a copy of the ordered result log.
func (v *Verifier) Results() []Result {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]Result(nil), v.results...)
}
