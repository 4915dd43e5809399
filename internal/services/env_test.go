package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/787516/Matrimonial/internal/config"
	"github.com/787516/Matrimonial/internal/models"
	"github.com/787516/Matrimonial/internal/repositories"
	"github.com/787516/Matrimonial/internal/testutil"
	"gorm.io/gorm"
)

type notification struct {
	Target    uint
	Actor     uint
	Type      string
	Message   string
	RelatedID uint
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notification
}

func (n *recordingNotifier) Notify(ctx context.Context, target, actor uint, eventType, message string, relatedID uint) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notification{target, actor, eventType, message, relatedID})
}

func (n *recordingNotifier) ofType(eventType string) []notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	var out []notification
	for _, e := range n.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

type testEnv struct {
	db            *gorm.DB
	relationships *repositories.RelationshipRepository
	profiles      *repositories.ProfileRepository
	users         *repositories.UserRepository
	subscriptions *repositories.SubscriptionRepository
	activities    *repositories.ActivityRepository
	notifier      *recordingNotifier
	ledger        *Ledger
	guard         *ChatGuard
	feed          *FeedService
	match         *MatchService
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithPolicy(t, config.ChatGatingHybrid)
}

func newTestEnvWithPolicy(t *testing.T, policy string) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	testutil.SeedPlans(t, db)

	env := &testEnv{
		db:            db,
		relationships: repositories.NewRelationshipRepository(db),
		profiles:      repositories.NewProfileRepository(db),
		users:         repositories.NewUserRepository(db),
		subscriptions: repositories.NewSubscriptionRepository(db),
		activities:    repositories.NewActivityRepository(db),
		notifier:      &recordingNotifier{},
	}

	paging := Paging{DefaultLimit: 20, MaxLimit: 100}
	scorer := NewScorer()
	exclusions := NewExclusionBuilder(env.relationships)

	env.ledger = NewLedger(env.relationships, env.users, env.notifier)
	env.guard = NewChatGuard(policy, env.ledger, env.subscriptions)
	env.feed = NewFeedService(env.profiles, exclusions,
		NewCandidateFilter(env.profiles, env.relationships), scorer, paging)
	env.match = NewMatchService(MatchServiceDeps{
		Ledger:     env.ledger,
		Feed:       env.feed,
		Guard:      env.guard,
		Exclusions: exclusions,
		Scorer:     scorer,
		Profiles:   env.profiles,
		Requests:   env.relationships,
		Users:      env.users,
		Notifier:   env.notifier,
		Paging:     paging,
	})
	return env
}

func (e *testEnv) member(t *testing.T, name, gender string, opts ...testutil.ProfileOption) testutil.Member {
	t.Helper()
	return testutil.CreateMember(t, e.db, name, gender, opts...)
}

// subscribe puts userID on the named plan starting now.
func (e *testEnv) subscribe(t *testing.T, userID uint, planName string) {
	t.Helper()

	ctx := context.Background()
	plan, err := e.subscriptions.GetPlanByName(ctx, planName)
	if err != nil {
		t.Fatalf("GetPlanByName(%s) error = %v", planName, err)
	}
	if _, err := e.subscriptions.Subscribe(ctx, userID, plan, nowUTC()); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
}

// acceptedInterest links a and b with an accepted interest from a.
func (e *testEnv) acceptedInterest(t *testing.T, a, b uint) *models.RelationshipRequest {
	t.Helper()

	ctx := context.Background()
	req, err := e.ledger.CreateInterest(ctx, a, b)
	if err != nil {
		t.Fatalf("CreateInterest() error = %v", err)
	}
	req, err = e.ledger.Transition(ctx, req.ID, b, models.RequestStatusAccepted)
	if err != nil {
		t.Fatalf("accept interest: %v", err)
	}
	return req
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
