package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"mockraft/internal/domain/aptitude"
	"mockraft/internal/domain/chat"
	"mockraft/internal/domain/interview"
	"mockraft/internal/domain/leaderboard"
	"mockraft/internal/domain/payment"
	"mockraft/internal/domain/user"
	"mockraft/internal/infrastructure/ai"
	paygw "mockraft/internal/infrastructure/payment"

	"github.com/google/uuid"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]user.User
}

func newFakeUsers(us ...user.User) *fakeUsers {
	f := &fakeUsers{users: map[uuid.UUID]user.User{}}
	for _, u := range us {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) CreateUser(_ context.Context, u user.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = u
	return nil
}

func (f *fakeUsers) GetUserByID(_ context.Context, id uuid.UUID) (user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := f.GetUserByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeUsers) UpdateProfile(context.Context, uuid.UUID, user.ProfileUpdate) error { return nil }

func (f *fakeUsers) AddPoints(_ context.Context, id uuid.UUID, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.users[id]
	u.Points += delta
	if u.Points < 0 {
		u.Points = 0
	}
	f.users[id] = u
	return nil
}

func (f *fakeUsers) points(id uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id].Points
}

func (f *fakeUsers) setPlan(id uuid.UUID, p user.Plan) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.users[id]
	u.Plan = p
	f.users[id] = u
}

// fakeInterviews mirrors the conditional writes of the Postgres repository.
type fakeInterviews struct {
	mu    sync.Mutex
	items map[uuid.UUID]interview.MockInterview
	users *fakeUsers
}

func newFakeInterviews(users *fakeUsers) *fakeInterviews {
	return &fakeInterviews{items: map[uuid.UUID]interview.MockInterview{}, users: users}
}

func (f *fakeInterviews) CreateWithQuestions(ctx context.Context, m interview.MockInterview, freeLimit int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users.mu.Lock()
	u, ok := f.users.users[m.UserID]
	if !ok {
		f.users.mu.Unlock()
		return interview.ErrNotFound
	}
	if !u.IsPaid() && freeLimit > 0 && u.InterviewsCreated >= freeLimit {
		f.users.mu.Unlock()
		return interview.ErrPlanLimitReached
	}
	u.InterviewsCreated++
	f.users.users[m.UserID] = u
	f.users.mu.Unlock()

	f.items[m.ID] = m
	return nil
}

func (f *fakeInterviews) ListByUser(_ context.Context, userID uuid.UUID) ([]interview.MockInterview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []interview.MockInterview
	for _, m := range f.items {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeInterviews) GetByID(_ context.Context, userID, id uuid.UUID) (interview.MockInterview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.items[id]
	if !ok || m.UserID != userID {
		return interview.MockInterview{}, interview.ErrNotFound
	}
	m.Questions = append([]interview.Question(nil), m.Questions...)
	return m, nil
}

func (f *fakeInterviews) Delete(_ context.Context, userID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.items[id]
	if !ok || m.UserID != userID {
		return interview.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeInterviews) SetBookmark(_ context.Context, userID, id uuid.UUID, bookmarked bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.items[id]
	if !ok || m.UserID != userID {
		return interview.ErrNotFound
	}
	m.IsBookmarked = bookmarked
	f.items[id] = m
	return nil
}

func (f *fakeInterviews) SaveAnswer(_ context.Context, userID, id uuid.UUID, position int, answer string, at time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.items[id]
	if !ok || m.UserID != userID {
		return 0, interview.ErrNotFound
	}
	if m.IsCompleted {
		return 0, interview.ErrAlreadyCompleted
	}
	idx := indexOf(m, position)
	if idx < 0 {
		return 0, interview.ErrQuestionNotFound
	}
	if m.Questions[idx].Analysis != nil {
		return 0, interview.ErrAlreadyAnalyzed
	}
	qs := append([]interview.Question(nil), m.Questions...)
	a := answer
	qs[idx].Answer = &a
	qs[idx].AnsweredAt = &at
	m.Questions = qs
	m.CurrentIndex = interview.NextIndex(m.CurrentIndex, position, len(qs))
	f.items[id] = m
	return m.CurrentIndex, nil
}

func (f *fakeInterviews) SaveAnalysis(ctx context.Context, userID, id uuid.UUID, position int, a interview.Analysis, points int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.items[id]
	if !ok || m.UserID != userID {
		return interview.ErrNotFound
	}
	idx := indexOf(m, position)
	if idx < 0 {
		return interview.ErrQuestionNotFound
	}
	if m.Questions[idx].Analysis != nil {
		return interview.ErrAlreadyAnalyzed
	}
	if m.Questions[idx].Answer == nil {
		return interview.ErrNotAnswered
	}
	qs := append([]interview.Question(nil), m.Questions...)
	cp := a
	qs[idx].Analysis = &cp
	m.Questions = qs
	f.items[id] = m
	return f.users.AddPoints(ctx, userID, points)
}

func (f *fakeInterviews) Complete(ctx context.Context, userID, id uuid.UUID, score, bonus int, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.items[id]
	if !ok || m.UserID != userID {
		return interview.ErrNotFound
	}
	if m.IsCompleted {
		return interview.ErrAlreadyCompleted
	}
	m.IsCompleted = true
	m.OverallScore = &score
	m.CompletedAt = &at
	f.items[id] = m
	return f.users.AddPoints(ctx, userID, bonus)
}

func indexOf(m interview.MockInterview, position int) int {
	for i, q := range m.Questions {
		if q.Position == position {
			return i
		}
	}
	return -1
}

type fakeAptitude struct {
	mu    sync.Mutex
	bank  []aptitude.BankQuestion
	tests map[uuid.UUID]aptitude.Test
	users *fakeUsers
}

func newFakeAptitude(users *fakeUsers, bank []aptitude.BankQuestion) *fakeAptitude {
	return &fakeAptitude{bank: bank, tests: map[uuid.UUID]aptitude.Test{}, users: users}
}

func (f *fakeAptitude) TopicCounts(context.Context) ([]aptitude.TopicCount, error) {
	counts := map[[2]string]int{}
	for _, q := range f.bank {
		counts[[2]string{q.Category, q.Subtopic}]++
	}
	var out []aptitude.TopicCount
	for k, n := range counts {
		out = append(out, aptitude.TopicCount{Category: k[0], Subtopic: k[1], Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Subtopic < out[j].Subtopic })
	return out, nil
}

func (f *fakeAptitude) BankByTopic(_ context.Context, category string, subtopics []string) ([]aptitude.BankQuestion, error) {
	var out []aptitude.BankQuestion
	for _, q := range f.bank {
		if q.Category != category {
			continue
		}
		if len(subtopics) > 0 && !contains(subtopics, q.Subtopic) {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (f *fakeAptitude) Create(_ context.Context, t aptitude.Test) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tests[t.ID] = t
	return nil
}

func (f *fakeAptitude) ListByUser(_ context.Context, userID uuid.UUID) ([]aptitude.Test, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []aptitude.Test
	for _, t := range f.tests {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeAptitude) GetByID(_ context.Context, userID, id uuid.UUID) (aptitude.Test, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tests[id]
	if !ok || t.UserID != userID {
		return aptitude.Test{}, aptitude.ErrNotFound
	}
	return t, nil
}

func (f *fakeAptitude) Delete(_ context.Context, userID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tests[id]
	if !ok || t.UserID != userID {
		return aptitude.ErrNotFound
	}
	delete(f.tests, id)
	return nil
}

func (f *fakeAptitude) SetBookmark(_ context.Context, userID, id uuid.UUID, bookmarked bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tests[id]
	if !ok || t.UserID != userID {
		return aptitude.ErrNotFound
	}
	t.Bookmarked = bookmarked
	f.tests[id] = t
	return nil
}

func (f *fakeAptitude) RecordAttempt(ctx context.Context, a aptitude.Attempt, points int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tests[a.TestID]
	if !ok || t.UserID != a.UserID {
		return aptitude.ErrNotFound
	}
	if t.IsCompleted {
		return aptitude.ErrAlreadyCompleted
	}
	for _, prev := range t.Attempts {
		if prev.QuestionID == a.QuestionID {
			return aptitude.ErrAlreadyAnswered
		}
	}
	t.Attempts = append(append([]aptitude.Attempt(nil), t.Attempts...), a)
	f.tests[a.TestID] = t
	return f.users.AddPoints(ctx, a.UserID, points)
}

func (f *fakeAptitude) Complete(ctx context.Context, userID, id uuid.UUID, bonus int, at time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tests[id]
	if !ok || t.UserID != userID {
		return 0, aptitude.ErrNotFound
	}
	if t.IsCompleted {
		return 0, aptitude.ErrAlreadyCompleted
	}
	t.IsCompleted = true
	t.Score = aptitude.Score(t.Attempts)
	t.CompletedAt = &at
	f.tests[id] = t
	return t.Score, f.users.AddPoints(ctx, userID, bonus)
}

type fakePayments struct {
	mu    sync.Mutex
	items map[string]payment.Payment
	users *fakeUsers
}

func newFakePayments(users *fakeUsers) *fakePayments {
	return &fakePayments{items: map[string]payment.Payment{}, users: users}
}

func (f *fakePayments) Create(_ context.Context, p payment.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[p.OrderID] = p
	return nil
}

func (f *fakePayments) ListByUser(_ context.Context, userID uuid.UUID) ([]payment.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []payment.Payment
	for _, p := range f.items {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePayments) Settle(_ context.Context, userID uuid.UUID, o payment.Outcome) (payment.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[o.OrderID]
	if !ok || p.UserID != userID {
		return payment.Payment{}, payment.ErrNotFound
	}
	if !p.CanSettle(o) {
		return payment.Payment{}, payment.ErrNotPending
	}
	p.Status = o.Status()
	p.FailureReason = o.FailureReason()
	pid := o.PaymentID
	p.PaymentID = &pid
	f.items[o.OrderID] = p
	if p.Status == payment.StatusSuccess {
		f.users.setPlan(userID, user.PlanPaid)
	}
	return p, nil
}

func (f *fakePayments) ExpireStale(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k, p := range f.items {
		if p.Status == payment.StatusPending && p.CreatedAt.Before(before) {
			p.Status = payment.StatusFailed
			p.FailureReason = payment.ReasonExpired
			f.items[k] = p
			n++
		}
	}
	return n, nil
}

type fakeLeaderboard struct {
	entries []leaderboard.Entry
	calls   int
}

func (f *fakeLeaderboard) Top(_ context.Context, limit int) ([]leaderboard.Entry, error) {
	f.calls++
	if limit < len(f.entries) {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}

func (f *fakeLeaderboard) Rank(_ context.Context, userID uuid.UUID) (int, error) {
	for _, e := range f.entries {
		if e.UserID == userID {
			return e.Rank, nil
		}
	}
	return len(f.entries) + 1, nil
}

type fakeChat struct {
	mu   sync.Mutex
	msgs []chat.Message
	fail bool
}

func (f *fakeChat) Insert(_ context.Context, m chat.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("insert failed")
	}
	f.msgs = append(f.msgs, m)
	return nil
}

func (f *fakeChat) List(_ context.Context, channel string, before *time.Time, limit int) ([]chat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []chat.Message
	for i := len(f.msgs) - 1; i >= 0 && len(out) < limit; i-- {
		m := f.msgs[i]
		if m.Channel != channel || (before != nil && !m.CreatedAt.Before(*before)) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// memCache is an in-process Cache with real lock semantics.
type memCache struct {
	mu          sync.Mutex
	data        map[string][]byte
	locks       map[string]bool
	invalidated int
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}, locks: map[string]bool{}}
}

func (c *memCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, out)
}

func (c *memCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	return nil
}

func (c *memCache) InvalidateLeaderboard(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
	for k := range c.data {
		if len(k) >= len("leaderboard:") && k[:len("leaderboard:")] == "leaderboard:" {
			delete(c.data, k)
		}
	}
	return nil
}

func (c *memCache) AcquireLock(_ context.Context, key string, _ time.Duration) (func(), bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locks[key] {
		return func() {}, false
	}
	c.locks[key] = true
	return func() {
		c.mu.Lock()
		delete(c.locks, key)
		c.mu.Unlock()
	}, true
}

type fakeAI struct {
	mu        sync.Mutex
	questions []ai.GeneratedQuestion
	feedback  ai.Feedback
	err       error
	analyzed  int
}

func (f *fakeAI) GenerateQuestions(_ context.Context, in ai.QuestionRequest) ([]ai.GeneratedQuestion, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.questions != nil {
		return f.questions, nil
	}
	out := make([]ai.GeneratedQuestion, 0, in.Count)
	for i := 0; i < in.Count; i++ {
		out = append(out, ai.GeneratedQuestion{Question: "Q" + string(rune('A'+i)), Answer: "reference"})
	}
	return out, nil
}

func (f *fakeAI) AnalyzeAnswer(context.Context, ai.AnswerRequest) (ai.Feedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analyzed++
	if f.err != nil {
		return ai.Feedback{}, f.err
	}
	return f.feedback, nil
}

type fakeGateway struct {
	verified bool
	err      error
	orders   int
}

func (g *fakeGateway) CreateOrder(_ context.Context, amount int64, currency, _ string) (paygw.Order, error) {
	if g.err != nil {
		return paygw.Order{}, g.err
	}
	g.orders++
	return paygw.Order{ID: "order_" + uuid.NewString()[:8], Amount: amount, Currency: currency}, nil
}

func (g *fakeGateway) Verify(context.Context, paygw.Verification) (bool, error) {
	return g.verified, g.err
}

func (g *fakeGateway) KeyID() string { return "rzp_test" }

type recordingHub struct {
	mu     sync.Mutex
	events []any
}

func (h *recordingHub) BroadcastJSON(v any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, v)
}

func (h *recordingHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

type recordingPoints struct {
	mu     sync.Mutex
	awards map[string]int
}

func (r *recordingPoints) PointsAwarded(_ context.Context, _ uuid.UUID, delta int, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.awards == nil {
		r.awards = map[string]int{}
	}
	r.awards[reason] += delta
}
