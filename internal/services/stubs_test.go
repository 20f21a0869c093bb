package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"hirehub/backend/internal/apperr"
	"hirehub/backend/internal/models"
)

// stubGemini scripts model responses per call. A nil response function means
// the call fails.
type stubGemini struct {
	embedding []float32
	embedErr  error
	textFn    func(prompt string) (string, error)
}

func (s *stubGemini) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if s.embedErr != nil {
		return nil, s.embedErr
	}
	return s.embedding, nil
}

func (s *stubGemini) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	if s.textFn == nil {
		return "", apperr.ExternalService("no scripted response", nil)
	}
	return s.textFn(prompt)
}

func (s *stubGemini) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error) {
	return s.GenerateText(ctx, prompt, temperature)
}

type upsertCall struct {
	candidateID string
	kind        string
	text        string
}

type stubVectorIndex struct {
	mu        sync.Mutex
	hits      []CandidateHit
	searchErr error
	upserts   []upsertCall
}

func (s *stubVectorIndex) InitCollection() error { return nil }

func (s *stubVectorIndex) UpsertCandidate(ctx context.Context, candidateID, kind, text string, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts = append(s.upserts, upsertCall{candidateID: candidateID, kind: kind, text: text})
	return nil
}

func (s *stubVectorIndex) SearchCandidates(ctx context.Context, queryEmbedding []float32, threshold float32, limit int) ([]CandidateHit, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.hits, nil
}

type stubCandidateRepo struct {
	mu         sync.Mutex
	candidates map[uuid.UUID]*models.Candidate
	signals    map[uuid.UUID]*models.CandidateAnalysis
}

func newStubCandidateRepo(candidates ...*models.Candidate) *stubCandidateRepo {
	repo := &stubCandidateRepo{
		candidates: make(map[uuid.UUID]*models.Candidate),
		signals:    make(map[uuid.UUID]*models.CandidateAnalysis),
	}
	for _, c := range candidates {
		repo.candidates[c.ID] = c
	}
	return repo
}

func (r *stubCandidateRepo) Create(candidate *models.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.candidates[candidate.ID] = candidate
	return nil
}

func (r *stubCandidateRepo) Update(candidate *models.Candidate) error {
	return r.Create(candidate)
}

func (r *stubCandidateRepo) FindByID(id uuid.UUID) (*models.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.candidates[id]
	if !ok {
		return nil, apperr.NotFound("candidate %s not found", id)
	}
	copied := *c
	return &copied, nil
}

func (r *stubCandidateRepo) FindByIDs(ids []uuid.UUID) ([]models.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Candidate
	for _, id := range ids {
		if c, ok := r.candidates[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubCandidateRepo) FindByMinimumScore(min, limit int) ([]models.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Candidate
	for _, c := range r.candidates {
		if c.OverallScore >= min {
			out = append(out, *c)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubCandidateRepo) UpdateInterviewSignal(id uuid.UUID, analysis *models.CandidateAnalysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.candidates[id]; !ok {
		return apperr.NotFound("candidate %s not found", id)
	}
	r.signals[id] = analysis
	return nil
}

type stubJobRepo struct {
	jobs map[uuid.UUID]*models.Job
}

func newStubJobRepo(jobs ...*models.Job) *stubJobRepo {
	repo := &stubJobRepo{jobs: make(map[uuid.UUID]*models.Job)}
	for _, j := range jobs {
		repo.jobs[j.ID] = j
	}
	return repo
}

func (r *stubJobRepo) Create(job *models.Job) error {
	r.jobs[job.ID] = job
	return nil
}

func (r *stubJobRepo) FindByID(id uuid.UUID) (*models.Job, error) {
	j, ok := r.jobs[id]
	if !ok {
		return nil, apperr.NotFound("job %s not found", id)
	}
	return j, nil
}

type stubResumeRepo struct {
	latest map[uuid.UUID]*models.ResumeDocument
}

func newStubResumeRepo() *stubResumeRepo {
	return &stubResumeRepo{latest: make(map[uuid.UUID]*models.ResumeDocument)}
}

func (r *stubResumeRepo) Create(doc *models.ResumeDocument) error {
	r.latest[doc.CandidateID] = doc
	return nil
}

func (r *stubResumeRepo) FindByID(id uuid.UUID) (*models.ResumeDocument, error) {
	for _, doc := range r.latest {
		if doc.ID == id {
			return doc, nil
		}
	}
	return nil, apperr.NotFound("resume %s not found", id)
}

func (r *stubResumeRepo) FindLatestByCandidate(candidateID uuid.UUID) (*models.ResumeDocument, error) {
	doc, ok := r.latest[candidateID]
	if !ok {
		return nil, apperr.NotFound("no resume for candidate %s", candidateID)
	}
	return doc, nil
}

// stubSessionRepo keeps sessions in memory. findGate, when set, blocks
// FindByID until the channel is closed so tests can hold a session lock.
type stubSessionRepo struct {
	mu          sync.Mutex
	sessions    map[uuid.UUID]*models.InterviewSession
	findGate    chan struct{}
	findEntered chan struct{}
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{sessions: make(map[uuid.UUID]*models.InterviewSession)}
}

func (r *stubSessionRepo) Create(session *models.InterviewSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

func (r *stubSessionRepo) FindByID(id uuid.UUID) (*models.InterviewSession, error) {
	r.mu.Lock()
	gate := r.findGate
	entered := r.findEntered
	r.mu.Unlock()
	if gate != nil {
		if entered != nil {
			select {
			case entered <- struct{}{}:
			default:
			}
		}
		<-gate
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, apperr.NotFound("session %s not found", id)
	}
	copied := *s
	return &copied, nil
}

func (r *stubSessionRepo) FindByRoom(roomName string) (*models.InterviewSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.RoomName == roomName {
			copied := *s
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("session for room %s not found", roomName)
}

func (r *stubSessionRepo) Save(session *models.InterviewSession) error {
	return r.Create(session)
}

func (r *stubSessionRepo) FindPendingSignals(limit int) ([]models.InterviewSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.InterviewSession
	for _, s := range r.sessions {
		if s.Status == models.SessionCompleted && s.Analysis != nil && s.SignalAt == nil {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubSessionRepo) MarkSignalPublished(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return apperr.NotFound("session %s not found", id)
	}
	now := time.Now()
	s.SignalAt = &now
	return nil
}

// stubAnalysis returns a canned analysis and records publish calls.
type stubAnalysis struct {
	mu        sync.Mutex
	final     *models.CandidateAnalysis
	published []uuid.UUID
}

func (s *stubAnalysis) AnalyzeAnswer(ctx context.Context, question, answer string, config models.InterviewConfig) *models.MessageAnalysis {
	return neutralMessageAnalysis()
}

func (s *stubAnalysis) GenerateFinalAnalysis(ctx context.Context, session *models.InterviewSession) *models.CandidateAnalysis {
	if s.final != nil {
		return s.final
	}
	return NeutralAnalysis()
}

func (s *stubAnalysis) PublishCandidateSignal(ctx context.Context, session *models.InterviewSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published = append(s.published, session.ID)
	return nil
}

// stubRoomCloser records room teardown requests.
type stubRoomCloser struct {
	closed chan string
}

func (s *stubRoomCloser) CloseRoom(name string) {
	select {
	case s.closed <- name:
	default:
	}
}

// stubTokens mints predictable tokens, or fails to simulate unavailable
// media infrastructure.
type stubTokens struct {
	err error
}

func (s *stubTokens) Mint(room, identity, name string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "token-" + room + "-" + identity, nil
}

func (s *stubTokens) Validate(token, room string) (string, error) {
	return "", apperr.Validation("not implemented")
}
