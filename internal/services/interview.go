package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"hirehub/backend/internal/apperr"
	"hirehub/backend/internal/models"
	"hirehub/backend/internal/realtime"
	"hirehub/backend/internal/repositories"
)

const (
	MethodStartInterview = "start_interview"
	MethodNextQuestion   = "next_question"
	MethodEndInterview   = "end_interview"
	MethodGetProgress    = "get_progress"
	MethodGetTranscript  = "get_transcript"
)

// StartInterviewResult is the reply to start_interview.
type StartInterviewResult struct {
	Question models.Question `json:"question"`
	Progress models.Progress `json:"progress"`
}

// NextQuestionResult is the reply to next_question. Question is nil and
// Transcript and Analysis set once the script is exhausted and the session
// completes.
type NextQuestionResult struct {
	Question   *models.Question          `json:"question,omitempty"`
	Status     models.SessionStatus      `json:"status"`
	Transcript []models.InterviewMessage `json:"transcript,omitempty"`
	Progress   models.Progress           `json:"progress"`
	Analysis   *models.CandidateAnalysis `json:"analysis,omitempty"`
}

// EndInterviewResult is the reply to end_interview. Calling end again on a
// completed session returns the same result.
type EndInterviewResult struct {
	SessionID  string                    `json:"sessionId"`
	Status     models.SessionStatus      `json:"status"`
	Transcript []models.InterviewMessage `json:"transcript"`
	Progress   models.Progress           `json:"progress"`
	Analysis   *models.CandidateAnalysis `json:"analysis"`
}

// RoomCloser tears down the media room once its session is over. The room
// server implements this.
type RoomCloser interface {
	CloseRoom(name string)
}

// InterviewService owns the session state machine and serves the agent
// protocol. It also observes room events to drive connection transitions.
type InterviewService interface {
	CreateSession(ctx context.Context, jobID, candidateID uuid.UUID, duration int) (*models.CreateSessionResponse, error)
	GetSession(ctx context.Context, id uuid.UUID) (*models.InterviewSession, error)
	StartInterview(ctx context.Context, sessionID uuid.UUID) (*StartInterviewResult, error)
	NextQuestion(ctx context.Context, sessionID uuid.UUID, answer string) (*NextQuestionResult, error)
	EndInterview(ctx context.Context, sessionID uuid.UUID) (*EndInterviewResult, error)
	Abort(ctx context.Context, sessionID uuid.UUID, reason string) error
	RegisterProtocol(d *realtime.Dispatcher)
	SetRoomCloser(rc RoomCloser)
	HandleRoomEvent(ctx context.Context, evt realtime.Event)
}

type interviewService struct {
	sessionRepo     repositories.SessionRepository
	jobRepo         repositories.JobRepository
	candidateRepo   repositories.CandidateRepository
	resumeRepo      repositories.ResumeRepository
	analysisService AnalysisService
	tokenService    realtime.TokenService
	signalWorker    SignalWorker
	wsURL           string
	totalQuestions  int
	defaultDuration int

	rooms          RoomCloser
	roomCloseGrace time.Duration

	mu    sync.Mutex
	gates map[uuid.UUID]*sessionGate
}

// sessionGate serializes work on one session. Protocol calls are rejected
// when another protocol call is already in flight; internal work (abort,
// transition, analysis attach) queues on the mutex instead.
type sessionGate struct {
	mu       sync.Mutex
	inFlight atomic.Bool
}

func NewInterviewService(
	sessionRepo repositories.SessionRepository,
	jobRepo repositories.JobRepository,
	candidateRepo repositories.CandidateRepository,
	resumeRepo repositories.ResumeRepository,
	analysisService AnalysisService,
	tokenService realtime.TokenService,
	signalWorker SignalWorker,
	wsURL string,
	totalQuestions, defaultDuration int,
) InterviewService {
	return &interviewService{
		sessionRepo:     sessionRepo,
		jobRepo:         jobRepo,
		candidateRepo:   candidateRepo,
		resumeRepo:      resumeRepo,
		analysisService: analysisService,
		tokenService:    tokenService,
		signalWorker:    signalWorker,
		wsURL:           wsURL,
		totalQuestions:  totalQuestions,
		defaultDuration: defaultDuration,
		roomCloseGrace:  2 * time.Second,
		gates:           make(map[uuid.UUID]*sessionGate),
	}
}

// SetRoomCloser implements InterviewService. The room server depends on this
// service as its event sink, so the closer is attached after construction.
func (s *interviewService) SetRoomCloser(rc RoomCloser) {
	s.rooms = rc
}

// scheduleRoomClose tears the room down once the session is terminal. The
// grace period lets the final protocol reply reach the participant before
// the socket drops.
func (s *interviewService) scheduleRoomClose(roomName string) {
	if s.rooms == nil {
		return
	}
	rooms := s.rooms
	time.AfterFunc(s.roomCloseGrace, func() { rooms.CloseRoom(roomName) })
}

func (s *interviewService) gate(id uuid.UUID) *sessionGate {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.gates[id]
	if !ok {
		g = &sessionGate{}
		s.gates[id] = g
	}
	return g
}

// beginProtocol rejects a protocol call that races another protocol call on
// the same session instead of queueing behind it. The returned release must
// be called when the operation finishes.
func (s *interviewService) beginProtocol(id uuid.UUID) (func(), error) {
	g := s.gate(id)
	if !g.inFlight.CompareAndSwap(false, true) {
		return nil, apperr.InvalidState("another operation is in progress for session %s", id)
	}
	g.mu.Lock()
	return func() {
		g.mu.Unlock()
		g.inFlight.Store(false)
	}, nil
}

// CreateSession implements InterviewService.
func (s *interviewService) CreateSession(ctx context.Context, jobID, candidateID uuid.UUID, duration int) (*models.CreateSessionResponse, error) {
	job, err := s.jobRepo.FindByID(jobID)
	if err != nil {
		return nil, err
	}
	candidate, err := s.candidateRepo.FindByID(candidateID)
	if err != nil {
		return nil, err
	}

	if duration <= 0 {
		duration = s.defaultDuration
	}

	config := models.InterviewConfig{
		JobTitle:        job.Title,
		JobDescription:  job.Description,
		RequiredSkills:  job.RequiredSkills,
		ExperienceLevel: job.ExperienceLevel,
		Company:         job.Company,
		Duration:        duration,
		CandidateSkills: s.candidateSkills(candidateID),
	}

	session := &models.InterviewSession{
		ID:             uuid.New(),
		JobID:          jobID,
		CandidateID:    candidateID,
		RoomName:       fmt.Sprintf("interview-%s", uuid.NewString()),
		Config:         config,
		Status:         models.SessionCreated,
		Messages:       []models.InterviewMessage{},
		TotalQuestions: s.totalQuestions,
	}

	participantToken, perr := s.tokenService.Mint(session.RoomName, candidateID.String(), candidate.FullName)
	agentToken, aerr := s.tokenService.Mint(session.RoomName, realtime.AgentIdentity, "Interview Agent")
	if perr != nil || aerr != nil {
		// Media infrastructure is unavailable; the session degrades to demo
		// mode instead of failing creation.
		log.Printf("⚠️ Token minting failed for session %s, enabling demo mode: %v %v", session.ID, perr, aerr)
		session.DemoMode = true
		session.Status = models.SessionConnected
	} else {
		session.ParticipantToken = participantToken
		session.AgentToken = agentToken
	}

	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}
	log.Printf("🎬 Session %s created for job %s, candidate %s (demo=%v)", session.ID, jobID, candidateID, session.DemoMode)

	return &models.CreateSessionResponse{
		SessionID:        session.ID.String(),
		RoomName:         session.RoomName,
		ParticipantToken: session.ParticipantToken,
		AgentToken:       session.AgentToken,
		WsURL:            s.wsURL,
		Config:           config,
	}, nil
}

func (s *interviewService) candidateSkills(candidateID uuid.UUID) []string {
	doc, err := s.resumeRepo.FindLatestByCandidate(candidateID)
	if err != nil || doc.Profile == nil {
		return nil
	}
	return doc.Profile.Skills
}

// GetSession implements InterviewService.
func (s *interviewService) GetSession(ctx context.Context, id uuid.UUID) (*models.InterviewSession, error) {
	return s.sessionRepo.FindByID(id)
}

// StartInterview implements InterviewService. Only a connected session can
// start; the first question is appended to the transcript and returned.
func (s *interviewService) StartInterview(ctx context.Context, sessionID uuid.UUID) (*StartInterviewResult, error) {
	release, err := s.beginProtocol(sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	session, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionConnected {
		return nil, apperr.InvalidState("cannot start interview in state %s", session.Status)
	}

	questions := GenerateQuestions(session.Config, session.Config.CandidateSkills)
	session.Status = models.SessionActive
	session.QuestionIndex = 0
	session.TotalQuestions = len(questions)
	s.appendQuestion(session, questions[0])

	if err := s.sessionRepo.Save(session); err != nil {
		return nil, err
	}
	log.Printf("🎤 Interview started for session %s", sessionID)

	return &StartInterviewResult{
		Question: questions[0],
		Progress: progressOf(session),
	}, nil
}

// NextQuestion implements InterviewService. The answer is recorded against
// the current question, the index advances by exactly one, and either the
// next question or the final analysis comes back.
func (s *interviewService) NextQuestion(ctx context.Context, sessionID uuid.UUID, answer string) (*NextQuestionResult, error) {
	if answer == "" {
		return nil, apperr.Validation("answer is required")
	}

	release, err := s.beginProtocol(sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	session, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionActive {
		return nil, apperr.InvalidState("cannot advance interview in state %s", session.Status)
	}

	questions := GenerateQuestions(session.Config, session.Config.CandidateSkills)
	current := questions[session.QuestionIndex]

	answerMsg := models.InterviewMessage{
		ID:        uuid.NewString(),
		Type:      models.MessageAnswer,
		Content:   answer,
		Timestamp: time.Now(),
	}
	session.Messages = append(session.Messages, answerMsg)
	session.QuestionIndex++

	if session.QuestionIndex >= len(questions) {
		// Last answer: the session turns terminal here and cannot be amended
		// afterwards, so its analysis runs inline.
		session.Messages[len(session.Messages)-1].Analysis = s.analysisService.AnalyzeAnswer(ctx, current.Question, answer, session.Config)
		s.finalize(ctx, session)
		if err := s.sessionRepo.Save(session); err != nil {
			return nil, err
		}
		s.enqueueSignal(session)
		s.scheduleRoomClose(session.RoomName)
		return &NextQuestionResult{
			Status:     session.Status,
			Transcript: session.Messages,
			Progress:   progressOf(session),
			Analysis:   session.Analysis,
		}, nil
	}

	next := questions[session.QuestionIndex]
	s.appendQuestion(session, next)
	if err := s.sessionRepo.Save(session); err != nil {
		return nil, err
	}
	go s.attachAnswerAnalysis(sessionID, answerMsg.ID, current.Question, answer, session.Config)

	return &NextQuestionResult{
		Question: &next,
		Status:   session.Status,
		Progress: progressOf(session),
	}, nil
}

// EndInterview implements InterviewService. Ending a completed session again
// returns the stored result unchanged.
func (s *interviewService) EndInterview(ctx context.Context, sessionID uuid.UUID) (*EndInterviewResult, error) {
	release, err := s.beginProtocol(sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	session, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		return nil, err
	}

	switch session.Status {
	case models.SessionCompleted:
		return &EndInterviewResult{
			SessionID:  session.ID.String(),
			Status:     session.Status,
			Transcript: session.Messages,
			Progress:   progressOf(session),
			Analysis:   session.Analysis,
		}, nil
	case models.SessionConnected, models.SessionActive:
		// fall through to finalize
	default:
		return nil, apperr.InvalidState("cannot end interview in state %s", session.Status)
	}

	s.finalize(ctx, session)
	if err := s.sessionRepo.Save(session); err != nil {
		return nil, err
	}
	s.enqueueSignal(session)
	s.scheduleRoomClose(session.RoomName)

	return &EndInterviewResult{
		SessionID:  session.ID.String(),
		Status:     session.Status,
		Transcript: session.Messages,
		Progress:   progressOf(session),
		Analysis:   session.Analysis,
	}, nil
}

// finalize moves the session to its terminal completed state and produces
// the one-and-only final analysis. Scoring failures degrade to the neutral
// default inside the analysis service, so finalization itself cannot fail.
func (s *interviewService) finalize(ctx context.Context, session *models.InterviewSession) {
	session.Status = models.SessionCompleted
	session.Analysis = s.analysisService.GenerateFinalAnalysis(ctx, session)
	log.Printf("🏁 Session %s completed with overall score %d", session.ID, session.Analysis.OverallScore)
}

func (s *interviewService) enqueueSignal(session *models.InterviewSession) {
	if s.signalWorker != nil {
		s.signalWorker.EnqueueSession(session.ID)
	}
}

// Abort implements InterviewService. Aborting a terminal session is a no-op.
func (s *interviewService) Abort(ctx context.Context, sessionID uuid.UUID, reason string) error {
	g := s.gate(sessionID)
	g.mu.Lock()
	defer g.mu.Unlock()

	session, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		return err
	}
	if session.Status.Terminal() {
		return nil
	}

	session.Status = models.SessionAborted
	if err := s.sessionRepo.Save(session); err != nil {
		return err
	}
	log.Printf("🛑 Session %s aborted: %s", sessionID, reason)
	s.scheduleRoomClose(session.RoomName)
	return nil
}

func (s *interviewService) appendQuestion(session *models.InterviewSession, q models.Question) {
	session.Messages = append(session.Messages, models.InterviewMessage{
		ID:        uuid.NewString(),
		Type:      models.MessageQuestion,
		Content:   q.Question,
		Timestamp: time.Now(),
	})
}

// attachAnswerAnalysis runs the advisory per-answer analysis off the request
// path and attaches it to the recorded answer afterwards. The transcript
// content itself is never mutated.
func (s *interviewService) attachAnswerAnalysis(sessionID uuid.UUID, messageID, question, answer string, config models.InterviewConfig) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	analysis := s.analysisService.AnalyzeAnswer(ctx, question, answer, config)

	g := s.gate(sessionID)
	g.mu.Lock()
	defer g.mu.Unlock()

	session, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		log.Printf("⚠️ Cannot attach answer analysis, session %s: %v", sessionID, err)
		return
	}
	if session.Status.Terminal() {
		// Terminal sessions are immutable; the advisory analysis is dropped.
		return
	}
	for i := range session.Messages {
		if session.Messages[i].ID == messageID {
			session.Messages[i].Analysis = analysis
			break
		}
	}
	if err := s.sessionRepo.Save(session); err != nil {
		log.Printf("⚠️ Failed to save answer analysis for session %s: %v", sessionID, err)
	}
}

func progressOf(session *models.InterviewSession) models.Progress {
	total := session.TotalQuestions
	if total <= 0 {
		total = 1
	}
	current := session.QuestionIndex + 1
	if current > total {
		current = total
	}
	pct := float64(session.QuestionIndex) / float64(total) * 100
	if pct > 100 {
		pct = 100
	}
	return models.Progress{
		CurrentQuestion:    current,
		TotalQuestions:     total,
		ProgressPercentage: pct,
		Completed:          session.QuestionIndex >= total || session.Status == models.SessionCompleted,
	}
}

// RegisterProtocol implements InterviewService. It binds the agent protocol
// methods onto the room dispatcher.
func (s *interviewService) RegisterProtocol(d *realtime.Dispatcher) {
	d.Register(MethodStartInterview, s.rpcMutation(func(ctx context.Context, session *models.InterviewSession, _ json.RawMessage) (any, error) {
		return s.StartInterview(ctx, session.ID)
	}))
	d.Register(MethodNextQuestion, s.rpcMutation(func(ctx context.Context, session *models.InterviewSession, payload json.RawMessage) (any, error) {
		var req struct {
			Answer string `json:"answer"`
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &req); err != nil {
				return nil, apperr.Validation("malformed next_question payload: %v", err)
			}
		}
		return s.NextQuestion(ctx, session.ID, req.Answer)
	}))
	d.Register(MethodEndInterview, s.rpcMutation(func(ctx context.Context, session *models.InterviewSession, _ json.RawMessage) (any, error) {
		return s.EndInterview(ctx, session.ID)
	}))
	d.Register(MethodGetProgress, s.rpcQuery(func(session *models.InterviewSession) any {
		return progressOf(session)
	}))
	d.Register(MethodGetTranscript, s.rpcQuery(func(session *models.InterviewSession) any {
		return session.Messages
	}))
}

type rpcOp func(ctx context.Context, session *models.InterviewSession, payload json.RawMessage) (any, error)

// rpcMutation resolves the session behind the room and runs a state-changing
// protocol call. A call that hits its deadline counts as a channel failure,
// so the session aborts instead of hanging in a half-applied state.
func (s *interviewService) rpcMutation(op rpcOp) realtime.Handler {
	return func(ctx context.Context, room, caller string, payload json.RawMessage) (any, error) {
		session, err := s.sessionRepo.FindByRoom(room)
		if err != nil {
			return nil, err
		}
		result, err := op(ctx, session, payload)
		if err != nil && errors.Is(err, context.DeadlineExceeded) {
			abortCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if aerr := s.Abort(abortCtx, session.ID, "protocol call timed out"); aerr != nil {
				log.Printf("⚠️ Failed to abort session %s after timeout: %v", session.ID, aerr)
			}
		}
		return result, err
	}
}

func (s *interviewService) rpcQuery(view func(session *models.InterviewSession) any) realtime.Handler {
	return func(ctx context.Context, room, caller string, payload json.RawMessage) (any, error) {
		session, err := s.sessionRepo.FindByRoom(room)
		if err != nil {
			return nil, err
		}
		return view(session), nil
	}
}

// HandleRoomEvent implements realtime.EventSink. Room lifecycle drives the
// connection half of the state machine; a dropped channel after Connected is
// a cancellation signal.
func (s *interviewService) HandleRoomEvent(ctx context.Context, evt realtime.Event) {
	if evt.Identity == realtime.AgentIdentity || evt.Type == realtime.EventDataReceived {
		return
	}

	session, err := s.sessionRepo.FindByRoom(evt.Room)
	if err != nil {
		log.Printf("⚠️ Room event %s for unknown room %s", evt.Type, evt.Room)
		return
	}

	switch evt.Type {
	case realtime.EventParticipantJoined:
		s.transition(session, models.SessionCreated, models.SessionConnecting)
	case realtime.EventTrackSubscribed:
		s.transition(session, models.SessionCreated, models.SessionConnecting, models.SessionConnecting, models.SessionConnected)
	case realtime.EventDisconnected:
		if !session.Status.Terminal() {
			if err := s.Abort(ctx, session.ID, "participant disconnected"); err != nil {
				log.Printf("⚠️ Failed to abort session %s on disconnect: %v", session.ID, err)
			}
		}
	}
}

// transition applies from→to pairs in order until one matches.
func (s *interviewService) transition(session *models.InterviewSession, pairs ...models.SessionStatus) {
	g := s.gate(session.ID)
	g.mu.Lock()
	defer g.mu.Unlock()

	fresh, err := s.sessionRepo.FindByID(session.ID)
	if err != nil {
		return
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		if fresh.Status == pairs[i] {
			fresh.Status = pairs[i+1]
			if err := s.sessionRepo.Save(fresh); err != nil {
				log.Printf("⚠️ Failed to save session %s transition: %v", fresh.ID, err)
			}
			return
		}
	}
}
