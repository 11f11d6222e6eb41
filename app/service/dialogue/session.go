package dialogue

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"recipechat/app/model"

	"github.com/elliotchance/pie/v2"
	"github.com/google/uuid"
)

const persistTimeout = 30 * time.Second

// TurnSink receives the committed transcript when a session ends or is reset.
type TurnSink interface {
	PersistTurns(ctx context.Context, identity string, turns []model.Turn) error
}

type Options struct {
	MemoryWindow      int
	ClassifierContext int
	MaxCandidates     int
	ResetCommand      string
}

// Session is the per-conversation state machine. It is not safe for
// concurrent use: callers must feed it one turn at a time.
type Session struct {
	id       string
	identity string
	profile  model.UserProfile
	mode     model.Mode
	opts     Options

	classifier Classifier
	retriever  Retriever
	generator  Generator
	sink       TurnSink
	now        func() time.Time

	candidates   []model.Recipe
	pendingQuery string
	lastQuestion string
	memory       *RollingMemory
	transcript   []model.Turn
}

type SessionParams struct {
	Identity   string
	Profile    model.UserProfile
	Mode       model.Mode
	Options    Options
	Classifier Classifier
	Retriever  Retriever
	Generator  Generator
	Sink       TurnSink
	Now        func() time.Time
}

func NewSession(p SessionParams) *Session {
	if p.Now == nil {
		p.Now = time.Now
	}
	if p.Options.MaxCandidates < 1 {
		p.Options.MaxCandidates = 5
	}
	if p.Options.ResetCommand == "" {
		p.Options.ResetCommand = "/new"
	}

	return &Session{
		id:         uuid.NewString(),
		identity:   p.Identity,
		profile:    p.Profile,
		mode:       p.Mode,
		opts:       p.Options,
		classifier: p.Classifier,
		retriever:  p.Retriever,
		generator:  p.Generator,
		sink:       p.Sink,
		now:        p.Now,
		memory:     NewRollingMemory(p.Options.MemoryWindow),
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Mode() model.Mode {
	return s.mode
}

func (s *Session) State() State {
	if len(s.candidates) > 0 {
		return StateAwaitingChoice
	}

	return StateIdle
}

func (s *Session) Candidates() []model.Recipe {
	return append([]model.Recipe(nil), s.candidates...)
}

func (s *Session) PendingQuery() string {
	return s.pendingQuery
}

func (s *Session) Memory() []model.Turn {
	return s.memory.Turns()
}

func (s *Session) Transcript() []model.Turn {
	return append([]model.Turn(nil), s.transcript...)
}

// Persona is rebuilt for every reply so the current time stays accurate.
func (s *Session) Persona() string {
	return BuildPersona(s.profile, s.mode, s.now())
}

// Handle processes one user turn. The returned error is non-nil only when a
// reply could not be generated (ErrGeneration) or ctx was cancelled; in both
// cases nothing from the turn is committed.
func (s *Session) Handle(ctx context.Context, input string) (*Result, error) {
	if strings.TrimSpace(input) == s.opts.ResetCommand {
		return s.Reset(), nil
	}

	if s.State() == StateAwaitingChoice {
		return s.handleChoice(ctx, input)
	}

	return s.handleMessage(ctx, input)
}

// Reset discards the conversation and hands the transcript to the sink.
func (s *Session) Reset() *Result {
	s.flush()

	s.clearChoice()
	s.lastQuestion = ""
	s.memory.Clear()
	s.transcript = nil

	slog.Info("Session reset", "session", s.id)

	return &Result{
		Type:    ResultReset,
		Message: MessageReset,
	}
}

// Close hands the committed transcript to the sink.
func (s *Session) Close() {
	s.flush()
	s.transcript = nil
}

func (s *Session) handleMessage(ctx context.Context, input string) (*Result, error) {
	recent := formatTurns(s.memory.Recent(s.opts.ClassifierContext))

	category, err := s.classifier.Classify(ctx, input, recent)
	if err != nil {
		slog.WarnContext(ctx, "Classification failed, treating turn as not food related",
			"session", s.id,
			"error", err,
		)
		category = Category{Kind: NotFoodRelated}
	}

	slog.DebugContext(ctx, "Classified turn", "session", s.id, "category", category.String())

	if !category.NeedsRetrieval() {
		return s.replyDirect(ctx, input, "")
	}

	candidates := s.retriever.Retrieve(ctx, category.Term)
	if len(candidates) == 0 {
		slog.InfoContext(ctx, "No recipes found", "session", s.id, "query", category.Term)
		return s.replyDirect(ctx, input, NotFoundMarker)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(candidates) > s.opts.MaxCandidates {
		candidates = candidates[:s.opts.MaxCandidates]
	}

	s.candidates = candidates
	s.pendingQuery = input
	s.lastQuestion = input

	return &Result{
		Type:        ResultSuggestions,
		Message:     MessageChooseSuggestion,
		Suggestions: s.suggestions(),
	}, nil
}

func (s *Session) replyDirect(ctx context.Context, input, material string) (*Result, error) {
	text, err := s.respond(ctx, input, material)
	if err != nil {
		return nil, err
	}

	s.lastQuestion = input
	s.record(model.RoleUser, input)
	s.record(model.RoleAssistant, text)

	return &Result{
		Type:    ResultResponse,
		Message: text,
	}, nil
}

func (s *Session) handleChoice(ctx context.Context, input string) (*Result, error) {
	choice, ok := parseChoice(input)
	if !ok {
		return ErrorResult(MessageNotANumber), nil
	}

	index := choice - 1

	// The sentinel is always last; derive its position from the current set.
	if index == len(s.suggestions())-1 {
		text, err := s.respond(ctx, s.lastQuestion, RejectionMarker)
		if err != nil {
			return nil, err
		}

		slog.InfoContext(ctx, "All suggestions rejected", "session", s.id)

		// The rejected query stays out of memory but is kept in the chat log.
		s.transcript = append(s.transcript, model.Turn{
			Role: model.RoleUser,
			Text: s.pendingQuery,
		})
		s.clearChoice()
		s.record(model.RoleUser, input)
		s.record(model.RoleAssistant, text)

		return &Result{
			Type:    ResultResponse,
			Message: text,
		}, nil
	}

	if index < 0 || index >= len(s.candidates) {
		return ErrorResult(MessageInvalidChoice), nil
	}

	recipe := s.candidates[index]

	text, err := s.respond(ctx, s.lastQuestion, recipe.Body)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Recipe chosen", "session", s.id, "title", recipe.Title)

	s.record(model.RoleUser, s.pendingQuery)
	s.record(model.RoleUser, input)
	s.record(model.RoleAssistant, text)
	s.clearChoice()

	return &Result{
		Type:          ResultResponse,
		Message:       text,
		SelectedTitle: recipe.Title,
		FullRecipe:    recipe.Body,
	}, nil
}

func (s *Session) respond(ctx context.Context, question, material string) (string, error) {
	text, err := s.generator.Generate(ctx, s.Persona(), s.memory.Turns(), humanTurn(material, question))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}

		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	return text, nil
}

func (s *Session) suggestions() []string {
	titles := pie.Map(s.candidates, func(r model.Recipe) string {
		return r.Title
	})

	return append(titles, SentinelTitle)
}

func (s *Session) clearChoice() {
	s.candidates = nil
	s.pendingQuery = ""
}

func (s *Session) record(role model.Role, text string) {
	s.memory.Add(role, text)
	s.transcript = append(s.transcript, model.Turn{
		Role: role,
		Text: text,
	})
}

func (s *Session) flush() {
	if s.sink == nil || len(s.transcript) == 0 {
		return
	}

	turns := append([]model.Turn(nil), s.transcript...)
	identity := s.identity
	sessionID := s.id

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()

		if err := s.sink.PersistTurns(ctx, identity, turns); err != nil {
			slog.Error("Failed to persist transcript",
				"session", sessionID,
				"identity", identity,
				"turns", len(turns),
				"error", err,
			)
		}
	}()
}

var digitReplacer = strings.NewReplacer(
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
	"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4",
	"۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
)

// parseChoice reads a 1-based selection, accepting Arabic-Indic digits.
func parseChoice(input string) (int, bool) {
	n, err := strconv.Atoi(digitReplacer.Replace(strings.TrimSpace(input)))
	if err != nil {
		return 0, false
	}

	return n, true
}
