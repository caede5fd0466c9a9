package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"ui-guide-go/internal/guidance"
	"ui-guide-go/internal/model"
	"ui-guide-go/pkg/assistant"
	"ui-guide-go/pkg/log"
	"ui-guide-go/pkg/tasks"
)

const (
	guideScope = "guide"
	// 引导表单同一时间只有一个有效请求
	guideSession         = "form"
	minContextLength     = 3
	minTaskLength        = 10
	maxUIDescriptionSize = 4000
)

// StepFeedback 是对某个步骤的评价或问题报告。Step 从 1 开始。
type StepFeedback struct {
	Step   int        `json:"step"`
	Vote   tasks.Vote `json:"vote,omitempty"`
	Report string     `json:"report,omitempty"`
}

// FeedbackPublisher 发布步骤反馈事件。
type FeedbackPublisher interface {
	PublishFeedback(ctx context.Context, task tasks.StepFeedbackTask) error
}

// LogFeedbackPublisher 在未启用 Kafka 时把反馈写入日志。
type LogFeedbackPublisher struct{}

func (LogFeedbackPublisher) PublishFeedback(_ context.Context, task tasks.StepFeedbackTask) error {
	log.Infow("step feedback", "guideId", task.GuideID, "step", task.Step, "vote", task.Vote, "report", task.Report)
	return nil
}

// GuidanceService 定义了引导生成的接口。
type GuidanceService interface {
	Generate(ctx context.Context, in model.GuideInput) (model.Guide, error)
	SubmitFeedback(ctx context.Context, guideID string, fb StepFeedback) error
	// Cancel 放弃尚未完成的生成请求，对应的 Generate 返回 ErrSuperseded。
	Cancel() bool
}

type guidanceService struct {
	client      assistant.Client
	guides      GuideService
	preferences PreferenceService
	tracker     *assistant.Tracker
	publisher   FeedbackPublisher
	mu          sync.Mutex
}

// NewGuidanceService 创建一个新的 GuidanceService 实例。
func NewGuidanceService(client assistant.Client, guides GuideService, preferences PreferenceService, tracker *assistant.Tracker, publisher FeedbackPublisher) GuidanceService {
	if publisher == nil {
		publisher = LogFeedbackPublisher{}
	}
	return &guidanceService{
		client:      client,
		guides:      guides,
		preferences: preferences,
		tracker:     tracker,
		publisher:   publisher,
	}
}

// Generate 校验表单、请求助手并保存解析后的指南。被更新的提交取代时返回 ErrSuperseded。
func (s *guidanceService) Generate(ctx context.Context, in model.GuideInput) (model.Guide, error) {
	in, err := s.normalize(in)
	if err != nil {
		return model.Guide{}, err
	}

	id := newID()
	s.mu.Lock()
	askCtx, tok := s.tracker.Begin(ctx, guideScope, guideSession)
	s.mu.Unlock()

	answer, err := s.client.Ask(askCtx, assistant.AskRequest{
		Message:   guidance.BuildPrompt(in),
		ThreadID:  "guide_" + id,
		Mode:      guideScope,
		Context:   in.Context,
		Verbosity: string(in.Verbosity),
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.tracker.IsCurrent(tok)
	s.tracker.End(tok)
	if !current || assistant.IsCanceled(err) {
		return model.Guide{}, ErrSuperseded
	}
	if err != nil {
		return model.Guide{}, err
	}

	guide := s.guides.Create(context.WithoutCancel(ctx), model.Guide{
		ID:        id,
		Title:     truncate(in.Task, guideTitleLength),
		Context:   in.Context,
		Verbosity: in.Verbosity,
		Response:  answer.Answer,
		Parsed:    guidance.ParseAnswer(answer.Answer),
		Sources:   answer.Sources,
	})
	if _, err := s.preferences.SetVerbosity(context.WithoutCancel(ctx), in.Verbosity); err != nil {
		log.Warnf("failed to save verbosity preference: %v", err)
	}
	return guide, nil
}

func (s *guidanceService) normalize(in model.GuideInput) (model.GuideInput, error) {
	in.Context = strings.TrimSpace(in.Context)
	in.Task = strings.TrimSpace(in.Task)
	in.UIDescription = truncate(strings.TrimSpace(in.UIDescription), maxUIDescriptionSize)
	in.Constraints = strings.TrimSpace(in.Constraints)

	if utf8.RuneCountInString(in.Context) < minContextLength {
		return in, fmt.Errorf("%w: select a context to continue", ErrInvalidGuideInput)
	}
	if utf8.RuneCountInString(in.Task) < minTaskLength {
		return in, fmt.Errorf("%w: describe the task in at least %d characters", ErrInvalidGuideInput, minTaskLength)
	}
	if in.Verbosity == "" {
		in.Verbosity = s.preferences.Get().Verbosity
	}
	if !in.Verbosity.Valid() {
		return in, fmt.Errorf("%q: %w", in.Verbosity, ErrInvalidVerbosity)
	}
	return in, nil
}

func (s *guidanceService) Cancel() bool {
	return s.tracker.Cancel(guideScope, guideSession)
}

// SubmitFeedback 发布一条步骤反馈，不修改指南本身。
func (s *guidanceService) SubmitFeedback(ctx context.Context, guideID string, fb StepFeedback) error {
	g, err := s.guides.Get(guideID)
	if err != nil {
		return err
	}
	if fb.Step < 1 || fb.Step > len(g.Parsed.Steps) {
		return fmt.Errorf("%w: step %d out of range", ErrInvalidFeedback, fb.Step)
	}
	fb.Report = strings.TrimSpace(fb.Report)
	if fb.Vote != "" && fb.Vote != tasks.VoteUp && fb.Vote != tasks.VoteDown {
		return fmt.Errorf("%w: unknown vote %q", ErrInvalidFeedback, fb.Vote)
	}
	if fb.Vote == "" && fb.Report == "" {
		return fmt.Errorf("%w: vote or report required", ErrInvalidFeedback)
	}

	task := tasks.StepFeedbackTask{
		GuideID:     g.ID,
		GuideTitle:  g.Title,
		Context:     g.Context,
		Step:        fb.Step,
		StepText:    g.Parsed.Steps[fb.Step-1].Text,
		Vote:        fb.Vote,
		Report:      fb.Report,
		SubmittedAt: nowFunc(),
	}
	if err := s.publisher.PublishFeedback(ctx, task); err != nil {
		return fmt.Errorf("failed to publish feedback: %w", err)
	}
	return nil
}
