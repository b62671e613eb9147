package assessment

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"vocab-coach/internal/grading"
	"vocab-coach/internal/store"
	"vocab-coach/internal/whisper"
	"vocab-coach/pkg/models"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeTranscriber struct {
	transcript string
	err        error
	calls      int
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioData []byte, languageHint string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.transcript, nil
}

type fakeGrader struct {
	raw   string
	err   error
	calls int
}

func (f *fakeGrader) Grade(ctx context.Context, transcript, targetLanguage, nativeLanguage string, lessonWords []models.VocabularyEntry, expectedAnswer string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.raw, nil
}

type fakeLog struct {
	records    []models.AssessmentRecord
	appendErr  error
	listErr    error
	appendedID string
}

func (f *fakeLog) Append(ctx context.Context, record *models.AssessmentRecord) (string, error) {
	if f.appendErr != nil {
		return "", f.appendErr
	}
	record.ID = f.appendedID
	f.records = append([]models.AssessmentRecord{*record}, f.records...)
	return f.appendedID, nil
}

func (f *fakeLog) ListByIdentity(ctx context.Context, identity string, limit int) ([]models.AssessmentRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if limit > 0 && limit < len(f.records) {
		return f.records[:limit], nil
	}
	return f.records, nil
}

func (f *fakeLog) ScoreStats(ctx context.Context, identity string) (int, float64, error) {
	if f.listErr != nil {
		return 0, 0, f.listErr
	}
	if len(f.records) == 0 {
		return 0, 0, nil
	}
	sum := 0
	for _, r := range f.records {
		sum += r.Score
	}
	return len(f.records), float64(sum) / float64(len(f.records)), nil
}

func (f *fakeLog) DistinctDates(ctx context.Context, identity string) ([]time.Time, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	seen := make(map[time.Time]bool)
	var dates []time.Time
	for _, r := range f.records {
		day := r.CreatedAt.UTC().Truncate(24 * time.Hour)
		if !seen[day] {
			seen[day] = true
			dates = append(dates, day)
		}
	}
	return dates, nil
}

type fakeProfiles struct {
	profile    *models.UserProfile
	getErr     error
	updateErr  error
	lastUpdate *models.UserFieldUpdate
}

func (f *fakeProfiles) GetByIdentity(ctx context.Context, identity string) (*models.UserProfile, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.profile, nil
}

func (f *fakeProfiles) UpdateFields(ctx context.Context, identity string, update *models.UserFieldUpdate) error {
	f.lastUpdate = update
	return f.updateErr
}

const wellFormedReply = `SCORE: 85/100
FEEDBACK: Good pronunciation overall.
STRENGTHS: clear vowels, good pace
WEAK_AREAS: rolled r, verb endings`

func newTestService(tr *fakeTranscriber, gr *fakeGrader, log *fakeLog, profiles *fakeProfiles) *Service {
	logger := zap.NewNop()
	return NewService(tr, gr, grading.NewParser(logger), log, profiles, nil, logger)
}

func validInput() *models.AssessVoiceInput {
	return &models.AssessVoiceInput{
		Identity:       "user-1",
		LessonDay:      3,
		TargetLanguage: "es",
		Audio:          []byte{0x01, 0x02},
		LessonWords: []models.VocabularyEntry{
			{Word: "hola", Translation: "привет"},
		},
		ExpectedAnswer: "Hola, ¿cómo estás?",
	}
}

func TestAssessVoiceSuccess(t *testing.T) {
	tr := &fakeTranscriber{transcript: "hola como estas"}
	gr := &fakeGrader{raw: wellFormedReply}
	log := &fakeLog{appendedID: "a-1"}
	profiles := &fakeProfiles{}
	svc := newTestService(tr, gr, log, profiles)

	outcome, err := svc.AssessVoice(context.Background(), validInput())
	assert.NoError(t, err)
	assert.Equal(t, "a-1", outcome.AssessmentID)
	assert.Equal(t, 85, outcome.Score)
	assert.Equal(t, "hola como estas", outcome.Transcript)
	assert.Equal(t, "Good pronunciation overall.", outcome.Feedback)
	assert.Equal(t, []string{"clear vowels", "good pace"}, outcome.Strengths)
	assert.Equal(t, []string{"rolled r", "verb endings"}, outcome.WeakAreas)

	// Запись попала в журнал, агрегаты пересчитаны из него
	assert.Len(t, log.records, 1)
	if assert.NotNil(t, profiles.lastUpdate) {
		assert.Equal(t, 85.0, *profiles.lastUpdate.AverageScore)
		assert.Equal(t, 1, *profiles.lastUpdate.CurrentStreak)
		assert.Equal(t, 1, *profiles.lastUpdate.LessonsCompleted)
	}
}

func TestAssessVoiceAverageRecomputedFromLog(t *testing.T) {
	tr := &fakeTranscriber{transcript: "bonjour"}
	gr := &fakeGrader{raw: "SCORE: 90/100\nFEEDBACK: ok"}
	log := &fakeLog{
		appendedID: "a-3",
		records: []models.AssessmentRecord{
			{ID: "a-1", Score: 60, CreatedAt: time.Now().Add(-48 * time.Hour)},
			{ID: "a-2", Score: 70, CreatedAt: time.Now().Add(-24 * time.Hour)},
		},
	}
	profiles := &fakeProfiles{}
	svc := newTestService(tr, gr, log, profiles)

	input := validInput()
	input.TargetLanguage = "fr"
	_, err := svc.AssessVoice(context.Background(), input)
	assert.NoError(t, err)

	// (60 + 70 + 90) / 3
	if assert.NotNil(t, profiles.lastUpdate) {
		assert.InDelta(t, 73.333, *profiles.lastUpdate.AverageScore, 0.01)
		assert.Equal(t, 3, *profiles.lastUpdate.CurrentStreak)
	}
}

// Средний балл считается по всему журналу, а не по урезанной выборке:
// на 1001 записи потеря единственного нуля завысила бы среднее до ровно 99.9.
func TestAssessVoiceAverageOverFullLog(t *testing.T) {
	tr := &fakeTranscriber{transcript: "hola"}
	gr := &fakeGrader{raw: "SCORE: 100/100\nFEEDBACK: ok"}

	records := make([]models.AssessmentRecord, 0, 1000)
	base := time.Now().Add(-2000 * time.Hour)
	records = append(records, models.AssessmentRecord{ID: "a-0", Score: 0, CreatedAt: base})
	for i := 1; i < 1000; i++ {
		records = append(records, models.AssessmentRecord{
			ID:        fmt.Sprintf("a-%d", i),
			Score:     100,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
	log := &fakeLog{appendedID: "a-1000", records: records}
	profiles := &fakeProfiles{}
	svc := newTestService(tr, gr, log, profiles)

	_, err := svc.AssessVoice(context.Background(), validInput())
	assert.NoError(t, err)

	if assert.NotNil(t, profiles.lastUpdate) {
		assert.Equal(t, 1001, *profiles.lastUpdate.LessonsCompleted)
		assert.InDelta(t, 100000.0/1001.0, *profiles.lastUpdate.AverageScore, 0.00001)
	}
}

func TestAssessVoiceValidation(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*models.AssessVoiceInput)
		wantKind models.ErrorKind
	}{
		{"пустой identity", func(i *models.AssessVoiceInput) { i.Identity = "  " }, models.ErrorInvalidInput},
		{"нулевой день урока", func(i *models.AssessVoiceInput) { i.LessonDay = 0 }, models.ErrorInvalidInput},
		{"неизвестный язык", func(i *models.AssessVoiceInput) { i.TargetLanguage = "xx" }, models.ErrorInvalidInput},
		{"без слов урока", func(i *models.AssessVoiceInput) { i.LessonWords = nil }, models.ErrorInvalidInput},
		{"пустое аудио", func(i *models.AssessVoiceInput) { i.Audio = nil }, models.ErrorEmptyAudio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &fakeTranscriber{}
			svc := newTestService(tr, &fakeGrader{}, &fakeLog{}, &fakeProfiles{})

			input := validInput()
			tt.mutate(input)
			_, err := svc.AssessVoice(context.Background(), input)

			var perr *models.PipelineError
			if !errors.As(err, &perr) {
				t.Fatalf("ожидался PipelineError, получен %v", err)
			}
			assert.Equal(t, tt.wantKind, perr.Kind)
			assert.Equal(t, models.StageValidate, perr.Stage)
			assert.Equal(t, 0, tr.calls, "валидация не должна доходить до транскрибации")
		})
	}
}

func TestAssessVoiceTranscriptionFailed(t *testing.T) {
	tr := &fakeTranscriber{err: errors.New("сервис недоступен")}
	gr := &fakeGrader{}
	log := &fakeLog{}
	svc := newTestService(tr, gr, log, &fakeProfiles{})

	_, err := svc.AssessVoice(context.Background(), validInput())

	var perr *models.PipelineError
	if !errors.As(err, &perr) {
		t.Fatalf("ожидался PipelineError, получен %v", err)
	}
	assert.Equal(t, models.ErrorTranscriptionFailed, perr.Kind)
	assert.Equal(t, models.StageTranscribe, perr.Stage)
	assert.Equal(t, 0, gr.calls)
	assert.Len(t, log.records, 0, "при сбое транскрибации журнал не пополняется")
}

func TestAssessVoiceEmptyAudioFromTranscriber(t *testing.T) {
	tr := &fakeTranscriber{err: whisper.ErrEmptyAudio}
	svc := newTestService(tr, &fakeGrader{}, &fakeLog{}, &fakeProfiles{})

	_, err := svc.AssessVoice(context.Background(), validInput())

	var perr *models.PipelineError
	if !errors.As(err, &perr) {
		t.Fatalf("ожидался PipelineError, получен %v", err)
	}
	assert.Equal(t, models.ErrorEmptyAudio, perr.Kind)
}

func TestAssessVoiceGradingFailed(t *testing.T) {
	tr := &fakeTranscriber{transcript: "hello"}
	gr := &fakeGrader{err: errors.New("модель недоступна")}
	log := &fakeLog{}
	svc := newTestService(tr, gr, log, &fakeProfiles{})

	_, err := svc.AssessVoice(context.Background(), validInput())

	var perr *models.PipelineError
	if !errors.As(err, &perr) {
		t.Fatalf("ожидался PipelineError, получен %v", err)
	}
	assert.Equal(t, models.ErrorGradingFailed, perr.Kind)
	assert.Equal(t, models.StageGrade, perr.Stage)
	assert.Len(t, log.records, 0, "при сбое оценки журнал не пополняется")
}

func TestAssessVoiceGarbageReplyStillPersisted(t *testing.T) {
	// Мусорный ответ модели не роняет конвейер: разбор подставляет умолчания
	tr := &fakeTranscriber{transcript: "hello"}
	gr := &fakeGrader{raw: "complete nonsense without any labels"}
	log := &fakeLog{appendedID: "a-9"}
	svc := newTestService(tr, gr, log, &fakeProfiles{})

	outcome, err := svc.AssessVoice(context.Background(), validInput())
	assert.NoError(t, err)
	assert.Equal(t, 0, outcome.Score)
	assert.Equal(t, grading.DefaultFeedback, outcome.Feedback)
	assert.Len(t, log.records, 1)
}

func TestAssessVoicePersistFailed(t *testing.T) {
	tr := &fakeTranscriber{transcript: "hello"}
	gr := &fakeGrader{raw: wellFormedReply}
	log := &fakeLog{appendErr: store.ErrStoreUnavailable}
	svc := newTestService(tr, gr, log, &fakeProfiles{})

	_, err := svc.AssessVoice(context.Background(), validInput())

	var perr *models.PipelineError
	if !errors.As(err, &perr) {
		t.Fatalf("ожидался PipelineError, получен %v", err)
	}
	assert.Equal(t, models.ErrorStoreUnavailable, perr.Kind)
	assert.Equal(t, models.StagePersist, perr.Stage)
}

func TestAssessVoiceAggregateFailureTolerated(t *testing.T) {
	// Сбой пересчета агрегатов после записи в журнал не отменяет успеха
	tr := &fakeTranscriber{transcript: "hello"}
	gr := &fakeGrader{raw: wellFormedReply}
	log := &fakeLog{appendedID: "a-5"}
	profiles := &fakeProfiles{updateErr: errors.New("профиль недоступен")}
	svc := newTestService(tr, gr, log, profiles)

	outcome, err := svc.AssessVoice(context.Background(), validInput())
	assert.NoError(t, err)
	assert.Equal(t, "a-5", outcome.AssessmentID)
	assert.Len(t, log.records, 1)
}

func TestAssessVoiceEmptyTranscriptPassesThrough(t *testing.T) {
	// Пустой транскрипт уходит к модели, а не отклоняется заранее
	tr := &fakeTranscriber{transcript: ""}
	gr := &fakeGrader{raw: "SCORE: 0/100\nFEEDBACK: Nothing was said."}
	log := &fakeLog{appendedID: "a-7"}
	svc := newTestService(tr, gr, log, &fakeProfiles{})

	outcome, err := svc.AssessVoice(context.Background(), validInput())
	assert.NoError(t, err)
	assert.Equal(t, 1, gr.calls)
	assert.Equal(t, 0, outcome.Score)
}

func TestGetUserStats(t *testing.T) {
	profiles := &fakeProfiles{profile: &models.UserProfile{
		Identity:       "user-1",
		TargetLanguage: "en",
		AverageScore:   77.5,
		CurrentStreak:  4,
	}}
	log := &fakeLog{records: []models.AssessmentRecord{
		{Score: 80, WeakAreas: []string{"articles"}},
		{Score: 75, WeakAreas: []string{"articles", "tenses"}},
	}}
	svc := newTestService(&fakeTranscriber{}, &fakeGrader{}, log, profiles)

	st, err := svc.GetUserStats(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Equal(t, []int{80, 75}, st.RecentScores)
	assert.Equal(t, "articles", st.WeakAreas[0].Area)
	assert.Equal(t, 2, st.WeakAreas[0].Count)
}

func TestGetUserStatsNotFound(t *testing.T) {
	profiles := &fakeProfiles{getErr: store.ErrUserNotFound}
	svc := newTestService(&fakeTranscriber{}, &fakeGrader{}, &fakeLog{}, profiles)

	_, err := svc.GetUserStats(context.Background(), "ghost")

	var perr *models.PipelineError
	if !errors.As(err, &perr) {
		t.Fatalf("ожидался PipelineError, получен %v", err)
	}
	assert.Equal(t, models.ErrorUserNotFound, perr.Kind)
}
