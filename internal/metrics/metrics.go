package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics содержит все метрики Prometheus приложения
type Metrics struct {
	// Метрики конвейера оценки
	AssessmentsTotal      *prometheus.CounterVec
	StageFailuresTotal    *prometheus.CounterVec
	AssessmentScore       prometheus.Histogram
	PipelineDuration      prometheus.Histogram
	TranscriptionDuration prometheus.Histogram
	GradingDuration       prometheus.Histogram

	// Метрики уроков и пользователей
	LessonsDeliveredTotal *prometheus.CounterVec
	SummariesSentTotal    prometheus.Counter
	ActiveUsers           prometheus.Gauge

	// Метрики бота
	MessagesTotal *prometheus.CounterVec
	CommandsTotal *prometheus.CounterVec
}

// NewMetrics создает и регистрирует все метрики приложения
func NewMetrics() *Metrics {
	return &Metrics{
		AssessmentsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vocab_assessments_total",
				Help: "Общее количество голосовых оценок по языку и статусу",
			},
			[]string{"language", "status"},
		),
		StageFailuresTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vocab_pipeline_stage_failures_total",
				Help: "Количество сбоев конвейера оценки по этапам",
			},
			[]string{"stage"},
		),
		AssessmentScore: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "vocab_assessment_score",
				Help:    "Распределение баллов оценки (0-100)",
				Buckets: prometheus.LinearBuckets(0, 10, 11),
			},
		),
		PipelineDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "vocab_pipeline_duration_seconds",
				Help:    "Длительность полного конвейера оценки",
				Buckets: prometheus.DefBuckets,
			},
		),
		TranscriptionDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "vocab_transcription_duration_seconds",
				Help:    "Длительность транскрибации аудио",
				Buckets: prometheus.DefBuckets,
			},
		),
		GradingDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "vocab_grading_duration_seconds",
				Help:    "Длительность оценки транскрипта моделью",
				Buckets: prometheus.DefBuckets,
			},
		),
		LessonsDeliveredTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vocab_lessons_delivered_total",
				Help: "Количество доставленных ежедневных уроков по языку",
			},
			[]string{"language"},
		),
		SummariesSentTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "vocab_summaries_sent_total",
				Help: "Количество отправленных еженедельных сводок",
			},
		),
		ActiveUsers: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "vocab_active_users",
				Help: "Текущее количество пользователей с включенными уведомлениями",
			},
		),
		MessagesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vocab_messages_total",
				Help: "Количество обработанных сообщений по типу",
			},
			[]string{"type"},
		),
		CommandsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vocab_commands_total",
				Help: "Количество обработанных команд бота",
			},
			[]string{"command"},
		),
	}
}
