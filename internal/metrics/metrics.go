package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics счетчики тренажера. Значения дублируются в Prometheus.
type Metrics struct {
	mu                  sync.RWMutex
	interviewsStarted   int64
	interviewsCompleted int64
	answersScored       int64
	emptyAnswers        int64
	helpRequests        int64
	apiCallsTotal       int64
	apiCallsSuccessful  int64
	lastUpdateTime      time.Time

	gatherer prometheus.Gatherer

	promInterviews *prometheus.CounterVec
	promAnswers    prometheus.Counter
	promEmpty      prometheus.Counter
	promHelp       prometheus.Counter
	promScores     prometheus.Histogram
	promAPICalls   *prometheus.CounterVec
	promActive     prometheus.Gauge
}

// Snapshot копия счетчиков для вывода
type Snapshot struct {
	InterviewsStarted   int64     `json:"interviews_started"`
	InterviewsCompleted int64     `json:"interviews_completed"`
	AnswersScored       int64     `json:"answers_scored"`
	EmptyAnswers        int64     `json:"empty_answers"`
	HelpRequests        int64     `json:"help_requests"`
	APICallsTotal       int64     `json:"api_calls_total"`
	APICallsSuccessful  int64     `json:"api_calls_successful"`
	LastUpdateTime      time.Time `json:"last_update_time"`
}

// NewMetrics регистрирует коллекторы в собственном реестре
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		lastUpdateTime: time.Now(),
		gatherer:       reg,
		promInterviews: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "interview",
			Name:      "sessions_total",
			Help:      "Interview sessions by lifecycle event",
		}, []string{"event"}),
		promAnswers: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "interview",
			Name:      "answers_scored_total",
			Help:      "Answers scored",
		}),
		promEmpty: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "interview",
			Name:      "empty_answers_total",
			Help:      "Blank submissions rejected",
		}),
		promHelp: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "interview",
			Name:      "help_requests_total",
			Help:      "Help prompts sent to the assistant",
		}),
		promScores: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "interview",
			Name:      "answer_score",
			Help:      "Distribution of per-question scores",
			Buckets:   prometheus.LinearBuckets(0, 1, 11),
		}),
		promAPICalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "interview",
			Name:      "collaborator_calls_total",
			Help:      "Calls to external collaborators",
		}, []string{"collaborator", "status"}),
		promActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "interview",
			Name:      "active_sessions",
			Help:      "Sessions held by the server",
		}),
	}
}

func (m *Metrics) IncrementInterviewsStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interviewsStarted++
	m.lastUpdateTime = time.Now()
	m.promInterviews.WithLabelValues("started").Inc()
}

func (m *Metrics) IncrementInterviewsCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interviewsCompleted++
	m.lastUpdateTime = time.Now()
	m.promInterviews.WithLabelValues("completed").Inc()
}

// ObserveAnswer учитывает оцененный ответ
func (m *Metrics) ObserveAnswer(score int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answersScored++
	m.lastUpdateTime = time.Now()
	m.promAnswers.Inc()
	m.promScores.Observe(float64(score))
}

func (m *Metrics) IncrementEmptyAnswers() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emptyAnswers++
	m.lastUpdateTime = time.Now()
	m.promEmpty.Inc()
}

func (m *Metrics) IncrementHelpRequests() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.helpRequests++
	m.lastUpdateTime = time.Now()
	m.promHelp.Inc()
}

// IncrementAPICall учитывает вызов внешнего сервиса
func (m *Metrics) IncrementAPICall(collaborator string, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apiCallsTotal++
	status := "error"
	if success {
		m.apiCallsSuccessful++
		status = "ok"
	}
	m.lastUpdateTime = time.Now()
	m.promAPICalls.WithLabelValues(collaborator, status).Inc()
}

// SetActiveSessions количество сессий в реестре сервера
func (m *Metrics) SetActiveSessions(n int) {
	m.promActive.Set(float64(n))
}

func (m *Metrics) GetSnapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		InterviewsStarted:   m.interviewsStarted,
		InterviewsCompleted: m.interviewsCompleted,
		AnswersScored:       m.answersScored,
		EmptyAnswers:        m.emptyAnswers,
		HelpRequests:        m.helpRequests,
		APICallsTotal:       m.apiCallsTotal,
		APICallsSuccessful:  m.apiCallsSuccessful,
		LastUpdateTime:      m.lastUpdateTime,
	}
}

// Handler HTTP обработчик для /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
