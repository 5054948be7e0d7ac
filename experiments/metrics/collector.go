package metrics

import (
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	Goroutines   int
	Duration     time.Duration
	Iterations   int
	Episodes     int
	Cutoff       int
	FullPlayouts int // rollouts that reached a finished game
	Children     int // distinct root actions explored
}

type MoveMetric struct {
	Step   int
	Player int
	Dice   int
	Agent  string
	SearchMetric
}

type GameMetric struct {
	StartingPlayer int
	Winner         int // 0 when the turn cap was hit
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	Turns          int
}

type Collector interface {
	Start(goroutines, cutoff, iterations int)
	AddFullPlayout()
	AddEpisode()
	SetChildren(n int)
	Complete() SearchMetric
}

type collector struct {
	goroutines   int
	cutoff       int
	iterations   int
	startTime    time.Time
	episodes     atomic.Int32
	fullPlayouts atomic.Int32
	children     atomic.Int32
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(goroutines, cutoff, iterations int) {
	m.startTime = time.Now()
	m.goroutines = goroutines
	m.cutoff = cutoff
	m.iterations = iterations
	m.episodes.Store(0)
	m.fullPlayouts.Store(0)
	m.children.Store(0)
}

func (m *collector) AddFullPlayout() {
	m.fullPlayouts.Add(1)
}

func (m *collector) AddEpisode() {
	m.episodes.Add(1)
}

func (m *collector) SetChildren(n int) {
	m.children.Store(int32(n))
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Goroutines:   m.goroutines,
		Duration:     time.Since(m.startTime),
		Iterations:   m.iterations,
		Episodes:     int(m.episodes.Load()),
		FullPlayouts: int(m.fullPlayouts.Load()),
		Cutoff:       m.cutoff,
		Children:     int(m.children.Load()),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(goroutines, cutoff, iterations int) {}
func (m *dummyCollector) AddFullPlayout()                          {}
func (m *dummyCollector) AddEpisode()                              {}
func (m *dummyCollector) SetChildren(n int)                        {}
func (m *dummyCollector) Complete() SearchMetric                   { return SearchMetric{} }
