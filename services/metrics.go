package services

import "github.com/prometheus/client_golang/prometheus"

var (
	gamesCompletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "games_completed_total",
			Help: "Total number of authoritative game completions",
		},
		[]string{"game"},
	)
	pointsAwardedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "points_awarded_total",
			Help: "Total points awarded by the progression reducer",
		},
	)
	streakBreaksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "streak_breaks_total",
			Help: "Total number of streaks broken at the daily check",
		},
	)
	streakFreezesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "streak_freezes_total",
			Help: "Total number of automatic streak freezes consumed",
		},
	)
)

// InitMetrics registers the progression metrics. Call this from main.go
func InitMetrics() {
	prometheus.MustRegister(gamesCompletedTotal)
	prometheus.MustRegister(pointsAwardedTotal)
	prometheus.MustRegister(streakBreaksTotal)
	prometheus.MustRegister(streakFreezesTotal)
}
