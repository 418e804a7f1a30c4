// Package metrics holds the bot's Prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var MessagesCensored = promauto.NewCounter(prometheus.CounterOpts{
	Name: "veillebot_messages_censored",
	Help: "Number of messages deleted and reposted by the profanity filter",
})

var XPAwarded = promauto.NewCounter(prometheus.CounterOpts{
	Name: "veillebot_xp_awarded",
	Help: "Total experience points awarded",
})

var LevelUps = promauto.NewCounter(prometheus.CounterOpts{
	Name: "veillebot_level_ups",
	Help: "Number of level-ups",
})

var WarnsIssued = promauto.NewCounter(prometheus.CounterOpts{
	Name: "veillebot_warns_issued",
	Help: "Number of warns issued by moderators",
})

var CommandsRun = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "veillebot_commands_run",
	Help: "Number of text commands run",
}, []string{"command", "outcome"})

var EventErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "veillebot_event_errors",
	Help: "Number of event handlers that aborted on an error",
}, []string{"event"})
