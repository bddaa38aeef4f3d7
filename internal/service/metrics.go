package service

import "github.com/prometheus/client_golang/prometheus"

var (
	likeToggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "oneps", Name: "like_toggles_total", Help: "Like toggles by resulting state"},
		[]string{"state"},
	)
	uploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "oneps", Name: "uploads_total", Help: "Image uploads by outcome"},
		[]string{"outcome"},
	)
	imageReleases = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "oneps", Name: "image_releases_total", Help: "Stored image deletions by outcome"},
		[]string{"outcome"},
	)
)

func init() { prometheus.MustRegister(likeToggles, uploads, imageReleases) }
