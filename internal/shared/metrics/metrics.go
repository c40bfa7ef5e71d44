package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	sharedResolveTotal  atomic.Uint64
	accessGrantedTotal  atomic.Uint64
	accessRevokedTotal  atomic.Uint64
	inviteMailSentTotal atomic.Uint64
	inviteMailFailTotal atomic.Uint64
	commentPostedTotal  atomic.Uint64

	resolveDuration = newHistogram([]float64{5, 10, 25, 50, 100, 250, 500, 1000, 2000})
)

// IncSharedResolve increments the share-link resolution counter.
func IncSharedResolve() {
	sharedResolveTotal.Add(1)
}

// IncAccessGranted increments the grant counter.
func IncAccessGranted() {
	accessGrantedTotal.Add(1)
}

// IncAccessRevoked increments the revocation counter.
func IncAccessRevoked() {
	accessRevokedTotal.Add(1)
}

// IncInviteMailSent increments the delivered-invitation counter.
func IncInviteMailSent() {
	inviteMailSentTotal.Add(1)
}

// IncInviteMailFailed increments the failed-invitation counter.
func IncInviteMailFailed() {
	inviteMailFailTotal.Add(1)
}

// IncCommentPosted increments the comment counter.
func IncCommentPosted() {
	commentPostedTotal.Add(1)
}

// ObserveResolveDurationMs records a share-link resolution duration in
// milliseconds.
func ObserveResolveDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	resolveDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "shared_resolve_total", "Total share link resolutions", sharedResolveTotal.Load())
	writeCounter(&buf, "access_granted_total", "Total access grants issued", accessGrantedTotal.Load())
	writeCounter(&buf, "access_revoked_total", "Total access revocations", accessRevokedTotal.Load())
	writeCounter(&buf, "invite_mail_sent_total", "Total invitation emails delivered", inviteMailSentTotal.Load())
	writeCounter(&buf, "invite_mail_failed_total", "Total invitation emails failed", inviteMailFailTotal.Load())
	writeCounter(&buf, "comment_posted_total", "Total comments posted", commentPostedTotal.Load())
	writeHistogram(&buf, "shared_resolve_duration_ms", "Share link resolution duration in milliseconds", resolveDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// NowMillis returns current time in milliseconds, useful for callers without time utilities.
func NowMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}
