package ping

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/maddsua/dnsping/dnsmsg"
	"github.com/maddsua/dnsping/transport"
)

type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeTimeout
	OutcomeMalformed
)

func (this Outcome) String() string {
	switch this {
	case OutcomeSuccess:
		return "success"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Probe is a single resolved query/reply exchange
type Probe struct {
	Seq     int
	ID      uint16
	SentAt  time.Time
	RecvAt  time.Time
	RTT     time.Duration
	Size    int
	Outcome Outcome
}

// Pinger drives timed sequential probes over an open transport.
//
// Probes never overlap: the next one starts only after the previous
// has resolved by reply, timeout or malformed content, and the
// configured interval since the previous send has elapsed.
type Pinger struct {
	Conn transport.Conn

	Host      string
	QueryType uint16
	Iterate   bool

	//	zero count means ping until cancelled
	Count    int
	Interval time.Duration

	//	zero timeout waits for each reply indefinitely
	Timeout time.Duration

	//	invoked with every resolved probe, in sequence order
	Report func(probe Probe)

	sid    uuid.UUID
	nextID uint16
	stats  Stats
}

// Run executes the probe loop until the count is reached, the context is
// cancelled, or a fatal transport error occurs. The summary is finalized
// on every exit path; a non-nil error means the run was aborted and the
// summary covers only the probes resolved before that.
func (this *Pinger) Run(ctx context.Context) (*Summary, error) {

	this.sid = uuid.New()

	defer this.Conn.Close()

	slog.Debug("PING: Run starting",
		slog.String("sid", this.sid.String()),
		slog.String("host", this.Host),
		slog.Int("count", this.Count))

	var finalize = func(err error) (*Summary, error) {
		summary := this.stats.Summarize()
		slog.Debug("PING: Run finished",
			slog.String("sid", this.sid.String()),
			slog.Int("sent", summary.Sent),
			slog.Int("received", summary.Received))
		return &summary, err
	}

	for seq := 0; this.Count == 0 || seq < this.Count; seq++ {

		if ctx.Err() != nil {
			break
		}

		probe, err := this.probe(ctx, seq)
		if err != nil {

			//	cancellation mid-probe is not an error and the
			//	unresolved probe doesn't make it into the stats
			if ctx.Err() != nil {
				break
			}

			return finalize(err)
		}

		this.stats.Add(*probe)

		if this.Report != nil {
			this.Report(*probe)
		}

		//	sleep whatever is left of the interval, unless this was the last probe
		if this.Count > 0 && seq+1 >= this.Count {
			break
		}

		if remain := this.Interval - time.Since(probe.SentAt); remain > 0 {
			select {
			case <-time.After(remain):
			case <-ctx.Done():
			}
		}
	}

	return finalize(nil)
}

// probe sends one query and blocks until it resolves.
// Replies with a foreign transaction id are discarded without resolving
// the probe; the wait continues on the same timeout budget.
func (this *Pinger) probe(ctx context.Context, seq int) (*Probe, error) {

	id := this.nextID
	this.nextID++

	query, err := dnsmsg.BuildQuery(id, this.Host, this.QueryType, this.Iterate)
	if err != nil {
		return nil, err
	}

	probe := Probe{Seq: seq, ID: id, SentAt: time.Now()}

	if err := this.Conn.Send(query); err != nil {
		return nil, err
	}

	for {

		wait := this.Timeout
		if wait > 0 {
			if wait = this.Timeout - time.Since(probe.SentAt); wait <= 0 {
				probe.Outcome = OutcomeTimeout
				return &probe, nil
			}
		}

		reply, err := this.Conn.Recv(ctx, wait)
		if err != nil {

			if errors.Is(err, transport.ErrTimeout) {
				probe.Outcome = OutcomeTimeout
				return &probe, nil
			}

			return nil, err
		}

		replyID, ok := dnsmsg.ReplyID(reply)
		if !ok || replyID != id {

			slog.Debug("PING: Discarding unmatched reply",
				slog.String("sid", this.sid.String()),
				slog.Int("expected_id", int(id)),
				slog.Int("got_id", int(replyID)))

			continue
		}

		if err := dnsmsg.CheckReply(reply); err != nil {

			slog.Debug("PING: Malformed reply",
				slog.String("sid", this.sid.String()),
				slog.Int("id", int(id)),
				slog.String("err", err.Error()))

			probe.Outcome = OutcomeMalformed
			return &probe, nil
		}

		probe.RecvAt = time.Now()
		probe.RTT = probe.RecvAt.Sub(probe.SentAt)
		probe.Size = len(reply)
		probe.Outcome = OutcomeSuccess

		return &probe, nil
	}
}
