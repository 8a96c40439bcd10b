package ping

import (
	"math"
	"time"
)

// Stats accumulates resolved probes in sequence order
type Stats struct {
	probes []Probe
}

func (this *Stats) Add(probe Probe) {
	this.probes = append(this.probes, probe)
}

// Summary holds the metrics of a finished run.
// Rtt fields are only meaningful when Received is non-zero.
type Summary struct {
	Sent     int
	Received int
	Loss     float64

	RttMin    time.Duration
	RttMax    time.Duration
	RttMean   time.Duration
	RttStdDev time.Duration
}

// Summarize computes the run summary over every probe recorded so far
func (this *Stats) Summarize() Summary {

	summary := Summary{Sent: len(this.probes)}

	var rtts []time.Duration
	for _, probe := range this.probes {
		if probe.Outcome == OutcomeSuccess {
			rtts = append(rtts, probe.RTT)
		}
	}

	summary.Received = len(rtts)

	if summary.Sent > 0 {
		summary.Loss = float64(summary.Sent-summary.Received) / float64(summary.Sent) * 100
	}

	if len(rtts) == 0 {
		return summary
	}

	var total time.Duration
	summary.RttMin = rtts[0]
	summary.RttMax = rtts[0]

	for _, rtt := range rtts {

		total += rtt

		if rtt < summary.RttMin {
			summary.RttMin = rtt
		}
		if rtt > summary.RttMax {
			summary.RttMax = rtt
		}
	}

	mean := float64(total) / float64(len(rtts))
	summary.RttMean = time.Duration(mean)

	//	population standard deviation over the received rtts
	var sqSum float64
	for _, rtt := range rtts {
		delta := float64(rtt) - mean
		sqSum += delta * delta
	}

	summary.RttStdDev = time.Duration(math.Sqrt(sqSum / float64(len(rtts))))

	return summary
}
