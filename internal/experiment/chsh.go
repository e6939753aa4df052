package experiment

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/talgya/entropic/internal/entropy"
	"github.com/talgya/entropic/internal/phi"
)

// DefaultTrials is the per-setting sample count used by the dashboard.
const DefaultTrials = 10000

// Canonical CHSH measurement settings in degrees: (a,b), (a,b′), (a′,b), (a′,b′).
var chshAngles = [4][2]float64{
	{0, 45},
	{0, 135},
	{45, 45},
	{45, 135},
}

// Correlation is the regulated correlation for a pair of settings:
// the entropic ratio times cos(θa − θb).
func Correlation(thetaA, thetaB float64) float64 {
	return phi.EntropicRatio * math.Cos(thetaA-thetaB)
}

// outcome draws the product A·B for one trial; agreement has probability
// (1 + E) / 2.
func outcome(thetaA, thetaB float64, src entropy.Source) float64 {
	if src.Float() < (1+Correlation(thetaA, thetaB))/2 {
		return 1
	}
	return -1
}

// CHSH estimates S = |E(a,b) − E(a,b′)| + |E(a′,b) + E(a′,b′)| over trials
// samples per setting.
func CHSH(trials int, src entropy.Source) float64 {
	if trials < 1 {
		trials = 1
	}
	var e [4]float64
	samples := make([]float64, trials)
	for i, pair := range chshAngles {
		a := pair[0] * math.Pi / 180
		b := pair[1] * math.Pi / 180
		for j := range samples {
			samples[j] = outcome(a, b, src)
		}
		e[i] = stat.Mean(samples, nil)
	}
	return math.Abs(e[0]-e[1]) + math.Abs(e[2]+e[3])
}

// CHSHReport runs CHSH and describes the result against the classical
// bound of 2 and the quantum bound of 2√2. The trials draw from a stream
// forked off src, so src itself gives up a single value.
func CHSHReport(trials int, src entropy.Source) string {
	s := CHSH(trials, entropy.Fork(src))
	verdict := "within the classical bound"
	if s > 2 {
		verdict = "CHSH inequality violated"
	}
	return fmt.Sprintf("CHSH Bell Parameter: S=%.4f over %d trials (%s; Tsirelson bound %.3f)", s, trials, verdict, phi.Tsirelson)
}
