package pipeline

import "go.uber.org/zap"

// DefaultProgressStep is the percentage between progress log lines.
const DefaultProgressStep = 5

// Progress logs completion of a known number of steps whenever the whole
// percentage crosses a multiple of step.
type Progress struct {
	total, done int
	step, last  int
	log         *zap.Logger
	msg         string
}

// NewProgress tracks total steps, logging msg to log every step percent.
func NewProgress(log *zap.Logger, msg string, total, step int) *Progress {
	if step <= 0 {
		step = DefaultProgressStep
	}
	return &Progress{total: total, step: step, log: log, msg: msg}
}

// Step marks one more step done. It returns the percentage when a line was
// logged and -1 otherwise.
func (p *Progress) Step() int {
	p.done++
	if p.total <= 0 {
		return -1
	}
	pct := p.done * 100 / p.total
	if pct == p.last || pct%p.step != 0 {
		return -1
	}
	p.last = pct
	p.log.Info(p.msg, zap.Int("percent", pct), zap.Int("done", p.done), zap.Int("total", p.total))
	return pct
}
