package content

import (
	"context"
	"regexp"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/scubides/homepage/dom"
)

// Typesetter formats math notation in a subtree in place. Implementations
// need not be safe for concurrent use.
type Typesetter interface {
	Typeset(ctx context.Context, root *html.Node) error
}

// TypesetFunc adapts a function to Typesetter.
type TypesetFunc func(ctx context.Context, root *html.Node) error

// Typeset implements Typesetter.
func (f TypesetFunc) Typeset(ctx context.Context, root *html.Node) error { return f(ctx, root) }

type typesetJob struct {
	ctx  context.Context
	root *html.Node
	done chan struct{}
}

// TypesetQueue runs typesetting passes one at a time in arrival order.
type TypesetQueue struct {
	typesetter Typesetter
	logger     *zap.Logger
	jobs       chan typesetJob
	quit       chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
}

// NewTypesetQueue starts a queue in front of t. A nil t yields a queue
// that skips every pass.
func NewTypesetQueue(t Typesetter, logger *zap.Logger) *TypesetQueue {
	if logger == nil {
		logger = zap.NewNop()
	}
	q := &TypesetQueue{
		typesetter: t,
		logger:     logger,
		jobs:       make(chan typesetJob),
		quit:       make(chan struct{}),
	}
	if t != nil {
		q.wg.Add(1)
		go q.run()
	}
	return q
}

func (q *TypesetQueue) run() {
	defer q.wg.Done()
	for {
		select {
		case j := <-q.jobs:
			q.process(j)
		case <-q.quit:
			return
		}
	}
}

func (q *TypesetQueue) process(j typesetJob) {
	defer close(j.done)
	if j.ctx.Err() != nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("typesetting panicked", zap.Any("panic", r))
		}
	}()
	if err := q.typesetter.Typeset(j.ctx, j.root); err != nil {
		q.logger.Warn("typesetting failed", zap.Error(err))
	}
}

// Typeset queues a pass over root and waits for it. Failures are logged and
// never returned; the caller renders without math formatting.
func (q *TypesetQueue) Typeset(ctx context.Context, root *html.Node) {
	if q == nil || q.typesetter == nil {
		if q != nil {
			q.logger.Debug("typesetter unavailable, skipping math")
		}
		return
	}
	j := typesetJob{ctx: ctx, root: root, done: make(chan struct{})}
	select {
	case q.jobs <- j:
	case <-q.quit:
		q.logger.Warn("typesetter closed, skipping math")
		return
	case <-ctx.Done():
		return
	}
	// The worker owns root until done closes.
	<-j.done
}

// Close stops the worker after the current pass.
func (q *TypesetQueue) Close() {
	q.stopOnce.Do(func() { close(q.quit) })
	q.wg.Wait()
}

var reMath = regexp.MustCompile(`\$\$[^$]+?\$\$|\\\[[\s\S]+?\\\]|\\\([\s\S]+?\\\)|\$[^$\n]+?\$`)

// MathMarker wraps math spans in text nodes with <span class="math"> (or
// "math display" for $$ and \[ blocks) so the client-side typesetter finds
// them. Text inside code, pre and existing math spans is left alone.
type MathMarker struct{}

// Typeset implements Typesetter.
func (MathMarker) Typeset(ctx context.Context, root *html.Node) error {
	var texts []*html.Node
	dom.Walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "code", "pre", "script", "style":
				return false
			}
			if dom.HasClass(n, "math") {
				return false
			}
		}
		if n.Type == html.TextNode && reMath.MatchString(n.Data) {
			texts = append(texts, n)
		}
		return true
	})
	for _, t := range texts {
		if err := ctx.Err(); err != nil {
			return err
		}
		markMath(t)
	}
	return nil
}

func markMath(t *html.Node) {
	parent := t.Parent
	if parent == nil {
		return
	}
	s := t.Data
	last := 0
	for _, loc := range reMath.FindAllStringIndex(s, -1) {
		if loc[0] > last {
			parent.InsertBefore(dom.Text(s[last:loc[0]]), t)
		}
		expr := s[loc[0]:loc[1]]
		class := "math"
		if expr[:2] == "$$" || expr[:2] == `\[` {
			class = "math display"
		}
		span := dom.El("span", "class", class)
		dom.Append(span, dom.Text(expr))
		parent.InsertBefore(span, t)
		last = loc[1]
	}
	if last < len(s) {
		parent.InsertBefore(dom.Text(s[last:]), t)
	}
	parent.RemoveChild(t)
}
