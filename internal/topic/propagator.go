package topic

import (
	"log/slog"
	"strings"
)

// Tagged is a content item carrying an ordered tag list.
type Tagged interface {
	Tags() []string
	SetTags(tags []string)
}

// TagList is the simplest Tagged: a bare slice of tags.
type TagList []string

func (l *TagList) Tags() []string        { return *l }
func (l *TagList) SetTags(tags []string) { *l = tags }

// Propagator applies a closure to content items and reports redundant
// topic tags as warnings. Redundancy never fails a build.
type Propagator struct {
	closure *Closure
	logger  *slog.Logger
}

// NewPropagator creates a propagator. A nil closure propagates nothing;
// a nil logger uses slog.Default().
func NewPropagator(c *Closure, logger *slog.Logger) *Propagator {
	if c == nil {
		c = Build(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Propagator{closure: c, logger: logger}
}

// Apply replaces *tags with its propagated form.
func (p *Propagator) Apply(tags *[]string) {
	result, redundant := p.closure.Apply(*tags)
	if len(redundant) > 0 {
		p.logger.Warn("redundant topic tags",
			slog.Any("tags", *tags),
			slog.String("redundant", strings.Join(redundant, ", ")))
	}
	*tags = result
}

// Propagate applies the closure to a single item, in place.
func (p *Propagator) Propagate(item Tagged) {
	tags := item.Tags()
	p.Apply(&tags)
	item.SetTags(tags)
}

// PropagateAll applies the closure to each item in turn.
func (p *Propagator) PropagateAll(items []Tagged) {
	for _, item := range items {
		p.Propagate(item)
	}
}
