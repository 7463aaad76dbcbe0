// Package plugin implements the five ordered crawl lifecycle hooks: PreCrawl,
// PostFetch, PostConvert, PostSave and PostCrawl. Plugins run in registration
// order; only PostConvert may mutate data, chained so plugin i's output
// markdown becomes plugin i+1's input. A plugin that errors (or panics) is
// caught, logged, and counted - it never aborts the crawl.
package plugin

import (
	"fmt"
	"net/url"
	"time"

	"github.com/suscrawl/suscrawl/internal/config"
	"github.com/suscrawl/suscrawl/internal/metadata"
	"github.com/suscrawl/suscrawl/internal/stats"
)

// Plugin is the full hook surface a plugin may implement. Embed BasePlugin to
// get no-op defaults for hooks you don't care about.
type Plugin interface {
	Name() string
	PreCrawl(cfg config.Config) error
	PostFetch(pageURL url.URL, html []byte, status int) error
	PostConvert(pageURL url.URL, markdown []byte) ([]byte, error)
	PostSave(path string, kind metadata.ArtifactKind) error
	PostCrawl(snapshot stats.Snapshot) error
}

// BasePlugin supplies no-op implementations for every hook. Real plugins
// embed it and override only the hooks they need.
type BasePlugin struct{}

func (BasePlugin) PreCrawl(cfg config.Config) error                       { return nil }
func (BasePlugin) PostFetch(pageURL url.URL, html []byte, status int) error { return nil }
func (BasePlugin) PostConvert(pageURL url.URL, markdown []byte) ([]byte, error) {
	return markdown, nil
}
func (BasePlugin) PostSave(path string, kind metadata.ArtifactKind) error { return nil }
func (BasePlugin) PostCrawl(snapshot stats.Snapshot) error                { return nil }

// Dispatcher invokes registered plugins in order and isolates the scheduler
// from their failures.
type Dispatcher struct {
	plugins    []Plugin
	sink       metadata.MetadataSink
	collector  *stats.Collector
}

func NewDispatcher(sink metadata.MetadataSink, collector *stats.Collector, plugins ...Plugin) *Dispatcher {
	return &Dispatcher{plugins: plugins, sink: sink, collector: collector}
}

func (d *Dispatcher) recordFailure(action string, p Plugin, recovered any) {
	var msg string
	if recovered != nil {
		msg = fmt.Sprintf("panic in plugin %q: %v", p.Name(), recovered)
	} else {
		msg = fmt.Sprintf("error in plugin %q", p.Name())
	}
	d.collector.IncPluginErrors()
	d.collector.RecordError(stats.KindPluginError)
	if d.sink != nil {
		d.sink.RecordError(time.Now(), "plugin", action, metadata.CauseInvariantViolation, msg, nil)
	}
}

// PreCrawl runs every plugin's PreCrawl hook. Errors are caught and counted;
// they never prevent the crawl from starting.
func (d *Dispatcher) PreCrawl(cfg config.Config) {
	for _, p := range d.plugins {
		d.runGuarded("pre_crawl", p, func() error { return p.PreCrawl(cfg) })
	}
}

func (d *Dispatcher) PostFetch(pageURL url.URL, html []byte, status int) {
	for _, p := range d.plugins {
		d.runGuarded("post_fetch", p, func() error { return p.PostFetch(pageURL, html, status) })
	}
}

// PostConvert chains markdown through every plugin in order. A plugin whose
// PostConvert errors or panics is skipped - its transformation is discarded -
// but the markdown it received still flows unchanged to the next plugin.
func (d *Dispatcher) PostConvert(pageURL url.URL, markdown []byte) []byte {
	current := markdown
	for _, p := range d.plugins {
		next, ok := d.runGuardedConvert(p, pageURL, current)
		if ok {
			current = next
		}
	}
	return current
}

func (d *Dispatcher) PostSave(path string, kind metadata.ArtifactKind) {
	for _, p := range d.plugins {
		d.runGuarded("post_save", p, func() error { return p.PostSave(path, kind) })
	}
}

func (d *Dispatcher) PostCrawl(snapshot stats.Snapshot) {
	for _, p := range d.plugins {
		d.runGuarded("post_crawl", p, func() error { return p.PostCrawl(snapshot) })
	}
}

func (d *Dispatcher) runGuarded(action string, p Plugin, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			d.recordFailure(action, p, r)
		}
	}()
	if err := fn(); err != nil {
		d.recordFailure(action, p, nil)
	}
}

// runGuardedConvert isolates PostConvert specifically, since its failure mode
// discards the transformation rather than simply being ignored.
func (d *Dispatcher) runGuardedConvert(p Plugin, pageURL url.URL, markdown []byte) (result []byte, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			d.recordFailure("post_convert", p, r)
			result, ok = nil, false
		}
	}()

	out, err := p.PostConvert(pageURL, markdown)
	if err != nil {
		d.recordFailure("post_convert", p, nil)
		return nil, false
	}
	return out, true
}
