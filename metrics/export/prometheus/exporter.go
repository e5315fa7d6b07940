package prometheus

import (
	"net/http"
	"strconv"
	"strings"

	goEphemeral "github.com/MrEthical07/goEphemeral"
	"github.com/MrEthical07/goEphemeral/metrics/export/internaldefs"
)

// Source is anything that can hand out a metrics snapshot. [*goEphemeral.Engine]
// satisfies it.
type Source interface {
	MetricsSnapshot() goEphemeral.MetricsSnapshot
	AuditDropped() uint64
}

// Exporter renders credential metrics in Prometheus text exposition format.
type Exporter struct {
	source Source
}

// NewExporter creates an exporter reading from engine.
func NewExporter(engine *goEphemeral.Engine) *Exporter {
	return &Exporter{source: engine}
}

// NewExporterFromSource creates an exporter reading from a custom source.
func NewExporterFromSource(source Source) *Exporter {
	return &Exporter{source: source}
}

// Handler returns an http.Handler that serves Render.
func (p *Exporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(p.Render()))
	})
}

// Render returns the current metrics. It returns "" when metrics are disabled and
// nothing was dropped.
func (p *Exporter) Render() string {
	if p == nil || p.source == nil {
		return ""
	}

	snapshot := p.source.MetricsSnapshot()
	dropped := p.source.AuditDropped()
	if len(snapshot.Counters) == 0 && len(snapshot.Histograms) == 0 && dropped == 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(4096)

	writeBuildInfo(&b)

	for _, def := range internaldefs.CounterDefs {
		writeCounter(&b, def.Name, def.Help, snapshot.Counters[def.ID])
	}

	for _, def := range internaldefs.HistogramDefs {
		raw, ok := snapshot.Histograms[def.ID]
		if !ok {
			continue
		}
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(raw))
		writeHistogram(&b, def.Name, def.Help, cumulative)
	}

	writeCounter(&b, "ephemeral_audit_dropped_total", "Audit events dropped by the dispatcher.", dropped)

	return b.String()
}

func writeBuildInfo(b *strings.Builder) {
	writeHeader(b, "ephemeral_build_info", "Library version.", "gauge")
	b.WriteString("ephemeral_build_info{version=\"")
	b.WriteString(goEphemeral.Version)
	b.WriteString("\"} 1\n")
}

func writeHeader(b *strings.Builder, name, help, kind string) {
	b.WriteString("# HELP ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(escapeHelp(help))
	b.WriteByte('\n')
	b.WriteString("# TYPE ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(kind)
	b.WriteByte('\n')
}

func writeCounter(b *strings.Builder, name, help string, value uint64) {
	writeHeader(b, name, help, "counter")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(strconv.FormatUint(value, 10))
	b.WriteByte('\n')
}

func writeHistogram(b *strings.Builder, name, help string, cumulative [8]uint64) {
	writeHeader(b, name, help, "histogram")

	for i, le := range internaldefs.HistogramBounds {
		b.WriteString(name)
		b.WriteString("_bucket{le=\"")
		b.WriteString(le)
		b.WriteString("\"} ")
		b.WriteString(strconv.FormatUint(cumulative[i], 10))
		b.WriteByte('\n')
	}

	b.WriteString(name)
	b.WriteString("_count ")
	b.WriteString(strconv.FormatUint(cumulative[len(cumulative)-1], 10))
	b.WriteByte('\n')

	// Snapshots carry bucket counts only.
	b.WriteString(name)
	b.WriteString("_sum 0\n")
}

func escapeHelp(help string) string {
	help = strings.ReplaceAll(help, "\\", "\\\\")
	help = strings.ReplaceAll(help, "\n", "\\n")
	return help
}
