package metrics

import (
	"fmt"
	"strconv"
	"strings"
)

// PrometheusFormat renders the collector in the Prometheus text exposition
// format. Histograms are exposed as _count and _sum series.
func PrometheusFormat(c *Collector) string {
	var sb strings.Builder
	typed := make(map[string]bool)

	for _, m := range c.Snapshot() {
		if !typed[m.Name] {
			promType := string(m.Type)
			if m.Type == TypeHistogram {
				promType = "summary"
			}
			fmt.Fprintf(&sb, "# TYPE %s %s\n", m.Name, promType)
			typed[m.Name] = true
		}

		labels := formatLabels(m.Labels)
		switch m.Type {
		case TypeHistogram:
			fmt.Fprintf(&sb, "%s_count%s %d\n", m.Name, labels, m.Count)
			fmt.Fprintf(&sb, "%s_sum%s %s\n", m.Name, labels, formatValue(m.Sum))
		default:
			fmt.Fprintf(&sb, "%s%s %s\n", m.Name, labels, formatValue(m.Value))
		}
	}
	return sb.String()
}

func formatLabels(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(labels))
	for _, k := range sortedLabelNames(labels) {
		pairs = append(pairs, k+"="+strconv.Quote(labels[k]))
	}
	return "{" + strings.Join(pairs, ",") + "}"
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
