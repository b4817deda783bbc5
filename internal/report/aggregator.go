// Package report builds ranked telemetry reports and schedules their dispatch.
package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"vscode-status-server/internal/model"
	"vscode-status-server/internal/telemetry"
)

// Type identifies a report variant. Values double as tracker keys, so they
// must stay stable across releases.
type Type string

const (
	TypeIPs            Type = "IPs"
	TypeEndpoints      Type = "Endpoints"
	TypeEndpointsByIPs Type = "Endpoints-by-IPs"
)

// AllTypes lists every report the scheduler produces per period.
var AllTypes = []Type{TypeIPs, TypeEndpoints, TypeEndpointsByIPs}

// DefaultMaxChunkLen is the sink's message length limit.
const DefaultMaxChunkLen = 1800

// Aggregator turns a telemetry window into rendered, chunked report text.
type Aggregator struct {
	log         telemetry.Log
	maxChunkLen int
}

func NewAggregator(log telemetry.Log) *Aggregator {
	return &Aggregator{log: log, maxChunkLen: DefaultMaxChunkLen}
}

// Build renders the report for the half-open window [start, end) and splits
// it into chunks no longer than the sink limit.
func (a *Aggregator) Build(ctx context.Context, typ Type, period string, start, end int64) ([]string, error) {
	var title string
	var lines []string

	switch typ {
	case TypeIPs:
		counts, err := a.log.CountByIP(ctx, start, end)
		if err != nil {
			return nil, err
		}
		sort.Slice(counts, func(i, j int) bool {
			if counts[i].Count != counts[j].Count {
				return counts[i].Count > counts[j].Count
			}
			return counts[i].IP < counts[j].IP
		})
		title = "Top IPs"
		for _, c := range counts {
			lines = append(lines, fmt.Sprintf("- %s: %s", c.IP, countPhrase(c.Count)))
		}

	case TypeEndpoints:
		counts, err := a.log.CountByEndpoint(ctx, start, end)
		if err != nil {
			return nil, err
		}
		sort.Slice(counts, func(i, j int) bool {
			if counts[i].Count != counts[j].Count {
				return counts[i].Count > counts[j].Count
			}
			return counts[i].Endpoint < counts[j].Endpoint
		})
		title = "Top Endpoints"
		for _, c := range counts {
			lines = append(lines, fmt.Sprintf("- `%s`: %s", c.Endpoint, countPhrase(c.Count)))
		}

	case TypeEndpointsByIPs:
		counts, err := a.log.CountByIPEndpoint(ctx, start, end)
		if err != nil {
			return nil, err
		}
		title = "Top Endpoints by IP"
		lines = renderEndpointsByIPs(counts)

	default:
		return nil, fmt.Errorf("report: unknown type %q", typ)
	}

	date := time.Unix(end, 0).Local().Format("01/02/2006")
	header := fmt.Sprintf("# %s %s (%s)", capitalize(period), title, date)
	content := header + "\n" + strings.Join(lines, "\n")
	return ChunkText(content, a.maxChunkLen), nil
}

// renderEndpointsByIPs nests each ip's endpoints under its total. IPs rank by
// descending total then ascending ip; endpoints within an ip by descending
// count then ascending name.
func renderEndpointsByIPs(counts []model.IPEndpointCount) []string {
	perIP := make(map[string][]model.IPEndpointCount)
	totals := make(map[string]int64)
	for _, c := range counts {
		perIP[c.IP] = append(perIP[c.IP], c)
		totals[c.IP] += c.Count
	}

	ips := make([]string, 0, len(perIP))
	for ip := range perIP {
		ips = append(ips, ip)
	}
	sort.Slice(ips, func(i, j int) bool {
		if totals[ips[i]] != totals[ips[j]] {
			return totals[ips[i]] > totals[ips[j]]
		}
		return ips[i] < ips[j]
	})

	var lines []string
	for _, ip := range ips {
		lines = append(lines, fmt.Sprintf("- %s: %s", ip, countPhrase(totals[ip])))
		endpoints := perIP[ip]
		sort.Slice(endpoints, func(i, j int) bool {
			if endpoints[i].Count != endpoints[j].Count {
				return endpoints[i].Count > endpoints[j].Count
			}
			return endpoints[i].Endpoint < endpoints[j].Endpoint
		})
		for _, e := range endpoints {
			lines = append(lines, fmt.Sprintf("  - `%s`: %s", e.Endpoint, countPhrase(e.Count)))
		}
	}
	return lines
}

func countPhrase(n int64) string {
	if n == 1 {
		return "1 request"
	}
	return fmt.Sprintf("%d requests", n)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ChunkText splits text into chunks of at most maxLen characters, breaking on
// line boundaries. A single line longer than maxLen is hard-wrapped.
func ChunkText(text string, maxLen int) []string {
	var chunks []string
	current := ""

	for _, line := range strings.Split(text, "\n") {
		if len(line) > maxLen {
			if current != "" {
				chunks = append(chunks, strings.TrimRight(current, "\n"))
				current = ""
			}
			for i := 0; i < len(line); i += maxLen {
				chunkEnd := i + maxLen
				if chunkEnd > len(line) {
					chunkEnd = len(line)
				}
				chunks = append(chunks, line[i:chunkEnd])
			}
			continue
		}

		if len(current)+len(line)+1 > maxLen {
			chunks = append(chunks, strings.TrimRight(current, "\n"))
			current = line + "\n"
		} else {
			current += line + "\n"
		}
	}

	if current != "" {
		chunks = append(chunks, strings.TrimRight(current, "\n"))
	}
	return chunks
}
