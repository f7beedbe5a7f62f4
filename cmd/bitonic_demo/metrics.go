// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// printMetrics prints one row per collected series.
func printMetrics(registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return err
	}
	fmt.Println(titleStyle.Render("Metrics"))
	table := newPlainTable(lipgloss.Left, lipgloss.Left, lipgloss.Right).
		Headers("Metric", "Labels", "Value")
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			table.Row(family.GetName(), formatLabels(metric.GetLabel()), formatValue(family.GetType(), metric))
		}
	}
	fmt.Println(table.Render())
	return nil
}

func formatLabels(labels []*dto.LabelPair) string {
	parts := make([]string, 0, len(labels))
	for _, label := range labels {
		parts = append(parts, fmt.Sprintf("%s=%q", label.GetName(), label.GetValue()))
	}
	return strings.Join(parts, ",")
}

func formatValue(metricType dto.MetricType, metric *dto.Metric) string {
	switch metricType {
	case dto.MetricType_COUNTER:
		return humanize.Commaf(metric.GetCounter().GetValue())
	case dto.MetricType_GAUGE:
		return humanize.Commaf(metric.GetGauge().GetValue())
	case dto.MetricType_HISTOGRAM:
		h := metric.GetHistogram()
		if h.GetSampleCount() == 0 {
			return "count=0"
		}
		return fmt.Sprintf("count=%s, mean=%s", humanize.Comma(int64(h.GetSampleCount())),
			humanize.FtoaWithDigits(h.GetSampleSum()/float64(h.GetSampleCount()), 6))
	default:
		return metric.String()
	}
}
