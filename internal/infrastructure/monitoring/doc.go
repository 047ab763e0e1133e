/*
Package monitoring provides metrics collection for connector traffic and
command workflows.

# Overview

Metrics live on a private Prometheus registry so every process (and every
test) starts from zero. A command-line process is short lived, so metrics are
exported by writing a node-exporter textfile on exit instead of serving an
endpoint.

# Metrics

  - modxel_connector_requests_total{action,outcome}
  - modxel_connector_request_duration_seconds{action}
  - modxel_session_cookie_rotations_total
  - modxel_workflows_total{workflow,outcome}
  - modxel_autosync_total{result}
  - modxel_buffers_unbound_total

# Usage

	metrics := monitoring.NewMetrics()
	metrics.RecordRequest("element/chunk/update", "success", elapsed)
	_ = metrics.WriteTextfile("/var/lib/node_exporter/modxel.prom")

A nil *Metrics is valid and records nothing.
*/
package monitoring
