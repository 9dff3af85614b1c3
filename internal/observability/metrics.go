package observability

const (
	MUsecaseRequests         MetricKey = "usecase_requests_total"
	MUsecaseDuration         MetricKey = "usecase_duration_seconds"
	MHTTPRequests            MetricKey = "http_requests_total"
	MHTTPRequestDuration     MetricKey = "http_request_duration_seconds"
	MExternalRequests        MetricKey = "external_requests_total"
	MExternalRequestDuration MetricKey = "external_request_duration_seconds"
	MDomainEvents            MetricKey = "domain_events_total"
)

// MetricLabels lists the label keys each metric is registered with.
var MetricLabels = map[MetricKey][]string{
	MUsecaseRequests:         {"use_case", "outcome"},
	MUsecaseDuration:         {"use_case"},
	MHTTPRequests:            {"method", "route", "status"},
	MHTTPRequestDuration:     {"method", "route", "status"},
	MExternalRequests:        {"peer", "endpoint", "outcome"},
	MExternalRequestDuration: {"peer", "endpoint"},
	MDomainEvents:            {"event"},
}

// MetricHelp holds the Prometheus help text for each metric.
var MetricHelp = map[MetricKey]string{
	MUsecaseRequests:         "Total number of use case invocations.",
	MUsecaseDuration:         "Duration of use case execution in seconds.",
	MHTTPRequests:            "Total number of HTTP requests.",
	MHTTPRequestDuration:     "Duration of HTTP requests in seconds.",
	MExternalRequests:        "Total number of calls to external peers (outbox, kafka, payment gateway).",
	MExternalRequestDuration: "Duration of calls to external peers in seconds.",
	MDomainEvents:            "Total number of domain events delivered by the outbox (stock, order, payment).",
}
