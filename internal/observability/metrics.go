package observability

const (
	MCartOperations        MetricKey = "cart_operations_total"
	MCartOperationDuration MetricKey = "cart_operation_duration_seconds"
	MStockLookups          MetricKey = "stock_lookups_total"
	MHTTPRequests          MetricKey = "http_requests_total"
	MHTTPRequestDuration   MetricKey = "http_request_duration_seconds"
	MEventPublishFailures  MetricKey = "event_publish_failed_total"
)
