package store

// Table names
const (
	TableSearches       = "searches"
	TableSearchAnswers  = "search_answers"
	TableSearchDropOffs = "search_drop_offs"
	TableFunnel         = "conversion_funnel"
	TablePayments       = "payment_attempts"
	TableLoadingEvents  = "loading_screen_events"
	TablePageViews      = "page_views"
	TableInteractions   = "user_interactions"
	TableDeviceInfo     = "device_info"
)

// Columns lists every column of each table in declaration order. Selects
// without an explicit column list read these.
var Columns = map[string][]string{
	TableSearches: {
		"id", "session_id", "name", "email", "search_type", "source_page",
		"user_agent", "ip_address", "referrer", "utm_source", "utm_medium", "utm_campaign",
		"current_step", "total_steps", "started_at", "last_activity_at", "completed_at",
		"dropped_off_at", "drop_off_step", "drop_off_reason", "is_completed", "created_at",
	},
	TableSearchAnswers: {
		"id", "search_id", "session_id", "step_number", "question_type", "answer_data", "created_at",
	},
	TableSearchDropOffs: {
		"id", "search_id", "session_id", "step_number", "step_name", "drop_off_reason",
		"time_spent_seconds", "user_agent", "ip_address", "created_at",
	},
	TableFunnel: {
		"id", "session_id", "funnel_step", "step_order", "time_spent_seconds", "is_completed", "created_at",
	},
	TablePayments: {
		"id", "session_id", "payment_method", "amount", "currency", "status",
		"error_message", "payment_data", "created_at", "completed_at",
	},
	TableLoadingEvents: {
		"id", "session_id", "event_type", "progress_percentage", "profiles_analyzed",
		"loading_message", "duration_seconds", "created_at",
	},
	TablePageViews: {
		"id", "session_id", "page_path", "page_title", "time_spent_seconds", "created_at",
	},
	TableInteractions: {
		"id", "session_id", "interaction_type", "element_id", "element_text",
		"page_path", "interaction_data", "created_at",
	},
	TableDeviceInfo: {
		"id", "session_id", "browser", "browser_version", "operating_system", "device_type",
		"screen_resolution", "viewport_size", "language", "timezone", "created_at",
	},
}
