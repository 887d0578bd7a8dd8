package database

import (
	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	"github.com/jordanlanch/funneltrack/pkg/store"
)

var (
	// SearchesColumns holds the columns for the "searches" table.
	SearchesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 64},
		{Name: "session_id", Type: field.TypeString},
		{Name: "name", Type: field.TypeString, Nullable: true},
		{Name: "email", Type: field.TypeString, Nullable: true},
		{Name: "search_type", Type: field.TypeString, Default: "partner"},
		{Name: "source_page", Type: field.TypeString, Default: "home"},
		{Name: "user_agent", Type: field.TypeString, Nullable: true, Size: 2147483647},
		{Name: "ip_address", Type: field.TypeString, Nullable: true},
		{Name: "referrer", Type: field.TypeString, Nullable: true, Size: 2147483647},
		{Name: "utm_source", Type: field.TypeString, Nullable: true},
		{Name: "utm_medium", Type: field.TypeString, Nullable: true},
		{Name: "utm_campaign", Type: field.TypeString, Nullable: true},
		{Name: "current_step", Type: field.TypeInt, Default: 1},
		{Name: "total_steps", Type: field.TypeInt, Default: 3},
		{Name: "started_at", Type: field.TypeTime},
		{Name: "last_activity_at", Type: field.TypeTime},
		{Name: "completed_at", Type: field.TypeTime, Nullable: true},
		{Name: "dropped_off_at", Type: field.TypeTime, Nullable: true},
		{Name: "drop_off_step", Type: field.TypeInt, Nullable: true},
		{Name: "drop_off_reason", Type: field.TypeString, Nullable: true},
		{Name: "is_completed", Type: field.TypeBool, Default: false},
		{Name: "created_at", Type: field.TypeTime},
	}
	// SearchesTable holds the schema information for the "searches" table.
	SearchesTable = &schema.Table{
		Name:       store.TableSearches,
		Columns:    SearchesColumns,
		PrimaryKey: []*schema.Column{SearchesColumns[0]},
		Indexes: []*schema.Index{
			{Name: "searches_session_id", Columns: []*schema.Column{SearchesColumns[1]}},
			{Name: "searches_created_at", Columns: []*schema.Column{SearchesColumns[21]}},
		},
	}

	// SearchAnswersColumns holds the columns for the "search_answers" table.
	SearchAnswersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 64},
		{Name: "search_id", Type: field.TypeString, Nullable: true},
		{Name: "session_id", Type: field.TypeString},
		{Name: "step_number", Type: field.TypeInt},
		{Name: "question_type", Type: field.TypeString},
		{Name: "answer_data", Type: field.TypeJSON, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
	}
	// SearchAnswersTable holds the schema information for the "search_answers" table.
	SearchAnswersTable = &schema.Table{
		Name:       store.TableSearchAnswers,
		Columns:    SearchAnswersColumns,
		PrimaryKey: []*schema.Column{SearchAnswersColumns[0]},
		Indexes: []*schema.Index{
			{Name: "search_answers_search_id", Columns: []*schema.Column{SearchAnswersColumns[1]}},
		},
	}

	// SearchDropOffsColumns holds the columns for the "search_drop_offs" table.
	SearchDropOffsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 64},
		{Name: "search_id", Type: field.TypeString, Nullable: true},
		{Name: "session_id", Type: field.TypeString},
		{Name: "step_number", Type: field.TypeInt},
		{Name: "step_name", Type: field.TypeString},
		{Name: "drop_off_reason", Type: field.TypeString, Nullable: true},
		{Name: "time_spent_seconds", Type: field.TypeInt, Nullable: true},
		{Name: "user_agent", Type: field.TypeString, Nullable: true, Size: 2147483647},
		{Name: "ip_address", Type: field.TypeString, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
	}
	// SearchDropOffsTable holds the schema information for the "search_drop_offs" table.
	SearchDropOffsTable = &schema.Table{
		Name:       store.TableSearchDropOffs,
		Columns:    SearchDropOffsColumns,
		PrimaryKey: []*schema.Column{SearchDropOffsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "search_drop_offs_created_at", Columns: []*schema.Column{SearchDropOffsColumns[9]}},
		},
	}

	// ConversionFunnelColumns holds the columns for the "conversion_funnel" table.
	ConversionFunnelColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 64},
		{Name: "session_id", Type: field.TypeString},
		{Name: "funnel_step", Type: field.TypeString},
		{Name: "step_order", Type: field.TypeInt},
		{Name: "time_spent_seconds", Type: field.TypeInt, Nullable: true},
		{Name: "is_completed", Type: field.TypeBool, Default: true},
		{Name: "created_at", Type: field.TypeTime},
	}
	// ConversionFunnelTable holds the schema information for the "conversion_funnel" table.
	ConversionFunnelTable = &schema.Table{
		Name:       store.TableFunnel,
		Columns:    ConversionFunnelColumns,
		PrimaryKey: []*schema.Column{ConversionFunnelColumns[0]},
		Indexes: []*schema.Index{
			{Name: "conversion_funnel_created_at", Columns: []*schema.Column{ConversionFunnelColumns[6]}},
		},
	}

	// PaymentAttemptsColumns holds the columns for the "payment_attempts" table.
	PaymentAttemptsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 64},
		{Name: "session_id", Type: field.TypeString},
		{Name: "payment_method", Type: field.TypeString},
		{Name: "amount", Type: field.TypeFloat64},
		{Name: "currency", Type: field.TypeString, Default: "USD"},
		{Name: "status", Type: field.TypeString},
		{Name: "error_message", Type: field.TypeString, Nullable: true},
		{Name: "payment_data", Type: field.TypeJSON, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "completed_at", Type: field.TypeTime, Nullable: true},
	}
	// PaymentAttemptsTable holds the schema information for the "payment_attempts" table.
	PaymentAttemptsTable = &schema.Table{
		Name:       store.TablePayments,
		Columns:    PaymentAttemptsColumns,
		PrimaryKey: []*schema.Column{PaymentAttemptsColumns[0]},
	}

	// LoadingScreenEventsColumns holds the columns for the "loading_screen_events" table.
	LoadingScreenEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 64},
		{Name: "session_id", Type: field.TypeString},
		{Name: "event_type", Type: field.TypeString},
		{Name: "progress_percentage", Type: field.TypeInt, Nullable: true},
		{Name: "profiles_analyzed", Type: field.TypeInt, Nullable: true},
		{Name: "loading_message", Type: field.TypeString, Nullable: true},
		{Name: "duration_seconds", Type: field.TypeInt, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
	}
	// LoadingScreenEventsTable holds the schema information for the "loading_screen_events" table.
	LoadingScreenEventsTable = &schema.Table{
		Name:       store.TableLoadingEvents,
		Columns:    LoadingScreenEventsColumns,
		PrimaryKey: []*schema.Column{LoadingScreenEventsColumns[0]},
	}

	// PageViewsColumns holds the columns for the "page_views" table.
	PageViewsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 64},
		{Name: "session_id", Type: field.TypeString},
		{Name: "page_path", Type: field.TypeString},
		{Name: "page_title", Type: field.TypeString, Nullable: true},
		{Name: "time_spent_seconds", Type: field.TypeInt, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
	}
	// PageViewsTable holds the schema information for the "page_views" table.
	PageViewsTable = &schema.Table{
		Name:       store.TablePageViews,
		Columns:    PageViewsColumns,
		PrimaryKey: []*schema.Column{PageViewsColumns[0]},
	}

	// UserInteractionsColumns holds the columns for the "user_interactions" table.
	UserInteractionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 64},
		{Name: "session_id", Type: field.TypeString},
		{Name: "interaction_type", Type: field.TypeString},
		{Name: "element_id", Type: field.TypeString, Nullable: true},
		{Name: "element_text", Type: field.TypeString, Nullable: true},
		{Name: "page_path", Type: field.TypeString, Nullable: true},
		{Name: "interaction_data", Type: field.TypeJSON, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
	}
	// UserInteractionsTable holds the schema information for the "user_interactions" table.
	UserInteractionsTable = &schema.Table{
		Name:       store.TableInteractions,
		Columns:    UserInteractionsColumns,
		PrimaryKey: []*schema.Column{UserInteractionsColumns[0]},
	}

	// DeviceInfoColumns holds the columns for the "device_info" table.
	DeviceInfoColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 64},
		{Name: "session_id", Type: field.TypeString},
		{Name: "browser", Type: field.TypeString},
		{Name: "browser_version", Type: field.TypeString},
		{Name: "operating_system", Type: field.TypeString},
		{Name: "device_type", Type: field.TypeString},
		{Name: "screen_resolution", Type: field.TypeString, Nullable: true},
		{Name: "viewport_size", Type: field.TypeString, Nullable: true},
		{Name: "language", Type: field.TypeString, Nullable: true},
		{Name: "timezone", Type: field.TypeString, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
	}
	// DeviceInfoTable holds the schema information for the "device_info" table.
	DeviceInfoTable = &schema.Table{
		Name:       store.TableDeviceInfo,
		Columns:    DeviceInfoColumns,
		PrimaryKey: []*schema.Column{DeviceInfoColumns[0]},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		SearchesTable,
		SearchAnswersTable,
		SearchDropOffsTable,
		ConversionFunnelTable,
		PaymentAttemptsTable,
		LoadingScreenEventsTable,
		PageViewsTable,
		UserInteractionsTable,
		DeviceInfoTable,
	}
)

func newMigrate(drv dialect.Driver) (*schema.Atlas, error) {
	return schema.NewMigrate(drv)
}
