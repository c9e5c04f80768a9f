package sqlstore

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	"github.com/Alijeyrad/oilcall_backend/pkg/jobnumber"
)

var (
	MechanicsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "name", Type: field.TypeString},
		{Name: "email", Type: field.TypeString, Nullable: true, Unique: true},
		{Name: "phone", Type: field.TypeString, Nullable: true},
		{Name: "password_hash", Type: field.TypeString, Nullable: true},
		{Name: "photo_key", Type: field.TypeString, Nullable: true},
		{Name: "is_public", Type: field.TypeBool, Default: true},
		{Name: "oil_change_count", Type: field.TypeInt, Default: 0},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	MechanicsTable = &schema.Table{
		Name:       "mechanics",
		Columns:    MechanicsColumns,
		PrimaryKey: []*schema.Column{MechanicsColumns[0]},
	}

	ManagersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "email", Type: field.TypeString, Unique: true},
		{Name: "name", Type: field.TypeString},
		{Name: "password_hash", Type: field.TypeString},
		{Name: "created_at", Type: field.TypeTime},
	}
	ManagersTable = &schema.Table{
		Name:       "managers",
		Columns:    ManagersColumns,
		PrimaryKey: []*schema.Column{ManagersColumns[0]},
	}

	RecurringSchedulesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "mechanic_id", Type: field.TypeUUID},
		{Name: "day_of_week", Type: field.TypeInt},
		{Name: "time_slot", Type: field.TypeString, Size: 16},
		{Name: "is_available", Type: field.TypeBool, Default: true},
	}
	RecurringSchedulesTable = &schema.Table{
		Name:       "recurring_schedules",
		Columns:    RecurringSchedulesColumns,
		PrimaryKey: []*schema.Column{RecurringSchedulesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "recurring_schedules_mechanics_schedule",
				Columns:    []*schema.Column{RecurringSchedulesColumns[1]},
				RefColumns: []*schema.Column{MechanicsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "recurringschedule_mechanic_id_day_of_week_time_slot",
				Unique:  true,
				Columns: []*schema.Column{RecurringSchedulesColumns[1], RecurringSchedulesColumns[2], RecurringSchedulesColumns[3]},
			},
			{
				Name:    "recurringschedule_day_of_week",
				Unique:  false,
				Columns: []*schema.Column{RecurringSchedulesColumns[2]},
			},
		},
	}

	DateOverridesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "mechanic_id", Type: field.TypeUUID},
		{Name: "date", Type: field.TypeString, Size: 10},
		{Name: "time_slot", Type: field.TypeString, Size: 16},
		{Name: "is_available", Type: field.TypeBool},
		{Name: "updated_at", Type: field.TypeTime},
	}
	DateOverridesTable = &schema.Table{
		Name:       "date_overrides",
		Columns:    DateOverridesColumns,
		PrimaryKey: []*schema.Column{DateOverridesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "date_overrides_mechanics_overrides",
				Columns:    []*schema.Column{DateOverridesColumns[1]},
				RefColumns: []*schema.Column{MechanicsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "dateoverride_mechanic_id_date_time_slot",
				Unique:  true,
				Columns: []*schema.Column{DateOverridesColumns[1], DateOverridesColumns[2], DateOverridesColumns[3]},
			},
			{
				Name:    "dateoverride_date",
				Unique:  false,
				Columns: []*schema.Column{DateOverridesColumns[2]},
			},
		},
	}

	CustomersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "email", Type: field.TypeString, Unique: true},
		{Name: "name", Type: field.TypeString},
		{Name: "phone", Type: field.TypeString, Default: ""},
		{Name: "contact_preference", Type: field.TypeString, Default: ""},
		{Name: "address", Type: field.TypeString, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	CustomersTable = &schema.Table{
		Name:       "customers",
		Columns:    CustomersColumns,
		PrimaryKey: []*schema.Column{CustomersColumns[0]},
	}

	AppointmentsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "job_number", Type: field.TypeInt64, Unique: true},
		{Name: "customer_id", Type: field.TypeUUID, Nullable: true},
		{Name: "customer_name", Type: field.TypeString},
		{Name: "customer_email", Type: field.TypeString},
		{Name: "customer_phone", Type: field.TypeString},
		{Name: "contact_preference", Type: field.TypeString, Default: ""},
		{Name: "address", Type: field.TypeString},
		{Name: "vehicle_make", Type: field.TypeString, Default: ""},
		{Name: "vehicle_model", Type: field.TypeString, Default: ""},
		{Name: "vehicle_year", Type: field.TypeInt, Default: 0},
		{Name: "vehicle_plate", Type: field.TypeString, Default: ""},
		{Name: "service_type", Type: field.TypeString},
		{Name: "notes", Type: field.TypeString, Default: ""},
		{Name: "date", Type: field.TypeString, Size: 10},
		{Name: "time_slot", Type: field.TypeString, Size: 16},
		{Name: "mechanic_id", Type: field.TypeUUID, Nullable: true},
		{Name: "status", Type: field.TypeString, Size: 16, Default: "scheduled"},
		{Name: "payment_status", Type: field.TypeString, Size: 16, Default: "pending"},
		{Name: "payment_provider", Type: field.TypeString, Default: ""},
		{Name: "payment_reference", Type: field.TypeString, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
		{Name: "completed_at", Type: field.TypeTime, Nullable: true},
		{Name: "cancelled_at", Type: field.TypeTime, Nullable: true},
	}
	AppointmentsTable = &schema.Table{
		Name:       "appointments",
		Columns:    AppointmentsColumns,
		PrimaryKey: []*schema.Column{AppointmentsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "appointments_customers_appointments",
				Columns:    []*schema.Column{AppointmentsColumns[2]},
				RefColumns: []*schema.Column{CustomersColumns[0]},
				OnDelete:   schema.SetNull,
			},
			{
				Symbol:     "appointments_mechanics_appointments",
				Columns:    []*schema.Column{AppointmentsColumns[16]},
				RefColumns: []*schema.Column{MechanicsColumns[0]},
				OnDelete:   schema.SetNull,
			},
		},
		Indexes: []*schema.Index{
			{
				// One live booking per technician and slot.
				Name:    "appointment_mechanic_id_date_time_slot_live",
				Unique:  true,
				Columns: []*schema.Column{AppointmentsColumns[16], AppointmentsColumns[14], AppointmentsColumns[15]},
				Annotation: &entsql.IndexAnnotation{
					Where: "mechanic_id IS NOT NULL AND status <> 'cancelled'",
				},
			},
			{
				Name:    "appointment_date_status",
				Unique:  false,
				Columns: []*schema.Column{AppointmentsColumns[14], AppointmentsColumns[17]},
			},
		},
	}

	TimeEntriesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeUUID},
		{Name: "mechanic_id", Type: field.TypeUUID},
		{Name: "check_in_time", Type: field.TypeTime},
		{Name: "check_out_time", Type: field.TypeTime, Nullable: true},
	}
	TimeEntriesTable = &schema.Table{
		Name:       "time_entries",
		Columns:    TimeEntriesColumns,
		PrimaryKey: []*schema.Column{TimeEntriesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "time_entries_mechanics_time_entries",
				Columns:    []*schema.Column{TimeEntriesColumns[1]},
				RefColumns: []*schema.Column{MechanicsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				// At most one open entry per technician.
				Name:    "timeentry_mechanic_id_open",
				Unique:  true,
				Columns: []*schema.Column{TimeEntriesColumns[1]},
				Annotation: &entsql.IndexAnnotation{
					Where: "check_out_time IS NULL",
				},
			},
			{
				Name:    "timeentry_mechanic_id_check_in_time",
				Unique:  false,
				Columns: []*schema.Column{TimeEntriesColumns[1], TimeEntriesColumns[2]},
			},
		},
	}

	Tables = []*schema.Table{
		MechanicsTable,
		ManagersTable,
		RecurringSchedulesTable,
		DateOverridesTable,
		CustomersTable,
		AppointmentsTable,
		TimeEntriesTable,
	}
)

func init() {
	RecurringSchedulesTable.ForeignKeys[0].RefTable = MechanicsTable
	DateOverridesTable.ForeignKeys[0].RefTable = MechanicsTable
	AppointmentsTable.ForeignKeys[0].RefTable = CustomersTable
	AppointmentsTable.ForeignKeys[1].RefTable = MechanicsTable
	TimeEntriesTable.ForeignKeys[0].RefTable = MechanicsTable
}

// Migrate creates or upgrades every table and index, then the job number
// sequence. It never drops columns or indexes.
func Migrate(ctx context.Context, drv dialect.Driver, jobNumberStart int64) error {
	m, err := schema.NewMigrate(drv, schema.WithForeignKeys(true))
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	if jobNumberStart < 1 {
		jobNumberStart = 1
	}
	q := fmt.Sprintf("CREATE SEQUENCE IF NOT EXISTS %s START WITH %d", jobnumber.SequenceName, jobNumberStart)
	if err := drv.Exec(ctx, q, []any{}, nil); err != nil {
		return fmt.Errorf("create sequence %s: %w", jobnumber.SequenceName, err)
	}
	return nil
}
