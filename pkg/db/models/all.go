package models

// All lists every persisted model, in dependency order, for AutoMigrate in
// SQLite-backed development and tests.
func All() []any {
	return []any{
		&Employee{},
		&Material{},
		&ProductionOrder{},
		&OrderMaterial{},
		&Shipment{},
		&AuditEntry{},
		&Notification{},
		&OutboxEvent{},
		&OutboxDLQ{},
	}
}
