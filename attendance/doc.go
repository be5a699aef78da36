// Package attendance defines the schema and the domain operations of the
// attendance and payment tracker: students, groups, daily attendance marks
// and payments. It includes:
//   - SchemaSQL: idempotent table and index script applied by the engine selector
//   - Store: one method per business action, built on engine.Querier
//   - FormatDay / ParseDay: the zero-padded calendar-day format every date column uses
package attendance
