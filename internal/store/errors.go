package store

import "errors"

var (
	// ErrUnknownTable is returned for operations naming a table outside Schema.
	ErrUnknownTable = errors.New("unknown table")

	// ErrUnknownColumn is returned for operations naming a column the table does not define.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrInvalidValue is returned when a value cannot be converted to its column kind.
	ErrInvalidValue = errors.New("invalid value")

	// ErrInvalidOperation is returned for malformed operations, such as a delete without a target.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrConflict is returned when a write would violate a primary key or unique constraint.
	ErrConflict = errors.New("unique constraint violation")

	// ErrForeignKey is returned when a write references a row that does not exist.
	ErrForeignKey = errors.New("foreign key violation")

	// ErrNotPersisted is returned by repositories when a write reports no stored row.
	ErrNotPersisted = errors.New("write not persisted")

	// ErrUnrecognizedStatement is returned by ParseStatement for statements outside the supported dialect.
	ErrUnrecognizedStatement = errors.New("unrecognized statement")
)
