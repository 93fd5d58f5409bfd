// Package postgres implements the store interfaces against PostgreSQL via
// the pgx stdlib driver. The inventory schema (users, items, item_types,
// grocery_trips and their join tables) is owned by the companion inventory
// application; this service only reads and issues row-level updates against
// the fields the job handlers consume. The dead_letter_jobs table is owned
// here and created by the embedded migration.
package postgres
