// Package domain defines the core entities of the broccoli scheduler:
// inventory items and their types, grocery trips, users with notification
// preferences, and receipts. These types carry no persistence or transport
// concerns; stores and handlers operate on them.
package domain
