// Package domain contains the core entities of the task service: users,
// tasks, their typed partial updates and the typed task list query. It is
// independent of any storage or delivery mechanism.
package domain
