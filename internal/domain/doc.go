// Package domain defines the core business entities of the task board:
// users, projects, tasks, project invitations and notifications.
package domain
