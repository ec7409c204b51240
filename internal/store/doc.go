// Package store defines persistence interfaces and shared storage errors.
package store
