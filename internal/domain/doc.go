// Package domain holds the plain data types shared by every other orcd
// package. Nothing in here talks to the network or the filesystem; it exists
// so that internal/registry, internal/health, internal/recovery, and
// internal/scheduler agree on one definition of Node, Workload, and
// DesiredState instead of each declaring their own.
package domain
